package ingest

import (
	"path/filepath"

	"go.uber.org/zap"

	"mlprep/pkg/apperr"
	"mlprep/pkg/data"
	"mlprep/pkg/loader"
)

type Config struct {
	ArtifactsDir string
	TestRatio    float64
	Seed         int64
}

// Paths are the files written by an ingestion run.
type Paths struct {
	Raw   string
	Train string
	Test  string
}

// DataIngestion copies a raw dataset into the artifacts dir and splits it.
type DataIngestion struct {
	cfg    Config
	logger *zap.Logger
}

func NewDataIngestion(cfg Config, logger *zap.Logger) *DataIngestion {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DataIngestion{cfg: cfg, logger: logger}
}

// Run reads source, writes data.csv, train.csv and test.csv under the artifacts dir.
func (d *DataIngestion) Run(source string) (Paths, error) {
	paths := Paths{
		Raw:   filepath.Join(d.cfg.ArtifactsDir, "data.csv"),
		Train: filepath.Join(d.cfg.ArtifactsDir, "train.csv"),
		Test:  filepath.Join(d.cfg.ArtifactsDir, "test.csv"),
	}

	d.logger.Info("entered data ingestion", zap.String("source", source))
	df, err := data.ReadCSV(source)
	if err != nil {
		return Paths{}, apperr.Wrap("read dataset", err)
	}
	if err := data.WriteCSV(paths.Raw, df); err != nil {
		return Paths{}, apperr.Wrap("save raw dataset", err)
	}

	train, test, err := loader.SplitFrame(df, d.cfg.TestRatio, d.cfg.Seed)
	if err != nil {
		return Paths{}, apperr.Wrap("train test split", err)
	}
	d.logger.Info("train test split initiated",
		zap.Int("train_rows", train.Len()),
		zap.Int("test_rows", test.Len()),
		zap.Int64("seed", d.cfg.Seed))

	if err := data.WriteCSV(paths.Train, train); err != nil {
		return Paths{}, apperr.Wrap("save train split", err)
	}
	if err := data.WriteCSV(paths.Test, test); err != nil {
		return Paths{}, apperr.Wrap("save test split", err)
	}
	d.logger.Info("ingestion of the data is completed")
	return paths, nil
}
