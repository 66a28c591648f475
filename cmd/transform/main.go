package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"mlprep/pkg/apperr"
	"mlprep/pkg/config"
	"mlprep/pkg/data"
	"mlprep/pkg/ingest"
	"mlprep/pkg/logger"
	"mlprep/pkg/metrics"
	"mlprep/pkg/report"
	"mlprep/pkg/transform"
)

//
// ---------------------- CLI FLAGS DOCUMENTATION ----------------------
//
// --config       : YAML config file. Missing file = defaults. Env overrides use PREP_ (nested keys with __)
// --raw          : Raw dataset CSV. When set, it is split into <artifacts>/train.csv and test.csv first
// --train        : Train split CSV (ignored with --raw). Default = <artifacts>/train.csv
// --test         : Test split CSV (ignored with --raw). Default = <artifacts>/test.csv
// --out-dir      : Write the transformed arrays as train_arr.csv / test_arr.csv
// --plot-dir     : Write one histogram PNG per transformed train column
// --metrics-file : Write Prometheus metrics in text format when the run ends
//
// Example:
//   go run ./cmd/transform --raw notebook/data/stud.csv --out-dir artifacts --plot-dir artifacts/plots
//
// ---------------------------------------------------------------------
//

func main() {
	configPath := flag.String("config", "config.yaml", "Path to YAML config")
	rawPath := flag.String("raw", "", "Raw dataset CSV to split before transforming")
	trainPath := flag.String("train", "", "Train split CSV")
	testPath := flag.String("test", "", "Test split CSV")
	outDir := flag.String("out-dir", "", "Directory for transformed array CSVs")
	plotDir := flag.String("plot-dir", "", "Directory for feature histograms")
	metricsFile := flag.String("metrics-file", "", "Prometheus textfile output")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, closeLog, err := logger.New(logger.Options{Level: cfg.Log.Level, Dir: cfg.Log.Dir, JSON: cfg.Log.JSON})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	log = log.With(zap.String("run_id", uuid.NewString()))

	m := metrics.NewMetrics()
	err = run(cfg, log, m, *rawPath, *trainPath, *testPath, *outDir, *plotDir)
	if *metricsFile != "" {
		if werr := m.WriteTextfile(*metricsFile); werr != nil {
			log.Warn("Failed to write metrics", zap.Error(werr))
		}
	}
	if err != nil {
		log.Error("Data transformation failed", zap.Error(err))
		_ = closeLog()
		os.Exit(1)
	}
	_ = closeLog()
}

func run(cfg config.Config, log *zap.Logger, m *metrics.Metrics, rawPath, trainPath, testPath, outDir, plotDir string) error {
	if trainPath == "" {
		trainPath = filepath.Join(cfg.ArtifactsDir, "train.csv")
	}
	if testPath == "" {
		testPath = filepath.Join(cfg.ArtifactsDir, "test.csv")
	}

	if rawPath != "" {
		ing := ingest.NewDataIngestion(ingest.Config{
			ArtifactsDir: cfg.ArtifactsDir,
			TestRatio:    cfg.Split.TestRatio,
			Seed:         cfg.Split.Seed,
		}, log)
		paths, err := ing.Run(rawPath)
		if err != nil {
			return err
		}
		trainPath, testPath = paths.Train, paths.Test
	}

	tcfg, err := transform.ConfigFrom(cfg)
	if err != nil {
		return apperr.Wrap("transformation config", err)
	}
	res, err := transform.NewDataTransformation(tcfg, log, m).Run(trainPath, testPath)
	if err != nil {
		return err
	}

	trainRows, cols := res.Train.Dims()
	testRows, _ := res.Test.Dims()
	log.Info("Data transformation completed",
		zap.Int("train_rows", trainRows),
		zap.Int("test_rows", testRows),
		zap.Int("columns", cols),
		zap.String("preprocessor", res.PreprocessorPath))

	if outDir != "" {
		if err := writeArray(filepath.Join(outDir, "train_arr.csv"), res.FeatureNames, res.Train); err != nil {
			return apperr.Wrap("write train array", err)
		}
		if err := writeArray(filepath.Join(outDir, "test_arr.csv"), res.FeatureNames, res.Test); err != nil {
			return apperr.Wrap("write test array", err)
		}
		log.Info("Transformed arrays written", zap.String("dir", outDir))
	}

	if plotDir != "" {
		paths, err := report.Histograms(plotDir, res.Train, res.FeatureNames)
		if err != nil {
			return apperr.Wrap("write histograms", err)
		}
		log.Info("Feature histograms written", zap.Int("count", len(paths)), zap.String("dir", plotDir))
	}
	return nil
}

func writeArray(path string, header []string, arr mat.Matrix) error {
	f, err := data.FromMatrix(header, arr)
	if err != nil {
		return err
	}
	return data.WriteCSV(path, f)
}
