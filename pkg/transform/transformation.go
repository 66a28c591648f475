package transform

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"mlprep/pkg/apperr"
	"mlprep/pkg/artifact"
	"mlprep/pkg/config"
	"mlprep/pkg/data"
	"mlprep/pkg/dataprep"
	"mlprep/pkg/metrics"
	"mlprep/pkg/pipeline"
	"mlprep/pkg/stats"
)

// Config controls how the preprocessor is built and where it is saved.
type Config struct {
	PreprocessorPath    string
	Schema              pipeline.Schema
	NumericStrategy     dataprep.Strategy
	CategoricalStrategy dataprep.Strategy
}

// ConfigFrom picks the transformation settings out of the application config.
func ConfigFrom(c config.Config) (Config, error) {
	num, err := dataprep.ParseStrategy(c.NumericStrategy)
	if err != nil {
		return Config{}, err
	}
	cat, err := dataprep.ParseStrategy(c.CategoricalStrategy)
	if err != nil {
		return Config{}, err
	}
	return Config{
		PreprocessorPath:    c.PreprocessorPath,
		Schema:              c.Schema,
		NumericStrategy:     num,
		CategoricalStrategy: cat,
	}, nil
}

// Result holds the transformed arrays. The target is the last column of
// Train and Test, and the last entry of FeatureNames.
type Result struct {
	Train            *mat.Dense
	Test             *mat.Dense
	PreprocessorPath string
	FeatureNames     []string
}

// DataTransformation fits the preprocessor on train data and applies it to both splits.
type DataTransformation struct {
	cfg     Config
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewDataTransformation creates the component. m may be nil.
func NewDataTransformation(cfg Config, logger *zap.Logger, m *metrics.Metrics) *DataTransformation {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DataTransformation{cfg: cfg, logger: logger, metrics: m}
}

// BuildPreprocessor returns an unfitted column transformer:
// num_pipeline imputes, parses and standardizes the numeric columns and
// cat_pipeline imputes, one-hot encodes and scales the categorical ones without centering.
func (d *DataTransformation) BuildPreprocessor() (*pipeline.ColumnTransformer, error) {
	s := d.cfg.Schema
	if err := s.Validate(); err != nil {
		return nil, apperr.Wrap("build preprocessor", err)
	}

	var groups []pipeline.Group
	if len(s.Numeric) > 0 {
		num := pipeline.NewPipeline(
			dataprep.NewSimpleImputer(d.cfg.NumericStrategy, dataprep.WithFillValue("0")),
			dataprep.NewNumericEncoder(),
			pipeline.Step{Name: "scaler", Transformer: stats.NewStandardScaler()},
		)
		groups = append(groups, pipeline.Group{Name: "num_pipeline", Pipeline: num, Columns: s.Numeric})
		d.logger.Info("Numerical columns", zap.Strings("columns", s.Numeric))
	}
	if len(s.Categorical) > 0 {
		cat := pipeline.NewPipeline(
			dataprep.NewSimpleImputer(d.cfg.CategoricalStrategy),
			dataprep.NewOneHotEncoder(),
			pipeline.Step{Name: "scaler", Transformer: stats.NewStandardScaler(stats.WithMean(false))},
		)
		cat.EncoderName = "one_hot_encoder"
		groups = append(groups, pipeline.Group{Name: "cat_pipeline", Pipeline: cat, Columns: s.Categorical})
		d.logger.Info("Categorical columns", zap.Strings("columns", s.Categorical))
	}
	return pipeline.NewColumnTransformer(groups...), nil
}

// Run reads both splits, fits the preprocessor on train, transforms train
// and test, appends the target and saves the fitted preprocessor.
func (d *DataTransformation) Run(trainPath, testPath string) (res *Result, err error) {
	if d.metrics != nil {
		defer func() { d.metrics.RecordRun(err) }()
	}

	start := time.Now()
	trainDF, err := data.ReadCSV(trainPath)
	if err != nil {
		return nil, apperr.Wrap("read train data", err)
	}
	testDF, err := data.ReadCSV(testPath)
	if err != nil {
		return nil, apperr.Wrap("read test data", err)
	}
	d.observe("read", start)
	if d.metrics != nil {
		d.metrics.RowsRead.WithLabelValues("train").Add(float64(trainDF.Len()))
		d.metrics.RowsRead.WithLabelValues("test").Add(float64(testDF.Len()))
	}
	d.logger.Info("read train and test data completed",
		zap.Int("train_rows", trainDF.Len()),
		zap.Int("test_rows", testDF.Len()))

	d.logger.Info("obtaining preprocessing object")
	preprocessor, err := d.BuildPreprocessor()
	if err != nil {
		return nil, err
	}

	target := d.cfg.Schema.Target
	if err := d.cfg.Schema.Check(trainDF, true); err != nil {
		return nil, apperr.Wrap("check train data", err)
	}
	if err := d.cfg.Schema.Check(testDF, true); err != nil {
		return nil, apperr.Wrap("check test data", err)
	}

	inputTrain, targetTrain, err := splitTarget(trainDF, target)
	if err != nil {
		return nil, apperr.Wrap("split train target", err)
	}
	inputTest, targetTest, err := splitTarget(testDF, target)
	if err != nil {
		return nil, apperr.Wrap("split test target", err)
	}

	d.logger.Info("applying preprocessing object on training dataframe and testing dataframe")
	start = time.Now()
	trainFeatures, err := preprocessor.FitTransform(inputTrain)
	if err != nil {
		return nil, apperr.Wrap("fit transform train data", err)
	}
	d.observe("fit_transform", start)

	start = time.Now()
	testFeatures, err := preprocessor.Transform(inputTest)
	if err != nil {
		return nil, apperr.Wrap("transform test data", err)
	}
	d.observe("transform", start)

	trainArr, err := appendColumn(trainFeatures, targetTrain)
	if err != nil {
		return nil, apperr.Wrap("append train target", err)
	}
	testArr, err := appendColumn(testFeatures, targetTest)
	if err != nil {
		return nil, apperr.Wrap("append test target", err)
	}

	start = time.Now()
	if err := artifact.Save(d.cfg.PreprocessorPath, preprocessor); err != nil {
		return nil, apperr.Wrap("save preprocessing object", err)
	}
	d.observe("save", start)
	d.logger.Info("saved preprocessing object", zap.String("path", d.cfg.PreprocessorPath))

	_, cols := trainArr.Dims()
	if d.metrics != nil {
		d.metrics.OutputColumns.Set(float64(cols))
	}
	return &Result{
		Train:            trainArr,
		Test:             testArr,
		PreprocessorPath: d.cfg.PreprocessorPath,
		FeatureNames:     append(preprocessor.FeatureNames(), target),
	}, nil
}

// LoadPreprocessor reads a preprocessor saved by Run.
func LoadPreprocessor(path string) (*pipeline.ColumnTransformer, error) {
	var ct pipeline.ColumnTransformer
	if err := artifact.Load(path, &ct); err != nil {
		return nil, apperr.Wrap("load preprocessing object", err)
	}
	if !ct.Fitted {
		return nil, apperr.Wrapf("load preprocessing object", "%s holds an unfitted preprocessor", path)
	}
	return &ct, nil
}

func (d *DataTransformation) observe(stage string, start time.Time) {
	if d.metrics != nil {
		d.metrics.ObserveStage(stage, start)
	}
}

// splitTarget separates the input features from the numeric target column.
func splitTarget(f *data.Frame, target string) (*data.Frame, []float64, error) {
	y, err := f.Float64Column(target)
	if err != nil {
		return nil, nil, err
	}
	X, err := f.Drop(target)
	if err != nil {
		return nil, nil, err
	}
	return X, y, nil
}

// appendColumn returns [X | y].
func appendColumn(X *mat.Dense, y []float64) (*mat.Dense, error) {
	r, c := X.Dims()
	if len(y) != r {
		return nil, fmt.Errorf("transform: %d target values for %d rows", len(y), r)
	}
	out := mat.NewDense(r, c+1, nil)
	out.Slice(0, r, 0, c).(*mat.Dense).Copy(X)
	out.SetCol(c, y)
	return out, nil
}
