package transform

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gonum.org/v1/gonum/mat"

	"mlprep/pkg/apperr"
	"mlprep/pkg/config"
	"mlprep/pkg/data"
	"mlprep/pkg/metrics"
	"mlprep/pkg/pipeline"
)

const header = "gender,race_ethnicity,parental_level_of_education,lunch,test_preparation_course,math_score,reading_score,writing_score\n"

var trainRows = []string{
	"female,group B,bachelor's degree,standard,none,72,72,74",
	"female,group C,some college,standard,completed,69,90,88",
	"female,group B,master's degree,standard,none,90,95,93",
	"male,group A,associate's degree,free/reduced,none,47,57,44",
	"male,group C,some college,standard,none,76,78,75",
	"female,,associate's degree,standard,none,71,83,NA",
	"male,group B,some college,free/reduced,completed,88,,86",
	"male,group C,high school,standard,none,40,43,39",
}

var testRows = []string{
	"male,group A,high school,standard,completed,64,64,67",
	"female,group C,master's degree,free/reduced,none,38,60,",
	"male,group B,,standard,none,58,54,52",
}

func writeCSV(t *testing.T, dir, name string, rows []string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(header+strings.Join(rows, "\n")+"\n"), 0o644))
	return path
}

func newTransformation(t *testing.T, dir string, m *metrics.Metrics) *DataTransformation {
	t.Helper()
	cfg := config.Default()
	cfg.PreprocessorPath = filepath.Join(dir, "artifacts", "preprocessor.gob")
	tc, err := ConfigFrom(cfg)
	require.NoError(t, err)
	return NewDataTransformation(tc, zaptest.NewLogger(t), m)
}

func TestRunShapesAndTarget(t *testing.T) {
	dir := t.TempDir()
	trainPath := writeCSV(t, dir, "train.csv", trainRows)
	testPath := writeCSV(t, dir, "test.csv", testRows)

	m := metrics.NewMetrics()
	res, err := newTransformation(t, dir, m).Run(trainPath, testPath)
	require.NoError(t, err)

	// 2 numeric + gender(2) + race(3) + education(5) + lunch(2) + prep(2) + target
	want := 2 + 2 + 3 + 5 + 2 + 2 + 1
	r, c := res.Train.Dims()
	assert.Equal(t, len(trainRows), r)
	assert.Equal(t, want, c)
	r, c = res.Test.Dims()
	assert.Equal(t, len(testRows), r)
	assert.Equal(t, want, c)
	assert.Len(t, res.FeatureNames, want)
	assert.Equal(t, "math_score", res.FeatureNames[want-1])
	assert.Equal(t, "num_pipeline__writing_score", res.FeatureNames[0])

	assert.Equal(t, []float64{72, 69, 90, 47, 76, 71, 88, 40}, mat.Col(nil, want-1, res.Train))
	assert.Equal(t, []float64{64, 38, 58}, mat.Col(nil, want-1, res.Test))

	// standardized numeric train columns have zero mean
	for j := 0; j < 2; j++ {
		col := mat.Col(nil, j, res.Train)
		sum := 0.0
		for _, v := range col {
			require.False(t, math.IsNaN(v))
			sum += v
		}
		assert.InDelta(t, 0.0, sum/float64(len(col)), 1e-9)
	}

	assert.FileExists(t, res.PreprocessorPath)
	assert.Equal(t, float64(len(trainRows)), testutil.ToFloat64(m.RowsRead.WithLabelValues("train")))
	assert.Equal(t, float64(want), testutil.ToFloat64(m.OutputColumns))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("ok")))
}

func TestReloadedPreprocessorIsBitExact(t *testing.T) {
	dir := t.TempDir()
	trainPath := writeCSV(t, dir, "train.csv", trainRows)
	testPath := writeCSV(t, dir, "test.csv", testRows)

	res, err := newTransformation(t, dir, nil).Run(trainPath, testPath)
	require.NoError(t, err)

	ct, err := LoadPreprocessor(res.PreprocessorPath)
	require.NoError(t, err)

	testDF, err := data.ReadCSV(testPath)
	require.NoError(t, err)
	input, err := testDF.Drop("math_score")
	require.NoError(t, err)
	got, err := ct.Transform(input)
	require.NoError(t, err)

	r, c := got.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			assert.Equal(t, math.Float64bits(res.Test.At(i, j)), math.Float64bits(got.At(i, j)),
				"cell (%d,%d)", i, j)
		}
	}
}

func TestRunWrapsFailures(t *testing.T) {
	dir := t.TempDir()
	trainPath := writeCSV(t, dir, "train.csv", trainRows)

	tests := []struct {
		name     string
		testPath string
		is       error
	}{
		{"missing file", filepath.Join(dir, "absent.csv"), fs.ErrNotExist},
		{"unknown category", writeCSV(t, dir, "unknown.csv", []string{
			"other,group A,high school,standard,none,50,50,50",
		}), nil},
		{"missing column", func() string {
			p := filepath.Join(dir, "narrow.csv")
			require.NoError(t, os.WriteFile(p, []byte("gender,math_score\nmale,3\n"), 0o644))
			return p
		}(), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := metrics.NewMetrics()
			_, err := newTransformation(t, dir, m).Run(trainPath, tt.testPath)
			require.Error(t, err)

			var ae *apperr.Error
			assert.True(t, errors.As(err, &ae), "want *apperr.Error, got %T", err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
			assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("error")))
		})
	}
}

func TestBuildPreprocessor(t *testing.T) {
	d := newTransformation(t, t.TempDir(), nil)
	ct, err := d.BuildPreprocessor()
	require.NoError(t, err)
	require.Len(t, ct.Groups, 2)

	assert.Equal(t, "num_pipeline", ct.Groups[0].Name)
	assert.Equal(t, []string{"imputer", "encoder", "scaler"}, ct.Groups[0].Pipeline.StepNames())
	assert.Equal(t, "cat_pipeline", ct.Groups[1].Name)
	assert.Equal(t, []string{"imputer", "one_hot_encoder", "scaler"}, ct.Groups[1].Pipeline.StepNames())

	bad := NewDataTransformation(Config{Schema: pipeline.Schema{Target: "y"}}, nil, nil)
	_, err = bad.BuildPreprocessor()
	assert.Error(t, err)
}

func TestBuildPreprocessorSingleGroup(t *testing.T) {
	d := NewDataTransformation(Config{
		Schema:          pipeline.Schema{Numeric: []string{"reading_score"}, Target: "math_score"},
		NumericStrategy: "median",
	}, nil, nil)
	ct, err := d.BuildPreprocessor()
	require.NoError(t, err)
	require.Len(t, ct.Groups, 1)
	assert.Equal(t, "num_pipeline", ct.Groups[0].Name)
}

func TestAppendColumn(t *testing.T) {
	X := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	out, err := appendColumn(X, []float64{5, 6})
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 6}, mat.Col(nil, 2, out))

	_, err = appendColumn(X, []float64{5})
	assert.ErrorContains(t, err, "1 target values for 2 rows")
}

func TestLoadPreprocessorMissing(t *testing.T) {
	_, err := LoadPreprocessor(filepath.Join(t.TempDir(), "none.gob"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestColumnCountProperty(t *testing.T) {
	// numeric count + sum of categories + 1 target for varying category sets
	for n := 1; n <= 4; n++ {
		t.Run(fmt.Sprintf("%d_genders", n), func(t *testing.T) {
			dir := t.TempDir()
			var rows []string
			for i := 0; i < 6; i++ {
				rows = append(rows, fmt.Sprintf("g%d,group A,high school,standard,none,%d,%d,%d", i%n, 50+i, 40+i, 30+i))
			}
			trainPath := writeCSV(t, dir, "train.csv", rows)
			res, err := newTransformation(t, dir, nil).Run(trainPath, trainPath)
			require.NoError(t, err)
			_, c := res.Train.Dims()
			assert.Equal(t, 2+n+1+1+1+1+1, c)
		})
	}
}
