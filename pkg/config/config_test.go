package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)

	assert.Equal(t, "artifacts", cfg.ArtifactsDir)
	assert.Equal(t, filepath.Join("artifacts", "preprocessor.gob"), cfg.PreprocessorPath)
	assert.Equal(t, []string{"writing_score", "reading_score"}, cfg.Schema.Numeric)
	assert.Len(t, cfg.Schema.Categorical, 5)
	assert.Equal(t, "math_score", cfg.Schema.Target)
	assert.Equal(t, "median", cfg.NumericStrategy)
	assert.Equal(t, "most_frequent", cfg.CategoricalStrategy)
	assert.Equal(t, 0.2, cfg.Split.TestRatio)
	assert.Equal(t, int64(42), cfg.Split.Seed)
	assert.Equal(t, Default(), cfg)
}

func TestLoadYAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prep.yml")
	yml := []byte(`artifacts_dir: out
schema:
  numeric: [age]
  categorical: [city]
  target: income
split:
  test_ratio: 0.3
log:
  level: debug
`)
	require.NoError(t, os.WriteFile(path, yml, 0o644))
	t.Setenv("PREP_LOG__LEVEL", "warn")
	t.Setenv("PREP_NUMERIC_STRATEGY", "mean")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "out", cfg.ArtifactsDir)
	assert.Equal(t, filepath.Join("out", "preprocessor.gob"), cfg.PreprocessorPath)
	assert.Equal(t, []string{"age"}, cfg.Schema.Numeric)
	assert.Equal(t, []string{"city"}, cfg.Schema.Categorical)
	assert.Equal(t, "income", cfg.Schema.Target)
	assert.Equal(t, 0.3, cfg.Split.TestRatio)
	assert.Equal(t, "warn", cfg.Log.Level, "env overrides file")
	assert.Equal(t, "mean", cfg.NumericStrategy)
}

func TestLoadEnvColumnLists(t *testing.T) {
	t.Setenv("PREP_SCHEMA__NUMERIC", "writing_score, reading_score")
	t.Setenv("PREP_SCHEMA__CATEGORICAL", "gender,lunch")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)
	assert.Equal(t, []string{"writing_score", "reading_score"}, cfg.Schema.Numeric)
	assert.Equal(t, []string{"gender", "lunch"}, cfg.Schema.Categorical)
}

func TestLoadEnvEmptyColumnList(t *testing.T) {
	t.Setenv("PREP_SCHEMA__CATEGORICAL", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Schema.Categorical)
	assert.Len(t, cfg.Schema.Numeric, 2)
}

func TestLoadKeepsExplicitZeroSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prep.yml")
	require.NoError(t, os.WriteFile(path, []byte("split:\n  seed: 0\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(0), cfg.Split.Seed)
	assert.Equal(t, 0.2, cfg.Split.TestRatio)

	t.Setenv("PREP_SPLIT__SEED", "0")
	cfg, err = Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), cfg.Split.Seed)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yml  string
	}{
		{"bad strategy", "numeric_strategy: knn\n"},
		{"numeric strategy on categories", "categorical_strategy: median\n"},
		{"overlap", "schema:\n  numeric: [a]\n  categorical: [a]\n"},
		{"ratio", "split:\n  test_ratio: 1.5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "prep.yml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yml), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prep.yml")
	require.NoError(t, os.WriteFile(path, []byte("schema: [unterminated\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
