package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"mlprep/pkg/dataprep"
	"mlprep/pkg/pipeline"
)

// EnvPrefix marks environment overrides, e.g. PREP_LOG__LEVEL=debug.
const EnvPrefix = "PREP_"

type SplitConfig struct {
	TestRatio float64 `koanf:"test_ratio"`
	Seed      int64   `koanf:"seed"`
}

type LogConfig struct {
	Level string `koanf:"level"`
	Dir   string `koanf:"dir"`
	JSON  bool   `koanf:"json"`
}

type Config struct {
	ArtifactsDir        string          `koanf:"artifacts_dir"`
	PreprocessorPath    string          `koanf:"preprocessor_path"`
	Schema              pipeline.Schema `koanf:"schema"`
	NumericStrategy     string          `koanf:"numeric_strategy"`
	CategoricalStrategy string          `koanf:"categorical_strategy"`
	Split               SplitConfig     `koanf:"split"`
	Log                 LogConfig       `koanf:"log"`
}

// ---------------------------------------------------------------------------
// Loader
// ---------------------------------------------------------------------------

// Load merges defaults, YAML (if present) and env-vars (prefix `PREP_`,
// delimiter `__`). A key is defaulted only when no source sets it.
func Load(path string) (Config, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return Config{}, fmt.Errorf("config: defaults: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: %w", err)
		}
	}
	if err := k.Load(env.ProviderWithValue(EnvPrefix, "__", envValue), nil); err != nil {
		return Config{}, fmt.Errorf("config: env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if cfg.PreprocessorPath == "" {
		cfg.PreprocessorPath = filepath.Join(cfg.ArtifactsDir, "preprocessor.gob")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	def := pipeline.StudentSchema()
	return Config{
		ArtifactsDir:        "artifacts",
		PreprocessorPath:    filepath.Join("artifacts", "preprocessor.gob"),
		Schema:              def,
		NumericStrategy:     string(dataprep.StrategyMedian),
		CategoricalStrategy: string(dataprep.StrategyMostFrequent),
		Split:               SplitConfig{TestRatio: 0.2, Seed: 42},
		Log:                 LogConfig{Level: "info", Dir: "logs"},
	}
}

// ---------------------------------------------------------------------------
// defaults & env
// ---------------------------------------------------------------------------

// defaults flattens Default for the confmap provider. The preprocessor path
// is left out so it follows artifacts_dir.
func defaults() map[string]interface{} {
	d := Default()
	return map[string]interface{}{
		"artifacts_dir":        d.ArtifactsDir,
		"schema.numeric":       d.Schema.Numeric,
		"schema.categorical":   d.Schema.Categorical,
		"schema.target":        d.Schema.Target,
		"numeric_strategy":     d.NumericStrategy,
		"categorical_strategy": d.CategoricalStrategy,
		"split.test_ratio":     d.Split.TestRatio,
		"split.seed":           d.Split.Seed,
		"log.level":            d.Log.Level,
		"log.dir":              d.Log.Dir,
		"log.json":             d.Log.JSON,
	}
}

// listKeys are env keys holding comma separated column lists.
var listKeys = map[string]bool{
	"schema__numeric":     true,
	"schema__categorical": true,
}

// envValue maps PREP_SCHEMA__NUMERIC=a,b to schema.numeric: [a b].
func envValue(key, value string) (string, interface{}) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	if !listKeys[key] {
		return key, value
	}
	cols := []string{}
	for _, c := range strings.Split(value, ",") {
		if c = strings.TrimSpace(c); c != "" {
			cols = append(cols, c)
		}
	}
	return key, cols
}

func (c Config) Validate() error {
	if err := c.Schema.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := dataprep.ParseStrategy(c.NumericStrategy); err != nil {
		return fmt.Errorf("config: numeric_strategy: %w", err)
	}
	st, err := dataprep.ParseStrategy(c.CategoricalStrategy)
	if err != nil {
		return fmt.Errorf("config: categorical_strategy: %w", err)
	}
	if st == dataprep.StrategyMean || st == dataprep.StrategyMedian {
		return fmt.Errorf("config: categorical_strategy %q needs numeric columns", st)
	}
	if c.Split.TestRatio <= 0 || c.Split.TestRatio >= 1 {
		return fmt.Errorf("config: split.test_ratio %v not in (0, 1)", c.Split.TestRatio)
	}
	return nil
}
