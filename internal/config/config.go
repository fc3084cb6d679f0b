// Package config holds the yaml configuration shared by the train, predict,
// and serve commands. There is deliberately no ambient path state: every
// location (dataset, bundle) is carried explicitly in the configuration or
// overridden by CLI flags.
package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/helix-lab/signal-ml/pkg/errors"
)

// TrainingConfig configures the training orchestrator.
type TrainingConfig struct {
	// DatasetPath is the bars dataset (.csv, .parquet, or .duckdb).
	DatasetPath string `json:"dataset_path" yaml:"dataset_path" jsonschema:"description=Path to the bars dataset (.csv .parquet or .duckdb)"`

	// Horizon is the number of bars ahead for the forward-return label.
	Horizon int `json:"horizon" yaml:"horizon" jsonschema:"description=Bars ahead for the forward return,default=10" validate:"min=1"`

	// Threshold is the minimum forward return labeled as profitable.
	Threshold float64 `json:"threshold" yaml:"threshold" jsonschema:"description=Minimum forward return considered profitable,default=0.001"`

	// TestFraction is the chronological suffix held out for evaluation.
	TestFraction float64 `json:"test_fraction" yaml:"test_fraction" jsonschema:"description=Fraction of valid rows held out for testing,default=0.2" validate:"gt=0,lt=1"`

	// MinSamples is the minimum number of valid rows required to train.
	MinSamples int `json:"min_samples" yaml:"min_samples" jsonschema:"description=Minimum valid rows required to train,default=100" validate:"min=1"`

	// Seed fixes stochastic steps for reproducibility.
	Seed int64 `json:"seed" yaml:"seed" jsonschema:"description=Random seed for reproducible fits,default=42"`
}

// ModelConfig locates the persisted pipeline bundle.
type ModelConfig struct {
	// BundlePath is where the pipeline bundle is written and read.
	BundlePath string `json:"bundle_path" yaml:"bundle_path" jsonschema:"description=Path of the persisted pipeline bundle,default=storage/pipeline_bundle.json" validate:"required"`
}

// PredictionConfig configures the inference adapter.
type PredictionConfig struct {
	// MinBars is the minimum history required for a non-degraded prediction.
	MinBars int `json:"min_bars" yaml:"min_bars" jsonschema:"description=Minimum bars required for a full prediction,default=60" validate:"min=1"`
}

// ServerConfig configures the HTTP predict surface.
type ServerConfig struct {
	// Listen is the address the HTTP server binds to.
	Listen string `json:"listen" yaml:"listen" jsonschema:"description=HTTP listen address,default=:8090" validate:"required"`
}

// Config is the root configuration document.
type Config struct {
	Training   TrainingConfig   `json:"training" yaml:"training"`
	Model      ModelConfig      `json:"model" yaml:"model"`
	Prediction PredictionConfig `json:"prediction" yaml:"prediction"`
	Server     ServerConfig     `json:"server" yaml:"server"`
}

// DefaultConfig returns the configuration used when no file overrides it.
func DefaultConfig() Config {
	return Config{
		Training: TrainingConfig{
			Horizon:      10,
			Threshold:    0.001,
			TestFraction: 0.2,
			MinSamples:   100,
			Seed:         42,
		},
		Model: ModelConfig{
			BundlePath: "storage/pipeline_bundle.json",
		},
		Prediction: PredictionConfig{
			MinBars: 60,
		},
		Server: ServerConfig{
			Listen: ":8090",
		},
	}
}

// Load reads a yaml config file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config at %s", path)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to parse config at %s", path)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the configuration's declared constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	return nil
}
