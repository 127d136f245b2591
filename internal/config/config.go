// Package config holds the spam-checker configuration.
package config

import (
	"errors"
	"fmt"

	infraconfig "github.com/jonesrussell/north-cloud/spam-checker/infrastructure/config"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/ingest"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/store"
)

// Default configuration values.
const (
	defaultServiceName        = "spam-checker"
	defaultServiceVersion     = "1.0.0"
	defaultLowRatingThreshold = 5
	defaultLowRatingTerm      = "Low DR"
	defaultOutputDir          = "."
	defaultOutputFormat       = "csv"
	defaultStoreDriver        = store.DriverSQLite
	defaultStoreDSN           = "spamcheck.db"
	defaultConcurrency        = 4
)

// Config holds all configuration for the spam checker.
type Config struct {
	Service  ServiceConfig             `yaml:"service"`
	Logging  infraconfig.LoggingConfig `yaml:"logging"`
	Rules    RulesConfig               `yaml:"rules"`
	Input    InputConfig               `yaml:"input"`
	Output   OutputConfig              `yaml:"output"`
	Store    StoreConfig               `yaml:"store"`
	Metrics  MetricsConfig             `yaml:"metrics"`
	Server   infraconfig.ServerConfig  `yaml:"server"`
	Pipeline PipelineConfig            `yaml:"pipeline"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Debug   bool   `env:"APP_DEBUG" yaml:"debug"`
}

// RulesConfig selects the keyword rule set.
type RulesConfig struct {
	// Path to a rules YAML file; empty uses the built-in list.
	Path      string          `env:"SPAMCHECK_RULES_PATH" yaml:"path"`
	LowRating LowRatingConfig `yaml:"low_rating"`
}

// LowRatingConfig configures the low Ahrefs DR signal.
type LowRatingConfig struct {
	Enabled bool `env:"SPAMCHECK_LOW_DR_ENABLED" yaml:"enabled"`
	// Threshold is nil when unset so that an explicit 0 is kept.
	Threshold *float64 `env:"SPAMCHECK_LOW_DR_THRESHOLD" yaml:"threshold"`
	Term      string   `yaml:"term"`
}

// InputConfig holds loader settings.
type InputConfig struct {
	CorrectionsPath string `env:"SPAMCHECK_CORRECTIONS_PATH" yaml:"corrections_path"`
}

// OutputConfig holds writer settings.
type OutputConfig struct {
	Dir    string `env:"SPAMCHECK_OUTPUT_DIR" yaml:"dir"`
	Format string `yaml:"format"`
}

// StoreConfig holds the optional record store settings.
type StoreConfig struct {
	Enabled bool   `env:"SPAMCHECK_STORE_ENABLED" yaml:"enabled"`
	Driver  string `env:"SPAMCHECK_STORE_DRIVER"  yaml:"driver"`
	DSN     string `env:"SPAMCHECK_STORE_DSN"     yaml:"dsn"`
}

// MetricsConfig holds metrics export settings.
type MetricsConfig struct {
	// TextfilePath, when set, receives metrics after batch commands.
	TextfilePath string `env:"SPAMCHECK_METRICS_TEXTFILE" yaml:"textfile_path"`
}

// PipelineConfig holds worker pool settings.
type PipelineConfig struct {
	Concurrency int `env:"SPAMCHECK_CONCURRENCY" yaml:"concurrency"`
}

// Load loads configuration from path and validates it. A missing file
// yields defaults plus environment overrides.
func Load(path string) (*Config, error) {
	cfg, err := infraconfig.LoadWithDefaults[Config](path, setDefaults)
	if err != nil {
		return nil, err
	}
	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Default returns the configuration used when no file or environment is set.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

func setDefaults(cfg *Config) {
	if cfg.Service.Name == "" {
		cfg.Service.Name = defaultServiceName
	}
	if cfg.Service.Version == "" {
		cfg.Service.Version = defaultServiceVersion
	}
	cfg.Logging.SetDefaults()
	if cfg.Rules.LowRating.Threshold == nil {
		threshold := float64(defaultLowRatingThreshold)
		cfg.Rules.LowRating.Threshold = &threshold
	}
	if cfg.Rules.LowRating.Term == "" {
		cfg.Rules.LowRating.Term = defaultLowRatingTerm
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = defaultOutputDir
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = defaultOutputFormat
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = defaultStoreDriver
	}
	if cfg.Store.DSN == "" {
		cfg.Store.DSN = defaultStoreDSN
	}
	cfg.Server.SetDefaults()
	if cfg.Pipeline.Concurrency == 0 {
		cfg.Pipeline.Concurrency = defaultConcurrency
	}
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Server.Validate(); err != nil {
		errs = append(errs, err)
	}
	if _, err := ingest.ParseFormat(c.Output.Format); err != nil {
		errs = append(errs, &infraconfig.ValidationError{Field: "output.format", Message: "must be csv or xlsx"})
	}
	if err := infraconfig.ValidateOneOf("store.driver", c.Store.Driver, store.DriverSQLite, store.DriverPostgres); err != nil {
		errs = append(errs, err)
	}
	if c.Store.Enabled {
		if err := infraconfig.ValidateRequired("store.dsn", c.Store.DSN); err != nil {
			errs = append(errs, err)
		} else if store.CheckDSN(c.Store.Driver, c.Store.DSN) != nil {
			errs = append(errs, &infraconfig.ValidationError{Field: "store.dsn", Message: "must name a database file, in-memory sqlite is not supported"})
		}
	}
	if c.Rules.LowRating.Threshold != nil && *c.Rules.LowRating.Threshold < 0 {
		errs = append(errs, &infraconfig.ValidationError{Field: "rules.low_rating.threshold", Message: "must not be negative"})
	}
	if c.Pipeline.Concurrency < 1 {
		errs = append(errs, &infraconfig.ValidationError{Field: "pipeline.concurrency", Message: "must be at least 1"})
	}
	return errors.Join(errs...)
}

// ThresholdValue returns the configured threshold, or the default when unset.
func (c *LowRatingConfig) ThresholdValue() float64 {
	if c.Threshold == nil {
		return defaultLowRatingThreshold
	}
	return *c.Threshold
}

// OutputFormat returns the validated output format.
func (c *Config) OutputFormat() ingest.Format {
	f, err := ingest.ParseFormat(c.Output.Format)
	if err != nil {
		return ingest.FormatCSV
	}
	return f
}
