package config_test

import (
	"os"
	"path/filepath"
	"testing"

	infraconfig "github.com/jonesrussell/north-cloud/spam-checker/infrastructure/config"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/config"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/ingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "none.env"))

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	assert.Equal(t, "spam-checker", cfg.Service.Name)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Rules.LowRating.Enabled)
	require.NotNil(t, cfg.Rules.LowRating.Threshold)
	assert.InDelta(t, 5, *cfg.Rules.LowRating.Threshold, 0)
	assert.Equal(t, "Low DR", cfg.Rules.LowRating.Term)
	assert.Equal(t, ingest.FormatCSV, cfg.OutputFormat())
	assert.Equal(t, "sqlite3", cfg.Store.Driver)
	assert.Equal(t, 8077, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Pipeline.Concurrency)
}

func TestLoad_FileAndEnv(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "none.env"))
	t.Setenv("SPAMCHECK_STORE_DSN", "postgres://spam@db/spam?sslmode=disable")

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
rules:
  path: rules.yml
  low_rating:
    enabled: true
    threshold: 10
output:
  dir: out
  format: xlsx
store:
  enabled: true
  driver: postgres
  dsn: ignored
pipeline:
  concurrency: 8
`), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "rules.yml", cfg.Rules.Path)
	assert.True(t, cfg.Rules.LowRating.Enabled)
	assert.InDelta(t, 10, cfg.Rules.LowRating.ThresholdValue(), 0)
	assert.Equal(t, ingest.FormatXLSX, cfg.OutputFormat())
	assert.Equal(t, "postgres://spam@db/spam?sslmode=disable", cfg.Store.DSN)
	assert.Equal(t, 8, cfg.Pipeline.Concurrency)
}

func ptr[T any](v T) *T { return &v }

func TestLoad_ZeroThresholdIsKept(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "none.env"))

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
rules:
  low_rating:
    enabled: true
    threshold: 0
`), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.NotNil(t, cfg.Rules.LowRating.Threshold)
	assert.Zero(t, *cfg.Rules.LowRating.Threshold)
	assert.Zero(t, cfg.Rules.LowRating.ThresholdValue())
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*config.Config)
		field  string
	}{
		{"bad format", func(c *config.Config) { c.Output.Format = "ods" }, "output.format"},
		{"bad driver", func(c *config.Config) { c.Store.Driver = "mysql" }, "store.driver"},
		{"bad port", func(c *config.Config) { c.Server.Port = 70000 }, "server.port"},
		{"bad level", func(c *config.Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"negative threshold", func(c *config.Config) { c.Rules.LowRating.Threshold = ptr(-1.0) }, "rules.low_rating.threshold"},
		{"no workers", func(c *config.Config) { c.Pipeline.Concurrency = -2 }, "pipeline.concurrency"},
		{"in-memory sqlite", func(c *config.Config) { c.Store.Enabled = true; c.Store.DSN = ":memory:" }, "store.dsn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.Default()
			require.NoError(t, cfg.Validate())

			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)

			var verr *infraconfig.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}
