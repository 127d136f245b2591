package logger_test

import (
	"context"
	"testing"

	"github.com/jonesrussell/north-cloud/spam-checker/infrastructure/logger"
)

func TestWithContext_FromContext_RoundTrip(t *testing.T) {
	t.Parallel()

	l := mustTestLogger(t)
	ctx := logger.WithContext(context.Background(), l)

	if got := logger.FromContext(ctx); got != l {
		t.Errorf("FromContext returned %v, want the stored logger %v", got, l)
	}
}

func TestFromContext_NoLogger_ReturnsSharedFallback(t *testing.T) {
	t.Parallel()

	a := logger.FromContext(context.Background())
	b := logger.FromContext(context.Background())

	if a == nil {
		t.Fatal("FromContext on empty context returned nil, want fallback logger")
	}
	if a != b {
		t.Error("FromContext returned different fallback instances, want the same one")
	}

	// Warn-level fallback filters these but must not panic.
	a.Debug("debug message")
	a.Warn("message with field", logger.String("domain", "example.com"))
}

func TestNew_ConsoleFormat(t *testing.T) {
	t.Parallel()

	l, err := logger.New(logger.Config{Level: "debug", Format: logger.FormatConsole, OutputPaths: []string{"stderr"}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	enriched := l.With(logger.String("run_id", "abc"))
	if enriched == l {
		t.Error("With() returned the same logger, want a new instance")
	}
}

func TestConfig_SetDefaults(t *testing.T) {
	t.Parallel()

	var cfg logger.Config
	cfg.SetDefaults()

	if cfg.Level != logger.DefaultLevel {
		t.Errorf("Level = %q, want %q", cfg.Level, logger.DefaultLevel)
	}
	if cfg.Format != logger.FormatJSON {
		t.Errorf("Format = %q, want %q", cfg.Format, logger.FormatJSON)
	}
	if len(cfg.OutputPaths) != 1 || cfg.OutputPaths[0] != "stderr" {
		t.Errorf("OutputPaths = %v, want [stderr]", cfg.OutputPaths)
	}
}

func mustTestLogger(t *testing.T) logger.Logger {
	t.Helper()

	l, err := logger.New(logger.Config{
		Level:       "warn",
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		t.Fatalf("failed to create test logger: %v", err)
	}

	return l
}
