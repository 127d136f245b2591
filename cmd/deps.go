package cmd

import (
	"context"
	"fmt"

	"github.com/jonesrussell/north-cloud/spam-checker/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/classifier"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/config"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/consolidator"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/ingest"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/logging"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/pipeline"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/store"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/telemetry"
)

// commandDeps holds the components shared by the subcommands.
type commandDeps struct {
	Config       *config.Config
	Logger       logger.Logger
	RuleSet      *classifier.RuleSet
	Classifier   *classifier.Classifier
	Consolidator *consolidator.Consolidator
	Runner       *pipeline.Runner
	Telemetry    *telemetry.Provider
	// Store is nil unless store.enabled is set.
	Store *store.Store
}

// newCommandDeps loads configuration and builds the engine. A rule set or
// corrections file that fails to load is fatal.
func newCommandDeps(ctx context.Context) (*commandDeps, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	rules, err := loadRuleSet(cfg)
	if err != nil {
		return nil, err
	}

	opts := []classifier.Option{classifier.WithLogger(log)}
	if lr := cfg.Rules.LowRating; lr.Enabled {
		opts = append(opts, classifier.WithLowRating(lr.ThresholdValue(), lr.Term))
	}
	c, err := classifier.New(rules, opts...)
	if err != nil {
		return nil, fmt.Errorf("create classifier: %w", err)
	}

	var corrections *ingest.Corrections
	if path := cfg.Input.CorrectionsPath; path != "" {
		corrections, err = ingest.LoadCorrections(path)
		if err != nil {
			return nil, fmt.Errorf("load corrections: %w", err)
		}
		log.Info("Loaded corrections",
			logger.String("path", path),
			logger.Int("count", corrections.Len()),
		)
	}

	cons := consolidator.New(c, rules,
		consolidator.WithLogger(log),
		consolidator.WithRuleSetVersion(rules.Version()),
	)
	tel := telemetry.NewProvider()
	runner := pipeline.NewRunner(cons, pipeline.Config{
		Concurrency: cfg.Pipeline.Concurrency,
		Corrections: corrections,
		Telemetry:   tel,
	}, logging.NewAdapter(log))

	deps := &commandDeps{
		Config:       cfg,
		Logger:       log,
		RuleSet:      rules,
		Classifier:   c,
		Consolidator: cons,
		Runner:       runner,
		Telemetry:    tel,
	}

	if cfg.Store.Enabled {
		deps.Store, err = store.Open(ctx, cfg.Store.Driver, cfg.Store.DSN, cons.Collator())
		if err != nil {
			return nil, fmt.Errorf("open record store: %w", err)
		}
		log.Info("Record store opened", logger.String("driver", cfg.Store.Driver))
	}

	log.Debug("Engine ready",
		logger.String("rule_set_version", rules.Version()),
		logger.Int("rules", rules.Len()),
		logger.Bool("low_rating", cfg.Rules.LowRating.Enabled),
	)
	return deps, nil
}

func loadRuleSet(cfg *config.Config) (*classifier.RuleSet, error) {
	if cfg.Rules.Path == "" {
		return classifier.DefaultRuleSet(), nil
	}
	rules, err := classifier.LoadRuleSet(cfg.Rules.Path)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	return rules, nil
}

// Close releases the store and flushes the logger.
func (d *commandDeps) Close() {
	if d.Store != nil {
		if err := d.Store.Close(); err != nil {
			d.Logger.Warn("Failed to close record store", logger.Error(err))
		}
	}
	_ = d.Logger.Sync()
}

// writeMetrics writes the metrics textfile when one is configured.
func (d *commandDeps) writeMetrics() {
	path := d.Config.Metrics.TextfilePath
	if path == "" {
		return
	}
	if err := d.Telemetry.WriteTextfile(path); err != nil {
		d.Logger.Warn("Failed to write metrics textfile", logger.Error(err))
	}
}

// persist merges records into the store and records the run. It is a no-op
// without a store.
func (d *commandDeps) persist(ctx context.Context, command string, sources []string, res *pipeline.Result) error {
	if d.Store == nil {
		return nil
	}

	if _, err := d.Store.Merge(ctx, res.Records); err != nil {
		return fmt.Errorf("merge into record store: %w", err)
	}

	run := &store.Run{
		ID:      res.RunID,
		Command: command,
		Sources: sources,
		Summary: res.Summary,
	}
	if err := d.Store.RecordRun(ctx, run); err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	d.Logger.Info("Records persisted",
		logger.String("run_id", run.ID.String()),
		logger.Int("records", len(res.Records)),
	)
	return nil
}
