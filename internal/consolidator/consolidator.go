package consolidator

import (
	"strings"
	"time"

	infralogger "github.com/jonesrussell/north-cloud/spam-checker/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/domain"
)

// Classifier produces a verdict for one row. *classifier.Classifier
// implements it.
type Classifier interface {
	Classify(row domain.RawRow) domain.Verdict
}

// Consolidator groups classified rows by domain. Each Consolidate call owns
// its own accumulator map, so one Consolidator may serve concurrent calls.
type Consolidator struct {
	classifier Classifier
	order      TermOrder
	version    string
	logger     infralogger.Logger
}

// Option configures a Consolidator.
type Option func(*Consolidator)

// WithLogger sets the logger for the decision log.
func WithLogger(l infralogger.Logger) Option {
	return func(c *Consolidator) {
		c.logger = l
	}
}

// WithRuleSetVersion labels summaries with the rule set version.
func WithRuleSetVersion(v string) Option {
	return func(c *Consolidator) {
		c.version = v
	}
}

// New creates a Consolidator. order fixes term ordering in records and must
// be the one the Collator uses for the same output.
func New(c Classifier, order TermOrder, opts ...Option) *Consolidator {
	cons := &Consolidator{
		classifier: c,
		order:      order,
		logger:     infralogger.NewNop(),
	}
	for _, opt := range opts {
		opt(cons)
	}
	return cons
}

// RuleSetVersion returns the version label put on summaries.
func (c *Consolidator) RuleSetVersion() string {
	return c.version
}

// Collator returns a Collator sharing this Consolidator's term order.
func (c *Consolidator) Collator() *Collator {
	return NewCollator(c.order)
}

// Consolidate classifies rows and folds them into one record per domain.
// Rows without a domain are skipped and counted; rows whose optional numeric
// cells were unreadable are counted as type mismatches. Neither stops the
// batch. Records are sorted by domain key.
func (c *Consolidator) Consolidate(rows []domain.RawRow) ([]domain.ConsolidatedRecord, domain.Summary) {
	start := time.Now()
	summary := domain.NewSummary()
	summary.RuleSetVersion = c.version
	summary.RowsIn = len(rows)

	g := newGroup(c.order)
	for _, row := range rows {
		for _, m := range row.Mismatches {
			summary.TypeMismatches++
			c.logger.Warn("non-numeric value treated as absent",
				infralogger.String("domain", row.Domain),
				infralogger.Int("line", row.Line),
				infralogger.String("field", m.Field),
				infralogger.String("value", m.Value),
			)
		}

		key := row.Key()
		if key == "" {
			summary.Skip(domain.SkipMissingDomain)
			c.logger.Debug("row skipped",
				infralogger.Int("line", row.Line),
				infralogger.String("reason", domain.SkipMissingDomain),
			)
			continue
		}

		v := c.classifier.Classify(row)
		g.get(key, strings.TrimSpace(row.Domain)).addVerdict(v)
	}

	records := g.records()
	summary.CountDomains(records)
	summary.Duration = time.Since(start)

	for i := range records {
		c.logger.Debug("domain consolidated",
			infralogger.String("domain", records[i].Domain),
			infralogger.Bool("spam", records[i].Spam),
			infralogger.Strings("flagged", records[i].Flagged),
			infralogger.Strings("potential", records[i].Potential),
		)
	}

	return records, summary
}
