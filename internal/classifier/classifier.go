package classifier

import (
	"errors"
	"fmt"
	"strings"

	infralogger "github.com/jonesrussell/north-cloud/spam-checker/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/domain"
)

// DefaultLowRatingTerm is the flagged term added by the low-rating signal.
const DefaultLowRatingTerm = "Low DR"

// Classifier applies a RuleSet to raw rows. It is read-only after New and
// safe for concurrent use.
type Classifier struct {
	rules     *RuleSet
	engine    *ruleEngine
	lowRating *lowRatingRule
	logger    infralogger.Logger
}

// lowRatingRule flags a row whose Ahrefs DR is present and at or below threshold.
type lowRatingRule struct {
	threshold float64
	term      string
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithLowRating enables the low domain-rating signal.
func WithLowRating(threshold float64, term string) Option {
	return func(c *Classifier) {
		if term == "" {
			term = DefaultLowRatingTerm
		}
		c.lowRating = &lowRatingRule{threshold: threshold, term: term}
	}
}

// WithLogger sets the logger used for per-row debug output.
func WithLogger(l infralogger.Logger) Option {
	return func(c *Classifier) {
		c.logger = l
	}
}

// New builds a Classifier for rules.
func New(rules *RuleSet, opts ...Option) (*Classifier, error) {
	if rules == nil {
		return nil, errors.New("classifier: rule set is required")
	}

	c := &Classifier{
		rules:  rules,
		engine: newRuleEngine(rules.rules),
		logger: infralogger.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.lowRating != nil {
		if strings.Contains(c.lowRating.term, domain.TermSeparator) {
			return nil, &ConfigurationError{Index: -1, Pattern: c.lowRating.term, Reason: "low rating term " + separatorReason}
		}
		if i, ok := rules.Rank(c.lowRating.term); ok && rules.rules[i].Tier != TierSpam {
			return nil, &ConfigurationError{
				Index:   i,
				Pattern: c.lowRating.term,
				Reason:  fmt.Sprintf("low rating term is declared in the %s tier", rules.rules[i].Tier),
			}
		}
	}

	return c, nil
}

// RuleSet returns the rules the classifier was built with.
func (c *Classifier) RuleSet() *RuleSet {
	return c.rules
}

// Classify produces the verdict for one row. It has no side effects beyond
// debug logging.
func (c *Classifier) Classify(row domain.RawRow) domain.Verdict {
	message := collapseWhitespace(row.SpamMessage)

	flagged := []string{}
	potential := []string{}
	for _, idx := range c.engine.match(foldForMatch(message)) {
		r := c.rules.rules[idx]
		if r.Tier == TierSpam {
			flagged = append(flagged, r.Pattern)
		} else {
			potential = append(potential, r.Pattern)
		}
	}

	if lr := c.lowRating; lr != nil && row.AhrefsDR.Valid && row.AhrefsDR.Float64 <= lr.threshold {
		if !containsFold(flagged, lr.term) {
			flagged = append(flagged, lr.term)
		}
	}

	potential = withoutFold(potential, flagged)

	v := domain.Verdict{
		Domain:         strings.TrimSpace(row.Domain),
		FlaggedTerms:   flagged,
		PotentialTerms: potential,
		IsSpam:         len(flagged) > 0,
		Message:        message,
		AhrefsDR:       row.AhrefsDR,
		SZScore:        row.SZScore,
	}

	if v.IsSpam || len(potential) > 0 {
		c.logger.Debug("row matched keywords",
			infralogger.String("domain", v.Domain),
			infralogger.Int("line", row.Line),
			infralogger.Strings("flagged", flagged),
			infralogger.Strings("potential", potential),
		)
	}

	return v
}

func containsFold(list []string, term string) bool {
	for _, t := range list {
		if strings.EqualFold(t, term) {
			return true
		}
	}
	return false
}

// withoutFold returns list minus any entry present in drop.
func withoutFold(list, drop []string) []string {
	out := list[:0]
	for _, t := range list {
		if !containsFold(drop, t) {
			out = append(out, t)
		}
	}
	return out
}
