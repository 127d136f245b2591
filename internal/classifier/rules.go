// Package classifier turns raw export rows into per-row spam verdicts using a
// versioned keyword rule set.
package classifier

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jonesrussell/north-cloud/spam-checker/internal/domain"
)

// Tier is the classification bucket of a keyword.
type Tier string

// Tiers, strongest first.
const (
	TierSpam      Tier = "spam"
	TierPotential Tier = "potential"
)

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	return t == TierSpam || t == TierPotential
}

// Rule is a literal, case-insensitive substring pattern and its tier.
type Rule struct {
	Pattern string `json:"pattern" yaml:"pattern"`
	Tier    Tier   `json:"tier"    yaml:"tier"`
}

// ErrInvalidRuleSet is wrapped by every ConfigurationError.
var ErrInvalidRuleSet = errors.New("invalid rule set")

// ConfigurationError reports a rule set the classifier refuses to run with.
type ConfigurationError struct {
	Index   int
	Pattern string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	if e.Index < 0 {
		return "rule set: " + e.Reason
	}
	return fmt.Sprintf("rule %d (%q): %s", e.Index, e.Pattern, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrInvalidRuleSet
}

// RuleSet is an ordered, immutable list of rules.
type RuleSet struct {
	version string
	rules   []Rule
	rank    map[string]int // folded pattern -> position
}

var separatorReason = fmt.Sprintf("contains the list separator %q", domain.TermSeparator)

// NewRuleSet validates rules and returns an immutable RuleSet.
// Empty patterns, unknown tiers and duplicate patterns (within or across
// tiers, compared case-insensitively) are rejected: a pattern must map to
// exactly one tier. A pattern may not contain the term list separator, which
// would split it in two when a written file is read back.
func NewRuleSet(version string, rules []Rule) (*RuleSet, error) {
	rs := &RuleSet{
		version: version,
		rules:   make([]Rule, 0, len(rules)),
		rank:    make(map[string]int, len(rules)),
	}

	for i, r := range rules {
		pattern := strings.TrimSpace(r.Pattern)
		if pattern == "" {
			return nil, &ConfigurationError{Index: i, Pattern: r.Pattern, Reason: "empty pattern"}
		}
		if !r.Tier.Valid() {
			return nil, &ConfigurationError{Index: i, Pattern: r.Pattern, Reason: fmt.Sprintf("unknown tier %q", r.Tier)}
		}
		if strings.Contains(pattern, domain.TermSeparator) {
			return nil, &ConfigurationError{Index: i, Pattern: r.Pattern, Reason: separatorReason}
		}

		key := foldForMatch(pattern)
		if prev, dup := rs.rank[key]; dup {
			return nil, &ConfigurationError{
				Index:   i,
				Pattern: r.Pattern,
				Reason:  fmt.Sprintf("duplicates rule %d (%s tier)", prev, rs.rules[prev].Tier),
			}
		}

		rs.rank[key] = len(rs.rules)
		rs.rules = append(rs.rules, Rule{Pattern: pattern, Tier: r.Tier})
	}

	return rs, nil
}

// NewRuleSetFromTiers builds a rule set with all spam patterns first, then
// all potential patterns.
func NewRuleSetFromTiers(version string, spam, potential []string) (*RuleSet, error) {
	rules := make([]Rule, 0, len(spam)+len(potential))
	for _, p := range spam {
		rules = append(rules, Rule{Pattern: p, Tier: TierSpam})
	}
	for _, p := range potential {
		rules = append(rules, Rule{Pattern: p, Tier: TierPotential})
	}
	return NewRuleSet(version, rules)
}

// Version returns the rule set version label.
func (rs *RuleSet) Version() string {
	return rs.version
}

// Rules returns a copy of the rules in declared order.
func (rs *RuleSet) Rules() []Rule {
	return slices.Clone(rs.rules)
}

// Len returns the number of rules.
func (rs *RuleSet) Len() int {
	return len(rs.rules)
}

// Count returns the number of rules in tier t.
func (rs *RuleSet) Count(t Tier) int {
	n := 0
	for _, r := range rs.rules {
		if r.Tier == t {
			n++
		}
	}
	return n
}

// Rank returns the declared position of term, compared case-insensitively.
// Terms not in the rule set report false.
func (rs *RuleSet) Rank(term string) (int, bool) {
	i, ok := rs.rank[foldForMatch(strings.TrimSpace(term))]
	return i, ok
}
