package classifier

import (
	"slices"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// ruleEngine finds every rule whose pattern occurs in a text with a single
// Aho-Corasick pass, O(n+m) in text and total pattern length.
type ruleEngine struct {
	matcher *ahocorasick.Matcher
}

// newRuleEngine builds the automaton. Dictionary index i is rule i, so hits
// map straight back to rule positions.
func newRuleEngine(rules []Rule) *ruleEngine {
	if len(rules) == 0 {
		return &ruleEngine{}
	}

	patterns := make([]string, len(rules))
	for i, r := range rules {
		patterns[i] = foldForMatch(r.Pattern)
	}

	return &ruleEngine{matcher: ahocorasick.NewStringMatcher(patterns)}
}

// match returns the positions of all rules found in folded, ascending.
func (e *ruleEngine) match(folded string) []int {
	if e.matcher == nil || folded == "" {
		return nil
	}

	hits := e.matcher.MatchThreadSafe([]byte(folded))
	slices.Sort(hits)
	return slices.Compact(hits)
}
