// Package consolidator folds per-row verdicts into one record per domain and
// collates already-consolidated batches with the same fold.
//
// The fold is associative, commutative and idempotent: every list field is a
// set kept in canonical order, Spam is an OR and numeric fields take the max.
// Records therefore do not depend on input order or batch boundaries.
package consolidator

import (
	"cmp"
	"slices"
	"strings"

	"github.com/jonesrussell/north-cloud/spam-checker/internal/domain"
)

// TermOrder ranks known terms. *classifier.RuleSet implements it.
type TermOrder interface {
	Rank(term string) (int, bool)
}

// accumulator is the in-progress fold for one domain key.
type accumulator struct {
	domain    string
	flagged   map[string]string // folded -> display
	potential map[string]string
	messages  map[string]struct{}
	spam      bool
	ahrefsDR  domain.Score
	szScore   domain.Score
}

func newAccumulator(display string) *accumulator {
	return &accumulator{
		domain:    display,
		flagged:   make(map[string]string),
		potential: make(map[string]string),
		messages:  make(map[string]struct{}),
	}
}

func (a *accumulator) addDomain(display string) {
	// Smallest spelling wins so the chosen casing is order independent.
	if display < a.domain {
		a.domain = display
	}
}

func addTerms(set map[string]string, terms []string) {
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if cur, ok := set[key]; !ok || t < cur {
			set[key] = t
		}
	}
}

// addMessages splits on the file separator so a message read back from a
// written file lands in the same set as the one that produced it.
func (a *accumulator) addMessages(msgs ...string) {
	for _, m := range msgs {
		for _, part := range domain.SplitList(m, domain.MessageSeparator) {
			a.messages[part] = struct{}{}
		}
	}
}

func (a *accumulator) addVerdict(v domain.Verdict) {
	a.addDomain(v.Domain)
	addTerms(a.flagged, v.FlaggedTerms)
	addTerms(a.potential, v.PotentialTerms)
	a.addMessages(v.Message)
	a.spam = a.spam || v.IsSpam
	a.ahrefsDR = a.ahrefsDR.Max(v.AhrefsDR)
	a.szScore = a.szScore.Max(v.SZScore)
}

func (a *accumulator) addRecord(r *domain.ConsolidatedRecord) {
	a.addDomain(strings.TrimSpace(r.Domain))
	addTerms(a.flagged, r.Flagged)
	addTerms(a.potential, r.Potential)
	a.addMessages(r.Messages...)
	a.spam = a.spam || r.Spam
	a.ahrefsDR = a.ahrefsDR.Max(r.AhrefsDR)
	a.szScore = a.szScore.Max(r.SZScore)
}

func (a *accumulator) record(order TermOrder) domain.ConsolidatedRecord {
	potential := make(map[string]string, len(a.potential))
	for k, v := range a.potential {
		// Spam dominates potential at the domain level too.
		if _, flagged := a.flagged[k]; !flagged {
			potential[k] = v
		}
	}

	messages := make([]string, 0, len(a.messages))
	for m := range a.messages {
		messages = append(messages, m)
	}
	slices.Sort(messages)

	return domain.ConsolidatedRecord{
		Domain:    a.domain,
		Flagged:   sortTerms(a.flagged, order),
		Messages:  messages,
		Spam:      a.spam || len(a.flagged) > 0,
		Potential: sortTerms(potential, order),
		AhrefsDR:  a.ahrefsDR,
		SZScore:   a.szScore,
	}
}

// sortTerms orders known terms by rule rank, then unknown terms lexically.
func sortTerms(set map[string]string, order TermOrder) []string {
	terms := make([]string, 0, len(set))
	for _, t := range set {
		terms = append(terms, t)
	}

	rank := func(t string) (int, bool) {
		if order == nil {
			return 0, false
		}
		return order.Rank(t)
	}

	slices.SortFunc(terms, func(x, y string) int {
		rx, kx := rank(x)
		ry, ky := rank(y)
		switch {
		case kx && ky:
			if c := cmp.Compare(rx, ry); c != 0 {
				return c
			}
		case kx:
			return -1
		case ky:
			return 1
		}
		return cmp.Compare(strings.ToLower(x), strings.ToLower(y))
	})
	return terms
}

// group is an accumulator map that emits records sorted by domain key.
type group struct {
	byKey map[string]*accumulator
	order TermOrder
}

func newGroup(order TermOrder) *group {
	return &group{byKey: make(map[string]*accumulator), order: order}
}

func (g *group) get(key, display string) *accumulator {
	acc, ok := g.byKey[key]
	if !ok {
		acc = newAccumulator(display)
		g.byKey[key] = acc
	}
	return acc
}

func (g *group) records() []domain.ConsolidatedRecord {
	keys := make([]string, 0, len(g.byKey))
	for k := range g.byKey {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([]domain.ConsolidatedRecord, 0, len(keys))
	for _, k := range keys {
		out = append(out, g.byKey[k].record(g.order))
	}
	return out
}
