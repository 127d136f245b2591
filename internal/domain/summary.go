package domain

import "time"

// Skip reasons reported in Summary.RowsSkipped.
const (
	SkipMissingDomain       = "missing domain"
	SkipDroppedByCorrection = "dropped by correction"
)

// Summary describes one consolidation or collation run for the caller's log.
type Summary struct {
	RowsIn           int            `json:"rows_in"`
	RowsSkipped      map[string]int `json:"rows_skipped"`
	RowsCorrected    int            `json:"rows_corrected"`
	TypeMismatches   int            `json:"type_mismatches"`
	DomainsOut       int            `json:"domains_out"`
	SpamDomains      int            `json:"spam_domains"`
	PotentialDomains int            `json:"potential_domains"`
	CleanDomains     int            `json:"clean_domains"`
	RuleSetVersion   string         `json:"rule_set_version,omitempty"`
	Duration         time.Duration  `json:"duration_ns"`
}

// NewSummary returns an empty summary ready for counting.
func NewSummary() Summary {
	return Summary{RowsSkipped: make(map[string]int)}
}

// Skip counts one rejected row.
func (s *Summary) Skip(reason string) {
	if s.RowsSkipped == nil {
		s.RowsSkipped = make(map[string]int)
	}
	s.RowsSkipped[reason]++
}

// SkippedTotal returns the number of rejected rows across all reasons.
func (s *Summary) SkippedTotal() int {
	total := 0
	for _, n := range s.RowsSkipped {
		total += n
	}
	return total
}

// AddRowCounts folds another summary's row-level counters into s.
// Domain counters are not additive across batches; use CountDomains on the
// collated result instead.
func (s *Summary) AddRowCounts(o Summary) {
	s.RowsIn += o.RowsIn
	s.RowsCorrected += o.RowsCorrected
	s.TypeMismatches += o.TypeMismatches
	for reason, n := range o.RowsSkipped {
		if s.RowsSkipped == nil {
			s.RowsSkipped = make(map[string]int)
		}
		s.RowsSkipped[reason] += n
	}
}

// CountDomains sets the domain counters from a final record set.
func (s *Summary) CountDomains(records []ConsolidatedRecord) {
	s.DomainsOut = len(records)
	s.SpamDomains, s.PotentialDomains, s.CleanDomains = 0, 0, 0
	for i := range records {
		switch {
		case records[i].Spam:
			s.SpamDomains++
		case len(records[i].Potential) > 0:
			s.PotentialDomains++
		default:
			s.CleanDomains++
		}
	}
}
