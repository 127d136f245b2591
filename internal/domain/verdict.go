package domain

// Verdict is the classifier's output for one RawRow.
type Verdict struct {
	Domain         string   `json:"domain"`
	FlaggedTerms   []string `json:"flagged_terms"`
	PotentialTerms []string `json:"potential_terms"`
	IsSpam         bool     `json:"is_spam"`
	Message        string   `json:"message"`
	AhrefsDR       Score    `json:"ahrefs_dr"`
	SZScore        Score    `json:"sz_score"`
}
