package domain

import "strings"

// Output column headers, in file order.
const (
	ColumnFlagged       = "Flagged"
	ColumnMessage       = "Message"
	ColumnSpam          = "Spam"
	ColumnPotentialSpam = "Potential Spam"
	ColumnAhrefsDR      = "Ahrefs DR"
)

// OutputColumns is the fixed header of a consolidated output file.
var OutputColumns = []string{
	ColumnDomainName,
	ColumnFlagged,
	ColumnMessage,
	ColumnSpam,
	ColumnPotentialSpam,
	ColumnAhrefsDR,
	ColumnSZScore,
}

// Separators used when list fields are flattened into a single cell.
const (
	TermSeparator    = ", "
	MessageSeparator = " | "
)

// ConsolidatedRecord is the single authoritative row for one domain.
type ConsolidatedRecord struct {
	Domain    string   `json:"domain"`
	Flagged   []string `json:"flagged"`
	Messages  []string `json:"messages"`
	Spam      bool     `json:"spam"`
	Potential []string `json:"potential"`
	AhrefsDR  Score    `json:"ahrefs_dr"`
	SZScore   Score    `json:"sz_score"`
}

// Key returns the record's normalized domain key.
func (r *ConsolidatedRecord) Key() string {
	return NormalizeDomain(r.Domain)
}

// FlaggedString returns the Flagged cell.
func (r *ConsolidatedRecord) FlaggedString() string {
	return strings.Join(r.Flagged, TermSeparator)
}

// PotentialString returns the Potential Spam cell.
func (r *ConsolidatedRecord) PotentialString() string {
	return strings.Join(r.Potential, TermSeparator)
}

// MessageString returns the Message cell.
func (r *ConsolidatedRecord) MessageString() string {
	return strings.Join(r.Messages, MessageSeparator)
}

// SpamFlag returns the Spam cell value, 0 or 1.
func (r *ConsolidatedRecord) SpamFlag() int {
	if r.Spam {
		return 1
	}
	return 0
}

// Cells returns the record as output cells in OutputColumns order.
func (r *ConsolidatedRecord) Cells() []string {
	spam := "0"
	if r.Spam {
		spam = "1"
	}
	return []string{
		r.Domain,
		r.FlaggedString(),
		r.MessageString(),
		spam,
		r.PotentialString(),
		r.AhrefsDR.String(),
		r.SZScore.String(),
	}
}

// SplitList splits a flattened list cell, dropping empty parts.
func SplitList(cell, sep string) []string {
	if strings.TrimSpace(cell) == "" {
		return nil
	}
	parts := strings.Split(cell, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
