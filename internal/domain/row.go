// Package domain holds the record types that flow through the spam checker:
// raw export rows, per-row verdicts, consolidated per-domain records and the
// run summary.
package domain

import (
	"encoding/json"
	"strings"
)

// Input column headers of a Spamzilla "check domains" export.
const (
	ColumnDomainName   = "Domain Name"
	ColumnSpamMessage  = "Spam message"
	ColumnAhrefsRating = "Ahrefs Domain Rating"
	ColumnSZScore      = "SZ Score"
)

// RawRow is one line of an input export.
type RawRow struct {
	Line        int             `json:"line,omitempty"`
	Domain      string          `json:"domain"`
	SpamMessage string          `json:"spam_message"`
	AhrefsDR    Score           `json:"ahrefs_dr"`
	SZScore     Score           `json:"sz_score"`
	Mismatches  []FieldMismatch `json:"mismatches,omitempty"`
}

// FieldMismatch records an optional numeric cell that held non-numeric text.
// The loader leaves the field absent and the consolidator counts the warning.
type FieldMismatch struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// UnmarshalJSON decodes a row the way the file loaders read one: a score that
// is not numeric is left absent and recorded in Mismatches instead of failing
// the whole row.
func (r *RawRow) UnmarshalJSON(data []byte) error {
	type plain RawRow
	var aux struct {
		plain
		AhrefsDR json.RawMessage `json:"ahrefs_dr"`
		SZScore  json.RawMessage `json:"sz_score"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*r = RawRow(aux.plain)
	r.AhrefsDR = r.lenientScore(ColumnAhrefsRating, aux.AhrefsDR)
	r.SZScore = r.lenientScore(ColumnSZScore, aux.SZScore)
	return nil
}

func (r *RawRow) lenientScore(field string, raw json.RawMessage) Score {
	if len(raw) == 0 {
		return Score{}
	}

	var s Score
	if err := s.UnmarshalJSON(raw); err == nil {
		return s
	}

	value := string(raw)
	var str string
	if json.Unmarshal(raw, &str) == nil {
		value = str
	}
	r.Mismatches = append(r.Mismatches, FieldMismatch{Field: field, Value: value})
	return Score{}
}

// Key returns the comparison key for the row's domain.
func (r RawRow) Key() string {
	return NormalizeDomain(r.Domain)
}

// NormalizeDomain returns the case-insensitive grouping key for a domain.
func NormalizeDomain(d string) string {
	return strings.ToLower(strings.TrimSpace(d))
}
