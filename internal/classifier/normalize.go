package classifier

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// collapseWhitespace trims s and replaces every whitespace run with one space.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// foldForMatch returns the matching form of s: NFKC-normalized so full-width
// and ligature forms compare equal to plain text, then case-folded.
func foldForMatch(s string) string {
	// Casers carry state; a fresh one per call keeps this safe for concurrent use.
	return cases.Fold().String(norm.NFKC.String(s))
}
