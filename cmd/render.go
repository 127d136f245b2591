package cmd

import (
	"io"
	"slices"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/classifier"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/pipeline"
)

// renderSummary prints per-file counts followed by the run totals.
func renderSummary(w io.Writer, res *pipeline.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	if len(res.Files) > 0 {
		t.AppendHeader(table.Row{"File", "Rows", "Skipped", "Mismatches", "Domains", "Spam"})
		for i := range res.Files {
			s := res.Files[i].Summary
			t.AppendRow(table.Row{res.Files[i].Path, s.RowsIn, s.SkippedTotal(), s.TypeMismatches, s.DomainsOut, s.SpamDomains})
		}
		t.AppendSeparator()
	} else {
		t.AppendHeader(table.Row{"", "Rows", "Skipped", "Mismatches", "Domains", "Spam"})
	}

	s := res.Summary
	t.AppendFooter(table.Row{"Total", s.RowsIn, s.SkippedTotal(), s.TypeMismatches, s.DomainsOut, s.SpamDomains})
	t.Render()

	if len(s.RowsSkipped) == 0 {
		return
	}

	reasons := make([]string, 0, len(s.RowsSkipped))
	for r := range s.RowsSkipped {
		reasons = append(reasons, r)
	}
	slices.Sort(reasons)

	st := table.NewWriter()
	st.SetOutputMirror(w)
	st.SetStyle(table.StyleLight)
	st.AppendHeader(table.Row{"Skip reason", "Rows"})
	for _, r := range reasons {
		st.AppendRow(table.Row{r, s.RowsSkipped[r]})
	}
	st.Render()
}

// renderRules prints the rule set in precedence order.
func renderRules(w io.Writer, rs *classifier.RuleSet) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Rule set " + rs.Version())

	t.AppendHeader(table.Row{"#", "Pattern", "Tier"})
	for i, r := range rs.Rules() {
		t.AppendRow(table.Row{i + 1, r.Pattern, r.Tier})
	}
	t.AppendFooter(table.Row{"", "spam", rs.Count(classifier.TierSpam)})
	t.AppendFooter(table.Row{"", "potential", rs.Count(classifier.TierPotential)})
	t.Render()
}
