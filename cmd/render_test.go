package cmd

import (
	"bytes"
	"testing"

	"github.com/jonesrussell/north-cloud/spam-checker/internal/classifier"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/domain"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSummary(t *testing.T) {
	summary := domain.NewSummary()
	summary.RowsIn = 5
	summary.Skip(domain.SkipMissingDomain)
	summary.DomainsOut = 3
	summary.SpamDomains = 1

	res := &pipeline.Result{
		Summary: summary,
		Files: []pipeline.FileResult{
			{Path: "a.csv", Summary: summary},
		},
	}

	var buf bytes.Buffer
	renderSummary(&buf, res)

	out := buf.String()
	assert.Contains(t, out, "a.csv")
	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, domain.SkipMissingDomain)
}

func TestRenderRules(t *testing.T) {
	rs, err := classifier.NewRuleSetFromTiers("v1", []string{"casino"}, []string{"buy now"})
	require.NoError(t, err)

	var buf bytes.Buffer
	renderRules(&buf, rs)

	out := buf.String()
	assert.Contains(t, out, "casino")
	assert.Contains(t, out, "buy now")
	assert.Contains(t, out, "v1")
}

func TestVersionCommand(t *testing.T) {
	cmd := newVersionCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs(nil)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "spamcheck ")
	assert.Contains(t, buf.String(), classifier.DefaultRuleSetVersion)
}
