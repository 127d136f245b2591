package classifier_test

import (
	"errors"
	"testing"

	"github.com/jonesrussell/north-cloud/spam-checker/internal/classifier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRuleSet_RejectsAmbiguousRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		rules []classifier.Rule
	}{
		{
			name: "duplicate across tiers",
			rules: []classifier.Rule{
				{Pattern: "loan", Tier: classifier.TierSpam},
				{Pattern: "loan", Tier: classifier.TierPotential},
			},
		},
		{
			name: "duplicate differing only in case",
			rules: []classifier.Rule{
				{Pattern: "Casino", Tier: classifier.TierSpam},
				{Pattern: "casino ", Tier: classifier.TierSpam},
			},
		},
		{
			name:  "empty pattern",
			rules: []classifier.Rule{{Pattern: "  ", Tier: classifier.TierSpam}},
		},
		{
			name:  "unknown tier",
			rules: []classifier.Rule{{Pattern: "casino", Tier: "maybe"}},
		},
		{
			name:  "pattern with list separator",
			rules: []classifier.Rule{{Pattern: "casino, poker", Tier: classifier.TierSpam}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rs, err := classifier.NewRuleSet("test", tt.rules)
			require.Error(t, err)
			assert.Nil(t, rs)

			var cfgErr *classifier.ConfigurationError
			assert.True(t, errors.As(err, &cfgErr))
			assert.True(t, errors.Is(err, classifier.ErrInvalidRuleSet))
		})
	}
}

func TestRuleSet_OrderAndRank(t *testing.T) {
	t.Parallel()

	rs, err := classifier.NewRuleSetFromTiers("v1", []string{"viagra", "casino"}, []string{"click here"})
	require.NoError(t, err)

	assert.Equal(t, "v1", rs.Version())
	assert.Equal(t, 3, rs.Len())
	assert.Equal(t, 2, rs.Count(classifier.TierSpam))
	assert.Equal(t, 1, rs.Count(classifier.TierPotential))

	rank, ok := rs.Rank("CASINO")
	assert.True(t, ok)
	assert.Equal(t, 1, rank)

	_, ok = rs.Rank("loan")
	assert.False(t, ok)

	rules := rs.Rules()
	rules[0].Pattern = "mutated"
	assert.Equal(t, "viagra", rs.Rules()[0].Pattern, "Rules() must return a copy")
}

func TestDefaultRuleSet_IsValid(t *testing.T) {
	t.Parallel()

	rs := classifier.DefaultRuleSet()
	assert.Equal(t, classifier.DefaultRuleSetVersion, rs.Version())
	assert.Equal(t, 8, rs.Count(classifier.TierPotential))
	assert.Greater(t, rs.Count(classifier.TierSpam), 100)
}

func TestParseRuleSet(t *testing.T) {
	t.Parallel()

	rs, err := classifier.ParseRuleSet([]byte(`
version: "local-1"
spam: [casino]
potential: [investment]
rules:
  - pattern: loan
    tier: spam
`))
	require.NoError(t, err)

	rules := rs.Rules()
	require.Len(t, rules, 3)
	assert.Equal(t, classifier.Rule{Pattern: "casino", Tier: classifier.TierSpam}, rules[0])
	assert.Equal(t, classifier.Rule{Pattern: "investment", Tier: classifier.TierPotential}, rules[1])
	assert.Equal(t, classifier.Rule{Pattern: "loan", Tier: classifier.TierSpam}, rules[2])
}

func TestParseRuleSet_Errors(t *testing.T) {
	t.Parallel()

	_, err := classifier.ParseRuleSet([]byte("spam: [casino]\n"))
	assert.ErrorIs(t, err, classifier.ErrInvalidRuleSet, "missing version")

	_, err = classifier.ParseRuleSet([]byte("version: x\nspam: [loan]\npotential: [Loan]\n"))
	assert.ErrorIs(t, err, classifier.ErrInvalidRuleSet, "cross-tier duplicate")

	_, err = classifier.ParseRuleSet([]byte("version: [x\n"))
	assert.Error(t, err)
}
