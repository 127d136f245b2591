package classifier_test

import (
	"sync"
	"testing"

	"github.com/jonesrussell/north-cloud/spam-checker/internal/classifier"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClassifier(t *testing.T, opts ...classifier.Option) *classifier.Classifier {
	t.Helper()

	rs, err := classifier.NewRuleSetFromTiers("test",
		[]string{"viagra", "casino", "crypto casino", "porn", "porno", "Hold'em", "loan"},
		[]string{"investment", "click here"},
	)
	require.NoError(t, err)

	c, err := classifier.New(rs, opts...)
	require.NoError(t, err)
	return c
}

func TestClassify(t *testing.T) {
	t.Parallel()

	c := newTestClassifier(t)

	tests := []struct {
		name          string
		message       string
		wantFlagged   []string
		wantPotential []string
		wantMessage   string
	}{
		{
			name:          "spam keyword",
			message:       "contains viagra offer",
			wantFlagged:   []string{"viagra"},
			wantPotential: []string{},
			wantMessage:   "contains viagra offer",
		},
		{
			name:          "potential keyword only",
			message:       "great investment opportunity",
			wantFlagged:   []string{},
			wantPotential: []string{"investment"},
			wantMessage:   "great investment opportunity",
		},
		{
			name:          "keyword embedded in a url",
			message:       "Anchor https://best-CASINO-bonus.example/page",
			wantFlagged:   []string{"casino"},
			wantPotential: []string{},
			wantMessage:   "Anchor https://best-CASINO-bonus.example/page",
		},
		{
			name:          "overlapping patterns all collected in rule order",
			message:       "porno and crypto casino links",
			wantFlagged:   []string{"casino", "crypto casino", "porn", "porno"},
			wantPotential: []string{},
			wantMessage:   "porno and crypto casino links",
		},
		{
			name:          "declared casing is reported",
			message:       "HOLD'EM tables",
			wantFlagged:   []string{"Hold'em"},
			wantPotential: []string{},
			wantMessage:   "HOLD'EM tables",
		},
		{
			name:          "whitespace collapsed, original case kept",
			message:       "  Click\t\tHERE   for a\nloan  ",
			wantFlagged:   []string{"loan"},
			wantPotential: []string{"click here"},
			wantMessage:   "Click HERE for a loan",
		},
		{
			name:          "full-width text normalizes before matching",
			message:       "ｖｉａｇｒａ deals",
			wantFlagged:   []string{"viagra"},
			wantPotential: []string{},
			wantMessage:   "ｖｉａｇｒａ deals",
		},
		{
			name:          "empty message",
			message:       "",
			wantFlagged:   []string{},
			wantPotential: []string{},
			wantMessage:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v := c.Classify(domain.RawRow{Domain: " Example.com ", SpamMessage: tt.message})

			assert.Equal(t, "Example.com", v.Domain)
			assert.Equal(t, tt.wantFlagged, v.FlaggedTerms)
			assert.Equal(t, tt.wantPotential, v.PotentialTerms)
			assert.Equal(t, len(tt.wantFlagged) > 0, v.IsSpam)
			assert.Equal(t, tt.wantMessage, v.Message)
		})
	}
}

func TestClassify_CarriesScores(t *testing.T) {
	t.Parallel()

	c := newTestClassifier(t)
	v := c.Classify(domain.RawRow{Domain: "x.com", AhrefsDR: domain.NewScore(40), SZScore: domain.NewScore(12)})

	assert.Equal(t, domain.NewScore(40), v.AhrefsDR)
	assert.Equal(t, domain.NewScore(12), v.SZScore)
	assert.False(t, v.IsSpam)
}

func TestClassify_LowRating(t *testing.T) {
	t.Parallel()

	c := newTestClassifier(t, classifier.WithLowRating(5, ""))

	low := c.Classify(domain.RawRow{Domain: "x.com", SpamMessage: "casino", AhrefsDR: domain.NewScore(3)})
	assert.Equal(t, []string{"casino", classifier.DefaultLowRatingTerm}, low.FlaggedTerms)
	assert.True(t, low.IsSpam)

	zero := c.Classify(domain.RawRow{Domain: "x.com", AhrefsDR: domain.NewScore(0)})
	assert.True(t, zero.IsSpam, "zero is a present rating")

	absent := c.Classify(domain.RawRow{Domain: "x.com"})
	assert.False(t, absent.IsSpam, "absent rating is not low")

	high := c.Classify(domain.RawRow{Domain: "x.com", AhrefsDR: domain.NewScore(6)})
	assert.False(t, high.IsSpam)
}

func TestNew_LowRatingTermInPotentialTierIsRejected(t *testing.T) {
	t.Parallel()

	rs, err := classifier.NewRuleSetFromTiers("test", nil, []string{"low dr"})
	require.NoError(t, err)

	_, err = classifier.New(rs, classifier.WithLowRating(5, "Low DR"))
	assert.ErrorIs(t, err, classifier.ErrInvalidRuleSet)

	_, err = classifier.New(nil)
	assert.Error(t, err)
}

func TestNew_LowRatingTermWithListSeparatorIsRejected(t *testing.T) {
	t.Parallel()

	_, err := classifier.New(classifier.DefaultRuleSet(), classifier.WithLowRating(5, "Low, DR"))
	require.ErrorIs(t, err, classifier.ErrInvalidRuleSet)

	var cfgErr *classifier.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "Low, DR", cfgErr.Pattern)
}

func TestClassify_ConcurrentUse(t *testing.T) {
	t.Parallel()

	c := newTestClassifier(t)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				v := c.Classify(domain.RawRow{Domain: "x.com", SpamMessage: "viagra casino click here"})
				if len(v.FlaggedTerms) != 2 || len(v.PotentialTerms) != 1 {
					t.Errorf("unexpected verdict under concurrency: %+v", v)
					return
				}
			}
		}()
	}
	wg.Wait()
}
