package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonesrussell/north-cloud/spam-checker/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/classifier"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/consolidator"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/domain"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/export"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/ingest"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/logging"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/pipeline"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newRunner(t *testing.T, cfg pipeline.Config) *pipeline.Runner {
	t.Helper()

	rs, err := classifier.NewRuleSetFromTiers("test", []string{"casino", "loan", "viagra"}, []string{"click here"})
	require.NoError(t, err)
	c, err := classifier.New(rs)
	require.NoError(t, err)

	cons := consolidator.New(c, rs, consolidator.WithRuleSetVersion(rs.Version()))
	return pipeline.NewRunner(cons, cfg, logging.NewAdapter(logger.NewNop()))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRunner_ConsolidateFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := writeFile(t, dir, "a.csv", "Domain Name,Spam message,Ahrefs Domain Rating\n"+
		"dup.com,casino,10\n"+
		",orphan,\n"+
		"drop.me,viagra,junk\n")
	b := writeFile(t, dir, "b.csv", "Domain Name,Spam message,Ahrefs Domain Rating\n"+
		"DUP.com,loan,30\n"+
		"clean.org,click here,bad\n")

	corrections, err := ingest.NewCorrections([]ingest.Correction{{Domain: "drop.me", Drop: true}})
	require.NoError(t, err)

	tel := telemetry.NewProvider()
	r := newRunner(t, pipeline.Config{Concurrency: 2, Corrections: corrections, Telemetry: tel})

	res, err := r.ConsolidateFiles(context.Background(), []string{b, a})
	require.NoError(t, err)

	require.Len(t, res.Records, 2)
	assert.Equal(t, "clean.org", res.Records[0].Domain)
	assert.Equal(t, []string{"click here"}, res.Records[0].Potential)
	assert.Equal(t, "DUP.com", res.Records[1].Domain)
	assert.Equal(t, []string{"casino", "loan"}, res.Records[1].Flagged)
	assert.Equal(t, "30", res.Records[1].AhrefsDR.String())

	s := res.Summary
	assert.Equal(t, 5, s.RowsIn)
	assert.Equal(t, 1, s.RowsSkipped[domain.SkipMissingDomain])
	assert.Equal(t, 1, s.RowsSkipped[domain.SkipDroppedByCorrection])
	// One from clean.org and one from the dropped drop.me row.
	assert.Equal(t, 2, s.TypeMismatches)
	assert.Equal(t, 2, s.DomainsOut)
	assert.Equal(t, 1, s.SpamDomains)
	assert.Equal(t, "test", s.RuleSetVersion)

	require.Len(t, res.Files, 2)
	assert.Equal(t, a, res.Files[0].Path)

	assert.InDelta(t, 5, testutil.ToFloat64(tel.Metrics.RowsTotal), 0)
}

func TestRunner_ConsolidateFiles_MatchesSingleBatch(t *testing.T) {
	t.Parallel()

	rows := make(map[string][]domain.RawRow)
	var all []domain.RawRow
	for i := range 12 {
		path := fmt.Sprintf("file-%d", i%4)
		row := domain.RawRow{Domain: fmt.Sprintf("d%d.com", i%5), SpamMessage: []string{"casino", "", "click here", "loan"}[i%4]}
		row.AhrefsDR = domain.NewScore(float64(i))
		rows[path] = append(rows[path], row)
		all = append(all, row)
	}

	r := newRunner(t, pipeline.Config{Concurrency: 3}).WithReaders(func(path string) ([]domain.RawRow, error) {
		return rows[path], nil
	}, nil)

	res, err := r.ConsolidateFiles(context.Background(), []string{"file-0", "file-1", "file-2", "file-3"})
	require.NoError(t, err)

	want, _ := r.ConsolidateRows(all)
	assert.Equal(t, want, res.Records)
}

func TestRunner_ConsolidateFiles_ReadError(t *testing.T) {
	t.Parallel()

	errBroken := errors.New("broken")
	r := newRunner(t, pipeline.Config{}).WithReaders(func(path string) ([]domain.RawRow, error) {
		if path == "bad" {
			return nil, errBroken
		}
		return []domain.RawRow{{Domain: "a.com"}}, nil
	}, nil)

	_, err := r.ConsolidateFiles(context.Background(), []string{"good", "bad"})
	require.ErrorIs(t, err, errBroken)
}

func TestRunner_ConsolidateFiles_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newRunner(t, pipeline.Config{})
	_, err := r.ConsolidateFiles(ctx, []string{"x.csv"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunner_CollateFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	first := filepath.Join(dir, "20260101_spam_checker.csv")
	second := filepath.Join(dir, "20260102_spam_checker.xlsx")

	require.NoError(t, export.WriteFile(first, []domain.ConsolidatedRecord{
		{Domain: "dup.com", Flagged: []string{"casino"}, Spam: true, AhrefsDR: domain.NewScore(20)},
	}))
	require.NoError(t, export.WriteFile(second, []domain.ConsolidatedRecord{
		{Domain: "dup.com", Flagged: []string{"loan"}, Spam: true, AhrefsDR: domain.NewScore(35)},
		{Domain: "other.net", Potential: []string{"click here"}},
	}))

	r := newRunner(t, pipeline.Config{})
	res, err := r.CollateFiles(context.Background(), []string{first, second, first})
	require.NoError(t, err)

	require.Len(t, res.Records, 2)
	assert.Equal(t, "casino, loan", res.Records[0].FlaggedString())
	assert.Equal(t, "35", res.Records[0].AhrefsDR.String())
	assert.Equal(t, 4, res.Summary.RowsIn)
	assert.Equal(t, 2, res.Summary.DomainsOut)
}

func TestRunner_CollateFiles_WrittenFileRoundTrips(t *testing.T) {
	t.Parallel()

	r := newRunner(t, pipeline.Config{})
	records, _ := r.ConsolidateRows([]domain.RawRow{
		{Domain: "x.com", SpamMessage: "casino offer | loan offer", AhrefsDR: domain.NewScore(12)},
		{Domain: "x.com", SpamMessage: "viagra"},
		{Domain: "y.org", SpamMessage: "click here"},
	})
	require.Len(t, records, 2)

	for _, name := range []string{"out.csv", "out.xlsx"} {
		path := filepath.Join(t.TempDir(), name)
		require.NoError(t, export.WriteFile(path, records))

		res, err := r.CollateFiles(context.Background(), []string{path})
		require.NoError(t, err)
		assert.Equal(t, records, res.Records, name)

		res, err = r.CollateFiles(context.Background(), []string{path, path})
		require.NoError(t, err)
		assert.Equal(t, records, res.Records, name)
	}
}

func TestRunner_CollateFiles_MissingFile(t *testing.T) {
	t.Parallel()

	r := newRunner(t, pipeline.Config{})
	_, err := r.CollateFiles(context.Background(), []string{filepath.Join(t.TempDir(), "missing.csv")})
	require.ErrorIs(t, err, os.ErrNotExist)
}
