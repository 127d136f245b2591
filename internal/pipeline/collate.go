package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/domain"
	"golang.org/x/sync/errgroup"
)

// LoadRecordFiles reads consolidated files concurrently, bounded by the
// runner's concurrency. Batches are returned in path order. The first
// failure cancels the remaining reads.
func (r *Runner) LoadRecordFiles(ctx context.Context, paths []string) ([][]domain.ConsolidatedRecord, error) {
	batches := make([][]domain.ConsolidatedRecord, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records, err := r.readRecords(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			batches[i] = records
			r.logger.Debug("Loaded consolidated file", "path", path, "records", len(records))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return batches, nil
}

// CollateFiles merges previously written output files into one record set
// without re-classifying.
func (r *Runner) CollateFiles(ctx context.Context, paths []string) (*Result, error) {
	start := time.Now()
	runID := uuid.New()

	ctx, span := r.startSpan(ctx, "pipeline.collate_files")
	defer span.End()

	batches, err := r.LoadRecordFiles(ctx, paths)
	if err != nil {
		return nil, err
	}

	records := r.collator.Collate(batches...)

	summary := domain.NewSummary()
	for _, b := range batches {
		summary.RowsIn += len(b)
	}
	summary.CountDomains(records)
	summary.Duration = time.Since(start)

	if r.telemetry != nil {
		r.telemetry.ObserveDomains(summary)
	}

	r.logger.Info("Collation complete",
		"run_id", runID.String(),
		"files", len(paths),
		"records_in", summary.RowsIn,
		"domains_out", summary.DomainsOut,
		"duration_ms", summary.Duration.Milliseconds(),
	)

	return &Result{RunID: runID, Records: records, Summary: summary}, nil
}
