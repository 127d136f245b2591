// Package pipeline runs the engine over input files: one worker per file
// consolidates its rows, then the per-file batches are collated.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/consolidator"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/domain"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/ingest"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/logging"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// DefaultConcurrency is used when Config.Concurrency is not positive.
const DefaultConcurrency = 4

// RowReader loads raw rows from one input file.
type RowReader func(path string) ([]domain.RawRow, error)

// RecordReader loads consolidated records from one output file.
type RecordReader func(path string) ([]domain.ConsolidatedRecord, error)

// Config holds Runner settings.
type Config struct {
	Concurrency int
	Corrections *ingest.Corrections
	// Telemetry is optional.
	Telemetry *telemetry.Provider
}

// Runner consolidates and collates files.
type Runner struct {
	consolidator *consolidator.Consolidator
	collator     *consolidator.Collator
	corrections  *ingest.Corrections
	concurrency  int
	telemetry    *telemetry.Provider
	logger       logging.Logger
	readRows     RowReader
	readRecords  RecordReader
}

// NewRunner creates a Runner reading CSV and XLSX files.
func NewRunner(c *consolidator.Consolidator, cfg Config, logger logging.Logger) *Runner {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	return &Runner{
		consolidator: c,
		collator:     c.Collator(),
		corrections:  cfg.Corrections,
		concurrency:  concurrency,
		telemetry:    cfg.Telemetry,
		logger:       logger,
		readRows:     ingest.ReadRowsFile,
		readRecords:  ingest.ReadRecordsFile,
	}
}

// WithReaders replaces the file readers. It is intended for tests and for
// callers loading rows from somewhere other than the filesystem.
func (r *Runner) WithReaders(rows RowReader, records RecordReader) *Runner {
	cp := *r
	if rows != nil {
		cp.readRows = rows
	}
	if records != nil {
		cp.readRecords = records
	}
	return &cp
}

// Result is the outcome of a run.
type Result struct {
	RunID   uuid.UUID
	Records []domain.ConsolidatedRecord
	Summary domain.Summary
	Files   []FileResult
}

// FileResult is the outcome for one input file.
type FileResult struct {
	Path    string
	Summary domain.Summary
	Err     error

	records []domain.ConsolidatedRecord
}

// ConsolidateRows applies corrections to rows and consolidates them as one
// batch.
func (r *Runner) ConsolidateRows(rows []domain.RawRow) ([]domain.ConsolidatedRecord, domain.Summary) {
	corrected, stats := r.corrections.Apply(rows)

	records, summary := r.consolidator.Consolidate(corrected)
	summary.RowsIn += stats.Dropped
	summary.RowsCorrected += stats.Corrected
	summary.TypeMismatches += stats.DroppedMismatches
	for range stats.Dropped {
		summary.Skip(domain.SkipDroppedByCorrection)
	}

	if r.telemetry != nil {
		r.telemetry.ObserveBatch(summary)
	}
	return records, summary
}

// ConsolidateFiles reads every path with a pool of workers, consolidates
// each file on its own and collates the batches. Any unreadable file fails
// the run; row-level problems never do.
func (r *Runner) ConsolidateFiles(ctx context.Context, paths []string) (*Result, error) {
	start := time.Now()
	runID := uuid.New()

	ctx, span := r.startSpan(ctx, "pipeline.consolidate_files")
	defer span.End()
	span.SetAttributes(attribute.String("run_id", runID.String()), attribute.Int("files", len(paths)))

	r.logger.Info("Starting consolidation",
		"run_id", runID.String(),
		"files", len(paths),
		"concurrency", r.concurrency,
	)

	jobs := make(chan string, len(paths))
	results := make(chan FileResult, len(paths))

	var wg sync.WaitGroup
	for i := range min(r.concurrency, max(len(paths), 1)) {
		wg.Add(1)
		go r.worker(ctx, i, jobs, results, &wg)
	}

	for _, p := range paths {
		jobs <- p
	}
	close(jobs)

	wg.Wait()
	close(results)

	files := make([]FileResult, 0, len(paths))
	for fr := range results {
		files = append(files, fr)
	}
	slices.SortFunc(files, func(a, b FileResult) int { return strings.Compare(a.Path, b.Path) })

	if err := ctx.Err(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("consolidation cancelled: %w", err)
	}

	summary := domain.NewSummary()
	summary.RuleSetVersion = r.consolidator.RuleSetVersion()
	batches := make([][]domain.ConsolidatedRecord, 0, len(files))
	var errs []error
	for i := range files {
		if files[i].Err != nil {
			errs = append(errs, files[i].Err)
			continue
		}
		summary.AddRowCounts(files[i].Summary)
		batches = append(batches, files[i].records)
	}
	if len(errs) > 0 {
		err := errors.Join(errs...)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	records := r.collator.Collate(batches...)
	summary.CountDomains(records)
	summary.Duration = time.Since(start)

	if r.telemetry != nil {
		r.telemetry.ObserveDomains(summary)
	}

	r.logger.Info("Consolidation complete",
		"run_id", runID.String(),
		"rows_in", summary.RowsIn,
		"rows_skipped", summary.SkippedTotal(),
		"type_mismatches", summary.TypeMismatches,
		"domains_out", summary.DomainsOut,
		"spam_domains", summary.SpamDomains,
		"duration_ms", summary.Duration.Milliseconds(),
	)

	return &Result{RunID: runID, Records: records, Summary: summary, Files: files}, nil
}

// worker consolidates files from the jobs channel.
func (r *Runner) worker(
	ctx context.Context,
	id int,
	jobs <-chan string,
	results chan<- FileResult,
	wg *sync.WaitGroup,
) {
	defer wg.Done()

	r.logger.Debug("Worker started", "worker_id", id)

	for path := range jobs {
		select {
		case <-ctx.Done():
			r.logger.Warn("Worker stopping due to context cancellation", "worker_id", id)
			return
		default:
		}

		results <- r.processFile(ctx, path)
	}

	r.logger.Debug("Worker finished", "worker_id", id)
}

func (r *Runner) processFile(ctx context.Context, path string) FileResult {
	_, span := r.startSpan(ctx, "pipeline.consolidate_file")
	defer span.End()
	span.SetAttributes(attribute.String("path", path))

	result := FileResult{Path: path}

	rows, err := r.readRows(path)
	if err != nil {
		result.Err = fmt.Errorf("read %s: %w", path, err)
		span.SetStatus(codes.Error, err.Error())
		if r.telemetry != nil {
			r.telemetry.Metrics.FilesFailed.Inc()
		}
		r.logger.Error("Failed to read input file", "path", path, "error", err)
		return result
	}

	result.records, result.Summary = r.ConsolidateRows(rows)

	r.logger.Debug("File consolidated",
		"path", path,
		"rows_in", result.Summary.RowsIn,
		"domains_out", result.Summary.DomainsOut,
	)
	return result
}

func (r *Runner) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if r.telemetry == nil {
		return noop.NewTracerProvider().Tracer("").Start(ctx, name)
	}
	return r.telemetry.Tracer.Start(ctx, name)
}
