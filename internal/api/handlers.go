// Package api exposes the engine over HTTP for tools that cannot link it.
package api

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonesrussell/north-cloud/spam-checker/infrastructure/health"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/classifier"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/consolidator"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/domain"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/export"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/ingest"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/logging"
	"github.com/jonesrussell/north-cloud/spam-checker/internal/pipeline"
)

// RecordStore persists consolidated records. *store.Store implements it.
type RecordStore interface {
	Merge(ctx context.Context, records []domain.ConsolidatedRecord) ([]domain.ConsolidatedRecord, error)
	List(ctx context.Context) ([]domain.ConsolidatedRecord, error)
	Ping(ctx context.Context) error
}

// Handler handles HTTP requests for the spam-checker API.
type Handler struct {
	classifier *classifier.Classifier
	runner     *pipeline.Runner
	collator   *consolidator.Collator
	store      RecordStore
	maxUpload  int64
	readiness  *health.Checker
	logger     logging.Logger
}

// HandlerConfig wires a Handler. Store is optional.
type HandlerConfig struct {
	Classifier     *classifier.Classifier
	Runner         *pipeline.Runner
	Collator       *consolidator.Collator
	Store          RecordStore
	MaxUploadBytes int64
}

// NewHandler creates a new API handler.
func NewHandler(cfg HandlerConfig, logger logging.Logger) *Handler {
	readiness := health.NewChecker()
	if cfg.Store != nil {
		readiness.Register("store", cfg.Store.Ping)
	}

	return &Handler{
		classifier: cfg.Classifier,
		runner:     cfg.Runner,
		collator:   cfg.Collator,
		store:      cfg.Store,
		maxUpload:  cfg.MaxUploadBytes,
		readiness:  readiness,
		logger:     logger,
	}
}

// RuleResponse is one rule in the rules listing.
type RuleResponse struct {
	Rank    int             `json:"rank"`
	Pattern string          `json:"pattern"`
	Tier    classifier.Tier `json:"tier"`
}

// RulesResponse is the body of GET /api/v1/rules.
type RulesResponse struct {
	Version   string         `json:"version"`
	Rules     []RuleResponse `json:"rules"`
	Spam      int            `json:"spam"`
	Potential int            `json:"potential"`
}

// ConsolidateRequest is the body of POST /api/v1/consolidate.
type ConsolidateRequest struct {
	Rows []domain.RawRow `json:"rows"`
}

// ConsolidateResponse carries records and the run summary.
type ConsolidateResponse struct {
	Records []domain.ConsolidatedRecord `json:"records"`
	Summary domain.Summary              `json:"summary"`
}

// CollateRequest is the body of POST /api/v1/collate.
type CollateRequest struct {
	Batches [][]domain.ConsolidatedRecord `json:"batches"`
}

// RecordsResponse carries a record set.
type RecordsResponse struct {
	Records []domain.ConsolidatedRecord `json:"records"`
	Total   int                         `json:"total"`
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":           "ok",
		"rule_set_version": h.classifier.RuleSet().Version(),
	})
}

// ListRules handles GET /api/v1/rules.
func (h *Handler) ListRules(c *gin.Context) {
	rs := h.classifier.RuleSet()
	rules := rs.Rules()

	resp := RulesResponse{
		Version:   rs.Version(),
		Rules:     make([]RuleResponse, len(rules)),
		Spam:      rs.Count(classifier.TierSpam),
		Potential: rs.Count(classifier.TierPotential),
	}
	for i, r := range rules {
		resp.Rules[i] = RuleResponse{Rank: i, Pattern: r.Pattern, Tier: r.Tier}
	}

	c.JSON(http.StatusOK, resp)
}

// Classify handles POST /api/v1/classify.
func (h *Handler) Classify(c *gin.Context) {
	var row domain.RawRow
	if err := c.ShouldBindJSON(&row); err != nil {
		h.logger.Warn("Invalid classify request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.classifier.Classify(row))
}

// Consolidate handles POST /api/v1/consolidate. With ?persist=true and a
// configured store the result is merged into it and the merged records are
// returned.
func (h *Handler) Consolidate(c *gin.Context) {
	var req ConsolidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid consolidate request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	records, summary := h.runner.ConsolidateRows(req.Rows)

	if c.Query("persist") == "true" {
		if h.store == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "record store is not enabled"})
			return
		}
		merged, err := h.store.Merge(c.Request.Context(), records)
		if err != nil {
			h.logger.Error("Failed to persist records", "error", err)
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist records"})
			return
		}
		records = merged
	}

	h.logger.Info("Rows consolidated",
		"rows_in", summary.RowsIn,
		"rows_skipped", summary.SkippedTotal(),
		"domains_out", summary.DomainsOut,
	)

	c.JSON(http.StatusOK, ConsolidateResponse{Records: records, Summary: summary})
}

// Collate handles POST /api/v1/collate.
func (h *Handler) Collate(c *gin.Context) {
	var req CollateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid collate request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	records := h.collator.Collate(req.Batches...)
	c.JSON(http.StatusOK, RecordsResponse{Records: records, Total: len(records)})
}

// ListRecords handles GET /api/v1/records.
func (h *Handler) ListRecords(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "record store is not enabled"})
		return
	}

	records, err := h.store.List(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list records", "error", err)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list records"})
		return
	}

	c.JSON(http.StatusOK, RecordsResponse{Records: records, Total: len(records)})
}

// ConsolidateUpload handles POST /api/v1/consolidate/csv: a multipart
// "file" field holding a CSV or XLSX export. The response is the
// consolidated CSV.
func (h *Handler) ConsolidateUpload(c *gin.Context) {
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	rows, err := readUpload(fh)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, ingest.ErrUnsupportedFormat) {
			status = http.StatusUnsupportedMediaType
		}
		h.logger.Warn("Rejected upload", "file", fh.Filename, "error", err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	records, summary := h.runner.ConsolidateRows(rows)
	h.logger.Info("Upload consolidated",
		"file", fh.Filename,
		"rows_in", summary.RowsIn,
		"domains_out", summary.DomainsOut,
	)

	name := export.DatedPath("", time.Now(), ingest.FormatCSV)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	if err = export.WriteCSV(c.Writer, records); err != nil {
		h.logger.Error("Failed to write CSV response", "error", err)
		_ = c.Error(err)
	}
}

func readUpload(fh *multipart.FileHeader) ([]domain.RawRow, error) {
	format, err := ingest.FormatFromPath(fh.Filename)
	if err != nil {
		return nil, err
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	if format == ingest.FormatXLSX {
		return ingest.ReadXLSX(f)
	}
	return ingest.ReadCSV(f)
}
