// Package telemetry exports Prometheus metrics and tracing for spam-checker
// runs. Batch commands write metrics to a textfile for node_exporter; the
// HTTP server exposes them on /metrics.
package telemetry

import (
	"fmt"
	"net/http"

	"github.com/jonesrussell/north-cloud/spam-checker/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "spam-checker"

// Verdict labels for DomainsTotal.
const (
	VerdictSpam      = "spam"
	VerdictPotential = "potential"
	VerdictClean     = "clean"
)

// Metrics holds the spam-checker Prometheus metrics.
type Metrics struct {
	RowsTotal             prometheus.Counter
	RowsSkipped           *prometheus.CounterVec
	RowsCorrected         prometheus.Counter
	TypeMismatches        prometheus.Counter
	DomainsTotal          *prometheus.CounterVec
	ConsolidationDuration prometheus.Histogram
	FilesFailed           prometheus.Counter
}

// Provider wraps the metrics registry and tracer.
type Provider struct {
	Tracer   trace.Tracer
	Metrics  *Metrics
	registry *prometheus.Registry
}

// NewProvider creates metrics on a private registry, so several providers
// can coexist in one process.
func NewProvider() *Provider {
	reg := prometheus.NewRegistry()
	return &Provider{
		Tracer:   otel.Tracer(serviceName),
		Metrics:  initMetrics(promauto.With(reg)),
		registry: reg,
	}
}

func initMetrics(f promauto.Factory) *Metrics {
	return &Metrics{
		RowsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "spamcheck_rows_total",
			Help: "Input rows received for consolidation",
		}),
		RowsSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "spamcheck_rows_skipped_total",
			Help: "Input rows rejected before grouping",
		}, []string{"reason"}),
		RowsCorrected: f.NewCounter(prometheus.CounterOpts{
			Name: "spamcheck_rows_corrected_total",
			Help: "Input rows changed by the corrections file",
		}),
		TypeMismatches: f.NewCounter(prometheus.CounterOpts{
			Name: "spamcheck_type_mismatches_total",
			Help: "Non-numeric rating or score cells treated as absent",
		}),
		DomainsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "spamcheck_domains_total",
			Help: "Consolidated domains by verdict",
		}, []string{"verdict"}),
		ConsolidationDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "spamcheck_consolidation_duration_seconds",
			Help:    "Time to consolidate one batch",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		FilesFailed: f.NewCounter(prometheus.CounterOpts{
			Name: "spamcheck_files_failed_total",
			Help: "Input files that could not be read",
		}),
	}
}

// ObserveBatch records the row counters and duration of one consolidate call.
func (p *Provider) ObserveBatch(s domain.Summary) {
	m := p.Metrics
	m.RowsTotal.Add(float64(s.RowsIn))
	m.RowsCorrected.Add(float64(s.RowsCorrected))
	m.TypeMismatches.Add(float64(s.TypeMismatches))
	for reason, n := range s.RowsSkipped {
		m.RowsSkipped.WithLabelValues(reason).Add(float64(n))
	}
	m.ConsolidationDuration.Observe(s.Duration.Seconds())
}

// ObserveDomains records the verdict split of a final record set.
func (p *Provider) ObserveDomains(s domain.Summary) {
	m := p.Metrics
	m.DomainsTotal.WithLabelValues(VerdictSpam).Add(float64(s.SpamDomains))
	m.DomainsTotal.WithLabelValues(VerdictPotential).Add(float64(s.PotentialDomains))
	m.DomainsTotal.WithLabelValues(VerdictClean).Add(float64(s.CleanDomains))
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// WriteTextfile writes all metrics to path in the text exposition format.
func (p *Provider) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, p.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
