package observability

import (
	"time"

	"github.com/prime-insurance/claims-portal-bfa/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Export outcomes used as label values.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeFallback = "print_fallback"
	OutcomeNoData   = "no_data"
)

// Metrics holds all Prometheus metrics for the reporting BFA.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	fetchDuration   *prometheus.HistogramVec
	fetchTotal      *prometheus.CounterVec
	exportsTotal    *prometheus.CounterVec
	brandResolution *prometheus.CounterVec
	brandMisses     *prometheus.CounterVec
	externalErrors  *prometheus.CounterVec
	staleResponses  prometheus.Counter
	activeSessions  prometheus.Gauge
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		fetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portal_report_fetch_duration_seconds",
				Help:    "Duration of analytics report fetches by report.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"report"},
		),
		fetchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_report_fetch_total",
				Help: "Report fetches by report and outcome.",
			},
			[]string{"report", "outcome"},
		),
		exportsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_exports_total",
				Help: "Report exports by format and outcome.",
			},
			[]string{"format", "outcome"},
		),
		brandResolution: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_brand_resolution_total",
				Help: "Brand assets resolved, by the step that produced them.",
			},
			[]string{"source"},
		),
		brandMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_brand_miss_total",
				Help: "Brand asset fallback steps that failed.",
			},
			[]string{"source"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		staleResponses: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "portal_stale_responses_total",
				Help: "Report responses discarded because the selection changed while in flight.",
			},
		),
		activeSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "portal_dashboard_sessions",
				Help: "Dashboard sessions created and not yet closed.",
			},
		),
	}
}

// RecordFetch records the duration and outcome of one report fetch.
func (m *Metrics) RecordFetch(report domain.ReportSelector, outcome string, d time.Duration) {
	m.fetchDuration.WithLabelValues(string(report)).Observe(d.Seconds())
	m.fetchTotal.WithLabelValues(string(report), outcome).Inc()
}

// IncrExport increments the export counter.
func (m *Metrics) IncrExport(format, outcome string) {
	m.exportsTotal.WithLabelValues(format, outcome).Inc()
}

// IncrBrandResolved counts which fallback step produced the brand asset.
func (m *Metrics) IncrBrandResolved(source string) {
	m.brandResolution.WithLabelValues(source).Inc()
}

// IncrBrandMiss counts a failed fallback step.
func (m *Metrics) IncrBrandMiss(source string) {
	m.brandMisses.WithLabelValues(source).Inc()
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrStaleResponse counts a discarded late response.
func (m *Metrics) IncrStaleResponse() {
	m.staleResponses.Inc()
}

// SessionOpened and SessionClosed track live dashboard sessions.
func (m *Metrics) SessionOpened() { m.activeSessions.Inc() }

// SessionClosed decrements the live session gauge.
func (m *Metrics) SessionClosed() { m.activeSessions.Dec() }

// ExportSnapshot returns a read-back of export counters suitable for the
// GET /v1/metrics/exports endpoint.
func (m *Metrics) ExportSnapshot() *domain.ExportStats {
	csvOK := getCounterValue(m.exportsTotal, domain.FormatCSV, OutcomeSuccess)
	csvFail := getCounterValue(m.exportsTotal, domain.FormatCSV, OutcomeFailure)
	pdfOK := getCounterValue(m.exportsTotal, domain.FormatPDF, OutcomeSuccess)
	pdfFallback := getCounterValue(m.exportsTotal, domain.FormatPDF, OutcomeFallback)
	placeholder := getCounterValue(m.brandResolution, domain.BrandSourcePlaceholder)

	fallbackRate := float64(0)
	if total := pdfOK + pdfFallback; total > 0 {
		fallbackRate = pdfFallback / total
	}

	return &domain.ExportStats{
		CSVSuccess:       int64(csvOK),
		CSVFailure:       int64(csvFail),
		PDFSuccess:       int64(pdfOK),
		PDFPrintFallback: int64(pdfFallback),
		BrandPlaceholder: int64(placeholder),
		FallbackRate:     fallbackRate,
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for the given labels.
func getCounterValue(cv *prometheus.CounterVec, labels ...string) float64 {
	counter := cv.WithLabelValues(labels...)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
