package handler

import (
	"net/http"
	"time"

	"github.com/prime-insurance/claims-portal-bfa/internal/domain"
	"github.com/prime-insurance/claims-portal-bfa/internal/infra/observability"
	"github.com/prime-insurance/claims-portal-bfa/internal/port"
	"github.com/prime-insurance/claims-portal-bfa/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Deps are the services the router exposes. Nil services leave their routes answering 503.
type Deps struct {
	Reports  *service.ReportService
	Sessions *service.SessionStore
	Exports  *service.ExportService
	Brand    port.BrandResolver
	Breakers []*gobreaker.CircuitBreaker
	Metrics  *observability.Metrics
	Logger   *zap.Logger
}

// NewRouter creates the HTTP router with all routes and middleware.
// Routes follow the API contract of the claims portal dashboard.
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.TracingMiddleware)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(d.Breakers))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(d.Metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// 1. Reports (stateless)
		// =============================================
		r.Route("/reports", func(r chi.Router) {
			if d.Reports == nil || d.Exports == nil {
				r.Handle("/*", unavailable("report service"))
				return
			}
			r.Get("/", listReportsHandler(d.Reports))
			r.Get("/{selector}", getReportHandler(d.Reports, logger))
			r.Get("/{selector}/export.csv", exportReportCSVHandler(d.Exports, logger))
			r.Get("/{selector}/export.pdf", exportReportPDFHandler(d.Exports, logger))
		})

		// =============================================
		// 2. Dashboard sessions (fetch controller)
		// =============================================
		r.Route("/dashboard/sessions", func(r chi.Router) {
			if d.Sessions == nil || d.Exports == nil {
				r.Handle("/*", unavailable("dashboard sessions"))
				return
			}
			r.Post("/", createSessionHandler(d.Sessions))
			r.Route("/{sessionId}", func(r chi.Router) {
				r.Use(SessionMiddleware(d.Sessions, logger))
				r.Get("/", getSessionHandler())
				r.Delete("/", deleteSessionHandler(d.Sessions, logger))
				r.Put("/report", selectReportHandler(logger))
				r.Put("/filters", applyFiltersHandler(logger))
				r.Post("/refresh", refreshHandler())
				r.Post("/retry", retryHandler())
				r.Get("/export.csv", sessionExportCSVHandler(d.Exports, logger))
				r.Get("/export.pdf", sessionExportPDFHandler(d.Exports, logger))
			})
		})

		// =============================================
		// 3. Brand asset preview
		// =============================================
		r.Get("/brand", brandHandler(d.Brand))

		// =============================================
		// 4. Export metrics
		// =============================================
		r.Get("/metrics/exports", exportMetricsHandler(d.Metrics))
	})

	return r
}

func unavailable(what string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusServiceUnavailable, what+" unavailable")
	}
}

// ============================================================
// Operational
// ============================================================

func healthzHandler(breakers []*gobreaker.CircuitBreaker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "claims-portal-bfa", Status: "healthy", LastChecked: now},
		}
		for _, cb := range breakers {
			status := "healthy"
			switch cb.State() {
			case gobreaker.StateHalfOpen:
				status = "degraded"
			case gobreaker.StateOpen:
				status = "unhealthy"
			}
			services = append(services, domain.ServiceHealth{
				Name:        cb.Name(),
				Status:      status,
				Breaker:     cb.State().String(),
				LastChecked: now,
			})
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func exportMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.ExportSnapshot())
	}
}
