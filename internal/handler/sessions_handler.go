package handler

import (
	"encoding/json"
	"net/http"

	"github.com/prime-insurance/claims-portal-bfa/internal/domain"
	"github.com/prime-insurance/claims-portal-bfa/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Dashboard sessions: /v1/dashboard/sessions
// ============================================================

func createSessionHandler(sessions *service.SessionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/dashboard/sessions")
		defer span.End()

		ctrl, snap := sessions.Create(ctx)
		span.SetAttributes(attribute.String("session.id", ctrl.ID()))

		w.Header().Set("Location", "/v1/dashboard/sessions/"+ctrl.ID())
		writeJSON(w, http.StatusCreated, snap)
	}
}

func getSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, SessionFromContext(r.Context()).Snapshot())
	}
}

func deleteSessionHandler(sessions *service.SessionStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctrl := SessionFromContext(r.Context())
		if err := sessions.Close(ctrl.ID()); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type selectReportRequest struct {
	Report domain.ReportSelector `json:"report"`
}

func selectReportHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/dashboard/sessions/{sessionId}/report")
		defer span.End()

		var req selectReportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		span.SetAttributes(attribute.String("report.id", string(req.Report)))

		snap, err := SessionFromContext(ctx).SelectReport(ctx, req.Report)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func applyFiltersHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/dashboard/sessions/{sessionId}/filters")
		defer span.End()

		var req domain.FilterState
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		snap, err := SessionFromContext(ctx).ApplyFilters(ctx, req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func refreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/dashboard/sessions/{sessionId}/refresh")
		defer span.End()

		writeJSON(w, http.StatusOK, SessionFromContext(ctx).Refresh(ctx))
	}
}

func retryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/dashboard/sessions/{sessionId}/retry")
		defer span.End()

		writeJSON(w, http.StatusOK, SessionFromContext(ctx).Retry(ctx))
	}
}

func sessionExportCSVHandler(svc *service.ExportService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/dashboard/sessions/{sessionId}/export.csv")
		defer span.End()

		snap := SessionFromContext(ctx).Snapshot()
		res, err := svc.ExportCSV(ctx, snap.Report, snap.Filters)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeDownload(w, res)
	}
}

func sessionExportPDFHandler(svc *service.ExportService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/dashboard/sessions/{sessionId}/export.pdf")
		defer span.End()

		res, err := svc.ExportSnapshotPDF(ctx, SessionFromContext(ctx).Snapshot())
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.Bool("export.fallback", res.Fallback))
		writeDownload(w, res)
	}
}
