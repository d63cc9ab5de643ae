package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/prime-insurance/claims-portal-bfa/internal/domain"

	"go.uber.org/zap"
)

// ============================================================
// Shared helper functions
// ============================================================

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeDownload sends an export as a file. Print fallbacks open inline so the
// browser can show the print dialog.
func writeDownload(w http.ResponseWriter, res *domain.ExportResult) {
	disposition := "attachment"
	if res.Fallback {
		disposition = "inline"
		w.Header().Set("X-Export-Fallback", "print")
	}
	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, res.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Body)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(res.Body)
}

// parseFilters reads the filter bar from the query string.
func parseFilters(r *http.Request) domain.FilterState {
	q := r.URL.Query()
	return domain.FilterState{
		DateFrom:      q.Get("date_from"),
		DateTo:        q.Get("date_to"),
		InsuranceType: q.Get("insurance_type"),
		Status:        q.Get("status"),
	}.Normalize()
}

// handleServiceError maps domain errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var notFound *domain.ErrNotFound
	var circuitOpen *domain.ErrCircuitOpen
	var timeout *domain.ErrTimeout
	var validation *domain.ErrValidation
	var external *domain.ErrExternalService
	var engine *domain.ErrExportEngine

	switch {
	case errors.As(err, &notFound):
		logger.Debug("not found", zap.String("error", err.Error()))
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &circuitOpen):
		logger.Error("circuit breaker open", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &timeout):
		logger.Error("request timeout", zap.Error(err))
		writeError(w, http.StatusGatewayTimeout, err.Error())
	case errors.As(err, &validation):
		logger.Debug("validation error", zap.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &external):
		logger.Warn("upstream failure",
			zap.String("service", external.Service),
			zap.Int("status", external.StatusCode),
			zap.Error(err),
		)
		writeError(w, http.StatusBadGateway, "analytics service unavailable")
	case errors.As(err, &engine):
		logger.Error("export engine failure", zap.String("stage", engine.Stage), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "export failed")
	default:
		logger.Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
