package handler

import (
	"net/http"

	"github.com/prime-insurance/claims-portal-bfa/internal/domain"
	"github.com/prime-insurance/claims-portal-bfa/internal/port"
	"github.com/prime-insurance/claims-portal-bfa/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Reports: GET /v1/reports...
// ============================================================

func listReportsHandler(svc *service.ReportService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reports := svc.ListReports()
		writeJSON(w, http.StatusOK, domain.ListResponse[domain.ReportInfo]{Data: reports, Total: len(reports)})
	}
}

func getReportHandler(svc *service.ReportService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/reports/{selector}")
		defer span.End()

		selector := domain.ReportSelector(chi.URLParam(r, "selector"))
		span.SetAttributes(attribute.String("report.id", string(selector)))

		snap, err := svc.GetReport(ctx, selector, parseFilters(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func exportReportCSVHandler(svc *service.ExportService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/reports/{selector}/export.csv")
		defer span.End()

		selector := domain.ReportSelector(chi.URLParam(r, "selector"))
		span.SetAttributes(attribute.String("report.id", string(selector)))

		res, err := svc.ExportCSV(ctx, selector, parseFilters(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeDownload(w, res)
	}
}

func exportReportPDFHandler(svc *service.ExportService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/reports/{selector}/export.pdf")
		defer span.End()

		selector := domain.ReportSelector(chi.URLParam(r, "selector"))
		span.SetAttributes(attribute.String("report.id", string(selector)))

		res, err := svc.ExportPDF(ctx, selector, parseFilters(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.Bool("export.fallback", res.Fallback))
		writeDownload(w, res)
	}
}

// ============================================================
// Brand: GET /v1/brand
// ============================================================

func brandHandler(brand port.BrandResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if brand == nil {
			writeError(w, http.StatusServiceUnavailable, "brand resolver unavailable")
			return
		}
		ctx, span := tracer.Start(r.Context(), "GET /v1/brand")
		defer span.End()

		asset := brand.Resolve(ctx)
		writeJSON(w, http.StatusOK, domain.BrandPreview{
			MIMEType:    asset.MIMEType,
			Source:      asset.Source,
			Placeholder: asset.Placeholder,
			DataURI:     asset.DataURI(),
		})
	}
}
