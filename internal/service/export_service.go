package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prime-insurance/claims-portal-bfa/internal/domain"
	"github.com/prime-insurance/claims-portal-bfa/internal/infra/observability"
	"github.com/prime-insurance/claims-portal-bfa/internal/infra/resilience"
	"github.com/prime-insurance/claims-portal-bfa/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var exportTracer = otel.Tracer("service/export")

// Content types of export downloads.
const (
	ContentTypeCSV       = "text/csv"
	ContentTypePDF       = "application/pdf"
	ContentTypePrintView = "text/html; charset=utf-8"
)

// CSVFilename is the download name of a CSV export.
func CSVFilename(selector domain.ReportSelector) string {
	return string(selector) + "_report.csv"
}

// PDFFilename is the download name of a PDF export, e.g.
// PRIME_Insurance_Fraud_Analysis_Report_2024-03-15_Landscape.pdf.
func PDFFilename(title string, at time.Time) string {
	return "PRIME_Insurance_" + strings.Join(strings.Fields(title), "_") + "_" + at.Format(domain.DateLayout) + "_Landscape.pdf"
}

// ExportService drives the CSV and PDF exports.
type ExportService struct {
	reports  *ReportService
	csv      port.CSVExporter
	builder  *DocumentBuilder
	brand    port.BrandResolver
	engine   port.DocumentEngine
	printer  port.PrintFallback
	bulkhead *resilience.Bulkhead
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewExportService wires the export drivers.
func NewExportService(
	reports *ReportService,
	csv port.CSVExporter,
	builder *DocumentBuilder,
	brand port.BrandResolver,
	engine port.DocumentEngine,
	printer port.PrintFallback,
	bulkhead *resilience.Bulkhead,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *ExportService {
	return &ExportService{
		reports:  reports,
		csv:      csv,
		builder:  builder,
		brand:    brand,
		engine:   engine,
		printer:  printer,
		bulkhead: bulkhead,
		metrics:  metrics,
		logger:   logger,
	}
}

// ExportCSV asks the analytics API for the CSV of selector under filters.
func (s *ExportService) ExportCSV(ctx context.Context, selector domain.ReportSelector, filters domain.FilterState) (*domain.ExportResult, error) {
	ctx, span := exportTracer.Start(ctx, "ExportService.ExportCSV")
	defer span.End()
	span.SetAttributes(attribute.String("report.id", string(selector)))

	if !selector.Valid() {
		return nil, &domain.ErrValidation{Field: "report", Message: "unknown report " + string(selector)}
	}
	filters = filters.Normalize()
	if err := filters.Validate(); err != nil {
		return nil, err
	}

	body, err := s.csv.ExportCSV(ctx, ComposeExportQuery(filters, selector))
	if err != nil {
		s.metrics.IncrExport(domain.FormatCSV, observability.OutcomeFailure)
		s.metrics.IncrExternalError("analytics")
		return nil, fmt.Errorf("csv export %s: %w", selector, err)
	}

	s.metrics.IncrExport(domain.FormatCSV, observability.OutcomeSuccess)
	s.logger.Info("csv export completed",
		zap.String("report", string(selector)),
		zap.Int("bytes", len(body)),
	)
	return &domain.ExportResult{
		Filename:    CSVFilename(selector),
		ContentType: ContentTypeCSV,
		Body:        body,
	}, nil
}

// ExportPDF fetches the report and resolves the brand concurrently, then renders.
// An unknown selector skips the fetch and yields the no-data document.
func (s *ExportService) ExportPDF(ctx context.Context, selector domain.ReportSelector, filters domain.FilterState) (*domain.ExportResult, error) {
	ctx, span := exportTracer.Start(ctx, "ExportService.ExportPDF")
	defer span.End()
	span.SetAttributes(attribute.String("report.id", string(selector)))

	filters = filters.Normalize()
	if err := filters.Validate(); err != nil {
		return nil, err
	}

	var payload domain.ReportPayload
	var brand domain.BrandAsset

	g, gctx := errgroup.WithContext(ctx)
	if selector.Valid() {
		g.Go(func() error {
			p, _, err := s.reports.fetch(gctx, selector, filters)
			if err != nil {
				return err
			}
			payload = p
			return nil
		})
	}
	g.Go(func() error {
		brand = s.brand.Resolve(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		s.metrics.IncrExport(domain.FormatPDF, observability.OutcomeFailure)
		return nil, err
	}

	return s.render(ctx, DocumentInput{
		Selector: selector,
		Filters:  filters,
		Payload:  payload,
		Brand:    &brand,
	})
}

// ExportSnapshotPDF renders what a dashboard session currently shows, without refetching.
func (s *ExportService) ExportSnapshotPDF(ctx context.Context, snap domain.DashboardSnapshot) (*domain.ExportResult, error) {
	ctx, span := exportTracer.Start(ctx, "ExportService.ExportSnapshotPDF")
	defer span.End()
	span.SetAttributes(
		attribute.String("report.id", string(snap.Report)),
		attribute.String("session.id", snap.SessionID),
	)

	return s.render(ctx, DocumentInput{
		Selector: snap.Report,
		Filters:  snap.Filters,
		Payload:  snap.Payload,
	})
}

// render builds the tree and hands it to the engine, falling back to the print view.
func (s *ExportService) render(ctx context.Context, in DocumentInput) (*domain.ExportResult, error) {
	if err := s.bulkhead.Acquire(ctx); err != nil {
		return nil, &domain.ErrTimeout{Operation: "pdf export"}
	}
	defer s.bulkhead.Release()

	tree := s.builder.Build(ctx, in)
	filename := PDFFilename(tree.Title(), s.builder.Now())

	body, err := s.renderPDF(ctx, tree)
	if err == nil {
		s.metrics.IncrExport(domain.FormatPDF, observability.OutcomeSuccess)
		s.logger.Info("pdf export completed",
			zap.String("report", string(in.Selector)),
			zap.String("filename", filename),
			zap.Int("bytes", len(body)),
		)
		return &domain.ExportResult{
			Filename:    filename,
			ContentType: ContentTypePDF,
			Body:        body,
		}, nil
	}

	s.logger.Warn("pdf engine failed, serving print view", zap.Error(err))
	view, printErr := s.printer.PrintView(tree)
	if printErr != nil {
		s.metrics.IncrExport(domain.FormatPDF, observability.OutcomeFailure)
		return nil, &domain.ErrExportEngine{Stage: "print", Err: fmt.Errorf("%v; print view: %w", err, printErr)}
	}

	s.metrics.IncrExport(domain.FormatPDF, observability.OutcomeFallback)
	return &domain.ExportResult{
		Filename:       strings.TrimSuffix(filename, ".pdf") + ".html",
		ContentType:    ContentTypePrintView,
		Body:           view,
		Fallback:       true,
		FallbackReason: err.Error(),
	}, nil
}

func (s *ExportService) renderPDF(ctx context.Context, tree domain.DocumentTree) ([]byte, error) {
	if err := s.engine.Load(); err != nil {
		return nil, &domain.ErrExportEngine{Stage: "load", Err: err}
	}
	body, err := s.engine.Render(ctx, tree)
	if err != nil {
		return nil, &domain.ErrExportEngine{Stage: "render", Err: err}
	}
	return body, nil
}
