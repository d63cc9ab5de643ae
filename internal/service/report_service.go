package service

import (
	"context"
	"fmt"
	"time"

	"github.com/prime-insurance/claims-portal-bfa/internal/domain"
	"github.com/prime-insurance/claims-portal-bfa/internal/infra/observability"
	"github.com/prime-insurance/claims-portal-bfa/internal/port"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ReportService serves one-shot report reads that are not tied to a dashboard session.
type ReportService struct {
	loader    *reportLoader
	renderers *Renderers
	logger    *zap.Logger
}

// NewReportService creates the stateless report service.
func NewReportService(fetcher port.ReportFetcher, renderers *Renderers, metrics *observability.Metrics, logger *zap.Logger) *ReportService {
	return &ReportService{
		loader:    &reportLoader{fetcher: fetcher, metrics: metrics, logger: logger},
		renderers: renderers,
		logger:    logger,
	}
}

// ListReports returns the selectable reports in dashboard order.
func (s *ReportService) ListReports() []domain.ReportInfo {
	out := make([]domain.ReportInfo, 0, len(domain.ReportSelectors))
	for _, sel := range domain.ReportSelectors {
		out = append(out, domain.ReportInfo{ID: sel, Title: sel.Title()})
	}
	return out
}

// GetReport fetches and renders one report. Transport failures are returned as errors.
func (s *ReportService) GetReport(ctx context.Context, selector domain.ReportSelector, filters domain.FilterState) (*domain.DashboardSnapshot, error) {
	ctx, span := reportTracer.Start(ctx, "ReportService.GetReport")
	defer span.End()
	span.SetAttributes(attribute.String("report.id", string(selector)))

	payload, filters, err := s.fetch(ctx, selector, filters)
	if err != nil {
		return nil, err
	}

	tables := s.renderers.RenderPayload(payload)
	if tables == nil {
		tables = []domain.TableDescription{}
	}
	now := time.Now()
	return &domain.DashboardSnapshot{
		Report:    selector,
		Title:     selector.Title(),
		Filters:   filters,
		Status:    domain.StatusReady,
		Payload:   payload,
		Tables:    tables,
		NoData:    len(tables) == 0,
		FetchedAt: &now,
	}, nil
}

// fetch validates the request and loads the payload. A nil payload means no data.
func (s *ReportService) fetch(ctx context.Context, selector domain.ReportSelector, filters domain.FilterState) (domain.ReportPayload, domain.FilterState, error) {
	if !selector.Valid() {
		return nil, filters, &domain.ErrValidation{Field: "report", Message: "unknown report " + string(selector)}
	}
	filters = filters.Normalize()
	if err := filters.Validate(); err != nil {
		return nil, filters, err
	}
	payload, err := s.loader.load(ctx, selector, ComposeQuery(filters, selector))
	if err != nil {
		return nil, filters, fmt.Errorf("fetch %s report: %w", selector, err)
	}
	return payload, filters, nil
}
