package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prime-insurance/claims-portal-bfa/internal/domain"
	"github.com/prime-insurance/claims-portal-bfa/internal/infra/observability"
	"github.com/prime-insurance/claims-portal-bfa/internal/infra/resilience"
	"github.com/prime-insurance/claims-portal-bfa/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type exportFixture struct {
	fetcher  *fakeFetcher
	csv      *fakeCSV
	brand    *staticBrand
	engine   *fakeEngine
	printer  *fakePrinter
	bulkhead *resilience.Bulkhead
	metrics  *observability.Metrics
	svc      *service.ExportService
}

func newExportFixture(t *testing.T) *exportFixture {
	t.Helper()
	fx := &exportFixture{
		fetcher:  newFakeFetcher(),
		csv:      &fakeCSV{body: []byte("claim_id,amount\n1,100\n")},
		brand:    pngBrand(),
		engine:   &fakeEngine{},
		printer:  &fakePrinter{},
		bulkhead: resilience.NewBulkhead(1),
		metrics:  observability.NewMetrics(),
	}
	logger := zap.NewNop()
	renderers := usRenderers(t)
	reports := service.NewReportService(fx.fetcher, renderers, fx.metrics, logger)
	builder := newBuilder(t, fx.brand)
	fx.svc = service.NewExportService(reports, fx.csv, builder, fx.brand, fx.engine, fx.printer, fx.bulkhead, fx.metrics, logger)
	return fx
}

func TestFilenames(t *testing.T) {
	assert.Equal(t, "fraud-analysis_report.csv", service.CSVFilename(domain.ReportFraudAnalysis))
	assert.Equal(t,
		"PRIME_Insurance_Fraud_Analysis_Report_2024-03-15_Landscape.pdf",
		service.PDFFilename("Fraud Analysis Report", fixedNow),
	)
}

func TestExportCSV(t *testing.T) {
	fx := newExportFixture(t)

	res, err := fx.svc.ExportCSV(context.Background(), domain.ReportFraudAnalysis,
		domain.FilterState{DateFrom: "2024-01-01", Status: "approved"})
	require.NoError(t, err)

	assert.Equal(t, "fraud-analysis_report.csv", res.Filename)
	assert.Equal(t, service.ContentTypeCSV, res.ContentType)
	assert.Equal(t, fx.csv.body, res.Body)
	assert.False(t, res.Fallback)
	assert.Equal(t, "report_type=fraud-analysis&date_from=2024-01-01&status=approved", fx.csv.query.Encode())
	assert.EqualValues(t, 1, fx.metrics.ExportSnapshot().CSVSuccess)
}

func TestExportCSV_Failures(t *testing.T) {
	t.Run("unknown report", func(t *testing.T) {
		fx := newExportFixture(t)
		_, err := fx.svc.ExportCSV(context.Background(), "quarterly-magic", domain.DefaultFilters())
		var verr *domain.ErrValidation
		assert.ErrorAs(t, err, &verr)
		assert.Nil(t, fx.csv.query)
	})

	t.Run("upstream error", func(t *testing.T) {
		fx := newExportFixture(t)
		fx.csv.err = &domain.ErrExternalService{Service: "analytics", StatusCode: 502, Err: errors.New("bad gateway")}

		_, err := fx.svc.ExportCSV(context.Background(), domain.ReportOverview, domain.DefaultFilters())
		var ext *domain.ErrExternalService
		require.ErrorAs(t, err, &ext)
		assert.EqualValues(t, 1, fx.metrics.ExportSnapshot().CSVFailure)
	})
}

func TestExportPDF(t *testing.T) {
	fx := newExportFixture(t)
	fx.fetcher.set(domain.ReportFraudAnalysis, fraudBody)

	res, err := fx.svc.ExportPDF(context.Background(), domain.ReportFraudAnalysis, domain.DefaultFilters())
	require.NoError(t, err)

	assert.Equal(t, "PRIME_Insurance_Fraud_Analysis_Report_2024-03-15_Landscape.pdf", res.Filename)
	assert.Equal(t, service.ContentTypePDF, res.ContentType)
	assert.False(t, res.Fallback)
	require.Len(t, fx.engine.rendered, 1)
	assert.Len(t, fx.engine.rendered[0].Tables(), 2)
	assert.Equal(t, 1, fx.brand.calls)
	assert.Empty(t, fx.printer.trees)
	assert.EqualValues(t, 1, fx.metrics.ExportSnapshot().PDFSuccess)
}

func TestExportPDF_UnknownSelectorRendersPlaceholder(t *testing.T) {
	fx := newExportFixture(t)

	res, err := fx.svc.ExportPDF(context.Background(), "quarterly-magic", domain.DefaultFilters())
	require.NoError(t, err)

	assert.Empty(t, fx.fetcher.history())
	assert.Equal(t, "PRIME_Insurance_Analytics_Report_2024-03-15_Landscape.pdf", res.Filename)
	tree := fx.engine.rendered[0]
	assert.Empty(t, tree.Tables())
	assert.Contains(t, kinds(tree), domain.NodePlaceholder)
}

func TestExportPDF_FetchErrorFails(t *testing.T) {
	fx := newExportFixture(t)
	fx.fetcher.fail(domain.ReportFinancial, &domain.ErrTimeout{Operation: "analytics"})

	_, err := fx.svc.ExportPDF(context.Background(), domain.ReportFinancial, domain.DefaultFilters())

	var timeout *domain.ErrTimeout
	require.ErrorAs(t, err, &timeout)
	assert.Empty(t, fx.engine.rendered)
}

func TestExportPDF_InvalidFilters(t *testing.T) {
	fx := newExportFixture(t)
	_, err := fx.svc.ExportPDF(context.Background(), domain.ReportOverview, domain.FilterState{DateFrom: "15/03/2024"})
	var verr *domain.ErrValidation
	assert.ErrorAs(t, err, &verr)
}

func TestExportPDF_EngineLoadFailureFallsBackToPrint(t *testing.T) {
	fx := newExportFixture(t)
	fx.fetcher.set(domain.ReportOverview, overviewBody)
	fx.engine.loadErr = errors.New("font directory missing")

	res, err := fx.svc.ExportPDF(context.Background(), domain.ReportOverview, domain.DefaultFilters())
	require.NoError(t, err)

	assert.True(t, res.Fallback)
	assert.Equal(t, service.ContentTypePrintView, res.ContentType)
	assert.Equal(t, "PRIME_Insurance_Overview_Report_2024-03-15_Landscape.html", res.Filename)
	assert.Contains(t, res.FallbackReason, "font directory missing")
	require.Len(t, fx.printer.trees, 1)
	assert.Len(t, fx.printer.trees[0].Tables(), 2)

	stats := fx.metrics.ExportSnapshot()
	assert.EqualValues(t, 1, stats.PDFPrintFallback)
	assert.InDelta(t, 1.0, stats.FallbackRate, 0.0001)
}

func TestExportPDF_RenderAndPrintFailure(t *testing.T) {
	fx := newExportFixture(t)
	fx.engine.renderErr = errors.New("layout overflow")
	fx.printer.err = errors.New("template broken")

	_, err := fx.svc.ExportPDF(context.Background(), "quarterly-magic", domain.DefaultFilters())

	var engineErr *domain.ErrExportEngine
	require.ErrorAs(t, err, &engineErr)
	assert.Equal(t, "print", engineErr.Stage)
}

func TestExportPDF_BulkheadFull(t *testing.T) {
	fx := newExportFixture(t)
	require.NoError(t, fx.bulkhead.Acquire(context.Background()))
	defer fx.bulkhead.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := fx.svc.ExportPDF(ctx, "quarterly-magic", domain.DefaultFilters())
	var timeout *domain.ErrTimeout
	assert.ErrorAs(t, err, &timeout)
}

func TestExportSnapshotPDF_UsesSessionState(t *testing.T) {
	fx := newExportFixture(t)
	fx.fetcher.set(domain.ReportFinancial, financialBody)
	ctrl, _ := newController(t, fx.fetcher)
	_, err := ctrl.SelectReport(context.Background(), domain.ReportFinancial)
	require.NoError(t, err)
	calls := len(fx.fetcher.history())

	res, err := fx.svc.ExportSnapshotPDF(context.Background(), ctrl.Snapshot())
	require.NoError(t, err)

	assert.Equal(t, calls, len(fx.fetcher.history()), "export must not refetch")
	assert.Equal(t, "PRIME_Insurance_Financial_Report_2024-03-15_Landscape.pdf", res.Filename)
	assert.Len(t, fx.engine.rendered[0].Tables(), 2)
}

func TestReportService_GetReport(t *testing.T) {
	f := newFakeFetcher()
	f.set(domain.ReportOverview, overviewBody)
	svc := service.NewReportService(f, usRenderers(t), observability.NewMetrics(), zap.NewNop())

	assert.Len(t, svc.ListReports(), len(domain.ReportSelectors))
	assert.Equal(t, domain.ReportOverview, svc.ListReports()[0].ID)

	snap, err := svc.GetReport(context.Background(), domain.ReportOverview, domain.FilterState{})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReady, snap.Status)
	assert.Equal(t, domain.DefaultFilters(), snap.Filters)
	assert.Len(t, snap.Tables, 2)

	_, err = svc.GetReport(context.Background(), "nope", domain.FilterState{})
	var verr *domain.ErrValidation
	assert.ErrorAs(t, err, &verr)
}
