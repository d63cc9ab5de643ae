package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prime-insurance/claims-portal-bfa/internal/domain"
	"github.com/prime-insurance/claims-portal-bfa/internal/infra/observability"
	"github.com/prime-insurance/claims-portal-bfa/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var reportTracer = otel.Tracer("service/report")

// reportLoader performs one fetch + decode and records its metrics.
type reportLoader struct {
	fetcher port.ReportFetcher
	metrics *observability.Metrics
	logger  *zap.Logger
}

// load returns (nil, nil) when the body is not data for selector.
func (l *reportLoader) load(ctx context.Context, selector domain.ReportSelector, q domain.Query) (domain.ReportPayload, error) {
	start := time.Now()
	raw, err := l.fetcher.FetchReport(ctx, selector, q)
	if err != nil {
		l.metrics.RecordFetch(selector, observability.OutcomeFailure, time.Since(start))
		l.metrics.IncrExternalError("analytics")
		return nil, err
	}

	payload, ok := domain.DecodePayload(selector, raw)
	if !ok {
		l.metrics.RecordFetch(selector, observability.OutcomeNoData, time.Since(start))
		l.logger.Debug("report body is not data for selector",
			zap.String("report", string(selector)),
			zap.Int("bytes", len(raw)),
		)
		return nil, nil
	}
	l.metrics.RecordFetch(selector, observability.OutcomeSuccess, time.Since(start))
	return payload, nil
}

// ReportController is the fetch state machine of one dashboard session:
// idle → loading → ready | failed. Each transition method issues exactly one
// fetch. Responses for a superseded request are dropped.
type ReportController struct {
	id        string
	loader    *reportLoader
	renderers *Renderers
	logger    *zap.Logger

	mu         sync.Mutex
	selector   domain.ReportSelector
	filters    domain.FilterState
	status     domain.FetchStatus
	payload    domain.ReportPayload
	errMsg     string
	fetchedAt  time.Time
	generation uint64
	lastQuery  domain.Query
}

// NewReportController creates an idle controller showing the overview with default filters.
func NewReportController(
	id string,
	fetcher port.ReportFetcher,
	renderers *Renderers,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *ReportController {
	return &ReportController{
		id:        id,
		loader:    &reportLoader{fetcher: fetcher, metrics: metrics, logger: logger},
		renderers: renderers,
		logger:    logger.With(zap.String("session_id", id)),
		selector:  domain.ReportOverview,
		filters:   domain.DefaultFilters(),
		status:    domain.StatusIdle,
	}
}

// ID is the session id.
func (c *ReportController) ID() string { return c.id }

// Mount performs the initial fetch.
func (c *ReportController) Mount(ctx context.Context) domain.DashboardSnapshot {
	c.mu.Lock()
	gen, sel, q := c.beginLocked()
	c.mu.Unlock()
	return c.complete(ctx, gen, sel, q)
}

// SelectReport switches the active report. The previous payload is dropped at once.
func (c *ReportController) SelectReport(ctx context.Context, selector domain.ReportSelector) (domain.DashboardSnapshot, error) {
	if !selector.Valid() {
		return domain.DashboardSnapshot{}, &domain.ErrValidation{Field: "report", Message: "unknown report " + string(selector)}
	}
	c.mu.Lock()
	c.selector = selector
	c.payload = nil
	gen, sel, q := c.beginLocked()
	c.mu.Unlock()
	return c.complete(ctx, gen, sel, q), nil
}

// ApplyFilters replaces the filter bar and refetches.
func (c *ReportController) ApplyFilters(ctx context.Context, f domain.FilterState) (domain.DashboardSnapshot, error) {
	f = f.Normalize()
	if err := f.Validate(); err != nil {
		return domain.DashboardSnapshot{}, err
	}
	c.mu.Lock()
	c.filters = f
	gen, sel, q := c.beginLocked()
	c.mu.Unlock()
	return c.complete(ctx, gen, sel, q), nil
}

// Refresh refetches with the current state.
func (c *ReportController) Refresh(ctx context.Context) domain.DashboardSnapshot {
	return c.Mount(ctx)
}

// Retry re-issues the last query for the last selector.
func (c *ReportController) Retry(ctx context.Context) domain.DashboardSnapshot {
	c.mu.Lock()
	var gen uint64
	var sel domain.ReportSelector
	var q domain.Query
	if c.lastQuery == nil && c.generation == 0 {
		gen, sel, q = c.beginLocked()
	} else {
		c.generation++
		gen, sel, q = c.generation, c.selector, c.lastQuery
		c.status = domain.StatusLoading
		c.errMsg = ""
	}
	c.mu.Unlock()
	return c.complete(ctx, gen, sel, q)
}

// Snapshot returns the current state without fetching.
func (c *ReportController) Snapshot() domain.DashboardSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// beginLocked enters loading and returns the request identity. c.mu must be held.
func (c *ReportController) beginLocked() (uint64, domain.ReportSelector, domain.Query) {
	c.generation++
	c.status = domain.StatusLoading
	c.errMsg = ""
	c.lastQuery = ComposeQuery(c.filters, c.selector)
	return c.generation, c.selector, c.lastQuery
}

func (c *ReportController) complete(ctx context.Context, gen uint64, sel domain.ReportSelector, q domain.Query) domain.DashboardSnapshot {
	ctx, span := reportTracer.Start(ctx, "ReportController.fetch")
	defer span.End()
	span.SetAttributes(
		attribute.String("report.id", string(sel)),
		attribute.Int64("report.generation", int64(gen)),
	)

	payload, err := c.loader.load(ctx, sel, q)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.loader.metrics.IncrStaleResponse()
		c.logger.Info("discarding stale report response",
			zap.String("report", string(sel)),
			zap.Uint64("generation", gen),
			zap.Uint64("current_generation", c.generation),
		)
		return c.snapshotLocked()
	}

	if err != nil {
		c.status = domain.StatusFailed
		c.payload = nil
		c.errMsg = userMessage(err)
		c.logger.Warn("report fetch failed", zap.String("report", string(sel)), zap.Error(err))
		return c.snapshotLocked()
	}

	c.status = domain.StatusReady
	c.payload = payload
	c.fetchedAt = time.Now()
	return c.snapshotLocked()
}

func (c *ReportController) snapshotLocked() domain.DashboardSnapshot {
	snap := domain.DashboardSnapshot{
		SessionID: c.id,
		Report:    c.selector,
		Title:     c.selector.Title(),
		Filters:   c.filters,
		Status:    c.status,
		Payload:   c.payload,
		Tables:    c.renderers.RenderPayload(c.payload),
		Error:     c.errMsg,
		Retryable: c.status == domain.StatusFailed,
	}
	if snap.Tables == nil {
		snap.Tables = []domain.TableDescription{}
	}
	snap.NoData = c.status == domain.StatusReady && len(snap.Tables) == 0
	if !c.fetchedAt.IsZero() && c.status == domain.StatusReady {
		at := c.fetchedAt
		snap.FetchedAt = &at
	}
	return snap
}

// userMessage keeps upstream detail out of the dashboard.
func userMessage(err error) string {
	var circuitOpen *domain.ErrCircuitOpen
	var timeout *domain.ErrTimeout
	switch {
	case errors.As(err, &circuitOpen):
		return "The analytics service is temporarily unavailable."
	case errors.As(err, &timeout):
		return "The analytics service did not respond in time."
	default:
		return "Failed to load the report."
	}
}
