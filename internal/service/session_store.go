package service

import (
	"context"

	"github.com/prime-insurance/claims-portal-bfa/internal/domain"
	"github.com/prime-insurance/claims-portal-bfa/internal/infra/observability"
	"github.com/prime-insurance/claims-portal-bfa/internal/port"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionStore keeps one ReportController per open dashboard.
type SessionStore struct {
	cache     port.Cache[*ReportController]
	fetcher   port.ReportFetcher
	renderers *Renderers
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewSessionStore creates a store backed by cache.
func NewSessionStore(
	cache port.Cache[*ReportController],
	fetcher port.ReportFetcher,
	renderers *Renderers,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *SessionStore {
	return &SessionStore{
		cache:     cache,
		fetcher:   fetcher,
		renderers: renderers,
		metrics:   metrics,
		logger:    logger,
	}
}

// Create opens a session and mounts it (first fetch).
func (s *SessionStore) Create(ctx context.Context) (*ReportController, domain.DashboardSnapshot) {
	ctx, span := reportTracer.Start(ctx, "SessionStore.Create")
	defer span.End()

	c := NewReportController(uuid.NewString(), s.fetcher, s.renderers, s.metrics, s.logger)
	s.cache.Set(c.ID(), c)
	s.metrics.SessionOpened()
	s.logger.Debug("dashboard session created", zap.String("session_id", c.ID()))

	return c, c.Mount(ctx)
}

// Get returns the controller of a live session.
func (s *SessionStore) Get(id string) (*ReportController, error) {
	c, ok := s.cache.Get(id)
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "dashboard session", ID: id}
	}
	return c, nil
}

// Expired accounts for a session the cache dropped after its TTL.
func (s *SessionStore) Expired(id string) {
	s.metrics.SessionClosed()
	s.logger.Debug("dashboard session expired", zap.String("session_id", id))
}

// Close ends a session.
func (s *SessionStore) Close(id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	s.cache.Delete(id)
	s.metrics.SessionClosed()
	return nil
}
