package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/prime-insurance/claims-portal-bfa/internal/domain"
	"github.com/prime-insurance/claims-portal-bfa/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("client")

const analyticsService = "analytics"

// AnalyticsClient calls the remote analytics API (GET /reports/...).
type AnalyticsClient struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	logger     *zap.Logger
}

// NewAnalyticsClient creates a new AnalyticsClient.
func NewAnalyticsClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, logger *zap.Logger) *AnalyticsClient {
	return &AnalyticsClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		cb:         cb,
		cfg:        cfg,
		logger:     logger,
	}
}

// FetchReport returns the raw body of GET /reports/{selector}?{query}.
func (c *AnalyticsClient) FetchReport(ctx context.Context, selector domain.ReportSelector, query domain.Query) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "AnalyticsClient.FetchReport")
	defer span.End()
	span.SetAttributes(attribute.String("report.id", string(selector)))

	url := fmt.Sprintf("%s/reports/%s", c.baseURL, selector)
	if q := query.Encode(); q != "" {
		url += "?" + q
	}
	return c.get(ctx, url, "application/json")
}

// ExportCSV returns the CSV bytes of GET /reports/export?{query}. The query
// already carries report_type.
func (c *AnalyticsClient) ExportCSV(ctx context.Context, query domain.Query) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "AnalyticsClient.ExportCSV")
	defer span.End()
	if rt, ok := query.Get("report_type"); ok {
		span.SetAttributes(attribute.String("report.id", rt))
	}

	url := fmt.Sprintf("%s/reports/export", c.baseURL)
	if q := query.Encode(); q != "" {
		url += "?" + q
	}
	return c.get(ctx, url, "text/csv")
}

// get performs a GET with retry and circuit breaker. 4xx responses are not retried.
func (c *AnalyticsClient) get(ctx context.Context, url, accept string) ([]byte, error) {
	var body []byte
	var status int

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return resilience.Permanent(err)
			}
			req.Header.Set("Accept", accept)

			resp, err := c.httpClient.Do(req)
			if err != nil {
				c.logger.Warn("analytics: request failed",
					zap.String("url", url),
					zap.Error(err),
				)
				return err
			}
			defer resp.Body.Close()

			b, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			status = resp.StatusCode

			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				c.logger.Warn("analytics: non-2xx response",
					zap.String("url", url),
					zap.Int("status", resp.StatusCode),
				)
				statusErr := fmt.Errorf("analytics API returned status %d", resp.StatusCode)
				if resp.StatusCode >= 400 && resp.StatusCode < 500 {
					return resilience.Permanent(statusErr)
				}
				return statusErr
			}

			c.logger.Debug("analytics: request OK",
				zap.String("url", url),
				zap.Int("status", resp.StatusCode),
				zap.Int("bytes", len(b)),
			)
			body = b
			return nil
		})
	})

	if err != nil {
		return nil, classifyError(analyticsService, status, err)
	}
	return body, nil
}

// classifyError maps transport outcomes onto domain errors.
func classifyError(service string, status int, err error) error {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return &domain.ErrCircuitOpen{Service: service}
	case errors.Is(err, context.DeadlineExceeded):
		return &domain.ErrTimeout{Operation: service}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &domain.ErrTimeout{Operation: service}
	}
	if status >= 200 && status < 300 {
		status = 0
	}
	return &domain.ErrExternalService{Service: service, StatusCode: status, Err: err}
}
