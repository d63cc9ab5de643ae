package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prime-insurance/claims-portal-bfa/internal/domain"
	"github.com/prime-insurance/claims-portal-bfa/internal/infra/observability"
)

// --- Fakes ---

type fetchCall struct {
	selector domain.ReportSelector
	query    string
}

// fakeFetcher serves canned bodies per selector and records every call.
// A gate, when set for a selector, holds the response until it is closed.
type fakeFetcher struct {
	mu      sync.Mutex
	bodies  map[domain.ReportSelector]string
	errs    map[domain.ReportSelector]error
	gates   map[domain.ReportSelector]chan struct{}
	started chan domain.ReportSelector
	calls   []fetchCall
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		bodies: map[domain.ReportSelector]string{},
		errs:   map[domain.ReportSelector]error{},
		gates:  map[domain.ReportSelector]chan struct{}{},
	}
}

func (f *fakeFetcher) FetchReport(ctx context.Context, selector domain.ReportSelector, q domain.Query) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fetchCall{selector: selector, query: q.Encode()})
	gate := f.gates[selector]
	started := f.started
	f.mu.Unlock()

	if started != nil {
		started <- selector
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[selector]; err != nil {
		return nil, err
	}
	return []byte(f.bodies[selector]), nil
}

func (f *fakeFetcher) set(selector domain.ReportSelector, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodies[selector] = body
	delete(f.errs, selector)
}

func (f *fakeFetcher) fail(selector domain.ReportSelector, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[selector] = err
}

func (f *fakeFetcher) gate(selector domain.ReportSelector) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[selector] = ch
	return ch
}

func (f *fakeFetcher) history() []fetchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]fetchCall, len(f.calls))
	copy(out, f.calls)
	return out
}

type fakeCSV struct {
	body  []byte
	err   error
	query domain.Query
}

func (f *fakeCSV) ExportCSV(_ context.Context, q domain.Query) ([]byte, error) {
	f.query = q
	return f.body, f.err
}

type assetResponse struct {
	body        []byte
	contentType string
	err         error
}

type fakeAssets struct {
	mu        sync.Mutex
	responses map[string]assetResponse
	requested []string
}

func (f *fakeAssets) FetchAsset(_ context.Context, path string) ([]byte, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requested = append(f.requested, path)
	r, ok := f.responses[path]
	if !ok {
		return nil, "", errors.New("404 not found")
	}
	return r.body, r.contentType, r.err
}

type staticBrand struct {
	asset domain.BrandAsset
	calls int
}

func (s *staticBrand) Resolve(context.Context) domain.BrandAsset {
	s.calls++
	return s.asset
}

type panicBrand struct{}

func (panicBrand) Resolve(context.Context) domain.BrandAsset { panic("brand store exploded") }

type fakeEngine struct {
	loadErr   error
	renderErr error
	rendered  []domain.DocumentTree
}

func (e *fakeEngine) Load() error { return e.loadErr }

func (e *fakeEngine) Render(_ context.Context, tree domain.DocumentTree) ([]byte, error) {
	if e.renderErr != nil {
		return nil, e.renderErr
	}
	e.rendered = append(e.rendered, tree)
	return []byte("%PDF-1.4 fake"), nil
}

type fakePrinter struct {
	err   error
	trees []domain.DocumentTree
}

func (p *fakePrinter) PrintView(tree domain.DocumentTree) ([]byte, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.trees = append(p.trees, tree)
	return []byte("<html>print</html>"), nil
}

// --- Fixtures ---

var pngLogo = []byte("\x89PNG\r\n\x1a\nlogo")

const overviewBody = `{
	"total_claims": 200,
	"pending_claims": "50",
	"approved_claims": 120,
	"rejected_claims": 20,
	"under_review_claims": 10,
	"total_claimed_amount": "1500000.50",
	"total_approved_amount": 900000,
	"avg_claim_amount": 7500.4,
	"approval_rate": 60,
	"high_risk_claims": 7,
	"urgent_claims": 3,
	"unique_customers": 180,
	"avg_fraud_score": 0.34
}`

const fraudBody = `{
	"risk_analysis": [
		{"risk_level": "HIGH", "insurance_type": "motor", "claim_count": 4, "total_amount": 80000, "avg_fraud_score": 0.91},
		{"risk_level": "low", "insurance_type": "health", "claim_count": 40, "total_amount": 120000, "avg_fraud_score": 0.12}
	],
	"score_distribution": [
		{"score_range": "0-0.3", "count": 30, "avg_amount": 2500},
		{"score_range": "0.3-0.7", "count": 10, "avg_amount": 6000}
	]
}`

const financialBody = `{
	"by_insurance_type": [
		{"insurance_type": "motor", "total_claims": 10, "total_claimed": 1000, "total_paid": 505, "avg_claim_amount": 100}
	],
	"monthly_breakdown": [
		{"year": 2024, "month": 1, "claims_count": 5, "monthly_claimed": 500, "monthly_payout": 250}
	]
}`

const claimsByTypeBody = `[
	{"insurance_type": "motor", "categories": [
		{"category": "accident", "count": 3, "total_amount": 3000, "avg_amount": 1000, "avg_fraud_score": 0.2},
		{"category": "theft", "count": 1, "total_amount": 500, "avg_amount": 500, "avg_fraud_score": 0.5}
	]},
	{"insurance_type": "home", "categories": []}
]`

// counterValue sums every series of the named counter in the metrics registry.
func counterValue(t *testing.T, m *observability.Metrics, name string) float64 {
	t.Helper()
	families, err := m.Registry.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			total += metric.GetCounter().GetValue()
		}
	}
	return total
}

// gaugeValue reads the named gauge from the metrics registry.
func gaugeValue(t *testing.T, m *observability.Metrics, name string) float64 {
	t.Helper()
	families, err := m.Registry.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name && len(mf.GetMetric()) > 0 {
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	return 0
}
