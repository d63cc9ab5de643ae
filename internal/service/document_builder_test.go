package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prime-insurance/claims-portal-bfa/internal/domain"
	"github.com/prime-insurance/claims-portal-bfa/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

func newBuilder(t *testing.T, brand *staticBrand) *service.DocumentBuilder {
	t.Helper()
	return service.NewDocumentBuilder(
		usRenderers(t),
		brand,
		company,
		"PRIME Insurance Claims Portal",
		zap.NewNop(),
		service.WithClock(func() time.Time { return fixedNow }),
		service.WithReportIDs(func() string { return "rpt-0001" }),
	)
}

func pngBrand() *staticBrand {
	return &staticBrand{asset: domain.BrandAsset{MIMEType: "image/png", Data: pngLogo, Source: domain.BrandSourceBundled}}
}

func kinds(tree domain.DocumentTree) []domain.NodeKind {
	var out []domain.NodeKind
	for _, n := range tree.Nodes() {
		out = append(out, n.Kind())
	}
	return out
}

func TestBuild_NodeOrder(t *testing.T) {
	b := newBuilder(t, pngBrand())
	tree := b.Build(context.Background(), service.DocumentInput{
		Selector: domain.ReportFraudAnalysis,
		Filters:  domain.FilterState{DateFrom: "2024-01-01", DateTo: "2024-03-31", InsuranceType: "motor", Status: domain.FilterAll},
		Payload:  decode(t, domain.ReportFraudAnalysis, fraudBody),
	})

	assert.Equal(t, []domain.NodeKind{
		domain.NodeHeader,
		domain.NodeSeparator,
		domain.NodeTitle,
		domain.NodeBullet,
		domain.NodeBullet,
		domain.NodeTable,
		domain.NodeTable,
		domain.NodeFooter,
	}, kinds(tree))
	assert.Equal(t, "Fraud Analysis Report", tree.Title())
	assert.Equal(t, domain.Landscape, tree.Orientation())

	nodes := tree.Nodes()
	header := nodes[0].(domain.HeaderNode)
	assert.Equal(t, "FINAL", header.StatusMark)
	assert.Equal(t, "rpt-0001", header.ReportID)
	assert.Equal(t, fixedNow, header.GeneratedAt)

	assert.Equal(t, domain.BulletNode{Label: "Date Range", Value: "01 Jan 2024 to 31 Mar 2024"}, nodes[3])
	assert.Equal(t, domain.BulletNode{Label: "Insurance Type", Value: "Motor"}, nodes[4])

	for _, tn := range tree.Tables() {
		assert.Equal(t, "Generated by PRIME Insurance Claims Portal on 15 Mar 2024 14:30", tn.Caption)
	}
	footer := nodes[len(nodes)-1].(domain.FooterNode)
	assert.Equal(t, "PRIME Insurance | Report rpt-0001 | Confidential", footer.Text)
}

func TestBuild_TablesMatchDashboard(t *testing.T) {
	r := usRenderers(t)
	payload := decode(t, domain.ReportFinancial, financialBody)
	tree := newBuilder(t, pngBrand()).Build(context.Background(), service.DocumentInput{
		Selector: domain.ReportFinancial,
		Filters:  domain.DefaultFilters(),
		Payload:  payload,
	})

	var got []domain.TableDescription
	for _, tn := range tree.Tables() {
		got = append(got, tn.Table)
	}
	assert.Equal(t, r.RenderPayload(payload), got)
}

func TestBuild_NoDataPlaceholder(t *testing.T) {
	tree := newBuilder(t, pngBrand()).Build(context.Background(), service.DocumentInput{
		Selector: domain.ReportFinancial,
		Filters:  domain.DefaultFilters(),
		Payload:  domain.FinancialPayload{},
	})

	assert.Equal(t, []domain.NodeKind{
		domain.NodeHeader, domain.NodeSeparator, domain.NodeTitle, domain.NodePlaceholder, domain.NodeFooter,
	}, kinds(tree))
	nodes := tree.Nodes()
	assert.Equal(t, service.NoDataText, nodes[3].(domain.PlaceholderNode).Text)
	assert.Equal(t, "NO DATA", nodes[0].(domain.HeaderNode).StatusMark)
}

func TestBuild_UnknownSelector(t *testing.T) {
	brand := pngBrand()
	tree := newBuilder(t, brand).Build(context.Background(), service.DocumentInput{
		Selector: "quarterly-magic",
		Filters:  domain.DefaultFilters(),
		Payload:  decode(t, domain.ReportOverview, overviewBody),
	})

	assert.Empty(t, tree.Tables())
	assert.Equal(t, "Analytics Report", tree.Title())
	assert.Contains(t, kinds(tree), domain.NodePlaceholder)
	assert.Equal(t, 1, brand.calls, "brand still resolved for the header")
}

func TestBuild_PayloadForAnotherReportIsIgnored(t *testing.T) {
	tree := newBuilder(t, pngBrand()).Build(context.Background(), service.DocumentInput{
		Selector: domain.ReportFinancial,
		Payload:  decode(t, domain.ReportOverview, overviewBody),
	})
	assert.Empty(t, tree.Tables())
}

func TestBuild_PresetBrandSkipsResolver(t *testing.T) {
	brand := pngBrand()
	preset := service.PlaceholderBrand(company)
	tree := newBuilder(t, brand).Build(context.Background(), service.DocumentInput{
		Selector: domain.ReportOverview,
		Payload:  decode(t, domain.ReportOverview, overviewBody),
		Brand:    &preset,
	})

	assert.Equal(t, 0, brand.calls)
	assert.True(t, tree.Nodes()[0].(domain.HeaderNode).Brand.Placeholder)
}

func TestBuild_HeaderDegradesToText(t *testing.T) {
	t.Run("invalid brand asset", func(t *testing.T) {
		brand := &staticBrand{asset: domain.BrandAsset{MIMEType: "text/html", Data: []byte("oops")}}
		tree := newBuilder(t, brand).Build(context.Background(), service.DocumentInput{Selector: domain.ReportOverview})
		assert.Equal(t, domain.NodeTextHeader, tree.Nodes()[0].Kind())
	})

	t.Run("resolver panics", func(t *testing.T) {
		b := service.NewDocumentBuilder(usRenderers(t), panicBrand{}, company, "portal", zap.NewNop())
		tree := b.Build(context.Background(), service.DocumentInput{Selector: domain.ReportOverview})
		require.Equal(t, domain.NodeTextHeader, tree.Nodes()[0].Kind())
		assert.Equal(t, company, tree.Nodes()[0].(domain.TextHeaderNode).Company)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		tree := newBuilder(t, pngBrand()).Build(ctx, service.DocumentInput{Selector: domain.ReportOverview})
		assert.Equal(t, domain.NodeTextHeader, tree.Nodes()[0].Kind())
	})
}

func TestBuild_OpenEndedDateRange(t *testing.T) {
	b := newBuilder(t, pngBrand())

	from := b.Build(context.Background(), service.DocumentInput{
		Selector: domain.ReportOverview,
		Filters:  domain.FilterState{DateFrom: "2024-01-01"},
	})
	until := b.Build(context.Background(), service.DocumentInput{
		Selector: domain.ReportOverview,
		Filters:  domain.FilterState{DateTo: "2024-02-01", Status: "under_review"},
	})

	assert.Equal(t, domain.BulletNode{Label: "Date Range", Value: "From 01 Jan 2024"}, from.Nodes()[3])
	assert.Equal(t, domain.BulletNode{Label: "Date Range", Value: "Until 01 Feb 2024"}, until.Nodes()[3])
	assert.Equal(t, domain.BulletNode{Label: "Status", Value: "Under Review"}, until.Nodes()[4])
}

func TestBuild_TreeIsImmutable(t *testing.T) {
	tree := newBuilder(t, pngBrand()).Build(context.Background(), service.DocumentInput{Selector: domain.ReportOverview})
	nodes := tree.Nodes()
	nodes[0] = domain.SeparatorNode{}
	assert.NotEqual(t, domain.NodeSeparator, tree.Nodes()[0].Kind())
}

func TestBuild_DefaultReportIDsAreUnique(t *testing.T) {
	b := service.NewDocumentBuilder(usRenderers(t), pngBrand(), company, "portal", zap.NewNop())
	footer := func() string {
		nodes := b.Build(context.Background(), service.DocumentInput{Selector: domain.ReportOverview}).Nodes()
		return nodes[len(nodes)-1].(domain.FooterNode).Text
	}
	a, c := footer(), footer()
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasSuffix(a, "| Confidential"))
}
