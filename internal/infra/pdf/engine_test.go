package pdf_test

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"
	"time"

	"github.com/prime-insurance/claims-portal-bfa/internal/domain"
	"github.com/prime-insurance/claims-portal-bfa/internal/infra/pdf"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var company = domain.CompanyIdentity{Name: "PRIME Insurance", Tagline: "Claims Analytics", Address: "Mumbai"}

func pngAsset(t *testing.T) domain.BrandAsset {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 6, 2))
	for x := 0; x < 6; x++ {
		img.Set(x, 0, color.RGBA{0, 51, 102, 255})
		img.Set(x, 1, color.RGBA{0, 153, 204, 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return domain.BrandAsset{MIMEType: "image/png", Data: buf.Bytes(), Source: domain.BrandSourceBundled}
}

func svgAsset() domain.BrandAsset {
	return domain.BrandAsset{MIMEType: "image/svg+xml", Data: []byte("<svg/>"), Source: domain.BrandSourcePlaceholder, Placeholder: true}
}

func table(rows int) domain.TableDescription {
	t := domain.TableDescription{
		ID:    "customer-top",
		Title: "Top Customers",
		Columns: []domain.Column{
			{Key: "customer_name", Label: "Customer", Align: domain.AlignLeft},
			{Key: "claim_count", Label: "Claims", Align: domain.AlignRight},
			{Key: "total_claimed", Label: "Total Claimed", Align: domain.AlignRight},
			{Key: "last_claim_date", Label: "Last Claim", Align: domain.AlignCenter},
		},
	}
	for i := 0; i < rows; i++ {
		t.Rows = append(t.Rows, domain.Row{fmt.Sprintf("Customer %d with a rather long name that needs truncating", i), "4", "₹42,000", "15 Mar 2024"})
	}
	return t
}

func tree(header domain.Node, body ...domain.Node) domain.DocumentTree {
	nodes := []domain.Node{header, domain.SeparatorNode{}, domain.TitleNode{Text: "Customer Analysis Report"}}
	nodes = append(nodes, domain.BulletNode{Label: "Insurance Type", Value: "Motor"})
	nodes = append(nodes, body...)
	nodes = append(nodes, domain.FooterNode{Text: "PRIME Insurance | Report rpt-1 | Confidential"})
	return domain.NewDocumentTree("Customer Analysis Report", domain.Landscape, nodes)
}

func header(brand domain.BrandAsset) domain.HeaderNode {
	return domain.HeaderNode{
		Brand:       brand,
		Company:     company,
		GeneratedAt: time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC),
		ReportID:    "3f9c2a4e-1b2c-4d5e-8f90-123456789abc",
		StatusMark:  "FINAL",
	}
}

func TestRender_ProducesPDF(t *testing.T) {
	e := pdf.NewEngine("", zap.NewNop())

	cases := map[string]domain.DocumentTree{
		"raster logo": tree(header(pngAsset(t)), domain.TableNode{Table: table(3), Caption: "Generated by portal"}),
		"drawn logo":  tree(header(svgAsset()), domain.TableNode{Table: table(3), Caption: "Generated by portal"}),
		"text header": tree(domain.TextHeaderNode{Company: company, GeneratedAt: time.Now()}, domain.PlaceholderNode{Text: "No data available for this report."}),
		"broken raster": tree(header(domain.BrandAsset{MIMEType: "image/png", Data: []byte("not a png")}),
			domain.PlaceholderNode{Text: "No data available for this report."}),
	}
	for name, tr := range cases {
		t.Run(name, func(t *testing.T) {
			out, err := e.Render(context.Background(), tr)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
		})
	}
}

func TestRender_UnsupportedRasterFallsBackToDrawnLogo(t *testing.T) {
	e := pdf.NewEngine("", zap.NewNop())

	deep := image.NewGray16(image.Rect(0, 0, 6, 2))
	for x := 0; x < 6; x++ {
		deep.SetGray16(x, 0, color.Gray16{Y: 0x1234})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, deep))
	brand := domain.BrandAsset{MIMEType: "image/png", Data: buf.Bytes(), Source: domain.BrandSourceBundled}

	out, err := e.Render(context.Background(), tree(header(brand), domain.TableNode{Table: table(3)}))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.NotContains(t, string(out), "/Subtype /Image")

	withLogo, err := e.Render(context.Background(), tree(header(pngAsset(t)), domain.TableNode{Table: table(3)}))
	require.NoError(t, err)
	assert.Contains(t, string(withLogo), "/Subtype /Image")
}

func TestRender_PaginatesLongTables(t *testing.T) {
	e := pdf.NewEngine("", zap.NewNop())

	short, err := e.Render(context.Background(), tree(header(svgAsset()), domain.TableNode{Table: table(2)}))
	require.NoError(t, err)
	long, err := e.Render(context.Background(), tree(header(svgAsset()), domain.TableNode{Table: table(120)}))
	require.NoError(t, err)

	assert.Greater(t, pages(long), pages(short))
}

func pages(doc []byte) int {
	return bytes.Count(doc, []byte("/Type /Page")) - bytes.Count(doc, []byte("/Type /Pages"))
}

func TestRender_CancelledContext(t *testing.T) {
	e := pdf.NewEngine("", zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Render(ctx, tree(header(svgAsset())))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoad_MissingFontDir(t *testing.T) {
	e := pdf.NewEngine(filepath.Join(t.TempDir(), "missing"), zap.NewNop())

	err := e.Load()
	require.Error(t, err)
	assert.Equal(t, err, e.Load(), "load runs once")

	_, err = e.Render(context.Background(), tree(header(svgAsset())))
	assert.Error(t, err)
}

func TestLoad_CoreFonts(t *testing.T) {
	assert.NoError(t, pdf.NewEngine("", zap.NewNop()).Load())
	assert.NoError(t, pdf.NewEngine(t.TempDir(), zap.NewNop()).Load())
}
