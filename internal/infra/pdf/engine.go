// Package pdf lays out report document trees with gofpdf.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"
	"sync"
	"unicode"

	"github.com/prime-insurance/claims-portal-bfa/internal/domain"

	"github.com/jung-kurt/gofpdf/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("infra/pdf")

// Page geometry in millimetres.
const (
	marginLeft   = 12.0
	marginTop    = 18.0
	marginRight  = 12.0
	marginBottom = 16.0
	rowHeight    = 7.0
	logoWidth    = 60.0
	logoHeight   = 20.0
)

// Engine renders DocumentTrees as paginated A4 PDFs. It is safe for concurrent use.
type Engine struct {
	fontDir string
	logger  *zap.Logger

	once    sync.Once
	loadErr error
}

// NewEngine creates an engine. fontDir may be empty to use the core fonts only.
func NewEngine(fontDir string, logger *zap.Logger) *Engine {
	return &Engine{fontDir: fontDir, logger: logger}
}

// Load checks the engine can run. It does its work once; later calls return the first result.
func (e *Engine) Load() error {
	e.once.Do(func() {
		if e.fontDir != "" {
			fi, err := os.Stat(e.fontDir)
			if err != nil {
				e.loadErr = fmt.Errorf("font dir: %w", err)
				return
			}
			if !fi.IsDir() {
				e.loadErr = fmt.Errorf("font dir %s is not a directory", e.fontDir)
				return
			}
		}
		probe := gofpdf.New("L", "mm", "A4", e.fontDir)
		probe.AddPage()
		probe.SetFont("Helvetica", "", 10)
		probe.CellFormat(0, rowHeight, "probe", "", 1, "L", false, 0, "")
		if err := probe.Output(&bytes.Buffer{}); err != nil {
			e.loadErr = fmt.Errorf("probe document: %w", err)
			return
		}
		e.logger.Info("pdf engine loaded", zap.String("font_dir", e.fontDir))
	})
	return e.loadErr
}

// Render lays out tree. Landscape trees get landscape pages.
func (e *Engine) Render(ctx context.Context, tree domain.DocumentTree) ([]byte, error) {
	_, span := tracer.Start(ctx, "Engine.Render")
	defer span.End()
	span.SetAttributes(attribute.Int("document.nodes", tree.Len()))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := e.Load(); err != nil {
		return nil, err
	}

	orientation := "P"
	if tree.Orientation() == domain.Landscape {
		orientation = "L"
	}
	pdf := gofpdf.New(orientation, "mm", "A4", e.fontDir)
	pdf.SetTitle(tree.Title(), true)
	pdf.SetCreator("claims-portal-bfa", true)
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(true, marginBottom)
	pdf.AliasNbPages("")

	w := &writer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	footer := ""
	for _, n := range tree.Nodes() {
		if f, ok := n.(domain.FooterNode); ok {
			footer = f.Text
		}
	}

	title := tree.Title()
	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetTextColor(90, 90, 90)
		pageW, _ := pdf.GetPageSize()
		half := (pageW - marginLeft - marginRight) / 2
		w.cell(half, 6, title, "", 0, "L", false)
		w.cell(half, 6, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 1, "R", false)
		pdf.SetDrawColor(200, 200, 200)
		pdf.Line(marginLeft, pdf.GetY(), pageW-marginRight, pdf.GetY())
		pdf.Ln(3)
		pdf.SetTextColor(0, 0, 0)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pageW, _ := pdf.GetPageSize()
		pdf.SetDrawColor(200, 200, 200)
		pdf.Line(marginLeft, pdf.GetY(), pageW-marginRight, pdf.GetY())
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		w.cell(0, 8, footer, "", 0, "C", false)
	})

	pdf.AddPage()
	for i, n := range tree.Nodes() {
		if i%16 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		switch v := n.(type) {
		case domain.HeaderNode:
			w.header(v)
		case domain.TextHeaderNode:
			w.textHeader(v)
		case domain.SeparatorNode:
			w.separator()
		case domain.TitleNode:
			w.title(v)
		case domain.BulletNode:
			w.bullet(v)
		case domain.TableNode:
			w.table(v)
		case domain.PlaceholderNode:
			w.placeholder(v)
		case domain.FooterNode:
			// drawn by the footer func on every page
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output: %w", err)
	}
	span.SetAttributes(attribute.Int("document.pages", pdf.PageNo()))
	return buf.Bytes(), nil
}

// writer draws nodes on one document.
type writer struct {
	pdf    *gofpdf.Fpdf
	tr     func(string) string
	images int
}

func (w *writer) cell(width, h float64, txt, border string, ln int, align string, fill bool) {
	w.pdf.CellFormat(width, h, w.tr(sanitize(txt)), border, ln, align, fill, 0, "")
}

func (w *writer) contentWidth() float64 {
	pageW, _ := w.pdf.GetPageSize()
	return pageW - marginLeft - marginRight
}

func (w *writer) header(n domain.HeaderNode) {
	pdf := w.pdf
	x, y := pdf.GetX(), pdf.GetY()
	width := w.contentWidth()

	w.logo(n, x, y)

	// identity block, centred between logo and metadata panel
	panelW := 62.0
	idX := x + logoWidth + 4
	idW := width - logoWidth - panelW - 8
	pdf.SetXY(idX, y+1)
	pdf.SetFont("Helvetica", "B", 15)
	w.cell(idW, 7, n.Company.Name, "", 2, "C", false)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(80, 80, 80)
	if n.Company.Tagline != "" {
		w.cell(idW, 5, n.Company.Tagline, "", 2, "C", false)
	}
	if n.Company.Address != "" {
		w.cell(idW, 5, n.Company.Address, "", 2, "C", false)
	}
	pdf.SetTextColor(0, 0, 0)

	// metadata panel
	panelX := x + width - panelW
	pdf.SetFillColor(242, 246, 250)
	pdf.SetDrawColor(210, 220, 230)
	pdf.Rect(panelX, y, panelW, logoHeight, "FD")
	pdf.SetXY(panelX+2, y+2)
	pdf.SetFont("Helvetica", "", 8)
	w.cell(panelW-4, 5, "Generated: "+n.GeneratedAt.Format("02 Jan 2006 15:04"), "", 2, "L", false)
	w.cell(panelW-4, 5, "Report ID: "+shortID(n.ReportID), "", 2, "L", false)
	pdf.SetFont("Helvetica", "B", 8)
	w.cell(panelW-4, 5, "Status: "+n.StatusMark, "", 2, "L", false)

	pdf.SetXY(x, y+logoHeight+3)
}

// logo embeds the raster brand image, or draws the placeholder with vector primitives.
func (w *writer) logo(n domain.HeaderNode, x, y float64) {
	if !n.Brand.Placeholder {
		if imgType, ok := rasterType(n.Brand); ok {
			w.images++
			name := fmt.Sprintf("brand-%d", w.images)
			opts := gofpdf.ImageOptions{ImageType: imgType, ReadDpi: false}
			w.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(n.Brand.Data))
			w.pdf.ImageOptions(name, x, y, logoWidth, logoHeight, false, opts, 0, "")
			return
		}
	}
	w.drawPlaceholderLogo(n.Company, x, y)
}

func (w *writer) drawPlaceholderLogo(company domain.CompanyIdentity, x, y float64) {
	pdf := w.pdf
	pdf.LinearGradient(x, y, logoWidth, logoHeight, 0, 51, 102, 0, 153, 204, 0, 0, 1, 0)
	pdf.SetFillColor(255, 255, 255)
	pdf.Circle(x+8, y+logoHeight/2, 5, "F")
	pdf.SetFillColor(255, 204, 0)
	pdf.Circle(x+12, y+logoHeight/2, 3.5, "F")

	top, bottom := company.Wordmark()
	pdf.SetTextColor(255, 255, 255)
	pdf.SetXY(x+19, y+3)
	pdf.SetFont("Helvetica", "B", 13)
	w.cell(logoWidth-21, 7, top, "", 2, "L", false)
	pdf.SetFont("Helvetica", "", 8)
	w.cell(logoWidth-21, 5, bottom, "", 0, "L", false)
	pdf.SetTextColor(0, 0, 0)
}

// rasterType maps a brand asset onto a gofpdf image type. The image must decode
// and gofpdf must accept it: 16-bit and interlaced PNGs decode fine but are
// rejected at registration, which would fail the whole document.
func rasterType(a domain.BrandAsset) (string, bool) {
	var t string
	switch a.MIMEType {
	case "image/png":
		t = "PNG"
	case "image/jpeg", "image/jpg":
		t = "JPG"
	case "image/gif":
		t = "GIF"
	default:
		return "", false
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(a.Data)); err != nil {
		return "", false
	}
	scratch := gofpdf.New("L", "mm", "A4", "")
	scratch.RegisterImageOptionsReader("brand", gofpdf.ImageOptions{ImageType: t}, bytes.NewReader(a.Data))
	if !scratch.Ok() {
		return "", false
	}
	return t, true
}

func (w *writer) textHeader(n domain.TextHeaderNode) {
	pdf := w.pdf
	pdf.SetFont("Helvetica", "B", 15)
	w.cell(0, 8, n.Company.Name, "", 1, "L", false)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(80, 80, 80)
	w.cell(0, 5, "Generated: "+n.GeneratedAt.Format("02 Jan 2006 15:04"), "", 1, "L", false)
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(2)
}

func (w *writer) separator() {
	pdf := w.pdf
	pageW, _ := pdf.GetPageSize()
	pdf.SetDrawColor(0, 51, 102)
	pdf.SetLineWidth(0.6)
	pdf.Line(marginLeft, pdf.GetY(), pageW-marginRight, pdf.GetY())
	pdf.SetLineWidth(0.2)
	pdf.Ln(4)
}

func (w *writer) title(n domain.TitleNode) {
	w.pdf.SetFont("Helvetica", "B", 18)
	w.pdf.SetTextColor(0, 51, 102)
	w.cell(0, 10, n.Text, "", 1, "L", false)
	w.pdf.SetTextColor(0, 0, 0)
	w.pdf.Ln(1)
}

func (w *writer) bullet(n domain.BulletNode) {
	w.pdf.SetFont("Helvetica", "B", 9)
	w.cell(4, 5, "-", "", 0, "L", false)
	w.cell(w.pdf.GetStringWidth(n.Label+": ")+1, 5, n.Label+":", "", 0, "L", false)
	w.pdf.SetFont("Helvetica", "", 9)
	w.cell(0, 5, n.Value, "", 1, "L", false)
}

func (w *writer) placeholder(n domain.PlaceholderNode) {
	pdf := w.pdf
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 12)
	pdf.SetTextColor(110, 110, 110)
	pdf.SetFillColor(245, 245, 245)
	w.cell(0, 20, n.Text, "1", 1, "C", true)
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)
}

func (w *writer) table(n domain.TableNode) {
	pdf := w.pdf
	t := n.Table
	widths := columnWidths(t.Columns, w.contentWidth())
	_, pageH := pdf.GetPageSize()
	limit := pageH - marginBottom

	// keep the title with the header row and at least one data row
	if pdf.GetY()+8+rowHeight*2 > limit {
		pdf.AddPage()
	}

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 11)
	w.cell(0, 8, t.Title, "", 1, "L", false)
	w.tableHeader(t.Columns, widths)

	pdf.SetFont("Helvetica", "", 8.5)
	for i, row := range t.Rows {
		if pdf.GetY()+rowHeight > limit {
			pdf.AddPage()
			w.tableHeader(t.Columns, widths)
			pdf.SetFont("Helvetica", "", 8.5)
		}
		fill := i%2 == 1
		pdf.SetFillColor(246, 248, 250)
		for j, c := range t.Columns {
			txt := ""
			if j < len(row) {
				txt = row[j]
			}
			w.cell(widths[j], rowHeight, fit(pdf, txt, widths[j]-2), "B", 0, alignCode(c.Align), fill)
		}
		pdf.Ln(-1)
	}

	if n.Caption != "" {
		pdf.SetFont("Helvetica", "I", 7)
		pdf.SetTextColor(128, 128, 128)
		w.cell(0, 5, n.Caption, "", 1, "R", false)
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.Ln(3)
}

func (w *writer) tableHeader(cols []domain.Column, widths []float64) {
	pdf := w.pdf
	pdf.SetFont("Helvetica", "B", 8.5)
	pdf.SetFillColor(0, 51, 102)
	pdf.SetTextColor(255, 255, 255)
	for j, c := range cols {
		w.cell(widths[j], rowHeight, c.Label, "", 0, alignCode(c.Align), true)
	}
	pdf.Ln(-1)
	pdf.SetTextColor(0, 0, 0)
}

// columnWidths gives text columns half again the width of numeric ones.
func columnWidths(cols []domain.Column, total float64) []float64 {
	if len(cols) == 0 {
		return nil
	}
	weights := make([]float64, len(cols))
	var sum float64
	for i, c := range cols {
		weights[i] = 1
		if c.Align == domain.AlignLeft {
			weights[i] = 1.5
		}
		sum += weights[i]
	}
	out := make([]float64, len(cols))
	for i := range cols {
		out[i] = total * weights[i] / sum
	}
	return out
}

func alignCode(a domain.Align) string {
	switch a {
	case domain.AlignRight:
		return "RM"
	case domain.AlignCenter:
		return "CM"
	default:
		return "LM"
	}
}

// fit truncates txt with "..." so it fits in width.
func fit(pdf *gofpdf.Fpdf, txt string, width float64) string {
	if pdf.GetStringWidth(txt) <= width {
		return txt
	}
	r := []rune(txt)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}

func shortID(id string) string {
	if len(id) > 8 {
		return strings.ToUpper(id[:8])
	}
	return strings.ToUpper(id)
}

// sanitize maps characters the core fonts cannot show onto ASCII look-alikes.
func sanitize(text string) string {
	if text == "" {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch r {
		case '\u20B9': // rupee sign
			b.WriteString("Rs.")
		case '\u2013':
			b.WriteString("-")
		case '\u2014':
			b.WriteString("--")
		case '\u2018', '\u2019':
			b.WriteString("'")
		case '\u201C', '\u201D':
			b.WriteString("\"")
		case '\u2026':
			b.WriteString("...")
		case '\u00A0', '\u202F':
			b.WriteString(" ")
		case '\u200B', '\u200C', '\u200D', '\uFEFF':
			continue
		default:
			if r < 128 || unicode.IsPrint(r) {
				b.WriteRune(r)
			} else if unicode.IsSpace(r) {
				b.WriteString(" ")
			} else {
				b.WriteString("?")
			}
		}
	}
	return b.String()
}
