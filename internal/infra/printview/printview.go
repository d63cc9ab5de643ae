// Package printview renders a document tree as a self-printing HTML page.
// It is served when the PDF engine cannot load or render.
package printview

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/prime-insurance/claims-portal-bfa/internal/domain"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var page = template.Must(template.New("print").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
@page { size: A4 landscape; margin: 12mm; }
body { font-family: Helvetica, Arial, sans-serif; font-size: 10pt; color: #111; }
header.brand { display: flex; align-items: center; gap: 16px; }
header.brand img { width: 60mm; height: 20mm; object-fit: contain; }
.identity { flex: 1; text-align: center; }
.meta { border: 1px solid #d2dce6; background: #f2f6fa; padding: 4px 8px; font-size: 8pt; }
table { border-collapse: collapse; width: 100%; margin-top: 4px; }
th { background: #003366; color: #fff; padding: 4px; }
td { border-bottom: 1px solid #ddd; padding: 3px 4px; }
table + p { text-align: right; font-size: 7pt; color: #888; }
footer { margin-top: 12px; border-top: 1px solid #ccc; font-size: 8pt; color: #888; text-align: center; }
</style>
</head>
<body onload="window.print()">
{{with .Header}}<header class="brand">
{{if .Logo}}<img src="{{.Logo}}" alt="{{.Company.Name}}">{{end}}
<div class="identity"><strong>{{.Company.Name}}</strong>{{if .Company.Tagline}}<br>{{.Company.Tagline}}{{end}}{{if .Company.Address}}<br>{{.Company.Address}}{{end}}</div>
<div class="meta">Generated: {{.Generated}}{{if .ReportID}}<br>Report ID: {{.ReportID}}{{end}}{{if .Status}}<br>Status: {{.Status}}{{end}}</div>
</header>{{end}}
<main>
{{.Body}}
</main>
{{if .Footer}}<footer>{{.Footer}}</footer>{{end}}
</body>
</html>
`))

type headerView struct {
	Logo      template.URL
	Company   domain.CompanyIdentity
	Generated string
	ReportID  string
	Status    string
}

type pageView struct {
	Title  string
	Header *headerView
	Body   template.HTML
	Footer string
}

// Renderer converts document trees to printable HTML.
type Renderer struct {
	md goldmark.Markdown
}

// New creates a Renderer with GitHub-style tables enabled.
func New() *Renderer {
	return &Renderer{md: goldmark.New(goldmark.WithExtensions(extension.Table))}
}

// PrintView renders tree. The page opens the browser print dialog on load.
func (r *Renderer) PrintView(tree domain.DocumentTree) ([]byte, error) {
	view := pageView{Title: tree.Title()}

	var md strings.Builder
	for _, n := range tree.Nodes() {
		switch v := n.(type) {
		case domain.HeaderNode:
			view.Header = &headerView{
				Logo:      template.URL(v.Brand.DataURI()),
				Company:   v.Company,
				Generated: v.GeneratedAt.Format("02 Jan 2006 15:04"),
				ReportID:  v.ReportID,
				Status:    v.StatusMark,
			}
		case domain.TextHeaderNode:
			view.Header = &headerView{
				Company:   v.Company,
				Generated: v.GeneratedAt.Format("02 Jan 2006 15:04"),
			}
		case domain.SeparatorNode:
			md.WriteString("\n---\n\n")
		case domain.TitleNode:
			fmt.Fprintf(&md, "# %s\n\n", escape(v.Text))
		case domain.BulletNode:
			fmt.Fprintf(&md, "- **%s:** %s\n", escape(v.Label), escape(v.Value))
		case domain.TableNode:
			writeTable(&md, v)
		case domain.PlaceholderNode:
			fmt.Fprintf(&md, "\n*%s*\n\n", escape(v.Text))
		case domain.FooterNode:
			view.Footer = v.Text
		}
	}

	var body bytes.Buffer
	if err := r.md.Convert([]byte(md.String()), &body); err != nil {
		return nil, fmt.Errorf("markdown: %w", err)
	}
	view.Body = template.HTML(body.String())

	var out bytes.Buffer
	if err := page.Execute(&out, view); err != nil {
		return nil, fmt.Errorf("print template: %w", err)
	}
	return out.Bytes(), nil
}

func writeTable(md *strings.Builder, n domain.TableNode) {
	t := n.Table
	fmt.Fprintf(md, "\n## %s\n\n", escape(t.Title))
	if len(t.Columns) == 0 {
		return
	}

	md.WriteString("|")
	for _, c := range t.Columns {
		fmt.Fprintf(md, " %s |", escape(c.Label))
	}
	md.WriteString("\n|")
	for _, c := range t.Columns {
		switch c.Align {
		case domain.AlignRight:
			md.WriteString(" ---: |")
		case domain.AlignCenter:
			md.WriteString(" :---: |")
		default:
			md.WriteString(" :--- |")
		}
	}
	md.WriteString("\n")
	for _, row := range t.Rows {
		md.WriteString("|")
		for j := range t.Columns {
			cell := ""
			if j < len(row) {
				cell = row[j]
			}
			fmt.Fprintf(md, " %s |", escape(cell))
		}
		md.WriteString("\n")
	}
	if n.Caption != "" {
		fmt.Fprintf(md, "\n*%s*\n", escape(n.Caption))
	}
	md.WriteString("\n")
}

var mdEscaper = strings.NewReplacer(
	`\`, `\\`,
	"|", `\|`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
	"#", `\#`,
	"\n", " ",
)

// escape neutralizes markdown and raw HTML in text that came from the analytics API.
func escape(s string) string {
	return mdEscaper.Replace(s)
}
