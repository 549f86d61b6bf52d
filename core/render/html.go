package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/gaurav-prasanna/reportpipe/core"
)

// HTMLRenderer writes a standalone print document. Images are inlined as data
// URIs and pagination is expressed with CSS paged media, so the file renders
// without network access.
type HTMLRenderer struct {
	Title string
}

// NewHTMLRenderer creates an HTMLRenderer.
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{}
}

// Render converts a Composition into an HTML document.
func (r *HTMLRenderer) Render(c core.Composition) ([]byte, error) {
	prefix, suffix, _ := strings.Cut(c.Footer.Format, "%d")
	data := struct {
		Title        string
		Footer       bool
		FooterPrefix string
		FooterSuffix string
		Sections     []core.Section
	}{
		Title:        r.Title,
		Footer:       c.Footer.Format != "",
		FooterPrefix: prefix,
		FooterSuffix: suffix,
		Sections:     c.Sections,
	}
	if data.Title == "" {
		data.Title = "Activity Report"
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("%w: html: %w", core.ErrRender, err)
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for HTML output.
func (r *HTMLRenderer) Extension() string {
	return ".html"
}

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"present": func(img *core.Image) bool { return !img.Empty() },
	"dataURL": func(img *core.Image) template.URL { return template.URL(img.DataURL()) },
}).Parse(reportHTML))

const reportHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
@page {
  size: A4;
  margin: 25.4mm 25.4mm 30mm 25.4mm;
{{- if .Footer}}
  @bottom-center { content: "{{.FooterPrefix}}" counter(page) "{{.FooterSuffix}}"; font: 10pt "Times New Roman", Times, serif; }
{{- end}}
}
body { font-family: "Times New Roman", Times, serif; font-size: 12pt; line-height: 1.3; margin: 0; }
main { max-width: 159.2mm; margin: 0 auto; }
.institution { font-size: 16pt; font-weight: bold; text-align: center; margin: 0; }
.school { font-size: 14pt; font-weight: bold; text-align: center; margin: 0; }
.department { font-size: 13pt; font-weight: bold; text-align: center; margin: 0 0 2mm; }
.report_title { font-size: 14pt; font-weight: bold; text-decoration: underline; text-align: center; margin: 2mm 0 4mm; }
h2 { font-size: 13pt; margin: 3mm 0 2mm; break-after: avoid; }
h2.centered_title { font-size: 16pt; text-align: center; }
.subtitle { font-style: italic; text-align: center; }
.body { white-space: pre-wrap; text-align: justify; }
.caption { font-size: 11pt; font-weight: bold; text-align: center; }
table { width: 100%; border-collapse: collapse; margin-bottom: 3mm; }
th, td { border: 1px solid #000; padding: 1.5mm; vertical-align: top; text-align: left; }
th { background: #e6e6e6; text-align: center; }
table.label_value td:first-child { width: 35%; font-weight: bold; }
tr, .keep { break-inside: avoid; page-break-inside: avoid; }
.page-break { break-before: page; page-break-before: always; }
img { display: block; margin: 0 auto 3mm; }
img.portrait { width: 150pt; height: 150pt; object-fit: cover; }
img.photo { max-width: 100%; max-height: 400pt; object-fit: contain; }
img.attachment { width: 100%; }
img.signature { max-width: 40mm; max-height: 15mm; margin: 0; }
</style>
</head>
<body>
<main class="report">
{{range .Sections}}{{template "section" .}}{{end}}
</main>
</body>
</html>
{{define "section"}}
{{- if eq .Kind "pagebreak"}}<div class="page-break"></div>
{{else}}<section id="{{.ID}}" class="{{.Kind}}">
{{range .Elements}}{{template "element" .}}{{end}}</section>
{{end}}
{{- end}}
{{define "element"}}
{{- if eq .Kind "text"}}
{{- if eq .Style "section_title" "centered_title"}}<h2 class="{{.Style}}">{{.Text}}</h2>
{{else}}<p class="{{.Style}}">{{.Text}}</p>
{{end}}
{{- else if eq .Kind "table"}}{{with .Table}}{{template "table" .}}{{end}}
{{- else if eq .Kind "image"}}{{if present .Image}}<img class="{{.Role}}" data-role="{{.Role}}" src="{{dataURL .Image}}" alt="{{.Role}}">
{{end}}
{{- else if eq .Kind "block"}}<div class="keep">
{{range .Children}}{{template "element" .}}{{end}}</div>
{{end}}
{{- end}}
{{define "table"}}<table class="{{.Style}}">
{{- if .Header}}
<thead><tr>{{range .Header}}<th>{{.}}</th>{{end}}</tr></thead>
{{- end}}
<tbody>
{{range .Rows}}<tr>{{range .Cells}}<td>{{if present .Image}}<img class="{{.Role}}" data-role="{{.Role}}" src="{{dataURL .Image}}" alt="{{.Role}}">{{else}}{{.Text}}{{end}}</td>{{end}}</tr>
{{end}}</tbody>
</table>
{{end}}`
