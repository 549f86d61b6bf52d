package render

import (
	"fmt"

	"github.com/gaurav-prasanna/reportpipe/core"
	"github.com/gaurav-prasanna/reportpipe/core/extract"
	"github.com/gaurav-prasanna/reportpipe/core/normalize"
)

// MarkdownRenderer produces a text-only report: the HTML export is stripped
// of images and print styling, then converted to Markdown.
type MarkdownRenderer struct {
	HTML       *HTMLRenderer
	Extractor  core.Extractor
	Normalizer core.Normalizer
}

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{
		HTML:       NewHTMLRenderer(),
		Extractor:  extract.New(),
		Normalizer: normalize.New(),
	}
}

// Render converts a Composition into Markdown.
func (r *MarkdownRenderer) Render(c core.Composition) ([]byte, error) {
	html, err := r.HTML.Render(c)
	if err != nil {
		return nil, err
	}
	body, err := r.Extractor.Extract(string(html))
	if err != nil {
		return nil, fmt.Errorf("%w: markdown: %w", core.ErrRender, err)
	}
	md, err := r.Normalizer.Normalize(body)
	if err != nil {
		return nil, fmt.Errorf("%w: markdown: %w", core.ErrRender, err)
	}
	return []byte(md), nil
}

// Extension returns the file extension for Markdown output.
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}
