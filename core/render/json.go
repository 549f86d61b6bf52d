// Package render provides the output backends for a Composition: a paginated
// PDF, a standalone HTML document, Markdown, and the JSON rendering plan.
package render

import (
	"encoding/json"
	"fmt"

	"github.com/gaurav-prasanna/reportpipe/core"
)

// JSONRenderer writes the composition plan itself. Images appear as data URLs.
type JSONRenderer struct{}

// NewJSONRenderer creates a JSONRenderer.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

// Render marshals the composition as indented JSON.
func (r *JSONRenderer) Render(c core.Composition) ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: marshaling JSON: %w", core.ErrRender, err)
	}
	return data, nil
}

// Extension returns the file extension for JSON output.
func (r *JSONRenderer) Extension() string {
	return ".json"
}

// ForFormat returns the renderer for an output format name.
func ForFormat(format string) (core.Renderer, error) {
	switch format {
	case "pdf":
		return NewPDFRenderer(), nil
	case "html":
		return NewHTMLRenderer(), nil
	case "markdown", "md":
		return NewMarkdownRenderer(), nil
	case "json":
		return NewJSONRenderer(), nil
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}
