// Package extract isolates the report body from an HTML export so it can be
// converted to text formats. It:
//  1. Finds the report container (<main>, <article>, or <body>)
//  2. Replaces signatures with a textual marker
//  3. Removes images, styles and print furniture (footers, page breaks)
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// noiseSelectors are removed before extraction. None of them carry text a
// reader of the Markdown export needs.
var noiseSelectors = []string{
	"script", "style", "noscript", "link", "meta",
	"footer", ".page-footer", ".page-break",
	"img", "picture", "svg", "canvas",
}

// SignedMarker replaces signature images in text exports.
const SignedMarker = "(signed)"

// HTMLExtractor strips images and print styling from an HTML report.
type HTMLExtractor struct{}

// New creates an HTMLExtractor.
func New() *HTMLExtractor {
	return &HTMLExtractor{}
}

// Extract returns the cleaned report container as an HTML fragment.
func (e *HTMLExtractor) Extract(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	doc.Find(`img[data-role="signature"]`).ReplaceWithHtml("<span>" + SignedMarker + "</span>")
	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}

	var content *goquery.Selection
	for _, tag := range []string{"main", "article", "body"} {
		sel := doc.Find(tag)
		if sel.Length() > 0 {
			content = sel.First()
			break
		}
	}
	if content == nil {
		return "", fmt.Errorf("no content container found in HTML")
	}

	result, err := goquery.OuterHtml(content)
	if err != nil {
		return "", fmt.Errorf("serializing content: %w", err)
	}
	return result, nil
}
