// Package core defines the data model and pipeline interfaces for reportpipe.
// Each stage of the pipeline is a clean, testable interface.
package core

import (
	"context"
	"image"
)

// RawFile is one uploaded file as bytes already resident in memory.
type RawFile struct {
	// ID is optional; the ingester assigns one when empty.
	ID   string
	Name string
	Data []byte
}

// Ingester normalizes a single uploaded file into a NormalizedAsset.
type Ingester interface {
	Ingest(ctx context.Context, file RawFile) (NormalizedAsset, error)
}

// Rasterizer turns every page of a PDF into a raster image.
// Scale is relative to the PDF's native 72 DPI user space.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdf []byte, scale float64) ([]image.Image, error)
	Name() string
}

// Renderer converts a Composition into a final output format.
type Renderer interface {
	Render(c Composition) ([]byte, error)
	// Extension returns the file extension for this renderer (e.g. ".pdf", ".html").
	Extension() string
}

// Fetcher retrieves the bytes of an uploaded file from a path or retrieval URL.
type Fetcher interface {
	Fetch(ctx context.Context, location string) (*RawFile, error)
}

// Extractor reduces an HTML document to the fragment worth converting.
type Extractor interface {
	Extract(html string) (string, error)
}

// Normalizer converts an HTML fragment into Markdown.
type Normalizer interface {
	Normalize(html string) (string, error)
}
