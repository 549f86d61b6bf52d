package core

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned when a file is not an image, spreadsheet or PDF.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrDecodeFailure is returned when a file has a supported extension but cannot be parsed.
	ErrDecodeFailure = errors.New("decode failure")

	// ErrRender is returned when a composition cannot be rendered or exported.
	ErrRender = errors.New("render failed")
)

// IngestError attaches file context to an ingestion failure.
type IngestError struct {
	Name string
	Kind SourceKind
	Err  error
}

func (e *IngestError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("ingest %s (%s): %v", e.Name, e.Kind, e.Err)
	}
	return fmt.Sprintf("ingest %s: %v", e.Name, e.Err)
}

func (e *IngestError) Unwrap() error { return e.Err }

// Unsupported builds an IngestError for a rejected file.
func Unsupported(name string, format string) error {
	return &IngestError{Name: name, Err: fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)}
}

// DecodeFailed builds an IngestError for a file that could not be parsed.
func DecodeFailed(name string, kind SourceKind, err error) error {
	return &IngestError{Name: name, Kind: kind, Err: fmt.Errorf("%w: %w", ErrDecodeFailure, err)}
}
