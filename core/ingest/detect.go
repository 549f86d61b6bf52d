package ingest

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gaurav-prasanna/reportpipe/core"
)

// Detection is the resolved kind of an upload and its concrete format.
type Detection struct {
	Kind    core.SourceKind
	Format  string // png, jpeg, csv, xlsx, pdf
	// Sniffed is true when the format came from content instead of the name.
	Sniffed bool
}

// formats maps accepted extensions to their kind and canonical format.
var formats = map[string]Detection{
	"png":  {Kind: core.KindImage, Format: "png"},
	"jpg":  {Kind: core.KindImage, Format: "jpeg"},
	"jpeg": {Kind: core.KindImage, Format: "jpeg"},
	"xlsx": {Kind: core.KindSpreadsheet, Format: "xlsx"},
	"csv":  {Kind: core.KindSpreadsheet, Format: "csv"},
	"pdf":  {Kind: core.KindPDF, Format: "pdf"},
}

// Detect resolves the kind of a file from its extension, falling back to
// content sniffing when the name has none.
func Detect(name string, data []byte) (Detection, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext != "" {
		if d, ok := formats[ext]; ok {
			return d, nil
		}
		return Detection{}, core.Unsupported(name, "."+ext)
	}

	mt := mimetype.Detect(data)
	sniffed := strings.TrimPrefix(mt.Extension(), ".")
	if d, ok := formats[sniffed]; ok {
		d.Sniffed = true
		return d, nil
	}
	return Detection{}, core.Unsupported(name, mt.String())
}

// SupportedExtensions returns every accepted file extension.
func SupportedExtensions() []string {
	return []string{"png", "jpg", "jpeg", "xlsx", "csv", "pdf"}
}
