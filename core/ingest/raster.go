package ingest

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/gaurav-prasanna/reportpipe/core"
	"github.com/gen2brain/go-fitz"
)

// Rasterizer backends.
const (
	RasterizerFitz     = "fitz"
	RasterizerPdftoppm = "pdftoppm"
)

// NewRasterizer constructs the named PDF rasterizer backend.
func NewRasterizer(backend string) (core.Rasterizer, error) {
	switch backend {
	case RasterizerFitz, "":
		return &FitzRasterizer{}, nil
	case RasterizerPdftoppm:
		path, err := exec.LookPath("pdftoppm")
		if err != nil {
			return nil, fmt.Errorf("missing required binary %q in PATH: %w", "pdftoppm", err)
		}
		return &PdftoppmRasterizer{Path: path}, nil
	default:
		return nil, fmt.Errorf("unknown rasterizer %q (use %s or %s)", backend, RasterizerFitz, RasterizerPdftoppm)
	}
}

// lazyRasterizer builds the rasterizer on first use. A construction error is
// kept and returned on every later call.
type lazyRasterizer struct {
	once  sync.Once
	build func() (core.Rasterizer, error)
	r     core.Rasterizer
	err   error
}

func (l *lazyRasterizer) get() (core.Rasterizer, error) {
	l.once.Do(func() {
		l.r, l.err = l.build()
		if l.err == nil && l.r == nil {
			l.err = fmt.Errorf("rasterizer constructor returned nil")
		}
	})
	return l.r, l.err
}

// FitzRasterizer renders pages in-process with MuPDF.
type FitzRasterizer struct{}

func (f *FitzRasterizer) Name() string { return RasterizerFitz }

// Rasterize renders every page at 72*scale DPI.
func (f *FitzRasterizer) Rasterize(ctx context.Context, pdf []byte, scale float64) ([]image.Image, error) {
	doc, err := fitz.NewFromMemory(pdf)
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}
	defer doc.Close()

	n := doc.NumPage()
	pages := make([]image.Image, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := doc.ImageDPI(i, 72*scale)
		if err != nil {
			return nil, fmt.Errorf("rendering page %d: %w", i+1, err)
		}
		pages = append(pages, img)
	}
	return pages, nil
}

// PdftoppmRasterizer shells out to poppler's pdftoppm.
type PdftoppmRasterizer struct {
	Path string
}

func (p *PdftoppmRasterizer) Name() string { return RasterizerPdftoppm }

// Rasterize writes the PDF to a scratch directory, renders PNG pages with
// pdftoppm and reads them back in page order.
func (p *PdftoppmRasterizer) Rasterize(ctx context.Context, pdf []byte, scale float64) ([]image.Image, error) {
	dir, err := os.MkdirTemp("", "reportpipe-raster-")
	if err != nil {
		return nil, fmt.Errorf("creating scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(in, pdf, 0o600); err != nil {
		return nil, fmt.Errorf("writing scratch pdf: %w", err)
	}

	dpi := strconv.Itoa(int(72*scale + 0.5))
	prefix := filepath.Join(dir, "page")
	cmd := exec.CommandContext(ctx, p.Path, "-r", dpi, "-png", in, prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w; out=%s", err, string(out))
	}

	files, err := pageFiles(dir, "page-")
	if err != nil {
		return nil, err
	}
	pages := make([]image.Image, 0, len(files))
	for _, name := range files {
		data, err := os.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", filepath.Base(name), err)
		}
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", filepath.Base(name), err)
		}
		pages = append(pages, img)
	}
	return pages, nil
}

// pageFiles lists prefix-N.png files sorted by N. pdftoppm zero-pads N to the
// width of the last page number, but sorting numerically avoids relying on it.
func pageFiles(dir, prefix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing pages: %w", err)
	}
	type page struct {
		n    int
		path string
	}
	var pages []page
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".png") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".png"))
		if err != nil {
			continue
		}
		pages = append(pages, page{n: n, path: filepath.Join(dir, name)})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].n < pages[j].n })
	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = p.path
	}
	return out, nil
}
