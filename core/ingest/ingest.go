// Package ingest implements the Asset Ingestion Pipeline.
// It converts an uploaded file into exactly one NormalizedAsset:
//   - .png, .jpg, .jpeg: a single page holding the image
//   - .xlsx, .csv: row records keyed by the first sheet's header row
//   - .pdf: one page image per source page, rasterized at a fixed scale
//
// Files without an extension are sniffed from their content. Anything else is
// rejected with core.ErrUnsupportedFormat and produces no asset.
package ingest

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/gaurav-prasanna/reportpipe/core"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const (
	// DefaultScale keeps scanned text legible once embedded at print resolution.
	DefaultScale       = 2.0
	defaultMaxFileSize = 50 * 1024 * 1024
)

// Config configures the ingestion pipeline.
type Config struct {
	// Scale is the rasterization factor over 72 DPI (default 2.0).
	Scale float64

	// Rasterizer selects the PDF backend: "fitz" (default) or "pdftoppm".
	Rasterizer string

	// NewRasterizer overrides Rasterizer. It is called at most once, on the
	// first PDF the pipeline sees.
	NewRasterizer func() (core.Rasterizer, error)

	// Workers bounds concurrent batch ingestion and rasterization (default GOMAXPROCS).
	Workers int

	// MaxFileSize is the largest accepted upload in bytes (default 50 MB).
	MaxFileSize int64

	Logger *zap.Logger
}

func (c *Config) defaults() {
	if c.Scale <= 0 {
		c.Scale = DefaultScale
	}
	if c.Rasterizer == "" {
		c.Rasterizer = RasterizerFitz
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = defaultMaxFileSize
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
}

// Pipeline is the ingestion engine. It is safe for concurrent use.
type Pipeline struct {
	cfg       Config
	log       *zap.Logger
	raster    *lazyRasterizer
	rasterSem *semaphore.Weighted
}

// New creates a Pipeline. The PDF rasterizer is not constructed until needed.
func New(cfg Config) *Pipeline {
	cfg.defaults()
	build := cfg.NewRasterizer
	if build == nil {
		backend := cfg.Rasterizer
		build = func() (core.Rasterizer, error) { return NewRasterizer(backend) }
	}
	return &Pipeline{
		cfg:       cfg,
		log:       cfg.Logger.With(zap.String("component", "ingest")),
		raster:    &lazyRasterizer{build: build},
		rasterSem: semaphore.NewWeighted(int64(cfg.Workers)),
	}
}

// Ingest normalizes one file.
func (p *Pipeline) Ingest(ctx context.Context, file core.RawFile) (core.NormalizedAsset, error) {
	det, err := Detect(file.Name, file.Data)
	if err != nil {
		p.log.Info("rejected upload", zap.String("file", file.Name), zap.Error(err))
		return core.NormalizedAsset{}, err
	}
	if int64(len(file.Data)) > p.cfg.MaxFileSize {
		return core.NormalizedAsset{}, core.DecodeFailed(file.Name, det.Kind,
			fmt.Errorf("file too large: %d bytes (max %d)", len(file.Data), p.cfg.MaxFileSize))
	}

	asset := core.NormalizedAsset{
		ID:   file.ID,
		Name: file.Name,
		Kind: det.Kind,
	}
	if asset.ID == "" {
		asset.ID = uuid.NewString()
	}

	start := time.Now()
	switch det.Kind {
	case core.KindImage:
		var page *core.Image
		page, err = decodeImage(file.Data)
		if page != nil {
			asset.Pages = []core.Image{*page}
		}
	case core.KindSpreadsheet:
		asset.Columns, asset.Rows, err = parseSheet(det.Format, file.Data)
	case core.KindPDF:
		asset.Pages, err = p.rasterizePDF(ctx, file.Data)
	default:
		err = fmt.Errorf("no parser for kind %q", det.Kind)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return core.NormalizedAsset{}, ctxErr
		}
		p.log.Warn("ingest failed", zap.String("file", file.Name), zap.String("kind", string(det.Kind)), zap.Error(err))
		return core.NormalizedAsset{}, core.DecodeFailed(file.Name, det.Kind, err)
	}
	if err := asset.Validate(); err != nil {
		return core.NormalizedAsset{}, core.DecodeFailed(file.Name, det.Kind, err)
	}

	p.log.Debug("ingested",
		zap.String("file", file.Name),
		zap.String("kind", string(det.Kind)),
		zap.Int("pages", len(asset.Pages)),
		zap.Int("rows", len(asset.Rows)),
		zap.Duration("duration", time.Since(start)),
	)
	return asset, nil
}
