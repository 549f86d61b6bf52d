package ingest

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"time"

	"github.com/gaurav-prasanna/reportpipe/core"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"
)

// PageCount validates a PDF and returns its number of pages.
func PageCount(data []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	n, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("pdfcpu read: %w", err)
	}
	return n, nil
}

// rasterizePDF renders every page of a scanned document to a PNG page image,
// in source page order. The rendering runs on its own goroutine under the
// pipeline's rasterization limit; the caller only waits for it.
func (p *Pipeline) rasterizePDF(ctx context.Context, data []byte) ([]core.Image, error) {
	count, err := PageCount(data)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("pdf has no pages")
	}

	r, err := p.raster.get()
	if err != nil {
		return nil, fmt.Errorf("initializing rasterizer: %w", err)
	}

	if err := p.rasterSem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	type result struct {
		pages []image.Image
		err   error
	}
	done := make(chan result, 1)
	start := time.Now()
	go func() {
		defer p.rasterSem.Release(1)
		pages, err := r.Rasterize(ctx, data, p.cfg.Scale)
		done <- result{pages: pages, err: err}
	}()

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.err != nil {
		return nil, res.err
	}
	if len(res.pages) != count {
		return nil, fmt.Errorf("rasterizer produced %d pages, document has %d", len(res.pages), count)
	}

	pages := make([]core.Image, 0, count)
	for i, img := range res.pages {
		page, err := encodePNG(img)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		pages = append(pages, *page)
	}

	p.log.Debug("rasterized pdf",
		zap.String("rasterizer", r.Name()),
		zap.Int("pages", count),
		zap.Float64("scale", p.cfg.Scale),
		zap.Duration("duration", time.Since(start)),
	)
	return pages, nil
}
