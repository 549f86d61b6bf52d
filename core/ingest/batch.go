package ingest

import (
	"context"

	"github.com/gaurav-prasanna/reportpipe/core"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of ingesting one file of a batch.
type Result struct {
	File  string
	Asset core.NormalizedAsset
	Err   error
}

// IngestBatch ingests files concurrently. Results are in input order no
// matter which file finishes first, and a failing file never affects its
// siblings.
func (p *Pipeline) IngestBatch(ctx context.Context, files []core.RawFile) []Result {
	results := make([]Result, len(files))

	var g errgroup.Group
	g.SetLimit(p.cfg.Workers)
	for i, f := range files {
		g.Go(func() error {
			asset, err := p.Ingest(ctx, f)
			results[i] = Result{File: f.Name, Asset: asset, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Split separates successful assets from failures, keeping input order.
func Split(results []Result) ([]core.NormalizedAsset, []error) {
	var assets []core.NormalizedAsset
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
			continue
		}
		assets = append(assets, r.Asset)
	}
	return assets, errs
}
