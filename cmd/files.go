package cmd

import (
	"context"
	"fmt"

	"github.com/gaurav-prasanna/reportpipe/core"
	"github.com/gaurav-prasanna/reportpipe/core/fetch"
	"golang.org/x/sync/errgroup"
)

// fetchConcurrency bounds parallel downloads of upload URLs.
const fetchConcurrency = 4

// loadFiles expands locations and fetches every file, keeping order.
// Locations that cannot be expanded or fetched are returned as errors and
// skipped; the rest still load.
func loadFiles(ctx context.Context, fetcher core.Fetcher, locations []string) ([]core.RawFile, []error) {
	if len(locations) == 0 {
		return nil, nil
	}
	expanded, errs := fetch.Expand(locations)

	fetched := make([]*core.RawFile, len(expanded))
	fetchErrs := make([]error, len(expanded))
	var g errgroup.Group
	g.SetLimit(fetchConcurrency)
	for i, loc := range expanded {
		g.Go(func() error {
			f, err := fetcher.Fetch(ctx, loc)
			if err != nil {
				fetchErrs[i] = fmt.Errorf("fetch: %w", err)
				return nil
			}
			fetched[i] = f
			return nil
		})
	}
	_ = g.Wait()

	files := make([]core.RawFile, 0, len(expanded))
	for i, f := range fetched {
		if fetchErrs[i] != nil {
			errs = append(errs, fetchErrs[i])
			continue
		}
		files = append(files, *f)
	}
	return files, errs
}
