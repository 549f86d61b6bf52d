package fetch

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gaurav-prasanna/reportpipe/core/ingest"
)

// Expand resolves upload locations into individual files in a stable order.
// Directories contribute their supported files sorted by name (not
// recursively), URLs are normalized, and duplicates are dropped keeping the
// first occurrence. A location that cannot be read is reported and skipped.
func Expand(locations []string) ([]string, []error) {
	q := newQueue()
	var errs []error
	for _, loc := range locations {
		if IsURL(loc) {
			q.add(NormalizeURL(loc))
			continue
		}
		info, err := os.Stat(loc)
		if err != nil {
			errs = append(errs, fmt.Errorf("expanding %s: %w", loc, err))
			continue
		}
		if !info.IsDir() {
			q.add(filepath.Clean(loc))
			continue
		}
		entries, err := os.ReadDir(loc)
		if err != nil {
			errs = append(errs, fmt.Errorf("expanding %s: %w", loc, err))
			continue
		}
		for _, e := range entries {
			if !e.IsDir() && IsSupported(e.Name()) {
				q.add(filepath.Join(loc, e.Name()))
			}
		}
	}
	return q.all(), errs
}

// IsSupported reports whether a file name has an extension ingestion accepts.
func IsSupported(name string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	return slices.Contains(ingest.SupportedExtensions(), ext)
}

// NormalizeURL strips fragments so the same retrieval URL is fetched once.
func NormalizeURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	parsed.Fragment = ""
	return parsed.String()
}

// queue keeps insertion order and drops repeats.
type queue struct {
	items []string
	seen  map[string]bool
}

func newQueue() *queue {
	return &queue{seen: make(map[string]bool)}
}

func (q *queue) add(item string) {
	if q.seen[item] {
		return
	}
	q.seen[item] = true
	q.items = append(q.items, item)
}

func (q *queue) all() []string {
	return q.items
}
