// Package fetch implements the Fetcher interface.
// It loads upload bytes from a local path or from an http(s) retrieval URL
// handed out by the storage layer.
package fetch

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gaurav-prasanna/reportpipe/core"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "reportpipe/1.0"
	defaultMaxSize   = 50 * 1024 * 1024
)

// Fetcher reads files from disk or over HTTP.
type Fetcher struct {
	client  *http.Client
	MaxSize int64
}

// New creates a Fetcher with a sensible timeout.
func New() *Fetcher {
	return &Fetcher{
		client:  &http.Client{Timeout: defaultTimeout},
		MaxSize: defaultMaxSize,
	}
}

// IsURL reports whether location is an http(s) URL rather than a path.
func IsURL(location string) bool {
	u, err := url.Parse(location)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Fetch retrieves the file at location.
func (f *Fetcher) Fetch(ctx context.Context, location string) (*core.RawFile, error) {
	if IsURL(location) {
		return f.fetchURL(ctx, location)
	}
	return f.readFile(location)
}

func (f *Fetcher) readFile(p string) (*core.RawFile, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", p, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("reading %s: is a directory", p)
	}
	if info.Size() > f.MaxSize {
		return nil, fmt.Errorf("reading %s: file too large (%d bytes)", p, info.Size())
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", p, err)
	}
	return &core.RawFile{Name: filepath.Base(p), Data: data}, nil
}

func (f *Fetcher) fetchURL(ctx context.Context, rawURL string) (*core.RawFile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.MaxSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if int64(len(body)) > f.MaxSize {
		return nil, fmt.Errorf("fetching %s: response exceeds %d bytes", rawURL, f.MaxSize)
	}

	return &core.RawFile{Name: responseName(rawURL, resp.Header), Data: body}, nil
}

// responseName picks the upload's file name: Content-Disposition first, then
// the URL path, with an extension derived from Content-Type when missing.
func responseName(rawURL string, h http.Header) string {
	var name string
	if _, params, err := mime.ParseMediaType(h.Get("Content-Disposition")); err == nil {
		name = params["filename"]
	}
	if name == "" {
		if u, err := url.Parse(rawURL); err == nil {
			name = path.Base(u.Path)
		}
	}
	if name == "" || name == "/" || name == "." {
		name = "upload"
	}
	if path.Ext(name) == "" {
		ct, _, _ := strings.Cut(h.Get("Content-Type"), ";")
		if m := mimetype.Lookup(strings.TrimSpace(ct)); m != nil {
			name += m.Extension()
		}
	}
	return name
}
