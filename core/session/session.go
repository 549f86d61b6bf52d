// Package session owns one report being edited. It serializes edits to the
// record, feeds uploads through the ingestion pipeline and keeps the preview
// scheduler informed of every change.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/gaurav-prasanna/reportpipe/core"
	"github.com/gaurav-prasanna/reportpipe/core/compose"
	"github.com/gaurav-prasanna/reportpipe/core/ingest"
	"github.com/gaurav-prasanna/reportpipe/core/record"
	"go.uber.org/zap"
)

// Previewer is notified with the full record after each change.
type Previewer interface {
	Edit(r core.ReportRecord)
}

// Config wires a Session to its collaborators.
type Config struct {
	Pipeline *ingest.Pipeline
	Compose  compose.Options
	Preview  Previewer
	Logger   *zap.Logger
}

// Session is safe for concurrent use.
type Session struct {
	cfg Config
	log *zap.Logger

	mu  sync.Mutex
	rec core.ReportRecord
}

// New starts a session on r.
func New(r core.ReportRecord, cfg Config) *Session {
	if cfg.Pipeline == nil {
		cfg.Pipeline = ingest.New(ingest.Config{Logger: cfg.Logger})
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{cfg: cfg, log: log, rec: record.Clone(r)}
}

// Record returns a copy of the current record.
func (s *Session) Record() core.ReportRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return record.Clone(s.rec)
}

// update replaces the record with fn's result and notifies the previewer.
func (s *Session) update(fn func(core.ReportRecord) core.ReportRecord) core.ReportRecord {
	s.mu.Lock()
	s.rec = fn(s.rec)
	out := record.Clone(s.rec)
	s.mu.Unlock()

	if s.cfg.Preview != nil {
		s.cfg.Preview.Edit(out)
	}
	return out
}

// Replace swaps in a whole new snapshot, as when the form is reloaded.
func (s *Session) Replace(r core.ReportRecord) {
	s.update(func(core.ReportRecord) core.ReportRecord { return record.Clone(r) })
}

// Apply merges a patch into the record.
func (s *Session) Apply(p record.Patch) core.ReportRecord {
	return s.update(func(r core.ReportRecord) core.ReportRecord { return record.Apply(r, p) })
}

// Ingest normalizes uploads and appends the successful ones to collection c
// in upload order. Files the collection does not accept, and files that fail
// to ingest, are returned as errors and leave the record untouched.
func (s *Session) Ingest(ctx context.Context, c core.Collection, files []core.RawFile) ([]core.NormalizedAsset, []error) {
	var errs []error
	accepted := make([]core.RawFile, 0, len(files))
	for _, f := range files {
		det, err := ingest.Detect(f.Name, f.Data)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !c.Accepts(det.Kind) {
			errs = append(errs, core.Unsupported(f.Name, fmt.Sprintf("%s in %s", det.Kind, c)))
			continue
		}
		accepted = append(accepted, f)
	}

	assets, failed := ingest.Split(s.cfg.Pipeline.IngestBatch(ctx, accepted))
	errs = append(errs, failed...)
	if len(assets) > 0 {
		s.update(func(r core.ReportRecord) core.ReportRecord { return record.AppendAssets(r, c, assets...) })
	}
	s.log.Info("ingested uploads",
		zap.String("collection", string(c)),
		zap.Int("accepted", len(assets)),
		zap.Int("rejected", len(errs)),
	)
	return assets, errs
}

// Remove drops an asset by id, keeping the order of the rest.
// Deleting the uploaded blob itself is the storage layer's concern.
func (s *Session) Remove(c core.Collection, id string) bool {
	var removed bool
	s.update(func(r core.ReportRecord) core.ReportRecord {
		var out core.ReportRecord
		out, removed = record.RemoveAsset(r, c, id)
		return out
	})
	return removed
}

// SetCaption updates an activity photo's caption.
func (s *Session) SetCaption(id, caption string) bool {
	var ok bool
	s.update(func(r core.ReportRecord) core.ReportRecord {
		var out core.ReportRecord
		out, ok = record.SetCaption(r, id, caption)
		return out
	})
	return ok
}

// Compose lays out the current record.
func (s *Session) Compose() core.Composition {
	return compose.Compose(s.Record(), s.cfg.Compose)
}

// Export renders the current record with r.
func (s *Session) Export(r core.Renderer) ([]byte, error) {
	data, err := r.Render(s.Compose())
	if err != nil {
		return nil, fmt.Errorf("exporting %s: %w", r.Extension(), err)
	}
	return data, nil
}

// Compiler adapts a renderer into a preview compile function.
func Compiler(opts compose.Options, r core.Renderer) func(context.Context, core.ReportRecord) ([]byte, error) {
	return func(ctx context.Context, rec core.ReportRecord) ([]byte, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return r.Render(compose.Compose(rec, opts))
	}
}
