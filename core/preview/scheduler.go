// Package preview keeps a rendered preview in step with an edited record.
//
// Edits are debounced; when the timer expires the record is compiled into a
// fresh RenderedBuffer while the previous one stays displayed, then the two
// are swapped and the old buffer is released. At most one compile runs at a
// time and compiles are never cancelled: an edit that lands mid-compile marks
// the scheduler dirty and schedules another round once the swap completes.
package preview

import (
	"context"
	"sync"
	"time"

	"github.com/gaurav-prasanna/reportpipe/core"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period after the last edit before compiling.
const DefaultDebounce = 800 * time.Millisecond

// State is the scheduler's lifecycle state.
type State int

const (
	Idle State = iota
	Debouncing
	Compiling
	Swapping
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Debouncing:
		return "debouncing"
	case Compiling:
		return "compiling"
	case Swapping:
		return "swapping"
	}
	return "unknown"
}

// CompileFunc turns a record into document bytes, typically compose + render.
type CompileFunc func(ctx context.Context, r core.ReportRecord) ([]byte, error)

// Config configures a Scheduler.
type Config struct {
	Compile  CompileFunc
	Debounce time.Duration
	Clock    Clock
	// OnSwap is called with each buffer as it becomes the displayed one.
	OnSwap func(*RenderedBuffer)
	// OnRelease is called once for each buffer when it is released.
	OnRelease func(*RenderedBuffer)
	Logger    *zap.Logger
}

// Scheduler debounces edits and double-buffers compiled previews.
type Scheduler struct {
	cfg Config
	log *zap.Logger

	mu       sync.Mutex
	state    State
	pending  core.ReportRecord
	dirty    bool
	timer    Timer
	gen      uint64
	seq      uint64
	active   *RenderedBuffer
	closed   bool
	compiled int
	idle     *sync.Cond
}

// New creates a Scheduler in the Idle state.
func New(cfg Config) *Scheduler {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Clock == nil {
		cfg.Clock = RealClock()
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	s := &Scheduler{cfg: cfg, log: log}
	s.idle = sync.NewCond(&s.mu)
	return s
}

// Edit records the latest state of the report. It never blocks on a compile.
func (s *Scheduler) Edit(r core.ReportRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.pending = r
	switch s.state {
	case Idle, Debouncing:
		s.arm()
	case Compiling, Swapping:
		s.dirty = true
	}
}

// arm (re)starts the debounce timer. Caller holds mu.
func (s *Scheduler) arm() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.state = Debouncing
	s.timer = s.cfg.Clock.AfterFunc(s.cfg.Debounce, func() { s.fire(gen) })
}

func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if s.closed || s.state != Debouncing || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.state = Compiling
	s.timer = nil
	s.seq++
	seq, rec := s.seq, s.pending
	s.mu.Unlock()

	start := s.cfg.Clock.Now()
	data, err := s.cfg.Compile(context.Background(), rec)

	s.mu.Lock()
	s.compiled++
	if s.closed {
		s.mu.Unlock()
		if err == nil {
			newBuffer(data, seq, start, s.cfg.OnRelease).Release()
		}
		return
	}
	if err != nil {
		s.log.Warn("preview compile failed", zap.Uint64("compile", seq), zap.Error(err))
		s.settle()
		s.mu.Unlock()
		return
	}

	s.state = Swapping
	buf := newBuffer(data, seq, s.cfg.Clock.Now(), s.cfg.OnRelease)
	prev := s.active
	s.active = buf
	s.mu.Unlock()

	prev.Release()
	if s.cfg.OnSwap != nil {
		s.cfg.OnSwap(buf)
	}
	s.log.Debug("preview swapped",
		zap.Uint64("compile", seq),
		zap.Int("bytes", len(data)),
		zap.Duration("duration", s.cfg.Clock.Now().Sub(start)),
	)

	s.mu.Lock()
	if s.closed {
		// Close left the buffer to us while it was being handed to OnSwap.
		active := s.active
		s.active = nil
		s.mu.Unlock()
		active.Release()
		return
	}
	s.settle()
	s.mu.Unlock()
}

// settle leaves Compiling or Swapping, re-entering Debouncing when edits
// arrived in the meantime. Caller holds mu.
func (s *Scheduler) settle() {
	if s.dirty {
		s.dirty = false
		s.arm()
		return
	}
	s.state = Idle
	s.idle.Broadcast()
}

// Active returns the displayed buffer, or nil before the first swap.
func (s *Scheduler) Active() *RenderedBuffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Compiles returns how many compiles have finished.
func (s *Scheduler) Compiles() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.compiled
}

// WaitIdle blocks until no edit is pending and no compile is running, or ctx
// is done.
func (s *Scheduler) WaitIdle(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		s.mu.Lock()
		s.idle.Broadcast()
		s.mu.Unlock()
	})
	defer stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	for s.state != Idle && !s.closed {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.idle.Wait()
	}
	return nil
}

// Close stops the scheduler and releases the displayed buffer. A compile
// still running completes and releases its own result. A buffer being
// handed to OnSwap stays valid until OnSwap returns.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	var active *RenderedBuffer
	if s.state != Swapping {
		active = s.active
		s.active = nil
	}
	s.idle.Broadcast()
	s.mu.Unlock()

	active.Release()
}
