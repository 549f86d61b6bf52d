package preview

import (
	"sync/atomic"
	"time"
)

// RenderedBuffer is one compiled preview document. The scheduler owns it
// until it is superseded, at which point it is released exactly once.
type RenderedBuffer struct {
	data      []byte
	seq       uint64
	createdAt time.Time
	released  atomic.Bool
	onRelease func(*RenderedBuffer)
}

func newBuffer(data []byte, seq uint64, at time.Time, onRelease func(*RenderedBuffer)) *RenderedBuffer {
	return &RenderedBuffer{data: data, seq: seq, createdAt: at, onRelease: onRelease}
}

// Bytes returns the document. It must not be used after Release.
func (b *RenderedBuffer) Bytes() []byte { return b.data }

// Seq is the compile number that produced the buffer, starting at 1.
func (b *RenderedBuffer) Seq() uint64 { return b.seq }

// CreatedAt is when the compile finished.
func (b *RenderedBuffer) CreatedAt() time.Time { return b.createdAt }

// Released reports whether the buffer has been released.
func (b *RenderedBuffer) Released() bool { return b.released.Load() }

// Release frees the buffer. Only the first call has an effect; it reports
// whether this call released it.
func (b *RenderedBuffer) Release() bool {
	if b == nil || !b.released.CompareAndSwap(false, true) {
		return false
	}
	if b.onRelease != nil {
		b.onRelease(b)
	}
	return true
}
