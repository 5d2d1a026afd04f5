// Package symbolpool reuses *graph.Symbol records to limit allocator
// pressure during bulk ingest, via a single bounded FIFO free list
// rather than a multi-tier pool scheme — see DESIGN.md for why the
// tiering machinery a slab allocator would normally carry isn't needed
// here.
package symbolpool

import (
	"sync"
	"sync/atomic"

	"github.com/mizchi/lsif-indexer/internal/graph"
)

// Pooled is a reference-counted handle around a *graph.Symbol. A record
// is only safe to reuse once its held count drops to zero (no outstanding
// shared references) — Release enforces this by refusing to recycle a
// record that is still shared.
type Pooled struct {
	Symbol *graph.Symbol
	refs   *int32
}

// Retain increments the reference count and returns the same Pooled,
// making it safe to hand a copy to a second owner.
func (p Pooled) Retain() Pooled {
	atomic.AddInt32(p.refs, 1)
	return p
}

// Pool is a bounded FIFO free list of *graph.Symbol records.
type Pool struct {
	mu       sync.Mutex
	free     []*graph.Symbol
	capacity int

	stats Stats
}

// Stats tracks pool behavior for diagnostics.
type Stats struct {
	Acquires int64
	Releases int64
	Reused   int64
	Dropped  int64 // released while free list was at capacity
}

// New creates a Pool whose free list holds at most capacity records.
func New(capacity int) *Pool {
	if capacity <= 0 {
		capacity = 1024
	}
	return &Pool{capacity: capacity}
}

// Acquire returns a Pooled symbol populated with the given fields, reusing
// a free-listed record when one is available.
func (p *Pool) Acquire(s graph.Symbol) Pooled {
	atomic.AddInt64(&p.stats.Acquires, 1)

	p.mu.Lock()
	var rec *graph.Symbol
	if n := len(p.free); n > 0 {
		rec = p.free[0]
		p.free = p.free[1:]
	}
	p.mu.Unlock()

	if rec != nil {
		atomic.AddInt64(&p.stats.Reused, 1)
		*rec = s
	} else {
		rec = &graph.Symbol{}
		*rec = s
	}

	refs := int32(1)
	return Pooled{Symbol: rec, refs: &refs}
}

// Release decrements p's reference count and, if it reaches zero, returns
// the underlying record to the free list (dropping it if the list is at
// capacity). Release must not be called more than once per Retain/Acquire.
func (p *Pool) Release(pooled Pooled) {
	remaining := atomic.AddInt32(pooled.refs, -1)
	if remaining > 0 {
		// Still shared elsewhere; the record must not be recycled or
		// referenced again by this caller.
		return
	}
	if remaining < 0 {
		panic("symbolpool: Release called more times than Acquire/Retain")
	}

	atomic.AddInt64(&p.stats.Releases, 1)

	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.free) >= p.capacity {
		atomic.AddInt64(&p.stats.Dropped, 1)
		return
	}
	p.free = append(p.free, pooled.Symbol)
}

// Stats returns a snapshot of pool counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Acquires: atomic.LoadInt64(&p.stats.Acquires),
		Releases: atomic.LoadInt64(&p.stats.Releases),
		Reused:   atomic.LoadInt64(&p.stats.Reused),
		Dropped:  atomic.LoadInt64(&p.stats.Dropped),
	}
}
