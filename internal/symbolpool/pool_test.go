package symbolpool

import (
	"testing"

	"github.com/mizchi/lsif-indexer/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireReleaseReusesRecord(t *testing.T) {
	p := New(4)

	a := p.Acquire(graph.Symbol{ID: "a", Name: "a"})
	addr := a.Symbol
	p.Release(a)

	b := p.Acquire(graph.Symbol{ID: "b", Name: "b"})
	assert.Same(t, addr, b.Symbol, "released record should be reused")
	assert.Equal(t, "b", b.Symbol.Name)

	stats := p.Stats()
	assert.Equal(t, int64(2), stats.Acquires)
	assert.Equal(t, int64(1), stats.Reused)
}

func TestReleaseDropsWhenFull(t *testing.T) {
	p := New(1)
	a := p.Acquire(graph.Symbol{ID: "a"})
	b := p.Acquire(graph.Symbol{ID: "b"})

	p.Release(a)
	p.Release(b) // free list already at capacity 1

	stats := p.Stats()
	assert.Equal(t, int64(1), stats.Dropped)
}

func TestRetainPreventsEarlyReuse(t *testing.T) {
	p := New(4)
	a := p.Acquire(graph.Symbol{ID: "a"})
	shared := a.Retain()

	p.Release(a) // still held by `shared`
	p.Release(shared)

	stats := p.Stats()
	assert.Equal(t, int64(1), stats.Releases, "record only returns to the pool once the last ref is released")
}

func TestDoubleReleasePanics(t *testing.T) {
	p := New(4)
	a := p.Acquire(graph.Symbol{ID: "a"})
	p.Release(a)
	require.Panics(t, func() { p.Release(a) })
}
