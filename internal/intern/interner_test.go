package intern

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInternEqualStringsEqualHandles(t *testing.T) {
	in := New()
	a := in.Intern("foo/bar.go")
	b := in.Intern("foo/bar.go")
	assert.Equal(t, a, b)

	c := in.Intern("foo/baz.go")
	assert.NotEqual(t, a, c)
}

func TestInternFirstSeenOrder(t *testing.T) {
	in := New()
	h1 := in.Intern("alpha")
	h2 := in.Intern("beta")
	h3 := in.Intern("alpha")

	assert.Equal(t, Handle(0), h1)
	assert.Equal(t, Handle(1), h2)
	assert.Equal(t, h1, h3)
}

func TestResolveRoundTrip(t *testing.T) {
	in := New()
	h := in.Intern("a.rs#0:foo")
	s, ok := in.Resolve(h)
	require.True(t, ok)
	assert.Equal(t, "a.rs#0:foo", s)
}

func TestResolveUnknownHandle(t *testing.T) {
	in := New()
	_, ok := in.Resolve(Handle(42))
	assert.False(t, ok)
}

func TestInternConcurrentSafe(t *testing.T) {
	in := New()
	const n = 200
	var wg sync.WaitGroup
	results := make([]Handle, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = in.Intern("shared-value")
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		assert.Equal(t, results[0], results[i])
	}
	assert.Equal(t, 1, in.Len())
}

func TestStatsCountsBytes(t *testing.T) {
	in := New()
	in.Intern("abc")
	in.Intern("de")
	stats := in.Stats()
	assert.Equal(t, 2, stats.Entries)
	assert.Equal(t, int64(5), stats.Bytes)
}
