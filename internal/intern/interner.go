// Package intern deduplicates short strings — symbol ids, names, file
// paths — into compact 32-bit handles.
package intern

import "sync"

// Handle is an opaque reference to an interned string. Handles are
// assigned from 0 upward in first-seen order; no value is reserved as a
// "no handle" sentinel.
type Handle uint32

// Interner is a concurrent, monotonic (grow-only) string table. Equal
// inputs always yield equal handles, assigned in first-seen order.
//
// The interner never shrinks or releases entries. Callers must not intern
// unbounded user input (e.g. raw query text).
type Interner struct {
	mu      sync.RWMutex
	strings []string
	lookup  map[string]Handle
}

// New creates an empty Interner.
func New() *Interner {
	return &Interner{
		lookup: make(map[string]Handle),
	}
}

// Intern returns the handle for s, assigning a new one on first sight.
func (in *Interner) Intern(s string) Handle {
	in.mu.RLock()
	if h, ok := in.lookup[s]; ok {
		in.mu.RUnlock()
		return h
	}
	in.mu.RUnlock()

	in.mu.Lock()
	defer in.mu.Unlock()

	// Double-check: another writer may have interned s while we waited
	// for the write lock.
	if h, ok := in.lookup[s]; ok {
		return h
	}

	// Copy s so the interner doesn't keep a slice of the caller's backing
	// array alive.
	owned := string(append([]byte(nil), s...))
	h := Handle(len(in.strings))
	in.strings = append(in.strings, owned)
	in.lookup[owned] = h
	return h
}

// Resolve returns the string for h. ok is false if h was never assigned
// by this Interner.
func (in *Interner) Resolve(h Handle) (string, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if int(h) >= len(in.strings) {
		return "", false
	}
	return in.strings[h], true
}

// MustResolve panics if h is out of range. Intended for hot paths where the
// handle provenance is already guaranteed by the caller.
func (in *Interner) MustResolve(h Handle) string {
	s, ok := in.Resolve(h)
	if !ok {
		panic("intern: handle out of range")
	}
	return s
}

// Len returns the number of distinct strings interned so far.
func (in *Interner) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.strings)
}

// Stats summarizes memory usage for diagnostics.
type Stats struct {
	Entries int
	Bytes   int64
}

// Stats computes the current entry count and total byte size of the
// interned strings. O(n); intended for periodic reporting, not hot paths.
func (in *Interner) Stats() Stats {
	in.mu.RLock()
	defer in.mu.RUnlock()
	var bytes int64
	for _, s := range in.strings {
		bytes += int64(len(s))
	}
	return Stats{Entries: len(in.strings), Bytes: bytes}
}

// process is the optional process-global interner. Most callers should
// prefer constructing their own Interner and threading it through, but a
// singleton is convenient for CLI entry points and tests that don't care
// about isolation.
var process = New()

// Global returns the process-wide Interner singleton.
func Global() *Interner { return process }
