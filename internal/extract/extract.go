// Package extract defines the extraction façade: the core's only view
// of the outside world that turns source files into symbols and edges.
// Concrete strategies — LSP transport, regex fallbacks — are external
// collaborators; this package only defines the interface, the priority
// chain, and the adaptive-timeout/retry plumbing shared by any strategy
// that calls out to a subprocess.
package extract

import (
	"context"
	"sort"

	"github.com/mizchi/lsif-indexer/internal/graph"
)

// Result is what a single extraction call produces for one file.
type Result struct {
	Symbols []graph.Symbol
	Edges   []graph.Edge
}

// Strategy turns one file's contents into symbols and cross-references.
// A strategy that cannot service a file returns an empty Result and a
// nil error — that signals "try the next strategy", not failure.
type Strategy interface {
	Name() string
	// Priority orders strategies within a Chain; lower values run
	// first.
	Priority() int
	// Supports reports whether this strategy applies to filePath at
	// all, independent of whether it finds anything there. A Chain
	// never calls Extract on a strategy that returns false here.
	Supports(filePath string) bool
	Extract(ctx context.Context, filePath string) (Result, error)
}

// Chain tries each Strategy in priority order and returns the first
// non-empty Result.
type Chain struct {
	strategies []Strategy
}

// NewChain builds a priority chain, sorted by ascending Priority; ties
// keep the order passed in.
func NewChain(strategies ...Strategy) *Chain {
	sorted := make([]Strategy, len(strategies))
	copy(sorted, strategies)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() < sorted[j].Priority()
	})
	return &Chain{strategies: sorted}
}

// Extract runs each strategy whose Supports(filePath) holds, in
// priority order, returning the first result with at least one symbol.
// If every applicable strategy errors, the last error is returned. If
// every applicable strategy returns an empty result with no error, or
// none applies at all, Extract returns an empty Result.
func (c *Chain) Extract(ctx context.Context, filePath string) (Result, error) {
	var lastErr error
	for _, s := range c.strategies {
		if !s.Supports(filePath) {
			continue
		}
		result, err := s.Extract(ctx, filePath)
		if err != nil {
			lastErr = err
			continue
		}
		if len(result.Symbols) > 0 {
			return result, nil
		}
	}
	return Result{}, lastErr
}
