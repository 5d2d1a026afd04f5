// Package testutil provides a deterministic, in-memory extract.Strategy
// for tests elsewhere in the module — never wired into a production
// command.
package testutil

import (
	"context"

	"github.com/mizchi/lsif-indexer/internal/extract"
)

// FakeStrategy returns a fixed, caller-supplied Result per file path,
// recording every call it receives for test assertions.
type FakeStrategy struct {
	StrategyName     string
	StrategyPriority int
	Unsupported      map[string]bool
	Results          map[string]extract.Result
	Errors           map[string]error
	Calls            []string
}

// NewFakeStrategy builds a fake strategy named "fake" with no results
// configured yet. StrategyPriority defaults to 0, so a set of fakes
// built with NewFakeStrategy preserve Chain construction order.
func NewFakeStrategy() *FakeStrategy {
	return &FakeStrategy{
		StrategyName: "fake",
		Results:      make(map[string]extract.Result),
		Errors:       make(map[string]error),
		Unsupported:  make(map[string]bool),
	}
}

func (f *FakeStrategy) Name() string { return f.StrategyName }

func (f *FakeStrategy) Priority() int { return f.StrategyPriority }

// Supports returns true for every path not explicitly marked in
// Unsupported.
func (f *FakeStrategy) Supports(filePath string) bool { return !f.Unsupported[filePath] }

func (f *FakeStrategy) Extract(_ context.Context, filePath string) (extract.Result, error) {
	f.Calls = append(f.Calls, filePath)
	if err, ok := f.Errors[filePath]; ok {
		return extract.Result{}, err
	}
	return f.Results[filePath], nil
}
