package extract_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mizchi/lsif-indexer/internal/extract"
	"github.com/mizchi/lsif-indexer/internal/extract/testutil"
	"github.com/mizchi/lsif-indexer/internal/graph"
)

func TestChainReturnsFirstNonEmptyResult(t *testing.T) {
	first := testutil.NewFakeStrategy()
	first.StrategyName = "first"

	second := testutil.NewFakeStrategy()
	second.StrategyName = "second"
	second.Results["a.go"] = extract.Result{
		Symbols: []graph.Symbol{{ID: "a.go#1:foo", Name: "foo"}},
	}

	chain := extract.NewChain(first, second)
	result, err := chain.Extract(context.Background(), "a.go")
	require.NoError(t, err)

	require.Len(t, result.Symbols, 1)
	assert.Equal(t, "foo", result.Symbols[0].Name)
	assert.Equal(t, []string{"a.go"}, first.Calls)
	assert.Equal(t, []string{"a.go"}, second.Calls)
}

func TestChainSkipsStrategyThatErrors(t *testing.T) {
	failing := testutil.NewFakeStrategy()
	failing.Errors["a.go"] = errors.New("lsp unavailable")

	fallback := testutil.NewFakeStrategy()
	fallback.Results["a.go"] = extract.Result{
		Symbols: []graph.Symbol{{ID: "a.go#1:foo", Name: "foo"}},
	}

	chain := extract.NewChain(failing, fallback)
	result, err := chain.Extract(context.Background(), "a.go")
	require.NoError(t, err)
	require.Len(t, result.Symbols, 1)
}

func TestChainReturnsLastErrorWhenAllFail(t *testing.T) {
	s1 := testutil.NewFakeStrategy()
	s1.Errors["a.go"] = errors.New("first failure")
	s2 := testutil.NewFakeStrategy()
	s2.Errors["a.go"] = errors.New("second failure")

	chain := extract.NewChain(s1, s2)
	_, err := chain.Extract(context.Background(), "a.go")
	assert.EqualError(t, err, "second failure")
}

func TestChainWithNoStrategiesReturnsEmptyResult(t *testing.T) {
	chain := extract.NewChain()
	result, err := chain.Extract(context.Background(), "a.go")
	require.NoError(t, err)
	assert.Empty(t, result.Symbols)
}

func TestChainRunsLowerPriorityStrategyFirstRegardlessOfConstructionOrder(t *testing.T) {
	preferred := testutil.NewFakeStrategy()
	preferred.StrategyName = "preferred"
	preferred.StrategyPriority = 0
	preferred.Results["a.go"] = extract.Result{
		Symbols: []graph.Symbol{{ID: "a.go#1:foo", Name: "foo"}},
	}

	fallback := testutil.NewFakeStrategy()
	fallback.StrategyName = "fallback"
	fallback.StrategyPriority = 100
	fallback.Results["a.go"] = extract.Result{
		Symbols: []graph.Symbol{{ID: "a.go#1:bar", Name: "bar"}},
	}

	// Constructed with the lower-priority strategy listed first; the
	// chain must still try "preferred" before "fallback".
	chain := extract.NewChain(fallback, preferred)
	result, err := chain.Extract(context.Background(), "a.go")
	require.NoError(t, err)
	require.Len(t, result.Symbols, 1)
	assert.Equal(t, "foo", result.Symbols[0].Name)
	assert.Empty(t, fallback.Calls, "lower-priority fallback must not run once a preferred strategy matches")
}

func TestChainSkipsStrategyThatDoesNotSupportPath(t *testing.T) {
	goOnly := testutil.NewFakeStrategy()
	goOnly.StrategyName = "go-only"
	goOnly.Unsupported["notes.txt"] = true
	goOnly.Results["notes.txt"] = extract.Result{
		Symbols: []graph.Symbol{{ID: "notes.txt#1:foo", Name: "foo"}},
	}

	chain := extract.NewChain(goOnly)
	result, err := chain.Extract(context.Background(), "notes.txt")
	require.NoError(t, err)
	assert.Empty(t, result.Symbols)
	assert.Empty(t, goOnly.Calls, "Extract must not be called on a file the strategy does not support")
}
