package callhier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mizchi/lsif-indexer/internal/graph"
	"github.com/mizchi/lsif-indexer/internal/lsiferrors"
)

func sym(id string) graph.Symbol {
	return graph.Symbol{ID: id, Name: id, Kind: graph.KindFunction, FilePath: "lib.go"}
}

func buildChain(t *testing.T) graph.Graph {
	t.Helper()
	g := graph.NewGraph(graph.ModeConcurrentMap)
	for _, id := range []string{"main", "handler", "service", "repo"} {
		g.AddSymbol(sym(id))
	}
	require.NoError(t, g.AddEdge("main", "handler", graph.EdgeReference))
	require.NoError(t, g.AddEdge("handler", "service", graph.EdgeReference))
	require.NoError(t, g.AddEdge("service", "repo", graph.EdgeReference))
	return g
}

func TestOutgoingWalksCalleeChain(t *testing.T) {
	g := buildChain(t)
	hits, err := Outgoing(g, "main", 2)
	require.NoError(t, err)
	ids := hitIDs(hits)
	assert.ElementsMatch(t, []string{"handler", "service"}, ids)
}

func TestIncomingWalksCallerChain(t *testing.T) {
	g := buildChain(t)
	hits, err := Incoming(g, "repo", 2)
	require.NoError(t, err)
	ids := hitIDs(hits)
	assert.ElementsMatch(t, []string{"service", "handler"}, ids)
}

func TestOutgoingReportsClampWhenDepthIsUnsetAndChainExceedsCeiling(t *testing.T) {
	g := graph.NewGraph(graph.ModeConcurrentMap)
	prev := "root"
	g.AddSymbol(sym(prev))
	for i := 0; i < graph.SafetyDepthCeiling+5; i++ {
		next := sym(prev + "-next")
		g.AddSymbol(next)
		require.NoError(t, g.AddEdge(prev, next.ID, graph.EdgeReference))
		prev = next.ID
	}

	hits, err := Outgoing(g, "root", -1)
	require.Error(t, err)
	var clamped *lsiferrors.CycleExceededError
	require.ErrorAs(t, err, &clamped)
	assert.Len(t, hits, graph.SafetyDepthCeiling)
}

func TestPathsFindsAllSimplePaths(t *testing.T) {
	g := graph.NewGraph(graph.ModeConcurrentMap)
	for _, id := range []string{"a", "b", "c", "d"} {
		g.AddSymbol(sym(id))
	}
	require.NoError(t, g.AddEdge("a", "b", graph.EdgeReference))
	require.NoError(t, g.AddEdge("a", "c", graph.EdgeReference))
	require.NoError(t, g.AddEdge("b", "d", graph.EdgeReference))
	require.NoError(t, g.AddEdge("c", "d", graph.EdgeReference))

	paths := Paths(g, "a", "d", 5)
	assert.ElementsMatch(t, [][]string{{"a", "b", "d"}, {"a", "c", "d"}}, paths)
}

func TestPathsRespectsMaxDepth(t *testing.T) {
	g := buildChain(t)
	assert.Empty(t, Paths(g, "main", "repo", 1))
	assert.NotEmpty(t, Paths(g, "main", "repo", 3))
}

func TestPathsPrunesMutualRecursionCycle(t *testing.T) {
	g := graph.NewGraph(graph.ModeConcurrentMap)
	g.AddSymbol(sym("a"))
	g.AddSymbol(sym("b"))
	require.NoError(t, g.AddEdge("a", "b", graph.EdgeReference))
	require.NoError(t, g.AddEdge("b", "a", graph.EdgeReference))

	paths := Paths(g, "a", "b", 10)
	require.Len(t, paths, 1)
	assert.Equal(t, []string{"a", "b"}, paths[0])
}

func TestPathsReturnsNilForUnknownEndpoints(t *testing.T) {
	g := buildChain(t)
	assert.Nil(t, Paths(g, "ghost", "repo", 5))
	assert.Nil(t, Paths(g, "main", "ghost", 5))
}

func hitIDs(hits []graph.TraversalHit) []string {
	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.Symbol.ID
	}
	return ids
}
