package graphcodec

import (
	"testing"

	"github.com/mizchi/lsif-indexer/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSampleGraph() graph.Graph {
	g := graph.NewGraph(graph.ModeBasic)
	g.AddSymbol(graph.Symbol{ID: "a.rs#0:foo", Name: "foo", Kind: graph.KindFunction, FilePath: "a.rs"})
	g.AddSymbol(graph.Symbol{ID: "b.rs#0:bar", Name: "bar", Kind: graph.KindFunction, FilePath: "b.rs", Detail: "fn bar()"})
	_ = g.AddEdge("b.rs#0:bar", "a.rs#0:foo", graph.EdgeReference)
	return g
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	g := buildSampleGraph()
	data := Encode(g)

	result, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, result.Symbols, 2)
	require.Len(t, result.Edges, 1)
	assert.Equal(t, 0, result.SkippedEdges)

	rebuilt := Build(graph.ModeBasic, result)
	assert.Equal(t, g.Stats().NodeCount, rebuilt.Stats().NodeCount)
	assert.Equal(t, g.Stats().EdgeCount, rebuilt.Stats().EdgeCount)

	foo, ok := rebuilt.FindSymbol("a.rs#0:foo")
	require.True(t, ok)
	assert.Equal(t, "foo", foo.Name)
}

func TestEncodeDecodeEmptyDetailSurvivesAsEmptyString(t *testing.T) {
	g := graph.NewGraph(graph.ModeBasic)
	g.AddSymbol(graph.Symbol{ID: "x", Name: "x"})

	result, err := Decode(Encode(g))
	require.NoError(t, err)
	require.Len(t, result.Symbols, 1)
	assert.Empty(t, result.Symbols[0].Documentation)
	assert.Empty(t, result.Symbols[0].Detail)
}

func TestDecodeJSONSkipsUnknownEdgeKind(t *testing.T) {
	data := []byte(`{
		"symbols": [{"id":"a","kind":"Function","name":"a"}, {"id":"b","kind":"Function","name":"b"}],
		"edges": [{"from":"a","to":"b","kind":"Reference"}, {"from":"a","to":"b","kind":"TotallyMadeUp"}]
	}`)

	result, err := DecodeJSON(data)
	require.NoError(t, err)
	assert.Len(t, result.Edges, 1)
	assert.Equal(t, 1, result.SkippedEdges)
}

func TestJSONRoundTrip(t *testing.T) {
	g := buildSampleGraph()
	data, err := EncodeJSON(g)
	require.NoError(t, err)

	result, err := DecodeJSON(data)
	require.NoError(t, err)
	assert.Len(t, result.Symbols, 2)
	assert.Len(t, result.Edges, 1)
}

func TestSymbolJSONRoundTrip(t *testing.T) {
	s := graph.Symbol{
		ID: "a.rs#0:foo", Kind: graph.KindFunction, Name: "foo", FilePath: "a.rs",
		Range: graph.Range{Start: graph.Position{Line: 3, Character: 1}, End: graph.Position{Line: 3, Character: 10}},
		Detail: "fn foo()",
	}
	data, err := EncodeSymbolJSON(s)
	require.NoError(t, err)

	rebuilt, err := DecodeSymbolJSON(data)
	require.NoError(t, err)
	assert.Equal(t, s, rebuilt)
}
