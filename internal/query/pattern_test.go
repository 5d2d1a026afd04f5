package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mizchi/lsif-indexer/internal/graph"
)

func TestParseSimpleForwardRelationship(t *testing.T) {
	pat, err := Parse(`(a:Function)-[:Reference]->(b:Function)`)
	require.NoError(t, err)
	require.Len(t, pat.Nodes, 2)
	require.Len(t, pat.Rels, 1)

	assert.Equal(t, "a", pat.Nodes[0].Var)
	assert.Equal(t, "Function", pat.Nodes[0].Label)
	assert.Equal(t, "b", pat.Nodes[1].Var)

	rel := pat.Rels[0]
	require.NotNil(t, rel.Kind)
	assert.Equal(t, graph.EdgeReference, *rel.Kind)
	assert.Equal(t, graph.DirForward, rel.Dir)
	assert.Equal(t, 1, rel.MinDepth)
	assert.Equal(t, 1, rel.MaxDepth)
}

func TestParseBackwardRelationship(t *testing.T) {
	pat, err := Parse(`(a)<-[:Reference]-(b)`)
	require.NoError(t, err)
	assert.Equal(t, graph.DirBackward, pat.Rels[0].Dir)
}

func TestParseBothDirectionsRelationship(t *testing.T) {
	pat, err := Parse(`(a)-[:Reference]-(b)`)
	require.NoError(t, err)
	assert.Equal(t, graph.DirBoth, pat.Rels[0].Dir)
}

func TestParseDepthVariants(t *testing.T) {
	cases := []struct {
		src      string
		min, max int
	}{
		{`(a)-[*3]->(b)`, 3, 3},
		{`(a)-[*2..5]->(b)`, 2, 5},
		{`(a)-[*2..]->(b)`, 2, graph.SafetyDepthCeiling},
		{`(a)-[*]->(b)`, 1, graph.SafetyDepthCeiling},
	}
	for _, c := range cases {
		pat, err := Parse(c.src)
		require.NoError(t, err, c.src)
		assert.Equal(t, c.min, pat.Rels[0].MinDepth, c.src)
		assert.Equal(t, c.max, pat.Rels[0].MaxDepth, c.src)
	}
}

func TestParseRejectsInvertedDepthRange(t *testing.T) {
	_, err := Parse(`(a)-[*5..2]->(b)`)
	assert.Error(t, err)
}

func TestParseRejectsUnknownEdgeKind(t *testing.T) {
	_, err := Parse(`(a)-[:NotAKind]->(b)`)
	assert.Error(t, err)
}

func TestParseNodeWithProps(t *testing.T) {
	pat, err := Parse(`(a:Function {name: "foo"})`)
	require.NoError(t, err)
	assert.Equal(t, "foo", pat.Nodes[0].Props["name"])
}

func TestParseMultiHopChain(t *testing.T) {
	pat, err := Parse(`(a)-[:Reference]->(b)-[:Definition]->(c)`)
	require.NoError(t, err)
	assert.Len(t, pat.Nodes, 3)
	assert.Len(t, pat.Rels, 2)
}

func TestParseRejectsTrailingGarbage(t *testing.T) {
	_, err := Parse(`(a)-[:Reference]->(b) garbage`)
	assert.Error(t, err)
}
