package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mizchi/lsif-indexer/internal/graph"
)

func sym(id, name string) graph.Symbol {
	return graph.Symbol{ID: id, Name: name, FilePath: "lib.go", Kind: graph.KindFunction}
}

func TestSearchExactMatchScoresHighest(t *testing.T) {
	idx := Build([]graph.Symbol{
		sym("1", "getUser"),
		sym("2", "getUserByID"),
	})

	matches := idx.Search("getuser", 10)
	require.NotEmpty(t, matches)
	assert.Equal(t, "getUser", matches[0].Symbol.Name)
	assert.Equal(t, MatchExact, matches[0].MatchType)
	assert.Equal(t, 100.0, matches[0].Score)
}

func TestSearchPrefixMatch(t *testing.T) {
	idx := Build([]graph.Symbol{sym("1", "getUserByID")})
	matches := idx.Search("getUser", 10)
	require.Len(t, matches, 1)
	assert.Equal(t, MatchPrefix, matches[0].MatchType)
	assert.Equal(t, 80.0, matches[0].Score)
}

func TestSearchCamelCaseWordSubset(t *testing.T) {
	idx := Build([]graph.Symbol{sym("1", "getUserByID")})
	matches := idx.Search("user id", 10)
	require.Len(t, matches, 1)
	assert.Equal(t, MatchCamelCase, matches[0].MatchType)
	assert.Equal(t, 70.0, matches[0].Score)
}

func TestSearchSubstringMatch(t *testing.T) {
	idx := Build([]graph.Symbol{sym("1", "parseConfigFile")})
	// "onfig" spans only part of the "Config" word, so it can only match
	// as a substring, not as a whole camel-case word.
	matches := idx.Search("onfig", 10)
	require.Len(t, matches, 1)
	assert.Equal(t, MatchSubstring, matches[0].MatchType)
	assert.Equal(t, 70.0, matches[0].Score)
}

func TestSearchAbbreviationMatch(t *testing.T) {
	idx := Build([]graph.Symbol{sym("1", "getUserByName")})
	matches := idx.Search("gubn", 10)
	require.Len(t, matches, 1)
	assert.Equal(t, 60.0, matches[0].Score)
}

func TestSearchSubsequenceMatch(t *testing.T) {
	idx := Build([]graph.Symbol{sym("1", "getUserByID")})
	matches := idx.Search("gubid", 10)
	require.Len(t, matches, 1)
	assert.Equal(t, MatchFuzzy, matches[0].MatchType)
	assert.Equal(t, 50.0, matches[0].Score)
}

func TestSearchTypoMatchWithinEditDistance(t *testing.T) {
	idx := Build([]graph.Symbol{sym("1", "process")})
	// "brocess" substitutes the leading letter, so it is close in edit
	// distance but not a subsequence or substring of "process".
	matches := idx.Search("brocess", 10)
	require.Len(t, matches, 1)
	assert.Equal(t, MatchTypo, matches[0].MatchType)
	assert.GreaterOrEqual(t, matches[0].Score, scoreEditDistanceMin)
}

func TestSearchRejectsTooDistantTypo(t *testing.T) {
	idx := Build([]graph.Symbol{sym("1", "process")})
	matches := idx.Search("xyzabc", 10)
	assert.Empty(t, matches)
}

func TestSearchRespectsLimit(t *testing.T) {
	idx := Build([]graph.Symbol{
		sym("1", "fooAlpha"),
		sym("2", "fooBeta"),
		sym("3", "fooGamma"),
	})
	matches := idx.Search("foo", 2)
	assert.Len(t, matches, 2)
}

func TestSearchSortsByScoreThenShorterName(t *testing.T) {
	idx := Build([]graph.Symbol{
		sym("1", "fooLongerName"),
		sym("2", "foo"),
	})
	matches := idx.Search("foo", 10)
	require.Len(t, matches, 2)
	assert.Equal(t, "foo", matches[0].Symbol.Name)
}

func TestSearchEmptyQueryReturnsNoMatches(t *testing.T) {
	idx := Build([]graph.Symbol{sym("1", "foo")})
	assert.Empty(t, idx.Search("", 10))
}

func TestSplitCamelCaseHandlesAcronymsAndSeparators(t *testing.T) {
	assert.Equal(t, []string{"get", "User", "By", "ID"}, splitCamelCase("getUserByID"))
	assert.Equal(t, []string{"parse", "config", "file"}, splitCamelCase("parse_config_file"))
}

func TestIsSubsequence(t *testing.T) {
	assert.True(t, isSubsequence("gbi", "getuserbyid"))
	assert.False(t, isSubsequence("xyz", "getuserbyid"))
}
