package indexer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mizchi/lsif-indexer/internal/cache"
	"github.com/mizchi/lsif-indexer/internal/changes"
	"github.com/mizchi/lsif-indexer/internal/config"
	"github.com/mizchi/lsif-indexer/internal/extract"
	"github.com/mizchi/lsif-indexer/internal/graph"
)

type memBacking struct {
	data map[string][]byte
}

func newMemBacking() *memBacking {
	return &memBacking{data: make(map[string][]byte)}
}

func (m *memBacking) Get(key string) ([]byte, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memBacking) Put(key string, value []byte) error {
	m.data[key] = value
	return nil
}

func (m *memBacking) Delete(key string) error {
	delete(m.data, key)
	return nil
}

func (m *memBacking) PrefixScan(prefix string, limit int) ([]cache.KV, error) {
	var out []cache.KV
	for k, v := range m.data {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			out = append(out, cache.KV{Key: k, Value: v})
		}
	}
	return out, nil
}

func (m *memBacking) Flush() error { return nil }

type fakeDetector struct {
	changes []changes.Change
}

func (f *fakeDetector) Detect(string, string, map[string]uint64) ([]changes.Change, error) {
	return f.changes, nil
}

type fakeExtractor struct {
	byPath map[string]extract.Result
}

func (f *fakeExtractor) Extract(_ context.Context, filePath string) (extract.Result, error) {
	return f.byPath[filePath], nil
}

func sym(id, name, file string) graph.Symbol {
	return graph.Symbol{ID: id, Name: name, FilePath: file, Kind: graph.KindFunction}
}

func TestIndexDifferentialIncrementalAdd(t *testing.T) {
	g := graph.NewGraph(graph.ModeConcurrentMap)
	backing := newMemBacking()
	detector := &fakeDetector{changes: []changes.Change{
		{Path: "a.rs", Status: changes.Added, ContentHash: 1, HasHash: true},
	}}
	extractor := &fakeExtractor{byPath: map[string]extract.Result{
		"a.rs": {Symbols: []graph.Symbol{sym("a.rs#0:foo", "foo", "a.rs")}},
	}}
	cfg := config.Default("/proj")

	idx := New(g, backing, detector, extractor, cfg)
	result, err := idx.IndexDifferential(context.Background(), "/proj")
	require.NoError(t, err)

	assert.Equal(t, 1, result.FilesAdded)
	assert.Equal(t, 1, result.SymbolsAdded)

	_, found := g.FindSymbol("a.rs#0:foo")
	assert.True(t, found)

	_, ok, err := backing.Get(MetadataKeyName)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIndexDifferentialThenAddingReferencingFile(t *testing.T) {
	g := graph.NewGraph(graph.ModeConcurrentMap)
	backing := newMemBacking()
	cfg := config.Default("/proj")

	firstDetector := &fakeDetector{changes: []changes.Change{
		{Path: "a.rs", Status: changes.Added, ContentHash: 1, HasHash: true},
	}}
	firstExtractor := &fakeExtractor{byPath: map[string]extract.Result{
		"a.rs": {Symbols: []graph.Symbol{sym("a.rs#0:foo", "foo", "a.rs")}},
	}}
	idx := New(g, backing, firstDetector, firstExtractor, cfg)
	_, err := idx.IndexDifferential(context.Background(), "/proj")
	require.NoError(t, err)

	idx.Detector = &fakeDetector{changes: []changes.Change{
		{Path: "b.rs", Status: changes.Added, ContentHash: 2, HasHash: true},
	}}
	idx.Extractor = &fakeExtractor{byPath: map[string]extract.Result{
		"b.rs": {
			Symbols: []graph.Symbol{sym("b.rs#0:bar", "bar", "b.rs")},
			Edges:   []graph.Edge{{From: "b.rs#0:bar", To: "a.rs#0:foo", Kind: graph.EdgeReference}},
		},
	}}

	result, err := idx.IndexDifferential(context.Background(), "/proj")
	require.NoError(t, err)

	assert.Equal(t, 1, result.FilesAdded)
	assert.Equal(t, 1, result.SymbolsAdded)
	assert.Equal(t, 1, result.SymbolsAdded)

	refs := g.FindReferences("a.rs#0:foo")
	require.Len(t, refs, 1)
	assert.Equal(t, "b.rs#0:bar", refs[0].ID)
}

func TestIndexDifferentialHandlesDeletion(t *testing.T) {
	g := graph.NewGraph(graph.ModeConcurrentMap)
	g.AddSymbol(sym("a.rs#0:foo", "foo", "a.rs"))

	backing := newMemBacking()
	cfg := config.Default("/proj")
	detector := &fakeDetector{changes: []changes.Change{
		{Path: "a.rs", Status: changes.Deleted},
	}}
	extractor := &fakeExtractor{byPath: map[string]extract.Result{}}

	idx := New(g, backing, detector, extractor, cfg)
	result, err := idx.IndexDifferential(context.Background(), "/proj")
	require.NoError(t, err)

	assert.Equal(t, 1, result.FilesDeleted)
	assert.Equal(t, 1, result.SymbolsDeleted)

	_, found := g.FindSymbol("a.rs#0:foo")
	assert.False(t, found)
}

func TestIndexDifferentialHandlesRenameByClearingOldPathAndExtractingNew(t *testing.T) {
	g := graph.NewGraph(graph.ModeConcurrentMap)
	g.AddSymbol(sym("a.rs#0:foo", "foo", "a.rs"))

	backing := newMemBacking()
	cfg := config.Default("/proj")
	detector := &fakeDetector{changes: []changes.Change{
		{Path: "b.rs", Status: changes.Renamed, RenamedFrom: "a.rs", ContentHash: 1, HasHash: true},
	}}
	extractor := &fakeExtractor{byPath: map[string]extract.Result{
		"b.rs": {Symbols: []graph.Symbol{sym("b.rs#0:foo", "foo", "b.rs")}},
	}}

	idx := New(g, backing, detector, extractor, cfg)
	result, err := idx.IndexDifferential(context.Background(), "/proj")
	require.NoError(t, err)

	assert.Equal(t, 1, result.SymbolsDeleted)
	assert.Equal(t, 1, result.SymbolsAdded)

	_, foundOld := g.FindSymbol("a.rs#0:foo")
	assert.False(t, foundOld)
	_, foundNew := g.FindSymbol("b.rs#0:foo")
	assert.True(t, foundNew)
}

func TestIndexDifferentialUnchangedWorkspaceIsIdempotent(t *testing.T) {
	g := graph.NewGraph(graph.ModeConcurrentMap)
	backing := newMemBacking()
	cfg := config.Default("/proj")
	detector := &fakeDetector{changes: nil}
	extractor := &fakeExtractor{byPath: map[string]extract.Result{}}

	idx := New(g, backing, detector, extractor, cfg)
	first, err := idx.IndexDifferential(context.Background(), "/proj")
	require.NoError(t, err)
	second, err := idx.IndexDifferential(context.Background(), "/proj")
	require.NoError(t, err)

	assert.Equal(t, 0, first.SymbolsAdded)
	assert.Equal(t, 0, second.SymbolsAdded)
}

func TestDeadCodeNamedOnlyModeFindsUnreachableFunction(t *testing.T) {
	g := graph.NewGraph(graph.ModeConcurrentMap)
	g.AddSymbol(sym("main.rs#0:main", "main", "main.rs"))
	g.AddSymbol(sym("lib.rs#0:helper", "helper", "lib.rs"))
	g.AddSymbol(sym("lib.rs#1:unused", "unused", "lib.rs"))
	require.NoError(t, g.AddEdge("main.rs#0:main", "lib.rs#0:helper", graph.EdgeReference))

	backing := newMemBacking()
	cfg := config.Default("/proj")
	cfg.FeatureFlags.DeadCodeEntryPoints = "named-only"
	idx := New(g, backing, &fakeDetector{}, &fakeExtractor{byPath: map[string]extract.Result{}}, cfg)

	dead := idx.deadCode(cfg.FeatureFlags.DeadCodeEntryPoints)
	assert.Equal(t, []string{"lib.rs#1:unused"}, dead)
}

func TestDeadCodeAnyPublicModeTreatsCapitalizedNamesAsRoots(t *testing.T) {
	g := graph.NewGraph(graph.ModeConcurrentMap)
	g.AddSymbol(sym("lib.go#0:Exported", "Exported", "lib.go"))
	g.AddSymbol(sym("lib.go#1:unexported", "unexported", "lib.go"))

	backing := newMemBacking()
	cfg := config.Default("/proj")
	idx := New(g, backing, &fakeDetector{}, &fakeExtractor{byPath: map[string]extract.Result{}}, cfg)

	dead := idx.deadCode("any-public")
	assert.Equal(t, []string{"lib.go#1:unexported"}, dead)
}

func TestMetadataEncodeDecodeRoundTrip(t *testing.T) {
	m := Metadata{
		Format:        FormatLSIFLike,
		Version:       "1.2.3",
		CreatedAt:     1700000000000,
		ProjectRoot:   "/proj",
		FilesCount:    3,
		SymbolsCount:  10,
		GitCommitHash: "abc123",
		FileHashes:    map[string]uint64{"a.rs": 0xdeadbeefcafef00d},
	}

	encoded := EncodeMetadata(m)
	decoded, err := DecodeMetadata(encoded)
	require.NoError(t, err)

	assert.Equal(t, m.Format, decoded.Format)
	assert.Equal(t, m.Version, decoded.Version)
	assert.Equal(t, m.CreatedAt, decoded.CreatedAt)
	assert.Equal(t, m.ProjectRoot, decoded.ProjectRoot)
	assert.Equal(t, m.FilesCount, decoded.FilesCount)
	assert.Equal(t, m.SymbolsCount, decoded.SymbolsCount)
	assert.Equal(t, m.GitCommitHash, decoded.GitCommitHash)
	assert.Equal(t, m.FileHashes, decoded.FileHashes)
}

func TestMetadataEncodeDecodeWithoutGitCommit(t *testing.T) {
	m := Metadata{Version: "1.0.0", FileHashes: map[string]uint64{}}
	encoded := EncodeMetadata(m)
	decoded, err := DecodeMetadata(encoded)
	require.NoError(t, err)
	assert.Empty(t, decoded.GitCommitHash)
}

func TestMetadataMajorVersion(t *testing.T) {
	m := Metadata{Version: "2.5.1"}
	major, ok := m.MajorVersion()
	require.True(t, ok)
	assert.Equal(t, 2, major)
}
