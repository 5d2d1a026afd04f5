// Package indexer orchestrates change detection, the extraction façade,
// and the graph/store to keep a snapshot synchronized with an evolving
// source tree, and computes reach-based liveness for dead-code reporting.
package indexer

import (
	"context"
	"log"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mizchi/lsif-indexer/internal/cache"
	"github.com/mizchi/lsif-indexer/internal/changes"
	"github.com/mizchi/lsif-indexer/internal/config"
	"github.com/mizchi/lsif-indexer/internal/extract"
	"github.com/mizchi/lsif-indexer/internal/graph"
	"github.com/mizchi/lsif-indexer/internal/graphcodec"
	"github.com/mizchi/lsif-indexer/internal/lsiferrors"
)

// CurrentVersion is stamped into every Metadata this build writes.
const CurrentVersion = "1.0.0"

// Result tallies one indexing run's effect.
type Result struct {
	FilesAdded     int
	FilesModified  int
	FilesDeleted   int
	FilesFailed    int
	SymbolsAdded   int
	SymbolsUpdated int
	SymbolsDeleted int
	DeadSymbols    []string
}

// Backing is the persistence surface the indexer reads and writes
// through. Store implements it; tests can substitute an in-memory fake.
type Backing interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, value []byte) error
	Delete(key string) error
	PrefixScan(prefix string, limit int) ([]cache.KV, error)
	Flush() error
}

// Extractor is the subset of extract.Strategy (or extract.Chain) the
// indexer needs: turn one file into symbols and edges.
type Extractor interface {
	Extract(ctx context.Context, filePath string) (extract.Result, error)
}

// Indexer ties together the Graph, a Backing store, a change Detector,
// and the extraction façade.
type Indexer struct {
	Graph     graph.Graph
	Store     Backing
	Detector  changes.Detector
	Extractor Extractor
	Config    *config.Config
}

// New builds an Indexer from its collaborators.
func New(g graph.Graph, s Backing, detector changes.Detector, extractor Extractor, cfg *config.Config) *Indexer {
	return &Indexer{Graph: g, Store: s, Detector: detector, Extractor: extractor, Config: cfg}
}

// loadMetadata reads __metadata__, returning the zero Metadata (with an
// initialized FileHashes map) on a first run.
func (idx *Indexer) loadMetadata() (Metadata, error) {
	raw, ok, err := idx.Store.Get(MetadataKeyName)
	if err != nil {
		return Metadata{}, err
	}
	if !ok {
		return Metadata{FileHashes: make(map[string]uint64)}, nil
	}
	m, err := DecodeMetadata(raw)
	if err != nil {
		return Metadata{}, lsiferrors.NewSerializationError("decode", err)
	}
	if m.FileHashes == nil {
		m.FileHashes = make(map[string]uint64)
	}
	return m, nil
}

// MetadataKeyName is the reserved snapshot-metadata key.
const MetadataKeyName = "__metadata__"

// GraphKeyName is the reserved encoded-graph key.
const GraphKeyName = "graph"

// IndexFull rebuilds the graph from scratch: every tracked file is
// treated as added.
func (idx *Indexer) IndexFull(ctx context.Context, projectRoot string) (Result, error) {
	return idx.run(ctx, projectRoot, true)
}

// IndexDifferential detects changes since the previously persisted
// metadata (added/modified/deleted files), re-extracts only what
// changed, and reconciles the graph and snapshot accordingly.
func (idx *Indexer) IndexDifferential(ctx context.Context, projectRoot string) (Result, error) {
	return idx.run(ctx, projectRoot, false)
}

func (idx *Indexer) run(ctx context.Context, projectRoot string, full bool) (Result, error) {
	var result Result

	// 1. Load previous metadata (empty if first run, or forced empty for
	// a full rebuild).
	prevMeta, err := idx.loadMetadata()
	if err != nil {
		return result, err
	}
	priorHashes := prevMeta.FileHashes
	if full {
		priorHashes = make(map[string]uint64)
	}

	// 2. Run Change Detector.
	detected, err := idx.Detector.Detect(projectRoot, prevMeta.GitCommitHash, priorHashes)
	if err != nil {
		return result, err
	}

	// 3. Partition into added∪modified vs deleted vs renamed. A rename
	// clears the old path's resident symbols the same way a delete
	// does, then flows through extraction at the new path like an add.
	var toExtract []changes.Change
	var toDelete []changes.Change
	var renamedFrom []string
	for _, c := range detected {
		switch c.Status {
		case changes.Deleted:
			toDelete = append(toDelete, c)
		case changes.Renamed:
			renamedFrom = append(renamedFrom, c.RenamedFrom)
			toExtract = append(toExtract, c)
		default:
			toExtract = append(toExtract, c)
		}
	}

	// 4. Deletions (including a rename's old path) run sequentially to
	// avoid removal races on shared referents.
	for _, c := range toDelete {
		removed := idx.removeFileSymbols(c.Path)
		result.SymbolsDeleted += removed
		result.FilesDeleted++
	}
	for _, path := range renamedFrom {
		result.SymbolsDeleted += idx.removeFileSymbols(path)
	}

	// 5. Added/modified batches run in parallel at or above the
	// parallel threshold, sequentially below it.
	threshold := 50
	if idx.Config != nil {
		threshold = idx.Config.Performance.ParallelThreshold
	}

	extractResults, failed := idx.extractBatch(ctx, toExtract, threshold)
	result.FilesFailed = failed

	newHashes := make(map[string]uint64, len(priorHashes))
	for k, v := range priorHashes {
		newHashes[k] = v
	}
	for _, c := range toDelete {
		delete(newHashes, c.Path)
	}
	for _, path := range renamedFrom {
		delete(newHashes, path)
	}

	for _, er := range extractResults {
		added, updated := idx.applyFileExtraction(er.change.Path, er.result)
		result.SymbolsAdded += added
		result.SymbolsUpdated += updated
		switch er.change.Status {
		case changes.Added, changes.Untracked:
			result.FilesAdded++
		default:
			result.FilesModified++
		}
		if er.change.HasHash {
			newHashes[er.change.Path] = er.change.ContentHash
		}
	}

	// 6. Recompute reachability for dead-code detection.
	entryMode := "named-only"
	if idx.Config != nil {
		entryMode = idx.Config.FeatureFlags.DeadCodeEntryPoints
	}
	result.DeadSymbols = idx.deadCode(entryMode)

	// 7. Persist graph blob + fresh metadata, then flush.
	if err := idx.persist(projectRoot, newHashes, prevMeta.GitCommitHash); err != nil {
		return result, err
	}

	return result, nil
}

type extractionOutcome struct {
	change changes.Change
	result extract.Result
}

// extractBatch runs the extraction façade over every changed file,
// sequentially below threshold and via an errgroup-bounded worker pool
// at or above it.
func (idx *Indexer) extractBatch(ctx context.Context, batch []changes.Change, threshold int) ([]extractionOutcome, int) {
	outcomes := make([]extractionOutcome, len(batch))
	var failed int
	var failedMu sync.Mutex

	extractOne := func(i int) {
		c := batch[i]
		res, err := idx.Extractor.Extract(ctx, c.Path)
		if err != nil {
			log.Printf("indexer: extraction failed for %s: %v", c.Path, err)
			failedMu.Lock()
			failed++
			failedMu.Unlock()
			return
		}
		outcomes[i] = extractionOutcome{change: c, result: res}
	}

	if len(batch) < threshold {
		for i := range batch {
			extractOne(i)
		}
	} else {
		g, _ := errgroup.WithContext(ctx)
		if idx.Config != nil {
			g.SetLimit(idx.Config.ResolvedGoroutines())
		}
		for i := range batch {
			i := i
			g.Go(func() error {
				extractOne(i)
				return nil
			})
		}
		_ = g.Wait()
	}

	// Filter out the failed entries (left as their zero value) while
	// preserving outcome order for determinism.
	out := outcomes[:0]
	for _, o := range outcomes {
		if o.change.Path != "" {
			out = append(out, o)
		}
	}
	return out, failed
}

// removeFileSymbols deletes every resident symbol whose FilePath ==
// path, along with their incident edges (handled by Graph.RemoveSymbol
// per its invariant), and returns how many were removed.
func (idx *Indexer) removeFileSymbols(path string) int {
	removed := 0
	for _, s := range idx.Graph.AllSymbols() {
		if s.FilePath == path {
			idx.Graph.RemoveSymbol(s.ID)
			removed++
		}
	}
	return removed
}

// applyFileExtraction computes the set difference between the file's
// previously resident symbols and the freshly extracted ones: new ids
// insert, removed ids delete (and their incident edges), common ids
// update in place. Edges are added only after every symbol of this
// extraction is resident.
func (idx *Indexer) applyFileExtraction(path string, res extract.Result) (added, updated int) {
	previous := make(map[string]bool)
	for _, s := range idx.Graph.AllSymbols() {
		if s.FilePath == path {
			previous[s.ID] = true
		}
	}

	fresh := make(map[string]bool, len(res.Symbols))
	for _, s := range res.Symbols {
		fresh[s.ID] = true
		inserted := idx.Graph.AddSymbol(s)
		if inserted {
			added++
		} else {
			updated++
		}
	}

	for id := range previous {
		if !fresh[id] {
			idx.Graph.RemoveSymbol(id)
		}
	}

	for _, e := range res.Edges {
		if err := idx.Graph.AddEdge(e.From, e.To, e.Kind); err != nil {
			log.Printf("indexer: skipping edge %s->%s: %v", e.From, e.To, err)
		}
	}

	return added, updated
}

// persist writes the graph blob and fresh metadata, then flushes the
// store.
func (idx *Indexer) persist(projectRoot string, fileHashes map[string]uint64, gitCommit string) error {
	graphBytes := graphcodec.Encode(idx.Graph)
	if err := idx.Store.Put(GraphKeyName, graphBytes); err != nil {
		return err
	}

	stats := idx.Graph.Stats()
	meta := Metadata{
		Format:        FormatLSIFLike,
		Version:       CurrentVersion,
		CreatedAt:     NowMillis(),
		ProjectRoot:   projectRoot,
		FilesCount:    uint64(len(fileHashes)),
		SymbolsCount:  uint64(stats.NodeCount),
		GitCommitHash: gitCommit,
		FileHashes:    fileHashes,
	}
	if err := idx.Store.Put(MetadataKeyName, EncodeMetadata(meta)); err != nil {
		return err
	}

	return idx.Store.Flush()
}

// deadCode runs liveness analysis against this indexer's own graph.
func (idx *Indexer) deadCode(entryMode string) []string {
	return DeadCode(idx.Graph, entryMode)
}

// DeadCode starts from entry-point symbols and traverses Reference and
// Definition edges forward; anything unreached is reported dead.
// entryMode selects which symbols seed the reachable set ("any-public"
// or "named-only"). Exposed standalone so a command can read liveness
// without forcing a full re-index.
func DeadCode(g graph.Graph, entryMode string) []string {
	all := g.AllSymbols()
	reached := make(map[string]bool, len(all))
	var frontier []string

	for _, s := range all {
		if isEntryPoint(s, entryMode) {
			reached[s.ID] = true
			frontier = append(frontier, s.ID)
		}
	}

	refKind := graph.EdgeReference
	defKind := graph.EdgeDefinition
	for len(frontier) > 0 {
		id := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]

		for _, next := range append(g.Outgoing(id, &refKind), g.Outgoing(id, &defKind)...) {
			if !reached[next.ID] {
				reached[next.ID] = true
				frontier = append(frontier, next.ID)
			}
		}
	}

	var dead []string
	for _, s := range all {
		if !reached[s.ID] {
			dead = append(dead, s.ID)
		}
	}
	sort.Strings(dead)
	return dead
}

// isEntryPoint classifies a symbol as a liveness root: symbols named
// "main", exported-looking names (capitalized, in "any-public" mode),
// and test/bench functions.
func isEntryPoint(s graph.Symbol, entryMode string) bool {
	if s.Name == "main" {
		return true
	}
	if isTestOrBenchName(s.Name) {
		return true
	}
	if entryMode == "any-public" && isExportedLike(s.Name) {
		return true
	}
	return false
}

func isExportedLike(name string) bool {
	if name == "" {
		return false
	}
	c := name[0]
	return c >= 'A' && c <= 'Z'
}

func isTestOrBenchName(name string) bool {
	prefixes := []string{"Test", "Benchmark", "Example", "test_", "bench_"}
	for _, p := range prefixes {
		if len(name) >= len(p) && name[:len(p)] == p {
			return true
		}
	}
	return false
}
