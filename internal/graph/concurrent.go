package graph

import (
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/mizchi/lsif-indexer/internal/intern"
)

// concurrentShardCount is the fixed shard-by-hash fan-out for the node map.
const concurrentShardCount = 16

type nodeShard struct {
	mu      sync.RWMutex
	symbols map[string]Symbol
}

// ConcurrentGraph is the default variant: a sharded node map for
// fine-grained write locking, plus one RWMutex-guarded adjacency map for
// edges. Reads and writes may run concurrently across shards; within a
// shard, writes are serialized.
type ConcurrentGraph struct {
	shards [concurrentShardCount]*nodeShard

	edgeMu   sync.RWMutex
	outEdges map[string][]Edge
	inEdges  map[string][]Edge
}

func newConcurrentGraph() *ConcurrentGraph {
	g := &ConcurrentGraph{
		outEdges: make(map[string][]Edge),
		inEdges:  make(map[string][]Edge),
	}
	for i := range g.shards {
		g.shards[i] = &nodeShard{symbols: make(map[string]Symbol)}
	}
	return g
}

func shardIndex(id string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return int(h.Sum32() % concurrentShardCount)
}

func (g *ConcurrentGraph) shardFor(id string) *nodeShard {
	return g.shards[shardIndex(id)]
}

// filePaths interns every symbol's FilePath, since a file with N symbols
// would otherwise carry N separate copies of the same path string.
var filePaths = intern.New()

func (g *ConcurrentGraph) AddSymbol(s Symbol) bool {
	s.FilePath, _ = filePaths.Resolve(filePaths.Intern(s.FilePath))

	sh := g.shardFor(s.ID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	_, existed := sh.symbols[s.ID]
	sh.symbols[s.ID] = s
	return !existed
}

func (g *ConcurrentGraph) AddEdge(from, to string, kind EdgeKind) error {
	if _, ok := g.FindSymbol(from); !ok {
		return fmt.Errorf("graph: add edge: unknown source symbol %q", from)
	}
	if _, ok := g.FindSymbol(to); !ok {
		return fmt.Errorf("graph: add edge: unknown target symbol %q", to)
	}

	e := Edge{From: from, To: to, Kind: kind}
	g.edgeMu.Lock()
	defer g.edgeMu.Unlock()
	g.outEdges[from] = append(g.outEdges[from], e)
	g.inEdges[to] = append(g.inEdges[to], e)
	return nil
}

func (g *ConcurrentGraph) RemoveSymbol(id string) {
	sh := g.shardFor(id)
	sh.mu.Lock()
	delete(sh.symbols, id)
	sh.mu.Unlock()

	g.edgeMu.Lock()
	defer g.edgeMu.Unlock()

	for _, e := range g.outEdges[id] {
		g.inEdges[e.To] = removeEdge(g.inEdges[e.To], e)
	}
	for _, e := range g.inEdges[id] {
		g.outEdges[e.From] = removeEdge(g.outEdges[e.From], e)
	}
	delete(g.outEdges, id)
	delete(g.inEdges, id)
}

func removeEdge(edges []Edge, target Edge) []Edge {
	out := edges[:0]
	for _, e := range edges {
		if e != target {
			out = append(out, e)
		}
	}
	return out
}

func (g *ConcurrentGraph) FindSymbol(id string) (Symbol, bool) {
	sh := g.shardFor(id)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	s, ok := sh.symbols[id]
	return s, ok
}

func (g *ConcurrentGraph) resolveSymbols(ids []string) []Symbol {
	out := make([]Symbol, 0, len(ids))
	for _, id := range ids {
		if s, ok := g.FindSymbol(id); ok {
			out = append(out, s)
		}
	}
	return out
}

func (g *ConcurrentGraph) FindReferences(id string) []Symbol {
	return g.Incoming(id, edgeKindPtr(EdgeReference))
}

func (g *ConcurrentGraph) FindDefinition(id string) (Symbol, bool) {
	defs := g.Incoming(id, edgeKindPtr(EdgeDefinition))
	if len(defs) == 0 {
		return Symbol{}, false
	}
	return defs[0], true
}

func (g *ConcurrentGraph) FindImplementations(id string) []Symbol {
	return g.Incoming(id, edgeKindPtr(EdgeImplementation))
}

func (g *ConcurrentGraph) Incoming(id string, kind *EdgeKind) []Symbol {
	g.edgeMu.RLock()
	edges := g.inEdges[id]
	ids := make([]string, 0, len(edges))
	for _, e := range edges {
		if kind == nil || e.Kind == *kind {
			ids = append(ids, e.From)
		}
	}
	g.edgeMu.RUnlock()
	return g.resolveSymbols(ids)
}

func (g *ConcurrentGraph) Outgoing(id string, kind *EdgeKind) []Symbol {
	g.edgeMu.RLock()
	edges := g.outEdges[id]
	ids := make([]string, 0, len(edges))
	for _, e := range edges {
		if kind == nil || e.Kind == *kind {
			ids = append(ids, e.To)
		}
	}
	g.edgeMu.RUnlock()
	return g.resolveSymbols(ids)
}

func (g *ConcurrentGraph) AllSymbols() []Symbol {
	var out []Symbol
	for _, sh := range g.shards {
		sh.mu.RLock()
		for _, s := range sh.symbols {
			out = append(out, s)
		}
		sh.mu.RUnlock()
	}
	return out
}

func (g *ConcurrentGraph) AllEdges() []Edge {
	g.edgeMu.RLock()
	defer g.edgeMu.RUnlock()
	var out []Edge
	for _, edges := range g.outEdges {
		out = append(out, edges...)
	}
	return out
}

func (g *ConcurrentGraph) Stats() Stats {
	stats := Stats{
		NodesByKind: make(map[SymbolKind]int),
		EdgesByKind: make(map[EdgeKind]int),
	}
	for _, sh := range g.shards {
		sh.mu.RLock()
		for _, s := range sh.symbols {
			stats.NodeCount++
			stats.NodesByKind[s.Kind]++
		}
		sh.mu.RUnlock()
	}
	g.edgeMu.RLock()
	for _, edges := range g.outEdges {
		for _, e := range edges {
			stats.EdgeCount++
			stats.EdgesByKind[e.Kind]++
		}
	}
	g.edgeMu.RUnlock()
	return stats
}

func edgeKindPtr(k EdgeKind) *EdgeKind { return &k }
