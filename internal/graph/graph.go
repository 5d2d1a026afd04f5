package graph

// Mode selects which concurrency variant NewGraph builds. All three
// variants implement the identical Graph contract below — the semantic
// contract is never variant-specific.
type Mode uint8

const (
	// ModeConcurrentMap is the default: fine-grained sharded locking,
	// tuned for mixed read/write workloads.
	ModeConcurrentMap Mode = iota
	// ModeBasic is single-writer-then-shared-reader, for bulk load
	// followed by read-only queries.
	ModeBasic
	// ModeLockFree swaps an immutable snapshot atomically for readers;
	// writers batch their changes into a new snapshot. Exposed only
	// behind explicit opt-in.
	ModeLockFree
)

// add_symbol is idempotent-overwrite: a second AddSymbol with the same ID
// replaces the stored fields of the existing symbol in place; it never
// rejects and never creates a second node.

// Direction constrains a neighbor query or traversal to one edge
// direction.
type Direction uint8

const (
	DirForward Direction = iota
	DirBackward
	DirBoth
)

// Graph is the common contract implemented by all three concurrency
// variants.
type Graph interface {
	// AddSymbol inserts s, or overwrites the existing symbol sharing s.ID
	// (idempotent-overwrite). Returns whether this was a fresh insert
	// (false means an existing symbol was overwritten).
	AddSymbol(s Symbol) (inserted bool)

	// AddEdge inserts a Kind-typed edge from->to. Returns an error if
	// either endpoint is not a resident symbol.
	AddEdge(from, to string, kind EdgeKind) error

	// RemoveSymbol deletes the symbol and every edge incident to it.
	// No-op if id is absent.
	RemoveSymbol(id string)

	// FindSymbol looks up a symbol by id.
	FindSymbol(id string) (Symbol, bool)

	// FindReferences returns every symbol X such that X --Reference--> id.
	FindReferences(id string) []Symbol

	// FindDefinition returns the first symbol X such that
	// X --Definition--> id, if any.
	FindDefinition(id string) (Symbol, bool)

	// FindImplementations returns every symbol X such that
	// X --Implementation--> id.
	FindImplementations(id string) []Symbol

	// Incoming returns neighbors with an edge pointing at id, optionally
	// filtered to one EdgeKind.
	Incoming(id string, kind *EdgeKind) []Symbol

	// Outgoing returns neighbors id points at, optionally filtered to one
	// EdgeKind.
	Outgoing(id string, kind *EdgeKind) []Symbol

	// AllSymbols returns every resident symbol. Used by serialization and
	// full-rebuild paths; callers should not assume any particular order.
	AllSymbols() []Symbol

	// AllEdges returns every resident edge.
	AllEdges() []Edge

	// Stats reports node/edge counts, broken down by kind, for
	// diagnostics and black-box testing.
	Stats() Stats
}

// Stats summarizes graph population.
type Stats struct {
	NodeCount   int
	EdgeCount   int
	NodesByKind map[SymbolKind]int
	EdgesByKind map[EdgeKind]int
}

// NewGraph builds a Graph using the requested concurrency variant.
func NewGraph(mode Mode) Graph {
	switch mode {
	case ModeBasic:
		return newBasicGraph()
	case ModeLockFree:
		return newLockFreeGraph()
	default:
		return newConcurrentGraph()
	}
}
