// Package callhier implements incoming and outgoing caller/callee trees
// and all-simple-paths enumeration, walking only Reference edges.
//
// Incoming/Outgoing reuse graph.Traverse's BFS walk (same per-call
// visited set and depth-bound clamp); Paths adds a depth-first
// all-paths enumerator on top.
package callhier

import (
	"github.com/mizchi/lsif-indexer/internal/graph"
)

// Incoming returns every symbol that (transitively, within maxDepth
// Reference edges) calls id: the caller tree. The returned error is
// non-nil only when the walk was clamped by graph.SafetyDepthCeiling;
// hits are still usable alongside it.
func Incoming(g graph.Graph, id string, maxDepth int) ([]graph.TraversalHit, error) {
	kind := graph.EdgeReference
	return graph.Traverse(g, id, graph.TraverseOptions{
		Direction: graph.DirBackward,
		Kind:      &kind,
		MinDepth:  1,
		MaxDepth:  maxDepth,
	})
}

// Outgoing returns every symbol that id (transitively, within maxDepth
// Reference edges) calls: the callee tree. The returned error is
// non-nil only when the walk was clamped by graph.SafetyDepthCeiling;
// hits are still usable alongside it.
func Outgoing(g graph.Graph, id string, maxDepth int) ([]graph.TraversalHit, error) {
	kind := graph.EdgeReference
	return graph.Traverse(g, id, graph.TraverseOptions{
		Direction: graph.DirForward,
		Kind:      &kind,
		MinDepth:  1,
		MaxDepth:  maxDepth,
	})
}

// Paths enumerates every simple path (no repeated symbol) from from to
// to along Reference edges, up to maxDepth edges. A per-path
// visited set prevents exponential blowup on mutual recursion: a symbol
// already on the current path is never revisited.
func Paths(g graph.Graph, from, to string, maxDepth int) [][]string {
	if maxDepth <= 0 || maxDepth > graph.SafetyDepthCeiling {
		maxDepth = graph.SafetyDepthCeiling
	}
	if _, ok := g.FindSymbol(from); !ok {
		return nil
	}
	if _, ok := g.FindSymbol(to); !ok {
		return nil
	}

	refKind := graph.EdgeReference
	var results [][]string
	visited := map[string]bool{from: true}
	walk(g, from, to, maxDepth, &refKind, []string{from}, visited, &results)
	return results
}

func walk(g graph.Graph, current, to string, remaining int, kind *graph.EdgeKind, path []string, visited map[string]bool, results *[][]string) {
	if current == to {
		found := make([]string, len(path))
		copy(found, path)
		*results = append(*results, found)
		return
	}
	if remaining == 0 {
		return
	}

	for _, n := range g.Outgoing(current, kind) {
		if visited[n.ID] {
			continue
		}
		visited[n.ID] = true
		walk(g, n.ID, to, remaining-1, kind, append(path, n.ID), visited, results)
		delete(visited, n.ID)
	}
}
