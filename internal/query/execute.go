package query

import (
	"sort"
	"strings"

	"github.com/mizchi/lsif-indexer/internal/graph"
	"github.com/mizchi/lsif-indexer/internal/lsiferrors"
)

// Match is one satisfying assignment of the pattern's named nodes, along
// with every distinct path through the graph that produced it.
type Match struct {
	Bindings map[string]graph.Symbol
	Paths    [][]graph.Symbol
}

// walkState tracks one in-progress branch during the depth-first search:
// nodePath holds exactly one symbol per matched pattern node (used for
// bindings), while fullPath holds every hop including intermediate edges
// traversed by variable-depth relationships (used for the reported path).
type walkState struct {
	nodePath []graph.Symbol
	fullPath []graph.Symbol
	visited  map[string]bool
}

// Execute runs pattern against g: find candidate starts matching the
// first node, then depth-first extend along each relationship, verifying
// the next node pattern at every step.
//
// The returned error is a *lsiferrors.CycleExceededError when any
// relationship's walk was clamped by graph.SafetyDepthCeiling with
// nodes left unexplored beyond it; matches are still returned alongside
// the error, just possibly incomplete past that ceiling.
func Execute(g graph.Graph, pat *Pattern) ([]Match, error) {
	if len(pat.Nodes) == 0 {
		return nil, nil
	}

	var complete []walkState
	clampedAny := false
	for _, s := range g.AllSymbols() {
		if !matchesNode(s, pat.Nodes[0]) {
			continue
		}
		start := walkState{
			nodePath: []graph.Symbol{s},
			fullPath: []graph.Symbol{s},
			visited:  map[string]bool{s.ID: true},
		}
		sub, clamped := extend(g, pat, 0, start)
		if clamped {
			clampedAny = true
		}
		complete = append(complete, sub...)
	}

	matches := groupByBindings(pat, complete)
	if clampedAny {
		return matches, &lsiferrors.CycleExceededError{MaxDepth: graph.SafetyDepthCeiling}
	}
	return matches, nil
}

// extend depth-first-extends state (which already satisfies
// pat.Nodes[:relIdx+1]) through pat.Rels[relIdx] and onward, returning
// every completed walk that satisfies the whole pattern and whether any
// relationship along the way was clamped by the safety depth ceiling.
func extend(g graph.Graph, pat *Pattern, relIdx int, state walkState) ([]walkState, bool) {
	if relIdx >= len(pat.Rels) {
		return []walkState{state}, false
	}

	rel := pat.Rels[relIdx]
	targetNode := pat.Nodes[relIdx+1]
	current := state.nodePath[len(state.nodePath)-1]

	hits, clamped := reachableWithinDepth(g, current.ID, rel, state.visited)
	clampedAny := clamped

	var results []walkState
	for _, hit := range hits {
		if !matchesNode(hit.symbol, targetNode) {
			continue
		}

		next := walkState{
			nodePath: append(append([]graph.Symbol{}, state.nodePath...), hit.symbol),
			fullPath: append(append([]graph.Symbol{}, state.fullPath...), hit.hops...),
			visited:  make(map[string]bool, len(state.visited)+len(hit.hops)),
		}
		for k := range state.visited {
			next.visited[k] = true
		}
		for _, s := range hit.hops {
			next.visited[s.ID] = true
		}

		sub, subClamped := extend(g, pat, relIdx+1, next)
		if subClamped {
			clampedAny = true
		}
		results = append(results, sub...)
	}
	return results, clampedAny
}

// reachHit is one symbol reached by reachableWithinDepth, together with
// every intermediate hop (including itself) needed to extend a full path.
type reachHit struct {
	symbol graph.Symbol
	hops   []graph.Symbol
}

// reachableWithinDepth finds every symbol reachable from start via rel,
// within [rel.MinDepth, rel.MaxDepth] edges, pruning cycles against
// alreadyVisited (so a relationship never loops back through a node
// already bound earlier in the path).
//
// A relationship pinned to exactly zero depth (parsed from "*0" or
// "*0..0") matches the start node itself, with no edge walked at all;
// that case is handled here directly rather than folded into the
// depth-1 frontier loop below, which can never produce a zero-hop
// match. The bool result reports whether the walk was clamped by
// graph.SafetyDepthCeiling with nodes still unexplored beyond it.
func reachableWithinDepth(g graph.Graph, start string, rel RelPattern, alreadyVisited map[string]bool) ([]reachHit, bool) {
	if rel.MinDepth == 0 && rel.MaxDepth == 0 {
		if sym, ok := g.FindSymbol(start); ok {
			return []reachHit{{symbol: sym}}, false
		}
		return nil, false
	}

	maxDepth := rel.MaxDepth
	if maxDepth <= 0 || maxDepth > graph.SafetyDepthCeiling {
		maxDepth = graph.SafetyDepthCeiling
	}
	atCeiling := maxDepth == graph.SafetyDepthCeiling
	minDepth := rel.MinDepth
	if minDepth < 1 {
		minDepth = 1
	}

	type frame struct {
		id   string
		hops []graph.Symbol
	}

	localVisited := make(map[string]bool, len(alreadyVisited)+1)
	for k := range alreadyVisited {
		localVisited[k] = true
	}
	localVisited[start] = true

	var hits []reachHit
	frontier := []frame{{id: start}}
	for depth := 1; depth <= maxDepth && len(frontier) > 0; depth++ {
		var next []frame
		for _, fr := range frontier {
			for _, n := range neighborsFor(g, fr.id, rel.Dir, rel.Kind) {
				if localVisited[n.ID] {
					continue
				}
				hops := append(append([]graph.Symbol{}, fr.hops...), n)
				if depth >= minDepth {
					hits = append(hits, reachHit{symbol: n, hops: hops})
				}
				next = append(next, frame{id: n.ID, hops: hops})
			}
		}
		frontier = next
	}

	truncated := false
outer:
	for _, fr := range frontier {
		for _, n := range neighborsFor(g, fr.id, rel.Dir, rel.Kind) {
			if !localVisited[n.ID] {
				truncated = true
				break outer
			}
		}
	}
	return hits, atCeiling && truncated
}

func neighborsFor(g graph.Graph, id string, dir graph.Direction, kind *graph.EdgeKind) []graph.Symbol {
	switch dir {
	case graph.DirForward:
		return g.Outgoing(id, kind)
	case graph.DirBackward:
		return g.Incoming(id, kind)
	default:
		out := g.Outgoing(id, kind)
		in := g.Incoming(id, kind)
		return append(append([]graph.Symbol{}, out...), in...)
	}
}

// matchesNode checks a symbol against a node pattern's label and
// properties. Props match against a small set of known symbol fields;
// the property set is open-ended, so an unrecognized key fails closed
// rather than silently passing.
func matchesNode(s graph.Symbol, pat NodePattern) bool {
	if pat.Label != "" && !strings.EqualFold(s.Kind.String(), pat.Label) {
		return false
	}
	for key, val := range pat.Props {
		switch key {
		case "name":
			if s.Name != val {
				return false
			}
		case "detail":
			if !strings.Contains(s.Detail, val) {
				return false
			}
		case "file":
			if s.FilePath != val {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// groupByBindings collapses completed walks into Match entries, merging
// walks that bind every named node to the same symbols.
func groupByBindings(pat *Pattern, walks []walkState) []Match {
	type entry struct {
		bindings map[string]graph.Symbol
		paths    [][]graph.Symbol
	}
	byKey := make(map[string]*entry)
	var order []string

	for _, w := range walks {
		bindings := make(map[string]graph.Symbol)
		for i, node := range pat.Nodes {
			if node.Var == "" {
				continue
			}
			bindings[node.Var] = w.nodePath[i]
		}
		key := bindingsKey(bindings)
		e, ok := byKey[key]
		if !ok {
			e = &entry{bindings: bindings}
			byKey[key] = e
			order = append(order, key)
		}
		e.paths = append(e.paths, w.fullPath)
	}

	sort.Strings(order)
	matches := make([]Match, 0, len(order))
	for _, key := range order {
		e := byKey[key]
		matches = append(matches, Match{Bindings: e.bindings, Paths: e.paths})
	}
	return matches
}

func bindingsKey(bindings map[string]graph.Symbol) string {
	vars := make([]string, 0, len(bindings))
	for v := range bindings {
		vars = append(vars, v)
	}
	sort.Strings(vars)
	var sb strings.Builder
	for _, v := range vars {
		sb.WriteString(v)
		sb.WriteByte('=')
		sb.WriteString(bindings[v].ID)
		sb.WriteByte(';')
	}
	return sb.String()
}
