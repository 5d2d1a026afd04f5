// Package typefilter implements composable predicates over a candidate
// symbol stream, matched against a symbol's Detail string (the
// extraction façade's rendering of a signature) and its Implementation
// edges: small, independently testable string predicates that compose
// with And/Or.
package typefilter

import (
	"regexp"
	"strings"

	"github.com/mizchi/lsif-indexer/internal/graph"
)

// Predicate decides whether a symbol, in the context of g, satisfies a
// type constraint.
type Predicate func(g graph.Graph, s graph.Symbol) bool

// And composes predicates so every one must hold.
func And(preds ...Predicate) Predicate {
	return func(g graph.Graph, s graph.Symbol) bool {
		for _, p := range preds {
			if !p(g, s) {
				return false
			}
		}
		return true
	}
}

// Or composes predicates so at least one must hold.
func Or(preds ...Predicate) Predicate {
	return func(g graph.Graph, s graph.Symbol) bool {
		for _, p := range preds {
			if p(g, s) {
				return true
			}
		}
		return false
	}
}

// Apply filters symbols to those satisfying pred.
func Apply(g graph.Graph, symbols []graph.Symbol, pred Predicate) []graph.Symbol {
	var out []graph.Symbol
	for _, s := range symbols {
		if pred(g, s) {
			out = append(out, s)
		}
	}
	return out
}

var returnArrowPattern = regexp.MustCompile(`->\s*([A-Za-z_][\w.\[\]]*)`)

// Returns matches symbols whose detail declares a return type containing
// T, parsed from a trailing "-> T" (or language equivalent written the
// same way).
func Returns(t string) Predicate {
	return func(_ graph.Graph, s graph.Symbol) bool {
		m := returnArrowPattern.FindStringSubmatch(s.Detail)
		if m == nil {
			return false
		}
		return strings.Contains(m[1], t)
	}
}

var paramListPattern = regexp.MustCompile(`\(([^)]*)\)`)

// Takes matches symbols whose parenthesized parameter list contains T.
func Takes(t string) Predicate {
	return func(_ graph.Graph, s graph.Symbol) bool {
		m := paramListPattern.FindStringSubmatch(s.Detail)
		if m == nil {
			return false
		}
		return strings.Contains(m[1], t)
	}
}

var implementsPhrases = []string{"impl ", ": ", "extends ", "implements "}

// Implements matches symbols whose detail names T after an impl/extends/
// implements/": " keyword, or that carry an Implementation edge to a
// symbol named T.
func Implements(t string) Predicate {
	return func(g graph.Graph, s graph.Symbol) bool {
		for _, phrase := range implementsPhrases {
			if idx := strings.Index(s.Detail, phrase); idx >= 0 {
				rest := s.Detail[idx+len(phrase):]
				if strings.Contains(rest, t) {
					return true
				}
			}
		}
		for _, target := range g.Outgoing(s.ID, edgeKindPtr(graph.EdgeImplementation)) {
			if target.Name == t {
				return true
			}
		}
		return false
	}
}

// HasField matches symbols with a Contains-edge child (field/property)
// whose detail contains T.
func HasField(t string) Predicate {
	return func(g graph.Graph, s graph.Symbol) bool {
		for _, child := range g.Outgoing(s.ID, edgeKindPtr(graph.EdgeContains)) {
			if child.Kind != graph.KindField && child.Kind != graph.KindProperty {
				continue
			}
			if strings.Contains(child.Detail, t) {
				return true
			}
		}
		return false
	}
}

// Signature matches symbols whose detail satisfies the given regular
// expression.
func Signature(pattern string) (Predicate, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return func(_ graph.Graph, s graph.Symbol) bool {
		return re.MatchString(s.Detail)
	}, nil
}

func edgeKindPtr(k graph.EdgeKind) *graph.EdgeKind { return &k }
