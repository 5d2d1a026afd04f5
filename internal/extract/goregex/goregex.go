// Package goregex is the regular-expression fallback extraction strategy
// for Go source: a per-language heuristic strategy that runs alongside
// (or instead of) an LSP-backed one, using a line-scan with brace-depth
// tracking instead of a real AST.
//
// It never talks to a subprocess, so it does not use the extraction
// façade's AdaptiveTimeout/WithRetry plumbing — those exist for
// strategies that call out to an external language server.
package goregex

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mizchi/lsif-indexer/internal/extract"
	"github.com/mizchi/lsif-indexer/internal/graph"
	"github.com/mizchi/lsif-indexer/internal/symbolpool"
)

// Strategy extracts symbols and intra-file edges from .go files using
// line-oriented regular expressions, without parsing a real AST. It
// returns an empty Result (not an error) for any non-".go" file, so a
// Chain can place it last and fall through cleanly.
type Strategy struct {
	Root string
	pool *symbolpool.Pool
}

// NewStrategy builds a fallback strategy rooted at dir; filePath passed
// to Extract is resolved relative to it. A single symbol record pool is
// shared across every Extract call on this Strategy, since a large file
// can emit hundreds of short-lived records per scan.
func NewStrategy(root string) *Strategy {
	return &Strategy{Root: root, pool: symbolpool.New(256)}
}

// emit acquires a pooled record, fills it, copies it into the result
// slice, and returns it to the pool immediately — the graph layer stores
// symbols by value, so nothing outside this call retains the pointer.
func (s *Strategy) emit(result *extract.Result, sym graph.Symbol) {
	pooled := s.pool.Acquire(sym)
	result.Symbols = append(result.Symbols, *pooled.Symbol)
	s.pool.Release(pooled)
}

func (s *Strategy) Name() string { return "go-regex" }

// Priority places this strategy behind any LSP-backed strategy in a
// Chain, since it is the line-scan fallback, not the preferred source.
func (s *Strategy) Priority() int { return 100 }

// Supports reports whether filePath has a ".go" suffix.
func (s *Strategy) Supports(filePath string) bool {
	return strings.HasSuffix(filePath, ".go")
}

var (
	packagePattern = regexp.MustCompile(`^package\s+(\w+)`)
	typePattern    = regexp.MustCompile(`^type\s+(\w+)\s+(struct|interface)\s*\{\s*$`)
	fieldPattern   = regexp.MustCompile(`^\s+(\w+)\s+(\*?[\w.\[\]]+)`)
	methodSigPattern = regexp.MustCompile(`^\s+(\w+)\(([^)]*)\)\s*(.*)$`)
	funcPattern    = regexp.MustCompile(`^func\s+(?:\(\s*\w+\s+\*?(\w+)\s*\)\s+)?(\w+)\s*\(([^)]*)\)\s*([^{]*)\{?\s*$`)
	callPattern    = regexp.MustCompile(`(\w+)\s*\(`)
)

// Extract scans one file top to bottom, tracking the current top-level
// type/func block by brace depth, and emits:
//   - a KindPackage symbol for the file's package clause
//   - KindStruct/KindInterface symbols for top-level type declarations,
//     with KindField/KindMethod children joined by Contains edges
//   - KindFunction/KindMethod symbols for top-level func declarations
//   - Reference edges from a function to any other function/method
//     defined earlier in the same file that its body appears to call
//
// Cross-file references are intentionally not attempted here: a single
// regex pass over one file has no view of other files' symbol tables,
// so only intra-file calls are resolved.
func (s *Strategy) Extract(_ context.Context, filePath string) (extract.Result, error) {
	if !strings.HasSuffix(filePath, ".go") {
		return extract.Result{}, nil
	}

	raw, err := os.ReadFile(filepath.Join(s.Root, filePath))
	if err != nil {
		return extract.Result{}, err
	}
	lines := strings.Split(string(raw), "\n")

	var result extract.Result
	callables := make(map[string]string) // bare name -> canonical id, for intra-file call resolution

	i := 0
	for i < len(lines) {
		line := lines[i]

		if m := packagePattern.FindStringSubmatch(line); m != nil {
			id := graph.CanonicalID(filePath, uint32(i), m[1])
			s.emit(&result, graph.Symbol{
				ID: id, Kind: graph.KindPackage, Name: m[1], FilePath: filePath,
				Range: lineRange(i),
			})
			i++
			continue
		}

		if m := typePattern.FindStringSubmatch(line); m != nil {
			typeName, kindWord := m[1], m[2]
			kind := graph.KindStruct
			if kindWord == "interface" {
				kind = graph.KindInterface
			}
			typeID := graph.CanonicalID(filePath, uint32(i), typeName)
			s.emit(&result, graph.Symbol{
				ID: typeID, Kind: kind, Name: typeName, FilePath: filePath,
				Detail: kindWord + " " + typeName, Range: lineRange(i),
			})

			end := i + 1
			for end < len(lines) && strings.TrimSpace(lines[end]) != "}" {
				bodyLine := lines[end]
				switch kind {
				case graph.KindInterface:
					if mm := methodSigPattern.FindStringSubmatch(bodyLine); mm != nil {
						methodID := graph.CanonicalID(filePath, uint32(end), typeName+"."+mm[1])
						s.emit(&result, graph.Symbol{
							ID: methodID, Kind: graph.KindMethod, Name: mm[1], FilePath: filePath,
							Detail: "func " + mm[1] + "(" + mm[2] + ") -> " + strings.TrimSpace(mm[3]),
							Range:  lineRange(end),
						})
						result.Edges = append(result.Edges, graph.Edge{From: typeID, To: methodID, Kind: graph.EdgeContains})
					}
				default:
					if mm := fieldPattern.FindStringSubmatch(bodyLine); mm != nil {
						fieldID := graph.CanonicalID(filePath, uint32(end), typeName+"."+mm[1])
						s.emit(&result, graph.Symbol{
							ID: fieldID, Kind: graph.KindField, Name: mm[1], FilePath: filePath,
							Detail: mm[2], Range: lineRange(end),
						})
						result.Edges = append(result.Edges, graph.Edge{From: typeID, To: fieldID, Kind: graph.EdgeContains})
					}
				}
				end++
			}
			i = end + 1
			continue
		}

		if m := funcPattern.FindStringSubmatch(line); m != nil {
			receiver, name, params, ret := m[1], m[2], m[3], strings.TrimSpace(m[4])
			qualified := name
			kind := graph.KindFunction
			if receiver != "" {
				qualified = receiver + "." + name
				kind = graph.KindMethod
			}
			detail := "func " + name + "(" + params + ")"
			if ret != "" {
				detail += " -> " + ret
			}
			funcID := graph.CanonicalID(filePath, uint32(i), qualified)
			s.emit(&result, graph.Symbol{
				ID: funcID, Kind: kind, Name: name, FilePath: filePath,
				Detail: detail, Range: lineRange(i),
			})
			callables[name] = funcID

			bodyStart := i + 1
			bodyEnd := matchingBrace(lines, i)
			for _, call := range callsIn(lines[bodyStart:bodyEnd]) {
				if calleeID, ok := callables[call]; ok && calleeID != funcID {
					result.Edges = append(result.Edges, graph.Edge{From: funcID, To: calleeID, Kind: graph.EdgeReference})
				}
			}
			i = bodyEnd + 1
			continue
		}

		i++
	}

	return result, nil
}

// matchingBrace returns the index of the line closing the brace opened
// on openLine ("func ... {"), by counting brace depth; it returns the
// file's last line index if the function body is never closed (a
// malformed or truncated file).
func matchingBrace(lines []string, openLine int) int {
	depth := strings.Count(lines[openLine], "{") - strings.Count(lines[openLine], "}")
	for i := openLine + 1; i < len(lines); i++ {
		depth += strings.Count(lines[i], "{") - strings.Count(lines[i], "}")
		if depth <= 0 {
			return i
		}
	}
	return len(lines) - 1
}

// callsIn collects the bare identifiers immediately followed by "(" across
// a function body, deduplicated, in first-seen order.
func callsIn(bodyLines []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, line := range bodyLines {
		for _, m := range callPattern.FindAllStringSubmatch(line, -1) {
			name := m[1]
			if seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

func lineRange(line int) graph.Range {
	return graph.Range{
		Start: graph.Position{Line: uint32(line)},
		End:   graph.Position{Line: uint32(line) + 1},
	}
}
