package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mizchi/lsif-indexer/internal/graph"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// location is the shared shape every output format renders from: a
// symbol plus an optional human-facing annotation (e.g. a relationship
// label or a match score).
type location struct {
	Symbol graph.Symbol
	Note   string
}

func locationsOf(symbols []graph.Symbol) []location {
	out := make([]location, len(symbols))
	for i, s := range symbols {
		out[i] = location{Symbol: s}
	}
	return out
}

var kindGlyph = map[graph.SymbolKind]string{
	graph.KindFunction:  "🔹",
	graph.KindMethod:    "🔸",
	graph.KindStruct:    "🏷",
	graph.KindClass:     "🏷",
	graph.KindInterface: "🧩",
	graph.KindField:     "·",
	graph.KindProperty:  "·",
	graph.KindPackage:   "📦",
	graph.KindVariable:  "-",
	graph.KindConstant:  "=",
}

func glyphFor(k graph.SymbolKind) string {
	if g, ok := kindGlyph[k]; ok {
		return g
	}
	return "•"
}

// formatLocations renders locs in one of the supported output formats:
// human (glyphs), vim-quickfix, grep, lsp-json, json, tsv, nul.
// Unrecognized formats return an error.
func formatLocations(format string, locs []location) (string, error) {
	switch format {
	case "vim-quickfix":
		var sb strings.Builder
		for _, l := range locs {
			fmt.Fprintf(&sb, "%s:%d:%d: %s\n", l.Symbol.FilePath, l.Symbol.Range.Start.Line+1, l.Symbol.Range.Start.Character+1, label(l))
		}
		return sb.String(), nil
	case "grep":
		var sb strings.Builder
		for _, l := range locs {
			fmt.Fprintf(&sb, "%s:%d:%d:%s\n", l.Symbol.FilePath, l.Symbol.Range.Start.Line+1, l.Symbol.Range.Start.Character+1, label(l))
		}
		return sb.String(), nil
	case "tsv":
		var sb strings.Builder
		for _, l := range locs {
			fmt.Fprintf(&sb, "%s\t%d\t%d\t%s\n", l.Symbol.FilePath, l.Symbol.Range.Start.Line+1, l.Symbol.Range.Start.Character+1, label(l))
		}
		return sb.String(), nil
	case "nul":
		records := make([]string, len(locs))
		for i, l := range locs {
			records[i] = fmt.Sprintf("%s:%d:%d:%s", l.Symbol.FilePath, l.Symbol.Range.Start.Line+1, l.Symbol.Range.Start.Character+1, label(l))
		}
		return strings.Join(records, "\x00"), nil
	case "lsp-json":
		type lspPosition struct {
			Line      uint32 `json:"line"`
			Character uint32 `json:"character"`
		}
		type lspRange struct {
			Start lspPosition `json:"start"`
			End   lspPosition `json:"end"`
		}
		type lspLocation struct {
			URI   string   `json:"uri"`
			Range lspRange `json:"range"`
		}
		out := make([]lspLocation, len(locs))
		for i, l := range locs {
			out[i] = lspLocation{
				URI: "file://" + l.Symbol.FilePath,
				Range: lspRange{
					Start: lspPosition{Line: l.Symbol.Range.Start.Line, Character: l.Symbol.Range.Start.Character},
					End:   lspPosition{Line: l.Symbol.Range.End.Line, Character: l.Symbol.Range.End.Character},
				},
			}
		}
		b, err := json.MarshalIndent(out, "", "  ")
		return string(b), err
	case "json":
		type jsonSymbol struct {
			ID       string `json:"id"`
			Kind     string `json:"kind"`
			Name     string `json:"name"`
			FilePath string `json:"file_path"`
			Line     uint32 `json:"line"`
			Detail   string `json:"detail,omitempty"`
			Note     string `json:"note,omitempty"`
		}
		out := make([]jsonSymbol, len(locs))
		for i, l := range locs {
			out[i] = jsonSymbol{
				ID: l.Symbol.ID, Kind: l.Symbol.Kind.String(), Name: l.Symbol.Name,
				FilePath: l.Symbol.FilePath, Line: l.Symbol.Range.Start.Line + 1,
				Detail: l.Symbol.Detail, Note: l.Note,
			}
		}
		b, err := json.MarshalIndent(out, "", "  ")
		return string(b), err
	case "", "human":
		var sb strings.Builder
		for _, l := range locs {
			fmt.Fprintf(&sb, "%s %s:%d %s\n", glyphFor(l.Symbol.Kind), l.Symbol.FilePath, l.Symbol.Range.Start.Line+1, label(l))
		}
		return sb.String(), nil
	default:
		return "", fmt.Errorf("unknown output format %q", format)
	}
}

func label(l location) string {
	if l.Note != "" {
		return fmt.Sprintf("%s (%s)", l.Symbol.Name, l.Note)
	}
	if l.Symbol.Detail != "" {
		return l.Symbol.Detail
	}
	return l.Symbol.Name
}
