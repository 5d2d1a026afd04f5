package graphcodec

import (
	"encoding/json"

	"github.com/mizchi/lsif-indexer/internal/graph"
)

// jsonSymbol and jsonEdge give the debugging mirror stable, readable field
// names independent of graph.Symbol's in-memory layout.
type jsonSymbol struct {
	ID            string `json:"id"`
	Kind          string `json:"kind"`
	Name          string `json:"name"`
	FilePath      string `json:"file_path"`
	StartLine     uint32 `json:"start_line"`
	StartChar     uint32 `json:"start_character"`
	EndLine       uint32 `json:"end_line"`
	EndChar       uint32 `json:"end_character"`
	Documentation string `json:"documentation,omitempty"`
	Detail        string `json:"detail,omitempty"`
}

type jsonEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Kind string `json:"kind"`
}

type jsonGraph struct {
	Symbols []jsonSymbol `json:"symbols"`
	Edges   []jsonEdge   `json:"edges"`
}

// EncodeJSON renders g as the human-readable JSON mirror, for debugging
// only — the compact binary envelope (Encode) is the persisted form.
func EncodeJSON(g graph.Graph) ([]byte, error) {
	doc := jsonGraph{}
	for _, s := range g.AllSymbols() {
		doc.Symbols = append(doc.Symbols, jsonSymbol{
			ID:            s.ID,
			Kind:          s.Kind.String(),
			Name:          s.Name,
			FilePath:      s.FilePath,
			StartLine:     s.Range.Start.Line,
			StartChar:     s.Range.Start.Character,
			EndLine:       s.Range.End.Line,
			EndChar:       s.Range.End.Character,
			Documentation: s.Documentation,
			Detail:        s.Detail,
		})
	}
	for _, e := range g.AllEdges() {
		doc.Edges = append(doc.Edges, jsonEdge{From: e.From, To: e.To, Kind: e.Kind.String()})
	}
	return json.MarshalIndent(doc, "", "  ")
}

// DecodeJSON parses the JSON mirror back into a DecodeResult, applying the
// same unknown-edge-kind tolerance as Decode.
func DecodeJSON(data []byte) (DecodeResult, error) {
	var doc jsonGraph
	if err := json.Unmarshal(data, &doc); err != nil {
		return DecodeResult{}, err
	}

	var result DecodeResult
	for _, s := range doc.Symbols {
		kind := parseSymbolKind(s.Kind)
		result.Symbols = append(result.Symbols, graph.Symbol{
			ID:            s.ID,
			Kind:          kind,
			Name:          s.Name,
			FilePath:      s.FilePath,
			Range: graph.Range{
				Start: graph.Position{Line: s.StartLine, Character: s.StartChar},
				End:   graph.Position{Line: s.EndLine, Character: s.EndChar},
			},
			Documentation: s.Documentation,
			Detail:        s.Detail,
		})
	}
	for _, e := range doc.Edges {
		kind, ok := graph.ParseEdgeKind(e.Kind)
		if !ok {
			result.SkippedEdges++
			continue
		}
		result.Edges = append(result.Edges, graph.Edge{From: e.From, To: e.To, Kind: kind})
	}
	return result, nil
}

// EncodeSymbolJSON renders a single symbol using the same field layout as
// EncodeJSON's mirror, for the per-symbol cache blobs the CLI warms under
// store.SymbolKey.
func EncodeSymbolJSON(s graph.Symbol) ([]byte, error) {
	return json.Marshal(jsonSymbol{
		ID: s.ID, Kind: s.Kind.String(), Name: s.Name, FilePath: s.FilePath,
		StartLine: s.Range.Start.Line, StartChar: s.Range.Start.Character,
		EndLine: s.Range.End.Line, EndChar: s.Range.End.Character,
		Documentation: s.Documentation, Detail: s.Detail,
	})
}

// DecodeSymbolJSON is EncodeSymbolJSON's inverse.
func DecodeSymbolJSON(data []byte) (graph.Symbol, error) {
	var js jsonSymbol
	if err := json.Unmarshal(data, &js); err != nil {
		return graph.Symbol{}, err
	}
	return graph.Symbol{
		ID: js.ID, Kind: parseSymbolKind(js.Kind), Name: js.Name, FilePath: js.FilePath,
		Range: graph.Range{
			Start: graph.Position{Line: js.StartLine, Character: js.StartChar},
			End:   graph.Position{Line: js.EndLine, Character: js.EndChar},
		},
		Documentation: js.Documentation, Detail: js.Detail,
	}, nil
}

func parseSymbolKind(name string) graph.SymbolKind {
	for k := graph.KindUnknown; k <= graph.KindReference; k++ {
		if k.String() == name {
			return k
		}
	}
	return graph.KindUnknown
}
