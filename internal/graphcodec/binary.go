// Package graphcodec round-trips a graph.Graph to and from a compact
// binary envelope, plus a JSON debugging mirror.
package graphcodec

import (
	"fmt"
	"log"

	"github.com/mizchi/lsif-indexer/internal/graph"
	"google.golang.org/protobuf/encoding/protowire"
)

// DecodeResult carries the decoded graph plus bookkeeping the decoder
// can't express purely through the returned symbols/edges.
type DecodeResult struct {
	Symbols      []graph.Symbol
	Edges        []graph.Edge
	SkippedEdges int // edges whose kind string didn't map to a known EdgeKind
}

// Encode serializes every symbol and edge in g into the compact binary
// envelope: count, [Symbol], count, [Edge{from_id,to_id,kind}], with
// length-prefixed UTF-8 strings. Counts and length prefixes are both
// protobuf varints written by the wire helpers; the envelope has no
// fixed-width or little-endian integer fields.
func Encode(g graph.Graph) []byte {
	symbols := g.AllSymbols()
	edges := g.AllEdges()

	var buf []byte
	buf = protowire.AppendVarint(buf, uint64(len(symbols)))
	for _, s := range symbols {
		buf = appendSymbol(buf, s)
	}

	buf = protowire.AppendVarint(buf, uint64(len(edges)))
	for _, e := range edges {
		buf = appendEdge(buf, e)
	}
	return buf
}

func appendString(buf []byte, s string) []byte {
	buf = protowire.AppendVarint(buf, uint64(len(s)))
	return append(buf, s...)
}

func appendSymbol(buf []byte, s graph.Symbol) []byte {
	buf = appendString(buf, s.ID)
	buf = protowire.AppendVarint(buf, uint64(s.Kind))
	buf = appendString(buf, s.Name)
	buf = appendString(buf, s.FilePath)
	buf = protowire.AppendVarint(buf, uint64(s.Range.Start.Line))
	buf = protowire.AppendVarint(buf, uint64(s.Range.Start.Character))
	buf = protowire.AppendVarint(buf, uint64(s.Range.End.Line))
	buf = protowire.AppendVarint(buf, uint64(s.Range.End.Character))
	buf = appendString(buf, s.Documentation)
	buf = appendString(buf, s.Detail)
	return buf
}

func appendEdge(buf []byte, e graph.Edge) []byte {
	buf = appendString(buf, e.From)
	buf = appendString(buf, e.To)
	buf = appendString(buf, e.Kind.String())
	return buf
}

func consumeString(buf []byte) (string, []byte, error) {
	n, m := protowire.ConsumeVarint(buf)
	if m < 0 {
		return "", nil, fmt.Errorf("graphcodec: truncated length prefix")
	}
	buf = buf[m:]
	if uint64(len(buf)) < n {
		return "", nil, fmt.Errorf("graphcodec: truncated string payload")
	}
	return string(buf[:n]), buf[n:], nil
}

func consumeVarint(buf []byte) (uint64, []byte, error) {
	v, n := protowire.ConsumeVarint(buf)
	if n < 0 {
		return 0, nil, fmt.Errorf("graphcodec: truncated varint")
	}
	return v, buf[n:], nil
}

// Decode is the inverse of Encode, tolerant of unknown edge kinds (which
// are skipped and counted, with a log line). Node index identity is not
// preserved — ids are the only stable identity across a decode.
func Decode(data []byte) (DecodeResult, error) {
	var result DecodeResult
	buf := data

	symbolCount, buf, err := consumeVarint(buf)
	if err != nil {
		return result, fmt.Errorf("graphcodec: decode symbol count: %w", err)
	}

	result.Symbols = make([]graph.Symbol, 0, symbolCount)
	for i := uint64(0); i < symbolCount; i++ {
		var s graph.Symbol
		s, buf, err = decodeSymbol(buf)
		if err != nil {
			return result, fmt.Errorf("graphcodec: decode symbol %d: %w", i, err)
		}
		result.Symbols = append(result.Symbols, s)
	}

	edgeCount, buf, err := consumeVarint(buf)
	if err != nil {
		return result, fmt.Errorf("graphcodec: decode edge count: %w", err)
	}

	result.Edges = make([]graph.Edge, 0, edgeCount)
	for i := uint64(0); i < edgeCount; i++ {
		var e graph.Edge
		var ok bool
		e, ok, buf, err = decodeEdge(buf)
		if err != nil {
			return result, fmt.Errorf("graphcodec: decode edge %d: %w", i, err)
		}
		if !ok {
			result.SkippedEdges++
			log.Printf("graphcodec: skipping edge %d with unknown kind", i)
			continue
		}
		result.Edges = append(result.Edges, e)
	}

	return result, nil
}

func decodeSymbol(buf []byte) (graph.Symbol, []byte, error) {
	var s graph.Symbol
	var err error

	if s.ID, buf, err = consumeString(buf); err != nil {
		return s, buf, err
	}
	var kind uint64
	if kind, buf, err = consumeVarint(buf); err != nil {
		return s, buf, err
	}
	s.Kind = graph.SymbolKind(kind)

	if s.Name, buf, err = consumeString(buf); err != nil {
		return s, buf, err
	}
	if s.FilePath, buf, err = consumeString(buf); err != nil {
		return s, buf, err
	}

	var startLine, startChar, endLine, endChar uint64
	if startLine, buf, err = consumeVarint(buf); err != nil {
		return s, buf, err
	}
	if startChar, buf, err = consumeVarint(buf); err != nil {
		return s, buf, err
	}
	if endLine, buf, err = consumeVarint(buf); err != nil {
		return s, buf, err
	}
	if endChar, buf, err = consumeVarint(buf); err != nil {
		return s, buf, err
	}
	s.Range = graph.Range{
		Start: graph.Position{Line: uint32(startLine), Character: uint32(startChar)},
		End:   graph.Position{Line: uint32(endLine), Character: uint32(endChar)},
	}

	if s.Documentation, buf, err = consumeString(buf); err != nil {
		return s, buf, err
	}
	if s.Detail, buf, err = consumeString(buf); err != nil {
		return s, buf, err
	}
	return s, buf, nil
}

func decodeEdge(buf []byte) (graph.Edge, bool, []byte, error) {
	var e graph.Edge
	var err error
	var kindStr string

	if e.From, buf, err = consumeString(buf); err != nil {
		return e, false, buf, err
	}
	if e.To, buf, err = consumeString(buf); err != nil {
		return e, false, buf, err
	}
	if kindStr, buf, err = consumeString(buf); err != nil {
		return e, false, buf, err
	}

	kind, ok := graph.ParseEdgeKind(kindStr)
	if !ok {
		return e, false, buf, nil
	}
	e.Kind = kind
	return e, true, buf, nil
}

// Build materializes a DecodeResult into a fresh graph.Graph of the
// requested mode. Nodes are inserted before edges so every edge's
// endpoints are already resident.
func Build(mode graph.Mode, result DecodeResult) graph.Graph {
	g := graph.NewGraph(mode)
	for _, s := range result.Symbols {
		g.AddSymbol(s)
	}
	for _, e := range result.Edges {
		_ = g.AddEdge(e.From, e.To, e.Kind)
	}
	return g
}
