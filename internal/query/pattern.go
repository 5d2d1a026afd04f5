// Package query implements a small hand-written recursive-descent parser
// for a Cypher-flavored pattern grammar, executed as a depth-first
// extension over the code graph: multi-hop pattern matching with
// per-relationship depth ranges and named-node bindings.
package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mizchi/lsif-indexer/internal/graph"
)

// NodePattern is one "(" ... ")" term.
type NodePattern struct {
	Var   string            // binding name; empty means unnamed/anonymous
	Label string            // matched against graph.SymbolKind.String(); empty means any kind
	Props map[string]string // matched against known symbol fields ("name", "detail", "file")
}

// RelPattern is one relationship term joining two nodes.
type RelPattern struct {
	Kind     *graph.EdgeKind // nil means any edge kind
	Dir      graph.Direction
	MinDepth int
	MaxDepth int // as parsed; clamped to graph.SafetyDepthCeiling when the pattern executes
}

// Pattern is a parsed query: len(Nodes) == len(Rels)+1.
type Pattern struct {
	Nodes []NodePattern
	Rels  []RelPattern
}

// ParseError reports a malformed pattern with the offending position.
type ParseError struct {
	Pos     int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("query: pattern error at %d: %s", e.Pos, e.Message)
}

// Parse compiles a pattern string into a Pattern. It rejects ambiguous or
// malformed depth specifications at parse time.
func Parse(src string) (*Pattern, error) {
	p := &parser{runes: []rune(src)}
	pat, err := p.parsePattern()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.runes) {
		return nil, &ParseError{Pos: p.pos, Message: "unexpected trailing input"}
	}
	return pat, nil
}

type parser struct {
	runes []rune
	pos   int
}

func (p *parser) parsePattern() (*Pattern, error) {
	pat := &Pattern{}

	first, err := p.parseNode()
	if err != nil {
		return nil, err
	}
	pat.Nodes = append(pat.Nodes, first)

	for {
		p.skipSpace()
		if p.pos >= len(p.runes) || (p.runes[p.pos] != '-' && p.runes[p.pos] != '<') {
			break
		}
		rel, err := p.parseRel()
		if err != nil {
			return nil, err
		}
		node, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		pat.Rels = append(pat.Rels, rel)
		pat.Nodes = append(pat.Nodes, node)
	}

	return pat, nil
}

func (p *parser) parseNode() (NodePattern, error) {
	p.skipSpace()
	if !p.consume('(') {
		return NodePattern{}, &ParseError{Pos: p.pos, Message: "expected '('"}
	}

	node := NodePattern{}
	p.skipSpace()
	node.Var = p.readIdent()

	p.skipSpace()
	if p.consume(':') {
		node.Label = p.readIdent()
		if node.Label == "" {
			return NodePattern{}, &ParseError{Pos: p.pos, Message: "expected label after ':'"}
		}
	}

	p.skipSpace()
	if p.consume('{') {
		props, err := p.parseProps()
		if err != nil {
			return NodePattern{}, err
		}
		node.Props = props
		p.skipSpace()
		if !p.consume('}') {
			return NodePattern{}, &ParseError{Pos: p.pos, Message: "expected '}'"}
		}
	}

	p.skipSpace()
	if !p.consume(')') {
		return NodePattern{}, &ParseError{Pos: p.pos, Message: "expected ')'"}
	}
	return node, nil
}

func (p *parser) parseProps() (map[string]string, error) {
	props := make(map[string]string)
	for {
		p.skipSpace()
		key := p.readIdent()
		if key == "" {
			return nil, &ParseError{Pos: p.pos, Message: "expected property key"}
		}
		p.skipSpace()
		if !p.consume(':') {
			return nil, &ParseError{Pos: p.pos, Message: "expected ':' after property key"}
		}
		p.skipSpace()
		val, err := p.readQuoted()
		if err != nil {
			return nil, err
		}
		props[key] = val

		p.skipSpace()
		if p.consume(',') {
			continue
		}
		break
	}
	return props, nil
}

// parseRel parses one of:
//
//	-[...]->   forward
//	<-[...]-   backward
//	-[...]-    both
func (p *parser) parseRel() (RelPattern, error) {
	rel := RelPattern{MinDepth: 1, MaxDepth: 1}

	backward := p.consume('<')
	if !p.consume('-') {
		return RelPattern{}, &ParseError{Pos: p.pos, Message: "expected '-' in relationship"}
	}
	if !p.consume('[') {
		return RelPattern{}, &ParseError{Pos: p.pos, Message: "expected '[' in relationship"}
	}

	p.skipSpace()
	if p.consume(':') {
		kindName := p.readIdent()
		kind, ok := graph.ParseEdgeKind(kindName)
		if !ok {
			return RelPattern{}, &ParseError{Pos: p.pos, Message: fmt.Sprintf("unknown edge kind %q", kindName)}
		}
		rel.Kind = &kind
	}

	p.skipSpace()
	if p.consume('*') {
		min, max, err := p.parseDepth()
		if err != nil {
			return RelPattern{}, err
		}
		rel.MinDepth, rel.MaxDepth = min, max
	}

	p.skipSpace()
	if !p.consume(']') {
		return RelPattern{}, &ParseError{Pos: p.pos, Message: "expected ']' in relationship"}
	}

	if !p.consume('-') {
		return RelPattern{}, &ParseError{Pos: p.pos, Message: "expected '-' closing relationship"}
	}

	if backward {
		rel.Dir = graph.DirBackward
		return rel, nil
	}
	if p.consume('>') {
		rel.Dir = graph.DirForward
		return rel, nil
	}
	rel.Dir = graph.DirBoth
	return rel, nil
}

// parseDepth parses the depth spec after a consumed '*':
//
//	INT | INT ".." INT | INT ".." | (nothing, meaning unbounded)
func (p *parser) parseDepth() (min, max int, err error) {
	start := p.pos
	if p.pos >= len(p.runes) || !isDigit(p.runes[p.pos]) {
		// bare "*": unbounded depth, clamped to the safety ceiling.
		return 1, graph.SafetyDepthCeiling, nil
	}
	n1 := p.readInt()

	if p.pos+1 < len(p.runes) && p.runes[p.pos] == '.' && p.runes[p.pos+1] == '.' {
		p.pos += 2
		if p.pos < len(p.runes) && isDigit(p.runes[p.pos]) {
			n2 := p.readInt()
			if n2 < n1 {
				return 0, 0, &ParseError{Pos: start, Message: "depth range end is less than start"}
			}
			return n1, n2, nil
		}
		return n1, graph.SafetyDepthCeiling, nil
	}

	return n1, n1, nil
}

func (p *parser) skipSpace() {
	for p.pos < len(p.runes) && (p.runes[p.pos] == ' ' || p.runes[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) consume(r rune) bool {
	if p.pos < len(p.runes) && p.runes[p.pos] == r {
		p.pos++
		return true
	}
	return false
}

func (p *parser) readIdent() string {
	start := p.pos
	for p.pos < len(p.runes) {
		r := p.runes[p.pos]
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (p.pos > start && r >= '0' && r <= '9') {
			p.pos++
			continue
		}
		break
	}
	return string(p.runes[start:p.pos])
}

func (p *parser) readInt() int {
	start := p.pos
	for p.pos < len(p.runes) && isDigit(p.runes[p.pos]) {
		p.pos++
	}
	n, _ := strconv.Atoi(string(p.runes[start:p.pos]))
	return n
}

func (p *parser) readQuoted() (string, error) {
	if !p.consume('"') {
		return "", &ParseError{Pos: p.pos, Message: "expected quoted property value"}
	}
	var sb strings.Builder
	for p.pos < len(p.runes) && p.runes[p.pos] != '"' {
		sb.WriteRune(p.runes[p.pos])
		p.pos++
	}
	if !p.consume('"') {
		return "", &ParseError{Pos: p.pos, Message: "unterminated quoted property value"}
	}
	return sb.String(), nil
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
