// Package graph implements the code graph: a persistent labeled directed
// multigraph of code symbols and their relationships.
package graph

import "fmt"

// SymbolKind closes over every construct the indexer can represent,
// mirroring LSP's SymbolKind plus the JSON-ish leaf kinds (String, Number,
// ...) the extraction façade can emit for data-shaped languages.
type SymbolKind uint8

const (
	KindUnknown SymbolKind = iota
	KindFile
	KindModule
	KindNamespace
	KindPackage
	KindClass
	KindStruct
	KindEnum
	KindInterface
	KindTrait
	KindMethod
	KindFunction
	KindConstructor
	KindProperty
	KindField
	KindVariable
	KindConstant
	KindTypeAlias
	KindEnumMember
	KindParameter
	KindTypeParameter
	KindOperator
	KindEvent
	KindString
	KindNumber
	KindBoolean
	KindArray
	KindObject
	KindKey
	KindNull
	KindReference
)

func (k SymbolKind) String() string {
	if int(k) < len(symbolKindNames) {
		return symbolKindNames[k]
	}
	return "Unknown"
}

var symbolKindNames = [...]string{
	"Unknown", "File", "Module", "Namespace", "Package", "Class", "Struct",
	"Enum", "Interface", "Trait", "Method", "Function", "Constructor",
	"Property", "Field", "Variable", "Constant", "TypeAlias", "EnumMember",
	"Parameter", "TypeParameter", "Operator", "Event", "String", "Number",
	"Boolean", "Array", "Object", "Key", "Null", "Reference",
}

// EdgeKind is the closed set of relationships between two symbols.
type EdgeKind uint8

const (
	EdgeDefinition EdgeKind = iota
	EdgeReference
	EdgeTypeDefinition
	EdgeImplementation
	EdgeOverride
	EdgeImport
	EdgeExport
	EdgeContains
	edgeKindCount
)

func (k EdgeKind) String() string {
	if int(k) < len(edgeKindNames) {
		return edgeKindNames[k]
	}
	return "Unknown"
}

var edgeKindNames = [...]string{
	"Definition", "Reference", "TypeDefinition", "Implementation",
	"Override", "Import", "Export", "Contains",
}

// ParseEdgeKind parses a string produced by EdgeKind.String, returning ok=false
// for anything else (used by the decoder's "skip unknown edge kinds" rule).
func ParseEdgeKind(s string) (EdgeKind, bool) {
	for i, name := range edgeKindNames {
		if name == s {
			return EdgeKind(i), true
		}
	}
	return 0, false
}

// Position is a 0-based (line, character) pair using UTF-16 code-unit
// semantics, the LSP convention.
type Position struct {
	Line      uint32
	Character uint32
}

// Range is a half-open [Start, End) span.
type Range struct {
	Start Position
	End   Position
}

// Symbol is a named construct at a source location.
//
// ID is the canonical, globally-unique-within-a-snapshot identifier in the
// form "<file>#<line>:<qualified-name>".
type Symbol struct {
	ID            string
	Kind          SymbolKind
	Name          string
	FilePath      string
	Range         Range
	Documentation string // empty string means "no documentation"
	Detail        string // empty string means "no detail"
}

// CanonicalID builds a symbol's canonical identifier form.
func CanonicalID(filePath string, line uint32, qualifiedName string) string {
	return fmt.Sprintf("%s#%d:%s", filePath, line, qualifiedName)
}

// Edge is a directed, kinded relationship between two resident symbols,
// referenced by id rather than by pointer so edges never create cyclic
// ownership with the nodes they connect.
type Edge struct {
	From string
	To   string
	Kind EdgeKind
}
