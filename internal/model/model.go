// Package model defines the workspace map printed by the tactguide CLI.
package model

// TagKind indicates whether a tag is a definition or a reference.
type TagKind string

const (
	Definition TagKind = "def"
	Reference  TagKind = "ref"
)

// SymbolKind indicates the declaration kind of a symbol.
type SymbolKind string

const (
	Contract  SymbolKind = "contract"
	Trait     SymbolKind = "trait"
	Struct    SymbolKind = "struct"
	Message   SymbolKind = "message"
	Primitive SymbolKind = "primitive"
	Function  SymbolKind = "function"
	Method    SymbolKind = "method"
	Constant  SymbolKind = "constant"
	// Field tags are named Owner.field and listed as members, not symbols.
	Field SymbolKind = "field"
)

// Tag represents a single symbol occurrence in a Tact file.
type Tag struct {
	Name       string
	Kind       TagKind
	SymbolKind SymbolKind
	Line       int
	File       string
	Signature  string
	// Target is the file declaring the symbol a reference resolved to.
	Target string
	// Enclosing is the qualified name of the function containing a
	// reference, empty at top level.
	Enclosing string
}

// FileInfo holds metadata and extracted tags for a single source file.
type FileInfo struct {
	Path     string
	Language string
	Tags     []Tag
	Rank     float64
}

// Dependency represents an edge in the dependency graph:
// Source references symbols defined in Target.
type Dependency struct {
	Source  string
	Target  string
	Symbols []string
}

// CallEdge is a caller to callee pair between workspace functions.
type CallEdge struct {
	Caller string
	Callee string
}

// CallSite is one call occurrence.
type CallSite struct {
	Caller string
	Callee string
	File   string
	Line   int
}

// ContractDep records that Source deploys or embeds Target through
// initOf or codeOf.
type ContractDep struct {
	Source string
	Target string
	Kinds  []string
	Via    []string
}

// RepoMap is the complete analyzed workspace map, ready for serialization.
type RepoMap struct {
	RepoName     string
	Root         string
	Files        []FileInfo
	Dependencies []Dependency
	CallEdges    []CallEdge
	CallSites    []CallSite
	Members      []Tag
	Contracts    []ContractDep
}
