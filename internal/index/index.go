// Package index keeps the top-level declarations of every parsed file,
// bucketed by kind, and groups files into roots.
package index

import (
	"strings"
	"sync"

	"github.com/phobologic/tactguide/internal/psi"
	"github.com/phobologic/tactguide/internal/syntax"
)

// Kind is a declaration bucket.
type Kind int

const (
	Funs Kind = iota
	Primitives
	Structs
	Messages
	Traits
	Constants
	Contracts
)

// Kinds lists every kind in lookup order.
var Kinds = []Kind{Funs, Primitives, Structs, Messages, Traits, Constants, Contracts}

var kindNames = [...]string{"funs", "primitives", "structs", "messages", "traits", "constants", "contracts"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// topLevel maps a root child type to its bucket.
var topLevel = map[string]Kind{
	"global_function": Funs,
	"asm_function":    Funs,
	"native_function": Funs,
	"primitive":       Primitives,
	"struct":          Structs,
	"message":         Messages,
	"trait":           Traits,
	"global_constant": Constants,
	"contract":        Contracts,
}

// FileIndex holds the top-level declarations of one file.
type FileIndex struct {
	File     *psi.File
	elements [len(kindNames)][]psi.Decl
}

// NewFileIndex scans the direct children of the file's root.
func NewFileIndex(f *psi.File) *FileIndex {
	fi := &FileIndex{File: f}
	root := f.Tree.Root
	for i := 0; i < root.ChildCount(); i++ {
		c := root.Child(i)
		k, ok := topLevel[c.Type()]
		if !ok {
			continue
		}
		d := psi.DeclOf(psi.Wrap(c, f))
		if d == nil || d.Name() == "" {
			continue
		}
		fi.elements[k] = append(fi.elements[k], d)
	}
	return fi
}

// Elements returns the declarations of kind k in source order.
func (fi *FileIndex) Elements(k Kind) []psi.Decl {
	return fi.elements[k]
}

// ElementByName returns the first declaration of kind k named name.
func (fi *FileIndex) ElementByName(k Kind, name string) psi.Decl {
	for _, d := range fi.elements[k] {
		if d.Name() == name {
			return d
		}
	}
	return nil
}

// ProcessElementsByKind feeds the declarations of kind k to fn. It
// returns false if fn stopped the walk.
func (fi *FileIndex) ProcessElementsByKind(k Kind, fn func(psi.Decl) syntax.Action) bool {
	return syntax.Each(fi.elements[k], fn)
}

// Root is an ordered set of files sharing a URI prefix.
type Root struct {
	Prefix string
	files  []*FileIndex
	byURI  map[string]*FileIndex
}

// NewRoot returns an empty root for URIs starting with prefix.
func NewRoot(prefix string) *Root {
	return &Root{Prefix: prefix, byURI: make(map[string]*FileIndex)}
}

// Contains reports whether uri lies under the root's prefix.
func (r *Root) Contains(uri string) bool {
	return r.Prefix != "" && strings.HasPrefix(uri, r.Prefix)
}

// AddFile indexes f. A file whose URI is already present is left alone;
// callers remove it first to replace it.
func (r *Root) AddFile(f *psi.File) {
	if _, ok := r.byURI[f.URI]; ok {
		return
	}
	fi := NewFileIndex(f)
	r.files = append(r.files, fi)
	r.byURI[f.URI] = fi
}

// RemoveFile drops the file with the given URI.
func (r *Root) RemoveFile(uri string) bool {
	if _, ok := r.byURI[uri]; !ok {
		return false
	}
	delete(r.byURI, uri)
	for i, fi := range r.files {
		if fi.File.URI == uri {
			r.files = append(r.files[:i:i], r.files[i+1:]...)
			break
		}
	}
	return true
}

// FindFile returns the index of uri, nil when absent.
func (r *Root) FindFile(uri string) *FileIndex {
	return r.byURI[uri]
}

// Files returns the file indexes in insertion order.
func (r *Root) Files() []*FileIndex {
	return r.files
}

// ElementByName returns the first declaration of kind k named name
// across the root's files, in insertion order.
func (r *Root) ElementByName(k Kind, name string) psi.Decl {
	for _, fi := range r.files {
		if d := fi.ElementByName(k, name); d != nil {
			return d
		}
	}
	return nil
}

// ProcessElementsByKind feeds declarations of kind k of every file to
// fn. It returns false if fn stopped the walk.
func (r *Root) ProcessElementsByKind(k Kind, fn func(psi.Decl) syntax.Action) bool {
	for _, fi := range r.files {
		if !fi.ProcessElementsByKind(k, fn) {
			return false
		}
	}
	return true
}

// Index is the global registry: workspace roots plus the standard
// library and the built-in stubs. It is safe for concurrent use.
type Index struct {
	mu     sync.RWMutex
	roots  []*Root
	Stdlib *Root
	Stubs  *Root
}

// New returns an index with one root per workspace prefix. stdlibPrefix
// may be empty when no standard library is available.
func New(stdlibPrefix string, workspacePrefixes ...string) *Index {
	idx := &Index{Stdlib: NewRoot(stdlibPrefix), Stubs: NewRoot(StubsURI)}
	for _, p := range workspacePrefixes {
		idx.roots = append(idx.roots, NewRoot(p))
	}
	if len(idx.roots) == 0 {
		idx.roots = append(idx.roots, NewRoot(""))
	}
	idx.Stubs.AddFile(Stubs())
	return idx
}

// Roots returns the workspace roots.
func (idx *Index) Roots() []*Root {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return append([]*Root(nil), idx.roots...)
}

// rootFor picks the root with the longest matching prefix, falling back
// to the first workspace root.
func (idx *Index) rootFor(uri string) *Root {
	var best *Root
	for _, r := range idx.all() {
		if r.Contains(uri) && (best == nil || len(r.Prefix) > len(best.Prefix)) {
			best = r
		}
	}
	if best == nil {
		best = idx.roots[0]
	}
	return best
}

// all returns workspace roots, then stdlib, then stubs.
func (idx *Index) all() []*Root {
	out := make([]*Root, 0, len(idx.roots)+2)
	out = append(out, idx.roots...)
	return append(out, idx.Stdlib, idx.Stubs)
}

// AddFile indexes f under the root that owns its URI.
func (idx *Index) AddFile(f *psi.File) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.rootFor(f.URI).AddFile(f)
}

// RemoveFile drops uri from whichever root holds it.
func (idx *Index) RemoveFile(uri string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, r := range idx.all() {
		if r.RemoveFile(uri) {
			return
		}
	}
}

// FindFile returns the index of uri, nil when it is not indexed.
func (idx *Index) FindFile(uri string) *FileIndex {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	for _, r := range idx.all() {
		if fi := r.FindFile(uri); fi != nil {
			return fi
		}
	}
	return nil
}

// Files returns every indexed file: workspace roots first, then stdlib,
// then stubs.
func (idx *Index) Files() []*FileIndex {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	var out []*FileIndex
	for _, r := range idx.all() {
		out = append(out, r.files...)
	}
	return out
}

// ElementByName looks name up in the workspace roots, then the standard
// library, then the stubs.
func (idx *Index) ElementByName(k Kind, name string) psi.Decl {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	for _, r := range idx.all() {
		if d := r.ElementByName(k, name); d != nil {
			return d
		}
	}
	return nil
}

// ProcessElementsByKind feeds every declaration of kind k to fn in
// lookup order.
func (idx *Index) ProcessElementsByKind(k Kind, fn func(psi.Decl) syntax.Action) bool {
	idx.mu.RLock()
	roots := idx.all()
	idx.mu.RUnlock()
	for _, r := range roots {
		if !r.ProcessElementsByKind(k, fn) {
			return false
		}
	}
	return true
}

// KindOf returns the bucket of a top-level declaration.
func KindOf(d psi.Decl) (Kind, bool) {
	k, ok := topLevel[d.Named().Type()]
	return k, ok
}
