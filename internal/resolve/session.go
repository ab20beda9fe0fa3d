// Package resolve resolves references to declarations and infers the
// types of expressions.
package resolve

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/phobologic/tactguide/internal/imports"
	"github.com/phobologic/tactguide/internal/index"
	"github.com/phobologic/tactguide/internal/log"
	"github.com/phobologic/tactguide/internal/psi"
	"github.com/phobologic/tactguide/internal/syntax"
	"github.com/phobologic/tactguide/internal/types"
)

// DefaultCacheSize bounds each cache when no size is given.
const DefaultCacheSize = 10000

// key identifies a node in one revision of one file.
type key struct {
	URI      string
	Revision uint64
	ID       syntax.ID
}

func keyOf(n psi.Node) key {
	k := key{ID: n.ID()}
	if n.File != nil {
		k.URI = n.File.URI
		k.Revision = n.File.Revision()
	}
	return k
}

// entry distinguishes a cached absence from a missing cache slot.
type entry[T any] struct{ v T }

// Session holds the index and the caches of one workspace. A Session is
// not safe for concurrent use; callers serialize requests.
type Session struct {
	Index   *index.Index
	Imports imports.Resolver

	decls *lru.Cache[key, *entry[psi.Decl]]
	types *lru.Cache[key, *entry[types.Ty]]

	// Nodes whose resolution or inference is on the stack, per cache.
	resolving map[key]bool
	inferring map[key]bool
}

// NewSession returns a session over idx. cacheSize <= 0 selects
// DefaultCacheSize.
func NewSession(idx *index.Index, imp imports.Resolver, cacheSize int) (*Session, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	decls, err := lru.New[key, *entry[psi.Decl]](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating resolve cache: %w", err)
	}
	tys, err := lru.New[key, *entry[types.Ty]](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating type cache: %w", err)
	}
	return &Session{
		Index:     idx,
		Imports:   imp,
		decls:     decls,
		types:     tys,
		resolving: make(map[key]bool),
		inferring: make(map[key]bool),
	}, nil
}

// Invalidate clears both caches. Node identities are only stable within
// one tree revision, so any file change drops everything.
func (s *Session) Invalidate() {
	s.decls.Purge()
	s.types.Purge()
	log.Resolve("caches cleared")
}

// AddFile indexes f and clears the caches.
func (s *Session) AddFile(f *psi.File) {
	s.Index.AddFile(f)
	s.Invalidate()
}

// RemoveFile drops uri from the index and clears the caches.
func (s *Session) RemoveFile(uri string) {
	s.Index.RemoveFile(uri)
	s.Invalidate()
}

// ReplaceFile swaps in a new tree for f.URI.
func (s *Session) ReplaceFile(f *psi.File) {
	s.Index.RemoveFile(f.URI)
	s.Index.AddFile(f)
	s.Invalidate()
}

// cached runs compute once per node and revision. A computation that
// re-enters itself for the same node through the same cache sees the zero
// value; inflight is that cache's own set of pending nodes.
func cached[T any](c *lru.Cache[key, *entry[T]], inflight map[key]bool, n psi.Node, compute func() T) T {
	k := keyOf(n)
	if e, ok := c.Get(k); ok {
		return e.v
	}
	var zero T
	if inflight[k] {
		return zero
	}
	inflight[k] = true
	defer delete(inflight, k)
	v := compute()
	c.Add(k, &entry[T]{v: v})
	return v
}

// InvariantError reports a syntax shape the resolver relies on but did
// not find. It is raised with panic and recovered at request boundaries.
type InvariantError struct {
	Node psi.Node
	Msg  string
}

func (e *InvariantError) Error() string {
	if e.Node.IsNil() {
		return "invariant violated: " + e.Msg
	}
	p := e.Node.StartPoint()
	return fmt.Sprintf("invariant violated at %d:%d (%s): %s", p.Row+1, p.Column+1, e.Node.Type(), e.Msg)
}

func invariant(ok bool, n psi.Node, format string, args ...any) {
	if !ok {
		panic(&InvariantError{Node: n, Msg: fmt.Sprintf(format, args...)})
	}
}
