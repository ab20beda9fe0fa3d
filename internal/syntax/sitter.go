package syntax

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// FromSitter adapts a tree-sitter tree. The returned tree keeps tree alive;
// callers must not Close it while the adapter is in use.
func FromSitter(tree *sitter.Tree, src []byte, revision uint64) *Tree {
	return &Tree{
		Root:     wrap(tree.RootNode(), src),
		Source:   src,
		Revision: revision,
	}
}

type sitterNode struct {
	n   *sitter.Node
	src []byte
}

func wrap(n *sitter.Node, src []byte) Node {
	if n == nil || n.IsNull() {
		return nil
	}
	return sitterNode{n: n, src: src}
}

func point(p sitter.Point) Point {
	return Point{Row: p.Row, Column: p.Column}
}

func (s sitterNode) Type() string {
	if s.n.IsError() {
		return "ERROR"
	}
	return s.n.Type()
}

func (s sitterNode) IsNamed() bool     { return s.n.IsNamed() }
func (s sitterNode) StartByte() uint32 { return s.n.StartByte() }
func (s sitterNode) EndByte() uint32   { return s.n.EndByte() }
func (s sitterNode) StartPoint() Point { return point(s.n.StartPoint()) }
func (s sitterNode) EndPoint() Point   { return point(s.n.EndPoint()) }
func (s sitterNode) ChildCount() int   { return int(s.n.ChildCount()) }
func (s sitterNode) Parent() Node      { return wrap(s.n.Parent(), s.src) }
func (s sitterNode) Child(i int) Node  { return wrap(s.n.Child(i), s.src) }
func (s sitterNode) Content() string   { return s.n.Content(s.src) }
func (s sitterNode) FieldNameForChild(i int) string {
	return s.n.FieldNameForChild(i)
}

func (s sitterNode) ChildByFieldName(name string) Node {
	return wrap(s.n.ChildByFieldName(name), s.src)
}

func (s sitterNode) ID() ID {
	return ID{Start: s.n.StartByte(), End: s.n.EndByte(), Type: s.n.Type()}
}
