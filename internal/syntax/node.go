// Package syntax defines the syntax tree contract consumed by the
// resolver: typed nodes with field names and byte/row-column positions.
// Two implementations exist: an in-memory tree built by the native parser
// and an adapter over tree-sitter trees.
package syntax

// Point is a zero-based row/column position. Columns count bytes.
type Point struct {
	Row    uint32
	Column uint32
}

// Less reports whether p is strictly before q.
func (p Point) Less(q Point) bool {
	if p.Row != q.Row {
		return p.Row < q.Row
	}
	return p.Column < q.Column
}

// ID identifies a node within one tree revision.
type ID struct {
	Start uint32
	End   uint32
	Type  string
}

// Node is a read-only view of one syntax tree node.
type Node interface {
	Type() string
	IsNamed() bool
	StartByte() uint32
	EndByte() uint32
	StartPoint() Point
	EndPoint() Point
	Parent() Node
	ChildCount() int
	Child(i int) Node
	ChildByFieldName(name string) Node
	FieldNameForChild(i int) string
	Content() string
	ID() ID
}

// Tree is one parsed revision of a source file.
type Tree struct {
	Root     Node
	Source   []byte
	Revision uint64
}

// Equal reports whether a and b denote the same node. Nil equals nil.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ID() == b.ID()
}

// Children returns all children of n, named and anonymous.
func Children(n Node) []Node {
	count := n.ChildCount()
	out := make([]Node, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, n.Child(i))
	}
	return out
}

// NamedChildren returns the named children of n, skipping comments.
func NamedChildren(n Node) []Node {
	var out []Node
	for i := 0; i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c.IsNamed() && c.Type() != "comment" {
			out = append(out, c)
		}
	}
	return out
}

// ChildrenOfType returns the children of n with the given type.
func ChildrenOfType(n Node, typ string) []Node {
	var out []Node
	for i := 0; i < n.ChildCount(); i++ {
		if c := n.Child(i); c.Type() == typ {
			out = append(out, c)
		}
	}
	return out
}

func indexInParent(n Node) (Node, int) {
	p := n.Parent()
	if p == nil {
		return nil, -1
	}
	id := n.ID()
	for i := 0; i < p.ChildCount(); i++ {
		if p.Child(i).ID() == id {
			return p, i
		}
	}
	return p, -1
}

// NextSibling returns the node after n in its parent, or nil.
func NextSibling(n Node) Node {
	p, i := indexInParent(n)
	if p == nil || i < 0 || i+1 >= p.ChildCount() {
		return nil
	}
	return p.Child(i + 1)
}

// PrevSibling returns the node before n in its parent, or nil.
func PrevSibling(n Node) Node {
	p, i := indexInParent(n)
	if p == nil || i <= 0 {
		return nil
	}
	return p.Child(i - 1)
}

// ParentOfType returns the closest proper ancestor of n whose type is one
// of types, or nil.
func ParentOfType(n Node, types ...string) Node {
	for p := n.Parent(); p != nil; p = p.Parent() {
		for _, t := range types {
			if p.Type() == t {
				return p
			}
		}
	}
	return nil
}

// IsAncestor reports whether anc is n or one of its ancestors.
func IsAncestor(anc, n Node) bool {
	for cur := n; cur != nil; cur = cur.Parent() {
		if Equal(cur, anc) {
			return true
		}
	}
	return false
}

// NodeAt returns the deepest node whose span contains offset. A node ending
// exactly at offset still matches when nothing starts there, so a cursor
// right after an identifier finds the identifier.
func NodeAt(root Node, offset uint32) Node {
	cur := root
	for {
		var next Node
		for i := 0; i < cur.ChildCount(); i++ {
			c := cur.Child(i)
			if c.StartByte() <= offset && offset < c.EndByte() {
				next = c
				break
			}
			if c.EndByte() == offset && c.StartByte() < offset && next == nil {
				next = c
			}
		}
		if next == nil {
			return cur
		}
		cur = next
	}
}
