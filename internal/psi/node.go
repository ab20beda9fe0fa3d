// Package psi wraps syntax nodes with the file they belong to and gives
// declarations and expressions typed views.
package psi

import (
	"strings"

	"github.com/phobologic/tactguide/internal/syntax"
)

// Node pairs a syntax node with its file. The zero Node has no syntax
// node; IsNil reports that case.
type Node struct {
	syntax.Node
	File *File
}

// Wrap returns n inside f.
func Wrap(n syntax.Node, f *File) Node {
	return Node{Node: n, File: f}
}

// IsNil reports whether the node is absent.
func (n Node) IsNil() bool { return n.Node == nil }

// Wrap returns c as a node of the same file.
func (n Node) Wrap(c syntax.Node) Node {
	return Node{Node: c, File: n.File}
}

// ParentNode returns the wrapped parent, nil when n is the root.
func (n Node) ParentNode() Node {
	if n.Node == nil {
		return Node{}
	}
	return n.Wrap(n.Node.Parent())
}

// Field returns the wrapped child under field name.
func (n Node) Field(name string) Node {
	if n.Node == nil {
		return Node{}
	}
	return n.Wrap(n.ChildByFieldName(name))
}

// Equal reports whether n and o are the same node of the same file.
func (n Node) Equal(o Node) bool {
	if n.File != nil && o.File != nil && n.File.URI != o.File.URI {
		return false
	}
	return syntax.Equal(n.Node, o.Node)
}

// NamedNode is a node that carries a name: a declaration, or a bare
// identifier standing for one.
type NamedNode struct {
	Node
}

// Named returns n.
func (n NamedNode) Named() NamedNode { return n }

// NameIdentifier returns the node holding the name.
func (n NamedNode) NameIdentifier() syntax.Node {
	if n.Node.Node == nil {
		return nil
	}
	switch n.Type() {
	case "identifier", "type_identifier", "self":
		return n.Node.Node
	case "primitive":
		return n.ChildByFieldName("type")
	case "init_function", "receive_function", "external_function", "bounced_function":
		return n.Child(0)
	case "destruct_bind":
		if b := n.ChildByFieldName("bind"); b != nil {
			return b
		}
	}
	return n.ChildByFieldName("name")
}

// NameNode returns the wrapped name identifier.
func (n NamedNode) NameNode() Node {
	return n.Wrap(n.NameIdentifier())
}

// Name returns the declared name, or "" when the node has none.
func (n NamedNode) Name() string {
	id := n.NameIdentifier()
	if id == nil {
		return ""
	}
	return id.Content()
}

// Documentation returns the text of the `//` comments on the lines
// directly above the declaration, one line per comment.
func (n NamedNode) Documentation() string {
	if n.Node.Node == nil {
		return ""
	}
	var lines []string
	row := n.StartPoint().Row
	for c := syntax.PrevSibling(n.Node.Node); c != nil && c.Type() == "comment"; c = syntax.PrevSibling(c) {
		text := c.Content()
		if !strings.HasPrefix(text, "//") || c.EndPoint().Row+1 != row {
			break
		}
		text = strings.TrimPrefix(strings.TrimLeft(text, "/"), " ")
		lines = append(lines, strings.TrimRight(text, " \t\r"))
		row = c.StartPoint().Row
	}
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return strings.Join(lines, "\n")
}

// Deprecated reports whether the documentation marks the declaration as
// deprecated.
func (n NamedNode) Deprecated() bool {
	return strings.Contains(n.Documentation(), "Deprecated")
}
