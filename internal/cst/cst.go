// Package cst implements a lossless concrete syntax tree for Tact source.
// Every byte of the input, whitespace and comments included, ends up in a
// leaf, so concatenating the leaves reproduces the source exactly.
package cst

import "strings"

// Cst is either a *Leaf or a *Node.
type Cst interface {
	cst()
}

// LeafKind classifies a leaf.
type LeafKind uint8

const (
	Token LeafKind = iota
	Space
	Comment
)

// TokKind refines a Token leaf.
type TokKind uint8

const (
	TokIdent TokKind = iota
	TokKeyword
	TokNumber
	TokString
	TokPunct
	TokRaw
)

// Leaf holds one span of source text.
type Leaf struct {
	Kind  LeafKind
	Tok   TokKind
	Text  string
	Start int
	Field string
}

// Node is an interior node: a typed group of children.
type Node struct {
	Kind     Kind
	Field    string
	Group    string
	Children []Cst
}

func (*Leaf) cst() {}
func (*Node) cst() {}

// Text reconstructs the source text covered by c.
func Text(c Cst) string {
	var b strings.Builder
	writeText(&b, c)
	return b.String()
}

func writeText(b *strings.Builder, c Cst) {
	switch c := c.(type) {
	case *Leaf:
		b.WriteString(c.Text)
	case *Node:
		for _, ch := range c.Children {
			writeText(b, ch)
		}
	}
}

// IsTrivia reports whether c is a whitespace or comment leaf.
func IsTrivia(c Cst) bool {
	l, ok := c.(*Leaf)
	return ok && l.Kind != Token
}

// FieldOf returns the first child tagged with field, or nil.
func (n *Node) FieldOf(field string) Cst {
	for _, c := range n.Children {
		if fieldTag(c) == field {
			return c
		}
	}
	return nil
}

// FieldNode returns the first child node tagged with field, or nil.
func (n *Node) FieldNode(field string) *Node {
	c, _ := n.FieldOf(field).(*Node)
	return c
}

// Fields returns all children tagged with field.
func (n *Node) Fields(field string) []Cst {
	var out []Cst
	for _, c := range n.Children {
		if fieldTag(c) == field {
			out = append(out, c)
		}
	}
	return out
}

// Nodes returns the child nodes of n, skipping leaves.
func (n *Node) Nodes() []*Node {
	var out []*Node
	for _, c := range n.Children {
		if cn, ok := c.(*Node); ok {
			out = append(out, cn)
		}
	}
	return out
}

// Significant returns the children of n that are not trivia.
func (n *Node) Significant() []Cst {
	var out []Cst
	for _, c := range n.Children {
		if !IsTrivia(c) {
			out = append(out, c)
		}
	}
	return out
}

// HasToken reports whether n has a direct token child with the given text.
func (n *Node) HasToken(text string) bool {
	return n.TokenIndex(text) >= 0
}

// TokenIndex returns the child index of the first direct token with text.
func (n *Node) TokenIndex(text string) int {
	for i, c := range n.Children {
		if l, ok := c.(*Leaf); ok && l.Kind == Token && l.Text == text {
			return i
		}
	}
	return -1
}

func fieldTag(c Cst) string {
	switch c := c.(type) {
	case *Leaf:
		return c.Field
	case *Node:
		return c.Field
	}
	return ""
}

// FirstToken returns the first token leaf under c, or nil.
func FirstToken(c Cst) *Leaf {
	switch c := c.(type) {
	case *Leaf:
		if c.Kind == Token {
			return c
		}
	case *Node:
		for _, ch := range c.Children {
			if t := FirstToken(ch); t != nil {
				return t
			}
		}
	}
	return nil
}

// LastToken returns the last token leaf under c, or nil.
func LastToken(c Cst) *Leaf {
	switch c := c.(type) {
	case *Leaf:
		if c.Kind == Token {
			return c
		}
	case *Node:
		for i := len(c.Children) - 1; i >= 0; i-- {
			if t := LastToken(c.Children[i]); t != nil {
				return t
			}
		}
	}
	return nil
}

// Leaves calls fn for every leaf under c in source order.
func Leaves(c Cst, fn func(*Leaf)) {
	switch c := c.(type) {
	case *Leaf:
		fn(c)
	case *Node:
		for _, ch := range c.Children {
			Leaves(ch, fn)
		}
	}
}
