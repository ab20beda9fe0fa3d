package cst

// wrapperKinds are produced for every precedence level of an expression
// and are meaningless when they hold a single operand.
var wrapperKinds = map[Kind]bool{
	Ternary: true,
	Binary:  true,
	Suffix:  true,
}

// Simplify collapses single-child expression wrappers in place and returns
// root. The child inherits the wrapper's field tag, and its group tag when
// it has none. Leaf text and order are untouched.
func Simplify(root *Node) *Node {
	for i, c := range root.Children {
		n, ok := c.(*Node)
		if !ok {
			continue
		}
		root.Children[i] = simplify(n)
	}
	return root
}

func simplify(n *Node) Cst {
	for i, c := range n.Children {
		if cn, ok := c.(*Node); ok {
			n.Children[i] = simplify(cn)
		}
	}
	if !wrapperKinds[n.Kind] || len(n.Children) != 1 {
		return n
	}
	switch only := n.Children[0].(type) {
	case *Node:
		only.Field = n.Field
		if only.Group == "" {
			only.Group = n.Group
		}
		return only
	case *Leaf:
		if only.Kind == Token {
			only.Field = n.Field
			return only
		}
	}
	return n
}
