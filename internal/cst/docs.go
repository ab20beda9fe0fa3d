package cst

import "strings"

// AttachDocs moves the comments directly above each declaration into a Doc
// child tagged "doc" inside the declaration. A blank line between the
// comment run and the declaration breaks the attachment, and so does a
// comment that trails code on the same line.
func AttachDocs(root *Node) *Node {
	var last *Leaf
	attach(root, &last)
	return root
}

// attach walks n in source order. last is the leaf before n's text.
func attach(n *Node, last **Leaf) {
	if isDeclaration(n) {
		attachDoc(n, *last)
	}
	for _, c := range n.Children {
		switch c := c.(type) {
		case *Node:
			attach(c, last)
		case *Leaf:
			*last = c
		}
	}
}

// attachDoc lifts the trivia in front of n's first token to the front of
// n, wherever the parser left it, and wraps the doc run in a Doc node.
func attachDoc(n *Node, before *Leaf) {
	front := takeLeading(n)
	if len(front) == 0 {
		return
	}
	start := docStart(front, before == nil || endsLine(before))
	kids := append([]Cst(nil), front[:start]...)
	if start < len(front) {
		kids = append(kids, &Node{Kind: Doc, Field: "doc", Children: append([]Cst(nil), front[start:]...)})
	}
	n.Children = append(kids, n.Children...)
}

// takeLeading removes and returns the trivia leaves that precede the first
// token of n, descending into leading child nodes.
func takeLeading(n *Node) []Cst {
	var out []Cst
	for len(n.Children) > 0 {
		switch c := n.Children[0].(type) {
		case *Leaf:
			if c.Kind == Token {
				return out
			}
			out = append(out, c)
			n.Children = n.Children[1:]
		case *Node:
			if c.Kind == Doc {
				return out
			}
			out = append(out, takeLeading(c)...)
			if FirstToken(c) != nil {
				return out
			}
			// All trivia: the node is gone.
			n.Children = n.Children[1:]
		}
	}
	return out
}

func isDeclaration(n *Node) bool {
	return n.Group == GroupItem && n.Kind != Import || n.Group == GroupMember
}

// docStart returns the index in prev where the attached doc run begins, or
// len(prev) when nothing attaches. The run may include the whitespace
// between comments but never a blank line. lineStart reports whether the
// text before prev ends a line.
func docStart(prev []Cst, lineStart bool) int {
	start := len(prev)
	i := len(prev) - 1
	// Whitespace between the last comment and the declaration.
	if i >= 0 {
		if l, ok := prev[i].(*Leaf); ok && l.Kind == Space {
			if strings.Count(l.Text, "\n") > 1 {
				return start
			}
			i--
		}
	}
	for i >= 0 {
		l, ok := prev[i].(*Leaf)
		if !ok || l.Kind != Comment {
			break
		}
		// A comment sharing its line with code is not documentation.
		if i > 0 && !endsLine(prev[i-1]) || i == 0 && !lineStart {
			break
		}
		start = i
		i--
		if i < 0 {
			break
		}
		sp, ok := prev[i].(*Leaf)
		if !ok || sp.Kind != Space || strings.Count(sp.Text, "\n") != 1 {
			break
		}
		i--
	}
	return start
}

// endsLine reports whether c is whitespace that contains a line break.
func endsLine(c Cst) bool {
	l, ok := c.(*Leaf)
	return ok && l.Kind == Space && strings.Contains(l.Text, "\n")
}
