package format

import (
	"strings"

	"github.com/phobologic/tactguide/internal/cst"
)

// list is a delimited, separated sequence inside one node.
type list struct {
	open  *cst.Leaf
	close *cst.Leaf
	items []cst.Cst
	seps  []*cst.Leaf
	multi bool
}

// collectList splits n into its delimiters, separators and items. Leaves
// that are neither delimiters nor separators count as items. The list is
// multi-line when an item started on a new line or a line comment sits
// between the delimiters.
func collectList(n *cst.Node, open, close, sep string) list {
	var l list
	broken := false
	for _, c := range n.Children {
		if leaf, ok := c.(*cst.Leaf); ok {
			switch {
			case leaf.Kind == cst.Space:
				broken = broken || strings.Contains(leaf.Text, "\n")
				continue
			case leaf.Kind == cst.Comment:
				l.multi = l.multi || strings.HasPrefix(leaf.Text, "//")
				continue
			case leaf.Text == open && l.open == nil && len(l.items) == 0:
				l.open = leaf
				broken = false
				continue
			case leaf.Text == close && close != "":
				l.close = leaf
				continue
			case leaf.Text == sep:
				l.seps = append(l.seps, leaf)
				continue
			}
		}
		if broken || leadingBreak(c) {
			l.multi = true
		}
		broken = false
		l.items = append(l.items, c)
	}
	return l
}

// leadingBreak reports whether the trivia the parser kept inside c, in
// front of its first token, holds a line break or a line comment.
func leadingBreak(c cst.Cst) bool {
	found, done := false, false
	cst.Leaves(c, func(l *cst.Leaf) {
		switch {
		case done:
		case l.Kind == cst.Token:
			done = true
		case l.Kind == cst.Space && strings.Contains(l.Text, "\n"),
			l.Kind == cst.Comment && strings.HasPrefix(l.Text, "//"):
			found = true
		}
	})
	return found
}

// printList prints l single-line or one item per line. A multi-line list
// always ends every item with a separator. pad puts spaces inside the
// delimiters of a non-empty single-line list.
func (p *printer) printList(l list, sep string, pad bool, item func(cst.Cst)) {
	p.tok(l.open)
	if len(l.items) == 0 {
		for _, s := range l.seps {
			p.emit(s, "")
		}
		if l.close != nil && len(p.trivia(l.close).leading) > 0 {
			p.b.indent()
			p.closer(l.close)
			return
		}
		p.tok(l.close)
		return
	}
	if l.multi {
		p.b.indent()
		for i, it := range l.items {
			p.b.newline()
			item(it)
			if i < len(l.seps) {
				p.sep(l.seps[i], sep)
			} else {
				p.sep(nil, sep)
			}
		}
		for _, s := range l.seps[min(len(l.items), len(l.seps)):] {
			p.emit(s, "")
		}
		if l.close == nil {
			p.b.dedent()
			p.b.newline()
			return
		}
		p.closer(l.close)
		return
	}
	if pad {
		p.b.space()
	}
	for i, it := range l.items {
		if i > 0 {
			p.b.space()
		}
		item(it)
		if i < len(l.seps) {
			if i < len(l.items)-1 {
				p.sep(l.seps[i], sep)
			} else {
				p.emit(l.seps[i], "")
			}
		}
	}
	for _, s := range l.seps[min(len(l.items), len(l.seps)):] {
		p.emit(s, "")
	}
	if pad {
		p.b.space()
	}
	p.tok(l.close)
}

func (p *printer) params(n *cst.Node) {
	p.printList(collectList(n, "(", ")", ","), ",", false, func(c cst.Cst) {
		p.param(c.(*cst.Node))
	})
}

func (p *printer) param(n *cst.Node) {
	p.field(n, "name")
	p.sep(token(n, ":"), ":")
	p.b.space()
	p.field(n, "type")
	p.tlb(n.FieldNode("tlb"))
}

func (p *printer) tlb(n *cst.Node) {
	if n == nil {
		return
	}
	p.b.space()
	p.keyword(n, "as")
	p.b.space()
	p.field(n, "type")
}

func (p *printer) args(n *cst.Node) {
	p.printList(collectList(n, "(", ")", ","), ",", false, func(c cst.Cst) {
		arg := c.(*cst.Node)
		p.field(arg, "value")
	})
}
