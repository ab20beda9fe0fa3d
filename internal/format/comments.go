package format

import (
	"strings"

	"github.com/phobologic/tactguide/internal/cst"
)

type comment struct {
	text string
	// nl counts line breaks between the previous token or comment and this one.
	nl int
}

func (c comment) line() bool { return strings.HasPrefix(c.text, "//") }

// trivia is what the source had around one token.
type trivia struct {
	leading  []comment
	trailing []comment
	// nl counts line breaks between the last leading comment (or the
	// previous token) and the token.
	nl int
}

// collectTrivia attaches every comment outside doc nodes to a token: to the
// previous token when it shares that token's line, otherwise to the next
// token. A block comment right after an opening bracket goes with the next
// token when that token follows on the same line. Comments after the last
// token go to eof.
func collectTrivia(root *cst.Node) (map[*cst.Leaf]*trivia, map[*cst.Node]*trivia, *trivia) {
	info := make(map[*cst.Leaf]*trivia)
	docs := make(map[*cst.Node]*trivia)
	var (
		prev    *cst.Leaf
		nl      int
		pending []comment
		// held are block comments after an opening bracket whose owner is
		// not known yet.
		held []comment
	)
	release := func() {
		if len(held) > 0 {
			t := info[prev]
			t.trailing = append(t.trailing, held...)
			held = nil
		}
	}
	var visit func(c cst.Cst)
	visit = func(c cst.Cst) {
		switch c := c.(type) {
		case *cst.Node:
			if c.Kind == cst.Doc {
				docs[c] = &trivia{leading: pending, nl: nl}
				pending = nil
				nl = 0
				return
			}
			for _, ch := range c.Children {
				visit(ch)
			}
		case *cst.Leaf:
			switch c.Kind {
			case cst.Space:
				if strings.Contains(c.Text, "\n") {
					release()
				}
				nl += strings.Count(c.Text, "\n")
			case cst.Comment:
				block := !strings.HasPrefix(c.Text, "//")
				if block && prev != nil && nl == 0 && len(pending) == 0 && (len(held) > 0 || opens[prev.Text]) {
					held = append(held, comment{text: c.Text})
					return
				}
				release()
				if prev != nil && nl == 0 && len(pending) == 0 {
					t := info[prev]
					t.trailing = append(t.trailing, comment{text: c.Text})
					return
				}
				pending = append(pending, comment{text: c.Text, nl: nl})
				nl = 0
			case cst.Token:
				if len(held) > 0 {
					pending = append(held, pending...)
					held = nil
				}
				info[c] = &trivia{leading: pending, nl: nl}
				pending = nil
				nl = 0
				prev = c
			}
		}
	}
	visit(root)
	release()
	return info, docs, &trivia{leading: pending, nl: nl}
}

var opens = map[string]bool{"(": true, "{": true, "[": true, "<": true}

func (p *printer) trivia(l *cst.Leaf) *trivia {
	if t, ok := p.info[l]; ok {
		return t
	}
	return &trivia{}
}

// emitLeading writes the comments in front of a token. Comments that had a
// line of their own keep it.
func (p *printer) emitLeading(t *trivia) {
	for i, c := range t.leading {
		if c.nl > 0 {
			p.b.newline()
			if i > 0 && c.nl > 1 {
				p.b.blankLine()
			}
		} else {
			p.b.flushTrail()
			if !p.b.afterOpen() {
				p.b.spaceRaw()
			}
		}
		p.b.add(c.text)
		next := t.nl
		if i+1 < len(t.leading) {
			next = t.leading[i+1].nl
		}
		switch {
		case next > 1:
			p.b.blankLine()
		case c.line() || next > 0:
			p.b.newline()
		default:
			p.b.space()
		}
	}
}

// emit writes text in place of token l together with l's comments. An
// empty text drops the token but keeps its comments.
func (p *printer) emit(l *cst.Leaf, text string) {
	if l == nil {
		p.b.add(text)
		return
	}
	t := p.trivia(l)
	p.emitLeading(t)
	p.b.add(text)
	p.queueTrailing(t)
}

func (p *printer) queueTrailing(t *trivia) {
	for _, c := range t.trailing {
		p.b.trail = append(p.b.trail, c.text)
	}
}

// tok writes token l as it appears in the source.
func (p *printer) tok(l *cst.Leaf) {
	if l == nil {
		return
	}
	p.emit(l, l.Text)
}

// sep writes a separator right after the previous token. l may be nil for a
// separator the source did not have.
func (p *printer) sep(l *cst.Leaf, text string) {
	if l == nil {
		p.b.glue(text)
		return
	}
	t := p.trivia(l)
	if len(t.leading) > 0 {
		p.emit(l, text)
		return
	}
	p.b.glue(text)
	p.queueTrailing(t)
}

// closer writes the closing token of an indented region: comments in front
// of it stay inside the region, then the region ends.
func (p *printer) closer(l *cst.Leaf) {
	t := p.trivia(l)
	for _, c := range t.leading {
		p.b.newline()
		if c.nl > 1 && !p.b.lineOpens() {
			p.b.blankLine()
		}
		p.b.add(c.text)
	}
	p.b.dedent()
	p.b.newline()
	p.b.add(l.Text)
	p.queueTrailing(t)
}

// hasComments reports whether any comment is attached inside c.
func (p *printer) hasComments(c cst.Cst) bool {
	found := false
	cst.Leaves(c, func(l *cst.Leaf) {
		if l.Kind == cst.Comment {
			found = true
			return
		}
		if t, ok := p.info[l]; ok && (len(t.leading) > 0 || len(t.trailing) > 0) {
			found = true
		}
	})
	return found
}

// gap returns the number of line breaks in front of c in the source,
// counting from the end of the previous token.
func (p *printer) gap(c cst.Cst) int {
	if n, ok := c.(*cst.Node); ok {
		if doc := n.FieldNode("doc"); doc != nil {
			t := p.docs[doc]
			if len(t.leading) > 0 {
				return t.leading[0].nl
			}
			return t.nl
		}
	}
	first := cst.FirstToken(c)
	if first == nil {
		return 0
	}
	t := p.trivia(first)
	if len(t.leading) > 0 {
		return t.leading[0].nl
	}
	return t.nl
}

// doc writes a declaration's doc comments, one per line, after any
// detached comments that preceded them.
func (p *printer) doc(n *cst.Node) {
	doc := n.FieldNode("doc")
	if doc == nil {
		return
	}
	t := p.docs[doc]
	p.emitLeading(&trivia{leading: t.leading, nl: t.nl})
	for _, c := range doc.Children {
		if l, ok := c.(*cst.Leaf); ok && l.Kind == cst.Comment {
			p.b.add(l.Text)
			p.b.newline()
		}
	}
}
