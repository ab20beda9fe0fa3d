package format

import (
	"strings"

	"github.com/phobologic/tactguide/internal/cst"
)

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func (p *printer) width(c cst.Cst) string {
	return p.measure(func(q *printer) { q.expr(c) })
}

// binary prints an operator chain of one precedence level. When the next
// operand would pass the line limit the chain continues on a new line
// aligned with its first operand.
func (p *printer) binary(n *cst.Node) {
	start := p.b.lineLength()
	operands := n.Fields("operand")
	ops := n.Fields("operator")
	p.expr(operands[0])
	wrapped := false
	for i, op := range ops {
		opLeaf := op.(*cst.Leaf)
		right := operands[i+1]
		w := len(firstLine(p.width(right)))
		if p.b.lineLength()+len(opLeaf.Text)+2+w > p.cfg.MaxLineWidth || len(p.trivia(opLeaf).leading) > 0 {
			if !wrapped {
				p.b.indentTo(start)
				wrapped = true
			}
			p.b.newline()
		} else {
			p.b.space()
		}
		p.tok(opLeaf)
		p.b.space()
		p.expr(right)
	}
	if wrapped {
		p.b.dedent()
	}
}

func isTernary(c cst.Cst) bool {
	n, ok := c.(*cst.Node)
	return ok && n.Kind == cst.Ternary
}

func (p *printer) ternary(n *cst.Node) {
	cons, alt := n.FieldOf("consequence"), n.FieldOf("alternative")
	p.field(n, "condition")
	wc, wa := p.width(cons), p.width(alt)
	multi := len(wc)+len(wa) > ternaryWidth || isTernary(cons) || isTernary(alt) ||
		strings.Contains(wc, "\n") || strings.Contains(wa, "\n")
	if !multi {
		p.b.space()
		p.keyword(n, "?")
		p.b.space()
		p.expr(cons)
		p.b.space()
		p.keyword(n, ":")
		p.b.space()
		p.expr(alt)
		return
	}
	p.b.indent()
	p.b.newline()
	p.keyword(n, "?")
	p.b.space()
	p.expr(cons)
	p.b.newline()
	p.keyword(n, ":")
	p.b.space()
	p.expr(alt)
	p.b.dedent()
}

func (p *printer) unary(n *cst.Node) {
	op := n.FieldOf("operator").(*cst.Leaf)
	p.tok(op)
	arg := n.FieldOf("argument")
	// `- -x` must not collapse into a different token.
	if first := cst.FirstToken(arg); first != nil && strings.HasPrefix(first.Text, op.Text) {
		p.b.glue(" ")
	}
	p.expr(arg)
}

// lineBefore reports whether the source broke the line in front of l.
func (p *printer) lineBefore(l *cst.Leaf) bool {
	t := p.trivia(l)
	return t.nl > 0 || len(t.leading) > 0
}

// suffix prints a postfix chain. When any field access or call started on
// its own line, each of them goes on its own line one level in.
func (p *printer) suffix(n *cst.Node) {
	p.field(n, "object")
	var sufs []*cst.Node
	for _, s := range n.Fields("suffix") {
		sufs = append(sufs, s.(*cst.Node))
	}
	multi := false
	for _, s := range sufs {
		if dot := token(s, "."); dot != nil && p.lineBefore(dot) {
			multi = true
		}
	}
	if multi {
		p.b.indent()
	}
	for _, s := range sufs {
		switch s.Kind {
		case cst.NonNull:
			p.keyword(s, "!!")
		case cst.FieldSuffix:
			if multi {
				p.b.newline()
			}
			p.keyword(s, ".")
			p.field(s, "name")
		case cst.CallSuffix:
			if multi {
				p.b.newline()
			}
			p.keyword(s, ".")
			p.field(s, "name")
			p.args(s.FieldNode("arguments"))
		}
	}
	if multi {
		p.b.dedent()
	}
}

func (p *printer) staticCall(n *cst.Node) {
	p.field(n, "name")
	p.args(n.FieldNode("arguments"))
}

func (p *printer) paren(n *cst.Node) {
	p.keyword(n, "(")
	p.field(n, "expression")
	p.sep(token(n, ")"), ")")
}

func (p *printer) instance(n *cst.Node) {
	p.field(n, "name")
	p.b.space()
	args := n.FieldNode("arguments")
	p.printList(collectList(args, "{", "}", ","), ",", true, func(c cst.Cst) {
		arg := c.(*cst.Node)
		p.field(arg, "name")
		if v := arg.FieldOf("value"); v != nil {
			p.sep(token(arg, ":"), ":")
			p.b.space()
			p.expr(v)
		}
	})
}

func (p *printer) initOf(n *cst.Node) {
	p.keyword(n, "initOf")
	p.b.space()
	p.field(n, "name")
	p.args(n.FieldNode("arguments"))
}

func (p *printer) codeOf(n *cst.Node) {
	p.keyword(n, "codeOf")
	p.b.space()
	p.field(n, "name")
}

func (p *printer) atom(n *cst.Node) {
	p.tok(cst.FirstToken(n))
}

func (p *printer) typeName(n *cst.Node) {
	p.field(n, "name")
	if q := token(n, "?"); q != nil {
		p.sep(q, "?")
	}
}

func (p *printer) mapType(n *cst.Node) {
	p.keyword(n, "map")
	p.sep(token(n, "<"), "<")
	p.field(n, "key")
	p.tlb(n.FieldNode("tlb_key"))
	p.sep(token(n, ","), ",")
	p.b.space()
	p.field(n, "value")
	p.tlb(n.FieldNode("tlb_value"))
	p.sep(token(n, ">"), ">")
}

func (p *printer) bouncedType(n *cst.Node) {
	p.keyword(n, "bounced")
	p.sep(token(n, "<"), "<")
	p.field(n, "message")
	p.sep(token(n, ">"), ">")
}
