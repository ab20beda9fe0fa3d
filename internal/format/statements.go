package format

import (
	"github.com/phobologic/tactguide/internal/cst"
)

var inlineKinds = map[cst.Kind]bool{
	cst.Let:      true,
	cst.Destruct: true,
	cst.Return:   true,
	cst.ExprStmt: true,
	cst.Assign:   true,
}

// block prints a statement block. A lone simple statement written without
// a semicolon stays on the brace line: `{ return 10 }`.
func (p *printer) block(n *cst.Node) {
	open, closing := token(n, "{"), token(n, "}")
	stmts := n.Nodes()
	p.tok(open)
	if len(stmts) == 0 && len(p.trivia(closing).leading) == 0 {
		p.tok(closing)
		return
	}
	if len(stmts) == 1 && p.inline(stmts[0], open, closing) {
		p.b.space()
		p.omitSemi = true
		p.statement(stmts[0])
		p.omitSemi = false
		p.b.space()
		p.tok(closing)
		return
	}
	p.b.indent()
	for i, s := range stmts {
		p.b.newline()
		if i > 0 && p.gap(s) > 1 {
			p.b.blankLine()
		}
		p.statement(s)
	}
	p.closer(closing)
}

func (p *printer) inline(s *cst.Node, open, closing *cst.Leaf) bool {
	if !inlineKinds[s.Kind] || s.HasToken(";") || p.hasComments(s) {
		return false
	}
	return len(p.trivia(open).trailing) == 0 && len(p.trivia(closing).leading) == 0
}

func (p *printer) terminate(n *cst.Node) {
	p.semicolon(n, !p.omitSemi)
}

func (p *printer) let(n *cst.Node) {
	p.keyword(n, "let")
	p.b.space()
	p.field(n, "name")
	if typ := n.FieldOf("type"); typ != nil {
		p.sep(token(n, ":"), ":")
		p.b.space()
		p.typ(typ)
	}
	p.initializer(n)
	p.terminate(n)
}

func (p *printer) destruct(n *cst.Node) {
	p.keyword(n, "let")
	p.b.space()
	p.field(n, "name")
	p.b.space()
	binds := n.FieldNode("binds")
	p.printList(collectList(binds, "{", "}", ","), ",", true, func(c cst.Cst) {
		b := c.(*cst.Node)
		if b.Kind == cst.DestructRest {
			p.keyword(b, "..")
			return
		}
		p.field(b, "name")
		if bind := b.FieldOf("bind"); bind != nil {
			p.sep(token(b, ":"), ":")
			p.b.space()
			p.tok(bind.(*cst.Leaf))
		}
	})
	p.initializer(n)
	p.terminate(n)
}

func (p *printer) ret(n *cst.Node) {
	p.keyword(n, "return")
	if res := n.FieldOf("result"); res != nil {
		p.b.space()
		p.expr(res)
	}
	p.terminate(n)
}

func (p *printer) exprStmt(n *cst.Node) {
	p.field(n, "expression")
	p.terminate(n)
}

func (p *printer) assign(n *cst.Node) {
	p.field(n, "left")
	p.b.space()
	p.field(n, "operator")
	p.b.space()
	p.field(n, "right")
	p.terminate(n)
}

func (p *printer) ifStmt(n *cst.Node) {
	p.keyword(n, "if")
	p.b.space()
	p.field(n, "condition")
	p.b.space()
	p.block(n.FieldNode("consequence"))
	alt := n.FieldNode("alternative")
	if alt == nil {
		return
	}
	p.b.space()
	p.keyword(alt, "else")
	p.b.space()
	for _, c := range alt.Nodes() {
		if c.Kind == cst.If {
			p.ifStmt(c)
		} else {
			p.block(c)
		}
	}
}

func (p *printer) loop(n *cst.Node) {
	p.tok(cst.FirstToken(n))
	p.b.space()
	p.field(n, "condition")
	p.b.space()
	p.block(n.FieldNode("body"))
}

func (p *printer) doUntil(n *cst.Node) {
	p.keyword(n, "do")
	p.b.space()
	p.block(n.FieldNode("body"))
	p.b.space()
	p.keyword(n, "until")
	p.b.space()
	p.field(n, "condition")
	p.semicolon(n, true)
}

func (p *printer) try(n *cst.Node) {
	p.keyword(n, "try")
	p.b.space()
	p.block(n.FieldNode("body"))
	h := n.FieldNode("handler")
	if h == nil {
		return
	}
	p.b.space()
	p.keyword(h, "catch")
	p.b.space()
	p.keyword(h, "(")
	p.field(h, "name")
	p.sep(token(h, ")"), ")")
	p.b.space()
	p.block(h.FieldNode("body"))
}

func (p *printer) foreach(n *cst.Node) {
	p.keyword(n, "foreach")
	p.b.space()
	p.keyword(n, "(")
	p.field(n, "key")
	p.sep(token(n, ","), ",")
	p.b.space()
	p.field(n, "value")
	p.b.space()
	p.keyword(n, "in")
	p.b.space()
	p.field(n, "map")
	p.sep(token(n, ")"), ")")
	p.b.space()
	p.block(n.FieldNode("body"))
}
