package format

import (
	"github.com/phobologic/tactguide/internal/cst"
)

// attributes prints modifier tokens and get(...) attributes, each followed
// by a space.
func (p *printer) attributes(n *cst.Node) {
	for _, c := range n.Fields("attribute") {
		switch c := c.(type) {
		case *cst.Leaf:
			p.tok(c)
		case *cst.Node:
			p.keyword(c, "get")
			p.sep(token(c, "("), "(")
			p.field(c, "value")
			p.sep(token(c, ")"), ")")
		}
		p.b.space()
	}
}

func (p *printer) signature(n *cst.Node) {
	p.field(n, "name")
	p.params(n.FieldNode("parameters"))
	if res := n.FieldOf("result"); res != nil {
		p.sep(token(n, ":"), ":")
		p.b.space()
		p.typ(res)
	}
}

func (p *printer) function(n *cst.Node) {
	p.doc(n)
	p.attributes(n)
	p.keyword(n, "fun")
	p.b.space()
	p.signature(n)
	if body := n.FieldNode("body"); body != nil {
		p.b.space()
		p.block(body)
		return
	}
	p.semicolon(n, true)
}

func (p *printer) native(n *cst.Node) {
	p.doc(n)
	p.keyword(n, "@")
	p.sep(token(n, "name"), "name")
	p.sep(token(n, "("), "(")
	p.field(n, "func_name")
	p.sep(token(n, ")"), ")")
	p.b.newline()
	p.attributes(n)
	p.keyword(n, "native")
	p.b.space()
	p.signature(n)
	p.semicolon(n, true)
}

func (p *printer) asm(n *cst.Node) {
	p.doc(n)
	p.keyword(n, "asm")
	if arr := n.FieldNode("arrangement"); arr != nil {
		p.sep(token(arr, "("), "(")
		for i, a := range arr.Fields("argument") {
			if i > 0 {
				p.b.space()
			}
			p.tok(a.(*cst.Leaf))
		}
		if arrow := token(arr, "->"); arrow != nil {
			if len(arr.Fields("argument")) > 0 {
				p.b.space()
			}
			p.tok(arrow)
			for _, r := range arr.Fields("return") {
				p.b.space()
				p.tok(r.(*cst.Leaf))
			}
		}
		p.sep(token(arr, ")"), ")")
	}
	p.b.space()
	p.attributes(n)
	p.keyword(n, "fun")
	p.b.space()
	p.signature(n)
	p.b.space()
	p.keyword(n, "{")
	if body, ok := n.FieldOf("body").(*cst.Leaf); ok {
		p.b.glue(body.Text)
	}
	p.sep(token(n, "}"), "}")
}

func (p *printer) constant(n *cst.Node) {
	p.doc(n)
	p.attributes(n)
	p.keyword(n, "const")
	p.b.space()
	p.field(n, "name")
	if typ := n.FieldOf("type"); typ != nil {
		p.sep(token(n, ":"), ":")
		p.b.space()
		p.typ(typ)
	}
	p.initializer(n)
	p.semicolon(n, true)
}

func (p *printer) initializer(n *cst.Node) {
	if v := n.FieldOf("value"); v != nil {
		p.b.space()
		p.keyword(n, "=")
		p.b.space()
		p.expr(v)
	}
}

func (p *printer) primitive(n *cst.Node) {
	p.doc(n)
	p.keyword(n, "primitive")
	p.b.space()
	p.field(n, "type")
	p.semicolon(n, true)
}

// fieldDecl prints a struct field or storage variable without its terminator.
func (p *printer) fieldDecl(n *cst.Node) {
	p.doc(n)
	p.field(n, "name")
	p.sep(token(n, ":"), ":")
	p.b.space()
	p.field(n, "type")
	p.tlb(n.FieldNode("tlb"))
	p.initializer(n)
}

func (p *printer) storageField(n *cst.Node) {
	p.fieldDecl(n)
	p.semicolon(n, true)
}

func (p *printer) structDecl(n *cst.Node) {
	p.doc(n)
	p.keyword(n, "struct")
	p.b.space()
	p.field(n, "name")
	p.b.space()
	p.structBody(n.FieldNode("body"))
}

func (p *printer) message(n *cst.Node) {
	p.doc(n)
	p.keyword(n, "message")
	if v := n.FieldNode("value"); v != nil {
		p.sep(token(v, "("), "(")
		p.field(v, "expression")
		p.sep(token(v, ")"), ")")
	}
	p.b.space()
	p.field(n, "name")
	p.b.space()
	p.structBody(n.FieldNode("body"))
}

func (p *printer) structBody(n *cst.Node) {
	open, closing := token(n, "{"), token(n, "}")
	fields := n.Nodes()
	p.tok(open)
	if len(fields) == 0 && len(p.trivia(closing).leading) == 0 {
		p.tok(closing)
		return
	}
	if len(fields) == 1 && !fields[0].HasToken(";") && !p.hasComments(n) {
		p.b.space()
		p.fieldDecl(fields[0])
		p.b.space()
		p.tok(closing)
		return
	}
	p.b.indent()
	for i, f := range fields {
		p.b.newline()
		if i > 0 && p.gap(f) > 1 {
			p.b.blankLine()
		}
		p.storageField(f)
	}
	p.closer(closing)
}

func (p *printer) contract(n *cst.Node) {
	p.doc(n)
	for _, a := range n.Fields("attributes") {
		attr := a.(*cst.Node)
		p.keyword(attr, "@")
		for _, c := range attr.Children {
			if l, ok := c.(*cst.Leaf); ok && l.Kind == cst.Token && l.Text != "@" {
				p.sep(l, l.Text)
			}
		}
		p.b.newline()
	}
	p.keyword(n, "contract")
	p.b.space()
	p.field(n, "name")
	multi := false
	if params := n.FieldNode("parameters"); params != nil {
		multi = collectList(params, "(", ")", ",").multi
		p.params(params)
	}
	p.traits(n, multi)
	p.b.space()
	p.body(n.FieldNode("body"))
}

func (p *printer) trait(n *cst.Node) {
	p.doc(n)
	p.keyword(n, "trait")
	p.b.space()
	p.field(n, "name")
	p.traits(n, false)
	p.b.space()
	p.body(n.FieldNode("body"))
}

// traits prints the `with` list. It follows a multi-line parameter list
// onto separate lines.
func (p *printer) traits(n *cst.Node, multi bool) {
	tl := n.FieldNode("traits")
	if tl == nil {
		return
	}
	l := collectList(tl, "with", "", ",")
	l.multi = l.multi || multi
	p.b.space()
	p.printList(l, ",", true, func(c cst.Cst) {
		p.tok(c.(*cst.Leaf))
	})
}

// longBody reports whether m is a function, init or receiver whose body
// prints over several lines.
func (p *printer) longBody(m *cst.Node) bool {
	switch m.Kind {
	case cst.Function, cst.Init, cst.Receiver:
	default:
		return false
	}
	body := m.FieldNode("body")
	if body == nil {
		return false
	}
	open, closing := token(body, "{"), token(body, "}")
	switch stmts := body.Nodes(); len(stmts) {
	case 0:
		return len(p.trivia(closing).leading) > 0
	case 1:
		return !p.inline(stmts[0], open, closing)
	default:
		return true
	}
}

func (p *printer) body(n *cst.Node) {
	open, closing := token(n, "{"), token(n, "}")
	members := n.Nodes()
	p.tok(open)
	if len(members) == 0 && len(p.trivia(closing).leading) == 0 {
		p.tok(closing)
		return
	}
	p.b.indent()
	for i, m := range members {
		p.b.newline()
		// Members stay adjacent as written, except around bodies that span lines.
		if i > 0 && (p.gap(m) > 1 || p.longBody(members[i-1]) || p.longBody(m)) {
			p.b.blankLine()
		}
		p.member(m)
	}
	p.closer(closing)
}

func (p *printer) initFn(n *cst.Node) {
	p.doc(n)
	p.keyword(n, "init")
	p.params(n.FieldNode("parameters"))
	p.b.space()
	p.block(n.FieldNode("body"))
}

func (p *printer) receiver(n *cst.Node) {
	p.doc(n)
	p.field(n, "kind")
	p.sep(token(n, "("), "(")
	switch param := n.FieldOf("parameter").(type) {
	case *cst.Leaf:
		p.tok(param)
	case *cst.Node:
		p.param(param)
	}
	p.sep(token(n, ")"), ")")
	p.b.space()
	p.block(n.FieldNode("body"))
}
