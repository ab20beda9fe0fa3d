package cst

var assignOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"&=": true, "|=": true, "^=": true, "<<=": true, ">>=": true,
	"||=": true, "&&=": true,
}

func (p *parser) parseBlock(field, group string) {
	p.open(Block, field, group)
	defer p.close()
	p.expect("{")
	for !p.at("}") && !p.atEOF() {
		p.guard(GroupStatement, p.parseStatement)
	}
	p.closeBrace()
}

func (p *parser) parseStatement() {
	switch {
	case p.at("let") && p.atN(2, "{"):
		p.parseDestruct()
	case p.at("let"):
		p.open(Let, "", GroupStatement)
		p.expect("let")
		p.ident("name")
		if p.eat(":") {
			p.parseType("type")
		}
		p.expect("=")
		p.parseExpr("value")
		p.semi()
		p.close()
	case p.at("return"):
		p.open(Return, "", GroupStatement)
		p.expect("return")
		if !p.at(";") && !p.at("}") {
			p.parseExpr("result")
		}
		p.semi()
		p.close()
	case p.at("{"):
		p.parseBlock("", GroupStatement)
	case p.at("if"):
		p.parseIf("", GroupStatement)
	case p.at("while") || p.at("repeat"):
		kind := While
		if p.at("repeat") {
			kind = Repeat
		}
		p.open(kind, "", GroupStatement)
		p.bump(TokKeyword, "")
		p.parseExpr("condition")
		p.parseBlock("body", "")
		p.close()
	case p.at("do"):
		p.open(DoUntil, "", GroupStatement)
		p.expect("do")
		p.parseBlock("body", "")
		p.expect("until")
		p.parseExpr("condition")
		p.semi()
		p.close()
	case p.at("try"):
		p.parseTry()
	case p.at("foreach"):
		p.parseForeach()
	default:
		p.parseExprStatement()
	}
}

func (p *parser) parseDestruct() {
	p.open(Destruct, "", GroupStatement)
	defer p.close()
	p.expect("let")
	p.ident("name")
	p.open(DestructBinds, "binds", "")
	p.expect("{")
	for !p.at("}") {
		if p.at("..") {
			p.open(DestructRest, "rest", "")
			p.expect("..")
			p.close()
		} else {
			p.open(DestructBind, "", "")
			p.ident("name")
			if p.eat(":") {
				p.ident("bind")
			}
			p.close()
		}
		if !p.eat(",") {
			break
		}
	}
	p.expect("}")
	p.close()
	p.expect("=")
	p.parseExpr("value")
	p.semi()
}

func (p *parser) parseIf(field, group string) {
	p.open(If, field, group)
	defer p.close()
	p.expect("if")
	p.parseExpr("condition")
	p.parseBlock("consequence", "")
	if p.at("else") {
		p.open(Else, "alternative", "")
		p.expect("else")
		if p.at("if") {
			p.parseIf("", "")
		} else {
			p.parseBlock("", "")
		}
		p.close()
	}
}

func (p *parser) parseTry() {
	p.open(Try, "", GroupStatement)
	defer p.close()
	p.expect("try")
	p.parseBlock("body", "")
	if p.at("catch") {
		p.open(Catch, "handler", "")
		p.expect("catch")
		p.expect("(")
		p.ident("name")
		p.expect(")")
		p.parseBlock("body", "")
		p.close()
	}
}

func (p *parser) parseForeach() {
	p.open(Foreach, "", GroupStatement)
	defer p.close()
	p.expect("foreach")
	p.expect("(")
	p.ident("key")
	p.expect(",")
	p.ident("value")
	p.expect("in")
	p.parseExpr("map")
	p.expect(")")
	p.parseBlock("body", "")
}

// parseExprStatement handles both expression statements and assignments;
// the node kind is settled once the operator after the expression is known.
func (p *parser) parseExprStatement() {
	p.open(ExprStmt, "", GroupStatement)
	n := p.top()
	p.parseExpr("expression")
	if t, ok := p.peek(); ok && t.tok == TokPunct && assignOps[t.text] {
		n.Kind = Assign
		n.Nodes()[0].Field = "left"
		p.bump(TokPunct, "operator")
		p.parseExpr("right")
	}
	p.semi()
	p.close()
}
