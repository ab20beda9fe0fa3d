package cst

// binaryLevels lists binary operators from lowest to highest precedence.
var binaryLevels = [][]string{
	{"||"},
	{"&&"},
	{"|"},
	{"^"},
	{"&"},
	{"==", "!="},
	{"<", ">", "<=", ">="},
	{"<<", ">>"},
	{"+", "-"},
	{"*", "/", "%"},
}

var unaryOps = map[string]bool{"-": true, "+": true, "!": true, "~": true}

func (p *parser) parseExpr(field string) {
	p.open(Ternary, field, GroupExpr)
	defer p.close()
	p.parseBinary(0, "condition")
	if p.eat("?") {
		p.parseExpr("consequence")
		p.expect(":")
		p.parseExpr("alternative")
	}
}

func (p *parser) atBinaryOp(level int) bool {
	t, ok := p.peek()
	if !ok || t.tok != TokPunct {
		return false
	}
	for _, op := range binaryLevels[level] {
		if t.text == op {
			return true
		}
	}
	return false
}

func (p *parser) parseBinary(level int, field string) {
	if level == len(binaryLevels) {
		p.parseUnary(field)
		return
	}
	p.open(Binary, field, "")
	defer p.close()
	p.parseBinary(level+1, "operand")
	for p.atBinaryOp(level) {
		p.bump(TokPunct, "operator")
		p.parseBinary(level+1, "operand")
	}
}

func (p *parser) parseUnary(field string) {
	t, ok := p.peek()
	if ok && t.tok == TokPunct && unaryOps[t.text] {
		p.open(Unary, field, "")
		p.bump(TokPunct, "operator")
		p.parseUnary("argument")
		p.close()
		return
	}
	p.parseSuffix(field)
}

func (p *parser) parseSuffix(field string) {
	p.open(Suffix, field, "")
	defer p.close()
	p.parsePrimary("object")
	for {
		switch {
		case p.at("!!"):
			p.open(NonNull, "suffix", "")
			p.expect("!!")
			p.close()
		case p.at(".") && p.atN(2, "("):
			p.open(CallSuffix, "suffix", "")
			p.expect(".")
			p.ident("name")
			p.parseArgs("arguments")
			p.close()
		case p.at("."):
			p.open(FieldSuffix, "suffix", "")
			p.expect(".")
			p.ident("name")
			p.close()
		default:
			return
		}
	}
}

func (p *parser) parsePrimary(field string) {
	t, ok := p.peek()
	if !ok {
		p.fail("expected expression, found end of input")
	}
	switch {
	case t.text == "(" && t.tok == TokPunct:
		p.open(Paren, field, "")
		p.expect("(")
		p.parseExpr("expression")
		p.expect(")")
		p.close()
	case t.text == "initOf":
		p.open(InitOf, field, "")
		p.expect("initOf")
		p.ident("name")
		p.parseArgs("arguments")
		p.close()
	case t.text == "codeOf":
		p.open(CodeOf, field, "")
		p.expect("codeOf")
		p.ident("name")
		p.close()
	case t.tok == TokNumber || t.tok == TokString:
		p.open(Atom, field, "")
		p.bump(t.tok, "")
		p.close()
	case t.text == "true" || t.text == "false" || t.text == "null" || t.text == "self":
		p.open(Atom, field, "")
		p.bump(TokKeyword, "")
		p.close()
	case p.atIdent() && p.atN(1, "("):
		p.open(StaticCall, field, "")
		p.ident("name")
		p.parseArgs("arguments")
		p.close()
	case p.atIdent() && isTypeName(t.text) && p.atN(1, "{"):
		p.parseInstance(field)
	case p.atIdent():
		p.open(Atom, field, "")
		p.ident("")
		p.close()
	default:
		p.fail("expected expression, found %q", t.text)
	}
}

func (p *parser) parseInstance(field string) {
	p.open(Instance, field, "")
	defer p.close()
	p.ident("name")
	p.open(InstanceArgs, "arguments", "")
	defer p.close()
	p.expect("{")
	for !p.at("}") {
		p.open(InstanceArg, "", "")
		p.ident("name")
		if p.eat(":") {
			p.parseExpr("value")
		}
		p.close()
		if !p.eat(",") {
			break
		}
	}
	p.expect("}")
}

func (p *parser) parseArgs(field string) {
	p.open(ArgList, field, "")
	defer p.close()
	p.expect("(")
	for !p.at(")") {
		p.open(Arg, "", "")
		p.parseExpr("value")
		p.close()
		if !p.eat(",") {
			break
		}
	}
	p.expect(")")
}
