package cst

import "unicode"

var funAttrs = map[string]bool{
	"get": true, "mutates": true, "extends": true, "virtual": true,
	"override": true, "inline": true, "abstract": true,
}

func (p *parser) parseModule() *Node {
	p.stack = []*Node{{Kind: Module}}
	for !p.atEOF() {
		if p.at("import") {
			p.guard(GroupItem, p.parseImport)
			continue
		}
		p.guard(GroupItem, p.parseItem)
	}
	for {
		t, ok := scan(p.src, p.pos)
		if !ok {
			break
		}
		p.pos = t.end()
		p.pending = append(p.pending, &Leaf{Kind: t.leaf, Text: t.text, Start: t.start})
	}
	p.flush()
	return p.stack[0]
}

func (p *parser) parseImport() {
	p.open(Import, "", GroupItem)
	defer p.close()
	p.expect("import")
	if !p.atKind(TokString) {
		p.fail("expected import path")
	}
	p.bump(TokString, "library")
	p.semi()
}

// declKeyword looks past function and constant modifiers and returns the
// first token that decides what kind of declaration follows.
func (p *parser) declKeyword() string {
	n := 0
	for {
		t, ok := p.peekAt(n)
		if !ok {
			return ""
		}
		if t.text == "get" && p.atN(n+1, "(") {
			n += 2
			depth := 1
			for depth > 0 {
				t, ok := p.peekAt(n)
				if !ok {
					return ""
				}
				switch t.text {
				case "(":
					depth++
				case ")":
					depth--
				}
				n++
			}
			continue
		}
		if funAttrs[t.text] && !p.atN(n+1, ":") {
			n++
			continue
		}
		return t.text
	}
}

func (p *parser) parseItem() {
	switch {
	case p.at("@") && p.atN(1, "name"):
		p.parseNative()
	case p.at("@") || p.at("contract"):
		p.parseContract()
	case p.at("trait"):
		p.parseTrait()
	case p.at("struct"):
		p.parseStruct()
	case p.at("message"):
		p.parseMessage()
	case p.at("primitive"):
		p.parsePrimitive()
	case p.at("asm"):
		p.parseAsm(GroupItem)
	default:
		switch p.declKeyword() {
		case "fun":
			p.parseFunction(GroupItem)
		case "const":
			p.parseConstant(GroupItem)
		default:
			t, _ := p.peek()
			p.fail("unexpected %q at top level", t.text)
		}
	}
}

func (p *parser) parseContract() {
	p.open(Contract, "", GroupItem)
	defer p.close()
	for p.at("@") {
		p.open(ContractAttr, "attributes", "")
		p.expect("@")
		p.bump(TokKeyword, "")
		p.expect("(")
		if !p.atKind(TokString) {
			p.fail("expected string")
		}
		p.bump(TokString, "value")
		p.expect(")")
		p.close()
	}
	p.expect("contract")
	p.ident("name")
	if p.at("(") {
		p.parseParams("parameters")
	}
	if p.at("with") {
		p.parseTraitList()
	}
	p.parseContractBody()
}

func (p *parser) parseTrait() {
	p.open(Trait, "", GroupItem)
	defer p.close()
	p.expect("trait")
	p.ident("name")
	if p.at("with") {
		p.parseTraitList()
	}
	p.parseContractBody()
}

func (p *parser) parseTraitList() {
	p.open(TraitList, "traits", "")
	defer p.close()
	p.expect("with")
	p.ident("trait")
	for p.eat(",") {
		if !p.atIdent() {
			break
		}
		p.ident("trait")
	}
}

func (p *parser) closeBrace() {
	if p.tolerant && p.atEOF() {
		return
	}
	p.expect("}")
}

func (p *parser) parseContractBody() {
	p.open(ContractBody, "body", "")
	defer p.close()
	p.expect("{")
	for !p.at("}") && !p.atEOF() {
		p.guard(GroupMember, p.parseMember)
	}
	p.closeBrace()
}

func (p *parser) parseMember() {
	switch kw := p.declKeyword(); {
	case kw == "fun":
		p.parseFunction(GroupMember)
	case kw == "const":
		p.parseConstant(GroupMember)
	case p.at("asm"):
		p.parseAsm(GroupMember)
	case p.at("init") && p.atN(1, "("):
		p.open(Init, "", GroupMember)
		p.expect("init")
		p.parseParams("parameters")
		p.parseBlock("body", "")
		p.close()
	case p.at("receive") || p.at("external") || p.at("bounced") && p.atN(1, "("):
		p.parseReceiver()
	case p.atIdent() && p.atN(1, ":"):
		p.open(StorageVar, "", GroupMember)
		p.parseFieldTail()
		p.close()
	default:
		t, _ := p.peek()
		p.fail("unexpected %q in declaration body", t.text)
	}
}

func (p *parser) parseReceiver() {
	p.open(Receiver, "", GroupMember)
	defer p.close()
	p.bump(TokKeyword, "kind")
	p.expect("(")
	switch {
	case p.atKind(TokString):
		p.bump(TokString, "parameter")
	case !p.at(")"):
		p.parseParam("parameter")
	}
	p.expect(")")
	p.parseBlock("body", "")
}

// parseFieldTail parses `name: Type as tlb = value;` into the open node.
func (p *parser) parseFieldTail() {
	p.ident("name")
	p.expect(":")
	p.parseType("type")
	if p.at("as") {
		p.parseTlb("tlb")
	}
	if p.eat("=") {
		p.parseExpr("value")
	}
	p.semi()
}

func (p *parser) parseFunAttrs() {
	for {
		t, ok := p.peek()
		if !ok || !funAttrs[t.text] {
			return
		}
		if t.text == "get" && p.atN(1, "(") {
			p.open(GetAttr, "attribute", "")
			p.bump(TokKeyword, "")
			p.expect("(")
			p.parseExpr("value")
			p.expect(")")
			p.close()
			continue
		}
		p.bump(TokKeyword, "attribute")
	}
}

func (p *parser) parseSignature() {
	p.ident("name")
	p.parseParams("parameters")
	if p.eat(":") {
		p.parseType("result")
	}
}

func (p *parser) parseFunction(group string) {
	p.open(Function, "", group)
	defer p.close()
	p.parseFunAttrs()
	p.expect("fun")
	p.parseSignature()
	if p.at("{") {
		p.parseBlock("body", "")
		return
	}
	p.semi()
}

func (p *parser) parseNative() {
	p.open(NativeFunction, "", GroupItem)
	defer p.close()
	p.expect("@")
	p.expect("name")
	p.expect("(")
	p.rawUntil(')', "func_name")
	p.expect(")")
	p.parseFunAttrs()
	p.expect("native")
	p.parseSignature()
	p.semi()
}

func (p *parser) parseAsm(group string) {
	p.open(AsmFunction, "", group)
	defer p.close()
	p.expect("asm")
	if p.at("(") {
		p.open(AsmArrangement, "arrangement", "")
		p.expect("(")
		for p.atIdent() {
			p.ident("argument")
		}
		if p.eat("->") {
			for p.atKind(TokNumber) {
				p.bump(TokNumber, "return")
			}
		}
		p.expect(")")
		p.close()
	}
	p.parseFunAttrs()
	p.expect("fun")
	p.parseSignature()
	p.expect("{")
	p.raw("body")
	p.expect("}")
}

func (p *parser) parseConstant(group string) {
	p.open(Constant, "", group)
	defer p.close()
	for {
		t, ok := p.peek()
		if !ok || t.text == "const" || !funAttrs[t.text] {
			break
		}
		p.bump(TokKeyword, "attribute")
	}
	p.expect("const")
	p.ident("name")
	if p.eat(":") {
		p.parseType("type")
	}
	if p.eat("=") {
		p.parseExpr("value")
	}
	p.semi()
}

func (p *parser) parseStruct() {
	p.open(Struct, "", GroupItem)
	defer p.close()
	p.expect("struct")
	p.ident("name")
	p.parseStructBody()
}

func (p *parser) parseMessage() {
	p.open(Message, "", GroupItem)
	defer p.close()
	p.expect("message")
	if p.at("(") {
		p.open(MessageValue, "value", "")
		p.expect("(")
		p.parseExpr("expression")
		p.expect(")")
		p.close()
	}
	p.ident("name")
	p.parseStructBody()
}

func (p *parser) parseStructBody() {
	p.open(StructBody, "body", "")
	defer p.close()
	p.expect("{")
	for !p.at("}") && !p.atEOF() {
		p.guard(GroupMember, func() {
			p.open(Field, "", GroupMember)
			defer p.close()
			p.parseFieldTail()
		})
	}
	p.closeBrace()
}

func (p *parser) parsePrimitive() {
	p.open(Primitive, "", GroupItem)
	defer p.close()
	p.expect("primitive")
	p.ident("type")
	p.semi()
}

func (p *parser) parseParams(field string) {
	p.open(ParamList, field, "")
	defer p.close()
	p.expect("(")
	for !p.at(")") {
		p.parseParam("")
		if !p.eat(",") {
			break
		}
	}
	p.expect(")")
}

func (p *parser) parseParam(field string) {
	p.open(Param, field, "")
	defer p.close()
	if p.at("self") {
		p.bump(TokKeyword, "name")
	} else {
		p.ident("name")
	}
	p.expect(":")
	p.parseType("type")
	if p.at("as") {
		p.parseTlb("tlb")
	}
}

func (p *parser) parseTlb(field string) {
	p.open(TlbAs, field, "")
	defer p.close()
	p.expect("as")
	p.ident("type")
}

func (p *parser) parseType(field string) {
	switch {
	case p.at("map") && p.atN(1, "<"):
		p.open(MapType, field, GroupType)
		p.bump(TokKeyword, "")
		p.expect("<")
		p.parseType("key")
		if p.at("as") {
			p.parseTlb("tlb_key")
		}
		p.expect(",")
		p.parseType("value")
		if p.at("as") {
			p.parseTlb("tlb_value")
		}
		p.expect(">")
		p.close()
	case p.at("bounced") && p.atN(1, "<"):
		p.open(BouncedType, field, GroupType)
		p.bump(TokKeyword, "")
		p.expect("<")
		p.ident("message")
		p.expect(">")
		p.close()
	default:
		p.open(TypeName, field, GroupType)
		p.ident("name")
		p.eat("?")
		p.close()
	}
}

// rawUntil consumes everything up to the next stop byte as one leaf.
func (p *parser) rawUntil(stop byte, field string) {
	p.skipTrivia()
	end := p.pos
	for end < len(p.src) && p.src[end] != stop {
		end++
	}
	for end > p.pos && isSpace(p.src[end-1]) {
		end--
	}
	if end == p.pos || end == len(p.src) {
		p.fail("expected name")
	}
	top := p.top()
	top.Children = append(top.Children, &Leaf{Kind: Token, Tok: TokRaw, Text: p.src[p.pos:end], Start: p.pos, Field: field})
	p.pos = end
}

func isTypeName(name string) bool {
	for _, r := range name {
		return unicode.IsUpper(r)
	}
	return false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// skipTrivia moves whitespace and comments at the current position into
// the open node.
func (p *parser) skipTrivia() {
	for {
		t, ok := scan(p.src, p.pos)
		if !ok || t.leaf == Token {
			break
		}
		p.pos = t.end()
		p.pending = append(p.pending, &Leaf{Kind: t.leaf, Text: t.text, Start: t.start})
	}
	p.flush()
}
