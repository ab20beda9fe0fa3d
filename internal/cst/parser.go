package cst

import (
	"fmt"
	"strings"
)

// ParseError reports where parsing stopped.
type ParseError struct {
	Offset int
	Line   int // 1-based
	Column int // 1-based, bytes
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Msg)
}

// bailout unwinds the parser to the nearest recovery point.
type bailout struct{ err *ParseError }

type parser struct {
	src      string
	pos      int
	pending  []*Leaf
	stack    []*Node
	tolerant bool
}

// Parse parses a complete Tact source file. Any syntax error fails the
// whole parse.
func Parse(src string) (root *Node, err error) {
	p := &parser{src: src}
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			root, err = nil, b.err
		}
	}()
	return p.parseModule(), nil
}

// ParseTolerant parses src, wrapping unparsable items and statements in
// Error nodes. It never fails and the result is still lossless.
func ParseTolerant(src string) *Node {
	p := &parser{src: src, tolerant: true}
	return p.parseModule()
}

func (p *parser) errorAt(offset int, format string, args ...any) *ParseError {
	line, col := 1, 1
	for i := 0; i < offset && i < len(p.src); i++ {
		if p.src[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return &ParseError{Offset: offset, Line: line, Column: col, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) fail(format string, args ...any) {
	t, _ := p.peek()
	panic(bailout{p.errorAt(t.start, format, args...)})
}

// peekAt returns the n-th significant token from the current position
// without consuming anything.
func (p *parser) peekAt(n int) (token, bool) {
	pos := p.pos
	for {
		t, ok := scan(p.src, pos)
		if !ok {
			return token{start: pos}, false
		}
		pos = t.end()
		if t.leaf != Token {
			continue
		}
		if n == 0 {
			return t, true
		}
		n--
	}
}

func (p *parser) peek() (token, bool) { return p.peekAt(0) }

// at reports whether the next token's text is text.
func (p *parser) at(text string) bool {
	t, ok := p.peek()
	return ok && t.text == text && t.tok != TokString
}

func (p *parser) atN(n int, text string) bool {
	t, ok := p.peekAt(n)
	return ok && t.text == text && t.tok != TokString
}

func (p *parser) atKind(k TokKind) bool {
	t, ok := p.peek()
	return ok && t.tok == k
}

func (p *parser) atEOF() bool {
	_, ok := p.peek()
	if ok {
		return false
	}
	// Distinguish a clean end of input from an unscannable byte.
	pos := p.pos
	for {
		t, ok := scan(p.src, pos)
		if !ok {
			return pos >= len(p.src)
		}
		pos = t.end()
	}
}

func (p *parser) top() *Node { return p.stack[len(p.stack)-1] }

// flush moves pending trivia into the innermost open node.
func (p *parser) flush() {
	if len(p.pending) == 0 {
		return
	}
	top := p.top()
	for _, l := range p.pending {
		top.Children = append(top.Children, l)
	}
	p.pending = p.pending[:0]
}

func (p *parser) open(k Kind, field, group string) {
	if len(p.stack) > 0 {
		p.flush()
	}
	p.stack = append(p.stack, &Node{Kind: k, Field: field, Group: group})
}

func (p *parser) close() *Node {
	n := p.top()
	p.stack = p.stack[:len(p.stack)-1]
	if len(p.stack) > 0 {
		top := p.top()
		top.Children = append(top.Children, n)
	}
	return n
}

// bump consumes the next significant token, recording preceding trivia.
func (p *parser) bump(tok TokKind, field string) *Leaf {
	for {
		t, ok := scan(p.src, p.pos)
		if !ok {
			p.fail("unexpected end of input")
		}
		p.pos = t.end()
		if t.leaf != Token {
			p.pending = append(p.pending, &Leaf{Kind: t.leaf, Text: t.text, Start: t.start})
			continue
		}
		p.flush()
		if t.tok == TokIdent && tok == TokKeyword {
			t.tok = TokKeyword
		}
		l := &Leaf{Kind: Token, Tok: t.tok, Text: t.text, Start: t.start, Field: field}
		top := p.top()
		top.Children = append(top.Children, l)
		return l
	}
}

// expect consumes a punctuation or keyword token with the given text.
func (p *parser) expect(text string) *Leaf {
	if !p.at(text) {
		t, ok := p.peek()
		if !ok {
			p.fail("expected %q, found end of input", text)
		}
		p.fail("expected %q, found %q", text, t.text)
	}
	if isIdentStart(text[0]) {
		return p.bump(TokKeyword, "")
	}
	return p.bump(TokPunct, "")
}

// eat consumes text if it is next.
func (p *parser) eat(text string) bool {
	if p.at(text) {
		p.expect(text)
		return true
	}
	return false
}

func (p *parser) ident(field string) *Leaf {
	t, ok := p.peek()
	if !ok || t.tok != TokIdent || reserved[t.text] {
		p.fail("expected identifier, found %q", t.text)
	}
	return p.bump(TokIdent, field)
}

func (p *parser) atIdent() bool {
	t, ok := p.peek()
	return ok && t.tok == TokIdent && !reserved[t.text]
}

// semi consumes a statement terminator. The terminator may be left out
// right before a closing brace, and anywhere in tolerant mode.
func (p *parser) semi() {
	if p.eat(";") || p.at("}") || p.tolerant {
		return
	}
	p.expect(";")
}

// raw consumes the body of an asm function as a single leaf.
func (p *parser) raw(field string) {
	p.flush()
	text, ok := scanRawBlock(p.src, p.pos)
	if !ok {
		p.fail("unterminated asm body")
	}
	if text == "" {
		return
	}
	l := &Leaf{Kind: Token, Tok: TokRaw, Text: text, Start: p.pos, Field: field}
	p.pos += len(text)
	top := p.top()
	top.Children = append(top.Children, l)
}

type snapshot struct {
	pos      int
	depth    int
	children int
}

func (p *parser) save() snapshot {
	return snapshot{pos: p.pos, depth: len(p.stack), children: len(p.top().Children)}
}

func (p *parser) restore(s snapshot) {
	p.pos = s.pos
	p.stack = p.stack[:s.depth]
	top := p.top()
	top.Children = top.Children[:s.children]
}

// guard runs parse, and in tolerant mode turns a failure into an Error
// node covering the tokens up to the next synchronization point.
func (p *parser) guard(group string, parse func()) {
	if !p.tolerant {
		parse()
		return
	}
	s := p.save()
	pending := append([]*Leaf(nil), p.pending...)
	failed := func() (failed bool) {
		defer func() {
			if r := recover(); r != nil {
				if _, ok := r.(bailout); !ok {
					panic(r)
				}
				failed = true
			}
		}()
		parse()
		return false
	}()
	if !failed {
		return
	}
	p.restore(s)
	p.pending = append(p.pending[:0], pending...)
	p.skipToSync(group)
}

func (p *parser) skipToSync(group string) {
	p.open(Error, "", group)
	defer p.close()
	depth := 0
	for i := 0; ; i++ {
		t, ok := p.peek()
		if !ok {
			if !p.atEOF() {
				p.skipBadByte()
				continue
			}
			return
		}
		if depth == 0 && i > 0 && (t.text == "}" || t.tok == TokIdent && syncKeywords[group][t.text]) {
			return
		}
		tok := t.tok
		if tok == TokIdent && reserved[t.text] {
			tok = TokKeyword
		}
		p.bump(tok, "")
		switch t.text {
		case "{":
			depth++
		case "}":
			depth--
			if depth <= 0 {
				return
			}
		case ";":
			if depth == 0 {
				return
			}
		}
	}
}

// skipBadByte consumes one unscannable byte as a raw token.
func (p *parser) skipBadByte() {
	for {
		t, ok := scan(p.src, p.pos)
		if !ok {
			break
		}
		p.pos = t.end()
		p.pending = append(p.pending, &Leaf{Kind: t.leaf, Text: t.text, Start: t.start})
	}
	p.flush()
	end := p.pos + 1
	if strings.HasPrefix(p.src[p.pos:], "/*") || p.src[p.pos] == '"' {
		end = len(p.src)
	}
	top := p.top()
	top.Children = append(top.Children, &Leaf{Kind: Token, Tok: TokRaw, Text: p.src[p.pos:end], Start: p.pos})
	p.pos = end
}

// syncKeywords start a fresh construct of the given group; recovery stops
// in front of them.
var syncKeywords = map[string]map[string]bool{
	GroupStatement: {
		"let": true, "return": true, "if": true, "while": true, "repeat": true,
		"do": true, "try": true, "foreach": true,
	},
	GroupMember: {
		"fun": true, "const": true, "init": true, "receive": true,
		"external": true, "get": true, "asm": true,
	},
	GroupItem: {
		"import": true, "contract": true, "trait": true, "struct": true,
		"message": true, "fun": true, "const": true, "primitive": true,
		"asm": true,
	},
}

var reserved = map[string]bool{
	"fun": true, "let": true, "return": true, "if": true, "else": true,
	"while": true, "repeat": true, "do": true, "until": true, "try": true,
	"catch": true, "foreach": true, "contract": true, "trait": true,
	"struct": true, "message": true, "import": true, "with": true,
	"receive": true, "external": true, "primitive": true,
	"const": true, "native": true, "asm": true, "initOf": true,
	"codeOf": true, "extends": true, "mutates": true, "virtual": true,
	"override": true, "inline": true, "abstract": true, "true": true,
	"false": true, "null": true, "self": true,
}

// IsReserved reports whether word cannot be used as an identifier.
func IsReserved(word string) bool {
	return reserved[word]
}
