package cst

import "strings"

// token is one lexeme. Trivia tokens have kind Space or Comment.
type token struct {
	leaf  LeafKind
	tok   TokKind
	text  string
	start int
}

func (t token) end() int { return t.start + len(t.text) }

// puncts is ordered longest first so the scanner takes maximal munch.
var puncts = []string{
	"<<=", ">>=", "||=", "&&=",
	"!!", "==", "!=", "<=", ">=", "<<", ">>", "&&", "||",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "->", "..",
	"+", "-", "*", "/", "%", "<", ">", "=", "!", "~", "&", "|", "^",
	"?", ":", ";", ",", ".", "(", ")", "{", "}", "[", "]", "@",
}

func isIdentStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// scan returns the lexeme starting at pos. ok is false at end of input or
// on a byte no rule accepts.
func scan(src string, pos int) (token, bool) {
	if pos >= len(src) {
		return token{}, false
	}
	c := src[pos]
	switch {
	case c == ' ' || c == '\t' || c == '\n' || c == '\r':
		end := pos
		for end < len(src) && strings.IndexByte(" \t\n\r", src[end]) >= 0 {
			end++
		}
		return token{leaf: Space, text: src[pos:end], start: pos}, true
	case strings.HasPrefix(src[pos:], "//"):
		end := strings.IndexByte(src[pos:], '\n')
		if end < 0 {
			end = len(src) - pos
		}
		text := strings.TrimSuffix(src[pos:pos+end], "\r")
		return token{leaf: Comment, text: text, start: pos}, true
	case strings.HasPrefix(src[pos:], "/*"):
		end := strings.Index(src[pos+2:], "*/")
		if end < 0 {
			return token{}, false
		}
		return token{leaf: Comment, text: src[pos : pos+2+end+2], start: pos}, true
	case isIdentStart(c):
		end := pos + 1
		for end < len(src) && isIdentPart(src[end]) {
			end++
		}
		return token{leaf: Token, tok: TokIdent, text: src[pos:end], start: pos}, true
	case isDigit(c):
		end := pos + 1
		for end < len(src) && (isIdentPart(src[end])) {
			end++
		}
		return token{leaf: Token, tok: TokNumber, text: src[pos:end], start: pos}, true
	case c == '"':
		end := pos + 1
		for end < len(src) && src[end] != '"' && src[end] != '\n' {
			if src[end] == '\\' {
				end++
			}
			end++
		}
		if end >= len(src) || src[end] != '"' {
			return token{}, false
		}
		return token{leaf: Token, tok: TokString, text: src[pos : end+1], start: pos}, true
	}
	for _, p := range puncts {
		if strings.HasPrefix(src[pos:], p) {
			return token{leaf: Token, tok: TokPunct, text: p, start: pos}, true
		}
	}
	return token{}, false
}

// scanRawBlock returns the text from pos up to, not including, the brace
// that closes an already opened '{'. Nested braces are balanced.
func scanRawBlock(src string, pos int) (string, bool) {
	depth := 0
	for i := pos; i < len(src); i++ {
		switch src[i] {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return src[pos:i], true
			}
			depth--
		}
	}
	return "", false
}
