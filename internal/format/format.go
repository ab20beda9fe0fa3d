// Package format pretty-prints Tact source from its concrete syntax tree.
// Layout decisions are local: lists go one item per line when the source
// list already spanned lines, long binary chains wrap at the column of
// their first operand, and every comment is carried over.
package format

import (
	"fmt"

	"github.com/phobologic/tactguide/internal/cst"
)

// Formatter formats Tact source code.
type Formatter struct {
	// IndentString is the string used for one level of indentation.
	IndentString string
	// MaxLineWidth is the width past which binary chains wrap.
	MaxLineWidth int
}

// New creates a Formatter with the default settings.
func New() *Formatter {
	return &Formatter{
		IndentString: "    ",
		MaxLineWidth: 100,
	}
}

// ternaryWidth is the combined branch width above which a conditional
// expression is split over two lines.
const ternaryWidth = 70

// Format parses and reformats source. Parse errors are returned as
// *cst.ParseError.
func (f *Formatter) Format(source string) (string, error) {
	root, err := cst.Parse(source)
	if err != nil {
		return "", err
	}
	return f.FormatTree(cst.AttachDocs(cst.Simplify(root))), nil
}

// FormatResult contains the result of formatting a file.
type FormatResult struct {
	// Content is the formatted content.
	Content string
	// Changed indicates if the content was different from the original.
	Changed bool
}

// FormatWithResult formats the source and indicates if it changed.
func (f *Formatter) FormatWithResult(source string) (FormatResult, error) {
	formatted, err := f.Format(source)
	if err != nil {
		return FormatResult{}, err
	}
	return FormatResult{
		Content: formatted,
		Changed: formatted != source,
	}, nil
}

// FormatCode formats source, returning it unchanged when it does not parse.
func (f *Formatter) FormatCode(source string) string {
	out, err := f.Format(source)
	if err != nil {
		return source
	}
	return out
}

// FormatTree prints a simplified tree with docs attached.
func (f *Formatter) FormatTree(root *cst.Node) string {
	p := f.newPrinter(root)
	p.module(root)
	out := p.b.String()
	if out == "" {
		return ""
	}
	return out + "\n"
}

type printer struct {
	cfg  *Formatter
	b    *builder
	info map[*cst.Leaf]*trivia
	docs map[*cst.Node]*trivia
	eof  *trivia
	// omitSemi drops statement terminators inside a one-line block.
	omitSemi bool
}

func (f *Formatter) newPrinter(root *cst.Node) *printer {
	info, docs, eof := collectTrivia(root)
	return &printer{cfg: f, b: newBuilder(f.IndentString), info: info, docs: docs, eof: eof}
}

// measure renders fn with a scratch printer and returns the text.
func (p *printer) measure(fn func(q *printer)) string {
	q := &printer{cfg: p.cfg, b: newBuilder(p.cfg.IndentString), info: p.info, docs: p.docs, eof: &trivia{}}
	fn(q)
	return q.b.String()
}

// rule prints one node of a syntactic category.
type rule func(p *printer, n *cst.Node)

// Per-category dispatch tables, filled in init to break the reference
// cycle between the tables and the rules that recurse through them.
var (
	itemRules      map[cst.Kind]rule
	memberRules    map[cst.Kind]rule
	statementRules map[cst.Kind]rule
	exprRules      map[cst.Kind]rule
	typeRules      map[cst.Kind]rule
)

func init() {
	itemRules = map[cst.Kind]rule{
		cst.Contract:       (*printer).contract,
		cst.Trait:          (*printer).trait,
		cst.Struct:         (*printer).structDecl,
		cst.Message:        (*printer).message,
		cst.Primitive:      (*printer).primitive,
		cst.Function:       (*printer).function,
		cst.NativeFunction: (*printer).native,
		cst.AsmFunction:    (*printer).asm,
		cst.Constant:       (*printer).constant,
	}
	memberRules = map[cst.Kind]rule{
		cst.StorageVar:  (*printer).storageField,
		cst.Constant:    (*printer).constant,
		cst.Function:    (*printer).function,
		cst.AsmFunction: (*printer).asm,
		cst.Init:        (*printer).initFn,
		cst.Receiver:    (*printer).receiver,
	}
	statementRules = map[cst.Kind]rule{
		cst.Let:      (*printer).let,
		cst.Destruct: (*printer).destruct,
		cst.Return:   (*printer).ret,
		cst.Block:    (*printer).block,
		cst.If:       (*printer).ifStmt,
		cst.While:    (*printer).loop,
		cst.Repeat:   (*printer).loop,
		cst.DoUntil:  (*printer).doUntil,
		cst.Try:      (*printer).try,
		cst.Foreach:  (*printer).foreach,
		cst.Assign:   (*printer).assign,
		cst.ExprStmt: (*printer).exprStmt,
	}
	exprRules = map[cst.Kind]rule{
		cst.Ternary:    (*printer).ternary,
		cst.Binary:     (*printer).binary,
		cst.Unary:      (*printer).unary,
		cst.Suffix:     (*printer).suffix,
		cst.StaticCall: (*printer).staticCall,
		cst.Paren:      (*printer).paren,
		cst.Instance:   (*printer).instance,
		cst.InitOf:     (*printer).initOf,
		cst.CodeOf:     (*printer).codeOf,
		cst.Atom:       (*printer).atom,
	}
	typeRules = map[cst.Kind]rule{
		cst.TypeName:    (*printer).typeName,
		cst.MapType:     (*printer).mapType,
		cst.BouncedType: (*printer).bouncedType,
	}
}

func dispatch(table map[cst.Kind]rule, category string, p *printer, c cst.Cst) {
	switch c := c.(type) {
	case *cst.Node:
		r, ok := table[c.Kind]
		if !ok {
			if c.Kind == cst.Error {
				p.verbatim(c)
				return
			}
			panic(fmt.Sprintf("format: no %s rule for %s", category, c.Kind))
		}
		r(p, c)
	case *cst.Leaf:
		p.tok(c)
	}
}

func (p *printer) item(c cst.Cst)      { dispatch(itemRules, "item", p, c) }
func (p *printer) member(c cst.Cst)    { dispatch(memberRules, "member", p, c) }
func (p *printer) statement(c cst.Cst) { dispatch(statementRules, "statement", p, c) }
func (p *printer) expr(c cst.Cst)      { dispatch(exprRules, "expression", p, c) }
func (p *printer) typ(c cst.Cst)       { dispatch(typeRules, "type", p, c) }

// verbatim prints the tokens of n separated by single spaces. Only error
// nodes from tolerant parsing reach it.
func (p *printer) verbatim(n *cst.Node) {
	cst.Leaves(n, func(l *cst.Leaf) {
		if l.Kind == cst.Token {
			p.b.space()
			p.tok(l)
		}
	})
}

func (p *printer) module(root *cst.Node) {
	var prev *cst.Node
	for _, n := range root.Nodes() {
		if prev != nil {
			switch {
			case prev.Kind == cst.Import && n.Kind == cst.Import:
				p.b.newline()
			case prev.Kind == cst.Import || p.gap(n) > 1:
				p.b.blankLine()
			default:
				p.b.newline()
			}
		}
		if n.Kind == cst.Import {
			p.importDecl(n)
		} else {
			p.item(n)
		}
		prev = n
	}
	for i, c := range p.eof.leading {
		switch {
		case prev == nil && i == 0:
		case c.nl > 1:
			p.b.blankLine()
		default:
			p.b.newline()
		}
		p.b.add(c.text)
		if c.line() {
			p.b.newline()
		}
	}
}

func (p *printer) importDecl(n *cst.Node) {
	p.keyword(n, "import")
	p.b.space()
	p.field(n, "library")
	p.semicolon(n, true)
}

// keyword prints the direct token child of n with the given text.
func (p *printer) keyword(n *cst.Node, text string) {
	if i := n.TokenIndex(text); i >= 0 {
		p.tok(n.Children[i].(*cst.Leaf))
	}
}

// token returns the direct token child of n with the given text, or nil.
func token(n *cst.Node, text string) *cst.Leaf {
	if i := n.TokenIndex(text); i >= 0 {
		return n.Children[i].(*cst.Leaf)
	}
	return nil
}

// field prints the child tagged name, whatever its category.
func (p *printer) field(n *cst.Node, name string) {
	switch c := n.FieldOf(name).(type) {
	case *cst.Leaf:
		p.tok(c)
	case *cst.Node:
		switch {
		case c.Group == cst.GroupType:
			p.typ(c)
		default:
			p.expr(c)
		}
	}
}

// semicolon prints the node's ';' or adds one when want is set.
func (p *printer) semicolon(n *cst.Node, want bool) {
	l := token(n, ";")
	switch {
	case want:
		p.sep(l, ";")
	case l != nil:
		p.emit(l, "")
	}
}
