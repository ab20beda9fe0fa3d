// Package completion computes completion items at a cursor position.
package completion

import (
	"path/filepath"
	"sort"
	"strings"

	"fortio.org/safecast"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/zeebo/xxh3"

	"github.com/phobologic/tactguide/internal/log"
	"github.com/phobologic/tactguide/internal/parse"
	"github.com/phobologic/tactguide/internal/psi"
	"github.com/phobologic/tactguide/internal/resolve"
	"github.com/phobologic/tactguide/internal/syntax"
)

// Dummy is inserted at the cursor so that the reparsed tree has a node
// there even when nothing has been typed yet.
const Dummy = "DummyIdentifier"

// Sort groups, lowest first.
const (
	sortContext = "0"
	sortMember  = "1"
	sortEntity  = "2"
	sortType    = "3"
	sortKeyword = "4"
	sortSnippet = "5"
)

type provider struct {
	available func(*Context) bool
	add       func(*collector)
}

var providers = []provider{
	{func(c *Context) bool { return c.InNameOfFieldInit }, (*collector).instanceFields},
	{(*Context).references, (*collector).references},
	{func(c *Context) bool { return c.Expression() && c.InsideStorage }, (*collector).self},
	{func(c *Context) bool { return c.IsStatement }, (*collector).ret},
	{(*Context).Expression, (*collector).keywords},
	{(*Context).statementStart, (*collector).statementSnippets},
	{func(c *Context) bool { return c.TopLevel }, (*collector).topLevel},
	{func(c *Context) bool { return c.TopLevelInStorage }, (*collector).members},
	{func(c *Context) bool { return c.InTlb }, (*collector).tlb},
	{func(c *Context) bool { return c.InImport }, (*collector).importPaths},
}

func (c *Context) references() bool {
	return !c.declarationLevel() && !c.InTlb && !c.InImport && !c.InParameter &&
		(c.Element.Type() == "identifier" || c.Element.Type() == "type_identifier")
}

func (c *Context) statementStart() bool {
	return c.IsStatement && !c.AfterDot
}

// Complete returns the completion items for the cursor at byte offset in
// f. Items are unique by label; the first provider to offer a label wins.
func Complete(s *resolve.Session, f *psi.File, offset int) []protocol.CompletionItem {
	src := f.Tree.Source
	if offset < 0 || offset > len(src) {
		return nil
	}
	text := make([]byte, 0, len(src)+len(Dummy))
	text = append(text, src[:offset]...)
	text = append(text, Dummy...)
	text = append(text, src[offset:]...)

	tree := parse.Source(text, xxh3.Hash(text))
	file := psi.NewFile(f.URI, tree)
	el := psi.Wrap(nodeAt(tree, offset+len(Dummy)-1), file)

	c := &collector{
		s:    s,
		ctx:  newContext(el, text, offset),
		file: f,
		seen: make(map[string]bool),
	}
	for _, p := range providers {
		if p.available(c.ctx) {
			p.add(c)
		}
	}
	log.Debug("completion at %s:%d: %d items (%s)", f.URI, offset, len(c.items), el.Type())
	return c.items
}

// nodeAt returns the deepest node at offset, the root when offset does
// not fit a tree position.
func nodeAt(tree *syntax.Tree, offset int) syntax.Node {
	at, err := safecast.Conv[uint32](offset)
	if err != nil {
		return tree.Root
	}
	return syntax.NodeAt(tree.Root, at)
}

type collector struct {
	s     *resolve.Session
	ctx   *Context
	file  *psi.File
	items []protocol.CompletionItem
	seen  map[string]bool
}

func (c *collector) add(it protocol.CompletionItem) {
	if c.seen[it.Label] {
		return
	}
	c.seen[it.Label] = true
	c.items = append(c.items, it)
}

func item(label string, kind protocol.CompletionItemKind, group string) protocol.CompletionItem {
	return protocol.CompletionItem{
		Label:    label,
		Kind:     &kind,
		SortText: ptr(group + label),
	}
}

func snippet(label, insert string, kind protocol.CompletionItemKind, group string) protocol.CompletionItem {
	it := item(label, kind, group)
	it.InsertText = ptr(insert)
	format := protocol.InsertTextFormatSnippet
	it.InsertTextFormat = &format
	return it
}

func ptr[T any](v T) *T { return &v }

func (c *collector) references() {
	c.s.ProcessVariants(c.ctx.Element, resolve.State{Completion: true}, func(d psi.Decl, st resolve.State) syntax.Action {
		if it, ok := c.declItem(d, st); ok {
			c.add(it)
		}
		return syntax.Continue
	})
}

// declItem renders a resolver candidate, reporting false for candidates
// that make no sense at the cursor.
func (c *collector) declItem(d psi.Decl, st resolve.State) (protocol.CompletionItem, bool) {
	name := d.Name()
	if name == "" || strings.HasSuffix(name, Dummy) || name == "AnyStruct" || name == "AnyMessage" {
		return protocol.CompletionItem{}, false
	}
	ctx := c.ctx
	valuePos := !ctx.IsType && !ctx.InTraitList
	if ctx.InNameOfFieldInit {
		// Foo { name } is shorthand for a local of the same name.
		if _, ok := d.(*psi.Var); !ok {
			return protocol.CompletionItem{}, false
		}
	}
	switch d := d.(type) {
	case *psi.Fun:
		if !valuePos {
			break
		}
		prefix := st.Prefix
		if d.Owner() == nil && !d.WithSelf() {
			prefix = ""
		}
		kind := protocol.CompletionItemKindFunction
		if d.Owner() != nil || d.WithSelf() {
			kind = protocol.CompletionItemKindMethod
		}
		it := snippet(prefix+name, prefix+callText(d, ctx), kind, sortMember)
		if prefix == "" && !ctx.AfterDot {
			it.SortText = ptr(sortEntity + name)
		}
		it.Detail = ptr(d.Signature())
		return it, true
	case *psi.Constant:
		if !valuePos {
			break
		}
		prefix := st.Prefix
		if d.Owner() == nil {
			prefix = ""
		}
		it := item(prefix+name, protocol.CompletionItemKindConstant, sortMember)
		detail := ""
		if t := d.TypeNode(); !t.IsNil() {
			detail = ": " + psi.TypeText(t)
		}
		if v := d.Value(); !v.IsNil() {
			detail += " = " + v.Content()
		}
		it.Detail = ptr(detail)
		return it, true
	case *psi.Field:
		if !valuePos {
			break
		}
		it := item(st.Prefix+name, protocol.CompletionItemKindField, sortMember)
		it.Detail = ptr(": " + psi.TypeText(d.TypeNode()))
		return it, true
	case *psi.Var:
		if !valuePos {
			break
		}
		it := item(name, protocol.CompletionItemKindVariable, sortContext)
		if t := c.s.TypeOfDecl(d); t != nil {
			it.Detail = ptr(": " + t.Name())
		}
		return it, true
	case *psi.Struct, *psi.Message:
		if ctx.InTraitList {
			break
		}
		if ctx.IsType {
			return item(name, protocol.CompletionItemKindStruct, sortType), true
		}
		return snippet(name, name+"{$1}$0", protocol.CompletionItemKindStruct, sortType), true
	case *psi.Trait:
		if name == "BaseTrait" || !ctx.IsType && !ctx.InTraitList {
			break
		}
		return item(name, protocol.CompletionItemKindInterface, sortType), true
	case *psi.Primitive:
		if !ctx.IsType || ctx.InTraitList {
			break
		}
		return item(name, protocol.CompletionItemKindClass, sortType), true
	}
	return protocol.CompletionItem{}, false
}

// callText is the snippet inserted for a call of f.
func callText(f *psi.Fun, ctx *Context) string {
	if ctx.BeforeParen {
		return f.Name()
	}
	params := len(f.Parameters())
	if f.WithSelf() {
		params--
	}
	text := f.Name() + "()"
	if params > 0 {
		text = f.Name() + "($1)"
	}
	if ctx.IsStatement && !ctx.BeforeSemicolon {
		text += "$2;$0"
	}
	return text
}

// instanceFields offers the fields of the struct being instantiated that
// have no initializer yet.
func (c *collector) instanceFields() {
	el := c.ctx.Element
	inst := psi.Wrap(syntax.ParentOfType(el.Node, "instance_expression"), el.File)
	if inst.IsNil() {
		return
	}
	owner, ok := c.s.Resolve(inst.Field("name")).(psi.FieldsOwner)
	if !ok {
		return
	}
	given := make(map[string]bool)
	if args := inst.ChildByFieldName("arguments"); args != nil {
		for _, a := range syntax.ChildrenOfType(args, "instance_argument") {
			if n := a.ChildByFieldName("name"); n != nil && !syntax.Equal(n, el.Node) {
				given[n.Content()] = true
			}
		}
	}
	suffix := ": $1"
	if c.ctx.InMultilineStructInit {
		suffix += ","
	}
	for _, f := range owner.Fields() {
		if given[f.Name()] {
			continue
		}
		it := snippet(f.Name(), f.Name()+suffix, protocol.CompletionItemKindField, sortContext)
		it.Detail = ptr(": " + psi.TypeText(f.TypeNode()))
		c.add(it)
	}
}

func (c *collector) self() {
	c.add(item("self", protocol.CompletionItemKindKeyword, sortKeyword))
}

func (c *collector) ret() {
	fn := psi.Wrap(syntax.ParentOfType(c.ctx.Element.Node, "global_function", "storage_function"), c.ctx.Element.File)
	if fn.IsNil() {
		return
	}
	if fn.Field("result").IsNil() {
		c.add(snippet("return", "return;", protocol.CompletionItemKindKeyword, sortKeyword))
		return
	}
	c.add(snippet("return", "return $0;", protocol.CompletionItemKindKeyword, sortKeyword))
}

func (c *collector) keywords() {
	for _, kw := range []string{"true", "false", "null"} {
		c.add(item(kw, protocol.CompletionItemKindKeyword, sortKeyword))
	}
}

var statementSnippets = []struct{ label, text string }{
	{"let", "let ${1:name} = ${2:value};"},
	{"lett", "let ${1:name}: ${2:Int} = ${3:value};"},
	{"if", "if (${1:condition}) {\n\t${0}\n}"},
	{"ife", "if (${1:condition}) {\n\t${2}\n} else {\n\t${0}\n}"},
	{"while", "while (${1:condition}) {\n\t${0}\n}"},
	{"until", "do {\n\t${0}\n} until (${1:condition});"},
	{"repeat", "repeat(${1:count}) {\n\t${0}\n}"},
	{"foreach", "foreach (${1:key}, ${2:value} in ${3:map}) {\n\t${0}\n}"},
	{"try", "try {\n\t${0}\n}"},
	{"try-catch", "try {\n\t${1}\n} catch (e) {\n\t${2}\n}"},
}

func (c *collector) statementSnippets() {
	for _, s := range statementSnippets {
		c.add(snippet(s.label, s.text, protocol.CompletionItemKindSnippet, sortSnippet))
	}
}

var topLevelSnippets = []struct{ label, text string }{
	{"fun", "fun ${1:name}($2)$3 {$0}"},
	{"extends fun", "extends fun ${1:name}(self: $2$3)$4 {$0}"},
	{"contract", "contract ${1:Name} {$0}"},
	{"trait", "trait ${1:Name} {$0}"},
	{"struct", "struct ${1:Name} {$0}"},
	{"message", "message ${1:Name} {$0}"},
	{"const", "const ${1:NAME}: ${2:Int} = ${0:value};"},
	{"import", "import \"$0\";"},
	{"primitive", "primitive ${1:Name};"},
}

func (c *collector) topLevel() {
	for _, s := range topLevelSnippets {
		c.add(snippet(s.label, s.text, protocol.CompletionItemKindKeyword, sortKeyword))
	}
}

var memberSnippets = []struct{ label, text string }{
	{"init", "init($1) {\n\t$0\n}"},
	{"receive", "receive(${1:msg}: ${2:Message}) {\n\t$0\n}"},
	{"receive()", "receive() {\n\t$0\n}"},
	{"bounced", "bounced(${1:msg}: bounced<${2:Message}>) {\n\t$0\n}"},
	{"external", "external(${1:msg}: ${2:Message}) {\n\t$0\n}"},
	{"fun", "fun ${1:name}($2)$3 {\n\t$0\n}"},
	{"get fun", "get fun ${1:name}(): ${2:Int} {\n\t$0\n}"},
	{"const", "const ${1:NAME}: ${2:Int} = ${0:value};"},
}

func (c *collector) members() {
	for _, s := range memberSnippets {
		c.add(snippet(s.label, s.text, protocol.CompletionItemKindKeyword, sortKeyword))
	}
}

// tlbTypes are the common serialization annotations after `as`.
var tlbTypes = []string{
	"uint8", "uint16", "uint32", "uint64", "uint128", "uint256",
	"int8", "int16", "int32", "int64", "int128", "int256", "int257",
	"coins", "remaining", "bytes32", "bytes64",
}

func (c *collector) tlb() {
	for _, t := range tlbTypes {
		c.add(item(t, protocol.CompletionItemKindKeyword, sortContext))
	}
}

// importPaths offers @stdlib libraries and workspace files relative to
// the current one, filtered by what was typed inside the quotes.
func (c *collector) importPaths() {
	content := c.ctx.Element.Content()
	typed := strings.TrimPrefix(content[:max(strings.Index(content, Dummy), 0)], `"`)

	var paths []string
	if c.s.Imports.Stdlib != "" {
		libs := filepath.Join(c.s.Imports.Stdlib, "libs")
		for _, fi := range c.s.Index.Stdlib.Files() {
			rel, err := filepath.Rel(libs, fi.File.Path())
			if err != nil || strings.HasPrefix(rel, "..") {
				continue
			}
			paths = append(paths, "@stdlib/"+strings.TrimSuffix(filepath.ToSlash(rel), ".tact"))
		}
	}
	dir := filepath.Dir(c.file.Path())
	for _, r := range c.s.Index.Roots() {
		for _, fi := range r.Files() {
			if fi.File.URI == c.file.URI {
				continue
			}
			rel, err := filepath.Rel(dir, fi.File.Path())
			if err != nil {
				continue
			}
			rel = strings.TrimSuffix(filepath.ToSlash(rel), ".tact")
			if !strings.HasPrefix(rel, "../") {
				rel = "./" + rel
			}
			paths = append(paths, rel)
		}
	}
	sort.Strings(paths)
	for _, p := range paths {
		if strings.HasPrefix(p, typed) {
			c.add(item(p, protocol.CompletionItemKindFile, sortContext))
		}
	}
}
