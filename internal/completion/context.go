package completion

import (
	"strings"

	"github.com/phobologic/tactguide/internal/psi"
	"github.com/phobologic/tactguide/internal/syntax"
)

// Context describes the position being completed. It is computed once
// from the reparsed tree and consulted by every provider.
type Context struct {
	Element psi.Node

	IsType                bool
	IsExpression          bool
	IsStatement           bool
	AfterDot              bool
	BeforeParen           bool
	BeforeSemicolon       bool
	InNameOfFieldInit     bool
	InMultilineStructInit bool
	InTraitList           bool
	InParameter           bool
	InTlb                 bool
	InImport              bool
	IsInitOfName          bool
	TopLevel              bool
	TopLevelInStorage     bool
	TopLevelInStruct      bool
	InsideStorage         bool
}

// newContext inspects the dummy element e of src. offset is where the
// dummy identifier was inserted.
func newContext(e psi.Node, src []byte, offset int) *Context {
	ctx := &Context{Element: e}
	if offset > 0 && offset <= len(src) {
		ctx.AfterDot = src[offset-1] == '.'
	}
	if after := offset + len(Dummy); after < len(src) {
		ctx.BeforeParen = src[after] == '('
	}
	if end := int(e.EndByte()); end < len(src) {
		ctx.BeforeSemicolon = src[end] == ';'
	}
	ctx.InsideStorage = syntax.ParentOfType(e.Node, "contract", "trait") != nil

	parent := e.ParentNode()
	if parent.IsNil() {
		return ctx
	}
	if e.Type() == "string" && parent.Type() == "import" {
		ctx.InImport = true
		return ctx
	}

	ptype := parent.Type()
	ctx.IsExpression = ptype != "expression_statement" && ptype != "field_access_expression"
	ctx.IsStatement = ptype == "expression_statement"
	ctx.IsType = e.Type() == "type_identifier"

	switch ptype {
	case "instance_argument":
		if parent.Field("value").IsNil() {
			ctx.InNameOfFieldInit = true
			if args := syntax.ParentOfType(parent.Node, "instance_argument_list"); args != nil && args.ChildCount() > 1 {
				first, last := args.Child(0), args.Child(args.ChildCount()-1)
				ctx.InMultilineStructInit = first.StartPoint().Row != last.StartPoint().Row
			}
		}
	case "tlb_serialization":
		ctx.InTlb = true
		ctx.IsExpression, ctx.IsStatement = false, false
	case "let_statement":
		if parent.Field("name").Equal(e) {
			ctx.IsExpression, ctx.IsStatement = false, false
		}
	case "trait_list":
		ctx.InTraitList = true
	case "initOf":
		ctx.IsInitOfName = parent.Field("name").Equal(e)
	case "ERROR":
		switch parent.ParentNode().Type() {
		case "parameter_list":
			ctx.InParameter = true
		case "source_file":
			ctx.TopLevel = true
		case "contract_body", "trait_body":
			ctx.TopLevelInStorage = true
		case "struct_body":
			ctx.TopLevelInStruct = true
		}
		if ctx.TopLevel || ctx.TopLevelInStorage || ctx.TopLevelInStruct {
			ctx.IsExpression, ctx.IsStatement, ctx.IsType = false, false, false
		}
	}
	if strings.HasSuffix(ptype, "_function") {
		ctx.IsExpression, ctx.IsStatement = false, false
	}
	return ctx
}

// Expression reports whether a value expression may start here.
func (c *Context) Expression() bool {
	return (c.IsExpression || c.IsStatement) &&
		!c.IsType &&
		!c.AfterDot &&
		!c.InTlb &&
		!c.InNameOfFieldInit &&
		!c.InTraitList &&
		!c.InParameter &&
		!c.IsInitOfName
}

// declarationLevel reports positions where only declarations start.
func (c *Context) declarationLevel() bool {
	return c.TopLevel || c.TopLevelInStorage || c.TopLevelInStruct
}
