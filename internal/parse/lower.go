package parse

import (
	"fmt"
	"sort"

	"fortio.org/safecast"

	"github.com/phobologic/tactguide/internal/cst"
	"github.com/phobologic/tactguide/internal/syntax"
)

// lowerer converts a simplified CST into syntax elements. Whitespace is
// dropped, comments become "comment" nodes, and operator chains are
// nested to the left the way a generated parser would build them.
type lowerer struct {
	src   []byte
	lines []int
}

func newLowerer(src []byte) *lowerer {
	lines := []int{0}
	for i, c := range src {
		if c == '\n' {
			lines = append(lines, i+1)
		}
	}
	return &lowerer{src: src, lines: lines}
}

func (lw *lowerer) offset(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Sprintf("parse: offset %d: %v", n, err))
	}
	return v
}

func (lw *lowerer) point(off int) syntax.Point {
	row := sort.SearchInts(lw.lines, off+1) - 1
	return syntax.Point{Row: lw.offset(row), Column: lw.offset(off - lw.lines[row])}
}

func (lw *lowerer) leaf(l *cst.Leaf, typ string, named bool) *syntax.Elem {
	e := syntax.NewElem(typ, named)
	end := l.Start + len(l.Text)
	e.SetSpan(lw.offset(l.Start), lw.offset(end), lw.point(l.Start), lw.point(end))
	return e
}

var nodeTypes = map[cst.Kind]string{
	cst.Error:          "ERROR",
	cst.Import:         "import",
	cst.Contract:       "contract",
	cst.Trait:          "trait",
	cst.Struct:         "struct",
	cst.Message:        "message",
	cst.Primitive:      "primitive",
	cst.NativeFunction: "native_function",
	cst.AsmFunction:    "asm_function",
	cst.StorageVar:     "storage_variable",
	cst.Field:          "field",
	cst.Init:           "init_function",
	cst.ContractAttr:   "contract_attributes",
	cst.GetAttr:        "get_attribute",
	cst.MessageValue:   "message_value",
	cst.AsmArrangement: "asm_arrangement",
	cst.TraitList:      "trait_list",
	cst.ParamList:      "parameter_list",
	cst.Param:          "parameter",
	cst.StructBody:     "struct_body",
	cst.MapType:        "map_type",
	cst.BouncedType:    "bounced_type",
	cst.TlbAs:          "tlb_serialization",
	cst.Let:            "let_statement",
	cst.Destruct:       "destruct_statement",
	cst.DestructBinds:  "destruct_bind_list",
	cst.DestructBind:   "destruct_bind",
	cst.Return:         "return_statement",
	cst.If:             "if_statement",
	cst.Else:           "else_clause",
	cst.While:          "while_statement",
	cst.Repeat:         "repeat_statement",
	cst.DoUntil:        "do_until_statement",
	cst.Try:            "try_statement",
	cst.Catch:          "catch_clause",
	cst.Foreach:        "foreach_statement",
	cst.ExprStmt:       "expression_statement",
	cst.Ternary:        "ternary_expression",
	cst.Unary:          "unary_expression",
	cst.StaticCall:     "static_call_expression",
	cst.ArgList:        "argument_list",
	cst.Arg:            "argument",
	cst.Paren:          "parenthesized_expression",
	cst.Instance:       "instance_expression",
	cst.InstanceArgs:   "instance_argument_list",
	cst.InstanceArg:    "instance_argument",
	cst.InitOf:         "initOf",
	cst.CodeOf:         "codeOf",
}

// typeNameFields names the token field that holds a type name, per node.
var typeNameFields = map[cst.Kind]string{
	cst.Struct:      "name",
	cst.Message:     "name",
	cst.Instance:    "name",
	cst.Destruct:    "name",
	cst.Primitive:   "type",
	cst.BouncedType: "message",
	cst.TraitList:   "trait",
}

// nodeType returns the syntax type for n, which for some kinds depends on
// where n sits.
func nodeType(n, parent *cst.Node) string {
	switch n.Kind {
	case cst.Function:
		if n.Group == cst.GroupMember {
			return "storage_function"
		}
		return "global_function"
	case cst.Constant:
		if n.Group == cst.GroupMember {
			return "storage_constant"
		}
		return "global_constant"
	case cst.ContractBody:
		if parent != nil && parent.Kind == cst.Trait {
			return "trait_body"
		}
		return "contract_body"
	case cst.Block:
		if n.Field == "body" && parent != nil {
			switch parent.Kind {
			case cst.Function, cst.Init, cst.Receiver:
				return "function_body"
			}
		}
		return "block_statement"
	case cst.Assign:
		if op, ok := n.FieldOf("operator").(*cst.Leaf); ok && op.Text != "=" {
			return "augmented_assignment_statement"
		}
		return "assignment_statement"
	case cst.Receiver:
		if kind, ok := n.FieldOf("kind").(*cst.Leaf); ok {
			return kind.Text + "_function"
		}
		return "receive_function"
	}
	return nodeTypes[n.Kind]
}

func leafType(parent cst.Kind, l *cst.Leaf) (string, bool) {
	switch {
	case l.Tok == cst.TokString:
		return "string", true
	case l.Tok == cst.TokNumber:
		return "integer", true
	case l.Tok == cst.TokRaw && parent == cst.NativeFunction:
		return "func_identifier", true
	case l.Tok == cst.TokRaw:
		return "asm_function_body", true
	case l.Field != "" && typeNameFields[parent] == l.Field:
		return "type_identifier", true
	case l.Tok == cst.TokIdent || l.Field == "name":
		return "identifier", true
	}
	return l.Text, false
}

// lower returns the elements standing for c. Most nodes produce exactly
// one; a nullable type name produces the type identifier and a `?` token.
func (lw *lowerer) lower(c cst.Cst, parent *cst.Node) []*syntax.Elem {
	switch c := c.(type) {
	case *cst.Leaf:
		switch c.Kind {
		case cst.Space:
			return nil
		case cst.Comment:
			return []*syntax.Elem{lw.leaf(c, "comment", true)}
		}
		typ, named := leafType(parent.Kind, c)
		return []*syntax.Elem{lw.leaf(c, typ, named)}
	case *cst.Node:
		switch c.Kind {
		case cst.Binary:
			return lw.binary(c)
		case cst.Suffix:
			return lw.suffix(c)
		case cst.Atom:
			return lw.atom(c)
		case cst.TypeName:
			return lw.typeName(c)
		case cst.DestructRest:
			if l := cst.FirstToken(c); l != nil {
				return []*syntax.Elem{lw.leaf(l, l.Text, false)}
			}
			return nil
		}
		e := syntax.NewElem(nodeType(c, parent), true)
		lw.children(e, c)
		if e.ChildCount() == 0 {
			return nil
		}
		return []*syntax.Elem{e}
	}
	return nil
}

func (lw *lowerer) one(c cst.Cst, parent *cst.Node) *syntax.Elem {
	if c == nil {
		return nil
	}
	if els := lw.lower(c, parent); len(els) > 0 {
		return els[0]
	}
	return nil
}

// children appends the lowered children of n to e. Comments leading a
// child are lifted out to precede it, and function and constant modifiers
// are grouped under one "attributes" node.
func (lw *lowerer) children(e *syntax.Elem, n *cst.Node) {
	var attrs *syntax.Elem
	for _, c := range n.Children {
		els := lw.lower(c, n)
		if len(els) == 0 {
			continue
		}
		for _, lead := range els[0].TakeLeading("comment") {
			e.Append("", lead)
		}
		field := fieldOf(c)
		if field == "attribute" {
			if attrs == nil {
				typ := "function_attributes"
				if n.Kind == cst.Constant {
					typ = "constant_attributes"
				}
				attrs = syntax.NewElem(typ, true)
				e.Append("attributes", attrs)
			}
			for _, el := range els {
				attrs.Append("", el)
			}
			continue
		}
		for i, el := range els {
			if i > 0 {
				field = ""
			}
			e.Append(field, el)
		}
	}
}

func fieldOf(c cst.Cst) string {
	switch c := c.(type) {
	case *cst.Leaf:
		return c.Field
	case *cst.Node:
		return c.Field
	}
	return ""
}

func (lw *lowerer) binary(n *cst.Node) []*syntax.Elem {
	operands := n.Fields("operand")
	ops := n.Fields("operator")
	acc := lw.one(operands[0], n)
	for i, op := range ops {
		b := syntax.NewElem("binary_expression", true)
		if acc != nil {
			b.Append("left", acc)
		}
		l := op.(*cst.Leaf)
		b.Append("operator", lw.leaf(l, l.Text, false))
		if i+1 < len(operands) {
			if r := lw.one(operands[i+1], n); r != nil {
				b.Append("right", r)
			}
		}
		acc = b
	}
	if acc == nil {
		return nil
	}
	return []*syntax.Elem{acc}
}

func (lw *lowerer) suffix(n *cst.Node) []*syntax.Elem {
	acc := lw.one(n.FieldOf("object"), n)
	for _, s := range n.Fields("suffix") {
		sn := s.(*cst.Node)
		var e *syntax.Elem
		switch sn.Kind {
		case cst.NonNull:
			e = syntax.NewElem("non_null_assert_expression", true)
			if acc != nil {
				e.Append("argument", acc)
			}
		case cst.FieldSuffix:
			e = syntax.NewElem("field_access_expression", true)
			if acc != nil {
				e.Append("object", acc)
			}
		default:
			e = syntax.NewElem("method_call_expression", true)
			if acc != nil {
				e.Append("object", acc)
			}
		}
		lw.children(e, sn)
		acc = e
	}
	if acc == nil {
		return nil
	}
	return []*syntax.Elem{acc}
}

func (lw *lowerer) atom(n *cst.Node) []*syntax.Elem {
	l := cst.FirstToken(n)
	if l == nil {
		return nil
	}
	typ := "identifier"
	switch {
	case l.Tok == cst.TokNumber:
		typ = "integer"
	case l.Tok == cst.TokString:
		typ = "string"
	case l.Text == "true" || l.Text == "false":
		typ = "boolean"
	case l.Text == "null" || l.Text == "self":
		typ = l.Text
	}
	return []*syntax.Elem{lw.leaf(l, typ, true)}
}

func (lw *lowerer) typeName(n *cst.Node) []*syntax.Elem {
	var out []*syntax.Elem
	if name, ok := n.FieldOf("name").(*cst.Leaf); ok {
		out = append(out, lw.leaf(name, "type_identifier", true))
	}
	if i := n.TokenIndex("?"); i >= 0 {
		q := n.Children[i].(*cst.Leaf)
		out = append(out, lw.leaf(q, "?", false))
	}
	return out
}
