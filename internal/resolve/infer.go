package resolve

import (
	"strings"

	"github.com/phobologic/tactguide/internal/index"
	"github.com/phobologic/tactguide/internal/psi"
	"github.com/phobologic/tactguide/internal/syntax"
	"github.com/phobologic/tactguide/internal/types"
)

// TypeOf infers the type of an expression or type reference, nil when it
// cannot be determined.
func (s *Session) TypeOf(n psi.Node) types.Ty {
	e := psi.ExprOf(n)
	if e == nil {
		return nil
	}
	return cached(s.types, s.inferring, n, func() types.Ty { return s.inferExpr(e) })
}

func (s *Session) inferExpr(e psi.Expression) types.Ty {
	switch e := e.(type) {
	case *psi.Literal:
		switch e.Type() {
		case "integer":
			return s.primitive("Int")
		case "string":
			return s.primitive("String")
		default:
			return s.primitive("Bool")
		}
	case *psi.Null:
		return &types.NullTy{}
	case *psi.Ident:
		return s.TypeOfDecl(s.Resolve(e.Node))
	case *psi.Self:
		return s.TypeOfDecl(s.Resolve(e.Node))
	case *psi.TypeRef:
		t := types.Of(s.Resolve(e.Node))
		return maybeOption(t, e.Node)
	case *psi.MapTypeRef:
		k := s.TypeOf(e.Field("key"))
		v := s.TypeOf(e.Field("value"))
		if k == nil || v == nil {
			return nil
		}
		return &types.MapTy{Key: k, Value: v}
	case *psi.BouncedTypeRef:
		inner := s.TypeOf(e.Field("message"))
		if inner == nil {
			return nil
		}
		return &types.BouncedTy{Inner: inner}
	case *psi.Instance:
		return types.Of(s.Resolve(e.Field("name")))
	case *psi.NonNull:
		t := s.TypeOf(e.Field("argument"))
		if o, ok := t.(*types.OptionTy); ok {
			return o.Inner
		}
		return t
	case *psi.InitOf:
		st, ok := s.Index.ElementByName(index.Structs, "StateInit").(*psi.Struct)
		if !ok {
			return nil
		}
		return types.Struct(st)
	case *psi.CodeOf:
		return s.primitive("Cell")
	case *psi.Paren:
		return s.TypeOf(e.Inner())
	case *psi.FieldAccess:
		return s.TypeOfDecl(s.Resolve(e.Field("name")))
	case *psi.StaticCall:
		return s.callType(e.Node)
	case *psi.MethodCall:
		return s.callType(e.Node)
	case *psi.Unary:
		arg := s.TypeOf(e.Field("argument"))
		if arg == nil {
			return nil
		}
		switch e.Operator() {
		case "!":
			return s.primitive("Bool")
		case "-", "+", "~":
			return s.primitive("Int")
		}
		return arg
	case *psi.Binary:
		return s.binaryType(e)
	case *psi.Ternary:
		if e.Field("alternative").IsNil() {
			return nil
		}
		return s.TypeOf(e.Field("consequence"))
	default:
		panic(&InvariantError{Node: e.Wrapped(), Msg: "expression variant without a type rule"})
	}
}

var (
	arithmetic = map[string]bool{
		"+": true, "-": true, "*": true, "/": true, "%": true,
		"<<": true, ">>": true, "&": true, "|": true, "^": true,
	}
	comparison = map[string]bool{
		"<": true, ">": true, "<=": true, ">=": true, "==": true, "!=": true,
	}
)

func (s *Session) binaryType(e *psi.Binary) types.Ty {
	op := e.Operator()
	invariant(op != "", e.Node, "binary expression without an operator")
	left := s.TypeOf(e.Field("left"))
	right := s.TypeOf(e.Field("right"))
	if left == nil || right == nil {
		return nil
	}
	switch {
	case op == "&&" || op == "||" || comparison[op]:
		return s.primitive("Bool")
	case arithmetic[op]:
		if op == "+" && left.QualifiedName() == "String" {
			return s.primitive("String")
		}
		return s.primitive("Int")
	}
	return left
}

// callType returns the declared result of the called function. The
// synthetic AnyStruct_/AnyMessage_ parsers return the type they were
// called on.
func (s *Session) callType(call psi.Node) types.Ty {
	f, ok := s.Resolve(call.Field("name")).(*psi.Fun)
	if !ok {
		return nil
	}
	rt := f.ReturnType()
	if rt.IsNil() {
		return nil
	}
	name := f.Name()
	if strings.HasPrefix(name, anyStructPrefix) || strings.HasPrefix(name, anyMessagePrefix) {
		if rt.Content() == "AnyStruct" || rt.Content() == "AnyMessage" {
			if obj := call.Field("object"); !obj.IsNil() {
				return s.TypeOf(obj)
			}
		}
	}
	return s.TypeOf(rt)
}

// TypeOfDecl returns the type a declaration gives the names that refer to
// it: the declared or initializer type of variables, fields and
// constants, the declared type of type declarations, and a function type
// for functions.
func (s *Session) TypeOfDecl(d psi.Decl) types.Ty {
	switch d := d.(type) {
	case nil:
		return nil
	case *psi.Var:
		return s.varType(d)
	case *psi.Field:
		return s.TypeOf(d.TypeNode())
	case *psi.Constant:
		if t := d.TypeNode(); !t.IsNil() {
			return s.TypeOf(t)
		}
		return s.TypeOf(d.Value())
	case *psi.Fun:
		ft := &types.FunctionTy{}
		for _, p := range d.Parameters() {
			ft.Params = append(ft.Params, s.TypeOf(p.TypeNode()))
		}
		if rt := d.ReturnType(); !rt.IsNil() {
			ft.Result = s.TypeOf(rt)
		}
		return ft
	case *psi.InitFunction, *psi.MessageFunction:
		return nil
	}
	return types.Of(d)
}

func (s *Session) varType(v *psi.Var) types.Ty {
	switch v.Type() {
	case "let_statement", "parameter":
		if t := v.TypeNode(); !t.IsNil() {
			return s.TypeOf(t)
		}
		return s.TypeOf(v.Value())
	case "destruct_bind":
		stmt := psi.Wrap(syntax.ParentOfType(v.Node.Node, "destruct_statement"), v.File)
		if stmt.IsNil() {
			return nil
		}
		o, ok := s.Resolve(stmt.Field("name")).(psi.FieldsOwner)
		if !ok {
			return nil
		}
		field := v.Field("name").Content()
		for _, f := range o.Fields() {
			if f.Name() == field {
				return s.TypeOf(f.TypeNode())
			}
		}
		return nil
	}
	// Bare identifiers bound by foreach or catch.
	parent := v.ParentNode()
	switch parent.Type() {
	case "foreach_statement":
		m, ok := s.TypeOf(parent.Field("map")).(*types.MapTy)
		if !ok {
			return nil
		}
		if parent.Field("key").Equal(v.Node) {
			return m.Key
		}
		return m.Value
	case "catch_clause":
		return s.primitive("Int")
	}
	return nil
}

func (s *Session) primitive(name string) types.Ty {
	p, _ := s.Index.ElementByName(index.Primitives, name).(*psi.Primitive)
	return types.Primitive(name, p)
}

// maybeOption wraps t when the type node is followed by `?`.
func maybeOption(t types.Ty, n psi.Node) types.Ty {
	if t == nil {
		return nil
	}
	if _, ok := t.(*types.OptionTy); !ok && psi.IsOptional(n) {
		return &types.OptionTy{Inner: t}
	}
	return t
}
