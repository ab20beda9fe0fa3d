package psi

// Expression is a typed view of a node that can carry a type: value
// expressions and type references. The set of implementations is closed;
// ExprOf is the only constructor.
type Expression interface {
	Wrapped() Node
	isExpr()
}

type (
	// Literal is an integer, string or boolean literal.
	Literal struct{ Node }
	// Null is the null literal.
	Null struct{ Node }
	// Ident is a plain identifier reference.
	Ident struct{ Node }
	// Self is the self keyword.
	Self struct{ Node }
	// TypeRef is a named type reference.
	TypeRef struct{ Node }
	// MapTypeRef is map<K, V>.
	MapTypeRef struct{ Node }
	// BouncedTypeRef is bounced<T>.
	BouncedTypeRef struct{ Node }
	// Instance is a struct or message literal.
	Instance struct{ Node }
	// NonNull is the !! assertion.
	NonNull struct{ Node }
	// InitOf is initOf Contract(args).
	InitOf struct{ Node }
	// CodeOf is codeOf Contract.
	CodeOf struct{ Node }
	// Paren is a parenthesized expression.
	Paren struct{ Node }
	// FieldAccess is a.b.
	FieldAccess struct{ Node }
	// StaticCall is f(args).
	StaticCall struct{ Node }
	// MethodCall is a.f(args).
	MethodCall struct{ Node }
	// Unary is a prefix operator application.
	Unary struct{ Node }
	// Binary is an infix operator application.
	Binary struct{ Node }
	// Ternary is c ? a : b.
	Ternary struct{ Node }
)

// ExpressionTypes lists the node types ExprOf accepts.
var ExpressionTypes = []string{
	"integer", "string", "boolean", "null", "identifier", "self",
	"type_identifier", "map_type", "bounced_type", "instance_expression",
	"non_null_assert_expression", "initOf", "codeOf",
	"parenthesized_expression", "field_access_expression",
	"static_call_expression", "method_call_expression", "unary_expression",
	"binary_expression", "ternary_expression",
}

// ExprOf returns the expression view of n, nil for other nodes.
func ExprOf(n Node) Expression {
	if n.IsNil() {
		return nil
	}
	switch n.Type() {
	case "integer", "string", "boolean":
		return &Literal{n}
	case "null":
		return &Null{n}
	case "identifier":
		return &Ident{n}
	case "self":
		return &Self{n}
	case "type_identifier":
		return &TypeRef{n}
	case "map_type":
		return &MapTypeRef{n}
	case "bounced_type":
		return &BouncedTypeRef{n}
	case "instance_expression":
		return &Instance{n}
	case "non_null_assert_expression":
		return &NonNull{n}
	case "initOf":
		return &InitOf{n}
	case "codeOf":
		return &CodeOf{n}
	case "parenthesized_expression":
		return &Paren{n}
	case "field_access_expression":
		return &FieldAccess{n}
	case "static_call_expression":
		return &StaticCall{n}
	case "method_call_expression":
		return &MethodCall{n}
	case "unary_expression":
		return &Unary{n}
	case "binary_expression":
		return &Binary{n}
	case "ternary_expression":
		return &Ternary{n}
	}
	return nil
}

func (e *Literal) Wrapped() Node        { return e.Node }
func (e *Null) Wrapped() Node           { return e.Node }
func (e *Ident) Wrapped() Node          { return e.Node }
func (e *Self) Wrapped() Node           { return e.Node }
func (e *TypeRef) Wrapped() Node        { return e.Node }
func (e *MapTypeRef) Wrapped() Node     { return e.Node }
func (e *BouncedTypeRef) Wrapped() Node { return e.Node }
func (e *Instance) Wrapped() Node       { return e.Node }
func (e *NonNull) Wrapped() Node        { return e.Node }
func (e *InitOf) Wrapped() Node         { return e.Node }
func (e *CodeOf) Wrapped() Node         { return e.Node }
func (e *Paren) Wrapped() Node          { return e.Node }
func (e *FieldAccess) Wrapped() Node    { return e.Node }
func (e *StaticCall) Wrapped() Node     { return e.Node }
func (e *MethodCall) Wrapped() Node     { return e.Node }
func (e *Unary) Wrapped() Node          { return e.Node }
func (e *Binary) Wrapped() Node         { return e.Node }
func (e *Ternary) Wrapped() Node        { return e.Node }

func (*Literal) isExpr()        {}
func (*Null) isExpr()           {}
func (*Ident) isExpr()          {}
func (*Self) isExpr()           {}
func (*TypeRef) isExpr()        {}
func (*MapTypeRef) isExpr()     {}
func (*BouncedTypeRef) isExpr() {}
func (*Instance) isExpr()       {}
func (*NonNull) isExpr()        {}
func (*InitOf) isExpr()         {}
func (*CodeOf) isExpr()         {}
func (*Paren) isExpr()          {}
func (*FieldAccess) isExpr()    {}
func (*StaticCall) isExpr()     {}
func (*MethodCall) isExpr()     {}
func (*Unary) isExpr()          {}
func (*Binary) isExpr()         {}
func (*Ternary) isExpr()        {}

// Operator returns the operator text.
func (e *Unary) Operator() string {
	if op := e.ChildByFieldName("operator"); op != nil {
		return op.Content()
	}
	return ""
}

// Operator returns the operator text.
func (e *Binary) Operator() string {
	if op := e.ChildByFieldName("operator"); op != nil {
		return op.Content()
	}
	return ""
}

// Inner returns the parenthesized expression.
func (e *Paren) Inner() Node {
	for i := 0; i < e.ChildCount(); i++ {
		if c := e.Child(i); c.IsNamed() && c.Type() != "comment" {
			return e.Wrap(c)
		}
	}
	return Node{}
}

// Qualifier returns the object a member is accessed on.
func (e *FieldAccess) Qualifier() Node { return e.Field("object") }

// Qualifier returns the receiver of the call.
func (e *MethodCall) Qualifier() Node { return e.Field("object") }

// Arguments returns the argument expressions of a call.
func Arguments(call Node) []Node {
	list := call.ChildByFieldName("arguments")
	if list == nil {
		return nil
	}
	var out []Node
	for i := 0; i < list.ChildCount(); i++ {
		c := list.Child(i)
		if c.Type() != "argument" {
			continue
		}
		if v := c.ChildByFieldName("value"); v != nil {
			out = append(out, call.Wrap(v))
		}
	}
	return out
}
