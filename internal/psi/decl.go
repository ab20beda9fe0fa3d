package psi

import (
	"strings"

	"github.com/phobologic/tactguide/internal/syntax"
)

// Decl is a declaration a name can resolve to. The set of
// implementations is closed: *Fun, *Field, *Constant, *Struct, *Message,
// *Trait, *Contract, *Primitive, *InitFunction, *MessageFunction and
// *Var.
type Decl interface {
	Named() NamedNode
	NameIdentifier() syntax.Node
	Name() string
	// Kind is a short lowercase label such as "function" or "field".
	Kind() string
	isDecl()
}

// FieldsOwner is a declaration with a plain field list.
type FieldsOwner interface {
	Decl
	Fields() []*Field
}

// StorageOwner is a contract or trait. Inherited members are composed by
// the resolver; the methods here only see the declaration's own body.
type StorageOwner interface {
	Decl
	OwnFields() []*Field
	OwnMethods() []*Fun
	OwnConstants() []*Constant
	TraitRefs() []Node
	InitFunction() *InitFunction
	MessageFunctions() []*MessageFunction
}

type (
	// Fun is a global, member, asm or native function.
	Fun struct{ NamedNode }
	// Field is a struct or message field, a contract storage variable,
	// or a contract parameter.
	Field struct{ NamedNode }
	// Constant is a global or member constant.
	Constant struct{ NamedNode }
	// Struct is a struct declaration.
	Struct struct{ NamedNode }
	// Message is a message declaration.
	Message struct{ NamedNode }
	// Trait is a trait declaration.
	Trait struct{ storage }
	// Contract is a contract declaration.
	Contract struct{ storage }
	// Primitive is a primitive type declaration.
	Primitive struct{ NamedNode }
	// InitFunction is a contract or trait init.
	InitFunction struct{ NamedNode }
	// MessageFunction is a receive, external or bounced handler.
	MessageFunction struct{ NamedNode }
	// Var is a local binding: let, destructuring bind, foreach key or
	// value, catch variable or function parameter.
	Var struct{ NamedNode }
)

func (*Fun) isDecl()             {}
func (*Field) isDecl()           {}
func (*Constant) isDecl()        {}
func (*Struct) isDecl()          {}
func (*Message) isDecl()         {}
func (*Trait) isDecl()           {}
func (*Contract) isDecl()        {}
func (*Primitive) isDecl()       {}
func (*InitFunction) isDecl()    {}
func (*MessageFunction) isDecl() {}
func (*Var) isDecl()             {}

func (*Fun) Kind() string          { return "function" }
func (*Field) Kind() string        { return "field" }
func (*Constant) Kind() string     { return "constant" }
func (*Struct) Kind() string       { return "struct" }
func (*Message) Kind() string      { return "message" }
func (*Trait) Kind() string        { return "trait" }
func (*Contract) Kind() string     { return "contract" }
func (*Primitive) Kind() string    { return "primitive" }
func (*InitFunction) Kind() string { return "init" }
func (m *MessageFunction) Kind() string {
	return strings.TrimSuffix(m.Type(), "_function")
}
func (*Var) Kind() string { return "variable" }

// DeclOf returns the declaration n stands for, or nil when n is not a
// declaration node. Bare identifiers count when they bind a foreach key
// or value or a catch variable.
func DeclOf(n Node) Decl {
	if n.IsNil() {
		return nil
	}
	named := NamedNode{Node: n}
	switch n.Type() {
	case "global_function", "storage_function", "asm_function", "native_function":
		return &Fun{named}
	case "field", "storage_variable":
		return &Field{named}
	case "global_constant", "storage_constant":
		return &Constant{named}
	case "struct":
		return &Struct{named}
	case "message":
		return &Message{named}
	case "trait":
		return &Trait{storage{named}}
	case "contract":
		return &Contract{storage{named}}
	case "primitive":
		return &Primitive{named}
	case "init_function":
		return &InitFunction{named}
	case "receive_function", "external_function", "bounced_function":
		return &MessageFunction{named}
	case "parameter":
		if list := n.Parent(); list != nil && list.Parent() != nil && list.Parent().Type() == "contract" {
			return &Field{named}
		}
		return &Var{named}
	case "let_statement", "destruct_bind":
		return &Var{named}
	case "identifier":
		p := n.Parent()
		if p == nil {
			return nil
		}
		switch p.Type() {
		case "foreach_statement", "catch_clause":
			return &Var{named}
		}
	}
	return nil
}

// SameDecl reports whether a and b name the same declaration.
func SameDecl(a, b Decl) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	an, bn := a.Named(), b.Named()
	return an.Equal(bn.Node)
}

func ownerOf(n Node, types ...string) Node {
	if n.IsNil() {
		return Node{}
	}
	return n.Wrap(syntax.ParentOfType(n.Node, types...))
}

// declOrNil converts an absent node to a nil Decl.
func declOrNil(n Node) Decl {
	if n.IsNil() {
		return nil
	}
	return DeclOf(n)
}

// Parameters returns the function's parameter nodes in order.
func (f *Fun) Parameters() []*Var {
	return parameters(f.Node)
}

func parameters(n Node) []*Var {
	list := n.ChildByFieldName("parameters")
	if list == nil {
		return nil
	}
	var out []*Var
	for _, p := range syntax.ChildrenOfType(list, "parameter") {
		out = append(out, &Var{NamedNode{n.Wrap(p)}})
	}
	return out
}

// ReturnType returns the declared result type node, nil when absent.
func (f *Fun) ReturnType() Node { return f.Field("result") }

// Body returns the function body, nil for abstract, asm and native
// functions.
func (f *Fun) Body() Node { return f.Field("body") }

// WithSelf reports whether the first parameter is named self, making the
// function an extension of that parameter's type.
func (f *Fun) WithSelf() bool {
	params := f.Parameters()
	return len(params) > 0 && params[0].Name() == "self"
}

// SelfType returns the type node of the self parameter.
func (f *Fun) SelfType() Node {
	if !f.WithSelf() {
		return Node{}
	}
	return f.Parameters()[0].Field("type")
}

// Attributes returns the modifier keywords in source order. A getter
// with an explicit id contributes "get".
func (f *Fun) Attributes() []string {
	attrs := f.ChildByFieldName("attributes")
	if attrs == nil {
		return nil
	}
	var out []string
	for _, c := range syntax.Children(attrs) {
		switch {
		case c.Type() == "get_attribute":
			out = append(out, "get")
		case c.Type() != "comment":
			out = append(out, c.Content())
		}
	}
	return out
}

// HasAttribute reports whether the function carries the modifier.
func (f *Fun) HasAttribute(name string) bool {
	for _, a := range f.Attributes() {
		if a == name {
			return true
		}
	}
	return false
}

// IsGetter reports whether the function is a get method.
func (f *Fun) IsGetter() bool { return f.HasAttribute("get") }

// GetterID returns the expression of an explicit `get(id)`.
func (f *Fun) GetterID() Node {
	attrs := f.ChildByFieldName("attributes")
	if attrs == nil {
		return Node{}
	}
	if gets := syntax.ChildrenOfType(attrs, "get_attribute"); len(gets) > 0 {
		return f.Wrap(gets[0].ChildByFieldName("value"))
	}
	return Node{}
}

// Owner returns the contract or trait declaring the function, nil for
// top-level functions.
func (f *Fun) Owner() StorageOwner {
	return storageOwner(f.Node)
}

// Signature renders the function header without its body.
func (f *Fun) Signature() string {
	var b strings.Builder
	for _, a := range f.Attributes() {
		if a == "get" {
			if id := f.GetterID(); !id.IsNil() {
				b.WriteString("get(" + id.Content() + ") ")
				continue
			}
		}
		b.WriteString(a + " ")
	}
	switch f.Type() {
	case "native_function":
		b.WriteString("native ")
	case "asm_function":
		b.WriteString("asm ")
	}
	b.WriteString("fun " + f.Name() + f.ParametersText())
	if rt := f.ReturnType(); !rt.IsNil() {
		b.WriteString(": " + TypeText(rt))
	}
	return b.String()
}

// ParametersText renders the parameter list with normalized spacing.
func (f *Fun) ParametersText() string {
	return parametersText(f.Node)
}

func parametersText(n Node) string {
	var parts []string
	for _, p := range parameters(n) {
		parts = append(parts, p.Name()+": "+TypeText(p.Field("type")))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// TypeText returns the text of a type node including a trailing `?`.
func TypeText(t Node) string {
	if t.IsNil() {
		return ""
	}
	text := t.Content()
	if next := syntax.NextSibling(t.Node); next != nil && next.Type() == "?" {
		text += "?"
	}
	return text
}

// IsOptional reports whether the type node is followed by `?`.
func IsOptional(t Node) bool {
	if t.IsNil() {
		return false
	}
	next := syntax.NextSibling(t.Node)
	return next != nil && next.Type() == "?"
}

func storageOwner(n Node) StorageOwner {
	o := ownerOf(n, "contract", "trait")
	if o.IsNil() {
		return nil
	}
	d, _ := declOrNil(o).(StorageOwner)
	return d
}

// TypeNode returns the declared type node.
func (f *Field) TypeNode() Node { return f.Field("type") }

// TLB returns the `as` serialization node, nil when absent.
func (f *Field) TLB() Node { return f.Field("tlb") }

// Default returns the default value expression, nil when absent.
func (f *Field) Default() Node { return f.Field("value") }

// Owner returns the struct, message, contract or trait declaring the
// field.
func (f *Field) Owner() Decl {
	return declOrNil(ownerOf(f.Node, "struct", "message", "contract", "trait"))
}

// TypeNode returns the declared type node, nil when omitted.
func (c *Constant) TypeNode() Node { return c.Field("type") }

// Value returns the initializer, nil for abstract constants.
func (c *Constant) Value() Node { return c.Field("value") }

// Owner returns the contract or trait declaring the constant, nil for
// global constants.
func (c *Constant) Owner() StorageOwner { return storageOwner(c.Node) }

// Attributes returns the constant's modifiers.
func (c *Constant) Attributes() []string {
	attrs := c.ChildByFieldName("attributes")
	if attrs == nil {
		return nil
	}
	var out []string
	for _, a := range syntax.Children(attrs) {
		if a.Type() != "comment" {
			out = append(out, a.Content())
		}
	}
	return out
}

func fields(n Node) []*Field {
	body := n.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	var out []*Field
	for _, f := range syntax.ChildrenOfType(body, "field") {
		out = append(out, &Field{NamedNode{n.Wrap(f)}})
	}
	return out
}

// Fields returns the struct's fields in order.
func (s *Struct) Fields() []*Field { return fields(s.Node) }

// Fields returns the message's fields in order.
func (m *Message) Fields() []*Field { return fields(m.Node) }

// Opcode returns the text of an explicit `message(value)` opcode, "" when
// none is given.
func (m *Message) Opcode() string {
	v := m.ChildByFieldName("value")
	if v == nil {
		return ""
	}
	if e := v.ChildByFieldName("expression"); e != nil {
		return e.Content()
	}
	return ""
}

// storage implements StorageOwner for contracts and traits.
type storage struct{ NamedNode }

func (s storage) members(typ string) []Node {
	body := s.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	var out []Node
	for _, c := range syntax.ChildrenOfType(body, typ) {
		out = append(out, s.Wrap(c))
	}
	return out
}

// OwnFields returns contract parameters followed by storage variables.
func (s storage) OwnFields() []*Field {
	var out []*Field
	for _, p := range parameters(s.Node) {
		out = append(out, &Field{p.NamedNode})
	}
	for _, n := range s.members("storage_variable") {
		out = append(out, &Field{NamedNode{n}})
	}
	return out
}

// OwnMethods returns the functions declared in the body.
func (s storage) OwnMethods() []*Fun {
	var out []*Fun
	for _, n := range s.members("storage_function") {
		out = append(out, &Fun{NamedNode{n}})
	}
	return out
}

// OwnConstants returns the constants declared in the body.
func (s storage) OwnConstants() []*Constant {
	var out []*Constant
	for _, n := range s.members("storage_constant") {
		out = append(out, &Constant{NamedNode{n}})
	}
	return out
}

// TraitRefs returns the trait names listed after `with`.
func (s storage) TraitRefs() []Node {
	list := s.ChildByFieldName("traits")
	if list == nil {
		return nil
	}
	var out []Node
	for _, c := range syntax.Children(list) {
		if c.Type() == "type_identifier" || c.Type() == "identifier" {
			out = append(out, s.Wrap(c))
		}
	}
	return out
}

// InitFunction returns the first init in the body, nil when absent.
func (s storage) InitFunction() *InitFunction {
	if inits := s.members("init_function"); len(inits) > 0 {
		return &InitFunction{NamedNode{inits[0]}}
	}
	return nil
}

// MessageFunctions returns the receive, external and bounced handlers.
func (s storage) MessageFunctions() []*MessageFunction {
	body := s.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	var out []*MessageFunction
	for _, c := range syntax.Children(body) {
		switch c.Type() {
		case "receive_function", "external_function", "bounced_function":
			out = append(out, &MessageFunction{NamedNode{s.Wrap(c)}})
		}
	}
	return out
}

// Parameters returns the contract parameters, nil for traits and
// contracts without a parameter list.
func (c *Contract) Parameters() []*Var { return parameters(c.Node) }

// Attributes returns the `@interface("...")` values of the contract.
func (c *Contract) Attributes() []string {
	var out []string
	for i := 0; i < c.ChildCount(); i++ {
		if c.FieldNameForChild(i) != "attributes" {
			continue
		}
		if v := c.Child(i).ChildByFieldName("value"); v != nil {
			out = append(out, unquote(v.Content()))
		}
	}
	return out
}

// Parameters returns the init parameters.
func (i *InitFunction) Parameters() []*Var { return parameters(i.Node) }

// Signature renders `init(a: Int)`.
func (i *InitFunction) Signature() string { return "init" + parametersText(i.Node) }

// Owner returns the contract or trait declaring the init.
func (i *InitFunction) Owner() StorageOwner { return storageOwner(i.Node) }

// Parameter returns the handler's parameter node: a parameter for a
// typed receiver, a string for a text receiver, nil for a fallback.
func (m *MessageFunction) Parameter() Node { return m.Field("parameter") }

// Owner returns the contract or trait declaring the handler.
func (m *MessageFunction) Owner() StorageOwner { return storageOwner(m.Node) }

// TypeNode returns the declared type of a let or parameter, nil when the
// binding has no annotation.
func (v *Var) TypeNode() Node { return v.Field("type") }

// Value returns the initializer of a let binding.
func (v *Var) Value() Node { return v.Field("value") }

// IsParameter reports whether the binding is a parameter.
func (v *Var) IsParameter() bool { return v.Type() == "parameter" }
