// Package types defines the closed set of types the inferer produces.
package types

import (
	"strings"

	"github.com/phobologic/tactguide/internal/psi"
)

// Ty is an inferred type. Implementations: *PrimitiveTy, *StructTy,
// *MessageTy, *TraitTy, *ContractTy, *OptionTy, *MapTy, *BouncedTy,
// *FunctionTy and *NullTy.
type Ty interface {
	Name() string
	QualifiedName() string
	isTy()
}

// PrimitiveTy is a built-in type such as Int or Cell.
type PrimitiveTy struct {
	name   string
	Anchor *psi.Primitive
}

// StructTy is a struct type.
type StructTy struct {
	name   string
	Anchor *psi.Struct
}

// MessageTy is a message type.
type MessageTy struct {
	name   string
	Anchor *psi.Message
}

// TraitTy is a trait type.
type TraitTy struct {
	name   string
	Anchor *psi.Trait
}

// ContractTy is a contract type.
type ContractTy struct {
	name   string
	Anchor *psi.Contract
}

// OptionTy is T?.
type OptionTy struct{ Inner Ty }

// MapTy is map<K, V>.
type MapTy struct{ Key, Value Ty }

// BouncedTy is bounced<T>.
type BouncedTy struct{ Inner Ty }

// FunctionTy is the type of a function used as a value.
type FunctionTy struct {
	Params []Ty
	Result Ty
}

// NullTy is the type of the null literal.
type NullTy struct{}

// Primitive returns a primitive type. anchor may be nil.
func Primitive(name string, anchor *psi.Primitive) *PrimitiveTy {
	return &PrimitiveTy{name: name, Anchor: anchor}
}

// Struct returns the type of a struct declaration.
func Struct(anchor *psi.Struct) *StructTy {
	return &StructTy{name: anchor.Name(), Anchor: anchor}
}

// Message returns the type of a message declaration.
func Message(anchor *psi.Message) *MessageTy {
	return &MessageTy{name: anchor.Name(), Anchor: anchor}
}

// Trait returns the type of a trait declaration.
func Trait(anchor *psi.Trait) *TraitTy {
	return &TraitTy{name: anchor.Name(), Anchor: anchor}
}

// Contract returns the type of a contract declaration.
func Contract(anchor *psi.Contract) *ContractTy {
	return &ContractTy{name: anchor.Name(), Anchor: anchor}
}

func (t *PrimitiveTy) Name() string { return t.name }
func (t *StructTy) Name() string    { return t.name }
func (t *MessageTy) Name() string   { return t.name }
func (t *TraitTy) Name() string     { return t.name }
func (t *ContractTy) Name() string  { return t.name }
func (t *OptionTy) Name() string    { return t.Inner.Name() + "?" }
func (t *BouncedTy) Name() string   { return "bounced<" + t.Inner.Name() + ">" }
func (*NullTy) Name() string        { return "null" }

func (t *MapTy) Name() string {
	return "map<" + t.Key.Name() + ", " + t.Value.Name() + ">"
}

func (t *FunctionTy) Name() string {
	return t.render(Ty.Name)
}

func (t *FunctionTy) render(name func(Ty) string) string {
	params := make([]string, len(t.Params))
	for i, p := range t.Params {
		params[i] = orUnknown(p, name)
	}
	s := "fun(" + strings.Join(params, ", ") + ")"
	if t.Result != nil {
		s += ": " + name(t.Result)
	}
	return s
}

func orUnknown(t Ty, name func(Ty) string) string {
	if t == nil {
		return "?"
	}
	return name(t)
}

func (t *PrimitiveTy) QualifiedName() string { return t.name }
func (t *StructTy) QualifiedName() string    { return t.name }
func (t *MessageTy) QualifiedName() string   { return t.name }
func (t *TraitTy) QualifiedName() string     { return t.name }
func (t *ContractTy) QualifiedName() string  { return t.name }
func (t *OptionTy) QualifiedName() string    { return t.Inner.QualifiedName() + "?" }
func (*NullTy) QualifiedName() string        { return "null" }

func (t *BouncedTy) QualifiedName() string {
	return "bounced<" + t.Inner.QualifiedName() + ">"
}

func (t *MapTy) QualifiedName() string {
	return "map<" + t.Key.QualifiedName() + ", " + t.Value.QualifiedName() + ">"
}

func (t *FunctionTy) QualifiedName() string {
	return t.render(Ty.QualifiedName)
}

func (*PrimitiveTy) isTy() {}
func (*StructTy) isTy()    {}
func (*MessageTy) isTy()   {}
func (*TraitTy) isTy()     {}
func (*ContractTy) isTy()  {}
func (*OptionTy) isTy()    {}
func (*MapTy) isTy()       {}
func (*BouncedTy) isTy()   {}
func (*FunctionTy) isTy()  {}
func (*NullTy) isTy()      {}

// Equal reports whether a and b denote the same type. Identity is the
// qualified name, so two lookups of one declaration compare equal.
func Equal(a, b Ty) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.QualifiedName() == b.QualifiedName()
}

// Unwrap strips one level of option or bounced wrapping.
func Unwrap(t Ty) Ty {
	switch t := t.(type) {
	case *OptionTy:
		return t.Inner
	case *BouncedTy:
		return t.Inner
	}
	return t
}

// StorageAnchor returns the contract or trait behind t, nil for other
// types.
func StorageAnchor(t Ty) psi.StorageOwner {
	switch t := t.(type) {
	case *ContractTy:
		if t.Anchor != nil {
			return t.Anchor
		}
	case *TraitTy:
		if t.Anchor != nil {
			return t.Anchor
		}
	}
	return nil
}

// FieldsAnchor returns the struct or message behind t, nil for other
// types.
func FieldsAnchor(t Ty) psi.FieldsOwner {
	switch t := t.(type) {
	case *StructTy:
		if t.Anchor != nil {
			return t.Anchor
		}
	case *MessageTy:
		if t.Anchor != nil {
			return t.Anchor
		}
	}
	return nil
}

// Of maps a type declaration to its type, nil for other declarations.
func Of(d psi.Decl) Ty {
	switch d := d.(type) {
	case *psi.Primitive:
		return Primitive(d.Name(), d)
	case *psi.Struct:
		return Struct(d)
	case *psi.Message:
		return Message(d)
	case *psi.Trait:
		return Trait(d)
	case *psi.Contract:
		return Contract(d)
	}
	return nil
}
