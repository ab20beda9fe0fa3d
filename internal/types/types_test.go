package types

import "testing"

func TestNames(t *testing.T) {
	t.Parallel()
	intTy := Primitive("Int", nil)
	cell := Primitive("Cell", nil)
	tests := []struct {
		ty   Ty
		want string
	}{
		{intTy, "Int"},
		{&OptionTy{Inner: intTy}, "Int?"},
		{&MapTy{Key: intTy, Value: &OptionTy{Inner: cell}}, "map<Int, Cell?>"},
		{&BouncedTy{Inner: cell}, "bounced<Cell>"},
		{&FunctionTy{Params: []Ty{intTy, nil}, Result: cell}, "fun(Int, ?): Cell"},
		{&FunctionTy{}, "fun()"},
		{&NullTy{}, "null"},
	}
	for _, tt := range tests {
		if got := tt.ty.Name(); got != tt.want {
			t.Errorf("Name() = %q, want %q", got, tt.want)
		}
		if got := tt.ty.QualifiedName(); got != tt.want {
			t.Errorf("QualifiedName() = %q, want %q", got, tt.want)
		}
	}
}

func TestEqual(t *testing.T) {
	t.Parallel()
	a := &OptionTy{Inner: Primitive("Int", nil)}
	b := &OptionTy{Inner: Primitive("Int", nil)}
	if !Equal(a, b) {
		t.Error("separately built Int? should be equal")
	}
	if Equal(a, Primitive("Int", nil)) {
		t.Error("Int? should differ from Int")
	}
	if !Equal(nil, nil) || Equal(a, nil) {
		t.Error("nil handling")
	}
}

func TestUnwrap(t *testing.T) {
	t.Parallel()
	inner := Primitive("Slice", nil)
	for _, ty := range []Ty{&OptionTy{Inner: inner}, &BouncedTy{Inner: inner}, inner} {
		if got := Unwrap(ty); got != Ty(inner) {
			t.Errorf("Unwrap(%s) = %s", ty.Name(), got.Name())
		}
	}
	if StorageAnchor(inner) != nil || FieldsAnchor(inner) != nil {
		t.Error("primitive has no member anchor")
	}
}
