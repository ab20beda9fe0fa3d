package lang

import (
	"testing"

	"github.com/smacker/go-tree-sitter/golang"
)

func TestForExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ext  string
		want string
	}{
		{".tact", "tact"},
		{".fc", ""},
		{".py", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			t.Parallel()
			got := ForExtension(tt.ext)
			if got != tt.want {
				t.Errorf("ForExtension(%q) = %q, want %q", tt.ext, got, tt.want)
			}
		})
	}
}

func TestTactRegistered(t *testing.T) {
	t.Parallel()

	l := Lookup(Tact)
	if l == nil {
		t.Fatal("tact language not registered")
	}
	if l.NewParser() != nil {
		t.Error("NewParser without a grammar should return nil")
	}
}

func TestRegisterGrammar(t *testing.T) {
	t.Parallel()

	Register(&Language{Name: "go-fixture", Extensions: []string{".gofixture"}, Grammar: golang.GetLanguage()})
	if got := ForExtension(".gofixture"); got != "go-fixture" {
		t.Errorf("ForExtension(.gofixture) = %q", got)
	}
	p := Lookup("go-fixture").NewParser()
	if p == nil {
		t.Fatal("NewParser returned nil")
	}
	p.Close()
}

func TestIsForeign(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want bool
	}{
		{"lib/math.fc", true},
		{"lib/math.FUNC", true},
		{"lib/math.tact", false},
		{"lib/math", false},
	}
	for _, tt := range tests {
		if got := IsForeign(tt.path); got != tt.want {
			t.Errorf("IsForeign(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestCollapseWhitespace(t *testing.T) {
	t.Parallel()

	if got := CollapseWhitespace("  fun  f(\n    a: Int\n)  "); got != "fun f( a: Int )" {
		t.Errorf("CollapseWhitespace = %q", got)
	}
}
