package format

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/tools/txtar"

	"github.com/phobologic/tactguide/internal/cst"
)

func TestFormat(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "declaration spacing",
			in:   "fun    foo(param:    Int)   ;",
			want: "fun foo(param: Int);\n",
		},
		{
			name: "multi-line parameters pull traits onto lines",
			in:   "contract Foo(\n    param: Int,\n    some: Cell\n) with Bar, Foo {}",
			want: "contract Foo(\n    param: Int,\n    some: Cell,\n) with\n    Bar,\n    Foo,\n{}\n",
		},
		{
			name: "one-line block",
			in:   "fun foo() {   return 10 }",
			want: "fun foo() { return 10 }\n",
		},
		{
			name: "single field struct",
			in:   "struct A {   x : Int }",
			want: "struct A { x: Int }\n",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := New().Format(tt.in)
			if err != nil {
				t.Fatalf("Format: %v", err)
			}
			if got != tt.want {
				t.Errorf("Format() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

// goldenCase is one formatting case of a txtar archive: NAME.in.tact is
// formatted into NAME.out.tact, and a plain NAME.tact must stay as it is.
type goldenCase struct {
	name, in, want string
}

func goldenCases(ar *txtar.Archive) []goldenCase {
	outs := make(map[string]string)
	for _, f := range ar.Files {
		if name, ok := strings.CutSuffix(f.Name, ".out.tact"); ok {
			outs[name] = string(f.Data)
		}
	}
	var cases []goldenCase
	for _, f := range ar.Files {
		switch {
		case strings.HasSuffix(f.Name, ".out.tact"):
		case strings.HasSuffix(f.Name, ".in.tact"):
			name := strings.TrimSuffix(f.Name, ".in.tact")
			cases = append(cases, goldenCase{name, string(f.Data), outs[name]})
		default:
			name := strings.TrimSuffix(f.Name, ".tact")
			cases = append(cases, goldenCase{name, string(f.Data), string(f.Data)})
		}
	}
	return cases
}

func TestFormatGolden(t *testing.T) {
	t.Parallel()
	files, err := filepath.Glob(filepath.Join("testdata", "*.txtar"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no golden files")
	}
	for _, file := range files {
		ar, err := txtar.ParseFile(file)
		if err != nil {
			t.Fatal(err)
		}
		group := strings.TrimSuffix(filepath.Base(file), ".txtar")
		for _, tc := range goldenCases(ar) {
			t.Run(group+"/"+tc.name, func(t *testing.T) {
				t.Parallel()
				f := New()
				got, err := f.Format(tc.in)
				if err != nil {
					t.Fatalf("Format: %v", err)
				}
				if got != tc.want {
					t.Errorf("Format() =\n%s\nwant\n%s", got, tc.want)
				}
				again, err := f.Format(got)
				if err != nil {
					t.Fatalf("Format(formatted): %v", err)
				}
				if again != got {
					t.Errorf("not idempotent:\n%s", again)
				}
			})
		}
	}
}

// TestFormatWrapsLongBinaryChains fills the first line up to the width: the
// operand that would pass column 40 moves to the next line.
func TestFormatWrapsLongBinaryChains(t *testing.T) {
	t.Parallel()
	f := &Formatter{IndentString: "    ", MaxLineWidth: 40}
	in := "fun f(): Int { return aaaa + bbbb + cccc + dddd + eeee + ffff; }"
	want := "fun f(): Int {\n" +
		"    return aaaa + bbbb + cccc + dddd\n" +
		"           + eeee + ffff;\n" +
		"}\n"
	got, err := f.Format(in)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if got != want {
		t.Errorf("Format() =\n%s\nwant\n%s", got, want)
	}
	again, err := f.Format(got)
	if err != nil {
		t.Fatalf("Format(formatted): %v", err)
	}
	if again != got {
		t.Errorf("not idempotent:\n%s", again)
	}
}

func TestFormatParseError(t *testing.T) {
	t.Parallel()
	src := "contract A {"
	f := New()
	_, err := f.Format(src)
	var pe *cst.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Format error = %v, want *cst.ParseError", err)
	}
	if got := f.FormatCode(src); got != src {
		t.Errorf("FormatCode() = %q, want input unchanged", got)
	}
}

func TestFormatWithResult(t *testing.T) {
	t.Parallel()
	f := New()
	res, err := f.FormatWithResult("fun foo(): Int { return 1 }\n")
	if err != nil {
		t.Fatal(err)
	}
	if res.Changed {
		t.Errorf("Changed = true for formatted input: %q", res.Content)
	}
	res, err = f.FormatWithResult("fun   foo(): Int { return 1 }")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Changed {
		t.Error("Changed = false for unformatted input")
	}
}

func TestFormatKeepsComments(t *testing.T) {
	t.Parallel()
	in := "// a\ncontract C { /* b */ x: Int; // c\n}\n// d\n"
	got, err := New().Format(in)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range []string{"// a", "/* b */", "// c", "// d"} {
		if !strings.Contains(got, c) {
			t.Errorf("comment %q lost:\n%s", c, got)
		}
	}
}

func TestRuleTablesCoverCategories(t *testing.T) {
	t.Parallel()
	tables := []struct {
		name  string
		kinds []cst.Kind
		rules map[cst.Kind]rule
	}{
		{"item", cst.ItemKinds, itemRules},
		{"member", cst.MemberKinds, memberRules},
		{"statement", cst.StatementKinds, statementRules},
		{"expression", cst.ExprKinds, exprRules},
		{"type", cst.TypeKinds, typeRules},
	}
	for _, tt := range tables {
		for _, k := range tt.kinds {
			if tt.rules[k] == nil {
				t.Errorf("no %s rule for %s", tt.name, k)
			}
		}
		if len(tt.rules) != len(tt.kinds) {
			t.Errorf("%s rules = %d, kinds = %d", tt.name, len(tt.rules), len(tt.kinds))
		}
	}
}
