package referent

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/tools/txtar"

	"github.com/phobologic/tactguide/internal/imports"
	"github.com/phobologic/tactguide/internal/index"
	"github.com/phobologic/tactguide/internal/parse"
	"github.com/phobologic/tactguide/internal/psi"
	"github.com/phobologic/tactguide/internal/resolve"
	"github.com/phobologic/tactguide/internal/syntax"
)

type fixture struct {
	s     *resolve.Session
	files map[string]*psi.File
}

func load(t *testing.T) *fixture {
	t.Helper()
	ar, err := txtar.ParseFile(filepath.Join("testdata", "refs.txtar"))
	if err != nil {
		t.Fatal(err)
	}
	idx := index.New("file:///std/", "file:///w/")
	fx := &fixture{files: make(map[string]*psi.File)}
	for _, f := range ar.Files {
		uri := "file:///w/" + f.Name
		if strings.HasPrefix(f.Name, "std/") {
			uri = "file:///" + f.Name
		}
		pf := psi.NewFile(uri, parse.Source(f.Data, 1))
		idx.AddFile(pf)
		fx.files[f.Name] = pf
	}
	fx.s, err = resolve.NewSession(idx, imports.Resolver{Stdlib: "/std"}, 0)
	if err != nil {
		t.Fatal(err)
	}
	return fx
}

// decl resolves the node at the `|` of marked in file.
func (fx *fixture) decl(t *testing.T, file, marked string) psi.Decl {
	t.Helper()
	n := fx.at(t, file, marked)
	d := fx.s.Resolve(n)
	if d == nil {
		t.Fatalf("%q resolves to nothing", marked)
	}
	return d
}

func (fx *fixture) at(t *testing.T, file, marked string) psi.Node {
	t.Helper()
	f := fx.files[file]
	bar := strings.Index(marked, "|")
	plain := marked[:bar] + marked[bar+1:]
	i := strings.Index(string(f.Tree.Source), plain)
	if i < 0 {
		t.Fatalf("%q not found in %s", plain, file)
	}
	return psi.Wrap(syntax.NodeAt(f.Tree.Root, uint32(i+bar)), f)
}

func perFile(refs []psi.Node) map[string]int {
	out := make(map[string]int)
	for _, r := range refs {
		out[strings.TrimPrefix(r.File.URI, "file:///w/")]++
	}
	return out
}

func TestFind(t *testing.T) {
	t.Parallel()
	fx := load(t)
	tests := []struct {
		name   string
		file   string
		marked string
		main   int
		lib    int
	}{
		{"struct field everywhere", "main.tact", "struct Point { |x", 3, 2},
		{"local stays in its function", "main.tact", "let |x = p.x", 2, 0},
		{"parameter", "main.tact", "fun other(|x", 1, 0},
		{"storage variable through self", "main.tact", "|count: Int = 0", 4, 0},
		{"global function across files", "lib.tact", "fun |scale", 1, 2},
		{"struct type", "main.tact", "struct |Point", 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := fx.decl(t, tt.file, tt.marked)
			got := perFile(Find(fx.s, d))
			if got["main.tact"] != tt.main || got["lib.tact"] != tt.lib {
				t.Errorf("Find(%s) per file = %v, want main %d lib %d", d.Name(), got, tt.main, tt.lib)
			}
		})
	}
}

func TestFindExcludesDefinition(t *testing.T) {
	t.Parallel()
	fx := load(t)
	d := fx.decl(t, "main.tact", "fun |area")
	if refs := Find(fx.s, d); len(refs) != 0 {
		t.Errorf("Find(area) = %d nodes, want none", len(refs))
	}
}

func TestRename(t *testing.T) {
	t.Parallel()
	fx := load(t)
	edit, err := Rename(fx.s, fx.at(t, "main.tact", "dump(|scale("), "rescale")
	if err != nil {
		t.Fatal(err)
	}
	total := 0
	for uri, edits := range edit.Changes {
		for _, e := range edits {
			if e.NewText != "rescale" {
				t.Errorf("%s: new text %q", uri, e.NewText)
			}
			if e.Range.End.Character-e.Range.Start.Character != uint32(len("scale")) {
				t.Errorf("%s: edit spans %+v", uri, e.Range)
			}
		}
		total += len(edits)
	}
	if got := len(edit.Changes["file:///w/lib.tact"]); got != 3 {
		t.Errorf("lib.tact edits = %d, want 3", got)
	}
	if total != 4 {
		t.Errorf("total edits = %d, want 4", total)
	}
}

func TestRenameErrors(t *testing.T) {
	t.Parallel()
	fx := load(t)
	ref := fx.at(t, "main.tact", "dump(|scale(")
	for _, name := range []string{"", "1abc", "let", "self", "a-b"} {
		if _, err := Rename(fx.s, ref, name); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Rename to %q: err = %v, want ErrInvalidName", name, err)
		}
	}
	if _, err := Rename(fx.s, fx.at(t, "main.tact", "return |stdOnly()"), "mine"); !errors.Is(err, ErrNoDefinition) {
		t.Errorf("renaming a stdlib function: err = %v", err)
	}
	if _, err := Rename(fx.s, fx.at(t, "lib.tact", "v * |2"), "two"); err == nil {
		t.Error("renaming a literal succeeded")
	}
}
