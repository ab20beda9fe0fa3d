package workspace

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/phobologic/tactguide/internal/psi"
	"github.com/phobologic/tactguide/internal/referent"
	"github.com/phobologic/tactguide/internal/resolve"
)

const libSource = `message Transfer { amount: Int as coins }

fun fee(x: Int): Int {
    return x / 100;
}
`

const mainSource = `import "./lib";
import "@stdlib/ownable";

contract Wallet(owner: Address) with Ownable {
    balance: Int = 0;

    receive(msg: Transfer) {
        self.balance += msg.amount - fee(msg.amount);
    }

    get fun total(): Int { return self.balance; }
}
`

const ownableSource = `trait Ownable {
    owner: Address;

    fun requireOwner() {}
}
`

type fixture struct {
	w      *Workspace
	root   string
	stdlib string
	warn   *bytes.Buffer
}

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func load(t *testing.T, opts Options) *fixture {
	t.Helper()
	fx := &fixture{root: t.TempDir(), stdlib: t.TempDir(), warn: &bytes.Buffer{}}
	writeFile(t, fx.root, "lib.tact", libSource)
	writeFile(t, fx.root, "main.tact", mainSource)
	writeFile(t, fx.stdlib, "libs/ownable.tact", ownableSource)
	opts.Root = fx.root
	opts.Stdlib = fx.stdlib
	opts.Warn = fx.warn
	w, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	fx.w = w
	return fx
}

func (fx *fixture) path(name string) string {
	return filepath.Join(fx.root, name)
}

// pos returns the position of the `|` in marked, which must occur in src
// without the bar.
func pos(t *testing.T, src, marked string) protocol.Position {
	t.Helper()
	bar := strings.Index(marked, "|")
	plain := marked[:bar] + marked[bar+1:]
	i := strings.Index(src, plain)
	if i < 0 {
		t.Fatalf("%q not in source", plain)
	}
	off := i + bar
	line := strings.Count(src[:off], "\n")
	col := off - (strings.LastIndex(src[:off], "\n") + 1)
	return protocol.Position{Line: uint32(line), Character: uint32(col)}
}

func TestLoad(t *testing.T) {
	t.Parallel()
	fx := load(t, Options{})
	got := fx.w.Files()
	want := []string{fx.path("lib.tact"), fx.path("main.tact")}
	if len(got) != len(want) {
		t.Fatalf("Files() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("file %d = %s, want %s", i, got[i], want[i])
		}
	}
	if fx.w.Root != fx.root {
		t.Errorf("Root = %s, want %s", fx.w.Root, fx.root)
	}
}

func TestLoadMaxFileSize(t *testing.T) {
	t.Parallel()
	fx := load(t, Options{MaxFileSize: len(libSource) + 1})
	if got := fx.w.Files(); len(got) != 1 || filepath.Base(got[0]) != "lib.tact" {
		t.Errorf("Files() = %v, want only lib.tact", got)
	}
	if !strings.Contains(fx.warn.String(), "Warning: main.tact: skipped") {
		t.Errorf("warnings = %q", fx.warn.String())
	}
}

func TestLoadSkipTests(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, root, "wallet.tact", "contract Wallet {}\n")
	writeFile(t, root, "tests/wallet.spec.tact", "contract Probe {}\n")

	for _, skip := range []bool{false, true} {
		w, err := Load(context.Background(), Options{Root: root, SkipTests: skip})
		if err != nil {
			t.Fatal(err)
		}
		want := 2
		if skip {
			want = 1
		}
		if got := len(w.Files()); got != want {
			t.Errorf("SkipTests=%v: %d files, want %d", skip, got, want)
		}
	}
}

func TestDefinition(t *testing.T) {
	t.Parallel()
	fx := load(t, Options{})
	tests := []struct {
		name   string
		marked string
		file   string
		want   protocol.Position
	}{
		{"function in imported file", "- |fee(", "lib.tact", protocol.Position{Line: 2, Character: 4}},
		{"message type", "msg: |Transfer", "lib.tact", protocol.Position{Line: 0, Character: 8}},
		{"storage variable", "self.|balance +=", "main.tact", protocol.Position{Line: 4, Character: 4}},
		{"stdlib trait", "with |Ownable", "", protocol.Position{Line: 0, Character: 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := fx.w.Definition(fx.path("main.tact"), pos(t, mainSource, tt.marked))
			if err != nil {
				t.Fatal(err)
			}
			if loc == nil {
				t.Fatal("no definition")
			}
			wantURI := psi.PathToURI(filepath.Join(fx.stdlib, "libs", "ownable.tact"))
			if tt.file != "" {
				wantURI = psi.PathToURI(fx.path(tt.file))
			}
			if loc.URI != wantURI {
				t.Errorf("URI = %s, want %s", loc.URI, wantURI)
			}
			if loc.Range.Start != tt.want {
				t.Errorf("start = %+v, want %+v", loc.Range.Start, tt.want)
			}
		})
	}
}

func TestDefinitionNothing(t *testing.T) {
	t.Parallel()
	fx := load(t, Options{})
	loc, err := fx.w.Definition(fx.path("main.tact"), pos(t, mainSource, "Int = |0;"))
	if err != nil || loc != nil {
		t.Errorf("Definition on a literal = %+v, %v", loc, err)
	}
}

func TestRequestErrors(t *testing.T) {
	t.Parallel()
	fx := load(t, Options{})
	if _, err := fx.w.Hover(fx.path("missing.tact"), protocol.Position{}); !errors.Is(err, ErrUnknownFile) {
		t.Errorf("unknown file: err = %v", err)
	}
	if _, err := fx.w.Hover(fx.path("main.tact"), protocol.Position{Line: 500}); !errors.Is(err, ErrBadPosition) {
		t.Errorf("bad line: err = %v", err)
	}
	if _, err := fx.w.Rename(fx.path("main.tact"), pos(t, mainSource, "- |fee("), "let"); !errors.Is(err, referent.ErrInvalidName) {
		t.Errorf("reserved name: err = %v", err)
	}
}

func TestReferences(t *testing.T) {
	t.Parallel()
	fx := load(t, Options{})
	p := pos(t, libSource, "fun |fee")
	refs, err := fx.w.References(fx.path("lib.tact"), p, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 2 {
		t.Fatalf("References = %+v, want declaration plus one use", refs)
	}
	if refs[0].URI != psi.PathToURI(fx.path("lib.tact")) || refs[0].Range.Start != p {
		t.Errorf("first location is not the declaration: %+v", refs[0])
	}
	if refs[1].URI != psi.PathToURI(fx.path("main.tact")) {
		t.Errorf("use in %s", refs[1].URI)
	}

	refs, err = fx.w.References(fx.path("lib.tact"), p, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 1 {
		t.Errorf("References without declaration = %d", len(refs))
	}
}

func TestTypeAt(t *testing.T) {
	t.Parallel()
	fx := load(t, Options{})
	tests := []struct {
		marked string
		want   string
	}{
		{"- fee(|msg.amount)", "Transfer"},
		{"|self.balance +=", "Wallet"},
		{"self.|balance +=", "Int"},
		{"Int = |0;", "Int"},
	}
	for _, tt := range tests {
		got, err := fx.w.TypeAt(fx.path("main.tact"), pos(t, mainSource, tt.marked))
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("TypeAt(%q) = %q, want %q", tt.marked, got, tt.want)
		}
	}
}

func TestHover(t *testing.T) {
	t.Parallel()
	fx := load(t, Options{})
	h, err := fx.w.Hover(fx.path("main.tact"), pos(t, mainSource, "msg: |Transfer"))
	if err != nil {
		t.Fatal(err)
	}
	if h == nil {
		t.Fatal("no hover")
	}
	mc, ok := h.Contents.(protocol.MarkupContent)
	if !ok || !strings.Contains(mc.Value, "message Transfer {\n    amount: Int as coins;\n}") {
		t.Errorf("hover = %#v", h.Contents)
	}
}

func TestComplete(t *testing.T) {
	t.Parallel()
	fx := load(t, Options{})
	items, err := fx.w.Complete(fx.path("main.tact"), pos(t, mainSource, "- fee|("))
	if err != nil {
		t.Fatal(err)
	}
	labels := make(map[string]bool)
	for _, it := range items {
		labels[it.Label] = true
	}
	// A call name offers top-level functions and self members, not locals.
	for _, want := range []string{"fee", "self.total"} {
		if !labels[want] {
			t.Errorf("completion is missing %q", want)
		}
	}
	if labels["msg"] {
		t.Error("completion offers the local msg at a call name")
	}
}

func TestRename(t *testing.T) {
	t.Parallel()
	fx := load(t, Options{})
	edit, err := fx.w.Rename(fx.path("main.tact"), pos(t, mainSource, "- |fee("), "commission")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"lib.tact", "main.tact"} {
		edits := edit.Changes[psi.PathToURI(fx.path(name))]
		if len(edits) != 1 || edits[0].NewText != "commission" {
			t.Errorf("%s edits = %+v", name, edits)
		}
	}
}

func TestUpdateAndRemove(t *testing.T) {
	t.Parallel()
	fx := load(t, Options{})
	ctx := context.Background()
	lib := fx.path("lib.tact")

	changed, err := fx.w.Update(ctx, lib, []byte(libSource))
	if err != nil || changed {
		t.Errorf("same content: changed = %v, err = %v", changed, err)
	}

	shifted := "\n\n" + libSource
	changed, err = fx.w.Update(ctx, lib, []byte(shifted))
	if err != nil || !changed {
		t.Fatalf("new content: changed = %v, err = %v", changed, err)
	}
	loc, err := fx.w.Definition(fx.path("main.tact"), pos(t, mainSource, "- |fee("))
	if err != nil || loc == nil {
		t.Fatalf("Definition after update = %+v, %v", loc, err)
	}
	if loc.Range.Start.Line != 4 {
		t.Errorf("definition line after update = %d, want 4", loc.Range.Start.Line)
	}

	extra := fx.path("extra.tact")
	if changed, err := fx.w.Update(ctx, extra, []byte("const EXTRA: Int = 1;\n")); err != nil || !changed {
		t.Fatalf("adding a file: changed = %v, err = %v", changed, err)
	}
	if got := len(fx.w.Files()); got != 3 {
		t.Errorf("Files() after add = %d, want 3", got)
	}

	fx.w.Remove(extra)
	if _, err := fx.w.Hover(extra, protocol.Position{}); !errors.Is(err, ErrUnknownFile) {
		t.Errorf("removed file: err = %v", err)
	}
}

func TestRequestRecoversInvariant(t *testing.T) {
	t.Parallel()
	fx := load(t, Options{})
	got, err := request(fx.w, "test", func() ([]string, error) {
		panic(&resolve.InvariantError{Msg: "broken tree"})
	})
	if got != nil || err != nil {
		t.Errorf("request = %v, %v, want empty result", got, err)
	}

	defer func() {
		if r := recover(); r == nil {
			t.Error("other panics must propagate")
		}
	}()
	_, _ = request(fx.w, "test", func() (int, error) { panic("boom") })
}

func TestMap(t *testing.T) {
	t.Parallel()
	fx := load(t, Options{})
	rm, err := fx.w.Map(true)
	if err != nil {
		t.Fatal(err)
	}
	if rm.RepoName != filepath.Base(fx.root) {
		t.Errorf("RepoName = %s", rm.RepoName)
	}
	if len(rm.Files) != 2 || rm.Files[0].Path != "lib.tact" {
		t.Fatalf("files = %+v, want lib.tact ranked first", rm.Files)
	}

	if len(rm.Dependencies) != 1 {
		t.Fatalf("dependencies = %+v", rm.Dependencies)
	}
	d := rm.Dependencies[0]
	if d.Source != "main.tact" || d.Target != "lib.tact" || strings.Join(d.Symbols, " ") != "Transfer fee" {
		t.Errorf("dependency = %+v", d)
	}

	if len(rm.CallEdges) != 1 || rm.CallEdges[0].Caller != "Wallet.receive(Transfer)" || rm.CallEdges[0].Callee != "fee" {
		t.Errorf("call edges = %+v", rm.CallEdges)
	}
	if len(rm.CallSites) != 1 || rm.CallSites[0].File != "main.tact" || rm.CallSites[0].Line != 8 {
		t.Errorf("call sites = %+v", rm.CallSites)
	}

	defs := make(map[string]string)
	for _, fi := range rm.Files {
		for _, tag := range fi.Tags {
			if tag.Kind == "def" {
				defs[tag.Name] = string(tag.SymbolKind)
			}
		}
	}
	want := map[string]string{
		"Transfer":        "message",
		"Transfer.amount": "field",
		"fee":             "function",
		"Wallet":          "contract",
		"Wallet.owner":    "field",
		"Wallet.balance":  "field",
		"Wallet.total":    "method",

		"Wallet.receive(Transfer)": "method",
	}
	for name, kind := range want {
		if defs[name] != kind {
			t.Errorf("definition %s kind = %q, want %q", name, defs[name], kind)
		}
	}
	if _, ok := defs["Ownable"]; ok {
		t.Error("stdlib declarations leaked into the map")
	}
}
