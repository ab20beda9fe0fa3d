package psi_test

import (
	"strings"
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/phobologic/tactguide/internal/parse"
	"github.com/phobologic/tactguide/internal/psi"
	"github.com/phobologic/tactguide/internal/syntax"
)

const source = `import "@stdlib/deploy";
import "./utils.tact";

// A point.
//
// Deprecated: use Vec.
struct Point { x: Int; y: Int? = null }

message(0x7362d09c) Transfer { amount: Int as coins }

/* block */
fun plain() {}

extends mutates fun bump(self: Point, by: Int): Point { return self }

contract Vault(owner: Address) with Ownable, Stoppable {
    const FEE: Int = 10;
    total: Int = 0;

    init() {}

    receive(msg: Transfer) {}
    receive("stop") {}
    bounced(msg: bounced<Transfer>) {}

    get fun total(): Int { return self.total }
    get(0x1234) fun custom(): Int { return 1 }
}
`

func parseFile(t *testing.T) *psi.File {
	t.Helper()
	return psi.NewFile("file:///w/main.tact", parse.Source([]byte(source), 1))
}

func decl(t *testing.T, f *psi.File, typ, name string) psi.Decl {
	t.Helper()
	var found psi.Decl
	syntax.Walk(f.Tree.Root, func(n syntax.Node) syntax.Action {
		if n.Type() != typ {
			return syntax.Continue
		}
		if d := psi.DeclOf(psi.Wrap(n, f)); d != nil && d.Name() == name {
			found = d
			return syntax.Stop
		}
		return syntax.Continue
	})
	if found == nil {
		t.Fatalf("no %s %s", typ, name)
	}
	return found
}

func TestImports(t *testing.T) {
	t.Parallel()
	f := parseFile(t)
	imps := f.Imports()
	if len(imps) != 2 {
		t.Fatalf("imports = %d, want 2", len(imps))
	}
	if imps[0].Library != "@stdlib/deploy" || imps[1].Library != "./utils.tact" {
		t.Errorf("libraries = %q, %q", imps[0].Library, imps[1].Library)
	}
}

func TestDocumentation(t *testing.T) {
	t.Parallel()
	f := parseFile(t)
	point := decl(t, f, "struct", "Point")
	want := "A point.\n\nDeprecated: use Vec."
	if got := point.Named().Documentation(); got != want {
		t.Errorf("Documentation = %q, want %q", got, want)
	}
	if !point.Named().Deprecated() {
		t.Error("Point should be deprecated")
	}
	if got := decl(t, f, "global_function", "plain").Named().Documentation(); got != "" {
		t.Errorf("block comments are not documentation, got %q", got)
	}
}

func TestDeclKinds(t *testing.T) {
	t.Parallel()
	f := parseFile(t)
	tests := []struct {
		typ, name, kind string
	}{
		{"struct", "Point", "struct"},
		{"message", "Transfer", "message"},
		{"global_function", "bump", "function"},
		{"contract", "Vault", "contract"},
		{"storage_constant", "FEE", "constant"},
		{"storage_variable", "total", "field"},
		{"parameter", "owner", "field"},
		{"parameter", "by", "variable"},
		{"init_function", "init", "init"},
		{"bounced_function", "bounced", "bounced"},
	}
	for _, tt := range tests {
		if got := decl(t, f, tt.typ, tt.name).Kind(); got != tt.kind {
			t.Errorf("%s %s: kind %q, want %q", tt.typ, tt.name, got, tt.kind)
		}
	}
}

func TestFun(t *testing.T) {
	t.Parallel()
	f := parseFile(t)
	bump := decl(t, f, "global_function", "bump").(*psi.Fun)
	if !bump.WithSelf() {
		t.Error("bump should take self")
	}
	if got := psi.TypeText(bump.SelfType()); got != "Point" {
		t.Errorf("self type = %q", got)
	}
	if got := bump.Signature(); got != "extends mutates fun bump(self: Point, by: Int): Point" {
		t.Errorf("Signature = %q", got)
	}
	if bump.Owner() != nil {
		t.Error("top-level function has an owner")
	}

	total := decl(t, f, "storage_function", "total").(*psi.Fun)
	if !total.IsGetter() || !total.GetterID().IsNil() {
		t.Errorf("total: getter %v, id %v", total.IsGetter(), total.GetterID())
	}
	if o := total.Owner(); o == nil || o.Name() != "Vault" {
		t.Errorf("owner = %v", o)
	}
	custom := decl(t, f, "storage_function", "custom").(*psi.Fun)
	if got := custom.Signature(); got != "get(0x1234) fun custom(): Int" {
		t.Errorf("Signature = %q", got)
	}
}

func TestFields(t *testing.T) {
	t.Parallel()
	f := parseFile(t)
	point := decl(t, f, "struct", "Point").(*psi.Struct)
	fields := point.Fields()
	if len(fields) != 2 {
		t.Fatalf("fields = %d", len(fields))
	}
	y := fields[1]
	if !psi.IsOptional(y.TypeNode()) || psi.TypeText(y.TypeNode()) != "Int?" {
		t.Errorf("y type = %q", psi.TypeText(y.TypeNode()))
	}
	if y.Default().Content() != "null" {
		t.Errorf("y default = %q", y.Default().Content())
	}
	if o := y.Owner(); o == nil || o.Name() != "Point" {
		t.Errorf("owner = %v", o)
	}

	transfer := decl(t, f, "message", "Transfer").(*psi.Message)
	if got := transfer.Opcode(); got != "0x7362d09c" {
		t.Errorf("Opcode = %q", got)
	}
	if got := transfer.Fields()[0].TLB().Content(); got != "as coins" {
		t.Errorf("TLB = %q", got)
	}
}

func TestStorageOwner(t *testing.T) {
	t.Parallel()
	f := parseFile(t)
	vault := decl(t, f, "contract", "Vault").(*psi.Contract)
	var names []string
	for _, fl := range vault.OwnFields() {
		names = append(names, fl.Name())
	}
	if got := strings.Join(names, " "); got != "owner total" {
		t.Errorf("OwnFields = %q", got)
	}
	if n := len(vault.OwnMethods()); n != 2 {
		t.Errorf("OwnMethods = %d", n)
	}
	if n := len(vault.OwnConstants()); n != 1 {
		t.Errorf("OwnConstants = %d", n)
	}
	var traits []string
	for _, r := range vault.TraitRefs() {
		traits = append(traits, r.Content())
	}
	if got := strings.Join(traits, " "); got != "Ownable Stoppable" {
		t.Errorf("TraitRefs = %q", got)
	}
	if vault.InitFunction() == nil {
		t.Error("no init")
	}
	var kinds []string
	for _, m := range vault.MessageFunctions() {
		kinds = append(kinds, m.Kind()+":"+m.Parameter().Type())
	}
	if got := strings.Join(kinds, " "); got != "receive:parameter receive:string bounced:parameter" {
		t.Errorf("MessageFunctions = %q", got)
	}
}

func TestExprOf(t *testing.T) {
	t.Parallel()
	seen := make(map[string]bool)
	for _, typ := range psi.ExpressionTypes {
		if seen[typ] {
			t.Errorf("%s listed twice", typ)
		}
		seen[typ] = true
		n := psi.Wrap(syntax.NewElem(typ, true), nil)
		if psi.ExprOf(n) == nil {
			t.Errorf("ExprOf(%s) = nil", typ)
		}
	}
	if psi.ExprOf(psi.Wrap(syntax.NewElem("let_statement", true), nil)) != nil {
		t.Error("statements are not expressions")
	}
}

func TestURIs(t *testing.T) {
	t.Parallel()
	if got := psi.PathToURI("/w/a b.tact"); got != "file:///w/a%20b.tact" {
		t.Errorf("PathToURI = %q", got)
	}
	if got := psi.URIToPath("file:///w/a%20b.tact"); got != "/w/a b.tact" {
		t.Errorf("URIToPath = %q", got)
	}
	if got := psi.URIToPath("tactguide:///stubs.tact"); got != "" {
		t.Errorf("URIToPath(stubs) = %q", got)
	}
}

func TestRangeAndOffset(t *testing.T) {
	t.Parallel()
	src := []byte("const S: String = \"héllo 😀\"; const X: Int = 1;")
	f := psi.NewFile("file:///w/a.tact", parse.Source(src, 1))
	i := strings.Index(string(src), "X")
	n := psi.Wrap(syntax.NodeAt(f.Tree.Root, uint32(i)), f)
	r := n.Range()
	// é is one UTF-16 unit in two bytes, the emoji two units in four.
	want := uint32(i - 1 - 2)
	if r.Start.Line != 0 || r.Start.Character != want || r.End.Character != want+1 {
		t.Errorf("Range(X) = %+v, want character %d", r, want)
	}
	off, ok := psi.Offset(src, r.Start)
	if !ok || off != i {
		t.Errorf("Offset(%+v) = %d, %v, want %d", r.Start, off, ok, i)
	}
	if _, ok := psi.Offset(src, protocol.Position{Line: 3}); ok {
		t.Error("Offset accepted a missing line")
	}
}
