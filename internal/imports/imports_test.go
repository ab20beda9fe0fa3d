package imports

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolve(t *testing.T) {
	t.Parallel()
	std := filepath.FromSlash("/opt/tact/stdlib")
	importer := filepath.FromSlash("/w/src/main.tact")
	r := Resolver{Stdlib: std}
	tests := []struct {
		lib  string
		want string
	}{
		{"@stdlib/deploy", "/opt/tact/stdlib/libs/deploy.tact"},
		{"@stdlib/stoppable.tact", "/opt/tact/stdlib/libs/stoppable.tact"},
		{"./util", "/w/src/util.tact"},
		{"./util.tact", "/w/src/util.tact"},
		{"../lib/math", "/w/lib/math.tact"},
		{"./native.fc", ""},
		{"./native.func", ""},
		{"util", ""},
	}
	for _, tt := range tests {
		want := tt.want
		if want != "" {
			want = filepath.FromSlash(want)
		}
		if got := r.Resolve(importer, tt.lib); got != want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.lib, got, want)
		}
	}
	if got := (Resolver{}).Resolve(importer, "@stdlib/deploy"); got != "" {
		t.Errorf("without stdlib got %q", got)
	}
}

func TestResolveCheck(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.tact"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	r := Resolver{Check: true}
	importer := filepath.Join(dir, "main.tact")
	if got := r.Resolve(importer, "./a"); got != filepath.Join(dir, "a.tact") {
		t.Errorf("existing import = %q", got)
	}
	if got := r.Resolve(importer, "./b"); got != "" {
		t.Errorf("missing import = %q", got)
	}
}
