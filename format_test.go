package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	messy     = "fun    foo(param:    Int)   ;"
	formatted = "fun foo(param: Int);\n"
)

func TestFmtFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTestFile(t, dir, "a.tact", messy)

	var stdout, stderr bytes.Buffer
	if err := runFmt([]string{filepath.Join(dir, "a.tact")}, nil, &stdout, &stderr); err != nil {
		t.Fatalf("fmt: %v\nstderr: %s", err, stderr.String())
	}
	if got := stdout.String(); got != formatted {
		t.Errorf("fmt = %q, want %q", got, formatted)
	}
}

func TestFmtCheckAndWrite(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "a.tact")
	writeTestFile(t, dir, "a.tact", messy)

	var stdout, stderr bytes.Buffer
	err := runFmt([]string{"-check", path}, nil, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "need formatting") {
		t.Errorf("-check on a messy file: err = %v", err)
	}
	if got := stdout.String(); got != path+"\n" {
		t.Errorf("-check listed %q", got)
	}

	if err := runFmt([]string{"-w", path}, nil, &bytes.Buffer{}, &stderr); err != nil {
		t.Fatalf("-w: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != formatted {
		t.Errorf("file after -w = %q", data)
	}

	stdout.Reset()
	if err := runFmt([]string{"-check", path}, nil, &stdout, &stderr); err != nil {
		t.Errorf("-check after -w: %v", err)
	}
	if stdout.Len() != 0 {
		t.Errorf("-check listed %q after -w", stdout.String())
	}
}

func TestFmtParseError(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.tact")
	writeTestFile(t, dir, "broken.tact", "contract A {")

	var stdout, stderr bytes.Buffer
	if err := runFmt([]string{"-w", path}, nil, &stdout, &stderr); err == nil {
		t.Fatal("expected error for a file that does not parse")
	}
	if !strings.Contains(stderr.String(), path) {
		t.Errorf("stderr should name the file: %q", stderr.String())
	}
	data, _ := os.ReadFile(path)
	if string(data) != "contract A {" {
		t.Errorf("broken file was rewritten: %q", data)
	}
}

func TestFmtConfigIndent(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTestFile(t, dir, "tactguide.yaml", "format:\n  indent: \"  \"\n")
	writeTestFile(t, dir, "src/f.tact", "fun f() { return 1; }")

	var stdout, stderr bytes.Buffer
	if err := runFmt([]string{filepath.Join(dir, "src", "f.tact")}, nil, &stdout, &stderr); err != nil {
		t.Fatalf("fmt: %v", err)
	}
	if want := "fun f() {\n  return 1;\n}\n"; stdout.String() != want {
		t.Errorf("fmt = %q, want %q", stdout.String(), want)
	}
}

func TestFmtStdin(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTestFile(t, dir, "in.tact", messy)
	in, err := os.Open(filepath.Join(dir, "in.tact"))
	if err != nil {
		t.Fatal(err)
	}
	defer in.Close()

	var stdout, stderr bytes.Buffer
	if err := runFmt(nil, in, &stdout, &stderr); err != nil {
		t.Fatalf("fmt: %v", err)
	}
	if got := stdout.String(); got != formatted {
		t.Errorf("fmt = %q, want %q", got, formatted)
	}
}

func TestFmtStdinWrite(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTestFile(t, dir, "in.tact", messy)
	in, err := os.Open(filepath.Join(dir, "in.tact"))
	if err != nil {
		t.Fatal(err)
	}
	defer in.Close()

	if err := runFmt([]string{"-w"}, in, &bytes.Buffer{}, &bytes.Buffer{}); err == nil {
		t.Error("-w without files should fail")
	}
}
