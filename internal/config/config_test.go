package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	t.Parallel()
	cfg, err := Parse([]byte(`
stdlib: /opt/tact/stdlib
exclude:
  - build/
  - "*.spec.tact"
max_file_size: "2048"
format:
  indent: "  "
`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Stdlib != "/opt/tact/stdlib" {
		t.Errorf("Stdlib = %q", cfg.Stdlib)
	}
	if len(cfg.Exclude) != 2 || cfg.Exclude[1] != "*.spec.tact" {
		t.Errorf("Exclude = %v", cfg.Exclude)
	}
	if cfg.MaxFileSize != 2048 {
		t.Errorf("MaxFileSize = %d, want 2048", cfg.MaxFileSize)
	}
	if cfg.Format.Indent != "  " {
		t.Errorf("Format.Indent = %q", cfg.Format.Indent)
	}
	// Unset keys keep their defaults.
	if cfg.Format.MaxWidth != 100 || cfg.CacheSize != 4096 {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		data string
		want string
	}{
		{"unknown key", "stdlb: x\n", "stdlb"},
		{"bad yaml", "exclude: [a\n", "parsing config"},
		{"zero width", "format:\n  max_width: 0\n", "max_width"},
		{"negative size", "max_file_size: -1\n", "max_file_size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tt.data))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Parse(%q) error = %v, want mention of %q", tt.data, err, tt.want)
			}
		})
	}
}

func TestParseEmpty(t *testing.T) {
	t.Parallel()
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxFileSize != Default().MaxFileSize {
		t.Errorf("empty config: %+v", cfg)
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Format.Indent != "    " {
		t.Errorf("missing file did not give defaults: %+v", cfg)
	}

	if err := os.WriteFile(path, []byte("stdlib: vendor/stdlib\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "vendor", "stdlib"); cfg.Stdlib != want {
		t.Errorf("Stdlib = %q, want %q", cfg.Stdlib, want)
	}
}

func TestFind(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	nested := filepath.Join(dir, "contracts", "jetton")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, FileName)
	if err := os.WriteFile(want, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Find(nested)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("Find = %q, want %q", got, want)
	}
}

func TestFindMissing(t *testing.T) {
	t.Parallel()
	_, err := Find(t.TempDir())
	if err == nil {
		t.Skip("a config file exists above the temp dir")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Find error = %v, want ErrNotFound", err)
	}
}

func TestFormatter(t *testing.T) {
	t.Parallel()
	cfg := Default()
	cfg.Format.Indent = "\t"
	f := cfg.Formatter()
	if f.IndentString != "\t" || f.MaxLineWidth != 100 {
		t.Errorf("Formatter = %+v", f)
	}
}
