package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/phobologic/tactguide/internal/config"
)

const (
	sentinelStart = "# tactguide:start"
	sentinelEnd   = "# tactguide:end"
)

// managed is the part of tactguide.yaml that init owns.
type managed struct {
	Stdlib      string   `yaml:"stdlib,omitempty"`
	Exclude     []string `yaml:"exclude,omitempty"`
	MaxFileSize int      `yaml:"max_file_size"`
	CacheSize   int      `yaml:"cache_size"`
	Format      struct {
		Indent   string `yaml:"indent"`
		MaxWidth int    `yaml:"max_width"`
	} `yaml:"format"`
}

// runInit implements the `tactguide init` subcommand, which writes (or
// updates) the managed settings block of a tactguide.yaml file.
func runInit(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("tactguide init", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		dryRun  bool
		stdlib  string
		exclude string
	)
	fs.BoolVar(&dryRun, "dry-run", false, "print what would be written without modifying the file")
	fs.StringVar(&stdlib, "stdlib", "", "Tact standard library directory, relative to the config file")
	fs.StringVar(&exclude, "exclude", "", "comma-separated gitignore-style patterns to skip")

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: tactguide init [flags] [path-to-tactguide.yaml]

Write the default tactguide settings to a config file. The settings are
wrapped in sentinel comments so they can be updated in place on subsequent
runs without touching surrounding content. Creates the file if it does not
exist.

path-to-tactguide.yaml defaults to ./%s.

Flags:
`, config.FileName)
		fs.PrintDefaults()
	}

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}

	var patterns []string
	for _, p := range strings.Split(exclude, ",") {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	section, err := generateSection(stdlib, patterns)
	if err != nil {
		return err
	}

	// --dry-run with no path: just print the section itself.
	if dryRun && fs.NArg() == 0 {
		_, _ = fmt.Fprintln(stdout, section)
		return nil
	}

	path := config.FileName
	if fs.NArg() > 0 {
		path = fs.Arg(0)
	}

	existing, _ := os.ReadFile(path)
	updated := applySection(string(existing), section)

	if _, err := config.Parse([]byte(updated)); err != nil {
		return fmt.Errorf("%s would not load after the update: %w", path, err)
	}

	if dryRun {
		_, _ = fmt.Fprint(stdout, updated)
		return nil
	}

	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	_, _ = fmt.Fprintf(stderr, "wrote tactguide settings to %s\n", path)
	return nil
}

// generateSection returns the sentinel-wrapped settings block holding the
// defaults plus the given stdlib directory and exclude patterns.
func generateSection(stdlib string, exclude []string) (string, error) {
	def := config.Default()
	m := managed{
		Stdlib:      stdlib,
		Exclude:     exclude,
		MaxFileSize: def.MaxFileSize,
		CacheSize:   def.CacheSize,
	}
	m.Format.Indent = def.Format.Indent
	m.Format.MaxWidth = def.Format.MaxWidth

	body, err := yaml.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encoding settings: %w", err)
	}
	header := "# Managed by `tactguide init`; rerun it to refresh this block.\n" +
		"# Run `tactguide --help` for the commands that read these settings.\n"
	return sentinelStart + "\n" + header + strings.TrimRight(string(body), "\n") + "\n" + sentinelEnd, nil
}

// applySection inserts section into content, replacing an existing sentinel
// block if present or appending if not. It is a pure function for easy testing.
func applySection(content, section string) string {
	start := strings.Index(content, sentinelStart)
	end := strings.Index(content, sentinelEnd)

	if start >= 0 && end > start {
		return content[:start] + section + content[end+len(sentinelEnd):]
	}

	if len(content) == 0 {
		return section + "\n"
	}
	// Append, ensuring a blank line separator.
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + "\n" + section + "\n"
}
