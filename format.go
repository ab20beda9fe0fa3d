package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
)

// runFmt implements `tactguide fmt`. With no files it formats stdin to
// stdout, unless stdin is a terminal.
func runFmt(args []string, stdin *os.File, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("tactguide fmt", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		write bool
		check bool
		c     common
	)
	fs.BoolVar(&write, "w", false, "write the result back to the files")
	fs.BoolVar(&check, "check", false, "list files whose formatting differs and fail if any do")
	c.register(fs)

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: tactguide fmt [flags] [files...]

Format Tact source. Without files, stdin is formatted to stdout. Layout
settings come from the nearest `+"tactguide.yaml"+` above each file.

Flags:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}

	if fs.NArg() == 0 {
		if isatty.IsTerminal(stdin.Fd()) || isatty.IsCygwinTerminal(stdin.Fd()) {
			fs.Usage()
			return errors.New("fmt: no files given and stdin is a terminal")
		}
		if write {
			return errors.New("fmt: -w needs file arguments")
		}
		return formatStdin(stdin, c, check, stdout)
	}

	var failed, unformatted int
	for _, path := range fs.Args() {
		changed, err := formatFile(path, c, write, check, stdout)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "%s: %v\n", path, err)
			failed++
			continue
		}
		if check && changed {
			_, _ = fmt.Fprintln(stdout, path)
			unformatted++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d file(s) could not be formatted", failed)
	}
	if unformatted > 0 {
		return fmt.Errorf("%d file(s) need formatting", unformatted)
	}
	return nil
}

func formatStdin(stdin io.Reader, c common, check bool, stdout io.Writer) error {
	src, err := io.ReadAll(stdin)
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}
	cfg, _, err := loadConfig(c.config, ".")
	if err != nil {
		return err
	}
	res, err := cfg.Formatter().FormatWithResult(string(src))
	if err != nil {
		return fmt.Errorf("<stdin>: %w", err)
	}
	if check {
		if res.Changed {
			_, _ = fmt.Fprintln(stdout, "<stdin>")
			return errors.New("1 file(s) need formatting")
		}
		return nil
	}
	_, _ = io.WriteString(stdout, res.Content)
	return nil
}

// formatFile formats path and reports whether the result differs from the
// file. Without -w or -check the result goes to stdout.
func formatFile(path string, c common, write, check bool, stdout io.Writer) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false, err
	}
	cfg, _, err := loadConfig(c.config, filepath.Dir(abs))
	if err != nil {
		return false, err
	}
	res, err := cfg.Formatter().FormatWithResult(string(src))
	if err != nil {
		return false, err
	}
	switch {
	case check:
	case write:
		if res.Changed {
			if err := os.WriteFile(path, []byte(res.Content), info.Mode().Perm()); err != nil {
				return false, fmt.Errorf("writing: %w", err)
			}
		}
	default:
		_, _ = io.WriteString(stdout, res.Content)
	}
	return res.Changed, nil
}
