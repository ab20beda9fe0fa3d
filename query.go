package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"fortio.org/safecast"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/phobologic/tactguide/internal/psi"
	"github.com/phobologic/tactguide/internal/workspace"
)

// query answers one editor request at pos in path. extra holds the
// positional arguments after FILE:LINE:COL.
type query func(w *workspace.Workspace, path string, pos protocol.Position, extra []string, stdout io.Writer) error

// queryCommand builds a command taking FILE:LINE:COL plus nargs-1 more
// arguments. The workspace root is the directory of the nearest config
// file, or the directory of FILE.
func queryCommand(name string, nargs int, q query) command {
	return func(args []string, stdout, stderr io.Writer) error {
		fs := flag.NewFlagSet("tactguide "+name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		var c common
		c.register(fs)
		usage := "FILE:LINE:COL"
		if nargs > 1 {
			usage += " NAME"
		}
		fs.Usage = func() {
			fmt.Fprintf(stderr, "Usage: tactguide %s [flags] %s\n\nLINE and COL start at 1.\n\nFlags:\n", name, usage)
			fs.PrintDefaults()
		}
		if err := fs.Parse(reorderArgs(args)); err != nil {
			return err
		}
		if fs.NArg() != nargs {
			fs.Usage()
			return fmt.Errorf("%s: expected %s", name, usage)
		}

		file, pos, err := parseLocation(fs.Arg(0))
		if err != nil {
			return err
		}
		file, err = filepath.Abs(file)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", fs.Arg(0), err)
		}

		cfg, cfgPath, err := loadConfig(c.config, filepath.Dir(file))
		if err != nil {
			return err
		}
		root := filepath.Dir(file)
		if cfgPath != "" {
			root = filepath.Dir(cfgPath)
		}
		stopLog, err := startLog(c.log, cfg)
		if err != nil {
			return err
		}
		defer stopLog()

		w, err := workspace.Load(context.Background(), workspace.Options{
			Root:        root,
			Stdlib:      cfg.Stdlib,
			Exclude:     cfg.Exclude,
			MaxFileSize: cfg.MaxFileSize,
			CacheSize:   cfg.CacheSize,
			Warn:        stderr,
		})
		if err != nil {
			return err
		}
		return q(w, file, pos, fs.Args()[1:], stdout)
	}
}

// parseLocation splits FILE:LINE:COL from the right, so FILE may contain
// colons, and converts the 1-based line and column to a protocol position.
func parseLocation(arg string) (string, protocol.Position, error) {
	bad := func() (string, protocol.Position, error) {
		return "", protocol.Position{}, fmt.Errorf("%q: expected FILE:LINE:COL", arg)
	}
	i := strings.LastIndex(arg, ":")
	if i < 0 {
		return bad()
	}
	j := strings.LastIndex(arg[:i], ":")
	if j <= 0 {
		return bad()
	}
	line, err := strconv.Atoi(arg[j+1 : i])
	if err != nil || line < 1 {
		return bad()
	}
	col, err := strconv.Atoi(arg[i+1:])
	if err != nil || col < 1 {
		return bad()
	}
	l, err := safecast.Conv[uint32](line - 1)
	if err != nil {
		return "", protocol.Position{}, fmt.Errorf("line %d: %w", line, err)
	}
	c, err := safecast.Conv[uint32](col - 1)
	if err != nil {
		return "", protocol.Position{}, fmt.Errorf("column %d: %w", col, err)
	}
	return arg[:j], protocol.Position{Line: l, Character: c}, nil
}

// formatLocation renders loc as PATH:LINE:COL with 1-based numbers.
// Locations outside the file system keep their URI.
func formatLocation(loc protocol.Location) string {
	path := psi.URIToPath(loc.URI)
	if path == "" {
		path = loc.URI
	}
	return fmt.Sprintf("%s:%d:%d", path, loc.Range.Start.Line+1, loc.Range.Start.Character+1)
}

func definition(w *workspace.Workspace, path string, pos protocol.Position, _ []string, stdout io.Writer) error {
	loc, err := w.Definition(path, pos)
	if err != nil {
		return err
	}
	if loc == nil {
		return fmt.Errorf("%s:%d:%d: no definition", path, pos.Line+1, pos.Character+1)
	}
	_, _ = fmt.Fprintln(stdout, formatLocation(*loc))
	return nil
}

func references(w *workspace.Workspace, path string, pos protocol.Position, _ []string, stdout io.Writer) error {
	locs, err := w.References(path, pos, true)
	if err != nil {
		return err
	}
	for _, loc := range locs {
		_, _ = fmt.Fprintln(stdout, formatLocation(loc))
	}
	return nil
}

func typeAt(w *workspace.Workspace, path string, pos protocol.Position, _ []string, stdout io.Writer) error {
	ty, err := w.TypeAt(path, pos)
	if err != nil {
		return err
	}
	if ty != "" {
		_, _ = fmt.Fprintln(stdout, ty)
	}
	return nil
}

func hoverAt(w *workspace.Workspace, path string, pos protocol.Position, _ []string, stdout io.Writer) error {
	h, err := w.Hover(path, pos)
	if err != nil {
		return err
	}
	if h == nil {
		return nil
	}
	if mc, ok := h.Contents.(protocol.MarkupContent); ok {
		_, _ = fmt.Fprintln(stdout, mc.Value)
	}
	return nil
}

func complete(w *workspace.Workspace, path string, pos protocol.Position, _ []string, stdout io.Writer) error {
	items, err := w.Complete(path, pos)
	if err != nil {
		return err
	}
	for _, it := range items {
		_, _ = fmt.Fprintln(stdout, it.Label)
	}
	return nil
}

// rename prints one line per edit, PATH:LINE:COL-LINE:COL NEWTEXT, sorted
// by path and position.
func rename(w *workspace.Workspace, path string, pos protocol.Position, extra []string, stdout io.Writer) error {
	edit, err := w.Rename(path, pos, extra[0])
	if err != nil {
		return err
	}
	if edit == nil {
		return nil
	}
	uris := make([]string, 0, len(edit.Changes))
	for uri := range edit.Changes {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	for _, uri := range uris {
		edits := edit.Changes[uri]
		sort.Slice(edits, func(i, j int) bool {
			a, b := edits[i].Range.Start, edits[j].Range.Start
			if a.Line != b.Line {
				return a.Line < b.Line
			}
			return a.Character < b.Character
		})
		for _, e := range edits {
			start := formatLocation(protocol.Location{URI: uri, Range: e.Range})
			_, _ = fmt.Fprintf(stdout, "%s-%d:%d %s\n", start, e.Range.End.Line+1, e.Range.End.Character+1, e.NewText)
		}
	}
	return nil
}
