// Package workspace owns the documents of one Tact project and answers
// editor requests against them.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"

	"github.com/phobologic/tactguide/internal/discover"
	"github.com/phobologic/tactguide/internal/imports"
	"github.com/phobologic/tactguide/internal/index"
	"github.com/phobologic/tactguide/internal/lang"
	"github.com/phobologic/tactguide/internal/log"
	"github.com/phobologic/tactguide/internal/parse"
	"github.com/phobologic/tactguide/internal/psi"
	"github.com/phobologic/tactguide/internal/resolve"
)

// ErrUnknownFile is returned for a path that is not part of the workspace.
var ErrUnknownFile = errors.New("file is not in the workspace")

// Options configures Load.
type Options struct {
	// Root is the workspace directory.
	Root string
	// Stdlib is the Tact standard library directory, "" when absent.
	Stdlib string
	// Exclude holds gitignore-style patterns skipped during discovery.
	Exclude []string
	// SkipTests leaves out files discover.IsTestFile matches.
	SkipTests bool
	// MaxFileSize skips larger files; <= 0 disables the limit.
	MaxFileSize int
	// CacheSize bounds each resolver cache; <= 0 selects the default.
	CacheSize int
	// Warn receives skipped-file warnings. Nil discards them.
	Warn io.Writer
}

// Workspace is a loaded project. Its methods are safe for concurrent
// use; requests are serialized.
type Workspace struct {
	ID   uuid.UUID
	Root string

	mu      sync.Mutex
	session *resolve.Session
	// hashes holds the content hash of every indexed file by URI.
	hashes map[string]uint64
	warn   io.Writer
}

type loaded struct {
	file *psi.File
	hash uint64
}

// Load discovers, reads and parses the workspace and standard library
// files in parallel and indexes them.
func Load(ctx context.Context, opts Options) (*Workspace, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}
	warn := opts.Warn
	if warn == nil {
		warn = io.Discard
	}

	stdlibPrefix := ""
	var stdlib []string
	if opts.Stdlib != "" {
		dir, err := filepath.Abs(opts.Stdlib)
		if err != nil {
			return nil, fmt.Errorf("resolving stdlib: %w", err)
		}
		opts.Stdlib = dir
		stdlibPrefix = dirURI(dir)
		entries, err := discover.Files(dir, nil)
		if err != nil {
			return nil, fmt.Errorf("discovering stdlib: %w", err)
		}
		for _, e := range entries {
			stdlib = append(stdlib, filepath.Join(dir, e.Path))
		}
	}

	entries, err := discover.Files(root, opts.Exclude)
	if err != nil {
		return nil, fmt.Errorf("discovering files: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if opts.SkipTests && discover.IsTestFile(e.Path) {
			continue
		}
		paths = append(paths, filepath.Join(root, e.Path))
	}
	paths = filterBySize(root, paths, opts.MaxFileSize, warn)

	files, err := parseAll(ctx, append(paths, stdlib...), warn)
	if err != nil {
		return nil, err
	}

	idx := index.New(stdlibPrefix, dirURI(root))
	w := &Workspace{
		ID:     uuid.New(),
		Root:   root,
		hashes: make(map[string]uint64, len(files)),
		warn:   warn,
	}
	for _, l := range files {
		idx.AddFile(l.file)
		w.hashes[l.file.URI] = l.hash
	}
	w.session, err = resolve.NewSession(idx, imports.Resolver{Stdlib: opts.Stdlib, Check: true}, opts.CacheSize)
	if err != nil {
		return nil, err
	}
	log.Index("workspace %s: %d files under %s, %d stdlib files", w.ID, len(paths), root, len(stdlib))
	return w, nil
}

func dirURI(dir string) string {
	return psi.PathToURI(dir) + "/"
}

func filterBySize(root string, paths []string, maxSize int, warn io.Writer) []string {
	if maxSize <= 0 {
		return paths
	}
	var kept []string
	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil {
			kept = append(kept, p) // keep if can't stat
			continue
		}
		if fi.Size() > int64(maxSize) {
			rel, _ := filepath.Rel(root, p)
			_, _ = fmt.Fprintf(warn, "Warning: %s: skipped (>%d bytes)\n", rel, maxSize)
			continue
		}
		kept = append(kept, p)
	}
	return kept
}

// parseAll reads and parses paths with one worker per CPU. Unreadable
// files are skipped with a warning; the result keeps the input order.
func parseAll(ctx context.Context, paths []string, warn io.Writer) ([]loaded, error) {
	results := make([]*loaded, len(paths))
	var warnMu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			l, err := parseFile(ctx, p)
			if err != nil {
				warnMu.Lock()
				_, _ = fmt.Fprintf(warn, "Warning: failed to parse %s: %v\n", p, err)
				warnMu.Unlock()
				return nil
			}
			results[i] = l
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]loaded, 0, len(results))
	for _, l := range results {
		if l != nil {
			out = append(out, *l)
		}
	}
	return out, nil
}

func parseFile(ctx context.Context, path string) (*loaded, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseSource(ctx, psi.PathToURI(path), src)
}

// parseSource parses src with its content hash as the tree revision.
func parseSource(ctx context.Context, uri string, src []byte) (*loaded, error) {
	h := xxh3.Hash(src)
	tree, err := parse.File(ctx, lang.Lookup(lang.Tact), src, h)
	if err != nil {
		return nil, err
	}
	return &loaded{file: psi.NewFile(uri, tree), hash: h}, nil
}

// Update replaces the content of path, adding the file when it is new. It
// reports whether anything changed.
func (w *Workspace) Update(ctx context.Context, path string, content []byte) (bool, error) {
	uri := psi.PathToURI(path)
	w.mu.Lock()
	defer w.mu.Unlock()
	if h, ok := w.hashes[uri]; ok && h == xxh3.Hash(content) {
		return false, nil
	}
	l, err := parseSource(ctx, uri, content)
	if err != nil {
		return false, fmt.Errorf("parsing %s: %w", path, err)
	}
	if _, ok := w.hashes[uri]; ok {
		w.session.ReplaceFile(l.file)
	} else {
		w.session.AddFile(l.file)
	}
	w.hashes[uri] = l.hash
	log.Index("workspace %s: updated %s", w.ID, path)
	return true, nil
}

// Remove drops path from the workspace.
func (w *Workspace) Remove(path string) {
	uri := psi.PathToURI(path)
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.hashes[uri]; !ok {
		return
	}
	delete(w.hashes, uri)
	w.session.RemoveFile(uri)
}

// Files returns the paths of the workspace files, excluding the standard
// library, in load order.
func (w *Workspace) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []string
	for _, r := range w.session.Index.Roots() {
		for _, fi := range r.Files() {
			out = append(out, fi.File.Path())
		}
	}
	return out
}

func (w *Workspace) file(path string) (*psi.File, error) {
	fi := w.session.Index.FindFile(psi.PathToURI(path))
	if fi == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrUnknownFile)
	}
	return fi.File, nil
}
