// Package parse turns Tact source files into syntax trees.
package parse

import (
	"context"
	"fmt"

	"github.com/phobologic/tactguide/internal/cst"
	"github.com/phobologic/tactguide/internal/lang"
	"github.com/phobologic/tactguide/internal/syntax"
)

// File parses source into a syntax tree. A language with a registered
// tree-sitter grammar is parsed by tree-sitter; otherwise the native
// parser builds the tree. The native path never fails: unparsable regions
// become ERROR nodes.
func File(ctx context.Context, l *lang.Language, source []byte, revision uint64) (*syntax.Tree, error) {
	if l == nil || l.Grammar == nil {
		return Source(source, revision), nil
	}
	parser := l.NewParser()
	defer parser.Close()
	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}
	return syntax.FromSitter(tree, source, revision), nil
}

// Source builds a syntax tree for Tact source with the native tolerant
// parser. Node types and field names follow the tree-sitter-tact grammar.
func Source(source []byte, revision uint64) *syntax.Tree {
	root := cst.Simplify(cst.ParseTolerant(string(source)))
	lw := newLowerer(source)
	e := syntax.NewElem("source_file", true)
	lw.children(e, root)
	e.Fit()
	e.SetSpan(0, lw.offset(len(source)), syntax.Point{}, lw.point(len(source)))
	return e.Finish(source, revision)
}
