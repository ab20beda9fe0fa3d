package workspace

import (
	"errors"
	"fmt"

	"fortio.org/safecast"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/phobologic/tactguide/internal/completion"
	"github.com/phobologic/tactguide/internal/hover"
	"github.com/phobologic/tactguide/internal/log"
	"github.com/phobologic/tactguide/internal/psi"
	"github.com/phobologic/tactguide/internal/referent"
	"github.com/phobologic/tactguide/internal/resolve"
	"github.com/phobologic/tactguide/internal/syntax"
)

// ErrBadPosition is returned for a position outside the file.
var ErrBadPosition = errors.New("position is outside the file")

// request runs fn under the workspace lock. A structural invariant
// violation inside fn is logged and turned into an empty result.
func request[T any](w *Workspace, op string, fn func() (T, error)) (res T, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		ie, ok := r.(*resolve.InvariantError)
		if !ok {
			panic(r)
		}
		log.Debug("workspace %s: %s: %v", w.ID, op, ie)
		var zero T
		res, err = zero, nil
	}()
	return fn()
}

// at returns the file and byte offset of pos in path.
func (w *Workspace) at(path string, pos protocol.Position) (*psi.File, int, error) {
	f, err := w.file(path)
	if err != nil {
		return nil, 0, err
	}
	off, ok := psi.Offset(f.Tree.Source, pos)
	if !ok {
		return nil, 0, fmt.Errorf("%s:%d:%d: %w", path, pos.Line+1, pos.Character+1, ErrBadPosition)
	}
	return f, off, nil
}

// nodeAt returns the node under pos.
func (w *Workspace) nodeAt(path string, pos protocol.Position) (psi.Node, error) {
	f, off, err := w.at(path, pos)
	if err != nil {
		return psi.Node{}, err
	}
	o, err := safecast.Conv[uint32](off)
	if err != nil {
		return psi.Node{}, fmt.Errorf("%s: offset %d: %w", path, off, err)
	}
	return psi.Wrap(syntax.NodeAt(f.Tree.Root, o), f), nil
}

// Definition returns the location of the declaration the identifier at
// pos refers to, nil when it refers to nothing.
func (w *Workspace) Definition(path string, pos protocol.Position) (*protocol.Location, error) {
	return request(w, "definition", func() (*protocol.Location, error) {
		n, err := w.nodeAt(path, pos)
		if err != nil {
			return nil, err
		}
		d := w.session.Resolve(n)
		if d == nil || d.NameIdentifier() == nil {
			return nil, nil
		}
		loc := d.Named().NameNode().Location()
		return &loc, nil
	})
}

// References returns the uses of the declaration at pos, preceded by the
// declaration itself when includeDecl is set.
func (w *Workspace) References(path string, pos protocol.Position, includeDecl bool) ([]protocol.Location, error) {
	return request(w, "references", func() ([]protocol.Location, error) {
		n, err := w.nodeAt(path, pos)
		if err != nil {
			return nil, err
		}
		d := w.session.Resolve(n)
		if d == nil {
			return nil, nil
		}
		var out []protocol.Location
		if includeDecl && d.NameIdentifier() != nil {
			out = append(out, d.Named().NameNode().Location())
		}
		for _, ref := range referent.Find(w.session, d) {
			out = append(out, ref.Location())
		}
		return out, nil
	})
}

// TypeAt returns the inferred type of the expression or declaration at
// pos, "" when it has none.
func (w *Workspace) TypeAt(path string, pos protocol.Position) (string, error) {
	return request(w, "type", func() (string, error) {
		n, err := w.nodeAt(path, pos)
		if err != nil {
			return "", err
		}
		if t := w.session.TypeOf(n); t != nil {
			return t.QualifiedName(), nil
		}
		if d := w.session.Resolve(n); d != nil {
			if t := w.session.TypeOfDecl(d); t != nil {
				return t.QualifiedName(), nil
			}
		}
		return "", nil
	})
}

// Hover returns the hover for pos, nil when there is nothing to show.
func (w *Workspace) Hover(path string, pos protocol.Position) (*protocol.Hover, error) {
	return request(w, "hover", func() (*protocol.Hover, error) {
		n, err := w.nodeAt(path, pos)
		if err != nil {
			return nil, err
		}
		return hover.Hover(w.session, n), nil
	})
}

// Complete returns the completion items for the cursor at pos.
func (w *Workspace) Complete(path string, pos protocol.Position) ([]protocol.CompletionItem, error) {
	return request(w, "completion", func() ([]protocol.CompletionItem, error) {
		f, off, err := w.at(path, pos)
		if err != nil {
			return nil, err
		}
		return completion.Complete(w.session, f, off), nil
	})
}

// Rename returns the edits renaming the declaration at pos to newName.
func (w *Workspace) Rename(path string, pos protocol.Position, newName string) (*protocol.WorkspaceEdit, error) {
	return request(w, "rename", func() (*protocol.WorkspaceEdit, error) {
		n, err := w.nodeAt(path, pos)
		if err != nil {
			return nil, err
		}
		return referent.Rename(w.session, n, newName)
	})
}
