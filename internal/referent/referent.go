// Package referent finds the uses of a declaration and renames it.
package referent

import (
	"errors"
	"fmt"
	"regexp"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/phobologic/tactguide/internal/cst"
	"github.com/phobologic/tactguide/internal/log"
	"github.com/phobologic/tactguide/internal/psi"
	"github.com/phobologic/tactguide/internal/resolve"
	"github.com/phobologic/tactguide/internal/syntax"
)

var (
	// ErrInvalidName is returned by Rename for a name that is not a
	// plain identifier.
	ErrInvalidName = errors.New("invalid identifier")
	// ErrNoDefinition is returned by Rename when the node resolves to
	// nothing renamable.
	ErrNoDefinition = errors.New("no declaration to rename")
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// functionLike bound parameters and locals.
var functionLike = []string{
	"global_function", "storage_function", "asm_function", "native_function",
	"init_function", "receive_function", "external_function", "bounced_function",
}

// Find returns the identifiers that resolve to d, in file order, without
// the declaration's own name.
func Find(s *resolve.Session, d psi.Decl) []psi.Node {
	name := d.Name()
	if name == "" {
		return nil
	}
	def := d.Named().NameNode()
	var out []psi.Node
	for _, scope := range useScope(s, d) {
		syntax.Walk(scope.Node, func(n syntax.Node) syntax.Action {
			switch n.Type() {
			case "identifier", "type_identifier":
			default:
				return syntax.Continue
			}
			if n.Content() != name {
				return syntax.SkipChildren
			}
			ref := scope.Wrap(n)
			if ref.Equal(def) {
				return syntax.SkipChildren
			}
			if psi.SameDecl(s.Resolve(ref), d) {
				out = append(out, ref)
			}
			return syntax.SkipChildren
		})
	}
	log.Resolve("%d references to %s %s", len(out), d.Kind(), name)
	return out
}

// useScope returns the subtrees a use of d can appear in. Locals and
// parameters stay inside their function; anything else is reachable from
// every workspace file, and from its own file when that lives elsewhere.
func useScope(s *resolve.Session, d psi.Decl) []psi.Node {
	if v, ok := d.(*psi.Var); ok {
		if fn := syntax.ParentOfType(v.Node.Node, functionLike...); fn != nil {
			return []psi.Node{v.Wrap(fn)}
		}
	}
	own := d.Named().File
	var out []psi.Node
	seen := false
	for _, r := range s.Index.Roots() {
		for _, fi := range r.Files() {
			seen = seen || fi.File.URI == own.URI
			out = append(out, fi.File.Root())
		}
	}
	if !seen {
		out = append(out, own.Root())
	}
	return out
}

// Rename returns the edits that rename the declaration n refers to, and
// every use of it, to newName.
func Rename(s *resolve.Session, n psi.Node, newName string) (*protocol.WorkspaceEdit, error) {
	if !identRe.MatchString(newName) || cst.IsReserved(newName) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, newName)
	}
	d := s.Resolve(n)
	if d == nil || d.NameIdentifier() == nil {
		return nil, ErrNoDefinition
	}
	switch d.(type) {
	case *psi.InitFunction, *psi.MessageFunction:
		return nil, ErrNoDefinition
	}
	if !inWorkspace(s, d.Named().File.URI) {
		return nil, fmt.Errorf("%w: %s is declared outside the workspace", ErrNoDefinition, d.Name())
	}

	changes := make(map[protocol.DocumentUri][]protocol.TextEdit)
	edit := func(n psi.Node) {
		changes[n.File.URI] = append(changes[n.File.URI], protocol.TextEdit{Range: n.Range(), NewText: newName})
	}
	edit(d.Named().NameNode())
	for _, ref := range Find(s, d) {
		edit(ref)
	}
	return &protocol.WorkspaceEdit{Changes: changes}, nil
}

func inWorkspace(s *resolve.Session, uri string) bool {
	for _, r := range s.Index.Roots() {
		if r.FindFile(uri) != nil {
			return true
		}
	}
	return false
}
