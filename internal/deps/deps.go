// Package deps finds the contracts a contract deploys or embeds through
// initOf and codeOf, directly or inside the functions it calls.
package deps

import (
	"sort"
	"strings"

	"github.com/phobologic/tactguide/internal/index"
	"github.com/phobologic/tactguide/internal/psi"
	"github.com/phobologic/tactguide/internal/resolve"
	"github.com/phobologic/tactguide/internal/syntax"
)

// Dependency is one contract referenced from another.
type Dependency struct {
	Source *psi.Contract
	Target *psi.Contract
	// Kinds holds "codeOf" and/or "initOf", sorted.
	Kinds []string
	// CallPath names the functions leading to the reference, empty when
	// it sits in the contract itself.
	CallPath []string
}

type ref struct {
	target *psi.Contract
	kind   string
	path   []string
}

// Contract returns the contracts c depends on, grouped by target in
// order of first reference. c itself is never listed.
func Contract(s *resolve.Session, c *psi.Contract) []Dependency {
	w := &walker{s: s, visiting: make(map[string]bool)}
	refs := w.collect(c.Node, nil)
	return group(c, refs, func(r ref) string { return r.target.Name() })
}

// Dependents returns the contracts of the index that depend on c.
func Dependents(s *resolve.Session, c *psi.Contract) []Dependency {
	var out []Dependency
	s.Index.ProcessElementsByKind(index.Contracts, func(d psi.Decl) syntax.Action {
		other, ok := d.(*psi.Contract)
		if !ok || other.Name() == c.Name() {
			return syntax.Continue
		}
		for _, dep := range Contract(s, other) {
			if dep.Target.Name() == c.Name() {
				out = append(out, dep)
			}
		}
		return syntax.Continue
	})
	return out
}

// Summary renders the dependencies and dependents of c as markdown, ""
// when there are none.
func Summary(s *resolve.Session, c *psi.Contract) string {
	var lines []string
	if ds := Contract(s, c); len(ds) > 0 {
		lines = append(lines, "Dependencies:")
		for _, d := range ds {
			lines = append(lines, "- `"+strings.Join(d.Kinds, " + ")+" "+d.Target.Name()+"`"+via(d.CallPath))
		}
	}
	if ds := Dependents(s, c); len(ds) > 0 {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, "Used by:")
		for _, d := range ds {
			lines = append(lines, "- `"+d.Source.Name()+"` ("+strings.Join(d.Kinds, " + ")+")"+via(d.CallPath))
		}
	}
	return strings.Join(lines, "\n")
}

func via(path []string) string {
	if len(path) == 0 {
		return ""
	}
	return " (via " + strings.Join(path, " -> ") + ")"
}

type walker struct {
	s *resolve.Session
	// visiting guards against recursive functions.
	visiting map[string]bool
}

// collect returns the initOf and codeOf targets under n and under the
// functions n calls.
func (w *walker) collect(n psi.Node, path []string) []ref {
	var out []ref
	syntax.Walk(n.Node, func(cur syntax.Node) syntax.Action {
		switch cur.Type() {
		case "initOf", "codeOf":
			if t := w.target(n.Wrap(cur.ChildByFieldName("name"))); t != nil {
				out = append(out, ref{target: t, kind: cur.Type(), path: path})
			}
		case "static_call_expression":
			f, ok := w.s.Resolve(n.Wrap(cur.ChildByFieldName("name"))).(*psi.Fun)
			if !ok || f.Body().IsNil() {
				break
			}
			key := f.Named().File.URI + "#" + f.Name()
			if w.visiting[key] {
				break
			}
			w.visiting[key] = true
			out = append(out, w.collect(f.Body(), append(append([]string(nil), path...), f.Name()))...)
			delete(w.visiting, key)
		}
		return syntax.Continue
	})
	return out
}

// target returns the contract named by an initOf or codeOf.
func (w *walker) target(name psi.Node) *psi.Contract {
	if name.IsNil() {
		return nil
	}
	switch d := w.s.Resolve(name).(type) {
	case *psi.Contract:
		return d
	case *psi.InitFunction:
		c, _ := d.Owner().(*psi.Contract)
		return c
	}
	c, _ := w.s.Index.ElementByName(index.Contracts, name.Content()).(*psi.Contract)
	return c
}

func group(source *psi.Contract, refs []ref, key func(ref) string) []Dependency {
	var out []Dependency
	at := make(map[string]int)
	for _, r := range refs {
		if r.target.Name() == source.Name() {
			continue
		}
		k := key(r)
		i, ok := at[k]
		if !ok {
			i = len(out)
			at[k] = i
			out = append(out, Dependency{Source: source, Target: r.target, CallPath: r.path})
		}
		d := &out[i]
		if !contains(d.Kinds, r.kind) {
			d.Kinds = append(d.Kinds, r.kind)
			sort.Strings(d.Kinds)
		}
	}
	return out
}

func contains(xs []string, x string) bool {
	for _, s := range xs {
		if s == x {
			return true
		}
	}
	return false
}
