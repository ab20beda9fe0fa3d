package resolve

import (
	"github.com/phobologic/tactguide/internal/index"
	"github.com/phobologic/tactguide/internal/psi"
)

const baseTrait = "BaseTrait"

// InheritedTraits returns the traits o lists after `with`, resolved
// through the index, followed by the implicit BaseTrait. BaseTrait itself
// inherits nothing.
func (s *Session) InheritedTraits(o psi.StorageOwner) []*psi.Trait {
	if o.Name() == baseTrait {
		return nil
	}
	var out []*psi.Trait
	for _, ref := range o.TraitRefs() {
		if t, ok := s.Resolve(ref).(*psi.Trait); ok {
			out = append(out, t)
		}
	}
	if base := s.baseTrait(); base != nil {
		out = append(out, base)
	}
	return out
}

func (s *Session) baseTrait() *psi.Trait {
	if t, ok := s.Index.Stdlib.ElementByName(index.Traits, baseTrait).(*psi.Trait); ok {
		return t
	}
	t, _ := s.Index.Stubs.ElementByName(index.Traits, baseTrait).(*psi.Trait)
	return t
}

// owners returns o followed by every trait it inherits, depth first.
// Each trait appears once, so inheritance cycles terminate.
func (s *Session) owners(o psi.StorageOwner) []psi.StorageOwner {
	visited := map[string]bool{o.Name(): true}
	out := []psi.StorageOwner{o}
	var walk func(psi.StorageOwner)
	walk = func(cur psi.StorageOwner) {
		for _, t := range s.InheritedTraits(cur) {
			if visited[t.Name()] {
				continue
			}
			visited[t.Name()] = true
			out = append(out, t)
			walk(t)
		}
	}
	walk(o)
	return out
}

// Methods returns own methods followed by inherited ones.
func (s *Session) Methods(o psi.StorageOwner) []*psi.Fun {
	var out []*psi.Fun
	for _, cur := range s.owners(o) {
		out = append(out, cur.OwnMethods()...)
	}
	return out
}

// Constants returns own constants followed by inherited ones.
func (s *Session) Constants(o psi.StorageOwner) []*psi.Constant {
	var out []*psi.Constant
	for _, cur := range s.owners(o) {
		out = append(out, cur.OwnConstants()...)
	}
	return out
}

// Fields returns own fields followed by inherited ones. When a trait
// declares a field the owner already has, the owner's field wins.
func (s *Session) Fields(o psi.StorageOwner) []*psi.Field {
	seen := make(map[string]bool)
	var out []*psi.Field
	for _, cur := range s.owners(o) {
		for _, f := range cur.OwnFields() {
			if seen[f.Name()] {
				continue
			}
			seen[f.Name()] = true
			out = append(out, f)
		}
	}
	return out
}
