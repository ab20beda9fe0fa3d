// Package ranking narrows a workspace map to its top files, to one symbol's
// neighbourhood, or to matching files.
package ranking

import (
	"strings"

	"github.com/phobologic/tactguide/internal/model"
)

type set map[string]struct{}

func (s set) has(k string) bool {
	_, ok := s[k]
	return ok
}

// ownerOf returns the contract, trait, struct or message part of a
// qualified member name, "" for a top-level name.
func ownerOf(name string) string {
	if dot := strings.LastIndex(name, "."); dot >= 0 {
		return name[:dot]
	}
	return ""
}

func unqualified(name string) string {
	return name[strings.LastIndex(name, ".")+1:]
}

// SelectFiles returns a new RepoMap with only the top-ranked files.
// If maxFiles is <= 0 or >= len(files), all files are returned.
func SelectFiles(rm *model.RepoMap, maxFiles int) *model.RepoMap {
	if maxFiles <= 0 || maxFiles >= len(rm.Files) {
		return rm
	}

	selected := rm.Files[:maxFiles]
	paths := make(set, maxFiles)
	defs := make(set)
	for i := range selected {
		paths[selected[i].Path] = struct{}{}
		for j := range selected[i].Tags {
			if tag := &selected[i].Tags[j]; tag.Kind == model.Definition {
				defs[tag.Name] = struct{}{}
			}
		}
	}

	out := &model.RepoMap{RepoName: rm.RepoName, Root: rm.Root, Files: selected}
	for _, d := range rm.Dependencies {
		if paths.has(d.Source) && paths.has(d.Target) {
			out.Dependencies = append(out.Dependencies, d)
		}
	}
	for _, ce := range rm.CallEdges {
		if defs.has(ce.Caller) {
			out.CallEdges = append(out.CallEdges, ce)
		}
	}
	for _, cs := range rm.CallSites {
		if defs.has(cs.Caller) {
			out.CallSites = append(out.CallSites, cs)
		}
	}
	for _, c := range rm.Contracts {
		if defs.has(c.Source) {
			out.Contracts = append(out.Contracts, c)
		}
	}
	return out
}

// FilterBySymbol returns a new RepoMap containing only symbols whose name
// contains substr (case-insensitive), the files that define those symbols,
// files that define their direct callers and callees, and the edges that
// connect them.
//
// When withMembers is true and a matched symbol owns fields (a contract,
// trait, struct or message), the members table is filled with them. If no
// top-level definition matches, withMembers falls back to matching field
// names.
func FilterBySymbol(rm *model.RepoMap, substr string, withMembers bool) *model.RepoMap {
	lower := strings.ToLower(substr)

	matched := make(set)
	files := make(set)
	eachDef(rm, func(path string, tag *model.Tag) {
		if tag.SymbolKind != model.Field && strings.Contains(strings.ToLower(tag.Name), lower) {
			matched[tag.Name] = struct{}{}
			files[path] = struct{}{}
		}
	})
	if withMembers && len(matched) == 0 {
		eachDef(rm, func(path string, tag *model.Tag) {
			if tag.SymbolKind == model.Field && strings.Contains(strings.ToLower(unqualified(tag.Name)), lower) {
				matched[tag.Name] = struct{}{}
				files[path] = struct{}{}
			}
		})
	}

	related := make(set)
	for _, ce := range rm.CallEdges {
		if matched.has(ce.Caller) {
			related[ce.Callee] = struct{}{}
		}
		if matched.has(ce.Callee) {
			related[ce.Caller] = struct{}{}
		}
	}
	eachDef(rm, func(path string, tag *model.Tag) {
		if related.has(tag.Name) {
			files[path] = struct{}{}
		}
	})

	out := &model.RepoMap{RepoName: rm.RepoName, Root: rm.Root}
	for i := range rm.Files {
		if !files.has(rm.Files[i].Path) {
			continue
		}
		fi := rm.Files[i]
		// Keep the symbols table focused on matched and related
		// definitions. Fields only ever appear as members.
		var tags []model.Tag
		for _, tag := range fi.Tags {
			if tag.Kind != model.Definition || tag.SymbolKind == model.Field {
				continue
			}
			if matched.has(tag.Name) || related.has(tag.Name) {
				tags = append(tags, tag)
			}
		}
		fi.Tags = tags
		out.Files = append(out.Files, fi)
	}

	if withMembers {
		eachDef(rm, func(_ string, tag *model.Tag) {
			if tag.SymbolKind == model.Field && matched.has(ownerOf(tag.Name)) {
				out.Members = append(out.Members, *tag)
			}
		})
		if len(out.Members) == 0 {
			eachDef(rm, func(_ string, tag *model.Tag) {
				if tag.SymbolKind == model.Field && matched.has(tag.Name) {
					out.Members = append(out.Members, *tag)
				}
			})
		}
	}

	for _, d := range rm.Dependencies {
		if files.has(d.Source) || files.has(d.Target) {
			out.Dependencies = append(out.Dependencies, d)
		}
	}
	for _, ce := range rm.CallEdges {
		if matched.has(ce.Caller) || matched.has(ce.Callee) {
			out.CallEdges = append(out.CallEdges, ce)
		}
	}
	for _, cs := range rm.CallSites {
		if matched.has(cs.Caller) || matched.has(cs.Callee) {
			out.CallSites = append(out.CallSites, cs)
		}
	}
	for _, c := range rm.Contracts {
		if matched.has(c.Source) || matched.has(c.Target) {
			out.Contracts = append(out.Contracts, c)
		}
	}
	return out
}

// FilterByFile returns a new RepoMap containing only files whose path
// contains substr (case-insensitive), with all dependency edges touching
// those files and call edges from functions defined in those files.
func FilterByFile(rm *model.RepoMap, substr string) *model.RepoMap {
	lower := strings.ToLower(substr)

	out := &model.RepoMap{RepoName: rm.RepoName, Root: rm.Root}
	files := make(set)
	defs := make(set)
	for i := range rm.Files {
		if !strings.Contains(strings.ToLower(rm.Files[i].Path), lower) {
			continue
		}
		files[rm.Files[i].Path] = struct{}{}
		out.Files = append(out.Files, rm.Files[i])
		for j := range rm.Files[i].Tags {
			if tag := &rm.Files[i].Tags[j]; tag.Kind == model.Definition {
				defs[tag.Name] = struct{}{}
			}
		}
	}

	for _, d := range rm.Dependencies {
		if files.has(d.Source) || files.has(d.Target) {
			out.Dependencies = append(out.Dependencies, d)
		}
	}
	for _, ce := range rm.CallEdges {
		if defs.has(ce.Caller) {
			out.CallEdges = append(out.CallEdges, ce)
		}
	}
	for _, cs := range rm.CallSites {
		if files.has(cs.File) {
			out.CallSites = append(out.CallSites, cs)
		}
	}
	for _, c := range rm.Contracts {
		if defs.has(c.Source) {
			out.Contracts = append(out.Contracts, c)
		}
	}
	return out
}

func eachDef(rm *model.RepoMap, fn func(path string, tag *model.Tag)) {
	for i := range rm.Files {
		for j := range rm.Files[i].Tags {
			if tag := &rm.Files[i].Tags[j]; tag.Kind == model.Definition {
				fn(rm.Files[i].Path, tag)
			}
		}
	}
}
