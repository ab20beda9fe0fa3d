// Package graph builds file and call graphs from resolved tags and ranks
// files with PageRank.
package graph

import (
	"math"
	"sort"

	"github.com/phobologic/tactguide/internal/model"
)

// BuildGraph creates dependency edges from resolved cross-file references.
// A reference tag contributes an edge from its file to the file its
// declaration lives in.
func BuildGraph(fileInfos []model.FileInfo) []model.Dependency {
	known := make(map[string]struct{}, len(fileInfos))
	for i := range fileInfos {
		known[fileInfos[i].Path] = struct{}{}
	}

	type edgeKey struct{ src, tgt string }
	edgeSymbols := make(map[edgeKey][]string)

	for i := range fileInfos {
		fi := &fileInfos[i]
		for j := range fi.Tags {
			tag := &fi.Tags[j]
			if tag.Kind != model.Reference || tag.Target == "" || tag.Target == fi.Path {
				continue
			}
			// Stdlib and stub declarations are not part of the map.
			if _, ok := known[tag.Target]; !ok {
				continue
			}
			key := edgeKey{fi.Path, tag.Target}
			if !contains(edgeSymbols[key], tag.Name) {
				edgeSymbols[key] = append(edgeSymbols[key], tag.Name)
			}
		}
	}

	var deps []model.Dependency
	for key, syms := range edgeSymbols {
		deps = append(deps, model.Dependency{
			Source:  key.src,
			Target:  key.tgt,
			Symbols: syms,
		})
	}

	sort.Slice(deps, func(i, j int) bool {
		if deps[i].Source != deps[j].Source {
			return deps[i].Source < deps[j].Source
		}
		return deps[i].Target < deps[j].Target
	})

	return deps
}

// callable reports whether a reference tag names a function or method
// defined in the workspace.
func callable(tag *model.Tag, knownDefs map[string]struct{}) bool {
	if tag.Kind != model.Reference {
		return false
	}
	if tag.SymbolKind != model.Function && tag.SymbolKind != model.Method {
		return false
	}
	_, ok := knownDefs[tag.Name]
	return ok
}

func definitions(fileInfos []model.FileInfo) map[string]struct{} {
	knownDefs := make(map[string]struct{})
	for i := range fileInfos {
		for j := range fileInfos[i].Tags {
			tag := &fileInfos[i].Tags[j]
			if tag.Kind == model.Definition {
				knownDefs[tag.Name] = struct{}{}
			}
		}
	}
	return knownDefs
}

// BuildCallGraph builds function-level call edges. An edge is only
// included when the callee is a workspace definition and the caller is
// non-empty. Edges are deduplicated and sorted.
func BuildCallGraph(fileInfos []model.FileInfo) []model.CallEdge {
	knownDefs := definitions(fileInfos)

	type edgeKey struct{ caller, callee string }
	seen := make(map[edgeKey]struct{})

	var edges []model.CallEdge
	for i := range fileInfos {
		for j := range fileInfos[i].Tags {
			tag := &fileInfos[i].Tags[j]
			if tag.Enclosing == "" || !callable(tag, knownDefs) {
				continue
			}
			key := edgeKey{tag.Enclosing, tag.Name}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			edges = append(edges, model.CallEdge{Caller: tag.Enclosing, Callee: tag.Name})
		}
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Caller != edges[j].Caller {
			return edges[i].Caller < edges[j].Caller
		}
		return edges[i].Callee < edges[j].Callee
	})

	return edges
}

// BuildCallSites returns every call occurrence with its location. Unlike
// BuildCallGraph it does not deduplicate. Calls outside any function,
// such as in constant initializers, get the caller "<top>".
func BuildCallSites(fileInfos []model.FileInfo) []model.CallSite {
	knownDefs := definitions(fileInfos)

	var sites []model.CallSite
	for i := range fileInfos {
		for j := range fileInfos[i].Tags {
			tag := &fileInfos[i].Tags[j]
			if !callable(tag, knownDefs) {
				continue
			}
			caller := tag.Enclosing
			if caller == "" {
				caller = "<top>"
			}
			sites = append(sites, model.CallSite{
				Caller: caller,
				Callee: tag.Name,
				File:   fileInfos[i].Path,
				Line:   tag.Line,
			})
		}
	}

	sort.Slice(sites, func(i, j int) bool {
		if sites[i].Caller != sites[j].Caller {
			return sites[i].Caller < sites[j].Caller
		}
		if sites[i].Callee != sites[j].Callee {
			return sites[i].Callee < sites[j].Callee
		}
		if sites[i].File != sites[j].File {
			return sites[i].File < sites[j].File
		}
		return sites[i].Line < sites[j].Line
	})

	return sites
}

// Rank applies PageRank to fileInfos and sorts them by rank descending,
// path ascending on ties.
func Rank(fileInfos []model.FileInfo, deps []model.Dependency) {
	if len(fileInfos) == 0 {
		return
	}

	if len(deps) == 0 {
		uniform := 1.0 / float64(len(fileInfos))
		for i := range fileInfos {
			fileInfos[i].Rank = uniform
		}
		return
	}

	// Each referenced symbol is one edge from source to target.
	outEdges := make(map[string][]string)
	outDegree := make(map[string]int)
	nodes := make(map[string]struct{})

	for i := range fileInfos {
		nodes[fileInfos[i].Path] = struct{}{}
	}

	for _, d := range deps {
		for range d.Symbols {
			outEdges[d.Source] = append(outEdges[d.Source], d.Target)
			outDegree[d.Source]++
		}
	}

	ranks := pageRank(nodes, outEdges, outDegree, 0.85, 100, 1e-6)

	for i := range fileInfos {
		fileInfos[i].Rank = ranks[fileInfos[i].Path]
	}

	sort.SliceStable(fileInfos, func(i, j int) bool {
		if fileInfos[i].Rank != fileInfos[j].Rank {
			return fileInfos[i].Rank > fileInfos[j].Rank
		}
		return fileInfos[i].Path < fileInfos[j].Path
	})
}

func pageRank(
	nodes map[string]struct{},
	outEdges map[string][]string,
	outDegree map[string]int,
	alpha float64,
	maxIter int,
	tol float64,
) map[string]float64 {
	n := len(nodes)
	if n == 0 {
		return nil
	}

	rank := make(map[string]float64, n)
	initial := 1.0 / float64(n)
	for node := range nodes {
		rank[node] = initial
	}

	teleport := (1.0 - alpha) / float64(n)

	for range maxIter {
		newRank := make(map[string]float64, n)

		// Nodes without outgoing edges spread their rank evenly.
		var danglingSum float64
		for node := range nodes {
			if outDegree[node] == 0 {
				danglingSum += rank[node]
			}
		}
		danglingContrib := alpha * danglingSum / float64(n)

		for node := range nodes {
			newRank[node] = teleport + danglingContrib
		}

		for src, targets := range outEdges {
			contrib := alpha * rank[src] / float64(outDegree[src])
			for _, tgt := range targets {
				newRank[tgt] += contrib
			}
		}

		var diff float64
		for node := range nodes {
			diff += math.Abs(newRank[node] - rank[node])
		}

		rank = newRank

		if diff < tol {
			break
		}
	}

	return rank
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
