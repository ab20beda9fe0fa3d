// Package toon implements TOON (Token-Oriented Object Notation) encoding
// of the workspace map.
package toon

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/phobologic/tactguide/internal/model"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// Encode converts a RepoMap into TOON format. The members, callsites and
// contracts tables are only printed when they have rows.
func Encode(rm *model.RepoMap) string {
	parts := []string{
		"repo: " + encodeValue(rm.RepoName),
		"root: " + encodeValue(rm.Root),
	}

	var fileRows, symbolRows [][]string
	for i := range rm.Files {
		fi := &rm.Files[i]
		fileRows = append(fileRows, []string{fi.Path, fmt.Sprintf("%.4f", fi.Rank)})
		for j := range fi.Tags {
			tag := &fi.Tags[j]
			if tag.Kind != model.Definition || tag.SymbolKind == model.Field {
				continue
			}
			symbolRows = append(symbolRows, []string{
				fi.Path,
				tag.Name,
				string(tag.SymbolKind),
				strconv.Itoa(tag.Line),
				tag.Signature,
			})
		}
	}
	parts = append(parts,
		formatTabular("files", []string{"path", "rank"}, fileRows),
		formatTabular("symbols", []string{"file", "name", "kind", "line", "signature"}, symbolRows),
	)

	if len(rm.Members) > 0 {
		var rows [][]string
		for _, m := range rm.Members {
			rows = append(rows, []string{m.File, m.Name, strconv.Itoa(m.Line), m.Signature})
		}
		parts = append(parts, formatTabular("members", []string{"file", "name", "line", "signature"}, rows))
	}

	var depRows [][]string
	for _, d := range rm.Dependencies {
		depRows = append(depRows, []string{d.Source, d.Target, strings.Join(d.Symbols, " ")})
	}
	parts = append(parts, formatTabular("dependencies", []string{"source", "target", "symbols"}, depRows))

	var callRows [][]string
	for _, ce := range rm.CallEdges {
		callRows = append(callRows, []string{ce.Caller, ce.Callee})
	}
	parts = append(parts, formatTabular("calls", []string{"caller", "callee"}, callRows))

	if len(rm.CallSites) > 0 {
		var rows [][]string
		for _, cs := range rm.CallSites {
			rows = append(rows, []string{cs.Caller, cs.Callee, cs.File, strconv.Itoa(cs.Line)})
		}
		parts = append(parts, formatTabular("callsites", []string{"caller", "callee", "file", "line"}, rows))
	}

	if len(rm.Contracts) > 0 {
		var rows [][]string
		for _, c := range rm.Contracts {
			rows = append(rows, []string{c.Source, c.Target, strings.Join(c.Kinds, " "), strings.Join(c.Via, " ")})
		}
		parts = append(parts, formatTabular("contracts", []string{"source", "target", "kinds", "via"}, rows))
	}

	return strings.Join(parts, "\n")
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	switch {
	case value == "":
		return `""`
	case value != strings.TrimSpace(value), strings.ContainsAny(value, "\n\r\t"):
		return quote(value)
	}
	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}
	if looksNumeric.MatchString(value) {
		return value
	}
	if needsQuoting.MatchString(value) || strings.HasPrefix(value, "-") {
		return quote(value)
	}
	return value
}

var quoter = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func quote(value string) string {
	return `"` + quoter.Replace(value) + `"`
}
