// Package imports maps Tact import paths to files.
package imports

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/phobologic/tactguide/internal/lang"
)

const stdlibPrefix = "@stdlib/"

// Resolver turns import paths into file paths.
type Resolver struct {
	// Stdlib is the standard library directory; @stdlib imports resolve
	// to files under its libs subdirectory. Empty disables them.
	Stdlib string
	// Check makes Resolve report only paths that exist on disk.
	Check bool
}

// Resolve returns the path lib refers to when imported from importer.
// It returns "" for FunC imports, for paths that are neither @stdlib nor
// relative, and for missing files when Check is set.
func (r Resolver) Resolve(importer, lib string) string {
	var target string
	switch {
	case strings.HasPrefix(lib, stdlibPrefix):
		if r.Stdlib == "" {
			return ""
		}
		rel := strings.TrimSuffix(strings.TrimPrefix(lib, stdlibPrefix), ".tact")
		target = filepath.Join(r.Stdlib, "libs", filepath.FromSlash(rel)) + ".tact"
	case strings.HasPrefix(lib, "./") || strings.HasPrefix(lib, "../"):
		if lang.IsForeign(lib) {
			return ""
		}
		rel := strings.TrimSuffix(lib, ".tact")
		target = filepath.Join(filepath.Dir(importer), filepath.FromSlash(rel)) + ".tact"
	default:
		return ""
	}
	if r.Check {
		if _, err := os.Stat(target); err != nil {
			return ""
		}
	}
	return target
}
