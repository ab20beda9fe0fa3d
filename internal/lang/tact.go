package lang

import (
	"path/filepath"
	"strings"
)

// Tact is the name of the Tact language.
const Tact = "tact"

func init() {
	Languages[Tact] = &Language{
		Name:       Tact,
		Extensions: []string{".tact"},
	}
}

// foreignExtensions are FunC sources. Tact files may import them, but they
// are compiled elsewhere and never indexed.
var foreignExtensions = map[string]bool{
	".fc":   true,
	".func": true,
}

// IsForeign reports whether path names a FunC source.
func IsForeign(path string) bool {
	return foreignExtensions[strings.ToLower(filepath.Ext(path))]
}
