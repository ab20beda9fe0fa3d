// Package lang provides a language registry mapping file extensions to
// languages and their optional tree-sitter grammars.
package lang

import (
	"regexp"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Language holds the configuration for a supported language.
type Language struct {
	Name       string
	Extensions []string

	// Grammar is the tree-sitter grammar for the language. When it is nil
	// the native parser builds syntax trees.
	Grammar *sitter.Language
}

// NewParser creates a fresh tree-sitter parser for this language, or nil
// when no grammar is registered. Each goroutine must use its own parser
// (not thread-safe).
func (l *Language) NewParser() *sitter.Parser {
	if l.Grammar == nil {
		return nil
	}
	p := sitter.NewParser()
	p.SetLanguage(l.Grammar)
	return p
}

var (
	mu sync.RWMutex
	// Languages maps language names to their configuration.
	// Populated by init() functions in per-language files and by Register.
	Languages = map[string]*Language{}
	// extensionMap is rebuilt lazily after every registration.
	extensionMap map[string]string
)

// Register adds or replaces a language.
func Register(l *Language) {
	mu.Lock()
	defer mu.Unlock()
	Languages[l.Name] = l
	extensionMap = nil
}

// Lookup returns the language registered under name, or nil.
func Lookup(name string) *Language {
	mu.RLock()
	defer mu.RUnlock()
	return Languages[name]
}

func getExtensionMap() map[string]string {
	mu.RLock()
	m := extensionMap
	mu.RUnlock()
	if m != nil {
		return m
	}
	mu.Lock()
	defer mu.Unlock()
	if extensionMap == nil {
		extensionMap = make(map[string]string)
		for _, l := range Languages {
			for _, ext := range l.Extensions {
				extensionMap[ext] = l.Name
			}
		}
	}
	return extensionMap
}

// ForExtension returns the language name for a file extension, or "" if unsupported.
func ForExtension(ext string) string {
	return getExtensionMap()[ext]
}

// CollapseWhitespace replaces runs of whitespace with a single space and trims.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
