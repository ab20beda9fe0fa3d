package psi

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/phobologic/tactguide/internal/syntax"
)

// File is one parsed source file.
type File struct {
	URI  string
	Tree *syntax.Tree
}

// NewFile returns a file for uri with the given tree.
func NewFile(uri string, tree *syntax.Tree) *File {
	return &File{URI: uri, Tree: tree}
}

// Root returns the wrapped root node.
func (f *File) Root() Node {
	return Wrap(f.Tree.Root, f)
}

// Revision returns the revision tag of the file's tree.
func (f *File) Revision() uint64 {
	return f.Tree.Revision
}

// Path returns the file system path of a file URI, or "" for other
// schemes.
func (f *File) Path() string {
	return URIToPath(f.URI)
}

// Import is one import declaration.
type Import struct {
	Node Node
	// Library is the import path without quotes.
	Library string
}

// Imports returns the file's import declarations in source order.
func (f *File) Imports() []Import {
	var out []Import
	root := f.Tree.Root
	for i := 0; i < root.ChildCount(); i++ {
		c := root.Child(i)
		if c.Type() != "import" {
			continue
		}
		lib := c.ChildByFieldName("library")
		if lib == nil {
			continue
		}
		out = append(out, Import{Node: Wrap(c, f), Library: unquote(lib.Content())})
	}
	return out
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// PathToURI converts a file system path to a file URI.
func PathToURI(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

// URIToPath converts a file URI to a path. Other schemes return "".
func URIToPath(uri string) string {
	if !strings.HasPrefix(uri, "file://") {
		return ""
	}
	u, err := url.Parse(uri)
	if err != nil {
		return filepath.FromSlash(strings.TrimPrefix(uri, "file://"))
	}
	return filepath.FromSlash(u.Path)
}
