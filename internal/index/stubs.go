package index

import (
	_ "embed"

	"github.com/phobologic/tactguide/internal/parse"
	"github.com/phobologic/tactguide/internal/psi"
)

// StubsURI is the URI of the built-in declarations file.
const StubsURI = "tactguide:///stubs.tact"

//go:embed stubs.tact
var stubsSource []byte

// Stubs parses the built-in declarations.
func Stubs() *psi.File {
	return psi.NewFile(StubsURI, parse.Source(stubsSource, 0))
}
