// Package log provides the engine's debug log. It is off until an output
// is set.
package log

import (
	"fmt"
	"io"
	"sync"
)

var (
	out io.Writer
	mu  sync.Mutex
)

// SetOutput sets the log destination. Pass nil to disable logging.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

func write(prefix, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if out != nil {
		fmt.Fprintf(out, prefix+format+"\n", args...)
	}
}

// Debug writes an unprefixed message.
func Debug(format string, args ...any) {
	write("", format, args...)
}

// Index writes an index-prefixed message.
func Index(format string, args ...any) {
	write("[index] ", format, args...)
}

// Resolve writes a resolve-prefixed message.
func Resolve(format string, args ...any) {
	write("[resolve] ", format, args...)
}

// Format writes a format-prefixed message.
func Format(format string, args ...any) {
	write("[format] ", format, args...)
}

// Enabled reports whether logging is on.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return out != nil
}
