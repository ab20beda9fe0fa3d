package format

import (
	"bytes"
	"strings"
)

// builder is an append-only text buffer with an indent stack. Indentation
// is written lazily, on the first text of each line.
type builder struct {
	out         []byte
	unit        string
	indents     []string
	atLineStart bool
	// trail holds trailing comments of the last token. They are written
	// before the next text. Line comments wait until after any separator
	// glued to the token, block comments do not.
	trail      []string
	forceBreak bool
}

func newBuilder(unit string) *builder {
	return &builder{unit: unit, atLineStart: true}
}

func (b *builder) current() string {
	if len(b.indents) == 0 {
		return ""
	}
	return b.indents[len(b.indents)-1]
}

func (b *builder) indent() {
	b.indents = append(b.indents, b.current()+b.unit)
}

// indentTo pushes an indent that puts the next line at column col.
func (b *builder) indentTo(col int) {
	b.indents = append(b.indents, strings.Repeat(" ", col))
}

func (b *builder) dedent() {
	if len(b.indents) > 0 {
		b.indents = b.indents[:len(b.indents)-1]
	}
}

func (b *builder) write(s string) {
	if s == "" {
		return
	}
	if b.forceBreak {
		b.forceBreak = false
		b.breakLine()
	}
	if b.atLineStart {
		b.out = append(b.out, b.current()...)
		b.atLineStart = false
	}
	b.out = append(b.out, s...)
}

// add writes s after any pending trailing comments.
func (b *builder) add(s string) {
	b.flushTrail()
	b.write(s)
}

// glue writes s directly after the previous text, ahead of pending
// trailing line comments.
func (b *builder) glue(s string) {
	for len(b.trail) > 0 && !strings.HasPrefix(b.trail[0], "//") {
		b.spaceRaw()
		b.write(b.trail[0])
		b.trail = b.trail[1:]
	}
	b.write(s)
}

// afterOpen reports whether the last text written is an opening bracket.
func (b *builder) afterOpen() bool {
	if b.atLineStart || len(b.out) == 0 {
		return false
	}
	switch b.out[len(b.out)-1] {
	case '(', '[', '<':
		return true
	}
	return false
}

func (b *builder) flushTrail() {
	trail := b.trail
	b.trail = nil
	for _, c := range trail {
		b.spaceRaw()
		b.write(c)
		if strings.HasPrefix(c, "//") {
			b.forceBreak = true
		}
	}
}

func (b *builder) spaceRaw() {
	if b.atLineStart || b.forceBreak || len(b.out) == 0 {
		return
	}
	if last := b.out[len(b.out)-1]; last != ' ' && last != '\n' {
		b.out = append(b.out, ' ')
	}
}

// space writes one space unless the line is empty so far.
func (b *builder) space() {
	b.flushTrail()
	b.spaceRaw()
}

func (b *builder) breakLine() {
	b.out = bytes.TrimRight(b.out, " \t")
	b.out = append(b.out, '\n')
	b.atLineStart = true
}

// newline ends the current line. It is a no-op at the start of a line.
func (b *builder) newline() {
	b.flushTrail()
	b.forceBreak = false
	if b.atLineStart {
		return
	}
	b.breakLine()
}

// blankLine ends the current line and leaves one empty line.
func (b *builder) blankLine() {
	b.newline()
	if len(b.out) == 0 || bytes.HasSuffix(b.out, []byte("\n\n")) {
		return
	}
	b.out = append(b.out, '\n')
}

// lineOpens reports whether the last text written ends with an opening
// bracket.
func (b *builder) lineOpens() bool {
	s := bytes.TrimRight(b.out, " \n")
	if len(s) == 0 {
		return false
	}
	switch s[len(s)-1] {
	case '(', '[', '{':
		return true
	}
	return false
}

// lineLength is the width of the current line, counting pending indent.
func (b *builder) lineLength() int {
	if b.atLineStart {
		return len(b.current())
	}
	return len(b.out) - (bytes.LastIndexByte(b.out, '\n') + 1)
}

func (b *builder) String() string {
	b.newline()
	return strings.TrimRight(string(b.out), "\n")
}
