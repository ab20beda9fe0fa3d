package psi

import (
	"bytes"
	"unicode/utf16"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Range returns the span of n with columns in UTF-16 code units.
func (n Node) Range() protocol.Range {
	src := n.File.Tree.Source
	start, end := n.StartPoint(), n.EndPoint()
	return protocol.Range{
		Start: position(src, n.StartByte(), start.Row, start.Column),
		End:   position(src, n.EndByte(), end.Row, end.Column),
	}
}

// Location returns the file and span of n.
func (n Node) Location() protocol.Location {
	return protocol.Location{URI: n.File.URI, Range: n.Range()}
}

func position(src []byte, off, row, col uint32) protocol.Position {
	lineStart := off - col
	return protocol.Position{Line: row, Character: utf16Len(src[lineStart:off])}
}

func utf16Len(b []byte) uint32 {
	var n uint32
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		b = b[size:]
		if r == utf8.RuneError && size == 1 {
			n++
			continue
		}
		n += uint32(utf16.RuneLen(r))
	}
	return n
}

// Offset converts an LSP position to a byte offset in src. It reports
// false when the line does not exist; a character past the end of the
// line clamps to the line end.
func Offset(src []byte, pos protocol.Position) (int, bool) {
	line := 0
	start := 0
	for line < int(pos.Line) {
		i := bytes.IndexByte(src[start:], '\n')
		if i < 0 {
			return 0, false
		}
		start += i + 1
		line++
	}
	off := start
	var units uint32
	for off < len(src) && src[off] != '\n' && units < pos.Character {
		r, size := utf8.DecodeRune(src[off:])
		if r == utf8.RuneError && size == 1 {
			units++
		} else {
			units += uint32(utf16.RuneLen(r))
		}
		off += size
	}
	return off, true
}
