package lexer

import (
	"fmt"
	"unicode/utf8"

	"fortio.org/safecast"
)

// Cursor is a position inside one contiguous chunk of source text. Offsets
// are absolute: base is the chunk's offset inside the SourceMap's virtual
// space, so every produced span resolves without translation.
type Cursor struct {
	contents []byte
	base     uint32
	off      uint32
}

// NewCursor positions a cursor at the start of contents, which sits at the
// absolute offset base.
func NewCursor(contents []byte, base uint32) Cursor {
	if _, err := safecast.Conv[uint32](len(contents)); err != nil {
		panic(fmt.Errorf("source length overflow: %w", err))
	}
	return Cursor{contents: contents, base: base}
}

// EOF reports whether the cursor is past the last byte.
func (c *Cursor) EOF() bool {
	return c.off >= uint32(len(c.contents))
}

// Peek returns the current byte, or 0 at EOF.
func (c *Cursor) Peek() byte {
	if c.EOF() {
		return 0
	}
	return c.contents[c.off]
}

// Peek2 returns the current and next bytes.
func (c *Cursor) Peek2() (b0, b1 byte, ok bool) {
	if c.off+1 >= uint32(len(c.contents)) {
		return 0, 0, false
	}
	return c.contents[c.off], c.contents[c.off+1], true
}

// Bump advances by one byte.
func (c *Cursor) Bump() {
	if !c.EOF() {
		c.off++
	}
}

// BumpRune advances by one UTF-8 rune and returns it.
func (c *Cursor) BumpRune() rune {
	if c.EOF() {
		return 0
	}
	r, size := utf8.DecodeRune(c.contents[c.off:])
	c.off += uint32(size)
	return r
}

// PeekRune decodes the current rune without advancing.
func (c *Cursor) PeekRune() rune {
	if c.EOF() {
		return 0
	}
	r, _ := utf8.DecodeRune(c.contents[c.off:])
	return r
}

// Pos returns the absolute offset of the current position.
func (c *Cursor) Pos() uint32 {
	return c.base + c.off
}

// Slice returns the text between the absolute offsets [start, end).
func (c *Cursor) Slice(start, end uint32) []byte {
	return c.contents[start-c.base : end-c.base]
}
