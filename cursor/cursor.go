// seehuhn.de/go/fontraster - glyph outline decoding and rasterization
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package cursor implements a bounds-checked reader for big-endian binary
// font data.
//
// A Cursor never panics.  Reads past the end of the underlying data return
// zero and set a sticky overrun flag, which callers check once after
// decoding a record.
package cursor

// Cursor reads big-endian values from a byte slice.
// The zero value is an empty cursor.
type Cursor struct {
	data    []byte
	pos     int
	overrun bool
}

// New returns a cursor positioned at the start of data.
// The data is not copied and must not be modified while the cursor is in use.
func New(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Len returns the total size of the underlying data.
func (c *Cursor) Len() int {
	return len(c.data)
}

// Pos returns the current read position.
func (c *Cursor) Pos() int {
	return c.pos
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	return len(c.data) - c.pos
}

// Overrun reports whether any operation so far tried to access data
// outside the cursor's range.
func (c *Cursor) Overrun() bool {
	return c.overrun
}

// Bytes returns the underlying data.
func (c *Cursor) Bytes() []byte {
	return c.data
}

// Seek moves the read position to the absolute offset o.
// Offsets outside [0, Len()] move to the end and set the overrun flag.
func (c *Cursor) Seek(o int) {
	if o < 0 || o > len(c.data) {
		c.pos = len(c.data)
		c.overrun = true
		return
	}
	c.pos = o
}

// Skip advances the read position by n bytes.
func (c *Cursor) Skip(n int) {
	c.Seek(c.pos + n)
}

// U8 reads an unsigned byte.
func (c *Cursor) U8() uint8 {
	if c.pos >= len(c.data) {
		c.overrun = true
		return 0
	}
	v := c.data[c.pos]
	c.pos++
	return v
}

// U16 reads a big-endian uint16.
func (c *Cursor) U16() uint16 {
	return uint16(c.Uint(2))
}

// I16 reads a big-endian int16.
func (c *Cursor) I16() int16 {
	return int16(c.Uint(2))
}

// U32 reads a big-endian uint32.
func (c *Cursor) U32() uint32 {
	return c.Uint(4)
}

// I32 reads a big-endian int32.
func (c *Cursor) I32() int32 {
	return int32(c.Uint(4))
}

// Uint reads an n-byte big-endian unsigned integer, for 1 <= n <= 4.
// This is the variable-width offset encoding used by CFF INDEX data.
func (c *Cursor) Uint(n int) uint32 {
	if n < 1 || n > 4 || c.pos+n > len(c.data) {
		c.pos = len(c.data)
		c.overrun = true
		return 0
	}
	var v uint32
	for _, b := range c.data[c.pos : c.pos+n] {
		v = v<<8 | uint32(b)
	}
	c.pos += n
	return v
}

// Range returns a new cursor for the n bytes starting at absolute offset o.
// If the range does not fit into the data, an empty cursor is returned and
// the overrun flag of c is set.
func (c *Cursor) Range(o, n int) *Cursor {
	if o < 0 || n < 0 || o > len(c.data) || n > len(c.data)-o {
		c.overrun = true
		return &Cursor{}
	}
	return &Cursor{data: c.data[o : o+n : o+n]}
}

// From returns a new cursor for the data from absolute offset o to the
// end.  Offsets outside the data give an empty cursor and set the overrun
// flag of c.
func (c *Cursor) From(o int) *Cursor {
	if o < 0 || o > len(c.data) {
		c.overrun = true
		return &Cursor{}
	}
	return &Cursor{data: c.data[o:len(c.data):len(c.data)]}
}
