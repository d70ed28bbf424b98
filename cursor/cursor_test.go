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

package cursor

import "testing"

func TestReads(t *testing.T) {
	c := New([]byte{0x01, 0xff, 0xfe, 0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc})

	if v := c.U8(); v != 0x01 {
		t.Errorf("U8: got %#x", v)
	}
	if v := c.I16(); v != -2 {
		t.Errorf("I16: got %d, want -2", v)
	}
	if v := c.U32(); v != 0x12345678 {
		t.Errorf("U32: got %#x", v)
	}
	if c.Pos() != 7 {
		t.Errorf("position %d after U8, I16, U32, want 7", c.Pos())
	}
	if v := c.Uint(2); v != 0x9abc {
		t.Errorf("Uint(2): got %#x", v)
	}
	if c.Overrun() {
		t.Error("unexpected overrun")
	}
	if c.Remaining() != 0 {
		t.Errorf("remaining: got %d", c.Remaining())
	}
}

func TestOverrun(t *testing.T) {
	cases := []struct {
		name string
		op   func(c *Cursor) uint32
	}{
		{"U8", func(c *Cursor) uint32 { c.Seek(3); return uint32(c.U8()) }},
		{"U16", func(c *Cursor) uint32 { c.Seek(2); return uint32(c.U16()) }},
		{"U32", func(c *Cursor) uint32 { return c.U32() }},
		{"Uint5", func(c *Cursor) uint32 { return c.Uint(5) }},
		{"Seek", func(c *Cursor) uint32 { c.Seek(4); c.Seek(5); return uint32(c.U8()) }},
		{"SkipNegative", func(c *Cursor) uint32 { c.Skip(-1); return 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := New([]byte{1, 2, 3})
			v := tc.op(c)
			if v != 0 {
				t.Errorf("got %d, want 0", v)
			}
			if !c.Overrun() {
				t.Error("overrun not reported")
			}
		})
	}
}

func TestRange(t *testing.T) {
	c := New([]byte{0, 1, 2, 3, 4, 5})

	sub := c.Range(2, 3)
	if sub.Len() != 3 {
		t.Fatalf("sub length: got %d", sub.Len())
	}
	if v := sub.U8(); v != 2 {
		t.Errorf("first byte: got %d", v)
	}
	sub.Seek(3)
	if sub.U8() != 0 || !sub.Overrun() {
		t.Error("sub-range read beyond its end")
	}
	if c.Overrun() {
		t.Error("parent affected by sub-range overrun")
	}

	for _, r := range [][2]int{{-1, 1}, {5, 2}, {7, 0}, {0, -1}} {
		empty := c.Range(r[0], r[1])
		if empty.Len() != 0 {
			t.Errorf("Range(%d, %d): got length %d", r[0], r[1], empty.Len())
		}
	}
	if !c.Overrun() {
		t.Error("invalid ranges did not set overrun")
	}
}

func TestFrom(t *testing.T) {
	c := New([]byte{0, 1, 2, 3})

	sub := c.From(1)
	if sub.Len() != 3 || sub.U8() != 1 {
		t.Errorf("From(1): length %d", sub.Len())
	}
	if end := c.From(4); end.Len() != 0 || c.Overrun() {
		t.Error("From(Len()) should give an empty cursor without overrun")
	}

	if bad := c.From(5); bad.Len() != 0 {
		t.Errorf("From(5): got length %d", bad.Len())
	}
	if !c.Overrun() {
		t.Error("invalid offset did not set overrun")
	}
}
