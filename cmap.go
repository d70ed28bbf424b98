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


package fontraster

import (
	"fmt"

	"seehuhn.de/go/fontraster/cursor"
)

// cmapTable is the selected Unicode subtable of the "cmap" table.
type cmapTable struct {
	format uint16
	data   []byte // from the start of the subtable to the end of "cmap"
}

// findCmap selects a Unicode subtable.  Microsoft Unicode encodings are
// preferred, with the full repertoire (3, 10) before the BMP (3, 1),
// followed by any Unicode platform subtable.
func findCmap(data []byte) (cmapTable, error) {
	c := cursor.New(data)
	c.Skip(2)
	numTables := int(c.U16())

	bestRank := 0
	bestOffset := 0
	for range numTables {
		platform := c.U16()
		encoding := c.U16()
		offset := int(c.U32())
		if c.Overrun() {
			break
		}

		rank := 0
		switch {
		case platform == 3 && encoding == 10:
			rank = 3
		case platform == 3 && encoding == 1:
			rank = 2
		case platform == 0:
			rank = 1
		}
		if rank > bestRank {
			bestRank = rank
			bestOffset = offset
		}
	}
	if bestRank == 0 {
		return cmapTable{}, fmt.Errorf("%w: no Unicode cmap subtable", ErrUnsupported)
	}
	if bestOffset >= len(data) {
		return cmapTable{}, fmt.Errorf("%w: cmap subtable out of range", ErrMalformed)
	}

	sub := data[bestOffset:]
	format := cursor.New(sub).U16()
	switch format {
	case 0, 4, 6, 12, 13:
		return cmapTable{format: format, data: sub}, nil
	default:
		return cmapTable{}, fmt.Errorf("%w: cmap format %d", ErrUnsupported, format)
	}
}

// lookup returns the glyph index for r, or 0 if r is not mapped.
// Reads outside the table also give 0.
func (t cmapTable) lookup(r rune) int {
	if r < 0 {
		return 0
	}
	c := cursor.New(t.data)

	switch t.format {
	case 0:
		c.Seek(2)
		length := int(c.U16())
		if int(r) < length-6 {
			c.Seek(6 + int(r))
			return int(c.U8())
		}
		return 0

	case 6:
		c.Seek(6)
		first := rune(c.U16())
		count := rune(c.U16())
		if r >= first && r < first+count {
			c.Seek(10 + 2*int(r-first))
			return int(c.U16())
		}
		return 0

	case 4:
		return cmap4(c, r)

	case 12, 13:
		c.Seek(12)
		numGroups := int(c.U32())
		lo, hi := 0, numGroups
		for lo < hi {
			m := int(uint(lo+hi) >> 1)
			c.Seek(16 + 12*m)
			start := rune(c.U32())
			end := rune(c.U32())
			glyph := int(c.U32())
			if c.Overrun() {
				return 0
			}
			switch {
			case r < start:
				hi = m
			case r > end:
				lo = m + 1
			case t.format == 12:
				return glyph + int(r-start)
			default:
				return glyph
			}
		}
		return 0
	}
	return 0
}

// cmap4 looks up r in a segment mapping subtable.
func cmap4(c *cursor.Cursor, r rune) int {
	if r > 0xffff {
		return 0
	}
	c.Seek(6)
	segCount := int(c.U16()) / 2
	endCodes := 14
	startCodes := endCodes + 2*segCount + 2
	deltas := startCodes + 2*segCount
	rangeOffsets := deltas + 2*segCount

	// find the first segment with endCode >= r
	lo, hi := 0, segCount
	for lo < hi {
		m := int(uint(lo+hi) >> 1)
		c.Seek(endCodes + 2*m)
		if rune(c.U16()) < r {
			lo = m + 1
		} else {
			hi = m
		}
	}
	if lo == segCount {
		return 0
	}

	c.Seek(startCodes + 2*lo)
	start := rune(c.U16())
	if r < start {
		return 0
	}
	c.Seek(deltas + 2*lo)
	delta := c.U16()
	pos := rangeOffsets + 2*lo
	c.Seek(pos)
	rangeOffset := int(c.U16())
	if c.Overrun() {
		return 0
	}
	if rangeOffset == 0 {
		return int(uint16(r) + delta)
	}

	c.Seek(pos + rangeOffset + 2*int(r-start))
	glyph := c.U16()
	if glyph == 0 || c.Overrun() {
		return 0
	}
	return int(glyph + delta)
}

// GlyphIndex returns the glyph used to display r.
// Characters not covered by the font map to glyph 0.
func (f *Font) GlyphIndex(r rune) int {
	return f.cmap.lookup(r)
}
