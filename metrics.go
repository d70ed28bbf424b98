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
	"seehuhn.de/go/fontraster/cursor"
)

// HMetrics returns the advance width and the left side bearing of glyph
// gid, in font design units.
func (f *Font) HMetrics(gid int) (advance, lsb int) {
	if gid < 0 || f.numHMetrics == 0 {
		return 0, 0
	}
	c := cursor.New(f.hmtx)
	if gid < f.numHMetrics {
		c.Seek(4 * gid)
		return int(c.U16()), int(c.I16())
	}
	// glyphs after the last long record share its advance width
	c.Seek(4 * (f.numHMetrics - 1))
	advance = int(c.U16())
	c.Seek(4*f.numHMetrics + 2*(gid-f.numHMetrics))
	lsb = int(c.I16())
	return advance, lsb
}

// VMetrics returns the ascent, descent and line gap from the "hhea" table,
// in font design units.  The descent is usually negative.  The distance
// between consecutive baselines is ascent - descent + lineGap.
func (f *Font) VMetrics() (ascent, descent, lineGap int) {
	return f.ascent, f.descent, f.lineGap
}

// ScaleForPixelHeight returns the scale factor which makes the distance
// from the highest ascender to the lowest descender equal to height
// pixels.
func (f *Font) ScaleForPixelHeight(height float64) float64 {
	h := f.ascent - f.descent
	if h == 0 {
		return 0
	}
	return height / float64(h)
}

// ScaleForEmToPixels returns the scale factor which makes the em square
// size pixels high.
func (f *Font) ScaleForEmToPixels(size float64) float64 {
	if f.unitsPerEm == 0 {
		return 0
	}
	return size / float64(f.unitsPerEm)
}

// Kern returns the horizontal kerning adjustment between glyphs g1 and
// g2, in font design units.  Pair adjustments from the "GPOS" table are
// used if the font has one, otherwise the "kern" table is consulted.
func (f *Font) Kern(g1, g2 int) int {
	if g1 < 0 || g2 < 0 || g1 > 0xffff || g2 > 0xffff {
		return 0
	}
	if f.gpos != nil {
		return gposKern(f.gpos, g1, g2)
	}
	if f.kern != nil {
		return kernTableKern(f.kern, g1, g2)
	}
	return 0
}

// KernRunes returns the kerning adjustment between the glyphs for r1 and
// r2.
func (f *Font) KernRunes(r1, r2 rune) int {
	if f.gpos == nil && f.kern == nil {
		return 0
	}
	return f.Kern(f.GlyphIndex(r1), f.GlyphIndex(r2))
}

// kernTableKern looks up a pair in the first subtable of a "kern" table.
// Only horizontal format 0 subtables are used.
func kernTableKern(data []byte, g1, g2 int) int {
	c := cursor.New(data)
	c.Skip(2)
	if c.U16() < 1 {
		return 0
	}
	c.Seek(8)
	if c.U16() != 1 {
		return 0
	}
	numPairs := int(c.U16())

	needle := uint32(g1)<<16 | uint32(g2)
	lo, hi := 0, numPairs
	for lo < hi {
		m := int(uint(lo+hi) >> 1)
		c.Seek(18 + 6*m)
		key := c.U32()
		value := c.I16()
		if c.Overrun() {
			return 0
		}
		switch {
		case needle < key:
			hi = m
		case needle > key:
			lo = m + 1
		default:
			return int(value)
		}
	}
	return 0
}

// gposKern looks up a pair in the pair adjustment lookups of a "GPOS"
// table.  Only subtables which adjust the x advance of the first glyph
// and leave the second glyph alone are used.
func gposKern(data []byte, g1, g2 int) int {
	c := cursor.New(data)
	if c.U16() != 1 { // major version
		return 0
	}
	c.Seek(8)
	lookupList := int(c.U16())
	c.Seek(lookupList)
	numLookups := int(c.U16())

	for i := range numLookups {
		c.Seek(lookupList + 2 + 2*i)
		lookup := lookupList + int(c.U16())
		c.Seek(lookup)
		lookupType := c.U16()
		c.Skip(2) // lookup flags
		numSubtables := int(c.U16())
		if c.Overrun() {
			return 0
		}
		if lookupType != 2 {
			continue
		}

		for j := range numSubtables {
			c.Seek(lookup + 6 + 2*j)
			sub := lookup + int(c.U16())
			if v, ok := pairPosKern(c.From(sub), g1, g2); ok {
				return v
			}
		}
	}
	return 0
}

// pairPosKern evaluates a single PairPos subtable.
func pairPosKern(c *cursor.Cursor, g1, g2 int) (int, bool) {
	posFormat := c.U16()
	coverage := int(c.U16())
	valueFormat1 := c.U16()
	valueFormat2 := c.U16()
	if c.Overrun() || valueFormat1 != 4 || valueFormat2 != 0 {
		return 0, false
	}

	covIdx := coverageIndex(c.From(coverage), g1)
	if covIdx < 0 {
		return 0, false
	}

	switch posFormat {
	case 1:
		numPairSets := int(c.U16())
		if covIdx >= numPairSets {
			return 0, false
		}
		c.Seek(10 + 2*covIdx)
		pairSet := int(c.U16())
		c.Seek(pairSet)
		numPairs := int(c.U16())
		lo, hi := 0, numPairs
		for lo < hi {
			m := int(uint(lo+hi) >> 1)
			c.Seek(pairSet + 2 + 4*m)
			second := int(c.U16())
			value := c.I16()
			if c.Overrun() {
				return 0, false
			}
			switch {
			case g2 < second:
				hi = m
			case g2 > second:
				lo = m + 1
			default:
				return int(value), true
			}
		}
		return 0, false

	case 2:
		classDef1 := int(c.U16())
		classDef2 := int(c.U16())
		class1Count := int(c.U16())
		class2Count := int(c.U16())
		if c.Overrun() {
			return 0, false
		}
		class1 := glyphClass(c.From(classDef1), g1)
		class2 := glyphClass(c.From(classDef2), g2)
		if class1 >= class1Count || class2 >= class2Count {
			return 0, false
		}
		c.Seek(16 + 2*(class1*class2Count+class2))
		value := c.I16()
		if c.Overrun() {
			return 0, false
		}
		return int(value), true
	}
	return 0, false
}

// coverageIndex returns the coverage index of gid, or -1 if the glyph is
// not covered.
func coverageIndex(c *cursor.Cursor, gid int) int {
	format := c.U16()
	count := int(c.U16())
	switch format {
	case 1:
		lo, hi := 0, count
		for lo < hi {
			m := int(uint(lo+hi) >> 1)
			c.Seek(4 + 2*m)
			g := int(c.U16())
			if c.Overrun() {
				return -1
			}
			switch {
			case gid < g:
				hi = m
			case gid > g:
				lo = m + 1
			default:
				return m
			}
		}
	case 2:
		lo, hi := 0, count
		for lo < hi {
			m := int(uint(lo+hi) >> 1)
			c.Seek(4 + 6*m)
			start := int(c.U16())
			end := int(c.U16())
			startIdx := int(c.U16())
			if c.Overrun() {
				return -1
			}
			switch {
			case gid < start:
				hi = m
			case gid > end:
				lo = m + 1
			default:
				return startIdx + gid - start
			}
		}
	}
	return -1
}

// glyphClass returns the class of gid in a class definition table.
// Glyphs not listed belong to class 0.
func glyphClass(c *cursor.Cursor, gid int) int {
	switch c.U16() {
	case 1:
		startGlyph := int(c.U16())
		count := int(c.U16())
		if gid >= startGlyph && gid < startGlyph+count {
			c.Seek(6 + 2*(gid-startGlyph))
			return int(c.U16())
		}
	case 2:
		count := int(c.U16())
		lo, hi := 0, count
		for lo < hi {
			m := int(uint(lo+hi) >> 1)
			c.Seek(4 + 6*m)
			start := int(c.U16())
			end := int(c.U16())
			class := int(c.U16())
			if c.Overrun() {
				return 0
			}
			switch {
			case gid < start:
				hi = m
			case gid > end:
				lo = m + 1
			default:
				return class
			}
		}
	}
	return 0
}
