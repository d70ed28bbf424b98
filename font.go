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
	"errors"
	"fmt"

	"seehuhn.de/go/fontraster/cff"
	"seehuhn.de/go/fontraster/cursor"
	"seehuhn.de/go/fontraster/glyf"
	"seehuhn.de/go/fontraster/outline"
)

// These errors are returned by [Parse] and [ParseIndex].
var (
	ErrUnsupported  = errors.New("fontraster: unsupported font")
	ErrMissingTable = errors.New("fontraster: missing table")
	ErrMalformed    = errors.New("fontraster: malformed font")
)

// outlineSource decodes glyph outlines from either "glyf" or "CFF " data.
type outlineSource interface {
	BBox(gid int) (outline.Box, bool, error)
	Outline(gid int) (outline.Outline, error)
}

// Font is a parsed font.  The font data passed to [Parse] is referenced,
// not copied, and must not be modified while the Font is in use.
//
// A Font is safe for concurrent use.
type Font struct {
	data      []byte
	start     int
	numGlyphs int

	unitsPerEm int

	ascent, descent, lineGap int
	numHMetrics              int
	hmtx                     []byte

	cmap cmapTable
	kern []byte
	gpos []byte

	outlines outlineSource
	isCFF    bool
}

// FontOffsetForIndex returns the offset of font number index inside data.
// A plain font file contains exactly one font, at offset 0.
// For TrueType collections, index selects one of the contained fonts.
func FontOffsetForIndex(data []byte, index int) (int, error) {
	c := cursor.New(data)
	tag := c.U32()
	if c.Overrun() {
		return 0, fmt.Errorf("%w: file too short", ErrMalformed)
	}

	switch tag {
	case 0x00010000, 0x74727565, 0x4F54544F, 0x74797031: // 1.0, "true", "OTTO", "typ1"
		if index != 0 {
			return 0, fmt.Errorf("%w: font index %d in single font file", ErrUnsupported, index)
		}
		return 0, nil
	case 0x74746366: // "ttcf"
		version := c.U32()
		if version != 0x00010000 && version != 0x00020000 {
			return 0, fmt.Errorf("%w: collection version 0x%08x", ErrUnsupported, version)
		}
		numFonts := int(c.U32())
		if index < 0 || index >= numFonts {
			return 0, fmt.Errorf("%w: font index %d of %d", ErrUnsupported, index, numFonts)
		}
		c.Skip(4 * index)
		offset := int(c.U32())
		if c.Overrun() || offset >= len(data) {
			return 0, fmt.Errorf("%w: bad collection header", ErrMalformed)
		}
		return offset, nil
	default:
		return 0, fmt.Errorf("%w: unknown file type 0x%08x", ErrUnsupported, tag)
	}
}

// FindTable locates the table with the given four-byte tag in the table
// directory of the font starting at fontStart.
func FindTable(data []byte, fontStart int, tag string) (offset, length int, ok bool) {
	if len(tag) != 4 {
		return 0, 0, false
	}
	c := cursor.New(data)
	c.Seek(fontStart + 4)
	numTables := int(c.U16())
	for i := range numTables {
		c.Seek(fontStart + 12 + 16*i)
		rec := c.Range(c.Pos(), 16)
		if c.Overrun() {
			return 0, 0, false
		}
		b := rec.Bytes()
		if string(b[:4]) != tag {
			continue
		}
		rec.Skip(8)
		return int(rec.U32()), int(rec.U32()), true
	}
	return 0, 0, false
}

// Parse parses the first font in a font file.
func Parse(data []byte) (*Font, error) {
	return ParseIndex(data, 0)
}

// ParseIndex parses font number index of a font file or a TrueType
// collection.
func ParseIndex(data []byte, index int) (*Font, error) {
	start, err := FontOffsetForIndex(data, index)
	if err != nil {
		return nil, err
	}
	f := &Font{data: data, start: start}

	cmapData, err := f.table("cmap", true)
	if err != nil {
		return nil, err
	}
	head, err := f.table("head", true)
	if err != nil {
		return nil, err
	}
	hhea, err := f.table("hhea", true)
	if err != nil {
		return nil, err
	}
	f.hmtx, err = f.table("hmtx", true)
	if err != nil {
		return nil, err
	}
	maxp, err := f.table("maxp", false)
	if err != nil {
		return nil, err
	}
	f.kern, err = f.table("kern", false)
	if err != nil {
		return nil, err
	}
	f.gpos, err = f.table("GPOS", false)
	if err != nil {
		return nil, err
	}

	c := cursor.New(head)
	c.Seek(18)
	f.unitsPerEm = int(c.U16())
	c.Seek(50)
	locaFormat := c.I16()
	if c.Overrun() {
		return nil, fmt.Errorf("%w: short head table", ErrMalformed)
	}

	c = cursor.New(hhea)
	c.Seek(4)
	f.ascent = int(c.I16())
	f.descent = int(c.I16())
	f.lineGap = int(c.I16())
	c.Seek(34)
	f.numHMetrics = int(c.U16())
	if c.Overrun() {
		return nil, fmt.Errorf("%w: short hhea table", ErrMalformed)
	}

	f.numGlyphs = 0xffff
	if maxp != nil {
		c = cursor.New(maxp)
		c.Seek(4)
		f.numGlyphs = int(c.U16())
		if c.Overrun() {
			return nil, fmt.Errorf("%w: short maxp table", ErrMalformed)
		}
	}

	f.cmap, err = findCmap(cmapData)
	if err != nil {
		return nil, err
	}

	glyfData, err := f.table("glyf", false)
	if err != nil {
		return nil, err
	}
	if glyfData != nil {
		loca, err := f.table("loca", true)
		if err != nil {
			return nil, err
		}
		d, err := glyf.New(glyfData, loca, f.numGlyphs, locaFormat)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		f.outlines = d
	} else {
		cffData, err := f.table("CFF ", false)
		if err != nil {
			return nil, err
		}
		if cffData == nil {
			return nil, fmt.Errorf("%w: no glyf or CFF table", ErrMissingTable)
		}
		cf, err := cff.Parse(cffData)
		if errors.Is(err, cff.ErrUnsupported) {
			return nil, fmt.Errorf("%w: %w", ErrUnsupported, err)
		} else if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		if maxp == nil {
			f.numGlyphs = cf.NumGlyphs()
		}
		f.outlines = cf
		f.isCFF = true
	}

	Logger().Debug("font parsed",
		"index", index,
		"cff", f.isCFF,
		"glyphs", f.numGlyphs,
		"unitsPerEm", f.unitsPerEm)
	return f, nil
}

// table returns the contents of the table with the given tag.
// Missing optional tables give nil.
func (f *Font) table(tag string, required bool) ([]byte, error) {
	offset, length, ok := FindTable(f.data, f.start, tag)
	if !ok {
		if required {
			return nil, fmt.Errorf("%w: %q", ErrMissingTable, tag)
		}
		return nil, nil
	}
	if offset < 0 || length < 0 || offset > len(f.data) || length > len(f.data)-offset {
		return nil, fmt.Errorf("%w: table %q out of range", ErrMalformed, tag)
	}
	return f.data[offset : offset+length], nil
}

// NumGlyphs returns the number of glyphs in the font.
func (f *Font) NumGlyphs() int {
	return f.numGlyphs
}

// UnitsPerEm returns the size of the em square in font design units.
func (f *Font) UnitsPerEm() int {
	return f.unitsPerEm
}

// IsCFF reports whether the glyph outlines are CFF charstrings.
func (f *Font) IsCFF() bool {
	return f.isCFF
}
