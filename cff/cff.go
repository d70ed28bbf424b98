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

// Package cff reads glyph outlines from the "CFF " table of OpenType fonts.
//
// The package parses the table structure needed to locate charstrings and
// subroutines, including the FDArray and FDSelect data of CID-keyed fonts,
// and executes Type 2 charstrings to obtain cubic outlines and bounding
// boxes.  Hints are parsed but ignored.
package cff

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"seehuhn.de/go/fontraster/cursor"
)

// These errors are returned when the CFF data cannot be used.
var (
	ErrMalformed   = errors.New("cff: malformed table")
	ErrUnsupported = errors.New("cff: unsupported font")
	ErrGlyphIndex  = errors.New("cff: glyph index out of range")
)

// Font holds the parsed structure of a CFF table.
// It only refers to the table data and can be used concurrently.
type Font struct {
	charStrings index
	gsubrs      index
	subrs       index

	// CID-keyed fonts select local subroutines per glyph
	// through FDSelect.
	fdSubrs  []index
	fdSelect []byte
}

// Top DICT and Private DICT operators.
const (
	opCharStrings    = 17
	opPrivate        = 18
	opSubrs          = 19
	opCharstringType = 0x100 | 6
	opFDArray        = 0x100 | 36
	opFDSelect       = 0x100 | 37
)

// Parse reads the CFF table data.  Only the first font of a FontSet is
// used, as in OpenType fonts.
func Parse(data []byte) (*Font, error) {
	c := cursor.New(data)
	c.Skip(2) // major, minor version
	hdrSize := int(c.U8())
	c.Seek(hdrSize)

	if _, err := readIndex(c); err != nil { // Name INDEX
		return nil, fmt.Errorf("name INDEX: %w", err)
	}
	topDicts, err := readIndex(c)
	if err != nil {
		return nil, fmt.Errorf("top DICT INDEX: %w", err)
	}
	if _, err := readIndex(c); err != nil { // String INDEX
		return nil, fmt.Errorf("string INDEX: %w", err)
	}
	gsubrs, err := readIndex(c)
	if err != nil {
		return nil, fmt.Errorf("global subrs: %w", err)
	}
	if len(topDicts) == 0 {
		return nil, fmt.Errorf("%w: no top DICT", ErrMalformed)
	}

	top, err := parseDict(topDicts[0])
	if err != nil {
		return nil, fmt.Errorf("top DICT: %w", err)
	}

	if csType := top.getInt(opCharstringType, 2); csType != 2 {
		return nil, fmt.Errorf("%w: charstring type %d", ErrUnsupported, csType)
	}

	csOffset := top.getInt(opCharStrings, 0)
	if csOffset <= 0 {
		return nil, fmt.Errorf("%w: missing CharStrings", ErrMalformed)
	}
	c.Seek(csOffset)
	charStrings, err := readIndex(c)
	if err != nil {
		return nil, fmt.Errorf("CharStrings: %w", err)
	}

	f := &Font{
		charStrings: charStrings,
		gsubrs:      gsubrs,
	}
	f.subrs, err = privateSubrs(data, top)
	if err != nil {
		return nil, err
	}

	fdArrayOffset := top.getInt(opFDArray, 0)
	fdSelectOffset := top.getInt(opFDSelect, 0)
	if fdArrayOffset != 0 {
		if fdSelectOffset == 0 {
			return nil, fmt.Errorf("%w: FDArray without FDSelect", ErrMalformed)
		}
		c.Seek(fdArrayOffset)
		fontDicts, err := readIndex(c)
		if err != nil {
			return nil, fmt.Errorf("FDArray: %w", err)
		}
		f.fdSubrs = make([]index, len(fontDicts))
		for i, fdData := range fontDicts {
			fd, err := parseDict(fdData)
			if err != nil {
				return nil, fmt.Errorf("font DICT %d: %w", i, err)
			}
			f.fdSubrs[i], err = privateSubrs(data, fd)
			if err != nil {
				return nil, fmt.Errorf("font DICT %d: %w", i, err)
			}
		}
		if fdSelectOffset < 0 || fdSelectOffset >= len(data) {
			return nil, fmt.Errorf("%w: FDSelect offset %d", ErrMalformed, fdSelectOffset)
		}
		f.fdSelect = data[fdSelectOffset:]
	}

	return f, nil
}

// NumGlyphs returns the number of charstrings in the font.
func (f *Font) NumGlyphs() int {
	return len(f.charStrings)
}

// privateSubrs returns the local subroutines referenced by the Private DICT
// of the given top or font DICT.
func privateSubrs(data []byte, d dict) (index, error) {
	ops := d[opPrivate]
	if len(ops) < 2 {
		return nil, nil
	}
	size, offset := int(ops[0]), int(ops[1])
	if size == 0 {
		return nil, nil
	}
	if offset < 0 || size < 0 || offset > len(data) || size > len(data)-offset {
		return nil, fmt.Errorf("%w: Private DICT out of range", ErrMalformed)
	}
	priv, err := parseDict(data[offset : offset+size])
	if err != nil {
		return nil, fmt.Errorf("Private DICT: %w", err)
	}
	subrsOffset := priv.getInt(opSubrs, 0)
	if subrsOffset == 0 {
		return nil, nil
	}
	c := cursor.New(data)
	c.Seek(offset + subrsOffset)
	subrs, err := readIndex(c)
	if err != nil {
		return nil, fmt.Errorf("local subrs: %w", err)
	}
	return subrs, nil
}

// fdForGlyph looks up the font DICT index of a glyph in a CID-keyed font.
func (f *Font) fdForGlyph(gid int) (int, bool) {
	c := cursor.New(f.fdSelect)
	switch c.U8() {
	case 0:
		c.Skip(gid)
		fd := int(c.U8())
		return fd, !c.Overrun()
	case 3:
		nRanges := int(c.U16())
		first := int(c.U16())
		for range nRanges {
			fd := int(c.U8())
			next := int(c.U16())
			if c.Overrun() {
				break
			}
			if gid >= first && gid < next {
				return fd, true
			}
			first = next
		}
	}
	return 0, false
}

// localSubrs returns the local subroutines to use for glyph gid.
func (f *Font) localSubrs(gid int) index {
	if f.fdSelect == nil {
		return f.subrs
	}
	fd, ok := f.fdForGlyph(gid)
	if !ok || fd >= len(f.fdSubrs) {
		return nil
	}
	return f.fdSubrs[fd]
}

// index is the decoded form of a CFF INDEX structure.
type index [][]byte

// readIndex reads an INDEX at the current position and leaves the cursor
// just after it.
func readIndex(c *cursor.Cursor) (index, error) {
	count := int(c.U16())
	if c.Overrun() {
		return nil, fmt.Errorf("%w: truncated INDEX", ErrMalformed)
	}
	if count == 0 {
		return nil, nil
	}
	offSize := int(c.U8())
	if offSize < 1 || offSize > 4 {
		return nil, fmt.Errorf("%w: invalid offSize %d", ErrMalformed, offSize)
	}
	if count+1 > c.Remaining()/offSize {
		return nil, fmt.Errorf("%w: INDEX offsets truncated", ErrMalformed)
	}
	offsets := make([]int, count+1)
	for i := range offsets {
		offsets[i] = int(c.Uint(offSize))
	}

	// offsets are relative to the byte preceding the object data
	base := c.Pos() - 1
	data := c.Bytes()
	res := make(index, count)
	for i := range res {
		start, end := base+offsets[i], base+offsets[i+1]
		if offsets[i] < 1 || start > end || end > len(data) {
			return nil, fmt.Errorf("%w: invalid INDEX offset", ErrMalformed)
		}
		res[i] = data[start:end:end]
	}
	c.Seek(base + offsets[count])
	return res, nil
}

// dict maps DICT operators to their operands.
// Two-byte operators are stored as 0x100 | second byte.
type dict map[uint16][]float64

func (d dict) getInt(op uint16, defVal int) int {
	ops := d[op]
	if len(ops) == 0 {
		return defVal
	}
	return int(ops[0])
}

const maxDictOperands = 48

func parseDict(data []byte) (dict, error) {
	d := make(dict)
	c := cursor.New(data)
	var operands []float64
	for c.Remaining() > 0 {
		b0 := c.U8()
		switch {
		case b0 <= 21:
			op := uint16(b0)
			if b0 == 12 {
				op = 0x100 | uint16(c.U8())
			}
			d[op] = operands
			operands = nil
		case b0 == 30:
			x, err := readReal(c)
			if err != nil {
				return nil, err
			}
			operands = append(operands, x)
		case b0 == 28 || b0 == 29 || b0 >= 32 && b0 != 255:
			operands = append(operands, float64(readInt(b0, c)))
		default:
			return nil, fmt.Errorf("%w: invalid DICT byte %d", ErrMalformed, b0)
		}
		if len(operands) > maxDictOperands {
			return nil, fmt.Errorf("%w: too many DICT operands", ErrMalformed)
		}
	}
	if c.Overrun() {
		return nil, fmt.Errorf("%w: truncated DICT", ErrMalformed)
	}
	return d, nil
}

// readInt decodes an integer whose first byte b0 has already been read.
// This encoding is shared by DICT data and charstrings.
func readInt(b0 byte, c *cursor.Cursor) int32 {
	switch {
	case b0 >= 32 && b0 <= 246:
		return int32(b0) - 139
	case b0 >= 247 && b0 <= 250:
		return (int32(b0)-247)*256 + int32(c.U8()) + 108
	case b0 >= 251 && b0 <= 254:
		return -(int32(b0)-251)*256 - int32(c.U8()) - 108
	case b0 == 28:
		return int32(c.I16())
	case b0 == 29:
		return c.I32()
	}
	return 0
}

// readReal decodes the nibble-encoded real number following the byte 30.
func readReal(c *cursor.Cursor) (float64, error) {
	var sb strings.Builder
	for {
		b := c.U8()
		if c.Overrun() {
			return 0, fmt.Errorf("%w: truncated real", ErrMalformed)
		}
		for _, nibble := range [2]byte{b >> 4, b & 15} {
			switch {
			case nibble <= 9:
				sb.WriteByte('0' + nibble)
			case nibble == 0xa:
				sb.WriteByte('.')
			case nibble == 0xb:
				sb.WriteByte('E')
			case nibble == 0xc:
				sb.WriteString("E-")
			case nibble == 0xe:
				sb.WriteByte('-')
			case nibble == 0xf:
				x, err := strconv.ParseFloat(sb.String(), 64)
				if err != nil {
					return 0, fmt.Errorf("%w: invalid real %q", ErrMalformed, sb.String())
				}
				return x, nil
			default:
				return 0, fmt.Errorf("%w: reserved nibble in real", ErrMalformed)
			}
		}
	}
}
