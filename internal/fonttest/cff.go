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

package fonttest

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Op is a one-byte Type 2 charstring operator.
type Op byte

// Esc is a two-byte Type 2 charstring operator, without the leading 12.
type Esc byte

// Type 2 charstring operators used in tests.
const (
	HStem      Op = 1
	VStem      Op = 3
	VMoveTo    Op = 4
	RLineTo    Op = 5
	HLineTo    Op = 6
	VLineTo    Op = 7
	RRCurveTo  Op = 8
	CallSubr   Op = 10
	Return     Op = 11
	EndChar    Op = 14
	HStemHM    Op = 18
	HintMask   Op = 19
	RMoveTo    Op = 21
	HMoveTo    Op = 22
	RCurveLine Op = 24
	RLineCurve Op = 25
	VVCurveTo  Op = 26
	HHCurveTo  Op = 27
	CallGSubr  Op = 29
	VHCurveTo  Op = 30
	HVCurveTo  Op = 31

	HFlex  Esc = 34
	Flex   Esc = 35
	HFlex1 Esc = 36
	Flex1  Esc = 37
)

// Charstring encodes a Type 2 charstring.  Arguments can be int (integer
// operand), float64 (16.16 fixed operand), Op, Esc, or []byte (copied
// verbatim).
func Charstring(args ...any) []byte {
	var buf []byte
	for _, a := range args {
		switch a := a.(type) {
		case int:
			buf = appendT2Int(buf, a)
		case float64:
			buf = append(buf, 255)
			buf = binary.BigEndian.AppendUint32(buf, uint32(int32(math.Round(a*65536))))
		case Op:
			buf = append(buf, byte(a))
		case Esc:
			buf = append(buf, 12, byte(a))
		case []byte:
			buf = append(buf, a...)
		default:
			panic(fmt.Sprintf("unexpected charstring argument %T", a))
		}
	}
	return buf
}

func appendT2Int(buf []byte, v int) []byte {
	switch {
	case v >= -107 && v <= 107:
		return append(buf, byte(v+139))
	case v >= 108 && v <= 1131:
		w := v - 108
		return append(buf, byte(w>>8+247), byte(w))
	case v >= -1131 && v <= -108:
		w := -v - 108
		return append(buf, byte(w>>8+251), byte(w))
	default:
		buf = append(buf, 28)
		return binary.BigEndian.AppendUint16(buf, uint16(int16(v)))
	}
}

// Index encodes a CFF INDEX.
func Index(items [][]byte) []byte {
	var buf []byte
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(items)))
	if len(items) == 0 {
		return buf
	}
	total := 1
	for _, it := range items {
		total += len(it)
	}
	offSize := 1
	for total >= 1<<(8*offSize) {
		offSize++
	}
	buf = append(buf, byte(offSize))
	off := 1
	appendOff := func(o int) {
		for i := offSize - 1; i >= 0; i-- {
			buf = append(buf, byte(o>>(8*i)))
		}
	}
	appendOff(off)
	for _, it := range items {
		off += len(it)
		appendOff(off)
	}
	for _, it := range items {
		buf = append(buf, it...)
	}
	return buf
}

// dictInt encodes a DICT integer in the fixed-size five byte form, so that
// offsets can be patched without changing the DICT length.
func dictInt(v int) []byte {
	buf := []byte{29}
	return binary.BigEndian.AppendUint32(buf, uint32(int32(v)))
}

func dictOp(op int) []byte {
	if op >= 0x100 {
		return []byte{12, byte(op)}
	}
	return []byte{byte(op)}
}

// CFF builds a name-keyed CFF table with the given charstrings and
// subroutines.  Local subroutines are omitted if subrs is nil.
func CFF(charStrings, gsubrs, subrs [][]byte) []byte {
	topDict := func(csOff, privSize, privOff int) []byte {
		var d []byte
		d = append(d, dictInt(csOff)...)
		d = append(d, dictOp(17)...)
		d = append(d, dictInt(privSize)...)
		d = append(d, dictInt(privOff)...)
		d = append(d, dictOp(18)...)
		return d
	}
	privDict := func() []byte {
		if subrs == nil {
			return nil
		}
		var d []byte
		d = append(d, dictInt(6)...) // Subrs follow the 6-byte Private DICT
		d = append(d, dictOp(19)...)
		return d
	}

	header := []byte{1, 0, 4, 4}
	names := Index([][]byte{[]byte("Test")})
	strs := Index(nil)
	gsub := Index(gsubrs)
	cs := Index(charStrings)
	priv := privDict()

	topLen := len(Index([][]byte{topDict(0, 0, 0)}))
	csOff := len(header) + len(names) + topLen + len(strs) + len(gsub)
	privOff := csOff + len(cs)
	top := Index([][]byte{topDict(csOff, len(priv), privOff)})

	var buf []byte
	buf = append(buf, header...)
	buf = append(buf, names...)
	buf = append(buf, top...)
	buf = append(buf, strs...)
	buf = append(buf, gsub...)
	buf = append(buf, cs...)
	buf = append(buf, priv...)
	if subrs != nil {
		buf = append(buf, Index(subrs)...)
	}
	return buf
}

// CIDCFF builds a CID-keyed CFF table.  Each font DICT i has local
// subroutines fdSubrs[i], and fdSelect is the raw FDSelect data.
func CIDCFF(charStrings, gsubrs [][]byte, fdSubrs [][][]byte, fdSelect []byte) []byte {
	topDict := func(csOff, fdArrayOff, fdSelectOff int) []byte {
		var d []byte
		d = append(d, dictInt(csOff)...)
		d = append(d, dictOp(17)...)
		d = append(d, dictInt(fdArrayOff)...)
		d = append(d, dictOp(0x100|36)...)
		d = append(d, dictInt(fdSelectOff)...)
		d = append(d, dictOp(0x100|37)...)
		return d
	}
	fontDict := func(privSize, privOff int) []byte {
		var d []byte
		d = append(d, dictInt(privSize)...)
		d = append(d, dictInt(privOff)...)
		d = append(d, dictOp(18)...)
		return d
	}
	var subrsPriv []byte
	subrsPriv = append(subrsPriv, dictInt(6)...)
	subrsPriv = append(subrsPriv, dictOp(19)...)

	header := []byte{1, 0, 4, 4}
	names := Index([][]byte{[]byte("Test")})
	strs := Index(nil)
	gsub := Index(gsubrs)
	cs := Index(charStrings)

	topLen := len(Index([][]byte{topDict(0, 0, 0)}))
	csOff := len(header) + len(names) + topLen + len(strs) + len(gsub)
	fdSelectOff := csOff + len(cs)
	fdArrayOff := fdSelectOff + len(fdSelect)

	placeholder := make([][]byte, len(fdSubrs))
	for i := range placeholder {
		placeholder[i] = fontDict(0, 0)
	}
	pos := fdArrayOff + len(Index(placeholder))

	fds := make([][]byte, len(fdSubrs))
	var privData []byte
	for i, s := range fdSubrs {
		fds[i] = fontDict(len(subrsPriv), pos+len(privData))
		privData = append(privData, subrsPriv...)
		privData = append(privData, Index(s)...)
	}

	var buf []byte
	buf = append(buf, header...)
	buf = append(buf, names...)
	buf = append(buf, Index([][]byte{topDict(csOff, fdArrayOff, fdSelectOff)})...)
	buf = append(buf, strs...)
	buf = append(buf, gsub...)
	buf = append(buf, cs...)
	buf = append(buf, fdSelect...)
	buf = append(buf, Index(fds)...)
	buf = append(buf, privData...)
	return buf
}
