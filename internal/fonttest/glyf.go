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
	"math"
)

// Point is a TrueType outline point.
type Point struct {
	X, Y int16
	On   bool
}

// SimpleGlyph encodes a simple glyph with the given contours.
// Coordinates use the short forms and flag repeats where possible.
func SimpleGlyph(contours ...[]Point) []byte {
	var all []Point
	var endPts []uint16
	for _, c := range contours {
		all = append(all, c...)
		endPts = append(endPts, uint16(len(all)-1))
	}

	var buf []byte
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(contours)))
	xMin, yMin, xMax, yMax := bbox(all)
	buf = binary.BigEndian.AppendUint16(buf, uint16(xMin))
	buf = binary.BigEndian.AppendUint16(buf, uint16(yMin))
	buf = binary.BigEndian.AppendUint16(buf, uint16(xMax))
	buf = binary.BigEndian.AppendUint16(buf, uint16(yMax))
	for _, e := range endPts {
		buf = binary.BigEndian.AppendUint16(buf, e)
	}
	buf = binary.BigEndian.AppendUint16(buf, 0) // instructionLength

	flags := make([]byte, len(all))
	var xs, ys []byte
	var prevX, prevY int16
	for i, p := range all {
		var f byte
		if p.On {
			f |= 0x01
		}
		var fx, fy byte
		fx, xs = encodeDelta(xs, int(p.X)-int(prevX), 0x02, 0x10)
		fy, ys = encodeDelta(ys, int(p.Y)-int(prevY), 0x04, 0x20)
		flags[i] = f | fx | fy
		prevX, prevY = p.X, p.Y
	}

	for i := 0; i < len(flags); {
		run := 1
		for i+run < len(flags) && flags[i+run] == flags[i] && run < 256 {
			run++
		}
		if run > 1 {
			buf = append(buf, flags[i]|0x08, byte(run-1))
		} else {
			buf = append(buf, flags[i])
		}
		i += run
	}
	buf = append(buf, xs...)
	buf = append(buf, ys...)
	return buf
}

func encodeDelta(buf []byte, d int, short, same byte) (byte, []byte) {
	switch {
	case d == 0:
		return same, buf
	case d > 0 && d < 256:
		return short | same, append(buf, byte(d))
	case d < 0 && d > -256:
		return short, append(buf, byte(-d))
	default:
		return 0, binary.BigEndian.AppendUint16(buf, uint16(int16(d)))
	}
}

func bbox(pts []Point) (xMin, yMin, xMax, yMax int16) {
	if len(pts) == 0 {
		return
	}
	xMin, yMin, xMax, yMax = pts[0].X, pts[0].Y, pts[0].X, pts[0].Y
	for _, p := range pts {
		xMin = min(xMin, p.X)
		yMin = min(yMin, p.Y)
		xMax = max(xMax, p.X)
		yMax = max(yMax, p.Y)
	}
	return
}

// Component is one element of a composite glyph.
type Component struct {
	Glyph  uint16
	DX, DY int16

	// Transform holds 0, 1 (uniform scale), 2 (x and y scale) or
	// 4 (2x2 matrix) values.
	Transform []float64

	// ScaledOffset sets the SCALED_COMPONENT_OFFSET flag.
	ScaledOffset bool

	// PointMatching positions the component by point numbers instead of
	// offsets.
	PointMatching bool
}

// CompositeGlyph encodes a composite glyph.
func CompositeGlyph(comps ...Component) []byte {
	var buf []byte
	buf = binary.BigEndian.AppendUint16(buf, 0xffff) // numberOfContours = -1
	buf = append(buf, make([]byte, 8)...)             // bounding box
	for i, c := range comps {
		var flags uint16
		if !c.PointMatching {
			flags |= 0x0002
		}
		words := c.DX < -128 || c.DX > 127 || c.DY < -128 || c.DY > 127
		if words {
			flags |= 0x0001
		}
		switch len(c.Transform) {
		case 1:
			flags |= 0x0008
		case 2:
			flags |= 0x0040
		case 4:
			flags |= 0x0080
		}
		if i < len(comps)-1 {
			flags |= 0x0020
		}
		if c.ScaledOffset {
			flags |= 0x0800
		}

		buf = binary.BigEndian.AppendUint16(buf, flags)
		buf = binary.BigEndian.AppendUint16(buf, c.Glyph)
		if words {
			buf = binary.BigEndian.AppendUint16(buf, uint16(c.DX))
			buf = binary.BigEndian.AppendUint16(buf, uint16(c.DY))
		} else {
			buf = append(buf, byte(int8(c.DX)), byte(int8(c.DY)))
		}
		for _, v := range c.Transform {
			buf = binary.BigEndian.AppendUint16(buf, uint16(int16(math.Round(v*16384))))
		}
	}
	return buf
}

// GlyfLoca lays out the glyph records and returns the "glyf" and "loca"
// table data.  A nil record gives a glyph without outline.
func GlyfLoca(glyphs [][]byte, long bool) (glyf, loca []byte) {
	appendOffset := func(off int) {
		if long {
			loca = binary.BigEndian.AppendUint32(loca, uint32(off))
		} else {
			loca = binary.BigEndian.AppendUint16(loca, uint16(off/2))
		}
	}
	for _, g := range glyphs {
		appendOffset(len(glyf))
		glyf = append(glyf, g...)
		if len(glyf)%2 != 0 {
			glyf = append(glyf, 0)
		}
	}
	appendOffset(len(glyf))
	return glyf, loca
}
