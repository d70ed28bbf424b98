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

// Package glyf decodes TrueType glyph outlines from the "glyf" and "loca"
// tables.
//
// Simple glyphs are converted to quadratic outlines, inserting the implied
// on-curve points between consecutive off-curve points.  Composite glyphs
// are resolved recursively, up to a configurable nesting depth.
// Hinting instructions are skipped.
package glyf

import (
	"errors"
	"fmt"
	"math"

	"seehuhn.de/go/geom/matrix"

	"seehuhn.de/go/fontraster/cursor"
	"seehuhn.de/go/fontraster/outline"
)

// These errors can be returned by the decoder.
var (
	ErrGlyphIndex     = errors.New("glyf: glyph index out of range")
	ErrLocaFormat     = errors.New("glyf: invalid indexToLocFormat")
	ErrMalformed      = errors.New("glyf: malformed glyph data")
	ErrCompositeDepth = errors.New("glyf: composite glyphs nested too deeply")
	ErrUnsupported    = errors.New("glyf: unsupported composite glyph")
)

// DefaultMaxDepth is the composite nesting limit used when
// Decoder.MaxDepth is zero.
const DefaultMaxDepth = 16

// Decoder reads glyph outlines from a TrueType font.
// A Decoder only reads the font data and can be used concurrently.
type Decoder struct {
	glyf       []byte
	loca       []byte
	numGlyphs  int
	locaFormat int16

	// MaxDepth limits the nesting of composite glyphs.  A composite glyph
	// which references itself, directly or indirectly, fails with
	// ErrCompositeDepth once this depth is exceeded.
	MaxDepth int
}

// New returns a decoder for the given "glyf" and "loca" table contents.
// The indexToLocFormat value comes from the "head" table and must be
// 0 (short offsets) or 1 (long offsets).
func New(glyfData, locaData []byte, numGlyphs int, indexToLocFormat int16) (*Decoder, error) {
	if indexToLocFormat != 0 && indexToLocFormat != 1 {
		return nil, fmt.Errorf("%w: %d", ErrLocaFormat, indexToLocFormat)
	}
	return &Decoder{
		glyf:       glyfData,
		loca:       locaData,
		numGlyphs:  numGlyphs,
		locaFormat: indexToLocFormat,
		MaxDepth:   DefaultMaxDepth,
	}, nil
}

// NumGlyphs returns the number of glyphs in the font.
func (d *Decoder) NumGlyphs() int {
	return d.numGlyphs
}

// locate returns the glyph record for gid.
// For glyphs without outline data, nil is returned.
func (d *Decoder) locate(gid int) ([]byte, error) {
	if gid < 0 || gid >= d.numGlyphs {
		return nil, fmt.Errorf("%w: %d", ErrGlyphIndex, gid)
	}

	c := cursor.New(d.loca)
	var g1, g2 int
	if d.locaFormat == 0 {
		c.Seek(2 * gid)
		g1 = 2 * int(c.U16())
		g2 = 2 * int(c.U16())
	} else {
		c.Seek(4 * gid)
		g1 = int(c.U32())
		g2 = int(c.U32())
	}
	if c.Overrun() || g1 > g2 || g2 > len(d.glyf) {
		return nil, fmt.Errorf("glyph %d: %w: bad loca entry", gid, ErrMalformed)
	}
	if g1 == g2 {
		return nil, nil
	}
	return d.glyf[g1:g2], nil
}

// BBox returns the bounding box stored in the glyph header.
// The second return value is false for glyphs without contours.
func (d *Decoder) BBox(gid int) (outline.Box, bool, error) {
	data, err := d.locate(gid)
	if err != nil || data == nil {
		return outline.Box{}, false, err
	}

	c := cursor.New(data)
	numContours := c.I16()
	box := outline.Box{
		XMin: int32(c.I16()),
		YMin: int32(c.I16()),
		XMax: int32(c.I16()),
		YMax: int32(c.I16()),
	}
	if c.Overrun() {
		return outline.Box{}, false, fmt.Errorf("glyph %d: %w: short header", gid, ErrMalformed)
	}
	if numContours == 0 {
		return outline.Box{}, false, nil
	}
	return box, true, nil
}

// Outline decodes the outline of glyph gid.
// Glyphs without contours, like the space glyph, give an empty outline and
// no error.
func (d *Decoder) Outline(gid int) (outline.Outline, error) {
	return d.decode(gid, 0)
}

func (d *Decoder) decode(gid int, depth int) (outline.Outline, error) {
	maxDepth := d.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if depth > maxDepth {
		return nil, fmt.Errorf("glyph %d: %w", gid, ErrCompositeDepth)
	}

	data, err := d.locate(gid)
	if err != nil || data == nil {
		return nil, err
	}

	c := cursor.New(data)
	numContours := int(c.I16())
	c.Skip(8) // bounding box

	var res outline.Outline
	switch {
	case numContours > 0:
		res, err = decodeSimple(c, numContours)
	case numContours < 0:
		res, err = d.decodeComposite(c, depth)
	}
	if err != nil {
		return nil, fmt.Errorf("glyph %d: %w", gid, err)
	}
	return res, nil
}

// Flag bits for simple glyph points.
const (
	flagOnCurve  = 0x01
	flagXShort   = 0x02
	flagYShort   = 0x04
	flagRepeat   = 0x08
	flagXSamePos = 0x10
	flagYSamePos = 0x20
)

type point struct {
	x, y    int32
	onCurve bool
}

func decodeSimple(c *cursor.Cursor, numContours int) (outline.Outline, error) {
	endPts := make([]int, numContours)
	prev := -1
	for i := range endPts {
		end := int(c.U16())
		if end <= prev {
			return nil, fmt.Errorf("%w: contour end points not increasing", ErrMalformed)
		}
		endPts[i] = end
		prev = end
	}
	numPoints := prev + 1

	instructionLength := int(c.U16())
	c.Skip(instructionLength)
	if c.Overrun() {
		return nil, fmt.Errorf("%w: truncated glyph header", ErrMalformed)
	}

	// Every point needs at least one flag byte.
	if numPoints > c.Remaining() {
		return nil, fmt.Errorf("%w: %d points do not fit", ErrMalformed, numPoints)
	}

	flags := make([]byte, numPoints)
	for i := 0; i < numPoints; i++ {
		f := c.U8()
		flags[i] = f
		if f&flagRepeat != 0 {
			for repeat := int(c.U8()); repeat > 0 && i+1 < numPoints; repeat-- {
				i++
				flags[i] = f
			}
		}
	}

	points := make([]point, numPoints)
	var x int32
	for i, f := range flags {
		if f&flagXShort != 0 {
			dx := int32(c.U8())
			if f&flagXSamePos == 0 {
				dx = -dx
			}
			x += dx
		} else if f&flagXSamePos == 0 {
			x += int32(c.I16())
		}
		points[i].x = x
		points[i].onCurve = f&flagOnCurve != 0
	}
	var y int32
	for i, f := range flags {
		if f&flagYShort != 0 {
			dy := int32(c.U8())
			if f&flagYSamePos == 0 {
				dy = -dy
			}
			y += dy
		} else if f&flagYSamePos == 0 {
			y += int32(c.I16())
		}
		points[i].y = y
	}
	if c.Overrun() {
		return nil, fmt.Errorf("%w: truncated point data", ErrMalformed)
	}

	res := make(outline.Outline, 0, numPoints+2*numContours)
	start := 0
	for _, end := range endPts {
		res = appendContour(res, points[start:end+1])
		start = end + 1
	}
	return res, nil
}

// appendContour converts the points of one closed TrueType contour to
// outline vertices.  Between two consecutive off-curve points, an on-curve
// point is implied at their midpoint.
func appendContour(res outline.Outline, pts []point) outline.Outline {
	var sx, sy int32 // on-curve start point of the contour
	var scx, scy int32
	startOff := !pts[0].onCurve
	i := 1
	if !startOff {
		sx, sy = pts[0].x, pts[0].y
	} else {
		// The first point is a control point.  Start at the next point if
		// it is on the curve, or else at the implied midpoint.
		scx, scy = pts[0].x, pts[0].y
		switch {
		case len(pts) == 1:
			sx, sy = scx, scy
		case pts[1].onCurve:
			sx, sy = pts[1].x, pts[1].y
			i = 2
		default:
			sx, sy = mid(scx, pts[1].x), mid(scy, pts[1].y)
		}
	}
	res = append(res, outline.Vertex{Kind: outline.Move, X: sx, Y: sy})

	wasOff := false
	var cx, cy int32
	for ; i < len(pts); i++ {
		p := pts[i]
		if !p.onCurve {
			if wasOff {
				res = append(res, quad(mid(cx, p.x), mid(cy, p.y), cx, cy))
			}
			cx, cy = p.x, p.y
			wasOff = true
		} else {
			if wasOff {
				res = append(res, quad(p.x, p.y, cx, cy))
			} else {
				res = append(res, outline.Vertex{Kind: outline.Line, X: p.x, Y: p.y})
			}
			wasOff = false
		}
	}

	// close the contour
	if startOff {
		if wasOff {
			res = append(res, quad(mid(cx, scx), mid(cy, scy), cx, cy))
		}
		res = append(res, quad(sx, sy, scx, scy))
	} else if wasOff {
		res = append(res, quad(sx, sy, cx, cy))
	} else {
		res = append(res, outline.Vertex{Kind: outline.Line, X: sx, Y: sy})
	}
	return res
}

func quad(x, y, cx, cy int32) outline.Vertex {
	return outline.Vertex{Kind: outline.Quad, X: x, Y: y, CX: cx, CY: cy}
}

func mid(a, b int32) int32 {
	return (a + b) >> 1
}

// Flag bits for composite glyph components.
const (
	flagArg1And2AreWords        = 0x0001
	flagArgsAreXYValues         = 0x0002
	flagWeHaveAScale            = 0x0008
	flagMoreComponents          = 0x0020
	flagWeHaveAnXAndYScale      = 0x0040
	flagWeHaveATwoByTwo         = 0x0080
	flagScaledComponentOffset   = 0x0800
	flagUnscaledComponentOffset = 0x1000
)

func (d *Decoder) decodeComposite(c *cursor.Cursor, depth int) (outline.Outline, error) {
	var res outline.Outline
	for {
		flags := c.U16()
		childGid := int(c.U16())

		if flags&flagArgsAreXYValues == 0 {
			return nil, fmt.Errorf("%w: component %d is positioned by point matching",
				ErrUnsupported, childGid)
		}
		var dx, dy float64
		if flags&flagArg1And2AreWords != 0 {
			dx = float64(c.I16())
			dy = float64(c.I16())
		} else {
			dx = float64(int8(c.U8()))
			dy = float64(int8(c.U8()))
		}

		m := matrix.Matrix{1, 0, 0, 1, 0, 0}
		switch {
		case flags&flagWeHaveAScale != 0:
			s := f2dot14(c.I16())
			m[0], m[3] = s, s
		case flags&flagWeHaveAnXAndYScale != 0:
			m[0] = f2dot14(c.I16())
			m[3] = f2dot14(c.I16())
		case flags&flagWeHaveATwoByTwo != 0:
			m[0] = f2dot14(c.I16())
			m[1] = f2dot14(c.I16())
			m[2] = f2dot14(c.I16())
			m[3] = f2dot14(c.I16())
		}
		if c.Overrun() {
			return nil, fmt.Errorf("%w: truncated component record", ErrMalformed)
		}

		// With SCALED_COMPONENT_OFFSET, the offset lives in the component's
		// coordinate system and is scaled by the length of each matrix
		// column.
		if flags&flagScaledComponentOffset != 0 && flags&flagUnscaledComponentOffset == 0 {
			dx *= math.Hypot(m[0], m[1])
			dy *= math.Hypot(m[2], m[3])
		}
		m[4], m[5] = dx, dy

		child, err := d.decode(childGid, depth+1)
		if err != nil {
			return nil, err
		}
		res = append(res, child.Transform(m)...)

		if flags&flagMoreComponents == 0 {
			break
		}
	}
	return res, nil
}

func f2dot14(v int16) float64 {
	return float64(v) / 16384
}
