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

// Package outline defines the vertex representation shared by the TrueType
// and CFF glyph decoders.
//
// Coordinates are integers in font design units, with the y axis pointing
// up.  Every contour starts with a [Move] vertex and is implicitly closed.
package outline

import (
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// Kind identifies the type of an outline vertex.
type Kind uint8

// These are the supported vertex kinds.
const (
	Move  Kind = iota + 1 // start a new contour at (X, Y)
	Line                  // straight segment to (X, Y)
	Quad                  // quadratic curve to (X, Y) with control (CX, CY)
	Cubic                 // cubic curve to (X, Y) with controls (CX, CY), (CX1, CY1)
)

func (k Kind) String() string {
	switch k {
	case Move:
		return "move"
	case Line:
		return "line"
	case Quad:
		return "quad"
	case Cubic:
		return "cubic"
	default:
		return "invalid"
	}
}

// Vertex is one element of a glyph outline.
// Only the control points required by Kind are meaningful.
type Vertex struct {
	Kind     Kind
	X, Y     int32
	CX, CY   int32
	CX1, CY1 int32
}

// Outline is the sequence of vertices describing one glyph.
// An empty outline is valid and describes a glyph without ink.
type Outline []Vertex

// NumContours returns the number of contours, i.e. the number of
// Move vertices.
func (o Outline) NumContours() int {
	n := 0
	for _, v := range o {
		if v.Kind == Move {
			n++
		}
	}
	return n
}

// Bounds returns the smallest box containing all end points and control
// points of the outline.  The second return value is false if the outline
// is empty.
func (o Outline) Bounds() (Box, bool) {
	if len(o) == 0 {
		return Box{}, false
	}
	b := Box{
		XMin: o[0].X, YMin: o[0].Y,
		XMax: o[0].X, YMax: o[0].Y,
	}
	for _, v := range o {
		b.add(v.X, v.Y)
		switch v.Kind {
		case Quad:
			b.add(v.CX, v.CY)
		case Cubic:
			b.add(v.CX, v.CY)
			b.add(v.CX1, v.CY1)
		}
	}
	return b, true
}

// Transform returns a copy of the outline with the affine map m applied to
// all end points and control points.  Coordinates are rounded to the
// nearest integer.
//
// The matrix uses the same layout as the PDF text matrix:
// x' = m[0]*x + m[2]*y + m[4] and y' = m[1]*x + m[3]*y + m[5].
func (o Outline) Transform(m matrix.Matrix) Outline {
	apply := func(x, y int32) (int32, int32) {
		fx, fy := float64(x), float64(y)
		tx := m[0]*fx + m[2]*fy + m[4]
		ty := m[1]*fx + m[3]*fy + m[5]
		return int32(math.Round(tx)), int32(math.Round(ty))
	}

	res := make(Outline, len(o))
	for i, v := range o {
		w := Vertex{Kind: v.Kind}
		w.X, w.Y = apply(v.X, v.Y)
		switch v.Kind {
		case Quad:
			w.CX, w.CY = apply(v.CX, v.CY)
		case Cubic:
			w.CX, w.CY = apply(v.CX, v.CY)
			w.CX1, w.CY1 = apply(v.CX1, v.CY1)
		}
		res[i] = w
	}
	return res
}

// Path converts the outline to a path in design units.
// Every contour is explicitly closed.
func (o Outline) Path() *path.Data {
	p := &path.Data{}
	open := false
	for _, v := range o {
		pt := vec.Vec2{X: float64(v.X), Y: float64(v.Y)}
		switch v.Kind {
		case Move:
			if open {
				p = p.Close()
			}
			p = p.MoveTo(pt)
			open = true
		case Line:
			p = p.LineTo(pt)
		case Quad:
			p = p.QuadTo(vec.Vec2{X: float64(v.CX), Y: float64(v.CY)}, pt)
		case Cubic:
			p = p.CubeTo(
				vec.Vec2{X: float64(v.CX), Y: float64(v.CY)},
				vec.Vec2{X: float64(v.CX1), Y: float64(v.CY1)},
				pt)
		}
	}
	if open {
		p = p.Close()
	}
	return p
}

// Box is a rectangle in font design units.
// The minimum coordinates are inclusive, as are the maximum coordinates.
type Box struct {
	XMin, YMin, XMax, YMax int32
}

// IsEmpty reports whether the box has zero area.
func (b Box) IsEmpty() bool {
	return b.XMin >= b.XMax || b.YMin >= b.YMax
}

// Rect converts the box to a floating point rectangle.
func (b Box) Rect() rect.Rect {
	return rect.Rect{
		LLx: float64(b.XMin),
		LLy: float64(b.YMin),
		URx: float64(b.XMax),
		URy: float64(b.YMax),
	}
}

func (b *Box) add(x, y int32) {
	b.XMin = min(b.XMin, x)
	b.YMin = min(b.YMin, y)
	b.XMax = max(b.XMax, x)
	b.YMax = max(b.YMax, y)
}
