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

// Package testcases holds glyph outlines used to test the rasterizer
// against reference images.
//
// Outlines are given in design units with the y axis pointing up.  A
// point (x, y) is drawn at pixel position (x*Scale+ShiftX, ShiftY-y*Scale),
// measured from the top-left corner of the canvas.
package testcases

import (
	"slices"

	"seehuhn.de/go/geom/matrix"

	"seehuhn.de/go/fontraster/outline"
)

// TestCase defines a single rendering test.
type TestCase struct {
	Name    string          // lowercase a-z and _ only
	Outline outline.Outline // the geometry to render, in design units
	Width   int             // canvas width in pixels
	Height  int             // canvas height in pixels
	Scale   float64         // pixels per design unit (zero means 1)
	ShiftX  float64         // horizontal position of the origin
	ShiftY  float64         // vertical position of the baseline, from the top
}

// Transform returns the map from design units to canvas pixels,
// with the y axis pointing down.
func (tc TestCase) Transform() matrix.Matrix {
	s := tc.Scale
	if s == 0 {
		s = 1
	}
	return matrix.Matrix{s, 0, 0, -s, tc.ShiftX, tc.ShiftY}
}

// The standard canvas fits a 1000 unit em square with 7 pixels margin.
const (
	canvas   = 64
	emScale  = 0.05
	emShiftX = 7
	emShiftY = 57
)

// em returns a test case on the standard canvas.
func em(name string, o outline.Outline) TestCase {
	return TestCase{
		Name:    name,
		Outline: o,
		Width:   canvas,
		Height:  canvas,
		Scale:   emScale,
		ShiftX:  emShiftX,
		ShiftY:  emShiftY,
	}
}

func move(x, y int32) outline.Vertex {
	return outline.Vertex{Kind: outline.Move, X: x, Y: y}
}

func line(x, y int32) outline.Vertex {
	return outline.Vertex{Kind: outline.Line, X: x, Y: y}
}

func quad(cx, cy, x, y int32) outline.Vertex {
	return outline.Vertex{Kind: outline.Quad, X: x, Y: y, CX: cx, CY: cy}
}

func cubic(c1x, c1y, c2x, c2y, x, y int32) outline.Vertex {
	return outline.Vertex{Kind: outline.Cubic, X: x, Y: y, CX: c1x, CY: c1y, CX1: c2x, CY1: c2y}
}

// polygon builds a closed contour through the given x, y pairs.
func polygon(xy ...int32) outline.Outline {
	o := outline.Outline{move(xy[0], xy[1])}
	for i := 2; i+1 < len(xy); i += 2 {
		o = append(o, line(xy[i], xy[i+1]))
	}
	return append(o, line(xy[0], xy[1]))
}

// rectangle builds a counter-clockwise rectangle, the orientation used by
// PostScript outlines.
func rectangle(x0, y0, x1, y1 int32) outline.Outline {
	return polygon(x0, y0, x1, y0, x1, y1, x0, y1)
}

// reverse returns the contours of o traversed in the opposite direction.
func reverse(o outline.Outline) outline.Outline {
	var res outline.Outline
	start := 0
	for start < len(o) {
		end := start + 1
		for end < len(o) && o[end].Kind != outline.Move {
			end++
		}
		res = append(res, reverseContour(o[start:end])...)
		start = end
	}
	return res
}

func reverseContour(c outline.Outline) outline.Outline {
	last := c[len(c)-1]
	res := outline.Outline{move(last.X, last.Y)}
	for i := len(c) - 1; i > 0; i-- {
		to := c[i-1]
		v := c[i]
		switch v.Kind {
		case outline.Quad:
			res = append(res, quad(v.CX, v.CY, to.X, to.Y))
		case outline.Cubic:
			res = append(res, cubic(v.CX1, v.CY1, v.CX, v.CY, to.X, to.Y))
		default:
			res = append(res, line(to.X, to.Y))
		}
	}
	return res
}

// concat joins several outlines into one.
func concat(parts ...outline.Outline) outline.Outline {
	return slices.Concat(parts...)
}
