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

package raster

import (
	"math"

	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/fontraster/outline"
)

// maxSubdivision caps the recursion depth of curve subdivision, so that a
// single curve gives at most 65536 line segments.
const maxSubdivision = 16

// Contours is a flattened outline: closed polygons in glyph space.
// Contour i consists of the Lengths[i] points following the points of
// contours 0, ..., i-1.  The segment from the last point of a contour back
// to its first point is implied.
type Contours struct {
	Points  []vec.Vec2
	Lengths []int
}

// Contour returns the points of contour i.
func (c *Contours) Contour(i int) []vec.Vec2 {
	start := 0
	for _, n := range c.Lengths[:i] {
		start += n
	}
	return c.Points[start : start+c.Lengths[i]]
}

// Flatten converts an outline into polygons.  Curves are subdivided until
// the polygon deviates from the curve by at most flatness, measured in
// glyph space units.
//
// The outline is traversed twice, first to count the points and then to
// store them, so that the result is allocated exactly once.
func Flatten(o outline.Outline, flatness float64) *Contours {
	numContours := o.NumContours()
	if numContours == 0 {
		return &Contours{}
	}

	f := &flattener{tol2: flatness * flatness}
	f.run(o, nil)

	res := &Contours{
		Points:  make([]vec.Vec2, f.n),
		Lengths: make([]int, numContours),
	}
	f.run(o, res)
	return res
}

// flattener emits polygon points.  While counting, pts is nil and only n
// is updated.
type flattener struct {
	pts  []vec.Vec2
	n    int
	tol2 float64
}

func (f *flattener) run(o outline.Outline, res *Contours) {
	f.n = 0
	if res != nil {
		f.pts = res.Points
	}

	contour := -1
	start := 0
	var cur vec.Vec2
	for _, v := range o {
		p := vec.Vec2{X: float64(v.X), Y: float64(v.Y)}
		if v.Kind != outline.Move && contour < 0 {
			continue // no contour open yet
		}
		switch v.Kind {
		case outline.Move:
			if contour >= 0 && res != nil {
				res.Lengths[contour] = f.n - start
			}
			contour++
			start = f.n
			f.add(p)
		case outline.Line:
			f.add(p)
		case outline.Quad:
			c := vec.Vec2{X: float64(v.CX), Y: float64(v.CY)}
			f.quad(cur, c, p, 0)
		case outline.Cubic:
			c1 := vec.Vec2{X: float64(v.CX), Y: float64(v.CY)}
			c2 := vec.Vec2{X: float64(v.CX1), Y: float64(v.CY1)}
			f.cubic(cur, c1, c2, p, 0)
		}
		cur = p
	}
	if contour >= 0 && res != nil {
		res.Lengths[contour] = f.n - start
	}
}

func (f *flattener) add(p vec.Vec2) {
	if f.pts != nil {
		f.pts[f.n] = p
	}
	f.n++
}

// quad flattens the quadratic Bézier curve p0, p1, p2, not including p0.
// The curve is split while its midpoint is further than the tolerance
// from the midpoint of the chord.
func (f *flattener) quad(p0, p1, p2 vec.Vec2, depth int) {
	m := p0.Add(p1.Mul(2)).Add(p2).Mul(0.25)
	d := p0.Add(p2).Mul(0.5).Sub(m)
	if depth >= maxSubdivision || d.X*d.X+d.Y*d.Y <= f.tol2 {
		f.add(p2)
		return
	}
	f.quad(p0, p0.Add(p1).Mul(0.5), m, depth+1)
	f.quad(m, p1.Add(p2).Mul(0.5), p2, depth+1)
}

// cubic flattens the cubic Bézier curve p0, p1, p2, p3, not including p0.
// The curve is split while the squared length of the control polygon
// exceeds the squared chord length by more than the tolerance.
func (f *flattener) cubic(p0, p1, p2, p3 vec.Vec2, depth int) {
	long := p1.Sub(p0).Length() + p2.Sub(p1).Length() + p3.Sub(p2).Length()
	short := p3.Sub(p0).Length()
	if depth >= maxSubdivision || long*long-short*short <= f.tol2 {
		f.add(p3)
		return
	}

	p01 := p0.Add(p1).Mul(0.5)
	p12 := p1.Add(p2).Mul(0.5)
	p23 := p2.Add(p3).Mul(0.5)
	a := p01.Add(p12).Mul(0.5)
	b := p12.Add(p23).Mul(0.5)
	m := a.Add(b).Mul(0.5)
	f.cubic(p0, p01, a, m, depth+1)
	f.cubic(m, b, p23, p3, depth+1)
}

// objectFlatness converts a tolerance in device pixels into glyph space,
// using the smaller of the two scale factors.
func objectFlatness(flatness, scaleX, scaleY float64) float64 {
	s := min(math.Abs(scaleX), math.Abs(scaleY))
	if s == 0 {
		s = max(math.Abs(scaleX), math.Abs(scaleY))
	}
	if s == 0 {
		return flatness
	}
	return flatness / s
}
