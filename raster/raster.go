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

// Package raster converts glyph outlines into anti-aliased coverage
// bitmaps.
//
// Outlines are first flattened into polygons.  The polygon edges are then
// swept scanline by scanline, and the exact area of the polygon inside
// each pixel is accumulated.  Edge contributions are signed by the edge
// direction and the absolute value of the sum is used as coverage.
package raster

import (
	"cmp"
	"math"
	"slices"

	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/fontraster/outline"
)

// defaultFlatness is the default curve flattening tolerance in device
// pixels.
const defaultFlatness = 0.35

// edge is a polygon edge in device coordinates, with y0 < y1.
type edge struct {
	x0, y0 float64
	x1, y1 float64
	dir    float64 // +1 if the edge pointed down before sorting its end points, -1 otherwise
}

// activeEdge is an edge which intersects the current scanline.
type activeEdge struct {
	fx  float64 // x at the top of the current scanline, relative to the bitmap
	fdx float64 // dx/dy
	fdy float64 // dy/dx, or 0 for vertical edges
	dir float64
	sy  float64 // top of the edge
	ey  float64 // bottom of the edge
}

// Rasterizer fills flattened glyph outlines into coverage bitmaps.
// Create one instance and reuse it for multiple glyphs.  Internal buffers
// grow as needed but never shrink.
//
// A Rasterizer is not safe for concurrent use.
type Rasterizer struct {
	// ScaleX and ScaleY map glyph space units to pixels.
	ScaleX, ScaleY float64

	// ShiftX and ShiftY are added after scaling, to position glyphs at
	// fractional pixel offsets.
	ShiftX, ShiftY float64

	// Flatness is the curve flattening tolerance in device pixels.
	Flatness float64

	// Invert flips the y axis, so that glyph space y (pointing up) maps
	// to bitmap rows (pointing down).
	Invert bool

	edges    []edge
	active   []activeEdge
	scanline []float64 // coverage of each pixel in the current row
	fill     []float64 // coverage carried to all pixels right of index
}

// NewRasterizer returns a Rasterizer for glyph outlines, with unit scale,
// no shift and the y axis flipped.
func NewRasterizer() *Rasterizer {
	return &Rasterizer{
		ScaleX:   1,
		ScaleY:   1,
		Flatness: defaultFlatness,
		Invert:   true,
	}
}

// FillOutline flattens o and rasterizes it into dst.
// See [Rasterizer.FillContours] for the meaning of offX and offY.
func (r *Rasterizer) FillOutline(dst *Bitmap, o outline.Outline, offX, offY int) {
	if dst.Width <= 0 || dst.Height <= 0 {
		return
	}
	flatness := r.Flatness
	if flatness <= 0 {
		flatness = defaultFlatness
	}
	c := Flatten(o, objectFlatness(flatness, r.ScaleX, r.ScaleY))
	r.FillContours(dst, c, offX, offY)
}

// FillContours rasterizes the polygons c into dst.  Pixel (0, 0) of dst
// covers the device space square with corner (offX, offY).
// Every pixel of dst is overwritten.
func (r *Rasterizer) FillContours(dst *Bitmap, c *Contours, offX, offY int) {
	if dst.Width <= 0 || dst.Height <= 0 {
		return
	}
	r.collectEdges(c)
	r.sweep(dst, offX, offY)
}

// collectEdges transforms the polygon edges to device space and sorts them
// by their top y coordinate.
func (r *Rasterizer) collectEdges(c *Contours) {
	yScale := r.ScaleY
	if r.Invert {
		yScale = -yScale
	}
	device := func(p vec.Vec2) vec.Vec2 {
		return vec.Vec2{
			X: p.X*r.ScaleX + r.ShiftX,
			Y: p.Y*yScale + r.ShiftY,
		}
	}

	r.edges = r.edges[:0]
	start := 0
	for _, n := range c.Lengths {
		pts := c.Points[start : start+n]
		start += n

		j := n - 1
		for k := range n {
			a, b := device(pts[j]), device(pts[k])
			j = k
			if a.Y == b.Y {
				continue // horizontal
			}
			dir := 1.0
			if a.Y > b.Y {
				a, b = b, a
				dir = -1
			}
			r.edges = append(r.edges, edge{
				x0: a.X, y0: a.Y,
				x1: b.X, y1: b.Y,
				dir: dir,
			})
		}
	}

	slices.SortFunc(r.edges, func(a, b edge) int {
		return cmp.Compare(a.y0, b.y0)
	})
}

// sweep processes the scanlines of dst from top to bottom.
func (r *Rasterizer) sweep(dst *Bitmap, offX, offY int) {
	w := dst.Width
	r.scanline = slices.Grow(r.scanline[:0], w)[:w]
	r.fill = slices.Grow(r.fill[:0], w+1)[:w+1]
	r.active = r.active[:0]

	next := 0
	for j := range dst.Height {
		top := float64(offY + j)
		bottom := top + 1

		clear(r.scanline)
		clear(r.fill)

		// Remove edges which end above this scanline.
		for i := 0; i < len(r.active); {
			if r.active[i].ey <= top {
				last := len(r.active) - 1
				r.active[i] = r.active[last]
				r.active = r.active[:last]
				continue
			}
			i++
		}

		// Add edges which start before the bottom of this scanline.
		for next < len(r.edges) && r.edges[next].y0 <= bottom {
			e := &r.edges[next]
			next++
			if e.y1 <= top {
				continue // entirely above the bitmap
			}
			r.active = append(r.active, newActiveEdge(e, offX, top))
		}

		if len(r.active) > 0 {
			r.fillActiveEdges(top)
		}

		row := dst.Pix[j*dst.Stride : j*dst.Stride+w]
		sum := 0.0
		for i := range row {
			sum += r.fill[i]
			k := math.Abs(r.scanline[i]+sum)*255 + 0.5
			row[i] = byte(min(int(k), 255))
		}

		for i := range r.active {
			r.active[i].fx += r.active[i].fdx
		}
	}
}

func newActiveEdge(e *edge, offX int, top float64) activeEdge {
	dxdy := (e.x1 - e.x0) / (e.y1 - e.y0)
	var dydx float64
	if dxdy != 0 {
		dydx = 1 / dxdy
	}
	return activeEdge{
		fx:  e.x0 + dxdy*(top-e.y0) - float64(offX),
		fdx: dxdy,
		fdy: dydx,
		dir: e.dir,
		sy:  e.y0,
		ey:  e.y1,
	}
}

// fillActiveEdges accumulates the coverage of all active edges within the
// scanline [yTop, yTop+1).
func (r *Rasterizer) fillActiveEdges(yTop float64) {
	yBottom := yTop + 1
	scanline := r.scanline
	fill := r.fill
	length := float64(len(scanline))

	for i := range r.active {
		e := &r.active[i]

		if e.fdx == 0 {
			x0 := e.fx
			if x0 < length {
				if x0 >= 0 {
					clippedEdge(scanline, int(x0), e, x0, yTop, x0, yBottom)
					clippedEdge(fill, int(x0)+1, e, x0, yTop, x0, yBottom)
				} else {
					clippedEdge(fill, 0, e, x0, yTop, x0, yBottom)
				}
			}
			continue
		}

		x0 := e.fx
		dx := e.fdx
		xb := x0 + dx
		dy := e.fdy

		// Clip the edge to the scanline.  x0 is the intersection with
		// yTop, which may lie outside the edge.
		var xTop, xBottom, sy0, sy1 float64
		if e.sy > yTop {
			xTop = x0 + dx*(e.sy-yTop)
			sy0 = e.sy
		} else {
			xTop = x0
			sy0 = yTop
		}
		if e.ey < yBottom {
			xBottom = x0 + dx*(e.ey-yTop)
			sy1 = e.ey
		} else {
			xBottom = xb
			sy1 = yBottom
		}

		if xTop < 0 || xBottom < 0 || xTop >= length || xBottom >= length {
			bruteForceEdge(scanline, e, x0, xb, dx, yTop, yBottom)
			continue
		}

		if int(xTop) == int(xBottom) {
			// The edge stays within one pixel.
			x := int(xTop)
			height := sy1 - sy0
			fx := float64(x)
			scanline[x] += e.dir * (1 - ((xTop-fx)+(xBottom-fx))/2) * height
			fill[x+1] += e.dir * height
			continue
		}

		// The edge crosses two or more pixels.  Mirror the scanline
		// vertically if needed, so that the edge runs to the right.  This
		// does not change the signed area.
		if xTop > xBottom {
			sy0 = yBottom - (sy0 - yTop)
			sy1 = yBottom - (sy1 - yTop)
			sy0, sy1 = sy1, sy0
			xTop, xBottom = xBottom, xTop
			dx = -dx
			dy = -dy
			x0 = xb
		}

		x1 := int(xTop)
		x2 := int(xBottom)

		// intersection with the right edge of pixel x1
		yCrossing := (float64(x1+1)-x0)*dy + yTop
		if yCrossing > yBottom {
			yCrossing = yBottom
		}

		sign := e.dir
		area := sign * (yCrossing - sy0)
		// triangle (xTop, sy0), (x1+1, sy0), (x1+1, yCrossing)
		scanline[x1] += area * (float64(x1+1) - xTop) / 2

		yFinal := yCrossing + dy*float64(x2-(x1+1))
		if yFinal > yBottom {
			yFinal = yBottom
			// x2 > x1+1 here, since otherwise yFinal == yCrossing.
			dy = (yFinal - yCrossing) / float64(x2-(x1+1))
		}

		// Each full pixel in between adds a parallelogram of area step.
		step := sign * dy
		for x := x1 + 1; x < x2; x++ {
			scanline[x] += area + step/2
			area += step
		}

		// trapezoid right of the edge, from where it enters pixel x2
		scanline[x2] += area + sign*(1-(xBottom-float64(x2))/2)*(sy1-yFinal)
		fill[x2+1] += sign * (sy1 - sy0)
	}
}

// bruteForceEdge handles edges which extend outside the bitmap, by
// splitting the edge at every pixel boundary.  This is slow, but glyph
// bitmaps are normally sized to contain the whole outline.
func bruteForceEdge(scanline []float64, e *activeEdge, x0, x3, dx, y0, y3 float64) {
	for x := range scanline {
		x1 := float64(x)
		x2 := float64(x + 1)
		y1 := (x1-x0)/dx + y0
		y2 := (x2-x0)/dx + y0

		switch {
		case x0 < x1 && x3 > x2: // down-right across both pixel sides
			clippedEdge(scanline, x, e, x0, y0, x1, y1)
			clippedEdge(scanline, x, e, x1, y1, x2, y2)
			clippedEdge(scanline, x, e, x2, y2, x3, y3)
		case x3 < x1 && x0 > x2: // down-left across both pixel sides
			clippedEdge(scanline, x, e, x0, y0, x2, y2)
			clippedEdge(scanline, x, e, x2, y2, x1, y1)
			clippedEdge(scanline, x, e, x1, y1, x3, y3)
		case x0 < x1 && x3 > x1: // down-right across x
			clippedEdge(scanline, x, e, x0, y0, x1, y1)
			clippedEdge(scanline, x, e, x1, y1, x3, y3)
		case x3 < x1 && x0 > x1: // down-left across x
			clippedEdge(scanline, x, e, x0, y0, x1, y1)
			clippedEdge(scanline, x, e, x1, y1, x3, y3)
		case x0 < x2 && x3 > x2: // down-right across x+1
			clippedEdge(scanline, x, e, x0, y0, x2, y2)
			clippedEdge(scanline, x, e, x2, y2, x3, y3)
		case x3 < x2 && x0 > x2: // down-left across x+1
			clippedEdge(scanline, x, e, x0, y0, x2, y2)
			clippedEdge(scanline, x, e, x2, y2, x3, y3)
		default:
			clippedEdge(scanline, x, e, x0, y0, x3, y3)
		}
	}
}

// clippedEdge adds the coverage of the segment (x0, y0)-(x1, y1), clipped
// to the vertical extent of e, to pixel x.  The segment must not cross the
// left or right side of the pixel.
func clippedEdge(scanline []float64, x int, e *activeEdge, x0, y0, x1, y1 float64) {
	if y0 == y1 || y0 > e.ey || y1 < e.sy {
		return
	}
	if y0 < e.sy {
		x0 += (x1 - x0) * (e.sy - y0) / (y1 - y0)
		y0 = e.sy
	}
	if y1 > e.ey {
		x1 += (x1 - x0) * (e.ey - y1) / (y1 - y0)
		y1 = e.ey
	}

	fx := float64(x)
	switch {
	case x0 <= fx && x1 <= fx:
		scanline[x] += e.dir * (y1 - y0)
	case x0 >= fx+1 && x1 >= fx+1:
		// right of the pixel
	default:
		// coverage is one minus the average x position
		scanline[x] += e.dir * (y1 - y0) * (1 - ((x0-fx)+(x1-fx))/2)
	}
}
