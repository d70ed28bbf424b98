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

package testcases

import "seehuhn.de/go/fontraster/outline"

// contourCases have several contours per outline.  Contours with opposite
// orientation cancel, contours with the same orientation saturate.
var contourCases = []TestCase{
	em("two_triangles", concat(
		polygon(0, 0, 400, 0, 200, 400),
		polygon(600, 600, 1000, 600, 800, 1000),
	)),
	em("ring", concat(
		rectangle(100, 100, 900, 900),
		reverse(rectangle(300, 300, 700, 700)),
	)),
	em("letter_o", concat(
		quadCircle(500, 500, 480),
		reverse(quadCircle(500, 500, 300)),
	)),
	em("overlap_same_direction", concat(
		rectangle(100, 100, 600, 600),
		rectangle(400, 400, 900, 900),
	)),
	em("overlap_opposite_direction", concat(
		rectangle(100, 100, 600, 600),
		reverse(rectangle(400, 400, 900, 900)),
	)),
	em("nested_rings", nestedRings(500, 500, 3)),
	em("touching_squares", concat(
		rectangle(100, 100, 500, 500),
		rectangle(500, 500, 900, 900),
	)),
	em("grid", grid(8, 8)),
}

// nestedRings builds n concentric square rings.
func nestedRings(cx, cy int32, n int) outline.Outline {
	var res outline.Outline
	const width = 60
	r := int32(480)
	for range n {
		res = append(res, rectangle(cx-r, cy-r, cx+r, cy+r)...)
		r -= width
		res = append(res, reverse(rectangle(cx-r, cy-r, cx+r, cy+r))...)
		r -= width
	}
	return res
}

// grid builds a grid of small triangles.
func grid(rows, cols int32) outline.Outline {
	var res outline.Outline
	cell := 1000 / max(rows, cols)
	for i := range rows {
		for j := range cols {
			x, y := j*cell, i*cell
			res = append(res, polygon(x+10, y+10, x+cell-10, y+10, x+cell/2, y+cell-10)...)
		}
	}
	return res
}
