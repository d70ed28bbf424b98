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

import (
	"math"

	"seehuhn.de/go/fontraster/outline"
)

var fillCases = []TestCase{
	em("square", rectangle(100, 100, 900, 900)),
	em("square_clockwise", reverse(rectangle(100, 100, 900, 900))),
	em("triangle", polygon(0, 0, 1000, 0, 500, 1000)),
	em("diamond", polygon(500, 0, 1000, 500, 500, 1000, 0, 500)),
	em("slanted_bar", polygon(100, 0, 300, 0, 900, 1000, 700, 1000)),
	em("steep_sliver", polygon(480, 0, 520, 0, 510, 1000)),
	em("star", star(500, 500, 480, 5)),
	em("letter_l", polygon(150, 0, 850, 0, 850, 150, 300, 150, 300, 1000, 150, 1000)),
	{
		Name:    "pixel_aligned",
		Outline: rectangle(2, 2, 8, 8),
		Width:   10,
		Height:  10,
		Scale:   1,
		ShiftY:  10,
	},
}

// star builds a star polygon with n points.  The outline does not
// intersect itself.
func star(cx, cy, r float64, n int) outline.Outline {
	var xy []int32
	for i := range 2 * n {
		radius := r
		if i%2 == 1 {
			radius = r * 0.4
		}
		angle := math.Pi/2 + float64(i)*math.Pi/float64(n)
		xy = append(xy,
			int32(math.Round(cx+radius*math.Cos(angle))),
			int32(math.Round(cy+radius*math.Sin(angle))))
	}
	return polygon(xy...)
}
