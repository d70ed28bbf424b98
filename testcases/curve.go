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

// kappa for cubic Bezier approximation of a quarter circle
const kappa = 0.5522847498

var curveCases = []TestCase{
	em("quadratic", outline.Outline{move(0, 0), quad(500, 1000, 1000, 0), line(0, 0)}),
	em("quadratic_shallow", outline.Outline{move(0, 400), quad(500, 600, 1000, 400), line(0, 400)}),
	em("quadratic_s_shape", outline.Outline{
		move(0, 0), quad(250, 1000, 500, 500), quad(750, 0, 1000, 1000),
		line(1000, 0), line(0, 0),
	}),
	em("cubic", outline.Outline{move(0, 0), cubic(0, 1000, 1000, 1000, 1000, 0), line(0, 0)}),
	em("cubic_scurve", outline.Outline{move(0, 0), cubic(0, 1300, 1000, -300, 1000, 1000), line(0, 1000)}),
	em("cubic_loop", outline.Outline{move(100, 100), cubic(1300, 1000, -300, 1000, 900, 100), line(100, 100)}),
	em("cubic_cusp", outline.Outline{move(0, 100), cubic(1000, 900, 0, 900, 1000, 100), line(0, 100)}),
	em("cubic_degenerate", outline.Outline{move(0, 0), cubic(0, 0, 1000, 1000, 1000, 1000), line(1000, 0)}),
	em("quadratic_degenerate", outline.Outline{move(0, 0), quad(500, 500, 1000, 1000), line(1000, 0)}),
	em("circle_cubic", cubicCircle(500, 500, 450)),
	em("circle_quadratic", quadCircle(500, 500, 450)),
	em("ellipse", cubicEllipse(500, 500, 480, 250)),
	{
		Name:    "circle_small",
		Outline: quadCircle(500, 500, 500),
		Width:   8,
		Height:  8,
		Scale:   0.006,
		ShiftX:  1,
		ShiftY:  7,
	},
}

// cubicCircle builds a counter-clockwise circle from four cubic curves, the
// way CFF fonts describe round shapes.
func cubicCircle(cx, cy, r int32) outline.Outline {
	return cubicEllipse(cx, cy, r, r)
}

func cubicEllipse(cx, cy, rx, ry int32) outline.Outline {
	kx := int32(math.Round(kappa * float64(rx)))
	ky := int32(math.Round(kappa * float64(ry)))
	return outline.Outline{
		move(cx+rx, cy),
		cubic(cx+rx, cy+ky, cx+kx, cy+ry, cx, cy+ry),
		cubic(cx-kx, cy+ry, cx-rx, cy+ky, cx-rx, cy),
		cubic(cx-rx, cy-ky, cx-kx, cy-ry, cx, cy-ry),
		cubic(cx+kx, cy-ry, cx+rx, cy-ky, cx+rx, cy),
	}
}

// quadCircle builds a counter-clockwise circle from eight quadratic curves,
// the way TrueType fonts describe round shapes.
func quadCircle(cx, cy, r int32) outline.Outline {
	const n = 8
	at := func(angle, radius float64) (int32, int32) {
		return cx + int32(math.Round(radius*math.Cos(angle))),
			cy + int32(math.Round(radius*math.Sin(angle)))
	}

	x, y := at(0, float64(r))
	o := outline.Outline{move(x, y)}
	rc := float64(r) / math.Cos(math.Pi/n)
	for i := range n {
		ccx, ccy := at((float64(i)+0.5)*2*math.Pi/n, rc)
		x, y := at(float64(i+1)*2*math.Pi/n, float64(r))
		o = append(o, quad(ccx, ccy, x, y))
	}
	return o
}
