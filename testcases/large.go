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

// largeCases contain big glyphs, and outlines which extend past the canvas
// so that edges must be clipped.
var largeCases = []TestCase{
	{
		Name:    "large_letter_o",
		Outline: concat(quadCircle(500, 500, 480), reverse(quadCircle(500, 500, 300))),
		Width:   512,
		Height:  512,
		Scale:   0.5,
		ShiftX:  6,
		ShiftY:  506,
	},
	{
		Name:    "large_star",
		Outline: star(500, 500, 490, 7),
		Width:   300,
		Height:  300,
		Scale:   0.3,
		ShiftX:  0,
		ShiftY:  300,
	},
	{
		Name:    "clipped_left",
		Outline: polygon(0, 0, 1000, 0, 500, 1000),
		Width:   64,
		Height:  64,
		Scale:   0.05,
		ShiftX:  -20,
		ShiftY:  57,
	},
	{
		Name:    "clipped_right",
		Outline: cubicCircle(500, 500, 450),
		Width:   64,
		Height:  64,
		Scale:   0.05,
		ShiftX:  35,
		ShiftY:  57,
	},
	{
		Name:    "clipped_top",
		Outline: polygon(0, 0, 1000, 200, 300, 1000),
		Width:   64,
		Height:  64,
		Scale:   0.1,
		ShiftX:  2,
		ShiftY:  62,
	},
}
