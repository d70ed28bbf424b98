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

var precisionCases = []TestCase{
	subpixel("subpixel_offset_00", 0),
	subpixel("subpixel_offset_25", 0.25),
	subpixel("subpixel_offset_50", 0.5),
	subpixel("subpixel_offset_75", 0.75),
	{
		Name:    "thin_bar",
		Outline: rectangle(0, 0, 1000, 20),
		Width:   64,
		Height:  16,
		Scale:   0.05,
		ShiftX:  7,
		ShiftY:  8.25,
	},
	{
		Name:    "hairline_vertical",
		Outline: rectangle(0, 0, 10, 1000),
		Width:   16,
		Height:  64,
		Scale:   0.05,
		ShiftX:  7.5,
		ShiftY:  57,
	},
	{
		Name:    "large_units",
		Outline: polygon(-16000, -16000, 16000, -16000, 0, 16000),
		Width:   64,
		Height:  64,
		Scale:   0.0015,
		ShiftX:  32,
		ShiftY:  32,
	},
	{
		Name:    "circle_cut_off",
		Outline: cubicCircle(500, 500, 450),
		Width:   64,
		Height:  32,
		Scale:   0.05,
		ShiftX:  7,
		ShiftY:  57,
	},
}

// subpixel places a 10 pixel square at a fractional pixel position in
// both directions.
func subpixel(name string, offset float64) TestCase {
	return TestCase{
		Name:    name,
		Outline: rectangle(0, 0, 100, 100),
		Width:   16,
		Height:  16,
		Scale:   0.1,
		ShiftX:  3 + offset,
		ShiftY:  13 + offset,
	}
}
