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


package main

import (
	"testing"

	"seehuhn.de/go/fontraster/raster"
)

func TestDraw(t *testing.T) {
	f, err := loadFont("")
	if err != nil {
		t.Fatal(err)
	}
	screen := raster.NewBitmap(79, 20)
	draw(screen, f, "Hello World!", 15)

	ink := 0
	for _, v := range screen.Pix {
		if v > 0 {
			ink++
		}
	}
	if ink == 0 {
		t.Fatal("nothing drawn")
	}
	// the first two columns are left for glyphs extending left
	for y := range screen.Height {
		if v := screen.At(0, y); v != 0 {
			t.Errorf("pixel (0, %d) = %d", y, v)
		}
	}
}

func TestCopyClipped(t *testing.T) {
	src := raster.NewBitmap(3, 2)
	for i := range src.Pix {
		src.Pix[i] = byte(i + 1)
	}
	dst := raster.NewBitmap(4, 4)
	copyClipped(dst, src, -1, 3)

	want := map[[2]int]byte{{0, 3}: 2, {1, 3}: 3}
	for y := range dst.Height {
		for x := range dst.Width {
			if got := dst.At(x, y); got != want[[2]int{x, y}] {
				t.Errorf("pixel (%d, %d) = %d, want %d", x, y, got, want[[2]int{x, y}])
			}
		}
	}
}
