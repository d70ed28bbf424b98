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

import "image"

// Bitmap is an 8-bit coverage image.  Pixel (x, y) is stored at
// Pix[y*Stride+x].  Stride can exceed Width when the bitmap is a window
// into a larger image, for example a glyph atlas.
type Bitmap struct {
	Width, Height int
	Stride        int
	Pix           []byte
}

// NewBitmap allocates a zeroed bitmap of the given size.
func NewBitmap(width, height int) *Bitmap {
	return &Bitmap{
		Width:  width,
		Height: height,
		Stride: width,
		Pix:    make([]byte, width*height),
	}
}

// Sub returns a bitmap sharing pixels with b, covering the rectangle of
// the given size with top-left corner (x, y).  The rectangle is clipped to
// the bounds of b.
func (b *Bitmap) Sub(x, y, width, height int) *Bitmap {
	r := image.Rect(x, y, x+width, y+height).Intersect(image.Rect(0, 0, b.Width, b.Height))
	if r.Empty() {
		return &Bitmap{}
	}
	start := r.Min.Y*b.Stride + r.Min.X
	end := (r.Max.Y-1)*b.Stride + r.Max.X
	return &Bitmap{
		Width:  r.Dx(),
		Height: r.Dy(),
		Stride: b.Stride,
		Pix:    b.Pix[start:end],
	}
}

// Row returns the pixels of row y.
func (b *Bitmap) Row(y int) []byte {
	return b.Pix[y*b.Stride : y*b.Stride+b.Width]
}

// At returns the coverage of pixel (x, y), or 0 outside the bitmap.
func (b *Bitmap) At(x, y int) byte {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return 0
	}
	return b.Pix[y*b.Stride+x]
}

// Alpha returns an image sharing its pixels with b.
func (b *Bitmap) Alpha() *image.Alpha {
	if b.Width == 0 || b.Height == 0 {
		return image.NewAlpha(image.Rectangle{})
	}
	return &image.Alpha{
		Pix:    b.Pix,
		Stride: b.Stride,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}
