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


package fontraster

import (
	"image"
	"math"
	"sync"

	"seehuhn.de/go/fontraster/outline"
	"seehuhn.de/go/fontraster/raster"
)

// flatness is the curve flattening tolerance in pixels.
const flatness = 0.35

var rasterizers = sync.Pool{
	New: func() any { return raster.NewRasterizer() },
}

// GlyphOutline returns the outline of glyph gid in font design units.
func (f *Font) GlyphOutline(gid int) (outline.Outline, error) {
	return f.outlines.Outline(gid)
}

// GlyphBox returns the bounding box of glyph gid in font design units.
// The second return value is false if the glyph has no outline.
func (f *Font) GlyphBox(gid int) (outline.Box, bool) {
	box, ok, err := f.outlines.BBox(gid)
	if err != nil {
		Logger().Debug("glyph bounding box", "glyph", gid, "err", err)
		return outline.Box{}, false
	}
	return box, ok
}

// GlyphBitmapBox returns the pixel rectangle covered by glyph gid when
// rendered with the given scale and subpixel shift.  The rectangle is
// relative to the glyph origin, with y pointing down.
// Glyphs without outline give the zero rectangle.
func (f *Font) GlyphBitmapBox(gid int, scaleX, scaleY, shiftX, shiftY float64) image.Rectangle {
	box, ok := f.GlyphBox(gid)
	if !ok {
		return image.Rectangle{}
	}
	return bitmapBox(box, scaleX, scaleY, shiftX, shiftY)
}

func bitmapBox(box outline.Box, scaleX, scaleY, shiftX, shiftY float64) image.Rectangle {
	r := box.Rect()
	return image.Rectangle{
		Min: image.Point{
			X: int(math.Floor(r.LLx*scaleX + shiftX)),
			Y: int(math.Floor(-r.URy*scaleY + shiftY)),
		},
		Max: image.Point{
			X: int(math.Ceil(r.URx*scaleX + shiftX)),
			Y: int(math.Ceil(-r.LLy*scaleY + shiftY)),
		},
	}
}

// RenderGlyph renders glyph gid into a newly allocated bitmap.  The glyph
// origin is at pixel (-xoff, -yoff) of the bitmap.
//
// If one of the scale factors is zero, the other one is used for both
// directions.  Glyphs without outline, glyphs which cannot be decoded and
// zero scale factors give an empty bitmap.
func (f *Font) RenderGlyph(gid int, scaleX, scaleY, shiftX, shiftY float64) (bm *raster.Bitmap, xoff, yoff int) {
	scaleX, scaleY, ok := fixScale(scaleX, scaleY)
	if !ok {
		return &raster.Bitmap{}, 0, 0
	}

	o, err := f.outlines.Outline(gid)
	if err != nil {
		Logger().Debug("glyph outline", "glyph", gid, "err", err)
		return &raster.Bitmap{}, 0, 0
	}
	box, ok := f.GlyphBox(gid)
	if !ok {
		return &raster.Bitmap{}, 0, 0
	}

	r := bitmapBox(box, scaleX, scaleY, shiftX, shiftY)
	if r.Empty() {
		return &raster.Bitmap{}, r.Min.X, r.Min.Y
	}
	bm = raster.NewBitmap(r.Dx(), r.Dy())
	fill(bm, o, scaleX, scaleY, shiftX, shiftY, r.Min)
	return bm, r.Min.X, r.Min.Y
}

// RenderGlyphInto renders glyph gid into dst, which may be a window into a
// larger image.  The top-left corner of dst corresponds to the top-left
// corner of the rectangle returned by [Font.GlyphBitmapBox].  Glyph
// pixels outside dst are clipped.  All pixels of dst are overwritten.
func (f *Font) RenderGlyphInto(dst *raster.Bitmap, gid int, scaleX, scaleY, shiftX, shiftY float64) {
	if dst.Width <= 0 || dst.Height <= 0 {
		return
	}
	scaleX, scaleY, ok := fixScale(scaleX, scaleY)
	if !ok {
		return
	}

	o, err := f.outlines.Outline(gid)
	if err != nil {
		Logger().Debug("glyph outline", "glyph", gid, "err", err)
		o = nil
	}
	var origin image.Point
	if box, ok := f.GlyphBox(gid); ok {
		origin = bitmapBox(box, scaleX, scaleY, shiftX, shiftY).Min
	}
	fill(dst, o, scaleX, scaleY, shiftX, shiftY, origin)
}

// RuneBitmapBox is like [Font.GlyphBitmapBox], for the glyph of r.
func (f *Font) RuneBitmapBox(r rune, scaleX, scaleY, shiftX, shiftY float64) image.Rectangle {
	return f.GlyphBitmapBox(f.GlyphIndex(r), scaleX, scaleY, shiftX, shiftY)
}

// RenderRune is like [Font.RenderGlyph], for the glyph of r.
func (f *Font) RenderRune(r rune, scaleX, scaleY, shiftX, shiftY float64) (bm *raster.Bitmap, xoff, yoff int) {
	return f.RenderGlyph(f.GlyphIndex(r), scaleX, scaleY, shiftX, shiftY)
}

// RenderRuneInto is like [Font.RenderGlyphInto], for the glyph of r.
func (f *Font) RenderRuneInto(dst *raster.Bitmap, r rune, scaleX, scaleY, shiftX, shiftY float64) {
	f.RenderGlyphInto(dst, f.GlyphIndex(r), scaleX, scaleY, shiftX, shiftY)
}

// fixScale replaces a zero scale factor by the other one.
func fixScale(scaleX, scaleY float64) (float64, float64, bool) {
	if scaleX == 0 {
		scaleX = scaleY
	}
	if scaleY == 0 {
		scaleY = scaleX
	}
	return scaleX, scaleY, scaleX != 0
}

func fill(dst *raster.Bitmap, o outline.Outline, scaleX, scaleY, shiftX, shiftY float64, origin image.Point) {
	r := rasterizers.Get().(*raster.Rasterizer)
	defer rasterizers.Put(r)

	r.ScaleX, r.ScaleY = scaleX, scaleY
	r.ShiftX, r.ShiftY = shiftX, shiftY
	r.Flatness = flatness
	r.Invert = true
	r.FillOutline(dst, o, origin.X, origin.Y)
}
