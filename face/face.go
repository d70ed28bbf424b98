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


// Package face adapts a [fontraster.Font] to the [font.Face] interface, so
// that text can be laid out and drawn with [font.Drawer].
package face

import (
	"image"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"seehuhn.de/go/fontraster"
	"seehuhn.de/go/fontraster/raster"
)

// DefaultSize is the em size in pixels used when no size is given.
const DefaultSize = 12

// Options configures a [Face].
type Options struct {
	// Size is the size of the em square in pixels.
	Size float64
}

// Face is a font face at a fixed size.
//
// A Face is not safe for concurrent use.  The mask returned by
// [Face.Glyph] is only valid until the next call to Glyph.
type Face struct {
	font  *fontraster.Font
	scale float64

	r    *raster.Rasterizer
	mask *raster.Bitmap
}

var _ font.Face = (*Face)(nil)

// New returns a face for f.  A nil opts is equivalent to a zero Options
// value.
func New(f *fontraster.Font, opts *Options) *Face {
	size := float64(DefaultSize)
	if opts != nil && opts.Size > 0 {
		size = opts.Size
	}
	scale := f.ScaleForEmToPixels(size)

	r := raster.NewRasterizer()
	r.ScaleX, r.ScaleY = scale, scale
	return &Face{
		font:  f,
		scale: scale,
		r:     r,
		mask:  &raster.Bitmap{},
	}
}

// Close implements [font.Face].
func (fc *Face) Close() error {
	return nil
}

// Glyph implements [font.Face].  The glyph is rendered at the fractional
// position given by dot.
func (fc *Face) Glyph(dot fixed.Point26_6, r rune) (dr image.Rectangle, mask image.Image, maskp image.Point, advance fixed.Int26_6, ok bool) {
	gid := fc.font.GlyphIndex(r)
	if gid == 0 {
		return image.Rectangle{}, nil, image.Point{}, 0, false
	}
	advance = fc.advance(gid)

	ix, iy := dot.X.Floor(), dot.Y.Floor()
	shiftX := float64(dot.X-fixed.I(ix)) / 64
	shiftY := float64(dot.Y-fixed.I(iy)) / 64

	box := fc.font.GlyphBitmapBox(gid, fc.scale, fc.scale, shiftX, shiftY)
	o, err := fc.font.GlyphOutline(gid)
	if err != nil || box.Empty() {
		if err != nil {
			fontraster.Logger().Debug("face glyph", "glyph", gid, "err", err)
		}
		return image.Rectangle{}, fc.mask.Alpha(), image.Point{}, advance, true
	}

	w, h := box.Dx(), box.Dy()
	if cap(fc.mask.Pix) < w*h {
		fc.mask = raster.NewBitmap(w, h)
	} else {
		fc.mask = &raster.Bitmap{Width: w, Height: h, Stride: w, Pix: fc.mask.Pix[:w*h]}
	}
	fc.r.ShiftX, fc.r.ShiftY = shiftX, shiftY
	fc.r.FillOutline(fc.mask, o, box.Min.X, box.Min.Y)

	dr = box.Add(image.Point{X: ix, Y: iy})
	return dr, fc.mask.Alpha(), image.Point{}, advance, true
}

// GlyphBounds implements [font.Face].
func (fc *Face) GlyphBounds(r rune) (bounds fixed.Rectangle26_6, advance fixed.Int26_6, ok bool) {
	gid := fc.font.GlyphIndex(r)
	if gid == 0 {
		return fixed.Rectangle26_6{}, 0, false
	}
	advance = fc.advance(gid)

	box, hasBox := fc.font.GlyphBox(gid)
	if !hasBox {
		return fixed.Rectangle26_6{}, advance, true
	}
	// bounds in 26.6 units, with y pointing down
	r := box.Rect()
	r.Scale(fc.scale * 64)
	r = r.Rounded()
	bounds = fixed.Rectangle26_6{
		Min: fixed.Point26_6{X: fixed.Int26_6(r.LLx), Y: fixed.Int26_6(-r.URy)},
		Max: fixed.Point26_6{X: fixed.Int26_6(r.URx), Y: fixed.Int26_6(-r.LLy)},
	}
	return bounds, advance, true
}

// GlyphAdvance implements [font.Face].
func (fc *Face) GlyphAdvance(r rune) (advance fixed.Int26_6, ok bool) {
	gid := fc.font.GlyphIndex(r)
	if gid == 0 {
		return 0, false
	}
	return fc.advance(gid), true
}

// Kern implements [font.Face].
func (fc *Face) Kern(r0, r1 rune) fixed.Int26_6 {
	return fc.toFixed(fc.font.KernRunes(r0, r1))
}

// Metrics implements [font.Face].  The x-height and cap height are taken
// from the bounding boxes of the glyphs for 'x' and 'H'.
func (fc *Face) Metrics() font.Metrics {
	ascent, descent, lineGap := fc.font.VMetrics()
	m := font.Metrics{
		Height:     fc.toFixed(ascent - descent + lineGap),
		Ascent:     fc.toFixed(ascent),
		Descent:    fc.toFixed(-descent),
		CaretSlope: image.Point{X: 0, Y: 1},
	}
	if box, ok := fc.font.GlyphBox(fc.font.GlyphIndex('x')); ok {
		m.XHeight = fc.toFixed(int(box.YMax))
	}
	if box, ok := fc.font.GlyphBox(fc.font.GlyphIndex('H')); ok {
		m.CapHeight = fc.toFixed(int(box.YMax))
	}
	return m
}

func (fc *Face) advance(gid int) fixed.Int26_6 {
	adv, _ := fc.font.HMetrics(gid)
	return fc.toFixed(adv)
}

// toFixed converts font design units to pixels.
func (fc *Face) toFixed(v int) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(float64(v) * fc.scale * 64))
}
