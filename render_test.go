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
	"bytes"
	"errors"
	"image"
	"log/slog"
	"math"
	"strings"
	"sync"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"seehuhn.de/go/fontraster/glyf"
	ft "seehuhn.de/go/fontraster/internal/fonttest"
	"seehuhn.de/go/fontraster/outline"
	"seehuhn.de/go/fontraster/raster"
)

func goRegular(t testing.TB) *Font {
	t.Helper()
	f, err := Parse(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

// TestGoRegular compares the font loader against golang.org/x/image/font/sfnt.
func TestGoRegular(t *testing.T) {
	f := goRegular(t)
	ref, err := sfnt.Parse(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	var buf sfnt.Buffer

	if f.NumGlyphs() != ref.NumGlyphs() {
		t.Errorf("%d glyphs, want %d", f.NumGlyphs(), ref.NumGlyphs())
	}
	if f.UnitsPerEm() != int(ref.UnitsPerEm()) {
		t.Errorf("unitsPerEm %d, want %d", f.UnitsPerEm(), ref.UnitsPerEm())
	}
	if f.IsCFF() {
		t.Error("Go Regular reported as CFF")
	}

	// at ppem = unitsPerEm, sfnt reports design units in 26.6 format
	ppem := fixed.I(f.UnitsPerEm())
	for _, r := range "AHOVWaegiloxyz0123456789,.;!?@& 世" {
		gi, err := ref.GlyphIndex(&buf, r)
		if err != nil {
			t.Fatal(err)
		}
		gid := f.GlyphIndex(r)
		if gid != int(gi) {
			t.Errorf("GlyphIndex(%q) = %d, want %d", r, gid, gi)
			continue
		}
		if gid == 0 {
			continue
		}

		adv, err := ref.GlyphAdvance(&buf, gi, ppem, font.HintingNone)
		if err != nil {
			t.Fatal(err)
		}
		if advance, _ := f.HMetrics(gid); fixed.I(advance) != adv {
			t.Errorf("%q: advance %d, want %d", r, advance, adv.Round())
		}

		segs, err := ref.LoadGlyph(&buf, gi, ppem, nil)
		if err != nil {
			t.Fatal(err)
		}
		o, err := f.GlyphOutline(gid)
		if err != nil {
			t.Fatalf("%q: %v", r, err)
		}

		contours := 0
		xMin, xMax := fixed.Int26_6(math.MaxInt32), fixed.Int26_6(math.MinInt32)
		yMin, yMax := xMin, xMax
		for _, s := range segs {
			n := 1
			switch s.Op {
			case sfnt.SegmentOpMoveTo:
				contours++
			case sfnt.SegmentOpQuadTo:
				n = 2
			case sfnt.SegmentOpCubeTo:
				n = 3
			}
			for _, p := range s.Args[:n] {
				xMin, xMax = min(xMin, p.X), max(xMax, p.X)
				yMin, yMax = min(yMin, p.Y), max(yMax, p.Y)
			}
		}
		if n := o.NumContours(); n != contours {
			t.Errorf("%q: %d contours, want %d", r, n, contours)
		}
		if len(segs) == 0 {
			continue
		}
		b, ok := o.Bounds()
		if !ok {
			t.Errorf("%q: empty outline", r)
			continue
		}
		if fixed.I(int(b.XMin)) != xMin || fixed.I(int(b.XMax)) != xMax {
			t.Errorf("%q: x range [%d, %d], want [%d, %d]", r, b.XMin, b.XMax, xMin.Round(), xMax.Round())
		}
		if fixed.I(int(b.YMax-b.YMin)) != yMax-yMin {
			t.Errorf("%q: height %d, want %d", r, b.YMax-b.YMin, (yMax - yMin).Round())
		}
	}
}

// polygonArea returns the area enclosed by c, counting each contour with
// its orientation.
func polygonArea(c *raster.Contours) float64 {
	area := 0.0
	for i := range c.Lengths {
		pts := c.Contour(i)
		j := len(pts) - 1
		for k := range pts {
			area += pts[j].X*pts[k].Y - pts[k].X*pts[j].Y
			j = k
		}
	}
	return math.Abs(area) / 2
}

// TestCoverageArea checks that the total coverage of a rendered glyph
// equals the area of its flattened outline.
func TestCoverageArea(t *testing.T) {
	f := goRegular(t)

	for _, r := range "oleH" {
		for _, size := range []float64{12, 40} {
			for _, shift := range [][2]float64{{0, 0}, {0.3, 0.7}} {
				s := f.ScaleForPixelHeight(size)
				bm, xoff, yoff := f.RenderRune(r, s, s, shift[0], shift[1])

				box := f.RuneBitmapBox(r, s, s, shift[0], shift[1])
				if bm.Width != box.Dx() || bm.Height != box.Dy() || xoff != box.Min.X || yoff != box.Min.Y {
					t.Errorf("%q at %g: bitmap %dx%d at (%d, %d), box %v",
						r, size, bm.Width, bm.Height, xoff, yoff, box)
				}

				o, err := f.GlyphOutline(f.GlyphIndex(r))
				if err != nil {
					t.Fatal(err)
				}
				want := polygonArea(raster.Flatten(o, flatness/s)) * s * s

				total := 0.0
				for y := range bm.Height {
					for _, v := range bm.Row(y) {
						total += float64(v)
					}
				}
				got := total / 255
				tol := 0.5/255*float64(bm.Width*bm.Height) + 1e-6
				if math.Abs(got-want) > tol {
					t.Errorf("%q at %g, shift %v: coverage %.3f, area %.3f", r, size, shift, got, want)
				}
			}
		}
	}
}

func TestSpace(t *testing.T) {
	f := goRegular(t)
	s := f.ScaleForPixelHeight(20)

	if box := f.RuneBitmapBox(' ', s, s, 0, 0); box != (image.Rectangle{}) {
		t.Errorf("box %v", box)
	}
	bm, xoff, yoff := f.RenderRune(' ', s, s, 0, 0)
	if bm.Width != 0 || bm.Height != 0 || xoff != 0 || yoff != 0 {
		t.Errorf("bitmap %dx%d at (%d, %d)", bm.Width, bm.Height, xoff, yoff)
	}
	if advance, _ := f.HMetrics(f.GlyphIndex(' ')); advance <= 0 {
		t.Errorf("advance %d", advance)
	}
}

func TestRenderInto(t *testing.T) {
	f := goRegular(t)
	s := f.ScaleForPixelHeight(24)
	const shiftX, shiftY = 0.25, 0

	want, _, _ := f.RenderRune('g', s, s, shiftX, shiftY)

	atlas := raster.NewBitmap(80, 60)
	for i := range atlas.Pix {
		atlas.Pix[i] = 7
	}
	const x0, y0 = 10, 5
	dst := atlas.Sub(x0, y0, want.Width, want.Height)
	f.RenderRuneInto(dst, 'g', s, s, shiftX, shiftY)

	for y := range atlas.Height {
		for x := range atlas.Width {
			got := atlas.Pix[y*atlas.Stride+x]
			inside := x >= x0 && x < x0+want.Width && y >= y0 && y < y0+want.Height
			switch {
			case inside && got != want.At(x-x0, y-y0):
				t.Fatalf("pixel (%d, %d): got %d, want %d", x, y, got, want.At(x-x0, y-y0))
			case !inside && got != 7:
				t.Fatalf("pixel (%d, %d) outside the glyph was overwritten", x, y)
			}
		}
	}
}

func TestConcurrentRendering(t *testing.T) {
	f := goRegular(t)
	s := f.ScaleForPixelHeight(32)
	text := "Sphinx of black quartz"

	want := make([]*raster.Bitmap, 0, len(text))
	for _, r := range text {
		bm, _, _ := f.RenderRune(r, s, s, 0, 0)
		want = append(want, bm)
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i, r := range []rune(text) {
				bm, _, _ := f.RenderRune(r, s, s, 0, 0)
				if !bytes.Equal(bm.Pix, want[i].Pix) {
					t.Errorf("%q: rendering differs", r)
				}
			}
		}()
	}
	wg.Wait()
}

// squareFonts returns a TrueType and a CFF font whose glyph 1 is the
// square [0, 100] x [0, 100].
func squareFonts(t *testing.T) map[string]*Font {
	t.Helper()

	ttf := mustParse(t, ft.SFNT(ttfVersion, testTables(nil, testSquare)))

	tables := testTables(nil, testSquare)
	delete(tables, "glyf")
	delete(tables, "loca")
	tables["CFF "] = ft.CFF([][]byte{
		ft.Charstring(ft.EndChar),
		ft.Charstring(0, 0, ft.RMoveTo, 100, 0, 0, 100, -100, 0, ft.RLineTo, ft.EndChar),
	}, nil, nil)
	otf := mustParse(t, ft.SFNT(0x4F54544F, tables))
	if !otf.IsCFF() {
		t.Fatal("CFF font not recognised")
	}

	return map[string]*Font{"glyf": ttf, "cff": otf}
}

func TestRenderSquare(t *testing.T) {
	for name, f := range squareFonts(t) {
		t.Run(name, func(t *testing.T) {
			box, ok := f.GlyphBox(1)
			if want := (outline.Box{XMin: 0, YMin: 0, XMax: 100, YMax: 100}); !ok || box != want {
				t.Errorf("GlyphBox(1) = %v, %t", box, ok)
			}
			if _, ok := f.GlyphBox(0); ok {
				t.Error("empty glyph has a box")
			}

			bm, xoff, yoff := f.RenderGlyph(1, 0.1, 0.1, 0, 0)
			if bm.Width != 10 || bm.Height != 10 || xoff != 0 || yoff != -10 {
				t.Fatalf("bitmap %dx%d at (%d, %d)", bm.Width, bm.Height, xoff, yoff)
			}
			for i, v := range bm.Pix {
				if v != 255 {
					t.Fatalf("pixel %d: got %d, want 255", i, v)
				}
			}

			// a zero scale factor takes the other one
			bm, _, _ = f.RenderRune('A', 0, 0.1, 0, 0)
			if bm.Width != 10 || bm.Height != 10 {
				t.Errorf("scaleX = 0: bitmap %dx%d", bm.Width, bm.Height)
			}
			bm, _, _ = f.RenderGlyph(1, 0, 0, 0, 0)
			if bm.Width != 0 || bm.Height != 0 {
				t.Errorf("zero scale: bitmap %dx%d", bm.Width, bm.Height)
			}

			// half pixel shift: the corners are a quarter covered
			bm, xoff, yoff = f.RenderGlyph(1, 0.1, 0.1, 0.5, 0.5)
			if bm.Width != 11 || bm.Height != 11 || xoff != 0 || yoff != -10 {
				t.Fatalf("shifted bitmap %dx%d at (%d, %d)", bm.Width, bm.Height, xoff, yoff)
			}
			for _, p := range [][3]int{{0, 0, 64}, {10, 10, 64}, {5, 0, 128}, {0, 5, 128}, {5, 5, 255}} {
				if v := bm.At(p[0], p[1]); int(v) != p[2] {
					t.Errorf("shifted pixel (%d, %d): got %d, want %d", p[0], p[1], v, p[2])
				}
			}
		})
	}
}

func TestRenderMalformed(t *testing.T) {
	tables := testTables(nil, testSquare, testSquare[:12])
	f := mustParse(t, ft.SFNT(ttfVersion, tables))

	var logBuf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&logBuf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer SetLogger(nil)

	if _, err := f.GlyphOutline(2); !errors.Is(err, glyf.ErrMalformed) {
		t.Errorf("GlyphOutline(2): got %v", err)
	}
	bm, _, _ := f.RenderGlyph(2, 0.1, 0.1, 0, 0)
	if bm.Width != 0 || bm.Height != 0 {
		t.Errorf("bitmap %dx%d for malformed glyph", bm.Width, bm.Height)
	}
	if !strings.Contains(logBuf.String(), "glyph=2") {
		t.Errorf("decode failure not logged: %q", logBuf.String())
	}

	dst := raster.NewBitmap(4, 4)
	for i := range dst.Pix {
		dst.Pix[i] = 1
	}
	f.RenderGlyphInto(dst, 2, 0.1, 0.1, 0, 0)
	for i, v := range dst.Pix {
		if v != 0 {
			t.Fatalf("pixel %d: got %d, want 0", i, v)
		}
	}

	if _, err := f.GlyphOutline(3); !errors.Is(err, glyf.ErrGlyphIndex) {
		t.Errorf("GlyphOutline(3): got %v", err)
	}
}
