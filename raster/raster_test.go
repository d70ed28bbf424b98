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

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"maps"
	"math"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"testing"

	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/fontraster/outline"
	"seehuhn.de/go/fontraster/testcases"
)

// square is the outline of the unit test square (0,0)-(10,10).
var square = outline.Outline{
	move(0, 0), line(0, 10), line(10, 10), line(10, 0),
}

func polygon(xy ...float64) []vec.Vec2 {
	var pts []vec.Vec2
	for i := 0; i+1 < len(xy); i += 2 {
		pts = append(pts, vec.Vec2{X: xy[i], Y: xy[i+1]})
	}
	return pts
}

func contours(polys ...[]vec.Vec2) *Contours {
	c := &Contours{}
	for _, p := range polys {
		c.Points = append(c.Points, p...)
		c.Lengths = append(c.Lengths, len(p))
	}
	return c
}

func checkRows(t *testing.T, b *Bitmap, want [][]byte) {
	t.Helper()
	for y, row := range want {
		if got := b.Row(y); !bytes.Equal(got, row) {
			t.Errorf("row %d: got %v, want %v", y, got, row)
		}
	}
}

func fullRow(n int) []byte {
	return bytes.Repeat([]byte{255}, n)
}

func TestSquareCoverage(t *testing.T) {
	t.Run("invert", func(t *testing.T) {
		r := NewRasterizer()
		b := NewBitmap(10, 10)
		r.FillOutline(b, square, 0, -10)
		want := make([][]byte, 10)
		for y := range want {
			want[y] = fullRow(10)
		}
		checkRows(t, b, want)
	})

	t.Run("no_invert", func(t *testing.T) {
		r := NewRasterizer()
		r.Invert = false
		b := NewBitmap(10, 10)
		r.FillOutline(b, square, 0, 0)
		for y := range 10 {
			if !bytes.Equal(b.Row(y), fullRow(10)) {
				t.Errorf("row %d: %v", y, b.Row(y))
			}
		}
	})

	t.Run("margin", func(t *testing.T) {
		r := NewRasterizer()
		r.Invert = false
		b := NewBitmap(12, 12)
		r.FillOutline(b, square, -1, -1)
		for y := range 12 {
			for x := range 12 {
				want := byte(0)
				if x >= 1 && x <= 10 && y >= 1 && y <= 10 {
					want = 255
				}
				if got := b.At(x, y); got != want {
					t.Errorf("pixel (%d,%d) = %d, want %d", x, y, got, want)
				}
			}
		}
	})
}

func TestSubpixelShift(t *testing.T) {
	r := NewRasterizer()
	r.Invert = false
	r.ShiftX = 0.5
	r.ShiftY = 0.5
	b := NewBitmap(11, 11)
	r.FillOutline(b, square, 0, 0)

	for y := range 11 {
		for x := range 11 {
			want := byte(255)
			edgeX := x == 0 || x == 10
			edgeY := y == 0 || y == 10
			switch {
			case edgeX && edgeY:
				want = 64
			case edgeX || edgeY:
				want = 128
			}
			if got := b.At(x, y); got != want {
				t.Errorf("pixel (%d,%d) = %d, want %d", x, y, got, want)
			}
		}
	}
}

// TestTriangleCoverage verifies exact coverage values for a simple triangle.
// The triangle (0,0)→(10,0)→(10,1) has a diagonal edge y = x/10, so pixel X
// has coverage (2X+1)/20.  With width 10 the diagonal touches the right
// border of the bitmap and the edge is clipped.
func TestTriangleCoverage(t *testing.T) {
	c := contours(polygon(0, 0, 10, 0, 10, 1))
	for _, width := range []int{10, 11} {
		t.Run(fmt.Sprintf("width_%d", width), func(t *testing.T) {
			r := NewRasterizer()
			r.Invert = false
			b := NewBitmap(width, 1)
			r.FillContours(b, c, 0, 0)

			for x := range 10 {
				cov := float64(2*x+1) / 20
				want := int(cov*255 + 0.5)
				if got := int(b.At(x, 0)); got < want-1 || got > want+1 {
					t.Errorf("pixel %d: got %d, want %d", x, got, want)
				}
			}
			if width > 10 && b.At(10, 0) != 0 {
				t.Errorf("pixel 10: got %d, want 0", b.At(10, 0))
			}
		})
	}
}

// clipArea returns the area of the part of the simple polygon p which
// lies inside the unit pixel square with lower left corner (x, y).
func clipArea(p []vec.Vec2, x, y float64) float64 {
	type halfPlane struct {
		inside func(vec.Vec2) bool
		cross  func(a, b vec.Vec2) vec.Vec2
	}
	atX := func(c float64) func(a, b vec.Vec2) vec.Vec2 {
		return func(a, b vec.Vec2) vec.Vec2 {
			t := (c - a.X) / (b.X - a.X)
			return vec.Vec2{X: c, Y: a.Y + t*(b.Y-a.Y)}
		}
	}
	atY := func(c float64) func(a, b vec.Vec2) vec.Vec2 {
		return func(a, b vec.Vec2) vec.Vec2 {
			t := (c - a.Y) / (b.Y - a.Y)
			return vec.Vec2{X: a.X + t*(b.X-a.X), Y: c}
		}
	}
	planes := []halfPlane{
		{func(v vec.Vec2) bool { return v.X >= x }, atX(x)},
		{func(v vec.Vec2) bool { return v.X <= x+1 }, atX(x + 1)},
		{func(v vec.Vec2) bool { return v.Y >= y }, atY(y)},
		{func(v vec.Vec2) bool { return v.Y <= y+1 }, atY(y + 1)},
	}

	// Sutherland-Hodgman
	for _, h := range planes {
		var out []vec.Vec2
		for i, b := range p {
			a := p[(i+len(p)-1)%len(p)]
			switch {
			case h.inside(b):
				if !h.inside(a) {
					out = append(out, h.cross(a, b))
				}
				out = append(out, b)
			case h.inside(a):
				out = append(out, h.cross(a, b))
			}
		}
		p = out
		if len(p) == 0 {
			return 0
		}
	}

	var area float64
	for i, b := range p {
		a := p[(i+len(p)-1)%len(p)]
		area += a.X*b.Y - b.X*a.Y
	}
	return math.Abs(area) / 2
}

// TestExactCoverage compares every pixel with the exact area of the
// polygon inside that pixel.  The shapes have edges which cross several
// pixels in a single row, in both horizontal directions, and edges which
// start or end in the middle of a row.
func TestExactCoverage(t *testing.T) {
	star := func(n int, cx, cy, r0, r1 float64) []vec.Vec2 {
		var pts []vec.Vec2
		for i := range 2 * n {
			r := r0
			if i%2 == 1 {
				r = r1
			}
			angle := 0.1 + float64(i)*math.Pi/float64(n)
			pts = append(pts, vec.Vec2{X: cx + r*math.Cos(angle), Y: cy + r*math.Sin(angle)})
		}
		return pts
	}

	cases := []struct {
		name string
		w, h int
		poly []vec.Vec2
	}{
		{"shallow_right", 5, 1, polygon(0.5, 0, 2.9, 1, 5, 1, 5, 0)},
		{"shallow_left", 5, 1, polygon(4.5, 0, 0, 0, 0, 1, 2.1, 1)},
		{"two_pixels", 3, 1, polygon(0.3, 0, 1.6, 1, 3, 1, 3, 0)},
		{"three_pixels", 4, 1, polygon(0.2, 0, 2.7, 1, 4, 1, 4, 0)},
		{"mid_row", 8, 2, polygon(0.3, 0.2, 7.6, 0.7, 6.1, 1.9)},
		{"thin_sliver", 10, 2, polygon(0.2, 0.1, 9.7, 0.9, 9.7, 1.8, 0.2, 1.0)},
		{"triangle", 8, 4, polygon(0.3, 0.2, 7.6, 2.7, 1.1, 3.9)},
		{"steep_and_shallow", 9, 5, polygon(4.4, 0.3, 8.8, 1.25, 5.2, 4.6, 0.15, 3.35)},
		{"star", 16, 16, star(7, 8, 8, 7.7, 3.2)},
	}
	for _, tc := range cases {
		reversed := slices.Clone(tc.poly)
		slices.Reverse(reversed)
		for _, dir := range []struct {
			name string
			poly []vec.Vec2
		}{{"cw", tc.poly}, {"ccw", reversed}} {
			t.Run(tc.name+"_"+dir.name, func(t *testing.T) {
				r := NewRasterizer()
				r.Invert = false
				b := NewBitmap(tc.w, tc.h)
				r.FillContours(b, contours(dir.poly), 0, 0)

				for y := range tc.h {
					for x := range tc.w {
						area := clipArea(tc.poly, float64(x), float64(y))
						want := min(int(area*255+0.5), 255)
						if got := int(b.At(x, y)); got < want-1 || got > want+1 {
							t.Errorf("pixel (%d,%d): got %d, want %d", x, y, got, want)
						}
					}
				}
			})
		}
	}

	// explicit values for the first case, in both orientations
	poly := polygon(0.5, 0, 2.9, 1, 5, 1, 5, 0)
	reversed := slices.Clone(poly)
	slices.Reverse(reversed)
	want := []byte{13, 106, 212, 255, 255}
	for _, p := range [][]vec.Vec2{poly, reversed} {
		r := NewRasterizer()
		r.Invert = false
		b := NewBitmap(5, 1)
		r.FillContours(b, contours(p), 0, 0)
		if got := b.Row(0); !bytes.Equal(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	}
}

func TestWindingCancellation(t *testing.T) {
	diamond := polygon(5, 0, 10, 5, 5, 10, 0, 5)
	reversed := slices.Clone(diamond)
	slices.Reverse(reversed)

	r := NewRasterizer()
	r.ShiftX = 0.3
	r.ShiftY = 10.7
	b := NewBitmap(12, 12)
	r.FillContours(b, contours(diamond, reversed), 0, 0)
	for i, v := range b.Pix {
		if v != 0 {
			t.Fatalf("pixel %d: coverage %d, want 0", i, v)
		}
	}

	// the same orientation twice saturates
	r.FillContours(b, contours(diamond, diamond), 0, 0)
	single := NewBitmap(12, 12)
	r.FillContours(single, contours(diamond), 0, 0)
	for i := range b.Pix {
		if b.Pix[i] < single.Pix[i] {
			t.Fatalf("pixel %d: doubled %d < single %d", i, b.Pix[i], single.Pix[i])
		}
	}
	if b.At(5, 5) != 255 {
		t.Errorf("center: got %d, want 255", b.At(5, 5))
	}
}

func TestHole(t *testing.T) {
	outer := polygon(0, 0, 0, 10, 10, 10, 10, 0)
	inner := polygon(3, 3, 7, 3, 7, 7, 3, 7)

	r := NewRasterizer()
	r.Invert = false
	b := NewBitmap(10, 10)
	r.FillContours(b, contours(outer, inner), 0, 0)
	for y := range 10 {
		for x := range 10 {
			want := byte(255)
			if x >= 3 && x < 7 && y >= 3 && y < 7 {
				want = 0
			}
			if got := b.At(x, y); got != want {
				t.Errorf("pixel (%d,%d) = %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestClippedEdges(t *testing.T) {
	// a diamond which covers the whole bitmap, with all edges outside
	big := polygon(5, -15, 25, 5, 5, 25, -15, 5)
	r := NewRasterizer()
	r.Invert = false
	b := NewBitmap(10, 10)
	r.FillContours(b, contours(big), 0, 0)
	for i, v := range b.Pix {
		if v != 255 {
			t.Fatalf("pixel %d: got %d, want 255", i, v)
		}
	}

	// the left half of a square lies outside the bitmap
	r.FillOutline(b, square, 5, 0)
	for y := range 10 {
		for x := range 10 {
			want := byte(0)
			if x < 5 {
				want = 255
			}
			if got := b.At(x, y); got != want {
				t.Errorf("pixel (%d,%d) = %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestOverwrite(t *testing.T) {
	b := NewBitmap(12, 12)
	for i := range b.Pix {
		b.Pix[i] = 0xaa
	}
	r := NewRasterizer()
	r.Invert = false
	r.FillOutline(b, square, -1, -1)
	if b.At(0, 0) != 0 || b.At(11, 11) != 0 || b.At(5, 5) != 255 {
		t.Errorf("got %d %d %d, want 0 0 255", b.At(0, 0), b.At(11, 11), b.At(5, 5))
	}
}

func TestSubBitmap(t *testing.T) {
	atlas := NewBitmap(30, 20)
	for i := range atlas.Pix {
		atlas.Pix[i] = 7
	}

	dst := atlas.Sub(15, 5, 10, 10)
	if dst.Width != 10 || dst.Height != 10 || dst.Stride != 30 {
		t.Fatalf("Sub: got %dx%d stride %d", dst.Width, dst.Height, dst.Stride)
	}
	r := NewRasterizer()
	r.Invert = false
	r.FillOutline(dst, square, 0, 0)

	for y := range 20 {
		for x := range 30 {
			want := byte(7)
			if x >= 15 && x < 25 && y >= 5 && y < 15 {
				want = 255
			}
			if got := atlas.At(x, y); got != want {
				t.Fatalf("atlas pixel (%d,%d) = %d, want %d", x, y, got, want)
			}
		}
	}

	if empty := atlas.Sub(40, 0, 5, 5); empty.Width != 0 || empty.Height != 0 {
		t.Errorf("Sub outside: got %dx%d", empty.Width, empty.Height)
	}
	if clipped := atlas.Sub(25, 15, 10, 10); clipped.Width != 5 || clipped.Height != 5 {
		t.Errorf("Sub clipped: got %dx%d", clipped.Width, clipped.Height)
	}
}

func TestIdempotent(t *testing.T) {
	for _, category := range slices.Sorted(maps.Keys(testcases.All)) {
		for _, tc := range testcases.All[category] {
			r := NewRasterizer()
			first := renderCase(r, tc)
			second := renderCase(r, tc)
			third := renderCase(NewRasterizer(), tc)
			if !bytes.Equal(first.Pix, second.Pix) || !bytes.Equal(first.Pix, third.Pix) {
				t.Errorf("%s_%s: output differs between runs", category, tc.Name)
			}
		}
	}
}

func TestEmpty(t *testing.T) {
	r := NewRasterizer()
	b := NewBitmap(4, 4)
	b.Pix[3] = 9
	r.FillOutline(b, nil, 0, 0)
	for i, v := range b.Pix {
		if v != 0 {
			t.Errorf("pixel %d: got %d, want 0", i, v)
		}
	}

	// zero-sized bitmaps are left alone
	r.FillOutline(&Bitmap{}, square, 0, 0)
}

func TestAlpha(t *testing.T) {
	b := NewBitmap(3, 2)
	b.Pix[4] = 200
	img := b.Alpha()
	if img.Bounds() != image.Rect(0, 0, 3, 2) {
		t.Errorf("bounds %v", img.Bounds())
	}
	if a := img.AlphaAt(1, 1).A; a != 200 {
		t.Errorf("AlphaAt(1,1) = %d, want 200", a)
	}
	if !(&Bitmap{}).Alpha().Bounds().Empty() {
		t.Error("empty bitmap gives non-empty image")
	}
}

// renderCase renders a test case into a new bitmap.
func renderCase(r *Rasterizer, tc testcases.TestCase) *Bitmap {
	m := tc.Transform()
	r.ScaleX = m[0]
	r.ScaleY = m[0]
	r.ShiftX = m[4]
	r.ShiftY = m[5]
	r.Invert = true
	b := NewBitmap(tc.Width, tc.Height)
	r.FillOutline(b, tc.Outline, 0, 0)
	return b
}

func TestAgainstReference(t *testing.T) {
	for _, category := range slices.Sorted(maps.Keys(testcases.All)) {
		for _, tc := range testcases.All[category] {
			name := category + "_" + tc.Name
			t.Run(name, func(t *testing.T) {
				refPath := filepath.Join("testdata", "reference", name+".png")
				ref, err := loadGray(refPath)
				if errors.Is(err, fs.ErrNotExist) {
					t.Skip("no reference image, run testcases/genpdf to create one")
				} else if err != nil {
					t.Fatalf("loading reference: %v", err)
				}

				actual := renderCase(NewRasterizer(), tc)
				if err := compareImages(name, ref, actual.Pix, tc.Width, tc.Height); err != nil {
					t.Error(err)
				}
			})
		}
	}
}

func loadGray(path string) (gray []byte, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	img, err := png.Decode(f)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	gray = make([]byte, w*h)

	for y := range h {
		for x := range w {
			c := color.GrayModel.Convert(img.At(x+bounds.Min.X, y+bounds.Min.Y)).(color.Gray)
			gray[y*w+x] = c.Y
		}
	}
	return gray, nil
}

func compareImages(name string, expected, actual []byte, w, h int) error {
	total := w * h
	if len(expected) != total {
		return fmt.Errorf("reference has %d pixels, want %d", len(expected), total)
	}

	diffs := make([]int, total)
	for i := range total {
		diff := int(expected[i]) - int(actual[i])
		if diff < 0 {
			diff = -diff
		}
		diffs[i] = diff
	}
	sort.Ints(diffs)

	p80 := diffs[int(math.Round(0.80*float64(total-1)))]
	p95 := diffs[int(math.Round(0.95*float64(total-1)))]
	p99 := diffs[int(math.Round(0.99*float64(total-1)))]

	// At least 80% of pixels must be identical, 95% must differ by less
	// than 64, and 99% by less than 128.  Ghostscript uses 4x4
	// supersampling, so edge pixels are quantized.
	var failures []string
	if p80 > 0 {
		failures = append(failures, fmt.Sprintf("80th percentile diff is %d (want 0)", p80))
	}
	if p95 >= 64 {
		failures = append(failures, fmt.Sprintf("95th percentile diff is %d (want <64)", p95))
	}
	if p99 >= 128 {
		failures = append(failures, fmt.Sprintf("99th percentile diff is %d (want <128)", p99))
	}

	if len(failures) > 0 {
		_ = writeDiffImage(name, expected, actual, w, h)
		return fmt.Errorf("%s", strings.Join(failures, "; "))
	}
	return nil
}

// writeDiffImage writes a three panel image to debug/: actual output on the
// left, the difference in the middle (green: too little coverage, red: too
// much), and the reference on the right.
func writeDiffImage(name string, expected, actual []byte, w, h int) (err error) {
	if err := os.MkdirAll("debug", 0755); err != nil {
		return err
	}

	img := image.NewRGBA(image.Rect(0, 0, w*3, h))
	for y := range h {
		for x := range w {
			i := y*w + x

			a := actual[i]
			img.Set(x, y, color.RGBA{R: a, G: a, B: a, A: 255})

			diff := int(expected[i]) - int(actual[i])
			var diffColor color.RGBA
			switch {
			case diff > 0:
				diffColor = color.RGBA{G: uint8(diff), A: 255}
			case diff < 0:
				diffColor = color.RGBA{R: uint8(-diff), A: 255}
			default:
				diffColor = color.RGBA{A: 255}
			}
			img.Set(x+w, y, diffColor)

			e := expected[i]
			img.Set(x+w*2, y, color.RGBA{R: e, G: e, B: e, A: 255})
		}
	}

	f, err := os.Create(filepath.Join("debug", name+".png"))
	if err != nil {
		return err
	}
	err = png.Encode(f, img)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
