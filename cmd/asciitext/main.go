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


// Command asciitext renders a line of text as ASCII art.
//
// Usage:
//
//	asciitext [-font name] [-height px] [-width cols] [-rows n] [-v] [text]
//
// The font is looked up with the system font search path, or given as a
// file name.  Without -font the Go Regular font is used.
package main

import (
	"bufio"
	"flag"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/flopp/go-findfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/text/unicode/norm"

	"seehuhn.de/go/fontraster"
	"seehuhn.de/go/fontraster/raster"
)

// shades maps coverage to characters, darkest last.
const shades = " .:ioVM@"

func main() {
	fontName := flag.String("font", "", "font name or file (default Go Regular)")
	height := flag.Float64("height", 15, "pixel height of the text")
	width := flag.Int("width", 79, "screen width in characters")
	rows := flag.Int("rows", 20, "screen height in lines")
	verbose := flag.Bool("v", false, "log debug information")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	fontraster.SetLogger(logger)

	text := "Hello World!"
	if flag.NArg() > 0 {
		text = strings.Join(flag.Args(), " ")
	}

	f, err := loadFont(*fontName)
	if err != nil {
		logger.Error("cannot load font", "font", *fontName, "err", err)
		os.Exit(1)
	}

	screen := raster.NewBitmap(*width, *rows)
	draw(screen, f, norm.NFC.String(text), *height)

	out := bufio.NewWriter(os.Stdout)
	for y := range screen.Height {
		for _, v := range screen.Row(y)[:max(screen.Width-1, 0)] {
			out.WriteByte(shades[v>>5])
		}
		out.WriteByte('\n')
	}
	if err := out.Flush(); err != nil {
		logger.Error("cannot write output", "err", err)
		os.Exit(1)
	}
}

func loadFont(name string) (*fontraster.Font, error) {
	if name == "" {
		return fontraster.Parse(goregular.TTF)
	}
	path := name
	if _, err := os.Stat(path); err != nil {
		path, err = findfont.Find(name)
		if err != nil {
			return nil, err
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	slog.Debug("loading font", "file", path)
	return fontraster.Parse(data)
}

// draw renders text onto screen, with the baseline placed one ascent
// below the top.  Glyph boxes which overlap replace each other's pixels.
func draw(screen *raster.Bitmap, f *fontraster.Font, text string, height float64) {
	scale := f.ScaleForPixelHeight(height)
	ascent, _, _ := f.VMetrics()
	baseline := int(float64(ascent) * scale)

	runes := []rune(text)
	xpos := 2.0 // room for glyphs extending left of the origin
	for i, r := range runes {
		shiftX := xpos - math.Floor(xpos)
		box := f.RuneBitmapBox(r, scale, scale, shiftX, 0)
		x := int(xpos) + box.Min.X
		y := baseline + box.Min.Y

		if x >= 0 && y >= 0 && x+box.Dx() <= screen.Width && y+box.Dy() <= screen.Height {
			f.RenderRuneInto(screen.Sub(x, y, box.Dx(), box.Dy()), r, scale, scale, shiftX, 0)
		} else {
			bm, _, _ := f.RenderRune(r, scale, scale, shiftX, 0)
			copyClipped(screen, bm, x, y)
		}

		advance, _ := f.HMetrics(f.GlyphIndex(r))
		xpos += float64(advance) * scale
		if i+1 < len(runes) {
			xpos += scale * float64(f.KernRunes(r, runes[i+1]))
		}
	}
	slog.Debug("text drawn", "runes", len(runes), "width", xpos)
}

// copyClipped copies src into dst with its top-left corner at (x, y),
// dropping pixels outside dst.
func copyClipped(dst, src *raster.Bitmap, x, y int) {
	for j := range src.Height {
		for i := range src.Width {
			dx, dy := x+i, y+j
			if dx < 0 || dy < 0 || dx >= dst.Width || dy >= dst.Height {
				continue
			}
			dst.Pix[dy*dst.Stride+dx] = src.Pix[j*src.Stride+i]
		}
	}
}
