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

// Command genpdf generates reference images for the rasterizer tests.
// It draws every test case outline into a PDF file and renders the PDF
// with Ghostscript.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"slices"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/document"
	"seehuhn.de/go/pdf/graphics/color"

	"seehuhn.de/go/fontraster/outline"
	"seehuhn.de/go/fontraster/testcases"
)

func main() {
	refDir := flag.String("o", "raster/testdata/reference", "output directory")
	keepPDF := flag.Bool("keep-pdf", false, "keep the intermediate PDF files")
	flag.Parse()

	if err := os.MkdirAll(*refDir, 0755); err != nil {
		slog.Error("cannot create output directory", "err", err)
		os.Exit(1)
	}

	for _, category := range slices.Sorted(maps.Keys(testcases.All)) {
		for _, tc := range testcases.All[category] {
			name := category + "_" + tc.Name
			pdfPath := filepath.Join(*refDir, name+".pdf")
			pngPath := filepath.Join(*refDir, name+".png")

			if err := generatePDF(tc, pdfPath); err != nil {
				slog.Error("cannot write PDF", "case", name, "err", err)
				os.Exit(1)
			}
			if err := renderPNG(pdfPath, pngPath); err != nil {
				slog.Error("cannot render PDF", "case", name, "err", err)
				os.Exit(1)
			}
			if !*keepPDF {
				if err := os.Remove(pdfPath); err != nil {
					slog.Warn("cannot remove PDF", "file", pdfPath, "err", err)
				}
			}
			slog.Info("generated", "file", pngPath)
		}
	}
}

func generatePDF(tc testcases.TestCase, pdfPath string) error {
	// Page size in points (1 point = 1 pixel at 72 DPI)
	paper := &pdf.Rectangle{
		URx: float64(tc.Width),
		URy: float64(tc.Height),
	}

	page, err := document.CreateSinglePage(pdfPath, paper, pdf.V1_7, nil)
	if err != nil {
		return err
	}

	// black background, so that gray values equal coverage
	page.SetFillColor(color.DeviceGray(0))
	page.Rectangle(0, 0, float64(tc.Width), float64(tc.Height))
	page.Fill()

	// PDF origin is bottom-left; test cases use top-left canvas
	// coordinates.
	page.Transform(matrix.Matrix{1, 0, 0, -1, 0, float64(tc.Height)})
	page.Transform(tc.Transform())

	page.SetFillColor(color.DeviceGray(1))
	drawOutline(page, tc.Outline)
	page.Fill()

	return page.Close()
}

// drawOutline adds the contours of o to the current path.  PDF has no
// quadratic curves, so these are converted to cubic curves.
func drawOutline(page *document.Page, o outline.Outline) {
	var x, y float64
	open := false
	for _, v := range o {
		vx, vy := float64(v.X), float64(v.Y)
		switch v.Kind {
		case outline.Move:
			if open {
				page.ClosePath()
			}
			page.MoveTo(vx, vy)
			open = true
		case outline.Line:
			page.LineTo(vx, vy)
		case outline.Quad:
			cx, cy := float64(v.CX), float64(v.CY)
			page.CurveTo(
				x+2*(cx-x)/3, y+2*(cy-y)/3,
				vx+2*(cx-vx)/3, vy+2*(cy-vy)/3,
				vx, vy)
		case outline.Cubic:
			page.CurveTo(
				float64(v.CX), float64(v.CY),
				float64(v.CX1), float64(v.CY1),
				vx, vy)
		}
		x, y = vx, vy
	}
	if open {
		page.ClosePath()
	}
}

func renderPNG(pdfPath, pngPath string) error {
	// -sDEVICE=pnggray: 8-bit grayscale
	// -r72: 72 DPI (1 point = 1 pixel)
	// -dGraphicsAlphaBits=4: 4x supersampling for anti-aliasing
	cmd := exec.Command(
		"gs", "-q",
		"-sDEVICE=pnggray",
		"-r72",
		"-dGraphicsAlphaBits=4",
		"-o", pngPath,
		pdfPath,
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("gs: %w", err)
	}
	return nil
}
