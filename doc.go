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


// Package fontraster renders glyphs of TrueType and OpenType fonts into
// anti-aliased 8-bit coverage bitmaps.
//
// A font file is loaded with [Parse] or [ParseIndex].  The resulting
// [Font] maps characters to glyphs, reports metrics and kerning, and
// renders glyphs at arbitrary scale and subpixel offset.  Outlines may be
// stored as TrueType quadratic curves ("glyf" table) or as CFF Type 2
// charstrings ("CFF " table).
//
// Bitmaps use the y axis pointing down.  Rendering a glyph at scale s puts
// the glyph origin at pixel (-x, -y), where x and y are the offsets
// returned together with the bitmap.
package fontraster
