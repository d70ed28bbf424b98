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

package cff

import (
	"errors"
	"fmt"
	"math"

	"seehuhn.de/go/fontraster/cursor"
	"seehuhn.de/go/fontraster/outline"
)

// These errors describe why a charstring could not be executed.
// They are wrapped in a *CharstringError.
var (
	ErrStackUnderflow    = errors.New("operand stack underflow")
	ErrStackOverflow     = errors.New("operand stack overflow")
	ErrSubrDepth         = errors.New("subroutine nesting too deep")
	ErrSubrNotFound      = errors.New("subroutine not found")
	ErrReturnOutsideSubr = errors.New("return outside of subroutine")
	ErrUnimplementedOp   = errors.New("unimplemented operator")
	ErrReservedOp        = errors.New("reserved operator")
	ErrNoEndchar         = errors.New("charstring ends without endchar")
)

// CharstringError reports a failure while executing the charstring of a
// glyph.
type CharstringError struct {
	Glyph int
	Op    string // the operator being executed, if any
	Err   error
}

func (e *CharstringError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("cff: glyph %d: %v", e.Glyph, e.Err)
	}
	return fmt.Sprintf("cff: glyph %d: %s: %v", e.Glyph, e.Op, e.Err)
}

func (e *CharstringError) Unwrap() error {
	return e.Err
}

// Limits from the Type 2 charstring format.
const (
	maxStack    = 48
	maxSubrCall = 10
)

// BBox returns the bounding box of glyph gid, including the off-curve
// control points.  The charstring is executed without storing the outline.
// The second return value is false for glyphs without any vertices.
func (f *Font) BBox(gid int) (outline.Box, bool, error) {
	ctx := &outlineContext{bounds: true}
	if err := f.run(gid, ctx); err != nil {
		return outline.Box{}, false, err
	}
	if ctx.numVertices == 0 {
		return outline.Box{}, false, nil
	}
	return ctx.box, true, nil
}

// Outline returns the outline of glyph gid.
//
// The charstring is executed twice: once to count the vertices, and once
// to store them.
func (f *Font) Outline(gid int) (outline.Outline, error) {
	count := &outlineContext{bounds: true}
	if err := f.run(gid, count); err != nil {
		return nil, err
	}
	if count.numVertices == 0 {
		return nil, nil
	}

	ctx := &outlineContext{
		vertices: make(outline.Outline, 0, count.numVertices),
	}
	if err := f.run(gid, ctx); err != nil {
		return nil, err
	}
	return ctx.vertices, nil
}

// outlineContext receives the drawing operations of a charstring.
// In bounds mode, only the vertex count and the bounding box are
// recorded.
type outlineContext struct {
	bounds      bool
	started     bool
	box         outline.Box
	vertices    outline.Outline
	numVertices int

	firstX, firstY float64
	x, y           float64
}

func (ctx *outlineContext) track(x, y int32) {
	if !ctx.started {
		ctx.box = outline.Box{XMin: x, YMin: y, XMax: x, YMax: y}
		ctx.started = true
		return
	}
	ctx.box.XMin = min(ctx.box.XMin, x)
	ctx.box.YMin = min(ctx.box.YMin, y)
	ctx.box.XMax = max(ctx.box.XMax, x)
	ctx.box.YMax = max(ctx.box.YMax, y)
}

// emit records one vertex.  All drawing operators end up here, in both
// modes.
func (ctx *outlineContext) emit(v outline.Vertex) {
	if ctx.bounds {
		ctx.track(v.X, v.Y)
		if v.Kind == outline.Cubic {
			ctx.track(v.CX, v.CY)
			ctx.track(v.CX1, v.CY1)
		}
	} else {
		ctx.vertices = append(ctx.vertices, v)
	}
	ctx.numVertices++
}

func (ctx *outlineContext) closeShape() {
	if ctx.firstX != ctx.x || ctx.firstY != ctx.y {
		ctx.emit(outline.Vertex{
			Kind: outline.Line,
			X:    int32(ctx.firstX),
			Y:    int32(ctx.firstY),
		})
	}
}

func (ctx *outlineContext) rMoveTo(dx, dy float64) {
	ctx.closeShape()
	ctx.x += dx
	ctx.y += dy
	ctx.firstX, ctx.firstY = ctx.x, ctx.y
	ctx.emit(outline.Vertex{Kind: outline.Move, X: int32(ctx.x), Y: int32(ctx.y)})
}

func (ctx *outlineContext) rLineTo(dx, dy float64) {
	ctx.x += dx
	ctx.y += dy
	ctx.emit(outline.Vertex{Kind: outline.Line, X: int32(ctx.x), Y: int32(ctx.y)})
}

func (ctx *outlineContext) rCurveTo(dx1, dy1, dx2, dy2, dx3, dy3 float64) {
	cx1 := ctx.x + dx1
	cy1 := ctx.y + dy1
	cx2 := cx1 + dx2
	cy2 := cy1 + dy2
	ctx.x = cx2 + dx3
	ctx.y = cy2 + dy3
	ctx.emit(outline.Vertex{
		Kind: outline.Cubic,
		X:    int32(ctx.x),
		Y:    int32(ctx.y),
		CX:   int32(cx1),
		CY:   int32(cy1),
		CX1:  int32(cx2),
		CY1:  int32(cy2),
	})
}

// Charstring operators.
const (
	t2hstem      = 0x01
	t2vstem      = 0x03
	t2vmoveto    = 0x04
	t2rlineto    = 0x05
	t2hlineto    = 0x06
	t2vlineto    = 0x07
	t2rrcurveto  = 0x08
	t2callsubr   = 0x0a
	t2return     = 0x0b
	t2escape     = 0x0c
	t2endchar    = 0x0e
	t2hstemhm    = 0x12
	t2hintmask   = 0x13
	t2cntrmask   = 0x14
	t2rmoveto    = 0x15
	t2hmoveto    = 0x16
	t2vstemhm    = 0x17
	t2rcurveline = 0x18
	t2rlinecurve = 0x19
	t2vvcurveto  = 0x1a
	t2hhcurveto  = 0x1b
	t2shortint   = 0x1c
	t2callgsubr  = 0x1d
	t2vhcurveto  = 0x1e
	t2hvcurveto  = 0x1f
	t2fixed      = 0xff

	t2hflex  = 0x22
	t2flex   = 0x23
	t2hflex1 = 0x24
	t2flex1  = 0x25
)

var opNames = map[byte]string{
	t2hstem:      "hstem",
	t2vstem:      "vstem",
	t2vmoveto:    "vmoveto",
	t2rlineto:    "rlineto",
	t2hlineto:    "hlineto",
	t2vlineto:    "vlineto",
	t2rrcurveto:  "rrcurveto",
	t2callsubr:   "callsubr",
	t2return:     "return",
	t2endchar:    "endchar",
	t2hstemhm:    "hstemhm",
	t2hintmask:   "hintmask",
	t2cntrmask:   "cntrmask",
	t2rmoveto:    "rmoveto",
	t2hmoveto:    "hmoveto",
	t2vstemhm:    "vstemhm",
	t2rcurveline: "rcurveline",
	t2rlinecurve: "rlinecurve",
	t2vvcurveto:  "vvcurveto",
	t2hhcurveto:  "hhcurveto",
	t2callgsubr:  "callgsubr",
	t2vhcurveto:  "vhcurveto",
	t2hvcurveto:  "hvcurveto",
}

var escNames = map[byte]string{
	t2hflex:  "hflex",
	t2flex:   "flex",
	t2hflex1: "hflex1",
	t2flex1:  "flex1",
}

// subrBias returns the bias added to subroutine numbers for an INDEX with
// the given number of entries.
func subrBias(count int) int {
	switch {
	case count < 1240:
		return 107
	case count < 33900:
		return 1131
	default:
		return 32768
	}
}

// run executes the charstring of glyph gid, sending all drawing operations
// to ctx.
func (f *Font) run(gid int, ctx *outlineContext) error {
	if gid < 0 || gid >= len(f.charStrings) {
		return fmt.Errorf("%w: %d", ErrGlyphIndex, gid)
	}
	return execute(f.charStrings[gid], f.gsubrs, func() index { return f.localSubrs(gid) }, gid, ctx)
}

// execute runs the Type 2 charstring code.  Local subroutines are looked
// up on the first callsubr only, since this requires the FDSelect lookup
// for CID-keyed fonts.
func execute(code []byte, gsubrs index, getSubrs func() index, gid int, ctx *outlineContext) error {
	var stack [maxStack]float64
	sp := 0
	var callStack [maxSubrCall]*cursor.Cursor
	callDepth := 0

	var subrs index
	haveSubrs := false

	inHeader := true
	maskBits := 0

	fail := func(op string, err error) error {
		return &CharstringError{Glyph: gid, Op: op, Err: err}
	}

	b := cursor.New(code)
	for b.Remaining() > 0 {
		i := 0
		clearStack := true
		b0 := b.U8()

		switch b0 {
		case t2hintmask, t2cntrmask:
			if inHeader {
				maskBits += sp / 2 // implicit vstem hints
			}
			inHeader = false
			b.Skip((maskBits + 7) / 8)

		case t2hstem, t2vstem, t2hstemhm, t2vstemhm:
			maskBits += sp / 2

		case t2rmoveto:
			inHeader = false
			if sp < 2 {
				return fail("rmoveto", ErrStackUnderflow)
			}
			ctx.rMoveTo(stack[sp-2], stack[sp-1])

		case t2vmoveto:
			inHeader = false
			if sp < 1 {
				return fail("vmoveto", ErrStackUnderflow)
			}
			ctx.rMoveTo(0, stack[sp-1])

		case t2hmoveto:
			inHeader = false
			if sp < 1 {
				return fail("hmoveto", ErrStackUnderflow)
			}
			ctx.rMoveTo(stack[sp-1], 0)

		case t2rlineto:
			if sp < 2 {
				return fail("rlineto", ErrStackUnderflow)
			}
			for ; i+1 < sp; i += 2 {
				ctx.rLineTo(stack[i], stack[i+1])
			}

		case t2hlineto, t2vlineto:
			if sp < 1 {
				return fail(opNames[b0], ErrStackUnderflow)
			}
			// the lines alternate between horizontal and vertical
			horizontal := b0 == t2hlineto
			for ; i < sp; i++ {
				if horizontal {
					ctx.rLineTo(stack[i], 0)
				} else {
					ctx.rLineTo(0, stack[i])
				}
				horizontal = !horizontal
			}

		case t2hvcurveto, t2vhcurveto:
			if sp < 4 {
				return fail(opNames[b0], ErrStackUnderflow)
			}
			// The curves alternate between starting horizontally and
			// starting vertically.  A single extra argument applies to
			// the end of the last curve.
			horizontal := b0 == t2hvcurveto
			for ; i+3 < sp; i += 4 {
				last := 0.0
				if sp-i == 5 {
					last = stack[i+4]
				}
				if horizontal {
					ctx.rCurveTo(stack[i], 0, stack[i+1], stack[i+2], last, stack[i+3])
				} else {
					ctx.rCurveTo(0, stack[i], stack[i+1], stack[i+2], stack[i+3], last)
				}
				horizontal = !horizontal
			}

		case t2rrcurveto:
			if sp < 6 {
				return fail("rrcurveto", ErrStackUnderflow)
			}
			for ; i+5 < sp; i += 6 {
				ctx.rCurveTo(stack[i], stack[i+1], stack[i+2], stack[i+3], stack[i+4], stack[i+5])
			}

		case t2rcurveline:
			if sp < 8 {
				return fail("rcurveline", ErrStackUnderflow)
			}
			for ; i+5 < sp-2; i += 6 {
				ctx.rCurveTo(stack[i], stack[i+1], stack[i+2], stack[i+3], stack[i+4], stack[i+5])
			}
			if i+1 >= sp {
				return fail("rcurveline", ErrStackUnderflow)
			}
			ctx.rLineTo(stack[i], stack[i+1])

		case t2rlinecurve:
			if sp < 8 {
				return fail("rlinecurve", ErrStackUnderflow)
			}
			for ; i+1 < sp-6; i += 2 {
				ctx.rLineTo(stack[i], stack[i+1])
			}
			if i+5 >= sp {
				return fail("rlinecurve", ErrStackUnderflow)
			}
			ctx.rCurveTo(stack[i], stack[i+1], stack[i+2], stack[i+3], stack[i+4], stack[i+5])

		case t2vvcurveto, t2hhcurveto:
			if sp < 4 {
				return fail(opNames[b0], ErrStackUnderflow)
			}
			// an odd argument count starts with an extra offset
			// perpendicular to the curve direction
			var first float64
			if sp&1 != 0 {
				first = stack[i]
				i++
			}
			for ; i+3 < sp; i += 4 {
				if b0 == t2hhcurveto {
					ctx.rCurveTo(stack[i], first, stack[i+1], stack[i+2], stack[i+3], 0)
				} else {
					ctx.rCurveTo(first, stack[i], stack[i+1], stack[i+2], 0, stack[i+3])
				}
				first = 0
			}

		case t2callsubr, t2callgsubr:
			name := opNames[b0]
			if b0 == t2callsubr && !haveSubrs {
				subrs = getSubrs()
				haveSubrs = true
			}
			if sp < 1 {
				return fail(name, ErrStackUnderflow)
			}
			sp--
			v := int(stack[sp])
			if callDepth >= maxSubrCall {
				return fail(name, ErrSubrDepth)
			}
			idx := gsubrs
			if b0 == t2callsubr {
				idx = subrs
			}
			v += subrBias(len(idx))
			if v < 0 || v >= len(idx) || len(idx[v]) == 0 {
				return fail(name, ErrSubrNotFound)
			}
			callStack[callDepth] = b
			callDepth++
			b = cursor.New(idx[v])
			clearStack = false

		case t2return:
			if callDepth <= 0 {
				return fail("return", ErrReturnOutsideSubr)
			}
			callDepth--
			b = callStack[callDepth]
			clearStack = false

		case t2endchar:
			ctx.closeShape()
			return nil

		case t2escape:
			b1 := b.U8()
			name := escNames[b1]
			s := stack[:sp]
			switch b1 {
			case t2hflex:
				if sp < 7 {
					return fail(name, ErrStackUnderflow)
				}
				dx1, dx2, dy2, dx3, dx4, dx5, dx6 := s[0], s[1], s[2], s[3], s[4], s[5], s[6]
				ctx.rCurveTo(dx1, 0, dx2, dy2, dx3, 0)
				ctx.rCurveTo(dx4, 0, dx5, -dy2, dx6, 0)

			case t2flex:
				if sp < 13 {
					return fail(name, ErrStackUnderflow)
				}
				// s[12] is the flex depth, which only matters for hinting
				ctx.rCurveTo(s[0], s[1], s[2], s[3], s[4], s[5])
				ctx.rCurveTo(s[6], s[7], s[8], s[9], s[10], s[11])

			case t2hflex1:
				if sp < 9 {
					return fail(name, ErrStackUnderflow)
				}
				dx1, dy1, dx2, dy2, dx3 := s[0], s[1], s[2], s[3], s[4]
				dx4, dx5, dy5, dx6 := s[5], s[6], s[7], s[8]
				ctx.rCurveTo(dx1, dy1, dx2, dy2, dx3, 0)
				ctx.rCurveTo(dx4, 0, dx5, dy5, dx6, -(dy1 + dy2 + dy5))

			case t2flex1:
				if sp < 11 {
					return fail(name, ErrStackUnderflow)
				}
				dx1, dy1, dx2, dy2, dx3, dy3 := s[0], s[1], s[2], s[3], s[4], s[5]
				dx4, dy4, dx5, dy5 := s[6], s[7], s[8], s[9]
				dx6, dy6 := s[10], s[10]
				dx := dx1 + dx2 + dx3 + dx4 + dx5
				dy := dy1 + dy2 + dy3 + dy4 + dy5
				// the last point returns to the starting height or width,
				// whichever axis the flex mostly moves along
				if math.Abs(dx) > math.Abs(dy) {
					dy6 = -dy
				} else {
					dx6 = -dx
				}
				ctx.rCurveTo(dx1, dy1, dx2, dy2, dx3, dy3)
				ctx.rCurveTo(dx4, dy4, dx5, dy5, dx6, dy6)

			default:
				return fail(fmt.Sprintf("escape %d", b1), ErrUnimplementedOp)
			}

		default:
			if b0 != t2fixed && b0 != t2shortint && b0 < 32 {
				return fail(fmt.Sprintf("operator %d", b0), ErrReservedOp)
			}

			var x float64
			if b0 == t2fixed {
				x = float64(b.I32()) / 65536
			} else {
				x = float64(int16(readInt(b0, b)))
			}
			if sp >= maxStack {
				return fail("", ErrStackOverflow)
			}
			stack[sp] = x
			sp++
			clearStack = false
		}

		if clearStack {
			sp = 0
		}
	}

	return fail("", ErrNoEndchar)
}
