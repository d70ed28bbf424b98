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

// Package fonttest builds small synthetic font files for tests.
package fonttest

import (
	"encoding/binary"
	"maps"
	"math/bits"
	"slices"
)

// SFNT assembles a font file from the given tables.
// The version is 0x00010000 for TrueType outlines or 0x4F54544F ("OTTO")
// for CFF outlines.
func SFNT(version uint32, tables map[string][]byte) []byte {
	tags := slices.Sorted(maps.Keys(tables))
	numTables := len(tags)

	var buf []byte
	buf = binary.BigEndian.AppendUint32(buf, version)
	buf = binary.BigEndian.AppendUint16(buf, uint16(numTables))
	sel := bits.Len(uint(numTables)) - 1
	searchRange := 16 << sel
	buf = binary.BigEndian.AppendUint16(buf, uint16(searchRange))
	buf = binary.BigEndian.AppendUint16(buf, uint16(sel))
	buf = binary.BigEndian.AppendUint16(buf, uint16(16*numTables-searchRange))

	offset := 12 + 16*numTables
	for _, tag := range tags {
		data := tables[tag]
		buf = append(buf, tag[:4]...)
		buf = binary.BigEndian.AppendUint32(buf, checksum(data))
		buf = binary.BigEndian.AppendUint32(buf, uint32(offset))
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(data)))
		offset += pad4(len(data))
	}
	for _, tag := range tags {
		data := tables[tag]
		buf = append(buf, data...)
		buf = append(buf, make([]byte, pad4(len(data))-len(data))...)
	}
	return buf
}

// Collection wraps complete font files into a version 1 TrueType
// collection.
func Collection(fonts ...[]byte) []byte {
	var buf []byte
	buf = append(buf, "ttcf"...)
	buf = binary.BigEndian.AppendUint32(buf, 0x00010000)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(fonts)))
	offset := 12 + 4*len(fonts)
	var body []byte
	for _, f := range fonts {
		buf = binary.BigEndian.AppendUint32(buf, uint32(offset+len(body)))
		// Table offsets inside each font are absolute, so relocate them.
		body = append(body, relocate(f, offset+len(body))...)
		body = append(body, make([]byte, pad4(len(body))-len(body))...)
	}
	return append(buf, body...)
}

func relocate(font []byte, delta int) []byte {
	res := slices.Clone(font)
	numTables := int(binary.BigEndian.Uint16(res[4:]))
	for i := range numTables {
		rec := res[12+16*i:]
		off := binary.BigEndian.Uint32(rec[8:])
		binary.BigEndian.PutUint32(rec[8:], off+uint32(delta))
	}
	return res
}

func checksum(data []byte) uint32 {
	var sum uint32
	for i := 0; i < len(data); i += 4 {
		var word [4]byte
		copy(word[:], data[i:])
		sum += binary.BigEndian.Uint32(word[:])
	}
	return sum
}

func pad4(n int) int {
	return (n + 3) &^ 3
}

// Head returns a "head" table.
func Head(unitsPerEm uint16, indexToLocFormat int16) []byte {
	buf := make([]byte, 54)
	binary.BigEndian.PutUint32(buf[0:], 0x00010000)
	binary.BigEndian.PutUint32(buf[12:], 0x5F0F3CF5)
	binary.BigEndian.PutUint16(buf[18:], unitsPerEm)
	binary.BigEndian.PutUint16(buf[50:], uint16(indexToLocFormat))
	return buf
}

// Hhea returns a "hhea" table.
func Hhea(ascent, descent, lineGap int16, numHMetrics uint16) []byte {
	buf := make([]byte, 36)
	binary.BigEndian.PutUint32(buf[0:], 0x00010000)
	binary.BigEndian.PutUint16(buf[4:], uint16(ascent))
	binary.BigEndian.PutUint16(buf[6:], uint16(descent))
	binary.BigEndian.PutUint16(buf[8:], uint16(lineGap))
	binary.BigEndian.PutUint16(buf[34:], numHMetrics)
	return buf
}

// HMetric is one long horizontal metric record.
type HMetric struct {
	Advance uint16
	LSB     int16
}

// Hmtx returns a "hmtx" table with one long record per glyph.
func Hmtx(metrics []HMetric) []byte {
	var buf []byte
	for _, m := range metrics {
		buf = binary.BigEndian.AppendUint16(buf, m.Advance)
		buf = binary.BigEndian.AppendUint16(buf, uint16(m.LSB))
	}
	return buf
}

// Maxp returns a version 0.5 "maxp" table.
func Maxp(numGlyphs uint16) []byte {
	buf := make([]byte, 6)
	binary.BigEndian.PutUint32(buf[0:], 0x00005000)
	binary.BigEndian.PutUint16(buf[4:], numGlyphs)
	return buf
}

// Cmap4 returns a "cmap" table with a single (3,1) format 4 subtable.
// All runes must be in the BMP.
func Cmap4(m map[rune]uint16) []byte {
	runes := slices.Sorted(maps.Keys(m))

	type segment struct{ start, end, delta uint16 }
	var segs []segment
	for _, r := range runes {
		delta := m[r] - uint16(r)
		n := len(segs)
		if n > 0 && segs[n-1].end+1 == uint16(r) && segs[n-1].delta == delta {
			segs[n-1].end++
			continue
		}
		segs = append(segs, segment{uint16(r), uint16(r), delta})
	}
	segs = append(segs, segment{0xffff, 0xffff, 1})

	segCount := len(segs)
	var sub []byte
	sub = binary.BigEndian.AppendUint16(sub, 4)
	sub = binary.BigEndian.AppendUint16(sub, uint16(16+8*segCount))
	sub = binary.BigEndian.AppendUint16(sub, 0) // language
	sub = binary.BigEndian.AppendUint16(sub, uint16(2*segCount))
	sel := bits.Len(uint(segCount)) - 1
	sub = binary.BigEndian.AppendUint16(sub, uint16(2<<sel))
	sub = binary.BigEndian.AppendUint16(sub, uint16(sel))
	sub = binary.BigEndian.AppendUint16(sub, uint16(2*segCount-2<<sel))
	for _, s := range segs {
		sub = binary.BigEndian.AppendUint16(sub, s.end)
	}
	sub = binary.BigEndian.AppendUint16(sub, 0) // reservedPad
	for _, s := range segs {
		sub = binary.BigEndian.AppendUint16(sub, s.start)
	}
	for _, s := range segs {
		sub = binary.BigEndian.AppendUint16(sub, s.delta)
	}
	for range segs {
		sub = binary.BigEndian.AppendUint16(sub, 0) // idRangeOffset
	}
	return cmapTable(3, 1, sub)
}

// Cmap12 returns a "cmap" table with a single (3,10) format 12 subtable.
func Cmap12(m map[rune]uint16) []byte {
	runes := slices.Sorted(maps.Keys(m))
	var sub []byte
	sub = binary.BigEndian.AppendUint16(sub, 12)
	sub = binary.BigEndian.AppendUint16(sub, 0)
	sub = binary.BigEndian.AppendUint32(sub, uint32(16+12*len(runes)))
	sub = binary.BigEndian.AppendUint32(sub, 0) // language
	sub = binary.BigEndian.AppendUint32(sub, uint32(len(runes)))
	for _, r := range runes {
		sub = binary.BigEndian.AppendUint32(sub, uint32(r))
		sub = binary.BigEndian.AppendUint32(sub, uint32(r))
		sub = binary.BigEndian.AppendUint32(sub, uint32(m[r]))
	}
	return cmapTable(3, 10, sub)
}

// CmapRaw returns a "cmap" table with a single subtable, given as raw
// bytes.
func CmapRaw(platform, encoding uint16, sub []byte) []byte {
	return cmapTable(platform, encoding, sub)
}

func cmapTable(platform, encoding uint16, sub []byte) []byte {
	var buf []byte
	buf = binary.BigEndian.AppendUint16(buf, 0) // version
	buf = binary.BigEndian.AppendUint16(buf, 1) // numTables
	buf = binary.BigEndian.AppendUint16(buf, platform)
	buf = binary.BigEndian.AppendUint16(buf, encoding)
	buf = binary.BigEndian.AppendUint32(buf, 12)
	return append(buf, sub...)
}

// KernPair is one entry of a kerning table.
type KernPair struct {
	Left, Right uint16
	Value       int16
}

// Kern returns a version 0 "kern" table with one horizontal format 0
// subtable.
func Kern(pairs []KernPair) []byte {
	pairs = slices.Clone(pairs)
	slices.SortFunc(pairs, func(a, b KernPair) int {
		return int(uint32(a.Left)<<16|uint32(a.Right)) - int(uint32(b.Left)<<16|uint32(b.Right))
	})

	var buf []byte
	buf = binary.BigEndian.AppendUint16(buf, 0) // version
	buf = binary.BigEndian.AppendUint16(buf, 1) // nTables
	buf = binary.BigEndian.AppendUint16(buf, 0) // subtable version
	buf = binary.BigEndian.AppendUint16(buf, uint16(14+6*len(pairs)))
	buf = binary.BigEndian.AppendUint16(buf, 0x0001) // horizontal, format 0
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(pairs)))
	sel := max(bits.Len(uint(len(pairs)))-1, 0)
	buf = binary.BigEndian.AppendUint16(buf, uint16(6<<sel))
	buf = binary.BigEndian.AppendUint16(buf, uint16(sel))
	buf = binary.BigEndian.AppendUint16(buf, uint16(6*len(pairs)-6<<sel))
	for _, p := range pairs {
		buf = binary.BigEndian.AppendUint16(buf, p.Left)
		buf = binary.BigEndian.AppendUint16(buf, p.Right)
		buf = binary.BigEndian.AppendUint16(buf, uint16(p.Value))
	}
	return buf
}

// GPOSPairs returns a "GPOS" table with a single pair adjustment lookup
// (format 1) which adjusts the x advance of the first glyph.
func GPOSPairs(pairs []KernPair) []byte {
	firsts := map[uint16][]KernPair{}
	for _, p := range pairs {
		firsts[p.Left] = append(firsts[p.Left], p)
	}
	coverage := slices.Sorted(maps.Keys(firsts))

	// PairPos format 1 subtable
	var pairSets [][]byte
	for _, g := range coverage {
		set := slices.Clone(firsts[g])
		slices.SortFunc(set, func(a, b KernPair) int { return int(a.Right) - int(b.Right) })
		var ps []byte
		ps = binary.BigEndian.AppendUint16(ps, uint16(len(set)))
		for _, p := range set {
			ps = binary.BigEndian.AppendUint16(ps, p.Right)
			ps = binary.BigEndian.AppendUint16(ps, uint16(p.Value))
		}
		pairSets = append(pairSets, ps)
	}
	headerLen := 10 + 2*len(pairSets)
	var cov []byte
	cov = binary.BigEndian.AppendUint16(cov, 1) // coverage format 1
	cov = binary.BigEndian.AppendUint16(cov, uint16(len(coverage)))
	for _, g := range coverage {
		cov = binary.BigEndian.AppendUint16(cov, g)
	}

	var sub []byte
	sub = binary.BigEndian.AppendUint16(sub, 1) // posFormat
	sub = binary.BigEndian.AppendUint16(sub, uint16(headerLen))
	sub = binary.BigEndian.AppendUint16(sub, 0x0004) // valueFormat1: XAdvance
	sub = binary.BigEndian.AppendUint16(sub, 0)      // valueFormat2
	sub = binary.BigEndian.AppendUint16(sub, uint16(len(pairSets)))
	off := headerLen + len(cov)
	for _, ps := range pairSets {
		sub = binary.BigEndian.AppendUint16(sub, uint16(off))
		off += len(ps)
	}
	sub = append(sub, cov...)
	for _, ps := range pairSets {
		sub = append(sub, ps...)
	}

	return gposTable(sub)
}

// GPOSClasses returns a "GPOS" table with a single class based pair
// adjustment lookup (format 2).  Glyphs missing from class1 are not
// covered, glyphs missing from class2 belong to class 0.  Values[c1][c2]
// adjusts the x advance of the first glyph.
func GPOSClasses(class1, class2 map[uint16]uint16, values [][]int16) []byte {
	firsts := slices.Sorted(maps.Keys(class1))
	var cov []byte
	cov = binary.BigEndian.AppendUint16(cov, 1) // coverage format 1
	cov = binary.BigEndian.AppendUint16(cov, uint16(len(firsts)))
	for _, g := range firsts {
		cov = binary.BigEndian.AppendUint16(cov, g)
	}

	classDef := func(m map[uint16]uint16) []byte {
		glyphs := slices.Sorted(maps.Keys(m))
		var buf []byte
		buf = binary.BigEndian.AppendUint16(buf, 2) // class format 2
		buf = binary.BigEndian.AppendUint16(buf, uint16(len(glyphs)))
		for _, g := range glyphs {
			buf = binary.BigEndian.AppendUint16(buf, g)
			buf = binary.BigEndian.AppendUint16(buf, g)
			buf = binary.BigEndian.AppendUint16(buf, m[g])
		}
		return buf
	}
	cd1 := classDef(class1)
	cd2 := classDef(class2)

	class2Count := 0
	if len(values) > 0 {
		class2Count = len(values[0])
	}
	var records []byte
	for _, row := range values {
		for _, v := range row {
			records = binary.BigEndian.AppendUint16(records, uint16(v))
		}
	}

	covOff := 16 + len(records)
	var sub []byte
	sub = binary.BigEndian.AppendUint16(sub, 2) // posFormat
	sub = binary.BigEndian.AppendUint16(sub, uint16(covOff))
	sub = binary.BigEndian.AppendUint16(sub, 0x0004) // valueFormat1: XAdvance
	sub = binary.BigEndian.AppendUint16(sub, 0)      // valueFormat2
	sub = binary.BigEndian.AppendUint16(sub, uint16(covOff+len(cov)))
	sub = binary.BigEndian.AppendUint16(sub, uint16(covOff+len(cov)+len(cd1)))
	sub = binary.BigEndian.AppendUint16(sub, uint16(len(values)))
	sub = binary.BigEndian.AppendUint16(sub, uint16(class2Count))
	sub = append(sub, records...)
	sub = append(sub, cov...)
	sub = append(sub, cd1...)
	sub = append(sub, cd2...)
	return gposTable(sub)
}

// gposTable wraps a PairPos subtable into a "GPOS" table with a single
// lookup.
func gposTable(sub []byte) []byte {
	var lookup []byte
	lookup = binary.BigEndian.AppendUint16(lookup, 2) // pair adjustment
	lookup = binary.BigEndian.AppendUint16(lookup, 0) // flags
	lookup = binary.BigEndian.AppendUint16(lookup, 1) // subtable count
	lookup = binary.BigEndian.AppendUint16(lookup, 8)
	lookup = append(lookup, sub...)

	var lookupList []byte
	lookupList = binary.BigEndian.AppendUint16(lookupList, 1)
	lookupList = binary.BigEndian.AppendUint16(lookupList, 4)
	lookupList = append(lookupList, lookup...)

	var buf []byte
	buf = binary.BigEndian.AppendUint16(buf, 1) // major version
	buf = binary.BigEndian.AppendUint16(buf, 0) // minor version
	buf = binary.BigEndian.AppendUint16(buf, 0) // script list (unused)
	buf = binary.BigEndian.AppendUint16(buf, 0) // feature list (unused)
	buf = binary.BigEndian.AppendUint16(buf, 10)
	return append(buf, lookupList...)
}
