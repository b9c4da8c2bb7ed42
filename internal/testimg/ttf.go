/*
Copyright 2018 The pdfcpu Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package testimg builds small, self-contained synthetic fixtures (a
// minimal TrueType font, minimal PNG images) so tests elsewhere in the
// module don't need to embed real binary assets.
package testimg

import (
	"encoding/binary"
	"sort"
)

// TTF is a minimal, valid sfnt program with four glyphs: .notdef, a
// triangle outline for 'A' (simple glyph), a composite glyph for 'B' built
// out of two copies of the 'A' outline, and a zero-contour space glyph
// mapped from U+0020. Its cmap covers exactly {0x20, 'A', 'B'}.
func TTF() []byte {
	const unitsPerEm = 1000

	notdef := simpleGlyphTriangle(0, 0, 200, 700)
	aGlyph := simpleGlyphTriangle(20, 0, 480, 700)
	space := []byte{}
	bGlyph := compositeGlyph(1) // references glyph 1 (A) twice

	glyphs := [][]byte{notdef, aGlyph, bGlyph, space}
	loca := make([]uint32, len(glyphs)+1)
	var glyf []byte
	for i, g := range glyphs {
		glyf = append(glyf, g...)
		for len(glyf)%4 != 0 {
			glyf = append(glyf, 0)
		}
		loca[i+1] = uint32(len(glyf))
	}

	locaBuf := make([]byte, 0, len(loca)*4)
	for _, off := range loca {
		locaBuf = binary.BigEndian.AppendUint32(locaBuf, off)
	}

	head := make([]byte, 54)
	binary.BigEndian.PutUint32(head[0:], 0x00010000)
	binary.BigEndian.PutUint32(head[12:], 0x5F0F3CF5)
	binary.BigEndian.PutUint16(head[18:], unitsPerEm)
	binary.BigEndian.PutUint16(head[36:], uint16(int16(0)))
	binary.BigEndian.PutUint16(head[38:], uint16(int16(0)))
	binary.BigEndian.PutUint16(head[40:], uint16(int16(500)))
	binary.BigEndian.PutUint16(head[42:], uint16(int16(700)))
	binary.BigEndian.PutUint16(head[50:], 1) // long loca format

	hhea := make([]byte, 36)
	binary.BigEndian.PutUint16(hhea[4:], uint16(int16(800)))
	descent := int16(-200)
	binary.BigEndian.PutUint16(hhea[6:], uint16(descent))
	binary.BigEndian.PutUint16(hhea[8:], 0)
	binary.BigEndian.PutUint16(hhea[34:], uint16(len(glyphs)))

	maxp := make([]byte, 6)
	binary.BigEndian.PutUint16(maxp[4:], uint16(len(glyphs)))

	hmtx := make([]byte, 0, len(glyphs)*4)
	for range glyphs {
		hmtx = binary.BigEndian.AppendUint16(hmtx, 500)
		hmtx = binary.BigEndian.AppendUint16(hmtx, 20)
	}

	cmap := cmapFormat4(map[rune]uint16{0x20: 3, 'A': 1, 'B': 2})

	tables := map[string][]byte{
		"head": head, "hhea": hhea, "maxp": maxp, "hmtx": hmtx,
		"loca": locaBuf, "glyf": glyf, "cmap": cmap,
	}
	return assembleForTest(tables)
}

// simpleGlyphTriangle builds a 3-point, 1-contour glyph with word-sized
// coordinate deltas (flags = 0x01: on-curve, no short-vector bits), a
// right triangle with corners (xMin,yMin), (xMax,yMin), (xMin,yMax).
func simpleGlyphTriangle(xMin, yMin, xMax, yMax int16) []byte {
	buf := make([]byte, 10)
	binary.BigEndian.PutUint16(buf[0:], 1) // one contour
	binary.BigEndian.PutUint16(buf[2:], uint16(xMin))
	binary.BigEndian.PutUint16(buf[4:], uint16(yMin))
	binary.BigEndian.PutUint16(buf[6:], uint16(xMax))
	binary.BigEndian.PutUint16(buf[8:], uint16(yMax))
	buf = binary.BigEndian.AppendUint16(buf, 2) // endPtsOfContours[0] = 2 (3 points)
	buf = binary.BigEndian.AppendUint16(buf, 0) // instructionLength
	buf = append(buf, 0x01, 0x01, 0x01)         // flags: all on-curve, word deltas

	appendI16(&buf, xMin) // point 0 absolute-from-origin delta
	appendI16(&buf, yMin)
	appendI16(&buf, xMax-xMin) // point 1 delta
	appendI16(&buf, 0)
	appendI16(&buf, -(xMax - xMin)) // point 2 delta, back under point 0's x
	appendI16(&buf, yMax-yMin)
	return buf
}

func appendI16(buf *[]byte, v int16) {
	*buf = binary.BigEndian.AppendUint16(*buf, uint16(v))
}

func compositeGlyph(componentGI uint16) []byte {
	buf := make([]byte, 10)
	binary.BigEndian.PutUint16(buf[0:], 0xFFFF) // numberOfContours = -1: composite
	binary.BigEndian.PutUint16(buf[2:], 0)
	binary.BigEndian.PutUint16(buf[4:], 0)
	binary.BigEndian.PutUint16(buf[6:], 500)
	binary.BigEndian.PutUint16(buf[8:], 700)

	const argsAreWords = 0x0001
	const moreComponents = 0x0020
	// first component: flags with MORE_COMPONENTS set
	buf = binary.BigEndian.AppendUint16(buf, argsAreWords|moreComponents)
	buf = binary.BigEndian.AppendUint16(buf, componentGI)
	appendI16(&buf, 0)
	appendI16(&buf, 0)
	// second component: last one, no MORE_COMPONENTS
	buf = binary.BigEndian.AppendUint16(buf, argsAreWords)
	buf = binary.BigEndian.AppendUint16(buf, componentGI)
	appendI16(&buf, 300)
	appendI16(&buf, 0)
	return buf
}

func cmapFormat4(m map[rune]uint16) []byte {
	codes := make([]rune, 0, len(m))
	for c := range m {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	segCount := len(codes) + 1 // plus terminal 0xFFFF segment
	segX2 := segCount * 2

	sub := make([]byte, 14)
	binary.BigEndian.PutUint16(sub[0:], 4)
	binary.BigEndian.PutUint16(sub[6:], uint16(segX2))

	var ends, starts, deltas, ranges []byte
	for _, c := range codes {
		ends = binary.BigEndian.AppendUint16(ends, uint16(c))
		starts = binary.BigEndian.AppendUint16(starts, uint16(c))
		deltas = binary.BigEndian.AppendUint16(deltas, uint16(int16(m[c])-int16(c)))
		ranges = binary.BigEndian.AppendUint16(ranges, 0)
	}
	ends = binary.BigEndian.AppendUint16(ends, 0xFFFF)
	starts = binary.BigEndian.AppendUint16(starts, 0xFFFF)
	deltas = binary.BigEndian.AppendUint16(deltas, 1)
	ranges = binary.BigEndian.AppendUint16(ranges, 0)

	sub = append(sub, ends...)
	sub = binary.BigEndian.AppendUint16(sub, 0) // reservedPad
	sub = append(sub, starts...)
	sub = append(sub, deltas...)
	sub = append(sub, ranges...)

	header := make([]byte, 4+8)
	binary.BigEndian.PutUint16(header[2:], 1)
	binary.BigEndian.PutUint16(header[4:], 3)
	binary.BigEndian.PutUint16(header[6:], 1)
	binary.BigEndian.PutUint32(header[8:], uint32(len(header)))

	return append(header, sub...)
}

func assembleForTest(tables map[string][]byte) []byte {
	tags := make([]string, 0, len(tables))
	for t := range tables {
		tags = append(tags, t)
	}
	sort.Strings(tags)

	numTables := len(tags)
	header := make([]byte, 12+16*numTables)
	binary.BigEndian.PutUint32(header, 0x00010000)
	binary.BigEndian.PutUint16(header[4:], uint16(numTables))

	var body []byte
	for i, tag := range tags {
		data := tables[tag]
		padded := append([]byte(nil), data...)
		for len(padded)%4 != 0 {
			padded = append(padded, 0)
		}
		off := uint32(len(header) + len(body))
		rec := header[12+16*i:]
		copy(rec, tag)
		binary.BigEndian.PutUint32(rec[8:], off)
		binary.BigEndian.PutUint32(rec[12:], uint32(len(data)))
		body = append(body, padded...)
	}
	return append(header, body...)
}
