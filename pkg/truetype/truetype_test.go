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

package truetype_test

import (
	"encoding/binary"
	"testing"

	"github.com/barwood/pdfmill/internal/testimg"
	"github.com/barwood/pdfmill/pkg/truetype"
)

func mustFont(t *testing.T) *truetype.Font {
	t.Helper()
	f, err := truetype.ReadFont(testimg.TTF())
	if err != nil {
		t.Fatalf("ReadFont: %v", err)
	}
	return f
}

func TestReadFontBasics(t *testing.T) {
	f := mustFont(t)
	if f.UnitsPerEm != 1000 {
		t.Fatalf("UnitsPerEm = %d, want 1000", f.UnitsPerEm)
	}
	if f.NumGlyphs != 4 {
		t.Fatalf("NumGlyphs = %d, want 4", f.NumGlyphs)
	}
	for r, want := range map[rune]int{0x20: 3, 'A': 1, 'B': 2} {
		if got := f.FindGlyph(r); got != want {
			t.Fatalf("FindGlyph(%q) = %d, want %d", r, got, want)
		}
	}
	if f.FindGlyph('Z') != -1 {
		t.Fatal("FindGlyph('Z') should miss")
	}
}

func TestCompositeGlyphComponents(t *testing.T) {
	f := mustFont(t)
	raw, err := f.GlyphBytes(2) // 'B', composite over two copies of 'A' (glyph 1)
	if err != nil {
		t.Fatalf("GlyphBytes: %v", err)
	}
	if !truetype.IsComposite(raw) {
		t.Fatal("glyph 2 should be composite")
	}
	comps := truetype.Components(raw)
	if len(comps) != 2 {
		t.Fatalf("got %d components, want 2", len(comps))
	}
	for _, c := range comps {
		if c.GlyphIndex != 1 {
			t.Fatalf("component references glyph %d, want 1", c.GlyphIndex)
		}
	}
}

// TestSubsetReindexesCompositeClosure covers spec.md §4.7: subsetting just
// 'B' (glyph index 2) must pull in its component 'A' (glyph 1) too, and the
// output's gList must be dense, containing only the glyphs actually
// referenced (no implicit .notdef seed).
func TestSubsetReindexesCompositeClosure(t *testing.T) {
	f := mustFont(t)
	s := truetype.NewSubsetter(f)
	newB := s.XG(2)
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	newA := s.NewGlyphIndex(1)
	if newA < 0 {
		t.Fatal("composite closure did not pull in component glyph 1")
	}
	if newA == newB {
		t.Fatal("component and composite must not collide in the new index space")
	}

	out, err := s.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// The subset has no cmap table, which ReadFont requires of an input
	// font, so maxp, loca and glyf are read straight from its directory.
	maxp := sfntTable(out, "maxp")
	if len(maxp) < 6 {
		t.Fatalf("subset maxp table missing or short: %d bytes", len(maxp))
	}
	if n := binary.BigEndian.Uint16(maxp[4:]); n != 2 { // A, B
		t.Fatalf("subset NumGlyphs = %d, want 2", n)
	}
	raw := sfntGlyph(out, newB)
	if len(raw) == 0 {
		t.Fatal("subset glyph B is missing or empty")
	}
	if !truetype.IsComposite(raw) {
		t.Fatal("subset composite glyph lost its compositeness")
	}
	for _, c := range truetype.Components(raw) {
		if int(c.GlyphIndex) != newA {
			t.Fatalf("subset composite references glyph %d, want rewritten index %d", c.GlyphIndex, newA)
		}
	}
}

func TestToUnicodeCMapRoundsTripBMPAndSupplementary(t *testing.T) {
	cmap := truetype.ToUnicodeCMap(map[int]rune{1: 'A', 2: 0x1F600})
	if cmap == "" {
		t.Fatal("empty CMap")
	}
	if !contains(cmap, "<0041>") {
		t.Fatal("missing BMP bfchar mapping for 'A'")
	}
	if !contains(cmap, "<D83DDE00>") {
		t.Fatal("missing UTF-16 surrogate pair mapping for U+1F600")
	}
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}

// sfntTable returns the bytes of the table tagged tag in an sfnt program,
// or nil if its directory has no such table.
func sfntTable(font []byte, tag string) []byte {
	numTables := int(binary.BigEndian.Uint16(font[4:]))
	for i := 0; i < numTables; i++ {
		rec := font[12+16*i:]
		if string(rec[:4]) == tag {
			off := binary.BigEndian.Uint32(rec[8:])
			length := binary.BigEndian.Uint32(rec[12:])
			return font[off : off+length]
		}
	}
	return nil
}

// sfntGlyph returns glyph gi's glyf entry, located through head's
// indexToLocFormat and the loca table, or nil if it cannot be found.
func sfntGlyph(font []byte, gi int) []byte {
	head, loca, glyf := sfntTable(font, "head"), sfntTable(font, "loca"), sfntTable(font, "glyf")
	if len(head) < 54 {
		return nil
	}
	var from, thru int
	if binary.BigEndian.Uint16(head[50:]) == 0 {
		if 2*gi+4 > len(loca) {
			return nil
		}
		from = 2 * int(binary.BigEndian.Uint16(loca[2*gi:]))
		thru = 2 * int(binary.BigEndian.Uint16(loca[2*gi+2:]))
	} else {
		if 4*gi+8 > len(loca) {
			return nil
		}
		from = int(binary.BigEndian.Uint32(loca[4*gi:]))
		thru = int(binary.BigEndian.Uint32(loca[4*gi+4:]))
	}
	if from > thru || thru > len(glyf) {
		return nil
	}
	return glyf[from:thru]
}
