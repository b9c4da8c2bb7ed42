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

package pdfdoc

import (
	"bytes"
	"fmt"

	"github.com/barwood/pdfmill/pkg/truetype"
)

// FontSession accumulates the glyphs one embedded font subset needs
// across a document (spec.md §5: "TrueType subset state is owned by one
// font instance and must not be shared across documents"), then emits the
// five-indirect-object PDF font structure spec.md §4.7/§4.9 describes:
// FontFile2 (the subset program), FontDescriptor, CIDFontType2 (the
// descendant font), ToUnicode, and Type0 (the composite font the page
// content stream actually references).
type FontSession struct {
	font *truetype.Font
	name string
	sub  *truetype.Subsetter

	runeToGI  map[rune]int
	byNewGI   map[int]rune
	fontObjID int
}

// NewFontSession starts a subset session for one embedded font, grounded
// on a parsed TrueType program.
func NewFontSession(name string, font *truetype.Font) *FontSession {
	return &FontSession{
		font:     font,
		name:     name,
		sub:      truetype.NewSubsetter(font),
		runeToGI: map[rune]int{},
		byNewGI:  map[int]rune{},
	}
}

// Use interns every rune of s into the subset, returning an error for any
// codepoint the font's cmap has no glyph for.
func (fs *FontSession) Use(s string) error {
	for _, r := range s {
		if _, ok := fs.runeToGI[r]; ok {
			continue
		}
		gi, ok := fs.sub.AddRune(r)
		if !ok {
			return newErr(MalformedInput, fmt.Sprintf("rune %q", r), "font has no glyph for codepoint")
		}
		fs.runeToGI[r] = gi
		fs.byNewGI[gi] = r
	}
	return nil
}

// GID returns the subset glyph index already interned for r via Use.
func (fs *FontSession) GID(r rune) (int, bool) {
	gi, ok := fs.runeToGI[r]
	return gi, ok
}

// Register allocates this font's Type0 object id (deferred) and returns
// it for use in page resource dictionaries; the subset itself is built
// and written during doc.Finish, once every Use call has happened.
func (fs *FontSession) Register(doc *Document) int {
	fs.fontObjID = doc.AllocDyn(fs.write)
	return fs.fontObjID
}

func (fs *FontSession) write(doc *Document, type0ID int) error {
	subsetBytes, err := fs.sub.Build()
	if err != nil {
		return err
	}

	fontFileID := doc.PutStream(subsetBytes, fmt.Sprintf("/Length1 %d", len(subsetBytes)))

	capHeight := fs.font.CapHeight
	if capHeight == 0 {
		capHeight = int(0.7 * float64(fs.font.UnitsPerEm))
	}

	descID := doc.AllocObj()
	doc.StartObj(descID)
	fmt.Fprintf(&doc.buf,
		"<</Type/FontDescriptor/FontName/%s/Flags 4/FontBBox[%d %d %d %d]/ItalicAngle 0/Ascent %d/Descent %d/CapHeight %d/StemV 80/FontFile2 %d 0 R>>",
		fs.name, fs.font.XMin, fs.font.YMin, fs.font.XMax, fs.font.YMax,
		fs.font.Ascent, fs.font.Descent, capHeight, fontFileID)
	doc.EndObj()

	widths := fs.sub.Widths()
	var w bytes.Buffer
	w.WriteString("[0[")
	for i, width := range widths {
		if i > 0 {
			w.WriteByte(' ')
		}
		fmt.Fprintf(&w, "%d", width)
	}
	w.WriteString("]]")

	cidID := doc.AllocObj()
	doc.StartObj(cidID)
	fmt.Fprintf(&doc.buf,
		"<</Type/Font/Subtype/CIDFontType2/BaseFont/%s/CIDSystemInfo<</Registry(Adobe)/Ordering(UCS)/Supplement 0>>/FontDescriptor %d 0 R/DW 1000/W%s/CIDToGIDMap/Identity>>",
		fs.name, descID, w.String())
	doc.EndObj()

	toUniID := doc.PutStream([]byte(truetype.ToUnicodeCMap(fs.byNewGI)), "")

	doc.WriteRaw(fmt.Sprintf(
		"<</Type/Font/Subtype/Type0/BaseFont/%s/Encoding/Identity-H/DescendantFonts[%d 0 R]/ToUnicode %d 0 R>>",
		fs.name, cidID, toUniID))
	return nil
}
