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

package truetype

import (
	"encoding/binary"
	"sort"

	"github.com/pkg/errors"
)

// Subsetter accumulates the glyphs a document references and builds a new,
// self-contained sfnt program containing only those glyphs (spec.md
// §4.7). Unlike the zero-fill subsetting some embedders use, it reindexes:
// glyph N in the output gList is a fresh, dense index, and every
// composite's component references and every CIDToGIDMap entry are
// rewritten through xlat to match.
type Subsetter struct {
	font *Font

	gList []uint16       // new glyph index -> source glyph index, in first-referenced order
	xlat  map[uint16]int // source glyph index -> new glyph index

	pending []uint16 // queue of source glyph indices awaiting component closure
}

// NewSubsetter starts an empty subset session: gList is built up purely
// from the glyphs XG/AddRune actually intern, with no implicit seed.
func NewSubsetter(f *Font) *Subsetter {
	return &Subsetter{
		font: f,
		xlat: map[uint16]int{},
	}
}

// XG interns a source glyph index, returning its (possibly newly assigned)
// index in the output font. Composite components are not resolved here;
// call Close after adding every directly-referenced glyph.
func (s *Subsetter) XG(srcGI uint16) int {
	if ngi, ok := s.xlat[srcGI]; ok {
		return ngi
	}
	ngi := len(s.gList)
	s.gList = append(s.gList, srcGI)
	s.xlat[srcGI] = ngi
	s.pending = append(s.pending, srcGI)
	return ngi
}

// AddRune interns the glyph a Unicode codepoint maps to in the source
// font's cmap. It returns (-1, false) if the font has no glyph for r.
func (s *Subsetter) AddRune(r rune) (int, bool) {
	gi := s.font.FindGlyph(r)
	if gi < 0 {
		return -1, false
	}
	return s.XG(uint16(gi)), true
}

// Close resolves composite-glyph component closure: every glyph added via
// XG or AddRune that turns out to be composite has its component glyphs
// interned too, transitively, until no glyph remains unresolved.
func (s *Subsetter) Close() error {
	for len(s.pending) > 0 {
		gi := s.pending[0]
		s.pending = s.pending[1:]
		raw, err := s.font.GlyphBytes(int(gi))
		if err != nil {
			return err
		}
		if !IsComposite(raw) {
			continue
		}
		for _, c := range Components(raw) {
			s.XG(c.GlyphIndex)
		}
	}
	return nil
}

// NewGlyphIndex returns the output index for a source glyph already
// interned via XG/AddRune, or -1 if it was never added.
func (s *Subsetter) NewGlyphIndex(srcGI uint16) int {
	if ngi, ok := s.xlat[srcGI]; ok {
		return ngi
	}
	return -1
}

// Build emits a complete sfnt program containing exactly the glyphs
// accumulated so far (in gList order), with composite component
// references, hmtx, loca, head, hhea and maxp all rewritten to match.
func (s *Subsetter) Build() ([]byte, error) {
	if err := s.Close(); err != nil {
		return nil, err
	}

	glyfBuf, offsets, err := s.buildGlyf()
	if err != nil {
		return nil, err
	}
	locFormat := 0
	if offsets[len(offsets)-1] > 0x1FFFE {
		locFormat = 1
	}
	locaBuf := buildLoca(offsets, locFormat)
	hmtxBuf := s.buildHmtx()
	headBuf := s.buildHead(locFormat)
	hheaBuf := s.buildHhea()
	maxpBuf := s.buildMaxp()

	tables := map[string][]byte{
		"glyf": glyfBuf,
		"loca": locaBuf,
		"hmtx": hmtxBuf,
		"head": headBuf,
		"hhea": hheaBuf,
		"maxp": maxpBuf,
	}
	for _, optional := range []string{"cvt ", "fpgm", "prep"} {
		if b, ok := s.font.tables[optional]; ok {
			tables[optional] = s.font.bytesOf(b)
		}
	}

	return assembleSfnt(tables)
}

func (s *Subsetter) buildGlyf() (buf []byte, offsets []uint32, err error) {
	offsets = make([]uint32, len(s.gList)+1)
	for i, srcGI := range s.gList {
		raw, err := s.font.GlyphBytes(int(srcGI))
		if err != nil {
			return nil, nil, err
		}
		entry := append([]byte(nil), raw...)
		if IsComposite(entry) {
			for _, c := range Components(entry) {
				ngi := s.NewGlyphIndex(c.GlyphIndex)
				if ngi < 0 {
					return nil, nil, errors.Errorf("pdfmill: truetype: composite glyph references unresolved component %d", c.GlyphIndex)
				}
				binary.BigEndian.PutUint16(entry[c.GlyphIxOff:], uint16(ngi))
			}
		}
		entry = stripInstructions(entry)
		buf = append(buf, entry...)
		for len(buf)%4 != 0 {
			buf = append(buf, 0) // glyf entries are long-aligned
		}
		offsets[i+1] = uint32(len(buf))
	}
	return buf, offsets, nil
}

// stripInstructions zeroes a glyf entry's instructionLength and drops the
// instruction bytes themselves (spec.md §4.7, §1 non-goals: hinting is
// never preserved), for both simple and composite glyphs. Component
// records precede any composite instructions, so this runs after
// buildGlyf has already patched component glyph indices in place.
func stripInstructions(entry []byte) []byte {
	if len(entry) < 10 {
		return entry
	}

	if IsComposite(entry) {
		off := 10
		last := false
		haveInstructions := false
		for !last && off+4 <= len(entry) {
			flags := binary.BigEndian.Uint16(entry[off:])
			last = flags&0x0020 == 0 // MORE_COMPONENTS
			wordArgs := flags&0x0001 != 0
			next := off + 6
			if wordArgs {
				next += 2
			}
			switch {
			case flags&0x0008 != 0: // WE_HAVE_A_SCALE
				next += 2
			case flags&0x0040 != 0: // WE_HAVE_AN_X_AND_Y_SCALE
				next += 4
			case flags&0x0080 != 0: // WE_HAVE_A_TWO_BY_TWO
				next += 8
			}
			if last {
				haveInstructions = flags&0x0100 != 0 // WE_HAVE_INSTRUCTIONS
			}
			off = next
		}
		if !haveInstructions || off+2 > len(entry) {
			return entry
		}
		out := append([]byte(nil), entry[:off]...)
		return binary.BigEndian.AppendUint16(out, 0)
	}

	numContours := int(int16(binary.BigEndian.Uint16(entry)))
	if numContours < 0 {
		return entry
	}
	instrLenOff := 10 + 2*numContours
	if instrLenOff+2 > len(entry) {
		return entry
	}
	instrLen := int(binary.BigEndian.Uint16(entry[instrLenOff:]))
	coordsOff := instrLenOff + 2 + instrLen
	if coordsOff > len(entry) {
		return entry
	}
	out := append([]byte(nil), entry[:instrLenOff]...)
	out = binary.BigEndian.AppendUint16(out, 0)
	out = append(out, entry[coordsOff:]...)
	return out
}

func buildLoca(offsets []uint32, format int) []byte {
	buf := make([]byte, 0, len(offsets)*4)
	if format == 0 {
		for _, off := range offsets {
			buf = binary.BigEndian.AppendUint16(buf, uint16(off/2))
		}
	} else {
		for _, off := range offsets {
			buf = binary.BigEndian.AppendUint32(buf, off)
		}
	}
	return buf
}

func (s *Subsetter) buildHmtx() []byte {
	buf := make([]byte, 0, len(s.gList)*4)
	for _, srcGI := range s.gList {
		adv, lsb := s.font.HMetric(int(srcGI))
		buf = binary.BigEndian.AppendUint16(buf, uint16(adv))
		buf = binary.BigEndian.AppendUint16(buf, uint16(int16(lsb)))
	}
	return buf
}

// Widths returns each output glyph's advance width scaled to PDF glyph
// space (1000 units per em, spec.md §4.7's /W array), in gList order.
// Call only after Build, once composite closure has finished growing
// gList.
func (s *Subsetter) Widths() []int {
	scale := 1000.0 / float64(s.font.UnitsPerEm)
	widths := make([]int, len(s.gList))
	for i, srcGI := range s.gList {
		adv, _ := s.font.HMetric(int(srcGI))
		widths[i] = int(float64(adv)*scale + 0.5)
	}
	return widths
}

func (s *Subsetter) buildHead(locFormat int) []byte {
	buf := append([]byte(nil), s.font.head.data...)
	binary.BigEndian.PutUint32(buf[8:], 0) // checkSumAdjustment, patched by assembleSfnt
	binary.BigEndian.PutUint16(buf[50:], uint16(int16(locFormat)))
	return buf
}

func (s *Subsetter) buildHhea() []byte {
	buf := append([]byte(nil), s.font.hhea.data...)
	binary.BigEndian.PutUint16(buf[34:], uint16(len(s.gList)))
	return buf
}

func (s *Subsetter) buildMaxp() []byte {
	buf := append([]byte(nil), s.font.maxp.data...)
	binary.BigEndian.PutUint16(buf[4:], uint16(len(s.gList)))
	return buf
}

func assembleSfnt(tables map[string][]byte) ([]byte, error) {
	tags := make([]string, 0, len(tables))
	for tag := range tables {
		tags = append(tags, tag)
	}
	// Table tags are sorted by their big-endian uint32 value (spec.md
	// §4.7); for fixed 4-byte ASCII tags that's exactly Go's default
	// byte-wise string ordering.
	sort.Strings(tags)

	numTables := len(tags)
	searchRange, entrySelector, rangeShift := binarySearchParams(numTables)

	header := make([]byte, 12+16*numTables)
	binary.BigEndian.PutUint32(header, 0x00010000)
	binary.BigEndian.PutUint16(header[4:], uint16(numTables))
	binary.BigEndian.PutUint16(header[6:], searchRange)
	binary.BigEndian.PutUint16(header[8:], entrySelector)
	binary.BigEndian.PutUint16(header[10:], rangeShift)

	body := make([]byte, 0, 4096)
	headOffsetInBody := -1
	for i, tag := range tags {
		data := tables[tag]
		padded := append([]byte(nil), data...)
		for len(padded)%4 != 0 {
			padded = append(padded, 0)
		}
		off := uint32(len(header) + len(body))
		if tag == "head" {
			headOffsetInBody = len(body)
		}
		chk := tableChecksum(padded)

		rec := header[12+16*i:]
		copy(rec, tag)
		binary.BigEndian.PutUint32(rec[4:], chk)
		binary.BigEndian.PutUint32(rec[8:], off)
		binary.BigEndian.PutUint32(rec[12:], uint32(len(data)))

		body = append(body, padded...)
	}

	out := append(header, body...)
	if headOffsetInBody < 0 {
		return nil, errors.New("pdfmill: truetype: subset missing head table")
	}

	fileChecksum := tableChecksum(out)
	adjustment := 0xB1B0AFBA - fileChecksum
	binary.BigEndian.PutUint32(out[len(header)+headOffsetInBody+8:], adjustment)

	return out, nil
}

func tableChecksum(data []byte) uint32 {
	var sum uint32
	for i := 0; i+3 < len(data); i += 4 {
		sum += binary.BigEndian.Uint32(data[i:])
	}
	if rem := len(data) % 4; rem != 0 {
		var last [4]byte
		copy(last[:], data[len(data)-rem:])
		sum += binary.BigEndian.Uint32(last[:])
	}
	return sum
}

func binarySearchParams(numTables int) (searchRange, entrySelector, rangeShift uint16) {
	entries := uint16(1)
	var log2 uint16
	for entries*2 <= uint16(numTables) {
		entries *= 2
		log2++
	}
	searchRange = entries * 16
	entrySelector = log2
	rangeShift = uint16(numTables)*16 - searchRange
	return
}
