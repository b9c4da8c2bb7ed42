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

// Package truetype reads a TrueType font's table directory and the
// subset of tables PDF embedding needs, and subsets a font down to the
// glyphs a document actually references (spec.md §4.6-4.7).
package truetype

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const ttfHeadMagic = 0x5F0F3CF5

// tableRec is one table directory entry: a byte range into the source
// font's bytes (never copied; the reader borrows them for its lifetime,
// per spec.md §3 ownership notes).
type tableRec struct {
	tag    string
	chksum uint32
	off    uint32
	length uint32
}

// table is a thin big-endian accessor over one table's bytes.
type table struct{ data []byte }

func (t table) u16(off int) uint16 { return binary.BigEndian.Uint16(t.data[off:]) }
func (t table) i16(off int) int16  { return int16(t.u16(off)) }
func (t table) u32(off int) uint32 { return binary.BigEndian.Uint32(t.data[off:]) }

// Font is a parsed TrueType program: the fields spec.md §4.6 lists as
// needed for PDF embedding, plus borrowed byte ranges for glyf/loca/hmtx
// used by the subset writer.
type Font struct {
	raw []byte

	UnitsPerEm        int
	IndexToLocFormat  int // 0 short, 1 long
	XMin, YMin        int16
	XMax, YMax        int16

	Ascent, Descent, LineGap int
	NumHMetrics              int

	CapHeight int // 0 if OS/2 absent or version < 2; caller defaults to 0.7*UnitsPerEm

	NumGlyphs int

	cmap map[rune]uint16

	hmtx table
	glyf table
	loca table
	maxp table
	head table
	hhea table

	tables map[string]tableRec
}

// Component is one entry of a composite glyph, with byte offsets into the
// raw glyf entry so the subset writer can patch glyphIx in place.
type Component struct {
	GlyphIndex uint16
	GlyphIxOff int // byte offset of the glyphIndex field within the glyph's raw bytes
	Flags      uint16
}

// ReadFont parses the table directory and the tables PDF embedding needs.
func ReadFont(data []byte) (*Font, error) {
	if len(data) < 12 {
		return nil, errors.New("pdfmill: truetype: file shorter than an sfnt header")
	}
	tag := string(data[:4])
	if tag != "\x00\x01\x00\x00" && tag != "true" {
		if tag == "OTTO" {
			return nil, errors.New("pdfmill: truetype: OpenType/CFF fonts are unsupported (non-goal)")
		}
		return nil, errors.Errorf("pdfmill: truetype: unrecognized sfnt version %q", tag)
	}
	numTables := int(binary.BigEndian.Uint16(data[4:]))
	if len(data) < 12+numTables*16 {
		return nil, errors.New("pdfmill: truetype: truncated table directory")
	}

	tables := make(map[string]tableRec, numTables)
	for i := 0; i < numTables; i++ {
		rec := data[12+i*16:]
		tag := string(rec[:4])
		chk := binary.BigEndian.Uint32(rec[4:])
		off := binary.BigEndian.Uint32(rec[8:])
		length := binary.BigEndian.Uint32(rec[12:])
		if int(off+length) > len(data) {
			return nil, errors.Errorf("pdfmill: truetype: table %q extends past end of file", tag)
		}
		tables[tag] = tableRec{tag: tag, chksum: chk, off: off, length: length}
	}

	f := &Font{raw: data, tables: tables}

	for _, req := range []string{"head", "hhea", "hmtx", "maxp", "glyf", "loca", "cmap"} {
		if _, ok := tables[req]; !ok {
			return nil, errors.Errorf("pdfmill: truetype: missing required table %q", req)
		}
	}

	f.head = f.tableBytes("head")
	f.hhea = f.tableBytes("hhea")
	f.hmtx = f.tableBytes("hmtx")
	f.maxp = f.tableBytes("maxp")
	f.glyf = f.tableBytes("glyf")
	f.loca = f.tableBytes("loca")

	if err := f.parseHead(); err != nil {
		return nil, err
	}
	if err := f.parseHhea(); err != nil {
		return nil, err
	}
	if err := f.parseMaxp(); err != nil {
		return nil, err
	}
	if rec, ok := tables["OS/2"]; ok {
		f.parseOS2(f.bytesOf(rec))
	}
	if err := f.parseCmap(); err != nil {
		return nil, err
	}

	return f, nil
}

func (f *Font) tableBytes(tag string) table {
	return table{data: f.bytesOf(f.tables[tag])}
}

func (f *Font) bytesOf(rec tableRec) []byte {
	return f.raw[rec.off : rec.off+rec.length]
}

func (f *Font) parseHead() error {
	t := f.head
	if len(t.data) < 54 {
		return errors.New("pdfmill: truetype: head table too short")
	}
	if t.u32(12) != ttfHeadMagic {
		return errors.New("pdfmill: truetype: head: bad magic number")
	}
	f.UnitsPerEm = int(t.u16(18))
	f.XMin = t.i16(36)
	f.YMin = t.i16(38)
	f.XMax = t.i16(40)
	f.YMax = t.i16(42)
	f.IndexToLocFormat = int(t.i16(50))
	return nil
}

func (f *Font) parseHhea() error {
	t := f.hhea
	if len(t.data) < 36 {
		return errors.New("pdfmill: truetype: hhea table too short")
	}
	f.Ascent = int(t.i16(4))
	f.Descent = int(t.i16(6))
	f.LineGap = int(t.i16(8))
	f.NumHMetrics = int(t.u16(34))
	return nil
}

func (f *Font) parseMaxp() error {
	t := f.maxp
	if len(t.data) < 6 {
		return errors.New("pdfmill: truetype: maxp table too short")
	}
	f.NumGlyphs = int(t.u16(4))
	return nil
}

func (f *Font) parseOS2(data []byte) {
	t := table{data: data}
	version := t.u16(0)
	if version >= 2 && len(data) >= 90 {
		f.CapHeight = int(t.i16(88))
	}
}

// GlyphRange returns the [from,thru) byte range of glyph gi within glyf,
// per loca's offset table (spec.md §4.6 ReadGlyph).
func (f *Font) GlyphRange(gi int) (from, thru int, err error) {
	if gi < 0 || gi > f.NumGlyphs {
		return 0, 0, errors.Errorf("pdfmill: truetype: glyph index %d out of range", gi)
	}
	if f.IndexToLocFormat == 0 {
		if 2*(gi+1)+1 >= len(f.loca.data) {
			return 0, 0, errors.New("pdfmill: truetype: loca truncated")
		}
		from = 2 * int(f.loca.u16(2*gi))
		thru = 2 * int(f.loca.u16(2*(gi+1)))
	} else {
		if 4*(gi+1)+3 >= len(f.loca.data) {
			return 0, 0, errors.New("pdfmill: truetype: loca truncated")
		}
		from = int(f.loca.u32(4 * gi))
		thru = int(f.loca.u32(4 * (gi + 1)))
	}
	if thru < from || thru > len(f.glyf.data) {
		return 0, 0, errors.Errorf("pdfmill: truetype: illegal glyf offset for glyph %d", gi)
	}
	return from, thru, nil
}

// GlyphBytes returns the raw glyf entry for gi (empty for a glyph with no
// outline, e.g. the space glyph).
func (f *Font) GlyphBytes(gi int) ([]byte, error) {
	from, thru, err := f.GlyphRange(gi)
	if err != nil {
		return nil, err
	}
	return f.glyf.data[from:thru], nil
}

// IsComposite reports whether a glyf entry (as returned by GlyphBytes) is a
// composite glyph (numberOfContours < 0).
func IsComposite(glyphBytes []byte) bool {
	return len(glyphBytes) >= 2 && int16(binary.BigEndian.Uint16(glyphBytes)) < 0
}

// Components walks a composite glyph's component records (spec.md §3:
// Component{glyphIx, flags, argA/argB, scales}).
func Components(glyphBytes []byte) []Component {
	var out []Component
	last := false
	for off := 10; !last && off+4 <= len(glyphBytes); {
		flags := binary.BigEndian.Uint16(glyphBytes[off:])
		last = flags&0x0020 == 0 // MORE_COMPONENTS
		wordArgs := flags&0x0001 != 0
		gi := binary.BigEndian.Uint16(glyphBytes[off+2:])
		out = append(out, Component{GlyphIndex: gi, GlyphIxOff: off + 2, Flags: flags})

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
		off = next
	}
	return out
}

// HMetric returns (advanceWidth, leftSideBearing) for glyph gi, per the
// standard hmtx rule that trailing glyphs beyond NumHMetrics repeat the
// last advance width.
func (f *Font) HMetric(gi int) (advance int, lsb int) {
	n := f.NumHMetrics
	if n == 0 {
		return 0, 0
	}
	if gi < n {
		return int(f.hmtx.u16(4 * gi)), int(f.hmtx.i16(4*gi + 2))
	}
	last := int(f.hmtx.u16(4 * (n - 1)))
	extra := gi - n
	lsbOff := 4*n + 2*extra
	if lsbOff+1 < len(f.hmtx.data) {
		lsb = int(f.hmtx.i16(lsbOff))
	}
	return last, lsb
}

// FindGlyph resolves a Unicode codepoint to a source glyph index via the
// cmap subtable parseCmap selected (the best-ranked by rankSubtable), or -1.
func (f *Font) FindGlyph(r rune) int {
	if gi, ok := f.cmap[r]; ok {
		return int(gi)
	}
	return -1
}
