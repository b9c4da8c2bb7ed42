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
	"github.com/pkg/errors"
)

// parseCmap picks the best available (platformID, encodingID) subtable —
// preferring Windows BMP (3,1), then Windows full Unicode (3,10), then
// Unicode platform (0,*) — and decodes formats 4, 6 and 12 into f.cmap.
// Symbol cmaps (3,0) and other platforms are skipped; if the selected
// subtable is in any other format, parseCmap returns an error. A font with
// none of the preferred subtables yields an empty, always-missing cmap
// rather than an error, since PDF embedding can still proceed
// glyph-index-first.
func (f *Font) parseCmap() error {
	t := f.tableBytes("cmap")
	if len(t.data) < 4 {
		return errors.New("pdfmill: truetype: cmap table too short")
	}
	numSub := int(t.u16(2))
	if len(t.data) < 4+numSub*8 {
		return errors.New("pdfmill: truetype: cmap subtable directory truncated")
	}

	type candidate struct {
		plat, enc int
		off       int
		rank      int
	}
	var best *candidate
	for i := 0; i < numSub; i++ {
		rec := t.data[4+i*8:]
		plat := int(u16at(rec, 0))
		enc := int(u16at(rec, 2))
		off := int(u32at(rec, 4))
		rank := rankSubtable(plat, enc)
		if rank < 0 {
			continue
		}
		if best == nil || rank < best.rank {
			best = &candidate{plat: plat, enc: enc, off: off, rank: rank}
		}
	}
	f.cmap = map[rune]uint16{}
	if best == nil {
		return nil
	}
	if best.off >= len(t.data) {
		return errors.New("pdfmill: truetype: cmap subtable offset out of range")
	}
	sub := t.data[best.off:]
	format := u16at(sub, 0)
	switch format {
	case 4:
		parseCmapFormat4(sub, f.cmap)
	case 6:
		parseCmapFormat6(sub, f.cmap)
	case 12:
		parseCmapFormat12(sub, f.cmap)
	default:
		return errors.Errorf("pdfmill: truetype: unsupported cmap subtable format %d", format)
	}
	return nil
}

func rankSubtable(plat, enc int) int {
	switch {
	case plat == 3 && enc == 1:
		return 0
	case plat == 3 && enc == 10:
		return 1
	case plat == 0:
		return 2
	default:
		return -1
	}
}

func u16at(b []byte, off int) uint16 { return uint16(b[off])<<8 | uint16(b[off+1]) }
func u32at(b []byte, off int) uint32 {
	return uint32(b[off])<<24 | uint32(b[off+1])<<16 | uint32(b[off+2])<<8 | uint32(b[off+3])
}

func parseCmapFormat4(b []byte, out map[rune]uint16) {
	segX2 := int(u16at(b, 6))
	segCount := segX2 / 2
	endBase := 14
	startBase := endBase + segX2 + 2
	deltaBase := startBase + segX2
	rangeBase := deltaBase + segX2

	for s := 0; s < segCount; s++ {
		end := u16at(b, endBase+2*s)
		start := u16at(b, startBase+2*s)
		delta := int16(u16at(b, deltaBase+2*s))
		rangeOff := u16at(b, rangeBase+2*s)
		if start == 0xFFFF && end == 0xFFFF {
			continue
		}
		for c := uint32(start); c <= uint32(end); c++ {
			var gi uint16
			if rangeOff == 0 {
				gi = uint16(uint32(int32(c) + int32(delta)))
			} else {
				idx := rangeBase + 2*s + int(rangeOff) + 2*int(c-uint32(start))
				if idx+1 >= len(b) {
					continue
				}
				g := u16at(b, idx)
				if g == 0 {
					continue
				}
				gi = uint16(uint32(int32(g) + int32(delta)))
			}
			if gi != 0 {
				out[rune(c)] = gi
			}
			if c == 0xFFFF {
				break
			}
		}
	}
}

func parseCmapFormat6(b []byte, out map[rune]uint16) {
	first := u16at(b, 6)
	count := u16at(b, 8)
	for i := 0; i < int(count); i++ {
		gi := u16at(b, 10+2*i)
		if gi != 0 {
			out[rune(int(first)+i)] = gi
		}
	}
}

func parseCmapFormat12(b []byte, out map[rune]uint16) {
	numGroups := u32at(b, 12)
	for g := uint32(0); g < numGroups; g++ {
		rec := b[16+g*12:]
		startChar := u32at(rec, 0)
		endChar := u32at(rec, 4)
		startGlyph := u32at(rec, 8)
		for c := startChar; c <= endChar; c++ {
			out[rune(c)] = uint16(startGlyph + (c - startChar))
			if c == 0xFFFFFFFF {
				break
			}
		}
	}
}
