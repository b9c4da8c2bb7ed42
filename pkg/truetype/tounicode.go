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
	"fmt"
	"sort"
	"strings"
)

// ToUnicodeCMap builds the CMap stream content for a /ToUnicode entry
// (spec.md §4.7): bfchar blocks of at most 100 entries each, mapping each
// new glyph index in byNewGI back to the Unicode codepoint it was added
// for. No bfrange is emitted, and glyph indices absent from byNewGI (such
// as composite components added by closure) get no mapping.
//
// byNewGI need not be contiguous or sorted; the caller (the subset
// session) supplies whatever runes it resolved through AddRune.
func ToUnicodeCMap(byNewGI map[int]rune) string {
	gis := make([]int, 0, len(byNewGI))
	for gi := range byNewGI {
		gis = append(gis, gi)
	}
	sort.Ints(gis)

	var b strings.Builder
	b.WriteString(cmapPreamble)

	const chunk = 100
	for i := 0; i < len(gis); i += chunk {
		end := min(i+chunk, len(gis))
		fmt.Fprintf(&b, "%d beginbfchar\n", end-i)
		for _, gi := range gis[i:end] {
			fmt.Fprintf(&b, "<%04X> <%s>\n", gi, utf16HexOf(byNewGI[gi]))
		}
		b.WriteString("endbfchar\n")
	}

	b.WriteString(cmapPostamble)
	return b.String()
}

func utf16HexOf(r rune) string {
	if r <= 0xFFFF {
		return fmt.Sprintf("%04X", r)
	}
	r -= 0x10000
	hi := 0xD800 + (r >> 10)
	lo := 0xDC00 + (r & 0x3FF)
	return fmt.Sprintf("%04X%04X", hi, lo)
}

const cmapPreamble = `/CIDInit /ProcSet findresource begin
12 dict begin
begincmap
/CIDSystemInfo
<< /Registry (Adobe)
/Ordering (UCS)
/Supplement 0
>> def
/CMapName /Adobe-Identity-UCS def
/CMapType 2 def
1 begincodespacerange
<0000> <FFFF>
endcodespacerange
`

const cmapPostamble = `endcmap
CMapName currentdict /CMap defineresource pop
end
end
`
