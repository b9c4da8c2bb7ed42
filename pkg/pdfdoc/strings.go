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
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// EscapePDFString renders s as a PDF string literal (spec.md §4.9): plain
// "(...)" with backslash/paren/CR escapes when every rune is ASCII,
// otherwise the raw UTF-16BE bytes, led by a FE FF byte-order mark, inside
// "(...)" with the same escapes. Text is first run through NFC
// normalization.
func EscapePDFString(s string) string {
	s = norm.NFC.String(s)

	ascii := true
	for _, r := range s {
		if r > 127 {
			ascii = false
			break
		}
	}

	var raw []byte
	if ascii {
		raw = []byte(s)
	} else {
		raw = utf16BEBytes(s)
	}

	var b strings.Builder
	b.WriteByte('(')
	for _, c := range raw {
		switch c {
		case '\\', '(', ')':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\r':
			b.WriteString(`\015`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte(')')
	return b.String()
}

func utf16BEBytes(s string) []byte {
	out := []byte{0xFE, 0xFF}
	for _, r := range s {
		if r <= 0xFFFF {
			out = append(out, byte(r>>8), byte(r))
			continue
		}
		r -= 0x10000
		hi := 0xD800 + (r >> 10)
		lo := 0xDC00 + (r & 0x3FF)
		out = append(out, byte(hi>>8), byte(hi), byte(lo>>8), byte(lo))
	}
	return out
}

// HexString renders b as a PDF hex string "<...>", the form spec.md §9
// recommends over a literal-string palette emitter for binary data.
func HexString(b []byte) string {
	var sb strings.Builder
	sb.WriteByte('<')
	for _, c := range b {
		fmt.Fprintf(&sb, "%02X", c)
	}
	sb.WriteByte('>')
	return sb.String()
}
