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

package pdfdoc_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/barwood/pdfmill/pkg/pdfdoc"
)

// TestEmptyPageAssembly covers spec.md §8 scenario 6.
func TestEmptyPageAssembly(t *testing.T) {
	doc := pdfdoc.New(false)
	doc.SetTitle("X")
	doc.AddPage(pdfdoc.NewPage(612, 792))

	out, err := doc.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	if !bytes.HasSuffix(out, []byte("%%EOF\n")) {
		t.Fatal("file must end with %%EOF\\n")
	}
	s := string(out)
	if !strings.Contains(s, "/Root") || !strings.Contains(s, "/Info") {
		t.Fatal("trailer missing /Root or /Info")
	}
	// One page, one content stream, one Pages, one Catalog, one Info: 5 objects.
	if n := strings.Count(s, " 0 obj\n"); n != 5 {
		t.Fatalf("got %d objects, want 5 (pages, page, content, catalog, info)", n)
	}
	if !strings.Contains(s, "(X)") {
		t.Fatal("Title=X not found in Info dict")
	}
}

func TestXrefOffsetsPointAtObjHeaders(t *testing.T) {
	doc := pdfdoc.New(false)
	doc.AddPage(pdfdoc.NewPage(100, 100))
	out, err := doc.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}

	xrefStart := strings.Index(string(out), "\nxref\n")
	if xrefStart < 0 {
		t.Fatal("no xref section")
	}
	lines := strings.Split(string(out[xrefStart+1:]), "\n")
	// lines[0] = "xref", lines[1] = "0 N", lines[2] = free entry, lines[3..] = entries
	for _, line := range lines[3:] {
		if len(line) < 18 || line[17] != 'n' {
			continue
		}
		var off int
		if _, err := parseOffset(line, &off); err != nil {
			t.Fatalf("bad xref line %q: %v", line, err)
		}
		if off < 0 || off >= len(out) {
			t.Fatalf("offset %d out of range", off)
		}
		rest := string(out[off:])
		if !strings.Contains(rest[:min(len(rest), 20)], " 0 obj") {
			t.Fatalf("offset %d does not point at an object header: %q", off, rest[:min(len(rest), 20)])
		}
	}
}

func parseOffset(line string, out *int) (int, error) {
	n, err := fieldAtoi(line[:10])
	*out = n
	return n, err
}

func fieldAtoi(s string) (int, error) {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			continue
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}

func TestEscapePDFStringASCIIAndUnicode(t *testing.T) {
	if got := pdfdoc.EscapePDFString("X"); got != "(X)" {
		t.Fatalf("EscapePDFString(X) = %q, want (X)", got)
	}
	got := pdfdoc.EscapePDFString("café")
	if !strings.HasPrefix(got, "(\xFE\xFF") {
		t.Fatalf("non-ASCII string should start with a UTF-16BE BOM, got %q", got)
	}
}
