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

	"github.com/barwood/pdfmill/internal/testimg"
	"github.com/barwood/pdfmill/pkg/pdfdoc"
)

// TestPutPNGImageICCProfileEmitsICCBased covers spec.md §4.8's deferred
// /ICCBased placeholder: a PNG carrying a channel-count-matching iCCP
// profile gets a /ColorSpace[/ICCBased ...] entry and a separate profile
// stream object with /N and /Alternate.
func TestPutPNGImageICCProfileEmitsICCBased(t *testing.T) {
	doc := pdfdoc.New(false)
	page := pdfdoc.NewPage(100, 100)
	doc.AddPage(page)

	id, err := doc.PutPNGImage(bytes.NewReader(testimg.PNGWithICCProfile()))
	if err != nil {
		t.Fatalf("PutPNGImage: %v", err)
	}
	if id == 0 {
		t.Fatal("expected a non-zero image object id")
	}

	out, err := doc.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, "/ColorSpace [/ICCBased") {
		t.Fatalf("missing /ColorSpace [/ICCBased entry:\n%s", s)
	}
	if !strings.Contains(s, "/N 3/Alternate /DeviceRGB") {
		t.Fatalf("missing ICC profile stream dict:\n%s", s)
	}
}
