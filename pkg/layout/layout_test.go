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

package layout_test

import (
	"strings"
	"testing"

	"github.com/barwood/pdfmill/pkg/layout"
)

// recorder is a minimal layout.Sink that just logs Txt calls, enough to
// assert wrapping behavior without a real PDF content stream.
type recorder struct {
	lines []string
}

func (r *recorder) SetFont(name string, size float64) {}
func (r *recorder) SetSuper(rise float64)              {}
func (r *recorder) SetColor(rr, g, b float64)          {}
func (r *recorder) MoveTo(x, y float64)                {}
func (r *recorder) BeginText()                         {}
func (r *recorder) EndText()                           {}
func (r *recorder) Txt(s string)                       { r.lines = append(r.lines, s) }

func TestTxtWrapsAtColumnWidth(t *testing.T) {
	rec := &recorder{}
	pages := 0
	eng := layout.NewEngine(rec, nil, 0, 0, 40, 12, func() { pages++ })
	eng.SetFont("F1", 10)
	eng.Txt(strings.Repeat("m", 40))

	if len(rec.lines) < 2 {
		t.Fatalf("expected wrapping into multiple lines, got %v", rec.lines)
	}
}

func TestTxtKeepsGraphemeClustersIntact(t *testing.T) {
	rec := &recorder{}
	eng := layout.NewEngine(rec, nil, 0, 0, 1000, 12, nil)
	eng.SetFont("F1", 10)
	// family emoji with ZWJ joiners: must never split mid-cluster.
	s := "a\U0001F468‍\U0001F469‍\U0001F467b"
	eng.Txt(s)

	joined := strings.Join(rec.lines, "")
	if joined != s {
		t.Fatalf("got %q, want %q (clusters must not be dropped or split)", joined, s)
	}
}

func TestNewPageInvokedOnOverflow(t *testing.T) {
	rec := &recorder{}
	pages := 0
	eng := layout.NewEngine(rec, nil, 0, 0, 10, 1e30, func() { pages++ })
	eng.SetFont("F1", 10)
	eng.NewLine()
	if pages != 1 {
		t.Fatalf("expected NewPage hook to fire once, got %d calls", pages)
	}
}
