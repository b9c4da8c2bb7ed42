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

package deflate

import (
	"math/rand"
	"testing"
)

// TestMatchInvariants checks spec.md §8: for every emitted match at
// position p with (length l, distance d): p-d >= 0, d in [1,32768],
// l in [3,258], and the referenced bytes actually agree.
func TestMatchInvariants(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	in := make([]byte, 20000)
	for i := range in {
		if i > 0 && r.Intn(3) == 0 {
			in[i] = in[i-1-r.Intn(min(i, 2000))]
		} else {
			in[i] = byte(r.Intn(10))
		}
	}

	ms := Matches(in)
	pos := 0
	for _, m := range ms {
		if m.Pos != pos {
			t.Fatalf("records not contiguous: expected pos %d, got %d", pos, m.Pos)
		}
		if m.Length == 0 {
			pos++
			continue
		}
		if m.Length < 3 || m.Length > 258 {
			t.Fatalf("length %d out of [3,258] at pos %d", m.Length, m.Pos)
		}
		if m.Distance < 1 || m.Distance > 32768 {
			t.Fatalf("distance %d out of [1,32768] at pos %d", m.Distance, m.Pos)
		}
		if m.Pos-m.Distance < 0 {
			t.Fatalf("distance %d reaches before input start at pos %d", m.Distance, m.Pos)
		}
		if m.Pos+m.Length > len(in) {
			t.Fatalf("match at %d length %d reads past input end", m.Pos, m.Length)
		}
		for k := 0; k < m.Length; k++ {
			if in[m.Pos+k] != in[m.Pos-m.Distance+k] {
				t.Fatalf("match bytes disagree at pos %d offset %d", m.Pos, k)
			}
		}
		pos += m.Length
	}
	if pos != len(in) {
		t.Fatalf("records cover %d bytes, want %d", pos, len(in))
	}
}
