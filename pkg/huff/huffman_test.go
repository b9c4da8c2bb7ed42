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

package huff

import (
	"math/rand"
	"testing"
)

func TestSingleSymbol(t *testing.T) {
	used := make([]uint32, 288)
	used[42] = 100
	c, err := Build(used, 15, 257)
	if err != nil {
		t.Fatal(err)
	}
	if c.Bits[42] != 1 {
		t.Fatalf("want bits=1 for the sole symbol, got %d", c.Bits[42])
	}
}

func TestKraftInequalityHolds(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for trial := 0; trial < 50; trial++ {
		n := 20 + r.Intn(280)
		used := make([]uint32, n)
		for i := range used {
			if r.Intn(4) != 0 {
				used[i] = uint32(1 + r.Intn(1<<20))
			}
		}
		c, err := Build(used, 15, 1)
		if err != nil {
			t.Fatalf("trial %d: %v", trial, err)
		}
		if c.MaxBits() > 15 {
			t.Fatalf("trial %d: maxBits=%d exceeds limit", trial, c.MaxBits())
		}
		if !c.KraftSatisfied() {
			t.Fatalf("trial %d: Kraft inequality violated", trial)
		}
	}
}

func TestLimit7SkewedDistribution(t *testing.T) {
	// A highly skewed frequency table forces lengths past 7 without
	// package-merge; verify it kicks in and respects the limit.
	n := 19
	used := make([]uint32, n)
	freq := uint32(1)
	for i := 0; i < n; i++ {
		used[i] = freq
		freq *= 2
	}
	c, err := Build(used, 7, 4)
	if err != nil {
		t.Fatal(err)
	}
	if c.MaxBits() > 7 {
		t.Fatalf("maxBits=%d exceeds limit 7", c.MaxBits())
	}
	if !c.KraftSatisfied() {
		t.Fatal("Kraft inequality violated at limit 7")
	}
}

func TestCanonicalCodesConsecutiveBeforeReversal(t *testing.T) {
	used := []uint32{5, 0, 3, 2, 1, 0, 4}
	c, err := Build(used, 15, 1)
	if err != nil {
		t.Fatal(err)
	}
	// Re-derive the pre-reversal codes grouped by length and check they are
	// consecutive, ascending, in symbol order, matching RFC 1951 §3.2.2.
	byLen := map[uint8][]uint16{}
	for i := 0; i < c.Count; i++ {
		if c.Bits[i] == 0 {
			continue
		}
		byLen[c.Bits[i]] = append(byLen[c.Bits[i]], bitReverse(c.Code[i], c.Bits[i]))
	}
	for _, codes := range byLen {
		for i := 1; i < len(codes); i++ {
			if codes[i] != codes[i-1]+1 {
				t.Fatalf("codes not consecutive: %v", codes)
			}
		}
	}
}

func TestDistAlphabetMinCount(t *testing.T) {
	used := make([]uint32, 32)
	c, err := Build(used, 15, 1)
	if err != nil {
		t.Fatal(err)
	}
	if c.Count != 1 {
		t.Fatalf("want Count=1 for an all-zero Dist alphabet, got %d", c.Count)
	}
}
