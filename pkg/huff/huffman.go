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

// Package huff builds RFC 1951 canonical, length-limited Huffman codes from
// symbol frequencies, falling back to package-merge whenever the
// unconstrained code would exceed the length limit.
package huff

import "github.com/pkg/errors"

// Coding is a length-limited canonical Huffman code over an alphabet of
// Count symbols. Bits[i] is the code length of symbol i (0 if unused);
// Code[i] is its canonical, bit-reversed code (bit 0 emitted first).
type Coding struct {
	Limit uint     // 7 or 15
	Count int      // alphabet size after trailing-zero truncation
	Used  []uint32 // frequency per symbol, len == original alphabet size
	Bits  []uint8
	Code  []uint16
}

// node is an entry in the flat binary-tree arrays used while assigning code
// lengths: node < leafCount addresses a leaf (symbol node), node >=
// leafCount addresses a synthesized branch. Using flat Left/Right arrays
// instead of allocated tree objects avoids one allocation per internal node
// (spec.md §9 design note).
type node struct {
	freq  uint64 // packed (frequency<<24 | depth<<16 | insertion id) while heapifying
	left  int32
	right int32
	depth int32
}

// minHeap is a binary min-heap over node indices, ordered by (freq, depth).
type minHeap struct {
	idx   []int32
	nodes []node
}

func (h *minHeap) less(a, b int32) bool {
	na, nb := h.nodes[a], h.nodes[b]
	if na.freq != nb.freq {
		return na.freq < nb.freq
	}
	return na.depth < nb.depth
}

func (h *minHeap) push(i int32) {
	h.idx = append(h.idx, i)
	c := len(h.idx) - 1
	for c > 0 {
		p := (c - 1) / 2
		if !h.less(h.idx[c], h.idx[p]) {
			break
		}
		h.idx[c], h.idx[p] = h.idx[p], h.idx[c]
		c = p
	}
}

func (h *minHeap) pop() int32 {
	top := h.idx[0]
	last := len(h.idx) - 1
	h.idx[0] = h.idx[last]
	h.idx = h.idx[:last]
	p := 0
	for {
		l, r := 2*p+1, 2*p+2
		smallest := p
		if l < len(h.idx) && h.less(h.idx[l], h.idx[smallest]) {
			smallest = l
		}
		if r < len(h.idx) && h.less(h.idx[r], h.idx[smallest]) {
			smallest = r
		}
		if smallest == p {
			break
		}
		h.idx[p], h.idx[smallest] = h.idx[smallest], h.idx[p]
		p = smallest
	}
	return top
}

// Build computes a length-limited canonical Huffman code for used[0..len)
// with code lengths capped at limit (7 or 15), per spec.md §4.2. Symbols
// with used[i]==0 get Bits[i]=0, except that an all-zero table gives
// symbol 0 a 1-bit code. The returned Count strips trailing zero-length
// symbols but never drops below minCount.
func Build(used []uint32, limit uint, minCount int) (*Coding, error) {
	n := len(used)
	c := &Coding{Limit: limit, Used: append([]uint32(nil), used...), Bits: make([]uint8, n), Code: make([]uint16, n)}

	var leaves []int32
	h := &minHeap{nodes: make([]node, 0, 2*n)}
	for i := 0; i < n; i++ {
		if used[i] == 0 {
			continue
		}
		idx := int32(len(h.nodes))
		h.nodes = append(h.nodes, node{freq: packFreq(uint64(used[i]), 0, uint64(idx)), left: -1, right: int32(i), depth: 0})
		leaves = append(leaves, idx)
	}

	if len(leaves) == 0 {
		c.Count = minCount
		if c.Count > 0 {
			c.Bits[0] = 1
			assignCanonicalCodes(c)
		}
		return c, nil
	}

	if len(leaves) == 1 {
		sym := h.nodes[leaves[0]].right
		c.Bits[sym] = 1
		c.Count = maxInt(int(sym)+1, minCount)
		assignCanonicalCodes(c)
		return c, nil
	}

	for _, l := range leaves {
		h.push(l)
	}

	nextID := int32(len(h.nodes))
	for len(h.idx) > 1 {
		a := h.pop()
		b := h.pop()
		na, nb := h.nodes[a], h.nodes[b]
		depth := na.depth
		if nb.depth > depth {
			depth = nb.depth
		}
		depth++
		freq := freqOf(na.freq) + freqOf(nb.freq)
		idx := int32(len(h.nodes))
		h.nodes = append(h.nodes, node{freq: packFreq(freq, uint64(depth), uint64(nextID)), left: a, right: b, depth: depth})
		nextID++
		h.push(idx)
	}

	root := h.idx[0]
	maxLen := walkLengths(h.nodes, root, 0, c.Bits)

	if uint(maxLen) > limit {
		if err := packageMerge(used, limit, c.Bits); err != nil {
			return nil, err
		}
		if !kraftSatisfied(c.Bits, limit, n) {
			return nil, errors.WithStack(errKraftViolation)
		}
	}

	count := 0
	for i := n - 1; i >= 0; i-- {
		if c.Bits[i] != 0 {
			count = i + 1
			break
		}
	}
	c.Count = maxInt(count, minCount)

	assignCanonicalCodes(c)
	return c, nil
}

func packFreq(freq, depth, id uint64) uint64 {
	// freq dominates comparison; depth breaks ties (shallower first to keep
	// the tree balanced, per spec.md §4.2); id makes the pack stable.
	return freq<<24 | (depth&0xFF)<<16 | (id & 0xFFFF)
}

func freqOf(packed uint64) uint64 { return packed >> 24 }

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// walkLengths assigns Bits[leaf]=depth for every leaf reachable from node,
// returning the maximum depth seen. Leaves are nodes whose right index
// addresses the original symbol and whose left is -1.
func walkLengths(nodes []node, idx int32, depth int, bits []uint8) int {
	n := nodes[idx]
	if n.left == -1 {
		bits[n.right] = uint8(depth)
		return depth
	}
	ml := walkLengths(nodes, n.left, depth+1, bits)
	mr := walkLengths(nodes, n.right, depth+1, bits)
	if mr > ml {
		return mr
	}
	return ml
}

// assignCanonicalCodes implements RFC 1951 §3.2.2: compute bl_count, derive
// next_code per length, assign codes MSB-first in symbol order, then
// bit-reverse each code into its final, LSB-first output form.
func assignCanonicalCodes(c *Coding) {
	var blCount [16]int
	maxBits := uint8(0)
	for i := 0; i < c.Count; i++ {
		b := c.Bits[i]
		if b > 0 {
			blCount[b]++
			if b > maxBits {
				maxBits = b
			}
		}
	}
	var nextCode [16]uint16
	code := uint16(0)
	for bits := uint8(1); bits <= maxBits; bits++ {
		code = (code + uint16(blCount[bits-1])) << 1
		nextCode[bits] = code
	}
	for i := 0; i < c.Count; i++ {
		b := c.Bits[i]
		if b == 0 {
			continue
		}
		raw := nextCode[b]
		nextCode[b]++
		c.Code[i] = bitReverse(raw, b)
	}
}

func bitReverse(v uint16, bits uint8) uint16 {
	var r uint16
	for i := uint8(0); i < bits; i++ {
		r = (r << 1) | (v & 1)
		v >>= 1
	}
	return r
}

// KraftSatisfied reports whether the Kraft inequality holds exactly or with
// slack at the coding's length limit: sum(2^(limit-bits[i])) <= 2^limit.
func (c *Coding) KraftSatisfied() bool {
	var sum uint64
	for i := 0; i < c.Count; i++ {
		if c.Bits[i] == 0 {
			continue
		}
		sum += uint64(1) << (c.Limit - uint(c.Bits[i]))
	}
	return sum <= uint64(1)<<c.Limit
}

// MaxBits returns the longest assigned code length.
func (c *Coding) MaxBits() uint8 {
	var m uint8
	for i := 0; i < c.Count; i++ {
		if c.Bits[i] > m {
			m = c.Bits[i]
		}
	}
	return m
}

func kraftSatisfied(bitsArr []uint8, limit uint, n int) bool {
	var sum uint64
	for i := 0; i < n; i++ {
		if bitsArr[i] == 0 {
			continue
		}
		sum += uint64(1) << (limit - uint(bitsArr[i]))
	}
	return sum <= uint64(1)<<limit
}

var errKraftViolation = errors.New("pdfmill: huff: package-merge failed to satisfy the Kraft inequality")
