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
	"github.com/barwood/pdfmill/pkg/bitio"
	"github.com/barwood/pdfmill/pkg/huff"
)

// matchFeed abstracts over the source of match records so the block
// planner doesn't care whether it's reading a fully materialized slice
// (single-threaded path) or a live ring buffer fed by a matcher goroutine
// (driver.go, threaded path). At(i) blocks, in the threaded case, until
// record i has been published or the feed is known to be shorter than i.
type matchFeed interface {
	At(i int) (match, bool)
}

type sliceFeed struct{ records []match }

func (f sliceFeed) At(i int) (match, bool) {
	if i >= len(f.records) {
		return match{}, false
	}
	return f.records[i], true
}

// rleItem is one symbol of the code-length alphabet (RFC 1951 §3.2.7): a
// literal length 0..15, or a repeat code 16/17/18 with its extra-bit value.
type rleItem struct {
	sym   int
	extra uint16
	bits  uint
}

// rleEncodeCodeLengths applies the RFC 1951 run-length scheme to the
// concatenation of Lit and Dist code lengths, per spec.md §4.4 step 3/6.
func rleEncodeCodeLengths(lengths []uint8) []rleItem {
	var out []rleItem
	n := len(lengths)
	for i := 0; i < n; {
		v := lengths[i]
		runLen := 1
		for i+runLen < n && lengths[i+runLen] == v {
			runLen++
		}
		remaining := runLen

		if v == 0 {
			for remaining > 0 {
				switch {
				case remaining >= 11:
					take := remaining
					if take > 138 {
						take = 138
					}
					out = append(out, rleItem{sym: 18, extra: uint16(take - 11), bits: 7})
					remaining -= take
				case remaining >= 3:
					take := remaining
					if take > 10 {
						take = 10
					}
					out = append(out, rleItem{sym: 17, extra: uint16(take - 3), bits: 3})
					remaining -= take
				default:
					out = append(out, rleItem{sym: 0})
					remaining--
				}
			}
		} else {
			out = append(out, rleItem{sym: int(v)})
			remaining--
			for remaining > 0 {
				take := remaining
				if take > 6 {
					take = 6
				}
				if take < 3 {
					for k := 0; k < take; k++ {
						out = append(out, rleItem{sym: int(v)})
					}
				} else {
					out = append(out, rleItem{sym: 16, extra: uint16(take - 3), bits: 2})
				}
				remaining -= take
			}
		}
		i += runLen
	}
	return out
}

// block is one candidate DEFLATE dynamic block, spanning byte offsets
// [start,end) and match-record indices [iStart,iEnd) (spec.md §3: Block).
type block struct {
	input        []byte
	feed         matchFeed
	start, end   int
	iStart, iEnd int
	lit, dist    *huff.Coding
	ln           *huff.Coding
	rle          []rleItem
	hclen        int
	bits         uint64 // total bit cost including header, excluding match extra bits
}

// buildBlock scans matches starting at record index iStart, input offset
// start, accumulating frequency tallies until a record's position reaches
// end (or the feed is exhausted), then runs GetBits (spec.md §4.4 steps
// 2-3).
func buildBlock(feed matchFeed, input []byte, iStart, start, end int, isFinal bool) *block {
	b := &block{input: input, feed: feed, start: start, iStart: iStart, end: end}

	litUsed := make([]uint32, litAlphabetSize)
	distUsed := make([]uint32, distAlphabetSize)

	i := iStart
	for {
		rec, ok := feed.At(i)
		if !ok || rec.Pos >= end {
			break
		}
		if rec.Length == 0 {
			litUsed[input[rec.Pos]]++
		} else {
			lc := lengthCode(rec.Length)
			litUsed[257+lc]++
			dc := distCode(rec.Distance)
			distUsed[dc]++
		}
		i++
	}
	b.iEnd = i
	litUsed[endOfBlockSymbol]++

	b.getBits(litUsed, distUsed)
	return b
}

// getBits computes the Lit/Dist/Len Huffman codings and RLE item list and
// stores in b.bits the total bit cost of the dynamic-block header plus
// payload, excluding extra bits for match length/distance (spec.md §4.4
// step 3). A record's extra bits are the same in whichever block carries
// it, so leaving them out does not change any merge or boundary-tuning
// comparison.
func (b *block) getBits(litUsed, distUsed []uint32) {
	lit, err := huff.Build(litUsed, 15, 257)
	if err != nil {
		panic(err) // EncodingInvariantViolation: package-merge must always resolve.
	}
	dist, err := huff.Build(distUsed, 15, 1)
	if err != nil {
		panic(err)
	}
	b.lit, b.dist = lit, dist

	lengths := make([]uint8, lit.Count+dist.Count)
	copy(lengths, lit.Bits[:lit.Count])
	copy(lengths[lit.Count:], dist.Bits[:dist.Count])

	rle := rleEncodeCodeLengths(lengths)
	b.rle = rle

	lnUsed := make([]uint32, clenAlphabetSize)
	for _, item := range rle {
		lnUsed[item.sym]++
	}
	ln, err := huff.Build(lnUsed, 7, 4)
	if err != nil {
		panic(err)
	}
	// Trim Len.Count down to >= 4, stripping trailing zeros in clenAlphabet
	// permuted order (spec.md §4.4 step 3).
	hclen := 19
	for hclen > 4 && ln.Bits[clenAlphabet[hclen-1]] == 0 {
		hclen--
	}
	b.ln = ln

	var bits uint64
	bits += 3                              // block header: last + btype
	bits += 5 + 5 + 4                       // HLIT, HDIST, HCLEN
	bits += uint64(hclen) * 3              // code-length code lengths
	for _, item := range rle {
		bits += uint64(ln.Bits[item.sym]) + uint64(item.bits)
	}

	i := b.iStart
	for {
		rec, ok := b.feed.At(i)
		if !ok || rec.Pos >= b.end {
			break
		}
		if rec.Length == 0 {
			bits += uint64(lit.Bits[b.input[rec.Pos]])
		} else {
			lc := lengthCode(rec.Length)
			dc := distCode(rec.Distance)
			bits += uint64(lit.Bits[257+lc])
			bits += uint64(dist.Bits[dc])
		}
		i++
	}
	bits += uint64(lit.Bits[endOfBlockSymbol])

	b.hclen = hclen
	b.bits = bits
}

func (b *block) hclenField() int { return b.hclen }

// emit writes the complete dynamic block (header, trees, payload, EOB) to
// sink. last marks the final block of the stream (spec.md §4.4 step 6-7).
func (b *block) emit(sink *bitio.Sink, last bool) {
	if last {
		sink.WriteBits(1, 1)
	} else {
		sink.WriteBits(0, 1)
	}
	sink.WriteBits(2, 2) // btype = 2, dynamic Huffman

	sink.WriteBits(uint64(b.lit.Count-257), 5)
	sink.WriteBits(uint64(b.dist.Count-1), 5)
	sink.WriteBits(uint64(b.hclen-4), 4)

	for i := 0; i < b.hclen; i++ {
		sink.WriteBits(uint64(b.ln.Bits[clenAlphabet[i]]), 3)
	}

	for _, item := range b.rle {
		sink.WriteBits(uint64(b.ln.Code[item.sym]), uint(b.ln.Bits[item.sym]))
		if item.bits > 0 {
			sink.WriteBits(uint64(item.extra), item.bits)
		}
	}

	i := b.iStart
	for {
		rec, ok := b.feed.At(i)
		if !ok || rec.Pos >= b.end {
			break
		}
		if rec.Length == 0 {
			sym := int(b.input[rec.Pos])
			sink.WriteBits(uint64(b.lit.Code[sym]), uint(b.lit.Bits[sym]))
		} else {
			lc := lengthCode(rec.Length)
			dc := distCode(rec.Distance)
			sink.WriteBits(uint64(b.lit.Code[257+lc]), uint(b.lit.Bits[257+lc]))
			if matchExtra[lc] > 0 {
				sink.WriteBits(uint64(rec.Length-matchOff[lc]), matchExtra[lc])
			}
			sink.WriteBits(uint64(b.dist.Code[dc]), uint(b.dist.Bits[dc]))
			if distExtra[dc] > 0 {
				sink.WriteBits(uint64(rec.Distance-distOff[dc]), distExtra[dc])
			}
		}
		i++
	}

	sink.WriteBits(uint64(b.lit.Code[endOfBlockSymbol]), uint(b.lit.Bits[endOfBlockSymbol]))
}
