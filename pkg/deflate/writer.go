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

// Package deflate implements an RFC 1951 dynamic-Huffman DEFLATE encoder
// with an optional RFC 1950 zlib wrapper, tuned for PDF's embedded stream
// compression rather than general-purpose throughput: length-limited
// package-merge Huffman codes, lazy-matching LZ77 with a bounded hash
// chain, and block-boundary merging/tuning across variable-sized blocks
// (spec.md §4.1-4.5).
package deflate

import "github.com/barwood/pdfmill/pkg/bitio"

// Options tunes the encoder. DefaultOptions returns the spec.md §4.4
// default: StartBlockSize 4096, dynamic block sizing on, boundary tuning
// off, threaded off, no zlib wrapper. In the zero value DynamicBlocks is
// false; a StartBlockSize <= 0 falls back to 4096.
type Options struct {
	StartBlockSize int  // default 4096 if <= 0
	DynamicBlocks  bool // allow the doubling-merge step; true is the spec default
	BoundaryTuning bool // optional cross-block boundary tuning (spec.md §4.4 step 5)
	Threaded       bool // split matching and block planning across two goroutines
	ZlibWrap       bool // prepend 0x78 0x9C and append a big-endian Adler-32 trailer
}

// DefaultOptions returns the spec.md §4.4 defaults.
func DefaultOptions() Options {
	return Options{StartBlockSize: 4096, DynamicBlocks: true}
}

// Compress deflates input per opts and returns the encoded bytes. It never
// fails on valid input (spec.md §7): the only error path is an internal
// package-merge failure to satisfy Kraft's inequality, which is an
// EncodingInvariantViolation bug, not a caller-triggerable condition.
func Compress(input []byte, opts Options) []byte {
	if opts.StartBlockSize <= 0 {
		opts.StartBlockSize = 4096
	}

	sink := bitio.NewSink(len(input)/2 + 64)

	if opts.ZlibWrap {
		sink.WriteBits(0x9C78, 16) // 0x78 0x9C, little-endian bit order within the byte pair
	}

	var feed matchFeed
	if opts.Threaded && len(input) > opts.StartBlockSize {
		feed = runThreaded(input)
	} else {
		feed = sliceFeed{records: Matches(input)}
	}

	planBlocks(sink, input, feed, opts)

	out := sink.Bytes()

	if opts.ZlibWrap {
		a := Adler32(input)
		out = append(out,
			byte(a>>24), byte(a>>16), byte(a>>8), byte(a),
		)
	}

	return out
}

// planBlocks runs the block-sizing/doubling/emission loop of spec.md §4.4.
func planBlocks(sink *bitio.Sink, input []byte, feed matchFeed, opts Options) {
	n := len(input)

	if n == 0 {
		// Empty input: a single final empty dynamic block with just the
		// end-of-block code (spec.md §8 boundary behavior).
		b := buildBlock(feed, input, 0, 0, 0, true)
		b.emit(sink, true)
		return
	}

	finished := 0
	iStart := 0
	size := opts.StartBlockSize

	for finished < n {
		cur := buildBlockCapped(feed, input, iStart, finished, size, n)

		if opts.DynamicBlocks {
			for cur.end < n {
				nextSize := cur.end - cur.start
				if cur.end+nextSize > n {
					nextSize = n - cur.end
				}
				if nextSize <= 0 {
					break
				}
				next := buildBlockCapped(feed, input, cur.iEnd, cur.end, nextSize, n)
				merged := buildBlockCapped(feed, input, cur.iStart, cur.start, (cur.end+next.end)-cur.start, n)
				if merged.bits <= cur.bits+next.bits {
					cur = merged
				} else {
					break
				}
			}
		}

		if opts.BoundaryTuning && cur.end < n {
			cur = tuneBoundary(feed, input, cur, n)
		}

		isLast := cur.end >= n
		cur.emit(sink, isLast)

		finished = cur.end
		iStart = cur.iEnd
		size = opts.StartBlockSize
	}
}

// buildBlockCapped builds a block of the requested size, capping it to the
// remaining input (spec.md §4.4 step 1: "Size = StartBlockSize capped by
// outstanding buffered bytes").
func buildBlockCapped(feed matchFeed, input []byte, iStart, start, size, n int) *block {
	end := start + size
	if end > n {
		end = n
	}
	return buildBlock(feed, input, iStart, start, end, end >= n)
}

// tuneBoundary is the best-effort cross-block boundary tuning step: it
// extends cur's End by up to 32 matcher records into the following span,
// builds new Huffman codings over the extended span, and keeps the
// extension only if that block costs no more bits than cur plus a separate
// block over the extension. cur's existing coding is not used to price the
// extension.
func tuneBoundary(feed matchFeed, input []byte, cur *block, n int) *block {
	const lookaheadRecords = 32

	probeEnd := cur.end
	i := cur.iEnd
	extended := 0
	for extended < lookaheadRecords {
		rec, ok := feed.At(i)
		if !ok || rec.Pos >= n {
			break
		}
		adv := 1
		if rec.Length > 0 {
			adv = rec.Length
		}
		probeEnd = rec.Pos + adv
		i++
		extended++
		if probeEnd >= n {
			break
		}
	}
	if probeEnd <= cur.end {
		return cur
	}

	extendedBlock := buildBlock(feed, input, cur.iStart, cur.start, probeEnd, probeEnd >= n)
	freshBlock := buildBlockCapped(feed, input, cur.iEnd, cur.end, probeEnd-cur.end, n)

	if extendedBlock.bits <= cur.bits+freshBlock.bits {
		return extendedBlock
	}
	return cur
}
