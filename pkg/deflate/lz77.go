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

const (
	minMatch    = 3
	maxMatch    = 258
	maxDistance = 32768
	// encodeOffset biases hash-table entries so the default zero value of
	// an empty bucket reads as "farther than any real match" (spec.md §4.3).
	encodeOffset = 32769
)

// match is a single LZ77 back-reference or literal run boundary found by
// the matcher: either Length==0 (no match at this position, advance by one
// literal) or Length in [3,258] with Distance in [1,32768].
type match struct {
	Pos      int
	Length   int
	Distance int
}

// matcher implements the three-byte rolling-hash, linked-predecessor-chain
// lazy LZ77 search of spec.md §4.3.
type matcher struct {
	input     []byte
	hashShift uint
	hashMask  int
	hashTable []int32
	link      []int32
	maxChain  int
}

// newMatcher sizes the hash table so that 3*hashShift <= 18, capping at 6,
// per spec.md §4.3.
func newMatcher(input []byte) *matcher {
	shift := uint(6)
	for shift > 1 && (1<<(3*shift)) > len(input)*2+1024 {
		shift--
	}
	if 3*shift > 18 {
		shift = 6
	}
	mask := (1 << (3 * shift)) - 1
	m := &matcher{
		input:     input,
		hashShift: shift,
		hashMask:  mask,
		hashTable: make([]int32, mask+1),
		link:      make([]int32, len(input)),
		maxChain:  128,
	}
	return m
}

func (m *matcher) hashAt(pos int) int {
	// Rolling hash over 3 bytes; simple shift-and-xor mix kept within
	// hashMask, matching the "three-byte rolling hash" contract without
	// depending on any particular mixing constant.
	h := int(m.input[pos])
	h = (h<<5 ^ int(m.input[pos+1])) & m.hashMask
	h = (h<<5 ^ int(m.input[pos+2])) & m.hashMask
	return h & m.hashMask
}

// bestMatch follows the link chain starting at oldPosition, comparing
// bytes against input[pos:] and keeping the longest match found (ties
// broken toward the smaller distance, i.e. the first candidate seen since
// the chain walks nearest-first).
func (m *matcher) bestMatch(pos, oldPosition int) (length, distance int) {
	avail := maxMatch
	if rem := len(m.input) - pos; rem < avail {
		avail = rem
	}
	if avail < minMatch {
		return 0, 0
	}

	cand := int32(oldPosition)
	chain := 0
	bestLen := 0
	bestDist := 0

	for cand >= 0 && pos > int(cand) && chain < m.maxChain {
		dist := pos - int(cand)
		if dist > maxDistance {
			break
		}
		l := matchLen(m.input, int(cand), pos, avail)
		if l > bestLen || (l == bestLen && dist < bestDist) {
			bestLen, bestDist = l, dist
		}
		if bestLen >= avail {
			break
		}
		cand = m.link[cand]
		chain++
	}

	if bestLen < minMatch {
		return 0, 0
	}
	return bestLen, bestDist
}

func matchLen(b []byte, from, to, avail int) int {
	n := 0
	for n < avail && b[from+n] == b[to+n] {
		n++
	}
	return n
}

// insert records position's hash bucket entry and returns the previous
// occupant (0 if none was in range), chaining link[position] to it when an
// in-range predecessor exists.
func (m *matcher) insert(position int) (prevInRange bool, prev int) {
	if position+2 >= len(m.input) {
		return false, 0
	}
	h := m.hashAt(position)
	head := m.hashTable[h]
	m.hashTable[h] = int32(position + encodeOffset)
	if int(head) == 0 || position < int(head)-encodeOffset {
		return false, 0
	}
	prev = int(head) - encodeOffset
	m.link[position] = int32(prev)
	return true, prev
}

// Matches runs the full lazy-matching pass over the matcher's input and
// returns the resulting sequence of literal/match records in position
// order, suitable for feeding directly into the ring buffer consumed by
// the block planner (spec.md §4.3 steps 1-6).
func Matches(input []byte) []match {
	var out []match
	runMatcher(input, func(m match) { out = append(out, m) })
	return out
}

// runMatcher executes the lazy LZ77 search of spec.md §4.3 over input,
// invoking emit once per literal/match record in strictly increasing
// position order. It is the shared core behind both the single-threaded
// Matches and the threaded driver's producer goroutine (driver.go), which
// calls emit with a function that publishes into the shared ring buffer
// instead of appending to a slice.
func runMatcher(input []byte, emit func(match)) {
	if len(input) < minMatch {
		for i := range input {
			emit(match{Pos: i})
		}
		return
	}

	m := newMatcher(input)
	pos := 0
	n := len(input)

	for pos < n-2 {
		inRange, prev := m.insert(pos)
		if !inRange {
			emit(match{Pos: pos})
			pos++
			continue
		}

		length, dist := m.bestMatch(pos, prev)
		if length < minMatch {
			emit(match{Pos: pos})
			pos++
			continue
		}

		// Lazy step: peek at pos+1 before committing.
		if pos+1 < n-2 {
			inRange2, prev2 := m.insert(pos + 1)
			if inRange2 {
				length2, dist2 := m.bestMatch(pos+1, prev2)
				if length2 > length || (length2 == length && dist2 < dist && length2 >= minMatch) {
					// Emit the literal at pos, commit the better match at pos+1.
					emit(match{Pos: pos})
					emit(match{Pos: pos + 1, Length: length2, Distance: dist2})
					pos = pos + 1 + length2
					m.advanceHash(pos-length2+1, pos)
					continue
				}
			}
		}

		emit(match{Pos: pos, Length: length, Distance: dist})
		next := pos + length
		// pos+1 was already inserted by the lazy step (or is too close to
		// the end to hash); inserting it again would link it to itself.
		m.advanceHash(pos+2, next)
		pos = next
	}

	for ; pos < n; pos++ {
		emit(match{Pos: pos})
	}
}

// advanceHash keeps the hash table/link chain current for positions
// [from,to) that were skipped over while committing a match, so future
// matches can still chain back through them (spec.md §4.3 step 6).
func (m *matcher) advanceHash(from, to int) {
	for p := from; p < to; p++ {
		m.insert(p)
	}
}
