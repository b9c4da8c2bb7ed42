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

// RFC 1951 §3.2.5 length and distance code tables, verbatim per spec.md §4.4.
var (
	matchOff = [29]int{
		3, 4, 5, 6, 7, 8, 9, 10, 11, 13, 15, 17, 19, 23, 27, 31,
		35, 43, 51, 59, 67, 83, 99, 115, 131, 163, 195, 227, 258,
	}
	matchExtra = [29]uint{
		0, 0, 0, 0, 0, 0, 0, 0,
		1, 1, 1, 1,
		2, 2, 2, 2,
		3, 3, 3, 3,
		4, 4, 4, 4,
		5, 5, 5, 5,
		0,
	}
	distOff = [30]int{
		1, 2, 3, 4, 5, 7, 9, 13, 17, 25, 33, 49, 65, 97, 129, 193,
		257, 385, 513, 769, 1025, 1537, 2049, 3073, 4097, 6145, 8193, 12289, 16385, 24577,
	}
	distExtra = [30]uint{
		0, 0, 0, 0,
		1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6, 7, 7, 8, 8, 9, 9, 10, 10, 11, 11, 12, 12, 13, 13,
	}
	// clenAlphabet is the permutation in which code-length code lengths
	// are transmitted (RFC 1951 §3.2.7 / spec.md §4.4 step 3).
	clenAlphabet = [19]int{16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15}
)

const (
	litAlphabetSize  = 288
	distAlphabetSize = 32
	clenAlphabetSize = 19
	endOfBlockSymbol = 256
)

// lengthCode returns the length-code index (0-based into matchOff/matchExtra)
// for an actual match length in [3,258].
func lengthCode(length int) int {
	lo, hi := 0, len(matchOff)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if matchOff[mid] <= length {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// distCode returns the distance-code index for a distance in [1,32768].
func distCode(dist int) int {
	lo, hi := 0, len(distOff)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if distOff[mid] <= dist {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}
