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

const adlerMod = 65521

// Adler32 computes the RFC 1950 checksum trailer: s2*65536+s1, both
// accumulated modulo 65521, with s1 initialized to 1 (spec.md §4.4,
// §8: Adler32(empty) == 1).
func Adler32(data []byte) uint32 {
	var s1, s2 uint32 = 1, 0
	const nmax = 5552 // largest chunk before s2 could overflow uint32 between reductions
	for len(data) > 0 {
		chunk := data
		if len(chunk) > nmax {
			chunk = chunk[:nmax]
		}
		for _, b := range chunk {
			s1 += uint32(b)
			s2 += s1
		}
		s1 %= adlerMod
		s2 %= adlerMod
		data = data[len(chunk):]
	}
	return s2<<16 | s1
}
