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

import "sort"

// pmLeaf is a leaf reference used while building packages: sym is the
// original alphabet index, freq its frequency.
type pmLeaf struct {
	sym  int
	freq uint64
}

// pkg is a package node produced by merging two items (leaves or earlier
// packages) at some package-merge level; members lists every leaf symbol
// reachable through it, so that popping it during the final tally can
// increment each member's bit count by one in a single pass.
type pkg struct {
	freq    uint64
	members []int
}

// packageMerge implements the length-limited Huffman algorithm of
// spec.md §4.2: PackageMerge(L). It writes the resulting code length for
// every symbol with used[i]>0 into bits, leaving others at 0.
//
// Sort non-zero leaves by ascending frequency. For each of L levels, pair up
// the merge of (sorted leaves, previous level's packages) two at a time,
// producing one package per pair whose frequency is the sum of its two
// inputs and whose members is their concatenation. After L levels, take the
// first (2*leafCount - 2) packages from the final level (sorted ascending)
// and, for every leaf referenced by any of them, add 1 to its bit count —
// equivalently here, iterate each kept package's members and bump bits.
func packageMerge(used []uint32, limit uint, bits []uint8) error {
	var leaves []pmLeaf
	for i, u := range used {
		if u > 0 {
			leaves = append(leaves, pmLeaf{sym: i, freq: uint64(u)})
		}
	}
	sort.Slice(leaves, func(i, j int) bool { return leaves[i].freq < leaves[j].freq })

	n := len(leaves)
	if n <= 1 {
		for _, l := range leaves {
			bits[l.sym] = 1
		}
		return nil
	}

	count := make([]int, len(used))

	// merged holds the package list produced by the previous level; at
	// level 0 it is empty (so the first level packages only the leaves).
	var merged []pkg

	for level := uint(0); level < limit; level++ {
		items := mergeLeavesAndPackages(leaves, merged)
		// Package: consume two at a time. An odd leftover item is dropped
		// (it cannot contribute to a balanced length-limited code at this
		// level); per the classic package-merge formulation this can only
		// happen when the number of items is odd, which is handled by
		// simply discarding the trailing unpaired item.
		var next []pkg
		for i := 0; i+1 < len(items); i += 2 {
			a, b := items[i], items[i+1]
			p := pkg{freq: a.freq + b.freq}
			p.members = append(p.members, a.members...)
			p.members = append(p.members, b.members...)
			next = append(next, p)
		}
		merged = next
	}

	// Take the first 2*(n-1) packages of the final level (already sorted
	// ascending since items/merges preserve order) and tally membership.
	take := 2 * (n - 1)
	if take > len(merged) {
		take = len(merged)
	}
	for i := 0; i < take; i++ {
		for _, sym := range merged[i].members {
			count[sym]++
		}
	}

	for _, l := range leaves {
		bits[l.sym] = uint8(count[l.sym])
	}
	return nil
}

// mergeItem is the common shape consumed by one package-merge level: either
// an original leaf (members has length 1) or a package carried over from
// the previous level.
type mergeItem struct {
	freq    uint64
	members []int
}

// mergeLeavesAndPackages performs the two-way merge of ascending-sorted
// leaves and the ascending-sorted packages from the previous level into one
// ascending sequence, as spec.md §4.2 requires ("two-way merge of
// sorted-leaves and merged").
func mergeLeavesAndPackages(leaves []pmLeaf, merged []pkg) []mergeItem {
	out := make([]mergeItem, 0, len(leaves)+len(merged))
	i, j := 0, 0
	for i < len(leaves) && j < len(merged) {
		if leaves[i].freq <= merged[j].freq {
			out = append(out, mergeItem{freq: leaves[i].freq, members: []int{leaves[i].sym}})
			i++
		} else {
			out = append(out, mergeItem{freq: merged[j].freq, members: merged[j].members})
			j++
		}
	}
	for ; i < len(leaves); i++ {
		out = append(out, mergeItem{freq: leaves[i].freq, members: []int{leaves[i].sym}})
	}
	for ; j < len(merged); j++ {
		out = append(out, mergeItem{freq: merged[j].freq, members: merged[j].members})
	}
	return out
}
