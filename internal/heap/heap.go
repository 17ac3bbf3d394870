// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package heap implements a min-heap of int indices into a
// caller-owned sequence, ordered by a caller-supplied less(a, b int)
// comparator that takes two index values (not heap positions) and
// reports whether the item a refers to sorts ahead of the item b
// refers to. This is sorting.Ktop's heap-of-indices idiom lifted out
// of its call site: the sort operator's batch merge heaps indices
// into its live runs, and k-top selection heaps indices into its
// retained rows, so both reuse this instead of each hand-rolling a
// heap over its own element type.
package heap

// FixSlice fixes the index at heap position pos in x in order to
// preserve the min-heap invariant determined by less.
func FixSlice(x []int, pos int, less func(a, b int) bool) {
	siftDown(x, pos, less)
	siftUp(x, pos, less)
}

// PopSlice removes and returns the index whose referent sorts
// smallest under less, updating x to preserve the heap invariant.
func PopSlice(x *[]int, less func(a, b int) bool) int {
	ret := (*x)[0]
	(*x)[0], *x = (*x)[len(*x)-1], (*x)[:len(*x)-1]
	if len(*x) > 0 {
		siftDown(*x, 0, less)
	}
	return ret
}

// PushSlice adds item to x while preserving the min-heap invariant
// determined by less.
func PushSlice(x *[]int, item int, less func(a, b int) bool) {
	*x = append(*x, item)
	siftUp(*x, len(*x)-1, less)
}

// OrderSlice shuffles x into min-heap ordering according to less. If
// len(x) > 0, the index whose referent sorts smallest is always x[0].
func OrderSlice(x []int, less func(a, b int) bool) {
	for i := len(x) - 1; i >= 0; i-- {
		siftDown(x, i, less)
		siftUp(x, i, less)
	}
}

func siftUp(x []int, pos int, less func(a, b int) bool) {
	for pos > 0 {
		p := (pos - 1) / 2
		if less(x[p], x[pos]) {
			break
		}
		x[p], x[pos] = x[pos], x[p]
		pos = p
	}
}

func siftDown(x []int, pos int, less func(a, b int) bool) {
	for {
		left := (pos * 2) + 1
		right := left + 1
		if left >= len(x) {
			break
		}
		c := left
		if len(x) > right && less(x[right], x[left]) {
			c = right
		}
		if less(x[pos], x[c]) {
			break
		}
		x[c], x[pos] = x[pos], x[c]
		pos = c
	}
}
