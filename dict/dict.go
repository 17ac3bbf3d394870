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

// Package dict implements the ordered, append-only dictionary that
// backs every categorical column: index 0 is always the null
// sentinel, and indices 1..k are distinct non-null strings in
// insertion order. Interning is safe for concurrent use by multiple
// writers, the way ion.Symtab's string table is safe for a single
// writer but needs a stronger guarantee here because categorical
// buffers (unlike ion symbol tables) are explicitly specified to
// support concurrent set() calls from disjoint writers.
package dict

import (
	"sync"

	"github.com/dchest/siphash"
)

// Comparator orders two dictionary values. It must behave like
// strings.Compare: negative if a < b, zero if equal, positive if
// a > b. Dictionaries for unordered categorical data (no comparator
// set) cause sort to fail with belterr.Unordered.
type Comparator func(a, b string) int

// numShards is the number of stripe locks Intern takes before the
// dictionary-wide write lock: writers of values in the same shard
// queue on the stripe lock, and every new value is still appended
// under the single write lock. Shard selection is computed with
// siphash so that the distribution does not depend on Go's randomized
// map seed.
const numShards = 32

// siphash keys are fixed (not secret) -- the hash is used only to
// spread load across shards, not for anything security-sensitive.
const shardKey0, shardKey1 = 0x5d1a2b3c4e5f6071, 0x8192a3b4c5d6e7f8

// Dictionary is the ordered, append-only value list backing a
// categorical column. The zero value is ready to use.
type Dictionary struct {
	mu      sync.RWMutex
	index   map[string]int // value -> 1-based index
	values  []string        // 1-based index -> value
	shards  [numShards]sync.Mutex
	frozen  bool
	compare Comparator
}

// New returns an empty, ready-to-use Dictionary.
func New() *Dictionary {
	return &Dictionary{index: make(map[string]int)}
}

func shardFor(value string) int {
	h := siphash.Hash(shardKey0, shardKey1, []byte(value))
	return int(h % numShards)
}

// Intern returns the index of value, appending it as a new entry if
// it is not already present. It is safe to call concurrently from
// multiple goroutines; the result is linearizable with respect to
// At: once Intern returns idx for value, every subsequent At(idx)
// (from any goroutine) observes value.
//
// Intern panics if the dictionary has been frozen and value is not
// already present (a present value returns its index); callers that need
// an error instead (the categorical buffer's Frozen error) must check
// Frozen() themselves before calling Intern.
func (d *Dictionary) Intern(value string) int {
	d.mu.RLock()
	if idx, ok := d.index[value]; ok {
		d.mu.RUnlock()
		return idx
	}
	d.mu.RUnlock()

	shard := &d.shards[shardFor(value)]
	shard.Lock()
	defer shard.Unlock()

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.frozen {
		panic("dict: Intern on frozen dictionary")
	}
	if idx, ok := d.index[value]; ok {
		return idx
	}
	if d.index == nil {
		d.index = make(map[string]int)
	}
	d.values = append(d.values, value)
	idx := len(d.values)
	d.index[value] = idx
	return idx
}

// IndexOf looks up value without inserting it. It returns (0, false)
// if value has never been interned.
func (d *Dictionary) IndexOf(value string) (int, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	idx, ok := d.index[value]
	return idx, ok
}

// At returns the value stored at the given 1-based index. Index 0
// (the null sentinel) and any out-of-range index return ("", false).
func (d *Dictionary) At(idx int) (string, bool) {
	if idx <= 0 {
		return "", false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if idx > len(d.values) {
		return "", false
	}
	return d.values[idx-1], true
}

// Size returns k, the number of distinct non-null entries. The
// dictionary's full length (including the null sentinel at index 0)
// is Size()+1.
func (d *Dictionary) Size() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.values)
}

// Freeze seals the dictionary; subsequent Intern calls for values not
// already present panic. Freeze is idempotent.
func (d *Dictionary) Freeze() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frozen = true
}

// Frozen reports whether Freeze has been called.
func (d *Dictionary) Frozen() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.frozen
}

// SetComparator installs the ordering used by sort for columns backed
// by this dictionary. It must be called before the dictionary is
// used by a sort; installing a comparator after Freeze is allowed
// (sort consults it lazily) but must not race with a concurrent sort.
func (d *Dictionary) SetComparator(cmp Comparator) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.compare = cmp
}

// Comparator returns the installed comparator, or nil if none was
// set.
func (d *Dictionary) Comparator() Comparator {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.compare
}

// Equal reports whether d and o are equal as mappings: same length,
// and agreeing at every index (order matters, since index assignment
// is part of the contract).
func (d *Dictionary) Equal(o *Dictionary) bool {
	if d == o {
		return true
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	o.mu.RLock()
	defer o.mu.RUnlock()
	if len(d.values) != len(o.values) {
		return false
	}
	for i := range d.values {
		if d.values[i] != o.values[i] {
			return false
		}
	}
	return true
}

// Values returns a copy of the dictionary's non-null entries in
// index order (Values()[0] is index 1, and so on).
func (d *Dictionary) Values() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, len(d.values))
	copy(out, d.values)
	return out
}

// Ranks returns, for a dictionary with an installed comparator, a
// slice rank of length Size() such that rank[idx-1] is the position
// of dictionary index idx in ascending comparator order (0-based,
// ties broken by index to keep the mapping stable). This lets the
// sort operator treat a categorical column as a plain integer column
// keyed by rank instead of re-running the string comparator on every
// pairwise comparison.
//
// Ranks returns (nil, false) if no comparator is installed.
func (d *Dictionary) Ranks() ([]int, bool) {
	d.mu.RLock()
	cmp := d.compare
	values := make([]string, len(d.values))
	copy(values, d.values)
	d.mu.RUnlock()
	if cmp == nil {
		return nil, false
	}

	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	// stable insertion sort is fine here: k is the number of
	// distinct categories, which is small relative to row count by
	// construction (it's bounded by 2^width).
	for i := 1; i < len(order); i++ {
		j := i
		for j > 0 {
			a, b := values[order[j-1]], values[order[j]]
			if cmp(a, b) <= 0 {
				break
			}
			order[j-1], order[j] = order[j], order[j-1]
			j--
		}
	}
	rank := make([]int, len(values))
	for pos, origIdx := range order {
		rank[origIdx] = pos
	}
	return rank, true
}
