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

package column

import "math"

// Mapped is the lazy row-permutation overlay: logical row i reads
// base's row rowMap[i], with out-of-range entries (negative, or
// >= base.Size()) yielding missing. Composing Map on top of an
// existing Mapped flattens instead of nesting, so an arbitrary chain
// of sorts/selects never grows more than one indirection deep.
type Mapped struct {
	base   Column
	rowMap []int32
}

// newMapped builds the overlay, flattening if base is itself a
// Mapped.
func newMapped(base Column, rowMap []int32) *Mapped {
	if m, ok := base.(*Mapped); ok {
		return &Mapped{base: m.base, rowMap: compose(m.rowMap, rowMap)}
	}
	cp := make([]int32, len(rowMap))
	copy(cp, rowMap)
	return &Mapped{base: base, rowMap: cp}
}

// compose flattens two row maps: result[i] = u[v[i]] when v[i] is a
// valid index into u, or -1 (out of range/missing) otherwise.
func compose(u, v []int32) []int32 {
	out := make([]int32, len(v))
	for i, vi := range v {
		if vi < 0 || int(vi) >= len(u) {
			out[i] = -1
			continue
		}
		out[i] = u[vi]
	}
	return out
}

// ComposeCache memoizes compose() results keyed by the identity of
// the external row-map slice's backing array, paired with the inner
// row map it is composed against, so that repeatedly
// mapping the same column family (e.g. every column of a table, by
// the same sort permutation) only flattens once per distinct map.
// Entries are never evicted: first entry for a given key wins, per
// the cache's intended lifetime (a single operation's duration).
type ComposeCache struct {
	entries map[[2]*int32][]int32
}

// NewComposeCache returns an empty, ready-to-use cache.
func NewComposeCache() *ComposeCache {
	return &ComposeCache{entries: make(map[[2]*int32][]int32)}
}

func keyOf(s []int32) *int32 {
	if len(s) == 0 {
		return nil
	}
	return &s[0]
}

// MapCached behaves like (*Mapped).Map's composition logic, but
// reuses a previously-flattened row map from cache when the same
// external rowMap slice (by backing-array identity) has already been
// composed against the same inner row map (m's own row-map slice,
// also by backing-array identity). preferView is accepted for
// interface parity with Column.Map and otherwise unused: Mapped has
// no non-view representation.
func (m *Mapped) MapCached(rowMap []int32, preferView bool, cache *ComposeCache) Column {
	if cache == nil {
		return newMapped(m, rowMap)
	}
	key := keyOf(rowMap)
	if key == nil {
		return newMapped(m, rowMap)
	}
	k := [2]*int32{keyOf(m.rowMap), key}
	if cached, ok := cache.entries[k]; ok {
		return &Mapped{base: m.base, rowMap: cached}
	}
	flat := compose(m.rowMap, rowMap)
	cache.entries[k] = flat
	return &Mapped{base: m.base, rowMap: flat}
}

func (m *Mapped) Size() int            { return len(m.rowMap) }
func (m *Mapped) Type() TypeDescriptor { return m.base.Type() }
func (m *Mapped) size() int            { return len(m.rowMap) }

func (m *Mapped) resolve(row int) (int, bool) {
	if row < 0 || row >= len(m.rowMap) {
		return 0, false
	}
	r := m.rowMap[row]
	if r < 0 || int(r) >= m.base.Size() {
		return 0, false
	}
	return int(r), true
}

func (m *Mapped) floatAt(row int) float64 {
	src, ok := m.resolve(row)
	if !ok {
		return math.NaN()
	}
	if fs, ok := m.base.(floatSource); ok {
		return fs.floatAt(src)
	}
	var buf [1]float64
	m.base.Fill(buf[:], src)
	return buf[0]
}

func (m *Mapped) Fill(dst []float64, startRow int) {
	fillFloat(m, dst, startRow)
}

func (m *Mapped) FillStrided(dst []float64, startRow, offset, stride int) {
	fillFloatStrided(m, dst, startRow, offset, stride)
}

func (m *Mapped) objectAt(row int) any {
	src, ok := m.resolve(row)
	if !ok {
		return nil
	}
	if os, ok := m.base.(objectSource); ok {
		return os.objectAt(src)
	}
	if of, ok := m.base.(ObjectFiller); ok {
		buf := make([]any, 1)
		of.FillObject(buf, src)
		return buf[0]
	}
	return nil
}

// FillObject implements ObjectFiller if base does.
func (m *Mapped) FillObject(dst []any, startRow int) {
	fillObject(m, dst, startRow)
}

// FillIndex implements IndexFiller if base does.
func (m *Mapped) FillIndex(dst []int32, startRow int) {
	filler, ok := m.base.(IndexFiller)
	if !ok {
		for k := range dst {
			dst[k] = 0
		}
		return
	}
	n := len(m.rowMap)
	for k := range dst {
		row := startRow + k
		if row < 0 || row >= n {
			dst[k] = 0
			continue
		}
		src, ok := m.resolve(row)
		if !ok {
			dst[k] = 0
			continue
		}
		var buf [1]int32
		filler.FillIndex(buf[:], src)
		dst[k] = buf[0]
	}
}

// PositiveIndex implements BooleanViewer if base does.
func (m *Mapped) PositiveIndex() (int, bool) {
	bv, ok := m.base.(BooleanViewer)
	if !ok {
		return 0, false
	}
	return bv.PositiveIndex()
}

// BoolAt implements BooleanViewer if base does.
func (m *Mapped) BoolAt(row int) (bool, bool) {
	bv, ok := m.base.(BooleanViewer)
	if !ok {
		return false, false
	}
	src, ok := m.resolve(row)
	if !ok {
		return false, false
	}
	return bv.BoolAt(src)
}

func (m *Mapped) Map(rowMap []int32, preferView bool) Column {
	return newMapped(m, rowMap)
}

func (m *Mapped) Sort(order Order) ([]int32, error) {
	n := len(m.rowMap)
	baseMissing, baseLess, err := ExtractOrder(m.base)
	if err != nil {
		return nil, err
	}
	isMissing := func(i int) bool {
		src, ok := m.resolve(i)
		return !ok || baseMissing(src)
	}
	less := func(i, j int) bool {
		si, _ := m.resolve(i)
		sj, _ := m.resolve(j)
		return baseLess(si, sj)
	}
	return sortIndices(n, order, isMissing, less), nil
}

// mappedOrder is ExtractOrder's case for *Mapped: it composes the
// base column's ordering with the row map instead of re-deriving
// per-variant comparison logic.
func mappedOrder(m *Mapped) (func(int) bool, func(int, int) bool, error) {
	baseMissing, baseLess, err := ExtractOrder(m.base)
	if err != nil {
		return nil, nil, err
	}
	isMissing := func(i int) bool {
		src, ok := m.resolve(i)
		return !ok || baseMissing(src)
	}
	less := func(i, j int) bool {
		si, _ := m.resolve(i)
		sj, _ := m.resolve(j)
		return baseLess(si, sj)
	}
	return isMissing, less, nil
}
