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

import (
	"github.com/tablecore/belt/belterr"
	"github.com/tablecore/belt/dict"
	"github.com/tablecore/belt/internal/packedint"
)

// indexStore abstracts the three physical payload shapes a
// categorical column can use: packed 2/4/8-bit lanes, or plain
// 16-bit/32-bit slices. It lets Categorical stay a single type
// regardless of index width.
type indexStore interface {
	len() int
	get(i int) int32
}

type packedIndexStore struct {
	width packedint.Width
	buf   []byte
	n     int
}

func (s *packedIndexStore) len() int      { return s.n }
func (s *packedIndexStore) get(i int) int32 { return int32(packedint.Read(s.width, s.buf, i)) }

type wideIndexStore16 struct{ data []uint16 }

func (s *wideIndexStore16) len() int        { return len(s.data) }
func (s *wideIndexStore16) get(i int) int32 { return int32(s.data[i]) }

type wideIndexStore32 struct{ data []int32 }

func (s *wideIndexStore32) len() int        { return len(s.data) }
func (s *wideIndexStore32) get(i int) int32 { return s.data[i] }

// Categorical is a packed-categorical column: a shared Dictionary
// plus a width-appropriate index payload. Index 0 denotes the
// dictionary's null entry.
type Categorical struct {
	typ           TypeDescriptor
	dict          *dict.Dictionary
	width         int // 2, 4, 8, 16 or 32
	store         indexStore
	positiveIndex int // 0 = no boolean view declared
}

// newCategorical constructs a frozen categorical column. It panics if
// any payload lane is out of range for the dictionary (invariant 1 of
// spec.md §3); callers (the buffer family) are expected to maintain
// that invariant incrementally and never call this with bad data.
func newCategorical(typ TypeDescriptor, d *dict.Dictionary, width int, store indexStore, positiveIndex int) *Categorical {
	limit := d.Size() + 1
	for i := 0; i < store.len(); i++ {
		if v := store.get(i); v < 0 || int(v) >= limit {
			panic("column: categorical payload index out of dictionary range")
		}
	}
	return &Categorical{typ: typ, dict: d, width: width, store: store, positiveIndex: positiveIndex}
}

// NewCategoricalPacked builds a Categorical backed by 2/4/8-bit
// packed lanes.
func NewCategoricalPacked(typ TypeDescriptor, d *dict.Dictionary, width packedint.Width, buf []byte, size int, positiveIndex int) *Categorical {
	return newCategorical(typ, d, int(width), &packedIndexStore{width: width, buf: buf, n: size}, positiveIndex)
}

// NewCategorical16 builds a Categorical backed by a plain []uint16.
func NewCategorical16(typ TypeDescriptor, d *dict.Dictionary, data []uint16, positiveIndex int) *Categorical {
	return newCategorical(typ, d, 16, &wideIndexStore16{data: data}, positiveIndex)
}

// NewCategorical32 builds a Categorical backed by a plain []int32.
func NewCategorical32(typ TypeDescriptor, d *dict.Dictionary, data []int32, positiveIndex int) *Categorical {
	return newCategorical(typ, d, 32, &wideIndexStore32{data: data}, positiveIndex)
}

func (c *Categorical) Size() int            { return c.store.len() }
func (c *Categorical) Type() TypeDescriptor { return c.typ }
func (c *Categorical) size() int            { return c.store.len() }

// IndexWidth returns the payload's index width (2, 4, 8, 16, or 32).
func (c *Categorical) IndexWidth() int { return c.width }

// Dictionary returns the column's backing dictionary.
func (c *Categorical) Dictionary() *dict.Dictionary { return c.dict }

func (c *Categorical) floatAt(row int) float64 {
	return float64(c.store.get(row))
}

func (c *Categorical) Fill(dst []float64, startRow int) {
	fillFloat(c, dst, startRow)
}

func (c *Categorical) FillStrided(dst []float64, startRow, offset, stride int) {
	fillFloatStrided(c, dst, startRow, offset, stride)
}

func (c *Categorical) objectAt(row int) any {
	idx := c.store.get(row)
	if idx == 0 {
		return nil
	}
	v, _ := c.dict.At(int(idx))
	return v
}

func (c *Categorical) FillObject(dst []any, startRow int) {
	fillObject(c, dst, startRow)
}

func (c *Categorical) FillIndex(dst []int32, startRow int) {
	n := c.store.len()
	for k := range dst {
		row := startRow + k
		if row < 0 || row >= n {
			dst[k] = 0
			continue
		}
		dst[k] = c.store.get(row)
	}
}

func (c *Categorical) Map(rowMap []int32, preferView bool) Column {
	return newMapped(c, rowMap)
}

func (c *Categorical) Sort(order Order) ([]int32, error) {
	rank, ok := c.dict.Ranks()
	if !ok {
		return nil, belterr.Unordered
	}
	n := c.store.len()
	isMissing := func(i int) bool { return c.store.get(i) == 0 }
	less := func(i, j int) bool {
		return rank[c.store.get(i)-1] < rank[c.store.get(j)-1]
	}
	return sortIndices(n, order, isMissing, less), nil
}

// PositiveIndex implements BooleanViewer.
func (c *Categorical) PositiveIndex() (int, bool) {
	if c.positiveIndex == 0 {
		return 0, false
	}
	return c.positiveIndex, true
}

// BoolAt implements BooleanViewer.
func (c *Categorical) BoolAt(row int) (bool, bool) {
	if c.positiveIndex == 0 {
		return false, false
	}
	if row < 0 || row >= c.store.len() {
		return false, false
	}
	idx := c.store.get(row)
	if idx == 0 {
		return false, false
	}
	return int(idx) == c.positiveIndex, true
}
