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
	"math"

	"github.com/tablecore/belt/belterr"
)

// Object is a column of boxed Go values of a single declared class
// (TypeDescriptor.ValueClass). nil denotes missing. Unlike the
// numeric variants, Object has no intrinsic Fill value: numeric Fill
// always reports NaN, since an object has no canonical float
// projection.
type Object struct {
	typ  TypeDescriptor
	data []any
}

// NewObject freezes data into an Object column. Every non-nil element
// must already satisfy typ.ValueClass; NewObject does not itself
// enforce that (the buffer layer does, incrementally, at set() time).
func NewObject(typ TypeDescriptor, data []any) *Object {
	return &Object{typ: typ, data: data}
}

func (c *Object) Size() int            { return len(c.data) }
func (c *Object) Type() TypeDescriptor { return c.typ }
func (c *Object) size() int            { return len(c.data) }

func (c *Object) Fill(dst []float64, startRow int) {
	for k := range dst {
		dst[k] = math.NaN()
	}
}

func (c *Object) FillStrided(dst []float64, startRow, offset, stride int) {
	if stride <= 0 {
		stride = 1
	}
	for k := 0; ; k++ {
		pos := offset + k*stride
		if pos < 0 || pos >= len(dst) {
			break
		}
		dst[pos] = math.NaN()
	}
}

func (c *Object) objectAt(row int) any { return c.data[row] }

func (c *Object) FillObject(dst []any, startRow int) {
	fillObject(c, dst, startRow)
}

func (c *Object) Map(rowMap []int32, preferView bool) Column {
	return newMapped(c, rowMap)
}

func (c *Object) Sort(order Order) ([]int32, error) {
	if c.typ.Comparator == nil {
		return nil, belterr.Unordered
	}
	isMissing := func(i int) bool { return c.data[i] == nil }
	less := func(i, j int) bool { return c.typ.Comparator(c.data[i], c.data[j]) < 0 }
	return sortIndices(len(c.data), order, isMissing, less), nil
}

// Raw returns the backing payload. Callers must not mutate it.
func (c *Object) Raw() []any { return c.data }
