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

// DenseDouble is a fixed-width column of float64 values (declared
// real or integer). Missing is the quiet-NaN bit pattern.
type DenseDouble struct {
	typ  TypeDescriptor
	data []float64
}

// NewDenseDouble freezes data (which must not be mutated afterwards)
// into a DenseDouble column. typ.ID must be TypeReal or TypeInteger.
func NewDenseDouble(typ TypeDescriptor, data []float64) *DenseDouble {
	return &DenseDouble{typ: typ, data: data}
}

func (c *DenseDouble) Size() int            { return len(c.data) }
func (c *DenseDouble) Type() TypeDescriptor { return c.typ }
func (c *DenseDouble) size() int            { return len(c.data) }

func (c *DenseDouble) floatAt(row int) float64 { return c.data[row] }

func (c *DenseDouble) Fill(dst []float64, startRow int) {
	fillFloat(c, dst, startRow)
}

func (c *DenseDouble) FillStrided(dst []float64, startRow, offset, stride int) {
	fillFloatStrided(c, dst, startRow, offset, stride)
}

func (c *DenseDouble) Map(rowMap []int32, preferView bool) Column {
	return newMapped(c, rowMap)
}

func (c *DenseDouble) Sort(order Order) ([]int32, error) {
	isMissing := func(i int) bool { return math.IsNaN(c.data[i]) }
	less := func(i, j int) bool { return c.data[i] < c.data[j] }
	return sortIndices(len(c.data), order, isMissing, less), nil
}

// Raw returns the backing payload. Callers must not mutate it: a
// DenseDouble is frozen once constructed.
func (c *DenseDouble) Raw() []float64 { return c.data }
