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
	"testing"
)

func realType() TypeDescriptor { return TypeDescriptor{ID: TypeReal} }

func TestDenseDoubleFillOutOfRangeIsNaN(t *testing.T) {
	c := NewDenseDouble(realType(), []float64{1, 2, 3})
	dst := make([]float64, 5)
	c.Fill(dst, -1)
	if !math.IsNaN(dst[0]) {
		t.Fatalf("dst[0] = %v, want NaN", dst[0])
	}
	if dst[1] != 1 || dst[2] != 2 || dst[3] != 3 {
		t.Fatalf("dst = %v, want [NaN 1 2 3 NaN]", dst)
	}
	if !math.IsNaN(dst[4]) {
		t.Fatalf("dst[4] = %v, want NaN", dst[4])
	}
}

func TestDenseDoubleFillStrided(t *testing.T) {
	c := NewDenseDouble(realType(), []float64{10, 20, 30})
	dst := make([]float64, 6)
	for i := range dst {
		dst[i] = -1
	}
	c.FillStrided(dst, 0, 1, 2)
	want := []float64{-1, 10, -1, 20, -1, 30}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst = %v, want %v", dst, want)
		}
	}
}

func TestDenseDoubleSortNullsLast(t *testing.T) {
	c := NewDenseDouble(realType(), []float64{3, math.NaN(), 1, 2})
	perm, err := c.Sort(Ascending)
	if err != nil {
		t.Fatal(err)
	}
	want := []int32{2, 3, 0, 1}
	for i := range want {
		if perm[i] != want[i] {
			t.Fatalf("perm = %v, want %v", perm, want)
		}
	}

	permDesc, err := c.Sort(Descending)
	if err != nil {
		t.Fatal(err)
	}
	if permDesc[len(permDesc)-1] != 1 {
		t.Fatalf("descending sort did not keep missing last: %v", permDesc)
	}
}

func TestDenseDoubleSortStable(t *testing.T) {
	c := NewDenseDouble(realType(), []float64{1, 1, 0, 1})
	perm, err := c.Sort(Ascending)
	if err != nil {
		t.Fatal(err)
	}
	// row 2 (value 0) first, then the three 1s in original relative order
	want := []int32{2, 0, 1, 3}
	for i := range want {
		if perm[i] != want[i] {
			t.Fatalf("perm = %v, want %v (stability broken)", perm, want)
		}
	}
}

func TestDenseDoubleMapProducesMapped(t *testing.T) {
	c := NewDenseDouble(realType(), []float64{10, 20, 30})
	mapped := c.Map([]int32{2, -1, 0}, true)
	dst := make([]float64, 3)
	mapped.Fill(dst, 0)
	if dst[0] != 30 {
		t.Fatalf("dst[0] = %v, want 30", dst[0])
	}
	if !math.IsNaN(dst[1]) {
		t.Fatalf("dst[1] = %v, want NaN (out of range source)", dst[1])
	}
	if dst[2] != 10 {
		t.Fatalf("dst[2] = %v, want 10", dst[2])
	}
}

func TestMappedComposesFlat(t *testing.T) {
	c := NewDenseDouble(realType(), []float64{1, 2, 3, 4})
	once := c.Map([]int32{3, 2, 1, 0}, true)
	twice := once.Map([]int32{0, 1}, true)

	m, ok := twice.(*Mapped)
	if !ok {
		t.Fatalf("twice is %T, want *Mapped", twice)
	}
	if _, ok := m.base.(*Mapped); ok {
		t.Fatal("composition should flatten, not nest Mapped inside Mapped")
	}

	dst := make([]float64, 2)
	twice.Fill(dst, 0)
	if dst[0] != 4 || dst[1] != 3 {
		t.Fatalf("dst = %v, want [4 3]", dst)
	}
}

func TestMappedSizeIsRowMapLength(t *testing.T) {
	c := NewDenseDouble(realType(), []float64{1, 2, 3})
	m := c.Map([]int32{0, 0, 1, 2, 2}, true)
	if m.Size() != 5 {
		t.Fatalf("Size() = %d, want 5", m.Size())
	}
}
