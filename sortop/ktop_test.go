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

package sortop

import (
	"math/rand"
	"testing"

	"github.com/tablecore/belt/column"
	"github.com/tablecore/belt/executor"
)

func TestKTopSmallestThree(t *testing.T) {
	values := []float64{9, 3, 7, 1, 5, 2, 8}
	col := realCol(values)
	host := executor.NewGoHost(4)

	got, err := TopK(host, col, 3, column.Ascending, executor.Small, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("len(got) = %d, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if values[got[i-1]] > values[got[i]] {
			t.Fatalf("result not sorted: %v", got)
		}
	}
	want := []float64{1, 2, 3}
	for i, row := range got {
		if values[row] != want[i] {
			t.Fatalf("got values %v at rows %v, want %v", valuesOf(values, got), got, want)
		}
	}
}

func TestKTopLargestDescending(t *testing.T) {
	values := []float64{9, 3, 7, 1, 5, 2, 8}
	col := realCol(values)
	host := executor.NewGoHost(4)

	got, err := TopK(host, col, 2, column.Descending, executor.Small, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{9, 8}
	for i, row := range got {
		if values[row] != want[i] {
			t.Fatalf("got values %v, want %v", valuesOf(values, got), want)
		}
	}
}

func TestKTopLimitExceedsSize(t *testing.T) {
	values := []float64{2, 1}
	col := realCol(values)
	host := executor.NewGoHost(2)
	got, err := TopK(host, col, 10, column.Ascending, executor.Small, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("len(got) = %d, want 2", len(got))
	}
}

func TestKTopMatchesFullSortPrefix(t *testing.T) {
	const n = 5000
	values := make([]float64, n)
	r := rand.New(rand.NewSource(7))
	for i := range values {
		values[i] = r.Float64()
	}
	col := realCol(values)
	host := executor.NewGoHost(8)

	const k = 25
	top, err := TopK(host, col, k, column.Ascending, executor.Default, nil)
	if err != nil {
		t.Fatal(err)
	}
	full, err := col.Sort(column.Ascending)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < k; i++ {
		if values[top[i]] != values[full[i]] {
			t.Fatalf("topK[%d] value = %v, full sort prefix value = %v", i, values[top[i]], values[full[i]])
		}
	}
}

func valuesOf(values []float64, rows []int32) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = values[r]
	}
	return out
}
