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

package transform

import (
	"testing"

	"github.com/tablecore/belt/column"
	"github.com/tablecore/belt/executor"
)

func realCol(values []float64) column.Column {
	return column.NewDenseDouble(column.TypeDescriptor{ID: column.TypeReal}, values)
}

func TestMapNumericSingleColumnDouble(t *testing.T) {
	col := realCol([]float64{1, 2, 3, 4})
	host := executor.NewGoHost(4)
	out, err := MapNumeric(host, []column.Column{col}, func(v []float64) float64 { return v[0] * 2 }, false, executor.Small, nil)
	if err != nil {
		t.Fatal(err)
	}
	dst := make([]float64, 4)
	out.Fill(dst, 0)
	want := []float64{2, 4, 6, 8}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst = %v, want %v", dst, want)
		}
	}
}

func TestMapNumericTwoColumnsSum(t *testing.T) {
	a := realCol([]float64{1, 2, 3})
	b := realCol([]float64{10, 20, 30})
	host := executor.NewGoHost(2)
	out, err := MapNumeric(host, []column.Column{a, b}, func(v []float64) float64 { return v[0] + v[1] }, false, executor.Small, nil)
	if err != nil {
		t.Fatal(err)
	}
	dst := make([]float64, 3)
	out.Fill(dst, 0)
	want := []float64{11, 22, 33}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst = %v, want %v", dst, want)
		}
	}
}

func TestMapNumericIntegerRoundsHalfToEven(t *testing.T) {
	col := realCol([]float64{0.5, 1.5, 2.5, 3.5})
	host := executor.NewGoHost(1)
	out, err := MapNumeric(host, []column.Column{col}, func(v []float64) float64 { return v[0] }, true, executor.Small, nil)
	if err != nil {
		t.Fatal(err)
	}
	if out.Type().ID != column.TypeInteger {
		t.Fatalf("Type = %v, want integer", out.Type().ID)
	}
	dst := make([]float64, 4)
	out.Fill(dst, 0)
	want := []float64{0, 2, 2, 4}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst = %v, want %v", dst, want)
		}
	}
}

func TestMapNumericManyRowsEveryRowComputed(t *testing.T) {
	const n = 20000
	values := make([]float64, n)
	for i := range values {
		values[i] = float64(i)
	}
	col := realCol(values)
	host := executor.NewGoHost(8)
	out, err := MapNumeric(host, []column.Column{col}, func(v []float64) float64 { return v[0] + 1 }, false, executor.Default, nil)
	if err != nil {
		t.Fatal(err)
	}
	dst := make([]float64, n)
	out.Fill(dst, 0)
	for i := range dst {
		if dst[i] != values[i]+1 {
			t.Fatalf("dst[%d] = %v, want %v", i, dst[i], values[i]+1)
		}
	}
}
