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
	"errors"
	"testing"

	"github.com/tablecore/belt/belterr"
	"github.com/tablecore/belt/column"
	"github.com/tablecore/belt/executor"
)

func TestReduceSum(t *testing.T) {
	col := realCol([]float64{1, 2, 3, 4, 5})
	host := executor.NewGoHost(4)

	result, err := Reduce(host, []column.Column{col},
		func() any { return 0.0 },
		func(acc any, values []any) any { return acc.(float64) + values[0].(float64) },
		func(a, b any) any { return a.(float64) + b.(float64) },
		executor.Small, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.(float64) != 15 {
		t.Fatalf("sum = %v, want 15", result)
	}
}

func TestReduceManyBatchesAssociative(t *testing.T) {
	const n = 10000
	values := make([]float64, n)
	want := 0.0
	for i := range values {
		values[i] = float64(i % 7)
		want += values[i]
	}
	col := realCol(values)
	host := executor.NewGoHost(8)

	result, err := Reduce(host, []column.Column{col},
		func() any { return 0.0 },
		func(acc any, v []any) any { return acc.(float64) + v[0].(float64) },
		func(a, b any) any { return a.(float64) + b.(float64) },
		executor.Default, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.(float64) != want {
		t.Fatalf("sum = %v, want %v", result, want)
	}
}

func TestReduceNullAccumulatorFails(t *testing.T) {
	col := realCol([]float64{1, 2, 3})
	host := executor.NewGoHost(2)
	_, err := Reduce(host, []column.Column{col},
		func() any { return nil },
		func(acc any, v []any) any { return acc },
		func(a, b any) any { return a },
		executor.Small, nil)
	if !errors.Is(err, belterr.NullAccumulator) {
		t.Fatalf("err = %v, want NullAccumulator", err)
	}
}

func TestReduceOverObjectColumn(t *testing.T) {
	typ := column.TypeDescriptor{ID: column.TypeObject}
	col := column.NewObject(typ, []any{"a", "bb", "ccc"})
	host := executor.NewGoHost(2)

	result, err := Reduce(host, []column.Column{col},
		func() any { return 0 },
		func(acc any, v []any) any { return acc.(int) + len(v[0].(string)) },
		func(a, b any) any { return a.(int) + b.(int) },
		executor.Small, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.(int) != 6 {
		t.Fatalf("total length = %v, want 6", result)
	}
}
