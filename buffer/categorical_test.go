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

package buffer

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/tablecore/belt/belterr"
	"github.com/tablecore/belt/column"
)

func TestCategoricalBufferSetAndGet(t *testing.T) {
	b := NewCategoricalBuffer(8, 4)
	if err := b.Set(0, "red"); err != nil {
		t.Fatal(err)
	}
	if err := b.Set(1, "blue"); err != nil {
		t.Fatal(err)
	}
	if err := b.Set(2, "red"); err != nil {
		t.Fatal(err)
	}

	v, ok := b.Get(0)
	if !ok || v != "red" {
		t.Fatalf("Get(0) = %q, %v", v, ok)
	}
	if _, ok := b.Get(3); ok {
		t.Fatal("Get(3) should report null")
	}
	if b.DifferentValues() != 2 {
		t.Fatalf("DifferentValues() = %d, want 2", b.DifferentValues())
	}
}

func TestCategoricalBufferWidth2Overflow(t *testing.T) {
	b := NewCategoricalBuffer(2, 10)
	for _, v := range []string{"a", "b", "c"} {
		if err := b.Set(0, v); err != nil {
			t.Fatalf("Set(%q) failed unexpectedly: %v", v, err)
		}
	}
	if err := b.Set(0, "d"); !errors.Is(err, belterr.CategoryOverflow) {
		t.Fatalf("Set(d) error = %v, want CategoryOverflow", err)
	}

	ok, err := b.SetSave(0, "e")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("SetSave should report false on overflow")
	}
}

func TestCategoricalBufferFrozenRejectsWrites(t *testing.T) {
	b := NewCategoricalBuffer(8, 2)
	b.Freeze()
	if err := b.Set(0, "x"); !errors.Is(err, belterr.Frozen) {
		t.Fatalf("Set on frozen buffer = %v, want Frozen", err)
	}
}

func TestCategoricalBufferToBooleanColumn(t *testing.T) {
	b := NewCategoricalBuffer(2, 3)
	b.Set(0, "true")
	b.Set(1, "false")
	b.Set(2, "true")

	col, err := b.ToBooleanColumn("true")
	if err != nil {
		t.Fatal(err)
	}
	v, ok := col.BoolAt(0)
	if !ok || !v {
		t.Fatalf("BoolAt(0) = %v, %v, want true, true", v, ok)
	}
	v, ok = col.BoolAt(1)
	if !ok || v {
		t.Fatalf("BoolAt(1) = %v, %v, want false, true", v, ok)
	}
}

func TestCategoricalBufferToBooleanColumnRejectsThreeValues(t *testing.T) {
	b := NewCategoricalBuffer(8, 3)
	b.Set(0, "a")
	b.Set(1, "b")
	b.Set(2, "c")
	if _, err := b.ToBooleanColumn("a"); !errors.Is(err, belterr.NotBoolean) {
		t.Fatalf("expected NotBoolean, got %v", err)
	}
}

func TestCategoricalBufferConcurrentSetWidth2SameByte(t *testing.T) {
	// four lanes per byte at width 2: hammer all of them concurrently
	// from different writers interning different values, and verify
	// no write is lost.
	const n = 64
	b := NewCategoricalBuffer(2, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v := fmt.Sprintf("v%d", i%3)
			if err := b.Set(i, v); err != nil {
				t.Errorf("Set(%d, %q) = %v", i, v, err)
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		want := fmt.Sprintf("v%d", i%3)
		got, ok := b.Get(i)
		if !ok || got != want {
			t.Fatalf("Get(%d) = %q, %v, want %q (lost update)", i, got, ok, want)
		}
	}
}

func TestCategoricalBufferFromColumnNarrowingRefused(t *testing.T) {
	wide := NewCategoricalBuffer(16, 4)
	wide.Set(0, "a")
	wide.Set(1, "b")
	col := wide.ToColumn()

	if _, err := FromColumn(col, 2); !errors.Is(err, belterr.FormatNarrowing) {
		t.Fatalf("expected FormatNarrowing, got %v", err)
	}

	narrow, err := FromColumn(col, 32)
	if err != nil {
		t.Fatal(err)
	}
	if narrow.DifferentValues() != 2 {
		t.Fatalf("DifferentValues() = %d, want 2", narrow.DifferentValues())
	}
	v, ok := narrow.Get(0)
	if !ok || v != "a" {
		t.Fatalf("Get(0) = %q, %v", v, ok)
	}
}

func TestCategoricalBufferFromColumnTypeMismatch(t *testing.T) {
	dense := column.NewDenseDouble(column.TypeDescriptor{ID: column.TypeReal}, []float64{1, 2})
	if _, err := FromColumn(dense, 8); !errors.Is(err, belterr.TypeMismatch) {
		t.Fatalf("expected TypeMismatch, got %v", err)
	}
}
