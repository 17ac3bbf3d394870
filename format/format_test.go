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

package format

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/tablecore/belt/belterr"
	"github.com/tablecore/belt/buffer"
	"github.com/tablecore/belt/column"
	"github.com/tablecore/belt/date"
	"github.com/tablecore/belt/table"
)

func buildSampleTable(t *testing.T) *table.Table {
	t.Helper()

	real := column.NewDenseDouble(column.TypeDescriptor{ID: column.TypeReal}, []float64{1.5, 2.5, 3.5, 4.5})

	cb := buffer.NewCategoricalBuffer(2, 4)
	for i, v := range []string{"a", "b", "c", "a"} {
		if err := cb.Set(i, v); err != nil {
			t.Fatal(err)
		}
	}
	cb.SetComparator(func(a, b string) int {
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
		return 0
	})
	cb.Freeze()
	cat := cb.ToColumn()

	ob := buffer.NewObjectBuffer(reflect.TypeOf(""), 4)
	for i, v := range []string{"hello", "𝄞", "world", ""} {
		if err := ob.Set(i, v); err != nil {
			t.Fatal(err)
		}
	}
	ob.Freeze()
	obj, err := ob.ToColumn(column.TypeDescriptor{ID: column.TypeObject, ValueClass: reflect.TypeOf("")})
	if err != nil {
		t.Fatal(err)
	}

	db := buffer.NewDateTimeBuffer(4)
	for i, secs := range []int64{1000, 2000, 3000} {
		if err := db.SetEpoch(i, secs, 0); err != nil {
			t.Fatal(err)
		}
	}
	if err := db.SetNull(3); err != nil {
		t.Fatal(err)
	}
	db.Freeze()
	dt := db.ToColumn()

	tb := buffer.NewTimeBuffer(4)
	for i, nanos := range []int64{0, 3600e9, 86399e9} {
		if err := tb.SetNanoOfDay(i, nanos); err != nil {
			t.Fatal(err)
		}
	}
	if err := tb.SetNull(3); err != nil {
		t.Fatal(err)
	}
	tb.Freeze()
	tm := tb.ToColumn()

	tbl, err := table.New(
		[]string{"real", "category", "object", "when", "clock"},
		[]column.Column{real, cat, obj, dt, tm},
	)
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

func TestStoreLoadRoundTrip(t *testing.T) {
	tbl := buildSampleTable(t)
	path := filepath.Join(t.TempDir(), "table.belt")

	if err := Store(tbl, path, Options{}); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if got.Width() != tbl.Width() || got.Height() != tbl.Height() {
		t.Fatalf("width/height = %d/%d, want %d/%d", got.Width(), got.Height(), tbl.Width(), tbl.Height())
	}
	for i, label := range tbl.Labels() {
		if got.Labels()[i] != label {
			t.Fatalf("label[%d] = %q, want %q", i, got.Labels()[i], label)
		}
	}

	wantReal := []float64{1.5, 2.5, 3.5, 4.5}
	gotReal := make([]float64, 4)
	got.Column(0).Fill(gotReal, 0)
	for i := range wantReal {
		if gotReal[i] != wantReal[i] {
			t.Fatalf("real[%d] = %v, want %v", i, gotReal[i], wantReal[i])
		}
	}

	wantCat := []any{"a", "b", "c", "a"}
	gotCat := make([]any, 4)
	got.Column(1).(column.ObjectFiller).FillObject(gotCat, 0)
	for i := range wantCat {
		if gotCat[i] != wantCat[i] {
			t.Fatalf("category[%d] = %v, want %v", i, gotCat[i], wantCat[i])
		}
	}

	wantObj := []any{"hello", "𝄞", "world", ""}
	gotObj := make([]any, 4)
	got.Column(2).(column.ObjectFiller).FillObject(gotObj, 0)
	for i := range wantObj {
		if gotObj[i] != wantObj[i] {
			t.Fatalf("object[%d] = %v, want %v", i, gotObj[i], wantObj[i])
		}
	}

	dtCol, ok := got.Column(3).(*column.DateTimeColumn)
	if !ok {
		t.Fatalf("column 3 type = %T, want *column.DateTimeColumn", got.Column(3))
	}
	wantSecs := []int64{1000, 2000, 3000, date.MissingDateTimeSeconds}
	for i, s := range dtCol.RawSeconds() {
		if s != wantSecs[i] {
			t.Fatalf("secs[%d] = %d, want %d", i, s, wantSecs[i])
		}
	}

	tmCol, ok := got.Column(4).(*column.TimeColumn)
	if !ok {
		t.Fatalf("column 4 type = %T, want *column.TimeColumn", got.Column(4))
	}
	raw := tmCol.Raw()
	if raw[0].NanoOfDay() != 0 || raw[1].NanoOfDay() != 3600e9 || raw[2].NanoOfDay() != 86399e9 {
		t.Fatalf("time-of-day values = %v", raw)
	}
	if !raw[3].IsMissing() {
		t.Fatal("row 3 should be missing")
	}
}

func TestStoreLoadWithCompression(t *testing.T) {
	tbl := buildSampleTable(t)
	path := filepath.Join(t.TempDir(), "table.belt")

	if err := Store(tbl, path, Options{Compression: "s2"}); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	wantObj := []any{"hello", "𝄞", "world", ""}
	gotObj := make([]any, 4)
	got.Column(2).(column.ObjectFiller).FillObject(gotObj, 0)
	for i := range wantObj {
		if gotObj[i] != wantObj[i] {
			t.Fatalf("object[%d] = %v, want %v", i, gotObj[i], wantObj[i])
		}
	}
}

func TestStoreOverwritesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.belt")
	if err := os.WriteFile(path, []byte("stale contents"), 0o644); err != nil {
		t.Fatal(err)
	}

	tbl := buildSampleTable(t)
	if err := Store(tbl, path, Options{}); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err != nil {
		t.Fatal(err)
	}
}

func TestLoadInvalidMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.belt")
	if err := os.WriteFile(path, make([]byte, 32), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if !errors.Is(err, belterr.InvalidMagic) {
		t.Fatalf("err = %v, want InvalidMagic", err)
	}
}

func TestLoadTruncated(t *testing.T) {
	tbl := buildSampleTable(t)
	path := filepath.Join(t.TempDir(), "table.belt")
	if err := Store(tbl, path, Options{}); err != nil {
		t.Fatal(err)
	}
	full, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	truncPath := filepath.Join(t.TempDir(), "trunc.belt")
	if err := os.WriteFile(truncPath, full[:len(full)-10], 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = Load(truncPath)
	if !errors.Is(err, belterr.Truncated) {
		t.Fatalf("err = %v, want Truncated", err)
	}
}

func TestLoadChecksumMismatch(t *testing.T) {
	tbl := buildSampleTable(t)
	path := filepath.Join(t.TempDir(), "table.belt")
	if err := Store(tbl, path, Options{}); err != nil {
		t.Fatal(err)
	}
	full, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	// corrupt the last payload byte, just ahead of the trailer's 4-byte
	// algorithm id and 32-byte blake2b-256 sum
	full[len(full)-4-32-1] ^= 0xff
	corruptPath := filepath.Join(t.TempDir(), "corrupt.belt")
	if err := os.WriteFile(corruptPath, full, 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = Load(corruptPath)
	if !errors.Is(err, belterr.DomainViolation) {
		t.Fatalf("err = %v, want DomainViolation", err)
	}
}
