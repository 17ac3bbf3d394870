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
	"reflect"
	"testing"

	"github.com/tablecore/belt/belterr"
	"github.com/tablecore/belt/column"
)

func TestObjectBufferSetRejectsWrongClass(t *testing.T) {
	b := NewObjectBuffer(reflect.TypeOf(""), 2)
	if err := b.Set(0, "ok"); err != nil {
		t.Fatal(err)
	}
	if err := b.Set(1, 42); !errors.Is(err, belterr.TypeMismatch) {
		t.Fatalf("Set(int) = %v, want TypeMismatch", err)
	}
}

func TestObjectBufferToColumn(t *testing.T) {
	b := NewObjectBuffer(reflect.TypeOf(""), 3)
	b.Set(0, "a")
	b.Set(2, "c")
	typ := column.TypeDescriptor{ID: column.TypeObject, ValueClass: reflect.TypeOf("")}
	col, err := b.ToColumn(typ)
	if err != nil {
		t.Fatal(err)
	}
	objs := make([]any, 3)
	col.FillObject(objs, 0)
	if objs[0] != "a" || objs[1] != nil || objs[2] != "c" {
		t.Fatalf("FillObject = %v", objs)
	}
}

func TestObjectBufferToColumnTypeMismatch(t *testing.T) {
	b := NewObjectBuffer(reflect.TypeOf(""), 1)
	typ := column.TypeDescriptor{ID: column.TypeObject, ValueClass: reflect.TypeOf(0)}
	if _, err := b.ToColumn(typ); !errors.Is(err, belterr.TypeMismatch) {
		t.Fatalf("expected TypeMismatch, got %v", err)
	}
}
