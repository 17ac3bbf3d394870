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
	"reflect"
	"sync"

	"github.com/tablecore/belt/belterr"
	"github.com/tablecore/belt/column"
)

// ObjectBuffer is the mutable counterpart of column.Object: a fixed
// number of nullable slots of a declared value class.
type ObjectBuffer struct {
	class reflect.Type
	data  []any

	mu     sync.RWMutex
	frozen bool
}

// NewObjectBuffer allocates a buffer of size nil slots for values
// assignable to class.
func NewObjectBuffer(class reflect.Type, size int) *ObjectBuffer {
	return &ObjectBuffer{class: class, data: make([]any, size)}
}

func (b *ObjectBuffer) Size() int { return len(b.data) }

func (b *ObjectBuffer) isFrozen() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.frozen
}

// Set writes value to slot i. value must be nil or assignable to the
// buffer's declared class.
func (b *ObjectBuffer) Set(i int, value any) error {
	if b.isFrozen() {
		return belterr.Frozen
	}
	if value != nil && b.class != nil && !reflect.TypeOf(value).AssignableTo(b.class) {
		return belterr.TypeMismatch
	}
	b.data[i] = value
	return nil
}

// Get returns the value at slot i, or nil.
func (b *ObjectBuffer) Get(i int) any { return b.data[i] }

// Freeze seals the buffer; subsequent Set calls fail with
// belterr.Frozen.
func (b *ObjectBuffer) Freeze() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frozen = true
}

// ToColumn freezes the buffer and materializes a column.Object of the
// given type. It fails with belterr.TypeMismatch if typ's declared
// value class differs from the buffer's.
func (b *ObjectBuffer) ToColumn(typ column.TypeDescriptor) (*column.Object, error) {
	if vc, ok := typ.ValueClass.(reflect.Type); ok && b.class != nil && vc != b.class {
		return nil, belterr.TypeMismatch
	}
	b.Freeze()
	out := make([]any, len(b.data))
	copy(out, b.data)
	return column.NewObject(typ, out), nil
}
