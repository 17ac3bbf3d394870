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

// Package buffer implements the mutable, growable-dictionary
// counterpart of package column: categorical, object and temporal
// buffers that concurrent writers fill incrementally before freezing
// into an immutable column.
package buffer

import (
	"math"
	"sync"

	"github.com/tablecore/belt/belterr"
	"github.com/tablecore/belt/column"
	"github.com/tablecore/belt/dict"
	"github.com/tablecore/belt/internal/packedint"
)

// indexWriter abstracts the mutable payload a CategoricalBuffer
// writes lanes into: packed 2/4/8-bit lanes (striped by byte for the
// sub-byte widths) or plain 16-/32-bit slices.
type indexWriter interface {
	len() int
	get(i int) int32
	set(i int, v int32)
}

type packedIndexWriter struct {
	width packedint.Width
	buf   []byte
	n     int
	locks []sync.Mutex // nil for width 8: lanes never share a byte
}

func newPackedIndexWriter(width packedint.Width, n int) *packedIndexWriter {
	w := &packedIndexWriter{width: width, buf: make([]byte, packedint.ByteLen(width, n)), n: n}
	if width != packedint.Width8 {
		w.locks = make([]sync.Mutex, packedint.ByteLen(width, n))
	}
	return w
}

func (w *packedIndexWriter) len() int        { return w.n }
func (w *packedIndexWriter) get(i int) int32 { return int32(packedint.Read(w.width, w.buf, i)) }

func (w *packedIndexWriter) set(i int, v int32) {
	if w.locks == nil {
		packedint.Write(w.width, w.buf, i, uint8(v))
		return
	}
	b := packedint.ByteIndex(w.width, i)
	w.locks[b].Lock()
	packedint.Write(w.width, w.buf, i, uint8(v))
	w.locks[b].Unlock()
}

type wideIndexWriter16 struct{ data []uint16 }

func (w *wideIndexWriter16) len() int          { return len(w.data) }
func (w *wideIndexWriter16) get(i int) int32   { return int32(w.data[i]) }
func (w *wideIndexWriter16) set(i int, v int32) { w.data[i] = uint16(v) }

type wideIndexWriter32 struct{ data []int32 }

func (w *wideIndexWriter32) len() int          { return len(w.data) }
func (w *wideIndexWriter32) get(i int) int32   { return w.data[i] }
func (w *wideIndexWriter32) set(i int, v int32) { w.data[i] = v }

func newIndexWriter(width int, n int) indexWriter {
	switch width {
	case 2:
		return newPackedIndexWriter(packedint.Width2, n)
	case 4:
		return newPackedIndexWriter(packedint.Width4, n)
	case 8:
		return newPackedIndexWriter(packedint.Width8, n)
	case 16:
		return &wideIndexWriter16{data: make([]uint16, n)}
	case 32:
		return &wideIndexWriter32{data: make([]int32, n)}
	default:
		panic("buffer: unsupported categorical index width")
	}
}

func typeIDForWidth(width int) column.TypeID {
	switch width {
	case 2:
		return column.TypeNominal2
	case 4:
		return column.TypeNominal4
	case 8:
		return column.TypeNominal8
	case 16:
		return column.TypeNominal16
	case 32:
		return column.TypeNominal32
	default:
		panic("buffer: unsupported categorical index width")
	}
}

func maxNonNullValues(width int) int {
	if width >= 32 {
		return math.MaxInt32
	}
	return (1 << uint(width)) - 1
}

// CategoricalBuffer is the mutable counterpart of column.Categorical:
// a fixed number of lanes backed by a growable dictionary, safe for
// concurrent Set/SetSave calls across disjoint (and, for width 2/4,
// overlapping) lanes.
type CategoricalBuffer struct {
	width   int
	dict    *dict.Dictionary
	store   indexWriter
	internM sync.Mutex // serializes "is this a brand new value" decisions

	mu     sync.RWMutex
	frozen bool
}

// NewCategoricalBuffer allocates a buffer of size lanes, each
// initialized to the null category, using a fresh dictionary.
func NewCategoricalBuffer(width, size int) *CategoricalBuffer {
	return &CategoricalBuffer{width: width, dict: dict.New(), store: newIndexWriter(width, size)}
}

func (b *CategoricalBuffer) Size() int        { return b.store.len() }
func (b *CategoricalBuffer) IndexFormat() int { return b.width }

func (b *CategoricalBuffer) isFrozen() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.frozen
}

// resolve returns the dictionary index for value, interning it if
// new. ok is false when the value is new but would overflow the
// buffer's index width; in that case nothing is interned or written.
func (b *CategoricalBuffer) resolve(value string) (idx int32, ok bool) {
	if i, found := b.dict.IndexOf(value); found {
		return int32(i), true
	}
	b.internM.Lock()
	defer b.internM.Unlock()
	if i, found := b.dict.IndexOf(value); found {
		return int32(i), true
	}
	if b.dict.Size()+1 > maxNonNullValues(b.width) {
		return 0, false
	}
	return int32(b.dict.Intern(value)), true
}

// Set interns value and writes its index to lane i. It fails with
// belterr.Frozen if the buffer has been sealed, or
// belterr.CategoryOverflow if value is new and the dictionary cannot
// grow within this buffer's index width.
func (b *CategoricalBuffer) Set(i int, value string) error {
	if b.isFrozen() {
		return belterr.Frozen
	}
	idx, ok := b.resolve(value)
	if !ok {
		return belterr.CategoryOverflow
	}
	b.store.set(i, idx)
	return nil
}

// SetSave behaves like Set but reports overflow by returning false
// instead of an error, leaving lane i untouched.
func (b *CategoricalBuffer) SetSave(i int, value string) (bool, error) {
	if b.isFrozen() {
		return false, belterr.Frozen
	}
	idx, ok := b.resolve(value)
	if !ok {
		return false, nil
	}
	b.store.set(i, idx)
	return true, nil
}

// SetNull clears lane i back to the null category.
func (b *CategoricalBuffer) SetNull(i int) error {
	if b.isFrozen() {
		return belterr.Frozen
	}
	b.store.set(i, 0)
	return nil
}

// Get returns the category value at lane i, or ("", false) if null.
func (b *CategoricalBuffer) Get(i int) (string, bool) {
	idx := b.store.get(i)
	if idx == 0 {
		return "", false
	}
	return b.dict.At(int(idx))
}

// DifferentValues returns the current number of distinct non-null
// categories.
func (b *CategoricalBuffer) DifferentValues() int { return b.dict.Size() }

// SetComparator installs the ordering the resulting column's Sort
// will use.
func (b *CategoricalBuffer) SetComparator(cmp dict.Comparator) {
	b.dict.SetComparator(cmp)
}

// Freeze seals the buffer; subsequent Set/SetSave calls fail with
// belterr.Frozen. Freeze is idempotent.
func (b *CategoricalBuffer) Freeze() {
	b.mu.Lock()
	b.frozen = true
	b.mu.Unlock()
	b.dict.Freeze()
}

// ToColumn freezes the buffer and materializes a column.Categorical
// sharing this buffer's payload and dictionary.
func (b *CategoricalBuffer) ToColumn() *column.Categorical {
	b.Freeze()
	typ := column.TypeDescriptor{ID: typeIDForWidth(b.width)}
	return b.buildColumn(typ, 0)
}

// ToBooleanColumn freezes the buffer and materializes a boolean-view
// column.Categorical. It fails with belterr.NotBoolean if the
// dictionary carries more than two non-null entries, or if
// positiveValue was never set on this buffer.
func (b *CategoricalBuffer) ToBooleanColumn(positiveValue string) (*column.Categorical, error) {
	if b.dict.Size() > 2 {
		return nil, belterr.NotBoolean
	}
	idx, ok := b.dict.IndexOf(positiveValue)
	if !ok {
		return nil, belterr.NotBoolean
	}
	b.Freeze()
	typ := column.TypeDescriptor{ID: typeIDForWidth(b.width)}
	return b.buildColumn(typ, idx), nil
}

func (b *CategoricalBuffer) buildColumn(typ column.TypeDescriptor, positiveIndex int) *column.Categorical {
	switch s := b.store.(type) {
	case *packedIndexWriter:
		return column.NewCategoricalPacked(typ, b.dict, s.width, s.buf, s.n, positiveIndex)
	case *wideIndexWriter16:
		return column.NewCategorical16(typ, b.dict, s.data, positiveIndex)
	case *wideIndexWriter32:
		return column.NewCategorical32(typ, b.dict, s.data, positiveIndex)
	default:
		panic("buffer: unreachable index store kind")
	}
}

// FromColumn builds a CategoricalBuffer from an existing column,
// copying its dictionary and payload at the requested width. It fails
// with belterr.TypeMismatch if col is not categorical, or
// belterr.FormatNarrowing if col's index width exceeds width.
func FromColumn(col column.Column, width int) (*CategoricalBuffer, error) {
	cat, ok := col.(*column.Categorical)
	if !ok {
		return nil, belterr.TypeMismatch
	}
	if cat.IndexWidth() > width {
		return nil, belterr.FormatNarrowing
	}

	src := cat.Dictionary()
	newDict := dict.New()
	for _, v := range src.Values() {
		newDict.Intern(v)
	}
	if cmp := src.Comparator(); cmp != nil {
		newDict.SetComparator(cmp)
	}

	n := cat.Size()
	idx := make([]int32, n)
	cat.FillIndex(idx, 0)

	store := newIndexWriter(width, n)
	for i, v := range idx {
		store.set(i, v)
	}
	return &CategoricalBuffer{width: width, dict: newDict, store: store}, nil
}
