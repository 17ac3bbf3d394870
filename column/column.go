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

// Package column implements the columnar data model: the concrete
// column variants (dense-double, packed-categorical, object,
// date-time, time-of-day), the lazy row-permutation overlay that lets
// sort/row-select avoid copying payloads, and the invariants binding
// index width, dictionary size and row-mapping bounds.
//
// A Column is a closed-world sum type dispatched through a small set
// of concrete struct types rather than an open interface hierarchy:
// every variant this engine needs is known in advance (real/integer,
// five categorical index widths, object, date-time, time-of-day, and
// the mapped overlay), so a tagged variant fits better than letting
// arbitrary third parties register new column kinds. Capabilities
// that not every variant has (object fill, index fill, boolean view,
// an installable comparator) are expressed as small optional
// interfaces that a caller type-asserts for, the same way the
// standard library expects callers to assert io.ReaderAt off an
// io.Reader.
package column

import (
	"math"
	"sort"

	"github.com/tablecore/belt/belterr"
)

// TypeID names the wire/logical type of a column, matching the type
// table entries of the binary format (spec.md §6).
type TypeID int

const (
	TypeReal TypeID = iota
	TypeInteger
	TypeNominal2
	TypeNominal4
	TypeNominal8
	TypeNominal16
	TypeNominal32
	TypeDateTime
	TypeTime
	TypeObject
)

func (t TypeID) String() string {
	switch t {
	case TypeReal:
		return "real"
	case TypeInteger:
		return "integer"
	case TypeNominal2:
		return "nominal2"
	case TypeNominal4:
		return "nominal4"
	case TypeNominal8:
		return "nominal8"
	case TypeNominal16:
		return "nominal16"
	case TypeNominal32:
		return "nominal32"
	case TypeDateTime:
		return "date-time"
	case TypeTime:
		return "time"
	case TypeObject:
		return "object"
	default:
		return "unknown"
	}
}

// IsNominal reports whether id is one of the five packed-categorical
// type ids.
func (t TypeID) IsNominal() bool {
	return t >= TypeNominal2 && t <= TypeNominal32
}

// ObjectComparator orders two non-nil object-column values. It must
// behave like strings.Compare: negative if a < b, zero if equal,
// positive if a > b.
type ObjectComparator func(a, b any) int

// TypeDescriptor is the type carried by every column: an id, plus
// (for object columns) the declared element class and an optional
// comparator used by sort.
type TypeDescriptor struct {
	ID TypeID
	// ValueClass names the Go type object-column elements must be
	// assignable to (e.g. reflect.TypeOf("") for string-valued
	// columns). Unused for non-object columns.
	ValueClass any
	// Comparator, if non-nil, orders object-column values for sort.
	Comparator ObjectComparator
}

// Order is a sort direction.
type Order int

const (
	Ascending Order = iota
	Descending
)

// Column is the capability set every column variant implements:
// size, type, numeric materialization, row-permutation, and
// intrinsic/comparator-driven sort. Capabilities not every variant
// has (object fill, index fill, boolean view) are separate
// interfaces; use a type assertion to obtain them.
type Column interface {
	// Size returns the number of logical rows.
	Size() int
	// Type returns the column's type descriptor.
	Type() TypeDescriptor
	// Fill writes up to len(dst) logical rows starting at startRow
	// into dst. Rows outside [0, Size()) produce NaN. Fill never
	// reallocates dst.
	Fill(dst []float64, startRow int)
	// FillStrided is the interleaved form of Fill: logical row
	// startRow+k is written to dst[offset+k*stride].
	FillStrided(dst []float64, startRow, offset, stride int)
	// Map produces a new column whose logical row i equals
	// self[rowMap[i]], with out-of-range indices yielding missing.
	// preferView suggests (but never requires) an overlay
	// implementation; semantics are identical either way.
	Map(rowMap []int32, preferView bool) Column
	// Sort returns a permutation p such that the column indexed
	// through p is in the requested order: stable, with missing
	// values sorted greatest (last) regardless of direction.
	Sort(order Order) ([]int32, error)
}

// ObjectFiller is implemented by categorical, object and temporal
// columns: it materializes logical rows as dictionary strings, boxed
// object values, or date.Time / date.TimeOfDay values.
type ObjectFiller interface {
	FillObject(dst []any, startRow int)
}

// IndexFiller is implemented only by categorical columns: it
// materializes logical rows as raw dictionary indices.
type IndexFiller interface {
	FillIndex(dst []int32, startRow int)
}

// BooleanViewer is implemented by every categorical column (and by
// Mapped overlays); PositiveIndex reports whether the dictionary has
// been declared boolean (spec.md §9 "Boolean-view on a categorical
// column"). BoolAt returns the boolean value of a row,
// or ok=false if the row is missing.
type BooleanViewer interface {
	// PositiveIndex returns the dictionary index of the positive
	// class, or (0, false) if the column has no boolean view.
	PositiveIndex() (int, bool)
	// BoolAt returns whether row equals the positive class, or
	// ok=false if row is missing (index 0) or out of range.
	BoolAt(row int) (value bool, ok bool)
}

// floatSource is the internal single-row accessor every concrete
// variant implements; Fill/FillStrided are written once, generically,
// in terms of it.
type floatSource interface {
	size() int
	floatAt(row int) float64
}

func fillFloat(src floatSource, dst []float64, startRow int) {
	n := src.size()
	for k := range dst {
		row := startRow + k
		if row < 0 || row >= n {
			dst[k] = math.NaN()
			continue
		}
		dst[k] = src.floatAt(row)
	}
}

func fillFloatStrided(src floatSource, dst []float64, startRow, offset, stride int) {
	n := src.size()
	if stride <= 0 {
		stride = 1
	}
	for k := 0; ; k++ {
		pos := offset + k*stride
		if pos < 0 || pos >= len(dst) {
			break
		}
		row := startRow + k
		if row < 0 || row >= n {
			dst[pos] = math.NaN()
		} else {
			dst[pos] = src.floatAt(row)
		}
	}
}

// objectSource is the internal single-row accessor for the object
// fill contract.
type objectSource interface {
	size() int
	objectAt(row int) any
}

func fillObject(src objectSource, dst []any, startRow int) {
	n := src.size()
	for k := range dst {
		row := startRow + k
		if row < 0 || row >= n {
			dst[k] = nil
			continue
		}
		dst[k] = src.objectAt(row)
	}
}

// ExtractOrder returns the missing predicate and less-than comparator
// that Sort would use for col, so that other packages (the sort
// operator's batch/merge implementation) can reproduce the exact same
// ordering without re-deriving per-variant comparison logic. It
// returns belterr-compatible errors the same way Sort does: a
// *Categorical with no dictionary comparator, or an *Object with no
// type comparator, yields isMissing == nil and an error.
func ExtractOrder(col Column) (isMissing func(row int) bool, less func(i, j int) bool, err error) {
	switch c := col.(type) {
	case *Categorical:
		rank, ok := c.dict.Ranks()
		if !ok {
			return nil, nil, belterr.Unordered
		}
		return func(i int) bool { return c.store.get(i) == 0 },
			func(i, j int) bool { return rank[c.store.get(i)-1] < rank[c.store.get(j)-1] },
			nil
	case *Object:
		if c.typ.Comparator == nil {
			return nil, nil, belterr.Unordered
		}
		return func(i int) bool { return c.data[i] == nil },
			func(i, j int) bool { return c.typ.Comparator(c.data[i], c.data[j]) < 0 },
			nil
	case *Mapped:
		return mappedOrder(c)
	}
	if fs, ok := col.(floatSource); ok {
		return func(i int) bool { return math.IsNaN(fs.floatAt(i)) },
			func(i, j int) bool { return fs.floatAt(i) < fs.floatAt(j) },
			nil
	}
	return nil, nil, belterr.Unordered
}

// sortIndices builds a stable permutation of [0, n) given a missing
// predicate and a less-than comparator over non-missing rows. Missing
// rows always sort last, independent of order, matching spec.md
// §4.6's "nulls-last" rule.
func sortIndices(n int, order Order, isMissing func(i int) bool, less func(i, j int) bool) []int32 {
	idx := make([]int32, n)
	for i := range idx {
		idx[i] = int32(i)
	}
	sort.SliceStable(idx, func(a, b int) bool {
		i, j := int(idx[a]), int(idx[b])
		mi, mj := isMissing(i), isMissing(j)
		if mi != mj {
			return mj
		}
		if mi && mj {
			return false
		}
		if order == Descending {
			return less(j, i)
		}
		return less(i, j)
	})
	return idx
}
