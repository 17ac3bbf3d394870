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

// Package table implements the Table object of spec.md §3's lifecycle
// paragraph: a fixed vector of named columns, built once from columns
// plus unique labels.
package table

import (
	"github.com/tablecore/belt/belterr"
	"github.com/tablecore/belt/column"
)

// Table is an immutable vector of named columns. Column heights are
// not required to agree here (a column's own Size() is authoritative
// for its rows); Height reports the first column's size as the
// table's nominal row count, matching how the binary format (spec.md
// §6) records a single table-wide height.
type Table struct {
	cols   []column.Column
	labels []string
	index  map[string]int
}

// New builds a Table from labels and cols, which must be the same
// length and carry unique, non-empty labels; otherwise New fails with
// belterr.DomainViolation.
func New(labels []string, cols []column.Column) (*Table, error) {
	if len(labels) != len(cols) {
		return nil, belterr.DomainViolation
	}
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		if l == "" {
			return nil, belterr.DomainViolation
		}
		if _, dup := index[l]; dup {
			return nil, belterr.DomainViolation
		}
		index[l] = i
	}
	return &Table{
		cols:   append([]column.Column(nil), cols...),
		labels: append([]string(nil), labels...),
		index:  index,
	}, nil
}

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.cols) }

// Height returns the nominal row count: the first column's size, or 0
// for a zero-width table.
func (t *Table) Height() int {
	if len(t.cols) == 0 {
		return 0
	}
	return t.cols[0].Size()
}

// Labels returns a copy of the table's column labels, in column order.
func (t *Table) Labels() []string {
	return append([]string(nil), t.labels...)
}

// Column returns the column at position i.
func (t *Table) Column(i int) column.Column { return t.cols[i] }

// ColumnByName returns the named column, or ok=false if no column
// carries that label.
func (t *Table) ColumnByName(name string) (col column.Column, ok bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.cols[i], true
}

// IndexOf returns the column position for name, or ok=false if absent.
func (t *Table) IndexOf(name string) (i int, ok bool) {
	i, ok = t.index[name]
	return i, ok
}

// Map applies rowMap to every column, sharing one column.ComposeCache
// across the whole table so that columns already backed by the same
// Mapped base (the common case: every column of a table re-sorted by
// the same permutation) flatten their row maps once instead of once
// per column.
func (t *Table) Map(rowMap []int32, preferView bool) *Table {
	cache := column.NewComposeCache()
	newCols := make([]column.Column, len(t.cols))
	for i, c := range t.cols {
		if m, ok := c.(*column.Mapped); ok {
			newCols[i] = m.MapCached(rowMap, preferView, cache)
			continue
		}
		newCols[i] = c.Map(rowMap, preferView)
	}
	return &Table{cols: newCols, labels: t.labels, index: t.index}
}
