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
	"github.com/tablecore/belt/column"
	"github.com/tablecore/belt/executor"
)

// RowSelect produces col viewed through rowMap (spec.md §4.8's
// row-select), routed through the executor so cancellation and
// progress apply even though the permutation itself is a column.Map
// overlay rather than per-row work.
func RowSelect(host executor.Host, col column.Column, rowMap []int32, preferView bool, class executor.WorkloadClass, progress func(float64)) (column.Column, error) {
	calc := &rowSelectCalculator{}
	if _, err := executor.Run(host, len(rowMap), class, calc, progress); err != nil {
		return nil, err
	}
	return col.Map(rowMap, preferView), nil
}

// RowSelectRange is RowSelect specialized to a contiguous [from, to)
// range, avoiding the caller having to materialize an explicit index
// array for the common "slice of rows" case.
func RowSelectRange(host executor.Host, col column.Column, from, to int, preferView bool, class executor.WorkloadClass, progress func(float64)) (column.Column, error) {
	rowMap := make([]int32, to-from)
	for i := range rowMap {
		rowMap[i] = int32(from + i)
	}
	return RowSelect(host, col, rowMap, preferView, class, progress)
}

// rowSelectCalculator does no per-batch work: row-select's cost is
// building rowMap (the caller's job) and the Map overlay, which is
// O(1). It exists so RowSelect still flows through the executor's
// cancellation and progress contract.
type rowSelectCalculator struct{}

func (rowSelectCalculator) Init(int)                     {}
func (rowSelectCalculator) DoPart(from, to, b int) error { return nil }
func (rowSelectCalculator) Result() any                  { return nil }
