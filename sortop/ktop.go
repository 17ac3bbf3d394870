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

package sortop

import (
	"github.com/tablecore/belt/column"
	"github.com/tablecore/belt/executor"
	"github.com/tablecore/belt/internal/heap"
)

// KTop keeps the limit rows that sort first under ord, without ever
// materializing more than limit+1 rows at a time: a bounded max-heap
// over the kept rows, indirected by index so that displacing the
// current worst entry is a value overwrite rather than a heap-node
// swap. Grounded on sorting.Ktop's Add/Merge/Capture shape, adapted
// from Ion record storage to plain row numbers.
type KTop struct {
	ord      orderer
	rows     []int32
	indirect []int
	limit    int
}

// NewKTop returns a KTop that retains the limit rows of col that sort
// first in order.
func NewKTop(limit int, order column.Order, isMissing func(row int) bool, less func(i, j int) bool) *KTop {
	return &KTop{
		ord:   orderer{order: order, isMissing: isMissing, less: less},
		limit: limit,
	}
}

// Full reports whether as many rows as limit have been added.
func (k *KTop) Full() bool { return len(k.indirect) == k.limit }

// Add offers row for inclusion, returning true if it was kept (either
// because the heap was not yet full, or because it displaced the
// current worst kept row).
func (k *KTop) Add(row int32) bool {
	if k.limit <= 0 {
		return false
	}
	if len(k.rows) < k.limit {
		n := len(k.rows)
		k.rows = append(k.rows, row)
		heap.PushSlice(&k.indirect, n, k.greater)
		return true
	}
	worst := k.rows[k.indirect[0]]
	if k.ord.before(row, worst) {
		k.rows[k.indirect[0]] = row
		heap.FixSlice(k.indirect, 0, k.greater)
		return true
	}
	return false
}

// Merge folds another KTop's retained rows into k.
func (k *KTop) Merge(o *KTop) {
	for _, row := range o.rows {
		k.Add(row)
	}
}

// Capture drains the heap and returns the retained rows in order.
func (k *KTop) Capture() []int32 {
	result := make([]int32, len(k.indirect))
	i := len(result) - 1
	for len(k.indirect) > 0 {
		idx := heap.PopSlice(&k.indirect, k.greater)
		result[i] = k.rows[idx]
		i--
	}
	return result
}

// greater orders indirect indices by "row at a sorts after row at b",
// making indirect[0] the index of the worst (last-sorting) kept row.
func (k *KTop) greater(a, b int) bool {
	return k.ord.before(k.rows[b], k.rows[a])
}

// topKCalculator is an executor.Calculator: each batch collects its
// own KTop, and Result merges every batch's KTop sequentially (cheap,
// since each carries at most limit rows).
type topKCalculator struct {
	ord     orderer
	limit   int
	perPart []*KTop
}

func (c *topKCalculator) Init(numberOfBatches int) {
	c.perPart = make([]*KTop, numberOfBatches)
}

func (c *topKCalculator) DoPart(from, to, b int) error {
	k := &KTop{ord: c.ord, limit: c.limit}
	for row := from; row < to; row++ {
		k.Add(int32(row))
	}
	c.perPart[b] = k
	return nil
}

func (c *topKCalculator) Result() any {
	merged := &KTop{ord: c.ord, limit: c.limit}
	for _, k := range c.perPart {
		merged.Merge(k)
	}
	return merged.Capture()
}

// TopK returns the row indices of the limit rows of col that sort
// first in order, computed by collecting a bounded KTop per executor
// batch and merging the batch-local heaps.
func TopK(host executor.Host, col column.Column, limit int, order column.Order, class executor.WorkloadClass, progress func(float64)) ([]int32, error) {
	isMissing, less, err := column.ExtractOrder(col)
	if err != nil {
		return nil, err
	}
	calc := &topKCalculator{ord: orderer{order: order, isMissing: isMissing, less: less}, limit: limit}
	result, err := executor.Run(host, col.Size(), class, calc, progress)
	if err != nil {
		return nil, err
	}
	return result.([]int32), nil
}
