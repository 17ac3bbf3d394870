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

// Package sortop implements the sort operator of spec.md §4.6/§4.8: a
// merge sort partitioned across the parallel executor's batches, each
// batch sorted sequentially and then merged in a single multi-way pass.
// The batch/worker shape is grounded on sorting.ThreadPool's persistent
// worker queue and sorting.AsyncConsumer's batch-then-merge pipeline;
// the k-way merge and k-top selection reuse the heap package's
// indirection idiom (sorting.Ktop) rather than Ktop's Ion-specific
// record storage.
package sortop

import (
	"golang.org/x/exp/slices"

	"github.com/tablecore/belt/column"
	"github.com/tablecore/belt/executor"
	"github.com/tablecore/belt/internal/heap"
)

// orderer is the total, tie-broken ordering relation shared by the
// batch sort, the merge pass and k-top selection: missing rows sort
// greatest regardless of direction, non-missing rows follow col's
// comparator, and rows that compare equal under that comparator keep
// their original relative position (stability), which for a plain
// []int32 of row numbers just means "lower row number first".
type orderer struct {
	order     column.Order
	isMissing func(row int) bool
	less      func(i, j int) bool
}

// before reports whether row i must sort ahead of row j.
func (o orderer) before(i, j int32) bool {
	ii, jj := int(i), int(j)
	mi, mj := o.isMissing(ii), o.isMissing(jj)
	if mi != mj {
		return mj
	}
	if mi && mj {
		return i < j
	}
	var lt, gt bool
	if o.order == column.Descending {
		lt, gt = o.less(jj, ii), o.less(ii, jj)
	} else {
		lt, gt = o.less(ii, jj), o.less(jj, ii)
	}
	if lt {
		return true
	}
	if gt {
		return false
	}
	return i < j
}

// Sort returns a permutation p of [0, col.Size()) such that col viewed
// through p is in the requested order, computed by sorting each of the
// executor's batches independently and merging the sorted runs. It
// fails with the same belterr.Unordered condition column.Sort would
// for a column with no intrinsic order and no comparator.
func Sort(host executor.Host, col column.Column, order column.Order, class executor.WorkloadClass, progress func(float64)) ([]int32, error) {
	isMissing, less, err := column.ExtractOrder(col)
	if err != nil {
		return nil, err
	}
	calc := &sortCalculator{ord: orderer{order: order, isMissing: isMissing, less: less}}
	result, err := executor.Run(host, col.Size(), class, calc, progress)
	if err != nil {
		return nil, err
	}
	return result.([]int32), nil
}

// sortCalculator is an executor.Calculator: each batch is sorted
// in-place into its own []int32 run, and Result merges every run with
// a single k-way pass instead of sorting.AsyncConsumer's repeated
// pairwise passes, since the heap package makes an arbitrary-width
// merge no more code than a two-way one.
type sortCalculator struct {
	ord     orderer
	batches [][]int32
}

func (c *sortCalculator) Init(numberOfBatches int) {
	c.batches = make([][]int32, numberOfBatches)
}

func (c *sortCalculator) DoPart(from, to, b int) error {
	rows := make([]int32, to-from)
	for i := range rows {
		rows[i] = int32(from + i)
	}
	slices.SortFunc(rows, func(a, b int32) bool { return c.ord.before(a, b) })
	c.batches[b] = rows
	return nil
}

func (c *sortCalculator) Result() any {
	return mergeRuns(c.batches, c.ord)
}

// run is one batch's sorted row slice plus a read cursor, ordered in
// the merge heap by the row currently at its cursor.
type run struct {
	rows []int32
	pos  int
}

func mergeRuns(batches [][]int32, ord orderer) []int32 {
	total := 0
	runs := make([]*run, 0, len(batches))
	for _, b := range batches {
		total += len(b)
		if len(b) > 0 {
			runs = append(runs, &run{rows: b})
		}
	}
	if len(runs) == 0 {
		return []int32{}
	}

	// live holds indices into runs for the runs not yet exhausted;
	// the heap orders those indices by the row currently at each
	// run's cursor, so the merge only ever swaps small ints, never
	// the run slices themselves.
	live := make([]int, len(runs))
	for i := range live {
		live[i] = i
	}
	ahead := func(a, b int) bool { return ord.before(runs[a].rows[runs[a].pos], runs[b].rows[runs[b].pos]) }
	heap.OrderSlice(live, ahead)

	out := make([]int32, 0, total)
	for len(live) > 0 {
		top := runs[live[0]]
		out = append(out, top.rows[top.pos])
		top.pos++
		if top.pos >= len(top.rows) {
			heap.PopSlice(&live, ahead)
		} else {
			heap.FixSlice(live, 0, ahead)
		}
	}
	return out
}
