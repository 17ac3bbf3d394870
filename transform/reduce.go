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
	"github.com/tablecore/belt/belterr"
	"github.com/tablecore/belt/column"
	"github.com/tablecore/belt/executor"
)

// Supplier creates a fresh, batch-local accumulator. It must not
// return nil.
type Supplier func() any

// Reducer folds one row's materialized input values into acc,
// returning the updated accumulator.
type Reducer func(acc any, values []any) any

// Combiner folds two accumulators produced by independent batches
// into one. It must be associative and compatible with Supplier's
// identity value, since combining order across batches is unspecified.
type Combiner func(a, b any) any

// Reduce runs a batch-local supplier/reducer/combiner pipeline over
// cols (spec.md §4.8's object reducer). It fails with
// belterr.NullAccumulator if supplier ever returns nil.
func Reduce(host executor.Host, cols []column.Column, supplier Supplier, reducer Reducer, combiner Combiner, class executor.WorkloadClass, progress func(float64)) (any, error) {
	n := 0
	if len(cols) > 0 {
		n = cols[0].Size()
	}
	calc := &reduceCalculator{cols: cols, supplier: supplier, reducer: reducer, combiner: combiner}
	result, err := executor.Run(host, n, class, calc, progress)
	if err != nil {
		return nil, err
	}
	return result, nil
}

type reduceCalculator struct {
	cols     []column.Column
	supplier Supplier
	reducer  Reducer
	combiner Combiner
	partials []any
	failed   bool
}

func (c *reduceCalculator) Init(numberOfBatches int) {
	c.partials = make([]any, numberOfBatches)
}

func (c *reduceCalculator) DoPart(from, to, b int) error {
	acc := c.supplier()
	if acc == nil {
		return belterr.NullAccumulator
	}
	width := to - from
	bufs := make([][]any, len(c.cols))
	for i, col := range c.cols {
		buf := make([]any, width)
		fillObjectLike(col, buf, from)
		bufs[i] = buf
	}
	values := make([]any, len(c.cols))
	for r := 0; r < width; r++ {
		for i := range bufs {
			values[i] = bufs[i][r]
		}
		acc = c.reducer(acc, values)
	}
	c.partials[b] = acc
	return nil
}

func (c *reduceCalculator) Result() any {
	var acc any
	for _, p := range c.partials {
		if acc == nil {
			acc = p
			continue
		}
		acc = c.combiner(acc, p)
	}
	return acc
}

// fillObjectLike materializes width rows of col starting at startRow
// into dst as boxed values: object/categorical/temporal columns use
// their ObjectFiller capability directly, everything else is boxed
// from its float64 representation.
func fillObjectLike(col column.Column, dst []any, startRow int) {
	if of, ok := col.(column.ObjectFiller); ok {
		of.FillObject(dst, startRow)
		return
	}
	buf := make([]float64, len(dst))
	col.Fill(buf, startRow)
	for i, v := range buf {
		dst[i] = v
	}
}
