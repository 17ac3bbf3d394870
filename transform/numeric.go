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

// Package transform implements the four transform-DSL surface
// operations of spec.md §4.8, each an executor.Calculator: numeric
// map, object reduce, sort (see package sortop) and row-select.
package transform

import (
	"math"

	"github.com/tablecore/belt/column"
	"github.com/tablecore/belt/executor"
)

// MapFunc computes one output row from the aligned values of the
// input columns (values[i] is the i-th input column's value for the
// current row).
type MapFunc func(values []float64) float64

// MapNumeric fills a dense-double column of cols[0].Size() rows, one
// per row of the (equal-length) input columns, by applying fn to each
// row's materialized values. integer requests round-half-to-even
// output (spec.md §4.8).
func MapNumeric(host executor.Host, cols []column.Column, fn MapFunc, integer bool, class executor.WorkloadClass, progress func(float64)) (column.Column, error) {
	n := 0
	if len(cols) > 0 {
		n = cols[0].Size()
	}
	calc := &numericMapCalculator{cols: cols, fn: fn, integer: integer, n: n}
	if _, err := executor.Run(host, n, class, calc, progress); err != nil {
		return nil, err
	}
	typ := column.TypeDescriptor{ID: column.TypeReal}
	if integer {
		typ.ID = column.TypeInteger
	}
	return column.NewDenseDouble(typ, calc.dst), nil
}

type numericMapCalculator struct {
	cols    []column.Column
	fn      MapFunc
	integer bool
	n       int
	dst     []float64
}

func (c *numericMapCalculator) Init(int) {
	c.dst = make([]float64, c.n)
}

func (c *numericMapCalculator) DoPart(from, to, b int) error {
	width := to - from
	bufs := make([][]float64, len(c.cols))
	for i, col := range c.cols {
		buf := make([]float64, width)
		col.Fill(buf, from)
		bufs[i] = buf
	}
	values := make([]float64, len(c.cols))
	for r := 0; r < width; r++ {
		for i := range bufs {
			values[i] = bufs[i][r]
		}
		v := c.fn(values)
		if c.integer {
			v = math.RoundToEven(v)
		}
		c.dst[from+r] = v
	}
	return nil
}

func (c *numericMapCalculator) Result() any { return c.dst }
