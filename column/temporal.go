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

package column

import (
	"math"

	"github.com/tablecore/belt/date"
)

// DateTimeColumn stores one date.Time per row as a (seconds, nanos)
// pair, the layout of spec.md's DateTime type:
// "seconds: signed 64, nanos: unsigned 30 (optional, defaults 0),
// missing sentinel on seconds". Fill projects rows to epoch-seconds
// as a float64 (fractional part from nanos); FillObject yields the
// full-precision date.Time.
type DateTimeColumn struct {
	typ   TypeDescriptor
	secs  []int64
	nanos []uint32 // nil if no row ever carries a nanosecond component
}

// NewDateTimeColumn freezes secs (and, if non-nil, nanos) into a
// DateTimeColumn. A row is missing when secs[row] equals
// date.MissingDateTimeSeconds.
func NewDateTimeColumn(typ TypeDescriptor, secs []int64, nanos []uint32) *DateTimeColumn {
	return &DateTimeColumn{typ: typ, secs: secs, nanos: nanos}
}

func (c *DateTimeColumn) Size() int            { return len(c.secs) }
func (c *DateTimeColumn) Type() TypeDescriptor { return c.typ }
func (c *DateTimeColumn) size() int            { return len(c.secs) }

func (c *DateTimeColumn) isMissing(row int) bool {
	return c.secs[row] == date.MissingDateTimeSeconds
}

func (c *DateTimeColumn) nanoAt(row int) uint32 {
	if c.nanos == nil {
		return 0
	}
	return c.nanos[row]
}

func (c *DateTimeColumn) floatAt(row int) float64 {
	if c.isMissing(row) {
		return math.NaN()
	}
	return float64(c.secs[row]) + float64(c.nanoAt(row))/1e9
}

func (c *DateTimeColumn) Fill(dst []float64, startRow int) {
	fillFloat(c, dst, startRow)
}

func (c *DateTimeColumn) FillStrided(dst []float64, startRow, offset, stride int) {
	fillFloatStrided(c, dst, startRow, offset, stride)
}

func (c *DateTimeColumn) objectAt(row int) any {
	if c.isMissing(row) {
		return nil
	}
	return date.FromEpoch(c.secs[row], c.nanoAt(row))
}

func (c *DateTimeColumn) FillObject(dst []any, startRow int) {
	fillObject(c, dst, startRow)
}

func (c *DateTimeColumn) Map(rowMap []int32, preferView bool) Column {
	return newMapped(c, rowMap)
}

func (c *DateTimeColumn) Sort(order Order) ([]int32, error) {
	isMissing := func(i int) bool { return c.isMissing(i) }
	less := func(i, j int) bool {
		if c.secs[i] != c.secs[j] {
			return c.secs[i] < c.secs[j]
		}
		return c.nanoAt(i) < c.nanoAt(j)
	}
	return sortIndices(len(c.secs), order, isMissing, less), nil
}

// RawSeconds returns the backing seconds payload. Callers must not
// mutate it.
func (c *DateTimeColumn) RawSeconds() []int64 { return c.secs }

// RawNanos returns the backing nanosecond payload, or nil if no row
// in the column carries a nanosecond component.
func (c *DateTimeColumn) RawNanos() []uint32 { return c.nanos }

// TimeColumn stores one date.TimeOfDay per row, the layout of
// spec.md's Time type: "nanoOfDay: unsigned 47, missing sentinel".
type TimeColumn struct {
	typ  TypeDescriptor
	data []date.TimeOfDay
}

// NewTimeColumn freezes data into a TimeColumn.
func NewTimeColumn(typ TypeDescriptor, data []date.TimeOfDay) *TimeColumn {
	return &TimeColumn{typ: typ, data: data}
}

func (c *TimeColumn) Size() int            { return len(c.data) }
func (c *TimeColumn) Type() TypeDescriptor { return c.typ }
func (c *TimeColumn) size() int            { return len(c.data) }

func (c *TimeColumn) floatAt(row int) float64 {
	if c.data[row].IsMissing() {
		return math.NaN()
	}
	return float64(c.data[row].NanoOfDay())
}

func (c *TimeColumn) Fill(dst []float64, startRow int) {
	fillFloat(c, dst, startRow)
}

func (c *TimeColumn) FillStrided(dst []float64, startRow, offset, stride int) {
	fillFloatStrided(c, dst, startRow, offset, stride)
}

func (c *TimeColumn) objectAt(row int) any {
	if c.data[row].IsMissing() {
		return nil
	}
	return c.data[row]
}

func (c *TimeColumn) FillObject(dst []any, startRow int) {
	fillObject(c, dst, startRow)
}

func (c *TimeColumn) Map(rowMap []int32, preferView bool) Column {
	return newMapped(c, rowMap)
}

func (c *TimeColumn) Sort(order Order) ([]int32, error) {
	isMissing := func(i int) bool { return c.data[i].IsMissing() }
	less := func(i, j int) bool { return c.data[i].NanoOfDay() < c.data[j].NanoOfDay() }
	return sortIndices(len(c.data), order, isMissing, less), nil
}

// Raw returns the backing payload. Callers must not mutate it.
func (c *TimeColumn) Raw() []date.TimeOfDay { return c.data }
