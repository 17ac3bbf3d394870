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
	"sync"

	"github.com/tablecore/belt/belterr"
	"github.com/tablecore/belt/column"
	"github.com/tablecore/belt/date"
)

// DateTimeBuffer is the mutable counterpart of column.DateTimeColumn.
type DateTimeBuffer struct {
	secs  []int64
	nanos []uint32 // allocated lazily on first non-zero nanosecond component

	mu     sync.RWMutex
	frozen bool
}

// NewDateTimeBuffer allocates a buffer of size slots, all initially
// missing.
func NewDateTimeBuffer(size int) *DateTimeBuffer {
	secs := make([]int64, size)
	for i := range secs {
		secs[i] = date.MissingDateTimeSeconds
	}
	return &DateTimeBuffer{secs: secs}
}

func (b *DateTimeBuffer) Size() int { return len(b.secs) }

func (b *DateTimeBuffer) isFrozen() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.frozen
}

// Set writes t to slot i.
func (b *DateTimeBuffer) Set(i int, t date.Time) error {
	return b.SetEpoch(i, t.EpochSeconds(), t.EpochNanos())
}

// SetEpoch writes the raw (seconds, nanos) pair to slot i. seconds
// must not equal the missing sentinel; use SetNull to clear a slot.
func (b *DateTimeBuffer) SetEpoch(i int, seconds int64, nanos uint32) error {
	if b.isFrozen() {
		return belterr.Frozen
	}
	if seconds == date.MissingDateTimeSeconds {
		return belterr.DomainViolation
	}
	if nanos >= 1e9 {
		return belterr.DomainViolation
	}
	b.secs[i] = seconds
	if nanos != 0 {
		if b.nanos == nil {
			b.nanos = make([]uint32, len(b.secs))
		}
		b.nanos[i] = nanos
	} else if b.nanos != nil {
		b.nanos[i] = 0
	}
	return nil
}

// SetNull clears slot i back to missing.
func (b *DateTimeBuffer) SetNull(i int) error {
	if b.isFrozen() {
		return belterr.Frozen
	}
	b.secs[i] = date.MissingDateTimeSeconds
	if b.nanos != nil {
		b.nanos[i] = 0
	}
	return nil
}

// Get returns the value at slot i, or ok=false if missing.
func (b *DateTimeBuffer) Get(i int) (t date.Time, ok bool) {
	if b.secs[i] == date.MissingDateTimeSeconds {
		return date.Time{}, false
	}
	var ns uint32
	if b.nanos != nil {
		ns = b.nanos[i]
	}
	return date.FromEpoch(b.secs[i], ns), true
}

// Freeze seals the buffer.
func (b *DateTimeBuffer) Freeze() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frozen = true
}

// ToColumn freezes the buffer and materializes a
// column.DateTimeColumn.
func (b *DateTimeBuffer) ToColumn() *column.DateTimeColumn {
	b.Freeze()
	secs := make([]int64, len(b.secs))
	copy(secs, b.secs)
	var nanos []uint32
	if b.nanos != nil {
		nanos = make([]uint32, len(b.nanos))
		copy(nanos, b.nanos)
	}
	return column.NewDateTimeColumn(column.TypeDescriptor{ID: column.TypeDateTime}, secs, nanos)
}

// TimeBuffer is the mutable counterpart of column.TimeColumn.
type TimeBuffer struct {
	data []date.TimeOfDay

	mu     sync.RWMutex
	frozen bool
}

// NewTimeBuffer allocates a buffer of size slots, all initially
// missing.
func NewTimeBuffer(size int) *TimeBuffer {
	data := make([]date.TimeOfDay, size)
	for i := range data {
		data[i] = date.MissingTimeOfDay
	}
	return &TimeBuffer{data: data}
}

func (b *TimeBuffer) Size() int { return len(b.data) }

func (b *TimeBuffer) isFrozen() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.frozen
}

// Set writes t to slot i.
func (b *TimeBuffer) Set(i int, t date.TimeOfDay) error {
	if b.isFrozen() {
		return belterr.Frozen
	}
	if t.IsMissing() {
		return belterr.DomainViolation
	}
	b.data[i] = t
	return nil
}

// SetNanoOfDay writes the raw nano-of-day value to slot i, validating
// it is within [0, date.NanosPerDay).
func (b *TimeBuffer) SetNanoOfDay(i int, nanoOfDay int64) error {
	t, ok := date.NewTimeOfDay(nanoOfDay)
	if !ok {
		return belterr.DomainViolation
	}
	return b.Set(i, t)
}

// SetNull clears slot i back to missing.
func (b *TimeBuffer) SetNull(i int) error {
	if b.isFrozen() {
		return belterr.Frozen
	}
	b.data[i] = date.MissingTimeOfDay
	return nil
}

// Get returns the value at slot i, or ok=false if missing.
func (b *TimeBuffer) Get(i int) (t date.TimeOfDay, ok bool) {
	if b.data[i].IsMissing() {
		return 0, false
	}
	return b.data[i], true
}

// Freeze seals the buffer.
func (b *TimeBuffer) Freeze() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frozen = true
}

// ToColumn freezes the buffer and materializes a column.TimeColumn.
func (b *TimeBuffer) ToColumn() *column.TimeColumn {
	b.Freeze()
	data := make([]date.TimeOfDay, len(b.data))
	copy(data, b.data)
	return column.NewTimeColumn(column.TypeDescriptor{ID: column.TypeTime}, data)
}
