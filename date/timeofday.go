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

package date

import "fmt"

// NanosPerDay is the number of nanoseconds in a civil day.
const NanosPerDay = int64(24 * 60 * 60 * 1e9)

// TimeOfDay represents a time-of-day value with nanosecond precision,
// independent of any calendar date. It stores the nano-of-day in the
// low 47 bits, matching the Time column variant's declared domain
// (spec: "Time(nanoOfDay: unsigned 47, missing sentinel)").
type TimeOfDay uint64

// timeOfDayMissing is the sentinel value used by Time columns to mean
// "no value". 2^47 (140737488355328) is greater than the largest
// valid nano-of-day (86399999999999), so it never collides with a
// real time of day.
const timeOfDayMissing = TimeOfDay(1) << 47

// MissingTimeOfDay is the TimeOfDay sentinel meaning "no value".
var MissingTimeOfDay = timeOfDayMissing

// NewTimeOfDay constructs a TimeOfDay from a nano-of-day value. It
// returns false if nanoOfDay is outside [0, NanosPerDay).
func NewTimeOfDay(nanoOfDay int64) (TimeOfDay, bool) {
	if nanoOfDay < 0 || nanoOfDay >= NanosPerDay {
		return 0, false
	}
	return TimeOfDay(nanoOfDay), true
}

// TimeOfDayOf builds a TimeOfDay from hour/minute/second/nanosecond
// components by summing them into one nano-of-day total. It returns
// false if that total falls outside [0, NanosPerDay); unlike Date, it
// never rolls over into another day.
func TimeOfDayOf(hour, min, sec, ns int) (TimeOfDay, bool) {
	total := int64(hour)*3600e9 + int64(min)*60e9 + int64(sec)*1e9 + int64(ns)
	return NewTimeOfDay(total)
}

// IsMissing reports whether t is the missing sentinel.
func (t TimeOfDay) IsMissing() bool {
	return t == timeOfDayMissing
}

// NanoOfDay returns the nanosecond offset from midnight.
func (t TimeOfDay) NanoOfDay() int64 {
	return int64(t)
}

// Hour returns the hour-of-day component (0-23).
func (t TimeOfDay) Hour() int {
	return int(int64(t) / 3600e9)
}

// Minute returns the minute-of-hour component (0-59).
func (t TimeOfDay) Minute() int {
	return int((int64(t) / 60e9) % 60)
}

// Second returns the second-of-minute component (0-59).
func (t TimeOfDay) Second() int {
	return int((int64(t) / 1e9) % 60)
}

// Nanosecond returns the nanosecond-of-second component.
func (t TimeOfDay) Nanosecond() int {
	return int(int64(t) % 1e9)
}

// String implements fmt.Stringer; it is meant for debugging only.
func (t TimeOfDay) String() string {
	if t.IsMissing() {
		return "<missing>"
	}
	ns := t.Nanosecond()
	if ns == 0 {
		return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
	}
	return fmt.Sprintf("%02d:%02d:%02d.%09d", t.Hour(), t.Minute(), t.Second(), ns)
}
