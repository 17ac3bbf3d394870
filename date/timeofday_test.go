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

import "testing"

func TestTimeOfDayComponents(t *testing.T) {
	tod, ok := TimeOfDayOf(13, 45, 9, 123)
	if !ok {
		t.Fatal("expected valid time of day")
	}
	if tod.Hour() != 13 || tod.Minute() != 45 || tod.Second() != 9 || tod.Nanosecond() != 123 {
		t.Fatalf("got %02d:%02d:%02d.%d", tod.Hour(), tod.Minute(), tod.Second(), tod.Nanosecond())
	}
}

func TestTimeOfDayBounds(t *testing.T) {
	if _, ok := NewTimeOfDay(-1); ok {
		t.Fatal("expected negative nano-of-day to be rejected")
	}
	if _, ok := NewTimeOfDay(NanosPerDay); ok {
		t.Fatal("expected nano-of-day == NanosPerDay to be rejected")
	}
	if _, ok := NewTimeOfDay(NanosPerDay - 1); !ok {
		t.Fatal("expected last nanosecond of day to be valid")
	}
}

func TestTimeOfDayMissing(t *testing.T) {
	if !MissingTimeOfDay.IsMissing() {
		t.Fatal("expected sentinel to report missing")
	}
	tod, _ := TimeOfDayOf(0, 0, 0, 0)
	if tod.IsMissing() {
		t.Fatal("midnight is not the missing sentinel")
	}
}

func TestEpochRoundTrip(t *testing.T) {
	tm := Date(2024, 3, 15, 10, 30, 0, 500)
	sec, ns := tm.EpochSeconds(), tm.EpochNanos()
	got := FromEpoch(sec, ns)
	if !got.Equal(tm) {
		t.Fatalf("round trip mismatch: got %v want %v", got, tm)
	}
}
