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

package packedint

import "testing"

func TestReadWriteRoundTrip(t *testing.T) {
	for _, w := range []Width{Width2, Width4, Width8} {
		lanes := 37
		buf := make([]byte, ByteLen(w, lanes))
		want := make([]uint8, lanes)
		for i := 0; i < lanes; i++ {
			v := uint8(i % (w.MaxValue() + 1))
			want[i] = v
			Write(w, buf, i, v)
		}
		for i := 0; i < lanes; i++ {
			if got := Read(w, buf, i); got != want[i] {
				t.Fatalf("width %d lane %d: got %d want %d", w, i, got, want[i])
			}
		}
	}
}

func TestByteLen(t *testing.T) {
	cases := []struct {
		w     Width
		lanes int
		want  int
	}{
		{Width2, 4, 1},
		{Width2, 5, 2},
		{Width4, 2, 1},
		{Width4, 3, 2},
		{Width8, 7, 7},
	}
	for _, c := range cases {
		if got := ByteLen(c.w, c.lanes); got != c.want {
			t.Errorf("ByteLen(%d, %d) = %d, want %d", c.w, c.lanes, got, c.want)
		}
	}
}

func TestWriteDoesNotDisturbNeighborLane(t *testing.T) {
	buf := make([]byte, ByteLen(Width2, 4))
	Write(Width2, buf, 0, 1)
	Write(Width2, buf, 1, 2)
	Write(Width2, buf, 2, 3)
	Write(Width2, buf, 3, 1)
	if Read(Width2, buf, 0) != 1 || Read(Width2, buf, 1) != 2 ||
		Read(Width2, buf, 2) != 3 || Read(Width2, buf, 3) != 1 {
		t.Fatalf("unexpected packed byte %08b", buf[0])
	}

	buf4 := make([]byte, ByteLen(Width4, 2))
	Write(Width4, buf4, 0, 0xa)
	Write(Width4, buf4, 1, 0x5)
	if Read(Width4, buf4, 0) != 0xa || Read(Width4, buf4, 1) != 0x5 {
		t.Fatalf("unexpected packed byte %08b", buf4[0])
	}
}

func TestAlignDown(t *testing.T) {
	cases := map[int]int{0: 0, 1: 0, 3: 0, 4: 4, 5: 4, 7: 4, 8: 8, 1023: 1020}
	for in, want := range cases {
		if got := AlignDown(in); got != want {
			t.Errorf("AlignDown(%d) = %d, want %d", in, got, want)
		}
	}
}
