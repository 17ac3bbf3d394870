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

// Package packedint implements the packed-integer lane codec used by
// narrow categorical columns: 2- and 4-bit lanes packed little-endian
// within a byte, and a pass-through for the 8-bit case. It is the
// lowest layer of the categorical buffer family; it knows nothing
// about dictionaries or columns.
package packedint

import "golang.org/x/exp/constraints"

// Width is a supported packed-lane bit width. Only 2, 4 and 8 pack
// into bytes this way; the 16- and 32-bit categorical formats store
// plain uint16/int32 slices and have no need for this codec.
type Width int

const (
	Width2 Width = 2
	Width4 Width = 4
	Width8 Width = 8
)

// LanesPerByte returns how many lanes of width w share one byte.
func (w Width) LanesPerByte() int {
	switch w {
	case Width2:
		return 4
	case Width4:
		return 2
	case Width8:
		return 1
	default:
		panic("packedint: unsupported width")
	}
}

// Mask returns the bitmask that isolates one lane's value, e.g. 0x3
// for Width2 and 0xf for Width4.
func (w Width) Mask() byte {
	return byte(1<<uint(w)) - 1
}

// MaxValue returns the largest lane value representable in w bits,
// i.e. 2^w - 1.
func (w Width) MaxValue() int {
	return (1 << uint(w)) - 1
}

// ByteLen returns the number of bytes needed to hold `lanes` lanes of
// width w.
func ByteLen[N constraints.Integer](w Width, lanes N) int {
	lpb := w.LanesPerByte()
	return (int(lanes) + lpb - 1) / lpb
}

// Read returns the value stored in lane i of buf.
func Read(w Width, buf []byte, i int) uint8 {
	switch w {
	case Width8:
		return buf[i]
	case Width4:
		b := buf[i/2]
		if i%2 == 0 {
			return uint8(b & 0x0f)
		}
		return uint8(b >> 4)
	case Width2:
		b := buf[i/4]
		shift := uint(2 * (i % 4))
		return uint8((b >> shift) & 0x03)
	default:
		panic("packedint: unsupported width")
	}
}

// Write stores v (masked to w bits) into lane i of buf.
//
// Write is not atomic with respect to other lanes sharing the same
// byte (width 2 and 4): concurrent writers touching lanes i and j
// with i/LanesPerByte() == j/LanesPerByte() must synchronize
// externally (see buffer.CategoricalBuffer's per-byte locks).
func Write(w Width, buf []byte, i int, v uint8) {
	switch w {
	case Width8:
		buf[i] = v
	case Width4:
		v &= 0x0f
		if i%2 == 0 {
			buf[i/2] = (buf[i/2] &^ 0x0f) | v
		} else {
			buf[i/2] = (buf[i/2] &^ 0xf0) | (v << 4)
		}
	case Width2:
		v &= 0x03
		shift := uint(2 * (i % 4))
		mask := byte(0x03) << shift
		buf[i/4] = (buf[i/4] &^ mask) | (v << shift)
	default:
		panic("packedint: unsupported width")
	}
}

// ByteIndex returns the index of the byte that holds lane i, for
// callers (the buffer layer) that need to take a per-byte lock before
// calling Write.
func ByteIndex(w Width, i int) int {
	return i / w.LanesPerByte()
}

// AlignDown rounds n down to the nearest multiple of 4, the stride
// the executor uses when splitting batches so that a batch boundary
// never falls inside a byte shared by width-2 or width-4 lanes (see
// belt/executor's batch planner).
func AlignDown(n int) int {
	return n &^ 3
}
