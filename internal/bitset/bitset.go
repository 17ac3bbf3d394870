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

// Package bitset implements a byte-backed bitset sized in bits, used
// by the binary format's object-column validity map (one bit per row:
// set means non-null) and available to any other caller that needs a
// compact fixed-size bit vector. The bit-indexing scheme (byte i/8,
// bit i%8, LSB first) is grounded on ints.TestBit/SetBit's generic
// bit-twiddling, specialized here to a single byte lane since the
// binary format serializes validity maps byte-for-byte.
package bitset

// Set is a fixed-size bitset of n bits, backed by ceil(n/8) bytes.
type Set struct {
	bits []byte
	n    int
}

// New returns a Set of n bits, all initially clear.
func New(n int) *Set {
	return &Set{bits: make([]byte, (n+7)/8), n: n}
}

// FromBytes wraps an existing byte slice as a Set of n bits. buf must
// have at least (n+7)/8 bytes; it is used directly, not copied.
func FromBytes(buf []byte, n int) *Set {
	return &Set{bits: buf, n: n}
}

// Len returns the number of bits in the set.
func (s *Set) Len() int { return s.n }

// Bytes returns the backing storage, (n+7)/8 bytes long. Callers must
// not resize it.
func (s *Set) Bytes() []byte { return s.bits }

// Test reports whether bit i is set.
func (s *Set) Test(i int) bool {
	return s.bits[i/8]&(1<<(uint(i)%8)) != 0
}

// Set sets bit i.
func (s *Set) Set(i int) {
	s.bits[i/8] |= 1 << (uint(i) % 8)
}

// Clear clears bit i.
func (s *Set) Clear(i int) {
	s.bits[i/8] &^= 1 << (uint(i) % 8)
}

// Count returns the number of set bits.
func (s *Set) Count() int {
	n := 0
	for _, b := range s.bits {
		for b != 0 {
			b &= b - 1
			n++
		}
	}
	return n
}
