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

package format

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/tablecore/belt/belterr"
	"github.com/tablecore/belt/internal/bitset"
)

// object-column payload tags, one per supported ValueClass.
const (
	tagString = 0
	tagFloat  = 1
	tagBool   = 2
)

// encodeObject serializes an *column.Object's boxed values as a
// validity bitset (one bit per row, set meaning non-null) followed by
// tag-prefixed values for the non-null rows only, in row order.
func encodeObject(values []any) []byte {
	set := bitset.New(len(values))
	for i, v := range values {
		if v != nil {
			set.Set(i)
		}
	}
	buf := append([]byte{}, set.Bytes()...)
	for _, v := range values {
		if v == nil {
			continue
		}
		buf = appendObjectValue(buf, v)
	}
	return buf
}

func appendObjectValue(buf []byte, v any) []byte {
	switch x := v.(type) {
	case string:
		buf = append(buf, tagString)
		var lenBuf [4]byte
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(x)))
		buf = append(buf, lenBuf[:]...)
		return append(buf, x...)
	case float64:
		buf = append(buf, tagFloat)
		var vbuf [8]byte
		binary.BigEndian.PutUint64(vbuf[:], math.Float64bits(x))
		return append(buf, vbuf[:]...)
	case bool:
		buf = append(buf, tagBool)
		if x {
			return append(buf, 1)
		}
		return append(buf, 0)
	default:
		// stored as its string form; round-trips back as a string
		buf = append(buf, tagString)
		s := fmt.Sprint(x)
		var lenBuf [4]byte
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(s)))
		buf = append(buf, lenBuf[:]...)
		return append(buf, s...)
	}
}

// decodeObject is encodeObject's inverse.
func decodeObject(buf []byte, height int) ([]any, error) {
	bitLen := (height + 7) / 8
	if len(buf) < bitLen {
		return nil, belterr.Truncated
	}
	set := bitset.FromBytes(buf[:bitLen], height)
	pos := bitLen
	out := make([]any, height)
	for i := 0; i < height; i++ {
		if !set.Test(i) {
			continue
		}
		if pos >= len(buf) {
			return nil, belterr.Truncated
		}
		tag := buf[pos]
		pos++
		switch tag {
		case tagString:
			if pos+4 > len(buf) {
				return nil, belterr.Truncated
			}
			n := int(binary.BigEndian.Uint32(buf[pos:]))
			pos += 4
			if pos+n > len(buf) {
				return nil, belterr.Truncated
			}
			out[i] = string(buf[pos : pos+n])
			pos += n
		case tagFloat:
			if pos+8 > len(buf) {
				return nil, belterr.Truncated
			}
			out[i] = math.Float64frombits(binary.BigEndian.Uint64(buf[pos:]))
			pos += 8
		case tagBool:
			if pos+1 > len(buf) {
				return nil, belterr.Truncated
			}
			out[i] = buf[pos] != 0
			pos++
		default:
			return nil, fmt.Errorf("%w: unknown object tag %d", belterr.DomainViolation, tag)
		}
	}
	return out, nil
}
