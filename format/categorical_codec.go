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
	"strings"

	"github.com/tablecore/belt/belterr"
	"github.com/tablecore/belt/column"
	"github.com/tablecore/belt/dict"
	"github.com/tablecore/belt/internal/packedint"
)

// widthFor returns the narrowest categorical index width that can
// address a dictionary of the given size, per the [0, dict.size]
// lane-range invariant enforced by column.NewCategoricalPacked et al.
func widthFor(size int) int {
	switch {
	case size <= 3:
		return 2
	case size <= 15:
		return 4
	case size <= 255:
		return 8
	case size <= 65535:
		return 16
	default:
		return 32
	}
}

func encodeIndices(width int, idxs []int32) []byte {
	switch width {
	case 2, 4, 8:
		w := packedint.Width(width)
		buf := make([]byte, packedint.ByteLen(w, len(idxs)))
		for i, v := range idxs {
			packedint.Write(w, buf, i, uint8(v))
		}
		return buf
	case 16:
		buf := make([]byte, 2*len(idxs))
		for i, v := range idxs {
			binary.BigEndian.PutUint16(buf[i*2:], uint16(v))
		}
		return buf
	default: // 32
		buf := make([]byte, 4*len(idxs))
		for i, v := range idxs {
			binary.BigEndian.PutUint32(buf[i*4:], uint32(v))
		}
		return buf
	}
}

func encodeDictionary(values []string) []byte {
	buf := appendUint32(nil, uint32(len(values)))
	for _, v := range values {
		b := []byte(v)
		buf = appendUint32(buf, uint32(len(b)))
		buf = append(buf, b...)
	}
	return buf
}

func decodeDictionary(buf []byte) ([]string, int, error) {
	if len(buf) < 4 {
		return nil, 0, belterr.Truncated
	}
	count := int(binary.BigEndian.Uint32(buf[0:4]))
	pos := 4
	values := make([]string, count)
	for i := 0; i < count; i++ {
		if len(buf) < pos+4 {
			return nil, 0, belterr.Truncated
		}
		n := int(binary.BigEndian.Uint32(buf[pos:]))
		pos += 4
		if n < 0 || len(buf) < pos+n {
			return nil, 0, belterr.Truncated
		}
		values[i] = string(buf[pos : pos+n])
		pos += n
	}
	return values, pos, nil
}

// indexByteLen returns the number of bytes encodeIndices produces for
// `height` lanes of the given width.
func indexByteLen(width, height int) (int, error) {
	switch width {
	case 2, 4, 8:
		return packedint.ByteLen(packedint.Width(width), height), nil
	case 16:
		return 2 * height, nil
	case 32:
		return 4 * height, nil
	default:
		return 0, fmt.Errorf("%w: unsupported categorical width %d", belterr.DomainViolation, width)
	}
}

func splitIndexDict(width, height int, raw []byte) ([]byte, []byte, error) {
	idxLen, err := indexByteLen(width, height)
	if err != nil {
		return nil, nil, err
	}
	if len(raw) < idxLen {
		return nil, nil, belterr.Truncated
	}
	return raw[:idxLen], raw[idxLen:], nil
}

// buildCategorical reconstructs a *column.Categorical from decoded
// index bytes, recovering from the underlying constructors' panics
// (they assume well-formed in-process callers, not untrusted files)
// by translating them into belterr.DomainViolation.
func buildCategorical(typ column.TypeDescriptor, d *dict.Dictionary, width int, idxBytes []byte, height, positiveIndex int) (col *column.Categorical, err error) {
	defer func() {
		if r := recover(); r != nil {
			col = nil
			err = fmt.Errorf("%w: %v", belterr.DomainViolation, r)
		}
	}()
	switch width {
	case 2, 4, 8:
		return column.NewCategoricalPacked(typ, d, packedint.Width(width), idxBytes, height, positiveIndex), nil
	case 16:
		data := make([]uint16, height)
		for i := range data {
			data[i] = binary.BigEndian.Uint16(idxBytes[i*2:])
		}
		return column.NewCategorical16(typ, d, data, positiveIndex), nil
	default:
		data := make([]int32, height)
		for i := range data {
			data[i] = int32(binary.BigEndian.Uint32(idxBytes[i*4:]))
		}
		return column.NewCategorical32(typ, d, data, positiveIndex), nil
	}
}

// dictionaryFrom rebuilds an in-order, frozen, lexicographically
// comparable Dictionary. The original comparator (if any) is a Go
// closure and cannot survive serialization; every persisted
// categorical column becomes ordered by strings.Compare, a decided
// simplification (see DESIGN.md).
func dictionaryFrom(values []string) *dict.Dictionary {
	d := dict.New()
	for _, v := range values {
		d.Intern(v)
	}
	d.SetComparator(strings.Compare)
	d.Freeze()
	return d
}
