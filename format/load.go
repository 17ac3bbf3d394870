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
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/tablecore/belt/belterr"
	"github.com/tablecore/belt/column"
	"github.com/tablecore/belt/date"
	"github.com/tablecore/belt/table"
)

// Load reads a table previously written by Store. It memory-maps the
// source file where the platform supports it (see mmap_unix.go),
// falling back to a plain read elsewhere (mmap_other.go).
func Load(path string) (*table.Table, error) {
	m, err := mmapFile(path)
	if err != nil {
		return nil, err
	}
	defer m.Close()
	return decodeTable(m.Bytes())
}

func decodeTable(buf []byte) (*table.Table, error) {
	if len(buf) < headerSize {
		return nil, belterr.Truncated
	}
	if !bytes.Equal(buf[0:4], magic[:]) {
		return nil, belterr.InvalidMagic
	}
	major, minor := buf[4], buf[5]
	if major != majorVersion || (major == majorVersion && minor > minorVersion) {
		return nil, belterr.IncompatibleVersion
	}
	width := int(binary.BigEndian.Uint32(buf[8:12]))
	height := int(binary.BigEndian.Uint32(buf[12:16]))
	if width < 0 || height < 0 {
		return nil, belterr.DomainViolation
	}

	pos := headerSize
	if len(buf) < pos+4*width {
		return nil, belterr.Truncated
	}
	typeWords := make([]uint32, width)
	for i := 0; i < width; i++ {
		typeWords[i] = binary.BigEndian.Uint32(buf[pos:])
		pos += 4
	}

	labels := make([]string, width)
	for i := 0; i < width; i++ {
		if len(buf) < pos+4 {
			return nil, belterr.Truncated
		}
		n := int(binary.BigEndian.Uint32(buf[pos:]))
		pos += 4
		if n < 0 || len(buf) < pos+n {
			return nil, belterr.Truncated
		}
		labels[i] = string(buf[pos : pos+n])
		pos += n
	}

	payloadStart := pos
	cols := make([]column.Column, width)
	for i := 0; i < width; i++ {
		id, _, hasNanos := decodeTypeWord(typeWords[i])
		col, n, err := decodeColumn(id, hasNanos, height, buf[pos:])
		if err != nil {
			return nil, err
		}
		cols[i] = col
		pos += n
	}
	payloadEnd := pos

	if len(buf) < pos+4+blake2b.Size256 {
		return nil, belterr.Truncated
	}
	pos += 4 // trailer's compression-algo id is informational only
	wantSum := buf[pos : pos+blake2b.Size256]

	h, err := blake2b.New256(nil)
	if err != nil {
		return nil, err
	}
	h.Write(buf[payloadStart:payloadEnd])
	if !bytes.Equal(h.Sum(nil), wantSum) {
		return nil, fmt.Errorf("%w: payload checksum mismatch", belterr.DomainViolation)
	}

	return table.New(labels, cols)
}

func decodeColumn(id column.TypeID, hasNanos bool, height int, buf []byte) (column.Column, int, error) {
	switch {
	case id == column.TypeReal || id == column.TypeInteger:
		return decodeDense(id, height, buf)
	case id == column.TypeDateTime:
		return decodeDateTime(hasNanos, height, buf)
	case id == column.TypeTime:
		return decodeTime(height, buf)
	case id == column.TypeObject:
		return decodeObjectColumn(height, buf)
	case id.IsNominal():
		return decodeCategorical(id, height, buf)
	default:
		return nil, 0, fmt.Errorf("%w: unknown type id %d", belterr.DomainViolation, id)
	}
}

func decodeDense(id column.TypeID, height int, buf []byte) (column.Column, int, error) {
	need := 8 * height
	if len(buf) < need {
		return nil, 0, belterr.Truncated
	}
	vals := make([]float64, height)
	for i := range vals {
		vals[i] = math.Float64frombits(binary.BigEndian.Uint64(buf[i*8:]))
	}
	return column.NewDenseDouble(column.TypeDescriptor{ID: id}, vals), need, nil
}

func decodeDateTime(hasNanos bool, height int, buf []byte) (column.Column, int, error) {
	need := 8 * height
	if len(buf) < need {
		return nil, 0, belterr.Truncated
	}
	secs := make([]int64, height)
	for i := range secs {
		secs[i] = int64(binary.BigEndian.Uint64(buf[i*8:]))
	}
	pos := need

	var nanos []uint32
	if hasNanos {
		more := 4 * height
		if len(buf) < pos+more {
			return nil, 0, belterr.Truncated
		}
		nanos = make([]uint32, height)
		for i := range nanos {
			nanos[i] = binary.BigEndian.Uint32(buf[pos+i*4:])
		}
		pos += more
	}
	return column.NewDateTimeColumn(column.TypeDescriptor{ID: column.TypeDateTime}, secs, nanos), pos, nil
}

func decodeTime(height int, buf []byte) (column.Column, int, error) {
	need := 8 * height
	if len(buf) < need {
		return nil, 0, belterr.Truncated
	}
	vals := make([]date.TimeOfDay, height)
	for i := range vals {
		vals[i] = date.TimeOfDay(binary.BigEndian.Uint64(buf[i*8:]))
	}
	return column.NewTimeColumn(column.TypeDescriptor{ID: column.TypeTime}, vals), need, nil
}

func decodeObjectColumn(height int, buf []byte) (column.Column, int, error) {
	raw, consumed, err := decompressBlob(buf)
	if err != nil {
		return nil, 0, err
	}
	vals, err := decodeObject(raw, height)
	if err != nil {
		return nil, 0, err
	}
	typ := column.TypeDescriptor{
		ID:         column.TypeObject,
		ValueClass: valueClassOf(vals),
		Comparator: comparatorFor(vals),
	}
	return column.NewObject(typ, vals), consumed, nil
}

func valueClassOf(vals []any) any {
	for _, v := range vals {
		if v != nil {
			return reflect.TypeOf(v)
		}
	}
	return reflect.TypeOf("")
}

// comparatorFor installs a default ordering for a loaded object
// column when every non-null value shares one of the two comparable
// classes this codec recognizes. A column mixing classes, or holding
// values of any other class, loads as unordered (sort then fails with
// belterr.Unordered, same as a never-compared object column).
func comparatorFor(vals []any) column.ObjectComparator {
	allString, allFloat, sawAny := true, true, false
	for _, v := range vals {
		if v == nil {
			continue
		}
		sawAny = true
		if _, ok := v.(string); !ok {
			allString = false
		}
		if _, ok := v.(float64); !ok {
			allFloat = false
		}
	}
	if !sawAny {
		return nil
	}
	switch {
	case allString:
		return func(a, b any) int { return strings.Compare(a.(string), b.(string)) }
	case allFloat:
		return func(a, b any) int {
			x, y := a.(float64), b.(float64)
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			default:
				return 0
			}
		}
	default:
		return nil
	}
}

func decodeCategorical(id column.TypeID, height int, buf []byte) (column.Column, int, error) {
	if len(buf) < 8 {
		return nil, 0, belterr.Truncated
	}
	width := int(binary.BigEndian.Uint32(buf[0:4]))
	positiveIndex := int(binary.BigEndian.Uint32(buf[4:8]))
	pos := 8

	raw, n, err := decompressBlob(buf[pos:])
	if err != nil {
		return nil, 0, err
	}
	pos += n

	idxBytes, dictBuf, err := splitIndexDict(width, height, raw)
	if err != nil {
		return nil, 0, err
	}
	values, _, err := decodeDictionary(dictBuf)
	if err != nil {
		return nil, 0, err
	}

	col, err := buildCategorical(column.TypeDescriptor{ID: id}, dictionaryFrom(values), width, idxBytes, height, positiveIndex)
	if err != nil {
		return nil, 0, err
	}
	return col, pos, nil
}
