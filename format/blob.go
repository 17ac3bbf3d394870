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

	"github.com/tablecore/belt/belterr"
)

// compressBlob wraps raw in a self-describing region: the compression
// algorithm id, the uncompressed length, the stored length, then the
// stored bytes. Self-description lets a dictionary/object payload be
// decompressed without consulting the type table's compressedFlag bit.
func compressBlob(raw []byte, compression string) (blob []byte, compressed bool, err error) {
	algo := uint32(compressionNone)
	stored := raw
	if compression != "" {
		c := compressorFor(compression)
		if c == nil {
			return nil, false, fmt.Errorf("%w: unknown compression %q", belterr.DomainViolation, compression)
		}
		stored = c.compress(raw, nil)
		algo = compressionID(c.name())
		compressed = true
	}
	blob = make([]byte, 0, 12+len(stored))
	blob = appendUint32(blob, algo)
	blob = appendUint32(blob, uint32(len(raw)))
	blob = appendUint32(blob, uint32(len(stored)))
	blob = append(blob, stored...)
	return blob, compressed, nil
}

// decompressBlob is compressBlob's inverse. It returns the recovered
// raw bytes and the number of bytes of buf it consumed.
func decompressBlob(buf []byte) ([]byte, int, error) {
	if len(buf) < 12 {
		return nil, 0, belterr.Truncated
	}
	algo := binary.BigEndian.Uint32(buf[0:4])
	rawLen := binary.BigEndian.Uint32(buf[4:8])
	storedLen := binary.BigEndian.Uint32(buf[8:12])
	pos := 12
	if len(buf) < pos+int(storedLen) {
		return nil, 0, belterr.Truncated
	}
	stored := buf[pos : pos+int(storedLen)]
	pos += int(storedLen)

	if algo == compressionNone {
		return stored, pos, nil
	}
	name := compressionName(algo)
	if name == "" {
		return nil, 0, fmt.Errorf("%w: unknown compression id %d", belterr.DomainViolation, algo)
	}
	d := decompressorFor(name)
	if d == nil {
		return nil, 0, fmt.Errorf("%w: unsupported compression %q", belterr.DomainViolation, name)
	}
	dst := make([]byte, rawLen)
	if err := d.decompress(stored, dst); err != nil {
		return nil, 0, err
	}
	return dst, pos, nil
}

func appendUint32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}
