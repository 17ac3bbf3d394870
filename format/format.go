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

// Package format implements the binary on-disk table layout of
// spec.md §6: a 16-byte header, a column-type table, a column-name
// region, column payloads, and (additive beyond spec.md) a trailer
// carrying a compression algorithm id and a blake2b-256 checksum of
// the payload region. Store publishes atomically through a sibling
// temp file; Load memory-maps the source file where the platform
// supports it.
package format

import "github.com/tablecore/belt/column"

// magic identifies a belt table file. bytes 0-3.
var magic = [4]byte{0x42, 0x4c, 0x54, 0x00}

const (
	majorVersion = 1
	minorVersion = 0

	headerSize = 16
)

// Compression algorithm ids stored in the trailer.
const (
	compressionNone = 0
	compressionS2   = 1
	compressionZstd = 2
)

func compressionName(id uint32) string {
	switch id {
	case compressionS2:
		return "s2"
	case compressionZstd:
		return "zstd"
	default:
		return ""
	}
}

func compressionID(name string) uint32 {
	switch name {
	case "s2":
		return compressionS2
	case "zstd":
		return compressionZstd
	default:
		return compressionNone
	}
}

// typeWord bits, packed around the low byte that carries the
// column.TypeID (spec.md §6's type table entry is 4 bytes and only
// constrains the low bits; the high bits are spec.md's "reserved",
// repurposed here per SPEC_FULL.md §6).
const (
	compressedFlag = uint32(1) << 31
	hasNanosFlag   = uint32(1) << 30
	typeIDMask     = uint32(0xff)
)

func encodeTypeWord(id column.TypeID, compressed, hasNanos bool) uint32 {
	w := uint32(id) & typeIDMask
	if compressed {
		w |= compressedFlag
	}
	if hasNanos {
		w |= hasNanosFlag
	}
	return w
}

func decodeTypeWord(w uint32) (id column.TypeID, compressed, hasNanos bool) {
	return column.TypeID(w & typeIDMask), w&compressedFlag != 0, w&hasNanosFlag != 0
}

// mappedFile is a Load source backed by either an mmap region
// (mmap_unix.go) or a plain in-memory read (mmap_other.go), depending
// on platform.
type mappedFile interface {
	Bytes() []byte
	Close() error
}

// Options configures Store.
type Options struct {
	// Compression selects the algorithm ("s2" or "zstd") applied to
	// categorical-dictionary and object-column payload regions.
	// Empty means uncompressed, matching spec.md's literal layout.
	Compression string
	// BlockLimit bounds the number of in-flight (buffered, unflushed)
	// bytes during streaming reads/writes (spec.md §6 "a configurable
	// maximum in-flight byte count"). Zero selects a default.
	BlockLimit int
}

const defaultBlockLimit = 1 << 20
