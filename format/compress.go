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
	"fmt"
	"runtime"
	"unsafe"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
)

// blobCompressor is the interface compressBlob needs a compression
// algorithm to implement, over a dictionary-string or object-column
// payload region rather than a generic byte stream.
type blobCompressor interface {
	// name is the algorithm name; a blob records the algorithm as a
	// numeric id at its head.
	name() string
	// compress appends the compressed contents of src to dst and
	// returns the result.
	compress(src, dst []byte) []byte
}

// blobDecompressor is decompressBlob's counterpart to blobCompressor.
type blobDecompressor interface {
	name() string
	// decompress decompresses src into dst, which must already be
	// sized to the blob's recorded rawLen; it errors if dst isn't
	// large enough to hold the decoded payload. Safe to call
	// concurrently from multiple goroutines (Load itself decodes
	// column payloads one after another).
	decompress(src, dst []byte) error
}

type zstdBlobCompressor struct {
	enc *zstd.Encoder
}

func (z zstdBlobCompressor) compress(src, dst []byte) []byte {
	return z.enc.EncodeAll(src, dst)
}

func (z zstdBlobCompressor) name() string { return "zstd" }

var (
	zstdBlobDecoder     *zstd.Decoder
	zstdBlobFastDecoder *zstd.Decoder
)

func init() {
	// default concurrency is min(4, GOMAXPROCS); column payloads
	// benefit from using every core available to Load.
	z, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(runtime.GOMAXPROCS(0)))
	if err != nil {
		panic(err)
	}
	zstdBlobDecoder = z
	z, err = zstd.NewReader(nil, zstd.WithDecoderConcurrency(runtime.GOMAXPROCS(0)),
		zstd.IgnoreChecksum(true))
	if err != nil {
		panic(err)
	}
	zstdBlobFastDecoder = z
}

type zstdDecompressorHandle zstd.Decoder

func (z *zstdDecompressorHandle) name() string { return "zstd" }

func (z *zstdDecompressorHandle) decompress(src, dst []byte) error {
	into := dst[:0:len(dst)]
	ret, err := (*zstd.Decoder)(z).DecodeAll(src, into)
	if err != nil {
		return err
	}
	if len(ret) != len(dst) {
		return fmt.Errorf("expected %d bytes decompressed; got %d", len(dst), len(ret))
	}
	// decodeAll must not have had to realloc the buffer: rawLen in
	// the blob trailer is only trustworthy if this holds.
	if &ret[0] != &dst[0] {
		return fmt.Errorf("zstd decompress: output buffer realloc'd")
	}
	return nil
}

type s2BlobCodec struct{}

func (s2BlobCodec) compress(src, dst []byte) []byte {
	tail := dst[len(dst):cap(dst)]
	// s2 requires non-overlapping src and dst
	if overlappingBlobRegions(src, tail) {
		tail = nil
	}
	got := s2.Encode(tail, src)
	if len(dst) == 0 {
		return got
	}
	if len(tail) > 0 && len(got) > 0 && &tail[0] == &got[0] {
		return dst[:len(dst)+len(got)]
	}
	return append(dst, got...)
}

func (s2BlobCodec) decompress(src, dst []byte) error {
	into := dst[:0:len(dst)]
	ret, err := s2.Decode(into, src)
	if err != nil {
		return err
	}
	if len(ret) != len(dst) {
		return fmt.Errorf("expected %d bytes decompressed; got %d", len(dst), len(ret))
	}
	if &ret[0] != &dst[0] {
		return fmt.Errorf("s2 decompress: output buffer realloc'd")
	}
	return nil
}

func (s2BlobCodec) name() string { return "s2" }

// compressorFor selects a blob compression algorithm by name. The
// returned blobCompressor reports the same value from name() as the
// name passed in, except that "zstd-better" reports "zstd" (it differs
// only in encoder level). Options.Compression is validated against
// this set.
func compressorFor(name string) blobCompressor {
	switch name {
	case "zstd-better":
		z, _ := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
			zstd.WithEncoderConcurrency(1))
		return zstdBlobCompressor{z}
	case "zstd":
		z, _ := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
		return zstdBlobCompressor{z}
	case "s2":
		return s2BlobCodec{}
	default:
		return nil
	}
}

func decompressorFor(name string) blobDecompressor {
	switch name {
	case "zstd":
		return (*zstdDecompressorHandle)(zstdBlobDecoder)
	case "zstd-nocrc":
		return (*zstdDecompressorHandle)(zstdBlobFastDecoder)
	case "s2":
		return s2BlobCodec{}
	default:
		return nil
	}
}

func overlappingBlobRegions(a, b []byte) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	a0 := uintptr(unsafe.Pointer(&a[0]))
	a1 := a0 + uintptr(len(a))
	b0 := uintptr(unsafe.Pointer(&b[0]))
	b1 := b0 + uintptr(len(b))
	return a0 < b1 && b0 < a1
}
