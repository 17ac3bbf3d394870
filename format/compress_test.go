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
	"testing"
)

func TestS2BlobCodec(t *testing.T) {
	comp := compressorFor("s2")
	if _, ok := comp.(s2BlobCodec); !ok {
		t.Fatalf("bad compressor for s2: %T", comp)
	} else if n := comp.name(); n != "s2" {
		t.Fatalf("bad compressor name %q", n)
	}
	dec := decompressorFor("s2")
	if _, ok := dec.(s2BlobCodec); !ok {
		t.Fatalf("bad decompressor for s2: %T", dec)
	} else if n := dec.name(); n != "s2" {
		t.Fatalf("bad decompressor name %q", n)
	}
	// separate buffers
	ctl := bytes.Repeat([]byte("foo"), 1000)
	src := append([]byte(nil), ctl...)
	cmp := comp.compress(src, nil)
	dst := make([]byte, len(src))
	if err := dec.decompress(cmp, dst); err != nil {
		t.Error(err)
	} else if string(ctl) != string(dst) {
		t.Error("mismatch")
	}
	// overlapping buffers: dst shares src's backing array
	cmp = comp.compress(src[10:], src[:8])
	if err := dec.decompress(cmp[8:], dst[10:]); err != nil {
		t.Error(err)
	} else if string(ctl[10:]) != string(dst[10:]) {
		t.Error("mismatch")
	}
}

func TestOverlappingBlobRegions(t *testing.T) {
	a := make([]byte, 10)
	b := make([]byte, 20)
	if overlappingBlobRegions(a, b) {
		t.Error("overlappingBlobRegions(a, b) should be false")
	}
	a = make([]byte, 10, 30)
	b = a[10:]
	if overlappingBlobRegions(a, b) {
		t.Error("overlappingBlobRegions(a, b) should be false")
	} else if overlappingBlobRegions(b, a) {
		t.Error("overlappingBlobRegions(b, a) should be false")
	}
	b = a[5:]
	if !overlappingBlobRegions(a, b) {
		t.Error("overlappingBlobRegions(a, b) should be true")
	} else if !overlappingBlobRegions(b, a) {
		t.Error("overlappingBlobRegions(b, a) should be true")
	}
	b = a[9:]
	if !overlappingBlobRegions(a, b) {
		t.Error("overlappingBlobRegions(a, b) should be true")
	} else if !overlappingBlobRegions(b, a) {
		t.Error("overlappingBlobRegions(b, a) should be true")
	}
}

func TestCompressBlobRoundTrip(t *testing.T) {
	raw := bytes.Repeat([]byte("belt"), 500)
	for _, name := range []string{"", "s2", "zstd"} {
		blob, compressed, err := compressBlob(raw, name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if compressed != (name != "") {
			t.Fatalf("%s: compressed = %v", name, compressed)
		}
		got, n, err := decompressBlob(blob)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if n != len(blob) {
			t.Fatalf("%s: consumed %d, want %d", name, n, len(blob))
		}
		if !bytes.Equal(got, raw) {
			t.Fatalf("%s: round trip mismatch", name)
		}
	}
}
