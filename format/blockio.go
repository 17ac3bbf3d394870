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
	"bufio"
	"encoding/binary"
	"io"
	"math"
)

// blockWriter streams writes through a bounded in-flight buffer,
// flushing once the buffered amount reaches limit (spec.md §6's
// "configurable maximum in-flight byte count"). Every writeX helper
// returns the number of bytes consumed, so callers can accumulate
// section offsets the way spec.md describes.
type blockWriter struct {
	w     *bufio.Writer
	limit int
}

func newBlockWriter(w io.Writer, limit int) *blockWriter {
	if limit <= 0 {
		limit = defaultBlockLimit
	}
	return &blockWriter{w: bufio.NewWriterSize(w, limit), limit: limit}
}

func (bw *blockWriter) writeBytes(p []byte) (int, error) {
	n, err := bw.w.Write(p)
	if err != nil {
		return n, err
	}
	if bw.w.Buffered() >= bw.limit {
		if err := bw.w.Flush(); err != nil {
			return n, err
		}
	}
	return n, nil
}

func (bw *blockWriter) writeUint32(v uint32) (int, error) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	return bw.writeBytes(buf[:])
}

func (bw *blockWriter) writeInt64(v int64) (int, error) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	return bw.writeBytes(buf[:])
}

func (bw *blockWriter) writeFloat64Slice(vals []float64) (int, error) {
	total := 0
	buf := make([]byte, 8*len(vals))
	for i, v := range vals {
		binary.BigEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	n, err := bw.writeBytes(buf)
	total += n
	return total, err
}

func (bw *blockWriter) Flush() error { return bw.w.Flush() }

// blockReader is blockWriter's read-side counterpart: readX helpers
// return the number of bytes consumed, and return io.ReadFull's error
// (io.EOF or io.ErrUnexpectedEOF) when the underlying reader runs out
// early.
type blockReader struct {
	r *bufio.Reader
}

func newBlockReader(r io.Reader, limit int) *blockReader {
	if limit <= 0 {
		limit = defaultBlockLimit
	}
	return &blockReader{r: bufio.NewReaderSize(r, limit)}
}

func (br *blockReader) readBytes(n int) ([]byte, int, error) {
	buf := make([]byte, n)
	read, err := io.ReadFull(br.r, buf)
	return buf, read, err
}

func (br *blockReader) readUint32() (uint32, int, error) {
	buf, n, err := br.readBytes(4)
	if err != nil {
		return 0, n, err
	}
	return binary.BigEndian.Uint32(buf), n, nil
}

func (br *blockReader) readInt64() (int64, int, error) {
	buf, n, err := br.readBytes(8)
	if err != nil {
		return 0, n, err
	}
	return int64(binary.BigEndian.Uint64(buf)), n, nil
}

func (br *blockReader) readFloat64Slice(count int) ([]float64, int, error) {
	buf, n, err := br.readBytes(count * 8)
	if err != nil {
		return nil, n, err
	}
	out := make([]float64, count)
	for i := range out {
		out[i] = math.Float64frombits(binary.BigEndian.Uint64(buf[i*8:]))
	}
	return out, n, nil
}
