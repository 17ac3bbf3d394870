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
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"github.com/tablecore/belt/belterr"
	"github.com/tablecore/belt/column"
	"github.com/tablecore/belt/date"
	"github.com/tablecore/belt/dict"
	"github.com/tablecore/belt/table"
)

type columnPlan struct {
	typeWord uint32
	payload  []byte
}

// Store writes tbl to path in the binary layout of spec.md §6: a
// 16-byte header, a column-type table, a column-name region, column
// payloads, and a trailer carrying a compression algorithm id and a
// blake2b-256 checksum of the payload region.
//
// Store publishes atomically: it builds the full file at a sibling
// temp path (named with a random uuid so concurrent Store calls to
// the same path never collide) and renames it over the destination
// only once every byte has been written and flushed successfully.
func Store(tbl *table.Table, path string, opts Options) error {
	plans := make([]columnPlan, tbl.Width())
	for i := 0; i < tbl.Width(); i++ {
		plan, err := planColumn(tbl.Column(i), opts)
		if err != nil {
			return err
		}
		plans[i] = plan
	}

	dir := filepath.Dir(path)
	tmpPath := filepath.Join(dir, "."+filepath.Base(path)+"."+uuid.New().String()+".tmp")
	f, err := os.Create(tmpPath)
	if err != nil {
		return err
	}
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if err := writeFile(f, tbl, plans, opts); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func writeFile(f *os.File, tbl *table.Table, plans []columnPlan, opts Options) error {
	bw := newBlockWriter(f, opts.BlockLimit)

	if _, err := bw.writeBytes(magic[:]); err != nil {
		return err
	}
	if _, err := bw.writeBytes([]byte{majorVersion, minorVersion, 0, 0}); err != nil {
		return err
	}
	if _, err := bw.writeUint32(uint32(tbl.Width())); err != nil {
		return err
	}
	if _, err := bw.writeUint32(uint32(tbl.Height())); err != nil {
		return err
	}

	for _, p := range plans {
		if _, err := bw.writeUint32(p.typeWord); err != nil {
			return err
		}
	}

	for _, label := range tbl.Labels() {
		b := []byte(label)
		if _, err := bw.writeUint32(uint32(len(b))); err != nil {
			return err
		}
		if _, err := bw.writeBytes(b); err != nil {
			return err
		}
	}

	if err := bw.Flush(); err != nil {
		return err
	}

	hasher, err := blake2b.New256(nil)
	if err != nil {
		return err
	}
	pbw := newBlockWriter(io.MultiWriter(f, hasher), opts.BlockLimit)
	for _, p := range plans {
		if _, err := pbw.writeBytes(p.payload); err != nil {
			return err
		}
	}
	if err := pbw.Flush(); err != nil {
		return err
	}

	tw := newBlockWriter(f, opts.BlockLimit)
	if _, err := tw.writeUint32(compressionID(opts.Compression)); err != nil {
		return err
	}
	if _, err := tw.writeBytes(hasher.Sum(nil)); err != nil {
		return err
	}
	return tw.Flush()
}

// planColumn materializes col's on-disk type word and payload bytes.
func planColumn(col column.Column, opts Options) (columnPlan, error) {
	typ := col.Type()
	switch {
	case typ.ID == column.TypeReal || typ.ID == column.TypeInteger:
		return planDense(col, typ.ID)
	case typ.ID == column.TypeDateTime:
		return planDateTime(col)
	case typ.ID == column.TypeTime:
		return planTime(col)
	case typ.ID == column.TypeObject:
		return planObject(col, opts)
	case typ.ID.IsNominal():
		return planCategorical(col, typ.ID, opts)
	default:
		return columnPlan{}, fmt.Errorf("%w: unknown column type %v", belterr.DomainViolation, typ.ID)
	}
}

func planDense(col column.Column, id column.TypeID) (columnPlan, error) {
	n := col.Size()
	vals := make([]float64, n)
	col.Fill(vals, 0)
	buf := make([]byte, 8*n)
	for i, v := range vals {
		binary.BigEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return columnPlan{typeWord: encodeTypeWord(id, false, false), payload: buf}, nil
}

func planDateTime(col column.Column) (columnPlan, error) {
	var secs []int64
	var nanos []uint32

	if dt, ok := col.(*column.DateTimeColumn); ok {
		secs = dt.RawSeconds()
		nanos = dt.RawNanos()
	} else {
		of, ok := col.(column.ObjectFiller)
		if !ok {
			return columnPlan{}, fmt.Errorf("%w: date-time column has no object view", belterr.DomainViolation)
		}
		n := col.Size()
		raw := make([]any, n)
		of.FillObject(raw, 0)
		secs = make([]int64, n)
		nanos = make([]uint32, n)
		anyNanos := false
		for i, v := range raw {
			if v == nil {
				secs[i] = date.MissingDateTimeSeconds
				continue
			}
			t := v.(date.Time)
			secs[i] = t.EpochSeconds()
			if ns := t.EpochNanos(); ns != 0 {
				nanos[i] = ns
				anyNanos = true
			}
		}
		if !anyNanos {
			nanos = nil
		}
	}

	buf := make([]byte, 8*len(secs))
	for i, s := range secs {
		binary.BigEndian.PutUint64(buf[i*8:], uint64(s))
	}
	hasNanos := nanos != nil
	if hasNanos {
		nbuf := make([]byte, 4*len(nanos))
		for i, v := range nanos {
			binary.BigEndian.PutUint32(nbuf[i*4:], v)
		}
		buf = append(buf, nbuf...)
	}
	return columnPlan{typeWord: encodeTypeWord(column.TypeDateTime, false, hasNanos), payload: buf}, nil
}

func planTime(col column.Column) (columnPlan, error) {
	var vals []date.TimeOfDay

	if tc, ok := col.(*column.TimeColumn); ok {
		vals = tc.Raw()
	} else {
		of, ok := col.(column.ObjectFiller)
		if !ok {
			return columnPlan{}, fmt.Errorf("%w: time column has no object view", belterr.DomainViolation)
		}
		n := col.Size()
		raw := make([]any, n)
		of.FillObject(raw, 0)
		vals = make([]date.TimeOfDay, n)
		for i, v := range raw {
			if v == nil {
				vals[i] = date.MissingTimeOfDay
				continue
			}
			vals[i] = v.(date.TimeOfDay)
		}
	}

	buf := make([]byte, 8*len(vals))
	for i, v := range vals {
		binary.BigEndian.PutUint64(buf[i*8:], uint64(v.NanoOfDay()))
	}
	return columnPlan{typeWord: encodeTypeWord(column.TypeTime, false, false), payload: buf}, nil
}

func planObject(col column.Column, opts Options) (columnPlan, error) {
	var vals []any

	if obj, ok := col.(*column.Object); ok {
		vals = obj.Raw()
	} else {
		of, ok := col.(column.ObjectFiller)
		if !ok {
			return columnPlan{}, fmt.Errorf("%w: object column has no object view", belterr.DomainViolation)
		}
		n := col.Size()
		vals = make([]any, n)
		of.FillObject(vals, 0)
	}

	blob, compressed, err := compressBlob(encodeObject(vals), opts.Compression)
	if err != nil {
		return columnPlan{}, err
	}
	return columnPlan{typeWord: encodeTypeWord(column.TypeObject, compressed, false), payload: blob}, nil
}

func planCategorical(col column.Column, id column.TypeID, opts Options) (columnPlan, error) {
	var width, positiveIndex int
	var idxs []int32
	var values []string

	if cat, ok := col.(*column.Categorical); ok {
		width = cat.IndexWidth()
		n := cat.Size()
		idxs = make([]int32, n)
		cat.FillIndex(idxs, 0)
		values = cat.Dictionary().Values()
		if pi, ok := cat.PositiveIndex(); ok {
			positiveIndex = pi
		}
	} else {
		of, ok := col.(column.ObjectFiller)
		if !ok {
			return columnPlan{}, fmt.Errorf("%w: categorical column has no object view", belterr.DomainViolation)
		}
		n := col.Size()
		raw := make([]any, n)
		of.FillObject(raw, 0)

		d := dict.New()
		idxs = make([]int32, n)
		for i, v := range raw {
			if v == nil {
				continue
			}
			s, ok := v.(string)
			if !ok {
				s = fmt.Sprint(v)
			}
			idxs[i] = int32(d.Intern(s))
		}
		values = d.Values()
		width = widthFor(len(values))
		if bv, ok := col.(column.BooleanViewer); ok {
			if pi, ok := bv.PositiveIndex(); ok {
				positiveIndex = pi
			}
		}
	}

	raw := append(encodeIndices(width, idxs), encodeDictionary(values)...)
	blob, compressed, err := compressBlob(raw, opts.Compression)
	if err != nil {
		return columnPlan{}, err
	}

	payload := appendUint32(nil, uint32(width))
	payload = appendUint32(payload, uint32(positiveIndex))
	payload = append(payload, blob...)

	return columnPlan{typeWord: encodeTypeWord(id, compressed, false), payload: payload}, nil
}
