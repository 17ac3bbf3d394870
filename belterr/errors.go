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

// Package belterr collects the typed error values surfaced across the
// engine: buffers, columns, the sort operator, the executor and the
// binary file format all return one of these (optionally wrapped with
// fmt.Errorf("%w", ...) for context) rather than ad-hoc strings, so
// that callers can branch with errors.Is/errors.As.
package belterr

import "fmt"

// Kind identifies one of the error conditions named in the
// specification. It implements the error interface directly so a
// bare Kind value can be returned, compared with errors.Is, or
// wrapped with additional context.
type Kind string

func (k Kind) Error() string { return string(k) }

const (
	// Frozen is returned when a write is attempted against a buffer
	// that has already been sealed with Freeze/ToColumn.
	Frozen Kind = "belt: write to frozen buffer"
	// CategoryOverflow is returned when a categorical buffer's
	// dictionary cannot grow to accommodate a new distinct value
	// within its declared index width.
	CategoryOverflow Kind = "belt: category dictionary overflow"
	// FormatNarrowing is returned when constructing a buffer from an
	// existing column would silently truncate index width.
	FormatNarrowing Kind = "belt: narrowing index format conversion refused"
	// TypeMismatch is returned when a column's declared type is not
	// assignable to the operation being attempted.
	TypeMismatch Kind = "belt: type mismatch"
	// NotBoolean is returned when a categorical column cannot be
	// coerced to a boolean view.
	NotBoolean Kind = "belt: column is not boolean-coercible"
	// Unordered is returned when sort is requested on a column with
	// no intrinsic order and no supplied comparator.
	Unordered Kind = "belt: column has no ordering"
	// TaskAborted is returned when the executor host became inactive
	// before or during execution of a work unit.
	TaskAborted Kind = "belt: task aborted"
	// InvalidMagic is returned when a loaded file's magic bytes do
	// not match.
	InvalidMagic Kind = "belt: invalid file magic"
	// IncompatibleVersion is returned when a loaded file's version
	// is not readable by this implementation.
	IncompatibleVersion Kind = "belt: incompatible file version"
	// Truncated is returned when a file ends before the expected
	// number of payload bytes has been consumed.
	Truncated Kind = "belt: truncated file"
	// DomainViolation is returned when loaded data violates a
	// structural invariant (negative width/height, out-of-range
	// categorical index, conflicting temporal sentinel, checksum
	// mismatch).
	DomainViolation Kind = "belt: domain violation"
	// OutOfBounds is returned by APIs that reject an out-of-range
	// index rather than silently returning a missing value.
	OutOfBounds Kind = "belt: index out of bounds"
)

// ComputationFailed wraps an error raised by caller-supplied code
// (a map function, a reducer, a combiner) running inside the
// parallel executor.
type ComputationFailed struct {
	Cause error
}

func (c *ComputationFailed) Error() string {
	return fmt.Sprintf("belt: computation failed: %s", c.Cause)
}

func (c *ComputationFailed) Unwrap() error { return c.Cause }

// NullAccumulator is returned when a reducer's supplier produces a
// nil accumulator.
var NullAccumulator = Kind("belt: reducer supplier returned a null accumulator")
