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

package executor

import (
	"runtime"
	"sync/atomic"
)

// GoHost is a reference Host backed by runtime.GOMAXPROCS and an
// atomic cancellation flag. It is a convenience for callers (tests,
// small tools) that have no richer host of their own.
type GoHost struct {
	parallelism int32
	active      int32
}

// NewGoHost returns a GoHost with the given parallelism. A
// non-positive value defaults to runtime.GOMAXPROCS(0).
func NewGoHost(parallelism int) *GoHost {
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}
	return &GoHost{parallelism: int32(parallelism), active: 1}
}

func (h *GoHost) Parallelism() int { return int(atomic.LoadInt32(&h.parallelism)) }
func (h *GoHost) Active() bool     { return atomic.LoadInt32(&h.active) != 0 }

// Cancel marks the host inactive; subsequent and in-flight Run calls
// observe Active() == false at their next check point.
func (h *GoHost) Cancel() { atomic.StoreInt32(&h.active, 0) }
