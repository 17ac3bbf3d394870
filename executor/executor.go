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

// Package executor implements the parallel work-unit scheduler shared
// by the sort operator and the transform DSL: a calculator runs over
// a contiguous range [0, N) in batches, sequentially for small N,
// split into p equal parts for medium N, or into fixed-size batches
// for large N, with cooperative cancellation and progress reporting.
// The batching policy is grounded on sorting.ThreadPool's persistent
// worker-queue design; the decision rule and workload classes are new.
package executor

import (
	"sync"

	"github.com/tablecore/belt/belterr"
	"github.com/tablecore/belt/internal/packedint"
)

// Host is the runtime collaborator the executor asks for parallelism
// and cancellation state. A GoHost backed by runtime.GOMAXPROCS and an
// atomic flag is provided for callers with no host of their own.
type Host interface {
	// Parallelism returns the maximum number of batches that may run
	// concurrently.
	Parallelism() int
	// Active reports whether the host still wants this computation to
	// continue; the executor checks it before submitting and before
	// running each batch.
	Active() bool
}

// Calculator is the capability set a caller supplies to Run: it is
// told how many batches will run, asked to process each one, and
// finally asked to assemble a result.
type Calculator interface {
	// Init is called once, before any DoPart, with the final batch
	// count.
	Init(numberOfBatches int)
	// DoPart processes logical rows [from, to) as batch index b. It
	// may be called concurrently from multiple goroutines for
	// different b; it must not race with other concurrent calls.
	DoPart(from, to, b int) error
	// Result assembles the calculator's final output after every
	// DoPart call has returned successfully.
	Result() any
}

// WorkloadClass selects the batch_size/threshold_parallel pair used
// by the executor's decision rule (spec.md §4.7). Larger classes use
// larger batches, trading finer-grained cancellation/progress
// reporting for less per-batch overhead.
type WorkloadClass int

const (
	Default WorkloadClass = iota
	Small
	Medium
	Large
	Huge
)

// thresholdFactor is K in the decision rule: the equal-parts regime
// covers N up to batchSize * thresholdFactor * parallelism.
const thresholdFactor = 4

func (c WorkloadClass) batchSize() int {
	switch c {
	case Small:
		return 256
	case Medium:
		return 1024
	case Large:
		return 4096
	case Huge:
		return 16384
	default:
		return 128
	}
}

func (c WorkloadClass) thresholdParallel() int {
	return c.batchSize()
}

// Run executes calc over [0, n) on host, following the three-branch
// decision rule of spec.md §4.7, and returns calc.Result(). It
// returns belterr.TaskAborted if host becomes inactive before or
// during execution, or a *belterr.ComputationFailed wrapping the
// first error any DoPart call returns.
func Run(host Host, n int, class WorkloadClass, calc Calculator, progress func(float64)) (any, error) {
	if progress == nil {
		progress = func(float64) {}
	}
	if !host.Active() {
		return nil, belterr.TaskAborted
	}

	batches := plan(n, class, host.Parallelism())
	calc.Init(len(batches))
	return dispatch(host, batches, calc, progress)
}

// dispatch runs batches through calc: inline for a single batch,
// across a bounded goroutine pool otherwise.
func dispatch(host Host, batches []batchRange, calc Calculator, progress func(float64)) (any, error) {
	if len(batches) <= 1 {
		b := batches[0]
		if !host.Active() {
			return nil, belterr.TaskAborted
		}
		if err := calc.DoPart(b.from, b.to, 0); err != nil {
			return nil, &belterr.ComputationFailed{Cause: err}
		}
		progress(1.0)
		return calc.Result(), nil
	}
	return runParallel(host, batches, calc, progress)
}

type batchRange struct{ from, to int }

// plan computes the batch boundaries for n rows under class and
// parallelism p, implementing spec.md §4.7's three-branch rule.
// Boundaries (other than the final one) are aligned to a multiple of
// 4 so that width-2/4 categorical lane writes never straddle a batch
// boundary inside a shared byte.
func plan(n int, class WorkloadClass, p int) []batchRange {
	if p < 1 {
		p = 1
	}
	if n == 0 {
		return []batchRange{{0, 0}}
	}

	t := class.thresholdParallel()
	b := class.batchSize()

	if n < t {
		return []batchRange{{0, n}}
	}

	if n <= b*thresholdFactor*p {
		return equalParts(n, p)
	}
	return fixedBatches(n, b)
}

func equalParts(n, p int) []batchRange {
	if p > n {
		p = n
	}
	base := n / p
	rem := n % p
	out := make([]batchRange, 0, p)
	start := 0
	for i := 0; i < p; i++ {
		size := base
		if i < rem {
			size++
		}
		end := start + size
		if i < p-1 {
			aligned := packedint.AlignDown(end)
			if aligned > start {
				end = aligned
			}
		} else {
			end = n
		}
		if end > start {
			out = append(out, batchRange{start, end})
		}
		start = end
	}
	return out
}

func fixedBatches(n, size int) []batchRange {
	out := make([]batchRange, 0, n/size+1)
	start := 0
	for start < n {
		end := start + size
		if end >= n {
			end = n
		} else {
			aligned := packedint.AlignDown(end)
			if aligned > start {
				end = aligned
			}
		}
		out = append(out, batchRange{start, end})
		start = end
	}
	return out
}

func runParallel(host Host, batches []batchRange, calc Calculator, progress func(float64)) (any, error) {
	p := host.Parallelism()
	if p < 1 {
		p = 1
	}
	if p > len(batches) {
		p = len(batches)
	}

	work := make(chan int, len(batches))
	for i := range batches {
		work <- i
	}
	close(work)

	var (
		mu        sync.Mutex
		firstErr  error
		completed int
		total     = len(batches)
	)
	var wg sync.WaitGroup
	wg.Add(p)
	for w := 0; w < p; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				mu.Lock()
				stop := firstErr != nil || !host.Active()
				mu.Unlock()
				if stop {
					continue
				}
				b := batches[idx]
				if err := calc.DoPart(b.from, b.to, idx); err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					continue
				}
				mu.Lock()
				completed++
				frac := float64(completed) / float64(total)
				mu.Unlock()
				if frac < 1.0 {
					progress(frac)
				}
			}
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return nil, &belterr.ComputationFailed{Cause: firstErr}
	}
	if !host.Active() {
		return nil, belterr.TaskAborted
	}
	progress(1.0)
	return calc.Result(), nil
}
