// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package threadpool

import (
	"sync/atomic"
	"time"

	"divan/internal/alloc"
	"divan/internal/counter"
	"divan/internal/xtime"
)

// Participant is one thread's share of a multi-threaded sample: Prepare
// runs during the Prepare phase (input generation, allocation-slot
// publication) and must return the Run/DropDeferred pair the Run phase
// executes. Every participant gets its own Runner, built from the same
// Bencher closure, per §4.7 step 1.
type Participant struct {
	Prepare func() (run func() counter.Totals, dropDeferred func())
}

// ParticipantResult is one participant's outcome from a multi-threaded
// sample, per §4.7 step 5: duration is that participant's own t1-t0,
// never the sample-wide wall time.
type ParticipantResult struct {
	Duration time.Duration
	Counters counter.Totals
	Alloc    *alloc.Tally
}

// RunSample drives one multi-threaded sample across participants[0]
// (always run on the caller's goroutine) and participants[1:] (run on
// pool workers), implementing §4.7's five phases: Prepare, Barrier-A,
// Run, Barrier-B, Finalize. profiler may be nil to disable allocation
// attribution. The second return value reports whether any participant
// hit an allocation-profiler conflict (the slot already held by another
// participant) during this sample.
func RunSample(pool *Pool, timer *xtime.Timer, profiler *alloc.Profiler, participants []Participant) ([]ParticipantResult, bool) {
	n := len(participants)
	results := make([]ParticipantResult, n)
	barrierA := NewBarrier(n)
	barrierB := NewBarrier(n)
	var conflict atomic.Bool

	run := func(idx int) func() {
		return func() {
			p := participants[idx]

			// Phase 1: Prepare — generate this participant's inputs,
			// publish its allocation slot.
			runFn, dropDeferred := p.Prepare()
			var tally *alloc.Tally
			if profiler != nil {
				if t, err := profiler.Start(); err == nil {
					tally = t
				} else {
					conflict.Store(true)
				}
			}

			// Phase 2: Barrier-A.
			barrierA.Wait()

			// Phase 3: Run.
			t0 := timer.Now()
			totals := runFn()
			t1 := timer.Now()

			// Phase 4: Barrier-B.
			barrierB.Wait()

			// Phase 5: Finalize — post this participant's own result;
			// the caller aggregates across results after RunSample
			// returns. Allocation profiling on more than one
			// concurrent participant shares the same process-wide
			// Profiler slot (§4.4 describes per-thread tallies; this
			// package's Profiler, grounded in internal/alloc, is a
			// single active slot per the Go MemStats substitution
			// documented there), so only the first participant to
			// call Start succeeds; the rest run unprofiled for that
			// sample and set conflict, which the caller surfaces as
			// an AllocatorConflict per §7.
			if tally != nil {
				profiler.Stop(tally)
			}
			if dropDeferred != nil {
				dropDeferred()
			}

			results[idx] = ParticipantResult{
				Duration: timer.Elapsed(t0, t1),
				Counters: totals,
				Alloc:    tally,
			}
		}
	}

	fns := make([]func(), n)
	for i := range participants {
		fns[i] = run(i)
	}
	pool.Dispatch(fns)

	return results, conflict.Load()
}

// WallTime returns the sample-wide duration for throughput aggregation:
// the maximum across participants, since the slowest thread defines the
// sample's end per §4.7.
func WallTime(results []ParticipantResult) time.Duration {
	var max time.Duration
	for _, r := range results {
		if r.Duration > max {
			max = r.Duration
		}
	}
	return max
}
