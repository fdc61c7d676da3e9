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

// Package sched drives the per-benchmark sample loop described in §4.5:
// it chooses iters_per_sample, collects samples until the time/sample
// budgets are met, and hands the caller a raw sample vector. It knows
// nothing about statistics or rendering; internal/stats consumes its
// output.
package sched

import (
	"time"

	"divan/internal/alloc"
	"divan/internal/counter"
	"divan/internal/xtime"
)

// Sample is one recorded measurement, matching §3's Sample record.
type Sample struct {
	Duration   time.Duration
	Iterations int
	Counters   counter.Totals
	Alloc      *alloc.Tally
}

// Budget mirrors the subset of BenchOptions the scheduler consumes.
type Budget struct {
	SampleCount int
	SampleSize  int // 0 means auto
	MinTime     time.Duration
	MaxTime     time.Duration
}

// Runner is what the scheduler drives once per sample: build a sample of
// exactly n iterations, execute its timed region, and return the
// counters accumulated over it, plus a function to drop any deferred
// (skip_ext_time) outputs outside the timed region.
type Runner interface {
	// Prepare returns the Run/DropDeferred pair for a sample of n
	// iterations. Must be called outside the timed region: any
	// up-front input generation happens here per §4.5 step 1.
	Prepare(n int) (run func() counter.Totals, dropDeferred func())
}

// RunnerFunc adapts a plain function to Runner.
type RunnerFunc func(n int) (func() counter.Totals, func())

func (f RunnerFunc) Prepare(n int) (func() counter.Totals, func()) { return f(n) }

// Scheduler executes one benchmark entry's sample loop on the calling
// goroutine (the single-threaded path; internal/threadpool drives the
// multi-threaded variant using the same Runner shape per participant).
type Scheduler struct {
	timer    *xtime.Timer
	profiler *alloc.Profiler // nil when allocation profiling is disabled
}

// New builds a Scheduler bound to the process-wide calibrated timer. Pass
// a non-nil profiler to enable per-sample allocation tallies.
func New(timer *xtime.Timer, profiler *alloc.Profiler) *Scheduler {
	return &Scheduler{timer: timer, profiler: profiler}
}

// IterationsFor picks iters_per_sample per §4.5: the user's explicit
// sample_size if set, otherwise a doubling probe (1, 2, 4, …) until a
// single probe's duration reaches 1000× the timer's granularity, capped
// so the default sample count still fits within max_time.
func (s *Scheduler) IterationsFor(b Budget, probe Runner) int {
	if b.SampleSize > 0 {
		return b.SampleSize
	}

	threshold := s.timer.Granularity() * 1000
	n := 1
	var lastProbeCost time.Duration
	for {
		run, drop := probe.Prepare(n)
		start := s.timer.Now()
		run()
		end := s.timer.Now()
		if drop != nil {
			drop()
		}
		lastProbeCost = s.timer.Elapsed(start, end)
		if lastProbeCost >= threshold {
			break
		}
		n *= 2
		// A probe that cannot reach the threshold within a generous
		// cap (here 1<<30) would loop forever on a pathologically
		// coarse clock; bail out with whatever was last tried rather
		// than overflow int.
		if n <= 0 || n > 1<<30 {
			break
		}
	}

	if b.MaxTime > 0 && b.SampleCount > 0 {
		perSampleBudget := b.MaxTime / time.Duration(b.SampleCount)
		if lastProbeCost > 0 && lastProbeCost > perSampleBudget {
			// Scale n down proportionally so the default sample count
			// still fits the max_time budget, never below 1.
			scaled := int(float64(n) * float64(perSampleBudget) / float64(lastProbeCost))
			if scaled < 1 {
				scaled = 1
			}
			n = scaled
		}
	}

	return n
}

// Run executes the full sample loop for one (entry, thread-count=1)
// combination, per §4.5's numbered steps, returning every recorded
// Sample and whether the allocation profiler ever reported a conflict
// (another sample already active) while collecting them. overhead is
// the calibrated per-sample loop overhead to subtract (measured by the
// caller once per process against an empty Runner of the same shape).
func (s *Scheduler) Run(b Budget, r Runner, itersPerSample int, overhead func(iters int) time.Duration) ([]Sample, bool) {
	sampleCount := b.SampleCount
	if sampleCount <= 0 {
		sampleCount = 100
	}

	samples := make([]Sample, 0, sampleCount)
	var elapsedTotal time.Duration
	conflict := false

	for sIdx := 0; ; sIdx++ {
		// Step 1: acquire inputs for this sample (Runner.Prepare does
		// any up-front generation before the timed region starts).
		run, dropDeferred := r.Prepare(itersPerSample)

		// Step 2: start allocation-slot, if profiling.
		var tally *alloc.Tally
		if s.profiler != nil {
			if t, err := s.profiler.Start(); err == nil {
				tally = t
			} else {
				conflict = true
			}
		}

		// Step 3: timed region.
		t0 := s.timer.Now()
		totals := run()
		t1 := s.timer.Now()

		// Step 4: stop allocation-slot.
		if tally != nil {
			s.profiler.Stop(tally)
		}

		// Step 5: record the sample, clamped to zero and with
		// calibrated overhead subtracted.
		raw := s.timer.Elapsed(t0, t1)
		var ov time.Duration
		if overhead != nil {
			ov = overhead(itersPerSample)
		}
		d := raw - ov
		if d < 0 {
			d = 0
		}
		samples = append(samples, Sample{
			Duration:   d,
			Iterations: itersPerSample,
			Counters:   totals,
			Alloc:      tally,
		})
		elapsedTotal += raw

		// Step 6: drop deferred outputs outside the timed region.
		if dropDeferred != nil {
			dropDeferred()
		}

		// Step 7: stop conditions, per §4.5's tie-break rules — a
		// sample in progress is always recorded in full; min_time is
		// rechecked between samples, never mid-sample.
		lastSample := sIdx+1 >= sampleCount
		if b.MaxTime > 0 && elapsedTotal >= b.MaxTime {
			break
		}
		if lastSample {
			if b.MinTime <= 0 || elapsedTotal >= b.MinTime {
				break
			}
			// sample_count reached but min_time not yet satisfied:
			// keep sampling past sampleCount until it is.
		}
	}

	return samples, conflict
}
