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

// Package stats aggregates a scheduler's raw sample vector into the
// descriptive statistics reported per (entry, thread-count): fastest,
// slowest, median, mean, plus counter throughput. No outlier detection
// or confidence intervals are computed — per §9's "Statistics scope",
// any future estimator composes over the sample vector without
// touching the scheduler.
package stats

import (
	"sort"
	"time"

	"divan/internal/alloc"
	"divan/internal/counter"
	"divan/internal/sched"
)

// Statistics is the derived record for one (entry, thread-count) pair.
type Statistics struct {
	Fastest    time.Duration
	Slowest    time.Duration
	Median     time.Duration
	Mean       time.Duration
	SampleCount int
	Iterations  int // total iterations across every sample

	// Throughput[k] is counter.Throughput for the k'th counter kind,
	// computed from the summed totals over summed sample durations.
	Throughput [4]float64

	Alloc *alloc.Tally // nil unless allocation profiling was active
}

// Summarize computes Statistics from a raw sample vector, per §4.8:
// median and mean are computed over per-iteration durations (sample
// duration / iterations), and allocOverhead (if non-zero) is subtracted
// from every per-iteration duration before the fastest/slowest/median/
// mean reduction, per Design Note (c): "this spec applies it to both".
func Summarize(samples []sched.Sample, allocOverhead time.Duration) Statistics {
	if len(samples) == 0 {
		return Statistics{}
	}

	perIter := make([]time.Duration, len(samples))
	var totals counter.Totals
	var totalDuration time.Duration
	var totalIters int
	var allocTotal alloc.Tally
	haveAlloc := false

	for i, s := range samples {
		d := s.Duration
		if allocOverhead > 0 {
			overhead := allocOverhead * time.Duration(s.Iterations)
			if overhead > d {
				d = 0
			} else {
				d -= overhead
			}
		}
		per := d
		if s.Iterations > 0 {
			per = d / time.Duration(s.Iterations)
		}
		perIter[i] = per

		totals.Merge(s.Counters)
		totalDuration += s.Duration
		totalIters += s.Iterations

		if s.Alloc != nil {
			haveAlloc = true
			mergeAlloc(&allocTotal, s.Alloc)
		}
	}

	sorted := append([]time.Duration(nil), perIter...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum time.Duration
	for _, d := range sorted {
		sum += d
	}

	st := Statistics{
		Fastest:     sorted[0],
		Slowest:     sorted[len(sorted)-1],
		Median:      median(sorted),
		Mean:        sum / time.Duration(len(sorted)),
		SampleCount: len(samples),
		Iterations:  totalIters,
	}
	for k := counter.Kind(0); int(k) < 4; k++ {
		st.Throughput[k] = counter.Throughput(k, totals.Value(k), totalDuration)
	}
	if haveAlloc {
		st.Alloc = &allocTotal
	}
	return st
}

func median(sorted []time.Duration) time.Duration {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func mergeAlloc(dst *alloc.Tally, src *alloc.Tally) {
	dst.AllocCount += src.AllocCount
	dst.AllocBytes += src.AllocBytes
	dst.GrowCount += src.GrowCount
	dst.GrowBytes += src.GrowBytes
	dst.ShrinkCount += src.ShrinkCount
	dst.ShrinkBytes += src.ShrinkBytes
	dst.FreeCount += src.FreeCount
	dst.FreeBytes += src.FreeBytes
	if src.MaxInFlight > dst.MaxInFlight {
		dst.MaxInFlight = src.MaxInFlight
	}
	if src.MaxLiveCount > dst.MaxLiveCount {
		dst.MaxLiveCount = src.MaxLiveCount
	}
}
