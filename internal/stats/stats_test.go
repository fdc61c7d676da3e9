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

package stats

import (
	"testing"
	"time"

	"divan/internal/alloc"
	"divan/internal/counter"
	"divan/internal/sched"
)

func sampleWith(d time.Duration, iters int, items uint64) sched.Sample {
	var totals counter.Totals
	totals.Add(counter.Items, items)
	return sched.Sample{Duration: d, Iterations: iters, Counters: totals}
}

func TestSummarizeEmpty(t *testing.T) {
	st := Summarize(nil, 0)
	if st.SampleCount != 0 {
		t.Fatalf("SampleCount = %d, want 0", st.SampleCount)
	}
}

func TestSummarizeFastestSlowestMedianMean(t *testing.T) {
	samples := []sched.Sample{
		sampleWith(100*time.Nanosecond, 1, 1),
		sampleWith(200*time.Nanosecond, 1, 1),
		sampleWith(300*time.Nanosecond, 1, 1),
	}
	st := Summarize(samples, 0)

	if st.Fastest != 100*time.Nanosecond {
		t.Errorf("Fastest = %v, want 100ns", st.Fastest)
	}
	if st.Slowest != 300*time.Nanosecond {
		t.Errorf("Slowest = %v, want 300ns", st.Slowest)
	}
	if st.Median != 200*time.Nanosecond {
		t.Errorf("Median = %v, want 200ns", st.Median)
	}
	if st.Mean != 200*time.Nanosecond {
		t.Errorf("Mean = %v, want 200ns", st.Mean)
	}
	if st.SampleCount != 3 {
		t.Errorf("SampleCount = %d, want 3", st.SampleCount)
	}
	if st.Iterations != 3 {
		t.Errorf("Iterations = %d, want 3", st.Iterations)
	}
}

func TestSummarizeMedianEvenCount(t *testing.T) {
	samples := []sched.Sample{
		sampleWith(100*time.Nanosecond, 1, 1),
		sampleWith(200*time.Nanosecond, 1, 1),
		sampleWith(300*time.Nanosecond, 1, 1),
		sampleWith(400*time.Nanosecond, 1, 1),
	}
	st := Summarize(samples, 0)
	if st.Median != 250*time.Nanosecond {
		t.Fatalf("Median = %v, want 250ns (average of 200ns and 300ns)", st.Median)
	}
}

func TestSummarizeSubtractsAllocOverheadFromBothMedianAndMean(t *testing.T) {
	samples := []sched.Sample{
		sampleWith(1000*time.Nanosecond, 10, 10),
		sampleWith(1000*time.Nanosecond, 10, 10),
	}
	st := Summarize(samples, 10*time.Nanosecond) // 10ns/iter * 10 iters = 100ns overhead/sample

	// Each sample: (1000ns - 100ns) / 10 iters = 90ns per-iteration.
	if st.Fastest != 90*time.Nanosecond {
		t.Errorf("Fastest = %v, want 90ns", st.Fastest)
	}
	if st.Mean != 90*time.Nanosecond {
		t.Errorf("Mean = %v, want 90ns", st.Mean)
	}
}

func TestSummarizeThroughput(t *testing.T) {
	samples := []sched.Sample{
		sampleWith(time.Second, 1, 1000),
	}
	st := Summarize(samples, 0)
	if got := st.Throughput[counter.Items]; got != 1000 {
		t.Fatalf("Throughput[Items] = %v, want 1000", got)
	}
}

func TestSummarizeMergesAlloc(t *testing.T) {
	s1 := sampleWith(time.Microsecond, 1, 1)
	s1.Alloc = &alloc.Tally{AllocCount: 5, AllocBytes: 50, MaxInFlight: 100}
	s2 := sampleWith(time.Microsecond, 1, 1)
	s2.Alloc = &alloc.Tally{AllocCount: 3, AllocBytes: 30, MaxInFlight: 200}

	st := Summarize([]sched.Sample{s1, s2}, 0)
	if st.Alloc == nil {
		t.Fatalf("Alloc is nil, want merged tally")
	}
	if st.Alloc.AllocCount != 8 {
		t.Errorf("AllocCount = %d, want 8", st.Alloc.AllocCount)
	}
	if st.Alloc.AllocBytes != 80 {
		t.Errorf("AllocBytes = %d, want 80", st.Alloc.AllocBytes)
	}
	if st.Alloc.MaxInFlight != 200 {
		t.Errorf("MaxInFlight = %d, want 200 (max, not sum)", st.Alloc.MaxInFlight)
	}
}
