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

package divan

import (
	"time"

	"divan/internal/counter"
)

// BenchOptions is the configuration snapshot described in §3, merged
// from (ascending precedence) the built-in defaults, ancestor group
// defaults, entry options, and then environment and CLI (already
// combined into one Config). A zero value means "not set"; merge only
// overwrites fields the higher-precedence options actually set.
type BenchOptions struct {
	SampleCount int
	SampleSize  int
	MinTime     time.Duration
	MaxTime     time.Duration
	SkipExtTime bool
	Threads     []int
	Counter     *counter.Source
	Ignore      bool
}

// Option mutates a BenchOptions; returned by the functional-option
// constructors below and consumed by Bench/BenchGroup registration.
type Option func(*BenchOptions)

// WithSampleCount sets the target number of samples collected.
func WithSampleCount(n int) Option { return func(o *BenchOptions) { o.SampleCount = n } }

// WithSampleSize pins iters_per_sample instead of letting the scheduler
// auto-probe it.
func WithSampleSize(n int) Option { return func(o *BenchOptions) { o.SampleSize = n } }

// WithMinTime sets the lower bound on total wall time for the entry.
func WithMinTime(d time.Duration) Option { return func(o *BenchOptions) { o.MinTime = d } }

// WithMaxTime sets the upper bound on total wall time for the entry.
func WithMaxTime(d time.Duration) Option { return func(o *BenchOptions) { o.MaxTime = d } }

// WithSkipExtTime excludes input generation and output drop from the
// timed region, deferring both to a parking buffer.
func WithSkipExtTime() Option { return func(o *BenchOptions) { o.SkipExtTime = true } }

// WithThreads sets the sweep of thread counts to run the entry under.
// A value of 0 in the slice means "available parallelism".
func WithThreads(counts ...int) Option {
	return func(o *BenchOptions) { o.Threads = append([]int(nil), counts...) }
}

// WithCounter sets the static default per-iteration counter value used
// when no input-counter function is configured.
func WithCounter(kind counter.Kind, value uint64) Option {
	return func(o *BenchOptions) { o.Counter = &counter.Source{Kind: kind, Value: value} }
}

// WithIgnore marks the entry to be skipped without running, still
// appearing in the report as an ignored row.
func WithIgnore() Option { return func(o *BenchOptions) { o.Ignore = true } }

// merge overlays src's explicitly-set fields onto dst, returning the
// result; src wins wherever it has a non-zero field, matching the
// ascending-precedence chain described in §3.
func merge(dst, src BenchOptions) BenchOptions {
	out := dst
	if src.SampleCount != 0 {
		out.SampleCount = src.SampleCount
	}
	if src.SampleSize != 0 {
		out.SampleSize = src.SampleSize
	}
	if src.MinTime != 0 {
		out.MinTime = src.MinTime
	}
	if src.MaxTime != 0 {
		out.MaxTime = src.MaxTime
	}
	if src.SkipExtTime {
		out.SkipExtTime = true
	}
	if len(src.Threads) > 0 {
		out.Threads = src.Threads
	}
	if src.Counter != nil {
		out.Counter = src.Counter
	}
	if src.Ignore {
		out.Ignore = true
	}
	return out
}

// defaultOptions returns the built-in defaults named in §3: sample_count
// 100, sample_size auto (0), threads [1].
func defaultOptions() BenchOptions {
	return BenchOptions{
		SampleCount: 100,
		Threads:     []int{1},
	}
}
