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
	"fmt"
	"log"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"divan/internal/alloc"
	"divan/internal/counter"
	"divan/internal/exec"
	"divan/internal/metrics"
	"divan/internal/report"
	"divan/internal/sched"
	"divan/internal/stats"
	"divan/internal/threadpool"
	"divan/internal/xtime"
)

// Main is the top-level entry point: parse configuration from
// os.Args[1:] and the DIVAN_* environment, run every matched entry, and
// print the report. It calls os.Exit, so it must be the last thing a
// benchmark binary's main calls, exactly like testing.M.Run's
// convention.
func Main() {
	code := Run(os.Args[1:], os.Stdout)
	os.Exit(code)
}

// Run executes the driver against an explicit argv slice, writing the
// report to w, and returns the process exit code §6 specifies: 0 on
// success, 1 on invalid configuration, 101 if any benchmark panicked.
func Run(args []string, w *os.File) int {
	env, err := envConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cli, err := parseCLI(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg := mergeConfig(env, cli)

	metrics.Enable(metrics.Config{Enabled: cfg.MetricsEnabled, Addr: cfg.MetricsAddr})

	timer, err := xtime.Global()
	if err != nil {
		fmt.Fprintln(os.Stderr, (&TimerUnavailable{Cause: err}).Error())
		return 1
	}

	entries := Entries()
	sort.Slice(entries, func(i, j int) bool { return report.NaturalLess(entries[i].Path, entries[j].Path) })

	if cfg.List {
		for _, e := range entries {
			if matchFilter(e.Path, cfg) {
				fmt.Fprintln(w, e.Path)
			}
		}
		return 0
	}

	globalOpts := cfg.toOptions()
	if err := validateBudget(globalOpts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	pool := threadpool.New()

	// The allocation profiler is opt-in (§2/§4.4): every MemStats
	// snapshot it takes is overhead the measured code would not
	// otherwise pay, so it stays nil, and every downstream consumer
	// treats a nil *alloc.Profiler as "profiling disabled", unless the
	// caller asks for it via --alloc-profile/DIVAN_ALLOC_PROFILE.
	var profiler *alloc.Profiler
	var allocOverhead time.Duration
	if cfg.AllocProfile {
		profiler = alloc.New()
		allocOverhead = profiler.CalibrateOverhead()
	}

	overhead := calibrateOverhead(timer)
	metrics.SetCalibrationOverhead(overhead.Seconds())

	tree := report.New()
	panicked := false

	for _, entry := range entries {
		if !matchFilter(entry.Path, cfg) {
			continue
		}
		opts := merge(merge(defaultOptions(), entry.Defaults), globalOpts)
		if err := validateBudget(opts); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		if opts.Ignore && !cfg.Ignored {
			tree.Insert(strings.Split(entry.Path, "::"), nil, true)
			continue
		}

		threadCounts := opts.Threads
		if len(threadCounts) == 0 {
			threadCounts = []int{1}
		}

		for _, tc := range threadCounts {
			n := tc
			if n <= 0 {
				n = runtime.GOMAXPROCS(0)
			}

			st, benchPanic := runEntry(entry, opts, n, timer, pool, profiler, overhead, allocOverhead)
			if benchPanic != nil {
				panicked = true
				metrics.BenchmarkPanicked()
				log.Printf("%v", benchPanic)
				continue
			}
			metrics.BenchmarkCompleted()
			metrics.SamplesCollected(st.SampleCount)

			path := entry.Path
			if len(threadCounts) > 1 || tc != 1 {
				path = fmt.Sprintf("%s/t=%d", entry.Path, n)
			}
			tree.Insert(strings.Split(path, "::"), &st, false)
		}
	}

	report.Render(w, tree, report.ParseBytesFormat(cfg.BytesFormat))

	if panicked {
		return 101
	}
	return 0
}

// validateBudget rejects a contradictory time budget before any sample
// runs, per §7's ConfigError("contradictory budgets"): a min_time
// greater than max_time can never be satisfied, since the scheduler
// stops at max_time regardless of whether min_time was reached.
func validateBudget(o BenchOptions) error {
	if o.MinTime > 0 && o.MaxTime > 0 && o.MinTime > o.MaxTime {
		return &ConfigError{
			Field: "min_time/max_time",
			Msg:   fmt.Sprintf("min_time (%s) is greater than max_time (%s)", o.MinTime, o.MaxTime),
		}
	}
	return nil
}

// matchFilter applies §4.9 step 3: include iff at least one positive
// pattern matches (or none exist) and no negative pattern matches.
func matchFilter(path string, cfg Config) bool {
	matches := func(pattern string) bool {
		if cfg.Exact {
			return path == pattern
		}
		return strings.Contains(path, pattern)
	}

	for _, neg := range cfg.Negative {
		if matches(neg) {
			return false
		}
	}
	if len(cfg.Positive) == 0 {
		return true
	}
	for _, pos := range cfg.Positive {
		if matches(pos) {
			return true
		}
	}
	return false
}

// runnerAdapter turns a Bencher's compiled exec.Sample factory into the
// sched.Runner shape the scheduler drives.
type runnerAdapter struct {
	prepared func(iters int) exec.Sample
}

func (r runnerAdapter) Prepare(n int) (func() counter.Totals, func()) {
	s := r.prepared(n)
	return s.Run, s.DropDeferred
}

func toBudget(o BenchOptions) sched.Budget {
	return sched.Budget{
		SampleCount: o.SampleCount,
		SampleSize:  o.SampleSize,
		MinTime:     o.MinTime,
		MaxTime:     o.MaxTime,
	}
}

// runEntry runs the scheduler (single- or multi-threaded, per
// threadCount) for one (entry, thread-count) pair, recovering any
// benchmark panic into a BenchmarkPanic rather than crashing the
// driver, matching §7's per-entry recover-and-continue handling.
func runEntry(entry BenchmarkEntry, opts BenchOptions, threadCount int, timer *xtime.Timer, pool *threadpool.Pool, profiler *alloc.Profiler, overhead, allocOverhead time.Duration) (st stats.Statistics, benchPanic *BenchmarkPanic) {
	defer func() {
		if r := recover(); r != nil {
			benchPanic = newBenchmarkPanic(entry.Path, r)
		}
	}()

	fallback := exec.Fallback{}
	if opts.Counter != nil {
		fallback = *opts.Counter
	}
	overheadFn := func(n int) time.Duration { return overhead * time.Duration(n) }

	probe := newBencher(fallback, opts.SkipExtTime)
	entry.Exec(probe)

	// bench_local (§6) forces a single-threaded run regardless of the
	// requested thread count for this entry.
	if threadCount <= 1 || probe.local {
		b := probe
		sc := sched.New(timer, profiler)
		runner := runnerAdapter{prepared: b.prepared}
		budget := toBudget(opts)
		iters := sc.IterationsFor(budget, runner)
		samples, conflict := sc.Run(budget, runner, iters, overheadFn)
		if conflict {
			log.Printf("%v", &AllocatorConflict{Entry: entry.Path})
		}
		return stats.Summarize(samples, allocOverhead), nil
	}

	return runMultiThread(entry, opts, threadCount, timer, pool, profiler, overhead, allocOverhead, fallback), nil
}

// runMultiThread drives §4.7's thread-pool protocol across sampleCount
// samples: every participant shares the same iters_per_sample (probed
// once against participant 0's own Bencher, which shares the same
// execution shape every other participant's Bencher was compiled
// with), and each sample is one full Prepare/Barrier-A/Run/Barrier-B/
// Finalize round trip through internal/threadpool.
func runMultiThread(entry BenchmarkEntry, opts BenchOptions, threadCount int, timer *xtime.Timer, pool *threadpool.Pool, profiler *alloc.Profiler, overhead, allocOverhead time.Duration, fallback exec.Fallback) stats.Statistics {
	benchers := make([]*Bencher, threadCount)
	for i := range benchers {
		b := newBencher(fallback, opts.SkipExtTime)
		entry.Exec(b)
		benchers[i] = b
	}

	sc := sched.New(timer, nil)
	budget := toBudget(opts)
	iters := sc.IterationsFor(budget, runnerAdapter{prepared: benchers[0].prepared})

	sampleCount := budget.SampleCount
	if sampleCount <= 0 {
		sampleCount = 100
	}

	var samples []sched.Sample
	var elapsedTotal time.Duration
	conflicted := false

	for sIdx := 0; ; sIdx++ {
		participants := make([]threadpool.Participant, threadCount)
		for i, b := range benchers {
			bb := b
			participants[i] = threadpool.Participant{
				Prepare: func() (func() counter.Totals, func()) {
					s := bb.prepared(iters)
					return s.Run, s.DropDeferred
				},
			}
		}

		results, conflict := threadpool.RunSample(pool, timer, profiler, participants)
		if conflict {
			conflicted = true
		}
		wall := threadpool.WallTime(results)

		var totals counter.Totals
		var tally *alloc.Tally
		for _, r := range results {
			totals.Merge(r.Counters)
			if r.Alloc != nil {
				tally = r.Alloc
			}
		}

		d := wall - overhead*time.Duration(iters)
		if d < 0 {
			d = 0
		}
		samples = append(samples, sched.Sample{Duration: d, Iterations: iters, Counters: totals, Alloc: tally})
		elapsedTotal += wall

		lastSample := sIdx+1 >= sampleCount
		if budget.MaxTime > 0 && elapsedTotal >= budget.MaxTime {
			break
		}
		if lastSample {
			if budget.MinTime <= 0 || elapsedTotal >= budget.MinTime {
				break
			}
		}
	}

	if conflicted {
		log.Printf("%v", &AllocatorConflict{Entry: entry.Path})
	}
	return stats.Summarize(samples, allocOverhead)
}

// calibrateOverhead measures the per-iteration cost the harness itself
// adds to an empty sample of the no-input shape, per §4.1's
// loop-overhead calibration. It runs once per process; driver.Run calls
// it before any real entry so every recorded Sample can have it
// subtracted.
func calibrateOverhead(timer *xtime.Timer) time.Duration {
	const iters = 100_000
	factory := exec.NoInput(func() int { return 0 }, exec.Fallback{}, false)
	sample := factory(iters)

	t0 := timer.Now()
	sample.Run()
	t1 := timer.Now()
	if sample.DropDeferred != nil {
		sample.DropDeferred()
	}

	total := timer.Elapsed(t0, t1)
	return total / time.Duration(iters)
}
