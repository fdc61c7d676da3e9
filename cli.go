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
	"flag"
	"time"
)

// parseCLI builds a Config from a flat flag.FlagSet, the same flag
// surface every cmd/*/main.go in this module's lineage uses — no
// cobra, no viper. Positional (non-flag) arguments are treated as
// positive name filters unless prefixed with "-", which marks a
// negative filter, matching §6's "positive/negative name filters".
func parseCLI(args []string) (Config, error) {
	fs := flag.NewFlagSet("divan", flag.ContinueOnError)

	sampleCount := fs.Int("sample-count", 0, "target number of samples collected")
	sampleSize := fs.Int("sample-size", 0, "target iterations per sample (0 = auto)")
	minTime := fs.Float64("min-time", 0, "lower bound on total wall time per benchmark, in seconds")
	maxTime := fs.Float64("max-time", 0, "upper bound on total wall time per benchmark, in seconds")
	threads := fs.String("threads", "", "comma-separated thread counts to sweep")
	itemsCount := fs.Uint64("items-count", 0, "default items-per-iteration counter value")
	bytesCount := fs.Uint64("bytes-count", 0, "default bytes-per-iteration counter value")
	charsCount := fs.Uint64("chars-count", 0, "default chars-per-iteration counter value")
	skipExtTime := fs.Bool("skip-ext-time", false, "exclude input generation and output drop from the timed region")
	ignored := fs.Bool("ignored", false, "run entries marked ignore instead of skipping them")
	exact := fs.Bool("exact", false, "match name filters exactly instead of by substring")
	list := fs.Bool("list", false, "print matched benchmark paths without running them")
	test := fs.Bool("test", false, "run every matched benchmark once, for correctness checking")
	bytesFormat := fs.String("bytes-format", "", "binary or decimal units for bytes throughput")
	allocProfile := fs.Bool("alloc-profile", false, "enable the allocation profiler (adds a MemStats snapshot per sample)")
	metricsEnabled := fs.Bool("metrics", false, "record process-level Prometheus metrics for this run")
	metricsAddr := fs.String("metrics-addr", "", "serve /metrics on this address instead of only recording in-process")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	c := Config{
		SampleCount:    *sampleCount,
		SampleSize:     *sampleSize,
		ItemsCount:     *itemsCount,
		BytesCount:     *bytesCount,
		CharsCount:     *charsCount,
		SkipExtTime:    *skipExtTime,
		Ignored:        *ignored,
		Exact:          *exact,
		List:           *list,
		Test:           *test,
		BytesFormat:    *bytesFormat,
		AllocProfile:   *allocProfile,
		MetricsEnabled: *metricsEnabled,
		MetricsAddr:    *metricsAddr,
	}
	if *minTime != 0 {
		c.MinTime = time.Duration(*minTime * float64(time.Second))
	}
	if *maxTime != 0 {
		c.MaxTime = time.Duration(*maxTime * float64(time.Second))
	}
	if *threads != "" {
		t, err := parseThreads(*threads)
		if err != nil {
			return c, &ConfigError{Field: "--threads", Msg: err.Error()}
		}
		c.Threads = t
	}

	for _, a := range fs.Args() {
		if len(a) > 0 && a[0] == '-' {
			c.Negative = append(c.Negative, a[1:])
		} else {
			c.Positive = append(c.Positive, a)
		}
	}

	return c, nil
}
