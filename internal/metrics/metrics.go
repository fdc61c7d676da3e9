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

// Package metrics provides opt-in, low-overhead Prometheus instrumentation
// of the harness process itself — how many entries ran, how many
// panicked, how many samples were collected, what calibration overhead
// was measured. It is not a benchmark-results store: nothing here
// survives the process, and there is no comparison against a prior run.
// When disabled, every public function is a no-op, the same shape as
// the teacher's telemetry/churn package.
package metrics

import (
	"log"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config controls whether the exporter is active and where it listens.
type Config struct {
	Enabled bool
	Addr    string // e.g. ":9090"; ignored if Enabled is false
}

var (
	modEnabled atomic.Bool
	serverOnce sync.Once

	benchmarksRunTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "divan_benchmarks_run_total",
		Help: "Total benchmark entries run to completion.",
	})
	benchmarkPanicsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "divan_benchmark_panics_total",
		Help: "Total benchmark entries that panicked inside a timed region.",
	})
	samplesCollectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "divan_samples_collected_total",
		Help: "Total samples collected across every benchmark entry.",
	})
	calibrationOverheadSeconds = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "divan_calibration_overhead_seconds",
		Help: "Per-iteration loop overhead measured at process-start calibration.",
	})
)

func init() {
	prometheus.MustRegister(
		benchmarksRunTotal,
		benchmarkPanicsTotal,
		samplesCollectedTotal,
		calibrationOverheadSeconds,
	)
}

// Enable activates metric recording and, if cfg.Addr is non-empty, starts
// a dedicated /metrics HTTP server. Safe to call multiple times.
func Enable(cfg Config) {
	modEnabled.Store(cfg.Enabled)
	if !cfg.Enabled || cfg.Addr == "" {
		return
	}
	serverOnce.Do(func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
				log.Printf("metrics: exporter stopped: %v", err)
			}
		}()
	})
}

// BenchmarkCompleted records one entry finishing without panicking.
func BenchmarkCompleted() {
	if modEnabled.Load() {
		benchmarksRunTotal.Inc()
	}
}

// BenchmarkPanicked records one entry's timed region recovering a panic.
func BenchmarkPanicked() {
	if modEnabled.Load() {
		benchmarkPanicsTotal.Inc()
	}
}

// SamplesCollected records n additional samples collected.
func SamplesCollected(n int) {
	if modEnabled.Load() && n > 0 {
		samplesCollectedTotal.Add(float64(n))
	}
}

// SetCalibrationOverhead records the process's measured per-iteration
// loop overhead, in seconds.
func SetCalibrationOverhead(seconds float64) {
	if modEnabled.Load() {
		calibrationOverheadSeconds.Set(seconds)
	}
}
