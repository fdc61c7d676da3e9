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
	"divan/internal/counter"
	"divan/internal/exec"
)

// Bencher is what a registered benchmark function receives: it selects
// exactly one of §4.6's four execution shapes and, optionally, an
// input-generator and per-input counter function. Calling more than one
// of bench/bench_values/bench_refs/bench_local on the same Bencher is a
// programmer error; each call replaces the shape compiled by the one
// before it, so only the last call takes effect.
type Bencher struct {
	skipExtTime bool
	local       bool
	fallback    exec.Fallback
	prepared    func(iters int) exec.Sample
}

// newBencher constructs a Bencher for one sample's execution, carrying
// forward the resolved fallback counter and skip_ext_time flag from the
// entry's merged BenchOptions.
func newBencher(fallback exec.Fallback, skipExtTime bool) *Bencher {
	return &Bencher{fallback: fallback, skipExtTime: skipExtTime}
}

// WithInputsAndCounter is the generic entry point behind with_inputs +
// input_counter: gen produces one input per iteration, counterFn (nil
// if not set) overrides the entry's default counter per input.
func WithInputsAndCounter[I any](b *Bencher, gen func() I, counterFn func(I) counter.Source) *bencherWithInput[I] {
	return &bencherWithInput[I]{b: b, gen: gen, counterFn: counterFn}
}

// bencherWithInput carries the generic input type parameter forward
// from with_inputs to the terminal bench_* call, since Go's Bencher
// itself cannot be generic (it is stored, type-erased, in the registry
// entry's exec closure).
type bencherWithInput[I any] struct {
	b         *Bencher
	gen       func() I
	counterFn func(I) counter.Source
}

// BenchRefs selects the refs-in/values-out shape (§4.6): fn receives a
// pointer to each pre-generated input.
func BenchRefs[I, O any](w *bencherWithInput[I], fn func(*I) O) {
	w.b.prepared = exec.RefsIn(w.gen, fn, w.counterFn, w.b.fallback, w.b.skipExtTime)
}

// BenchValues selects the values-in/values-out shape: fn receives each
// pre-generated input by value.
func BenchValues[I, O any](w *bencherWithInput[I], fn func(I) O) {
	w.b.prepared = exec.ValuesIn(w.gen, fn, w.counterFn, w.b.fallback, w.b.skipExtTime)
}

// BenchRefsRefs selects the refs-in/refs-out shape: fn's result is
// itself reference-like and is passed through the black-box read
// barrier rather than dropped or parked.
func BenchRefsRefs[I, O any](w *bencherWithInput[I], fn func(*I) O) {
	w.b.prepared = exec.RefsInRefsOut(w.gen, fn, w.counterFn, w.b.fallback)
}

// BenchNoInput selects the no-input/values-out shape: fn takes nothing.
func BenchNoInput[O any](b *Bencher, fn func() O) {
	b.prepared = exec.NoInput(fn, b.fallback, b.skipExtTime)
}

// BenchLocal marks the benchmark to run single-threaded even within a
// multi-thread sweep — every participant slot still gets its own
// Bencher, but the driver only ever asks for one when local is set,
// per §6's bench_local.
func BenchLocal[O any](b *Bencher, fn func() O) {
	b.local = true
	BenchNoInput(b, fn)
}
