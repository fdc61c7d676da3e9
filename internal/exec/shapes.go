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

package exec

import (
	"divan/internal/blackbox"
	"divan/internal/counter"
)

// NoInput compiles the "no-input / values-out" shape from §4.6: for each
// iteration, call fn (which takes nothing) and either drop its result
// inline or park it for out-of-region disposal. There is no generated
// input to attach a per-input counter to, so every iteration uses
// fallback.
func NoInput[O any](fn func() O, fallback Fallback, skipExtTime bool) func(iters int) Sample {
	return func(iters int) Sample {
		if skipExtTime {
			parked := make([]O, 0, iters)
			return Sample{
				Run: func() counter.Totals {
					var totals counter.Totals
					for i := 0; i < iters; i++ {
						v := fn()
						totals.Add(fallback.Kind, fallback.Value)
						parked = append(parked, blackbox.Value(v))
					}
					return totals
				},
				DropDeferred: func() {
					var zero O
					for i := range parked {
						parked[i] = zero
					}
				},
			}
		}
		return Sample{
			Run: func() counter.Totals {
				var totals counter.Totals
				for i := 0; i < iters; i++ {
					v := fn()
					totals.Add(fallback.Kind, fallback.Value)
					blackbox.Drop(v)
				}
				return totals
			},
		}
	}
}

// RefsIn compiles the "refs-in / values-out" shape: inputs are generated
// up front (outside the timed region, per §4.5 step 1), then fn is
// called with a pointer to each in turn.
func RefsIn[I, O any](gen func() I, fn func(*I) O, inputCounter func(I) counter.Source, fallback Fallback, skipExtTime bool) func(iters int) Sample {
	return func(iters int) Sample {
		inputs := make([]I, iters)
		for i := range inputs {
			inputs[i] = blackbox.Value(gen())
		}
		if skipExtTime {
			parked := make([]O, 0, iters)
			return Sample{
				Run: func() counter.Totals {
					var totals counter.Totals
					for i := range inputs {
						src := counter.Attach(inputCounter, inputs[i], fallback)
						v := fn(&inputs[i])
						totals.Add(src.Kind, src.Value)
						parked = append(parked, blackbox.Value(v))
					}
					return totals
				},
				DropDeferred: func() {
					var zero O
					for i := range parked {
						parked[i] = zero
					}
				},
			}
		}
		return Sample{
			Run: func() counter.Totals {
				var totals counter.Totals
				for i := range inputs {
					src := counter.Attach(inputCounter, inputs[i], fallback)
					v := fn(&inputs[i])
					totals.Add(src.Kind, src.Value)
					blackbox.Drop(v)
				}
				return totals
			},
		}
	}
}

// ValuesIn compiles the "values-in / values-out" shape: identical input
// pre-generation to RefsIn, but fn receives the input by value, consuming
// it (Go has no move semantics, so "consuming" here is a copy from the
// benchmarked function's point of view, exactly as it would be for any
// non-pointer-receiver Go function).
func ValuesIn[I, O any](gen func() I, fn func(I) O, inputCounter func(I) counter.Source, fallback Fallback, skipExtTime bool) func(iters int) Sample {
	return func(iters int) Sample {
		inputs := make([]I, iters)
		for i := range inputs {
			inputs[i] = blackbox.Value(gen())
		}
		if skipExtTime {
			parked := make([]O, 0, iters)
			return Sample{
				Run: func() counter.Totals {
					var totals counter.Totals
					for i := range inputs {
						src := counter.Attach(inputCounter, inputs[i], fallback)
						v := fn(inputs[i])
						totals.Add(src.Kind, src.Value)
						parked = append(parked, blackbox.Value(v))
					}
					return totals
				},
				DropDeferred: func() {
					var zero O
					for i := range parked {
						parked[i] = zero
					}
				},
			}
		}
		return Sample{
			Run: func() counter.Totals {
				var totals counter.Totals
				for i := range inputs {
					src := counter.Attach(inputCounter, inputs[i], fallback)
					v := fn(inputs[i])
					totals.Add(src.Kind, src.Value)
					blackbox.Drop(v)
				}
				return totals
			},
		}
	}
}

// RefsInRefsOut compiles the "refs-in / refs-out" shape: fn's result is
// itself reference-like (typically a pointer into, or borrow of, the
// input) and is never independently owned by the timed region, so it is
// passed through Value (a read barrier) rather than Drop — parking it
// for skip_ext_time would be meaningless since there is nothing to
// dispose of that outlives the input slice already held by inputs.
func RefsInRefsOut[I, O any](gen func() I, fn func(*I) O, inputCounter func(I) counter.Source, fallback Fallback) func(iters int) Sample {
	return func(iters int) Sample {
		inputs := make([]I, iters)
		for i := range inputs {
			inputs[i] = blackbox.Value(gen())
		}
		return Sample{
			Run: func() counter.Totals {
				var totals counter.Totals
				for i := range inputs {
					src := counter.Attach(inputCounter, inputs[i], fallback)
					r := fn(&inputs[i])
					totals.Add(src.Kind, src.Value)
					_ = blackbox.Value(r)
				}
				return totals
			},
		}
	}
}
