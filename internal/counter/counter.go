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

// Package counter implements the per-iteration throughput tallies (items,
// bytes, chars, cycles) that combine with a Sample's duration to produce
// throughput columns in the report.
package counter

import "time"

// Kind identifies one of the four counter slots. Values double as indices
// into a Totals array, so the zero value must stay Items and the order
// must not change without updating Totals' size.
type Kind uint8

const (
	Items Kind = iota
	Bytes
	Chars
	Cycles

	// numKinds is the fixed width of a Totals array; see §3's
	// counter_totals: [u64; 4].
	numKinds = 4
)

func (k Kind) String() string {
	switch k {
	case Items:
		return "items"
	case Bytes:
		return "bytes"
	case Chars:
		return "chars"
	case Cycles:
		return "cycles"
	default:
		return "unknown"
	}
}

// Totals holds the per-sample sum of each counter kind across every
// iteration in the sample, satisfying invariant I2 (no fractional
// attribution — every add is a whole per-iteration value).
type Totals [numKinds]uint64

// Add accumulates n units of kind k for one iteration.
func (t *Totals) Add(k Kind, n uint64) { t[k] += n }

// Value reads the accumulated total for kind k.
func (t Totals) Value(k Kind) uint64 { return t[k] }

// Merge folds another Totals into t, used when combining multi-threaded
// participants' per-iteration totals into one sample record.
func (t *Totals) Merge(other Totals) {
	for k := range t {
		t[k] += other[k]
	}
}

// Source is the counter kind and value to attribute to one iteration,
// chosen under §4.3's four precedence tiers
// (input-counter function > global default > entry attribute > group
// default). Source encodes which tier supplied the value; callers pick
// the first tier that has one configured.
type Source struct {
	Kind  Kind
	Value uint64
}

// Attach resolves the effective per-iteration counter for one entry,
// applying §4.3's precedence: an input-counter function beats every
// static default. inputFn is nil unless Bencher.input_counter was used.
func Attach[I any](inputFn func(I) Source, input I, fallback Source) Source {
	if inputFn != nil {
		return inputFn(input)
	}
	return fallback
}

// Throughput derives a rate from an accumulated total and the elapsed
// wall time it was measured over. For Cycles it reports Hertz (cycles per
// second); every other kind reports units per second.
func Throughput(k Kind, total uint64, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(total) / elapsed.Seconds()
}
