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
	"testing"

	"divan/internal/counter"
)

func TestNoInputCountsFallback(t *testing.T) {
	calls := 0
	factory := NoInput(func() int { calls++; return calls }, Fallback{Kind: counter.Items, Value: 2}, false)

	sample := factory(5)
	totals := sample.Run()

	if calls != 5 {
		t.Fatalf("fn called %d times, want 5", calls)
	}
	if got := totals.Value(counter.Items); got != 10 {
		t.Fatalf("Items total = %d, want 10", got)
	}
}

func TestNoInputSkipExtTimeParksOutputs(t *testing.T) {
	factory := NoInput(func() string { return "x" }, Fallback{}, true)
	sample := factory(3)
	sample.Run()
	if sample.DropDeferred == nil {
		t.Fatalf("DropDeferred is nil when skipExtTime is true")
	}
	sample.DropDeferred()
}

func TestRefsInUsesInputCounter(t *testing.T) {
	inputs := []int{10, 20, 30}
	i := 0
	gen := func() int {
		v := inputs[i]
		i++
		return v
	}
	fn := func(p *int) int { return *p * 2 }
	inputCounter := func(v int) counter.Source { return counter.Source{Kind: counter.Bytes, Value: uint64(v)} }

	factory := RefsIn(gen, fn, inputCounter, Fallback{}, false)
	sample := factory(3)
	totals := sample.Run()

	if got := totals.Value(counter.Bytes); got != 60 {
		t.Fatalf("Bytes total = %d, want 60 (10+20+30)", got)
	}
}

func TestValuesInFallsBackWithoutInputCounter(t *testing.T) {
	gen := func() int { return 7 }
	fn := func(v int) int { return v + 1 }

	factory := ValuesIn[int, int](gen, fn, nil, Fallback{Kind: counter.Items, Value: 1}, false)
	sample := factory(4)
	totals := sample.Run()

	if got := totals.Value(counter.Items); got != 4 {
		t.Fatalf("Items total = %d, want 4", got)
	}
}

func TestRefsInRefsOutPassesThroughResult(t *testing.T) {
	values := []int{1, 2, 3}
	i := 0
	gen := func() int {
		v := values[i]
		i++
		return v
	}
	fn := func(p *int) *int { return p }

	factory := RefsInRefsOut(gen, fn, nil, Fallback{})
	sample := factory(3)
	sample.Run()
}
