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
	"testing"

	"divan/internal/counter"
)

func TestBenchNoInputPreparesARunnableSample(t *testing.T) {
	b := newBencher(counter.Source{}, false)
	calls := 0
	BenchNoInput(b, func() int { calls++; return calls })

	if b.prepared == nil {
		t.Fatalf("prepared is nil after BenchNoInput")
	}
	sample := b.prepared(5)
	sample.Run()
	if calls != 5 {
		t.Fatalf("fn called %d times, want 5", calls)
	}
}

func TestBenchRefsPreparesARunnableSample(t *testing.T) {
	b := newBencher(counter.Source{}, false)
	w := WithInputsAndCounter(b, func() int { return 3 }, nil)
	BenchRefs(w, func(p *int) int { return *p * 2 })

	sample := b.prepared(4)
	sample.Run()
}

func TestBenchValuesPreparesARunnableSample(t *testing.T) {
	b := newBencher(counter.Source{}, false)
	w := WithInputsAndCounter(b, func() string { return "x" }, func(s string) counter.Source {
		return counter.Source{Kind: counter.Bytes, Value: uint64(len(s))}
	})
	BenchValues(w, func(s string) int { return len(s) })

	sample := b.prepared(2)
	totals := sample.Run()
	if got := totals.Value(counter.Bytes); got != 2 {
		t.Fatalf("Bytes total = %d, want 2", got)
	}
}

func TestBenchLocalSetsLocalFlag(t *testing.T) {
	b := newBencher(counter.Source{}, false)
	BenchLocal(b, func() int { return 1 })
	if !b.local {
		t.Fatalf("local = false after BenchLocal, want true")
	}
	if b.prepared == nil {
		t.Fatalf("prepared is nil after BenchLocal")
	}
}
