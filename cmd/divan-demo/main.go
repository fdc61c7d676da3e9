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

// Package main is a runnable demonstration of the divan harness,
// exercising all four execution shapes from a single binary:
//
//   - NoInput:          fibonacci(20), nothing generated per iteration.
//   - RefsIn/ValuesOut:  sum a pre-generated []int slice by pointer.
//   - ValuesIn/ValuesOut: hash a pre-generated string by value.
//   - RefsIn/RefsOut:    look up a key in a pre-built key/value table and
//     return a pointer into its backing values slice.
//
// Run it with `go run ./cmd/divan-demo`, optionally with divan's own
// flags, e.g. `go run ./cmd/divan-demo --sample-count 20`.
package main

import (
	"fmt"
	"strings"

	"divan"
	"divan/internal/counter"
)

func fibonacci(n int) int {
	if n < 2 {
		return n
	}
	a, b := 0, 1
	for i := 2; i <= n; i++ {
		a, b = b, a+b
	}
	return b
}

func sumInts(xs *[]int) int {
	total := 0
	for _, x := range *xs {
		total += x
	}
	return total
}

func hashString(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

type lookupTable struct {
	keys   []string
	values []int
}

func buildLookupTable() *lookupTable {
	t := &lookupTable{}
	for i := 0; i < 64; i++ {
		t.keys = append(t.keys, fmt.Sprintf("key-%d", i))
		t.values = append(t.values, i*i)
	}
	return t
}

func (t *lookupTable) find(key string) *int {
	for i, k := range t.keys {
		if k == key {
			return &t.values[i]
		}
	}
	return nil
}

func main() {
	grp := divan.BenchGroup("fixtures")

	divan.Bench(
		"fibonacci20",
		func(b *divan.Bencher) {
			divan.BenchNoInput(b, func() int { return fibonacci(20) })
		},
	)

	grp.Bench("sum_ints", func(b *divan.Bencher) {
		w := divan.WithInputsAndCounter(b, func() []int {
			xs := make([]int, 1024)
			for i := range xs {
				xs[i] = i
			}
			return xs
		}, func(xs []int) counter.Source {
			return counter.Source{Kind: counter.Items, Value: uint64(len(xs))}
		})
		divan.BenchRefs(w, sumInts)
	}, divan.WithCounter(counter.Items, 1024))

	grp.Bench("hash_string", func(b *divan.Bencher) {
		w := divan.WithInputsAndCounter(b, func() string {
			return strings.Repeat("divan", 32)
		}, func(s string) counter.Source {
			return counter.Source{Kind: counter.Bytes, Value: uint64(len(s))}
		})
		divan.BenchValues(w, hashString)
	})

	table := buildLookupTable()
	grp.Bench("lookup_table_find", func(b *divan.Bencher) {
		i := 0
		w := divan.WithInputsAndCounter(b, func() string {
			i = (i + 1) % len(table.keys)
			return table.keys[i]
		}, nil)
		divan.BenchRefsRefs(w, func(key *string) *int { return table.find(*key) })
	}, divan.WithThreads(1, 2, 4))

	divan.Main()
}
