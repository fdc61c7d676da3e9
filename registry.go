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

// Package divan is an in-process micro-benchmarking harness: register
// benchmark functions with Bench/BenchGroup, then call Main to run them
// and print a comparison table.
package divan

import (
	"fmt"
	"sync"
)

// BenchmarkEntry is an immutable registry record, per §3: a dotted
// path, an optional generic-type label, an execution closure, and a
// default BenchOptions. Entries are created at process start-up via
// Bench/BenchGroup and never mutated afterward.
type BenchmarkEntry struct {
	Path         string
	GenericLabel string
	Exec         func(*Bencher)
	Defaults     BenchOptions
}

var (
	registryMu sync.Mutex
	registry   []BenchmarkEntry
)

// register appends e to the process-global list. The registry is
// append-only and read-only to everything except this function, per
// §6's registry contract.
func register(e BenchmarkEntry) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = append(registry, e)
}

// Entries returns a snapshot of the current registry, in registration
// order (the driver natural-sorts it before iterating).
func Entries() []BenchmarkEntry {
	registryMu.Lock()
	defer registryMu.Unlock()
	return append([]BenchmarkEntry(nil), registry...)
}

// group accumulates a dotted path prefix and a chain of option
// overrides, the "ancestor group defaults" tier of §3's precedence.
type group struct {
	prefix  string
	options BenchOptions
}

// BenchGroup creates a named group scope; benchmarks registered through
// the returned Group (its Bench method, or Args/Consts) each inherit
// opts as their group defaults.
func BenchGroup(name string, opts ...Option) *Group {
	var o BenchOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Group{g: group{prefix: name, options: o}}
}

// Group is a named namespace for related benchmarks, mirroring the
// original's group!{} macro scope.
type Group struct {
	g group
}

// Bench registers one benchmark under the group's path.
func (grp *Group) Bench(name string, exec func(*Bencher), opts ...Option) {
	registerEntry(grp.g, name, "", exec, opts)
}

// Args registers one benchmark per value in args, expanding to
// len(args) registry records that share exec but differ in their
// captured value and a "name/value" path suffix, per §5's
// args/consts expansion.
func Args[T any](grp *Group, name string, args []T, exec func(*Bencher, T), opts ...Option) {
	for _, v := range args {
		v := v
		label := fmt.Sprintf("%s/%v", name, v)
		registerEntry(grp.g, label, "", func(b *Bencher) { exec(b, v) }, opts)
	}
}

// Consts registers one benchmark per compile-time-style constant name
// in names, invoking build(name) to obtain the value passed to exec; it
// exists for symmetry with the original's separate consts! macro, which
// (unlike args!) is meant for type-level or named constants rather than
// runtime-provided values.
func Consts[T any](grp *Group, name string, names []string, build func(string) T, exec func(*Bencher, T), opts ...Option) {
	for _, n := range names {
		n := n
		label := fmt.Sprintf("%s/%s", name, n)
		v := build(n)
		registerEntry(grp.g, label, "", func(b *Bencher) { exec(b, v) }, opts)
	}
}

// Bench registers a top-level benchmark (no enclosing group).
func Bench(name string, exec func(*Bencher), opts ...Option) {
	registerEntry(group{}, name, "", exec, opts)
}

func registerEntry(g group, name, genericLabel string, exec func(*Bencher), opts []Option) {
	var o BenchOptions
	for _, opt := range opts {
		opt(&o)
	}
	defaults := merge(g.options, o)

	path := name
	if g.prefix != "" {
		path = g.prefix + "::" + name
	}

	register(BenchmarkEntry{
		Path:         path,
		GenericLabel: genericLabel,
		Exec:         exec,
		Defaults:     defaults,
	})
}

// resetRegistryForTest clears the global registry; used only by this
// module's own tests so they don't interfere with each other's entries.
func resetRegistryForTest() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = nil
}
