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

// Package blackbox implements the optimization barrier every value crossing
// a divan timed region must pass through. Go's compiler is considerably
// more conservative about eliding function calls than LLVM, but it will
// still constant-fold and dead-code-eliminate a value that provably never
// escapes and is never observed — exactly what a naive benchmark body
// produces. Value and Drop close that gap.
package blackbox

import "unsafe"

// noescape hides a pointer's provenance from the escape analyzer and,
// incidentally, from the inliner's constant-propagation pass: the
// round-trip through an integer defeats both. This is the same trick
// used by runtime.noescape and by every no-op-optimizer-barrier
// implementation in the Go ecosystem (e.g. testing.B's own use of it via
// runtime_doNothing on some ports); we keep our own copy so this package
// has no dependency on runtime internals.
//
//go:nosplit
func noescape(p unsafe.Pointer) unsafe.Pointer {
	x := uintptr(p)
	return unsafe.Pointer(x ^ 0) //nolint:staticcheck // deliberate escape-analysis defeat
}

// Value returns v having forced it through an opaque pointer round-trip,
// preventing the compiler from proving v is unused past this call and
// therefore from folding away whatever computed it. Wrap every value read
// out of the timed region — including generated inputs immediately before
// they're passed to the benchmarked function — with Value.
func Value[T any](v T) T {
	p := noescape(unsafe.Pointer(&v))
	return *(*T)(p)
}

// Drop takes ownership of v and releases it at a point the optimizer
// cannot predict, forcing any destructor-equivalent work (for Go, GC
// finalizers and buffer releases; there is no user-visible destructor,
// but a large slice becoming unreachable here still triggers real
// deallocation bookkeeping the allocator profiler observes) to run as
// part of the timed region unless the caller has opted out with
// skip_ext_time, in which case the value is parked and dropped outside
// the region instead of here.
func Drop[T any](v T) {
	p := noescape(unsafe.Pointer(&v))
	_ = *(*T)(p)
}
