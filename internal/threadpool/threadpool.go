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

// Package threadpool implements §4.7's reusable worker pool for
// multi-threaded benchmark samples: workers are pinned to inherit the
// main thread's CPU affinity, dispatch is a zero-capacity (rendezvous)
// channel handoff, and a participant barrier keeps every thread's timed
// region starting and ending together.
//
// The teacher's vsa.go reaches below the public runtime API
// (//go:linkname runtime_procPin) to get cheap per-P identity for
// contention striping. This package makes the same kind of low-level
// move for a different end: real OS-thread CPU pinning via
// golang.org/x/sys/unix, so worker threads actually share a core mask
// with the thread that spawned them rather than floating free under the
// Go scheduler.
package threadpool

import (
	"log"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// worker holds one pinned OS thread's rendezvous channel pair, modeled
// directly on original_source/src/threads.rs's BencherThread: a
// zero-capacity send channel for work and a zero-capacity receive
// channel for results, so at most one task is ever in flight between
// caller and worker at a time.
type worker struct {
	work chan func()
	done chan struct{}
	quit chan struct{}
	wg   sync.WaitGroup
}

func newWorker(affinity *unix.CPUSet) *worker {
	w := &worker{
		work: make(chan func()),
		done: make(chan struct{}),
		quit: make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop(affinity)
	return w
}

func (w *worker) loop(affinity *unix.CPUSet) {
	defer w.wg.Done()
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if affinity != nil {
		if err := unix.SchedSetaffinity(0, affinity); err != nil {
			log.Printf("threadpool: worker could not inherit CPU affinity: %v", err)
		}
	}

	for {
		select {
		case fn := <-w.work:
			fn()
			w.done <- struct{}{}
		case <-w.quit:
			return
		}
	}
}

func (w *worker) dispatch(fn func()) {
	w.work <- fn
	<-w.done
}

func (w *worker) stop() {
	close(w.quit)
	w.wg.Wait()
}

// Pool is the process-wide lazily-grown worker pool. One Pool is shared
// across every benchmark entry's multi-threaded samples; it only ever
// grows to the largest thread count any entry requests, never shrinks.
type Pool struct {
	mu      sync.Mutex
	workers []*worker

	pinOnce  sync.Once
	affinity unix.CPUSet
	pinOK    bool
}

// New returns an empty Pool. Workers are spawned lazily by Ensure.
func New() *Pool { return &Pool{} }

// Ensure grows the pool, if needed, to have at least n-1 worker threads
// available (the caller's own goroutine always serves as the Nth
// participant), pinning new workers to the affinity mask captured from
// the main thread on first use.
func (p *Pool) Ensure(n int) {
	if n <= 1 {
		return
	}
	p.pinOnce.Do(p.captureAffinity)

	p.mu.Lock()
	defer p.mu.Unlock()
	need := n - 1
	var mask *unix.CPUSet
	if p.pinOK {
		mask = &p.affinity
	}
	for len(p.workers) < need {
		p.workers = append(p.workers, newWorker(mask))
	}
}

// captureAffinity reads the calling (main) thread's affinity mask, then
// pins that thread to CPU 0 momentarily and releases it, per §4.7:
// "pinning the main thread to CPU 0 before spawning, then releasing".
// The original mask — not CPU 0 alone — is what every worker
// inherits, so a process launched under a wider cpuset (e.g. a container limit) propagates that same set
// rather than clamping every worker to a single core.
func (p *Pool) captureAffinity() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	var original unix.CPUSet
	if err := unix.SchedGetaffinity(0, &original); err != nil {
		log.Printf("threadpool: could not read CPU affinity, workers will float unpinned: %v", err)
		return
	}

	var pinned unix.CPUSet
	pinned.Zero()
	pinned.Set(0)
	if err := unix.SchedSetaffinity(0, &pinned); err != nil {
		log.Printf("threadpool: could not pin main thread to CPU 0, workers will float unpinned: %v", err)
		return
	}

	var readback unix.CPUSet
	if err := unix.SchedGetaffinity(0, &readback); err != nil {
		log.Printf("threadpool: could not read back CPU affinity: %v", err)
	}

	// Release the main thread back to its original mask; that original
	// mask, not the CPU-0 readback, is propagated to workers.
	if err := unix.SchedSetaffinity(0, &original); err != nil {
		log.Printf("threadpool: could not restore main thread CPU affinity: %v", err)
	}

	p.affinity = original
	p.pinOK = true
}

// Dispatch hands fns[1:] to worker threads (blocking until each worker
// finishes) while the caller runs fns[0] itself, matching §4.7's "N-1
// workers plus the main thread" shape. It returns once every
// participant has completed. Dispatch does not itself implement
// Barrier-A/Barrier-B — callers compose it with a Barrier for the
// prepare/run phase split described in §4.7; Dispatch alone is the
// rendezvous-channel handoff mechanism.
//
// A panic from any participant, including one running on a worker
// goroutine, is recovered there and re-raised on the calling goroutine
// once every participant has finished, so the driver's per-entry
// recover (§7's BenchmarkPanic handling) sees it regardless of which
// thread the benchmark body actually ran on.
func (p *Pool) Dispatch(fns []func()) {
	if len(fns) == 0 {
		return
	}
	p.Ensure(len(fns))

	p.mu.Lock()
	workers := p.workers
	p.mu.Unlock()

	var panicVal atomic.Value
	guarded := func(fn func()) func() {
		return func() {
			defer func() {
				if r := recover(); r != nil {
					panicVal.Store(recoveredPanic{r})
				}
			}()
			fn()
		}
	}

	var wg sync.WaitGroup
	for i := 1; i < len(fns); i++ {
		w := workers[i-1]
		fn := guarded(fns[i])
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.dispatch(fn)
		}()
	}
	guarded(fns[0])()
	wg.Wait()

	if v := panicVal.Load(); v != nil {
		panic(v.(recoveredPanic).value)
	}
}

// recoveredPanic wraps an arbitrary recovered value so atomic.Value,
// which requires a consistent concrete type across Store calls, can
// hold it regardless of what the benchmark body panicked with.
type recoveredPanic struct{ value any }

// Close stops every worker thread. Intended for process shutdown paths
// (tests, primarily); the driver does not call this mid-run since the
// pool is meant to persist for the process's lifetime.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, w := range p.workers {
		w.stop()
	}
	p.workers = nil
}

// Barrier is an N-participant rendezvous: every participant's call to
// Wait blocks until all N have called it, matching §4.7's Barrier-A
// (all ready to run) and Barrier-B (all done). A Barrier is single-use
// per (Barrier-A, Barrier-B) pair of a sample — NewBarrier is called
// once per sample by the scheduler, not once per process.
type Barrier struct {
	n       int
	release chan struct{}
	count   int
	mu      sync.Mutex
}

// NewBarrier builds a barrier for n participants.
func NewBarrier(n int) *Barrier {
	return &Barrier{n: n, release: make(chan struct{})}
}

// Wait blocks the calling goroutine until all n participants have
// called Wait, then releases all of them together.
func (b *Barrier) Wait() {
	b.mu.Lock()
	b.count++
	last := b.count == b.n
	b.mu.Unlock()

	if last {
		close(b.release)
		return
	}
	<-b.release
}
