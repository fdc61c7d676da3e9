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

package alloc

import "testing"

func TestStartStopTracksAllocations(t *testing.T) {
	p := New()
	tally, err := p.Start()
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	sink := make([][]byte, 0, 64)
	for i := 0; i < 64; i++ {
		sink = append(sink, make([]byte, 1024))
	}
	_ = sink

	p.Stop(tally)

	if tally.AllocCount == 0 {
		t.Fatalf("AllocCount = 0, want > 0 after allocating in the timed region")
	}
	if tally.AllocBytes == 0 {
		t.Fatalf("AllocBytes = 0, want > 0")
	}
}

func TestStopPopulatesPeakFieldsFromEndSnapshot(t *testing.T) {
	p := New()
	tally, err := p.Start()
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	sink := make([][]byte, 0, 64)
	for i := 0; i < 64; i++ {
		sink = append(sink, make([]byte, 1024))
	}
	_ = sink

	p.Stop(tally)

	if tally.MaxInFlight == 0 {
		t.Errorf("MaxInFlight = 0, want > 0 after allocating in the timed region")
	}
	if tally.MaxLiveCount == 0 {
		t.Errorf("MaxLiveCount = 0, want > 0 after allocating in the timed region")
	}
}

func TestStartConflict(t *testing.T) {
	p := New()
	t1, err := p.Start()
	if err != nil {
		t.Fatalf("first Start() error = %v", err)
	}
	if _, err := p.Start(); err != ErrConflict {
		t.Fatalf("second concurrent Start() error = %v, want ErrConflict", err)
	}
	p.Stop(t1)

	if _, err := p.Start(); err != nil {
		t.Fatalf("Start() after Stop() error = %v, want nil", err)
	}
}

func TestActive(t *testing.T) {
	p := New()
	if p.Active() {
		t.Fatalf("Active() = true before any Start()")
	}
	tally, err := p.Start()
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !p.Active() {
		t.Fatalf("Active() = false after Start()")
	}
	p.Stop(tally)
	if p.Active() {
		t.Fatalf("Active() = true after Stop()")
	}
}

func TestCalibrateOverheadCachesResult(t *testing.T) {
	p := New()
	o1 := p.CalibrateOverhead()
	o2 := p.CalibrateOverhead()
	if o1 != o2 {
		t.Fatalf("CalibrateOverhead() returned different values across calls: %v vs %v", o1, o2)
	}
	if p.Overhead() != o1 {
		t.Fatalf("Overhead() = %v, want %v", p.Overhead(), o1)
	}
}
