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

// Package exec builds the four timed-region shapes from §4.6: no-input,
// refs-in/values-out, values-in/values-out, and refs-in/refs-out (see
// shapes.go). Each shape is compiled once, at Bencher registration
// time, into an opaque Sample so the scheduler never has to know which
// shape it's driving.
package exec

import "divan/internal/counter"

// Sample is what one call to the scheduler's sample loop needs: Run
// executes exactly the prepared iteration count inside the timed region
// and returns the counters accumulated over it; DropDeferred (nil unless
// skip_ext_time parked output values) releases them once the region has
// closed.
type Sample struct {
	Run          func() counter.Totals
	DropDeferred func()
}

// Fallback is the counter value applied when no per-input counter
// function is configured, resolved ahead of time by the caller from
// (entry attribute, group default, global default) per §4.3's
// precedence — Attach only distinguishes "was an input-counter function
// given" from "use whatever default was already resolved".
type Fallback = counter.Source
