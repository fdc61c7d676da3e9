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

//go:build !amd64

package xtime

// Falls back to the Os backend exclusively on architectures without an
// RDTSC-equivalent wired up. This is a coverage gap, not a correctness
// one: divan never requires the TSC backend, only prefers it.

func readTSC() uint64 { return 0 }

func tscFrequency() (float64, bool) { return 0, false }
