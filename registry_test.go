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

import "testing"

func TestBenchRegistersTopLevelPath(t *testing.T) {
	resetRegistryForTest()
	defer resetRegistryForTest()

	Bench("solo", func(b *Bencher) {})
	entries := Entries()
	if len(entries) != 1 || entries[0].Path != "solo" {
		t.Fatalf("Entries() = %+v, want one entry with Path \"solo\"", entries)
	}
}

func TestGroupBenchBuildsDottedPath(t *testing.T) {
	resetRegistryForTest()
	defer resetRegistryForTest()

	grp := BenchGroup("mygroup")
	grp.Bench("child", func(b *Bencher) {})

	entries := Entries()
	if len(entries) != 1 || entries[0].Path != "mygroup::child" {
		t.Fatalf("Entries() = %+v, want one entry with Path \"mygroup::child\"", entries)
	}
}

func TestGroupDefaultsInheritIntoEntry(t *testing.T) {
	resetRegistryForTest()
	defer resetRegistryForTest()

	grp := BenchGroup("g", WithSampleCount(42))
	grp.Bench("b", func(b *Bencher) {})

	entries := Entries()
	if entries[0].Defaults.SampleCount != 42 {
		t.Fatalf("Defaults.SampleCount = %d, want 42 (inherited from group)", entries[0].Defaults.SampleCount)
	}
}

func TestEntryOptionsOverrideGroupDefaults(t *testing.T) {
	resetRegistryForTest()
	defer resetRegistryForTest()

	grp := BenchGroup("g", WithSampleCount(42))
	grp.Bench("b", func(b *Bencher) {}, WithSampleCount(99))

	entries := Entries()
	if entries[0].Defaults.SampleCount != 99 {
		t.Fatalf("Defaults.SampleCount = %d, want 99 (entry overrides group)", entries[0].Defaults.SampleCount)
	}
}

func TestArgsExpandsOneEntryPerValue(t *testing.T) {
	resetRegistryForTest()
	defer resetRegistryForTest()

	grp := BenchGroup("sizes")
	Args(grp, "n", []int{1, 2, 4}, func(b *Bencher, n int) {})

	entries := Entries()
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	want := map[string]bool{"sizes::n/1": true, "sizes::n/2": true, "sizes::n/4": true}
	for _, e := range entries {
		if !want[e.Path] {
			t.Errorf("unexpected entry path %q", e.Path)
		}
	}
}

func TestConstsExpandsOneEntryPerName(t *testing.T) {
	resetRegistryForTest()
	defer resetRegistryForTest()

	grp := BenchGroup("variants")
	Consts(grp, "impl", []string{"fast", "slow"}, func(name string) string { return name }, func(b *Bencher, v string) {})

	entries := Entries()
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	want := map[string]bool{"variants::impl/fast": true, "variants::impl/slow": true}
	for _, e := range entries {
		if !want[e.Path] {
			t.Errorf("unexpected entry path %q", e.Path)
		}
	}
}

func TestEntriesReturnsASnapshot(t *testing.T) {
	resetRegistryForTest()
	defer resetRegistryForTest()

	Bench("one", func(b *Bencher) {})
	snapshot := Entries()
	Bench("two", func(b *Bencher) {})

	if len(snapshot) != 1 {
		t.Fatalf("snapshot mutated after later registration: %+v", snapshot)
	}
}
