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

package report

import (
	"sort"
	"testing"
)

func TestNaturalLessOrdersEmbeddedDigitsNumerically(t *testing.T) {
	names := []string{"a10", "a2", "a1"}
	sort.Slice(names, func(i, j int) bool { return NaturalLess(names[i], names[j]) })

	want := []string{"a1", "a2", "a10"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("sorted = %v, want %v", names, want)
		}
	}
}

func TestNaturalLessPlainLexicographic(t *testing.T) {
	if !NaturalLess("abc", "abd") {
		t.Errorf("NaturalLess(abc, abd) = false, want true")
	}
	if NaturalLess("abd", "abc") {
		t.Errorf("NaturalLess(abd, abc) = true, want false")
	}
}

func TestNaturalLessPrefix(t *testing.T) {
	if !NaturalLess("abc", "abcd") {
		t.Errorf("NaturalLess(abc, abcd) = false, want true")
	}
}
