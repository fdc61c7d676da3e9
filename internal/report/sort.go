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
	"unicode"
)

// NaturalLess compares two names the way §4.8/P10 requires: embedded
// digit runs compare by numeric value, not lexicographically, so
// "a2" < "a10".
func NaturalLess(a, b string) bool {
	ra, rb := []rune(a), []rune(b)
	i, j := 0, 0
	for i < len(ra) && j < len(rb) {
		ca, cb := ra[i], rb[j]
		if unicode.IsDigit(ca) && unicode.IsDigit(cb) {
			ni, na := scanDigits(ra, i)
			nj, nb := scanDigits(rb, j)
			if na != nb {
				return na < nb
			}
			i, j = ni, nj
			continue
		}
		if ca != cb {
			return ca < cb
		}
		i++
		j++
	}
	return len(ra)-i < len(rb)-j
}

// scanDigits reads the maximal run of digits starting at i and returns
// the index just past it plus the numeric value of that run.
func scanDigits(r []rune, i int) (next int, value uint64) {
	for i < len(r) && unicode.IsDigit(r[i]) {
		value = value*10 + uint64(r[i]-'0')
		i++
	}
	return i, value
}
