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
	"fmt"
	"math"
	"strings"
	"time"
)

// timeScale is one step of the adaptive duration ladder, supplementing
// §4.8's statistics with the original's picosecond-precision Display
// formatting — adapted here to time.Duration's nanosecond resolution,
// since no backend in this harness produces sub-nanosecond readings.
type timeScale struct {
	threshold time.Duration
	divisor   float64
	suffix    string
}

var timeScales = []timeScale{
	{0, 1, "ns"},
	{time.Microsecond, float64(time.Microsecond), "µs"},
	{time.Millisecond, float64(time.Millisecond), "ms"},
	{time.Second, float64(time.Second), "s"},
	{time.Minute, float64(time.Minute), "m"},
	{time.Hour, float64(time.Hour), "h"},
}

// FormatDuration renders d with sigFigs significant figures, picking the
// coarsest unit such that the integer part has at least one digit,
// mirroring fine_duration.rs's adaptive Display impl.
func FormatDuration(d time.Duration, sigFigs int) string {
	if d < 0 {
		d = 0
	}
	if sigFigs <= 0 {
		sigFigs = 4
	}

	scale := timeScales[0]
	for _, s := range timeScales {
		if d >= s.threshold {
			scale = s
		}
	}

	val := float64(d) / scale.divisor
	return trimSigFigs(val, sigFigs) + scale.suffix
}

// trimSigFigs formats val with sigFigs total significant digits,
// trimming trailing fractional zeros, the same shape as the original's
// manual string-truncation approach (adapted to Go's strconv rounding
// instead of manual byte slicing).
func trimSigFigs(val float64, sigFigs int) string {
	if val == 0 {
		return "0"
	}
	intDigits := 1
	if val >= 1 {
		intDigits = int(math.Log10(val)) + 1
	}
	fractDigits := sigFigs - intDigits
	if fractDigits < 0 {
		fractDigits = 0
	}

	s := fmt.Sprintf("%.*f", fractDigits, val)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	return s
}

// BytesFormat selects the unit family for formatting a Bytes-counter
// throughput value, per original_source/src/counter/mod.rs's
// BytesFormat enum.
type BytesFormat int

const (
	// BytesBinary uses 1024-based KiB/MiB/GiB units (the default).
	BytesBinary BytesFormat = iota
	// BytesDecimal uses 1000-based KB/MB/GB units.
	BytesDecimal
)

// ParseBytesFormat parses the --bytes-format flag/DIVAN_BYTES_FORMAT
// value; unrecognized input defaults to BytesBinary.
func ParseBytesFormat(s string) BytesFormat {
	switch strings.ToLower(s) {
	case "decimal":
		return BytesDecimal
	default:
		return BytesBinary
	}
}

var binaryUnits = []string{"B", "KiB", "MiB", "GiB", "TiB"}
var decimalUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatBytes renders a bytes-per-second throughput value using the
// given unit family, with 3 significant figures.
func FormatBytes(perSec float64, format BytesFormat) string {
	base := 1024.0
	units := binaryUnits
	if format == BytesDecimal {
		base = 1000.0
		units = decimalUnits
	}

	v := perSec
	idx := 0
	for v >= base && idx < len(units)-1 {
		v /= base
		idx++
	}
	return trimSigFigs(v, 3) + " " + units[idx] + "/s"
}
