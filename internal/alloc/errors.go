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

import "errors"

// ErrConflict is returned by Start when a sample is already being
// profiled. Surfaced by the driver as AllocatorConflict (§7): the sample
// that hit it carries no allocation tally and the run continues;
// allocation columns are not disabled for later samples or entries.
var ErrConflict = errors.New("alloc: profiler already active for another sample")
