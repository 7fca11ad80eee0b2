/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

import (
	"fmt"
	"strconv"
)

// Common illegal/default values used by enums.
const (
	IllegalValue = -1
	IllegalName  = "unknown"
	IllegalDesc  = "unknown"
)

// BaseEnum represents a basic enum contract used by domain types.
type BaseEnum interface {
	IsValid() bool
	Number() int
	String() string
	Desc() string
	Name() string
}

// parseEnum resolves s against members by exact name or by the decimal
// number of a member. Undefined numbers are rejected.
func parseEnum[E BaseEnum](s string, members []E) (E, error) {
	for _, m := range members {
		if m.Name() == s {
			return m, nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil {
		for _, m := range members {
			if m.Number() == n {
				return m, nil
			}
		}
	}
	var zero E
	return zero, fmt.Errorf("requested value %q was not found", s)
}
