// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package math

import "math"

// CheckedPowUint64 raises a given base to a given power, returning false if
// the result does not fit in 64 bits.
func CheckedPowUint64(base uint64, exp uint64) (uint64, bool) {
	result := uint64(1)
	//
	for i := uint64(0); i < exp; i++ {
		if base != 0 && result > math.MaxUint64/base {
			return 0, false
		}
		//
		result *= base
	}
	//
	return result, true
}

// SaturatingPowUint64 raises a given base to a given power, returning
// math.MaxUint64 if the result does not fit in 64 bits.
func SaturatingPowUint64(base uint64, exp uint64) uint64 {
	if result, ok := CheckedPowUint64(base, exp); ok {
		return result
	}
	//
	return math.MaxUint64
}
