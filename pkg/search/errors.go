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
package search

import (
	"fmt"
	"time"
)

// CapacityError indicates an exhaustive search was requested over a space
// larger than the configured budget.  The caller should narrow the search, for
// example by offering fewer modes.
type CapacityError struct {
	// Number of PEs being enumerated
	PEs uint
	// Number of modes per PE
	Modes uint
	// Size of the space, or zero if it does not fit in 64 bits.
	Size uint64
	// Largest permitted size
	Budget uint64
}

func (p *CapacityError) Error() string {
	if p.Size == 0 {
		return fmt.Sprintf("search space of %d^%d assignments overflows (budget %d)", p.Modes, p.PEs, p.Budget)
	}
	//
	return fmt.Sprintf("search space of %d^%d = %d assignments exceeds budget %d", p.Modes, p.PEs, p.Size,
		p.Budget)
}

// DivergenceError indicates the optimiser could not improve on its seed, which
// usually signals a degenerate mapping (e.g. no PEs on the critical cycle).
type DivergenceError struct {
	Msg string
}

func (p *DivergenceError) Error() string {
	return p.Msg
}

// TimeoutError indicates the evaluation of a single assignment did not finish
// within its time budget.
type TimeoutError struct {
	// Label of the assignment being evaluated
	Label   string
	Timeout time.Duration
}

func (p *TimeoutError) Error() string {
	return fmt.Sprintf("evaluation of %s exceeded %s", p.Label, p.Timeout)
}
