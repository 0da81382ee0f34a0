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
package vf

import (
	"slices"
	"strings"
)

// Assignment maps every PE (by identifier) to exactly one mode.  Assignments
// are treated as values: operations which change a mode return a fresh
// assignment, leaving the original untouched, so they can be shared freely
// between concurrent evaluations.
type Assignment struct {
	modes map[uint]Mode
}

// Uniform constructs an assignment giving every PE in the list the same mode.
func Uniform(pes []uint, mode Mode) Assignment {
	modes := make(map[uint]Mode, len(pes))
	//
	for _, pe := range pes {
		modes[pe] = mode
	}
	//
	return Assignment{modes}
}

// FromMap constructs an assignment from an explicit map, which is copied.
func FromMap(modes map[uint]Mode) Assignment {
	nmodes := make(map[uint]Mode, len(modes))
	//
	for pe, m := range modes {
		nmodes[pe] = m
	}
	//
	return Assignment{nmodes}
}

// Mode returns the mode of a given PE, and whether that PE is assigned.
func (p Assignment) Mode(pe uint) (Mode, bool) {
	m, ok := p.modes[pe]
	return m, ok
}

// With returns a copy of this assignment where the given PE has the given
// mode.
func (p Assignment) With(pe uint, mode Mode) Assignment {
	n := FromMap(p.modes)
	n.modes[pe] = mode
	//
	return n
}

// Len returns the number of assigned PEs.
func (p Assignment) Len() uint {
	return uint(len(p.modes))
}

// PEs returns the assigned PE identifiers in ascending order.
func (p Assignment) PEs() []uint {
	pes := make([]uint, 0, len(p.modes))
	//
	for pe := range p.modes {
		pes = append(pes, pe)
	}
	//
	slices.Sort(pes)
	//
	return pes
}

// Count returns the number of PEs assigned a given mode.
func (p Assignment) Count(mode Mode) uint {
	count := uint(0)
	//
	for _, m := range p.modes {
		if m == mode {
			count++
		}
	}
	//
	return count
}

// Equal checks whether two assignments assign the same modes to the same PEs.
func (p Assignment) Equal(o Assignment) bool {
	if len(p.modes) != len(o.modes) {
		return false
	}
	//
	for pe, m := range p.modes {
		if n, ok := o.modes[pe]; !ok || n != m {
			return false
		}
	}
	//
	return true
}

// Label returns a stable, compact description of the modes of the given PEs
// (in the order given), such as "n.s.r".
func (p Assignment) Label(pes []uint) string {
	var builder strings.Builder
	//
	for i, pe := range pes {
		if i != 0 {
			builder.WriteString(".")
		}
		//
		if m, ok := p.modes[pe]; ok {
			builder.WriteString(m.Short())
		} else {
			builder.WriteString("?")
		}
	}
	//
	return builder.String()
}

// Compare orders assignments by identifier.  The identifier of an assignment is
// its position when enumerating all assignments over the same PEs with the
// lowest PE varying fastest, as the exhaustive search does.  Hence, the highest
// PE is most significant.  Unassigned PEs order before any mode.
func (p Assignment) Compare(o Assignment) int {
	pes := p.PEs()
	//
	for _, pe := range o.PEs() {
		if _, ok := p.modes[pe]; !ok {
			pes = append(pes, pe)
		}
	}
	//
	slices.Sort(pes)
	//
	for i := len(pes) - 1; i >= 0; i-- {
		m, mok := p.modes[pes[i]]
		n, nok := o.modes[pes[i]]
		//
		switch {
		case !mok && nok:
			return -1
		case mok && !nok:
			return 1
		case m < n:
			return -1
		case m > n:
			return 1
		}
	}
	//
	return 0
}

func (p Assignment) String() string {
	return p.Label(p.PEs())
}
