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
package enum

import (
	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/util/math"
)

// PowerSize returns the number of arrays of size n over m elements, or false
// if this does not fit in 64 bits.
func PowerSize(n uint, m uint) (uint64, bool) {
	return math.CheckedPowUint64(uint64(m), uint64(n))
}

// Power returns an enumerator over all arrays of size n drawn from the given
// elements.  For example, if n==2 and elems holds A and B, then this yields
// [[A,A],[B,A],[A,B],[B,B]] (i.e. the first position varies fastest).  Callers
// should check PowerSize first, since the count saturates at 64 bits.
func Power[E any](n uint, elems []E) Enumerator[[]E] {
	var remaining = math.SaturatingPowUint64(uint64(len(elems)), uint64(n))
	//
	return &odometer[E]{make([]uint, n), remaining, elems}
}

// An odometer holds one digit per position, each indexing into the elements.
// Advancing increments the first digit and carries into the next.
type odometer[E any] struct {
	digits    []uint
	remaining uint64
	elements  []E
}

func (p *odometer[E]) HasNext() bool {
	return p.remaining > 0
}

func (p *odometer[E]) Count() uint {
	return uint(p.remaining)
}

func (p *odometer[E]) Next() []E {
	var item = make([]E, len(p.digits))
	//
	for i, d := range p.digits {
		item[i] = p.elements[d]
	}
	//
	p.remaining--
	// Carry
	for i := range p.digits {
		if p.digits[i]++; p.digits[i] < uint(len(p.elements)) {
			break
		}
		//
		p.digits[i] = 0
	}
	//
	return item
}
