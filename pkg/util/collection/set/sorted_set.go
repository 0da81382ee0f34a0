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
package set

import (
	"cmp"
	"sort"
)

// SortedSet is an array of unique sorted values (i.e. no duplicates).  Node
// and PE identifiers are held in these sets wherever iteration order matters,
// since ascending order is the deterministic tie-break throughout the model.
type SortedSet[T cmp.Ordered] []T

// NewSortedSet returns a sorted set containing the given elements.
func NewSortedSet[T cmp.Ordered](elements ...T) *SortedSet[T] {
	set := &SortedSet[T]{}
	//
	for _, e := range elements {
		set.Insert(e)
	}
	//
	return set
}

// Len returns the number of elements in this set.
func (p *SortedSet[T]) Len() uint {
	return uint(len(*p))
}

// IsEmpty checks whether this set has no elements.
func (p *SortedSet[T]) IsEmpty() bool {
	return len(*p) == 0
}

// Contains returns true if a given element is in the set.
func (p *SortedSet[T]) Contains(element T) bool {
	data := *p
	// Find index where element either does occur, or should occur.
	i := sort.Search(len(data), func(i int) bool {
		return element <= data[i]
	})
	// Check whether item existed or not.
	return i < len(data) && data[i] == element
}

// Insert an element into this sorted set.
func (p *SortedSet[T]) Insert(element T) {
	data := *p
	// Find index where element either does occur, or should occur.
	i := sort.Search(len(data), func(i int) bool {
		return element <= data[i]
	})
	// Check whether item existed or not.
	if i >= len(data) || data[i] != element {
		// No, item was not found
		ndata := make([]T, len(data)+1)
		copy(ndata, data[0:i])
		ndata[i] = element
		copy(ndata[i+1:], data[i:])
		*p = ndata
	}
}

// Remove an element from this sorted set, returning true if it was present.
func (p *SortedSet[T]) Remove(element T) bool {
	data := *p
	//
	i := sort.Search(len(data), func(i int) bool {
		return element <= data[i]
	})
	//
	if i >= len(data) || data[i] != element {
		return false
	}
	//
	ndata := make([]T, len(data)-1)
	copy(ndata, data[0:i])
	copy(ndata[i:], data[i+1:])
	*p = ndata
	//
	return true
}

// PopMin removes and returns the least element of this set.  This panics if
// the set is empty.
func (p *SortedSet[T]) PopMin() T {
	data := *p
	//
	if len(data) == 0 {
		panic("cannot pop from empty set")
	}
	//
	*p = data[1:]
	//
	return data[0]
}

// ToArray returns a copy of the elements of this set in ascending order.
func (p *SortedSet[T]) ToArray() []T {
	items := make([]T, len(*p))
	copy(items, *p)
	//
	return items
}
