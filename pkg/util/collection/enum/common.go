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

// Enumerator abstracts the process of iterating over a sequence of elements.
type Enumerator[T any] interface {
	// Check whether or not there are any items remaining to visit.
	HasNext() bool

	// Get the next item, and advance the enumerator.
	Next() T

	// Count the number of items left.
	Count() uint
}

// Batch removes up to n items from the front of an enumerator.  This is
// useful for dispatching work in waves.
func Batch[T any](iter Enumerator[T], n uint) []T {
	var items []T
	//
	for uint(len(items)) < n && iter.HasNext() {
		items = append(items, iter.Next())
	}
	//
	return items
}
