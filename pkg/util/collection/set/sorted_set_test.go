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
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_SortedSet_00(t *testing.T) {
	s := NewSortedSet[uint](5, 1, 3, 1)
	assert.Equal(t, []uint{1, 3, 5}, s.ToArray())
	assert.True(t, s.Contains(3))
	assert.False(t, s.Contains(2))
}

func Test_SortedSet_01(t *testing.T) {
	s := NewSortedSet[uint](4, 2, 9)
	assert.True(t, s.Remove(4))
	assert.False(t, s.Remove(4))
	assert.Equal(t, uint(2), s.PopMin())
	assert.Equal(t, uint(9), s.PopMin())
	assert.True(t, s.IsEmpty())
	assert.Panics(t, func() { s.PopMin() })
}
