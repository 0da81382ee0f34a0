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
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Power_00(t *testing.T) {
	items := Batch(Power(2, []string{"A", "B"}), 10)
	assert.Equal(t, [][]string{{"A", "A"}, {"B", "A"}, {"A", "B"}, {"B", "B"}}, items)
}

func Test_Power_01(t *testing.T) {
	iter := Power(3, []uint{0, 1, 2})
	assert.Equal(t, uint(27), iter.Count())
	// Wave of ten
	batch := Batch(iter, 10)
	assert.Len(t, batch, 10)
	assert.Equal(t, uint(17), iter.Count())
	assert.Equal(t, []uint{0, 0, 1}, batch[9])
	//
	rest := Batch(iter, 20)
	assert.Len(t, rest, 17)
	assert.Equal(t, []uint{1, 0, 1}, rest[0])
	assert.Equal(t, []uint{2, 2, 2}, rest[16])
	assert.False(t, iter.HasNext())
	assert.Empty(t, Batch(iter, 10))
}

func Test_Power_02(t *testing.T) {
	// Empty array has exactly one enumeration
	assert.Equal(t, [][]int{{}}, Batch(Power(0, []int{1, 2, 3}), 10))
	//
	n, ok := PowerSize(40, 3)
	assert.True(t, ok)
	assert.Equal(t, uint64(12157665459056928801), n)
	//
	_, ok = PowerSize(41, 3)
	assert.False(t, ok)
}
