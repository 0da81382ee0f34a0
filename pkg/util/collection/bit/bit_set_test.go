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
package bit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_BitSet_00(t *testing.T) {
	s := NewSet(10)
	//
	assert.True(t, s.Insert(3))
	assert.False(t, s.Insert(3))
	// Grows beyond initial size
	assert.True(t, s.Insert(130))
	assert.True(t, s.Contains(130))
	assert.False(t, s.Contains(129))
	assert.False(t, s.Contains(1000))
	assert.True(t, s.Contains(3))
}

func Test_BitSet_01(t *testing.T) {
	var (
		a = NewSet(0)
		b = NewSet(0)
	)
	//
	for _, v := range []uint{1, 2, 70, 200} {
		a.Insert(v)
	}
	//
	for _, v := range []uint{2, 70, 71} {
		b.Insert(v)
	}
	//
	a.Intersect(b)
	assert.False(t, a.Contains(1))
	assert.True(t, a.Contains(2))
	assert.True(t, a.Contains(70))
	assert.False(t, a.Contains(200))
}
