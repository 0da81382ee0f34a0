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
	"context"
	"fmt"

	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/util"
	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/vf"
)

// Outcome of evaluating one candidate within a batch.
type evaluation struct {
	// Position of the candidate within its batch
	index int
	point Point
	err   error
}

// Evaluate a batch of candidates concurrently, returning their outcomes in the
// order given.  Callers limit the batch size to the permitted concurrency.
func evaluateBatch(ctx context.Context, p *Problem, batch []vf.Assignment, opts Options) []evaluation {
	var (
		stats = util.NewPerfStats()
		// Construct a communication channel for outcomes.
		ch       = make(chan evaluation, len(batch))
		outcomes = make([]evaluation, len(batch))
	)
	// Dispatch each candidate in the batch
	for i, ith := range batch {
		go func(index int, modes vf.Assignment) {
			point, err := p.Evaluate(ctx, modes, opts)
			// Send outcome back
			ch <- evaluation{index, point, err}
		}(i, ith)
	}
	// Collect all the results
	for i := 0; i < len(batch); i++ {
		ev := <-ch
		outcomes[ev.index] = ev
	}
	// Log stats about this batch
	stats.Log(fmt.Sprintf("Evaluating %d candidates", len(batch)))
	//
	return outcomes
}

// Split a list of candidates into waves of at most n candidates.
func waves[T any](candidates []T, n uint) [][]T {
	var batches [][]T
	//
	for len(candidates) > 0 {
		m := min(uint(len(candidates)), n)
		batches = append(batches, candidates[:m])
		candidates = candidates[m:]
	}
	//
	return batches
}
