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
package sim

import (
	"fmt"
	"math"
)

// Options configures a simulation run.
type Options struct {
	// Capacity of each forward input queue.
	QueueDepth uint
	// When true, a stage with several destinations pushes to each one as soon
	// as it has space.  Otherwise, it waits until every destination has space
	// and pushes to all of them at once.
	EagerFork bool
	// Least number of iterations simulated before steady state can be
	// declared.
	MinIterations uint
	// Greatest number of iterations simulated.
	MaxIterations uint
	// Number of further iterations simulated once steady state is reached.
	Window uint
	// Greatest change in the inter-iteration interval between consecutive
	// iterations for them to be considered steady.
	Epsilon float64
}

// DefaultOptions returns the options used unless otherwise configured.
func DefaultOptions() Options {
	return Options{
		QueueDepth:    2,
		EagerFork:     true,
		MinIterations: 3,
		MaxIterations: 50,
		Window:        10,
		Epsilon:       1e-9,
	}
}

// Iterations returns options which simulate exactly n iterations.
func (p Options) Iterations(n uint) Options {
	p.MinIterations = n
	p.MaxIterations = n
	//
	return p
}

// Validate checks these options are usable.
func (p Options) Validate() error {
	switch {
	case p.QueueDepth == 0:
		return fmt.Errorf("queue depth must be positive")
	case p.MaxIterations == 0:
		return fmt.Errorf("at least one iteration must be simulated")
	case p.MinIterations > p.MaxIterations:
		return fmt.Errorf("minimum iterations (%d) exceeds maximum (%d)", p.MinIterations, p.MaxIterations)
	case p.Epsilon < 0 || math.IsNaN(p.Epsilon):
		return fmt.Errorf("invalid steady state tolerance %g", p.Epsilon)
	}
	//
	return nil
}
