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
	"runtime"
	"strings"
	"time"

	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/power"
	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/sim"
)

// Target identifies what a search is optimising for.
type Target uint8

const (
	// Performance maximises throughput.
	Performance Target = iota
	// Energy minimises the energy-delay product.
	Energy
)

// ParseTarget converts a textual target into a Target.
func ParseTarget(s string) (Target, error) {
	switch strings.ToLower(s) {
	case "performance", "perf", "throughput":
		return Performance, nil
	case "energy", "edp", "eeff":
		return Energy, nil
	}
	//
	return Energy, fmt.Errorf("unknown optimisation target \"%s\"", s)
}

func (t Target) String() string {
	if t == Performance {
		return "performance"
	}
	//
	return "energy"
}

// Options configures both the exhaustive explorer and the heuristic optimiser.
type Options struct {
	// Options for simulating each candidate.
	Sim sim.Options
	// Options for the power model.
	Power power.Options
	// What to optimise for.
	Target Target
	// Greatest number of candidates evaluated at once.
	Concurrency uint
	// Wall-clock budget for evaluating a single candidate (zero for none).
	Timeout time.Duration
	// Largest number of assignments the explorer will enumerate.
	Budget uint64
	// Largest number of candidates evaluated during sprint propagation.
	MaxSteps uint
	// Relative change in a metric below which two candidates are considered
	// equivalent.
	Tolerance float64
}

// DefaultOptions returns the options used unless otherwise configured.  Every
// candidate is simulated for the same number of iterations, so that latency and
// energy are comparable across candidates.
func DefaultOptions() Options {
	simOpts := sim.DefaultOptions()
	simOpts.Window = simOpts.MaxIterations
	//
	return Options{
		Sim:         simOpts,
		Power:       power.DefaultOptions(),
		Target:      Energy,
		Concurrency: uint(runtime.NumCPU()),
		Timeout:     10 * time.Second,
		Budget:      1 << 16,
		MaxSteps:    1000,
		Tolerance:   1e-9,
	}
}

// Validate checks these options are usable.
func (p Options) Validate() error {
	switch {
	case p.Concurrency == 0:
		return fmt.Errorf("concurrency must be positive")
	case p.Tolerance < 0:
		return fmt.Errorf("invalid tolerance %g", p.Tolerance)
	}
	//
	return p.Sim.Validate()
}
