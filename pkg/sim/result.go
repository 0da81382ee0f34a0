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
	"slices"
)

// Result summarises a completed simulation run.  Times are in nanoseconds.
type Result struct {
	// Time at which the last simulated iteration completed.
	Latency float64
	// Time at which the first iteration completed.
	IterationLatency float64
	// Completed iterations per nanosecond.  Since every node executes once
	// per iteration, this is also the operation rate of each node.
	Throughput float64
	// Reciprocal of throughput.
	Interval float64
	// Number of iterations simulated.
	Iterations uint
	// Indicates whether steady state was reached and, if so, at which
	// iteration.
	Steady   bool
	SteadyAt uint
	// Completion time of each iteration.
	Completions []float64
	// Operations executed by each PE.
	Ops map[uint]uint
	// Time each PE spent unable to forward its results.
	Stalls map[uint]float64
}

// TotalOps returns the number of operations executed across all PEs.
func (p *Result) TotalOps() uint {
	var total uint
	//
	for _, n := range p.Ops {
		total += n
	}
	//
	return total
}

// PEs returns the identifiers of PEs which executed at least one operation,
// in ascending order.
func (p *Result) PEs() []uint {
	var pes []uint
	//
	for pe := range p.Ops {
		pes = append(pes, pe)
	}
	//
	slices.Sort(pes)
	//
	return pes
}

func (p *Result) String() string {
	return fmt.Sprintf("{latency=%.4fns, throughput=%.4f/ns, iterations=%d}", p.Latency, p.Throughput, p.Iterations)
}

// DeadlockError is returned when no further progress can be made before the
// required iterations have completed.
type DeadlockError struct {
	Time      float64
	Completed uint
	Expected  uint
}

func (p *DeadlockError) Error() string {
	return fmt.Sprintf("deadlock at %.4fns after %d of %d iterations", p.Time, p.Completed, p.Expected)
}

// Determine throughput from the iteration completion times.  Once steady, the
// transient before steady state is excluded.
func throughput(completions []float64, steady bool, steadyAt uint) float64 {
	var (
		k    = uint(len(completions))
		last = completions[k-1]
	)
	//
	switch {
	case k == 1:
		return 1 / last
	case steady && steadyAt < k-1:
		return float64(k-1-steadyAt) / (last - completions[steadyAt])
	case steady:
		return 1 / (completions[steadyAt] - completions[steadyAt-1])
	default:
		return float64(k-1) / (last - completions[0])
	}
}
