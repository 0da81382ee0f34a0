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
	"cmp"
	"context"
	"errors"
	"slices"

	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/array"
	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/dfg"
	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/power"
	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/sim"
	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/util/collection/set"
	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/vf"
)

// Problem bundles the inputs shared by every candidate of a search.  None of
// these are modified by a search, hence a problem can be shared between any
// number of concurrent evaluations.
type Problem struct {
	Graph  *dfg.Graph
	Config *array.Config
	Table  *vf.Table
	net    *sim.Network
}

// NewProblem constructs a problem for a DFG mapped by a given configuration.
func NewProblem(g *dfg.Graph, config *array.Config, table *vf.Table) *Problem {
	return &Problem{g, config, table, sim.Compile(g, config)}
}

// Network returns the compiled stage graph of this problem.
func (p *Problem) Network() *sim.Network {
	return p.net
}

// Nominal returns the assignment giving every PE nominal mode.
func (p *Problem) Nominal() vf.Assignment {
	return vf.Uniform(p.Config.Ids(), vf.Nominal)
}

// Point is an evaluated assignment.
type Point struct {
	Modes   vf.Assignment
	Result  *sim.Result
	Metrics power.Metrics
}

// Evaluate simulates a given assignment and determines its metrics.  This is
// the only means by which the explorer and optimiser evaluate candidates.  If
// the evaluation exceeds its time budget, a *TimeoutError is returned.
func (p *Problem) Evaluate(ctx context.Context, modes vf.Assignment, opts Options) (Point, error) {
	var point = Point{Modes: modes}
	//
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		//
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	//
	r, err := p.net.Simulate(ctx, p.Table, modes, opts.Sim)
	if errors.Is(err, context.DeadlineExceeded) {
		return point, &TimeoutError{modes.String(), opts.Timeout}
	} else if err != nil {
		return point, err
	}
	//
	point.Result = r
	point.Metrics, err = power.Evaluate(p.Config, p.Table, modes, r, p.Graph.Len(), opts.Power)
	//
	return point, err
}

// CriticalPEs returns (in ascending order) the PEs which bound the performance
// of this mapping.  These are the PEs executing nodes on a recurrence, along
// with any routing PEs carrying values between them.  When the graph has no
// recurrence, the PEs along its longest path are used instead.
func (p *Problem) CriticalPEs() []uint {
	var (
		nodes  = p.Graph.CriticalCycle()
		result = set.NewSortedSet[uint]()
	)
	//
	if len(nodes) == 0 {
		nodes = p.Graph.LongestPath(p.nominalPeriod)
	}
	//
	for _, id := range nodes {
		pe, _ := p.Config.PEOf(id)
		result.Insert(pe)
	}
	// Include hops between critical nodes
	for _, e := range p.Graph.Edges() {
		if slices.Contains(nodes, e.Src) && slices.Contains(nodes, e.Dst) {
			for _, hop := range p.Config.Hops(e) {
				result.Insert(hop)
			}
		}
	}
	//
	return result.ToArray()
}

// CriticalGroups partitions the critical PEs into groups whose modes are
// changed together.  PEs executing a chain of singly-chained nodes form one
// group, along with any routing PEs carrying values along that chain.  Every
// other critical PE forms a group on its own.  PEs within a group, and groups
// by their first PE, are in ascending order.
func (p *Problem) CriticalGroups() [][]uint {
	var (
		remaining = set.NewSortedSet(p.CriticalPEs()...)
		groups    [][]uint
	)
	//
	for _, nodes := range p.Graph.Groups() {
		var group = set.NewSortedSet[uint]()
		//
		for i, id := range nodes {
			if pe, _ := p.Config.PEOf(id); remaining.Contains(pe) {
				group.Insert(pe)
			}
			// Nodes within a chain have exactly one output
			if i+1 == len(nodes) {
				continue
			}
			//
			for _, hop := range p.Config.Hops(p.Graph.OutEdges(id)[0]) {
				if remaining.Contains(hop) {
					group.Insert(hop)
				}
			}
		}
		//
		for _, pe := range group.ToArray() {
			remaining.Remove(pe)
		}
		//
		if !group.IsEmpty() {
			groups = append(groups, group.ToArray())
		}
	}
	// Routing PEs between groups
	for _, pe := range remaining.ToArray() {
		groups = append(groups, []uint{pe})
	}
	//
	slices.SortFunc(groups, func(a, b []uint) int {
		return cmp.Compare(a[0], b[0])
	})
	//
	return groups
}

// Nominal period of the PE executing a given node.
func (p *Problem) nominalPeriod(id dfg.NodeId) float64 {
	pe, _ := p.Config.PEOf(id)
	period, _ := p.Table.Period(p.Config.Class(pe), vf.Nominal)
	//
	return period
}

// Number of stages executing on each PE.
func (p *Problem) stagesPerPE() map[uint]uint {
	var counts = make(map[uint]uint)
	//
	for _, st := range p.net.Stages() {
		counts[st.PE]++
	}
	//
	return counts
}
