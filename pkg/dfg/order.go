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
package dfg

import (
	"slices"

	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/util/collection/bit"
	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/util/collection/set"
	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/util/collection/stack"
)

// TopologicalOrder returns every node such that each producer appears before
// its consumers (ignoring loop-carried edges).  Amongst nodes which are ready
// at the same time, the one with the lowest identifier comes first.
func (g *Graph) TopologicalOrder() []NodeId {
	return slices.Clone(g.order)
}

// Kahn's algorithm over forward edges.
func (g *Graph) topologicalSort() ([]NodeId, error) {
	var (
		order   = make([]NodeId, 0, len(g.nodes))
		pending = make([]uint, len(g.nodes))
		ready   = set.NewSortedSet[NodeId]()
	)
	// Count forward inputs
	for i, n := range g.nodes {
		for _, e := range g.inputs[i] {
			if !e.Carried {
				pending[i]++
			}
		}
		//
		if pending[i] == 0 {
			ready.Insert(n.Id)
		}
	}
	//
	for !ready.IsEmpty() {
		id := ready.PopMin()
		order = append(order, id)
		//
		for _, e := range g.outputs[g.index[id]] {
			if e.Carried {
				continue
			}
			//
			dst := g.index[e.Dst]
			//
			if pending[dst]--; pending[dst] == 0 {
				ready.Insert(e.Dst)
			}
		}
	}
	// Any node left with pending inputs sits on (or behind) a cycle.
	if len(order) != len(g.nodes) {
		for i, n := range g.nodes {
			if pending[i] != 0 {
				return nil, &GraphError{n.Id, "cycle without loop-carried edge"}
			}
		}
	}
	//
	return order, nil
}

// CriticalCycle returns the identifiers (ascending) of every node lying on a
// recurrence, that is a cycle closed by a loop-carried edge.  For a carried
// edge u ~> v, these are the nodes reachable from v which also reach u along
// forward edges.  A carried edge whose consumer never reaches its producer
// closes no cycle and contributes nothing.
func (g *Graph) CriticalCycle() []NodeId {
	var critical = set.NewSortedSet[NodeId]()
	//
	for _, e := range g.LoopCarried() {
		var (
			cycle = g.reachable(e.Dst, true)
			to    = g.reachable(e.Src, false)
		)
		//
		if !cycle.Contains(g.index[e.Src]) {
			continue
		}
		//
		cycle.Intersect(to)
		//
		for i, n := range g.nodes {
			if cycle.Contains(uint(i)) {
				critical.Insert(n.Id)
			}
		}
	}
	//
	return critical.ToArray()
}

// Determine nodes reachable from (forwards) or reaching (backwards) a given
// node along forward edges, including the node itself.  The result holds node
// indices.
func (g *Graph) reachable(id NodeId, forwards bool) *bit.Set {
	var (
		marked   = bit.NewSet(uint(len(g.nodes)))
		worklist = stack.NewStack[uint]()
	)
	//
	marked.Insert(g.index[id])
	worklist.Push(g.index[id])
	//
	for !worklist.IsEmpty() {
		var (
			next  = worklist.Pop()
			edges = g.inputs[next]
		)
		//
		if forwards {
			edges = g.outputs[next]
		}
		//
		for _, e := range edges {
			if e.Carried {
				continue
			}
			//
			other := g.index[e.Src]
			if forwards {
				other = g.index[e.Dst]
			}
			//
			if marked.Insert(other) {
				worklist.Push(other)
			}
		}
	}
	//
	return marked
}

// LongestPath returns the heaviest path through the acyclic part of the graph,
// where the weight of a path is the sum of its node weights.  Ties are broken
// in favour of lower node identifiers, so the result is deterministic.  The
// path is returned from producer to consumer.
func (g *Graph) LongestPath(weight func(NodeId) float64) []NodeId {
	if len(g.nodes) == 0 {
		return nil
	}
	//
	var (
		dist = make([]float64, len(g.nodes))
		prev = make([]int, len(g.nodes))
		end  = -1
	)
	//
	for _, id := range g.order {
		var (
			i    = g.index[id]
			best = -1
		)
		//
		for _, e := range g.inputs[i] {
			if e.Carried {
				continue
			}
			//
			p := int(g.index[e.Src])
			if best < 0 || dist[p] > dist[best] || (dist[p] == dist[best] && p < best) {
				best = p
			}
		}
		//
		prev[i] = best
		dist[i] = weight(id)
		//
		if best >= 0 {
			dist[i] += dist[best]
		}
		//
		if end < 0 || dist[i] > dist[end] || (dist[i] == dist[end] && int(i) < end) {
			end = int(i)
		}
	}
	// Walk back from the heaviest end point
	var path []NodeId
	//
	for i := end; i >= 0; i = prev[i] {
		path = append(path, g.nodes[i].Id)
	}
	//
	slices.Reverse(path)
	//
	return path
}
