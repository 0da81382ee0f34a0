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
	"fmt"
	"slices"
	"strings"
)

// Small hand-constructed graphs useful for experimentation.  In each, the
// final two nodes are the SRAM load feeding the graph and the SRAM store
// draining it.
var toys = map[string]func() *Graph{
	"toy1": Toy1,
	"toy2": Toy2,
	"toy3": Toy3,
	"toy4": Toy4,
}

// ToyNames returns the names of every toy graph, in ascending order.
func ToyNames() []string {
	var names []string
	//
	for name := range toys {
		names = append(names, name)
	}
	//
	slices.Sort(names)
	//
	return names
}

// Toy returns the toy graph of the given name.
func Toy(name string) (*Graph, error) {
	if fn, ok := toys[strings.ToLower(name)]; ok {
		return fn(), nil
	}
	//
	return nil, fmt.Errorf("unknown toy dfg \"%s\" (expected one of %s)", name, strings.Join(ToyNames(), ", "))
}

// Toy1 is a series-parallel graph of multiplies with no recurrence.
func Toy1() *Graph {
	return mustBuild(seriesParallel(Mul, Mul), forward(
		0, 1, 0, 3, 1, 2, 2, 6, 3, 4, 4, 5, 5, 6, 7, 0, 6, 8))
}

// Toy2 has the same shape as Toy1, but consists of copies around a single
// multiply.
func Toy2() *Graph {
	return mustBuild(seriesParallel(Copy, Mul), forward(
		0, 1, 0, 3, 1, 2, 2, 6, 3, 4, 4, 5, 5, 6, 7, 0, 6, 8))
}

// Toy3 is a graph of multiplies where every node sits on one recurrence.
func Toy3() *Graph {
	var edges = forward(0, 1, 0, 2, 1, 4, 2, 3, 3, 4, 4, 5, 5, 6, 7, 0, 6, 8)
	//
	edges = append(edges, Edge{6, 0, true})
	//
	return mustBuild(uniform(7, Mul), edges)
}

// Toy4 is a chain of multiplies where a short recurrence at the head feeds a
// long tail of other nodes.
func Toy4() *Graph {
	var edges = forward(0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6, 7, 7, 8, 8, 9, 10, 0, 9, 11)
	//
	edges = append(edges, Edge{3, 0, true})
	//
	return mustBuild(uniform(10, Mul), edges)
}

// Seven nodes, where node 1 has a different operator from the rest.
func seriesParallel(op Op, node1 Op) []Node {
	var nodes = uniform(7, op)
	//
	nodes[1].Op = node1
	nodes[6].Label = "N"
	//
	return nodes
}

// Construct n nodes with the same operator, followed by an SRAM load and
// store.
func uniform(n uint, op Op) []Node {
	var nodes = make([]Node, n+2)
	//
	for i := uint(0); i < n; i++ {
		nodes[i] = Node{i, op, ""}
	}
	//
	nodes[n] = Node{n, Load, "i_sram1"}
	nodes[n+1] = Node{n + 1, Store, "o_sram1"}
	//
	return nodes
}

// Construct forward edges from a flat list of (src,dst) pairs.
func forward(pairs ...NodeId) []Edge {
	var edges = make([]Edge, len(pairs)/2)
	//
	for i := range edges {
		edges[i] = Edge{pairs[2*i], pairs[2*i+1], false}
	}
	//
	return edges
}

func mustBuild(nodes []Node, edges []Edge) *Graph {
	g, err := Build(nodes, edges)
	if err != nil {
		panic(err)
	}
	//
	return g
}
