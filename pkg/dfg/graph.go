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
	"cmp"
	"fmt"
	"slices"
)

// NodeId uniquely identifies a node within a dataflow graph.
type NodeId = uint

// Node is a single operation in a dataflow graph.
type Node struct {
	Id NodeId
	Op Op
	// Optional human readable label (e.g. the original operator name).
	Label string
}

// Edge is a directed dependency from a producer node to a consumer node.  A
// loop-carried edge feeds the value produced in iteration n to the consumer in
// iteration n+1.
type Edge struct {
	Src     NodeId
	Dst     NodeId
	Carried bool
}

func (e Edge) String() string {
	if e.Carried {
		return fmt.Sprintf("%d~>%d", e.Src, e.Dst)
	}
	//
	return fmt.Sprintf("%d->%d", e.Src, e.Dst)
}

// GraphError reports a malformed dataflow graph, identifying the offending
// node.
type GraphError struct {
	Node NodeId
	Msg  string
}

func (p *GraphError) Error() string {
	return fmt.Sprintf("malformed dfg at node %d: %s", p.Node, p.Msg)
}

// Graph is an immutable dataflow graph.  Apart from loop-carried edges, the
// graph is acyclic.
type Graph struct {
	// Nodes in ascending order of identifier
	nodes []Node
	// Maps identifiers to indices in nodes
	index map[NodeId]uint
	// Edges in the order they were given
	edges []Edge
	// Input / output edges of each node (by index), in the order given
	inputs, outputs [][]Edge
	// Cached topological order
	order []NodeId
}

// Build constructs a dataflow graph from a set of nodes and edges.  This fails
// if an edge references an unknown node, if a node or edge is duplicated, or
// if the graph (excluding loop-carried edges) contains a cycle.
func Build(nodes []Node, edges []Edge) (*Graph, error) {
	var g = &Graph{
		nodes: slices.Clone(nodes),
		index: make(map[NodeId]uint, len(nodes)),
		edges: slices.Clone(edges),
	}
	//
	slices.SortFunc(g.nodes, func(l, r Node) int { return cmp.Compare(l.Id, r.Id) })
	//
	for i, n := range g.nodes {
		if _, ok := g.index[n.Id]; ok {
			return nil, &GraphError{n.Id, "duplicate node"}
		}
		//
		g.index[n.Id] = uint(i)
	}
	//
	g.inputs = make([][]Edge, len(g.nodes))
	g.outputs = make([][]Edge, len(g.nodes))
	seen := make(map[Edge]bool, len(edges))
	//
	for _, e := range edges {
		src, ok := g.index[e.Src]
		if !ok {
			return nil, &GraphError{e.Src, fmt.Sprintf("edge %s references unknown producer", e)}
		}
		//
		dst, ok := g.index[e.Dst]
		if !ok {
			return nil, &GraphError{e.Dst, fmt.Sprintf("edge %s references unknown consumer", e)}
		} else if seen[e] {
			return nil, &GraphError{e.Dst, fmt.Sprintf("duplicate edge %s", e)}
		}
		//
		seen[e] = true
		g.outputs[src] = append(g.outputs[src], e)
		g.inputs[dst] = append(g.inputs[dst], e)
	}
	// Order nodes, which also checks for cycles.
	order, err := g.topologicalSort()
	if err != nil {
		return nil, err
	}
	//
	g.order = order
	//
	return g, nil
}

// Len returns the number of nodes in this graph.
func (g *Graph) Len() uint {
	return uint(len(g.nodes))
}

// Nodes returns every node in ascending order of identifier.
func (g *Graph) Nodes() []Node {
	return slices.Clone(g.nodes)
}

// Edges returns every edge, in the order given at construction.
func (g *Graph) Edges() []Edge {
	return slices.Clone(g.edges)
}

// Has checks whether a node with the given identifier exists.
func (g *Graph) Has(id NodeId) bool {
	_, ok := g.index[id]
	return ok
}

// Node returns the node with the given identifier.  This panics if no such
// node exists.
func (g *Graph) Node(id NodeId) Node {
	return g.nodes[g.indexOf(id)]
}

// InEdges returns the (ordered) input edges of a node, including loop-carried
// edges.
func (g *Graph) InEdges(id NodeId) []Edge {
	return slices.Clone(g.inputs[g.indexOf(id)])
}

// OutEdges returns the (ordered) output edges of a node, including
// loop-carried edges.
func (g *Graph) OutEdges(id NodeId) []Edge {
	return slices.Clone(g.outputs[g.indexOf(id)])
}

// Predecessors returns the producers of a node's inputs, in input order.
func (g *Graph) Predecessors(id NodeId) []NodeId {
	var preds []NodeId
	//
	for _, e := range g.inputs[g.indexOf(id)] {
		preds = append(preds, e.Src)
	}
	//
	return preds
}

// Successors returns the consumers of a node's output, in output order.
func (g *Graph) Successors(id NodeId) []NodeId {
	var succs []NodeId
	//
	for _, e := range g.outputs[g.indexOf(id)] {
		succs = append(succs, e.Dst)
	}
	//
	return succs
}

// LoopCarried returns the loop-carried edges of this graph.
func (g *Graph) LoopCarried() []Edge {
	var carried []Edge
	//
	for _, e := range g.edges {
		if e.Carried {
			carried = append(carried, e)
		}
	}
	//
	return carried
}

// LiveIns returns the nodes which have no inputs at all.  These read their
// operands from memory.
func (g *Graph) LiveIns() []NodeId {
	var ids []NodeId
	//
	for i, n := range g.nodes {
		if len(g.inputs[i]) == 0 {
			ids = append(ids, n.Id)
		}
	}
	//
	return ids
}

// LiveOuts returns the nodes which have no outputs at all.  These write their
// results to memory.
func (g *Graph) LiveOuts() []NodeId {
	var ids []NodeId
	//
	for i, n := range g.nodes {
		if len(g.outputs[i]) == 0 {
			ids = append(ids, n.Id)
		}
	}
	//
	return ids
}

func (g *Graph) indexOf(id NodeId) uint {
	index, ok := g.index[id]
	//
	if !ok {
		panic(fmt.Sprintf("unknown dfg node %d", id))
	}
	//
	return index
}
