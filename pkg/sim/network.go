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
	"slices"

	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/array"
	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/dfg"
	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/vf"
)

// Stage is a unit of pipelined work in a mapped DFG: either a DFG node
// executing on its PE, or one hop of a DFG edge through a routing PE.
// Identifiers are assigned in topological order.
type Stage struct {
	Id uint
	// PE on which this stage executes
	PE uint
	// Hardware class of that PE
	Class vf.Class
	// Node executed (operator stages only)
	Node dfg.NodeId
	// Edge being routed (hop stages only)
	Edge dfg.Edge
	// Indicates a routing hop, rather than an operator
	Hop bool
}

// Channel carries tokens from one stage to another.  Forward channels are
// bounded FIFO queues.  Carried channels hold one slot per iteration, and the
// token written by iteration n is read by iteration n+1.
type Channel struct {
	Src     uint
	Dst     uint
	Carried bool
}

// Network is the immutable stage graph of a DFG mapped onto an array.  It can
// be shared between any number of concurrent simulations.
type Network struct {
	stages   []Stage
	channels []Channel
	// Input and output channels of each stage
	inputs, outputs [][]uint
	// Operator stage of each DFG node
	nodeStage map[dfg.NodeId]uint
	// Number of DFG nodes
	nodes uint
}

// Compile constructs the stage graph for a given DFG and configuration.  The
// configuration must have been built for this DFG.
func Compile(g *dfg.Graph, config *array.Config) *Network {
	var n = &Network{nodeStage: make(map[dfg.NodeId]uint), nodes: g.Len()}
	// Allocate stages in topological order, with the hops of each edge placed
	// immediately after its producer.
	for _, id := range g.TopologicalOrder() {
		pe, _ := config.PEOf(id)
		n.nodeStage[id] = n.addStage(Stage{PE: pe, Class: config.Class(pe), Node: id})
		//
		for _, e := range g.OutEdges(id) {
			for _, hop := range config.Hops(e) {
				n.addStage(Stage{PE: hop, Class: config.Class(hop), Edge: e, Hop: true})
			}
		}
	}
	// Connect stages along each edge
	n.inputs = make([][]uint, len(n.stages))
	n.outputs = make([][]uint, len(n.stages))
	//
	for _, id := range g.TopologicalOrder() {
		for _, e := range g.OutEdges(id) {
			var (
				src  = n.nodeStage[e.Src]
				hops = n.hopStages(src, e)
			)
			//
			for _, hop := range hops {
				n.connect(src, hop, false)
				src = hop
			}
			//
			n.connect(src, n.nodeStage[e.Dst], e.Carried)
		}
	}
	//
	return n
}

func (n *Network) addStage(s Stage) uint {
	s.Id = uint(len(n.stages))
	n.stages = append(n.stages, s)
	//
	return s.Id
}

// Hop stages of an edge follow its producer's stage, grouped by edge.
func (n *Network) hopStages(producer uint, e dfg.Edge) []uint {
	var hops []uint
	//
	for i := producer + 1; i < uint(len(n.stages)) && n.stages[i].Hop; i++ {
		if n.stages[i].Edge == e {
			hops = append(hops, i)
		}
	}
	//
	return hops
}

func (n *Network) connect(src, dst uint, carried bool) {
	var id = uint(len(n.channels))
	//
	n.channels = append(n.channels, Channel{src, dst, carried})
	n.outputs[src] = append(n.outputs[src], id)
	n.inputs[dst] = append(n.inputs[dst], id)
}

// Stages returns every stage in topological order.
func (n *Network) Stages() []Stage {
	return slices.Clone(n.stages)
}

// Channels returns every channel.
func (n *Network) Channels() []Channel {
	return slices.Clone(n.channels)
}

// NodeStage returns the stage executing a given DFG node.
func (n *Network) NodeStage(node dfg.NodeId) (uint, bool) {
	s, ok := n.nodeStage[node]
	return s, ok
}

// Nodes returns the number of DFG nodes in this network.
func (n *Network) Nodes() uint {
	return n.nodes
}

// Determine whether a stage has no forward inputs, in which case it issues new
// iterations of its own accord.
func (n *Network) isSource(stage uint) bool {
	for _, c := range n.inputs[stage] {
		if !n.channels[c].Carried {
			return false
		}
	}
	//
	return true
}
