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

// Groups partitions the nodes of this graph so that each maximal chain of
// singly-chained nodes forms one group, and every other node forms a group on
// its own.  A node is singly-chained when it has exactly one input edge and one
// output edge (counting loop-carried edges).  Nodes within a group are given in
// dataflow order, and groups are ordered by their least identifier
// (since each is created on reaching its first node).
func (g *Graph) Groups() [][]NodeId {
	var (
		grouped = make([]bool, len(g.nodes))
		groups  [][]NodeId
	)
	//
	for i, n := range g.nodes {
		if grouped[i] {
			continue
		} else if !g.singlyChained(uint(i)) {
			grouped[i] = true
			groups = append(groups, []NodeId{n.Id})
			//
			continue
		}
		// Rewind to the head of the chain.  A ring of singly-chained nodes has
		// no head, so it starts from this node.
		var (
			head  = uint(i)
			group []NodeId
		)
		//
		for prev := g.index[g.inputs[head][0].Src]; g.singlyChained(prev); {
			if prev == uint(i) {
				head = prev
				break
			}
			//
			head = prev
			prev = g.index[g.inputs[head][0].Src]
		}
		// Walk forwards to its tail
		for next := head; g.singlyChained(next) && !grouped[next]; {
			grouped[next] = true
			group = append(group, g.nodes[next].Id)
			next = g.index[g.outputs[next][0].Dst]
		}
		//
		groups = append(groups, group)
	}
	//
	return groups
}

func (g *Graph) singlyChained(index uint) bool {
	return len(g.inputs[index]) == 1 && len(g.outputs[index]) == 1
}
