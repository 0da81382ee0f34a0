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
package array

import (
	"slices"

	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/dfg"
)

// Route returns the canonical routing path of a DFG edge, starting at the
// producer's PE and ending at the consumer's PE.  Every PE strictly between
// the two is routing-only.  Returns nil for an edge not in the mapped DFG.
func (c *Config) Route(e dfg.Edge) []uint {
	return slices.Clone(c.routes[e])
}

// Hops returns the routing-only PEs a DFG edge passes through.
func (c *Config) Hops(e dfg.Edge) []uint {
	var route = c.routes[e]
	//
	if len(route) <= 2 {
		return nil
	}
	//
	return slices.Clone(route[1 : len(route)-1])
}

// Breadth-first search from one PE to another, passing only through routing
// PEs.  Since neighbours are visited in ascending order, the first path found
// is the shortest and, amongst those, the lexicographically least.
func (c *Config) findRoute(from, to uint) []uint {
	if from == to {
		return []uint{from}
	}
	//
	var (
		parent   = map[uint]uint{from: from}
		worklist = []uint{from}
	)
	//
	for len(worklist) > 0 {
		next := worklist[0]
		worklist = worklist[1:]
		//
		for _, dst := range c.pes[c.index[next]].Dst {
			if _, seen := parent[dst]; seen {
				continue
			}
			//
			parent[dst] = next
			//
			if dst == to {
				return unwind(parent, from, to)
			} else if c.pes[c.index[dst]].Routing {
				worklist = append(worklist, dst)
			}
		}
	}
	//
	return nil
}

func unwind(parent map[uint]uint, from, to uint) []uint {
	var path = []uint{to}
	//
	for to != from {
		to = parent[to]
		path = append(path, to)
	}
	//
	slices.Reverse(path)
	//
	return path
}
