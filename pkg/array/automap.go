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
	"fmt"

	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/dfg"
)

// AutoMap places each DFG node on its own PE, in ascending order of node
// identifier and row-major order across a grid of the given width.  Every DFG
// edge becomes a direct link, so no routing PEs are used.  PE i executes the
// i-th node.
func AutoMap(g *dfg.Graph, width uint) (*Config, error) {
	if width == 0 {
		return nil, fmt.Errorf("grid width must be positive")
	}
	//
	var (
		nodes  = g.Nodes()
		height = (uint(len(nodes)) + width - 1) / width
		peOf   = make(map[dfg.NodeId]uint, len(nodes))
		specs  = make([]PESpec, len(nodes))
	)
	//
	for i, n := range nodes {
		id := n.Id
		peOf[id] = uint(i)
		specs[i] = PESpec{Id: uint(i), X: uint(i) % width, Y: uint(i) / width, Op: n.Op.String(), Node: &id}
	}
	//
	for _, e := range g.Edges() {
		src := peOf[e.Src]
		specs[src].Dst = append(specs[src].Dst, peOf[e.Dst])
	}
	//
	return Build(width, max(height, 1), specs, g)
}
