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
	"encoding/json"
	"fmt"
)

type jsonNode struct {
	Id    NodeId `json:"id"`
	Op    Op     `json:"op"`
	Label string `json:"label,omitempty"`
}

type jsonEdge struct {
	Src     NodeId `json:"src"`
	Dst     NodeId `json:"dst"`
	Carried bool   `json:"carried,omitempty"`
}

type jsonGraph struct {
	Nodes []jsonNode `json:"nodes"`
	Edges []jsonEdge `json:"edges"`
}

// ReadJSON parses a graph from JSON of the form
//
//	{ "nodes": [ {"id": 0, "op": "mul"}, ... ], "edges": [ {"src": 0, "dst": 1, "carried": false}, ... ] }
func ReadJSON(bytes []byte) (*Graph, error) {
	var (
		raw   jsonGraph
		nodes []Node
		edges []Edge
	)
	//
	if err := json.Unmarshal(bytes, &raw); err != nil {
		return nil, fmt.Errorf("invalid dfg: %w", err)
	}
	//
	for _, n := range raw.Nodes {
		nodes = append(nodes, Node(n))
	}
	//
	for _, e := range raw.Edges {
		edges = append(edges, Edge(e))
	}
	//
	return Build(nodes, edges)
}

// MarshalJSON writes a graph in the layout accepted by ReadJSON.
func (g *Graph) MarshalJSON() ([]byte, error) {
	var raw = jsonGraph{make([]jsonNode, len(g.nodes)), make([]jsonEdge, len(g.edges))}
	//
	for i, n := range g.nodes {
		raw.Nodes[i] = jsonNode(n)
	}
	//
	for i, e := range g.edges {
		raw.Edges[i] = jsonEdge(e)
	}
	//
	return json.Marshal(raw)
}
