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
	"encoding/json"
	"fmt"

	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/dfg"
	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/vf"
)

// Field added to each PE by WriteAugmented.
const dvfsField = "dvfs"

type jsonPE struct {
	Id   uint        `json:"id"`
	X    uint        `json:"x"`
	Y    uint        `json:"y"`
	Op   string      `json:"op"`
	Node *dfg.NodeId `json:"node,omitempty"`
	Src  []uint      `json:"src"`
	Dst  []uint      `json:"dst"`
	Dvfs *vf.Mode    `json:"dvfs,omitempty"`
}

type jsonConfig struct {
	Width  uint     `json:"width"`
	Height uint     `json:"height"`
	PEs    []jsonPE `json:"pes"`
}

// Read parses and validates a configuration of the form
//
//	{ "width": 4, "height": 4, "pes": [ {"id": 0, "x": 0, "y": 0, "op": "mul", "node": 3, "src": [], "dst": [1]}, ... ] }
//
// Any VF modes recorded in "dvfs" fields (e.g. by WriteAugmented) are
// returned as well.
func Read(bytes []byte, g *dfg.Graph) (*Config, vf.Assignment, error) {
	var (
		raw   jsonConfig
		specs []PESpec
		modes = make(map[uint]vf.Mode)
	)
	//
	if err := json.Unmarshal(bytes, &raw); err != nil {
		return nil, vf.Assignment{}, fmt.Errorf("invalid configuration: %w", err)
	}
	//
	for _, pe := range raw.PEs {
		specs = append(specs, PESpec{pe.Id, pe.X, pe.Y, pe.Op, pe.Node, pe.Src, pe.Dst})
		//
		if pe.Dvfs != nil {
			modes[pe.Id] = *pe.Dvfs
		}
	}
	//
	config, err := Build(raw.Width, raw.Height, specs, g)
	if err != nil {
		return nil, vf.Assignment{}, err
	}
	//
	return config, vf.FromMap(modes), nil
}

// Specs returns the description of every PE, from which an identical
// configuration can be rebuilt.
func (c *Config) Specs() []PESpec {
	var specs = make([]PESpec, len(c.pes))
	//
	for i, pe := range c.pes {
		specs[i] = PESpec{Id: pe.Id, X: pe.X, Y: pe.Y, Op: RouteOp, Src: pe.Src, Dst: pe.Dst}
		//
		if !pe.Routing {
			node := pe.Node
			specs[i].Op = pe.Op.String()
			specs[i].Node = &node
		}
	}
	//
	return specs
}

// MarshalJSON writes a configuration in the layout accepted by Read.
func (c *Config) MarshalJSON() ([]byte, error) {
	var raw = jsonConfig{c.width, c.height, nil}
	//
	for _, s := range c.Specs() {
		raw.PEs = append(raw.PEs, jsonPE{s.Id, s.X, s.Y, s.Op, s.Node, s.Src, s.Dst, nil})
	}
	//
	return json.Marshal(raw)
}

// WriteAugmented annotates every PE in a configuration with its VF mode, as a
// "dvfs" field.  All other fields (including unknown ones) are preserved.
func WriteAugmented(bytes []byte, modes vf.Assignment) ([]byte, error) {
	var (
		top map[string]json.RawMessage
		pes []map[string]json.RawMessage
	)
	//
	if err := json.Unmarshal(bytes, &top); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	} else if err := json.Unmarshal(top["pes"], &pes); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	//
	for _, pe := range pes {
		var id uint
		//
		if err := json.Unmarshal(pe["id"], &id); err != nil {
			return nil, fmt.Errorf("invalid pe identifier: %w", err)
		}
		//
		mode, ok := modes.Mode(id)
		if !ok {
			return nil, &ConfigError{int(id), "no vf mode assigned"}
		}
		//
		encoded, err := json.Marshal(mode)
		if err != nil {
			return nil, err
		}
		//
		pe[dvfsField] = encoded
	}
	//
	encoded, err := json.Marshal(pes)
	if err != nil {
		return nil, err
	}
	//
	top["pes"] = encoded
	//
	return json.MarshalIndent(top, "", "  ")
}
