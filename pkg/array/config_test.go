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
	"errors"
	"testing"

	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/dfg"
	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/vf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// load -> alu -> store
func pipeline(t *testing.T) *dfg.Graph {
	g, err := dfg.Build(
		[]dfg.Node{{Id: 0, Op: dfg.Load}, {Id: 1, Op: dfg.Alu}, {Id: 2, Op: dfg.Store}},
		[]dfg.Edge{{Src: 0, Dst: 1}, {Src: 1, Dst: 2}})
	require.NoError(t, err)
	//
	return g
}

// Places the load at (0,0), a routing PE at (1,0), the alu at (2,0) and the
// store at (2,1).
func pipelineSpecs() []PESpec {
	return []PESpec{
		{Id: 0, X: 0, Y: 0, Op: "ld", Node: node(0), Dst: []uint{1}},
		{Id: 1, X: 1, Y: 0, Op: RouteOp, Dst: []uint{2}},
		{Id: 2, X: 2, Y: 0, Op: "add", Node: node(1)},
		{Id: 3, X: 2, Y: 1, Op: "st", Node: node(2), Src: []uint{2}},
	}
}

const pipelineJSON = `{
  "width": 3, "height": 2, "name": "pipeline",
  "pes": [
    {"id": 0, "x": 0, "y": 0, "op": "ld", "node": 0, "src": [], "dst": [1]},
    {"id": 1, "x": 1, "y": 0, "op": "route", "src": [], "dst": [2], "note": "bypass"},
    {"id": 2, "x": 2, "y": 0, "op": "add", "node": 1, "src": [], "dst": []},
    {"id": 3, "x": 2, "y": 1, "op": "st", "node": 2, "src": [2], "dst": []}
  ]
}`

func Test_Config_00(t *testing.T) {
	c, err := Build(3, 2, pipelineSpecs(), pipeline(t))
	require.NoError(t, err)
	//
	assert.Equal(t, uint(4), c.Len())
	assert.Equal(t, []uint{0, 1, 2, 3}, c.Ids())
	assert.Equal(t, []uint{0, 1, 2}, c.Route(dfg.Edge{Src: 0, Dst: 1}))
	assert.Equal(t, []uint{1}, c.Hops(dfg.Edge{Src: 0, Dst: 1}))
	assert.Equal(t, []uint{2, 3}, c.Route(dfg.Edge{Src: 1, Dst: 2}))
	assert.Empty(t, c.Hops(dfg.Edge{Src: 1, Dst: 2}))
	// Links declared at either end
	pe, _ := c.PE(2)
	assert.Equal(t, []uint{3}, pe.Dst)
	assert.Equal(t, []uint{1}, pe.Src)
	//
	assert.Equal(t, vf.Routing, c.Class(1))
	assert.Equal(t, vf.Arithmetic, c.Class(2))
	assert.True(t, c.HasSRAM(0))
	assert.False(t, c.HasSRAM(2))
	assert.True(t, c.HasSRAM(3))
	//
	at, ok := c.At(2, 1)
	require.True(t, ok)
	assert.Equal(t, uint(3), at.Id)
	//
	id, _ := c.PEOf(1)
	assert.Equal(t, uint(2), id)
	_, ok = c.NodeOf(1)
	assert.False(t, ok)
}

func Test_Config_01(t *testing.T) {
	// Two equally short routes, where the lower identifier wins
	specs := append(pipelineSpecs(), PESpec{Id: 4, X: 0, Y: 1, Op: RouteOp, Src: []uint{0}, Dst: []uint{2}})
	c, err := Build(3, 2, specs, pipeline(t))
	require.NoError(t, err)
	assert.Equal(t, []uint{0, 1, 2}, c.Route(dfg.Edge{Src: 0, Dst: 1}))
	// Removing the first leaves the second
	specs[1].Dst = nil
	c, err = Build(3, 2, specs, pipeline(t))
	require.NoError(t, err)
	assert.Equal(t, []uint{0, 4, 2}, c.Route(dfg.Edge{Src: 0, Dst: 1}))
}

func Test_Config_02(t *testing.T) {
	specs := pipelineSpecs()
	specs[3].X, specs[3].Y = 1, 0
	checkConfigError(t, 3, 2, specs, pipeline(t), 3)
}

func Test_Config_03(t *testing.T) {
	specs := pipelineSpecs()
	specs[3].Y = 2
	checkConfigError(t, 3, 2, specs, pipeline(t), 3)
}

func Test_Config_04(t *testing.T) {
	specs := pipelineSpecs()
	specs[3].Id = 2
	checkConfigError(t, 3, 2, specs, pipeline(t), 2)
}

func Test_Config_05(t *testing.T) {
	specs := pipelineSpecs()
	specs[1].Dst = []uint{9}
	checkConfigError(t, 3, 2, specs, pipeline(t), 1)
}

func Test_Config_06(t *testing.T) {
	// Operator mismatch
	specs := pipelineSpecs()
	specs[2].Op = "mul"
	checkConfigError(t, 3, 2, specs, pipeline(t), 2)
}

func Test_Config_07(t *testing.T) {
	// Node mapped twice
	specs := pipelineSpecs()
	specs[3].Op, specs[3].Node = "add", node(1)
	checkConfigError(t, 3, 2, specs, pipeline(t), 3)
}

func Test_Config_08(t *testing.T) {
	// Node not mapped at all
	specs := pipelineSpecs()
	specs[3].Op, specs[3].Node = RouteOp, nil
	checkConfigError(t, 3, 2, specs, pipeline(t), -1)
}

func Test_Config_09(t *testing.T) {
	// Unknown node
	specs := pipelineSpecs()
	specs[3].Node = node(7)
	checkConfigError(t, 3, 2, specs, pipeline(t), 3)
	// Routing PE naming a node
	specs = pipelineSpecs()
	specs[1].Node = node(1)
	checkConfigError(t, 3, 2, specs, pipeline(t), 1)
}

func Test_Config_10(t *testing.T) {
	// No route from load to alu
	specs := pipelineSpecs()
	specs[0].Dst = nil
	checkConfigError(t, 3, 2, specs, pipeline(t), 0)
	// Routes cannot pass through operator PEs
	specs = pipelineSpecs()
	specs[1].Op, specs[1].Node = "st", node(2)
	specs[3].Op, specs[3].Node = RouteOp, nil
	checkConfigError(t, 3, 2, specs, pipeline(t), 0)
}

func Test_Config_11(t *testing.T) {
	// Fan-in outside the operator's arity
	g, err := dfg.Build(
		[]dfg.Node{{Id: 0, Op: dfg.Nop}, {Id: 1, Op: dfg.Nop}, {Id: 2, Op: dfg.Load}},
		[]dfg.Edge{{Src: 0, Dst: 2}, {Src: 1, Dst: 2}})
	require.NoError(t, err)
	//
	specs := []PESpec{
		{Id: 0, X: 0, Y: 0, Op: "const", Node: node(0), Dst: []uint{2}},
		{Id: 1, X: 1, Y: 0, Op: "const", Node: node(1), Dst: []uint{2}},
		{Id: 2, X: 2, Y: 0, Op: "load", Node: node(2)},
	}
	checkConfigError(t, 3, 1, specs, g, 2)
}

func Test_Json_00(t *testing.T) {
	c, modes, err := Read([]byte(pipelineJSON), pipeline(t))
	require.NoError(t, err)
	assert.Equal(t, uint(0), modes.Len())
	// Annotate
	assignment := vf.Uniform(c.Ids(), vf.Nominal).With(2, vf.Sprint).With(1, vf.Rest)
	bytes, err := WriteAugmented([]byte(pipelineJSON), assignment)
	require.NoError(t, err)
	// Round trip
	d, recorded, err := Read(bytes, pipeline(t))
	require.NoError(t, err)
	assert.Equal(t, c.PEs(), d.PEs())
	assert.True(t, assignment.Equal(recorded))
	// Unknown fields preserved
	var raw map[string]any
	//
	require.NoError(t, json.Unmarshal(bytes, &raw))
	assert.Equal(t, "pipeline", raw["name"])
	//
	pe1 := raw["pes"].([]any)[1].(map[string]any)
	assert.Equal(t, "bypass", pe1["note"])
	assert.Equal(t, "rest", pe1["dvfs"])
}

func Test_Json_01(t *testing.T) {
	// Every PE must have a mode
	_, err := WriteAugmented([]byte(pipelineJSON), vf.Uniform([]uint{0, 1}, vf.Nominal))
	assert.Error(t, err)
	//
	_, _, err = Read([]byte(`{"width": 1`), pipeline(t))
	assert.Error(t, err)
}

func Test_Json_02(t *testing.T) {
	c, err := Build(3, 2, pipelineSpecs(), pipeline(t))
	require.NoError(t, err)
	//
	bytes, err := json.Marshal(c)
	require.NoError(t, err)
	//
	d, _, err := Read(bytes, pipeline(t))
	require.NoError(t, err)
	assert.Equal(t, c.PEs(), d.PEs())
}

func Test_AutoMap_00(t *testing.T) {
	g := dfg.Toy3()
	c, err := AutoMap(g, 3)
	require.NoError(t, err)
	//
	assert.Equal(t, g.Len(), c.Len())
	assert.Equal(t, uint(3), c.Height())
	//
	for _, e := range g.Edges() {
		route := c.Route(e)
		require.Len(t, route, 2)
		assert.Equal(t, e.Src, route[0])
		assert.Equal(t, e.Dst, route[1])
	}
	//
	pe, _ := c.At(1, 2)
	assert.Equal(t, uint(7), pe.Id)
	assert.True(t, c.HasSRAM(7))
}

// ===================================================================
// Helpers
// ===================================================================

func node(id dfg.NodeId) *dfg.NodeId {
	return &id
}

func checkConfigError(t *testing.T, width, height uint, specs []PESpec, g *dfg.Graph, pe int) {
	_, err := Build(width, height, specs, g)
	//
	var cerr *ConfigError
	//
	require.True(t, errors.As(err, &cerr), "expected configuration error, got %v", err)
	assert.Equal(t, pe, cerr.PE)
}
