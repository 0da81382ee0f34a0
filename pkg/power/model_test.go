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
package power

import (
	"context"
	"testing"

	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/array"
	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/dfg"
	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/sim"
	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/vf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Power_00(t *testing.T) {
	// Static power only
	table := newTable(t, vf.Entry{Period: 1, StaticPower: 1}, vf.Entry{Period: 1, StaticPower: 2})
	m := evaluate(t, table, vf.Nominal, DefaultOptions())
	//
	assert.InDelta(t, 3.0, m.Latency, 1e-12)
	assert.InDelta(t, 3.0, m.TilePower, 1e-12)
	assert.InDelta(t, 0.3, m.ClockPower, 1e-12)
	assert.InDelta(t, 4.0, m.SRAMPower, 1e-12)
	assert.InDelta(t, 7.3, m.Power, 1e-12)
	assert.InDelta(t, 21.9, m.Energy, 1e-12)
	assert.InDelta(t, 65.7, m.EDP, 1e-9)
	// One iteration of three nodes every 3ns
	assert.InDelta(t, 1.0, m.GOPS, 1e-12)
}

func Test_Power_01(t *testing.T) {
	// Dynamic power only
	table := newTable(t, vf.Entry{Period: 1, DynamicPowerPerOp: 2}, vf.Entry{Period: 1, DynamicPowerPerOp: 3})
	opts := DefaultOptions()
	opts.ClockRatio = 0
	m := evaluate(t, table, vf.Nominal, opts)
	// Each PE executes one operation (weighted 0.33) over 3ns
	assert.InDelta(t, 3*2*0.33/3, m.TilePower, 1e-12)
	assert.InDelta(t, 2*3.0/3, m.SRAMPower, 1e-12)
	assert.Zero(t, m.ClockPower)
	//
	require.Len(t, m.PEs, 3)
	assert.InDelta(t, 0.22, m.PEs[1].Dynamic, 1e-12)
	assert.Zero(t, m.PEs[1].SRAM)
	assert.InDelta(t, 1.0, m.PEs[2].SRAM, 1e-12)
}

func Test_Power_02(t *testing.T) {
	// Routing PEs use the routing characterisation directly
	g, c := routed(t)
	modes := vf.Uniform(c.Ids(), vf.Nominal)
	r, err := sim.Run(context.Background(), g, c, vf.Default(), modes, sim.DefaultOptions().Iterations(1))
	require.NoError(t, err)
	//
	m, err := Evaluate(c, vf.Default(), modes, r, g.Len(), DefaultOptions())
	require.NoError(t, err)
	//
	routing, _ := vf.Default().Lookup(vf.Routing, vf.Nominal)
	assert.Equal(t, vf.Routing, m.PEs[1].Class)
	assert.InDelta(t, routing.DynamicPowerPerOp/4, m.PEs[1].Dynamic, 1e-12)
	assert.InDelta(t, routing.StaticPower, m.PEs[1].Static, 1e-12)
}

func Test_Power_03(t *testing.T) {
	nominal := evaluate(t, vf.Default(), vf.Nominal, DefaultOptions())
	sprint := evaluate(t, vf.Default(), vf.Sprint, DefaultOptions())
	rest := evaluate(t, vf.Default(), vf.Rest, DefaultOptions())
	// Identity
	same := Compare(nominal, nominal)
	assert.InDelta(t, 1.0, same.Speedup, 1e-12)
	assert.InDelta(t, 1.0, same.PowerRatio, 1e-12)
	assert.InDelta(t, 1.0, same.EfficiencyRatio, 1e-12)
	// Sprinting is faster, but less efficient
	cmp := Compare(nominal, sprint)
	assert.InDelta(t, 1.5, cmp.Speedup, 1e-9)
	assert.InDelta(t, 1.5, cmp.ThroughputRatio, 1e-9)
	assert.Greater(t, cmp.PowerRatio, 1.0)
	assert.Less(t, cmp.EfficiencyRatio, 1.0)
	// Resting is slower, but draws less power
	cmp = Compare(nominal, rest)
	assert.InDelta(t, 1.0/3, cmp.Speedup, 1e-9)
	assert.Less(t, cmp.PowerRatio, 1.0)
}

func Test_Power_04(t *testing.T) {
	g, c := chain(t)
	modes := vf.Uniform(c.Ids(), vf.Nominal)
	r, err := sim.Run(context.Background(), g, c, vf.Default(), modes, sim.DefaultOptions().Iterations(1))
	require.NoError(t, err)
	// Missing mode
	_, err = Evaluate(c, vf.Default(), vf.Uniform([]uint{0}, vf.Nominal), r, g.Len(), DefaultOptions())
	assert.Error(t, err)
	// Empty run
	_, err = Evaluate(c, vf.Default(), modes, &sim.Result{}, g.Len(), DefaultOptions())
	assert.Error(t, err)
}

// ===================================================================
// Helpers
// ===================================================================

// Construct a table where the arithmetic and routing classes share one entry,
// and SRAM has another, in every mode.
func newTable(t *testing.T, tile vf.Entry, sram vf.Entry) *vf.Table {
	var entries = map[vf.Class]map[vf.Mode]vf.Entry{
		vf.Arithmetic: {}, vf.Routing: {}, vf.SRAM: {},
	}
	//
	for _, mode := range vf.Modes {
		entries[vf.Arithmetic][mode] = tile
		entries[vf.Routing][mode] = tile
		entries[vf.SRAM][mode] = sram
	}
	//
	table, err := vf.NewTable(entries)
	require.NoError(t, err)
	//
	return table
}

func evaluate(t *testing.T, table *vf.Table, mode vf.Mode, opts Options) Metrics {
	g, c := chain(t)
	modes := vf.Uniform(c.Ids(), mode)
	//
	r, err := sim.Run(context.Background(), g, c, table, modes, sim.DefaultOptions().Iterations(1))
	require.NoError(t, err)
	//
	m, err := Evaluate(c, table, modes, r, g.Len(), opts)
	require.NoError(t, err)
	//
	return m
}

// load -> alu -> store, one PE per node.
func chain(t *testing.T) (*dfg.Graph, *array.Config) {
	g, err := dfg.Build(
		[]dfg.Node{{Id: 0, Op: dfg.Load}, {Id: 1, Op: dfg.Alu}, {Id: 2, Op: dfg.Store}},
		[]dfg.Edge{{Src: 0, Dst: 1}, {Src: 1, Dst: 2}})
	require.NoError(t, err)
	//
	c, err := array.AutoMap(g, 3)
	require.NoError(t, err)
	//
	return g, c
}

// As chain, but the first edge is routed through PE 1.
func routed(t *testing.T) (*dfg.Graph, *array.Config) {
	g, _ := chain(t)
	n0, n1, n2 := dfg.NodeId(0), dfg.NodeId(1), dfg.NodeId(2)
	//
	c, err := array.Build(4, 1, []array.PESpec{
		{Id: 0, X: 0, Op: "load", Node: &n0, Dst: []uint{1}},
		{Id: 1, X: 1, Op: array.RouteOp, Dst: []uint{2}},
		{Id: 2, X: 2, Op: "alu", Node: &n1, Dst: []uint{3}},
		{Id: 3, X: 3, Op: "store", Node: &n2},
	}, g)
	require.NoError(t, err)
	//
	return g, c
}
