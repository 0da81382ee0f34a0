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
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/array"
	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/dfg"
	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/power"
	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/vf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Critical PEs
// ============================================================================

func Test_Critical_00(t *testing.T) {
	assert.Equal(t, []uint{0, 1, 2, 3, 4, 5, 6}, toyProblem(t, "toy3").CriticalPEs())
	assert.Equal(t, []uint{0, 1, 2, 3}, toyProblem(t, "toy4").CriticalPEs())
}

func Test_Critical_01(t *testing.T) {
	// Without a recurrence, the longest path is used
	assert.Equal(t, []uint{0, 1, 2}, newProblem(t, chain()).CriticalPEs())
	assert.Equal(t, []uint{1, 2}, newProblem(t, recurrence(2)).CriticalPEs())
}

func Test_Critical_02(t *testing.T) {
	// Singly-chained nodes on a recurrence are grouped
	assert.Equal(t, [][]uint{{0}, {1, 2}, {3}}, toyProblem(t, "toy4").CriticalGroups())
	assert.Equal(t, [][]uint{{1}, {2, 3, 4}, {5}}, newProblem(t, recurrence(5)).CriticalGroups())
	assert.Equal(t, [][]uint{{1}, {2}}, newProblem(t, recurrence(2)).CriticalGroups())
}

// ============================================================================
// Tracker
// ============================================================================

func Test_Tracker_00(t *testing.T) {
	var (
		a = point(vf.Uniform([]uint{0, 1}, vf.Nominal), 1.0, 10)
		b = point(a.Modes.With(0, vf.Sprint), 2.0, 20)
		c = point(a.Modes.With(1, vf.Rest), 1.0, 10)
	)
	// Best is independent of order
	for _, order := range [][]Point{{a, b, c}, {c, b, a}, {b, a, c}} {
		energy := NewTracker(Energy, 1e-9)
		perf := NewTracker(Performance, 1e-9)
		//
		for _, pt := range order {
			energy.Offer(pt)
			perf.Offer(pt)
		}
		//
		best, ok := energy.Best()
		assert.True(t, ok)
		// Equal EDP, so lowest identifier wins
		assert.True(t, best.Modes.Equal(c.Modes))
		//
		best, _ = perf.Best()
		assert.True(t, best.Modes.Equal(b.Modes))
		assert.Equal(t, uint(3), perf.Count())
	}
}

func Test_Tracker_01(t *testing.T) {
	var (
		tracker = NewTracker(Performance, 1e-6)
		a       = point(vf.Uniform([]uint{0}, vf.Nominal), 1.0, 10)
		b       = point(vf.Uniform([]uint{0}, vf.Rest), 1.0+1e-9, 5)
	)
	//
	_, ok := tracker.Best()
	assert.False(t, ok)
	// Throughput within tolerance, so lower EDP wins
	assert.True(t, tracker.Offer(a))
	assert.True(t, tracker.Offer(b))
}

// ============================================================================
// Evaluation
// ============================================================================

func Test_Evaluate_00(t *testing.T) {
	var (
		p    = newProblem(t, recurrence(2))
		opts = testOptions()
	)
	//
	pt, err := p.Evaluate(context.Background(), p.Nominal(), opts)
	require.NoError(t, err)
	// Two nominal stages on the recurrence
	assert.InDelta(t, 0.5, pt.Metrics.Throughput, 1e-9)
	assert.Equal(t, opts.Sim.MaxIterations, pt.Result.Iterations)
	//
	again, err := p.Evaluate(context.Background(), p.Nominal(), opts)
	require.NoError(t, err)
	assert.Equal(t, pt.Metrics, again.Metrics)
}

func Test_Evaluate_01(t *testing.T) {
	var (
		p       = newProblem(t, recurrence(2))
		timeout *TimeoutError
	)
	//
	_, err := p.Evaluate(expired(t), p.Nominal(), testOptions())
	require.Error(t, err)
	assert.True(t, errors.As(err, &timeout))
	assert.Equal(t, "n.n.n.n", timeout.Label)
}

// ============================================================================
// Explorer
// ============================================================================

func Test_Explore_00(t *testing.T) {
	var p = newProblem(t, recurrence(2))
	//
	e, err := Explore(context.Background(), p, vf.Modes, testOptions())
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 2}, e.PEs)
	assert.Len(t, e.Points, 9)
	assert.Empty(t, e.Failed)
	// Ordered by energy-delay product
	for i := 1; i < len(e.Points); i++ {
		assert.LessOrEqual(t, e.Points[i-1].Metrics.EDP, e.Points[i].Metrics.EDP)
	}
	//
	best, ok := e.Best()
	require.True(t, ok)
	assert.True(t, best.Modes.Equal(e.Points[0].Modes))
	// Off-critical PEs are nominal
	for _, pt := range e.Points {
		assert.Equal(t, "n", pt.Modes.Label([]uint{0}))
		assert.Equal(t, "n", pt.Modes.Label([]uint{3}))
	}
}

func Test_Explore_01(t *testing.T) {
	var (
		opts   = testOptions()
		p      = newProblem(t, recurrence(2))
		output = make(map[string]any)
	)
	//
	opts.Target = Performance
	e, err := Explore(context.Background(), p, []vf.Mode{vf.Nominal, vf.Sprint}, opts)
	require.NoError(t, err)
	//
	best, _ := e.Best()
	assert.Equal(t, "s.s", e.Label(best))
	// Table has a header
	var buf bytes.Buffer
	//
	table := e.Table()
	table.AnsiEscapes(false)
	require.NoError(t, table.Write(&buf))
	assert.Contains(t, buf.String(), "GOPS")
	assert.Contains(t, buf.String(), "s.s")
	// Baseline is normalised to one
	data, err := json.Marshal(e)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &output))
	//
	for _, item := range output["points"].([]any) {
		pt := item.(map[string]any)
		if pt["label"] == "n.n" {
			assert.InDelta(t, 1.0, pt["perf"], 1e-12)
			assert.InDelta(t, 1.0, pt["ee"], 1e-12)
		} else if pt["label"] == "s.s" {
			assert.InDelta(t, 1.5, pt["perf"], 0.05)
		}
	}
}

func Test_Explore_02(t *testing.T) {
	var (
		opts     = testOptions()
		capacity *CapacityError
	)
	// 3^4 = 81 assignments
	opts.Budget = 64
	_, err := Explore(context.Background(), toyProblem(t, "toy4"), vf.Modes, opts)
	require.Error(t, err)
	require.True(t, errors.As(err, &capacity))
	assert.Equal(t, uint64(81), capacity.Size)
	// 2^4 = 16 is fine
	_, err = Explore(context.Background(), toyProblem(t, "toy4"), []vf.Mode{vf.Nominal, vf.Sprint}, opts)
	assert.NoError(t, err)
}

func Test_Explore_03(t *testing.T) {
	// Every candidate times out, but the search completes
	e, err := Explore(expired(t), newProblem(t, recurrence(2)), vf.Modes, testOptions())
	require.NoError(t, err)
	assert.Empty(t, e.Points)
	assert.Len(t, e.Failed, 9)
	//
	_, ok := e.Best()
	assert.False(t, ok)
}

// ============================================================================
// Optimizer
// ============================================================================

func Test_Optimize_00(t *testing.T) {
	var opts = testOptions()
	//
	opts.Target = Performance
	o, err := Optimize(context.Background(), newProblem(t, recurrence(2)), opts)
	require.NoError(t, err)
	// Both recurrence PEs sprint, nothing else can rest
	assert.Equal(t, "n.s.s.n", o.Best.Modes.String())
	assert.Equal(t, "n.s.s.n", o.Final.Modes.String())
	assert.InDelta(t, 1.5, o.Summary.ThroughputRatio, 1e-6)
	//
	require.Len(t, o.Log, 4)
	assert.Equal(t, Step{Phase: SprintPhase, PE: 1, Group: []uint{1}, From: vf.Nominal, To: vf.Sprint,
		Accepted: true, Metrics: o.Log[0].Metrics}, o.Log[0])
	assert.Equal(t, uint(2), o.Log[1].PE)
	assert.Equal(t, uint(2), o.Accepted())
	//
	for _, step := range o.Log[2:] {
		assert.Equal(t, RestPhase, step.Phase)
		assert.False(t, step.Accepted)
	}
}

func Test_Optimize_01(t *testing.T) {
	var (
		o         = optimize(t, recurrence(5), Energy, 4)
		reference float64
		energy    = math.Inf(1)
	)
	// Load and store have slack
	assert.Equal(t, "r", o.Final.Modes.Label([]uint{0}))
	assert.Equal(t, "r", o.Final.Modes.Label([]uint{6}))
	// Determine throughput at the start of the rest phase
	reference = o.Baseline.Metrics.Throughput
	//
	for _, step := range o.Log {
		if step.Phase == SprintPhase && step.Accepted {
			reference = step.Metrics.Throughput
		}
	}
	// Demotions do not change throughput, and strictly reduce energy
	for _, step := range o.Log {
		if step.Phase == RestPhase && step.Accepted {
			assert.InDelta(t, reference, step.Metrics.Throughput, 1e-9*reference)
			assert.Less(t, step.Metrics.Energy, energy)
			energy = step.Metrics.Energy
		}
	}
	//
	assert.Less(t, o.Final.Metrics.Energy*o.Baseline.Metrics.Throughput,
		o.Baseline.Metrics.Energy*o.Final.Metrics.Throughput)
}

func Test_Optimize_02(t *testing.T) {
	// Repeated runs agree, regardless of concurrency
	for _, target := range []Target{Performance, Energy} {
		var (
			o1 = optimize(t, recurrence(5), target, 1)
			o2 = optimize(t, recurrence(5), target, 4)
			o3 = optimize(t, recurrence(5), target, 4)
		)
		//
		assert.True(t, o1.Best.Modes.Equal(o2.Best.Modes))
		assert.True(t, o2.Best.Modes.Equal(o3.Best.Modes))
		assert.Equal(t, o1.Best.Metrics, o2.Best.Metrics)
		assert.Equal(t, len(o1.Log), len(o2.Log))
		//
		for i := range o1.Log {
			assert.Equal(t, o1.Log[i].PE, o2.Log[i].PE)
			assert.Equal(t, o1.Log[i].Accepted, o2.Log[i].Accepted)
		}
	}
}

func Test_Optimize_03(t *testing.T) {
	var (
		opts       = testOptions()
		divergence *DivergenceError
	)
	// A balanced pipeline cannot go faster by sprinting one PE
	opts.Target = Performance
	o, err := Optimize(context.Background(), newProblem(t, chain()), opts)
	require.Error(t, err)
	assert.True(t, errors.As(err, &divergence))
	// Result still available
	require.NotNil(t, o)
	assert.Equal(t, "n.n.n", o.Best.Modes.String())
	assert.Len(t, o.Log, 3)
	assert.InDelta(t, 1.0, o.Summary.Speedup, 1e-12)
}

func Test_Optimize_04(t *testing.T) {
	var (
		opts = testOptions()
		p    = toyProblem(t, "toy4")
	)
	// Heuristic agrees with exhaustive search
	opts.Target = Performance
	e, err := Explore(context.Background(), p, []vf.Mode{vf.Nominal, vf.Sprint}, opts)
	require.NoError(t, err)
	o, err := Optimize(context.Background(), p, opts)
	require.NoError(t, err)
	//
	best, _ := e.Best()
	assert.Equal(t, e.Label(best), o.Best.Modes.Label(e.PEs))
	assert.InDelta(t, best.Metrics.Throughput, o.Best.Metrics.Throughput, 1e-9)
}

func Test_Optimize_05(t *testing.T) {
	// Seed cannot be evaluated
	_, err := Optimize(expired(t), newProblem(t, chain()), testOptions())
	assert.Error(t, err)
	//
	opts := testOptions()
	opts.Concurrency = 0
	_, err = Optimize(context.Background(), newProblem(t, chain()), opts)
	assert.Error(t, err)
}

func Test_Optimize_06(t *testing.T) {
	var opts = testOptions()
	//
	opts.Target = Performance
	o, err := Optimize(context.Background(), newProblem(t, recurrence(5)), opts)
	require.NoError(t, err)
	// Middle of the recurrence is promoted in one step, since it gains most
	require.GreaterOrEqual(t, len(o.Log), 3)
	assert.Equal(t, []uint{2, 3, 4}, o.Log[0].Group)
	assert.Equal(t, uint(2), o.Log[0].PE)
	assert.True(t, o.Log[0].Accepted)
	assert.Contains(t, o.Log[0].String(), "pes [2 3 4] nominal -> sprint accepted")
	// Then the ends of the recurrence
	assert.Equal(t, []uint{1}, o.Log[1].Group)
	assert.Equal(t, []uint{5}, o.Log[2].Group)
	assert.Equal(t, "s.s.s.s.s", o.Best.Modes.Label([]uint{1, 2, 3, 4, 5}))
}

// ============================================================================
// Helpers
// ============================================================================

func testOptions() Options {
	opts := DefaultOptions()
	opts.Concurrency = 4
	opts.Timeout = time.Minute
	//
	return opts
}

func optimize(t *testing.T, g *dfg.Graph, target Target, concurrency uint) *Optimization {
	opts := testOptions()
	opts.Target = target
	opts.Concurrency = concurrency
	//
	o, err := Optimize(context.Background(), newProblem(t, g), opts)
	require.NoError(t, err)
	//
	return o
}

// Context whose deadline has already passed.
func expired(t *testing.T) context.Context {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	t.Cleanup(cancel)
	//
	return ctx
}

func point(modes vf.Assignment, throughput, edp float64) Point {
	return Point{Modes: modes, Metrics: power.Metrics{Throughput: throughput, EDP: edp}}
}

func newProblem(t *testing.T, g *dfg.Graph) *Problem {
	c, err := array.AutoMap(g, 4)
	require.NoError(t, err)
	//
	return NewProblem(g, c, vf.Default())
}

func toyProblem(t *testing.T, name string) *Problem {
	g, err := dfg.Toy(name)
	require.NoError(t, err)
	//
	return newProblem(t, g)
}

// load -> alu -> store
func chain() *dfg.Graph {
	g, err := dfg.Build(
		[]dfg.Node{{Id: 0, Op: dfg.Load}, {Id: 1, Op: dfg.Alu}, {Id: 2, Op: dfg.Store}},
		[]dfg.Edge{{Src: 0, Dst: 1}, {Src: 1, Dst: 2}})
	if err != nil {
		panic(err)
	}
	//
	return g
}

// A load feeding a recurrence of n multiplies, the last of which feeds a
// store.
func recurrence(n uint) *dfg.Graph {
	var (
		nodes = []dfg.Node{{Id: 0, Op: dfg.Load}}
		edges = []dfg.Edge{{Src: 0, Dst: 1}, {Src: n, Dst: 1, Carried: true}, {Src: n, Dst: n + 1}}
	)
	//
	for i := uint(1); i <= n; i++ {
		nodes = append(nodes, dfg.Node{Id: i, Op: dfg.Mul})
		//
		if i > 1 {
			edges = append(edges, dfg.Edge{Src: i - 1, Dst: i})
		}
	}
	//
	nodes = append(nodes, dfg.Node{Id: n + 1, Op: dfg.Store})
	//
	g, err := dfg.Build(nodes, edges)
	if err != nil {
		panic(err)
	}
	//
	return g
}
