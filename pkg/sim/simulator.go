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
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/array"
	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/dfg"
	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/vf"
	akita "github.com/sarchlab/akita/v4/sim"
	log "github.com/sirupsen/logrus"
)

// ErrEmptyNetwork is returned when simulating a network without any stages.
var ErrEmptyNetwork = errors.New("cannot simulate a dataflow graph without nodes")

// Number of stage completions processed between checks for cancellation.
const cancelCheckInterval = 1024

type stageState uint8

const (
	stageIdle stageState = iota
	stageWaiting
	stageExecuting
	stageForwarding
)

// Mutable state of a stage within one simulation.
type stageRun struct {
	state  stageState
	period float64
	// Number of iterations fired so far
	iteration uint
	// Time at which the current execution completes (or completed)
	completesAt float64
	// Outputs which have received the current token
	delivered []bool
	// Statistics
	ops   uint
	stall float64
}

// Mutable state of a channel within one simulation.
type channelRun struct {
	// Number of queued tokens (forward channels)
	queued uint
	// Per-iteration slots (carried channels)
	slots []bool
}

type simulation struct {
	ctx      context.Context
	net      *Network
	opts     Options
	stages   []stageRun
	channels []channelRun
	engine   akita.Engine
	// Completion events not yet handled, indexed by time
	pending map[float64]*completion
	now     float64
	// Number of iterations sources may issue
	limit uint
	// Greatest number of iterations issued by any source
	issued uint
	// Number of completed iterations
	done uint
	// Number of stages which have completed each iteration, and the time the
	// last did so.
	finished    []uint
	completions []float64
	steady      bool
	steadyAt    uint
	// Number of stage completions processed, and the count at which to next
	// check for cancellation.
	count, nextCheck uint
	// Reason the simulation stopped early (if it did)
	err error
}

// Run simulates a DFG mapped onto an array under a given VF assignment.
func Run(ctx context.Context, g *dfg.Graph, config *array.Config, table *vf.Table, modes vf.Assignment,
	opts Options) (*Result, error) {
	return Compile(g, config).Simulate(ctx, table, modes, opts)
}

// Simulate this network under a given VF assignment.  The outcome depends
// only on the arguments, hence repeated runs give identical results.
func (n *Network) Simulate(ctx context.Context, table *vf.Table, modes vf.Assignment,
	opts Options) (*Result, error) {
	//
	if err := opts.Validate(); err != nil {
		return nil, err
	} else if len(n.stages) == 0 {
		return nil, ErrEmptyNetwork
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}
	//
	s, err := newSimulation(ctx, n, table, modes, opts)
	if err != nil {
		return nil, err
	}
	// Kick off sources
	s.settle()
	//
	if err := s.engine.Run(); err != nil {
		return nil, err
	} else if s.err != nil {
		return nil, s.err
	} else if s.done < s.limit {
		return nil, &DeadlockError{s.now, s.done, s.limit}
	}
	//
	log.Debugf("simulated %d iterations (%d completions) in %.4fns", s.done, s.count, s.now)
	//
	return s.result(), nil
}

func newSimulation(ctx context.Context, n *Network, table *vf.Table, modes vf.Assignment,
	opts Options) (*simulation, error) {
	var s = &simulation{
		ctx:         ctx,
		net:         n,
		engine:      akita.NewSerialEngine(),
		pending:     make(map[float64]*completion),
		opts:        opts,
		stages:      make([]stageRun, len(n.stages)),
		channels:    make([]channelRun, len(n.channels)),
		limit:       opts.MaxIterations,
		finished:    make([]uint, opts.MaxIterations),
		completions: make([]float64, opts.MaxIterations),
	}
	//
	for i, st := range n.stages {
		mode, ok := modes.Mode(st.PE)
		if !ok {
			return nil, fmt.Errorf("pe %d has no vf mode", st.PE)
		}
		//
		period, err := table.Period(st.Class, mode)
		if err != nil {
			return nil, err
		}
		//
		s.stages[i] = stageRun{period: period, delivered: make([]bool, len(n.outputs[i]))}
	}
	// Carried channels start with the token for iteration 0.
	for i, c := range n.channels {
		if c.Carried {
			s.channels[i].slots = make([]bool, opts.MaxIterations+1)
			s.channels[i].slots[0] = true
		}
	}
	//
	return s, nil
}

// Repeatedly attempt to forward results and fire stages until nothing more can
// happen at the current instant.
func (s *simulation) settle() {
	for progress := true; progress; {
		progress = false
		//
		for i := range s.stages {
			if s.stages[i].state == stageForwarding && s.forward(uint(i)) {
				progress = true
			}
			//
			if state := s.stages[i].state; (state == stageIdle || state == stageWaiting) && s.fire(uint(i)) {
				progress = true
			}
		}
	}
}

// Attempt to fire a stage, returning true if it did.
func (s *simulation) fire(stage uint) bool {
	var st = &s.stages[stage]
	//
	if st.iteration >= s.limit && s.net.isSource(stage) {
		st.state = stageWaiting
		return false
	}
	// Check every input is available
	for _, c := range s.net.inputs[stage] {
		if !s.available(c, st.iteration) {
			st.state = stageWaiting
			return false
		}
	}
	// Consume inputs
	for _, c := range s.net.inputs[stage] {
		if s.net.channels[c].Carried {
			s.channels[c].slots[st.iteration] = false
		} else {
			s.channels[c].queued--
		}
	}
	//
	st.state = stageExecuting
	st.completesAt = s.now + st.period
	st.iteration++
	st.ops++
	//
	if s.net.isSource(stage) {
		s.issued = max(s.issued, st.iteration)
	}
	//
	s.schedule(stage, st.completesAt)
	//
	return true
}

func (s *simulation) available(c uint, iteration uint) bool {
	if s.net.channels[c].Carried {
		return s.channels[c].slots[iteration]
	}
	//
	return s.channels[c].queued > 0
}

// A stage finished executing, so record this and begin forwarding.
func (s *simulation) complete(stage uint) {
	var (
		st = &s.stages[stage]
		k  = st.iteration - 1
	)
	//
	clear(st.delivered)
	st.state = stageForwarding
	//
	if len(st.delivered) == 0 {
		st.state = stageIdle
	}
	//
	s.finished[k]++
	s.completions[k] = math.Max(s.completions[k], s.now)
	// Iterations complete in order
	if s.finished[k] == uint(len(s.stages)) {
		s.done = k + 1
		s.checkSteady(k)
	}
}

// Attempt to push the current result of a stage to its destinations,
// returning true if anything was delivered.
func (s *simulation) forward(stage uint) bool {
	var (
		st       = &s.stages[stage]
		outputs  = s.net.outputs[stage]
		progress = false
		all      = true
	)
	// Without eager forking, every destination must have space first.
	if !s.opts.EagerFork {
		for i, c := range outputs {
			if !st.delivered[i] && !s.hasSpace(c) {
				return false
			}
		}
	}
	//
	for i, c := range outputs {
		if st.delivered[i] {
			continue
		} else if s.hasSpace(c) {
			s.push(c, st.iteration-1)
			st.delivered[i] = true
			progress = true
		} else {
			all = false
		}
	}
	//
	if all {
		st.state = stageIdle
		st.stall += s.now - st.completesAt
	}
	//
	return progress
}

func (s *simulation) hasSpace(c uint) bool {
	return s.net.channels[c].Carried || s.channels[c].queued < s.opts.QueueDepth
}

// Push the token of a given iteration into a channel.
func (s *simulation) push(c uint, iteration uint) {
	if s.net.channels[c].Carried {
		s.channels[c].slots[iteration+1] = true
	} else {
		s.channels[c].queued++
	}
}

// Once steady, simulate a few more iterations and then stop issuing.
func (s *simulation) checkSteady(k uint) {
	if s.steady || k < 2 || s.done < s.opts.MinIterations {
		return
	}
	//
	var (
		previous = s.completions[k-1] - s.completions[k-2]
		current  = s.completions[k] - s.completions[k-1]
	)
	//
	if math.Abs(current-previous) <= s.opts.Epsilon {
		s.steady = true
		s.steadyAt = k
		// Iterations already issued must still complete.
		s.limit = max(min(s.done+s.opts.Window, s.opts.MaxIterations), s.issued)
	}
}

func (s *simulation) result() *Result {
	var (
		completions = s.completions[:s.done]
		r           = &Result{
			Latency:          completions[s.done-1],
			IterationLatency: completions[0],
			Iterations:       s.done,
			Steady:           s.steady,
			SteadyAt:         s.steadyAt,
			Completions:      completions,
			Ops:              make(map[uint]uint),
			Stalls:           make(map[uint]float64),
		}
	)
	//
	for i, st := range s.net.stages {
		r.Ops[st.PE] += s.stages[i].ops
		r.Stalls[st.PE] += s.stages[i].stall
	}
	//
	r.Throughput = throughput(completions, s.steady, s.steadyAt)
	r.Interval = 1 / r.Throughput
	//
	return r
}
