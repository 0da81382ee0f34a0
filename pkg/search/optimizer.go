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
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/power"
	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/vf"
	log "github.com/sirupsen/logrus"
)

// Phase identifies a phase of the optimiser.
type Phase uint8

const (
	// Seed is the all-nominal starting point.
	Seed Phase = iota + 1
	// SprintPhase promotes critical PEs to sprint.
	SprintPhase
	// RestPhase demotes PEs with slack to rest.
	RestPhase
)

func (p Phase) String() string {
	switch p {
	case Seed:
		return "seed"
	case SprintPhase:
		return "sprint"
	case RestPhase:
		return "rest"
	}
	//
	return fmt.Sprintf("phase(%d)", uint8(p))
}

// Step records a single candidate considered by the optimiser.  A candidate
// moves one or more PEs to the same mode together.
type Step struct {
	Phase Phase
	// First of the PEs moved
	PE uint
	// Every PE moved, in ascending order
	Group    []uint
	From, To vf.Mode
	Accepted bool
	// Metrics of the candidate (unless its evaluation failed)
	Metrics power.Metrics
	Err     error
}

func (s Step) String() string {
	var (
		verdict = "rejected"
		pes     = fmt.Sprintf("pe %d", s.PE)
	)
	//
	if s.Accepted {
		verdict = "accepted"
	}
	//
	if len(s.Group) > 1 {
		pes = fmt.Sprintf("pes %v", s.Group)
	}
	//
	if s.Err != nil {
		return fmt.Sprintf("[%s] %s %s -> %s failed: %s", s.Phase, pes, s.From, s.To, s.Err)
	}
	//
	return fmt.Sprintf("[%s] %s %s -> %s %s: %s", s.Phase, pes, s.From, s.To, verdict, s.Metrics.String())
}

// Optimization is the outcome of the heuristic optimiser.
type Optimization struct {
	// PEs considered critical, in ascending order
	Critical []uint
	// All-nominal seed
	Baseline Point
	// Best point accepted during the search
	Best Point
	// Assignment reached once both phases complete
	Final Point
	// Every candidate considered, in the order considered
	Log []Step
	// Best point relative to the baseline
	Summary power.Comparison
}

// Accepted returns the number of accepted steps.
func (p *Optimization) Accepted() uint {
	var count uint
	//
	for _, step := range p.Log {
		if step.Accepted {
			count++
		}
	}
	//
	return count
}

// Optimize searches for a good assignment using a three phase heuristic.
// Starting from all-nominal, critical PEs are promoted to sprint whilst this
// improves the target.  PEs executing a chain of singly-chained nodes are
// promoted together.  Then, PEs off the critical path are demoted to rest
// whenever this reduces energy without changing throughput.  Candidates of
// each step are evaluated speculatively in parallel, but the first acceptable
// candidate (in order) is taken, hence the outcome matches that of evaluating
// them one at a time.  If no step is accepted, the outcome is returned along
// with a *DivergenceError.
func Optimize(ctx context.Context, p *Problem, opts Options) (*Optimization, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	// Phase 1
	baseline, err := p.Evaluate(ctx, p.Nominal(), opts)
	if err != nil {
		return nil, err
	}
	//
	log.Infof("[%s] %s", Seed, baseline.Metrics.String())
	//
	var o = optimizer{
		problem: p,
		opts:    opts,
		tracker: NewTracker(opts.Target, opts.Tolerance),
		current: baseline,
		result:  &Optimization{Critical: p.CriticalPEs(), Baseline: baseline},
	}
	//
	o.tracker.Offer(baseline)
	//
	if len(o.result.Critical) == 0 {
		o.finish()
		return o.result, &DivergenceError{"no PEs on the critical path"}
	}
	// Phase 2
	if err := o.sprint(ctx); err != nil {
		return nil, err
	}
	// Phase 3
	if err := o.rest(ctx); err != nil {
		return nil, err
	}
	//
	o.finish()
	//
	if o.result.Accepted() == 0 {
		return o.result, &DivergenceError{"no improving step from the all-nominal seed"}
	}
	//
	return o.result, nil
}

// State of an optimisation in progress.
type optimizer struct {
	problem *Problem
	opts    Options
	tracker *Tracker
	// Most recently accepted point
	current Point
	result  *Optimization
}

// Promote groups of critical PEs to sprint, one group at a time, until no
// promotion improves the target or the step budget is exhausted.
func (o *optimizer) sprint(ctx context.Context) error {
	var (
		steps  uint
		stages = o.problem.stagesPerPE()
		groups = o.problem.CriticalGroups()
	)
	//
	for steps < o.opts.MaxSteps {
		var (
			candidates = o.promotions(groups, stages)
			budget     = min(uint(len(candidates)), o.opts.MaxSteps-steps)
			target     = o.opts.Target
		)
		//
		index, n, err := o.scan(ctx, SprintPhase, candidates[:budget], vf.Sprint, func(pt Point) bool {
			return improves(target, pt, o.current, o.opts.Tolerance)
		})
		//
		if err != nil {
			return err
		}
		//
		steps += n
		//
		if index < 0 {
			return nil
		}
	}
	//
	log.Infof("[%s] stopped after %d steps", SprintPhase, steps)
	//
	return nil
}

// Groups of critical PEs which can still be sped up, ordered by their marginal
// contribution to latency.  For each PE, this is estimated as the number of
// stages executing on it multiplied by the reduction in period from sprinting.
// Ties are broken by the first PE of each group.
func (o *optimizer) promotions(groups [][]uint, stages map[uint]uint) [][]uint {
	var (
		candidates [][]uint
		gains      = make(map[uint]float64)
	)
	//
	for _, group := range groups {
		var gain float64
		//
		for _, pe := range group {
			gain += o.gain(pe, stages[pe])
		}
		//
		if gain > 0 {
			candidates = append(candidates, group)
			gains[group[0]] = gain
		}
	}
	//
	slices.SortFunc(candidates, func(a, b []uint) int {
		if c := cmp.Compare(gains[b[0]], gains[a[0]]); c != 0 {
			return c
		}
		//
		return cmp.Compare(a[0], b[0])
	})
	//
	return candidates
}

// Estimated reduction in latency from sprinting a PE executing a given number
// of stages.
func (o *optimizer) gain(pe uint, stages uint) float64 {
	var (
		mode, _ = o.current.Modes.Mode(pe)
		class   = o.problem.Config.Class(pe)
	)
	//
	from, err1 := o.problem.Table.Period(class, mode)
	to, err2 := o.problem.Table.Period(class, vf.Sprint)
	//
	if err1 != nil || err2 != nil {
		return 0
	}
	//
	return max(0, float64(stages)*(from-to))
}

// Demote PEs with slack to rest, one at a time, whenever this reduces energy
// without changing throughput beyond the tolerance.
func (o *optimizer) rest(ctx context.Context) error {
	var (
		candidates = o.demotions()
		reference  = o.current.Metrics.Throughput
	)
	//
	for len(candidates) > 0 {
		index, _, err := o.scan(ctx, RestPhase, candidates, vf.Rest, func(pt Point) bool {
			change := math.Abs(pt.Metrics.Throughput - reference)
			//
			return change <= o.opts.Tolerance*reference && pt.Metrics.Energy < o.current.Metrics.Energy
		})
		//
		if err != nil || index < 0 {
			return err
		}
		//
		candidates = candidates[index+1:]
	}
	//
	return nil
}

// PEs off the critical path which could be slowed down, ordered by the
// estimated reduction in power from resting them.
func (o *optimizer) demotions() [][]uint {
	var (
		candidates [][]uint
		savings    = make(map[uint]float64)
	)
	//
	for _, pe := range o.current.Metrics.PEs {
		if pe.Mode == vf.Rest || slices.Contains(o.result.Critical, pe.PE) {
			continue
		}
		//
		candidates = append(candidates, []uint{pe.PE})
		savings[pe.PE] = o.saving(pe)
	}
	//
	slices.SortFunc(candidates, func(a, b []uint) int {
		if c := cmp.Compare(savings[b[0]], savings[a[0]]); c != 0 {
			return c
		}
		//
		return cmp.Compare(a[0], b[0])
	})
	//
	return candidates
}

// Estimate the reduction in power from resting a PE, assuming it continues to
// execute at the same rate.
func (o *optimizer) saving(pe power.PEPower) float64 {
	var (
		table  = o.problem.Table
		saving = pe.Static + pe.Dynamic + pe.SRAM
	)
	//
	from, err1 := table.Lookup(pe.Class, pe.Mode)
	to, err2 := table.Lookup(pe.Class, vf.Rest)
	//
	if err1 != nil || err2 != nil {
		return 0
	}
	//
	saving -= to.StaticPower
	//
	if from.DynamicPowerPerOp > 0 {
		saving -= pe.Dynamic * to.DynamicPowerPerOp / from.DynamicPowerPerOp
	}
	//
	if pe.SRAM > 0 {
		from, err1 = table.Lookup(vf.SRAM, pe.Mode)
		to, err2 = table.Lookup(vf.SRAM, vf.Rest)
		//
		if err1 == nil && err2 == nil && from.StaticPower+from.DynamicPowerPerOp > 0 {
			saving -= pe.SRAM * (to.StaticPower + to.DynamicPowerPerOp) / (from.StaticPower + from.DynamicPowerPerOp)
		}
	}
	//
	return saving
}

// Consider moving each group of PEs in turn to a given mode, in waves of
// speculative evaluations, stopping at the first candidate accepted.  This
// returns the index of that candidate (or -1 if none) and the number of
// candidates considered.  Candidates which time out are rejected.
func (o *optimizer) scan(ctx context.Context, phase Phase, groups [][]uint, mode vf.Mode,
	accept func(Point) bool) (int, uint, error) {
	var considered uint
	//
	for _, wave := range waves(groups, o.opts.Concurrency) {
		var batch = make([]vf.Assignment, len(wave))
		//
		for i, group := range wave {
			batch[i] = o.current.Modes
			//
			for _, pe := range group {
				batch[i] = batch[i].With(pe, mode)
			}
		}
		//
		for i, ev := range evaluateBatch(ctx, o.problem, batch, o.opts) {
			var (
				from, _ = o.current.Modes.Mode(wave[i][0])
				step    = Step{Phase: phase, PE: wave[i][0], Group: wave[i], From: from, To: mode, Err: ev.err}
				timeout *TimeoutError
			)
			//
			if ev.err != nil && !errors.As(ev.err, &timeout) {
				return -1, considered, ev.err
			} else if ev.err == nil {
				step.Metrics = ev.point.Metrics
				step.Accepted = accept(ev.point)
			}
			//
			o.record(step)
			considered++
			//
			if step.Accepted {
				o.current = ev.point
				o.tracker.Offer(ev.point)
				//
				return int(considered) - 1, considered, nil
			}
		}
	}
	//
	return -1, considered, nil
}

func (o *optimizer) record(step Step) {
	o.result.Log = append(o.result.Log, step)
	//
	if step.Err != nil {
		log.Warn(step.String())
	} else {
		log.Info(step.String())
	}
}

// Finalise the outcome, and report how it compares against the baseline.
func (o *optimizer) finish() {
	o.result.Best, _ = o.tracker.Best()
	o.result.Final = o.current
	o.result.Summary = power.Compare(o.result.Baseline.Metrics, o.result.Best.Metrics)
	//
	log.Infof("optimised %s: %s", o.result.Best.Modes.String(), o.result.Summary.String())
}
