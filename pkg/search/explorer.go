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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/util/collection/enum"
	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/util/termio"
	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/vf"
	log "github.com/sirupsen/logrus"
)

// Failure records a candidate whose evaluation did not complete.
type Failure struct {
	Modes vf.Assignment
	Err   error
}

// Exploration holds the outcome of an exhaustive search.
type Exploration struct {
	// PEs being enumerated, in ascending order
	PEs []uint
	// All-nominal point against which others are normalised (without metrics
	// if its evaluation timed out).
	Baseline Point
	// Evaluated points, ordered by energy-delay product and then assignment
	// identifier.
	Points []Point
	// Candidates which timed out, in enumeration order
	Failed []Failure
	best   *Tracker
}

// Explore evaluates every assignment of the given modes to the critical PEs of
// a problem, with all other PEs held at nominal.  If the space exceeds the
// configured budget, a *CapacityError is returned before anything is
// evaluated.  A candidate which exceeds its time budget is recorded as failed
// without aborting the search.
func Explore(ctx context.Context, p *Problem, modes []vf.Mode, opts Options) (*Exploration, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	} else if len(modes) == 0 {
		return nil, errors.New("exploration requires at least one mode")
	}
	//
	var (
		pes      = p.CriticalPEs()
		size, ok = enum.PowerSize(uint(len(pes)), uint(len(modes)))
	)
	//
	if !ok || size > opts.Budget {
		if !ok {
			size = 0
		}
		//
		return nil, &CapacityError{uint(len(pes)), uint(len(modes)), size, opts.Budget}
	}
	//
	log.Infof("exploring %d assignments over %d critical PEs", size, len(pes))
	//
	var timeout *TimeoutError
	//
	baseline, err := p.Evaluate(ctx, p.Nominal(), opts)
	if errors.As(err, &timeout) {
		log.Warnf("%s, results will not be normalised", timeout.Error())
	} else if err != nil {
		return nil, err
	}
	//
	var (
		e    = &Exploration{PEs: pes, Baseline: baseline, best: NewTracker(opts.Target, opts.Tolerance)}
		iter = enum.Power(uint(len(pes)), modes)
	)
	// Dispatch in waves
	for iter.HasNext() {
		var batch []vf.Assignment
		//
		for _, combo := range enum.Batch(iter, opts.Concurrency) {
			batch = append(batch, assign(p.Nominal(), pes, combo))
		}
		//
		for _, ev := range evaluateBatch(ctx, p, batch, opts) {
			if errors.As(ev.err, &timeout) {
				log.Warn(timeout.Error())
				e.Failed = append(e.Failed, Failure{ev.point.Modes, ev.err})
			} else if ev.err != nil {
				return nil, ev.err
			} else {
				e.Points = append(e.Points, ev.point)
				e.best.Offer(ev.point)
			}
		}
		//
		log.Debugf("%d assignments remaining", iter.Count())
	}
	//
	slices.SortStableFunc(e.Points, func(a, b Point) int {
		return compare(Energy, 0, a, b)
	})
	//
	if best, ok := e.Best(); ok {
		log.Infof("best of %d assignments is %s (%s)", e.best.Count(), best.Modes.Label(pes), best.Metrics.String())
	}
	//
	return e, nil
}

// Best returns the best point found according to the search target, or false
// if every candidate failed.
func (e *Exploration) Best() (Point, bool) {
	return e.best.Best()
}

// Label returns the label of a given point, which describes the modes of the
// enumerated PEs.
func (e *Exploration) Label(point Point) string {
	return point.Modes.Label(e.PEs)
}

// Table returns a printable table of every point.
func (e *Exploration) Table() *termio.TablePrinter {
	var table = termio.NewTablePrinter(5, uint(len(e.Points))+1)
	//
	table.SetRow(0, "label", "GOPS", "ns", "mW", "pJ")
	table.SetRowEscape(0, termio.BoldAnsiEscape())
	//
	for i, point := range e.Points {
		m := point.Metrics
		table.SetRow(uint(i+1), e.Label(point), fmt.Sprintf("%.3f", m.GOPS), fmt.Sprintf("%.2f", m.Latency),
			fmt.Sprintf("%.2f", m.Power), fmt.Sprintf("%.1f", m.Energy))
	}
	//
	if best, ok := e.Best(); ok {
		row := uint(slices.IndexFunc(e.Points, func(p Point) bool { return p.Modes.Equal(best.Modes) })) + 1
		table.SetRowEscape(row, termio.NewAnsiEscape().FgColour(termio.TERM_GREEN))
	}
	//
	return table
}

type jsonPoint struct {
	Label   string  `json:"label"`
	GOPS    float64 `json:"gops"`
	Latency float64 `json:"latency"`
	Power   float64 `json:"power"`
	Energy  float64 `json:"energy"`
	EDP     float64 `json:"edp"`
	// Performance and energy efficiency relative to all-nominal
	Perf float64 `json:"perf"`
	EE   float64 `json:"ee"`
}

type jsonExploration struct {
	PEs    []uint      `json:"pes"`
	Points []jsonPoint `json:"points"`
	Failed []string    `json:"failed"`
}

// MarshalJSON encodes every point, normalising performance and energy
// efficiency against the all-nominal baseline.
func (e *Exploration) MarshalJSON() ([]byte, error) {
	var (
		base = e.Baseline.Metrics
		data = jsonExploration{PEs: e.PEs, Points: make([]jsonPoint, 0), Failed: make([]string, 0)}
	)
	//
	for _, point := range e.Points {
		m := point.Metrics
		data.Points = append(data.Points, jsonPoint{
			Label:   e.Label(point),
			GOPS:    m.GOPS,
			Latency: m.Latency,
			Power:   m.Power,
			Energy:  m.Energy,
			EDP:     m.EDP,
			// Zero when there is no baseline
			Perf: base.Latency / m.Latency,
			EE:   base.Energy / m.Energy,
		})
	}
	//
	for _, failure := range e.Failed {
		data.Failed = append(data.Failed, failure.Modes.Label(e.PEs))
	}
	//
	return json.Marshal(data)
}

// Construct an assignment from a base, where the given PEs have the given
// modes.
func assign(base vf.Assignment, pes []uint, modes []vf.Mode) vf.Assignment {
	for i, pe := range pes {
		base = base.With(pe, modes[i])
	}
	//
	return base
}
