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
	"fmt"

	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/array"
	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/dfg"
	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/sim"
	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/vf"
)

// Options configures the power model.
type Options struct {
	// Power of the global clock network, as a fraction of total PE power.
	ClockRatio float64
	// Dynamic activity of each operator relative to a multiply.
	Weights map[dfg.Op]float64
}

// DefaultOptions returns the options used unless otherwise configured.
func DefaultOptions() Options {
	return Options{ClockRatio: 0.1, Weights: DefaultWeights()}
}

// DefaultWeights returns the dynamic activity of each operator, relative to a
// multiply, as measured on the reference design.
func DefaultWeights() map[dfg.Op]float64 {
	return map[dfg.Op]float64{
		dfg.Mul:    1.00,
		dfg.Alu:    0.33,
		dfg.Copy:   0.22,
		dfg.Cmp:    0.22,
		dfg.Phi:    0.22,
		dfg.Branch: 0.22,
		dfg.Load:   0.33,
		dfg.Store:  0.33,
		dfg.Nop:    0.00,
	}
}

// PEPower breaks down the power drawn by a single PE, in milliwatts.
type PEPower struct {
	PE      uint
	Mode    vf.Mode
	Class   vf.Class
	Static  float64
	Dynamic float64
	// Power of the SRAM port behind this PE (if any)
	SRAM float64
}

// Metrics summarises the performance and energy of one simulated run.  Units
// are nanoseconds, milliwatts and picojoules.
type Metrics struct {
	Throughput float64 `json:"throughput"`
	GOPS       float64 `json:"gops"`
	Latency    float64 `json:"latency"`
	Power      float64 `json:"power"`
	Energy     float64 `json:"energy"`
	EDP        float64 `json:"edp"`
	// Breakdown of total power
	TilePower  float64   `json:"tile_power"`
	ClockPower float64   `json:"clock_power"`
	SRAMPower  float64   `json:"sram_power"`
	PEs        []PEPower `json:"-"`
}

// Evaluate determines the power and energy of a simulated run.  Every PE draws
// static power according to its mode.  Dynamic power is the per-operation
// energy of its mode, scaled by the activity of its operator, at the rate it
// executed operations over the run.
func Evaluate(config *array.Config, table *vf.Table, modes vf.Assignment, r *sim.Result, nodes uint,
	opts Options) (Metrics, error) {
	var m = Metrics{
		Throughput: r.Throughput,
		GOPS:       r.Throughput * float64(nodes),
		Latency:    r.Latency,
	}
	//
	if r.Latency <= 0 {
		return m, fmt.Errorf("cannot evaluate power of run with latency %g", r.Latency)
	}
	//
	for _, pe := range config.PEs() {
		mode, ok := modes.Mode(pe.Id)
		if !ok {
			return m, fmt.Errorf("pe %d has no vf mode", pe.Id)
		}
		//
		var (
			class  = config.Class(pe.Id)
			rate   = float64(r.Ops[pe.Id]) / r.Latency
			weight = 1.0
		)
		//
		entry, err := table.Lookup(class, mode)
		if err != nil {
			return m, err
		}
		//
		if !pe.Routing {
			weight = opts.Weights[pe.Op]
		}
		//
		p := PEPower{PE: pe.Id, Mode: mode, Class: class, Static: entry.StaticPower}
		p.Dynamic = entry.DynamicPowerPerOp * weight * rate
		// One SRAM port, in the same mode, behind each memory access
		if config.HasSRAM(pe.Id) {
			sram, err := table.Lookup(vf.SRAM, mode)
			if err != nil {
				return m, err
			}
			//
			p.SRAM = sram.StaticPower + sram.DynamicPowerPerOp*rate
		}
		//
		m.PEs = append(m.PEs, p)
		m.TilePower += p.Static + p.Dynamic
		m.SRAMPower += p.SRAM
	}
	//
	m.ClockPower = opts.ClockRatio * m.TilePower
	m.Power = m.TilePower + m.ClockPower + m.SRAMPower
	m.Energy = m.Power * m.Latency
	m.EDP = m.Energy * m.Latency
	//
	return m, nil
}

func (m Metrics) String() string {
	return fmt.Sprintf("%.3f GOPS, %.2f ns, %.2f mW, %.1f pJ", m.GOPS, m.Latency, m.Power, m.Energy)
}

// Comparison relates the metrics of one run to those of a baseline.  Values
// above one indicate the run is faster, draws more power, or is more energy
// efficient.
type Comparison struct {
	Speedup         float64 `json:"speedup"`
	ThroughputRatio float64 `json:"throughput_ratio"`
	PowerRatio      float64 `json:"power_ratio"`
	EfficiencyRatio float64 `json:"eeff_ratio"`
}

// Compare a run against a baseline.  Both runs should cover the same number of
// iterations, so that they perform the same work.
func Compare(base, other Metrics) Comparison {
	return Comparison{
		Speedup:         base.Latency / other.Latency,
		ThroughputRatio: other.Throughput / base.Throughput,
		PowerRatio:      other.Power / base.Power,
		EfficiencyRatio: base.Energy / other.Energy,
	}
}

func (c Comparison) String() string {
	return fmt.Sprintf("speedup %.2fx, power %.2fx, energy efficiency %.2fx", c.Speedup, c.PowerRatio,
		c.EfficiencyRatio)
}
