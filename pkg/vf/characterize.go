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
package vf

import (
	"fmt"
	"math"
)

// OperatingPoint is a voltage and clock period pair.
type OperatingPoint struct {
	Voltage float64
	Period  float64
}

// Parameters captures the first-order model from which a characterisation
// table is derived.  Dynamic energy scales with V^Exponent, leakage current is
// fixed so static power scales linearly with V.
type Parameters struct {
	// Operating point for each mode.  Periods are rationally related to the
	// nominal period, always rounded in the conservative direction.
	Points map[Mode]OperatingPoint
	// Dynamic energy (pJ) of a multiply executed at nominal voltage.
	MulEnergy float64
	// Fraction of total tile power that is static leakage when executing a
	// multiply at nominal voltage.
	Gamma float64
	// Ratio of SRAM bank leakage to tile leakage.
	Beta float64
	// Power-law exponent relating dynamic energy and voltage.
	Exponent float64
	// Dynamic activity of a routing (bypass) PE relative to a multiply.
	RoutingActivity float64
	// Dynamic activity of an SRAM access relative to a multiply.
	SRAMActivity float64
}

// DefaultParameters returns the parameters of the reference design.
func DefaultParameters() Parameters {
	return Parameters{
		Points: map[Mode]OperatingPoint{
			Rest:    {Voltage: 0.61, Period: 3.0},
			Nominal: {Voltage: 0.90, Period: 1.0},
			Sprint:  {Voltage: 1.23, Period: 2.0 / 3.0},
		},
		MulEnergy:       5.5,
		Gamma:           0.1,
		Beta:            2.0,
		Exponent:        2.0,
		RoutingActivity: 0.11,
		SRAMActivity:    0.82,
	}
}

// Characterize derives a full table from a set of model parameters.
func Characterize(p Parameters) (*Table, error) {
	nominal, ok := p.Points[Nominal]
	//
	if !ok {
		return nil, fmt.Errorf("characterisation requires a nominal operating point")
	} else if p.Gamma < 0 || p.Gamma >= 1 {
		return nil, fmt.Errorf("leakage fraction %g outside [0,1)", p.Gamma)
	} else if nominal.Voltage <= 0 || nominal.Period <= 0 {
		return nil, fmt.Errorf("invalid nominal operating point")
	}
	// Leakage current of a tile, derived from the static fraction at nominal
	// voltage when multiplying every cycle.
	var (
		nominalDynamic = p.MulEnergy / nominal.Period
		leakage        = (p.Gamma * nominalDynamic) / (nominal.Voltage * (1 - p.Gamma))
		entries        = make(map[Class]map[Mode]Entry)
	)
	//
	for _, class := range Classes {
		entries[class] = make(map[Mode]Entry)
	}
	//
	for mode, point := range p.Points {
		var (
			energy = p.MulEnergy * math.Pow(point.Voltage/nominal.Voltage, p.Exponent)
			static = point.Voltage * leakage
		)
		//
		entries[Arithmetic][mode] = Entry{point.Period, point.Voltage, static, energy}
		entries[Routing][mode] = Entry{point.Period, point.Voltage, static, p.RoutingActivity * energy}
		entries[SRAM][mode] = Entry{point.Period, point.Voltage, p.Beta * static, p.SRAMActivity * energy}
	}
	//
	return NewTable(entries)
}
