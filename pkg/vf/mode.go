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
	"encoding/json"
	"fmt"
	"strings"
)

// Mode identifies one of the discrete voltage-frequency operating points which
// can be assigned to a processing element.
type Mode uint8

const (
	// Rest is the low-voltage, low-frequency mode used for PEs with slack.
	Rest Mode = iota
	// Nominal is the default operating point.
	Nominal
	// Sprint is the high-voltage, high-frequency mode used for bottleneck PEs.
	Sprint
)

// Modes lists every mode in ascending order of frequency.
var Modes = []Mode{Rest, Nominal, Sprint}

// ParseMode converts a textual mode into a Mode.  Matching is case insensitive,
// and the legacy names "slow" and "fast" are accepted for rest and sprint.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rest", "slow", "r":
		return Rest, nil
	case "nominal", "n":
		return Nominal, nil
	case "sprint", "fast", "s":
		return Sprint, nil
	}
	//
	return Nominal, fmt.Errorf("unknown vf mode \"%s\"", s)
}

// ParseModes parses a list of modes, such as given on the command line.
func ParseModes(items []string) ([]Mode, error) {
	var modes []Mode
	//
	for _, item := range items {
		m, err := ParseMode(item)
		if err != nil {
			return nil, err
		}
		//
		modes = append(modes, m)
	}
	//
	return modes, nil
}

func (m Mode) String() string {
	switch m {
	case Rest:
		return "rest"
	case Nominal:
		return "nominal"
	case Sprint:
		return "sprint"
	}
	//
	return fmt.Sprintf("mode(%d)", uint8(m))
}

// Short returns the single letter abbreviation of this mode, as used in
// assignment labels.
func (m Mode) Short() string {
	return m.String()[:1]
}

// MarshalJSON encodes a mode by name.
func (m Mode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON decodes a mode from its name.
func (m *Mode) UnmarshalJSON(bytes []byte) error {
	var name string
	//
	if err := json.Unmarshal(bytes, &name); err != nil {
		return err
	}
	//
	mode, err := ParseMode(name)
	if err == nil {
		*m = mode
	}
	//
	return err
}

// Class identifies the kind of hardware block being characterised.
type Class uint8

const (
	// Arithmetic is a PE executing an operator.
	Arithmetic Class = iota
	// Routing is a PE used purely to forward data.
	Routing
	// SRAM is an SRAM port attached to a load/store PE.
	SRAM
)

// Classes lists every characterised class.
var Classes = []Class{Arithmetic, Routing, SRAM}

func (c Class) String() string {
	switch c {
	case Arithmetic:
		return "arithmetic"
	case Routing:
		return "routing"
	case SRAM:
		return "sram"
	}
	//
	return fmt.Sprintf("class(%d)", uint8(c))
}

// ParseClass converts a textual class into a Class.
func ParseClass(s string) (Class, error) {
	for _, c := range Classes {
		if strings.EqualFold(c.String(), s) {
			return c, nil
		}
	}
	//
	return Arithmetic, fmt.Errorf("unknown pe class \"%s\"", s)
}
