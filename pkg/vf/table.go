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
	"sync"
)

// Entry holds the characterisation of one class of hardware block operating in
// one mode.  Periods are in nanoseconds, power in milliwatts and dynamic
// energy in picojoules per executed operation (i.e. milliwatts per operation
// per nanosecond).
type Entry struct {
	Period            float64 `json:"period"`
	Voltage           float64 `json:"voltage"`
	StaticPower       float64 `json:"static"`
	DynamicPowerPerOp float64 `json:"dynamic"`
}

// LookupError is returned when a table has no entry for a given class and
// mode.
type LookupError struct {
	Class Class
	Mode  Mode
}

func (p *LookupError) Error() string {
	return fmt.Sprintf("no characterisation for %s pe in %s mode", p.Class, p.Mode)
}

type tableKey struct {
	class Class
	mode  Mode
}

// Table is an immutable characterisation of every (class, mode) pair.
type Table struct {
	entries map[tableKey]Entry
}

// NewTable constructs a table from a nested map of entries, checking every
// entry is physically meaningful.  Missing pairs are permitted, and will be
// reported as a LookupError when used.
func NewTable(entries map[Class]map[Mode]Entry) (*Table, error) {
	table := &Table{make(map[tableKey]Entry)}
	//
	for class, modes := range entries {
		for mode, entry := range modes {
			if entry.Period <= 0 {
				return nil, fmt.Errorf("%s pe in %s mode has non-positive period %g", class, mode, entry.Period)
			} else if entry.StaticPower < 0 || entry.DynamicPowerPerOp < 0 {
				return nil, fmt.Errorf("%s pe in %s mode has negative power", class, mode)
			}
			//
			table.entries[tableKey{class, mode}] = entry
		}
	}
	//
	return table, nil
}

// Lookup returns the characterisation for a given class and mode.
func (p *Table) Lookup(class Class, mode Mode) (Entry, error) {
	if entry, ok := p.entries[tableKey{class, mode}]; ok {
		return entry, nil
	}
	//
	return Entry{}, &LookupError{class, mode}
}

// Period is a convenience returning just the clock period of a given class and
// mode.
func (p *Table) Period(class Class, mode Mode) (float64, error) {
	entry, err := p.Lookup(class, mode)
	//
	return entry.Period, err
}

// MarshalJSON writes the table in the same nested layout accepted by
// LoadTable.
func (p *Table) MarshalJSON() ([]byte, error) {
	var data = make(map[string]map[string]Entry)
	//
	for key, entry := range p.entries {
		class := key.class.String()
		if data[class] == nil {
			data[class] = make(map[string]Entry)
		}
		//
		data[class][key.mode.String()] = entry
	}
	//
	return json.Marshal(data)
}

// LoadTable parses a table from JSON of the form
//
//	{ "arithmetic": { "nominal": { "period": 1.0, "voltage": 0.9, "static": 0.6, "dynamic": 5.5 }, ... }, ... }
func LoadTable(bytes []byte) (*Table, error) {
	var (
		raw     map[string]map[string]Entry
		entries = make(map[Class]map[Mode]Entry)
	)
	//
	if err := json.Unmarshal(bytes, &raw); err != nil {
		return nil, err
	}
	//
	for cname, modes := range raw {
		class, err := ParseClass(cname)
		if err != nil {
			return nil, err
		}
		//
		entries[class] = make(map[Mode]Entry)
		//
		for mname, entry := range modes {
			mode, err := ParseMode(mname)
			if err != nil {
				return nil, err
			}
			//
			entries[class][mode] = entry
		}
	}
	//
	return NewTable(entries)
}

var (
	defaultTable     *Table
	defaultTableOnce sync.Once
)

// Default returns the process-wide table characterised from the default
// parameters.  It is built once, on first use, and never modified afterwards.
func Default() *Table {
	defaultTableOnce.Do(func() {
		table, err := Characterize(DefaultParameters())
		if err != nil {
			panic(err)
		}
		//
		defaultTable = table
	})
	//
	return defaultTable
}
