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
package dfg

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Op is the kind of operation performed by a node.  Concrete CGRA operators
// (e.g. "add" or "xor") are grouped into the kinds which matter for timing and
// power.
type Op uint8

const (
	// Nop performs no computation (e.g. constants).
	Nop Op = iota
	// Load reads from an SRAM port.
	Load
	// Store writes to an SRAM port.
	Store
	// Alu covers add, sub, shifts and bitwise logic.
	Alu
	// Mul is a multiply.
	Mul
	// Cmp covers equality and relational comparisons.
	Cmp
	// Phi selects between an initial and a loop-carried value.
	Phi
	// Branch steers a value based on a boolean.
	Branch
	// Copy forwards one of its operands.
	Copy
)

var opNames = []string{"nop", "load", "store", "alu", "mul", "cmp", "phi", "br", "cp"}

// operator aliases used by CGRA configurations.
var opAliases = map[string]Op{
	"nop": Nop, "zero": Nop, "const": Nop,
	"load": Load, "ld": Load,
	"store": Store, "st": Store,
	"alu": Alu, "add": Alu, "sub": Alu, "sll": Alu, "srl": Alu, "and": Alu, "or": Alu, "xor": Alu,
	"mul": Mul,
	"cmp": Cmp, "eq": Cmp, "ne": Cmp, "gt": Cmp, "geq": Cmp, "lt": Cmp, "leq": Cmp,
	"phi": Phi,
	"br": Branch, "branch": Branch,
	"cp": Copy, "cp0": Copy, "cp1": Copy,
}

// ParseOp converts an operator name into its kind.  Names are case
// insensitive, and a trailing quote (as used for some operators in CGRA
// configuration files) is ignored.
func ParseOp(name string) (Op, error) {
	key := strings.TrimRight(strings.ToLower(strings.TrimSpace(name)), "'")
	//
	if op, ok := opAliases[key]; ok {
		return op, nil
	}
	//
	return Nop, fmt.Errorf("unknown operator \"%s\"", name)
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	//
	return fmt.Sprintf("op(%d)", uint8(op))
}

// MinInputs returns the least number of inputs this operator accepts.
func (op Op) MinInputs() uint {
	switch op {
	case Nop, Load:
		return 0
	case Branch:
		return 2
	default:
		return 1
	}
}

// MaxInputs returns the greatest number of inputs this operator accepts.
func (op Op) MaxInputs() uint {
	switch op {
	case Nop:
		return 0
	case Load:
		return 1
	default:
		return 2
	}
}

// MemoryAccess returns true for operators which use an SRAM port.
func (op Op) MemoryAccess() bool {
	return op == Load || op == Store
}

// MarshalJSON encodes an operator by name.
func (op Op) MarshalJSON() ([]byte, error) {
	return json.Marshal(op.String())
}

// UnmarshalJSON decodes an operator from any of its names.
func (op *Op) UnmarshalJSON(bytes []byte) error {
	var name string
	//
	if err := json.Unmarshal(bytes, &name); err != nil {
		return err
	}
	//
	kind, err := ParseOp(name)
	if err == nil {
		*op = kind
	}
	//
	return err
}
