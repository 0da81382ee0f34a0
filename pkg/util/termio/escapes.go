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
package termio

import "fmt"

// Colour identifies one of the eight standard terminal colours.
type Colour uint

const (
	// TERM_BLACK represents black
	TERM_BLACK Colour = iota
	// TERM_RED represents red
	TERM_RED
	// TERM_GREEN represents green
	TERM_GREEN
	// TERM_YELLOW represents yellow
	TERM_YELLOW
	// TERM_BLUE represents blue
	TERM_BLUE
	// TERM_MAGENTA represents magenta
	TERM_MAGENTA
	// TERM_CYAN represents cyan
	TERM_CYAN
	// TERM_WHITE represents white
	TERM_WHITE
)

// AnsiEscape represents an ANSI escape code used for formatting text in a
// terminal.  Escapes are built up from a sequence of attributes, such as
// "\033[1;32m" for bold green text.
type AnsiEscape struct {
	attributes []uint
}

// NewAnsiEscape construct an empty escape
func NewAnsiEscape() AnsiEscape {
	return AnsiEscape{}
}

// ResetAnsiEscape constructs a reset term.
func ResetAnsiEscape() AnsiEscape {
	return AnsiEscape{[]uint{0}}
}

// BoldAnsiEscape constructs a bold term.
func BoldAnsiEscape() AnsiEscape {
	return AnsiEscape{[]uint{1}}
}

// FgColour sets the foreground colour
func (p AnsiEscape) FgColour(col Colour) AnsiEscape {
	return p.with(30 + uint(col))
}

func (p AnsiEscape) with(attribute uint) AnsiEscape {
	var attributes = make([]uint, len(p.attributes), len(p.attributes)+1)
	//
	copy(attributes, p.attributes)
	//
	return AnsiEscape{append(attributes, attribute)}
}

// Build constructs the final escape
func (p AnsiEscape) Build() string {
	var escape = "\033["
	//
	for i, attr := range p.attributes {
		if i != 0 {
			escape += ";"
		}
		//
		escape += fmt.Sprintf("%d", attr)
	}
	// Done
	return escape + "m"
}
