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
package array

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/dfg"
	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/util/collection/set"
	"github.com/cornell-brg/torng-uecgra-scripts-hpca2021/pkg/vf"
)

// RouteOp is the operator name given to routing-only PEs.
const RouteOp = "route"

// PESpec describes a single PE as written in a configuration, before any
// validation.
type PESpec struct {
	Id uint
	X  uint
	Y  uint
	// Operator name, or RouteOp for a routing-only PE.
	Op string
	// Mapped DFG node (operator PEs only).
	Node *dfg.NodeId
	// Declared source and destination PEs.
	Src []uint
	Dst []uint
}

// PE is a validated processing element.
type PE struct {
	Id uint
	X  uint
	Y  uint
	// Routing-only PEs forward values without computing.
	Routing bool
	// Operator and mapped node (operator PEs only).
	Op   dfg.Op
	Node dfg.NodeId
	// Linked PEs in ascending order.
	Src []uint
	Dst []uint
}

// ConfigError reports an invalid array configuration.  PE identifies the
// offending PE, or is negative when the problem concerns the DFG as a whole
// (e.g. an unmapped node).
type ConfigError struct {
	PE  int
	Msg string
}

func (p *ConfigError) Error() string {
	if p.PE < 0 {
		return fmt.Sprintf("invalid configuration: %s", p.Msg)
	}
	//
	return fmt.Sprintf("invalid configuration at pe %d: %s", p.PE, p.Msg)
}

func peError(pe uint, format string, args ...any) *ConfigError {
	return &ConfigError{int(pe), fmt.Sprintf(format, args...)}
}

// Config is an immutable, validated mapping of a DFG onto a grid of PEs.
type Config struct {
	width, height uint
	// PEs in ascending order of identifier
	pes []PE
	// Maps identifiers to indices in pes
	index map[uint]uint
	// Maps coordinates to PE identifiers
	coords map[[2]uint]uint
	// Maps DFG nodes to the PE executing them
	peOf map[dfg.NodeId]uint
	// Routing path of every DFG edge
	routes map[dfg.Edge][]uint
}

// Build validates a set of PE descriptions against the DFG they implement.
func Build(width, height uint, specs []PESpec, g *dfg.Graph) (*Config, error) {
	var c = &Config{
		width:  width,
		height: height,
		index:  make(map[uint]uint),
		coords: make(map[[2]uint]uint),
		peOf:   make(map[dfg.NodeId]uint),
		routes: make(map[dfg.Edge][]uint),
	}
	//
	if err := c.place(specs); err != nil {
		return nil, err
	} else if err := c.link(specs); err != nil {
		return nil, err
	} else if err := c.bind(specs, g); err != nil {
		return nil, err
	}
	//
	for _, e := range g.Edges() {
		route := c.findRoute(c.peOf[e.Src], c.peOf[e.Dst])
		//
		if route == nil {
			return nil, peError(c.peOf[e.Src], "no route for dfg edge %s", e)
		}
		//
		c.routes[e] = route
	}
	//
	return c, nil
}

// Position every PE, checking coordinates and identifiers are unique.
func (c *Config) place(specs []PESpec) error {
	var sorted = slices.Clone(specs)
	//
	slices.SortStableFunc(sorted, func(l, r PESpec) int { return cmp.Compare(l.Id, r.Id) })
	//
	for _, s := range sorted {
		xy := [2]uint{s.X, s.Y}
		//
		if s.X >= c.width || s.Y >= c.height {
			return peError(s.Id, "(%d,%d) outside %dx%d grid", s.X, s.Y, c.width, c.height)
		} else if _, ok := c.index[s.Id]; ok {
			return peError(s.Id, "duplicate pe")
		} else if other, ok := c.coords[xy]; ok {
			return peError(s.Id, "(%d,%d) already occupied by pe %d", s.X, s.Y, other)
		}
		//
		c.index[s.Id] = uint(len(c.pes))
		c.coords[xy] = s.Id
		c.pes = append(c.pes, PE{Id: s.Id, X: s.X, Y: s.Y})
	}
	//
	return nil
}

// Link PEs together.  A link exists when either end declares it.
func (c *Config) link(specs []PESpec) error {
	var (
		srcs = make([]*set.SortedSet[uint], len(c.pes))
		dsts = make([]*set.SortedSet[uint], len(c.pes))
	)
	//
	for i := range c.pes {
		srcs[i] = set.NewSortedSet[uint]()
		dsts[i] = set.NewSortedSet[uint]()
	}
	//
	for _, s := range specs {
		i := c.index[s.Id]
		//
		for _, src := range s.Src {
			j, ok := c.index[src]
			if !ok {
				return peError(s.Id, "unknown source pe %d", src)
			}
			//
			srcs[i].Insert(src)
			dsts[j].Insert(s.Id)
		}
		//
		for _, dst := range s.Dst {
			j, ok := c.index[dst]
			if !ok {
				return peError(s.Id, "unknown destination pe %d", dst)
			}
			//
			dsts[i].Insert(dst)
			srcs[j].Insert(s.Id)
		}
	}
	//
	for i := range c.pes {
		c.pes[i].Src = srcs[i].ToArray()
		c.pes[i].Dst = dsts[i].ToArray()
	}
	//
	return nil
}

// Bind operator PEs to the DFG nodes they execute.
func (c *Config) bind(specs []PESpec, g *dfg.Graph) error {
	for _, s := range specs {
		var pe = &c.pes[c.index[s.Id]]
		//
		if s.Op == RouteOp {
			if s.Node != nil {
				return peError(s.Id, "routing pe mapped to dfg node %d", *s.Node)
			}
			//
			pe.Routing = true
			//
			continue
		}
		//
		op, err := dfg.ParseOp(s.Op)
		//
		if err != nil {
			return peError(s.Id, "%s", err.Error())
		} else if s.Node == nil {
			return peError(s.Id, "operator pe not mapped to any dfg node")
		} else if !g.Has(*s.Node) {
			return peError(s.Id, "unknown dfg node %d", *s.Node)
		} else if other, ok := c.peOf[*s.Node]; ok {
			return peError(s.Id, "dfg node %d already mapped to pe %d", *s.Node, other)
		}
		//
		var (
			node  = g.Node(*s.Node)
			fanIn = uint(len(g.InEdges(node.Id)))
		)
		//
		if node.Op != op {
			return peError(s.Id, "operator %s incompatible with dfg node %d (%s)", op, node.Id, node.Op)
		} else if fanIn < op.MinInputs() || fanIn > op.MaxInputs() {
			return peError(s.Id, "operator %s cannot accept %d inputs", op, fanIn)
		}
		//
		pe.Op = op
		pe.Node = node.Id
		c.peOf[node.Id] = s.Id
	}
	// Check every node is mapped
	for _, n := range g.Nodes() {
		if _, ok := c.peOf[n.Id]; !ok {
			return &ConfigError{-1, fmt.Sprintf("dfg node %d not mapped to any pe", n.Id)}
		}
	}
	//
	return nil
}

// Width returns the number of grid columns.
func (c *Config) Width() uint {
	return c.width
}

// Height returns the number of grid rows.
func (c *Config) Height() uint {
	return c.height
}

// Len returns the number of PEs.
func (c *Config) Len() uint {
	return uint(len(c.pes))
}

// PEs returns every PE in ascending order of identifier.
func (c *Config) PEs() []PE {
	return slices.Clone(c.pes)
}

// Ids returns the identifier of every PE in ascending order.
func (c *Config) Ids() []uint {
	var ids = make([]uint, len(c.pes))
	//
	for i, pe := range c.pes {
		ids[i] = pe.Id
	}
	//
	return ids
}

// PE returns the PE with a given identifier, and whether it exists.
func (c *Config) PE(id uint) (PE, bool) {
	if i, ok := c.index[id]; ok {
		return c.pes[i], true
	}
	//
	return PE{}, false
}

// At returns the PE at a given location, and whether one exists.
func (c *Config) At(x, y uint) (PE, bool) {
	if id, ok := c.coords[[2]uint{x, y}]; ok {
		return c.PE(id)
	}
	//
	return PE{}, false
}

// PEOf returns the PE executing a given DFG node.
func (c *Config) PEOf(node dfg.NodeId) (uint, bool) {
	id, ok := c.peOf[node]
	return id, ok
}

// NodeOf returns the DFG node executed by a given PE, if any.
func (c *Config) NodeOf(pe uint) (dfg.NodeId, bool) {
	if p, ok := c.PE(pe); ok && !p.Routing {
		return p.Node, true
	}
	//
	return 0, false
}

// Class returns the hardware class of a given PE, which determines how it is
// characterised.
func (c *Config) Class(pe uint) vf.Class {
	if p, ok := c.PE(pe); ok && !p.Routing {
		return vf.Arithmetic
	}
	//
	return vf.Routing
}

// HasSRAM determines whether a given PE accesses an SRAM port.
func (c *Config) HasSRAM(pe uint) bool {
	p, ok := c.PE(pe)
	//
	return ok && !p.Routing && p.Op.MemoryAccess()
}
