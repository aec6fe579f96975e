// Copyright (c) 2025, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package fiber builds MRG-style myelinated nerve fibers as chains of cable
compartments: excitable nodes of Ranvier separated by passive paranode,
juxtaparanode, and internode compartments, repeating in strict linear
sequence and terminated by a trailing node.

A fiber with N nodes has exactly N-1 of each myelinated compartment role.
The stimulation site is the middle node (index N/2) and the default
recording site is the last node, so that firing detected there reflects a
propagated action potential rather than local depolarization at the
stimulus.
*/
package fiber

import (
	"fmt"
	"log"

	"github.com/emer/myelin/cable"
	"github.com/emer/myelin/chans"
	"github.com/goki/ki/kit"
)

//////////////////////////////////////////////////////////////////////////////////////
//  Role

// Role is the position of a compartment within the repeating fiber group.
type Role int

//go:generate stringer -type=Role

var KiT_Role = kit.Enums.AddEnum(RoleN, kit.NotBitFlag, nil)

func (ev Role) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *Role) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// NodeComp is the short excitable node of Ranvier.
	NodeComp Role = iota

	// ParanodeComp is the short passive region flanking the node.
	ParanodeComp

	// JuxtaComp is the juxtaparanode between paranode and internode.
	JuxtaComp

	// InternodeComp is the long myelinated internodal compartment.
	InternodeComp

	RoleN
)

//////////////////////////////////////////////////////////////////////////////////////
//  BuildParams

// BuildParams are the electrical parameters used for every compartment of
// a fiber.  Node compartments get the full membrane capacitance and the HH
// mechanism; all myelin-covered roles get a strongly reduced capacitance
// (approximating the capacitance-shunting effect of the myelin wrap) and
// the passive mechanism.
type BuildParams struct {
	Ra       float32         `def:"70" desc:"axial resistivity in ohm*cm for all compartments"`
	CmNode   float32         `def:"1" desc:"node membrane capacitance in uF/cm^2"`
	CmMyelin float32         `def:"0.02" desc:"membrane capacitance in uF/cm^2 for paranode, juxtaparanode and internode -- reduced to simulate myelin"`
	Node     chans.HHParams  `view:"inline" desc:"excitable mechanism parameters for nodes of Ranvier"`
	Myelin   chans.PasParams `view:"inline" desc:"passive mechanism parameters for all myelinated compartments"`
	Geom     GeomParams      `view:"inline" desc:"diameter-keyed geometry rules"`
}

func (bp *BuildParams) Defaults() {
	bp.Ra = 70
	bp.CmNode = 1
	bp.CmMyelin = 0.02
	bp.Node.Defaults()
	bp.Myelin.Defaults()
	bp.Geom.Defaults()
}

// Update must be called after any changes to parameters
func (bp *BuildParams) Update() {
	bp.Node.Update()
	bp.Myelin.Update()
	bp.Geom.Update()
}

//////////////////////////////////////////////////////////////////////////////////////
//  Fiber

// Fiber is one built fiber: the ordered compartment handles per role, and
// the default stimulation / recording node indexes.  It is constructed
// once per diameter configuration and persists for all trials against it.
type Fiber struct {
	Diam       float32       `desc:"fiber diameter in um used for construction"`
	Nodes      []*cable.Comp `desc:"nodes of Ranvier, in proximal-to-distal order"`
	Paranodes  []*cable.Comp `desc:"paranodes -- one fewer than nodes"`
	Juxtas     []*cable.Comp `desc:"juxtaparanodes -- one fewer than nodes"`
	Internodes []*cable.Comp `desc:"internodes -- one fewer than nodes"`
	StimIndex  int           `desc:"default stimulation site: the middle node, index len(Nodes)/2"`
	RecIndex   int           `desc:"default recording site: the last (most distal) node"`
}

// NNodes returns the number of nodes of Ranvier.
func (fb *Fiber) NNodes() int { return len(fb.Nodes) }

// Comp returns the compartment at the given repeating-group index and
// role, nil if out of range.  Group i spans node_i through intern_i; the
// trailing node is group NNodes-1.
func (fb *Fiber) Comp(group int, role Role) *cable.Comp {
	var cps []*cable.Comp
	switch role {
	case NodeComp:
		cps = fb.Nodes
	case ParanodeComp:
		cps = fb.Paranodes
	case JuxtaComp:
		cps = fb.Juxtas
	case InternodeComp:
		cps = fb.Internodes
	}
	if group < 0 || group >= len(cps) {
		return nil
	}
	return cps[group]
}

// StimNode returns the default stimulation compartment (middle node).
func (fb *Fiber) StimNode() *cable.Comp { return fb.Nodes[fb.StimIndex] }

// RecNode returns the default recording compartment (last node).
func (fb *Fiber) RecNode() *cable.Comp { return fb.Nodes[fb.RecIndex] }

//////////////////////////////////////////////////////////////////////////////////////
//  Build

// Build constructs a myelinated fiber with given diameter (um) and number
// of nodes in the given solver instance, wiring
// node[i] -> paranode[i] -> juxta[i] -> intern[i] -> node[i+1] in strict
// linear sequence.  Validation is fail-fast: with diam <= 0 or nNodes < 2
// no compartment is created.  The solver's compartment registry is mutated
// as a side effect, as expected.
func (bp *BuildParams) Build(sm *cable.Sim, diam float32, nNodes int) (*Fiber, error) {
	if diam <= 0 {
		err := fmt.Errorf("fiber.Build: diameter must be positive, got %g: %w", diam, cable.ErrInvalidTopology)
		log.Println(err)
		return nil, err
	}
	if nNodes < 2 {
		err := fmt.Errorf("fiber.Build: need at least 2 nodes for an internodal segment, got %d: %w", nNodes, cable.ErrInvalidTopology)
		log.Println(err)
		return nil, err
	}
	bp.Update()
	fb := &Fiber{Diam: diam}
	for i := 0; i < nNodes; i++ {
		nd, err := sm.AddComp(fmt.Sprintf("node_%d", i), bp.Geom.NodeLen(), diam, bp.Ra, bp.CmNode)
		if err != nil {
			return nil, err
		}
		nd.SetHH(bp.Node)
		fb.Nodes = append(fb.Nodes, nd)

		if i == nNodes-1 {
			break
		}
		pn, err := sm.AddComp(fmt.Sprintf("paranode_%d", i), bp.Geom.ParanodeLen(diam), diam, bp.Ra, bp.CmMyelin)
		if err != nil {
			return nil, err
		}
		pn.SetPas(bp.Myelin)
		fb.Paranodes = append(fb.Paranodes, pn)

		jx, err := sm.AddComp(fmt.Sprintf("juxta_%d", i), bp.Geom.JuxtaLen(diam), diam, bp.Ra, bp.CmMyelin)
		if err != nil {
			return nil, err
		}
		jx.SetPas(bp.Myelin)
		fb.Juxtas = append(fb.Juxtas, jx)

		in, err := sm.AddComp(fmt.Sprintf("intern_%d", i), bp.Geom.InternodeLen(diam), diam, bp.Ra, bp.CmMyelin)
		if err != nil {
			return nil, err
		}
		in.SetPas(bp.Myelin)
		fb.Internodes = append(fb.Internodes, in)
	}
	for i := 0; i < nNodes-1; i++ {
		if err := sm.Connect(fb.Paranodes[i], fb.Nodes[i]); err != nil {
			return nil, err
		}
		if err := sm.Connect(fb.Juxtas[i], fb.Paranodes[i]); err != nil {
			return nil, err
		}
		if err := sm.Connect(fb.Internodes[i], fb.Juxtas[i]); err != nil {
			return nil, err
		}
		if err := sm.Connect(fb.Nodes[i+1], fb.Internodes[i]); err != nil {
			return nil, err
		}
	}
	fb.StimIndex = nNodes / 2
	fb.RecIndex = nNodes - 1
	return fb, nil
}
