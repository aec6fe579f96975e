// Copyright (c) 2025, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cable

import (
	"fmt"
	"log"

	"github.com/chewxy/math32"
	"github.com/emer/myelin/chans"
)

// Comp is one electrically lumped compartment (cylinder) in the cable model.
// Geometry is in um, axial resistivity in ohm*cm, membrane capacitance in
// uF/cm^2, matching the standard conventions.  Exactly one membrane
// mechanism (HH or Pas) is attached.  State and derived unit-converted
// factors are maintained by the owning Sim.
type Comp struct {
	Nm   string  `desc:"unique name of this compartment within its Sim"`
	L    float32 `desc:"length in um"`
	Diam float32 `desc:"diameter in um"`
	Ra   float32 `def:"70" desc:"axial resistivity in ohm*cm"`
	Cm   float32 `def:"1" desc:"specific membrane capacitance in uF/cm^2 -- 0.02 for myelinated compartments"`
	Nseg int     `def:"1" desc:"number of internal segments -- fixed at 1 in this model: each compartment is a single lumped RC node"`

	Mech chans.MechType  `desc:"which membrane mechanism variant is attached"`
	HH   chans.HHParams  `viewif:"Mech=HH" desc:"Hodgkin-Huxley parameters, for excitable (node) compartments"`
	Pas  chans.PasParams `viewif:"Mech=Pas" desc:"passive parameters, for myelinated compartments"`

	Vm float32 `inactive:"+" desc:"membrane potential in mV"`
	M  float32 `inactive:"+" desc:"HH sodium activation gate"`
	H  float32 `inactive:"+" desc:"HH sodium inactivation gate"`
	N  float32 `inactive:"+" desc:"HH potassium activation gate"`

	Idx int `view:"-" desc:"index of this compartment in the Sim arena"`
	Par int `view:"-" desc:"arena index of the parent compartment that this one's proximal (0) end connects to, or -1 for the root"`

	area  float32 // membrane area in cm^2
	cap   float32 // total capacitance in nF
	gsc   float32 // conductance scale: S/cm^2 -> uS for this area
	rhalf float32 // axial resistance of one half-length in MOhm
}

// Name returns the compartment name.
func (cm *Comp) Name() string { return cm.Nm }

// SetHH attaches the Hodgkin-Huxley mechanism with given parameters,
// replacing any previously attached mechanism.
func (cm *Comp) SetHH(hp chans.HHParams) {
	cm.Mech = chans.HH
	cm.HH = hp
	cm.HH.Update()
}

// SetPas attaches the passive mechanism with given parameters,
// replacing any previously attached mechanism.
func (cm *Comp) SetPas(pp chans.PasParams) {
	cm.Mech = chans.Pas
	cm.Pas = pp
}

// updtUnits computes the derived per-compartment unit conversion factors:
// membrane area (cm^2), total capacitance (nF), the S/cm^2 -> uS
// conductance scale, and the half-length axial resistance (MOhm).
// Units follow the mV / ms / nA / uS / nF / MOhm scheme throughout.
func (cm *Comp) updtUnits() {
	lcm := cm.L * 1e-4    // um -> cm
	dcm := cm.Diam * 1e-4 // um -> cm
	cm.area = math32.Pi * dcm * lcm
	cm.cap = cm.Cm * cm.area * 1e3 // uF -> nF
	cm.gsc = cm.area * 1e6         // S -> uS
	cross := math32.Pi * dcm * dcm / 4
	cm.rhalf = cm.Ra * (lcm / 2) / cross * 1e-6 // Ohm -> MOhm
}

// AddComp declares a new compartment with given name, length and diameter
// (um), axial resistivity (ohm*cm), and membrane capacitance (uF/cm^2).
// Fails with an invalid topology error for non-positive geometry.
// The compartment has no mechanism attached yet: callers must SetHH or
// SetPas before the first Finitialize.
func (sm *Sim) AddComp(name string, l, diam, ra, cmem float32) (*Comp, error) {
	if l <= 0 || diam <= 0 || ra <= 0 || cmem <= 0 {
		err := fmt.Errorf("cable.AddComp %s: L %g, Diam %g, Ra %g, Cm %g must all be positive: %w", name, l, diam, ra, cmem, ErrInvalidTopology)
		log.Println(err)
		return nil, err
	}
	cp := &Comp{Nm: name, L: l, Diam: diam, Ra: ra, Cm: cmem, Nseg: 1, Idx: len(sm.Comps), Par: -1}
	cp.updtUnits()
	sm.Comps = append(sm.Comps, cp)
	sm.order = nil
	return cp, nil
}

// CompByName returns the compartment with given name, nil if not found.
func (sm *Sim) CompByName(name string) *Comp {
	for _, cp := range sm.Comps {
		if cp.Nm == name {
			return cp
		}
	}
	return nil
}

// Connect attaches the proximal (0) end of child onto the distal (1) end of
// parent, extending the cable.  Each compartment can have at most one
// parent, and connections must not form a cycle.
func (sm *Sim) Connect(child, parent *Comp) error {
	if child == nil || parent == nil || child == parent {
		err := fmt.Errorf("cable.Connect: child and parent must be distinct non-nil compartments: %w", ErrInvalidTopology)
		log.Println(err)
		return err
	}
	if child.Par >= 0 {
		err := fmt.Errorf("cable.Connect: %s already has parent %s: %w", child.Nm, sm.Comps[child.Par].Nm, ErrInvalidTopology)
		log.Println(err)
		return err
	}
	for p := parent; p != nil; {
		if p == child {
			err := fmt.Errorf("cable.Connect: %s -> %s would form a cycle: %w", child.Nm, parent.Nm, ErrInvalidTopology)
			log.Println(err)
			return err
		}
		if p.Par < 0 {
			break
		}
		p = sm.Comps[p.Par]
	}
	child.Par = parent.Idx
	sm.order = nil
	return nil
}
