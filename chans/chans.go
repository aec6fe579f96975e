// Copyright (c) 2025, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package chans provides the membrane mechanisms attached to cable
compartments: a Hodgkin-Huxley style excitable mechanism used at nodes of
Ranvier, and a passive (leak-only) mechanism used for the myelin-covered
paranode, juxtaparanode, and internode compartments.

All conductance densities are in S/cm^2, potentials in mV, and time in ms,
matching the standard biophysical conventions.  Every compartment carries
exactly one mechanism, selected by MechType -- the two variants are plain
parameter structs rather than an interface hierarchy, as only the solver
dispatches on them.
*/
package chans

import (
	"github.com/chewxy/math32"
	"github.com/goki/ki/kit"
)

//////////////////////////////////////////////////////////////////////////////////////
//  MechType

// MechType is the membrane mechanism variant attached to a compartment.
type MechType int

//go:generate stringer -type=MechType

var KiT_MechType = kit.Enums.AddEnum(MechTypeN, kit.NotBitFlag, nil)

func (ev MechType) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *MechType) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// NoMech means no mechanism has been attached yet -- only valid
	// transiently during construction, never in a built fiber.
	NoMech MechType = iota

	// HH is the excitable Hodgkin-Huxley mechanism (nodes of Ranvier).
	HH

	// Pas is the passive leak-only mechanism (myelinated compartments).
	Pas

	MechTypeN
)

//////////////////////////////////////////////////////////////////////////////////////
//  HHParams

// HHParams are Hodgkin-Huxley channel parameters for an excitable nodal
// compartment.  The conductance densities default to values well above the
// classic squid-axon ones, reflecting the concentrated channel density at
// nodes of Ranvier in a myelinated fiber.  Rate constants use the standard
// HH voltage dependencies with a Q10 temperature adjustment.
type HHParams struct {
	GbarNa  float32 `def:"0.18" min:"0" desc:"peak sodium conductance density in S/cm^2 -- well above the classic 0.12 squid value to mimic nodal excitability"`
	GbarK   float32 `def:"0.036" min:"0" desc:"peak delayed-rectifier potassium conductance density in S/cm^2"`
	GbarL   float32 `def:"0.0003" min:"0" desc:"leak conductance density in S/cm^2"`
	ENa     float32 `def:"50" desc:"sodium reversal potential in mV"`
	EK      float32 `def:"-77" desc:"potassium reversal potential in mV"`
	ELeak   float32 `def:"-80" desc:"leak reversal potential in mV -- also the uniform initial membrane potential for every trial"`
	Celsius float32 `def:"37" desc:"simulation temperature in degrees C -- scales all gating rates through Tadj"`

	Tadj float32 `view:"-" json:"-" xml:"-" desc:"Q10-derived rate multiplier = 3 ^ ((Celsius - 6.3) / 10)"`
}

func (hp *HHParams) Defaults() {
	hp.GbarNa = 0.18
	hp.GbarK = 0.036
	hp.GbarL = 0.0003
	hp.ENa = 50
	hp.EK = -77
	hp.ELeak = -80
	hp.Celsius = 37
	hp.Update()
}

// Update must be called after any changes to parameters
func (hp *HHParams) Update() {
	hp.Tadj = math32.Pow(3, (hp.Celsius-6.3)/10)
}

// vtrap computes x / (exp(x/y) - 1) with the singularity at x = 0 removed,
// as in the standard hh rate implementations.  The linear expansion is used
// for |x/y| < 1e-3: in float32 the exp(x/y)-1 form loses precision to
// cancellation well before that, while the series error there is ~1e-7.
func vtrap(x, y float32) float32 {
	if math32.Abs(x/y) < 1e-3 {
		return y * (1 - x/y/2)
	}
	return x / (math32.Exp(x/y) - 1)
}

// MRates returns the forward (alpha) and backward (beta) rate constants
// for the sodium activation gate m at membrane potential vm (mV).
func (hp *HHParams) MRates(vm float32) (alpha, beta float32) {
	alpha = 0.1 * vtrap(-(vm+40), 10)
	beta = 4 * math32.Exp(-(vm+65)/18)
	return
}

// HRates returns the rate constants for the sodium inactivation gate h.
func (hp *HHParams) HRates(vm float32) (alpha, beta float32) {
	alpha = 0.07 * math32.Exp(-(vm+65)/20)
	beta = 1 / (1 + math32.Exp(-(vm+35)/10))
	return
}

// NRates returns the rate constants for the potassium activation gate n.
func (hp *HHParams) NRates(vm float32) (alpha, beta float32) {
	alpha = 0.01 * vtrap(-(vm+55), 10)
	beta = 0.125 * math32.Exp(-(vm+65)/80)
	return
}

// GateInf returns the steady-state value alpha / (alpha + beta) for a gate.
func GateInf(alpha, beta float32) float32 {
	return alpha / (alpha + beta)
}

// GateTau returns the time constant (ms) for a gate, including the
// temperature adjustment factor.
func (hp *HHParams) GateTau(alpha, beta float32) float32 {
	return 1 / (hp.Tadj * (alpha + beta))
}

// InitGates returns the steady-state gate values m, h, n at membrane
// potential vm -- used by Finitialize to start every trial from a
// consistent resting configuration.
func (hp *HHParams) InitGates(vm float32) (m, h, n float32) {
	am, bm := hp.MRates(vm)
	ah, bh := hp.HRates(vm)
	an, bn := hp.NRates(vm)
	m = GateInf(am, bm)
	h = GateInf(ah, bh)
	n = GateInf(an, bn)
	return
}

// StepGates advances the gate state variables m, h, n by one time step dt
// (ms) at membrane potential vm, using the exponential (Rush-Larsen)
// integrator, which is unconditionally stable for these first-order gate
// equations.
func (hp *HHParams) StepGates(vm, dt float32, m, h, n *float32) {
	am, bm := hp.MRates(vm)
	*m = gateStep(*m, GateInf(am, bm), hp.GateTau(am, bm), dt)
	ah, bh := hp.HRates(vm)
	*h = gateStep(*h, GateInf(ah, bh), hp.GateTau(ah, bh), dt)
	an, bn := hp.NRates(vm)
	*n = gateStep(*n, GateInf(an, bn), hp.GateTau(an, bn), dt)
}

func gateStep(x, xinf, tau, dt float32) float32 {
	return xinf + (x-xinf)*math32.Exp(-dt/tau)
}

// G returns the instantaneous channel conductance densities (S/cm^2)
// for the given gate values: sodium, potassium, and leak.
func (hp *HHParams) G(m, h, n float32) (gna, gk, gl float32) {
	gna = hp.GbarNa * m * m * m * h
	gk = hp.GbarK * n * n * n * n
	gl = hp.GbarL
	return
}

//////////////////////////////////////////////////////////////////////////////////////
//  PasParams

// PasParams are passive membrane parameters for the myelin-covered
// compartments (paranode, juxtaparanode, internode): a single fixed leak
// conductance and reversal potential.
type PasParams struct {
	G float32 `def:"1e-05" min:"0" desc:"passive conductance density in S/cm^2 -- very low under myelin"`
	E float32 `def:"-80" desc:"passive reversal potential in mV"`
}

func (pp *PasParams) Defaults() {
	pp.G = 1e-5
	pp.E = -80
}

func (pp *PasParams) Update() {
}
