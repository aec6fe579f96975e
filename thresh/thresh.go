// Copyright (c) 2025, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package thresh estimates the stimulus threshold of a myelinated fiber: the
minimum multiplicative scale factor on a fixed base current waveform that
evokes a propagated action potential at a distal recording node.

The search is a bisection over the scale factor, driving one full cable
simulation per tested scale and classifying the recorded voltage trace as
fired / not fired.  Bisection is only valid if firing is monotone
non-decreasing in the scale -- that precondition is assumed, not verified:
for pathological waveform shapes a violation produces a meaningless result
without any detectable error.

The search converges to the smallest known-firing scale, so the returned
threshold overestimates by at most the tolerance.
*/
package thresh

import (
	"fmt"
	"log"

	"github.com/emer/myelin/cable"
	"github.com/emer/myelin/fiber"
)

// SearchParams are the parameters of the bisection threshold search.
type SearchParams struct {
	Lo       float32 `def:"0" desc:"lower scale bound -- must not evoke firing (checked)"`
	Hi       float32 `def:"1000" desc:"upper scale bound -- must evoke firing, otherwise the search reports not-bracketed"`
	Tol      float32 `def:"0.01" desc:"convergence tolerance on the scale bracket width"`
	MaxIters int     `def:"20" desc:"maximum number of bisection iterations -- bounds total solver runs even when Tol is not reached"`
	Dt       float32 `def:"0.025" desc:"solver step size in ms for every trial"`
	RunPad   float32 `def:"5" desc:"extra simulation time in ms past the last waveform sample, allowing the action potential to propagate to the recording site"`
	VInit    float32 `def:"-80" desc:"uniform initial membrane potential in mV for every trial -- the leak reversal potential"`
	PeakThr  float32 `def:"0" desc:"depolarization threshold in mV on the peak of the recorded trace for the default firing classifier"`
}

func (sp *SearchParams) Defaults() {
	sp.Lo = 0
	sp.Hi = 1000
	sp.Tol = 0.01
	sp.MaxIters = 20
	sp.Dt = 0.025
	sp.RunPad = 5
	sp.VInit = -80
	sp.PeakThr = 0
}

func (sp *SearchParams) Update() {
}

// Search runs threshold trials against one fiber in one solver instance.
// Trials are strictly sequential: the solver holds instance-wide mutable
// state, so a Search must not be shared across goroutines.  Independent
// fibers in independent Sims can run concurrently.
type Search struct {
	Params SearchParams `view:"inline" desc:"search parameters"`
	Sim    *cable.Sim   `desc:"solver instance holding the fiber"`
	Fiber  *fiber.Fiber `desc:"fiber under test"`

	RecIndex int `desc:"node index where firing is detected -- defaults to the fiber's last node"`

	// Fired classifies a recorded voltage trace; nil uses the default
	// peak > PeakThr rule.  Peak-over-threshold does not distinguish a
	// propagated spike from strong local depolarization, so models with
	// different resting potentials should supply their own classifier.
	Fired func(vms []float32) bool

	Probe   *cable.Probe `desc:"recording probe at the detection node, attached on first use and reused across trials"`
	NTrials int          `inactive:"+" desc:"number of solver trials run by the last Find"`
}

// NewSearch returns a Search on the given fiber with default parameters.
func NewSearch(sm *cable.Sim, fb *fiber.Fiber) *Search {
	ts := &Search{Sim: sm, Fiber: fb, RecIndex: fb.RecIndex}
	ts.Params.Defaults()
	return ts
}

// fired applies the configured trace classifier.
func (ts *Search) fired() bool {
	if ts.Fired != nil {
		return ts.Fired(ts.Probe.Vms)
	}
	return ts.Probe.MaxVm() > ts.Params.PeakThr
}

// Trial runs one trial: scale the base waveform, attach it fresh at the
// fiber's stimulation node, reinitialize everything to VInit, run to the
// end of the waveform plus RunPad, release the stimulus, and classify the
// recorded trace at the detection node.  The stimulus never outlives the
// trial, and the probe is reset by the reinitialization, so back-to-back
// trials are independent.
func (ts *Search) Trial(times, base []float32, scale float32) (bool, error) {
	if ts.Probe == nil {
		ts.Probe = ts.Sim.RecordVm(ts.Fiber.Nodes[ts.RecIndex])
	}
	amps := make([]float32, len(base))
	for i, b := range base {
		amps[i] = b * scale
	}
	st, err := ts.Sim.AttachStim(ts.Fiber.StimNode(), times, amps)
	if err != nil {
		return false, err
	}
	defer st.Release()

	ts.Sim.Dt = ts.Params.Dt
	ts.Sim.Finitialize(ts.Params.VInit)
	ts.NTrials++
	if err := ts.Sim.RunTo(times[len(times)-1] + ts.Params.RunPad); err != nil {
		return false, err
	}
	return ts.fired(), nil
}

// Find bisects the threshold scale factor for the given base waveform.
// Returns (scale, true, nil) on success, with scale the smallest
// known-firing value, within Tol of the true threshold unless MaxIters was
// exhausted first.  Returns (0, false, nil) when Hi fails to evoke firing:
// the bracket must be widened by the caller -- a reportable outcome, not an
// error.  Returns Lo immediately if Lo already fires.  Solver errors abort
// the remaining iterations and propagate.
func (ts *Search) Find(times, base []float32) (float32, bool, error) {
	if err := cable.ValidWaveform(times, base); err != nil {
		return 0, false, err
	}
	ts.NTrials = 0
	sp := &ts.Params
	fires := func(scale float32) (bool, error) {
		return ts.Trial(times, base, scale)
	}
	hf, err := fires(sp.Hi)
	if err != nil {
		return 0, false, err
	}
	if !hf {
		err := fmt.Errorf("thresh.Find: scale hi %g did not evoke firing -- widen the bracket", sp.Hi)
		log.Println(err)
		return 0, false, nil
	}
	lf, err := fires(sp.Lo)
	if err != nil {
		return 0, false, err
	}
	if lf {
		return sp.Lo, true, nil
	}
	thr, err := bisect(fires, sp.Lo, sp.Hi, sp.Tol, sp.MaxIters)
	if err != nil {
		return 0, false, err
	}
	return thr, true, nil
}

// bisect narrows a (lo, hi) bracket over a monotone boolean predicate,
// with fires(lo) == false and fires(hi) == true already established.
// Returns hi: the smallest scale known to fire.
func bisect(fires func(float32) (bool, error), lo, hi, tol float32, maxIters int) (float32, error) {
	for it := 0; it < maxIters; it++ {
		mid := 0.5 * (lo + hi)
		f, err := fires(mid)
		if err != nil {
			return 0, err
		}
		if f {
			hi = mid
		} else {
			lo = mid
		}
		if hi-lo < tol {
			break
		}
	}
	return hi, nil
}
