// Copyright (c) 2025, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cable

import (
	"fmt"
	"log"
)

// Stim is a point current source placed at the midpoint of a compartment,
// playing a piecewise-linearly interpolated (time, current) series into the
// cable.  Before the first time sample the source delivers the first
// sample's value, and 0 after the last -- the first-order-hold convention.
// A Stim is a trial-scoped resource: it must be Released at the end of the
// trial it was attached for, otherwise its waveform keeps contributing
// current in subsequent runs.
type Stim struct {
	Comp  *Comp     `desc:"compartment the current is injected into, at its midpoint"`
	Times []float32 `desc:"time samples in ms, non-decreasing"`
	Amps  []float32 `desc:"current samples in nA, same length as Times"`

	sim *Sim
}

// ValidWaveform checks a stimulus waveform: times and amps must have equal
// length >= 2 and times must be non-decreasing.  Returns an error wrapping
// ErrInvalidWaveform otherwise.
func ValidWaveform(times, amps []float32) error {
	if len(times) < 2 || len(times) != len(amps) {
		return fmt.Errorf("cable: waveform needs equal-length time / current series of length >= 2, got %d / %d: %w", len(times), len(amps), ErrInvalidWaveform)
	}
	for i := 1; i < len(times); i++ {
		if times[i] < times[i-1] {
			return fmt.Errorf("cable: waveform times must be non-decreasing, got %g after %g at index %d: %w", times[i], times[i-1], i, ErrInvalidWaveform)
		}
	}
	return nil
}

// AttachStim attaches a point current source at the midpoint of comp,
// injecting the given (times, amps) waveform.  The waveform slices are
// retained, not copied: the caller must keep them unchanged for the
// lifetime of the Stim.  Fails fast with an invalid waveform error before
// any solver state is touched.
func (sm *Sim) AttachStim(comp *Comp, times, amps []float32) (*Stim, error) {
	if err := ValidWaveform(times, amps); err != nil {
		log.Println(err)
		return nil, err
	}
	st := &Stim{Comp: comp, Times: times, Amps: amps, sim: sm}
	sm.Stims = append(sm.Stims, st)
	return st, nil
}

// Release detaches the stimulus from its Sim.  Safe to call more than once.
func (st *Stim) Release() {
	if st.sim == nil {
		return
	}
	for i, os := range st.sim.Stims {
		if os == st {
			st.sim.Stims = append(st.sim.Stims[:i], st.sim.Stims[i+1:]...)
			break
		}
	}
	st.sim = nil
}

// CurrentAt returns the injected current (nA) at time t (ms): linear
// interpolation within the sample range, the first sample's value before
// it, and 0 after the last sample.
func (st *Stim) CurrentAt(t float32) float32 {
	ts := st.Times
	n := len(ts)
	if t <= ts[0] {
		return st.Amps[0]
	}
	if t > ts[n-1] {
		return 0
	}
	for i := 1; i < n; i++ {
		if t <= ts[i] {
			if ts[i] == ts[i-1] {
				return st.Amps[i]
			}
			f := (t - ts[i-1]) / (ts[i] - ts[i-1])
			return st.Amps[i-1] + f*(st.Amps[i]-st.Amps[i-1])
		}
	}
	return 0
}
