// Copyright (c) 2025, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package thresh

import (
	"errors"
	"testing"

	"github.com/emer/myelin/cable"
	"github.com/emer/myelin/fiber"
)

// synthetic monotone predicate: fires at and above truth
func stepAt(truth float32, calls *int) func(float32) (bool, error) {
	return func(scale float32) (bool, error) {
		*calls++
		return scale >= truth, nil
	}
}

func TestBisectConverges(t *testing.T) {
	tsts := []struct {
		truth, lo, hi, tol float32
	}{
		{137.4, 0, 1000, 0.1},
		{0.5, 0, 2000, 0.01},
		{1999, 0, 2000, 0.1},
		{500, 0, 1000, 1},
	}
	for _, ts := range tsts {
		calls := 0
		thr, err := bisect(stepAt(ts.truth, &calls), ts.lo, ts.hi, ts.tol, 40)
		if err != nil {
			t.Fatalf("bisect: %v\n", err)
		}
		if thr < ts.truth {
			t.Errorf("truth %g: result %g fails to fire\n", ts.truth, thr)
		}
		if thr-ts.truth >= ts.tol {
			t.Errorf("truth %g: result %g off by more than tol %g\n", ts.truth, thr, ts.tol)
		}
		if calls > 40 {
			t.Errorf("truth %g: %d calls\n", ts.truth, calls)
		}
	}
}

func TestBisectMaxIters(t *testing.T) {
	calls := 0
	thr, err := bisect(stepAt(123.456, &calls), 0, 1000, 0, 5)
	if err != nil {
		t.Fatalf("bisect: %v\n", err)
	}
	if calls != 5 {
		t.Errorf("%d calls, expected exactly 5\n", calls)
	}
	if thr < 123.456 {
		t.Errorf("result %g fails to fire\n", thr)
	}
}

func TestBisectError(t *testing.T) {
	boom := errors.New("solver blew up")
	calls := 0
	_, err := bisect(func(scale float32) (bool, error) {
		calls++
		if calls == 3 {
			return false, boom
		}
		return scale >= 100, nil
	}, 0, 1000, 0.1, 20)
	if !errors.Is(err, boom) {
		t.Errorf("expected propagated solver error, got %v\n", err)
	}
	if calls != 3 {
		t.Errorf("%d calls, expected abort at 3\n", calls)
	}
}

func buildFiber(t *testing.T, diam float32, nNodes int) (*cable.Sim, *fiber.Fiber) {
	t.Helper()
	sm := cable.NewSim()
	bp := fiber.BuildParams{}
	bp.Defaults()
	fb, err := bp.Build(sm, diam, nNodes)
	if err != nil {
		t.Fatalf("build: %v\n", err)
	}
	return sm, fb
}

// pulse is a 1 nA rectangular pulse from 0.2 to 0.4 ms, as breakpoints
// over a 5 ms waveform window.
func pulse() (times, amps []float32) {
	times = []float32{0, 0.2, 0.2, 0.4, 0.4, 5}
	amps = []float32{0, 0, 1, 1, 0, 0}
	return
}

func TestFindBadWaveform(t *testing.T) {
	sm, fb := buildFiber(t, 5, 3)
	ts := NewSearch(sm, fb)
	_, _, err := ts.Find([]float32{0, 1, 2}, []float32{0, 1})
	if !errors.Is(err, cable.ErrInvalidWaveform) {
		t.Errorf("expected ErrInvalidWaveform, got %v\n", err)
	}
	_, _, err = ts.Find([]float32{2, 1}, []float32{0, 1})
	if !errors.Is(err, cable.ErrInvalidWaveform) {
		t.Errorf("non-monotone times: expected ErrInvalidWaveform, got %v\n", err)
	}
}

func TestFindNotBracketed(t *testing.T) {
	sm, fb := buildFiber(t, 5, 3)
	ts := NewSearch(sm, fb)
	ts.Fired = func(vms []float32) bool { return false }
	times, amps := pulse()
	thr, found, err := ts.Find(times, amps)
	if err != nil {
		t.Fatalf("find: %v\n", err)
	}
	if found || thr != 0 {
		t.Errorf("unbracketed search reported (%g, %v), expected (0, false)\n", thr, found)
	}
	if ts.NTrials != 1 {
		t.Errorf("%d trials, expected 1: hi check only\n", ts.NTrials)
	}
}

func TestFindLoFires(t *testing.T) {
	sm, fb := buildFiber(t, 5, 3)
	ts := NewSearch(sm, fb)
	ts.Params.Lo = 10
	ts.Fired = func(vms []float32) bool { return true }
	times, amps := pulse()
	thr, found, err := ts.Find(times, amps)
	if err != nil {
		t.Fatalf("find: %v\n", err)
	}
	if !found || thr != 10 {
		t.Errorf("firing lo reported (%g, %v), expected (10, true)\n", thr, found)
	}
	if ts.NTrials != 2 {
		t.Errorf("%d trials, expected 2: hi and lo checks only\n", ts.NTrials)
	}
}

// TestFiringMonotone checks the precondition the bisection relies on:
// over an increasing grid of scales, once a scale fires, every larger
// scale fires too.
func TestFiringMonotone(t *testing.T) {
	sm, fb := buildFiber(t, 5, 31)
	ts := NewSearch(sm, fb)
	times, amps := pulse()
	scales := []float32{0, 250, 1000, 2000}
	prev := false
	for _, sc := range scales {
		f, err := ts.Trial(times, amps, sc)
		if err != nil {
			t.Fatalf("trial at %g: %v\n", sc, err)
		}
		if prev && !f {
			t.Errorf("fired at a lower scale but not at %g\n", sc)
		}
		prev = f
	}
	if !prev {
		t.Errorf("scale 2000 did not fire\n")
	}
}

// TestFindThreshold is the full pipeline: a 31 node, 5 um fiber with a
// 1 nA, 0.2 ms pulse, bracketed on [0, 2000] with tolerance 0.1.
func TestFindThreshold(t *testing.T) {
	sm, fb := buildFiber(t, 5, 31)
	ts := NewSearch(sm, fb)
	ts.Params.Hi = 2000
	ts.Params.Tol = 0.1
	times, amps := pulse()
	thr, found, err := ts.Find(times, amps)
	if err != nil {
		t.Fatalf("find: %v\n", err)
	}
	if !found {
		t.Fatalf("threshold not bracketed on [0, 2000]\n")
	}
	if thr <= 0 || thr > 2000 {
		t.Errorf("threshold %g outside (0, 2000]\n", thr)
	}
	if ts.NTrials > ts.Params.MaxIters+2 {
		t.Errorf("%d trials exceeds MaxIters + bracket checks\n", ts.NTrials)
	}
	f, err := ts.Trial(times, amps, thr)
	if err != nil {
		t.Fatalf("trial at threshold: %v\n", err)
	}
	if !f {
		t.Errorf("returned threshold %g does not fire\n", thr)
	}
	f, err = ts.Trial(times, amps, thr-2*ts.Params.Tol)
	if err != nil {
		t.Fatalf("trial below threshold: %v\n", err)
	}
	if f {
		t.Errorf("scale %g below threshold fires\n", thr-2*ts.Params.Tol)
	}
}

// two-node fiber: the minimum topology, one internodal segment.  The
// middle node is the last node here, so detection is at the stimulus
// site and reflects local depolarization only.
func TestFindMinimalFiber(t *testing.T) {
	sm, fb := buildFiber(t, 5, 2)
	ts := NewSearch(sm, fb)
	ts.Params.Hi = 2000
	ts.Params.Tol = 0.1
	times, amps := pulse()
	thr, found, err := ts.Find(times, amps)
	if err != nil {
		t.Fatalf("find: %v\n", err)
	}
	if found && (thr < 0 || thr > 2000) {
		t.Errorf("threshold %g outside [0, 2000]\n", thr)
	}
}
