// Copyright (c) 2025, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cable

import (
	"github.com/emer/etable/etable"
	"github.com/emer/etable/etensor"
	"github.com/emer/etable/minmax"
)

// Probe records the membrane potential at the midpoint of one compartment
// over a run: one (time, Vm) sample at Finitialize plus one per solver
// step, with no gaps.  A Probe persists across trials -- Finitialize
// clears it, so the recorded trace always covers exactly the current run.
type Probe struct {
	Comp  *Comp     `desc:"compartment being recorded"`
	Times []float32 `desc:"sample times in ms"`
	Vms   []float32 `desc:"membrane potential samples in mV"`
}

// RecordVm attaches a membrane potential recorder at the midpoint of comp.
func (sm *Sim) RecordVm(comp *Comp) *Probe {
	pb := &Probe{Comp: comp}
	sm.Probes = append(sm.Probes, pb)
	return pb
}

// Reset discards the recorded trace, keeping the attachment.
func (pb *Probe) Reset() {
	pb.Times = pb.Times[:0]
	pb.Vms = pb.Vms[:0]
}

func (pb *Probe) sample(t float32) {
	pb.Times = append(pb.Times, t)
	pb.Vms = append(pb.Vms, pb.Comp.Vm)
}

// VmRange returns the min / max range of the recorded trace.
func (pb *Probe) VmRange() minmax.F32 {
	var rng minmax.F32
	rng.SetInfinity()
	for _, v := range pb.Vms {
		rng.FitValInRange(v)
	}
	return rng
}

// MaxVm returns the peak membrane potential of the recorded trace.
func (pb *Probe) MaxVm() float32 {
	return pb.VmRange().Max
}

// ToTable returns the recorded trace as an etable with Time and Vm
// columns, for logging or plotting.
func (pb *Probe) ToTable() *etable.Table {
	dt := &etable.Table{}
	dt.SetMetaData("name", pb.Comp.Nm+"_Vm")
	dt.SetMetaData("read-only", "true")
	sch := etable.Schema{
		{Name: "Time", Type: etensor.FLOAT32, CellShape: nil, DimNames: nil},
		{Name: "Vm", Type: etensor.FLOAT32, CellShape: nil, DimNames: nil},
	}
	dt.SetFromSchema(sch, len(pb.Times))
	for i := range pb.Times {
		dt.SetCellFloat("Time", i, float64(pb.Times[i]))
		dt.SetCellFloat("Vm", i, float64(pb.Vms[i]))
	}
	return dt
}
