// Copyright (c) 2025, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package myelin is the overall repository for the MRG-style myelinated nerve
fiber model implemented in the Go language (golang): a compartmental cable
simulation of action potential propagation, and a bisection search for the
minimum stimulus amplitude that evokes a propagated spike.

This top-level of the repository has no functional code -- everything is
organized into the following sub-packages:

* chans: membrane mechanism parameters -- the Hodgkin-Huxley excitable
mechanism used at nodes of Ranvier, and the passive mechanism used for the
myelin-covered compartments.

* cable: the compartmental solver -- compartment declaration and wiring,
point current stimuli, membrane potential recording, and the fixed-step
implicit integration of the cable equations.

* fiber: procedural construction of the repeating
node / paranode / juxtaparanode / internode topology from diameter-keyed
geometry rules.

* thresh: the bisection threshold search over a stimulus scale factor,
classifying each trial's recorded voltage trace as fired / not fired.

* examples/sweep: a runnable threshold-vs-diameter sweep, the starting
point for your own fiber simulations.

* examples/gates: tabulates the Hodgkin-Huxley gating equations over a
membrane potential range, for exploring the nodal channel kinetics.
*/
package myelin
