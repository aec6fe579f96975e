// Copyright (c) 2025, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fiber

import "github.com/chewxy/math32"

// GeomParams are the geometric rules mapping fiber diameter to compartment
// lengths, as empirical scaling relationships with lower floors.  The
// defaults reproduce the standard MRG-style rules: a fixed 1 um node, an
// internode of ~100x the diameter, and paranode / juxtaparanode lengths
// scaling with the square root of the diameter.  All outputs are strictly
// positive for any positive diameter.
type GeomParams struct {
	NodeL      float32 `def:"1" min:"0" desc:"node of Ranvier length in um, independent of diameter"`
	InternFact float32 `def:"100" min:"0" desc:"internode length per um of fiber diameter"`
	InternMin  float32 `def:"50" min:"0" desc:"minimum internode length in um"`
	ParaFact   float32 `def:"3" min:"0" desc:"paranode length per sqrt(um) of fiber diameter"`
	ParaMin    float32 `def:"1" min:"0" desc:"minimum paranode length in um"`
	JuxtaFact  float32 `def:"10" min:"0" desc:"juxtaparanode length per sqrt(um) of fiber diameter"`
	JuxtaMin   float32 `def:"5" min:"0" desc:"minimum juxtaparanode length in um"`
}

func (gp *GeomParams) Defaults() {
	gp.NodeL = 1
	gp.InternFact = 100
	gp.InternMin = 50
	gp.ParaFact = 3
	gp.ParaMin = 1
	gp.JuxtaFact = 10
	gp.JuxtaMin = 5
}

func (gp *GeomParams) Update() {
}

// NodeLen returns the node of Ranvier length in um.
func (gp *GeomParams) NodeLen() float32 {
	return gp.NodeL
}

// InternodeLen returns the internode length in um for fiber diameter
// diam (um): max(InternMin, InternFact * diam).
func (gp *GeomParams) InternodeLen(diam float32) float32 {
	return math32.Max(gp.InternMin, gp.InternFact*diam)
}

// ParanodeLen returns the paranode length in um for fiber diameter
// diam (um): max(ParaMin, ParaFact * sqrt(diam)).
func (gp *GeomParams) ParanodeLen(diam float32) float32 {
	return math32.Max(gp.ParaMin, gp.ParaFact*math32.Sqrt(diam))
}

// JuxtaLen returns the juxtaparanode length in um for fiber diameter
// diam (um): max(JuxtaMin, JuxtaFact * sqrt(diam)).
func (gp *GeomParams) JuxtaLen(diam float32) float32 {
	return math32.Max(gp.JuxtaMin, gp.JuxtaFact*math32.Sqrt(diam))
}

// RoleLen returns the compartment length in um for the given role and
// fiber diameter.
func (gp *GeomParams) RoleLen(role Role, diam float32) float32 {
	switch role {
	case NodeComp:
		return gp.NodeLen()
	case ParanodeComp:
		return gp.ParanodeLen(diam)
	case JuxtaComp:
		return gp.JuxtaLen(diam)
	default:
		return gp.InternodeLen(diam)
	}
}
