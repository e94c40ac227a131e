/*
Copyright © 2019 the ChemBench authors.
This file is part of ChemBench.

ChemBench is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

ChemBench is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with ChemBench.  If not, see <http://www.gnu.org/licenses/>.
*/

package chembench

import (
	"math"
	"sort"
)

// MinVariance is the variance of the layer profile of a fully settled
// vessel, in units of normalized height squared.
const MinVariance = 1.e-5

// Layer describes the vertical distribution of one material
// within a vessel. Heights are normalized so that 0 is the bottom of
// the vessel and 1 is its maximum fill level.
type Layer struct {
	ID       string
	Position float64 // center height
	Variance float64 // shared by all layers in the vessel
}

// Layers returns the layer profile of the liquid and solid contents
// of the vessel, ordered from the densest material to the lightest.
func (v *Vessel) Layers() []Layer {
	out := make([]Layer, len(v.layers))
	copy(out, v.layers)
	return out
}

// layerOrder returns the IDs of the condensed-phase materials in
// settling order: densest first, with ties broken by ID.
func (v *Vessel) layerOrder() []string {
	ids := make([]string, 0, len(v.Materials))
	for id, m := range v.Materials {
		if m.Phase != Gas {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		di, dj := v.Materials[ids[i]].Density(), v.Materials[ids[j]].Density()
		if di != dj {
			return di > dj
		}
		return ids[i] < ids[j]
	})
	return ids
}

// fill returns the filled fraction of the vessel.
func (v *Vessel) fill() float64 {
	if v.Volume <= 0 {
		return 0
	}
	return math.Min(1, v.FilledVolume()/v.Volume)
}

func (v *Vessel) mixedPosition() float64 { return v.fill() / 2 }

// mixedVariance is the variance of a uniform distribution over the
// filled column.
func (v *Vessel) mixedVariance() float64 {
	f := v.fill()
	return math.Max(MinVariance, f*f/12)
}

// equilibrium returns the settled position of each layer, in
// settling order.
func (v *Vessel) equilibrium() []float64 {
	eq := make([]float64, len(v.layers))
	var below float64
	for i, l := range v.layers {
		vol := v.Materials[l.ID].Volume()
		eq[i] = clamp01((below + vol/2) / v.Volume)
		below += vol
	}
	return eq
}

// UpdateLayer re-synchronizes the layer profile with the current
// contents of the vessel without advancing time. Materials that are
// new to the profile start at the fully mixed position. Calling
// UpdateLayer repeatedly without modifying the vessel has no further
// effect.
func (v *Vessel) UpdateLayer() {
	old := make(map[string]float64, len(v.layers))
	for _, l := range v.layers {
		old[l.ID] = l.Position
	}
	ids := v.layerOrder()
	v.layers = v.layers[:0]
	v.variance = math.Max(MinVariance, math.Min(v.variance, v.mixedVariance()))
	for _, id := range ids {
		p, ok := old[id]
		if !ok {
			p = v.mixedPosition()
		}
		if math.IsNaN(p) {
			p = 0
		}
		v.layers = append(v.layers, Layer{ID: id, Position: clamp01(p), Variance: v.variance})
	}
}

// relax moves the layers toward their equilibrium positions over
// time dt.
func (v *Vessel) relax(dt float64) {
	a := 1.
	if v.SettleTime > 0 {
		a = 1 - math.Exp(-dt/v.SettleTime)
	}
	v.settleBy(a)
}

// settleBy moves the layers the fraction a of the way toward
// equilibrium.
func (v *Vessel) settleBy(a float64) {
	v.UpdateLayer()
	eq := v.equilibrium()
	for i := range v.layers {
		v.layers[i].Position += a * (eq[i] - v.layers[i].Position)
	}
	v.variance += a * (MinVariance - v.variance)
	v.UpdateLayer()
}

// mixBy moves the layers the fraction a of the way toward the fully
// mixed state.
func (v *Vessel) mixBy(a float64) {
	v.UpdateLayer()
	mp, mv := v.mixedPosition(), v.mixedVariance()
	for i := range v.layers {
		v.layers[i].Position += a * (mp - v.layers[i].Position)
	}
	v.variance += a * (mv - v.variance)
	v.UpdateLayer()
}

// drainFractions returns the fraction of each condensed-phase material
// that lies within the bottom n slices of the column when it is divided
// into v.Pixels slices, and whether more slices were requested than the
// contents fill.
func (v *Vessel) drainFractions(n int) (map[string]float64, bool) {
	out := make(map[string]float64, len(v.layers))
	filled := int(math.Ceil(v.fill()*float64(v.Pixels) - 1.e-9))
	if n >= filled {
		for _, l := range v.layers {
			out[l.ID] = 1
		}
		return out, n > filled
	}
	if n <= 0 {
		return out, false
	}
	for _, l := range v.layers {
		var total, bottom float64
		for k := 0; k < filled; k++ {
			h := (float64(k) + 0.5) / float64(v.Pixels)
			d := h - l.Position
			w := math.Exp(-d * d / (2 * v.variance))
			total += w
			if k < n {
				bottom += w
			}
		}
		if total > 0 {
			out[l.ID] = bottom / total
			continue
		}
		// The profile is narrower than a slice: assign the material to
		// its nearest slice.
		if k := int(l.Position * float64(v.Pixels)); k < n {
			out[l.ID] = 1
		}
	}
	return out, false
}

func clamp01(x float64) float64 { return math.Max(0, math.Min(1, x)) }
