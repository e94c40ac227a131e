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
	"fmt"
	"math"
)

// Feedback is a code reported by an event when a physical limit
// was reached. Feedback codes are data, not errors: the event is
// still applied, in clamped form.
type Feedback int

// Feedback codes.
const (
	// Spill indicates that a transfer was reduced because the
	// receiving vessel would have overflowed.
	Spill Feedback = -1

	// HeatLimited indicates that a temperature change was clamped
	// to the vessel's MaxTempChange.
	HeatLimited Feedback = -2

	// Overdrain indicates that more slices were drained than the
	// vessel contents occupied.
	Overdrain Feedback = -3
)

func (f Feedback) String() string {
	switch f {
	case Spill:
		return "spill"
	case HeatLimited:
		return "heat_limited"
	case Overdrain:
		return "overdrain"
	default:
		return fmt.Sprintf("Feedback(%d)", int(f))
	}
}

// Reactor advances the chemical reactions in a vessel by time dt.
type Reactor interface {
	UpdateConcentrations(v *Vessel, dt float64)
}

// Event is an operation that can be applied to a Vessel. The set of
// events is closed: PourByVolume, PourByPercent, DrainByPixel, Mix,
// HeatContact, React, and UpdateLayer.
type Event interface {
	apply(v *Vessel, dt float64) []Feedback
}

// Apply applies events to the vessel in order, each one completely
// before the next, using time step dt (or v.DefaultDt if dt <= 0).
// Afterwards the vessel is settled and its layers relax toward
// equilibrium over dt. The returned feedback codes report any
// physical limits that were reached.
func (v *Vessel) Apply(events []Event, dt float64) []Feedback {
	if !(dt > 0) {
		dt = v.DefaultDt
	}
	var fb []Feedback
	for _, e := range events {
		fb = append(fb, e.apply(v, dt)...)
	}
	v.Settle()
	v.relax(dt)
	return fb
}

// PourByVolume pours Volume [L] of the vessel contents into Target.
// Every material is transferred in proportion to its share of the
// filled volume. A nil Target discards the material.
type PourByVolume struct {
	Target *Vessel
	Volume float64
}

func (e PourByVolume) apply(v *Vessel, dt float64) []Feedback {
	filled := v.FilledVolume()
	if filled <= 0 || !(e.Volume > 0) {
		return nil
	}
	return v.pour(e.Target, e.Volume/filled)
}

// PourByPercent pours the fraction Fraction of the filled volume of
// the vessel into Target. A nil Target discards the material.
type PourByPercent struct {
	Target   *Vessel
	Fraction float64
}

func (e PourByPercent) apply(v *Vessel, dt float64) []Feedback {
	if !(e.Fraction > 0) {
		return nil
	}
	return v.pour(e.Target, e.Fraction)
}

func (v *Vessel) pour(target *Vessel, f float64) []Feedback {
	f = math.Min(1, f)
	fractions := make(map[string]float64, len(v.Materials))
	for id := range v.Materials {
		fractions[id] = f
	}
	return v.transfer(target, fractions)
}

// DrainByPixel drains the bottom Pixels slices of the settled layer
// profile into Target. Gases are not drained. A nil Target discards
// the material.
type DrainByPixel struct {
	Target *Vessel
	Pixels int
}

func (e DrainByPixel) apply(v *Vessel, dt float64) []Feedback {
	v.UpdateLayer()
	fractions, over := v.drainFractions(e.Pixels)
	fb := v.transfer(e.Target, fractions)
	if over {
		fb = append(fb, Overdrain)
	}
	return fb
}

// transfer moves the given fraction of each material into target,
// scaling the transfer down if target would overflow.
func (v *Vessel) transfer(target *Vessel, fractions map[string]float64) []Feedback {
	if target == v {
		return nil
	}
	var fb []Feedback
	if target != nil {
		// Materials take on the phase they will have in the target.
		var in float64
		for id, f := range fractions {
			m, ok := v.Materials[id]
			if !ok {
				continue
			}
			part := *m
			part.Mol *= f
			target.setPhase(&part)
			if part.Phase != Gas {
				in += part.Volume()
			}
		}
		space := math.Max(0, target.Volume-target.FilledVolume())
		if in > space {
			scale := space / in
			for id := range fractions {
				fractions[id] *= scale
			}
			fb = append(fb, Spill)
		}
	}
	for id, f := range fractions {
		m, ok := v.Materials[id]
		if !ok || f <= 0 {
			continue
		}
		part := m.Ration(f)
		if target != nil {
			target.setPhase(part)
			target.add(part)
		}
	}
	if target != nil {
		target.Settle()
	}
	v.UpdateLayer()
	return fb
}

// Mix mixes the vessel contents. Positive Strength moves the layers
// toward a uniform mixture; negative Strength lets them settle. A
// magnitude of 1 or more reaches the limiting state in one event.
type Mix struct {
	Strength float64
}

func (e Mix) apply(v *Vessel, dt float64) []Feedback {
	a := math.Min(1, math.Abs(e.Strength))
	if e.Strength >= 0 {
		v.mixBy(a)
	} else {
		v.settleBy(a)
	}
	return nil
}

// HeatContact brings the vessel into thermal contact with a body
// at TargetTemp [K]. The vessel temperature relaxes toward
// TargetTemp at a rate set by HeatTransferCoeff [1/s]. Condensed
// contents that no longer fit after a phase change spill out.
type HeatContact struct {
	TargetTemp        float64
	HeatTransferCoeff float64
}

func (e HeatContact) apply(v *Vessel, dt float64) []Feedback {
	if !(e.HeatTransferCoeff > 0) {
		return nil
	}
	dT := (e.TargetTemp - v.Temperature) * (1 - math.Exp(-e.HeatTransferCoeff*dt))
	var fb []Feedback
	if v.MaxTempChange > 0 && math.Abs(dT) > v.MaxTempChange {
		dT = math.Copysign(v.MaxTempChange, dT)
		fb = append(fb, HeatLimited)
	}
	v.Temperature += dT
	v.updatePhases()
	if v.overflow() {
		fb = append(fb, Spill)
	}
	v.UpdateLayer()
	return fb
}

// React advances the chemical reactions in the vessel using Engine.
// Condensed contents that no longer fit in the vessel spill out.
type React struct {
	Engine Reactor
}

func (e React) apply(v *Vessel, dt float64) []Feedback {
	if e.Engine == nil {
		return nil
	}
	e.Engine.UpdateConcentrations(v, dt)
	if v.overflow() {
		v.UpdateLayer()
		return []Feedback{Spill}
	}
	return nil
}

// UpdateLayer re-synchronizes the layer profile of a vessel with its
// contents.
type UpdateLayer struct{}

func (UpdateLayer) apply(v *Vessel, dt float64) []Feedback {
	v.UpdateLayer()
	return nil
}
