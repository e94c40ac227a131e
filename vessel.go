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
	"sort"

	"github.com/ctessum/unit"
)

// Vessel holds the state of a single container of materials.
// A Vessel must not be modified by more than one goroutine at a time.
type Vessel struct {
	Label string

	Temperature float64 // K
	Volume      float64 // maximum volume [L]

	// Materials holds the contents of the vessel keyed by material ID.
	Materials map[string]*Material

	DefaultDt     float64 // seconds advanced by Apply when dt is not given
	Pixels        int     // number of vertical slices used when draining
	SettleTime    float64 // layer relaxation time scale [s]
	MaxTempChange float64 // maximum temperature change [K] per heating event

	reg      *Registry
	layers   []Layer
	variance float64
}

// VesselOption configures a Vessel when it is created.
type VesselOption func(*Vessel) error

// Volume sets the maximum volume of the vessel [L].
func Volume(l float64) VesselOption {
	return func(v *Vessel) error {
		if !(l > 0) {
			return fmt.Errorf("chembench: vessel volume must be positive but is %g", l)
		}
		v.Volume = l
		return nil
	}
}

// Temperature sets the initial temperature of the vessel [K].
func Temperature(t float64) VesselOption {
	return func(v *Vessel) error {
		if !(t > 0) {
			return fmt.Errorf("chembench: vessel temperature must be positive but is %g K", t)
		}
		v.Temperature = t
		return nil
	}
}

// DefaultDt sets the time step [s] used when Apply is called without one.
func DefaultDt(dt float64) VesselOption {
	return func(v *Vessel) error {
		v.DefaultDt = dt
		return nil
	}
}

// Pixels sets the number of vertical slices used to discretize the
// layer profile when draining.
func Pixels(n int) VesselOption {
	return func(v *Vessel) error {
		if n < 1 {
			return fmt.Errorf("chembench: number of pixels must be at least 1 but is %d", n)
		}
		v.Pixels = n
		return nil
	}
}

// SettleTime sets the time scale [s] over which layers relax
// toward their equilibrium positions.
func SettleTime(s float64) VesselOption {
	return func(v *Vessel) error {
		v.SettleTime = s
		return nil
	}
}

// MaxTempChange sets the largest temperature change [K] allowed in
// a single heating event.
func MaxTempChange(k float64) VesselOption {
	return func(v *Vessel) error {
		v.MaxTempChange = k
		return nil
	}
}

// Contents fills the vessel with the given amounts [mol] of each
// material ID.
func Contents(mol map[string]float64) VesselOption {
	return func(v *Vessel) error {
		ids := make([]string, 0, len(mol))
		for id := range mol {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			if mol[id] < 0 {
				return fmt.Errorf("chembench: vessel %s: negative quantity %g of %s", v.Label, mol[id], id)
			}
			if err := v.SetAmount(id, mol[id]); err != nil {
				return err
			}
		}
		return nil
	}
}

// NewVessel creates a new vessel whose materials are drawn from reg.
func NewVessel(reg *Registry, label string, opts ...VesselOption) (*Vessel, error) {
	v := &Vessel{
		Label:         label,
		Temperature:   StandardTemperature,
		Volume:        1,
		Materials:     make(map[string]*Material),
		DefaultDt:     0.05,
		Pixels:        100,
		SettleTime:    5,
		MaxTempChange: 100,
		reg:           reg,
	}
	for _, o := range opts {
		if err := o(v); err != nil {
			return nil, err
		}
	}
	v.updatePhases()
	if f := v.FilledVolume(); f > v.Volume*(1+1.e-9) {
		return nil, fmt.Errorf("chembench: vessel %s: contents (%g L) exceed vessel volume (%g L)",
			v.Label, f, v.Volume)
	}
	// New contents start out fully mixed.
	v.Settle()
	v.variance = v.mixedVariance()
	v.UpdateLayer()
	return v, nil
}

// Registry returns the registry the vessel draws new materials from.
func (v *Vessel) Registry() *Registry { return v.reg }

// FilledVolume returns the volume [L] occupied by the liquid and
// solid contents of the vessel.
func (v *Vessel) FilledVolume() float64 {
	var sum float64
	for _, m := range v.Materials {
		if m.Phase != Gas {
			sum += m.Volume()
		}
	}
	return sum
}

// Amount returns the quantity [mol] of material id in the vessel,
// or zero if it is absent.
func (v *Vessel) Amount(id string) float64 {
	if m, ok := v.Materials[id]; ok {
		return m.Mol
	}
	return 0
}

// TotalMoles returns the total quantity [mol] of all materials in
// the vessel.
func (v *Vessel) TotalMoles() float64 {
	var sum float64
	for _, m := range v.Materials {
		sum += m.Mol
	}
	return sum
}

// SetAmount sets the quantity [mol] of material id, creating
// the material from the registry if it is not already present and
// removing it if mol is negligible.
func (v *Vessel) SetAmount(id string, mol float64) error {
	if m, ok := v.Materials[id]; ok {
		if mol < MinQuantity {
			delete(v.Materials, id)
			return nil
		}
		m.Mol = mol
		return nil
	}
	if mol < MinQuantity {
		return nil
	}
	if v.reg == nil {
		return &UnknownMaterialError{ID: id}
	}
	m, err := v.reg.Instantiate(id, mol)
	if err != nil {
		return err
	}
	v.setPhase(m)
	v.Materials[id] = m
	return nil
}

// add merges m into the vessel, summing quantities if the vessel already
// holds the same material.
func (v *Vessel) add(m *Material) {
	if m.Mol <= 0 {
		return
	}
	if have, ok := v.Materials[m.ID()]; ok {
		have.Mol += m.Mol
		return
	}
	v.Materials[m.ID()] = m
}

// overflow discards the share of each liquid and solid material that
// exceeds the vessel volume, and reports whether any was discarded.
func (v *Vessel) overflow() bool {
	filled := v.FilledVolume()
	if filled <= v.Volume*(1+1.e-9) {
		return false
	}
	f := 1 - v.Volume/filled
	for _, m := range v.Materials {
		if m.Phase != Gas {
			m.Ration(f)
		}
	}
	return true
}

// Settle removes negligible materials, recalculates which materials
// are solvents and solutes, and re-synchronizes the layer profile.
func (v *Vessel) Settle() {
	for id, m := range v.Materials {
		if !(m.Mol >= MinQuantity) {
			delete(v.Materials, id)
		}
	}
	v.validateSolvents()
	v.validateSolutes()
	v.UpdateLayer()
}

func (v *Vessel) validateSolvents() {
	for _, m := range v.Materials {
		m.Solvent = m.tmpl.Solvent && m.Phase == Liquid
	}
}

func (v *Vessel) validateSolutes() {
	for _, m := range v.Materials {
		m.Solute = false
		if m.Solvent || m.Phase == Gas {
			continue
		}
		for id, s := range v.Materials {
			if s.Solvent && m.tmpl.DissolvesIn(id) {
				m.Solute = true
				break
			}
		}
	}
}

// Solvents returns the sorted IDs of the materials currently acting as
// solvents.
func (v *Vessel) Solvents() []string {
	var ids []string
	for id, m := range v.Materials {
		if m.Solvent {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Solutes returns the sorted IDs of the materials currently dissolved
// in a solvent.
func (v *Vessel) Solutes() []string {
	var ids []string
	for id, m := range v.Materials {
		if m.Solute {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// DissolvedComponents returns the quantity [mol] of each dissolved
// component, splitting solutes into the components listed in their
// templates.
func (v *Vessel) DissolvedComponents() map[string]float64 {
	out := make(map[string]float64)
	for id, m := range v.Materials {
		if !m.Solute {
			continue
		}
		if len(m.tmpl.Components) == 0 {
			out[id] += m.Mol
			continue
		}
		for c, n := range m.tmpl.Components {
			out[c] += m.Mol * n
		}
	}
	return out
}

// setPhase sets the phase of m to match the vessel temperature, leaving
// it unchanged if the template has no density for the new condensed phase.
func (v *Vessel) setPhase(m *Material) {
	p := m.tmpl.PhaseAt(v.Temperature)
	if p != Gas {
		if _, ok := m.tmpl.Density[p]; !ok {
			return
		}
	}
	m.Phase = p
}

func (v *Vessel) updatePhases() {
	for _, m := range v.Materials {
		v.setPhase(m)
	}
}

// Conditions holds the physical state of a vessel in SI units.
type Conditions struct {
	Temperature  *unit.Unit
	Volume       *unit.Unit
	FilledVolume *unit.Unit
	Mass         *unit.Unit
}

// Conditions returns the current physical state of the vessel.
func (v *Vessel) Conditions() Conditions {
	const m3PerL = 1.e-3
	const kgPerG = 1.e-3
	var mass float64
	for _, m := range v.Materials {
		mass += m.Mass()
	}
	return Conditions{
		Temperature:  unit.New(v.Temperature, unit.Kelvin),
		Volume:       unit.New(v.Volume*m3PerL, unit.Meter3),
		FilledVolume: unit.New(v.FilledVolume()*m3PerL, unit.Meter3),
		Mass:         unit.New(mass*kgPerG, unit.Kilogram),
	}
}
