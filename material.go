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

// MinQuantity is the amount [mol] below which a material is
// considered to be absent.
const MinQuantity = 1.e-12

// StandardTemperature is the temperature [K] used to choose the
// default phase of a template.
const StandardTemperature = 298.15

// Phase is the state of matter of a material.
type Phase int

// Phases of matter.
const (
	Solid Phase = iota
	Liquid
	Gas
)

func (p Phase) String() string {
	switch p {
	case Solid:
		return "s"
	case Liquid:
		return "l"
	case Gas:
		return "g"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// ParsePhase converts "s", "l", or "g" (or the spelled-out phase name)
// into a Phase.
func ParsePhase(s string) (Phase, error) {
	switch s {
	case "s", "solid":
		return Solid, nil
	case "l", "liquid":
		return Liquid, nil
	case "g", "gas":
		return Gas, nil
	}
	return Solid, fmt.Errorf("chembench: invalid phase %q; valid options are s, l, and g", s)
}

// Template holds the immutable properties of a chemical species.
// Templates are owned by a Registry.
type Template struct {
	ID    string // unique chemical identifier
	Name  string // display name
	Color float64

	MolarMass float64 // g/mol

	// Dissolves lists the IDs of the solvents this species dissolves in.
	Dissolves []string
	// Components maps the IDs of the dissolved components to their
	// stoichiometric multiplicity (e.g. NaCl -> {Na+: 1, Cl-: 1}).
	Components map[string]float64

	Polarity float64 // default polarity
	Solvent  bool    // whether the species can act as a solvent

	BoilingPoint float64 // K
	MeltingPoint float64 // K

	SpecificHeat         float64 // J/g/K
	EnthalpyFusion       float64 // J/mol
	EnthalpyVaporization float64 // J/mol

	// Density holds the density [g/L] of each phase.
	Density map[Phase]float64

	// Spectral peaks, each as [peak, width, height].
	Spectra        [][3]float64
	SpectraOverlap [][3]float64
}

// PhaseAt returns the phase of the species at temperature t [K].
func (t *Template) PhaseAt(temp float64) Phase {
	switch {
	case t.BoilingPoint > 0 && temp >= t.BoilingPoint:
		return Gas
	case temp > t.MeltingPoint:
		return Liquid
	default:
		return Solid
	}
}

// DissolvesIn returns whether the species dissolves in the solvent
// with the given ID.
func (t *Template) DissolvesIn(solvent string) bool {
	for _, s := range t.Dissolves {
		if s == solvent {
			return true
		}
	}
	return false
}

func (t *Template) check() error {
	if t.ID == "" {
		return fmt.Errorf("chembench: material template is missing an ID")
	}
	if !(t.MolarMass > 0) || math.IsInf(t.MolarMass, 0) {
		return fmt.Errorf("chembench: material %s: molar mass must be positive but is %g",
			t.ID, t.MolarMass)
	}
	p := t.PhaseAt(StandardTemperature)
	if p != Gas {
		if d, ok := t.Density[p]; !ok || !(d > 0) {
			return fmt.Errorf("chembench: material %s: needs a positive density for default phase %s",
				t.ID, p)
		}
	}
	return nil
}

// Material is one instance of a chemical species with a
// mutable quantity. A Material belongs to exactly one Vessel
// (or transient holder) at a time.
type Material struct {
	tmpl *Template

	Mol      float64 // quantity [mol]
	Phase    Phase
	Polarity float64

	// Solute and Solvent are recalculated by the containing vessel.
	Solute  bool
	Solvent bool
}

// Template returns the template the material is bound to.
func (m *Material) Template() *Template { return m.tmpl }

// ID returns the chemical identifier of the material.
func (m *Material) ID() string { return m.tmpl.ID }

// Mass returns the mass of the material [g].
func (m *Material) Mass() float64 { return m.Mol * m.tmpl.MolarMass }

// Volume returns the volume of the material [L] in its current phase.
// It returns zero when the template has no density for that phase.
func (m *Material) Volume() float64 {
	d, ok := m.tmpl.Density[m.Phase]
	if !ok || d <= 0 {
		return 0
	}
	return m.Mass() / d
}

// Density returns the density of the material [g/L] in its current phase.
func (m *Material) Density() float64 { return m.tmpl.Density[m.Phase] }

// HeatCapacity returns the heat capacity of the material [J/K].
func (m *Material) HeatCapacity() float64 { return m.Mass() * m.tmpl.SpecificHeat }

// VaporEnthalpy returns the energy [J] needed to vaporize the material.
func (m *Material) VaporEnthalpy() float64 { return m.Mol * m.tmpl.EnthalpyVaporization }

// Ration removes the fraction f (clamped to [0, 1]) of the quantity of m
// and returns it as a new Material with the same phase, polarity, and
// solute/solvent flags as m.
func (m *Material) Ration(f float64) *Material {
	f = math.Max(0, math.Min(1, f))
	out := *m
	out.Mol = m.Mol * f
	m.Mol -= out.Mol
	return &out
}
