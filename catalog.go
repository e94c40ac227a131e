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

// DefaultTemplates returns the built-in material catalog.
func DefaultTemplates() []*Template {
	ts := []*Template{
		{
			ID: "H2O", Name: "water", MolarMass: 18.015, Color: 0.2,
			Polarity: 1.85, Solvent: true,
			MeltingPoint: 273.15, BoilingPoint: 373.15,
			SpecificHeat: 4.186, EnthalpyFusion: 6010, EnthalpyVaporization: 40650,
			Density:        map[Phase]float64{Solid: 917, Liquid: 997, Gas: 0.804},
			Spectra:        [][3]float64{{0.4, 0.02, 0.1}, {0.75, 0.05, 0.3}},
			SpectraOverlap: [][3]float64{{0.75, 0.05, 0.3}},
		},
		{
			ID: "C2H6O", Name: "ethanol", MolarMass: 46.07, Color: 0.25,
			Polarity: 1.69, Solvent: true, Dissolves: []string{"H2O"},
			MeltingPoint: 159.0, BoilingPoint: 351.4,
			SpecificHeat: 2.44, EnthalpyFusion: 4900, EnthalpyVaporization: 38560,
			Density: map[Phase]float64{Solid: 975, Liquid: 789, Gas: 1.59},
			Spectra: [][3]float64{{0.33, 0.03, 0.6}},
		},
		{
			ID: "C6H14", Name: "hexane", MolarMass: 86.18, Color: 0.3,
			Polarity: 0.08, Solvent: true, Dissolves: []string{"C4H10O"},
			MeltingPoint: 178.0, BoilingPoint: 341.9,
			SpecificHeat: 2.26, EnthalpyFusion: 13080, EnthalpyVaporization: 28850,
			Density: map[Phase]float64{Liquid: 655, Gas: 3.04},
			Spectra: [][3]float64{{0.2, 0.04, 0.4}},
		},
		{
			ID: "C4H10O", Name: "diethyl ether", MolarMass: 74.12, Color: 0.35,
			Polarity: 1.15, Solvent: true, Dissolves: []string{"C6H14"},
			MeltingPoint: 156.8, BoilingPoint: 307.8,
			SpecificHeat: 2.33, EnthalpyFusion: 7190, EnthalpyVaporization: 27247,
			Density: map[Phase]float64{Liquid: 713, Gas: 2.6},
			Spectra: [][3]float64{{0.25, 0.03, 0.5}},
		},
		{
			ID: "C12H26", Name: "dodecane", MolarMass: 170.34, Color: 0.5,
			Polarity: 0, Solvent: true, Dissolves: []string{"C6H14"},
			MeltingPoint: 263.6, BoilingPoint: 489.5,
			SpecificHeat: 2.21, EnthalpyFusion: 36800, EnthalpyVaporization: 61510,
			Density: map[Phase]float64{Solid: 800, Liquid: 750},
			Spectra: [][3]float64{{0.18, 0.05, 0.7}},
		},
		{
			ID: "NaCl", Name: "sodium chloride", MolarMass: 58.44, Color: 0.9,
			Polarity: 9.0, Dissolves: []string{"H2O"},
			Components:   map[string]float64{"Na+": 1, "Cl-": 1},
			MeltingPoint: 1074, BoilingPoint: 1686,
			SpecificHeat: 0.864, EnthalpyFusion: 28160, EnthalpyVaporization: 170000,
			Density: map[Phase]float64{Solid: 2165, Liquid: 1556},
		},
		{
			ID: "Na+", Name: "sodium ion", MolarMass: 22.99, Color: 0.8,
			Polarity: 10, Dissolves: []string{"H2O"},
			SpecificHeat: 1.23,
			Density:      map[Phase]float64{Liquid: 2170},
			Spectra:      [][3]float64{{0.59, 0.005, 0.9}},
		},
		{
			ID: "Cl-", Name: "chloride ion", MolarMass: 35.45, Color: 0.8,
			Polarity: 10, Dissolves: []string{"H2O"},
			SpecificHeat: 0.48,
			Density:      map[Phase]float64{Liquid: 2170},
		},
		{
			ID: "Na", Name: "sodium", MolarMass: 22.99, Color: 0.7,
			MeltingPoint: 370.9, BoilingPoint: 1156,
			SpecificHeat: 1.23, EnthalpyFusion: 2600, EnthalpyVaporization: 97420,
			Density: map[Phase]float64{Solid: 968, Liquid: 927},
		},
		{
			ID: "Cl2", Name: "chlorine", MolarMass: 70.9, Color: 0.6,
			MeltingPoint: 171.6, BoilingPoint: 239.1,
			SpecificHeat: 0.48, EnthalpyFusion: 6400, EnthalpyVaporization: 20410,
			Density: map[Phase]float64{Solid: 1900, Liquid: 1562, Gas: 3.2},
		},
	}
	// Generic species used by the example reactions.
	for i, id := range []string{"A", "B", "C", "D", "E"} {
		ts = append(ts, &Template{
			ID: id, Name: "species " + id, MolarMass: 100,
			Color: 0.1 * float64(i+1), Dissolves: []string{"H2O", "C2H6O"},
			MeltingPoint: 200, BoilingPoint: 500, SpecificHeat: 2,
			Density: map[Phase]float64{Solid: 1100, Liquid: 1000},
			Spectra: [][3]float64{{0.1 + 0.15*float64(i), 0.02, 1}},
		})
	}
	return ts
}

// DefaultRegistry returns a frozen Registry holding DefaultTemplates.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, t := range DefaultTemplates() {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
	r.Freeze()
	return r
}
