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

package kinetics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// GasConstant is the molar gas constant [J/mol/K].
const GasConstant = 8.314462618

// RateConstants returns the Arrhenius rate constant
// scale·A_i·exp(-E_i/(R·temp)) of each reaction.
func RateConstants(preExp, activEnergy []float64, temp, scale float64) []float64 {
	k := make([]float64, len(preExp))
	rateConstants(k, preExp, activEnergy, temp, scale)
	return k
}

func rateConstants(dst, preExp, activEnergy []float64, temp, scale float64) {
	for i, a := range preExp {
		dst[i] = scale * a * math.Exp(-activEnergy[i]/(GasConstant*temp))
	}
}

// GetRates returns the rate of change of the concentration of each
// material, given the reaction stoichiometric exponents
// [reactions × reactants], the Arrhenius parameters, the concentration
// change coefficients [materials × reactions], the temperature [K], and
// the concentration of each material. The first columns of stoich
// correspond to the first entries of conc. Negative concentrations are
// treated as zero.
func GetRates(stoich mat.Matrix, preExp, activEnergy []float64, concCoeff mat.Matrix, temp float64, conc []float64) []float64 {
	nm, _ := concCoeff.Dims()
	_, nrt := stoich.Dims()
	law := newRateLaw(mat.DenseCopyOf(stoich), mat.DenseCopyOf(concCoeff),
		preExp, activEnergy, identity(nrt))
	law.setTemperature(temp, 1)
	out := make([]float64, nm)
	law.derivative(conc, out)
	return out
}

func identity(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// rateLaw evaluates the mass-action rate law of a reaction network.
// Its workspaces are reused between calls, so a rateLaw must not be
// used by more than one goroutine at a time.
type rateLaw struct {
	stoich *mat.Dense // reactions × reactants
	coeff  *mat.Dense // materials × reactions

	preExp, activEnergy []float64

	// reactants holds the index in the concentration vector of each
	// column of stoich.
	reactants []int

	k     []float64 // rate constants
	rates []float64 // reaction rates
}

func newRateLaw(stoich, coeff *mat.Dense, preExp, activEnergy []float64, reactants []int) *rateLaw {
	nr := len(preExp)
	return &rateLaw{
		stoich:      stoich,
		coeff:       coeff,
		preExp:      preExp,
		activEnergy: activEnergy,
		reactants:   reactants,
		k:           make([]float64, nr),
		rates:       make([]float64, nr),
	}
}

// newDescriptionRateLaw creates the rate law of reaction network d.
func newDescriptionRateLaw(d *Description) *rateLaw {
	nr := d.NumReactions()
	var stoich *mat.Dense // nil for zero-order networks
	if len(d.Reactants) > 0 {
		stoich = mat.NewDense(nr, len(d.Reactants), nil)
		for i, row := range d.Stoich {
			stoich.SetRow(i, row)
		}
	}
	coeff := mat.NewDense(len(d.Materials), nr, nil)
	for i, row := range d.ConcCoeff {
		coeff.SetRow(i, row)
	}
	index := make(map[string]int, len(d.Materials))
	for i, m := range d.Materials {
		index[m] = i
	}
	reactants := make([]int, len(d.Reactants))
	for j, r := range d.Reactants {
		reactants[j] = index[r]
	}
	return newRateLaw(stoich, coeff, d.PreExp, d.ActivEnergy, reactants)
}

// setTemperature sets the rate constants for temperature temp [K],
// multiplied by scale.
func (l *rateLaw) setTemperature(temp, scale float64) {
	rateConstants(l.k, l.preExp, l.activEnergy, temp, scale)
}

// derivative calculates the rate of change of each concentration
// and stores it in dst.
func (l *rateLaw) derivative(conc, dst []float64) {
	for i := range l.rates {
		r := l.k[i]
		if l.stoich == nil {
			l.rates[i] = r
			continue
		}
		for j, s := range l.stoich.RawRowView(i) {
			switch {
			case s == 0:
			case s == 1:
				r *= math.Max(conc[l.reactants[j]], 0)
			default:
				r *= math.Pow(math.Max(conc[l.reactants[j]], 0), s)
			}
		}
		l.rates[i] = r
	}
	for m := range dst {
		dst[m] = floats.Dot(l.coeff.RawRowView(m), l.rates)
	}
}
