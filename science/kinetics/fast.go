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
)

// Step scaling parameters of the fast integrator. These were tuned
// against the reference scenarios and should not be changed without
// re-validating them.
const (
	fastTarget    = 5.e-4 // grow steps while the fractional change is below this
	fastCeiling   = 0.1   // shrink steps while the fractional change is above this
	fastMaxFactor = 10.
	fastMinFactor = 1.e-9
	fastEpsilon   = 1.e-12
)

// DefaultSubsteps is the default nominal number of substeps per
// integration with the fast integrator.
const DefaultSubsteps = 100

// fast is an explicit integrator whose step size is scaled so that
// no concentration changes by more than a small fraction of itself
// in one substep.
type fast struct {
	n int // nominal substeps
	d []float64
}

func newFast(n int) *fast {
	if n < 1 {
		n = DefaultSubsteps
	}
	return &fast{n: n}
}

func (s *fast) integrate(l *rateLaw, conc []float64, temp, dt float64) {
	if len(conc) == 0 || !(dt > 0) {
		return
	}
	if len(s.d) != len(conc) {
		s.d = make([]float64, len(conc))
	}
	T := dt / float64(s.n)
	l.setTemperature(temp, T)

	factor := 1.
	for dt > 0 {
		for i, c := range conc {
			if c < 0 {
				conc[i] = 0
			}
		}
		l.derivative(conc, s.d)

		// ratio is the largest fractional depletion of any material
		// over one nominal substep.
		var ratio float64
		for i, d := range s.d {
			if r := -d / (conc[i] + fastEpsilon); r > ratio {
				ratio = r
			}
		}
		if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
			return // the rates are not finite; leave conc at the last good state
		}
		for ratio*factor < fastTarget && factor < fastMaxFactor {
			factor = math.Min(2*factor, fastMaxFactor)
		}
		for ratio*factor > fastCeiling && factor > fastMinFactor {
			factor /= 2
		}

		step := factor * T
		if step >= dt {
			floats.AddScaled(conc, dt/T, s.d)
			break
		}
		floats.AddScaled(conc, factor, s.d)
		dt -= step
	}
	for i, c := range conc {
		if c < 0 {
			conc[i] = 0
		}
	}
}
