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

// Dormand–Prince 5(4) coefficients.
const (
	a21 = 1. / 5.

	a31 = 3. / 40.
	a32 = 9. / 40.

	a41 = 44. / 45.
	a42 = -56. / 15.
	a43 = 32. / 9.

	a51 = 19372. / 6561.
	a52 = -25360. / 2187.
	a53 = 64448. / 6561.
	a54 = -212. / 729.

	a61 = 9017. / 3168.
	a62 = -355. / 33.
	a63 = 46732. / 5247.
	a64 = 49. / 176.
	a65 = -5103. / 18656.

	// Fifth-order solution weights.
	b1 = 35. / 384.
	b3 = 500. / 1113.
	b4 = 125. / 192.
	b5 = -2187. / 6784.
	b6 = 11. / 84.

	// Differences between the fifth- and fourth-order weights.
	e1 = 71. / 57600.
	e3 = -71. / 16695.
	e4 = 71. / 1920.
	e5 = -17253. / 339200.
	e6 = 22. / 525.
	e7 = -1. / 40.
)

// Step size control parameters.
const (
	dopriSafety    = 0.9
	dopriMinFactor = 0.2
	dopriMaxFactor = 10.
	dopriMaxSteps  = 100000
)

// dopri is an adaptive Dormand–Prince 5(4) integrator with
// first-same-as-last stage reuse.
type dopri struct {
	rtol, atol float64

	k1, k2, k3, k4, k5, k6, k7 []float64
	tmp, y5, errv             []float64
}

func newDopri(rtol, atol float64) *dopri {
	return &dopri{rtol: rtol, atol: atol}
}

func (s *dopri) resize(n int) {
	if len(s.k1) == n {
		return
	}
	buf := make([]float64, 10*n)
	for i, p := range []*[]float64{&s.k1, &s.k2, &s.k3, &s.k4, &s.k5, &s.k6, &s.k7,
		&s.tmp, &s.y5, &s.errv} {
		*p = buf[i*n : (i+1)*n : (i+1)*n]
	}
}

// combine sets s.tmp = y + h·Σ c_i·k_i.
func (s *dopri) combine(y []float64, h float64, c []float64, k ...[]float64) []float64 {
	copy(s.tmp, y)
	for i, ki := range k {
		if c[i] != 0 {
			floats.AddScaled(s.tmp, h*c[i], ki)
		}
	}
	return s.tmp
}

// errNorm returns the root-mean-square error of the step scaled by
// the tolerances.
func (s *dopri) errNorm(y, y5 []float64) float64 {
	var sum float64
	for i, e := range s.errv {
		sc := s.atol + s.rtol*math.Max(math.Abs(y[i]), math.Abs(y5[i]))
		sum += (e / sc) * (e / sc)
	}
	return math.Sqrt(sum / float64(len(s.errv)))
}

// initialStep estimates a first step size from the magnitudes of
// the state and its derivative.
func (s *dopri) initialStep(y, f []float64, dt float64) float64 {
	var d0, d1 float64
	for i := range y {
		sc := s.atol + s.rtol*math.Abs(y[i])
		d0 += (y[i] / sc) * (y[i] / sc)
		d1 += (f[i] / sc) * (f[i] / sc)
	}
	d0 = math.Sqrt(d0 / float64(len(y)))
	d1 = math.Sqrt(d1 / float64(len(y)))
	if d0 < 1.e-5 || d1 < 1.e-5 {
		return math.Min(dt, 1.e-6*math.Max(dt, 1))
	}
	return math.Min(dt, 0.01*d0/d1)
}

func (s *dopri) integrate(l *rateLaw, y []float64, temp, dt float64) {
	n := len(y)
	if n == 0 || !(dt > 0) {
		return
	}
	s.resize(n)
	l.setTemperature(temp, 1)

	l.derivative(y, s.k1)
	h := s.initialStep(y, s.k1, dt)
	var t float64
	for step := 0; t < dt; step++ {
		last := false
		if t+h >= dt {
			h = dt - t
			last = true
		}
		l.derivative(s.combine(y, h, []float64{a21}, s.k1), s.k2)
		l.derivative(s.combine(y, h, []float64{a31, a32}, s.k1, s.k2), s.k3)
		l.derivative(s.combine(y, h, []float64{a41, a42, a43}, s.k1, s.k2, s.k3), s.k4)
		l.derivative(s.combine(y, h, []float64{a51, a52, a53, a54}, s.k1, s.k2, s.k3, s.k4), s.k5)
		l.derivative(s.combine(y, h, []float64{a61, a62, a63, a64, a65},
			s.k1, s.k2, s.k3, s.k4, s.k5), s.k6)
		copy(s.y5, s.combine(y, h, []float64{b1, 0, b3, b4, b5, b6},
			s.k1, s.k2, s.k3, s.k4, s.k5, s.k6))
		l.derivative(s.y5, s.k7)

		for i := range s.errv {
			s.errv[i] = h * (e1*s.k1[i] + e3*s.k3[i] + e4*s.k4[i] +
				e5*s.k5[i] + e6*s.k6[i] + e7*s.k7[i])
		}
		errNorm := s.errNorm(y, s.y5)

		// Accept the step if the error is small enough, or if the step
		// budget has run out and the step has to be taken regardless.
		if errNorm <= 1 || step >= dopriMaxSteps || math.IsNaN(errNorm) {
			t += h
			if last {
				t = dt
			}
			copy(y, s.y5)
			copy(s.k1, s.k7)
			if errNorm == 0 || math.IsNaN(errNorm) {
				h *= dopriMaxFactor
			} else {
				h *= math.Min(dopriMaxFactor, dopriSafety*math.Pow(errNorm, -0.2))
			}
			continue
		}
		h *= math.Max(dopriMinFactor, dopriSafety*math.Pow(errNorm, -0.2))
	}
}
