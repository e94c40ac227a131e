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

import "strings"

// Names of the available integration strategies.
const (
	// RK45 is an adaptive Dormand–Prince 5(4) Runge–Kutta integrator.
	// It is used when an unrecognized solver name is requested.
	RK45 = "RK45"

	// Fast is a variable-step explicit integrator that limits the
	// fractional change of every concentration in each substep.
	Fast = "fast"
)

// DefaultSolver is the integrator used when none is specified or the
// requested one is not recognized.
const DefaultSolver = RK45

// solver integrates concentrations over time.
type solver interface {
	// integrate advances conc in place over time dt using the rate
	// law l at temperature temp.
	integrate(l *rateLaw, conc []float64, temp, dt float64)
}

var solverAliases = map[string]string{
	"rk45":     RK45,
	"dopri5":   RK45,
	"adaptive": RK45,
	"fast":     Fast,
	"stiff":    Fast,
	"newton":   Fast,
}

// canonicalSolver returns the canonical name of the solver called name,
// and whether name was recognized.
func canonicalSolver(name string) (string, bool) {
	if name == "" {
		return DefaultSolver, true
	}
	s, ok := solverAliases[strings.ToLower(name)]
	if !ok {
		return DefaultSolver, false
	}
	return s, true
}
