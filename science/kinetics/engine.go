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
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/chembench"
)

// MinQuantity is the quantity [mol] below which integrated amounts are
// set to zero.
const MinQuantity = 1.e-12

// Default integration tolerances of the adaptive solver.
const (
	DefaultRelTol = 1.e-6
	DefaultAbsTol = 1.e-10
)

// Engine integrates the reactions of a Description in the contents of
// a vessel. It holds integration workspaces, so an Engine must not be
// used by more than one goroutine at a time.
type Engine struct {
	desc *Description
	law  *rateLaw

	solverName string
	substeps   int
	rtol, atol float64

	solver solver
	conc   []float64

	Log logrus.FieldLogger
}

// Option configures an Engine.
type Option func(*Engine) error

// Solver selects the integration strategy by name. Unrecognized names
// fall back to RK45 with a warning.
func Solver(name string) Option {
	return func(e *Engine) error {
		e.solverName = name
		return nil
	}
}

// Substeps sets the nominal number of substeps of the fast solver.
func Substeps(n int) Option {
	return func(e *Engine) error {
		if n < 1 {
			return fmt.Errorf("kinetics: number of substeps must be positive but is %d", n)
		}
		e.substeps = n
		return nil
	}
}

// Tolerance sets the relative and absolute error tolerances of the
// adaptive solver.
func Tolerance(rtol, atol float64) Option {
	return func(e *Engine) error {
		if !(rtol > 0) || !(atol > 0) {
			return fmt.Errorf("kinetics: tolerances must be positive but are %g and %g", rtol, atol)
		}
		e.rtol, e.atol = rtol, atol
		return nil
	}
}

// Logger sets the destination of engine warnings.
func Logger(l logrus.FieldLogger) Option {
	return func(e *Engine) error {
		e.Log = l
		return nil
	}
}

// NewEngine creates a reaction engine for the network d. If reg is not
// nil, every material in d must be registered in it.
func NewEngine(d *Description, reg *chembench.Registry, opts ...Option) (*Engine, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if reg != nil {
		for _, id := range d.Materials {
			if _, err := reg.Lookup(id); err != nil {
				return nil, err
			}
		}
	}
	e := &Engine{
		desc:     d,
		law:      newDescriptionRateLaw(d),
		substeps: DefaultSubsteps,
		rtol:     DefaultRelTol,
		atol:     DefaultAbsTol,
		conc:     make([]float64, len(d.Materials)),
		Log:      logrus.StandardLogger(),
	}
	for _, o := range opts {
		if err := o(e); err != nil {
			return nil, err
		}
	}
	name, ok := canonicalSolver(e.solverName)
	if !ok {
		e.Log.WithFields(logrus.Fields{
			"solver":      e.solverName,
			"description": d.Name,
		}).Warnf("kinetics: unknown solver; using %s", name)
	}
	e.solverName = name
	switch name {
	case Fast:
		e.solver = newFast(e.substeps)
	default:
		e.solver = newDopri(e.rtol, e.atol)
	}
	return e, nil
}

// SolverName returns the canonical name of the integration strategy
// in use.
func (e *Engine) SolverName() string { return e.solverName }

// Description returns the reaction network the engine integrates.
func (e *Engine) Description() *Description { return e.desc }

// Integrate advances the concentrations conc of the materials in
// Description().Materials, in place, over time dt [s] at temperature
// temp [K].
func (e *Engine) Integrate(conc []float64, temp, dt float64) {
	e.solver.integrate(e.law, conc, temp, dt)
}

// UpdateConcentrations advances the reactions in v over time dt [s].
// Materials that appear are created from the vessel's registry, and
// materials that are used up are removed. A warning is logged if the
// products overfill the vessel.
func (e *Engine) UpdateConcentrations(v *chembench.Vessel, dt float64) {
	if !(dt > 0) {
		return
	}
	var total float64
	for i, id := range e.desc.Materials {
		e.conc[i] = v.Amount(id)
		total += e.conc[i]
	}
	if total < MinQuantity {
		return
	}
	vol := v.FilledVolume()
	if !(vol > 0) {
		vol = v.Volume
	}
	for i := range e.conc {
		e.conc[i] /= vol
	}

	e.solver.integrate(e.law, e.conc, v.Temperature, dt)

	for i, id := range e.desc.Materials {
		mol := e.conc[i] * vol
		switch {
		case math.IsNaN(mol) || math.IsInf(mol, 0):
			e.Log.WithFields(logrus.Fields{"material": id, "vessel": v.Label}).
				Warn("kinetics: non-finite amount after integration; setting to zero")
			mol = 0
		case mol < -MinQuantity:
			e.Log.WithFields(logrus.Fields{"material": id, "vessel": v.Label, "mol": mol}).
				Warn("kinetics: negative amount after integration; the solver may need more substeps")
			mol = 0
		case mol < MinQuantity:
			mol = 0
		}
		if err := v.SetAmount(id, mol); err != nil {
			e.Log.WithFields(logrus.Fields{"material": id, "vessel": v.Label}).
				Errorf("kinetics: %v", err)
		}
	}
	v.Settle()
	if f := v.FilledVolume(); f > v.Volume*(1+1.e-9) {
		e.Log.WithFields(logrus.Fields{"vessel": v.Label, "filled_volume": f, "volume": v.Volume}).
			Warn("kinetics: reaction products no longer fit in the vessel")
	}
}
