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
	"context"
	"math"
	"sync"
	"testing"

	"github.com/GaryBoone/GoStats/stats"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/spatialmodel/chembench"
)

// unitRegistry returns a registry of liquids that occupy 1 L/mol.
func unitRegistry(t *testing.T, ids ...string) *chembench.Registry {
	r := chembench.NewRegistry()
	for _, id := range ids {
		err := r.Register(&chembench.Template{
			ID:           id,
			Name:         id,
			MolarMass:    1,
			MeltingPoint: 200,
			BoilingPoint: 500,
			Density:      map[chembench.Phase]float64{chembench.Liquid: 1},
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	r.Freeze()
	return r
}

func decayVessel(t *testing.T, reg *chembench.Registry, molA float64) *chembench.Vessel {
	v, err := chembench.NewVessel(reg, "beaker",
		chembench.Volume(2),
		chembench.Temperature(300),
		chembench.Contents(map[string]float64{"A": molA}),
	)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestEngine_simpleDepletion(t *testing.T) {
	d := loadTestDescription(t, "decay")
	reg := unitRegistry(t, "A", "B")
	want := math.Exp(-1)
	for _, name := range []string{Fast, RK45} {
		t.Run(name, func(t *testing.T) {
			e, err := NewEngine(d, reg, Solver(name), Substeps(100))
			if err != nil {
				t.Fatal(err)
			}
			v := decayVessel(t, reg, 1)
			e.UpdateConcentrations(v, 1)
			if a := v.Amount("A"); different(a, want, 0.01) {
				t.Errorf("A: %g != %g", a, want)
			}
			if b := v.Amount("B"); different(b, 1-want, 0.01) {
				t.Errorf("B: %g != %g", b, 1-want)
			}
			if total := v.TotalMoles(); different(total, 1, 1.e-9) {
				t.Errorf("total moles: %g != 1", total)
			}
		})
	}
}

func TestEngine_firstOrderAgreement(t *testing.T) {
	d := loadTestDescription(t, "decay")
	for _, name := range []string{Fast, RK45} {
		e, err := NewEngine(d, nil, Solver(name))
		if err != nil {
			t.Fatal(err)
		}
		for _, dt := range []float64{0.01, 0.1, 0.25, 0.49} {
			conc := []float64{3, 0}
			e.Integrate(conc, 300, dt)
			want := 3 * math.Exp(-dt)
			if different(conc[0], want, 0.01) {
				t.Errorf("%s dt=%g: %g != %g", name, dt, conc[0], want)
			}
			if different(conc[0]+conc[1], 3, 1.e-9) {
				t.Errorf("%s dt=%g: total %g != 3", name, dt, conc[0]+conc[1])
			}
		}
	}
}

func TestEngine_nonNegative(t *testing.T) {
	d := loadTestDescription(t, "ab_cde")
	// Make the first reaction much faster than the time step.
	d.PreExp = []float64{1.e4, 50}
	reg := chembench.DefaultRegistry()
	for _, name := range []string{Fast, RK45} {
		t.Run(name, func(t *testing.T) {
			e, err := NewEngine(d, reg, Solver(name))
			if err != nil {
				t.Fatal(err)
			}
			v, err := chembench.NewVessel(reg, "flask", chembench.Temperature(300),
				chembench.Contents(map[string]float64{"A": 1, "B": 2}))
			if err != nil {
				t.Fatal(err)
			}
			for i := 0; i < 10; i++ {
				e.UpdateConcentrations(v, 0.5)
				for id, m := range v.Materials {
					if !(m.Mol >= chembench.MinQuantity) {
						t.Errorf("step %d: %s has %g mol", i, id, m.Mol)
					}
				}
			}
			if a := v.Amount("A"); a > 1.e-3 {
				t.Errorf("A was not used up: %g mol", a)
			}
			if b := v.Amount("B"); different(b, 1, 1.e-3) {
				t.Errorf("B: %g != 1", b)
			}
		})
	}
}

func TestEngine_emptyVessel(t *testing.T) {
	d := loadTestDescription(t, "decay")
	reg := unitRegistry(t, "A", "B")
	e, err := NewEngine(d, reg)
	if err != nil {
		t.Fatal(err)
	}
	v, err := chembench.NewVessel(reg, "empty")
	if err != nil {
		t.Fatal(err)
	}
	e.UpdateConcentrations(v, 1)
	if len(v.Materials) != 0 {
		t.Errorf("empty vessel gained materials: %v", v.Materials)
	}
}

func TestEngine_unknownMaterial(t *testing.T) {
	d := loadTestDescription(t, "decay")
	_, err := NewEngine(d, unitRegistry(t, "A"))
	if _, ok := err.(*chembench.UnknownMaterialError); !ok {
		t.Errorf("error %v has type %T", err, err)
	}
}

func TestEngine_options(t *testing.T) {
	d := loadTestDescription(t, "decay")
	if _, err := NewEngine(d, nil, Substeps(0)); err == nil {
		t.Error("expected an error for zero substeps")
	}
	if _, err := NewEngine(d, nil, Tolerance(0, 1)); err == nil {
		t.Error("expected an error for a zero tolerance")
	}

	for _, test := range []struct {
		name, want string
	}{
		{"", RK45},
		{"dopri5", RK45},
		{"Adaptive", RK45},
		{"fast", Fast},
		{"stiff", Fast},
		{"newton", Fast},
	} {
		t.Run(test.name, func(t *testing.T) {
			logger, hook := logtest.NewNullLogger()
			e, err := NewEngine(d, nil, Solver(test.name), Logger(logger))
			if err != nil {
				t.Fatal(err)
			}
			if e.SolverName() != test.want {
				t.Errorf("solver: %s != %s", e.SolverName(), test.want)
			}
			if len(hook.Entries) != 0 {
				t.Errorf("unexpected log messages: %v", hook.Entries)
			}
		})
	}
}

func TestEngine_solverFallback(t *testing.T) {
	d := loadTestDescription(t, "decay")
	logger, hook := logtest.NewNullLogger()
	e, err := NewEngine(d, nil, Solver("implicit-euler"), Logger(logger))
	if err != nil {
		t.Fatal(err)
	}
	if e.SolverName() != RK45 {
		t.Errorf("solver: %s != %s", e.SolverName(), RK45)
	}
	if len(hook.Entries) != 1 {
		t.Fatalf("want 1 log message, have %d", len(hook.Entries))
	}
	if entry := hook.LastEntry(); entry.Level != logrus.WarnLevel {
		t.Errorf("log level: %v != %v", entry.Level, logrus.WarnLevel)
	} else if entry.Data["solver"] != "implicit-euler" {
		t.Errorf("solver field: %v", entry.Data["solver"])
	}
}

func TestEngine_overfill(t *testing.T) {
	d := loadTestDescription(t, "decay")
	reg := chembench.NewRegistry()
	for id, density := range map[string]float64{"A": 10, "B": 1} {
		err := reg.Register(&chembench.Template{
			ID: id, MolarMass: 1, MeltingPoint: 200, BoilingPoint: 500,
			Density: map[chembench.Phase]float64{chembench.Liquid: density},
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	reg.Freeze()
	logger, hook := logtest.NewNullLogger()
	e, err := NewEngine(d, reg, Solver(Fast), Logger(logger))
	if err != nil {
		t.Fatal(err)
	}
	// 5 mol of A fill 0.5 L; the B they turn into fills about 5 L.
	v := decayVessel(t, reg, 5)
	e.UpdateConcentrations(v, 5)
	if len(hook.Entries) != 1 {
		t.Fatalf("want 1 log message, have %d", len(hook.Entries))
	}
	if entry := hook.LastEntry(); entry.Level != logrus.WarnLevel || entry.Data["vessel"] != "beaker" {
		t.Errorf("log entry: %v %v", entry.Level, entry.Data)
	}

	t.Run("fits", func(t *testing.T) {
		logger, hook := logtest.NewNullLogger()
		e, err := NewEngine(d, reg, Solver(Fast), Logger(logger))
		if err != nil {
			t.Fatal(err)
		}
		v := decayVessel(t, reg, 1)
		e.UpdateConcentrations(v, 0.1)
		if len(hook.Entries) != 0 {
			t.Errorf("unexpected log messages: %v", hook.Entries)
		}
	})
}

// TestEngine_rateRecovery checks that the decay rate constant can be
// recovered from a time series of integrated concentrations.
func TestEngine_rateRecovery(t *testing.T) {
	d := loadTestDescription(t, "decay")
	d.PreExp = []float64{0.3}
	d.ActivEnergy = []float64{2000}
	const temp = 350.
	k := RateConstants(d.PreExp, d.ActivEnergy, temp, 1)[0]
	for _, name := range []string{Fast, RK45} {
		t.Run(name, func(t *testing.T) {
			e, err := NewEngine(d, nil, Solver(name))
			if err != nil {
				t.Fatal(err)
			}
			conc := []float64{1, 0}
			var x, y []float64
			for i := 1; i <= 20; i++ {
				e.Integrate(conc, temp, 0.5)
				x = append(x, 0.5*float64(i))
				y = append(y, math.Log(conc[0]))
			}
			slope, intercept, rsquared, _, _, _ := stats.LinearRegression(x, y)
			if different(-slope, k, 0.01) {
				t.Errorf("rate constant: %g != %g", -slope, k)
			}
			if math.Abs(intercept) > 0.01 {
				t.Errorf("intercept: %g != 0", intercept)
			}
			if rsquared < 0.999 {
				t.Errorf("R²: %g", rsquared)
			}
		})
	}
}

func TestLoader(t *testing.T) {
	l := NewLoader(2)
	ctx := context.Background()
	var wg sync.WaitGroup
	results := make([]*Description, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d, err := l.Load(ctx, "testdata/ab_cde.toml")
			if err != nil {
				t.Error(err)
				return
			}
			results[i] = d
		}(i)
	}
	wg.Wait()
	for i, d := range results {
		if d == nil || d.Name != "ab_cde" {
			t.Fatalf("description %d: %+v", i, d)
		}
	}

	if _, err := l.Load(ctx, "testdata/missing.toml"); err == nil {
		t.Error("expected an error for a missing file")
	}
	d, err := l.Load(ctx, "testdata/decay.toml")
	if err != nil {
		t.Fatal(err)
	}
	if d.Name != "decay" {
		t.Errorf("name: %s != decay", d.Name)
	}
}
