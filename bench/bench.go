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

// Package bench drives a set of vessels through an episode of discrete
// actions, reacting their contents after every step and summarizing
// the physical limits that were reached as a penalty.
package bench

import (
	"fmt"
	"sort"

	"github.com/Knetic/govaluate"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/chembench"
)

// DefaultPenaltyExpression combines the feedback counts of a step into
// a penalty.
const DefaultPenaltyExpression = "-1.0*spill - 0.1*heat_limited - 0.5*overdrain"

// Waste is the Target of an action whose material is discarded.
const Waste = -1

// VesselSpec describes the initial state of a vessel.
type VesselSpec struct {
	Label       string
	Volume      float64            // [L]
	Temperature float64            // [K]
	Contents    map[string]float64 // [mol]
}

// Config holds the configuration of a Bench. Zero values select
// the vessel defaults.
type Config struct {
	Vessels []VesselSpec

	// Dt is the time advanced in each step [s].
	Dt float64

	Pixels        int
	SettleTime    float64
	MaxTempChange float64

	// PenaltyExpression combines the feedback counts of a step into a
	// penalty. It may use the variables spill, heat_limited, overdrain,
	// other, and step.
	PenaltyExpression string
}

// ActionKind is the kind of an Action.
type ActionKind int

// Action kinds.
const (
	Wait       ActionKind = iota // do nothing for one step
	Pour                         // pour fraction Amount of the filled volume into Target
	PourVolume                   // pour Amount [L] into Target
	Drain                        // drain the bottom Amount slices into Target
	Mix                          // mix with strength Amount
	Heat                         // heat toward Amount [K] with coefficient Coeff [1/s]
)

var actionNames = []string{"wait", "pour", "pour_volume", "drain", "mix", "heat"}

func (k ActionKind) String() string {
	if k < 0 || int(k) >= len(actionNames) {
		return fmt.Sprintf("ActionKind(%d)", int(k))
	}
	return actionNames[k]
}

// ParseActionKind returns the ActionKind named s.
func ParseActionKind(s string) (ActionKind, error) {
	for i, n := range actionNames {
		if n == s {
			return ActionKind(i), nil
		}
	}
	return Wait, fmt.Errorf("bench: invalid action kind %q", s)
}

// Action is an operation on vessel number Vessel.
type Action struct {
	Kind   ActionKind
	Vessel int
	Target int // receiving vessel index, or Waste
	Amount float64
	Coeff  float64
}

// StepResult reports the outcome of one step.
type StepResult struct {
	// Feedback holds the feedback codes of each vessel.
	Feedback [][]chembench.Feedback

	// Counts holds the number of times each feedback code was reported,
	// keyed by the code name, plus "other" for unrecognized codes.
	Counts map[string]int

	Penalty float64
}

// Bench is a set of vessels whose contents react. A Bench must not
// be used by more than one goroutine at a time.
type Bench struct {
	cfg     Config
	reg     *chembench.Registry
	engine  chembench.Reactor
	penalty *govaluate.EvaluableExpression

	vessels []*chembench.Vessel
	step    int

	Log logrus.FieldLogger
}

// Option configures a Bench.
type Option func(*Bench)

// Logger sets the destination of bench log messages.
func Logger(l logrus.FieldLogger) Option {
	return func(b *Bench) { b.Log = l }
}

var penaltyVariables = map[string]bool{
	chembench.Spill.String():       true,
	chembench.HeatLimited.String(): true,
	chembench.Overdrain.String():   true,
	"other":                        true,
	"step":                         true,
}

// New creates a bench from cfg, drawing materials from reg. If engine is
// not nil, the contents of every vessel react in each step. The vessels
// are created as if Reset had been called.
func New(cfg Config, reg *chembench.Registry, engine chembench.Reactor, opts ...Option) (*Bench, error) {
	if len(cfg.Vessels) == 0 {
		return nil, fmt.Errorf("bench: no vessels are configured")
	}
	if cfg.PenaltyExpression == "" {
		cfg.PenaltyExpression = DefaultPenaltyExpression
	}
	expr, err := govaluate.NewEvaluableExpression(cfg.PenaltyExpression)
	if err != nil {
		return nil, fmt.Errorf("bench: penalty expression: %v", err)
	}
	for _, v := range expr.Vars() {
		if !penaltyVariables[v] {
			return nil, fmt.Errorf("bench: penalty expression: unknown variable %q", v)
		}
	}
	b := &Bench{
		cfg:     cfg,
		reg:     reg,
		engine:  engine,
		penalty: expr,
		Log:     logrus.StandardLogger(),
	}
	for _, o := range opts {
		o(b)
	}
	if err := b.Reset(); err != nil {
		return nil, err
	}
	return b, nil
}

// Reset discards the current vessels and creates new ones in their
// initial state.
func (b *Bench) Reset() error {
	vessels := make([]*chembench.Vessel, len(b.cfg.Vessels))
	for i, s := range b.cfg.Vessels {
		var opts []chembench.VesselOption
		if s.Volume != 0 {
			opts = append(opts, chembench.Volume(s.Volume))
		}
		if s.Temperature != 0 {
			opts = append(opts, chembench.Temperature(s.Temperature))
		}
		if b.cfg.Dt != 0 {
			opts = append(opts, chembench.DefaultDt(b.cfg.Dt))
		}
		if b.cfg.Pixels != 0 {
			opts = append(opts, chembench.Pixels(b.cfg.Pixels))
		}
		if b.cfg.SettleTime != 0 {
			opts = append(opts, chembench.SettleTime(b.cfg.SettleTime))
		}
		if b.cfg.MaxTempChange != 0 {
			opts = append(opts, chembench.MaxTempChange(b.cfg.MaxTempChange))
		}
		opts = append(opts, chembench.Contents(s.Contents))
		label := s.Label
		if label == "" {
			label = fmt.Sprintf("vessel%d", i)
		}
		v, err := chembench.NewVessel(b.reg, label, opts...)
		if err != nil {
			return fmt.Errorf("bench: creating vessel %d: %v", i, err)
		}
		vessels[i] = v
	}
	b.vessels = vessels
	b.step = 0
	return nil
}

// Vessels returns the vessels of the bench, in configuration order.
func (b *Bench) Vessels() []*chembench.Vessel { return b.vessels }

// NumSteps returns the number of steps taken since the last Reset.
func (b *Bench) NumSteps() int { return b.step }

func (b *Bench) vessel(i int) (*chembench.Vessel, error) {
	if i < 0 || i >= len(b.vessels) {
		return nil, fmt.Errorf("bench: vessel index %d out of range [0, %d)", i, len(b.vessels))
	}
	return b.vessels[i], nil
}

func (b *Bench) target(i int) (*chembench.Vessel, error) {
	if i == Waste {
		return nil, nil
	}
	return b.vessel(i)
}

// event translates a into an event on its source vessel. It returns
// the index of the receiving vessel, or Waste.
func (b *Bench) event(a Action) (chembench.Event, int, error) {
	src, err := b.vessel(a.Vessel)
	if err != nil {
		return nil, Waste, err
	}
	switch a.Kind {
	case Wait:
		return nil, Waste, nil
	case Mix:
		return chembench.Mix{Strength: a.Amount}, Waste, nil
	case Heat:
		return chembench.HeatContact{TargetTemp: a.Amount, HeatTransferCoeff: a.Coeff}, Waste, nil
	case Pour, PourVolume, Drain:
	default:
		return nil, Waste, fmt.Errorf("bench: invalid action kind %v", a.Kind)
	}
	dst, err := b.target(a.Target)
	if err != nil {
		return nil, Waste, err
	}
	if dst == src {
		return nil, Waste, fmt.Errorf("bench: vessel %d cannot %v into itself", a.Vessel, a.Kind)
	}
	switch a.Kind {
	case Pour:
		return chembench.PourByPercent{Target: dst, Fraction: a.Amount}, a.Target, nil
	case PourVolume:
		return chembench.PourByVolume{Target: dst, Volume: a.Amount}, a.Target, nil
	default:
		return chembench.DrainByPixel{Target: dst, Pixels: int(a.Amount + 0.5)}, a.Target, nil
	}
}

// Step applies actions and then advances every vessel by one time step.
// Invalid actions are reported as errors before any vessel is changed.
func (b *Bench) Step(actions []Action) (*StepResult, error) {
	events := make([][]chembench.Event, len(b.vessels))
	targeted := make([]bool, len(b.vessels))
	for _, a := range actions {
		e, dst, err := b.event(a)
		if err != nil {
			return nil, err
		}
		if e == nil {
			continue
		}
		events[a.Vessel] = append(events[a.Vessel], e)
		targeted[a.Vessel] = true
		if dst != Waste {
			targeted[dst] = true
		}
	}
	for i := range b.vessels {
		if b.engine != nil {
			events[i] = append(events[i], chembench.React{Engine: b.engine})
		}
		if !targeted[i] {
			events[i] = append(events[i], chembench.UpdateLayer{})
		}
	}

	r := &StepResult{
		Feedback: make([][]chembench.Feedback, len(b.vessels)),
		Counts: map[string]int{
			chembench.Spill.String():       0,
			chembench.HeatLimited.String(): 0,
			chembench.Overdrain.String():   0,
			"other":                        0,
		},
	}
	for i, v := range b.vessels {
		r.Feedback[i] = v.Apply(events[i], b.cfg.Dt)
		for _, f := range r.Feedback[i] {
			switch f {
			case chembench.Spill, chembench.HeatLimited, chembench.Overdrain:
				r.Counts[f.String()]++
			default:
				r.Counts["other"]++
			}
		}
	}
	b.step++

	params := make(map[string]interface{}, len(r.Counts)+1)
	for k, c := range r.Counts {
		params[k] = float64(c)
	}
	params["step"] = float64(b.step)
	p, err := b.penalty.Evaluate(params)
	if err != nil {
		return nil, fmt.Errorf("bench: evaluating penalty: %v", err)
	}
	var ok bool
	if r.Penalty, ok = p.(float64); !ok {
		return nil, fmt.Errorf("bench: penalty expression returned %v (%T) instead of a number", p, p)
	}
	if r.Penalty != 0 {
		b.Log.WithFields(logrus.Fields{
			"step":    b.step,
			"penalty": r.Penalty,
			"counts":  sortedCounts(r.Counts),
		}).Debug("bench: physical limits reached")
	}
	return r, nil
}

func sortedCounts(c map[string]int) []string {
	out := make([]string, 0, len(c))
	for k, n := range c {
		if n > 0 {
			out = append(out, fmt.Sprintf("%s=%d", k, n))
		}
	}
	sort.Strings(out)
	return out
}
