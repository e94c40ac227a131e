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

package benchutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/chembench"
	"github.com/spatialmodel/chembench/bench"
	"github.com/spatialmodel/chembench/cloud"
	"github.com/spatialmodel/chembench/science/kinetics"
	"github.com/spf13/cast"
)

// Registry returns the default material registry, extended with the
// templates in the file named by the MaterialsFile configuration
// variable, if any.
func Registry(ctx context.Context, cfg *viper.Viper) (*chembench.Registry, error) {
	reg := chembench.NewRegistry()
	for _, t := range chembench.DefaultTemplates() {
		if err := reg.Register(t); err != nil {
			return nil, err
		}
	}
	if f := os.ExpandEnv(cfg.GetString("MaterialsFile")); f != "" {
		b, err := cloud.ReadAll(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("chembench: reading materials file: %v", err)
		}
		if err := reg.Load(bytes.NewReader(b)); err != nil {
			return nil, err
		}
	}
	reg.Freeze()
	return reg, nil
}

// Engine returns a reaction engine for the reaction description named
// by the ReactionFile configuration variable, or nil if none is named.
func Engine(ctx context.Context, cfg *viper.Viper, reg *chembench.Registry, l *kinetics.Loader, log logrus.FieldLogger) (*kinetics.Engine, error) {
	f := os.ExpandEnv(cfg.GetString("ReactionFile"))
	if f == "" {
		return nil, nil
	}
	d, err := l.Load(ctx, f)
	if err != nil {
		return nil, err
	}
	return kinetics.NewEngine(d, reg,
		kinetics.Solver(cfg.GetString("Solver")),
		kinetics.Substeps(cfg.GetInt("Substeps")),
		kinetics.Logger(log),
	)
}

// BenchConfig returns the bench configuration specified by cfg.
// Material IDs in the vessel contents are matched to reg without
// regard to case if there is no exact match.
func BenchConfig(cfg *viper.Viper, reg *chembench.Registry) (bench.Config, error) {
	c := bench.Config{
		Dt:                cfg.GetFloat64("Dt"),
		Pixels:            cfg.GetInt("Pixels"),
		SettleTime:        cfg.GetFloat64("SettleTime"),
		MaxTempChange:     cfg.GetFloat64("MaxTempChange"),
		PenaltyExpression: cfg.GetString("PenaltyExpression"),
	}
	if !(c.Dt > 0) {
		return c, fmt.Errorf("chembench: Dt=%g but should be >0", c.Dt)
	}
	vessels, err := list(cfg.Get("Vessels"))
	if err != nil {
		return c, fmt.Errorf("chembench: parsing Vessels: %v", err)
	}
	if len(vessels) == 0 {
		return c, fmt.Errorf("chembench: Vessels is not specified")
	}
	for i, v := range vessels {
		s, err := vesselSpec(v, reg)
		if err != nil {
			return c, fmt.Errorf("chembench: parsing vessel %d: %v", i, err)
		}
		c.Vessels = append(c.Vessels, s)
	}
	return c, nil
}

// Script returns the actions to take in each step, as specified by the
// Steps configuration variable. Each step is a table with an Actions
// list.
func Script(cfg *viper.Viper) ([][]bench.Action, error) {
	steps, err := list(cfg.Get("Steps"))
	if err != nil {
		return nil, fmt.Errorf("chembench: parsing Steps: %v", err)
	}
	script := make([][]bench.Action, len(steps))
	for i, s := range steps {
		m, err := cast.ToStringMapE(s)
		if err != nil {
			return nil, fmt.Errorf("chembench: parsing step %d: %v", i, err)
		}
		actions, err := list(field(m, "Actions"))
		if err != nil {
			return nil, fmt.Errorf("chembench: parsing step %d: %v", i, err)
		}
		for j, a := range actions {
			action, err := parseAction(a)
			if err != nil {
				return nil, fmt.Errorf("chembench: parsing step %d action %d: %v", i, j, err)
			}
			script[i] = append(script[i], action)
		}
	}
	return script, nil
}

// list returns v as a list, accounting for the fact that it might
// be a json array if it was set from a command line argument.
func list(v interface{}) ([]interface{}, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(t) == "" {
			return nil, nil
		}
		var out []interface{}
		if err := json.Unmarshal([]byte(t), &out); err != nil {
			return nil, err
		}
		return out, nil
	case []map[string]interface{}:
		out := make([]interface{}, len(t))
		for i, m := range t {
			out[i] = m
		}
		return out, nil
	default:
		return cast.ToSliceE(v)
	}
}

// field returns the value of key in m, matching the key without
// regard to case if there is no exact match.
func field(m map[string]interface{}, key string) interface{} {
	if v, ok := m[key]; ok {
		return v
	}
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return nil
}

func optionalFloat(m map[string]interface{}, key string) (float64, error) {
	v := field(m, key)
	if v == nil {
		return 0, nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %v", key, err)
	}
	return f, nil
}

func vesselSpec(v interface{}, reg *chembench.Registry) (bench.VesselSpec, error) {
	var s bench.VesselSpec
	m, err := cast.ToStringMapE(v)
	if err != nil {
		return s, err
	}
	if s.Label, err = cast.ToStringE(field(m, "Label")); err != nil {
		return s, fmt.Errorf("Label: %v", err)
	}
	if s.Volume, err = optionalFloat(m, "Volume"); err != nil {
		return s, err
	}
	if s.Temperature, err = optionalFloat(m, "Temperature"); err != nil {
		return s, err
	}
	c := field(m, "Contents")
	if c == nil {
		return s, nil
	}
	contents, err := cast.ToStringMapE(c)
	if err != nil {
		return s, fmt.Errorf("Contents: %v", err)
	}
	s.Contents = make(map[string]float64, len(contents))
	for id, mol := range contents {
		f, err := cast.ToFloat64E(mol)
		if err != nil {
			return s, fmt.Errorf("Contents.%s: %v", id, err)
		}
		s.Contents[materialID(reg, id)] = f
	}
	return s, nil
}

// materialID returns the ID of the registered material matching id.
func materialID(reg *chembench.Registry, id string) string {
	if _, err := reg.Lookup(id); err == nil {
		return id
	}
	for _, r := range reg.IDs() {
		if strings.EqualFold(r, id) {
			return r
		}
	}
	return id
}

func parseAction(v interface{}) (bench.Action, error) {
	a := bench.Action{Target: bench.Waste}
	m, err := cast.ToStringMapE(v)
	if err != nil {
		return a, err
	}
	kind, err := cast.ToStringE(field(m, "Kind"))
	if err != nil {
		return a, fmt.Errorf("Kind: %v", err)
	}
	if a.Kind, err = bench.ParseActionKind(strings.ToLower(kind)); err != nil {
		return a, err
	}
	if a.Vessel, err = cast.ToIntE(field(m, "Vessel")); err != nil {
		return a, fmt.Errorf("Vessel: %v", err)
	}
	if t := field(m, "Target"); t != nil {
		if a.Target, err = cast.ToIntE(t); err != nil {
			return a, fmt.Errorf("Target: %v", err)
		}
	}
	if a.Amount, err = optionalFloat(m, "Amount"); err != nil {
		return a, err
	}
	if a.Coeff, err = optionalFloat(m, "Coeff"); err != nil {
		return a, err
	}
	return a, nil
}
