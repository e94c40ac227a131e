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

// Package kinetics contains a mass-action chemical kinetics engine for
// ChemBench vessels, along with the text format used to describe
// reaction networks.
package kinetics

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"

	"github.com/BurntSushi/toml"
	"github.com/spatialmodel/chembench/cloud"
	"github.com/spatialmodel/chembench/internal/hash"
)

// Description is a reaction network: the participating species, the
// stoichiometry, and the kinetic constants of each elementary reaction.
// A Description must not be modified after it has been loaded.
type Description struct {
	Name string `toml:"name"`

	Reactants []string `toml:"REACTANTS"`
	Products  []string `toml:"PRODUCTS"`
	Solvents  []string `toml:"SOLVENTS"`
	Materials []string `toml:"MATERIALS"` // union of all tracked species

	// PreExp and ActivEnergy hold the Arrhenius pre-exponential factor
	// and activation energy [J/mol] of each reaction.
	PreExp      []float64 `toml:"pre_exp_arr"`
	ActivEnergy []float64 `toml:"activ_energy_arr"`

	// Stoich holds the exponent of each reactant concentration in the
	// rate of each reaction [reactions × reactants].
	Stoich [][]float64 `toml:"stoich_coeff_arr"`

	// ConcCoeff holds the change in concentration of each material per
	// unit rate of each reaction [materials × reactions].
	ConcCoeff [][]float64 `toml:"conc_coeff_arr"`
}

// MalformedDescriptionError is returned when a reaction description
// cannot be decoded or is internally inconsistent.
type MalformedDescriptionError struct {
	Name   string
	Reason string
}

func (e *MalformedDescriptionError) Error() string {
	if e.Name == "" {
		return "kinetics: malformed reaction description: " + e.Reason
	}
	return fmt.Sprintf("kinetics: malformed reaction description %q: %s", e.Name, e.Reason)
}

// NumReactions returns the number of elementary reactions.
func (d *Description) NumReactions() int { return len(d.PreExp) }

// Fingerprint returns a key that identifies the contents of d.
func (d *Description) Fingerprint() string { return hash.Hash(d) }

// LoadDescription decodes and validates a reaction description in
// TOML format.
func LoadDescription(r io.Reader) (*Description, error) {
	d := new(Description)
	md, err := toml.DecodeReader(r, d)
	if err != nil {
		return nil, &MalformedDescriptionError{Reason: err.Error()}
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, &MalformedDescriptionError{Name: d.Name,
			Reason: fmt.Sprintf("unrecognized keys %v", undecoded)}
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// ReadDescription loads the reaction description at path, which may
// be a local file or a blob storage URL.
func ReadDescription(ctx context.Context, path string) (*Description, error) {
	b, err := cloud.ReadAll(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("kinetics: reading reaction description: %v", err)
	}
	return LoadDescription(bytes.NewReader(b))
}

// Dump writes d to w in the format read by LoadDescription.
func (d *Description) Dump(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(d); err != nil {
		return fmt.Errorf("kinetics: writing reaction description %q: %v", d.Name, err)
	}
	return nil
}

// Validate checks that d is internally consistent. It replaces any
// missing lists with empty ones.
func (d *Description) Validate() error {
	bad := func(format string, a ...interface{}) error {
		return &MalformedDescriptionError{Name: d.Name, Reason: fmt.Sprintf(format, a...)}
	}
	for _, l := range []*[]string{&d.Reactants, &d.Products, &d.Solvents, &d.Materials} {
		if *l == nil {
			*l = []string{}
		}
	}
	if d.PreExp == nil {
		d.PreExp = []float64{}
	}
	if d.ActivEnergy == nil {
		d.ActivEnergy = []float64{}
	}
	if d.Stoich == nil {
		d.Stoich = [][]float64{}
	}
	if d.ConcCoeff == nil {
		d.ConcCoeff = [][]float64{}
	}

	if len(d.Materials) == 0 {
		return bad("MATERIALS is empty")
	}
	index := make(map[string]int, len(d.Materials))
	for i, m := range d.Materials {
		if m == "" {
			return bad("MATERIALS entry %d is empty", i)
		}
		if _, ok := index[m]; ok {
			return bad("material %s is listed more than once in MATERIALS", m)
		}
		index[m] = i
	}
	for _, l := range []struct {
		name string
		ids  []string
	}{{"REACTANTS", d.Reactants}, {"PRODUCTS", d.Products}, {"SOLVENTS", d.Solvents}} {
		for _, id := range l.ids {
			if _, ok := index[id]; !ok {
				return bad("%s entry %s is not listed in MATERIALS", l.name, id)
			}
		}
	}

	nr := len(d.PreExp)
	if nr == 0 {
		return bad("there are no reactions (pre_exp_arr is empty)")
	}
	if len(d.ActivEnergy) != nr {
		return bad("activ_energy_arr has %d entries but pre_exp_arr has %d", len(d.ActivEnergy), nr)
	}
	if len(d.Stoich) != nr {
		return bad("stoich_coeff_arr has %d rows but there are %d reactions", len(d.Stoich), nr)
	}
	for i, row := range d.Stoich {
		if len(row) != len(d.Reactants) {
			return bad("stoich_coeff_arr row %d has %d columns but there are %d reactants",
				i, len(row), len(d.Reactants))
		}
		for _, s := range row {
			if s < 0 || !finite(s) {
				return bad("stoich_coeff_arr row %d has invalid exponent %g", i, s)
			}
		}
	}
	if len(d.ConcCoeff) != len(d.Materials) {
		return bad("conc_coeff_arr has %d rows but there are %d materials",
			len(d.ConcCoeff), len(d.Materials))
	}
	for i, row := range d.ConcCoeff {
		if len(row) != nr {
			return bad("conc_coeff_arr row %d has %d columns but there are %d reactions", i, len(row), nr)
		}
		for _, c := range row {
			if !finite(c) {
				return bad("conc_coeff_arr row %d has invalid coefficient %g", i, c)
			}
		}
	}
	for i := 0; i < nr; i++ {
		if d.PreExp[i] < 0 || !finite(d.PreExp[i]) {
			return bad("reaction %d has invalid pre-exponential factor %g", i, d.PreExp[i])
		}
		if !finite(d.ActivEnergy[i]) {
			return bad("reaction %d has invalid activation energy %g", i, d.ActivEnergy[i])
		}
	}
	return nil
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }
