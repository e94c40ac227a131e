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

import (
	"fmt"
	"io"
	"sort"

	"github.com/BurntSushi/toml"
)

// UnknownMaterialError is returned when a material ID has not
// been registered.
type UnknownMaterialError struct {
	ID string
}

func (e *UnknownMaterialError) Error() string {
	return fmt.Sprintf("chembench: unknown material %q", e.ID)
}

// DuplicateMaterialError is returned when a material ID is
// registered more than once.
type DuplicateMaterialError struct {
	ID string
}

func (e *DuplicateMaterialError) Error() string {
	return fmt.Sprintf("chembench: material %q is already registered", e.ID)
}

// Registry is a catalog of material templates keyed by chemical ID.
// A Registry is populated once and then frozen; a frozen Registry
// can be shared by any number of vessels and engines.
type Registry struct {
	templates map[string]*Template
	frozen    bool
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{templates: make(map[string]*Template)}
}

// Register adds t to the registry.
func (r *Registry) Register(t *Template) error {
	if r.frozen {
		return fmt.Errorf("chembench: cannot register %q: registry is frozen", t.ID)
	}
	if _, ok := r.templates[t.ID]; ok {
		return &DuplicateMaterialError{ID: t.ID}
	}
	if err := t.check(); err != nil {
		return err
	}
	r.templates[t.ID] = t
	return nil
}

// Freeze prevents any further templates from being registered.
func (r *Registry) Freeze() { r.frozen = true }

// Lookup returns the template with the given ID.
func (r *Registry) Lookup(id string) (*Template, error) {
	t, ok := r.templates[id]
	if !ok {
		return nil, &UnknownMaterialError{ID: id}
	}
	return t, nil
}

// Instantiate returns a new Material of species id holding mol moles,
// in the default phase and polarity of its template.
func (r *Registry) Instantiate(id string, mol float64) (*Material, error) {
	t, err := r.Lookup(id)
	if err != nil {
		return nil, err
	}
	return &Material{
		tmpl:     t,
		Mol:      mol,
		Phase:    t.PhaseAt(StandardTemperature),
		Polarity: t.Polarity,
		Solvent:  t.Solvent,
	}, nil
}

// IDs returns the sorted IDs of all registered templates.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.templates))
	for id := range r.templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered templates.
func (r *Registry) Len() int { return len(r.templates) }

// materialRecord is the text representation of a Template.
type materialRecord struct {
	ID                   string             `toml:"id"`
	Name                 string             `toml:"name"`
	MolarMass            float64            `toml:"molar_mass"`
	Dissolves            []string           `toml:"dissolves"`
	Components           map[string]float64 `toml:"components"`
	Polarity             float64            `toml:"polarity"`
	Solvent              bool               `toml:"solvent"`
	BoilingPoint         float64            `toml:"boiling_point"`
	MeltingPoint         float64            `toml:"melting_point"`
	SpecificHeat         float64            `toml:"specific_heat"`
	EnthalpyFusion       float64            `toml:"enthalpy_fusion"`
	EnthalpyVaporization float64            `toml:"enthalpy_vaporization"`
	Density              map[string]float64 `toml:"density"`
	Spectra              [][]float64        `toml:"spectra"`
	SpectraOverlap       [][]float64        `toml:"spectra_overlap"`
	Color                float64            `toml:"color"`
}

func (rec *materialRecord) template() (*Template, error) {
	t := &Template{
		ID:                   rec.ID,
		Name:                 rec.Name,
		MolarMass:            rec.MolarMass,
		Dissolves:            rec.Dissolves,
		Components:           rec.Components,
		Polarity:             rec.Polarity,
		Solvent:              rec.Solvent,
		BoilingPoint:         rec.BoilingPoint,
		MeltingPoint:         rec.MeltingPoint,
		SpecificHeat:         rec.SpecificHeat,
		EnthalpyFusion:       rec.EnthalpyFusion,
		EnthalpyVaporization: rec.EnthalpyVaporization,
		Density:              make(map[Phase]float64),
		Color:                rec.Color,
	}
	for k, v := range rec.Density {
		p, err := ParsePhase(k)
		if err != nil {
			return nil, fmt.Errorf("chembench: material %s: %v", rec.ID, err)
		}
		t.Density[p] = v
	}
	var err error
	if t.Spectra, err = peaks(rec.ID, rec.Spectra); err != nil {
		return nil, err
	}
	if t.SpectraOverlap, err = peaks(rec.ID, rec.SpectraOverlap); err != nil {
		return nil, err
	}
	return t, nil
}

func peaks(id string, in [][]float64) ([][3]float64, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([][3]float64, len(in))
	for i, p := range in {
		if len(p) != 3 {
			return nil, fmt.Errorf("chembench: material %s: spectral peak %d has %d values; "+
				"it needs [peak, width, height]", id, i, len(p))
		}
		copy(out[i][:], p)
	}
	return out, nil
}

// Load reads a TOML material catalog, where each species is
// given as a [[material]] table, and registers its entries in r.
// Any malformed or duplicate entry causes an error.
func (r *Registry) Load(f io.Reader) error {
	var catalog struct {
		Material []materialRecord `toml:"material"`
	}
	md, err := toml.DecodeReader(f, &catalog)
	if err != nil {
		return fmt.Errorf("chembench: reading material catalog: %v", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("chembench: material catalog has unrecognized keys %v", undecoded)
	}
	for i := range catalog.Material {
		t, err := catalog.Material[i].template()
		if err != nil {
			return err
		}
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// LoadRegistry returns a frozen Registry holding the species in
// the TOML material catalog f.
func LoadRegistry(f io.Reader) (*Registry, error) {
	r := NewRegistry()
	if err := r.Load(f); err != nil {
		return nil, err
	}
	r.Freeze()
	return r, nil
}
