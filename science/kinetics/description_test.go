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
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/kr/pretty"
)

func loadTestDescription(t *testing.T, name string) *Description {
	f, err := os.Open("testdata/" + name + ".toml")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	d, err := LoadDescription(f)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestDescription_roundTrip(t *testing.T) {
	d := loadTestDescription(t, "ab_cde")
	if d.NumReactions() != 2 {
		t.Errorf("reactions: %d != 2", d.NumReactions())
	}
	var b bytes.Buffer
	if err := d.Dump(&b); err != nil {
		t.Fatal(err)
	}
	d2, err := LoadDescription(&b)
	if err != nil {
		t.Fatalf("%v\n%s", err, b.String())
	}
	if diff := pretty.Diff(d, d2); len(diff) > 0 {
		t.Errorf("round trip changed the description: %v", diff)
	}
	if d.Fingerprint() != d2.Fingerprint() {
		t.Errorf("fingerprints differ: %s != %s", d.Fingerprint(), d2.Fingerprint())
	}
	d2.PreExp[0] = 2
	if d.Fingerprint() == d2.Fingerprint() {
		t.Error("fingerprint did not change with the contents")
	}
}

func TestReadDescription(t *testing.T) {
	d, err := ReadDescription(context.Background(), "testdata/decay.toml")
	if err != nil {
		t.Fatal(err)
	}
	if d.Name != "decay" {
		t.Errorf("name: %s != decay", d.Name)
	}
	if _, err := ReadDescription(context.Background(), "testdata/missing.toml"); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestLoadDescription_malformed(t *testing.T) {
	const base = `name = "bad"
REACTANTS = ["A"]
PRODUCTS = ["B"]
MATERIALS = ["A", "B"]
pre_exp_arr = [1.0]
activ_energy_arr = [0.0]
`
	for _, test := range []struct {
		name, text string
	}{
		{"syntax", "name = \n"},
		{"unknown key", base + "stoich_coeff_arr = [[1.0]]\nconc_coeff_arr = [[-1.0], [1.0]]\ncolor = 3\n"},
		{"no materials", strings.Replace(base, `MATERIALS = ["A", "B"]`, "MATERIALS = []", 1) +
			"stoich_coeff_arr = [[1.0]]\nconc_coeff_arr = []\n"},
		{"reactant not a material", strings.Replace(base, `REACTANTS = ["A"]`, `REACTANTS = ["C"]`, 1) +
			"stoich_coeff_arr = [[1.0]]\nconc_coeff_arr = [[-1.0], [1.0]]\n"},
		{"duplicate material", strings.Replace(base, `MATERIALS = ["A", "B"]`, `MATERIALS = ["A", "B", "A"]`, 1) +
			"stoich_coeff_arr = [[1.0]]\nconc_coeff_arr = [[-1.0], [1.0], [0.0]]\n"},
		{"stoich columns", base + "stoich_coeff_arr = [[1.0, 1.0]]\nconc_coeff_arr = [[-1.0], [1.0]]\n"},
		{"stoich rows", base + "stoich_coeff_arr = []\nconc_coeff_arr = [[-1.0], [1.0]]\n"},
		{"negative exponent", base + "stoich_coeff_arr = [[-1.0]]\nconc_coeff_arr = [[-1.0], [1.0]]\n"},
		{"conc rows", base + "stoich_coeff_arr = [[1.0]]\nconc_coeff_arr = [[-1.0]]\n"},
		{"conc columns", base + "stoich_coeff_arr = [[1.0]]\nconc_coeff_arr = [[-1.0, 0.0], [1.0, 0.0]]\n"},
		{"activation energies", strings.Replace(base, "activ_energy_arr = [0.0]", "activ_energy_arr = [0.0, 1.0]", 1) +
			"stoich_coeff_arr = [[1.0]]\nconc_coeff_arr = [[-1.0], [1.0]]\n"},
		{"negative pre-exponential factor", strings.Replace(base, "pre_exp_arr = [1.0]", "pre_exp_arr = [-1.0]", 1) +
			"stoich_coeff_arr = [[1.0]]\nconc_coeff_arr = [[-1.0], [1.0]]\n"},
		{"no reactions", strings.Replace(strings.Replace(base, "pre_exp_arr = [1.0]", "pre_exp_arr = []", 1),
			"activ_energy_arr = [0.0]", "activ_energy_arr = []", 1) +
			"stoich_coeff_arr = []\nconc_coeff_arr = [[], []]\n"},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, err := LoadDescription(strings.NewReader(test.text))
			if err == nil {
				t.Fatal("expected an error")
			}
			if _, ok := err.(*MalformedDescriptionError); !ok {
				t.Errorf("error has type %T", err)
			}
		})
	}

	t.Run("valid", func(t *testing.T) {
		_, err := LoadDescription(strings.NewReader(base +
			"stoich_coeff_arr = [[1.0]]\nconc_coeff_arr = [[-1.0], [1.0]]\n"))
		if err != nil {
			t.Fatal(err)
		}
	})
}
