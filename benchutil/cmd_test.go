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
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/spatialmodel/chembench"
)

func TestVersion(t *testing.T) {
	var b bytes.Buffer
	Root.SetOutput(&b)
	Root.SetArgs([]string{"version"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	if want := "ChemBench v" + chembench.Version; !strings.Contains(b.String(), want) {
		t.Errorf("%q does not contain %q", b.String(), want)
	}
}

func TestMaterials(t *testing.T) {
	var b bytes.Buffer
	Root.SetOutput(&b)
	Root.SetArgs([]string{"materials"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"H2O", "NaCl", "C6H14"} {
		if !strings.Contains(b.String(), id) {
			t.Errorf("material list does not contain %s:\n%s", id, b.String())
		}
	}
}

func TestDescribe(t *testing.T) {
	var b bytes.Buffer
	Root.SetOutput(&b)
	Root.SetArgs([]string{"describe", "--ReactionFile=../science/kinetics/testdata/decay.toml"})
	// The flag is shared with the run command.
	defer func() {
		f := describeCmd.Flags().Lookup("ReactionFile")
		f.Value.Set("")
		f.Changed = false
	}()
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	out := b.String()
	if !strings.Contains(out, "fingerprint") || !strings.Contains(out, `name = "decay"`) {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestRun(t *testing.T) {
	dir, err := ioutil.TempDir("", "chembench_run")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	outFile := filepath.Join(dir, "out.toml")

	var b bytes.Buffer
	Root.SetOutput(&b)
	Cfg.Set("config", "testdata/config.toml")
	defer Cfg.Set("config", "")
	Root.SetArgs([]string{"run", "--OutputFile=" + outFile})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(b.String(), "4 steps") {
		t.Errorf("unexpected output:\n%s", b.String())
	}

	var rec runRecord
	if _, err := toml.DecodeFile(outFile, &rec); err != nil {
		t.Fatal(err)
	}
	if len(rec.Steps) != 4 {
		t.Errorf("steps: %d != 4", len(rec.Steps))
	}
	if len(rec.Vessels) != 2 {
		t.Fatalf("vessels: %d != 2", len(rec.Vessels))
	}
	reactor, receiver := rec.Vessels[0], rec.Vessels[1]
	if reactor.Label != "reactor" || receiver.Label != "receiver" {
		t.Errorf("labels: %s, %s", reactor.Label, receiver.Label)
	}
	if len(receiver.Contents) == 0 {
		t.Error("nothing was poured into the receiver")
	}
	// A and B are used up in equal amounts wherever they are.
	a := reactor.Contents["A"] + receiver.Contents["A"]
	bb := reactor.Contents["B"] + receiver.Contents["B"]
	if a >= 1 || different(bb-a, 0.5, 1.e-6) {
		t.Errorf("A: %g mol, B: %g mol", a, bb)
	}
	if !(reactor.Temperature > 300) {
		t.Errorf("reactor was not heated: %g K", reactor.Temperature)
	}
}
