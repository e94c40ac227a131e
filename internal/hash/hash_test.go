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

package hash

import "testing"

type named string

func (n named) String() string { return "named:" + string(n) }

type record struct {
	Name   string
	Values []float64
}

func TestHash(t *testing.T) {
	a := record{Name: "a", Values: []float64{1, 2}}
	if Hash(a) != Hash(record{Name: "a", Values: []float64{1, 2}}) {
		t.Error("hash is not stable")
	}
	if len(Hash(a)) != 32 {
		t.Errorf("hash %s should have 32 hexadecimal digits", Hash(a))
	}
	c := a
	c.Values = []float64{1, 3}
	if Hash(a) == Hash(c) {
		t.Error("different values have the same hash")
	}
	if Hash(named("x")) != "named:x" {
		t.Errorf("stringer: %s", Hash(named("x")))
	}
}

func TestHash_fallback(t *testing.T) {
	// gob cannot encode a bare channel, so it is printed instead.
	var c chan int
	if Hash(c) != Hash(c) || len(Hash(c)) != 32 {
		t.Errorf("fallback hash: %s", Hash(c))
	}
	if Hash(c) == Hash(record{}) {
		t.Error("different values have the same hash")
	}
}
