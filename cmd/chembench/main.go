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

// Command chembench is a command-line interface for the ChemBench
// laboratory simulator.
package main

import (
	"fmt"
	"os"

	"github.com/spatialmodel/chembench/benchutil"
)

func main() {
	if err := benchutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
