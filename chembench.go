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

// Package chembench simulates laboratory benches as sets of vessels whose
// material contents change in response to discrete events (pouring,
// draining, mixing, and heating) and to chemical reactions.
//
// Materials are instantiated from a frozen Registry of templates. Each
// Vessel tracks the quantity and phase of its materials, which of them act
// as solvents and solutes, and a layer profile describing how the contents
// have separated by density. Events report physical limits that were reached,
// such as a spill, as Feedback codes rather than errors.
package chembench

// Version gives the version number.
const Version = "0.1.0"
