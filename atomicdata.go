/*
 * atomicdata.go, part of gomecp.
 *
 *
 * Copyright 2024 Raul Mera <rmera{at}usach(dot)cl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 * gomecp is currently developed at the Universidad de Santiago de Chile
 * (USACH)
 *
 */

package mecp

import (
	"fmt"
	"strconv"
	"strings"
)

//The element symbols, indexed by atomic number. Index 0 is unused.
var symbols = [...]string{
	"",
	"H", "He", "Li", "Be", "B", "C", "N", "O", "F", "Ne",
	"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar", "K", "Ca",
	"Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn",
	"Ga", "Ge", "As", "Se", "Br", "Kr", "Rb", "Sr", "Y", "Zr",
	"Nb", "Mo", "Tc", "Ru", "Rh", "Pd", "Ag", "Cd", "In", "Sn",
	"Sb", "Te", "I", "Xe", "Cs", "Ba", "La", "Ce", "Pr", "Nd",
	"Pm", "Sm", "Eu", "Gd", "Tb", "Dy", "Ho", "Er", "Tm", "Yb",
	"Lu", "Hf", "Ta", "W", "Re", "Os", "Ir", "Pt", "Au", "Hg",
	"Tl", "Pb", "Bi", "Po", "At", "Rn", "Fr", "Ra", "Ac", "Th",
	"Pa", "U", "Np", "Pu", "Am", "Cm", "Bk", "Cf", "Es", "Fm",
	"Md", "No", "Lr", "Rf", "Db", "Sg", "Bh", "Hs", "Mt", "Ds",
	"Rg", "Cn", "Nh", "Fl", "Mc", "Lv", "Ts", "Og",
}

//From element symbol to atomic number, filled from symbols.
var symbolNumber = make(map[string]int, len(symbols))

func init() {
	for z, s := range symbols {
		if z > 0 {
			symbolNumber[s] = z
		}
	}
}

// Symbol returns the element symbol for the atomic number z, or "X" if z is
// not a known element (dummy or ghost atoms).
func Symbol(z int) string {
	if z <= 0 || z >= len(symbols) {
		return "X"
	}
	return symbols[z]
}

// AtomicNumber parses a field that can be either an atomic number ("6") or an
// element symbol in any case ("C", "cl", "FE").
func AtomicNumber(field string) (int, error) {
	if z, err := strconv.Atoi(field); err == nil {
		if z <= 0 || z >= len(symbols) {
			return 0, fmt.Errorf("atomic number %d out of range", z)
		}
		return z, nil
	}
	s := strings.ToLower(field)
	if s == "" {
		return 0, fmt.Errorf("empty element field")
	}
	s = strings.ToUpper(s[:1]) + s[1:]
	z, ok := symbolNumber[s]
	if !ok {
		return 0, fmt.Errorf("unknown element %q", field)
	}
	return z, nil
}
