/*
 * abinitio.go, part of gomecp.
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

package qm

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// AbInitioFile reads the results of the two ab initio calculations from a file with the
// layout of the classic "ab_initio" file:
//
//	Energy of the First State
//	-231.18899
//	Gradient of the First State
//	6  0.0012  -0.0003  0.0000
//	...one line per atom...
//	Energy of the Second State
//	...
//	Gradient of the Second State
//	...
//
// The "gradient" lines actually contain the forces, in Hartree/Bohr, as printed by most
// QM programs, preceded by an atom label that is ignored. They are converted to gradients
// in Hartree/Angstrom.
type AbInitioFile struct {
	Name string
}

// NewAbInitioFile returns a Feed that reads the file name.
func NewAbInitioFile(name string) *AbInitioFile {
	return &AbInitioFile{Name: name}
}

// Results reads and parses the file.
func (A *AbInitioFile) Results(natoms int) (*Result, error) {
	f, err := os.Open(A.Name)
	if err != nil {
		return nil, Error{err.Error(), A.Name, []string{"AbInitioFile.Results"}, ErrReadFailure}
	}
	defer f.Close()
	r, err := ReadAbInitio(f, natoms)
	if err != nil {
		if e, ok := err.(Error); ok {
			e.filename = A.Name
			e.deco = e.Decorate("AbInitioFile.Results")
			return nil, e
		}
		return nil, err
	}
	return r, nil
}

// ReadAbInitio parses ab initio results with the AbInitioFile layout from in.
// A line containing the word ERROR anywhere in the input means the calculation failed.
func ReadAbInitio(in io.Reader, natoms int) (*Result, error) {
	lines := make([]string, 0, 2*natoms+6)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.Contains(strings.ToUpper(line), "ERROR") {
			return nil, Error{"the calculation reported: " + line, "", []string{"ReadAbInitio"}, ErrJobFailure}
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, Error{err.Error(), "", []string{"ReadAbInitio"}, ErrReadFailure}
	}
	p := &feedParser{lines: lines}
	ret := new(Result)
	var err error
	//the labels are not checked, only skipped.
	if ret.Ea, err = p.energy("first"); err != nil {
		return nil, err
	}
	if ret.Ga, err = p.forces("first", natoms); err != nil {
		return nil, err
	}
	if ret.Eb, err = p.energy("second"); err != nil {
		return nil, err
	}
	if ret.Gb, err = p.forces("second", natoms); err != nil {
		return nil, err
	}
	Force2Gradient(ret.Ga)
	Force2Gradient(ret.Gb)
	return ret, nil
}

type feedParser struct {
	lines []string
	cur   int
}

func (p *feedParser) next(what string) (string, error) {
	if p.cur >= len(p.lines) {
		return "", Error{fmt.Sprintf("unexpected end of data while reading %s", what), "", []string{"ReadAbInitio"}, ErrReadFailure}
	}
	p.cur++
	return p.lines[p.cur-1], nil
}

func (p *feedParser) energy(state string) (float64, error) {
	if _, err := p.next("the energy label of the " + state + " state"); err != nil {
		return 0, err
	}
	line, err := p.next("the energy of the " + state + " state")
	if err != nil {
		return 0, err
	}
	e, err := parseFloat(strings.Fields(line)[0])
	if err != nil {
		return 0, Error{fmt.Sprintf("energy of the %s state: %s", state, err), "", []string{"ReadAbInitio"}, ErrReadFailure}
	}
	return e, nil
}

func (p *feedParser) forces(state string, natoms int) ([]float64, error) {
	if _, err := p.next("the gradient label of the " + state + " state"); err != nil {
		return nil, err
	}
	ret := make([]float64, 0, 3*natoms)
	for i := 0; i < natoms; i++ {
		line, err := p.next(fmt.Sprintf("the force on atom %d of the %s state", i+1, state))
		if err != nil {
			return nil, err
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return nil, Error{fmt.Sprintf("ill formed force line for atom %d of the %s state: %q", i+1, state, line), "", []string{"ReadAbInitio"}, ErrReadFailure}
		}
		for _, v := range fields[1:4] {
			f, err := parseFloat(v)
			if err != nil {
				return nil, Error{fmt.Sprintf("force on atom %d of the %s state: %s", i+1, state, err), "", []string{"ReadAbInitio"}, ErrReadFailure}
			}
			ret = append(ret, f)
		}
	}
	return ret, nil
}

// WriteAbInitio writes energies and forces (Hartree/Bohr) in the AbInitioFile layout.
// atnum gives the label for each atom line.
func WriteAbInitio(out io.Writer, atnum []int, ea, eb float64, fa, fb []float64) error {
	if len(fa) != 3*len(atnum) || len(fb) != 3*len(atnum) {
		return Error{"force vectors don't match the number of atoms", "", []string{"WriteAbInitio"}, ErrReadFailure}
	}
	w := bufio.NewWriter(out)
	block := func(state string, e float64, f []float64) {
		fmt.Fprintf(w, "Energy of the %s State\n", state)
		fmt.Fprintf(w, "%.10f\n", e)
		fmt.Fprintf(w, "Gradient of the %s State\n", state)
		for i, z := range atnum {
			fmt.Fprintf(w, "%d  %.10f   %.10f   %.10f\n", z, f[3*i], f[3*i+1], f[3*i+2])
		}
	}
	block("First", ea, fa)
	block("Second", eb, fb)
	return w.Flush()
}

// parseFloat also understands the Fortran double precision notation (1.0d-3).
// NaN and infinities are rejected.
func parseFloat(s string) (float64, error) {
	s = strings.NewReplacer("d", "e", "D", "e").Replace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return f, nil
}
