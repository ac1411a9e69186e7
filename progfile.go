/*
 * progfile.go, part of gomecp.
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
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rmera/gomecp/v3"
	"gonum.org/v1/gonum/mat"
)

const progTitle = "Progress File for MECP Optimization"

// The ProgFile is a text file with the layout of the classic Fortran MECP program,
// so optimizations started with it can be continued, and vice versa:
//
//	Progress File for MECP Optimization
//	Number of Atoms:
//	N
//	Number of Steps already Run
//	Nstep
//	Is this a full ProgFile ?
//	0 or 1
//	Next Geometry to Compute:
//	Z x y z (N lines)
//
// followed, only for full ProgFiles, by the previous geometry (N lines x y z), the
// two energies (one per line), the gradients of both states and the effective
// gradient (3N lines each) and the inverse Hessian (3N*3N lines, row by row),
// each block preceded by a one-line label. Labels are never checked, only the
// position of the lines matters. Blank lines are ignored.

// LoadState reads the ProgFile name for a system of natoms atoms.
// If the file doesn't exist and initial is not empty, a cold-start state is built
// from the geometry in the file initial. A ProgFile for step 0 flagged as not
// full also gives a cold-start state.
func LoadState(name string, natoms int, initial string) (*State, error) {
	f, err := os.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		if initial == "" {
			return nil, newError(ErrMissingStateFile, name, "LoadState", "create it (gomecp init) and try again")
		}
		atnum, geo, err := ReadGeometryFile(initial)
		if err != nil {
			return nil, errDecorate(err, "LoadState")
		}
		if natoms > 0 && len(atnum) != natoms {
			return nil, newError(ErrAtomCountMismatch, initial, "LoadState", "%d atoms read, %d expected", len(atnum), natoms)
		}
		return NewState(atnum, geo)
	}
	if err != nil {
		return nil, newError(ErrMissingStateFile, name, "LoadState", "%s", err)
	}
	defer f.Close()
	S, err := ReadProgFile(f, natoms)
	if err != nil {
		if e, ok := err.(*Error); ok {
			e.filename = name
		}
		return nil, errDecorate(err, "LoadState")
	}
	return S, nil
}

// ReadProgFile parses a ProgFile from in. If natoms > 0, the file must
// be for a system with natoms atoms.
func ReadProgFile(in io.Reader, natoms int) (*State, error) {
	p, err := newProgReader(in)
	if err != nil {
		return nil, err
	}
	if _, err = p.next("the title"); err != nil {
		return nil, err
	}
	n, err := p.integer("the number of atoms")
	if err != nil {
		return nil, err
	}
	if natoms > 0 && n != natoms {
		return nil, newError(ErrAtomCountMismatch, "", "ReadProgFile", "the file is for %d atoms, %d expected", n, natoms)
	}
	if n <= 0 {
		return nil, p.fail("the number of atoms must be positive, got %d", n)
	}
	step, err := p.integer("the number of steps")
	if err != nil {
		return nil, err
	}
	flag, err := p.integer("the full ProgFile flag")
	if err != nil {
		return nil, err
	}
	atnum, next, err := p.geometry(n, true)
	if err != nil {
		return nil, err
	}
	S, err := NewState(atnum, next)
	if err != nil {
		return nil, err
	}
	S.Step = step
	if flag == 0 {
		if step == 0 {
			return S, nil //cold start
		}
		return nil, p.fail("step %d in a ProgFile not flagged as full", step)
	}
	S.Complete = true
	if _, S.Prev, err = p.geometry(n, false); err != nil {
		return nil, err
	}
	if _, err = p.next("the energies label"); err != nil {
		return nil, err
	}
	if S.Ea, err = p.float("the energy of the first state"); err != nil {
		return nil, err
	}
	if S.Eb, err = p.float("the energy of the second state"); err != nil {
		return nil, err
	}
	dim := 3 * n
	if S.Ga, err = p.vector("the gradient of the first state", dim); err != nil {
		return nil, err
	}
	if S.Gb, err = p.vector("the gradient of the second state", dim); err != nil {
		return nil, err
	}
	if S.G, err = p.vector("the effective gradient", dim); err != nil {
		return nil, err
	}
	h, err := p.vector("the inverse Hessian", dim*dim)
	if err != nil {
		return nil, err
	}
	//The file stores the full matrix. We symmetrize it, in case it was edited by hand.
	S.H = mat.NewSymDense(dim, nil)
	for i := 0; i < dim; i++ {
		for j := i; j < dim; j++ {
			S.H.SetSym(i, j, 0.5*(h[i*dim+j]+h[j*dim+i]))
		}
	}
	return S, nil
}

// WriteProgFile writes S to out in the ProgFile format. Only the next geometry
// is written for states that are not Complete.
func WriteProgFile(out io.Writer, S *State) error {
	if err := S.validate(); err != nil {
		return errDecorate(err, "WriteProgFile")
	}
	n := S.NAtoms()
	w := bufio.NewWriter(out)
	flag := 0
	geolabel := "Geometry:"
	if S.Complete {
		flag = 1
		geolabel = "Next Geometry to Compute:"
	}
	fmt.Fprintf(w, " %s\n Number of Atoms:\n%5d\n", progTitle, n)
	fmt.Fprintf(w, " Number of Steps already Run\n%5d\n", S.Step)
	fmt.Fprintf(w, " Is this a full ProgFile ?\n%5d\n", flag)
	fmt.Fprintf(w, " %s\n", geolabel)
	for i, z := range S.AtNum {
		fmt.Fprintf(w, "%3d%20.12f%20.12f%20.12f\n", z, S.Next.At(i, 0), S.Next.At(i, 1), S.Next.At(i, 2))
	}
	if !S.Complete {
		return w.Flush()
	}
	fmt.Fprintln(w, " Previous Geometry:")
	for i := 0; i < n; i++ {
		fmt.Fprintf(w, "%20.12f%20.12f%20.12f\n", S.Prev.At(i, 0), S.Prev.At(i, 1), S.Prev.At(i, 2))
	}
	fmt.Fprintf(w, " Energies of First, Second State at that Geometry:\n%20.12f\n%20.12f\n", S.Ea, S.Eb)
	vector := func(label string, v []float64) {
		fmt.Fprintf(w, " %s\n", label)
		for _, x := range v {
			fmt.Fprintf(w, "%20.12f\n", x)
		}
	}
	vector("Gradient of First State at that Geometry:", S.Ga)
	vector("Gradient of Second State at that Geometry:", S.Gb)
	vector("Effective Gradient at that Geometry:", S.G)
	fmt.Fprintln(w, " Approximate Inverse Hessian at that Geometry:")
	dim := 3 * n
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			fmt.Fprintf(w, "%20.12f\n", S.H.At(i, j))
		}
	}
	return w.Flush()
}

// SaveState writes S to the file name. The data is first written to a temporary
// file in the same directory, which then replaces name, so a crash never leaves
// a half-written ProgFile behind.
func SaveState(name string, S *State) error {
	tmp, err := os.CreateTemp(filepath.Dir(name), "."+filepath.Base(name)+".*")
	if err != nil {
		return newError(ErrOutput, name, "SaveState", "%s", err)
	}
	tmpname := tmp.Name()
	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpname)
		if _, ok := err.(*Error); ok {
			return errDecorate(err, "SaveState")
		}
		return newError(ErrOutput, name, "SaveState", "%s", err)
	}
	if err := WriteProgFile(tmp, S); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpname)
		return newError(ErrOutput, name, "SaveState", "%s", err)
	}
	if err := os.Rename(tmpname, name); err != nil {
		os.Remove(tmpname)
		return newError(ErrOutput, name, "SaveState", "%s", err)
	}
	return nil
}

// WritePlaceholder writes a cold-start ProgFile (step 0, not full) with the
// initial geometry, which is all the first iteration needs.
func WritePlaceholder(name string, atnum []int, geo *v3.Matrix) error {
	S, err := NewState(atnum, geo)
	if err != nil {
		return errDecorate(err, "WritePlaceholder")
	}
	return errDecorate(SaveState(name, S), "WritePlaceholder")
}

//progReader reads the ProgFile line by line, skipping blank lines.
type progReader struct {
	lines []string
	cur   int
}

func newProgReader(in io.Reader) (*progReader, error) {
	p := &progReader{lines: make([]string, 0, 64)}
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			p.lines = append(p.lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, newError(ErrIncompleteStateFile, "", "ReadProgFile", "%s", err)
	}
	return p, nil
}

func (p *progReader) fail(format string, a ...interface{}) *Error {
	return newError(ErrIncompleteStateFile, "", "ReadProgFile", "line %d: %s", p.cur, fmt.Sprintf(format, a...))
}

func (p *progReader) next(what string) (string, error) {
	if p.cur >= len(p.lines) {
		return "", newError(ErrIncompleteStateFile, "", "ReadProgFile", "the file ends before %s", what)
	}
	p.cur++
	return p.lines[p.cur-1], nil
}

// integer skips the label line and reads a single integer.
func (p *progReader) integer(what string) (int, error) {
	if _, err := p.next(what); err != nil {
		return 0, err
	}
	line, err := p.next(what)
	if err != nil {
		return 0, err
	}
	i, err := strconv.Atoi(strings.Fields(line)[0])
	if err != nil {
		return 0, p.fail("%s: %s", what, err)
	}
	return i, nil
}

func (p *progReader) float(what string) (float64, error) {
	line, err := p.next(what)
	if err != nil {
		return 0, err
	}
	f, err := parseFloat(strings.Fields(line)[0])
	if err != nil {
		return 0, p.fail("%s: %s", what, err)
	}
	return f, nil
}

// vector skips the label line and reads dim numbers, one per line.
func (p *progReader) vector(what string, dim int) ([]float64, error) {
	if _, err := p.next(what); err != nil {
		return nil, err
	}
	ret := make([]float64, dim)
	var err error
	for i := range ret {
		if ret[i], err = p.float(what); err != nil {
			return nil, err
		}
	}
	return ret, nil
}

// geometry skips the label and reads n lines of coordinates, preceded by the
// element if withZ is true.
func (p *progReader) geometry(n int, withZ bool) ([]int, *v3.Matrix, error) {
	what := "the previous geometry"
	first := 0
	if withZ {
		what = "the next geometry"
		first = 1
	}
	if _, err := p.next(what); err != nil {
		return nil, nil, err
	}
	var atnum []int
	if withZ {
		atnum = make([]int, n)
	}
	coords := make([]float64, 0, 3*n)
	for i := 0; i < n; i++ {
		line, err := p.next(what)
		if err != nil {
			return nil, nil, err
		}
		fields := strings.Fields(line)
		if len(fields) < first+3 {
			return nil, nil, p.fail("%s, atom %d: %q", what, i+1, line)
		}
		if withZ {
			if atnum[i], err = AtomicNumber(fields[0]); err != nil {
				return nil, nil, p.fail("%s, atom %d: %s", what, i+1, err)
			}
		}
		for _, v := range fields[first : first+3] {
			f, err := parseFloat(v)
			if err != nil {
				return nil, nil, p.fail("%s, atom %d: %s", what, i+1, err)
			}
			coords = append(coords, f)
		}
	}
	geo, err := v3.NewMatrix(coords)
	if err != nil {
		return nil, nil, p.fail("%s: %s", what, err)
	}
	return atnum, geo, nil
}
