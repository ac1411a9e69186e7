/*
 * qm.go, part of gomecp.
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
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package qm

import (
	"errors"
	"fmt"
	"math"
)

// Bohr is the length of one Bohr in Angstrom, the value the MECP programs have always used.
const Bohr = 0.529177

var (
	// ErrReadFailure means the energies or forces could not be obtained (missing, truncated or
	// malformed data).
	ErrReadFailure = errors.New("problem reading the ab initio results")
	// ErrJobFailure means the ab initio calculation itself reported a failure.
	ErrJobFailure = errors.New("problem with the ab initio job")
)

// Result holds the energies (Hartree) and gradients (Hartree/Angstrom) of the two
// states at one geometry. Gradients are flat, 3N long, x1 y1 z1 x2 ...
type Result struct {
	Ea, Eb float64
	Ga, Gb []float64
}

// Feed is anything that can deliver the ab initio results for the current geometry.
// The calculation itself runs somewhere else, Feed only collects its results.
type Feed interface {
	//Results returns the energies and gradients for a system of natoms atoms.
	//It returns an error wrapping ErrReadFailure or ErrJobFailure
	//if the results can't be used.
	Results(natoms int) (*Result, error)
}

// Static is a Feed that always returns the same, already computed, results.
// Useful when the host obtained the energies and gradients in-process.
type Static struct {
	R Result
}

// Results returns a copy of the stored results, after checking their size.
func (S *Static) Results(natoms int) (*Result, error) {
	if len(S.R.Ga) != 3*natoms || len(S.R.Gb) != 3*natoms {
		return nil, Error{fmt.Sprintf("%d and %d gradient components given, %d expected", len(S.R.Ga), len(S.R.Gb), 3*natoms), "", []string{"Static.Results"}, ErrReadFailure}
	}
	if !finite(S.R.Ea, S.R.Eb) || !finite(S.R.Ga...) || !finite(S.R.Gb...) {
		return nil, Error{"non-finite energy or gradient", "", []string{"Static.Results"}, ErrReadFailure}
	}
	r := &Result{Ea: S.R.Ea, Eb: S.R.Eb}
	r.Ga = append([]float64(nil), S.R.Ga...)
	r.Gb = append([]float64(nil), S.R.Gb...)
	return r, nil
}

func finite(v ...float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Force2Gradient converts, in place, forces in Hartree/Bohr into gradients in Hartree/Angstrom.
func Force2Gradient(f []float64) []float64 {
	for i, v := range f {
		f[i] = -v / Bohr
	}
	return f
}

// Error is the error type for the qm package. It wraps one of the
// package sentinels, so errors.Is works on it.
type Error struct {
	message  string
	filename string //the file that has problems, or empty string if none.
	deco     []string
	kind     error
}

// Error returns a string with an error message.
func (err Error) Error() string {
	if err.filename == "" {
		return fmt.Sprintf("%s: %s", err.kind, err.message)
	}
	return fmt.Sprintf("%s: file %s: %s", err.kind, err.filename, err.message)
}

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// Critical is always true, no ab initio problem can be ignored.
func (err Error) Critical() bool { return true }

// FileName returns the file associated with the error.
func (err Error) FileName() string { return err.filename }

func (err Error) Unwrap() error { return err.kind }
