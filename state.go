/*
 * state.go, part of gomecp.
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
	"github.com/rmera/gomecp/v3"
	"gonum.org/v1/gonum/mat"
)

// InitialInvHessian is the diagonal of the inverse Hessian guess, in Angstrom^2/Hartree.
const InitialInvHessian = 0.7

// State is everything that persists between two iterations.
// Energies and gradients refer to the geometry Prev. All the vectors
// have 3N elements, N being the number of atoms.
type State struct {
	Step     int  //number of steps already run
	Complete bool //false for a cold start, where only Next is known
	AtNum    []int
	Next     *v3.Matrix //geometry to compute
	Prev     *v3.Matrix //geometry of the previous step
	Ea, Eb   float64
	Ga, Gb   []float64
	G        []float64     //effective gradient
	H        *mat.SymDense //approximate inverse Hessian
}

// NewState returns a fresh, cold-start state for the geometry geom, with
// zero energies and gradients and the initial inverse Hessian guess.
func NewState(atnum []int, geom *v3.Matrix) (*State, error) {
	n := len(atnum)
	if n == 0 || geom == nil || geom.NVecs() != n {
		return nil, newError(ErrDimension, "", "NewState", "%d atomic numbers for the geometry given", n)
	}
	S := &State{
		AtNum: append([]int(nil), atnum...),
		Next:  geom.Clone(),
		Prev:  geom.Clone(),
		Ga:    make([]float64, 3*n),
		Gb:    make([]float64, 3*n),
		G:     make([]float64, 3*n),
		H:     InitialHessian(3 * n),
	}
	return S, nil
}

// InitialHessian returns the initial guess for the inverse Hessian, a
// dim x dim diagonal matrix.
func InitialHessian(dim int) *mat.SymDense {
	H := mat.NewSymDense(dim, nil)
	for i := 0; i < dim; i++ {
		H.SetSym(i, i, InitialInvHessian)
	}
	return H
}

// NAtoms returns the number of atoms in the system.
func (S *State) NAtoms() int {
	return len(S.AtNum)
}

// First returns true if no step has been taken yet, so there is no previous
// gradient to update the inverse Hessian with.
func (S *State) First() bool {
	return S.Step == 0 && !S.Complete
}

func (S *State) validate() error {
	n := len(S.AtNum)
	dim := 3 * n
	if S.Next == nil || S.Next.NVecs() != n {
		return newError(ErrDimension, "", "State.validate", "next geometry doesn't have %d atoms", n)
	}
	if !S.Complete {
		return nil
	}
	if S.Prev == nil || S.Prev.NVecs() != n {
		return newError(ErrDimension, "", "State.validate", "previous geometry doesn't have %d atoms", n)
	}
	if len(S.Ga) != dim || len(S.Gb) != dim || len(S.G) != dim {
		return newError(ErrDimension, "", "State.validate", "gradients must have %d elements", dim)
	}
	if S.H == nil || S.H.SymmetricDim() != dim {
		return newError(ErrDimension, "", "State.validate", "inverse Hessian must be %dx%d", dim, dim)
	}
	return nil
}
