/*
 * bfgs.go, part of gomecp.
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
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DefaultMaxStep is the largest change allowed for any coordinate in one step, in Angstrom.
const DefaultMaxStep = 0.1

// StepInput holds what the step updater needs. X1 and G1, the geometry and effective
// gradient of the previous step, are nil for the first step.
type StepInput struct {
	X1, G1 []float64
	X2, G2 []float64
	H      *mat.SymDense
}

// StepResult is the outcome of UpdateStep. H is a new matrix, the input one is never modified.
type StepResult struct {
	X3 []float64     //the next geometry
	D  []float64     //the step actually taken, X3-X2
	H  *mat.SymDense //the updated inverse Hessian

	Updated   bool    //the inverse Hessian was updated
	Skipped   bool    //the update was skipped because s·y <= 0
	Curvature float64 //s·y

	Clamped bool    //the step was scaled down
	Scale   float64 //factor applied to the step, 1 if not clamped
}

// UpdateStep performs one quasi-Newton step. Except on the first step, the inverse
// Hessian is updated with the BFGS formula, using s=X2-X1 and y=G2-G1. The update
// is skipped if s·y <= 0, as it would make H lose positive definiteness. The step
// d = -H*G2 is then scaled down so no coordinate changes more than maxStep.
func UpdateStep(in StepInput, maxStep float64) (*StepResult, error) {
	dim := len(in.X2)
	if dim == 0 || len(in.G2) != dim || in.H == nil || in.H.SymmetricDim() != dim {
		return nil, newError(ErrDimension, "", "UpdateStep", "inconsistent sizes for the geometry, gradient and inverse Hessian")
	}
	first := in.X1 == nil || in.G1 == nil
	if !first && (len(in.X1) != dim || len(in.G1) != dim) {
		return nil, newError(ErrDimension, "", "UpdateStep", "previous geometry and gradient must have %d elements", dim)
	}
	R := &StepResult{Scale: 1}
	if first {
		R.H = mat.NewSymDense(dim, nil)
		R.H.CopySym(in.H)
	} else {
		s := make([]float64, dim)
		y := make([]float64, dim)
		floats.SubTo(s, in.X2, in.X1)
		floats.SubTo(y, in.G2, in.G1)
		R.Curvature = floats.Dot(s, y)
		R.H, R.Updated = BFGSInverseUpdate(in.H, s, y)
		R.Skipped = !R.Updated
	}
	var d mat.VecDense
	d.MulVec(R.H, mat.NewVecDense(dim, append([]float64(nil), in.G2...)))
	d.ScaleVec(-1, &d)
	R.D = make([]float64, dim)
	copy(R.D, d.RawVector().Data)
	R.Scale, R.Clamped = LimitStep(R.D, maxStep)
	R.X3 = make([]float64, dim)
	floats.AddTo(R.X3, in.X2, R.D)
	return R, nil
}

// BFGSInverseUpdate returns the BFGS update of the inverse Hessian H,
//
//	H' = H + ((s·y + y'Hy)/(s·y)^2) ss' - (Hys' + sy'H)/(s·y)
//
// and true. If s·y <= 0 it returns an unchanged copy of H and false. H' is
// symmetric by construction, as it is built with symmetric rank updates.
func BFGSInverseUpdate(H *mat.SymDense, s, y []float64) (*mat.SymDense, bool) {
	dim := H.SymmetricDim()
	ret := mat.NewSymDense(dim, nil)
	sy := floats.Dot(s, y)
	if sy <= 0 {
		ret.CopySym(H)
		return ret, false
	}
	sv := mat.NewVecDense(dim, append([]float64(nil), s...))
	yv := mat.NewVecDense(dim, append([]float64(nil), y...))
	var hy mat.VecDense
	hy.MulVec(H, yv)
	yhy := mat.Dot(yv, &hy)
	ret.SymRankOne(H, (sy+yhy)/(sy*sy), sv)
	ret.RankTwo(ret, -1/sy, &hy, sv)
	return ret, true
}

// LimitStep scales d in place so its largest component, in absolute value, is
// not larger than maxStep. It returns the factor applied and whether d was scaled.
// The direction of d is never changed.
func LimitStep(d []float64, maxStep float64) (float64, bool) {
	m := maxAbs(d)
	if m <= maxStep || m == 0 {
		return 1, false
	}
	scale := maxStep / m
	floats.Scale(scale, d)
	return scale, true
}
