/*
 * bfgs_test.go, part of gomecp.
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
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

//randomSPD returns a random symmetric positive definite matrix.
func randomSPD(rnd *rand.Rand, dim int) *mat.SymDense {
	A := mat.NewDense(dim, dim, nil)
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			A.Set(i, j, rnd.NormFloat64())
		}
	}
	H := mat.NewSymDense(dim, nil)
	H.SymOuterK(1, A)
	for i := 0; i < dim; i++ {
		H.SetSym(i, i, H.At(i, i)+float64(dim))
	}
	return H
}

func TestBFGSInverseUpdateSymmetric(Te *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	const dim = 9
	for trial := 0; trial < 20; trial++ {
		H := randomSPD(rnd, dim)
		s := make([]float64, dim)
		y := make([]float64, dim)
		for i := range s {
			s[i] = rnd.NormFloat64() * 0.05
			y[i] = s[i] + rnd.NormFloat64()*0.01
		}
		if floats.Dot(s, y) <= 0 {
			continue
		}
		H2, ok := BFGSInverseUpdate(H, s, y)
		require.True(Te, ok)
		for i := 0; i < dim; i++ {
			for j := 0; j < dim; j++ {
				assert.InDelta(Te, H2.At(i, j), H2.At(j, i), 1e-12)
			}
		}
		//secant condition: H' y = s
		var hy mat.VecDense
		hy.MulVec(H2, mat.NewVecDense(dim, y))
		for i := range s {
			assert.InDelta(Te, s[i], hy.AtVec(i), 1e-10)
		}
	}
}

func TestBFGSInverseUpdateFormula(Te *testing.T) {
	//explicit check of the formula on a small case
	H := mat.NewSymDense(2, []float64{1, 0.2, 0.2, 2})
	s := []float64{0.1, -0.05}
	y := []float64{0.3, 0.1}
	sy := floats.Dot(s, y)
	Hy := []float64{1*0.3 + 0.2*0.1, 0.2*0.3 + 2*0.1}
	yHy := floats.Dot(y, Hy)
	H2, ok := BFGSInverseUpdate(H, s, y)
	require.True(Te, ok)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			want := H.At(i, j) + (sy+yHy)/(sy*sy)*s[i]*s[j] - (Hy[i]*s[j]+s[i]*Hy[j])/sy
			assert.InDelta(Te, want, H2.At(i, j), 1e-14)
		}
	}
}

func TestBFGSInverseUpdateSkipped(Te *testing.T) {
	H := InitialHessian(3)
	s := []float64{0.1, 0, 0}
	y := []float64{-0.2, 0, 0}
	H2, ok := BFGSInverseUpdate(H, s, y)
	assert.False(Te, ok)
	assert.True(Te, mat.Equal(H, H2))
	H2.SetSym(0, 0, 5)
	assert.Equal(Te, InitialInvHessian, H.At(0, 0), "the input matrix must not change")
}

func TestUpdateStepFirst(Te *testing.T) {
	H := InitialHessian(3)
	R, err := UpdateStep(StepInput{X2: []float64{0, 0, 0}, G2: []float64{0.01, -0.02, 0}, H: H}, DefaultMaxStep)
	require.NoError(Te, err)
	assert.False(Te, R.Updated)
	assert.False(Te, R.Skipped)
	assert.False(Te, R.Clamped)
	assert.True(Te, mat.Equal(H, R.H))
	assert.InDeltaSlice(Te, []float64{-0.007, 0.014, 0}, R.D, 1e-15)
	assert.InDeltaSlice(Te, R.D, R.X3, 1e-15)
}

func TestUpdateStepCurvatureSkip(Te *testing.T) {
	H := InitialHessian(3)
	in := StepInput{
		X1: []float64{0, 0, 0}, G1: []float64{0.01, 0, 0},
		X2: []float64{0.1, 0, 0}, G2: []float64{-0.01, 0, 0},
		H: H,
	}
	R, err := UpdateStep(in, DefaultMaxStep)
	require.NoError(Te, err)
	assert.True(Te, R.Skipped)
	assert.False(Te, R.Updated)
	assert.Less(Te, R.Curvature, 0.0)
	assert.True(Te, mat.Equal(H, R.H))
}

func TestUpdateStepClamp(Te *testing.T) {
	H := InitialHessian(3)
	g := []float64{1.0, -0.5, 0.25}
	R, err := UpdateStep(StepInput{X2: []float64{1, 1, 1}, G2: g, H: H}, DefaultMaxStep)
	require.NoError(Te, err)
	require.True(Te, R.Clamped)
	assert.InDelta(Te, DefaultMaxStep, maxAbs(R.D), 1e-15)
	//the direction is the one of -H*G
	for i := range g {
		assert.InDelta(Te, -0.7*g[i]*R.Scale, R.D[i], 1e-15)
		assert.InDelta(Te, 1+R.D[i], R.X3[i], 1e-15)
	}
}

func TestLimitStep(Te *testing.T) {
	d := []float64{0.05, -0.02}
	scale, clamped := LimitStep(d, 0.1)
	assert.False(Te, clamped)
	assert.Equal(Te, 1.0, scale)
	assert.Equal(Te, []float64{0.05, -0.02}, d)

	d = []float64{0.4, -0.2}
	scale, clamped = LimitStep(d, 0.1)
	assert.True(Te, clamped)
	assert.InDelta(Te, 0.25, scale, 1e-15)
	assert.InDeltaSlice(Te, []float64{0.1, -0.05}, d, 1e-15)
}

func TestUpdateStepSizes(Te *testing.T) {
	_, err := UpdateStep(StepInput{X2: []float64{0, 0, 0}, G2: []float64{0, 0}, H: InitialHessian(3)}, 0.1)
	assert.ErrorIs(Te, err, ErrDimension)
	_, err = UpdateStep(StepInput{X1: []float64{0}, G1: []float64{0}, X2: []float64{0, 0, 0}, G2: []float64{0, 0, 0}, H: InitialHessian(3)}, 0.1)
	assert.ErrorIs(Te, err, ErrDimension)
}
