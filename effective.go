/*
 * effective.go, part of gomecp.
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
	"math"

	"gonum.org/v1/gonum/floats"
)

// Default values for the effective gradient factors, in 1/Hartree and dimensionless.
// The "difference gradient" is typically ca. 0.14 Hartree/Angstrom, which gives a
// Hessian term for (Ea-Eb)^2 of ca. 0.01 Hartree^2/Angstrom^2. Using DefaultFacPP
// brings it close to the empirical 1.4 Hartree/Angstrom^2 of the normal coordinates.
const (
	DefaultFacPP = 140.0
	DefaultFacP  = 1.0
)

// Factors are the weights of the two components of the effective gradient.
type Factors struct {
	PP float64 //for the difference gradient, scaled also by Ea-Eb
	P  float64 //for the parallel gradient
}

// DefaultFactors returns the factors used by the original MECP program.
func DefaultFactors() Factors {
	return Factors{PP: DefaultFacPP, P: DefaultFacP}
}

// EffGrad contains the effective gradient and its components.
type EffGrad struct {
	G    []float64 //effective gradient
	Perp []float64 //difference gradient, Ga-Gb
	Par  []float64 //component of Ga orthogonal to Perp
	Norm float64   //norm of Perp
	//Degenerate is true if both gradients are identical, so the
	//difference gradient has no direction.
	Degenerate bool
}

// EffectiveGradient combines the energies and gradients of both states into the
// gradient of the function minimized at the MECP:
//
//	G = fac.PP*(ea-eb)*(Ga-Gb) + fac.P*Par
//
// where Par is Ga with its projection on Ga-Gb removed. If Ga == Gb the
// projection is not defined, Par is taken as Ga itself and the result is
// flagged as Degenerate.
func EffectiveGradient(ea, eb float64, ga, gb []float64, fac Factors) (*EffGrad, error) {
	if len(ga) != len(gb) || len(ga) == 0 {
		return nil, newError(ErrDimension, "", "EffectiveGradient", "gradients of %d and %d elements", len(ga), len(gb))
	}
	n := len(ga)
	E := &EffGrad{
		G:    make([]float64, n),
		Perp: make([]float64, n),
		Par:  make([]float64, n),
	}
	floats.SubTo(E.Perp, ga, gb)
	E.Norm = floats.Norm(E.Perp, 2)
	copy(E.Par, ga)
	if E.Norm == 0 {
		E.Degenerate = true
	} else {
		proj := floats.Dot(ga, E.Perp) / E.Norm
		floats.AddScaled(E.Par, -proj/E.Norm, E.Perp)
	}
	floats.ScaleTo(E.G, fac.PP*(ea-eb), E.Perp)
	floats.AddScaled(E.G, fac.P, E.Par)
	return E, nil
}

// rms returns the root mean square of the elements of v.
func rms(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	return math.Sqrt(floats.Dot(v, v) / float64(len(v)))
}

// maxAbs returns the largest absolute value among the elements of v,
// or NaN if any element is NaN.
func maxAbs(v []float64) float64 {
	var m float64
	for _, x := range v {
		if math.IsNaN(x) {
			return x
		}
		if a := math.Abs(x); a > m {
			m = a
		}
	}
	return m
}
