/*
 * convergence.go, part of gomecp.
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
	"io"
	"math"
)

// Thresholds for the five convergence criteria. Distances in Angstrom,
// gradients in Hartree/Angstrom and energies in Hartree.
type Thresholds struct {
	MaxDX, RMSDX float64
	MaxG, RMSG   float64
	DE           float64
}

// DefaultThresholds returns the thresholds of the original MECP program.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxDX: 4e-3,
		RMSDX: 2.5e-3,
		MaxG:  7e-4,
		RMSG:  5e-4,
		DE:    5e-5,
	}
}

// Criterion is one convergence test. It is met if Value < Threshold.
type Criterion struct {
	Label     string
	Value     float64
	Threshold float64
	Met       bool
}

func newCriterion(label string, value, threshold float64) Criterion {
	return Criterion{Label: label, Value: value, Threshold: threshold, Met: value < threshold}
}

// Flag returns YES or NO.
func (C Criterion) Flag() string {
	if C.Met {
		return "YES"
	}
	return " NO"
}

// Convergence is the result of CheckConvergence.
type Convergence struct {
	MaxG, RMSG   Criterion
	MaxDX, RMSDX Criterion
	DE           Criterion
	Converged    bool
}

// CheckConvergence applies the five criteria to the step dx (X3-X2), the effective
// gradient g and the energy gap de (Ea-Eb). The optimization is converged only if
// all five are met.
func CheckConvergence(dx, g []float64, de float64, t Thresholds) (*Convergence, error) {
	if len(dx) != len(g) || len(g) == 0 {
		return nil, newError(ErrDimension, "", "CheckConvergence", "step of %d elements and gradient of %d", len(dx), len(g))
	}
	C := &Convergence{
		MaxG:  newCriterion("Max Gradient El.:", maxAbs(g), t.MaxG),
		RMSG:  newCriterion("RMS Gradient El.:", rms(g), t.RMSG),
		MaxDX: newCriterion("Max Change of X: ", maxAbs(dx), t.MaxDX),
		RMSDX: newCriterion("RMS Change of X: ", rms(dx), t.RMSDX),
		DE:    newCriterion("Difference in E: ", math.Abs(de), t.DE),
	}
	C.Converged = true
	for _, c := range C.Criteria() {
		C.Converged = C.Converged && c.Met
	}
	return C, nil
}

// Criteria returns the five criteria, in the order they are reported.
func (C *Convergence) Criteria() []Criterion {
	return []Criterion{C.MaxG, C.RMSG, C.MaxDX, C.RMSDX, C.DE}
}

// NextStep returns the step counter after this check: unchanged if converged,
// step+1 otherwise.
func (C *Convergence) NextStep(step int) int {
	if C.Converged {
		return step
	}
	return step + 1
}

// Report writes the convergence block of the report file to w.
func (C *Convergence) Report(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "Convergence Check (Actual Value, then Threshold, then Status):"); err != nil {
		return err
	}
	for _, c := range C.Criteria() {
		if _, err := fmt.Fprintf(w, "%s%11.6f (%8.6f)  %s\n", c.Label, c.Value, c.Threshold, c.Flag()); err != nil {
			return err
		}
	}
	return nil
}
