/*
 * report.go, part of gomecp.
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
	"os"
	"strings"

	"github.com/rmera/gomecp/v3"
	"gonum.org/v1/gonum/mat"
)

// HessianPrint selects how the inverse Hessian is printed in the report.
type HessianPrint string

const (
	HessianNone HessianPrint = "none"
	HessianFull HessianPrint = "full"
	HessianSign HessianPrint = "sign" //only sign and rough magnitude
)

// Iteration collects everything reported for one step.
type Iteration struct {
	Step   int //the step index before the convergence check
	AtNum  []int
	X2, X3 *v3.Matrix //the computed and the next geometry
	Ea, Eb float64
	Eff    *EffGrad
	Update *StepResult
	Conv   *Convergence
}

// AppendReport opens the report file name for appending (creating it if needed),
// calls write with it, and closes it.
func AppendReport(name string, write func(io.Writer) error) error {
	f, err := os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return newError(ErrOutput, name, "AppendReport", "%s", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return newError(ErrOutput, name, "AppendReport", "%s", err)
	}
	if err := f.Close(); err != nil {
		return newError(ErrOutput, name, "AppendReport", "%s", err)
	}
	return nil
}

// WriteReportHeader writes the banner and the initial geometry that open the report.
func WriteReportHeader(out io.Writer, atnum []int, geo *v3.Matrix) error {
	w := bufio.NewWriter(out)
	fmt.Fprintln(w, "       Geometry Optimization of an MECP")
	fmt.Fprintln(w, "       Program: J. N. Harvey, March 1999")
	fmt.Fprintln(w, "         version 2, November 2003")
	fmt.Fprintln(w, "       gomecp")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Initial Geometry:")
	writeReportGeometry(w, atnum, geo)
	fmt.Fprintln(w)
	return w.Flush()
}

// WriteIteration writes the report entry for one step.
func WriteIteration(out io.Writer, it *Iteration, hess HessianPrint) error {
	w := bufio.NewWriter(out)
	fmt.Fprintf(w, "Energy of First State:  %18.10f\n", it.Ea)
	fmt.Fprintf(w, "Energy of Second State: %18.10f\n", it.Eb)
	fmt.Fprintln(w)
	if err := it.Conv.Report(w); err != nil {
		return err
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Overall Effective Gradient:")
	writeReportVector(w, it.Eff.G)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Difference Gradient: (RMS * DE:%11.6f)\n", rms(it.Eff.Perp))
	writeReportVector(w, it.Eff.Perp)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Parallel Gradient: (RMS:%11.6f)\n", rms(it.Eff.Par))
	writeReportVector(w, it.Eff.Par)
	fmt.Fprintln(w)
	if it.Eff.Degenerate {
		fmt.Fprintln(w, "Warning: identical gradients for both states, the difference gradient is zero.")
	}
	if it.Update != nil {
		if it.Update.Skipped {
			fmt.Fprintf(w, "Inverse Hessian not updated (s.y = %.6e <= 0).\n", it.Update.Curvature)
		}
		if it.Update.Clamped {
			fmt.Fprintf(w, "Step scaled by %.6f to respect the maximum step size.\n", it.Update.Scale)
		}
		switch hess {
		case HessianFull:
			fmt.Fprintln(w, "Inverse Hessian Matrix at this step:")
			writeHessian(w, it.Update.H)
		case HessianSign:
			fmt.Fprintln(w, "Sign of Inverse Hessian Matrix at this step:")
			writeHessianSign(w, it.Update.H)
		}
	}
	if it.Conv.Converged {
		fmt.Fprintln(w, "The MECP Optimization has CONVERGED at that geometry !!!")
		fmt.Fprintln(w, "Goodbye and fly with us again...")
	} else {
		fmt.Fprintf(w, "Geometry at Step%3d\n", it.Conv.NextStep(it.Step))
		writeReportGeometry(w, it.AtNum, it.X3)
		fmt.Fprintln(w)
	}
	return w.Flush()
}

// WriteReportError appends the error marker, followed by the diagnostic.
// For package errors, the functions the error went through are added.
func WriteReportError(out io.Writer, err error) error {
	_, werr := fmt.Fprintf(out, "ERROR\n%s\n", err)
	var e *Error
	if werr == nil && errors.As(err, &e) && len(e.deco) > 0 {
		_, werr = fmt.Fprintf(out, "in: %s\n", e.Trace())
	}
	return werr
}

func writeReportGeometry(w io.Writer, atnum []int, geo *v3.Matrix) {
	for i, z := range atnum {
		fmt.Fprintf(w, "%3d%15.7f%15.7f%15.7f\n", z, geo.At(i, 0), geo.At(i, 1), geo.At(i, 2))
	}
}

func writeReportVector(w io.Writer, v []float64) {
	for i := 0; i+2 < len(v); i += 3 {
		fmt.Fprintf(w, "%3d%16.8f%16.8f%16.8f\n", i/3+1, v[i], v[i+1], v[i+2])
	}
}

// coordLabel returns X1, Y1, Z1, X2... for the coordinate i.
func coordLabel(i int) string {
	return fmt.Sprintf("%c%d", "XYZ"[i%3], i/3+1)
}

func center(s string, width int) string {
	pad := width - len(s)
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad/2) + s + strings.Repeat(" ", pad-pad/2)
}

// writeHessian prints the lower triangle of H in blocks of 6 columns.
func writeHessian(w io.Writer, H *mat.SymDense) {
	const block = 6
	size := H.SymmetricDim()
	for diag := 0; diag < size; diag += block {
		fmt.Fprint(w, "    ")
		for c := diag; c < min(diag+block, size); c++ {
			fmt.Fprint(w, center(coordLabel(c), 12))
		}
		fmt.Fprintln(w)
		for row := diag; row < size; row++ {
			fmt.Fprintf(w, "%-4s", coordLabel(row))
			for col := diag; col < min(row+1, diag+block); col++ {
				fmt.Fprintf(w, "%12s", fmt.Sprintf("% .8f", H.At(row, col)))
			}
			fmt.Fprintln(w)
		}
	}
	fmt.Fprintln(w)
}

// writeHessianSign prints the lower triangle of H, in blocks of 18 columns,
// with one symbol per element giving its sign and rough size.
func writeHessianSign(w io.Writer, H *mat.SymDense) {
	const block = 18
	size := H.SymmetricDim()
	for diag := 0; diag < size; diag += block {
		fmt.Fprint(w, "    ")
		for c := diag; c < min(diag+block, size); c++ {
			fmt.Fprint(w, center(coordLabel(c), 4))
		}
		fmt.Fprintln(w)
		for row := diag; row < size; row++ {
			fmt.Fprintf(w, "%-4s", coordLabel(row))
			for col := diag; col < min(row+1, diag+block); col++ {
				fmt.Fprint(w, signSymbol(H.At(row, col)))
			}
			fmt.Fprintln(w)
		}
	}
	fmt.Fprintln(w)
}

func signSymbol(v float64) string {
	switch {
	case v == 0:
		return "  0 "
	case v < -1:
		return " ---"
	case v > 1:
		return " +++"
	case v < -0.35:
		return " -- "
	case v > 0.35:
		return " ++ "
	case v < 0:
		return "  - "
	default:
		return "  + "
	}
}
