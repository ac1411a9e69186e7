/*
 * driver.go, part of gomecp.
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
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/rmera/gomecp/qm"
	"github.com/rmera/gomecp/traj/xyz"
	"github.com/rmera/gomecp/v3"
)

// Driver runs MECP iterations. Each call to Step runs exactly one.
type Driver struct {
	Config *Config
	Feed   qm.Feed
	Log    *slog.Logger //slog.Default() if nil
}

// NewDriver returns a Driver after validating C.
func NewDriver(C *Config, feed qm.Feed, logger *slog.Logger) (*Driver, error) {
	if err := C.Validate(); err != nil {
		return nil, errDecorate(err, "NewDriver")
	}
	if feed == nil {
		return nil, newError(ErrInvalidConfig, "", "NewDriver", "no source for the ab initio results")
	}
	return &Driver{Config: C, Feed: feed, Log: logger}, nil
}

// Outcome is what one iteration produced.
type Outcome struct {
	Step      int //the step counter after the iteration
	Converged bool
	Iteration *Iteration
}

func (D *Driver) log() *slog.Logger {
	if D.Log == nil {
		return slog.Default()
	}
	return D.Log
}

// Step runs one iteration: it loads the state, reads the ab initio results for the
// current geometry, computes the effective gradient, updates the inverse Hessian,
// takes a step and checks convergence. The result is appended to the report.
// If not converged, the new state is saved and the next geometry is written.
// If converged, the converged geometry is written to the final geometry file and
// the state is left untouched.
//
// Every error is also appended to the report, after an ERROR line. Apart from
// context cancellation, errors wrap one of the package sentinel errors.
func (D *Driver) Step(ctx context.Context) (*Outcome, error) {
	out, err := D.step(ctx)
	if err != nil {
		err = errDecorate(err, "Driver.Step")
		D.log().Error("MECP step failed", "error", err)
		rerr := AppendReport(D.Config.Files.Report, func(w io.Writer) error { return WriteReportError(w, err) })
		if rerr != nil {
			D.log().Error("could not add the error to the report", "error", rerr)
		}
		return nil, err
	}
	return out, nil
}

func (D *Driver) step(ctx context.Context) (*Outcome, error) {
	C := D.Config
	files := C.Files
	lg := D.log()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	S, err := LoadState(files.ProgFile, C.Atoms, files.InitialGeometry)
	if err != nil {
		return nil, err
	}
	lg.Debug("state loaded", "step", S.Step, "atoms", S.NAtoms(), "cold_start", S.First())
	if C.MaxSteps > 0 && S.Step >= C.MaxSteps {
		return nil, newError(ErrMaxSteps, files.ProgFile, "Driver.step", "%d steps run, the limit is %d", S.Step, C.MaxSteps)
	}
	n := S.NAtoms()
	res, err := D.Feed.Results(n)
	if err != nil {
		kind := ErrAbInitioRead
		if errors.Is(err, qm.ErrJobFailure) {
			kind = ErrAbInitioJob
		}
		return nil, newError(kind, "", "Driver.step", "%s", err)
	}
	if !finiteResult(res) {
		return nil, newError(ErrAbInitioRead, "", "Driver.step", "non-finite energy or gradient")
	}
	lg.Debug("ab initio results read", "ea", res.Ea, "eb", res.Eb)

	eff, err := EffectiveGradient(res.Ea, res.Eb, res.Ga, res.Gb, C.Factors())
	if err != nil {
		return nil, err
	}
	if eff.Degenerate {
		lg.Warn("identical gradients for both states, the difference gradient is zero")
	}
	in := StepInput{X2: S.Next.Flat(), G2: eff.G, H: S.H}
	if !S.First() {
		in.X1 = S.Prev.Flat()
		in.G1 = S.G
	}
	upd, err := UpdateStep(in, float64(C.MaxStepSize))
	if err != nil {
		return nil, err
	}
	if upd.Skipped {
		lg.Info("inverse Hessian update skipped", "sy", upd.Curvature)
	}
	conv, err := CheckConvergence(upd.D, eff.G, res.Ea-res.Eb, C.Criteria())
	if err != nil {
		return nil, err
	}
	X3, err := v3.NewMatrix(upd.X3)
	if err != nil {
		return nil, newError(ErrDimension, "", "Driver.step", "%s", err)
	}
	moved := v3.Zeros(n)
	moved.Displacement(S.Next, X3)
	lg.Debug("step taken", "largest_move", moved.MaxAbs(), "scaled", upd.Clamped, "scale", upd.Scale, "next", X3.String())
	it := &Iteration{
		Step:   S.Step,
		AtNum:  S.AtNum,
		X2:     S.Next,
		X3:     X3,
		Ea:     res.Ea,
		Eb:     res.Eb,
		Eff:    eff,
		Update: upd,
		Conv:   conv,
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	//CONVERGED is only reported once the final geometry is written.
	if conv.Converged {
		if err := WriteGeometryFile(files.FinalGeometry, S.AtNum, S.Next); err != nil {
			return nil, err
		}
	}
	err = AppendReport(files.Report, func(w io.Writer) error {
		if S.Step == 0 {
			if err := WriteReportHeader(w, S.AtNum, S.Next); err != nil {
				return err
			}
		}
		return WriteIteration(w, it, HessianPrint(C.ShowHessian))
	})
	if err != nil {
		return nil, err
	}
	if err := D.extras(it); err != nil {
		return nil, err
	}
	out := &Outcome{Step: conv.NextStep(S.Step), Converged: conv.Converged, Iteration: it}
	if conv.Converged {
		lg.Info("MECP optimization converged", "step", S.Step, "de", conv.DE.Value)
		return out, nil
	}
	next := &State{
		Step:     out.Step,
		Complete: true,
		AtNum:    S.AtNum,
		Next:     X3,
		Prev:     S.Next,
		Ea:       res.Ea,
		Eb:       res.Eb,
		Ga:       res.Ga,
		Gb:       res.Gb,
		G:        eff.G,
		H:        upd.H,
	}
	if err := SaveState(files.ProgFile, next); err != nil {
		return nil, err
	}
	if err := WriteGeometryFile(files.NextGeometry, S.AtNum, X3); err != nil {
		return nil, err
	}
	lg.Info("MECP step done", "step", out.Step, "de", conv.DE.Value, "max_gradient", conv.MaxG.Value, "max_displacement", conv.MaxDX.Value)
	return out, nil
}

func finiteResult(r *qm.Result) bool {
	for _, set := range [][]float64{{r.Ea, r.Eb}, r.Ga, r.Gb} {
		for _, v := range set {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

// extras writes the optional outputs: trajectory, history and metrics.
func (D *Driver) extras(it *Iteration) error {
	files := D.Config.Files
	if files.Trajectory != "" {
		symbols := make([]string, len(it.AtNum))
		for i, z := range it.AtNum {
			symbols[i] = Symbol(z)
		}
		W, err := xyz.Append(files.Trajectory, len(it.AtNum))
		if err != nil {
			return newError(ErrOutput, files.Trajectory, "Driver.extras", "%s", err)
		}
		comment := fmt.Sprintf("Step %d Ea= %.10f Eb= %.10f DE= %.10f", it.Step, it.Ea, it.Eb, it.Ea-it.Eb)
		err = W.WNext(symbols, it.X2, comment)
		if cerr := W.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return newError(ErrOutput, files.Trajectory, "Driver.extras", "%s", err)
		}
	}
	if files.History != "" {
		if err := AppendHistory(files.History, NewRecord(it)); err != nil {
			return errDecorate(err, "Driver.extras")
		}
	}
	if files.Metrics != "" {
		M := NewMetrics()
		M.Observe(it)
		if err := M.WriteTextfile(files.Metrics); err != nil {
			return errDecorate(err, "Driver.extras")
		}
	}
	return nil
}
