/*
 * driver_test.go, part of gomecp.
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
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rmera/gomecp/qm"
	"github.com/rmera/gomecp/traj/xyz"
	"github.com/rmera/gomecp/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// toyFeed has two harmonic surfaces, with minima at A and B, and returns their
// energies and gradients at the geometry X.
type toyFeed struct {
	X      []float64
	A, B   []float64
	Ka, Kb float64
	C      float64
	calls  int
}

func (T *toyFeed) Results(natoms int) (*qm.Result, error) {
	T.calls++
	r := &qm.Result{Ea: -100, Eb: -100 + T.C, Ga: make([]float64, 3*natoms), Gb: make([]float64, 3*natoms)}
	for i, x := range T.X {
		r.Ea += 0.5 * T.Ka * (x - T.A[i]) * (x - T.A[i])
		r.Eb += 0.5 * T.Kb * (x - T.B[i]) * (x - T.B[i])
		r.Ga[i] = T.Ka * (x - T.A[i])
		r.Gb[i] = T.Kb * (x - T.B[i])
	}
	return r, nil
}

func testConfig(Te *testing.T, dir string, natoms int) *Config {
	C := DefaultConfig()
	C.Atoms = natoms
	f := &C.Files
	f.ProgFile = filepath.Join(dir, "ProgFile")
	f.AbInitio = filepath.Join(dir, "ab_initio")
	f.InitialGeometry = filepath.Join(dir, "initial")
	f.NextGeometry = filepath.Join(dir, "geom")
	f.FinalGeometry = filepath.Join(dir, "final_geom")
	f.Report = filepath.Join(dir, "ReportFile")
	f.Trajectory = filepath.Join(dir, "trajectory.xyz.zst")
	f.History = filepath.Join(dir, "history.jsonl")
	f.Metrics = filepath.Join(dir, "mecp.prom")
	return C
}

func TestDriverConverges(Te *testing.T) {
	dir := Te.TempDir()
	C := testConfig(Te, dir, 2)
	x0 := []float64{0.1, -0.1, 0.05, 0.05, 0.0, 1.0}
	geo, err := v3.NewMatrix(append([]float64(nil), x0...))
	require.NoError(Te, err)
	require.NoError(Te, WriteGeometryFile(C.Files.InitialGeometry, []int{6, 8}, geo))
	feed := &toyFeed{
		X:  x0,
		A:  []float64{0, 0, 0, 0, 0, 1.1},
		B:  []float64{0.3, 0.1, 0, 0, 0, 1.3},
		Ka: 0.6, Kb: 0.4, C: -0.01,
	}
	D, err := NewDriver(C, feed, nil)
	require.NoError(Te, err)
	var out *Outcome
	for i := 0; i < 30; i++ {
		out, err = D.Step(context.Background())
		require.NoError(Te, err)
		if out.Converged {
			break
		}
		assert.Equal(Te, i+1, out.Step)
		//the "ab initio job" runs at the new geometry
		atnum, next, err := ReadGeometryFile(C.Files.NextGeometry)
		require.NoError(Te, err)
		assert.Equal(Te, []int{6, 8}, atnum)
		feed.X = next.Flat()
	}
	require.True(Te, out.Converged)
	assert.Equal(Te, 5, out.Step)
	assert.Equal(Te, 6, feed.calls)

	_, final, err := ReadGeometryFile(C.Files.FinalGeometry)
	require.NoError(Te, err)
	assert.InDeltaSlice(Te, []float64{0.08993731, 0.02984185, 0.00005147, 0.00005147, 0, 1.15978664}, final.Flat(), 1e-6)

	//the state of the last non-converged step is kept
	S, err := LoadState(C.Files.ProgFile, 2, "")
	require.NoError(Te, err)
	assert.Equal(Te, 5, S.Step)

	report, err := os.ReadFile(C.Files.Report)
	require.NoError(Te, err)
	assert.Equal(Te, 1, strings.Count(string(report), "Initial Geometry:"))
	assert.Equal(Te, 6, strings.Count(string(report), "Convergence Check"))
	assert.True(Te, strings.Contains(string(report), "CONVERGED"))
	assert.NotContains(Te, string(report), "ERROR")

	R, err := xyz.Open(C.Files.Trajectory)
	require.NoError(Te, err)
	defer R.Close()
	frames := 0
	for {
		syms, _, comment, err := R.Next()
		if err != nil {
			break
		}
		assert.Equal(Te, []string{"C", "O"}, syms)
		assert.True(Te, strings.HasPrefix(comment, "Step "))
		frames++
	}
	assert.Equal(Te, 6, frames)

	hist, err := ReadHistoryFile(C.Files.History)
	require.NoError(Te, err)
	require.Len(Te, hist, 6)
	assert.True(Te, hist[5].Converged)
	assert.False(Te, hist[4].Converged)
	assert.Equal(Te, 0, hist[0].Step)

	prom, err := os.ReadFile(C.Files.Metrics)
	require.NoError(Te, err)
	assert.Contains(Te, string(prom), "mecp_converged 1")
	assert.Contains(Te, string(prom), `mecp_criterion_met{criterion="energy_difference"} 1`)
}

func TestDriverIdenticalGradients(Te *testing.T) {
	dir := Te.TempDir()
	C := testConfig(Te, dir, 2)
	C.Files.InitialGeometry = ""
	geo, err := v3.NewMatrix([]float64{0, 0, 0, 0, 0, 1.2})
	require.NoError(Te, err)
	require.NoError(Te, WritePlaceholder(C.Files.ProgFile, []int{6, 8}, geo))
	g := []float64{0.01, 0, 0, -0.01, 0, 0}
	feed := &qm.Static{R: qm.Result{Ea: -1, Eb: -1.0005, Ga: g, Gb: g}}
	D, err := NewDriver(C, feed, nil)
	require.NoError(Te, err)
	out, err := D.Step(context.Background())
	require.NoError(Te, err)
	assert.False(Te, out.Converged)
	assert.True(Te, out.Iteration.Eff.Degenerate)
	for i, v := range out.Iteration.Update.D {
		assert.InDelta(Te, -0.7*g[i], v, 1e-15)
	}
	S, err := LoadState(C.Files.ProgFile, 2, "")
	require.NoError(Te, err)
	assert.Equal(Te, 1, S.Step)
	assert.True(Te, S.Complete)
}

func TestDriverErrors(Te *testing.T) {
	dir := Te.TempDir()
	C := testConfig(Te, dir, 2)
	C.Files.InitialGeometry = ""
	D, err := NewDriver(C, qm.NewAbInitioFile(C.Files.AbInitio), nil)
	require.NoError(Te, err)

	_, err = D.Step(context.Background())
	assert.ErrorIs(Te, err, ErrMissingStateFile)

	geo, err := v3.NewMatrix([]float64{0, 0, 0, 0, 0, 1.2})
	require.NoError(Te, err)
	require.NoError(Te, WritePlaceholder(C.Files.ProgFile, []int{6, 8}, geo))
	_, err = D.Step(context.Background())
	assert.ErrorIs(Te, err, ErrAbInitioRead)

	require.NoError(Te, os.WriteFile(C.Files.AbInitio, []byte("ERROR\n"), 0644))
	_, err = D.Step(context.Background())
	assert.ErrorIs(Te, err, ErrAbInitioJob)

	C.Atoms = 3
	_, err = D.Step(context.Background())
	assert.ErrorIs(Te, err, ErrAtomCountMismatch)
	C.Atoms = 2

	S, err := NewState([]int{6, 8}, geo)
	require.NoError(Te, err)
	S.Step = 4
	S.Complete = true
	require.NoError(Te, SaveState(C.Files.ProgFile, S))
	C.MaxSteps = 4
	_, err = D.Step(context.Background())
	assert.ErrorIs(Te, err, ErrMaxSteps)

	report, err := os.ReadFile(C.Files.Report)
	require.NoError(Te, err)
	markers := 0
	for _, line := range strings.Split(string(report), "\n") {
		if line == "ERROR" {
			markers++
		}
	}
	assert.Equal(Te, 5, markers)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = D.Step(ctx)
	assert.ErrorIs(Te, err, context.Canceled)
}

func TestDriverConvergedWithoutFinalGeometry(Te *testing.T) {
	dir := Te.TempDir()
	C := testConfig(Te, dir, 2)
	C.Files.InitialGeometry = ""
	C.Files.FinalGeometry = filepath.Join(dir, "missing", "final_geom")
	geo, err := v3.NewMatrix([]float64{0, 0, 0, 0, 0, 1.2})
	require.NoError(Te, err)
	require.NoError(Te, WritePlaceholder(C.Files.ProgFile, []int{6, 8}, geo))
	//zero gradients and no energy gap converge at once
	feed := &qm.Static{R: qm.Result{Ea: -1, Eb: -1, Ga: make([]float64, 6), Gb: make([]float64, 6)}}
	D, err := NewDriver(C, feed, nil)
	require.NoError(Te, err)
	_, err = D.Step(context.Background())
	assert.ErrorIs(Te, err, ErrOutput)
	report, err := os.ReadFile(C.Files.Report)
	require.NoError(Te, err)
	assert.NotContains(Te, string(report), "CONVERGED")
	assert.Contains(Te, string(report), "ERROR\n")

	C.Files.FinalGeometry = filepath.Join(dir, "final_geom")
	out, err := D.Step(context.Background())
	require.NoError(Te, err)
	assert.True(Te, out.Converged)
	report, err = os.ReadFile(C.Files.Report)
	require.NoError(Te, err)
	assert.Contains(Te, string(report), "CONVERGED")
}

type nanFeed struct{}

func (nanFeed) Results(natoms int) (*qm.Result, error) {
	r := &qm.Result{Ea: -1, Eb: -1.01, Ga: make([]float64, 3*natoms), Gb: make([]float64, 3*natoms)}
	r.Gb[2] = math.Inf(1)
	return r, nil
}

func TestDriverNonFiniteResults(Te *testing.T) {
	dir := Te.TempDir()
	C := testConfig(Te, dir, 2)
	C.Files.InitialGeometry = ""
	geo, err := v3.NewMatrix([]float64{0, 0, 0, 0, 0, 1.2})
	require.NoError(Te, err)
	require.NoError(Te, WritePlaceholder(C.Files.ProgFile, []int{6, 8}, geo))
	before, err := os.ReadFile(C.Files.ProgFile)
	require.NoError(Te, err)

	require.NoError(Te, os.WriteFile(C.Files.AbInitio, []byte(`Energy of the First State
NaN
Gradient of the First State
6 0.0 0.0 0.01
8 0.0 0.0 -0.01
Energy of the Second State
-1.01
Gradient of the Second State
6 0.0 0.0 -0.01
8 0.0 0.0 0.01
`), 0644))
	for _, feed := range []qm.Feed{qm.NewAbInitioFile(C.Files.AbInitio), nanFeed{}} {
		D, err := NewDriver(C, feed, nil)
		require.NoError(Te, err)
		_, err = D.Step(context.Background())
		assert.ErrorIs(Te, err, ErrAbInitioRead)
	}
	after, err := os.ReadFile(C.Files.ProgFile)
	require.NoError(Te, err)
	assert.Equal(Te, before, after)
	_, err = os.Stat(C.Files.NextGeometry)
	assert.True(Te, os.IsNotExist(err))
}

func TestNewDriver(Te *testing.T) {
	C := DefaultConfig()
	_, err := NewDriver(C, &qm.Static{}, nil)
	assert.ErrorIs(Te, err, ErrInvalidConfig)
	C.Atoms = 2
	_, err = NewDriver(C, nil, nil)
	assert.ErrorIs(Te, err, ErrInvalidConfig)
}
