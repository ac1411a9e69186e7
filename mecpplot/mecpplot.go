/*
 * mecpplot.go, part of gomecp.
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

// Package mecpplot draws the history of an MECP optimization: the energies
// of both states, and the convergence criteria, against the step number.
package mecpplot

import (
	"fmt"
	"math"

	mecp "github.com/rmera/gomecp"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Size of the saved plots.
var (
	Width  = 6 * vg.Inch
	Height = 4 * vg.Inch
)

//values below this are drawn at this value in log plots.
const logFloor = 1e-12

func basicPlot(title, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = "Step"
	p.Y.Label.Text = ylabel
	p.Legend.Top = true
	p.Add(plotter.NewGrid())
	return p
}

func series(recs []mecp.Record, value func(mecp.Record) float64, floor bool) plotter.XYs {
	pts := make(plotter.XYs, len(recs))
	for i, r := range recs {
		pts[i].X = float64(r.Step)
		pts[i].Y = value(r)
		if floor {
			pts[i].Y = math.Max(pts[i].Y, logFloor)
		}
	}
	return pts
}

// Energies plots the energies of both states, relative to the lowest energy in the
// history and in kcal/mol, and saves it to filename. The format is given by the
// extension (png, svg, pdf, eps...).
func Energies(recs []mecp.Record, title, filename string) error {
	if len(recs) == 0 {
		return fmt.Errorf("mecpplot: no data to plot")
	}
	const hartree2kcal = 627.509
	ref := math.Inf(1)
	for _, r := range recs {
		ref = math.Min(ref, math.Min(r.Ea, r.Eb))
	}
	p := basicPlot(title, "Relative energy (kcal/mol)")
	err := plotutil.AddLinePoints(p,
		"First state", series(recs, func(r mecp.Record) float64 { return (r.Ea - ref) * hartree2kcal }, false),
		"Second state", series(recs, func(r mecp.Record) float64 { return (r.Eb - ref) * hartree2kcal }, false))
	if err != nil {
		return err
	}
	return p.Save(Width, Height, filename)
}

// Criteria plots, in a log scale, the energy gap, the largest effective gradient
// element and the largest displacement, and saves it to filename.
func Criteria(recs []mecp.Record, title, filename string) error {
	if len(recs) == 0 {
		return fmt.Errorf("mecpplot: no data to plot")
	}
	p := basicPlot(title, "Value")
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	err := plotutil.AddLinePoints(p,
		"|Ea-Eb| (Hartree)", series(recs, func(r mecp.Record) float64 { return r.DE }, true),
		"Max gradient (Hartree/A)", series(recs, func(r mecp.Record) float64 { return r.MaxG }, true),
		"Max displacement (A)", series(recs, func(r mecp.Record) float64 { return r.MaxDX }, true))
	if err != nil {
		return err
	}
	return p.Save(Width, Height, filename)
}
