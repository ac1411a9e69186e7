/*
 * metrics.go, part of gomecp.
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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes the state of the optimization as prometheus gauges. Since every
// iteration is a separate process, they are not served but written to a text
// file that the node exporter textfile collector can pick up.
type Metrics struct {
	reg       *prometheus.Registry
	step      prometheus.Gauge
	energy    *prometheus.GaugeVec
	gap       prometheus.Gauge
	value     *prometheus.GaugeVec
	threshold *prometheus.GaugeVec
	met       *prometheus.GaugeVec
	converged prometheus.Gauge
}

// NewMetrics registers the gauges in a new registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		step: f.NewGauge(prometheus.GaugeOpts{
			Name: "mecp_step",
			Help: "Index of the last MECP step run.",
		}),
		energy: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mecp_energy_hartree",
			Help: "Energy of each state at the last computed geometry.",
		}, []string{"state"}),
		gap: f.NewGauge(prometheus.GaugeOpts{
			Name: "mecp_energy_gap_hartree",
			Help: "Absolute energy difference between the two states.",
		}),
		value: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mecp_criterion_value",
			Help: "Current value of each convergence criterion.",
		}, []string{"criterion"}),
		threshold: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mecp_criterion_threshold",
			Help: "Threshold of each convergence criterion.",
		}, []string{"criterion"}),
		met: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mecp_criterion_met",
			Help: "1 if the convergence criterion is met, 0 otherwise.",
		}, []string{"criterion"}),
		converged: f.NewGauge(prometheus.GaugeOpts{
			Name: "mecp_converged",
			Help: "1 if the optimization has converged.",
		}),
	}
}

var criterionNames = [...]string{"max_gradient", "rms_gradient", "max_displacement", "rms_displacement", "energy_difference"}

// Observe sets the gauges from the iteration it.
func (M *Metrics) Observe(it *Iteration) {
	M.step.Set(float64(it.Step))
	M.energy.WithLabelValues("first").Set(it.Ea)
	M.energy.WithLabelValues("second").Set(it.Eb)
	M.gap.Set(it.Conv.DE.Value)
	for i, c := range it.Conv.Criteria() {
		M.value.WithLabelValues(criterionNames[i]).Set(c.Value)
		M.threshold.WithLabelValues(criterionNames[i]).Set(c.Threshold)
		M.met.WithLabelValues(criterionNames[i]).Set(b2f(c.Met))
	}
	M.converged.Set(b2f(it.Conv.Converged))
}

// Gatherer returns the registry holding the gauges.
func (M *Metrics) Gatherer() prometheus.Gatherer {
	return M.reg
}

// WriteTextfile writes the gauges, in the prometheus text format, to the file
// name. The file is replaced atomically.
func (M *Metrics) WriteTextfile(name string) error {
	if err := prometheus.WriteToTextfile(name, M.reg); err != nil {
		return newError(ErrOutput, name, "Metrics.WriteTextfile", "%s", err)
	}
	return nil
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
