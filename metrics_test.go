/*
 * metrics_test.go, part of gomecp.
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
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsObserve(Te *testing.T) {
	M := NewMetrics()
	it := testIteration(Te, false)
	M.Observe(it)
	assert.Equal(Te, 2.0, testutil.ToFloat64(M.step))
	assert.Equal(Te, -1.01, testutil.ToFloat64(M.energy.WithLabelValues("second")))
	assert.InDelta(Te, 0.01, testutil.ToFloat64(M.gap), 1e-12)
	assert.Equal(Te, 0.0, testutil.ToFloat64(M.converged))
	assert.Equal(Te, 0.0, testutil.ToFloat64(M.met.WithLabelValues("energy_difference")))
	assert.Equal(Te, DefaultThresholds().DE, testutil.ToFloat64(M.threshold.WithLabelValues("energy_difference")))

	M.Observe(testIteration(Te, true))
	assert.Equal(Te, 1.0, testutil.ToFloat64(M.converged))
	assert.Equal(Te, 1.0, testutil.ToFloat64(M.met.WithLabelValues("max_gradient")))

	n, err := testutil.GatherAndCount(M.Gatherer())
	require.NoError(Te, err)
	//step, gap, converged, 2 energies and 3x5 criterion gauges
	assert.Equal(Te, 20, n)

	name := filepath.Join(Te.TempDir(), "mecp.prom")
	require.NoError(Te, M.WriteTextfile(name))
	data, err := os.ReadFile(name)
	require.NoError(Te, err)
	assert.Contains(Te, string(data), `mecp_criterion_met{criterion="max_gradient"} 1`)
}
