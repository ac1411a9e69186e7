/*
 * doc.go, part of gomecp.
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
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

/*
Package mecp locates Minimum Energy Crossing Points (MECPs) between two potential
energy surfaces, following the method of J. N. Harvey and co-workers.

The optimization is driven from the outside: each invocation performs exactly one
iteration. It reads the energies and gradients of the two states at the current
geometry (package qm), builds the effective gradient, updates the approximate
inverse Hessian with the BFGS formula, takes a step of limited size, checks five
convergence criteria and persists everything needed for the next invocation in a
text "ProgFile" compatible with the classic Fortran MECP program.

	**Capabilities**

    Effective gradient of the crossing seam, with parallel and difference
	components.

    BFGS update of the inverse Hessian on gonum symmetric matrices, with curvature
	check and max-component step limit.

    The five convergence criteria of the original program (max and RMS step,
	max and RMS gradient, energy gap).

    Reading and writing the ProgFile, the geometry files and an append-only
	report file. Optional xyz trajectory (package traj), JSON-lines history,
	history plots (package mecpplot) and prometheus textfile metrics.

The command gomecp (cmd/gomecp) wraps all of it for use from shell scripts.
*/
package mecp
