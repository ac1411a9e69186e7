/*
 * main.go, part of gomecp.
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

// Command gomecp runs one iteration of an MECP optimization per invocation,
// so it can be called from the shell script that runs the ab initio jobs.
//
//	gomecp init --config mecp.yaml --geometry start.xyz
//	(run the two ab initio jobs on the geometry in the file "geom", collect the results in "ab_initio")
//	gomecp step --config mecp.yaml
//	...repeat until gomecp step prints CONVERGED...
//	gomecp plot --config mecp.yaml
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
