/*
 * step.go, part of gomecp.
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

package main

import (
	"fmt"

	mecp "github.com/rmera/gomecp"
	"github.com/rmera/gomecp/qm"
	"github.com/spf13/cobra"
)

var stepCmd = &cobra.Command{
	Use:   "step",
	Short: "Run one MECP iteration",
	Long: `Reads the ProgFile and the ab initio results for the current geometry, and
writes either the next geometry to compute and the new ProgFile or, if the
optimization converged, the final geometry. Prints CONVERGED in the last case.`,
	RunE: runStep,
}

func init() {
	rootCmd.AddCommand(stepCmd)
}

func runStep(cmd *cobra.Command, args []string) error {
	C, err := loadConfig()
	if err != nil {
		return err
	}
	D, err := mecp.NewDriver(C, qm.NewAbInitioFile(C.Files.AbInitio), logger)
	if err != nil {
		return err
	}
	out, err := D.Step(cmd.Context())
	if err != nil {
		return err
	}
	if out.Converged {
		fmt.Fprintln(cmd.OutOrStdout(), "CONVERGED")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "step %d\n", out.Step)
	return nil
}
