/*
 * plot.go, part of gomecp.
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
	"errors"

	mecp "github.com/rmera/gomecp"
	"github.com/rmera/gomecp/mecpplot"
	"github.com/spf13/cobra"
)

var plotPrefix string

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Plot the optimization history",
	Long:  `Reads the history file and draws the energies and the convergence criteria against the step number.`,
	RunE:  runPlot,
}

func init() {
	plotCmd.Flags().StringVar(&plotPrefix, "out", "mecp", "Prefix for the plot files (<out>_energies.png, <out>_criteria.png)")
	rootCmd.AddCommand(plotCmd)
}

func runPlot(cmd *cobra.Command, args []string) error {
	C, err := loadConfig()
	if err != nil {
		return err
	}
	if C.Files.History == "" {
		return errors.New("no history file set in the configuration")
	}
	recs, err := mecp.ReadHistoryFile(C.Files.History)
	if err != nil {
		return err
	}
	if err := mecpplot.Energies(recs, "MECP optimization", plotPrefix+"_energies.png"); err != nil {
		return err
	}
	if err := mecpplot.Criteria(recs, "MECP convergence", plotPrefix+"_criteria.png"); err != nil {
		return err
	}
	logger.Info("plots written", "steps", len(recs), "prefix", plotPrefix)
	return nil
}
