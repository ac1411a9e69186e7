/*
 * init.go, part of gomecp.
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
	"fmt"
	"io/fs"
	"os"

	mecp "github.com/rmera/gomecp"
	"github.com/spf13/cobra"
)

var (
	geometryPath string
	force        bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Start a new optimization",
	Long: `Reads the starting geometry, writes the cold-start ProgFile and the first
geometry to compute. If the configuration file doesn't exist, one with the
default values is created.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&geometryPath, "geometry", "", "Starting geometry, one atom per line: element x y z (required)")
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing ProgFile")
	initCmd.MarkFlagRequired("geometry")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	atnum, geo, err := mecp.ReadGeometryFile(geometryPath)
	if err != nil {
		return err
	}
	var C *mecp.Config
	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		C = mecp.DefaultConfig()
		C.Atoms = len(atnum)
		if err := mecp.WriteConfig(configPath, C); err != nil {
			return err
		}
		logger.Info("default configuration written", "file", configPath)
	} else if C, err = loadConfig(); err != nil {
		return err
	}
	if C.Atoms != len(atnum) {
		return fmt.Errorf("%w: %s has %d atoms, the configuration says %d", mecp.ErrAtomCountMismatch, geometryPath, len(atnum), C.Atoms)
	}
	if _, err := os.Stat(C.Files.ProgFile); err == nil && !force {
		return fmt.Errorf("%s exists, use --force to start over", C.Files.ProgFile)
	}
	if err := mecp.WritePlaceholder(C.Files.ProgFile, atnum, geo); err != nil {
		return err
	}
	if err := mecp.WriteGeometryFile(C.Files.NextGeometry, atnum, geo); err != nil {
		return err
	}
	logger.Info("optimization initialized", "atoms", len(atnum), "progfile", C.Files.ProgFile, "geometry", C.Files.NextGeometry)
	return nil
}
