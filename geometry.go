/*
 * geometry.go, part of gomecp.
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
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rmera/gomecp/v3"
)

// ReadGeometry reads a geometry with one atom per line: the atomic number or the
// element symbol, followed by the x, y and z coordinates in Angstrom. Blank lines
// are skipped. Any field after the coordinates is ignored.
func ReadGeometry(in io.Reader) ([]int, *v3.Matrix, error) {
	atnum := make([]int, 0, 10)
	coords := make([]float64, 0, 30)
	scanner := bufio.NewScanner(in)
	l := 0
	for scanner.Scan() {
		l++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 4 {
			return nil, nil, newError(ErrGeometry, "", "ReadGeometry", "line %d: expected element and 3 coordinates, got %q", l, scanner.Text())
		}
		z, err := AtomicNumber(fields[0])
		if err != nil {
			return nil, nil, newError(ErrGeometry, "", "ReadGeometry", "line %d: %s", l, err)
		}
		for _, v := range fields[1:4] {
			f, err := parseFloat(v)
			if err != nil {
				return nil, nil, newError(ErrGeometry, "", "ReadGeometry", "line %d: %s", l, err)
			}
			coords = append(coords, f)
		}
		atnum = append(atnum, z)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, newError(ErrGeometry, "", "ReadGeometry", "%s", err)
	}
	if len(atnum) == 0 {
		return nil, nil, newError(ErrGeometry, "", "ReadGeometry", "no atoms found")
	}
	geo, err := v3.NewMatrix(coords)
	if err != nil {
		return nil, nil, newError(ErrGeometry, "", "ReadGeometry", "%s", err)
	}
	return atnum, geo, nil
}

// ReadGeometryFile reads the geometry in the file name. See ReadGeometry.
func ReadGeometryFile(name string) ([]int, *v3.Matrix, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, newError(ErrGeometry, name, "ReadGeometryFile", "%s", err)
	}
	defer f.Close()
	atnum, geo, err := ReadGeometry(f)
	if err != nil {
		if e, ok := err.(*Error); ok {
			e.filename = name
		}
		return nil, nil, errDecorate(err, "ReadGeometryFile")
	}
	return atnum, geo, nil
}

// WriteGeometry writes one line per atom, with the atomic number and the
// coordinates, in the fixed format the QM input templates expect.
func WriteGeometry(out io.Writer, atnum []int, geo *v3.Matrix) error {
	if geo.NVecs() != len(atnum) {
		return newError(ErrDimension, "", "WriteGeometry", "%d atomic numbers for %d atoms", len(atnum), geo.NVecs())
	}
	w := bufio.NewWriter(out)
	for i, z := range atnum {
		fmt.Fprintf(w, "%4d%14.8f%14.8f%14.8f\n", z, geo.At(i, 0), geo.At(i, 1), geo.At(i, 2))
	}
	return w.Flush()
}

// WriteGeometryFile writes the geometry to the file name, replacing it.
func WriteGeometryFile(name string, atnum []int, geo *v3.Matrix) error {
	f, err := os.Create(name)
	if err != nil {
		return newError(ErrOutput, name, "WriteGeometryFile", "%s", err)
	}
	if err := WriteGeometry(f, atnum, geo); err != nil {
		f.Close()
		return errDecorate(err, "WriteGeometryFile")
	}
	if err := f.Close(); err != nil {
		return newError(ErrOutput, name, "WriteGeometryFile", "%s", err)
	}
	return nil
}
