/*
 * geometry_test.go, part of gomecp.
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
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicNumber(Te *testing.T) {
	for field, want := range map[string]int{"6": 6, "C": 6, "cl": 17, "FE": 26, "Og": 118, "1": 1} {
		z, err := AtomicNumber(field)
		require.NoError(Te, err, field)
		assert.Equal(Te, want, z, field)
	}
	for _, bad := range []string{"0", "119", "Xx", "-3"} {
		_, err := AtomicNumber(bad)
		assert.Error(Te, err, bad)
	}
	assert.Equal(Te, "Cl", Symbol(17))
	assert.Equal(Te, "X", Symbol(0))
	assert.Equal(Te, "X", Symbol(200))
}

func TestReadWriteGeometry(Te *testing.T) {
	in := `
 C   0.000000  0.000000  0.000000
 8   0.000000  0.000000  1.128000 extra

 h   0.0d0     0.9400    -0.3300
`
	atnum, geo, err := ReadGeometry(strings.NewReader(in))
	require.NoError(Te, err)
	assert.Equal(Te, []int{6, 8, 1}, atnum)
	assert.Equal(Te, 3, geo.NVecs())
	assert.Equal(Te, 1.128, geo.At(1, 2))
	assert.Equal(Te, -0.33, geo.At(2, 2))

	var buf bytes.Buffer
	require.NoError(Te, WriteGeometry(&buf, atnum, geo))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(Te, lines, 3)
	assert.Equal(Te, "   8    0.00000000    0.00000000    1.12800000", lines[1])

	name := filepath.Join(Te.TempDir(), "geom")
	require.NoError(Te, WriteGeometryFile(name, atnum, geo))
	atnum2, geo2, err := ReadGeometryFile(name)
	require.NoError(Te, err)
	assert.Equal(Te, atnum, atnum2)
	assert.InDeltaSlice(Te, geo.Flat(), geo2.Flat(), 1e-8)
}

func TestReadGeometryErrors(Te *testing.T) {
	for _, in := range []string{"", "C 0 0\n", "Qq 0 0 0\n", "C 0 0 zero\n"} {
		_, _, err := ReadGeometry(strings.NewReader(in))
		assert.ErrorIs(Te, err, ErrGeometry, in)
	}
	_, _, err := ReadGeometryFile(filepath.Join(Te.TempDir(), "nothere"))
	assert.ErrorIs(Te, err, ErrGeometry)
}
