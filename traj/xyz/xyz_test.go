/*
 * xyz_test.go, part of gomecp.
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

package xyz

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rmera/gomecp/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFrames(Te *testing.T, name string, frames int) {
	for i := 0; i < frames; i++ {
		W, err := Append(name, 2)
		require.NoError(Te, err)
		coord, err := v3.NewMatrix([]float64{0, 0, float64(i), 0, 0, 1.1 + float64(i)})
		require.NoError(Te, err)
		require.NoError(Te, W.WNext([]string{"C", "O"}, coord, fmt.Sprintf("step %d", i)))
		require.NoError(Te, W.Close())
	}
}

func readAll(Te *testing.T, name string) ([][]string, []*v3.Matrix, []string) {
	R, err := Open(name)
	require.NoError(Te, err)
	defer R.Close()
	var syms [][]string
	var coords []*v3.Matrix
	var comments []string
	for {
		s, c, comment, err := R.Next()
		if err != nil {
			_, ok := err.(LastFrameError)
			require.True(Te, ok, "unexpected error: %v", err)
			break
		}
		syms = append(syms, s)
		coords = append(coords, c)
		comments = append(comments, comment)
	}
	return syms, coords, comments
}

func TestAppendPlain(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "trajectory.xyz")
	writeFrames(Te, name, 3)
	syms, coords, comments := readAll(Te, name)
	require.Len(Te, coords, 3)
	assert.Equal(Te, []string{"C", "O"}, syms[2])
	assert.Equal(Te, "step 1", comments[1])
	assert.InDelta(Te, 3.1, coords[2].At(1, 2), 1e-8)
}

func TestAppendCompressed(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "trajectory.xyz.zst")
	writeFrames(Te, name, 4)
	//every append is a separate zstd frame, the reader must see them all
	_, coords, _ := readAll(Te, name)
	require.Len(Te, coords, 4)
	assert.InDelta(Te, 3.0, coords[3].At(0, 2), 1e-8)
	data, err := os.ReadFile(name)
	require.NoError(Te, err)
	assert.Equal(Te, []byte{0x28, 0xb5, 0x2f, 0xfd}, data[:4]) //zstd magic number
}

func TestWNextErrors(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "t.xyz")
	W, err := Append(name, 2)
	require.NoError(Te, err)
	assert.Error(Te, W.WNext([]string{"C"}, v3.Zeros(2), ""))
	assert.Error(Te, W.WNext([]string{"C", "O"}, v3.Zeros(3), ""))
	require.NoError(Te, W.Close())
	assert.Error(Te, W.WNext([]string{"C", "O"}, v3.Zeros(2), ""))
}
