/*
 * xyz.go, part of gomecp.
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

// Package xyz writes and reads multi-frame xyz trajectories, optionally
// compressed with zstd. Frames are always appended, so one process can add a
// single frame per MECP step. Files whose name ends in ".zst" are compressed,
// each append adding a new zstd frame to the file.
package xyz

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/rmera/gomecp/v3"
)

// Writer appends frames to an xyz trajectory.
type Writer struct {
	f         *os.File
	h         io.WriteCloser
	natoms    int
	filename  string
	writeable bool
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// Append opens (or creates) the trajectory name to append frames of natoms atoms.
func Append(name string, natoms int) (*Writer, error) {
	W := &Writer{natoms: natoms, filename: name}
	var err error
	W.f, err = os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, Error{err.Error(), name, []string{"Append"}, true}
	}
	if compressed(name) {
		W.h, err = zstd.NewWriter(W.f, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		if err != nil {
			W.f.Close()
			return nil, Error{"can't start the compressor: " + err.Error(), name, []string{"Append"}, true}
		}
	} else {
		W.h = nopCloser{W.f}
	}
	W.writeable = true
	return W, nil
}

// WNext writes one frame, with the element symbols, the coordinates and a
// single-line comment.
func (W *Writer) WNext(symbols []string, coord *v3.Matrix, comment string) error {
	if !W.writeable {
		return Error{"the trajectory is not open for writing", W.filename, []string{"WNext"}, true}
	}
	if coord == nil || coord.NVecs() != W.natoms || len(symbols) != W.natoms {
		return Error{fmt.Sprintf("frame doesn't have %d atoms", W.natoms), W.filename, []string{"WNext"}, true}
	}
	w := bufio.NewWriter(W.h)
	fmt.Fprintf(w, "%d\n%s\n", W.natoms, strings.ReplaceAll(comment, "\n", " "))
	for i, s := range symbols {
		fmt.Fprintf(w, "%-2s %14.8f %14.8f %14.8f\n", s, coord.At(i, 0), coord.At(i, 1), coord.At(i, 2))
	}
	if err := w.Flush(); err != nil {
		return Error{err.Error(), W.filename, []string{"WNext"}, true}
	}
	return nil
}

// Close flushes the trajectory and closes the file. For compressed trajectories,
// this finishes the current zstd frame.
func (W *Writer) Close() error {
	if W == nil || !W.writeable {
		return nil
	}
	W.writeable = false
	err := W.h.Close()
	if ferr := W.f.Close(); err == nil {
		err = ferr
	}
	if err != nil {
		return Error{err.Error(), W.filename, []string{"Close"}, true}
	}
	return nil
}

// Reader reads the frames of an xyz trajectory, compressed or not.
type Reader struct {
	f        *os.File
	dec      *zstd.Decoder
	h        *bufio.Reader
	filename string
	frame    int
}

// Open opens the trajectory name for reading.
func Open(name string) (*Reader, error) {
	R := &Reader{filename: name}
	var err error
	R.f, err = os.Open(name)
	if err != nil {
		return nil, Error{err.Error(), name, []string{"Open"}, true}
	}
	if compressed(name) {
		R.dec, err = zstd.NewReader(R.f)
		if err != nil {
			R.f.Close()
			return nil, Error{"can't start the decompressor: " + err.Error(), name, []string{"Open"}, true}
		}
		R.h = bufio.NewReader(R.dec)
	} else {
		R.h = bufio.NewReader(R.f)
	}
	return R, nil
}

// Next reads the next frame. It returns a LastFrameError when there are no more frames.
func (R *Reader) Next() (symbols []string, coord *v3.Matrix, comment string, err error) {
	line, err := R.h.ReadString('\n')
	if strings.TrimSpace(line) == "" && err == io.EOF {
		return nil, nil, "", LastFrameError{R.filename, R.frame}
	}
	if err != nil && err != io.EOF {
		return nil, nil, "", Error{err.Error(), R.filename, []string{"Next"}, true}
	}
	natoms, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || natoms <= 0 {
		return nil, nil, "", Error{fmt.Sprintf("frame %d: bad number of atoms %q", R.frame, line), R.filename, []string{"Next"}, true}
	}
	comment, err = R.h.ReadString('\n')
	if err != nil {
		return nil, nil, "", Error{fmt.Sprintf("frame %d: truncated", R.frame), R.filename, []string{"Next"}, true}
	}
	symbols = make([]string, natoms)
	data := make([]float64, 0, 3*natoms)
	for i := 0; i < natoms; i++ {
		line, err := R.h.ReadString('\n')
		fields := strings.Fields(line)
		if len(fields) < 4 || (err != nil && err != io.EOF) {
			return nil, nil, "", Error{fmt.Sprintf("frame %d: truncated or ill-formed at atom %d", R.frame, i+1), R.filename, []string{"Next"}, true}
		}
		symbols[i] = fields[0]
		for _, v := range fields[1:4] {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, nil, "", Error{fmt.Sprintf("frame %d, atom %d: %s", R.frame, i+1, err), R.filename, []string{"Next"}, true}
			}
			data = append(data, f)
		}
	}
	coord, err = v3.NewMatrix(data)
	if err != nil {
		return nil, nil, "", Error{err.Error(), R.filename, []string{"Next"}, true}
	}
	R.frame++
	return symbols, coord, strings.TrimRight(comment, "\r\n"), nil
}

// Close closes the trajectory.
func (R *Reader) Close() {
	if R == nil {
		return
	}
	if R.dec != nil {
		R.dec.Close()
	}
	R.f.Close()
}

func compressed(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".zst")
}

// Error is the error type for the xyz package.
type Error struct {
	message  string
	filename string //the file that has problems, or empty string if none.
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("xyz file %s error: %s", err.filename, err.message)
}

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// FileName returns the file to which the error is associated
func (err Error) FileName() string { return err.filename }

// Critical returns true if the error is critical.
func (err Error) Critical() bool { return err.critical }

// LastFrameError is returned by Reader.Next when the trajectory has no more frames.
type LastFrameError struct {
	filename string
	frame    int
}

func (E LastFrameError) Error() string {
	return fmt.Sprintf("no more frames in %s after frame %d", E.filename, E.frame)
}

// NormalLastFrameTermination marks LastFrameError as the expected end of a trajectory.
func (E LastFrameError) NormalLastFrameTermination() {}
