/*
 * history.go, part of gomecp.
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
	"encoding/json"
	"io"
	"os"
	"time"
)

// Record is the summary of one step, as stored in the history file.
type Record struct {
	Step       int       `json:"step"`
	Time       time.Time `json:"time"`
	Ea         float64   `json:"ea"`
	Eb         float64   `json:"eb"`
	DE         float64   `json:"de"`
	MaxG       float64   `json:"max_gradient"`
	RMSG       float64   `json:"rms_gradient"`
	MaxDX      float64   `json:"max_displacement"`
	RMSDX      float64   `json:"rms_displacement"`
	Converged  bool      `json:"converged"`
	Degenerate bool      `json:"degenerate,omitempty"`
	Skipped    bool      `json:"update_skipped,omitempty"`
	Clamped    bool      `json:"step_clamped,omitempty"`
}

// NewRecord summarizes the iteration it.
func NewRecord(it *Iteration) *Record {
	r := &Record{
		Step:       it.Step,
		Time:       time.Now().UTC(),
		Ea:         it.Ea,
		Eb:         it.Eb,
		DE:         it.Conv.DE.Value,
		MaxG:       it.Conv.MaxG.Value,
		RMSG:       it.Conv.RMSG.Value,
		MaxDX:      it.Conv.MaxDX.Value,
		RMSDX:      it.Conv.RMSDX.Value,
		Converged:  it.Conv.Converged,
		Degenerate: it.Eff.Degenerate,
	}
	if it.Update != nil {
		r.Skipped = it.Update.Skipped
		r.Clamped = it.Update.Clamped
	}
	return r
}

// AppendHistory adds r as a JSON line at the end of the history file name.
func AppendHistory(name string, r *Record) error {
	f, err := os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return newError(ErrOutput, name, "AppendHistory", "%s", err)
	}
	if err := json.NewEncoder(f).Encode(r); err != nil {
		f.Close()
		return newError(ErrOutput, name, "AppendHistory", "%s", err)
	}
	if err := f.Close(); err != nil {
		return newError(ErrOutput, name, "AppendHistory", "%s", err)
	}
	return nil
}

// ReadHistory reads all the records in in, one JSON object per line.
func ReadHistory(in io.Reader) ([]Record, error) {
	var ret []Record
	scanner := bufio.NewScanner(in)
	l := 0
	for scanner.Scan() {
		l++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var r Record
		if err := json.Unmarshal(line, &r); err != nil {
			return nil, newError(ErrHistory, "", "ReadHistory", "line %d: %s", l, err)
		}
		ret = append(ret, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, newError(ErrHistory, "", "ReadHistory", "%s", err)
	}
	return ret, nil
}

// ReadHistoryFile reads the history file name.
func ReadHistoryFile(name string) ([]Record, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, newError(ErrHistory, name, "ReadHistoryFile", "%s", err)
	}
	defer f.Close()
	r, err := ReadHistory(f)
	if err != nil {
		err.(*Error).filename = name
		return nil, errDecorate(err, "ReadHistoryFile")
	}
	return r, nil
}
