/*
 * errors.go, part of gomecp.
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
	"errors"
	"fmt"
	"strings"
)

// The fatal conditions of an MECP iteration. Every error returned by the Driver
// wraps one of these, so the caller can tell them apart with errors.Is.
var (
	ErrMissingStateFile    = errors.New("the ProgFile does not exist")
	ErrIncompleteStateFile = errors.New("incomplete ProgFile")
	ErrAtomCountMismatch   = errors.New("wrong number of atoms")
	ErrAbInitioRead        = errors.New("problem reading the ab initio results")
	ErrAbInitioJob         = errors.New("problem with the ab initio job")
	ErrMaxSteps            = errors.New("reached the maximum number of steps")
	ErrDimension           = errors.New("dimension mismatch")
	ErrGeometry            = errors.New("problem with a geometry file")
	ErrOutput              = errors.New("problem writing the results")
	ErrHistory             = errors.New("problem reading the history file")
)

// Error is the error type for gomecp. It carries the file involved, if any, and a
// "decoration" slice with the chain of functions the error went through. The
// Decorate method allows to add information when the error is passed up, without
// changing its type or wrapping it around something else.
type Error struct {
	message  string
	filename string //the file that has problems, or empty string if none.
	deco     []string
	critical bool
	kind     error
}

// Error returns the message, prefixed with the kind of error and the file.
func (err Error) Error() string {
	var b strings.Builder
	if err.kind != nil {
		b.WriteString(err.kind.Error())
	}
	if err.filename != "" {
		fmt.Fprintf(&b, " (%s)", err.filename)
	}
	if err.message != "" {
		if b.Len() > 0 {
			b.WriteString(": ")
		}
		b.WriteString(err.message)
	}
	return b.String()
}

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (err *Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// Critical returns true if the error should stop the optimization.
func (err Error) Critical() bool { return err.critical }

// FileName returns the file to which the error is associated
func (err Error) FileName() string { return err.filename }

// Unwrap returns the sentinel describing the kind of error.
func (err Error) Unwrap() error { return err.kind }

// Trace returns the decoration, i.e. the functions the error went through, joined by " < "
func (err Error) Trace() string { return strings.Join(err.deco, " < ") }

func newError(kind error, filename, caller string, format string, a ...interface{}) *Error {
	return &Error{message: fmt.Sprintf(format, a...), filename: filename, deco: []string{caller}, critical: true, kind: kind}
}

// errDecorate adds the caller's name to err if err is an *Error, and returns it.
// Other errors are returned unchanged.
func errDecorate(err error, caller string) error {
	var e *Error
	if errors.As(err, &e) {
		e.Decorate(caller)
	}
	return err
}
