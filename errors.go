/*
Copyright © 2026 the PoreNet authors.
This file is part of PoreNet.

PoreNet is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

PoreNet is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with PoreNet.  If not, see <http://www.gnu.org/licenses/>.
*/

package porenet

import (
	"errors"
	"fmt"
)

var (
	// ErrSolverDivergence is returned when the linear pressure solver
	// fails to factorize or converge. Flow in the affected region must be
	// treated as zero by the caller.
	ErrSolverDivergence = errors.New("porenet: pressure solver diverged")

	// ErrPercolationExhausted signals that an invasion stage has no
	// remaining eligible elements. It is a normal terminal condition for
	// the stage, not a failure.
	ErrPercolationExhausted = errors.New("porenet: no eligible elements remain")

	// ErrCanceled is returned when a simulation stops at a step boundary
	// in response to a cancellation request. The network state remains
	// internally consistent.
	ErrCanceled = errors.New("porenet: simulation canceled")

	// ErrNotReady is returned when a simulation method is called before
	// the network has been set up.
	ErrNotReady = errors.New("porenet: network not ready")
)

// ConfigError describes an invalid or contradictory simulation parameter.
// It is detected during setup, before any simulation state mutates.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("porenet: invalid configuration %s: %s", e.Field, e.Reason)
}

func configErr(field, format string, args ...interface{}) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
