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

import "io"

// Version gives the version number of this software.
const Version = "1.0.0"

// NetworkManipulator is a function that operates on a Network, either
// running a simulation or transforming its state. Manipulators compose:
// a complete workflow is an ordered list of them.
type NetworkManipulator func(*Network) error

// Run applies the given manipulators in order, stopping at the first
// error.
func (net *Network) Run(ms ...NetworkManipulator) error {
	for _, m := range ms {
		if err := m(net); err != nil {
			return err
		}
	}
	return nil
}

// SteadyState returns a manipulator that runs the configured quasi-static
// displacement stages, logging progress to w if non-nil.
func SteadyState(w io.Writer) NetworkManipulator {
	return func(net *Network) error { return net.RunSteadyState(w) }
}

// UnsteadyState returns a manipulator that runs the dynamic constant-rate
// water injection.
func UnsteadyState(w io.Writer) NetworkManipulator {
	return func(net *Network) error { return net.RunUnsteadyState(w) }
}

// TracerFlow returns a manipulator that runs the passive tracer transport
// through the oil phase.
func TracerFlow(w io.Writer) NetworkManipulator {
	return func(net *Network) error { return net.RunTracerFlow(w) }
}

// Permeability returns a manipulator that computes the absolute
// permeability and porosity of the network from a single-phase solve,
// logging the result to w if non-nil.
func Permeability(w io.Writer) NetworkManipulator {
	return func(net *Network) error {
		if err := net.calculatePermeabilityAndPorosity(); err != nil {
			return err
		}
		logf(w, "absolute permeability %.4g m², porosity %.4g",
			net.absolutePermeability, net.porosity)
		return nil
	}
}

// WriteHistory returns a manipulator that streams the accumulated output
// records to w as CSV.
func WriteHistory(w io.Writer) NetworkManipulator {
	return func(net *Network) error { return net.WriteHistoryCSV(w) }
}
