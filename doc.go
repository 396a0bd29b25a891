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

// Package porenet simulates two-phase fluid displacement in porous media
// at the pore scale. A rock sample is idealized as a regular lattice of
// node and pore conduits with stochastic radii, cross-section shapes and
// wettability; oil and water then displace each other through it either
// quasi-statically, as an invasion-percolation sequence of drainage and
// imbibition stages, or dynamically, by solving the pressure field and
// advancing the menisci in time at a constant injection rate. A passive
// tracer can be advected through the connected oil phase.
//
// The main outputs are capillary pressure and relative permeability
// curves, saturation histories and profiles, and absolute permeability
// and porosity of the generated network.
package porenet
