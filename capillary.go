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
	"math"
)

// filmVolumeFraction is the share of an oil-filled element volume held as
// wetting film in its corners. The corner areas depend weakly on the half
// angles; a constant closure keeps volume bookkeeping exact.
const filmVolumeFraction = 0.05

// pistonEntryPressure returns the capillary pressure needed for a
// non-wetting phase to invade e by piston displacement,
// Pc = σcosθ(1+2√(πG))/r (Young–Laplace with the Øren shape correction).
// Oil-wet elements yield a negative entry pressure: oil enters them
// spontaneously.
func (net *Network) pistonEntryPressure(e *Element) float64 {
	return net.OWSurfaceTension * math.Cos(e.Theta) *
		(1 + 2*math.Sqrt(math.Pi*e.ShapeFactor)) / e.Radius
}

// localCapillaryPressure returns the capillary pressure across the
// meniscus inside a partially filled element, following the Aker closure
// Pc(f) = Pe·(1−cos 2πf)/2: the resistance vanishes when the meniscus
// sits at either end and peaks mid-element.
func (net *Network) localCapillaryPressure(e *Element) float64 {
	f := e.WaterFraction
	if f <= 0 || f >= 1 {
		return 0
	}
	return net.pistonEntryPressure(e) * (1 - math.Cos(2*math.Pi*f)) / 2
}

// initialiseCapillaries resets the capillary state of every accessible
// element to be consistent with its current phase occupancy.
func (net *Network) initialiseCapillaries() {
	for _, e := range net.accessibleElements {
		if e.Phase == Water {
			e.WaterFraction = 1
		} else {
			e.WaterFraction = 0
		}
		e.Concentration = 0
		e.OilTrapped = false
		e.WaterTrapped = false
		e.WaterFilm = false
		e.OilLayer = false
		e.EntryPressure = net.pistonEntryPressure(e)
		net.assignViscosity(e)
	}
	net.assignFilmStability()
}

// assignViscosity sets the effective viscosity of the element contents,
// volume-weighted between the occupying phases.
func (net *Network) assignViscosity(e *Element) {
	switch e.Phase {
	case Gas:
		e.Viscosity = net.GasViscosity
	default:
		e.Viscosity = net.WaterViscosity*e.WaterFraction +
			net.OilViscosity*(1-e.WaterFraction)
	}
}

// assignFilmStability marks which elements can sustain a wetting corner
// film or a sandwiched oil layer. Films require a triangular cross
// section; a water film in a corner of half angle β is stable when
// θ + β < π/2, an oil layer in an oil-wet corner when θ > π/2 + β.
func (net *Network) assignFilmStability() {
	for _, e := range net.accessibleElements {
		if e.ShapeFactor > triangularShapeFactorMax {
			e.WaterFilmStable = false
			e.OilLayerStable = false
			continue
		}
		e.WaterFilmStable = e.Theta+e.HalfAngle1 < math.Pi/2
		e.OilLayerStable = e.Theta > math.Pi/2+e.HalfAngle2
	}
}

// filmConductance returns the conductance of the wetting films in the
// corners of an oil-filled element, reduced from the bulk conductance by
// the configured film resistivity factor.
func (net *Network) filmConductance(e *Element) float64 {
	r := net.Config.FilmConductanceResistivity
	if r <= 0 {
		r = 1
	}
	return e.Conductance * filmVolumeFraction / r
}

// fillWithPhase fills the accessible elements with phase up to the target
// saturation; the remainder holds otherPhase. Distribution selects how the
// phase is laid out: 1 scatters it randomly by volume, 2 places a slug at
// the inlet end, 3 keeps the phase in inlet-connected clusters only.
func (net *Network) fillWithPhase(phase Phase, saturation float64,
	distribution int, otherPhase Phase) {

	for _, e := range net.accessibleElements {
		e.Phase = otherPhase
	}
	if saturation <= 0 {
		net.initialiseCapillaries()
		return
	}
	if saturation >= 1 {
		for _, e := range net.accessibleElements {
			e.Phase = phase
		}
		net.initialiseCapillaries()
		return
	}

	switch distribution {
	case 2: // inlet slug
		threshold := saturation * net.xEdgeLength
		for _, p := range net.accessiblePores {
			if net.poreMidX(p) < threshold {
				p.Phase = phase
			}
		}
		for _, n := range net.accessibleNodes {
			if n.X < threshold {
				n.Phase = phase
			}
		}
	default: // random by volume
		var filled float64
		target := saturation * net.totalElementsVolume
		// Visit elements in random order until the target volume is
		// reached; draws come from the seeded generator, so a fixed
		// seed reproduces the layout.
		perm := net.rnd.src.Perm(len(net.accessibleElements))
		for _, i := range perm {
			e := net.accessibleElements[i]
			if filled >= target {
				break
			}
			e.Phase = phase
			filled += e.Volume
		}
		if distribution == 3 && phase == Water {
			// Keep only the inlet-connected part of the random layout.
			net.clusterWaterElements()
			for _, e := range net.accessibleElements {
				if e.Phase == Water && !net.waterClusters[e.waterCluster].Inlet {
					e.Phase = otherPhase
				}
			}
		}
	}
	net.initialiseCapillaries()
}

// poreMidX returns the x coordinate of the pore midpoint, treating
// boundary pores as sitting at their single endpoint.
func (net *Network) poreMidX(p *Pore) float64 {
	switch {
	case p.NodeOut == nil:
		return p.NodeIn.X
	case p.NodeIn == nil:
		return p.NodeOut.X
	}
	return (p.NodeIn.X + p.NodeOut.X) / 2
}

// backupWettability stores the current contact angle class of every
// element and relabels the whole network uniformly water-wet with the
// given angle. Primary drainage always runs strongly water-wet; the
// configured wettability is restored afterwards.
func (net *Network) backupWettability(theta float64) {
	for _, e := range net.accessibleElements {
		e.originalTheta = e.Theta
		e.originalWaterWet = e.WaterWet
		e.Theta = theta
		e.WaterWet = true
	}
	net.assignFilmStability()
}

// restoreWettability puts back the contact angle class saved by
// backupWettability. Elements never reached by oil during drainage stay
// water-wet regardless of the configured distribution: wettability
// alteration requires oil contact.
func (net *Network) restoreWettability() {
	for _, e := range net.accessibleElements {
		if e.Phase == Oil {
			e.Theta = e.originalTheta
			e.WaterWet = e.originalWaterWet
		}
	}
	net.clusterWaterWetElements()
	net.clusterOilWetElements()
	net.assignFilmStability()
}
