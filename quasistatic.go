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
	"io"
	"math"
)

// invasionStage parameterizes one quasi-static invasion-percolation stage.
type invasionStage struct {
	name     string
	invading Phase

	// descending ranks candidates by descending entry pressure
	// (imbibition fills the tightest throats first); drainage ranks
	// ascending.
	descending bool

	// spontaneousSign restricts candidates to entry pressures of the
	// given sign: +1 limits water invasion to water-wet elements
	// (spontaneous imbibition), -1 limits oil invasion to oil-wet
	// elements (spontaneous oil invasion), 0 imposes no restriction.
	spontaneousSign int

	finalSaturation float64 // target water saturation
	finalPc         float64 // 0 disables the Pc stop
}

// RunSteadyState sequences the configured quasi-static displacement
// stages: primary drainage, spontaneous imbibition, forced water
// injection, spontaneous oil invasion and secondary drainage. Each stage
// is an independent invasion-percolation process driven by a capillary
// pressure ramp; progress messages go to w if non-nil.
func (net *Network) RunSteadyState(w io.Writer) error {
	if err := net.startRun("steady state"); err != nil {
		return err
	}
	defer net.endRun("steady state")

	c := net.Config
	if err := net.calculatePermeabilityAndPorosity(); err != nil {
		return err
	}
	logf(w, "absolute permeability %.4g m², porosity %.4g",
		net.absolutePermeability, net.porosity)

	// The network starts fully water saturated.
	net.fillWithPhase(Water, 1, 1, Oil)

	if c.PrimaryDrainageSimulation {
		// Primary drainage always runs strongly water-wet; the
		// configured wettability applies only after oil contact.
		net.backupWettability(0)
		err := net.runInvasionStage(w, invasionStage{
			name:            "primary drainage",
			invading:        Oil,
			finalSaturation: c.FinalSaturationPD,
			finalPc:         c.FinalPcPD,
		})
		if err != nil {
			return err
		}
		net.restoreWettability()
		net.emitPlotSignal()
	}
	if c.SpontaneousImbibitionSimulation {
		if err := net.runInvasionStage(w, invasionStage{
			name:            "spontaneous imbibition",
			invading:        Water,
			descending:      true,
			spontaneousSign: 1,
			finalSaturation: c.FinalSaturationSI,
			finalPc:         c.FinalPcSI,
		}); err != nil {
			return err
		}
	}
	if c.ForcedWaterInjectionSimulation {
		if err := net.runInvasionStage(w, invasionStage{
			name:            "forced water injection",
			invading:        Water,
			descending:      true,
			finalSaturation: c.FinalSaturationFWI,
			finalPc:         c.FinalPcFWI,
		}); err != nil {
			return err
		}
	}
	if c.SpontaneousOilInvasionSimulation {
		if err := net.runInvasionStage(w, invasionStage{
			name:            "spontaneous oil invasion",
			invading:        Oil,
			spontaneousSign: -1,
			finalSaturation: c.FinalSaturationSOI,
			finalPc:         c.FinalPcSOI,
		}); err != nil {
			return err
		}
	}
	if c.SecondaryDrainageSimulation {
		if err := net.runInvasionStage(w, invasionStage{
			name:            "secondary drainage",
			invading:        Oil,
			finalSaturation: c.FinalSaturationSD,
			finalPc:         c.FinalPcSD,
		}); err != nil {
			return err
		}
	}
	return nil
}

// runInvasionStage advances one invasion-percolation loop to its terminal
// condition: target saturation, target capillary pressure, exhaustion of
// eligible elements, or cancellation.
func (net *Network) runInvasionStage(w io.Writer, st invasionStage) error {
	c := net.Config
	krEvery := 1
	if c.SteadyStateSteps > 0 {
		if n := len(net.accessibleElements) / c.SteadyStateSteps; n > 1 {
			krEvery = n
		}
	}
	logf(w, "%s: starting, Sw=%.4f", st.name, net.WaterSaturationWithFilms())

	for iter := 0; ; iter++ {
		if net.ctx.canceled() {
			return ErrCanceled
		}

		net.updateSteadyStateTrapping()

		best := net.nextInvasionCandidate(st)
		if best == nil {
			// Percolation threshold: a normal terminal condition.
			net.ctx.setNotification("%s: %v", st.name, ErrPercolationExhausted)
			logf(w, "%s: exhausted after %d invasions", st.name, iter)
			break
		}
		if st.finalPc != 0 && pcExceeded(st, best.EntryPressure) {
			logf(w, "%s: capillary pressure target reached", st.name)
			break
		}

		net.invade(best, st.invading)

		sw := net.WaterSaturationWithFilms()
		rec := Record{
			CapillaryPressure: best.EntryPressure,
			WaterSaturation:   sw,
		}
		if c.RelativePermeabilities && iter%krEvery == 0 {
			if err := net.calculateRelativePermeabilities(); err != nil &&
				!errors.Is(err, ErrSolverDivergence) {
				return err
			}
			rec.OilRelPerm, rec.WaterRelPerm = net.oilRelPerm, net.waterRelPerm
		}
		net.appendRecord(rec)
		net.ctx.setNotification("%s: Sw=%.4f Pc=%.4g", st.name, sw,
			best.EntryPressure)
		net.emitPlotSignal()

		if st.invading == Oil && sw <= st.finalSaturation {
			logf(w, "%s: saturation target %.4f reached", st.name, st.finalSaturation)
			break
		}
		if st.invading == Water && sw >= st.finalSaturation {
			logf(w, "%s: saturation target %.4f reached", st.name, st.finalSaturation)
			break
		}
	}
	return nil
}

// pcExceeded reports whether the capillary pressure ramp has passed the
// stage target: ramps rise during drainage and fall during imbibition.
func pcExceeded(st invasionStage, pc float64) bool {
	if st.descending {
		return pc < st.finalPc
	}
	return pc > st.finalPc
}

// updateSteadyStateTrapping re-clusters both phases, including their film
// pathways, and refreshes the trapped flags: a defender cluster that lost
// its outlet connection is trapped. Spanning clusters are never trapped.
func (net *Network) updateSteadyStateTrapping() {
	net.clusterWaterFlowingElements()
	net.clusterOilFlowingElements()

	for _, e := range net.accessibleElements {
		switch e.Phase {
		case Water:
			e.WaterTrapped = !net.waterFlowClusters[e.waterFlowCluster].Outlet
		case Oil:
			e.OilTrapped = !net.oilFlowClusters[e.oilFlowCluster].Outlet
		}
	}
}

// nextInvasionCandidate returns the lowest-resistance eligible element at
// the invading front, or nil if the stage is exhausted. Eligibility
// requires the defender phase, no trapping, the spontaneous sign
// restriction, and adjacency to the inlet-connected invading cluster (or
// to the inlet face itself). Equal entry pressures break toward the lower
// element ID, which keeps runs reproducible.
func (net *Network) nextInvasionCandidate(st invasionStage) *Element {
	defender := Oil
	if st.invading == Oil {
		defender = Water
	}

	var best *Element
	better := func(pe float64, e *Element) bool {
		if best == nil {
			return true
		}
		if pe != best.EntryPressure {
			if st.descending {
				return pe > best.EntryPressure
			}
			return pe < best.EntryPressure
		}
		return e.ID < best.ID
	}

	for _, e := range net.accessibleElements {
		if e.Phase != defender {
			continue
		}
		if defender == Water && e.WaterTrapped {
			continue
		}
		if defender == Oil && e.OilTrapped {
			continue
		}
		pe := net.pistonEntryPressure(e)
		if st.spontaneousSign > 0 && pe <= 0 {
			continue
		}
		if st.spontaneousSign < 0 && pe >= 0 {
			continue
		}
		if !net.adjacentToInvader(e, st.invading) {
			continue
		}
		if better(pe, e) {
			e.EntryPressure = pe
			best = e
		}
	}
	return best
}

// adjacentToInvader reports whether e touches the invading phase's
// inlet-connected flowing cluster, or sits on the inlet face.
func (net *Network) adjacentToInvader(e *Element, invading Phase) bool {
	if e.Inlet {
		return true
	}
	for _, n := range e.neighbors {
		if n.Closed {
			continue
		}
		switch invading {
		case Oil:
			if (n.Phase == Oil || (n.OilLayer && n.OilLayerStable)) &&
				net.oilFlowClusters[n.oilFlowCluster].Inlet {
				return true
			}
		case Water:
			if (n.Phase == Water || (n.WaterFilm && n.WaterFilmStable)) &&
				net.waterFlowClusters[n.waterFlowCluster].Inlet {
				return true
			}
		}
	}
	return false
}

// invade flips the occupancy of e to the invading phase and updates its
// film state: oil invading a water-wet triangular element leaves a wetting
// corner film, water invading an oil-wet one leaves a sandwiched oil layer.
func (net *Network) invade(e *Element, invading Phase) {
	e.Phase = invading
	if invading == Oil {
		e.WaterFraction = 0
		e.OilTrapped = false
		e.OilLayer = false
		e.WaterFilm = e.WaterWet && e.Theta < math.Pi/2 && e.WaterFilmStable
	} else {
		e.WaterFraction = 1
		e.WaterTrapped = false
		e.WaterFilm = false
		e.OilLayer = !e.WaterWet && e.OilLayerStable
	}
	net.assignViscosity(e)
}
