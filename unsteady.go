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

// fractionEps is the occupancy flip threshold: an element whose water
// fraction comes within fractionEps of 0 or 1 is treated as single phase.
const fractionEps = 1e-9

// RunUnsteadyState performs a dynamic water injection at constant rate:
// the pressure field is re-solved whenever menisci move, and the water
// fractions advance explicitly with a timestep chosen so that no element
// over- or under-fills within a single step.
func (net *Network) RunUnsteadyState(w io.Writer) error {
	if err := net.startRun("unsteady state"); err != nil {
		return err
	}
	defer net.endRun("unsteady state")

	c := net.Config
	if err := net.calculatePermeabilityAndPorosity(); err != nil {
		return err
	}
	net.fillWithPhase(Water, c.InitialWaterSaturation, c.WaterDistribution, Oil)
	if c.EnhancedWaterConnectivity {
		net.addWaterChannel()
	}

	// The capillary boundary pressures are overwritten by the rate
	// matching; restore the configured ones on exit.
	defer func() {
		net.pressureIn = c.PressureIn
		net.pressureOut = c.PressureOut
	}()
	net.pressureOut = 0

	rates := make([]float64, len(net.Elements))
	totalPV := net.totalElementsVolume
	var simTime, injectedPV, lastOutput float64
	breakthrough := false

	logf(w, "unsteady state: starting, Sw=%.4f, rate=%.4g m³/s",
		net.WaterSaturation(), c.FlowRate)

	for step := 0; ; step++ {
		if net.ctx.canceled() {
			return ErrCanceled
		}
		if c.OverrideByInjectedPVs {
			if injectedPV >= c.InjectedPVs {
				logf(w, "unsteady state: %.2f pore volumes injected", injectedPV)
				break
			}
		} else if simTime >= c.SimulationTime {
			logf(w, "unsteady state: simulation time reached")
			break
		}

		net.updateDynamicTrapping()

		net.clusterActiveElements()
		if !net.isNetworkSpanning {
			logf(w, "unsteady state: network stopped conducting")
			break
		}

		err := net.matchFlowRate(net.twoPhaseConductance(), c.FlowRate)
		if err != nil {
			if errors.Is(err, ErrSolverDivergence) {
				logf(w, "unsteady state: network stopped conducting")
				break
			}
			return err
		}

		dt := net.waterAccumulationRates(rates)
		if dt == math.MaxFloat64 {
			// No meniscus can move anywhere: displacement is finished.
			logf(w, "unsteady state: no mobile interfaces left")
			break
		}
		if !c.OverrideByInjectedPVs && simTime+dt > c.SimulationTime {
			dt = c.SimulationTime - simTime
		}

		net.advanceFractions(rates, dt)
		simTime += dt
		injectedPV += c.FlowRate * dt / totalPV

		if !breakthrough && net.waterAtOutlet() {
			breakthrough = true
			logf(w, "unsteady state: breakthrough at t=%.4g s, Sw=%.4f",
				simTime, net.WaterSaturation())
			if c.StopOnBreakthrough {
				net.recordDynamicState(simTime, injectedPV)
				break
			}
		}

		if c.OutputInterval <= 0 || simTime-lastOutput >= c.OutputInterval {
			net.recordDynamicState(simTime, injectedPV)
			lastOutput = simTime
			net.ctx.setNotification("unsteady state: t=%.4g s Sw=%.4f",
				simTime, net.WaterSaturation())
			net.emitPlotSignal()
		}
	}
	if n := len(net.history); n == 0 || net.history[n-1].Time < simTime {
		net.recordDynamicState(simTime, injectedPV)
	}
	net.emitPlotSignal()
	return nil
}

// updateDynamicTrapping refreshes the trapped flags for the dynamic
// stepping loop. Advanced trapping credits film pathways with keeping a
// cluster connected; simple trapping considers bulk occupancy only. Under
// both rules an inlet-connected water cluster stays mobile: the injected
// front is fed from the inlet reservoir even before it spans.
func (net *Network) updateDynamicTrapping() {
	if net.Config.AdvancedTrapping {
		net.clusterWaterFlowingElements()
		net.clusterOilFlowingElements()
		for _, e := range net.accessibleElements {
			switch e.Phase {
			case Water:
				cl := net.waterFlowClusters[e.waterFlowCluster]
				e.WaterTrapped = !cl.Outlet && !cl.Inlet
			case Oil:
				e.OilTrapped = !net.oilFlowClusters[e.oilFlowCluster].Outlet
			}
		}
		return
	}
	net.clusterWaterElements()
	net.clusterOilElements()
	for _, e := range net.accessibleElements {
		switch e.Phase {
		case Water:
			e.WaterTrapped = !net.waterClusters[e.waterCluster].Outlet &&
				!net.waterClusters[e.waterCluster].Inlet
		case Oil:
			e.OilTrapped = !net.oilClusters[e.oilCluster].Outlet
		}
	}
}

// waterAccumulationRates fills rates with the net water volume rate [m³/s]
// into each element under the current flow field, upwinding the water
// fraction across every pore-node interface, and returns the largest
// stable timestep: the time at which the fastest-filling element would
// exceed a fraction of 1 or the fastest-draining one fall below 0.
func (net *Network) waterAccumulationRates(rates []float64) float64 {
	for i := range rates {
		rates[i] = 0
	}

	// transfer moves water across one interface at volumetric flow q from
	// the upstream fraction f; from/to are element IDs, -1 for a boundary
	// reservoir.
	transfer := func(from, to int, q, f float64) {
		wq := q * f
		if from >= 0 {
			rates[from] -= wq
		}
		if to >= 0 {
			rates[to] += wq
		}
	}

	for _, p := range net.accessiblePores {
		q := p.Flow
		if q == 0 {
			continue
		}
		// Interface at the NodeOut end.
		switch {
		case p.NodeOut == nil: // inlet face: injected fluid is water
			if q > 0 {
				transfer(-1, p.ID, q, 1)
			} else {
				transfer(p.ID, -1, -q, p.WaterFraction)
			}
		case q > 0:
			transfer(p.NodeOut.ID, p.ID, q, p.NodeOut.WaterFraction)
		default:
			transfer(p.ID, p.NodeOut.ID, -q, p.WaterFraction)
		}
		// Interface at the NodeIn end.
		switch {
		case p.NodeIn == nil: // outlet face
			if q > 0 {
				transfer(p.ID, -1, q, p.WaterFraction)
			} else {
				transfer(-1, p.ID, -q, p.WaterFraction)
			}
		case q > 0:
			transfer(p.ID, p.NodeIn.ID, q, p.WaterFraction)
		default:
			transfer(p.NodeIn.ID, p.ID, -q, p.NodeIn.WaterFraction)
		}
	}

	dt := math.MaxFloat64
	for _, e := range net.accessibleElements {
		r := rates[e.ID]
		switch {
		case r > 0 && e.WaterFraction < 1:
			if d := (1 - e.WaterFraction) * e.Volume / r; d < dt {
				dt = d
			}
		case r < 0 && e.WaterFraction > 0:
			if d := e.WaterFraction * e.Volume / -r; d < dt {
				dt = d
			}
		}
	}
	return dt
}

// advanceFractions applies the accumulation rates over dt and flips the
// occupancy of any element that completely filled or drained.
func (net *Network) advanceFractions(rates []float64, dt float64) {
	for _, e := range net.accessibleElements {
		r := rates[e.ID]
		if r == 0 {
			continue
		}
		f := e.WaterFraction + r*dt/e.Volume
		if f < 0 {
			f = 0
		}
		if f > 1 {
			f = 1
		}
		e.WaterFraction = f
		switch {
		case f >= 1-fractionEps && e.Phase == Oil:
			net.invade(e, Water)
		case f <= fractionEps && e.Phase == Water:
			net.invade(e, Oil)
		default:
			net.assignViscosity(e)
		}
	}
}

// waterAtOutlet reports whether bulk water has reached the outlet face.
func (net *Network) waterAtOutlet() bool {
	for _, p := range net.outletPores {
		if p.Phase == Water && p.WaterFraction >= 1-fractionEps {
			return true
		}
	}
	return false
}

// addWaterChannel converts one straight row of conduits along the flow
// axis to water, guaranteeing an inlet-to-outlet water pathway. Used when
// the initial saturation is laid out randomly and would otherwise start
// disconnected.
func (net *Network) addWaterChannel() {
	j, k := net.Ny/2, net.Nz/2
	for _, n := range net.accessibleNodes {
		if n.J != j || n.K != k {
			continue
		}
		n.Phase = Water
		for _, p := range n.Pores {
			if p.Closed {
				continue
			}
			// Only the axial conduits: both endpoints (or the face
			// boundary) sit on the same row.
			other := p.otherNode(n)
			if other == nil || (other.J == j && other.K == k) {
				p.Phase = Water
			}
		}
	}
	net.initialiseCapillaries()
}

// recordDynamicState appends one output sample for the dynamic loop.
func (net *Network) recordDynamicState(simTime, injectedPV float64) {
	net.appendRecord(Record{
		Time:            simTime,
		WaterSaturation: net.WaterSaturation(),
		PressureDrop:    net.deltaP,
		InjectedPVs:     injectedPV,
	})
}
