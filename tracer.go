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
	"fmt"
	"io"
	"math"
)

// RunTracerFlow injects a passive tracer with the oil at the inlet and
// advects it through the connected oil sub-network with explicit upwind
// stepping, with optional molecular diffusion between adjacent oil-filled
// elements. Occupancy does not change: the tracer rides the current
// single-phase oil flow field.
func (net *Network) RunTracerFlow(w io.Writer) error {
	if err := net.startRun("tracer"); err != nil {
		return err
	}
	defer net.endRun("tracer")

	c := net.Config
	net.clusterOilElements()
	if !net.isOilSpanning {
		return fmt.Errorf("porenet: oil phase does not span the network: %w",
			ErrPercolationExhausted)
	}

	for _, e := range net.accessibleElements {
		e.Concentration = 0
	}

	// Restrict flow to the spanning oil sub-network; everything else is
	// effectively closed off by the conductance floor.
	oilCond := func(e *Element) float64 {
		if e.Phase == Oil && net.oilClusters[e.oilCluster].Spanning() {
			return e.Conductance / net.OilViscosity
		}
		return minConductance
	}
	if _, err := net.solveFlow(oilCond, false); err != nil {
		return err
	}

	rates := make([]float64, len(net.Elements))
	var simTime, lastOutput float64

	logf(w, "tracer: starting, outlet flow %.4g m³/s", net.flow)

	for step := 0; simTime < c.SimulationTime; step++ {
		if net.ctx.canceled() {
			return ErrCanceled
		}

		dt := net.tracerRates(rates)
		if dt == math.MaxFloat64 {
			logf(w, "tracer: transport stalled at t=%.4g s", simTime)
			break
		}
		if simTime+dt > c.SimulationTime {
			dt = c.SimulationTime - simTime
		}

		for _, e := range net.accessibleElements {
			if e.Phase != Oil {
				continue
			}
			cNew := e.Concentration + rates[e.ID]*dt/e.Volume
			if cNew < 0 {
				cNew = 0
			}
			if cNew > 1 {
				cNew = 1
			}
			e.Concentration = cNew
		}
		simTime += dt

		if c.OutputInterval <= 0 || simTime-lastOutput >= c.OutputInterval {
			net.appendRecord(Record{
				Time:            simTime,
				WaterSaturation: net.WaterSaturation(),
			})
			lastOutput = simTime
			net.ctx.setNotification("tracer: t=%.4g s", simTime)
			net.emitPlotSignal()
		}
	}
	return nil
}

// tracerRates fills rates with the net tracer volume rate into each
// oil-filled element, combining upwind advection along the pore flows with
// Fickian exchange between adjacent oil elements, and returns the largest
// timestep that keeps every concentration within [0, 1].
func (net *Network) tracerRates(rates []float64) float64 {
	for i := range rates {
		rates[i] = 0
	}
	diff := net.Config.TracerDiffusionCoef

	transfer := func(from, to int, q, conc float64) {
		tq := q * conc
		if from >= 0 {
			rates[from] -= tq
		}
		if to >= 0 {
			rates[to] += tq
		}
	}

	for _, p := range net.accessiblePores {
		if p.Phase != Oil {
			continue
		}
		q := p.Flow
		if q != 0 {
			switch {
			case p.NodeOut == nil: // inlet face carries unit concentration
				if q > 0 {
					transfer(-1, p.ID, q, 1)
				} else {
					transfer(p.ID, -1, -q, p.Concentration)
				}
			case p.NodeOut.Phase == Oil && q > 0:
				transfer(p.NodeOut.ID, p.ID, q, p.NodeOut.Concentration)
			case p.NodeOut.Phase == Oil:
				transfer(p.ID, p.NodeOut.ID, -q, p.Concentration)
			}
			switch {
			case p.NodeIn == nil: // outlet face
				if q > 0 {
					transfer(p.ID, -1, q, p.Concentration)
				}
			case p.NodeIn.Phase == Oil && q > 0:
				transfer(p.ID, p.NodeIn.ID, q, p.Concentration)
			case p.NodeIn.Phase == Oil:
				transfer(p.NodeIn.ID, p.ID, -q, p.NodeIn.Concentration)
			}
		}

		if diff > 0 {
			// Fickian exchange D·A·ΔC/L across each oil-oil interface.
			area := p.Volume / p.Length
			for _, n := range []*Node{p.NodeOut, p.NodeIn} {
				if n == nil || n.Phase != Oil {
					continue
				}
				j := diff * area * (n.Concentration - p.Concentration) / p.Length
				rates[p.ID] += j
				rates[n.ID] -= j
			}
		}
	}

	dt := math.MaxFloat64
	for _, e := range net.accessibleElements {
		if e.Phase != Oil {
			continue
		}
		r := rates[e.ID]
		switch {
		case r > 0 && e.Concentration < 1:
			if d := (1 - e.Concentration) * e.Volume / r; d < dt {
				dt = d
			}
		case r < 0 && e.Concentration > 0:
			if d := e.Concentration * e.Volume / -r; d < dt {
				dt = d
			}
		}
	}
	return dt
}
