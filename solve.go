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

	"gonum.org/v1/gonum/mat"
)

// minConductance is the floor applied to degenerate hydraulic
// conductances. It keeps the system positive definite without letting the
// affected conduits carry meaningful flow; typical conductances in a
// micron-scale network are ~1e-13.
const minConductance = 1e-30

// conductance maps an element to its hydraulic conductance
// [m³/(Pa·s)] under the current flow regime.
type conductance func(*Element) float64

// singlePhaseConductance returns the phase-blind hydraulic conductance for
// the given viscosity.
func singlePhaseConductance(mu float64) conductance {
	return func(e *Element) float64 {
		return e.Conductance / mu
	}
}

// twoPhaseConductance returns the phase-dependent hydraulic conductance:
// untrapped bulk contents conduct with their effective viscosity, trapped
// oil-filled elements fall back to their corner films when stable, and
// everything else is floored.
func (net *Network) twoPhaseConductance() conductance {
	return func(e *Element) float64 {
		switch e.Phase {
		case Oil:
			if !e.OilTrapped {
				return e.Conductance / e.Viscosity
			}
			if e.WaterFilm && e.WaterFilmStable {
				return net.filmConductance(e) / net.WaterViscosity
			}
		case Water:
			if !e.WaterTrapped {
				return e.Conductance / e.Viscosity
			}
		}
		return minConductance
	}
}

// poreConductance combines a pore with the halves of its endpoint nodes in
// series (harmonic combination).
func poreConductance(p *Pore, c conductance) float64 {
	g := c(&p.Element)
	if g < minConductance {
		g = minConductance
	}
	inv := 1 / g
	for _, n := range []*Node{p.NodeIn, p.NodeOut} {
		if n == nil || n.Closed {
			continue
		}
		gn := c(&n.Element)
		if gn < minConductance {
			gn = minConductance
		}
		inv += 1 / (2 * gn)
	}
	return 1 / inv
}

// signedCapillaryPressure returns the capillary pressure drop across p in
// the NodeOut→NodeIn direction. A meniscus resists displacement of the
// phase on its downstream side; the sign follows from which side holds the
// water.
func (net *Network) signedCapillaryPressure(p *Pore) float64 {
	pc := net.localCapillaryPressure(&p.Element)
	if pc == 0 {
		return 0
	}
	wOut, wIn := p.WaterFraction, p.WaterFraction
	if p.NodeOut != nil {
		wOut = p.NodeOut.WaterFraction
	}
	if p.NodeIn != nil {
		wIn = p.NodeIn.WaterFraction
	}
	if wOut >= wIn {
		return pc
	}
	return -pc
}

// solvePressures assembles the symmetric conductance system over the
// accessible nodes and delegates it to the external Cholesky solver. With
// capillary set, each meniscus-bearing pore contributes its capillary
// pressure as a source term. On success every accessible node carries its
// solved pressure.
func (net *Network) solvePressures(c conductance, capillary bool) error {
	n := len(net.accessibleNodes)
	if n == 0 {
		return fmt.Errorf("porenet: no accessible nodes: %w", ErrSolverDivergence)
	}
	rows := make(map[int]int, n) // element ID → matrix row
	for i, nd := range net.accessibleNodes {
		rows[nd.ID] = i
	}

	a := mat.NewSymDense(n, nil)
	b := mat.NewVecDense(n, nil)

	for i, nd := range net.accessibleNodes {
		var diag float64
		for _, p := range nd.Pores {
			if p.Closed {
				continue
			}
			other := p.otherNode(nd)
			if other != nil && other.Closed {
				continue
			}
			g := poreConductance(p, c)
			diag += g

			var pc float64
			if capillary {
				pc = net.signedCapillaryPressure(p)
				// Positive Pc opposes NodeOut→NodeIn flow: it acts
				// as a sink on the downstream node and a source on
				// the upstream one.
				if p.NodeIn == nd {
					b.SetVec(i, b.AtVec(i)-g*pc)
				} else {
					b.SetVec(i, b.AtVec(i)+g*pc)
				}
			}

			switch {
			case p.Inlet:
				b.SetVec(i, b.AtVec(i)+g*net.pressureIn)
			case p.Outlet:
				b.SetVec(i, b.AtVec(i)+g*net.pressureOut)
			default:
				j := rows[other.ID]
				if j > i {
					a.SetSym(i, j, -g)
				}
			}
		}
		a.SetSym(i, i, diag)
	}

	var ch mat.Cholesky
	if ok := ch.Factorize(a); !ok {
		return fmt.Errorf("porenet: conductance matrix not positive definite: %w",
			ErrSolverDivergence)
	}
	var x mat.VecDense
	if err := ch.SolveVecTo(&x, b); err != nil {
		return fmt.Errorf("porenet: %v: %w", err, ErrSolverDivergence)
	}
	for i, nd := range net.accessibleNodes {
		nd.Pressure = x.AtVec(i)
	}
	return nil
}

// updateFlows writes the flow through every accessible pore from the
// solved pressure field and returns the aggregate outlet flow.
func (net *Network) updateFlows(c conductance, capillary bool) float64 {
	var outlet float64
	for _, p := range net.accessiblePores {
		g := poreConductance(p, c)
		pOut, pIn := net.pressureIn, net.pressureOut
		if p.NodeOut != nil {
			pOut = p.NodeOut.Pressure
		}
		if p.NodeIn != nil {
			pIn = p.NodeIn.Pressure
		}
		var pc float64
		if capillary {
			pc = net.signedCapillaryPressure(p)
		}
		p.Flow = g * (pOut - pIn - pc)
		if p.Outlet {
			outlet += p.Flow
		}
	}
	net.flow = outlet
	return outlet
}

// solveFlow runs a complete solve/update pass. On solver divergence the
// affected flow is treated as zero and a notification recorded; the error
// is returned for callers that must escalate.
func (net *Network) solveFlow(c conductance, capillary bool) (float64, error) {
	if err := net.solvePressures(c, capillary); err != nil {
		for _, p := range net.accessiblePores {
			p.Flow = 0
		}
		net.flow = 0
		net.ctx.setNotification("pressure solve failed: %v", err)
		return 0, err
	}
	return net.updateFlows(c, capillary), nil
}

// calculatePermeabilityAndPorosity computes the absolute permeability from
// a unit-viscosity single-phase solve, K = Q·µ·Lx/(A·ΔP).
func (net *Network) calculatePermeabilityAndPorosity() error {
	q, err := net.solveFlow(singlePhaseConductance(1), false)
	if err != nil {
		return err
	}
	area := net.yEdgeLength * net.zEdgeLength
	dp := net.pressureIn - net.pressureOut
	net.absolutePermeability = q * net.xEdgeLength / (area * dp)
	net.porosity = net.totalElementsVolume /
		(net.xEdgeLength * net.yEdgeLength * net.zEdgeLength)
	return nil
}

// calculateRelativePermeabilities computes the oil and water relative
// permeabilities under the current occupancy: the flow each phase carries
// through its untrapped (film-extended) sub-network relative to the
// single-phase flow. Trapping excludes an element's bulk from its phase
// sub-network permanently.
func (net *Network) calculateRelativePermeabilities() error {
	qUnit, err := net.solveFlow(singlePhaseConductance(1), false)
	if err != nil {
		return err
	}
	if qUnit == 0 {
		net.oilRelPerm, net.waterRelPerm = 0, 0
		return nil
	}

	oilCond := func(e *Element) float64 {
		if e.Phase == Oil && !e.OilTrapped {
			return e.Conductance
		}
		if e.Phase == Water && e.OilLayer && e.OilLayerStable {
			return net.filmConductance(e)
		}
		return minConductance
	}
	waterCond := func(e *Element) float64 {
		if e.Phase == Water && !e.WaterTrapped {
			return e.Conductance
		}
		if e.Phase == Oil && e.WaterFilm && e.WaterFilmStable {
			return net.filmConductance(e)
		}
		return minConductance
	}

	qo, err := net.solveFlow(oilCond, false)
	if err != nil {
		return err
	}
	qw, err := net.solveFlow(waterCond, false)
	if err != nil {
		return err
	}
	net.oilRelPerm = qo / qUnit
	net.waterRelPerm = qw / qUnit
	return nil
}

// matchFlowRate finds the applied pressure drop that produces the target
// injection rate. Flow is affine in the pressure drop when the menisci are
// frozen, so two solves pin the line and a third applies the result.
func (net *Network) matchFlowRate(c conductance, target float64) error {
	const dp1, dp2 = 1.0, 2.0

	net.pressureIn, net.pressureOut = dp1, 0
	q1, err := net.solveFlow(c, true)
	if err != nil {
		return err
	}
	net.pressureIn = dp2
	q2, err := net.solveFlow(c, true)
	if err != nil {
		return err
	}
	if q2 == q1 {
		return fmt.Errorf("porenet: network carries no flow: %w", ErrSolverDivergence)
	}
	net.deltaP = dp1 + (target-q1)*(dp2-dp1)/(q2-q1)
	net.pressureIn = net.deltaP
	_, err = net.solveFlow(c, true)
	return err
}
