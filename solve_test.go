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

import "testing"

func TestSeriesFlow(t *testing.T) {
	net, err := NewNetwork(lineConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := net.solvePressures(singlePhaseConductance(1), false); err != nil {
		t.Fatal(err)
	}
	q := net.updateFlows(singlePhaseConductance(1), false)
	if q <= 0 {
		t.Fatalf("series network should carry positive flow, got %g", q)
	}

	// Incompressibility: every pore in the series carries the same flow.
	for _, p := range net.accessiblePores {
		if different(p.Flow, q, 1e-9) {
			t.Errorf("pore %d carries %g, outlet carries %g", p.ID, p.Flow, q)
		}
	}

	// Pressures decrease monotonically from inlet to outlet.
	prev := net.pressureIn
	for _, n := range net.accessibleNodes {
		if n.Pressure >= prev || n.Pressure <= net.pressureOut {
			t.Errorf("node %d pressure %g outside (%g, %g)",
				n.ID, n.Pressure, net.pressureOut, prev)
		}
		prev = n.Pressure
	}
}

// assertNodeMassBalance fails if any node's incident flows do not cancel
// relative to the local flow scale.
func assertNodeMassBalance(t *testing.T, net *Network) {
	t.Helper()
	for _, n := range net.accessibleNodes {
		var sum, scale float64
		for _, p := range n.Pores {
			if p.Closed {
				continue
			}
			// Flow is positive NodeOut→NodeIn: it enters n when n is the
			// downstream endpoint.
			if p.NodeIn == n {
				sum += p.Flow
			} else {
				sum -= p.Flow
			}
			if p.Flow > scale {
				scale = p.Flow
			}
			if -p.Flow > scale {
				scale = -p.Flow
			}
		}
		if scale > 0 && sum/scale > 1e-9 || scale > 0 && sum/scale < -1e-9 {
			t.Fatalf("node %d violates mass balance: residual %g at scale %g",
				n.ID, sum, scale)
		}
	}
}

func TestMassConservationAtNodes(t *testing.T) {
	c := testConfig(4, 3, 3)
	c.MinRadius = 1e-6
	c.MaxRadius = 20e-6
	net, err := NewNetwork(c)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := net.solveFlow(singlePhaseConductance(1), false); err != nil {
		t.Fatal(err)
	}
	assertNodeMassBalance(t, net)
}

func TestMassConservationWithCapillaryPressure(t *testing.T) {
	// A meniscus parked mid-pore contributes equal and opposite capillary
	// source terms on its two endpoint nodes; the resulting flow field must
	// still balance at every node.
	net, err := NewNetwork(lineConfig())
	if err != nil {
		t.Fatal(err)
	}
	p := net.Pores[1]
	p.WaterFraction = 0.5
	net.assignViscosity(&p.Element)
	if pc := net.localCapillaryPressure(&p.Element); pc <= 0 {
		t.Fatalf("mid-pore meniscus should resist, Pc=%g", pc)
	}
	if _, err := net.solveFlow(net.twoPhaseConductance(), true); err != nil {
		t.Fatal(err)
	}
	assertNodeMassBalance(t, net)

	// Same property with menisci scattered through a full lattice.
	c := testConfig(4, 3, 3)
	c.MinRadius = 1e-6
	c.MaxRadius = 20e-6
	net, err = NewNetwork(c)
	if err != nil {
		t.Fatal(err)
	}
	for i, e := range net.accessibleElements {
		if i%3 == 0 {
			e.WaterFraction = 0.3
			net.assignViscosity(e)
		}
	}
	if _, err := net.solveFlow(net.twoPhaseConductance(), true); err != nil {
		t.Fatal(err)
	}
	assertNodeMassBalance(t, net)
}

func TestPermeabilityAndPorosity(t *testing.T) {
	net, err := NewNetwork(testConfig(4, 4, 4))
	if err != nil {
		t.Fatal(err)
	}
	if err := net.calculatePermeabilityAndPorosity(); err != nil {
		t.Fatal(err)
	}
	if k := net.AbsolutePermeability(); k <= 0 {
		t.Errorf("permeability should be positive, got %g", k)
	}
	if phi := net.Porosity(); phi <= 0 || phi >= 1 {
		t.Errorf("porosity out of range: %g", phi)
	}
}

func TestRelativePermeabilitiesSinglePhase(t *testing.T) {
	c := lineConfig()
	c.OilViscosity = 1 // kr is viscosity-blind; the unit solve is too
	net, err := NewNetwork(c)
	if err != nil {
		t.Fatal(err)
	}
	// A fresh network holds only oil.
	if err := net.calculateRelativePermeabilities(); err != nil {
		t.Fatal(err)
	}
	kro, krw := net.RelativePermeabilities()
	if different(kro, 1, 1e-6) {
		t.Errorf("single-phase oil should give kro=1, got %g", kro)
	}
	if krw > 1e-6 {
		t.Errorf("absent water should give krw~0, got %g", krw)
	}
}

func TestMatchFlowRate(t *testing.T) {
	net, err := NewNetwork(testConfig(3, 3, 3))
	if err != nil {
		t.Fatal(err)
	}
	const target = 1e-12
	if err := net.matchFlowRate(net.twoPhaseConductance(), target); err != nil {
		t.Fatal(err)
	}
	if different(net.OutletFlow(), target, 1e-9) {
		t.Errorf("matched flow %g, target %g", net.OutletFlow(), target)
	}
	if net.deltaP <= 0 {
		t.Errorf("forward injection needs a positive pressure drop, got %g", net.deltaP)
	}
}

func TestSolveWithTrappedPhase(t *testing.T) {
	net, err := NewNetwork(lineConfig())
	if err != nil {
		t.Fatal(err)
	}
	// Trap the middle node: its bulk must stop conducting.
	mid := net.Nodes[1]
	mid.Phase = Water
	mid.WaterTrapped = true

	q, err := net.solveFlow(net.twoPhaseConductance(), false)
	if err != nil {
		t.Fatal(err)
	}
	free, err := NewNetwork(lineConfig())
	if err != nil {
		t.Fatal(err)
	}
	qFree, err := free.solveFlow(free.twoPhaseConductance(), false)
	if err != nil {
		t.Fatal(err)
	}
	if q >= qFree/1e3 {
		t.Errorf("a trapped barrier should choke the series flow: %g vs %g", q, qFree)
	}
}
