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
	"strings"
	"testing"
)

// A two-node series network in the extracted-table convention: the inlet
// reservoir (-1), two interior nodes, and the outlet reservoir (0) joined
// by three links along x.
const (
	node1Table = `2 6e-5 2e-5 2e-5
1 2e-5 1e-5 1e-5 2 -1 2 1 0 1 2
2 4e-5 1e-5 1e-5 2 1 0 0 1 2 3
`
	node2Table = `1 1e-15 6e-6 0.03 0
2 1e-15 6e-6 0.03 0
`
	link1Table = `3
1 -1 1 5e-6 0.03 2e-5
2 1 2 5e-6 0.03 2e-5
3 2 0 5e-6 0.03 2e-5
`
	link2Table = `1 -1 1 6e-6 6e-6 1.4e-5 1e-15 0
2 1 2 6e-6 6e-6 1.4e-5 1e-15 0
3 2 0 6e-6 6e-6 1.4e-5 1e-15 0
`
)

func loadSeriesNetwork(t *testing.T) *Network {
	t.Helper()
	net, err := LoadExtracted(
		strings.NewReader(node1Table), strings.NewReader(node2Table),
		strings.NewReader(link1Table), strings.NewReader(link2Table),
		testConfig(2, 1, 1))
	if err != nil {
		t.Fatalf("LoadExtracted: %v", err)
	}
	return net
}

func TestLoadExtracted(t *testing.T) {
	net := loadSeriesNetwork(t)

	if got := net.TotalNodes(); got != 2 {
		t.Fatalf("nodes = %d, want 2", got)
	}
	if got := net.TotalPores(); got != 3 {
		t.Fatalf("pores = %d, want 3", got)
	}

	in, interior, out := net.Pores[0], net.Pores[1], net.Pores[2]
	if !in.Inlet || in.NodeOut != nil || in.NodeIn != net.Nodes[0] {
		t.Errorf("link 1 not wired as inlet boundary pore")
	}
	if !out.Outlet || out.NodeIn != nil || out.NodeOut != net.Nodes[1] {
		t.Errorf("link 3 not wired as outlet boundary pore")
	}
	if interior.NodeOut != net.Nodes[0] || interior.NodeIn != net.Nodes[1] {
		t.Errorf("link 2 not oriented toward increasing x")
	}

	for i, p := range net.Pores {
		if p.ID != i {
			t.Errorf("pore %d has ID %d", i, p.ID)
		}
	}
	for i, n := range net.Nodes {
		if want := len(net.Pores) + i; n.ID != want {
			t.Errorf("node %d has ID %d, want %d", i, n.ID, want)
		}
	}

	if interior.Length != 1.4e-5 || interior.FullLength != 2e-5 {
		t.Errorf("link lengths = %g, %g; want 1.4e-05, 2e-05",
			interior.Length, interior.FullLength)
	}
	if net.Nodes[0].Length != 2*net.Nodes[0].Radius {
		t.Errorf("node length = %g, want twice the radius", net.Nodes[0].Length)
	}

	wantPorosity := 5e-15 / (6e-5 * 2e-5 * 2e-5)
	if different(net.Porosity(), wantPorosity, 1e-12) {
		t.Errorf("porosity = %g, want %g", net.Porosity(), wantPorosity)
	}

	// Triangular cross section per the tabulated shape factor.
	if interior.ShapeFactorConstant != 3./5 {
		t.Errorf("shape prefactor = %g, want 0.6", interior.ShapeFactorConstant)
	}
	if interior.HalfAngle2 <= 0 {
		t.Errorf("triangular element missing corner half angles")
	}

	if sw := net.WaterSaturation(); sw != 0 {
		t.Errorf("fresh network Sw = %g, want 0", sw)
	}
}

func TestLoadExtractedSolvable(t *testing.T) {
	net := loadSeriesNetwork(t)
	if err := net.calculatePermeabilityAndPorosity(); err != nil {
		t.Fatalf("permeability solve: %v", err)
	}
	if k := net.AbsolutePermeability(); k <= 0 {
		t.Errorf("permeability = %g, want positive", k)
	}
	for _, p := range net.accessiblePores {
		if p.Flow <= 0 {
			t.Errorf("pore %d carries flow %g, want positive downstream flow",
				p.ID, p.Flow)
		}
	}
}

func TestLoadExtractedMalformed(t *testing.T) {
	load := func(n1, n2, l1, l2 string) error {
		_, err := LoadExtracted(
			strings.NewReader(n1), strings.NewReader(n2),
			strings.NewReader(l1), strings.NewReader(l2),
			testConfig(2, 1, 1))
		return err
	}
	if err := load(node1Table, "1 1e-15", link1Table, link2Table); err == nil {
		t.Error("truncated node2 table accepted")
	}
	if err := load(node1Table, node2Table,
		"1\n1 -1 0 5e-6 0.03 2e-5\n", link2Table); err == nil {
		t.Error("link joining both reservoirs accepted")
	}
	if err := load(node1Table, node2Table,
		"1\n1 7 1 5e-6 0.03 2e-5\n", link2Table); err == nil {
		t.Error("out-of-range node reference accepted")
	}
}
