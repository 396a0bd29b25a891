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
	"testing"
)

// testConfig returns a small fully connected lattice with fixed radii so
// that the geometry is deterministic.
func testConfig(nx, ny, nz int) *Config {
	c := DefaultConfig()
	c.Nx, c.Ny, c.Nz = nx, ny, nz
	c.CoordinationNumber = 6
	c.MinRadius = 5e-6
	c.MaxRadius = 5e-6
	c.MaxWaterWetTheta = 0
	return c
}

// lineConfig returns a three-node network in single file: four x-oriented
// pores in series, no transverse conduits.
func lineConfig() *Config {
	return testConfig(3, 1, 1)
}

func TestConfigCheck(t *testing.T) {
	cases := []struct {
		name   string
		mangle func(*Config)
	}{
		{"zero lattice", func(c *Config) { c.Nx = 0 }},
		{"negative spacing", func(c *Config) { c.Length = -1 }},
		{"coordination too high", func(c *Config) { c.CoordinationNumber = 7 }},
		{"radius exceeds spacing", func(c *Config) { c.MaxRadius = c.Length }},
		{"inverted radii", func(c *Config) { c.MinRadius = 2 * c.MaxRadius }},
		{"unknown distribution", func(c *Config) { c.RadiusDistribution = 99 }},
		{"zero shape factor", func(c *Config) { c.ShapeFactor = 0 }},
		{"unknown wettability", func(c *Config) { c.WettabilityModel = 0 }},
		{"oil-wet fraction out of range", func(c *Config) { c.OilWetFraction = 1.5 }},
		{"zero viscosity", func(c *Config) { c.WaterViscosity = 0 }},
		{"negative tension", func(c *Config) { c.OWSurfaceTension = -1 }},
		{"saturation out of range", func(c *Config) { c.FinalSaturationPD = 2 }},
		{"negative flow rate", func(c *Config) { c.FlowRate = -1 }},
	}
	for _, c := range cases {
		cfg := DefaultConfig()
		c.mangle(cfg)
		err := cfg.Check()
		if err == nil {
			t.Errorf("%s: expected an error", c.name)
			continue
		}
		var ce *ConfigError
		if !errors.As(err, &ce) {
			t.Errorf("%s: expected a *ConfigError, got %T", c.name, err)
		}
	}
	if err := DefaultConfig().Check(); err != nil {
		t.Errorf("default configuration should validate: %v", err)
	}
}

func TestNetworkGeneration(t *testing.T) {
	nx, ny, nz := 4, 3, 3
	net, err := NewNetwork(testConfig(nx, ny, nz))
	if err != nil {
		t.Fatal(err)
	}

	wantNodes := nx * ny * nz
	wantPores := (nx+1)*ny*nz + nx*(ny-1)*nz + nx*ny*(nz-1)
	if net.TotalNodes() != wantNodes {
		t.Errorf("nodes: want %d, got %d", wantNodes, net.TotalNodes())
	}
	if net.TotalPores() != wantPores {
		t.Errorf("pores: want %d, got %d", wantPores, net.TotalPores())
	}
	// Full coordination leaves everything accessible.
	if len(net.accessibleElements) != wantNodes+wantPores {
		t.Errorf("accessible elements: want %d, got %d",
			wantNodes+wantPores, len(net.accessibleElements))
	}

	for i, e := range net.Elements {
		if e.ID != i {
			t.Fatalf("element %d carries ID %d", i, e.ID)
		}
	}
	for _, p := range net.accessiblePores {
		if p.Radius <= 0 || p.Length <= 0 || p.Volume <= 0 || p.Conductance <= 0 {
			t.Fatalf("pore %d has degenerate geometry: r=%g L=%g V=%g g=%g",
				p.ID, p.Radius, p.Length, p.Volume, p.Conductance)
		}
	}
	if phi := net.Porosity(); phi <= 0 || phi >= 1 {
		t.Errorf("porosity out of range: %g", phi)
	}

	var inlets, outlets int
	for _, p := range net.accessiblePores {
		if p.Inlet {
			inlets++
		}
		if p.Outlet {
			outlets++
		}
	}
	if inlets != ny*nz || outlets != ny*nz {
		t.Errorf("boundary pores: want %d in and out, got %d and %d",
			ny*nz, inlets, outlets)
	}
}

func TestRadiusBounds(t *testing.T) {
	for _, dist := range []int{DistUniform, DistRayleigh, DistTriangular,
		DistNormal, DistWeibull} {
		c := testConfig(3, 3, 3)
		c.MinRadius = 2e-6
		c.MaxRadius = 15e-6
		c.RadiusDistribution = dist
		net, err := NewNetwork(c)
		if err != nil {
			t.Fatalf("distribution %d: %v", dist, err)
		}
		for _, p := range net.accessiblePores {
			if p.Radius < c.MinRadius || p.Radius > c.MaxRadius {
				t.Fatalf("distribution %d: radius %g outside [%g, %g]",
					dist, p.Radius, c.MinRadius, c.MaxRadius)
			}
		}
	}
}

func TestGenerationDeterminism(t *testing.T) {
	c1 := testConfig(4, 4, 4)
	c1.MinRadius = 1e-6
	c1.MaxRadius = 20e-6
	c1.CoordinationNumber = 4
	c2 := *c1

	n1, err := NewNetwork(c1)
	if err != nil {
		t.Fatal(err)
	}
	n2, err := NewNetwork(&c2)
	if err != nil {
		t.Fatal(err)
	}
	if len(n1.accessiblePores) != len(n2.accessiblePores) {
		t.Fatalf("accessible pore counts differ: %d vs %d",
			len(n1.accessiblePores), len(n2.accessiblePores))
	}
	for i, p := range n1.accessiblePores {
		q := n2.accessiblePores[i]
		if p.ID != q.ID || p.Radius != q.Radius || p.Theta != q.Theta {
			t.Fatalf("pore %d differs between identically seeded networks", i)
		}
	}

	c3 := *c1
	c3.Seed = c1.Seed + 1
	n3, err := NewNetwork(&c3)
	if err != nil {
		t.Fatal(err)
	}
	same := len(n1.accessiblePores) == len(n3.accessiblePores)
	if same {
		for i, p := range n1.accessiblePores {
			if p.Radius != n3.accessiblePores[i].Radius {
				same = false
				break
			}
		}
	}
	if same {
		t.Error("different seeds produced identical networks")
	}
}

func TestMixedWettability(t *testing.T) {
	c := testConfig(4, 4, 4)
	c.MinRadius = 1e-6
	c.MaxRadius = 20e-6
	c.WettabilityModel = WettabilityMixedLarge
	c.OilWetFraction = 0.5
	c.MinOilWetTheta = 2.2
	c.MaxOilWetTheta = 2.8
	net, err := NewNetwork(c)
	if err != nil {
		t.Fatal(err)
	}

	var oilWet int
	var minOilWetRadius, maxWaterWetRadius float64
	minOilWetRadius = 1
	for _, e := range net.accessibleElements {
		if e.WaterWet {
			if e.Radius > maxWaterWetRadius {
				maxWaterWetRadius = e.Radius
			}
			continue
		}
		oilWet++
		if e.Theta < c.MinOilWetTheta || e.Theta > c.MaxOilWetTheta {
			t.Fatalf("oil-wet element %d has contact angle %g", e.ID, e.Theta)
		}
		if e.Radius < minOilWetRadius {
			minOilWetRadius = e.Radius
		}
	}
	want := int(c.OilWetFraction * float64(len(net.accessibleElements)))
	if oilWet != want {
		t.Errorf("oil-wet elements: want %d, got %d", want, oilWet)
	}
	// Mixed-wet large puts the oil-wet class on the largest radii.
	if maxWaterWetRadius > minOilWetRadius {
		t.Errorf("mixed-wet large: water-wet radius %g exceeds oil-wet radius %g",
			maxWaterWetRadius, minOilWetRadius)
	}
}
