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
	"math"
	"sort"
)

const (
	triangularShapeFactorMax = 0.048112522432468816 // √3/36
	squareShapeFactorMax     = 1. / 16
)

// setupRegularModel builds the Nx×Ny×Nz lattice: nodes, pores, adjacency,
// stochastic geometry, wettability, and the initial capillary state. Flow
// is along x; the faces at x=0 and x=Nx-1 carry inlet and outlet boundary
// pores.
func (net *Network) setupRegularModel() error {
	c := net.Config

	net.xEdgeLength = float64(net.Nx) * c.Length
	net.yEdgeLength = float64(net.Ny) * c.Length
	net.zEdgeLength = float64(net.Nz) * c.Length

	net.createNodes()
	net.createPores()
	net.setNeighbors()
	net.applyCoordinationNumber()
	if err := net.defineAccessibleElements(); err != nil {
		return err
	}
	net.assignRadii()
	net.assignLengths()
	net.distortNetwork()
	net.assignShapeFactors()
	net.assignHalfAngles()
	net.assignVolumes()
	net.assignConductances()
	net.assignWettability()
	net.initialiseCapillaries()
	return nil
}

// nodeIndex maps lattice coordinates to the node table position.
func (net *Network) nodeIndex(i, j, k int) int {
	return i + net.Nx*j + net.Nx*net.Ny*k
}

func (net *Network) node(i, j, k int) *Node {
	if i < 0 || i >= net.Nx || j < 0 || j >= net.Ny || k < 0 || k >= net.Nz {
		return nil
	}
	return net.Nodes[net.nodeIndex(i, j, k)]
}

func (net *Network) createNodes() {
	c := net.Config
	net.Nodes = make([]*Node, 0, net.Nx*net.Ny*net.Nz)
	for k := 0; k < net.Nz; k++ {
		for j := 0; j < net.Ny; j++ {
			for i := 0; i < net.Nx; i++ {
				n := &Node{
					I: i, J: j, K: k,
					X: float64(i) * c.Length,
					Y: float64(j) * c.Length,
					Z: float64(k) * c.Length,
				}
				net.Nodes = append(net.Nodes, n)
			}
		}
	}
}

func (net *Network) createPores() {
	// X-oriented pores, including the boundary pores beyond the inlet and
	// outlet faces.
	for k := 0; k < net.Nz; k++ {
		for j := 0; j < net.Ny; j++ {
			for i := 0; i <= net.Nx; i++ {
				p := &Pore{
					NodeIn:  net.node(i, j, k),
					NodeOut: net.node(i-1, j, k),
				}
				if p.NodeOut == nil {
					p.Inlet = true
				}
				if p.NodeIn == nil {
					p.Outlet = true
				}
				net.Pores = append(net.Pores, p)
			}
		}
	}
	// Y- and Z-oriented pores are interior only.
	for k := 0; k < net.Nz; k++ {
		for j := 1; j < net.Ny; j++ {
			for i := 0; i < net.Nx; i++ {
				net.Pores = append(net.Pores, &Pore{
					NodeIn:  net.node(i, j, k),
					NodeOut: net.node(i, j-1, k),
				})
			}
		}
	}
	for k := 1; k < net.Nz; k++ {
		for j := 0; j < net.Ny; j++ {
			for i := 0; i < net.Nx; i++ {
				net.Pores = append(net.Pores, &Pore{
					NodeIn:  net.node(i, j, k),
					NodeOut: net.node(i, j, k-1),
				})
			}
		}
	}
}

// setNeighbors assigns element IDs (pores first, then nodes), links nodes
// to their incident pores, and records element adjacency: a pore borders
// its endpoint nodes, a node its incident pores.
func (net *Network) setNeighbors() {
	net.Elements = make([]*Element, 0, len(net.Pores)+len(net.Nodes))
	for i, p := range net.Pores {
		p.ID = i
		net.Elements = append(net.Elements, &p.Element)
	}
	for i, n := range net.Nodes {
		n.ID = len(net.Pores) + i
		net.Elements = append(net.Elements, &n.Element)
	}
	for _, p := range net.Pores {
		for _, n := range []*Node{p.NodeIn, p.NodeOut} {
			if n != nil {
				n.Pores = append(n.Pores, p)
				p.neighbors = append(p.neighbors, &n.Element)
				n.neighbors = append(n.neighbors, &p.Element)
			}
		}
	}
}

// applyCoordinationNumber randomly closes interior pores until the mean
// node connectivity matches the configured coordination number. A full
// cubic lattice has coordination 6.
func (net *Network) applyCoordinationNumber() {
	closureProbability := 1 - net.Config.CoordinationNumber/6
	if closureProbability <= 0 {
		return
	}
	for _, p := range net.Pores {
		if !p.Inlet && !p.Outlet && net.rnd.uniform(0, 1) < closureProbability {
			p.Closed = true
		}
	}
}

// defineAccessibleElements closes every element that is not part of a
// cluster connecting the inlet face to the outlet face, then builds the
// accessibility tables. A network with no spanning cluster carries no flow
// at all, which is fatal.
func (net *Network) defineAccessibleElements() error {
	marks := make([]int, len(net.Elements))
	net.accessibleElements = net.Elements // temporary: clustering iterates this
	clusters := net.clusterElements(
		func(e *Element) bool { return !e.Closed },
		func(e *Element, ci int) { marks[e.ID] = ci })

	found := false
	for _, c := range clusters {
		if c.Spanning() {
			found = true
		} else {
			for _, e := range c.Members {
				e.Closed = true
			}
		}
	}
	if !found {
		return fmt.Errorf("porenet: generated network contains no spanning cluster")
	}

	net.accessibleElements = nil
	for _, p := range net.Pores {
		if p.Closed {
			continue
		}
		net.accessiblePores = append(net.accessiblePores, p)
		net.accessibleElements = append(net.accessibleElements, &p.Element)
		if p.Inlet {
			net.inletPores = append(net.inletPores, p)
		}
		if p.Outlet {
			net.outletPores = append(net.outletPores, p)
		}
	}
	for _, n := range net.Nodes {
		if n.Closed {
			continue
		}
		net.accessibleNodes = append(net.accessibleNodes, n)
		net.accessibleElements = append(net.accessibleElements, &n.Element)
	}
	return nil
}

// assignRadii draws pore radii from the configured distribution and sets
// each node radius to the aspect ratio times its largest incident pore.
func (net *Network) assignRadii() {
	c := net.Config
	for _, p := range net.accessiblePores {
		switch c.RadiusDistribution {
		case DistRayleigh:
			p.Radius = net.rnd.rayleigh(c.MinRadius, c.MaxRadius, c.RayleighParameter)
		case DistTriangular:
			p.Radius = net.rnd.triangular(c.MinRadius, c.MaxRadius, c.TriangularParameter)
		case DistNormal:
			p.Radius = net.rnd.normal(c.MinRadius, c.MaxRadius,
				c.NormalMuParameter, c.NormalSigmaParameter)
		case DistWeibull:
			p.Radius = net.rnd.weibull(c.MinRadius, c.MaxRadius, 2, 1)
		default:
			p.Radius = net.rnd.uniform(c.MinRadius, c.MaxRadius)
		}
	}
	for _, n := range net.accessibleNodes {
		var rMax float64
		for _, p := range n.Pores {
			if !p.Closed && p.Radius > rMax {
				rMax = p.Radius
			}
		}
		n.Radius = math.Max(c.MinRadius, c.AspectRatio*rMax)
	}
}

// assignLengths sets the conduit lengths: the full node-center spacing
// minus the end node radii, floored at a tenth of the spacing.
func (net *Network) assignLengths() {
	c := net.Config
	for _, p := range net.accessiblePores {
		p.FullLength = c.Length
		p.Length = c.Length
		for _, n := range []*Node{p.NodeIn, p.NodeOut} {
			if n != nil {
				p.Length -= n.Radius
			}
		}
		if p.Length < c.Length/10 {
			p.Length = c.Length / 10
		}
	}
	for _, n := range net.accessibleNodes {
		n.Length = 2 * n.Radius
	}
}

// distortNetwork displaces interior node positions by the configured
// distortion fraction and recomputes pore lengths from the new geometry.
func (net *Network) distortNetwork() {
	c := net.Config
	if c.DegreeOfDistortion <= 0 {
		return
	}
	for _, n := range net.accessibleNodes {
		n.X += c.Length * c.DegreeOfDistortion * net.rnd.uniform(-1, 1)
		n.Y += c.Length * c.DegreeOfDistortion * net.rnd.uniform(-1, 1)
		n.Z += c.Length * c.DegreeOfDistortion * net.rnd.uniform(-1, 1)
	}
	for _, p := range net.accessiblePores {
		if p.NodeIn == nil || p.NodeOut == nil {
			continue
		}
		dx := p.NodeIn.X - p.NodeOut.X
		dy := p.NodeIn.Y - p.NodeOut.Y
		dz := p.NodeIn.Z - p.NodeOut.Z
		p.FullLength = math.Sqrt(dx*dx + dy*dy + dz*dz)
		p.Length = p.FullLength - p.NodeIn.Radius - p.NodeOut.Radius
		if p.Length < c.Length/10 {
			p.Length = c.Length / 10
		}
	}
}

// assignShapeFactors classifies every element cross section from the
// configured shape factor: triangular, square or circular, with the
// corresponding conductance prefactor (Patzek and Silin 2001).
func (net *Network) assignShapeFactors() {
	G := net.Config.ShapeFactor
	for _, e := range net.accessibleElements {
		e.ShapeFactor = G
		classifyShape(e)
	}
}

// classifyShape sets the conductance prefactor for the element's shape
// class from its shape factor.
func classifyShape(e *Element) {
	switch {
	case e.ShapeFactor <= triangularShapeFactorMax:
		e.ShapeFactorConstant = 3. / 5
	case e.ShapeFactor <= squareShapeFactorMax:
		e.ShapeFactorConstant = 0.5623
	default:
		e.ShapeFactorConstant = 1. / 2
	}
}

// assignHalfAngles draws the two sharpest corner half angles of the
// triangular cross sections (Patzek 2001). Non-triangular sections hold no
// corner films and keep zero half angles.
func (net *Network) assignHalfAngles() {
	for _, e := range net.accessibleElements {
		if e.ShapeFactor > triangularShapeFactorMax {
			continue
		}
		G := e.ShapeFactor
		b2min := math.Atan(2 / math.Sqrt(3) *
			math.Cos(math.Acos(-12*math.Sqrt(3)*G)/3+4*math.Pi/3))
		b2max := math.Atan(2 / math.Sqrt(3) *
			math.Cos(math.Acos(-12*math.Sqrt(3)*G)/3))
		b2 := net.rnd.uniform(b2min, b2max)
		b1 := -b2/2 + math.Asin((math.Tan(b2)+4*G)/(math.Tan(b2)-4*G)*
			math.Sin(b2))/2
		e.HalfAngle1 = b1
		e.HalfAngle2 = b2
	}
}

// assignVolumes computes element volumes and accumulates the network
// totals and porosity. With a zero volume exponent the volume is geometric,
// V = A·L with A = r²/4G; otherwise the configured power-law closure
// V = C·L·rˣ applies.
func (net *Network) assignVolumes() {
	c := net.Config
	volume := func(e *Element) float64 {
		if c.PoreVolumeExponent == 0 {
			return e.Radius * e.Radius / (4 * e.ShapeFactor) * e.Length
		}
		return c.PoreVolumeConstant * e.Length * math.Pow(e.Radius, c.PoreVolumeExponent)
	}
	for _, p := range net.accessiblePores {
		p.Volume = volume(&p.Element)
	}
	for _, n := range net.accessibleNodes {
		n.Volume = volume(&n.Element)
	}
	net.accumulateVolumes()
}

// accumulateVolumes totals the accessible element volumes and derives the
// porosity from the bounding box.
func (net *Network) accumulateVolumes() {
	net.totalPoresVolume = 0
	net.totalNodesVolume = 0
	for _, p := range net.accessiblePores {
		net.totalPoresVolume += p.Volume
	}
	for _, n := range net.accessibleNodes {
		net.totalNodesVolume += n.Volume
	}
	net.totalElementsVolume = net.totalPoresVolume + net.totalNodesVolume
	net.porosity = net.totalElementsVolume /
		(net.xEdgeLength * net.yEdgeLength * net.zEdgeLength)
}

// assignConductances sets the geometric conductance [m³]; flow divides by
// the effective viscosity of the contents at solve time. With a zero
// conductivity exponent the Poiseuille-type closure g = k·A·r²/(8L)
// applies, with k the shape-class prefactor; otherwise the configured
// power law g = C·rˣ/L.
func (net *Network) assignConductances() {
	c := net.Config
	for _, e := range net.accessibleElements {
		if c.PoreConductivityExponent == 0 {
			area := e.Radius * e.Radius / (4 * e.ShapeFactor)
			e.Conductance = e.ShapeFactorConstant * area * e.Radius * e.Radius /
				(8 * e.Length)
		} else {
			e.Conductance = c.PoreConductivityConstant *
				math.Pow(e.Radius, c.PoreConductivityExponent) / e.Length
		}
	}
}

// assignWettability relabels the contact angle class of every element per
// the configured wettability model. The mixed-wet models order elements by
// radius; the fractional model scatters the oil-wet fraction randomly.
func (net *Network) assignWettability() {
	c := net.Config
	// Everything starts water-wet.
	for _, e := range net.accessibleElements {
		e.WaterWet = true
		e.Theta = net.rnd.uniform(c.MinWaterWetTheta, c.MaxWaterWetTheta)
	}
	switch c.WettabilityModel {
	case WettabilityWaterWet:
		// done
	case WettabilityOilWet:
		for _, e := range net.accessibleElements {
			e.WaterWet = false
			e.Theta = net.rnd.uniform(c.MinOilWetTheta, c.MaxOilWetTheta)
		}
	case WettabilityFractional:
		for _, e := range net.accessibleElements {
			if net.rnd.uniform(0, 1) < c.OilWetFraction {
				e.WaterWet = false
				e.Theta = net.rnd.uniform(c.MinOilWetTheta, c.MaxOilWetTheta)
			}
		}
	case WettabilityMixedSmall, WettabilityMixedLarge:
		sorted := make([]*Element, len(net.accessibleElements))
		copy(sorted, net.accessibleElements)
		sort.SliceStable(sorted, func(a, b int) bool {
			if c.WettabilityModel == WettabilityMixedSmall {
				return sorted[a].Radius < sorted[b].Radius
			}
			return sorted[a].Radius > sorted[b].Radius
		})
		target := int(c.OilWetFraction * float64(len(sorted)))
		for _, e := range sorted[:target] {
			e.WaterWet = false
			e.Theta = net.rnd.uniform(c.MinOilWetTheta, c.MaxOilWetTheta)
		}
	}
	for _, e := range net.accessibleElements {
		e.originalTheta = e.Theta
		e.originalWaterWet = e.WaterWet
	}
	net.clusterWaterWetElements()
	net.clusterOilWetElements()
}
