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
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// WriteNodesCSV dumps the accessible nodes with their geometry, occupancy
// and solved pressure, one row per node.
func WriteNodesCSV(w io.Writer) NetworkManipulator {
	return func(net *Network) error {
		if _, err := fmt.Fprintln(w,
			"id,x_m,y_m,z_m,radius_m,volume_m3,phase,sw,pressure_pa"); err != nil {
			return fmt.Errorf("porenet: writing nodes: %v", err)
		}
		for _, n := range net.accessibleNodes {
			if _, err := fmt.Fprintf(w, "%d,%g,%g,%g,%g,%g,%s,%g,%g\n",
				n.ID, n.X, n.Y, n.Z, n.Radius, n.Volume, n.Phase,
				n.WaterFraction, n.Pressure); err != nil {
				return fmt.Errorf("porenet: writing nodes: %v", err)
			}
		}
		return nil
	}
}

// tokenReader streams whitespace-separated numeric tokens, ignoring the
// line structure of the underlying tables.
type tokenReader struct {
	s    *bufio.Scanner
	name string
}

func newTokenReader(r io.Reader, name string) *tokenReader {
	s := bufio.NewScanner(r)
	s.Split(bufio.ScanWords)
	return &tokenReader{s: s, name: name}
}

func (t *tokenReader) nextInt() (int, error) {
	if !t.s.Scan() {
		return 0, fmt.Errorf("porenet: %s: unexpected end of table", t.name)
	}
	v, err := strconv.Atoi(t.s.Text())
	if err != nil {
		return 0, fmt.Errorf("porenet: %s: %v", t.name, err)
	}
	return v, nil
}

func (t *tokenReader) nextFloat() (float64, error) {
	if !t.s.Scan() {
		return 0, fmt.Errorf("porenet: %s: unexpected end of table", t.name)
	}
	v, err := strconv.ParseFloat(t.s.Text(), 64)
	if err != nil {
		return 0, fmt.Errorf("porenet: %s: %v", t.name, err)
	}
	return v, nil
}

// LoadExtracted builds a network from the four text tables of an extracted
// network description (the node1/node2/link1/link2 convention used for
// image-derived networks). Node index -1 marks the inlet reservoir and 0
// the outlet reservoir. Geometry comes entirely from the tables; config
// supplies fluids, wettability and simulation parameters.
func LoadExtracted(node1, node2, link1, link2 io.Reader, config *Config) (*Network, error) {
	if err := config.Check(); err != nil {
		return nil, err
	}
	net := &Network{
		Config: config,
		rnd:    newVariateGenerator(config.Seed),
	}
	net.OilViscosity = config.OilViscosity
	net.WaterViscosity = config.WaterViscosity
	net.GasViscosity = config.GasViscosity
	net.OWSurfaceTension = config.OWSurfaceTension
	net.pressureIn = config.PressureIn
	net.pressureOut = config.PressureOut

	if err := net.readNodeTables(node1, node2); err != nil {
		return nil, err
	}
	if err := net.readLinkTables(link1, link2); err != nil {
		return nil, err
	}
	// Profiles bin the irregular geometry into Nx slabs along x.
	net.Nx, net.Ny, net.Nz = config.Nx, config.Ny, config.Nz

	net.setNeighbors()
	if err := net.defineAccessibleElements(); err != nil {
		return nil, err
	}
	for _, e := range net.accessibleElements {
		classifyShape(e)
	}
	net.assignHalfAngles()
	net.accumulateVolumes()
	net.assignConductances()
	net.assignWettability()
	net.initialiseCapillaries()
	net.ctx.ready.Store(true)
	return net, nil
}

// readNodeTables parses node1 (positions and connectivity counts) and
// node2 (volume, radius, shape factor).
func (net *Network) readNodeTables(node1, node2 io.Reader) error {
	t1 := newTokenReader(node1, "node1")
	count, err := t1.nextInt()
	if err != nil {
		return err
	}
	if count < 1 {
		return fmt.Errorf("porenet: node1: no nodes in table")
	}
	if net.xEdgeLength, err = t1.nextFloat(); err != nil {
		return err
	}
	if net.yEdgeLength, err = t1.nextFloat(); err != nil {
		return err
	}
	if net.zEdgeLength, err = t1.nextFloat(); err != nil {
		return err
	}

	net.Nodes = make([]*Node, count)
	for i := 0; i < count; i++ {
		id, err := t1.nextInt()
		if err != nil {
			return err
		}
		if id < 1 || id > count {
			return fmt.Errorf("porenet: node1: node index %d out of range", id)
		}
		n := &Node{}
		if n.X, err = t1.nextFloat(); err != nil {
			return err
		}
		if n.Y, err = t1.nextFloat(); err != nil {
			return err
		}
		if n.Z, err = t1.nextFloat(); err != nil {
			return err
		}
		conns, err := t1.nextInt()
		if err != nil {
			return err
		}
		// Neighbor node ids, the inlet and outlet flags, and the link
		// ids: adjacency is rebuilt from the link tables, so these
		// tokens are consumed and discarded.
		for j := 0; j < 2*conns+2; j++ {
			if _, err := t1.nextInt(); err != nil {
				return err
			}
		}
		net.Nodes[id-1] = n
	}

	t2 := newTokenReader(node2, "node2")
	for i := 0; i < count; i++ {
		id, err := t2.nextInt()
		if err != nil {
			return err
		}
		if id < 1 || id > count {
			return fmt.Errorf("porenet: node2: node index %d out of range", id)
		}
		n := net.Nodes[id-1]
		if n.Volume, err = t2.nextFloat(); err != nil {
			return err
		}
		if n.Radius, err = t2.nextFloat(); err != nil {
			return err
		}
		if n.ShapeFactor, err = t2.nextFloat(); err != nil {
			return err
		}
		if _, err = t2.nextFloat(); err != nil { // clay volume, unused
			return err
		}
		n.Length = 2 * n.Radius
	}
	return nil
}

// readLinkTables parses link1 (endpoints, radius, shape factor) and link2
// (lengths and volume). The lower-x endpoint becomes NodeOut so that
// positive flow points downstream.
func (net *Network) readLinkTables(link1, link2 io.Reader) error {
	endpoint := func(idx int) (*Node, error) {
		switch {
		case idx == -1 || idx == 0:
			return nil, nil
		case idx >= 1 && idx <= len(net.Nodes):
			return net.Nodes[idx-1], nil
		}
		return nil, fmt.Errorf("porenet: link table references node %d", idx)
	}

	t1 := newTokenReader(link1, "link1")
	count, err := t1.nextInt()
	if err != nil {
		return err
	}
	if count < 1 {
		return fmt.Errorf("porenet: link1: no links in table")
	}
	net.Pores = make([]*Pore, count)
	for i := 0; i < count; i++ {
		id, err := t1.nextInt()
		if err != nil {
			return err
		}
		if id < 1 || id > count {
			return fmt.Errorf("porenet: link1: link index %d out of range", id)
		}
		p := &Pore{}
		a, err := t1.nextInt()
		if err != nil {
			return err
		}
		b, err := t1.nextInt()
		if err != nil {
			return err
		}
		na, err := endpoint(a)
		if err != nil {
			return err
		}
		nb, err := endpoint(b)
		if err != nil {
			return err
		}
		switch {
		case na == nil && nb == nil:
			return fmt.Errorf("porenet: link1: link %d joins two reservoirs", id)
		case a == -1 || b == -1: // inlet reservoir upstream
			p.Inlet = true
			p.NodeOut = nil
			p.NodeIn = na
			if na == nil {
				p.NodeIn = nb
			}
		case a == 0 || b == 0: // outlet reservoir downstream
			p.Outlet = true
			p.NodeIn = nil
			p.NodeOut = na
			if na == nil {
				p.NodeOut = nb
			}
		case na.X <= nb.X:
			p.NodeOut, p.NodeIn = na, nb
		default:
			p.NodeOut, p.NodeIn = nb, na
		}
		if p.Radius, err = t1.nextFloat(); err != nil {
			return err
		}
		if p.ShapeFactor, err = t1.nextFloat(); err != nil {
			return err
		}
		if p.FullLength, err = t1.nextFloat(); err != nil {
			return err
		}
		net.Pores[id-1] = p
	}

	t2 := newTokenReader(link2, "link2")
	for i := 0; i < count; i++ {
		id, err := t2.nextInt()
		if err != nil {
			return err
		}
		if id < 1 || id > count {
			return fmt.Errorf("porenet: link2: link index %d out of range", id)
		}
		p := net.Pores[id-1]
		for j := 0; j < 2; j++ { // endpoint indices repeat here
			if _, err := t2.nextInt(); err != nil {
				return err
			}
		}
		for j := 0; j < 2; j++ { // end node half lengths, unused
			if _, err := t2.nextFloat(); err != nil {
				return err
			}
		}
		if p.Length, err = t2.nextFloat(); err != nil {
			return err
		}
		if p.Volume, err = t2.nextFloat(); err != nil {
			return err
		}
		if _, err = t2.nextFloat(); err != nil { // clay volume, unused
			return err
		}
	}
	return nil
}

// WritePoresCSV dumps the accessible pores with their endpoints, geometry,
// occupancy and flow, one row per pore. Boundary pores report -1 for the
// missing endpoint.
func WritePoresCSV(w io.Writer) NetworkManipulator {
	return func(net *Network) error {
		if _, err := fmt.Fprintln(w,
			"id,node_out,node_in,radius_m,length_m,volume_m3,phase,sw,flow_m3s"); err != nil {
			return fmt.Errorf("porenet: writing pores: %v", err)
		}
		for _, p := range net.accessiblePores {
			out, in := -1, -1
			if p.NodeOut != nil {
				out = p.NodeOut.ID
			}
			if p.NodeIn != nil {
				in = p.NodeIn.ID
			}
			if _, err := fmt.Fprintf(w, "%d,%d,%d,%g,%g,%g,%s,%g,%g\n",
				p.ID, out, in, p.Radius, p.Length, p.Volume, p.Phase,
				p.WaterFraction, p.Flow); err != nil {
				return fmt.Errorf("porenet: writing pores: %v", err)
			}
		}
		return nil
	}
}
