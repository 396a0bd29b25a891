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
	"sync"
	"sync/atomic"
)

// Phase identifies the fluid occupying the bulk of an element.
type Phase int

// The fluid phases tracked by the model.
const (
	Oil Phase = iota
	Water
	Gas
)

func (p Phase) String() string {
	switch p {
	case Oil:
		return "oil"
	case Water:
		return "water"
	case Gas:
		return "gas"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Element holds the state shared by pores and nodes: geometry, occupancy,
// wettability, capillary state, and the weak back references into the
// cluster tables owned by the Network. Elements are created once during
// setup and persist for the lifetime of the simulation.
type Element struct {
	ID int

	Radius              float64 `desc:"Inscribed radius" units:"m"`
	Length              float64 `desc:"Element length" units:"m"`
	ShapeFactor         float64 `desc:"Cross section shape factor" units:"-"`
	ShapeFactorConstant float64 // conductance prefactor for the shape class
	Volume              float64 `desc:"Pore volume" units:"m³"`
	Conductance         float64 `desc:"Hydraulic conductance" units:"m³/(Pa·s)"`

	Inlet  bool // touches the inlet face
	Outlet bool // touches the outlet face
	Closed bool // inaccessible: excluded from clustering and flow

	Phase         Phase
	WaterFraction float64 // water volume fraction of the element contents
	Concentration float64 // tracer concentration in the oil phase [0,1]

	WaterWet bool
	Theta    float64 `desc:"Contact angle" units:"rad"`

	EntryPressure float64 `desc:"Capillary entry pressure" units:"Pa"`
	Viscosity     float64 `desc:"Effective viscosity of contents" units:"Pa·s"`

	OilTrapped   bool
	WaterTrapped bool

	// Corner film state. Half angles describe the two sharpest corners of
	// the (triangular) cross section; films exist only where the geometry
	// and wettability allow a stable wetting layer.
	HalfAngle1      float64
	HalfAngle2      float64
	WaterFilm       bool // wetting corner film present
	OilLayer        bool // sandwiched oil layer present
	WaterFilmStable bool
	OilLayerStable  bool

	// Wettability backup for the mixed-wet relabeling around primary
	// drainage.
	originalTheta    float64
	originalWaterWet bool

	// Weak cluster back references: indices into the cluster tables owned
	// by the Network, one per classification axis, overwritten wholesale
	// on every re-clustering pass.
	oilCluster       int
	waterCluster     int
	gasCluster       int
	wetCluster       int
	oilFlowCluster   int
	waterFlowCluster int
	activeCluster    int

	neighbors []*Element // adjacency; set once during setup
}

// OilFraction returns the oil volume fraction of the element contents.
func (e *Element) OilFraction() float64 { return 1 - e.WaterFraction }

// Node is a junction element. It has no intrinsic length; its volume comes
// from its inscribed radius and shape factor.
type Node struct {
	Element

	I, J, K int     // lattice indices
	X, Y, Z float64 `desc:"Position" units:"m"`

	Pressure float64 `desc:"Solved pressure" units:"Pa"`

	Pores []*Pore // incident conduits
}

// Pore is a conduit element connecting two nodes. A nil NodeOut marks an
// inlet boundary pore and a nil NodeIn an outlet boundary pore.
type Pore struct {
	Element

	NodeIn  *Node // downstream endpoint (nil for outlet pores)
	NodeOut *Node // upstream endpoint (nil for inlet pores)

	FullLength float64 // node-center to node-center distance

	Flow float64 `desc:"Volumetric flow, NodeOut to NodeIn positive" units:"m³/s"`
}

// otherNode returns the endpoint of p that is not n.
func (p *Pore) otherNode(n *Node) *Node {
	if p.NodeIn == n {
		return p.NodeOut
	}
	return p.NodeIn
}

// Cluster is a maximal connected set of elements sharing a classification
// predicate at a point in time. Clusters are transient: they are recomputed
// from scratch on every clustering pass and never patched incrementally.
type Cluster struct {
	Members []*Element
	Volume  float64
	Inlet   bool // contains at least one inlet element
	Outlet  bool // contains at least one outlet element
}

// Spanning reports whether the cluster connects the inlet to the outlet.
func (c *Cluster) Spanning() bool { return c.Inlet && c.Outlet }

// SimulationContext carries the cross-goroutine simulation state: the
// cooperative cancellation flag, the ready/running status, and the current
// progress notification. It is created at setup and torn down on reset.
type SimulationContext struct {
	cancel  atomic.Bool
	ready   atomic.Bool
	running atomic.Bool

	mu           sync.RWMutex
	notification string
}

// RequestCancel asks a running simulation to stop. The request takes effect
// at the next step boundary, leaving the network internally consistent.
func (ctx *SimulationContext) RequestCancel() { ctx.cancel.Store(true) }

func (ctx *SimulationContext) canceled() bool { return ctx.cancel.Load() }

// Ready reports whether the network is loaded and internally consistent.
func (ctx *SimulationContext) Ready() bool { return ctx.ready.Load() }

// Running reports whether a simulation is in progress.
func (ctx *SimulationContext) Running() bool { return ctx.running.Load() }

// Notification returns the current progress notification string.
func (ctx *SimulationContext) Notification() string {
	ctx.mu.RLock()
	defer ctx.mu.RUnlock()
	return ctx.notification
}

func (ctx *SimulationContext) setNotification(format string, args ...interface{}) {
	ctx.mu.Lock()
	ctx.notification = fmt.Sprintf(format, args...)
	ctx.mu.Unlock()
}

// Network is the aggregate root: it owns all nodes and pores, the auxiliary
// accessibility tables, the active cluster tables, the simulation context,
// and the accumulated outputs. At most one simulation may run on a Network
// at a time.
type Network struct {
	Config *Config

	Nx, Ny, Nz int

	Pores []*Pore
	Nodes []*Node

	// Elements lists pores first, then nodes; Elements[i].ID == i.
	Elements []*Element

	accessiblePores    []*Pore
	accessibleNodes    []*Node
	accessibleElements []*Element
	inletPores         []*Pore
	outletPores        []*Pore

	totalPoresVolume    float64
	totalNodesVolume    float64
	totalElementsVolume float64

	xEdgeLength float64
	yEdgeLength float64
	zEdgeLength float64

	// Fluid properties.
	OilViscosity     float64
	WaterViscosity   float64
	GasViscosity     float64
	OWSurfaceTension float64

	pressureIn  float64
	pressureOut float64
	deltaP      float64 // applied pressure drop for rate-controlled injection

	flow                 float64 // current outlet flow
	absolutePermeability float64 // [m²]
	porosity             float64
	oilRelPerm           float64
	waterRelPerm         float64

	// Cluster tables, one per classification axis. Elements reference
	// entries by index; the tables are replaced wholesale on each pass.
	waterWetClusters   []*Cluster
	oilWetClusters     []*Cluster
	waterClusters      []*Cluster
	oilClusters        []*Cluster
	gasClusters        []*Cluster
	oilFlowClusters    []*Cluster
	waterFlowClusters  []*Cluster
	activeClusters     []*Cluster
	isOilSpanning      bool
	isWaterSpanning    bool
	isGasSpanning      bool
	isNetworkSpanning  bool

	rnd *variateGenerator

	ctx SimulationContext

	// OnPlot, if non-nil, is called after every completed displacement
	// step or stage transition. It is a one-way, best-effort repaint
	// signal: it consumes nothing and must not fail.
	OnPlot func()

	history []Record
}

// NewNetwork builds a regular-lattice network from config. The returned
// network is ready for any displacement method.
func NewNetwork(config *Config) (*Network, error) {
	if err := config.Check(); err != nil {
		return nil, err
	}
	net := &Network{
		Config: config,
		Nx:     config.Nx,
		Ny:     config.Ny,
		Nz:     config.Nz,
		rnd:    newVariateGenerator(config.Seed),
	}
	net.OilViscosity = config.OilViscosity
	net.WaterViscosity = config.WaterViscosity
	net.GasViscosity = config.GasViscosity
	net.OWSurfaceTension = config.OWSurfaceTension
	net.pressureIn = config.PressureIn
	net.pressureOut = config.PressureOut
	if err := net.setupRegularModel(); err != nil {
		return nil, err
	}
	net.ctx.ready.Store(true)
	return net, nil
}

// Context returns the simulation context for status queries and
// cancellation requests.
func (net *Network) Context() *SimulationContext { return &net.ctx }

// Reset tears the network down: all owned elements and clusters are
// released and the context is cleared.
func (net *Network) Reset() {
	net.Pores = nil
	net.Nodes = nil
	net.Elements = nil
	net.accessiblePores = nil
	net.accessibleNodes = nil
	net.accessibleElements = nil
	net.inletPores = nil
	net.outletPores = nil
	net.clearClusters()
	net.history = nil
	net.ctx = SimulationContext{}
}

func (net *Network) clearClusters() {
	net.waterWetClusters = nil
	net.oilWetClusters = nil
	net.waterClusters = nil
	net.oilClusters = nil
	net.gasClusters = nil
	net.oilFlowClusters = nil
	net.waterFlowClusters = nil
	net.activeClusters = nil
}

// TotalPores returns the number of pores, including closed ones.
func (net *Network) TotalPores() int { return len(net.Pores) }

// TotalNodes returns the number of nodes, including closed ones.
func (net *Network) TotalNodes() int { return len(net.Nodes) }

// AbsolutePermeability returns the single-phase permeability [m²]
// calculated by the most recent solve.
func (net *Network) AbsolutePermeability() float64 { return net.absolutePermeability }

// Porosity returns the network porosity.
func (net *Network) Porosity() float64 { return net.porosity }

// OutletFlow returns the aggregate flow across the outlet face [m³/s] from
// the most recent solve.
func (net *Network) OutletFlow() float64 { return net.flow }

// RelativePermeabilities returns the oil and water relative permeabilities
// from the most recent calculation.
func (net *Network) RelativePermeabilities() (oil, water float64) {
	return net.oilRelPerm, net.waterRelPerm
}

// History returns the accumulated output records of the last simulation.
func (net *Network) History() []Record { return net.history }

// WaterSaturation returns the water saturation over accessible elements,
// ignoring corner films.
func (net *Network) WaterSaturation() float64 {
	var volume float64
	for _, e := range net.accessibleElements {
		volume += e.WaterFraction * e.Volume
	}
	return volume / net.totalElementsVolume
}

// WaterSaturationWithFilms returns the water saturation including the
// wetting films held in element corners.
func (net *Network) WaterSaturationWithFilms() float64 {
	var volume float64
	for _, e := range net.accessibleElements {
		volume += e.WaterFraction * e.Volume
		if e.Phase == Oil && e.WaterFilm {
			volume += filmVolumeFraction * e.Volume
		}
	}
	return volume / net.totalElementsVolume
}

// emitPlotSignal fires the repaint callback, if any. The signal is
// fire-and-forget; a slow or absent listener never blocks the simulation.
func (net *Network) emitPlotSignal() {
	if net.OnPlot != nil {
		net.OnPlot()
	}
}

// startRun transitions the context into the running state, rejecting
// concurrent simulations on the same network.
func (net *Network) startRun(name string) error {
	if !net.ctx.ready.Load() {
		return ErrNotReady
	}
	if !net.ctx.running.CompareAndSwap(false, true) {
		return fmt.Errorf("porenet: a simulation is already running")
	}
	net.ctx.cancel.Store(false)
	net.ctx.setNotification("%s: starting", name)
	net.history = net.history[:0]
	return nil
}

func (net *Network) endRun(name string) {
	net.ctx.setNotification("%s: done", name)
	net.ctx.running.Store(false)
}

// logf writes a progress message to w, if non-nil.
func logf(w io.Writer, format string, args ...interface{}) {
	if w != nil {
		fmt.Fprintf(w, format+"\n", args...)
	}
}
