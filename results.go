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

	"github.com/GaryBoone/GoStats/stats"
	"github.com/ctessum/sparse"
)

// Record is one accepted simulation output sample.
type Record struct {
	Time              float64 `desc:"Simulation time" units:"s"`
	CapillaryPressure float64 `desc:"Driving capillary pressure" units:"Pa"`
	WaterSaturation   float64
	PressureDrop      float64 `desc:"Applied pressure drop" units:"Pa"`
	InjectedPVs       float64 // cumulative injected pore volumes
	OilRelPerm        float64
	WaterRelPerm      float64
}

func (net *Network) appendRecord(r Record) {
	net.history = append(net.history, r)
}

// WriteHistoryCSV streams the accumulated output records to w.
func (net *Network) WriteHistoryCSV(w io.Writer) error {
	if _, err := fmt.Fprintln(w,
		"time_s,pc_pa,sw,dp_pa,injected_pv,kro,krw"); err != nil {
		return fmt.Errorf("porenet: writing history: %v", err)
	}
	for _, r := range net.history {
		if _, err := fmt.Fprintf(w, "%g,%g,%g,%g,%g,%g,%g\n",
			r.Time, r.CapillaryPressure, r.WaterSaturation, r.PressureDrop,
			r.InjectedPVs, r.OilRelPerm, r.WaterRelPerm); err != nil {
			return fmt.Errorf("porenet: writing history: %v", err)
		}
	}
	return nil
}

// SaturationProfile returns the water saturation averaged over lattice
// slabs along the flow axis.
func (net *Network) SaturationProfile() *sparse.DenseArray {
	return net.profile(func(e *Element) float64 { return e.WaterFraction })
}

// ConcentrationProfile returns the tracer concentration averaged over
// lattice slabs along the flow axis.
func (net *Network) ConcentrationProfile() *sparse.DenseArray {
	return net.profile(func(e *Element) float64 { return e.Concentration })
}

func (net *Network) profile(value func(*Element) float64) *sparse.DenseArray {
	sum := sparse.ZerosDense(net.Nx)
	vol := sparse.ZerosDense(net.Nx)
	width := net.xEdgeLength / float64(net.Nx)
	slab := func(x float64) int {
		i := int(x / width)
		if i < 0 {
			i = 0
		}
		if i >= net.Nx {
			i = net.Nx - 1
		}
		return i
	}
	for _, p := range net.accessiblePores {
		i := slab(net.poreMidX(p))
		sum.AddVal(value(&p.Element)*p.Volume, i)
		vol.AddVal(p.Volume, i)
	}
	for _, n := range net.accessibleNodes {
		i := slab(n.X)
		sum.AddVal(value(&n.Element)*n.Volume, i)
		vol.AddVal(n.Volume, i)
	}
	out := sparse.ZerosDense(net.Nx)
	for i := 0; i < net.Nx; i++ {
		if v := vol.Get(i); v > 0 {
			out.Set(sum.Get(i)/v, i)
		}
	}
	return out
}

// HistorySummary summarizes the accumulated output records.
type HistorySummary struct {
	Samples        int
	MeanSw, StdSw  float64
	MinSw, MaxSw   float64
	FinalSw        float64
	MaxPc          float64
	InjectedPVs    float64
}

// Summary computes summary statistics over the saturation history.
func (net *Network) Summary() HistorySummary {
	var s HistorySummary
	if len(net.history) == 0 {
		return s
	}
	var d stats.Stats
	var pc stats.Stats
	for _, r := range net.history {
		d.Update(r.WaterSaturation)
		pc.Update(r.CapillaryPressure)
	}
	s.Samples = d.Count()
	s.MeanSw = d.Mean()
	s.StdSw = d.SampleStandardDeviation()
	s.MinSw = d.Min()
	s.MaxSw = d.Max()
	s.FinalSw = net.history[len(net.history)-1].WaterSaturation
	s.MaxPc = pc.Max()
	s.InjectedPVs = net.history[len(net.history)-1].InjectedPVs
	return s
}
