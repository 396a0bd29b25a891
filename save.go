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
	"encoding/gob"
	"fmt"
	"io"
)

// elementState is the dynamic state of one element as stored in a saved
// network. The geometry is not saved: it is rebuilt deterministically from
// the configuration and seed, so a snapshot only needs what the
// displacement history changed.
type elementState struct {
	Phase         Phase
	WaterFraction float64
	Concentration float64
	WaterWet      bool
	Theta         float64
	OilTrapped    bool
	WaterTrapped  bool
	WaterFilm     bool
	OilLayer      bool
}

type savedNetwork struct {
	Config  Config
	States  []elementState
	History []Record
}

// Save returns a manipulator that saves the network state to a gob file
// (format description at https://golang.org/pkg/encoding/gob/).
func Save(w io.Writer) NetworkManipulator {
	return func(net *Network) error {
		s := savedNetwork{
			Config:  *net.Config,
			States:  make([]elementState, len(net.Elements)),
			History: net.history,
		}
		for i, e := range net.Elements {
			s.States[i] = elementState{
				Phase:         e.Phase,
				WaterFraction: e.WaterFraction,
				Concentration: e.Concentration,
				WaterWet:      e.WaterWet,
				Theta:         e.Theta,
				OilTrapped:    e.OilTrapped,
				WaterTrapped:  e.WaterTrapped,
				WaterFilm:     e.WaterFilm,
				OilLayer:      e.OilLayer,
			}
		}
		if err := gob.NewEncoder(w).Encode(s); err != nil {
			return fmt.Errorf("porenet: saving network: %v", err)
		}
		return nil
	}
}

// Load reads a network from a previously Saved file: the lattice is
// rebuilt from the stored configuration and seed, then the saved
// displacement state is applied on top of it.
func Load(r io.Reader) (*Network, error) {
	var s savedNetwork
	if err := gob.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("porenet: loading network: %v", err)
	}
	net, err := NewNetwork(&s.Config)
	if err != nil {
		return nil, err
	}
	if len(s.States) != len(net.Elements) {
		return nil, fmt.Errorf("porenet: saved state has %d elements, rebuilt network has %d",
			len(s.States), len(net.Elements))
	}
	net.initFromStates(s.States)
	net.history = s.History
	return net, nil
}

func (net *Network) initFromStates(states []elementState) {
	for i, e := range net.Elements {
		st := states[i]
		e.Phase = st.Phase
		e.WaterFraction = st.WaterFraction
		e.Concentration = st.Concentration
		e.WaterWet = st.WaterWet
		e.Theta = st.Theta
		e.OilTrapped = st.OilTrapped
		e.WaterTrapped = st.WaterTrapped
		e.WaterFilm = st.WaterFilm
		e.OilLayer = st.OilLayer
		net.assignViscosity(e)
	}
	net.assignFilmStability()
	net.clusterWaterWetElements()
	net.clusterOilWetElements()
	net.clusterWaterElements()
	net.clusterOilElements()
}
