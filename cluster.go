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

// unionFind is a disjoint-set structure over element IDs with path
// compression and union by size, giving near-O(1) amortized operations.
type unionFind struct {
	parent []int
	size   []int
}

func newUnionFind(n int) *unionFind {
	u := &unionFind{
		parent: make([]int, n),
		size:   make([]int, n),
	}
	for i := range u.parent {
		u.parent[i] = i
		u.size[i] = 1
	}
	return u
}

func (u *unionFind) find(x int) int {
	root := x
	for u.parent[root] != root {
		root = u.parent[root]
	}
	for u.parent[x] != root {
		u.parent[x], x = root, u.parent[x]
	}
	return root
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	// Attach the smaller tree under the larger; break size ties toward
	// the lower root so that repeated passes are bit-identical.
	if u.size[ra] < u.size[rb] || (u.size[ra] == u.size[rb] && rb < ra) {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	u.size[ra] += u.size[rb]
}

// clusterElements partitions the accessible elements satisfying pred into
// maximal connected clusters. One algorithm serves every classification
// axis: pred selects the members and assign writes the element's weak back
// reference (an index into the returned table). Closed elements never
// participate. The pass is idempotent: rerunning it on unchanged state
// yields identical membership in identical order.
func (net *Network) clusterElements(pred func(*Element) bool,
	assign func(*Element, int)) []*Cluster {

	u := newUnionFind(len(net.Elements))
	for _, e := range net.accessibleElements {
		if !pred(e) {
			continue
		}
		for _, n := range e.neighbors {
			if !n.Closed && pred(n) {
				u.union(e.ID, n.ID)
			}
		}
	}

	var clusters []*Cluster
	index := make(map[int]int) // set representative → cluster index
	for _, e := range net.accessibleElements {
		if !pred(e) {
			continue
		}
		root := u.find(e.ID)
		ci, ok := index[root]
		if !ok {
			ci = len(clusters)
			index[root] = ci
			clusters = append(clusters, new(Cluster))
		}
		c := clusters[ci]
		c.Members = append(c.Members, e)
		c.Volume += e.Volume
		if e.Inlet {
			c.Inlet = true
		}
		if e.Outlet {
			c.Outlet = true
		}
		assign(e, ci)
	}
	return clusters
}

// spanning reports whether any cluster in the table connects the inlet to
// the outlet.
func spanning(clusters []*Cluster) bool {
	for _, c := range clusters {
		if c.Spanning() {
			return true
		}
	}
	return false
}

// clusterWaterWetElements groups the water-wet elements.
func (net *Network) clusterWaterWetElements() {
	net.waterWetClusters = net.clusterElements(
		func(e *Element) bool { return e.WaterWet },
		func(e *Element, ci int) { e.wetCluster = ci })
}

// clusterOilWetElements groups the oil-wet elements.
func (net *Network) clusterOilWetElements() {
	net.oilWetClusters = net.clusterElements(
		func(e *Element) bool { return !e.WaterWet },
		func(e *Element, ci int) { e.wetCluster = ci })
}

// clusterWaterElements groups the water-occupied elements and updates the
// water spanning status.
func (net *Network) clusterWaterElements() {
	net.waterClusters = net.clusterElements(
		func(e *Element) bool { return e.Phase == Water },
		func(e *Element, ci int) { e.waterCluster = ci })
	net.isWaterSpanning = spanning(net.waterClusters)
}

// clusterOilElements groups the oil-occupied elements and updates the oil
// spanning status.
func (net *Network) clusterOilElements() {
	net.oilClusters = net.clusterElements(
		func(e *Element) bool { return e.Phase == Oil },
		func(e *Element, ci int) { e.oilCluster = ci })
	net.isOilSpanning = spanning(net.oilClusters)
}

// clusterGasElements groups the gas-occupied elements.
func (net *Network) clusterGasElements() {
	net.gasClusters = net.clusterElements(
		func(e *Element) bool { return e.Phase == Gas },
		func(e *Element, ci int) { e.gasCluster = ci })
	net.isGasSpanning = spanning(net.gasClusters)
}

// clusterOilFlowingElements groups the elements through which oil can flow:
// bulk oil plus stable sandwiched oil layers.
func (net *Network) clusterOilFlowingElements() {
	net.oilFlowClusters = net.clusterElements(
		func(e *Element) bool { return e.Phase == Oil || (e.OilLayer && e.OilLayerStable) },
		func(e *Element, ci int) { e.oilFlowCluster = ci })
}

// clusterWaterFlowingElements groups the elements through which water can
// flow: bulk water plus stable wetting corner films.
func (net *Network) clusterWaterFlowingElements() {
	net.waterFlowClusters = net.clusterElements(
		func(e *Element) bool { return e.Phase == Water || (e.WaterFilm && e.WaterFilmStable) },
		func(e *Element, ci int) { e.waterFlowCluster = ci })
}

// clusterActiveElements groups the flow-carrying elements: untrapped
// members of either flowing phase. The network spanning status reflects
// whether any active cluster bridges inlet and outlet.
func (net *Network) clusterActiveElements() {
	net.activeClusters = net.clusterElements(
		func(e *Element) bool {
			switch e.Phase {
			case Oil:
				return !e.OilTrapped
			case Water:
				return !e.WaterTrapped
			}
			return false
		},
		func(e *Element, ci int) { e.activeCluster = ci })
	net.isNetworkSpanning = spanning(net.activeClusters)
}
