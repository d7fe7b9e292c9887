package network

import (
	"github.com/npillmayer/tubenet"
)

// assignPositions gives each node an integer x position, increasing along
// segments, and spreads nodes with equal x position in y.
func (nw *Network) assignPositions() {
	for range nw.segments { // limits iterations for cyclic networks
		changes := 0
		for _, s := range nw.segments {
			posX := 0
			if s.Start().hasPosX {
				posX = s.Start().posX
			}
			for i, n := range s.nodes {
				last := i == len(s.nodes)-1
				if !n.hasPosX || (n.posX < posX && !(last && s.IsLoop())) {
					n.posX, n.hasPosX = posX, true
					changes++
				}
				posX++
			}
		}
		if changes == 0 {
			break
		}
	}
	maxPosX := -1
	nodes := nw.Nodes()
	for _, n := range nodes {
		maxPosX = max(maxPosX, n.posX)
	}
	columns := make([][]*Node, maxPosX+1)
	for _, n := range nodes {
		columns[n.posX] = append(columns[n.posX], n)
	}
	for x, col := range columns {
		count := len(col)
		for iy, n := range col {
			y := 0.0
			if count > 1 {
				rangeY := float64(count - 1)
				y = rangeY * (-0.5 + float64(iy)/rangeY)
			}
			n.layoutX = tubenet.V(float64(x), y, 0)
		}
	}
}

// SetDefaultParameters sets outer layer path parameters for every node
// version from the default layout: x from the layout position, d1 of unit
// length pointing from the previous to the next node along segments using
// that version, d3 = radius·z and d2 = d3 × d1 (so d2 also has length radius).
// Node versions already having parameters are left untouched.
// Returns the number of node versions set.
func (nw *Network) SetDefaultParameters(radius float64) int {
	count := 0
	for _, n := range nw.Nodes() {
		for v := 1; v <= n.versionsCount; v++ {
			if _, ok := n.Parameters(v, Outer); ok {
				continue
			}
			prev, next := n.layoutNeighbours(v)
			var d1 tubenet.Vec3
			switch {
			case prev != nil && next != nil:
				d1 = next.layoutX.Sub(prev.layoutX)
			case prev != nil:
				d1 = n.layoutX.Sub(prev.layoutX)
			case next != nil:
				d1 = next.layoutX.Sub(n.layoutX)
			default:
				tracer().Infof("no data to define derivative version %d at node %d", v, n.id)
				continue
			}
			d1 = d1.Normalized()
			d3 := tubenet.V(0, 0, radius)
			n.params[paramKey{layer: Outer, version: v}] = PathParameters{
				X:  n.layoutX,
				D1: d1,
				D2: d3.Cross(d1),
				D3: d3,
			}
			count++
		}
	}
	return count
}

// layoutNeighbours finds the nodes before and after n on segments using
// version v of n.
func (n *Node) layoutNeighbours(v int) (prev, next *Node) {
	if s := n.interior; s != nil {
		for i := 1; i < len(s.nodes)-1; i++ {
			if s.nodes[i] == n {
				return s.nodes[i-1], s.nodes[i+1]
			}
		}
	}
	for _, s := range n.in {
		if s.versions[len(s.versions)-1] == v {
			prev = s.nodes[len(s.nodes)-2]
			break
		}
	}
	for _, s := range n.out {
		if s.versions[0] == v {
			next = s.nodes[1]
			break
		}
	}
	return
}
