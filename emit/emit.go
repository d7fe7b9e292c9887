/*
Package emit defines the interface between mesh generation and a concrete
finite element representation: creating nodes and elements by identifier.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package emit

import (
	"errors"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/tubenet"
)

// tracer writes to trace with key 'tubenet.emit'
func tracer() tracing.Trace {
	return tracing.Select("tubenet.emit")
}

var (
	// ErrDuplicateID indicates a node or element identifier used twice.
	ErrDuplicateID = errors.New("identifier already in use")
	// ErrUnknownHandle indicates a node handle not created by this emitter.
	ErrUnknownHandle = errors.New("unknown node handle")
	// ErrNodeCount indicates an element with a wrong number of nodes or layouts.
	ErrNodeCount = errors.New("wrong number of element nodes")
)

// NodeParameters are the field parameters of a mesh node. D3 is only
// meaningful for 3D meshes (HasD3).
type NodeParameters struct {
	X, D1, D2, D3 tubenet.Vec3
	HasD3         bool
}

// NodeHandle refers to a node created by an Emitter.
type NodeHandle interface {
	NodeID() int
}

// ElementHandle refers to an element created by an Emitter.
type ElementHandle interface {
	ElementID() int
}

// Emitter creates mesh nodes and elements.
//
// Elements are bicubic (4 nodes) or tricubic (8 nodes) Hermite, with nodes
// ordered with xi1 varying fastest, then xi2, then xi3. For every node there
// is a NodeLayout telling how element derivatives map to node derivatives.
type Emitter interface {
	CreateNode(id int, p NodeParameters) (NodeHandle, error)
	CreateElement(id int, nodes []NodeHandle, layouts []NodeLayout) (ElementHandle, error)
}

// NodeLayout tells which combinations of node derivatives an element may
// use as its derivatives at a node.
type NodeLayout int

const (
	// Straight: the node's derivatives, permuted with sign changes.
	Straight NodeLayout = iota
	// FlipD2: as Straight, but the element's second direction is limited to ±d2.
	FlipD2
	// SixWay: 6 directions in the d1-d2 plane including d1+d2 and -d1-d2,
	// for nodes where 3 tubes meet.
	SixWay
	// EightWay: 8 directions in the d1-d2 plane including all diagonals,
	// for nodes where 4 tubes meet.
	EightWay
)

func (l NodeLayout) String() string {
	switch l {
	case Straight:
		return "Straight"
	case FlipD2:
		return "FlipD2"
	case SixWay:
		return "SixWay"
	case EightWay:
		return "EightWay"
	}
	return "NodeLayout(?)"
}

// LayoutForCount returns the layout for a junction node shared by count tubes.
func LayoutForCount(count int) NodeLayout {
	switch {
	case count >= 4:
		return EightWay
	case count == 3:
		return SixWay
	case count == 2:
		return FlipD2
	}
	return Straight
}

// Directions returns the weights of (d1, d2) or, if withD3 is set,
// (d1, d2, d3) for each derivative direction an element may use at a node.
func (l NodeLayout) Directions(withD3 bool) [][]float64 {
	var dirs [][]float64
	switch l {
	case SixWay:
		dirs = [][]float64{{1, 0}, {1, 1}, {0, 1}, {-1, 0}, {-1, -1}, {0, -1}}
	case EightWay:
		dirs = [][]float64{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
	default:
		dirs = [][]float64{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}
	}
	if !withD3 {
		return dirs
	}
	dirs3 := make([][]float64, 0, len(dirs)+2)
	for _, d := range dirs {
		dirs3 = append(dirs3, []float64{d[0], d[1], 0})
	}
	return append(dirs3, []float64{0, 0, -1}, []float64{0, 0, 1})
}

// Limits returns, per element direction, the allowed weights from
// Directions, or nil if not limited. Only FlipD2 has limits: the second
// element direction must be +d2 or -d2.
func (l NodeLayout) Limits(withD3 bool) [][][]float64 {
	if l != FlipD2 {
		return nil
	}
	if withD3 {
		return [][][]float64{nil, {{0, 1, 0}, {0, -1, 0}}, {{0, 0, 1}}}
	}
	return [][][]float64{nil, {{0, 1}, {0, -1}}}
}
