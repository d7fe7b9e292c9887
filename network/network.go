/*
Package network describes 1D networks of path segments: nodes with
versioned path parameters, and segments connecting them.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.

A network is set up from a structure string (see Parse) or a YAML layout
(see Load). Path parameters give the centre line position x, its derivative
d1, two side directors d2 and d3 defining the tube cross section, and the
rates of change d12, d13 of the side directors along the path.
*/
package network

import (
	"errors"
	"fmt"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/tubenet"
)

// tracer writes to trace with key 'tubenet.network'
func tracer() tracing.Trace {
	return tracing.Select("tubenet.network")
}

var (
	// ErrInvalidSequence indicates a structure sequence which cannot be parsed.
	ErrInvalidSequence = errors.New("invalid network sequence")
	// ErrEmptyNetwork indicates a structure without any segments.
	ErrEmptyNetwork = errors.New("network has no segments")
	// ErrUnknownNode indicates a node identifier not in the network.
	ErrUnknownNode = errors.New("unknown network node")
	// ErrUnknownVersion indicates a node version out of range.
	ErrUnknownVersion = errors.New("unknown node version")
	// ErrUnusedVersion indicates a declared node version no segment uses.
	ErrUnusedVersion = errors.New("node version not in use")
	// ErrMissingParameters indicates path parameters not set for a node version.
	ErrMissingParameters = errors.New("missing path parameters")
)

// NodeID identifies a network node.
type NodeID int

// Layer selects the outer or inner surface of a tube with a wall.
type Layer int

const (
	// Outer is the primary tube surface.
	Outer Layer = iota
	// Inner is the inner surface of a tube wall.
	Inner
)

func (l Layer) String() string {
	if l == Inner {
		return "inner"
	}
	return "outer"
}

// PathParameters are the parameters of a tube path at one node.
type PathParameters struct {
	X   tubenet.Vec3 // centre position
	D1  tubenet.Vec3 // derivative along the path
	D2  tubenet.Vec3 // side director, angle 0 around the tube
	D3  tubenet.Vec3 // side director, angle π/2 around the tube
	D12 tubenet.Vec3 // rate of change of D2 along the path
	D13 tubenet.Vec3 // rate of change of D3 along the path
}

type paramKey struct {
	layer   Layer
	version int
}

// Node is a vertex of the network.
type Node struct {
	id            NodeID
	in, out       []*Segment // segments ending on / starting at this node
	interior      *Segment   // segment this node is interior to, if any
	versionsCount int
	versionsUsed  map[int]bool
	params        map[paramKey]PathParameters
	posX          int
	hasPosX       bool
	layoutX       tubenet.Vec3
}

func newNode(id NodeID) *Node {
	return &Node{
		id:           id,
		versionsUsed: make(map[int]bool),
		params:       make(map[paramKey]PathParameters),
	}
}

// ID returns the node's identifier.
func (n *Node) ID() NodeID {
	return n.id
}

// InSegments are the segments ending on this node.
func (n *Node) InSegments() []*Segment {
	return n.in
}

// OutSegments are the segments starting at this node.
func (n *Node) OutSegments() []*Segment {
	return n.out
}

// VersionsCount is the highest version number referenced for this node.
func (n *Node) VersionsCount() int {
	return n.versionsCount
}

// LayoutX is the node's position in the default layout.
func (n *Node) LayoutX() tubenet.Vec3 {
	return n.layoutX
}

func (n *Node) defineVersion(version int) {
	if version > n.versionsCount {
		n.versionsCount = version
	}
	n.versionsUsed[version] = true
}

// Parameters returns the path parameters of a node version for a layer.
func (n *Node) Parameters(version int, layer Layer) (PathParameters, bool) {
	p, ok := n.params[paramKey{layer: layer, version: version}]
	return p, ok
}

// CheckVersions returns an error wrapping ErrUnusedVersion if not all node
// versions up to VersionsCount are used by segments.
func (n *Node) CheckVersions() error {
	for v := 1; v <= n.versionsCount; v++ {
		if !n.versionsUsed[v] {
			return fmt.Errorf("%w: node %d does not use version %d of %d",
				ErrUnusedVersion, n.id, v, n.versionsCount)
		}
	}
	return nil
}

// Segment is a sequence of nodes between junctions or ends, each node
// contributing path parameters of a given version.
type Segment struct {
	nodes    []*Node
	versions []int
}

func newSegment(nodes []*Node, versions []int) *Segment {
	s := &Segment{nodes: nodes, versions: versions}
	for _, n := range nodes[1 : len(nodes)-1] {
		n.interior = s
	}
	return s
}

// Nodes returns the nodes of the segment in order along it.
func (s *Segment) Nodes() []*Node {
	return s.nodes
}

// NodeIDs returns the node identifiers in order along the segment.
func (s *Segment) NodeIDs() []NodeID {
	ids := make([]NodeID, len(s.nodes))
	for i, n := range s.nodes {
		ids[i] = n.id
	}
	return ids
}

// Versions returns the node versions in order along the segment.
func (s *Segment) Versions() []int {
	return s.versions
}

// Start is the first node of the segment.
func (s *Segment) Start() *Node {
	return s.nodes[0]
}

// End is the last node of the segment.
func (s *Segment) End() *Node {
	return s.nodes[len(s.nodes)-1]
}

// IsLoop is a predicate: does the segment start and end on the same node?
func (s *Segment) IsLoop() bool {
	return s.Start() == s.End()
}

// PathParameters returns the path parameters along the segment for a layer.
func (s *Segment) PathParameters(layer Layer) ([]PathParameters, error) {
	pp := make([]PathParameters, len(s.nodes))
	for i, n := range s.nodes {
		p, ok := n.Parameters(s.versions[i], layer)
		if !ok {
			return nil, fmt.Errorf("%w: node %d version %d, %s layer",
				ErrMissingParameters, n.id, s.versions[i], layer)
		}
		pp[i] = p
	}
	return pp, nil
}

// HasLayer is a predicate: are parameters for layer set for all nodes?
func (s *Segment) HasLayer(layer Layer) bool {
	_, err := s.PathParameters(layer)
	return err == nil
}

// split cuts the segment at interior node n, returning the remainder.
func (s *Segment) split(n *Node) *Segment {
	index := -1
	for i := 1; i < len(s.nodes)-1; i++ {
		if s.nodes[i] == n {
			index = i
			break
		}
	}
	if index < 0 {
		panic(fmt.Sprintf("network: node %d is not interior to segment", n.id))
	}
	n.interior = nil
	next := newSegment(append([]*Node(nil), s.nodes[index:]...), append([]int(nil), s.versions[index:]...))
	s.nodes = s.nodes[:index+1]
	s.versions = s.versions[:index+1]
	return next
}

func (s *Segment) String() string {
	return fmt.Sprintf("segment%v", s.NodeIDs())
}

// Network is a graph of nodes and segments. Nodes are kept ordered by
// identifier, segments in order of definition.
type Network struct {
	nodes    *treemap.Map // NodeID -> *Node
	segments []*Segment
}

func newNetwork() *Network {
	return &Network{
		nodes: treemap.NewWith(func(a, b interface{}) int {
			return int(a.(NodeID)) - int(b.(NodeID))
		}),
	}
}

// Segments returns the segments of the network.
func (nw *Network) Segments() []*Segment {
	return nw.segments
}

// SegmentIndex returns the position of s in Segments, or -1.
func (nw *Network) SegmentIndex(s *Segment) int {
	for i, seg := range nw.segments {
		if seg == s {
			return i
		}
	}
	return -1
}

// Nodes returns all nodes in ascending order of identifiers.
func (nw *Network) Nodes() []*Node {
	nodes := make([]*Node, 0, nw.nodes.Size())
	it := nw.nodes.Iterator()
	for it.Next() {
		nodes = append(nodes, it.Value().(*Node))
	}
	return nodes
}

// Node returns the node for id.
func (nw *Network) Node(id NodeID) (*Node, bool) {
	n, ok := nw.nodes.Get(id)
	if !ok {
		return nil, false
	}
	return n.(*Node), true
}

// SetPathParameters sets the path parameters for a version of node id.
func (nw *Network) SetPathParameters(id NodeID, version int, layer Layer, p PathParameters) error {
	n, ok := nw.Node(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	if version < 1 || version > n.versionsCount {
		return fmt.Errorf("%w: node %d has %d versions, got %d", ErrUnknownVersion, id, n.versionsCount, version)
	}
	n.params[paramKey{layer: layer, version: version}] = p
	return nil
}

// CheckVersions checks all nodes for unused versions, returning one error
// per node with unused versions.
func (nw *Network) CheckVersions() []error {
	var errs []error
	for _, n := range nw.Nodes() {
		if err := n.CheckVersions(); err != nil {
			tracer().Infof("%v", err)
			errs = append(errs, err)
		}
	}
	return errs
}
