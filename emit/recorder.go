package emit

import (
	"fmt"
	"sort"
)

// Node is a node captured by a Recorder.
type Node struct {
	ID     int
	Params NodeParameters
}

// NodeID implements NodeHandle.
func (n *Node) NodeID() int { return n.ID }

// Element is an element captured by a Recorder.
type Element struct {
	ID      int
	Nodes   []int
	Layouts []NodeLayout
}

// ElementID implements ElementHandle.
func (e *Element) ElementID() int { return e.ID }

// Recorder is an Emitter which keeps nodes and elements in memory.
// It rejects duplicate identifiers and elements referencing nodes it did
// not create, which makes it suitable for checking mesh generators.
//
// Example:
//
//	rec := emit.NewRecorder()
//	result, err := builder.Generate(rec)
//	fmt.Println(rec.NodesCount(), rec.ElementsCount())
//
// The Recorder is not safe for concurrent use.
type Recorder struct {
	nodes    map[int]*Node
	elements map[int]*Element
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		nodes:    make(map[int]*Node),
		elements: make(map[int]*Element),
	}
}

// CreateNode implements Emitter.
func (r *Recorder) CreateNode(id int, p NodeParameters) (NodeHandle, error) {
	if _, ok := r.nodes[id]; ok {
		return nil, fmt.Errorf("%w: node %d", ErrDuplicateID, id)
	}
	n := &Node{ID: id, Params: p}
	r.nodes[id] = n
	return n, nil
}

// CreateElement implements Emitter.
func (r *Recorder) CreateElement(id int, nodes []NodeHandle, layouts []NodeLayout) (ElementHandle, error) {
	if _, ok := r.elements[id]; ok {
		return nil, fmt.Errorf("%w: element %d", ErrDuplicateID, id)
	}
	if (len(nodes) != 4 && len(nodes) != 8) || len(layouts) != len(nodes) {
		return nil, fmt.Errorf("%w: element %d has %d nodes, %d layouts", ErrNodeCount, id, len(nodes), len(layouts))
	}
	e := &Element{ID: id, Nodes: make([]int, len(nodes)), Layouts: append([]NodeLayout(nil), layouts...)}
	for i, h := range nodes {
		if h == nil {
			return nil, fmt.Errorf("%w: element %d, local node %d is nil", ErrUnknownHandle, id, i)
		}
		if n, ok := r.nodes[h.NodeID()]; !ok || NodeHandle(n) != h {
			return nil, fmt.Errorf("%w: element %d, node %d", ErrUnknownHandle, id, h.NodeID())
		}
		e.Nodes[i] = h.NodeID()
	}
	r.elements[id] = e
	tracer().Debugf("element %d: nodes %v", id, e.Nodes)
	return e, nil
}

// NodesCount returns the number of nodes recorded.
func (r *Recorder) NodesCount() int {
	return len(r.nodes)
}

// ElementsCount returns the number of elements recorded.
func (r *Recorder) ElementsCount() int {
	return len(r.elements)
}

// Node returns the recorded node with identifier id.
func (r *Recorder) Node(id int) (*Node, bool) {
	n, ok := r.nodes[id]
	return n, ok
}

// Element returns the recorded element with identifier id.
func (r *Recorder) Element(id int) (*Element, bool) {
	e, ok := r.elements[id]
	return e, ok
}

// Nodes returns all recorded nodes in ascending order of identifiers.
func (r *Recorder) Nodes() []*Node {
	nodes := make([]*Node, 0, len(r.nodes))
	for _, n := range r.nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes
}

// Elements returns all recorded elements in ascending order of identifiers.
func (r *Recorder) Elements() []*Element {
	elements := make([]*Element, 0, len(r.elements))
	for _, e := range r.elements {
		elements = append(elements, e)
	}
	sort.Slice(elements, func(i, j int) bool { return elements[i].ID < elements[j].ID })
	return elements
}

// NodeUsage counts for each node identifier the number of elements using it.
func (r *Recorder) NodeUsage() map[int]int {
	usage := make(map[int]int, len(r.nodes))
	for _, e := range r.elements {
		for _, id := range e.Nodes {
			usage[id]++
		}
	}
	return usage
}
