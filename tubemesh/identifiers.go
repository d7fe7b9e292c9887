package tubemesh

import (
	"github.com/npillmayer/tubenet/emit"
)

// identifiers hands out node and element identifiers for one generation
// run, in increasing order, and forwards creation to the emitter.
type identifiers struct {
	emitter     emit.Emitter
	nextNode    int
	nextElement int
	nodes       int
	elements    int
}

func newIdentifiers(e emit.Emitter, firstNode, firstElement int) *identifiers {
	return &identifiers{emitter: e, nextNode: firstNode, nextElement: firstElement}
}

func (ids *identifiers) createNode(p emit.NodeParameters) (emit.NodeHandle, error) {
	h, err := ids.emitter.CreateNode(ids.nextNode, p)
	if err != nil {
		return nil, err
	}
	ids.nextNode++
	ids.nodes++
	return h, nil
}

func (ids *identifiers) createElement(nodes []emit.NodeHandle, layouts []emit.NodeLayout) (emit.ElementHandle, error) {
	h, err := ids.emitter.CreateElement(ids.nextElement, nodes, layouts)
	if err != nil {
		return nil, err
	}
	ids.nextElement++
	ids.elements++
	return h, nil
}
