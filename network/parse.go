package network

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse sets up a network from a structure string: comma-separated sequences
// of dash-separated node identifiers. Each node identifier may be followed by
// a dot and a version number, otherwise version 1 is used. Each version gives
// a full set of path parameters.
//
// Each sequence is a single segment until it is split by another sequence
// referencing one of its interior nodes. Example:
//
//	"1-2-4-5-6,3-4.2-7,5-8"
//
// makes segments 1-2-4, 4-5, 5-6, 3-4 (ending on version 2 of node 4),
// 4-7 (starting on version 2 of node 4), and 5-8.
//
// Sequences which cannot be parsed are skipped and reported to the trace.
// Parse fails only if no segment remains.
func Parse(structure string) (*Network, error) {
	nw := newNetwork()
	for _, seq := range strings.Split(structure, ",") {
		ids, versions, err := parseSequence(seq)
		if err != nil {
			tracer().Errorf("network: skipping sequence: %v", err)
			continue
		}
		nw.addSequence(ids, versions)
	}
	if len(nw.segments) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptyNetwork, structure)
	}
	for _, s := range nw.segments {
		s.Start().out = append(s.Start().out, s)
		s.End().in = append(s.End().in, s)
	}
	nw.CheckVersions()
	nw.assignPositions()
	return nw, nil
}

func parseSequence(seq string) ([]NodeID, []int, error) {
	parts := strings.Split(strings.TrimSpace(seq), "-")
	if len(parts) < 2 {
		return nil, nil, fmt.Errorf("%w: empty or single node sequence %q", ErrInvalidSequence, seq)
	}
	ids := make([]NodeID, len(parts))
	versions := make([]int, len(parts))
	for i, part := range parts {
		idStr, verStr, hasVersion := strings.Cut(strings.TrimSpace(part), ".")
		id, err := strconv.Atoi(idStr)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %q: %v", ErrInvalidSequence, seq, err)
		}
		v := 1
		if hasVersion {
			if v, err = strconv.Atoi(verStr); err != nil || v < 1 {
				return nil, nil, fmt.Errorf("%w: %q: bad version %q", ErrInvalidSequence, seq, verStr)
			}
		}
		ids[i] = NodeID(id)
		versions[i] = v
	}
	return ids, versions, nil
}

// addSequence creates segments for a sequence of nodes, splitting existing
// segments where the sequence references one of their interior nodes.
func (nw *Network) addSequence(ids []NodeID, versions []int) {
	var seqNodes []*Node
	var seqVersions []int
	last := len(ids) - 1
	for i, id := range ids {
		node, existing := nw.Node(id)
		if existing {
			if interior := node.interior; interior != nil {
				next := interior.split(node)
				index := nw.SegmentIndex(interior) + 1
				nw.segments = append(nw.segments[:index], append([]*Segment{next}, nw.segments[index:]...)...)
			}
		} else {
			node = newNode(id)
			nw.nodes.Put(id, node)
		}
		node.defineVersion(versions[i])
		seqNodes = append(seqNodes, node)
		seqVersions = append(seqVersions, versions[i])
		if len(seqNodes) > 1 && (existing || i == last) {
			nw.segments = append(nw.segments, newSegment(seqNodes, seqVersions))
			seqNodes = []*Node{node}
			seqVersions = []int{versions[i]}
		}
	}
}
