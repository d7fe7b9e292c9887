package tubemesh

import (
	"errors"
	"fmt"

	"github.com/npillmayer/tubenet/network"
)

var (
	// ErrConfiguration indicates a junction whose segments' element counts
	// around cannot be connected.
	ErrConfiguration = errors.New("invalid junction configuration")
	// ErrGeometryDegenerate indicates a segment without usable geometry.
	ErrGeometryDegenerate = errors.New("degenerate segment geometry")
	// ErrIntersectionNotFound indicates a trim surface search without result.
	ErrIntersectionNotFound = errors.New("no trim surface intersection found")
)

// ConfigurationError is a failure of a single junction. The segments at
// the junction are left with open ends.
type ConfigurationError struct {
	Node         network.NodeID
	Segments     []int // segment indexes at the junction
	AroundCounts []int // elements around per segment
	Reason       string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%v at node %d: segments %v with elements around %v: %s",
		ErrConfiguration, e.Node, e.Segments, e.AroundCounts, e.Reason)
}

// Unwrap returns ErrConfiguration.
func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// GeometryDegenerateError is a failure of a single segment, which is left
// out of the mesh.
type GeometryDegenerateError struct {
	Segment int
	Reason  string
	Err     error // underlying cause, may be nil
}

func (e *GeometryDegenerateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v: segment %d: %s: %v", ErrGeometryDegenerate, e.Segment, e.Reason, e.Err)
	}
	return fmt.Sprintf("%v: segment %d: %s", ErrGeometryDegenerate, e.Segment, e.Reason)
}

// Unwrap returns ErrGeometryDegenerate and the underlying cause.
func (e *GeometryDegenerateError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrGeometryDegenerate, e.Err}
	}
	return []error{ErrGeometryDegenerate}
}

// IntersectionNotFoundWarning reports a segment end which could not be
// trimmed at a junction. The end is meshed untrimmed.
type IntersectionNotFoundWarning struct {
	Node    network.NodeID
	Segment int
}

func (w *IntersectionNotFoundWarning) Error() string {
	return fmt.Sprintf("%v: segment %d at node %d, using untrimmed end", ErrIntersectionNotFound, w.Segment, w.Node)
}

// Unwrap returns ErrIntersectionNotFound.
func (w *IntersectionNotFoundWarning) Unwrap() error {
	return ErrIntersectionNotFound
}
