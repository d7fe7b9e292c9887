package tubemesh

import (
	"errors"
	"fmt"

	"github.com/npillmayer/tubenet"
	"github.com/npillmayer/tubenet/emit"
	"github.com/npillmayer/tubenet/hermite"
	"github.com/npillmayer/tubenet/network"
)

// Result summarizes a generation run.
type Result struct {
	NodesCount    int
	ElementsCount int
	Failures      []error // segments and junctions left out or left open
	Warnings      []error // recovered problems
}

// Builder generates the mesh of a network.
type Builder struct {
	nw        *network.Network
	opts      Options
	segments  []*Segment // per network segment, nil if degenerate
	junctions []*Junction
	result    *Result
}

// NewBuilder creates a builder for network nw. Options are validated.
func NewBuilder(nw *network.Network, opts Options) (*Builder, error) {
	if nw == nil || len(nw.Segments()) == 0 {
		return nil, network.ErrEmptyNetwork
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Builder{nw: nw, opts: opts}, nil
}

// Segments returns the tube segments of the last run, in network order.
// Degenerate segments are nil.
func (b *Builder) Segments() []*Segment {
	return b.segments
}

// Junctions returns the junctions of the last run, in node order.
func (b *Builder) Junctions() []*Junction {
	return b.junctions
}

func (b *Builder) fail(err error) {
	tracer().Errorf("%v", err)
	b.result.Failures = append(b.result.Failures, err)
}

// Generate runs both generation passes and emits the mesh to e. Failures
// of single segments or junctions are collected in the result; an error is
// returned only if the emitter fails.
func (b *Builder) Generate(e emit.Emitter) (*Result, error) {
	b.result = &Result{}
	b.setup()
	target := b.targetElementLength()
	tracer().Infof("tube mesh: %d segments, %d junctions, target element length %g",
		len(b.segments), len(b.junctions), target)
	// pass 1: trim surfaces from raw tubes
	for _, j := range b.junctions {
		if j.SegmentsCount() < 3 {
			continue
		}
		if err := j.prepare(); err != nil {
			b.fail(err)
			continue
		}
		b.result.Warnings = append(b.result.Warnings, j.computeTrimSurfaces(b.opts)...)
	}
	// pass 2: sample, join and emit
	for i, s := range b.segments {
		if s == nil {
			continue
		}
		if err := s.Sample(target); err != nil {
			b.fail(err)
			b.segments[i] = nil
			s.rings = nil
		}
		b.result.Warnings = append(b.result.Warnings, s.warnings...)
	}
	for _, j := range b.junctions {
		if j.failed || !j.sampled() {
			continue
		}
		if j.SegmentsCount() == 2 {
			a, z := j.slots[0], j.slots[1]
			if err := BlendSampledCoordinates(a.seg, a.end(), z.seg, z.end()); err != nil {
				j.failed = true
				b.fail(err)
			}
			continue
		}
		j.resolve(b.opts)
	}
	ids := newIdentifiers(e, b.opts.FirstNodeID, b.opts.FirstElementID)
	for _, j := range b.junctions {
		if !j.resolved {
			continue
		}
		if err := j.generateMesh(ids); err != nil {
			return b.result, fmt.Errorf("junction %d: %w", j.node.ID(), err)
		}
	}
	for _, s := range b.segments {
		if s == nil {
			continue
		}
		if err := s.GenerateMesh(ids); err != nil {
			return b.result, fmt.Errorf("segment %d: %w", s.index, err)
		}
	}
	b.result.NodesCount, b.result.ElementsCount = ids.nodes, ids.elements
	tracer().Infof("tube mesh: %d nodes, %d elements, %d failures, %d warnings",
		ids.nodes, ids.elements, len(b.result.Failures), len(b.result.Warnings))
	return b.result, nil
}

// setup creates the tubes with their raw coordinates and the junctions.
// Degenerate segments are left out of their junctions.
func (b *Builder) setup() {
	b.segments = make([]*Segment, len(b.nw.Segments()))
	index := make(map[*network.Segment]*Segment)
	for i, ns := range b.nw.Segments() {
		s, err := newSegment(i, ns, b.opts)
		if err != nil {
			b.fail(err)
			continue
		}
		b.segments[i] = s
		index[ns] = s
	}
	b.junctions = nil
	for _, node := range b.nw.Nodes() {
		var slots []slot
		for _, ns := range node.InSegments() {
			if s := index[ns]; s != nil {
				slots = append(slots, slot{seg: s, in: true})
			}
		}
		for _, ns := range node.OutSegments() {
			if s := index[ns]; s != nil {
				slots = append(slots, slot{seg: s, in: false})
			}
		}
		if len(slots) < 2 {
			continue
		}
		b.junctions = append(b.junctions, newJunction(node, slots))
	}
}

// targetElementLength is the configured target length, or the length of
// the longest path divided by the element density along it.
func (b *Builder) targetElementLength() float64 {
	if b.opts.TargetElementLength > 0 {
		return b.opts.TargetElementLength
	}
	longest := 0.0
	for _, s := range b.segments {
		if s == nil {
			continue
		}
		pp := s.params[0]
		x, d := make([]tubenet.Vec3, len(pp)), make([]tubenet.Vec3, len(pp))
		for i, p := range pp {
			x[i], d[i] = p.X, p.D1
		}
		c, err := hermite.NewCurve(x, d, false)
		if err != nil {
			continue
		}
		longest = max(longest, c.Length())
	}
	if longest == 0 {
		return 1.0
	}
	return longest / b.opts.ElementDensityAlongLongestSegment
}

// sampled is a predicate: are all tubes at the junction sampled?
func (j *Junction) sampled() bool {
	for _, sl := range j.slots {
		if sl.seg.rings == nil {
			return false
		}
	}
	return true
}

// IsConfigurationError is a predicate: is err a junction configuration error?
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
