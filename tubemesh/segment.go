package tubemesh

import (
	"fmt"
	"math"

	"github.com/npillmayer/tubenet"
	"github.com/npillmayer/tubenet/emit"
	"github.com/npillmayer/tubenet/hermite"
	"github.com/npillmayer/tubenet/network"
)

// End selects one of the two ends of a segment.
type End int

const (
	// Start is the end at the first node of a segment.
	Start End = iota
	// Finish is the end at the last node of a segment.
	Finish
)

func (e End) String() string {
	if e == Finish {
		return "finish"
	}
	return "start"
}

// Ring holds node parameters around a tube, indexed by around position.
// D3 is only set for tubes with a wall.
type Ring struct {
	X, D1, D2, D3 []tubenet.Vec3
}

func newRing(n int) Ring {
	return Ring{
		X:  make([]tubenet.Vec3, n),
		D1: make([]tubenet.Vec3, n),
		D2: make([]tubenet.Vec3, n),
		D3: make([]tubenet.Vec3, n),
	}
}

// sharedRow is an end row shared by two segments meeting at a node of
// degree 2 (or by both ends of a loop). It is created by whichever segment
// emits it first.
type sharedRow struct {
	owner   *Segment
	flip    bool // d2 of the other segment opposes the owner's
	handles [][]emit.NodeHandle
}

// Segment is the tube over one network segment.
type Segment struct {
	index  int
	seg    *network.Segment
	around int
	wall   int // elements through the wall, 0 for 2D
	layers []network.Layer
	params [][]network.PathParameters // per layer
	raw    []*RawTube                 // per layer
	// outer raw tube surface, for intersections with trim lines of neighbours
	surface *triangulatedSurface
	// set up by junctions
	trim         [2]*trimSurface
	junctionSize [2]int
	shared       [2]*sharedRow
	closed       [2]bool // end replaced by a junction rim
	fixedAlong   int
	// sampled
	elementsAlong int
	rings         [][]Ring // [n2][n3]
	handles       [][][]emit.NodeHandle
	flipped       []bool // per row: nodes owned by another segment with opposing d2
	warnings      []error
}

// newSegment sets up the tube for network segment seg and computes its raw
// tube coordinates.
func newSegment(index int, seg *network.Segment, opts Options) (*Segment, error) {
	s := &Segment{
		index:      index,
		seg:        seg,
		around:     opts.aroundCount(index),
		wall:       opts.throughWall(),
		fixedAlong: opts.FixedElementsCountAlong[index],
		layers:     []network.Layer{network.Outer},
	}
	if s.wall > 0 {
		s.layers = append(s.layers, network.Inner)
	}
	for _, layer := range s.layers {
		pp, err := seg.PathParameters(layer)
		if err != nil {
			return nil, &GeometryDegenerateError{Segment: index, Reason: "no path parameters", Err: err}
		}
		rt, err := RawTubeCoordinates(pp, s.around, opts.Radius, opts.PhaseAngle*tubenet.Deg2Rad)
		if err != nil {
			return nil, &GeometryDegenerateError{Segment: index, Reason: "raw tube " + layer.String(), Err: err}
		}
		s.params = append(s.params, pp)
		s.raw = append(s.raw, rt)
	}
	return s, nil
}

// Index is the position of the segment in the network's segment list.
func (s *Segment) Index() int {
	return s.index
}

// NetworkSegment returns the underlying network segment.
func (s *Segment) NetworkSegment() *network.Segment {
	return s.seg
}

// AroundCount is the number of elements around the tube.
func (s *Segment) AroundCount() int {
	return s.around
}

// ElementsAlong is the number of sampled elements along the tube, 0 if
// not sampled.
func (s *Segment) ElementsAlong() int {
	return s.elementsAlong
}

// RawTube returns the raw tube coordinates of the outer layer.
func (s *Segment) RawTube() *RawTube {
	return s.raw[0]
}

func (s *Segment) rawSurface() *triangulatedSurface {
	if s.surface == nil {
		s.surface = rawTubeSurface(s.raw[0])
	}
	return s.surface
}

// Rings returns the sampled coordinates, indexed [along][through wall].
func (s *Segment) Rings() [][]Ring {
	return s.rings
}

// IsTrimmed is a predicate: is end e cut by a junction trim surface?
func (s *Segment) IsTrimmed(e End) bool {
	return s.trim[e] != nil
}

func (s *Segment) endNode(e End) *network.Node {
	if e == Finish {
		return s.seg.End()
	}
	return s.seg.Start()
}

func (s *Segment) endParameters(e End) network.PathParameters {
	pp := s.params[0]
	if e == Finish {
		return pp[len(pp)-1]
	}
	return pp[0]
}

// endRow is the index of the row at end e.
func (s *Segment) endRow(e End) int {
	if e == Finish {
		return s.elementsAlong
	}
	return 0
}

// lineSampling is one longitudinal line of a layer, trimmed.
type lineSampling struct {
	curve      *hermite.Curve
	start, end *hermite.Location
	length     float64
}

// Sample resamples the raw tube to rings spaced by about targetLength,
// cutting trimmed ends at their trim surfaces.
func (s *Segment) Sample(targetLength float64) error {
	lines := make([][]lineSampling, len(s.raw))
	for l, rt := range s.raw {
		lines[l] = make([]lineSampling, s.around)
		for q := 0; q < s.around; q++ {
			x, _, d2, _ := rt.line(q)
			c, err := hermite.NewCurve(x, d2, false)
			if err != nil {
				return &GeometryDegenerateError{Segment: s.index, Reason: "tube line", Err: err}
			}
			lines[l][q].curve = c
		}
	}
	for _, e := range []End{Start, Finish} {
		if s.trim[e] != nil && !s.trimLines(lines, e) {
			w := &IntersectionNotFoundWarning{Node: s.endNode(e).ID(), Segment: s.index}
			tracer().Infof("%v", w)
			s.warnings = append(s.warnings, w)
			s.trim[e] = nil
		}
	}
	meanLengths := make([]float64, len(lines))
	for l := range lines {
		for q := range lines[l] {
			ls := &lines[l][q]
			from, to := 0.0, ls.curve.Length()
			if ls.start != nil {
				from = ls.curve.LengthTo(*ls.start)
			}
			if ls.end != nil {
				to = ls.curve.LengthTo(*ls.end)
			}
			if to-from <= tubenet.Epsilon {
				return &GeometryDegenerateError{Segment: s.index, Reason: "trimmed to zero length"}
			}
			ls.length = to - from
			meanLengths[l] += ls.length / float64(s.around)
		}
	}
	n := s.elementsCountAlong(meanLengths[0], targetLength)
	s.elementsAlong = n
	layerRings := make([][]Ring, len(lines))
	for l := range lines {
		rings := make([]Ring, n+1)
		for n2 := range rings {
			rings[n2] = newRing(s.around)
		}
		d1, d12 := s.rawColumns(l)
		for q, ls := range lines[l] {
			smp, err := ls.curve.SampleSmooth(hermite.Sampling{
				Elements:       n,
				Start:          ls.start,
				End:            ls.end,
				StartMagnitude: endMagnitude(ls, s.trim[Start] != nil, meanLengths[l], n),
				EndMagnitude:   endMagnitude(ls, s.trim[Finish] != nil, meanLengths[l], n),
			})
			if err != nil {
				return &GeometryDegenerateError{Segment: s.index, Reason: "sampling", Err: err}
			}
			sd1, _ := hermite.InterpolateSamples(d1[q], d12[q], smp)
			for n2 := 0; n2 <= n; n2++ {
				rings[n2].X[q] = smp.X[n2]
				rings[n2].D2[q] = smp.D[n2]
				rings[n2].D1[q] = sd1[n2]
			}
		}
		if s.trim[Start] != nil || s.trim[Finish] != nil {
			for n2 := range rings {
				smoothAround(&rings[n2])
			}
		}
		layerRings[l] = rings
	}
	s.rings = s.throughWall(layerRings)
	s.handles = make([][][]emit.NodeHandle, n+1)
	s.flipped = make([]bool, n+1)
	tracer().Debugf("segment %d sampled: %d elements along, %d around", s.index, n, s.around)
	return nil
}

// trimLines sets the trimmed locations at end e of all lines. Lines
// missing the trim surface are cut at the mean distance from the end of
// the others. Returns false if no outer line hits the trim surface.
func (s *Segment) trimLines(lines [][]lineSampling, e End) bool {
	for l := range lines {
		hits := make([]*hermite.Location, len(lines[l]))
		sumFraction, count := 0.0, 0
		for q := range lines[l] {
			c := lines[l][q].curve
			hit, ok := intersectCurve(c, s.trim[e], e == Finish)
			if !ok {
				continue
			}
			loc := hit.loc
			hits[q] = &loc
			fraction := c.LengthTo(loc) / c.Length()
			if e == Finish {
				fraction = 1 - fraction
			}
			sumFraction += fraction
			count++
		}
		if count == 0 {
			if l == 0 {
				return false
			}
			tracer().Infof("segment %d: %s layer misses trim surface at %s", s.index, s.layers[l], e)
			continue
		}
		meanFraction := sumFraction / float64(count)
		for q := range lines[l] {
			loc := hits[q]
			if loc == nil {
				c := lines[l][q].curve
				at := c.LocationAtLength(meanFraction * c.Length())
				if e == Finish {
					at = c.LocationAtLength((1 - meanFraction) * c.Length())
				}
				loc = &at
			}
			if e == Finish {
				lines[l][q].end = loc
			} else {
				lines[l][q].start = loc
			}
		}
	}
	return true
}

// elementsCountAlong determines the number of elements along from the
// mean outer line length.
func (s *Segment) elementsCountAlong(meanLength, targetLength float64) int {
	minimum := 1
	if s.junctionSize[Start] > 2 || s.junctionSize[Finish] > 2 {
		minimum = 2
	}
	if s.seg.IsLoop() {
		minimum = 3
	}
	if s.fixedAlong > 0 {
		return max(minimum, s.fixedAlong)
	}
	// fudge factor so lengths of whole multiples of the target don't go one higher
	return max(minimum, int(math.Ceil(meanLength*0.9999/targetLength)))
}

// endMagnitude is the derivative magnitude per element at a line end. At
// trimmed ends, element sizes are blended towards the mean spacing.
func endMagnitude(ls lineSampling, trimmed bool, meanLength float64, n int) float64 {
	if !trimmed {
		return ls.length / float64(n)
	}
	m := 0.5 * (ls.length + meanLength)
	m = math.Max(0.1*ls.length, math.Min(2.0*ls.length, m))
	return m / float64(n)
}

// rawColumns returns the around derivatives of layer l and their rates of
// change along, per line [around][along].
func (s *Segment) rawColumns(l int) (d1, d12 [][]tubenet.Vec3) {
	rt := s.raw[l]
	for q := 0; q < s.around; q++ {
		_, cd1, _, cd12 := rt.line(q)
		d1, d12 = append(d1, cd1), append(d12, cd12)
	}
	return
}

// smoothAround smooths the around derivatives of a ring after trimming,
// keeping them in the tube surface.
func smoothAround(r *Ring) {
	d1 := hermite.SmoothLoop(r.X, r.D1, false, hermite.ArithmeticMean)
	for q := range d1 {
		normal := r.D1[q].Cross(r.D2[q]).Normalized()
		d1[q] = d1[q].Rejection(normal)
	}
	r.D1 = hermite.SmoothLoop(r.X, d1, true, hermite.ArithmeticMean)
}

// throughWall arranges layer rings into rings through the wall, indexed
// [along][n3] with n3 = 0 on the inner layer. 2D tubes have the outer
// layer only.
func (s *Segment) throughWall(layerRings [][]Ring) [][]Ring {
	outer := layerRings[0]
	rings := make([][]Ring, len(outer))
	if s.wall == 0 {
		for n2 := range outer {
			rings[n2] = []Ring{outer[n2]}
		}
		return rings
	}
	inner := layerRings[1]
	w := float64(s.wall)
	for n2 := range outer {
		o, in := outer[n2], inner[n2]
		d3 := make([]tubenet.Vec3, s.around)
		for q := range d3 {
			d3[q] = o.X[q].Sub(in.X[q]).Scaled(1 / w)
		}
		rings[n2] = make([]Ring, s.wall+1)
		for n3 := 0; n3 <= s.wall; n3++ {
			f := float64(n3) / w
			r := newRing(s.around)
			for q := 0; q < s.around; q++ {
				r.X[q] = in.X[q].Lerp(o.X[q], f)
				r.D1[q] = in.D1[q].Lerp(o.D1[q], f)
				r.D2[q] = in.D2[q].Lerp(o.D2[q], f)
				r.D3[q] = d3[q]
			}
			rings[n2][n3] = r
		}
	}
	return rings
}

// BlendSampledCoordinates joins end aEnd of segment a with end bEnd of
// segment b at a node of degree 2: along derivatives of the abutting end
// rings get the harmonic mean of their magnitudes, and the rings are
// emitted once for both segments. Blending is idempotent and does not
// depend on argument order.
func BlendSampledCoordinates(a *Segment, aEnd End, b *Segment, bEnd End) error {
	if a.around != b.around || a.wall != b.wall {
		return &ConfigurationError{
			Node:         a.endNode(aEnd).ID(),
			Segments:     []int{a.index, b.index},
			AroundCounts: []int{a.around, b.around},
			Reason:       "tubes joined end to end must match around and through wall",
		}
	}
	ra, rb := a.rings[a.endRow(aEnd)], b.rings[b.endRow(bEnd)]
	for n3 := range ra {
		for q := 0; q < a.around; q++ {
			mag := tubenet.HarmonicMean(ra[n3].D2[q].Norm(), rb[n3].D2[q].Norm())
			ra[n3].D2[q] = ra[n3].D2[q].WithMagnitude(mag)
			rb[n3].D2[q] = rb[n3].D2[q].WithMagnitude(mag)
		}
	}
	if a.shared[aEnd] == nil && b.shared[bEnd] == nil {
		row := &sharedRow{owner: a, flip: aEnd == bEnd}
		if b.index < a.index {
			row.owner = b
		}
		a.shared[aEnd], b.shared[bEnd] = row, row
	}
	return nil
}

// ensureRow creates the nodes of row n2 unless they exist already.
func (s *Segment) ensureRow(ids *identifiers, n2 int) ([][]emit.NodeHandle, error) {
	if s.handles[n2] != nil {
		return s.handles[n2], nil
	}
	var share *sharedRow
	if n2 == 0 {
		share = s.shared[Start]
	} else if n2 == s.elementsAlong {
		share = s.shared[Finish]
	}
	if share != nil && share.handles != nil {
		s.handles[n2] = share.handles
		s.flipped[n2] = share.flip && share.owner != s
		return share.handles, nil
	}
	rows := make([][]emit.NodeHandle, len(s.rings[n2]))
	for n3, r := range s.rings[n2] {
		rows[n3] = make([]emit.NodeHandle, s.around)
		for q := 0; q < s.around; q++ {
			h, err := ids.createNode(emit.NodeParameters{
				X: r.X[q], D1: r.D1[q], D2: r.D2[q], D3: r.D3[q], HasD3: s.wall > 0,
			})
			if err != nil {
				return nil, err
			}
			rows[n3][q] = h
		}
	}
	s.handles[n2] = rows
	if share != nil {
		share.handles = rows
		s.flipped[n2] = share.flip && share.owner != s
	}
	return rows, nil
}

// GenerateMesh emits the rows and elements the segment owns. Ends closed
// by a junction rim are left to the junction; rows shared with another
// segment reuse existing nodes.
func (s *Segment) GenerateMesh(ids *identifiers) error {
	if s.rings == nil {
		return fmt.Errorf("%w: segment %d is not sampled", ErrGeometryDegenerate, s.index)
	}
	lo, hi := 0, s.elementsAlong
	if s.closed[Start] {
		lo = 1
	}
	if s.closed[Finish] {
		hi = s.elementsAlong - 1
	}
	for n2 := lo; n2 <= hi; n2++ {
		if _, err := s.ensureRow(ids, n2); err != nil {
			return err
		}
	}
	for n2 := lo; n2 < hi; n2++ {
		if err := s.emitBand(ids, s.handles[n2], s.handles[n2+1],
			s.rowLayouts(n2, s.around), s.rowLayouts(n2+1, s.around)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Segment) rowLayouts(n2, count int) []emit.NodeLayout {
	layouts := make([]emit.NodeLayout, count)
	if s.flipped[n2] {
		for i := range layouts {
			layouts[i] = emit.FlipD2
		}
	}
	return layouts
}

// emitBand creates one ring of elements between rows lo and hi, both
// indexed [n3][around]. The around count is taken from lo.
func (s *Segment) emitBand(ids *identifiers, lo, hi [][]emit.NodeHandle, loLayouts, hiLayouts []emit.NodeLayout) error {
	count := len(lo[0])
	layers := max(1, s.wall)
	for n3 := 0; n3 < layers; n3++ {
		for q := 0; q < count; q++ {
			qn := (q + 1) % count
			nodes := []emit.NodeHandle{lo[n3][q], lo[n3][qn], hi[n3][q], hi[n3][qn]}
			layouts := []emit.NodeLayout{loLayouts[q], loLayouts[qn], hiLayouts[q], hiLayouts[qn]}
			if s.wall > 0 {
				nodes = append(nodes, lo[n3+1][q], lo[n3+1][qn], hi[n3+1][q], hi[n3+1][qn])
				layouts = append(layouts, loLayouts[q], loLayouts[qn], hiLayouts[q], hiLayouts[qn])
			}
			if _, err := ids.createElement(nodes, layouts); err != nil {
				return err
			}
		}
	}
	return nil
}
