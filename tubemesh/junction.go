package tubemesh

import (
	"fmt"
	"math"
	"sort"

	"github.com/npillmayer/tubenet"
	"github.com/npillmayer/tubenet/emit"
	"github.com/npillmayer/tubenet/hermite"
	"github.com/npillmayer/tubenet/network"
)

// slot is a segment end at a junction.
type slot struct {
	seg *Segment
	in  bool // the segment ends at the junction node
}

func (sl slot) end() End {
	if sl.in {
		return Finish
	}
	return Start
}

// outDir is the unit direction of the path leaving the junction.
func (sl slot) outDir() tubenet.Vec3 {
	d := sl.seg.endParameters(sl.end()).D1.Normalized()
	if sl.in {
		return d.Neg()
	}
	return d
}

// bridgeRow is the row of the segment next to the junction rim.
func (sl slot) bridgeRow() int {
	if sl.in {
		return sl.seg.elementsAlong - 1
	}
	return 1
}

// Junction is a network node where 2 or more segments meet.
//
// Junctions of 2 segments blend and share the abutting end rows. Junctions
// of 3 or 4 segments trim the tubes against each other and insert a rim of
// nodes, each shared by 2 or more tubes, bridged to the tubes by one ring
// of elements per tube.
type Junction struct {
	node  *network.Node
	slots []slot
	// set for 3 or 4 slots
	normal    tubenet.Vec3 // junction normal, "top"
	sequence  []int        // slot indexes in cyclic order around normal
	connCount []int        // elements connecting sequence i and i+1
	through   int          // 4-way: elements across top and bottom
	rim       *rimTopology
	steps     []int // per sequence position: around step for rim position increments
	offsets   []int // per sequence position: around index of rim position 0
	rimRings  []Ring
	rimNodes  [][]emit.NodeHandle // [n3][rim index]
	failed    bool
	resolved  bool
}

func newJunction(node *network.Node, slots []slot) *Junction {
	j := &Junction{node: node, slots: slots}
	for _, sl := range slots {
		sl.seg.junctionSize[sl.end()] = len(slots)
	}
	return j
}

// Node returns the network node of the junction.
func (j *Junction) Node() *network.Node {
	return j.node
}

// SegmentsCount is the number of segment ends at the junction.
func (j *Junction) SegmentsCount() int {
	return len(j.slots)
}

// Segments returns the segments at the junction and whether they end at
// the junction node (in) or start there.
func (j *Junction) Segments() ([]*Segment, []bool) {
	segs, ins := make([]*Segment, len(j.slots)), make([]bool, len(j.slots))
	for i, sl := range j.slots {
		segs[i], ins[i] = sl.seg, sl.in
	}
	return segs, ins
}

// Sequence returns slot indexes in cyclic order around the junction.
func (j *Junction) Sequence() []int {
	return j.sequence
}

// ConnectionCounts returns the number of elements directly connecting
// tubes adjacent in Sequence, and for 4 tubes the number of elements
// connecting opposite tubes across the top (and bottom).
func (j *Junction) ConnectionCounts() ([]int, int) {
	return j.connCount, j.through
}

// RimIndexCount is the number of distinct rim points, 0 if the junction
// has no rim.
func (j *Junction) RimIndexCount() int {
	if j.rim == nil {
		return 0
	}
	return len(j.rim.contributors)
}

// RimCoordinates returns the rim points per layer through the wall.
func (j *Junction) RimCoordinates() []Ring {
	return j.rimRings
}

// RimNodeIDs returns the identifiers of the rim nodes created for layer n3.
func (j *Junction) RimNodeIDs(n3 int) []int {
	if n3 >= len(j.rimNodes) {
		return nil
	}
	ids := make([]int, 0, len(j.rimNodes[n3]))
	for _, h := range j.rimNodes[n3] {
		if h != nil {
			ids = append(ids, h.NodeID())
		}
	}
	return ids
}

// IsResolved is a predicate: has the junction got a rim?
func (j *Junction) IsResolved() bool {
	return j.resolved
}

func (j *Junction) configurationError(reason string) *ConfigurationError {
	err := &ConfigurationError{Node: j.node.ID(), Reason: reason}
	for _, sl := range j.slots {
		err.Segments = append(err.Segments, sl.seg.index)
		err.AroundCounts = append(err.AroundCounts, sl.seg.around)
	}
	return err
}

// prepare determines sequence, connection counts and rim topology for
// junctions of 3 or 4 segments. It needs only raw tubes.
func (j *Junction) prepare() error {
	n := len(j.slots)
	if n > 4 {
		j.failed = true
		return j.configurationError(fmt.Sprintf("%d segments, at most 4 supported", n))
	}
	j.determineSequence()
	counts := j.sequenceCounts()
	if n == 4 && counts[1]+counts[3] > counts[0]+counts[2] {
		// opposite tubes with more elements around go through at positions 0, 2
		j.sequence = append(j.sequence[1:], j.sequence[0])
		counts = j.sequenceCounts()
	}
	k, h, err := connectionCounts(counts)
	if err != nil {
		j.failed = true
		return j.configurationError(err.Error())
	}
	j.connCount, j.through = k, h
	j.rim = canonicalRim(counts, k, h)
	tracer().Debugf("junction %d: sequence %v, connections %v through %d, %d rim points",
		j.node.ID(), j.sequence, k, h, len(j.rim.contributors))
	return nil
}

func (j *Junction) sequenceCounts() []int {
	counts := make([]int, len(j.sequence))
	for i, s := range j.sequence {
		counts[i] = j.slots[s].seg.around
	}
	return counts
}

// determineSequence orders the slots counter-clockwise around the junction
// normal, starting with slot 0. The normal is oriented by the d3 director
// of slot 0.
func (j *Junction) determineSequence() {
	out := make([]tubenet.Vec3, len(j.slots))
	for i, sl := range j.slots {
		out[i] = sl.outDir()
	}
	var normal tubenet.Vec3
	for s := 1; s < len(out); s++ {
		if out[0].Dot(out[s]) > -0.9 {
			normal = out[0].Cross(out[s])
			break
		}
	}
	d3 := j.slots[0].seg.endParameters(j.slots[0].end()).D3
	if normal.IsZero() {
		normal = d3
	} else if normal.Dot(d3) < 0 {
		normal = normal.Neg()
	}
	frame := tubenet.NewFrame(normal, out[0])
	j.normal = frame.Normal
	angles := make([]float64, len(out))
	for s := 1; s < len(out); s++ {
		angles[s] = tubenet.NormalizeAngle(frame.Angle(out[s]))
	}
	j.sequence = make([]int, len(out))
	for s := range j.sequence {
		j.sequence[s] = s
	}
	rest := j.sequence[1:]
	sort.SliceStable(rest, func(a, b int) bool {
		return angles[rest[a]] < angles[rest[b]]
	})
}

// computeTrimSurfaces computes a trim surface for every slot from the raw
// tubes. Slots without intersections get no trim surface and a warning.
func (j *Junction) computeTrimSurfaces(opts Options) []error {
	var warnings []error
	caps := make([]*endCap, len(j.slots))
	for i, sl := range j.slots {
		pp := sl.seg.endParameters(sl.end())
		rt := sl.seg.raw[0]
		row := 0
		if sl.in {
			row = rt.AlongCount() - 1
		}
		caps[i] = newEndCap(pp.X, pp.D2.Cross(pp.D3), rt.X[row], rt.D1[row])
	}
	for i, sl := range j.slots {
		ts, err := j.computeTrimSurface(i, caps, opts)
		if err != nil {
			tracer().Errorf("junction %d, segment %d: %v", j.node.ID(), sl.seg.index, err)
		}
		if ts == nil {
			w := &IntersectionNotFoundWarning{Node: j.node.ID(), Segment: sl.seg.index}
			tracer().Infof("%v", w)
			warnings = append(warnings, w)
			continue
		}
		sl.seg.trim[sl.end()] = ts
	}
	return warnings
}

const trimPointsAround = 6

// computeTrimSurface intersects 6 longitudinal lines of slot s's raw tube with the
// other tubes and their end caps. The lines start at a phase towards the
// neighbour most in line with s. The trim surface is a band through the
// intersection points, radiating from the path centre.
func (j *Junction) computeTrimSurface(s int, caps []*endCap, opts Options) (*trimSurface, error) {
	sl := j.slots[s]
	pp := sl.seg.params[0]
	endIndex := 0
	if sl.in {
		endIndex = len(pp) - 1
	}
	d2End, d3End := pp[endIndex].D2, pp[endIndex].D3
	endNormal := d2End.Cross(d3End).Normalized()
	sOut := sl.outDir()
	trimAngle := 2 * math.Pi / trimPointsAround
	var angles, weights []float64
	sumWeights, maxWeight, phase := 0.0, 0.0, 0.0
	for os, osl := range j.slots {
		if os == s {
			continue
		}
		osOut := osl.outDir()
		dx, dy := osOut.Dot(d2End), osOut.Dot(d3End)
		angle, weight := 0.0, 0.0
		if dx != 0 || dy != 0 {
			angle = tubenet.NormalizeAngle(math.Atan2(dy, dx))
			weight = math.Pi - tubenet.AngleBetween(sOut, osOut)
			if weight > maxWeight {
				maxWeight, phase = weight, angle
			}
			sumWeights += weight
		}
		angles = append(angles, angle)
		weights = append(weights, weight)
	}
	if sumWeights > 0 {
		delta := 0.0
		for i, a := range angles {
			a = tubenet.NormalizeAngle(a - phase)
			nearest := math.Floor(a/trimAngle+0.5) * trimAngle
			delta += weights[i] * (nearest - a)
		}
		phase -= delta / sumWeights
	}
	lt, err := RawTubeCoordinates(pp, trimPointsAround, opts.Radius, phase)
	if err != nil {
		return nil, err
	}
	along := lt.AlongCount()
	rx := make([]tubenet.Vec3, trimPointsAround)
	rd1 := make([]tubenet.Vec3, trimPointsAround)
	trimmed := false
	lowestMaxProportion := 1.0
	for n1 := 0; n1 < trimPointsAround; n1++ {
		cx, cd1, cd2, cd12 := lt.line(n1)
		curve, err := hermite.NewCurve(cx, cd2, false)
		if err != nil {
			return nil, err
		}
		x, d1 := cx[endIndex], cd1[endIndex]
		maxProportion := 0.0
		for os, osl := range j.slots {
			if os == s {
				continue
			}
			hit, ok := intersectCurve(curve, osl.seg.rawSurface(), sl.in)
			if !ok {
				hit, ok = intersectCurve(curve, caps[os], sl.in)
			}
			if !ok {
				continue
			}
			proportion := (float64(hit.loc.Element) + hit.loc.Xi) / float64(along-1)
			if sl.in {
				proportion = 1 - proportion
			}
			if proportion > maxProportion {
				trimmed = true
				var d2 tubenet.Vec3
				x, d2 = curve.Evaluate(hit.loc)
				e := hit.loc.Element
				d1 = hermite.Interpolate(cd1[e], cd12[e], cd1[e+1], cd12[e+1], hit.loc.Xi)
				d1 = d1.Cross(d2).Cross(hit.normal)
				maxProportion = proportion
			}
		}
		lowestMaxProportion = math.Min(lowestMaxProportion, maxProportion)
		rx[n1], rd1[n1] = x, d1
	}
	if !trimmed {
		return nil, nil
	}
	centre := pp[endIndex].X
	if lowestMaxProportion > 0 {
		proportion := lowestMaxProportion
		if sl.in {
			proportion = 1 - proportion
		}
		ep := proportion * float64(along-1)
		e := min(int(ep), along-2)
		centre = hermite.Interpolate(pp[e].X, pp[e].D1, pp[e+1].X, pp[e+1].D1, ep-float64(e))
	}
	for n1 := range rd1 {
		if endNormal.Dot(rx[n1].Sub(centre).Cross(rd1[n1])) < 0 {
			rd1[n1] = rd1[n1].Neg()
		}
	}
	rd1 = hermite.SmoothLoop(rx, rd1, true, hermite.HarmonicMean)
	tracer().Debugf("junction %d, segment %d: trim surface at proportion %g from end",
		j.node.ID(), sl.seg.index, lowestMaxProportion)
	return newTrimSurface(centre, rx, rd1), nil
}

// trimSurface is a band around a junction through the points where a tube
// meets its neighbours.
type trimSurface struct {
	*triangulatedSurface
	centre tubenet.Vec3
}

// Radial extent of a trim surface band, relative to the intersection points.
var trimWidthFactors = [2]float64{0.25, 1.75}

func newTrimSurface(centre tubenet.Vec3, x, d1 []tubenet.Vec3) *trimSurface {
	ring := refineRing(x, d1)
	grid := make([][]tubenet.Vec3, len(trimWidthFactors))
	for i, f := range trimWidthFactors {
		grid[i] = make([]tubenet.Vec3, len(ring))
		for q, p := range ring {
			grid[i][q] = centre.AddScaled(f, p.Sub(centre))
		}
	}
	band := trimBand{centre: centre, x: x, d1: d1}
	return &trimSurface{
		triangulatedSurface: gridSurface(grid, trimWidthFactors[:], band, true),
		centre:              centre,
	}
}

// trimBand is the smooth trim surface: the loop through x scaled by f
// about the centre. s runs around the loop in elements.
type trimBand struct {
	centre tubenet.Vec3
	x, d1  []tubenet.Vec3
}

func (b trimBand) eval(s, f float64) (x, ds, df tubenet.Vec3) {
	n := len(b.x)
	q0 := math.Floor(s)
	xi := s - q0
	q := (int(q0)%n + n) % n
	qn := (q + 1) % n
	r := hermite.Interpolate(b.x[q], b.d1[q], b.x[qn], b.d1[qn], xi)
	dr := hermite.InterpolateDerivative(b.x[q], b.d1[q], b.x[qn], b.d1[qn], xi)
	rel := r.Sub(b.centre)
	return b.centre.AddScaled(f, rel), dr.Scaled(f), rel
}

// resolve aligns the tubes and computes the rim. All tubes at the junction
// must be sampled.
func (j *Junction) resolve(opts Options) {
	j.align(opts.AlignmentSearchLimit)
	j.computeRimCoordinates()
	for _, sl := range j.slots {
		sl.seg.closed[sl.end()] = true
	}
	j.resolved = true
}

// createRimNode creates the node for rim index r in layer n3. Creating a
// rim node twice is a programming error.
func (j *Junction) createRimNode(ids *identifiers, n3, r int) error {
	if j.rimNodes[n3][r] != nil {
		panic(fmt.Sprintf("tubemesh: junction %d: rim node %d/%d created twice", j.node.ID(), n3, r))
	}
	ring := j.rimRings[n3]
	h, err := ids.createNode(emit.NodeParameters{
		X: ring.X[r], D1: ring.D1[r], D2: ring.D2[r], D3: ring.D3[r], HasD3: len(j.rimRings) > 1,
	})
	if err != nil {
		return err
	}
	j.rimNodes[n3][r] = h
	return nil
}

// generateMesh emits the rim nodes and the elements bridging every tube's
// row next to the junction with the rim. Bridging rows are created here if
// their segment has not done so yet.
func (j *Junction) generateMesh(ids *identifiers) error {
	rows := make([][][]emit.NodeHandle, len(j.sequence))
	for pos, s := range j.sequence {
		sl := j.slots[s]
		h, err := sl.seg.ensureRow(ids, sl.bridgeRow())
		if err != nil {
			return err
		}
		rows[pos] = h
	}
	layers := len(j.rimRings)
	j.rimNodes = make([][]emit.NodeHandle, layers)
	for n3 := 0; n3 < layers; n3++ {
		j.rimNodes[n3] = make([]emit.NodeHandle, len(j.rim.contributors))
		for r := range j.rim.contributors {
			if err := j.createRimNode(ids, n3, r); err != nil {
				return err
			}
		}
	}
	for pos, s := range j.sequence {
		sl := j.slots[s]
		c := sl.seg.around
		rimRow := make([][]emit.NodeHandle, layers)
		for n3 := range rimRow {
			rimRow[n3] = make([]emit.NodeHandle, c)
		}
		rimLayouts := make([]emit.NodeLayout, c)
		for q := 0; q < c; q++ {
			r := j.rim.index[pos][j.rimPosition(pos, q)]
			for n3 := range rimRow {
				rimRow[n3][q] = j.rimNodes[n3][r]
			}
			rimLayouts[q] = emit.LayoutForCount(len(j.rim.contributors[r]))
		}
		segLayouts := sl.seg.rowLayouts(sl.bridgeRow(), c)
		var err error
		if sl.in {
			err = sl.seg.emitBand(ids, rows[pos], rimRow, segLayouts, rimLayouts)
		} else {
			err = sl.seg.emitBand(ids, rimRow, rows[pos], rimLayouts, segLayouts)
		}
		if err != nil {
			return err
		}
	}
	tracer().Debugf("junction %d: %d rim nodes per layer", j.node.ID(), len(j.rim.contributors))
	return nil
}
