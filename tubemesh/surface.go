package tubemesh

import (
	"math"

	polyclip "github.com/akavel/polyclip-go"
	"github.com/npillmayer/tubenet"
	"github.com/npillmayer/tubenet/hermite"
)

// Subdivisions of raw tube elements when building intersection surfaces.
const (
	surfaceStepsAlong  = 8
	surfaceStepsAround = 4
	curveStepsAlong    = 16
)

// Newton refinement of facet hits.
const (
	refineIterations = 20
	refineTolerance  = 1e-12 // relative to the size of the surface
)

// triangle is a facet of a surface. sa, sb and sc are the surface
// parameters of its corners.
type triangle struct {
	a, b, c    tubenet.Vec3
	sa, sb, sc [2]float64
}

func (t triangle) normal() tubenet.Vec3 {
	return t.b.Sub(t.a).Cross(t.c.Sub(t.a))
}

// intersectSegment returns the parameter w ∈ [0,1] along p→q where the
// segment hits the triangle (Möller–Trumbore), together with the surface
// parameters at the hit.
func (t triangle) intersectSegment(p, q tubenet.Vec3) (float64, [2]float64, bool) {
	var st [2]float64
	dir := q.Sub(p)
	e1, e2 := t.b.Sub(t.a), t.c.Sub(t.a)
	h := dir.Cross(e2)
	det := e1.Dot(h)
	if math.Abs(det) < 1e-14 {
		return 0, st, false
	}
	f := 1 / det
	s := p.Sub(t.a)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, st, false
	}
	k := s.Cross(e1)
	v := f * dir.Dot(k)
	if v < 0 || u+v > 1 {
		return 0, st, false
	}
	w := f * e2.Dot(k)
	if w < 0 || w > 1 {
		return 0, st, false
	}
	for i := range st {
		st[i] = (1-u-v)*t.sa[i] + u*t.sb[i] + v*t.sc[i]
	}
	return w, st, true
}

// facetHit is a crossing of a polyline segment with a facet.
type facetHit struct {
	u      float64 // along the polyline segment
	st     [2]float64
	normal tubenet.Vec3
}

// surfaceHit is an intersection of a curve with a surface.
type surfaceHit struct {
	loc    hermite.Location
	x      tubenet.Vec3
	normal tubenet.Vec3 // normal of the surface hit, not normalized
}

// surface is anything a curve polyline can be intersected with. Facet
// hits are refined against the smooth surface the facets approximate.
type surface interface {
	intersect(p, q tubenet.Vec3) (facetHit, bool)
	refine(c *hermite.Curve, loc hermite.Location, h facetHit) (surfaceHit, bool)
}

// patch is a smooth parametric surface.
type patch interface {
	eval(s, t float64) (x, ds, dt tubenet.Vec3)
}

// triangulatedSurface approximates a patch by triangles.
type triangulatedSurface struct {
	triangles []triangle
	patch     patch
	lo, hi    tubenet.Vec3 // bounding box
}

func newTriangulatedSurface(tris []triangle, p patch) *triangulatedSurface {
	s := &triangulatedSurface{triangles: tris, patch: p}
	inf := math.Inf(1)
	s.lo, s.hi = tubenet.V(inf, inf, inf), tubenet.V(-inf, -inf, -inf)
	for _, t := range tris {
		for _, v := range []tubenet.Vec3{t.a, t.b, t.c} {
			for i := 0; i < 3; i++ {
				s.lo[i] = math.Min(s.lo[i], v[i])
				s.hi[i] = math.Max(s.hi[i], v[i])
			}
		}
	}
	return s
}

// gridSurface triangulates a grid of points [row][column] of patch p, with
// patch parameters rows[r] and c/surfaceStepsAround. If loop is set, the
// last column connects to the first.
func gridSurface(grid [][]tubenet.Vec3, rows []float64, p patch, loop bool) *triangulatedSurface {
	var tris []triangle
	for r := 0; r < len(grid)-1; r++ {
		cols := len(grid[r])
		last := cols - 1
		if loop {
			last = cols
		}
		for c := 0; c < last; c++ {
			cn := (c + 1) % cols
			p00, p01 := grid[r][c], grid[r][cn]
			p10, p11 := grid[r+1][c], grid[r+1][cn]
			s0 := float64(c) / surfaceStepsAround
			s1 := float64(c+1) / surfaceStepsAround
			s00, s01 := [2]float64{s0, rows[r]}, [2]float64{s1, rows[r]}
			s10, s11 := [2]float64{s0, rows[r+1]}, [2]float64{s1, rows[r+1]}
			tris = append(tris,
				triangle{p00, p01, p11, s00, s01, s11},
				triangle{p00, p11, p10, s00, s11, s10})
		}
	}
	return newTriangulatedSurface(tris, p)
}

func (s *triangulatedSurface) intersect(p, q tubenet.Vec3) (facetHit, bool) {
	for i := 0; i < 3; i++ {
		if math.Max(p[i], q[i]) < s.lo[i] || math.Min(p[i], q[i]) > s.hi[i] {
			return facetHit{}, false
		}
	}
	best := facetHit{u: math.Inf(1)}
	found := false
	for _, t := range s.triangles {
		if u, st, ok := t.intersectSegment(p, q); ok && u < best.u {
			best, found = facetHit{u: u, st: st, normal: t.normal()}, true
		}
	}
	return best, found
}

// refine solves C(t) = S(s,t') for curve c and the patch by Newton
// iteration, starting at curve location loc and the facet hit.
func (s *triangulatedSurface) refine(c *hermite.Curve, loc hermite.Location, h facetHit) (surfaceHit, bool) {
	if s.patch == nil {
		return surfaceHit{}, false
	}
	tol := refineTolerance * (1 + s.hi.Sub(s.lo).Norm())
	t0 := loc.Parameter()
	t, st := t0, h.st
	var cx, ds, dt tubenet.Vec3
	converged := false
	for i := 0; i < refineIterations; i++ {
		var cd, sx tubenet.Vec3
		cx, cd = c.Evaluate(c.LocationAt(t))
		sx, ds, dt = s.patch.eval(st[0], st[1])
		r := sx.Sub(cx)
		if r.Norm() <= tol {
			converged = true
			break
		}
		// Cramer's rule on [C' -S_s -S_t]·δ = r
		n := ds.Cross(dt)
		det := cd.Dot(n)
		if math.Abs(det) <= 1e-12*cd.Norm()*n.Norm() {
			return surfaceHit{}, false
		}
		t += r.Dot(n) / det
		st[0] += cd.Dot(r.Cross(dt.Neg())) / det
		st[1] += cd.Dot(ds.Neg().Cross(r)) / det
	}
	if !converged || math.Abs(st[0]-h.st[0]) > 1 || math.Abs(st[1]-h.st[1]) > 1 {
		return surfaceHit{}, false
	}
	at, ok := curveParameter(c, t, t0)
	if !ok {
		return surfaceHit{}, false
	}
	return surfaceHit{loc: at, x: cx, normal: ds.Cross(dt)}, true
}

// curveParameter validates a refined curve parameter t: it must stay
// within two polyline steps of t0 and on the curve.
func curveParameter(c *hermite.Curve, t, t0 float64) (hermite.Location, bool) {
	const slack = 1e-9
	if math.Abs(t-t0) > 2.0/curveStepsAlong {
		return hermite.Location{}, false
	}
	count := float64(c.ElementsCount())
	if t < -slack || t > count+slack {
		return hermite.Location{}, false
	}
	return c.LocationAt(math.Min(math.Max(t, 0), count)), true
}

// rawTubePatch is the bicubic Hermite surface of a raw tube. s runs around
// in elements and wraps, t runs along in elements.
type rawTubePatch struct {
	rt *RawTube
}

func (p rawTubePatch) eval(s, t float64) (x, ds, dt tubenet.Vec3) {
	rt := p.rt
	around, along := rt.AroundCount(), rt.AlongCount()
	q0 := math.Floor(s)
	xi1 := s - q0
	q := (int(q0)%around + around) % around
	qn := (q + 1) % around
	e := min(max(int(math.Floor(t)), 0), along-2)
	xi2 := t - float64(e)
	// per along node: position and along derivative, and their s-derivatives
	var a, b, da, db [2]tubenet.Vec3
	for k := range a {
		n := e + k
		x1, d1, x2, d2 := rt.X[n][q], rt.D1[n][q], rt.X[n][qn], rt.D1[n][qn]
		a[k] = hermite.Interpolate(x1, d1, x2, d2, xi1)
		da[k] = hermite.InterpolateDerivative(x1, d1, x2, d2, xi1)
		x1, d1, x2, d2 = rt.D2[n][q], rt.D12[n][q], rt.D2[n][qn], rt.D12[n][qn]
		b[k] = hermite.Interpolate(x1, d1, x2, d2, xi1)
		db[k] = hermite.InterpolateDerivative(x1, d1, x2, d2, xi1)
	}
	x = hermite.Interpolate(a[0], b[0], a[1], b[1], xi2)
	dt = hermite.InterpolateDerivative(a[0], b[0], a[1], b[1], xi2)
	ds = hermite.Interpolate(da[0], db[0], da[1], db[1], xi2)
	return
}

// rawTubeSurface triangulates the surface of a raw tube, refining elements
// by Hermite interpolation along and around.
func rawTubeSurface(rt *RawTube) *triangulatedSurface {
	p := rawTubePatch{rt: rt}
	along, around := rt.AlongCount(), rt.AroundCount()
	var grid [][]tubenet.Vec3
	var rows []float64
	for e := 0; e < along-1; e++ {
		steps := surfaceStepsAlong
		if e == along-2 {
			steps++ // include the final row
		}
		for i := 0; i < steps; i++ {
			t := float64(e) + float64(i)/surfaceStepsAlong
			ring := make([]tubenet.Vec3, 0, around*surfaceStepsAround)
			for c := 0; c < around*surfaceStepsAround; c++ {
				x, _, _ := p.eval(float64(c)/surfaceStepsAround, t)
				ring = append(ring, x)
			}
			grid = append(grid, ring)
			rows = append(rows, t)
		}
	}
	return gridSurface(grid, rows, p, true)
}

// refineRing interpolates a closed ring of points at surfaceStepsAround
// steps per element.
func refineRing(x, d []tubenet.Vec3) []tubenet.Vec3 {
	n := len(x)
	ring := make([]tubenet.Vec3, 0, n*surfaceStepsAround)
	for q := 0; q < n; q++ {
		qn := (q + 1) % n
		for j := 0; j < surfaceStepsAround; j++ {
			ring = append(ring, hermite.Interpolate(x[q], d[q], x[qn], d[qn], float64(j)/surfaceStepsAround))
		}
	}
	return ring
}

// endCap is the planar cross section of a tube end, bounded by the
// polygon of its end ring.
type endCap struct {
	centre  tubenet.Vec3
	frame   tubenet.Frame
	contour polyclip.Contour
	size    float64 // largest distance of the ring from the centre
}

func newEndCap(centre, normal tubenet.Vec3, ringX, ringD1 []tubenet.Vec3) *endCap {
	ec := &endCap{centre: centre, frame: tubenet.NewFrame(normal, ringX[0].Sub(centre))}
	for _, p := range refineRing(ringX, ringD1) {
		ec.contour.Add(ec.planar(p))
		ec.size = math.Max(ec.size, p.Distance(centre))
	}
	return ec
}

func (ec *endCap) planar(p tubenet.Vec3) polyclip.Point {
	v := p.Sub(ec.centre)
	return polyclip.Point{X: v.Dot(ec.frame.Axis1), Y: v.Dot(ec.frame.Axis2)}
}

func (ec *endCap) intersect(p, q tubenet.Vec3) (facetHit, bool) {
	n := ec.frame.Normal
	dp, dq := p.Sub(ec.centre).Dot(n), q.Sub(ec.centre).Dot(n)
	if (dp > 0 && dq > 0) || (dp < 0 && dq < 0) || dp == dq {
		return facetHit{}, false
	}
	u := dp / (dp - dq)
	if !ec.contour.Contains(ec.planar(p.Lerp(q, u))) {
		return facetHit{}, false
	}
	return facetHit{u: u, normal: n}, true
}

// refine finds the crossing of curve c with the cap plane by Newton
// iteration, starting at loc.
func (ec *endCap) refine(c *hermite.Curve, loc hermite.Location, h facetHit) (surfaceHit, bool) {
	n := ec.frame.Normal
	tol := refineTolerance * (1 + ec.size)
	t0 := loc.Parameter()
	t := t0
	for i := 0; i < refineIterations; i++ {
		x, d := c.Evaluate(c.LocationAt(t))
		g := x.Sub(ec.centre).Dot(n)
		if math.Abs(g) <= tol {
			at, ok := curveParameter(c, t, t0)
			if !ok || !ec.contour.Contains(ec.planar(x)) {
				return surfaceHit{}, false
			}
			return surfaceHit{loc: at, x: x, normal: n}, true
		}
		dg := d.Dot(n)
		if tubenet.Is0(dg) {
			break
		}
		t -= g / dg
	}
	return surfaceHit{}, false
}

// intersectCurve finds the intersections of a curve with a surface, within
// the half of the curve at the given end. It returns the hit furthest from
// that end. Facet hits which cannot be refined are taken as they are.
func intersectCurve(c *hermite.Curve, s surface, atEnd bool) (surfaceHit, bool) {
	pts, locs := c.Polyline(curveStepsAlong)
	n := len(pts) - 1
	from, to := 0, n/2
	if atEnd {
		from, to = n-n/2, n
	}
	var hit surfaceHit
	found := false
	for i := from; i < to; i++ {
		fh, ok := s.intersect(pts[i], pts[i+1])
		if !ok {
			continue
		}
		loc := segmentLocation(locs[i], locs[i+1], fh.u)
		h, ok := s.refine(c, loc, fh)
		if !ok {
			tracer().Debugf("facet hit at %v not refined", loc)
			h = surfaceHit{loc: loc, x: pts[i].Lerp(pts[i+1], fh.u), normal: fh.normal}
		}
		if found {
			if atEnd && !h.loc.Before(hit.loc) || !atEnd && h.loc.Before(hit.loc) {
				continue
			}
		}
		hit = h
		found = true
	}
	return hit, found
}

// segmentLocation interpolates a curve location on the polyline segment
// between a and b.
func segmentLocation(a, b hermite.Location, u float64) hermite.Location {
	xib := b.Xi
	if b.Element != a.Element {
		xib = 1
	}
	return hermite.Location{Element: a.Element, Xi: a.Xi + u*(xib-a.Xi)}
}
