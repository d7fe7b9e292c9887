package hermite

import (
	"fmt"
	"math"

	"github.com/npillmayer/tubenet"
)

// Location is a position on a piecewise curve: element index and local xi.
type Location struct {
	Element int
	Xi      float64
}

// Curve is a sequence of cubic Hermite elements through points X with
// derivatives D. For loops, the last point connects back to the first one.
//
// Element arc lengths are computed once at construction time; X and D must
// not be changed afterwards.
type Curve struct {
	X, D    []tubenet.Vec3
	Loop    bool
	lengths []float64 // arc length per element
	cumul   []float64 // distance to the start of element e
}

// NewCurve creates a curve from points and derivatives. An open curve needs at
// least 2 points, a loop at least 2. Elements with coincident end points and
// zero derivatives are rejected.
func NewCurve(x, d []tubenet.Vec3, loop bool) (*Curve, error) {
	if len(x) < 2 {
		return nil, fmt.Errorf("%w: %d", ErrTooFewPoints, len(x))
	}
	if len(d) != len(x) {
		return nil, fmt.Errorf("%w: %d points, %d derivatives", ErrMismatchedDerivatives, len(x), len(d))
	}
	c := &Curve{X: x, D: d, Loop: loop}
	count := c.ElementsCount()
	c.lengths = make([]float64, count)
	c.cumul = make([]float64, count+1)
	for e := 0; e < count; e++ {
		v1, d1, v2, d2 := c.Element(e)
		if v1.Equal(v2) && d1.IsZero() && d2.IsZero() {
			return nil, fmt.Errorf("%w: element %d", ErrDegenerate, e)
		}
		c.lengths[e] = ArcLength(v1, d1, v2, d2)
		c.cumul[e+1] = c.cumul[e] + c.lengths[e]
	}
	if tubenet.Is0(c.cumul[count]) {
		return nil, fmt.Errorf("%w: curve has zero length", ErrDegenerate)
	}
	return c, nil
}

// ElementsCount returns the number of elements of the curve.
func (c *Curve) ElementsCount() int {
	if c.Loop {
		return len(c.X)
	}
	return len(c.X) - 1
}

// Element returns the parameters of element e.
func (c *Curve) Element(e int) (v1, d1, v2, d2 tubenet.Vec3) {
	n := (e + 1) % len(c.X)
	return c.X[e], c.D[e], c.X[n], c.D[n]
}

// Length is the total arc length of the curve.
func (c *Curve) Length() float64 {
	return c.cumul[len(c.lengths)]
}

// Start is the location of the first point of the curve.
func (c *Curve) Start() Location {
	return Location{Element: 0, Xi: 0}
}

// End is the location of the last point of the curve.
func (c *Curve) End() Location {
	return Location{Element: c.ElementsCount() - 1, Xi: 1}
}

// Evaluate returns position and derivative at loc.
func (c *Curve) Evaluate(loc Location) (x, d tubenet.Vec3) {
	v1, d1, v2, d2 := c.Element(loc.Element)
	return Interpolate(v1, d1, v2, d2, loc.Xi), InterpolateDerivative(v1, d1, v2, d2, loc.Xi)
}

// LengthTo returns the arc distance from the start of the curve to loc.
func (c *Curve) LengthTo(loc Location) float64 {
	v1, d1, v2, d2 := c.Element(loc.Element)
	return c.cumul[loc.Element] + ArcLengthToXi(v1, d1, v2, d2, loc.Xi)
}

// LocationAtLength returns the location at arc distance s from the start of
// the curve, clamped to the curve's ends.
func (c *Curve) LocationAtLength(s float64) Location {
	count := c.ElementsCount()
	if s <= 0 {
		return c.Start()
	}
	if s >= c.Length() {
		return c.End()
	}
	e := 0
	for e < count-1 && s >= c.cumul[e+1] {
		e++
	}
	v1, d1, v2, d2 := c.Element(e)
	xi := xiAtArcLength(v1, d1, v2, d2, s-c.cumul[e], c.lengths[e])
	return Location{Element: e, Xi: xi}
}

// Polyline returns points of the curve sampled at perElement uniform xi
// steps per element, together with their locations.
func (c *Curve) Polyline(perElement int) ([]tubenet.Vec3, []Location) {
	count := c.ElementsCount()
	pts := make([]tubenet.Vec3, 0, count*perElement+1)
	locs := make([]Location, 0, count*perElement+1)
	for e := 0; e < count; e++ {
		v1, d1, v2, d2 := c.Element(e)
		for i := 0; i < perElement; i++ {
			xi := float64(i) / float64(perElement)
			pts = append(pts, Interpolate(v1, d1, v2, d2, xi))
			locs = append(locs, Location{Element: e, Xi: xi})
		}
	}
	end := c.End()
	x, _ := c.Evaluate(end)
	pts = append(pts, x)
	locs = append(locs, end)
	return pts, locs
}

// LocationAt returns the location for the curve parameter t, which counts
// elements from the start of the curve. Loops wrap t around. For open curves,
// t outside of the curve extrapolates the first or last element.
func (c *Curve) LocationAt(t float64) Location {
	count := c.ElementsCount()
	if c.Loop {
		t = math.Mod(t, float64(count))
		if t < 0 {
			t += float64(count)
		}
	}
	e := min(max(int(math.Floor(t)), 0), count-1)
	return Location{Element: e, Xi: t - float64(e)}
}

// Parameter is the inverse of LocationAt.
func (loc Location) Parameter() float64 {
	return float64(loc.Element) + loc.Xi
}

// Before is a predicate: is loc before other on the curve?
func (loc Location) Before(other Location) bool {
	if loc.Element != other.Element {
		return loc.Element < other.Element
	}
	return loc.Xi < other.Xi
}
