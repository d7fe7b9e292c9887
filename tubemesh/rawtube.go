package tubemesh

import (
	"fmt"
	"math"

	"github.com/npillmayer/tubenet"
	"github.com/npillmayer/tubenet/hermite"
	"github.com/npillmayer/tubenet/network"
)

// rawPointsAround is the number of points sampled around a cross section
// before resampling to the requested count.
const rawPointsAround = 16

// RawTube holds tube surface coordinates for every path node, indexed
// [along][around]. D1 is the derivative around, D2 the derivative along
// the path and D12 the rate of change of D2 around (equally, of D1 along).
type RawTube struct {
	X, D1, D2, D12 [][]tubenet.Vec3
}

// AlongCount returns the number of path nodes of the tube.
func (rt *RawTube) AlongCount() int {
	return len(rt.X)
}

// AroundCount returns the number of points around the tube.
func (rt *RawTube) AroundCount() int {
	if len(rt.X) == 0 {
		return 0
	}
	return len(rt.X[0])
}

// line returns the coordinates of longitudinal line q.
func (rt *RawTube) line(q int) (x, d1, d2, d12 []tubenet.Vec3) {
	n := len(rt.X)
	x, d1 = make([]tubenet.Vec3, n), make([]tubenet.Vec3, n)
	d2, d12 = make([]tubenet.Vec3, n), make([]tubenet.Vec3, n)
	for p := 0; p < n; p++ {
		x[p], d1[p], d2[p], d12[p] = rt.X[p][q], rt.D1[p][q], rt.D2[p][q], rt.D12[p][q]
	}
	return
}

// RawTubeCoordinates samples the tube surface around path parameters pp.
// Cross sections are ellipses spanned by the directors d2, d3 scaled by
// radius, starting at phase (radians) from d2 towards d3. Around each
// path node, points are first sampled at equal parametric angle, then
// resampled to around points at equal arc length.
func RawTubeCoordinates(pp []network.PathParameters, around int, radius, phase float64) (*RawTube, error) {
	if len(pp) < 2 {
		return nil, fmt.Errorf("%w: %d path nodes", hermite.ErrTooFewPoints, len(pp))
	}
	if around < 1 {
		return nil, fmt.Errorf("%w: %d points around", hermite.ErrTooFewPoints, around)
	}
	rt := &RawTube{
		X:   make([][]tubenet.Vec3, len(pp)),
		D1:  make([][]tubenet.Vec3, len(pp)),
		D2:  make([][]tubenet.Vec3, len(pp)),
		D12: make([][]tubenet.Vec3, len(pp)),
	}
	dAngle := 2 * math.Pi / rawPointsAround
	for p, par := range pp {
		if par.D2.Cross(par.D3).Norm() < tubenet.Epsilon {
			return nil, fmt.Errorf("%w: cross section at path node %d is flat", hermite.ErrDegenerate, p)
		}
		px := make([]tubenet.Vec3, rawPointsAround)
		pd1 := make([]tubenet.Vec3, rawPointsAround)
		pxi := make([]tubenet.Vec3, rawPointsAround)
		pdxi := make([]tubenet.Vec3, rawPointsAround)
		for q := 0; q < rawPointsAround; q++ {
			theta := phase + float64(q)*dAngle
			xi2, xi3 := radius*math.Cos(theta), radius*math.Sin(theta)
			dxi2, dxi3 := -xi3*dAngle, xi2*dAngle
			px[q] = par.X.AddScaled(xi2, par.D2).AddScaled(xi3, par.D3)
			pd1[q] = par.D2.Scaled(dxi2).AddScaled(dxi3, par.D3)
			pxi[q] = tubenet.V(xi2, xi3, 0)
			pdxi[q] = tubenet.V(dxi2, dxi3, 0)
		}
		pd1 = hermite.SmoothLoop(px, pd1, true, hermite.ArithmeticMean)
		loop, err := hermite.NewCurve(px, pd1, true)
		if err != nil {
			return nil, err
		}
		smp, err := loop.SampleSmooth(hermite.Sampling{Elements: around})
		if err != nil {
			return nil, err
		}
		xi, dxi := hermite.InterpolateSamples(pxi, pdxi, smp)
		rt.X[p] = smp.X[:around]
		rt.D1[p] = smp.D[:around]
		rt.D2[p] = make([]tubenet.Vec3, around)
		rt.D12[p] = make([]tubenet.Vec3, around)
		for q := 0; q < around; q++ {
			rt.D2[p][q] = par.D1.AddScaled(xi[q][0], par.D12).AddScaled(xi[q][1], par.D13)
			rt.D12[p][q] = par.D12.Scaled(dxi[q][0]).AddScaled(dxi[q][1], par.D13)
		}
	}
	tracer().Debugf("raw tube: %d path nodes, %d around", len(pp), around)
	return rt, nil
}
