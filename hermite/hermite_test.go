package hermite

import (
	"errors"
	"math"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/tubenet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasis(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	for _, xi := range []float64{0, 0.25, 0.5, 0.9, 1} {
		f1, _, f3, _ := Basis(xi)
		assert.InDelta(t, 1.0, f1+f3, 1e-12, "partition of unity at xi=%g", xi)
		df1, _, df3, _ := BasisDerivatives(xi)
		assert.InDelta(t, 0.0, df1+df3, 1e-12)
	}
	f1, f2, f3, f4 := Basis(0)
	if f1 != 1 || f2 != 0 || f3 != 0 || f4 != 0 {
		t.Errorf("unexpected basis at 0: %g %g %g %g", f1, f2, f3, f4)
	}
	_, df2, _, df4 := BasisDerivatives(1)
	if df2 != 0 || df4 != 1 {
		t.Errorf("unexpected basis derivatives at 1: %g %g", df2, df4)
	}
}

func TestInterpolateStraight(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	v1, v2 := tubenet.V(0, 0, 0), tubenet.V(1, 0, 0)
	d := tubenet.V(1, 0, 0)
	x := Interpolate(v1, d, v2, d, 0.5)
	assert.True(t, x.Equal(tubenet.V(0.5, 0, 0)), "x = %v", x)
	assert.InDelta(t, 1.0, ArcLength(v1, d, v2, d), 1e-12)
	assert.InDelta(t, 0.25, ArcLengthToXi(v1, d, v2, d, 0.25), 1e-12)
	assert.InDelta(t, 0.5, DerivativeScaling(v1, d.Scaled(2), v2, d.Scaled(2)), 1e-6)
}

func TestQuarterCircleArcLength(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	k := math.Pi / 2
	l := ArcLength(tubenet.V(1, 0, 0), tubenet.V(0, k, 0), tubenet.V(0, 1, 0), tubenet.V(-k, 0, 0))
	assert.InEpsilon(t, math.Pi/2, l, 0.01)
	l = FittedArcLength(tubenet.V(1, 0, 0), tubenet.V(0, 1, 0), tubenet.V(0, 1, 0), tubenet.V(-1, 0, 0), true)
	assert.InEpsilon(t, math.Pi/2, l, 0.01)
}

func TestQuadraticDerivatives(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	x0, x1 := tubenet.V(0, 0, 0), tubenet.V(1, 0, 0)
	d := tubenet.V(1, 0, 0)
	assert.True(t, LagrangeHermiteDerivative(x0, x1, d, 0).Equal(d))
	assert.True(t, HermiteLagrangeDerivative(x0, d, x1, 1).Equal(d))
}

func straightCurve(t *testing.T) *Curve {
	x := []tubenet.Vec3{tubenet.V(0, 0, 0), tubenet.V(1, 0, 0), tubenet.V(3, 0, 0)}
	d := []tubenet.Vec3{tubenet.V(1, 0, 0), tubenet.V(1.5, 0, 0), tubenet.V(2, 0, 0)}
	c, err := NewCurve(x, d, false)
	require.NoError(t, err)
	return c
}

func TestCurveLocations(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	c := straightCurve(t)
	assert.Equal(t, 2, c.ElementsCount())
	assert.InDelta(t, 3.0, c.Length(), 1e-9)
	loc := c.LocationAtLength(2)
	assert.Equal(t, 1, loc.Element)
	x, _ := c.Evaluate(loc)
	assert.InDelta(t, 2.0, x[0], 1e-8)
	assert.InDelta(t, 2.0, c.LengthTo(loc), 1e-8)
	assert.Equal(t, c.End(), c.LocationAtLength(5))
	assert.True(t, c.Start().Before(loc))
}

func TestCurveParameter(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	c := straightCurve(t)
	loc := c.LocationAt(1.25)
	assert.Equal(t, Location{Element: 1, Xi: 0.25}, loc)
	assert.InDelta(t, 1.25, loc.Parameter(), 1e-12)
	assert.Equal(t, c.End(), c.LocationAt(2))
	before := c.LocationAt(-0.5)
	assert.Equal(t, 0, before.Element)
	x, _ := c.Evaluate(before)
	assert.Less(t, x[0], 0.0) // extrapolated
	sq := []tubenet.Vec3{tubenet.V(1, 0, 0), tubenet.V(0, 1, 0), tubenet.V(-1, 0, 0), tubenet.V(0, -1, 0)}
	d := []tubenet.Vec3{tubenet.V(0, 1, 0), tubenet.V(-1, 0, 0), tubenet.V(0, -1, 0), tubenet.V(1, 0, 0)}
	loop, err := NewCurve(sq, d, true)
	require.NoError(t, err)
	assert.Equal(t, Location{Element: 3, Xi: 0.5}, loop.LocationAt(-0.5))
	assert.Equal(t, Location{Element: 0, Xi: 0.5}, loop.LocationAt(4.5))
}

func TestCurveErrors(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	_, err := NewCurve([]tubenet.Vec3{tubenet.Origin}, []tubenet.Vec3{tubenet.Origin}, false)
	assert.True(t, errors.Is(err, ErrTooFewPoints))
	p := tubenet.V(1, 1, 1)
	_, err = NewCurve([]tubenet.Vec3{p, p}, []tubenet.Vec3{tubenet.Origin, tubenet.Origin}, false)
	assert.True(t, errors.Is(err, ErrDegenerate))
	_, err = NewCurve([]tubenet.Vec3{p, p}, []tubenet.Vec3{tubenet.Origin}, false)
	assert.True(t, errors.Is(err, ErrMismatchedDerivatives))
}

func TestSampleSmoothEven(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	c := straightCurve(t)
	smp, err := c.SampleSmooth(Sampling{Elements: 3})
	require.NoError(t, err)
	require.Len(t, smp.X, 4)
	for i, x := range smp.X {
		assert.InDelta(t, float64(i), x[0], 1e-7, "sample %d", i)
		assert.InDelta(t, 1.0, smp.D[i].Norm(), 1e-7, "derivative %d", i)
	}
	start := c.LocationAtLength(1)
	smp, err = c.SampleSmooth(Sampling{Elements: 2, Start: &start})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, smp.X[0][0], 1e-7)
	assert.InDelta(t, 2.0, smp.X[1][0], 1e-7)
	assert.InDelta(t, 3.0, smp.X[2][0], 1e-7)
	// interpolating the curve's own points reproduces the samples
	v, _ := InterpolateSamples(c.X, c.D, smp)
	assert.InDelta(t, 2.0, v[1][0], 1e-7)
}

func TestSampleSmoothGraded(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	c := straightCurve(t)
	smp, err := c.SampleSmooth(Sampling{Elements: 3, StartMagnitude: 0.5})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, smp.D[0].Norm(), 1e-7)
	assert.InDelta(t, 1.5, smp.D[3].Norm(), 1e-7)
	for i := 1; i < 3; i++ {
		assert.Greater(t, smp.X[i+1][0]-smp.X[i][0], smp.X[i][0]-smp.X[i-1][0])
	}
}

func TestSmoothLine(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	x := []tubenet.Vec3{tubenet.V(0, 0, 0), tubenet.V(1, 0, 0), tubenet.V(3, 0, 0)}
	d := []tubenet.Vec3{tubenet.V(1, 0, 0), tubenet.V(1, 0, 0), tubenet.V(1, 0, 0)}
	md := SmoothLine(x, d, LineSmoothing{})
	assert.InDelta(t, 1.5, md[1][0], 1e-5)
	md = SmoothLine(x, d, LineSmoothing{Mode: HarmonicMean})
	assert.InDelta(t, 4.0/3.0, md[1][0], 1e-5)
	two := SmoothLine(x[:2], d[:2], LineSmoothing{})
	assert.True(t, two[0].Equal(tubenet.V(1, 0, 0)))
}

func TestSmoothLoopCircle(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	const n = 8
	x := make([]tubenet.Vec3, n)
	d := make([]tubenet.Vec3, n)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / n
		x[i] = tubenet.V(math.Cos(a), math.Sin(a), 0)
		d[i] = tubenet.V(-math.Sin(a), math.Cos(a), 0)
	}
	md := SmoothLoop(x, d, true, ArithmeticMean)
	for i := range md {
		assert.InEpsilon(t, 2*math.Pi/n, md[i].Norm(), 0.01)
		assert.InDelta(t, 1.0, md[i].Normalized().Dot(d[i]), 1e-9)
	}
	loop, err := NewCurve(x, md, true)
	require.NoError(t, err)
	assert.InEpsilon(t, 2*math.Pi, loop.Length(), 0.01)
}
