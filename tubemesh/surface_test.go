package tubemesh

import (
	"math"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/tubenet"
	"github.com/npillmayer/tubenet/hermite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lineCurve(t *testing.T, from, to tubenet.Vec3) *hermite.Curve {
	d := to.Sub(from)
	c, err := hermite.NewCurve([]tubenet.Vec3{from, to}, []tubenet.Vec3{d, d}, false)
	require.NoError(t, err)
	return c
}

func TestTubeHitsMirrored(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	rt, err := RawTubeCoordinates(straightPath(3, 0.5), 8, 1.0, 0)
	require.NoError(t, err)
	s := rawTubeSurface(rt)
	var z [2]float64
	for i, y := range []float64{0.2, -0.2} {
		c := lineCurve(t, tubenet.V(1.3, y, -2), tubenet.V(1.3, y, 2))
		hit, ok := intersectCurve(c, s, false)
		require.True(t, ok, "line at y=%g", y)
		x, _ := c.Evaluate(hit.loc)
		assert.True(t, x.Equal(hit.x), "hit %v, curve at %v", hit.x, x)
		assert.InDelta(t, 1.3, hit.x[0], 1e-9)
		assert.InDelta(t, y, hit.x[1], 1e-9)
		assert.InDelta(t, 0, hit.normal.Normalized()[0], 1e-9)
		z[i] = hit.x[2]
	}
	assert.Less(t, z[0], 0.0)
	assert.InDelta(t, z[0], z[1], 1e-9)
}

func TestTrimBandHitOnCone(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	const n = 6
	x := make([]tubenet.Vec3, n)
	d1 := make([]tubenet.Vec3, n)
	for q := range x {
		a := 2 * math.Pi * float64(q) / n
		x[q] = tubenet.V(math.Cos(a), math.Sin(a), 0)
		d1[q] = tubenet.V(-math.Sin(a), math.Cos(a), 0).Scaled(2 * math.Pi / n)
	}
	apex := tubenet.V(0, 0, -1)
	ts := newTrimSurface(apex, x, d1)
	// between two facet columns of the first element
	p := hermite.Interpolate(x[0], d1[0], x[1], d1[1], 0.375)
	want := apex.AddScaled(0.8, p.Sub(apex))
	c := lineCurve(t, tubenet.V(want[0], want[1], -1.5), tubenet.V(want[0], want[1], 1.5))
	hit, ok := intersectCurve(c, ts, false)
	require.True(t, ok)
	assert.InDelta(t, 0, hit.x.Distance(want), 1e-9, "hit %v, want %v", hit.x, want)
}

func TestEndCapHitOnCurvedLine(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	rt, err := RawTubeCoordinates(straightPath(3, 0.5), 8, 1.0, 0)
	require.NoError(t, err)
	ec := newEndCap(tubenet.Origin, tubenet.V(1, 0, 0), rt.X[0], rt.D1[0])
	from, to := tubenet.V(-1, 0.1, 0), tubenet.V(1, 0.1, 0)
	c, err := hermite.NewCurve([]tubenet.Vec3{from, to},
		[]tubenet.Vec3{tubenet.V(0.5, 0, 0), tubenet.V(3.5, 0, 0)}, false)
	require.NoError(t, err)
	hit, ok := intersectCurve(c, ec, true)
	require.True(t, ok)
	assert.InDelta(t, 0, hit.x[0], 1e-9)
	assert.True(t, hit.normal.Equal(tubenet.V(1, 0, 0)))
	// outside of the cap
	c = lineCurve(t, tubenet.V(-1, 0.7, 0), tubenet.V(1, 0.7, 0))
	_, ok = intersectCurve(c, ec, true)
	assert.False(t, ok)
}
