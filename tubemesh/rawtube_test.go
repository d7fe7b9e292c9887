package tubemesh

import (
	"errors"
	"math"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/tubenet"
	"github.com/npillmayer/tubenet/hermite"
	"github.com/npillmayer/tubenet/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func straightPath(length, radius float64) []network.PathParameters {
	d1 := tubenet.V(length, 0, 0)
	d2, d3 := tubenet.V(0, radius, 0), tubenet.V(0, 0, radius)
	return []network.PathParameters{
		{X: tubenet.Origin, D1: d1, D2: d2, D3: d3},
		{X: d1, D1: d1, D2: d2, D3: d3},
	}
}

func TestRawTubeCircle(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	rt, err := RawTubeCoordinates(straightPath(2, 0.5), 8, 1.0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, rt.AlongCount())
	assert.Equal(t, 8, rt.AroundCount())
	assert.True(t, rt.X[0][0].Equal(tubenet.V(0, 0.5, 0)), "first point %v", rt.X[0][0])
	arc := 2 * math.Pi * 0.5 / 8
	for p := 0; p < 2; p++ {
		centre := tubenet.V(2*float64(p), 0, 0)
		for q := 0; q < 8; q++ {
			radial := rt.X[p][q].Sub(centre)
			assert.InDelta(t, 0.5, radial.Norm(), 1e-3)
			assert.InDelta(t, 0, radial.Dot(rt.D1[p][q]), 1e-3)
			assert.InDelta(t, arc, rt.D1[p][q].Norm(), 1e-2)
			assert.True(t, rt.D2[p][q].Equal(tubenet.V(2, 0, 0)))
			assert.True(t, rt.D12[p][q].IsZero())
		}
	}
	// second point is a quarter turn from d2 towards d3
	assert.InDelta(t, 0.5*math.Sqrt2/2, rt.X[0][1][2], 1e-3)
}

func TestRawTubeRadiusAndPhase(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	rt, err := RawTubeCoordinates(straightPath(1, 0.5), 4, 2.0, math.Pi/2)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, rt.X[0][0][2], 1e-9)
	assert.InDelta(t, 0.0, rt.X[0][0][1], 1e-9)
}

func TestRawTubeErrors(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	pp := straightPath(1, 0.5)
	_, err := RawTubeCoordinates(pp[:1], 8, 1, 0)
	assert.True(t, errors.Is(err, hermite.ErrTooFewPoints))
	pp[1].D3 = pp[1].D2
	_, err = RawTubeCoordinates(pp, 8, 1, 0)
	assert.True(t, errors.Is(err, hermite.ErrDegenerate))
}
