package network

import (
	"errors"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/tubenet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSplitsSegments(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	nw, err := Parse("1-2-4-5-6,3-4.2-7,5-8")
	require.NoError(t, err)
	var got [][]NodeID
	for _, s := range nw.Segments() {
		got = append(got, s.NodeIDs())
	}
	assert.Equal(t, [][]NodeID{{1, 2, 4}, {4, 5}, {5, 6}, {3, 4}, {4, 7}, {5, 8}}, got)
	assert.Equal(t, []int{1, 2}, nw.Segments()[3].Versions())
	assert.Equal(t, []int{2, 1}, nw.Segments()[4].Versions())
	n4, ok := nw.Node(4)
	require.True(t, ok)
	assert.Len(t, n4.InSegments(), 2)
	assert.Len(t, n4.OutSegments(), 2)
	assert.Equal(t, 2, n4.VersionsCount())
	assert.Empty(t, nw.CheckVersions())
	ids := []NodeID{}
	for _, n := range nw.Nodes() {
		ids = append(ids, n.ID())
	}
	assert.Equal(t, []NodeID{1, 2, 3, 4, 5, 6, 7, 8}, ids)
}

func TestParseInvalid(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	nw, err := Parse("1, a-b, 1-2.x, 1-2")
	require.NoError(t, err)
	assert.Len(t, nw.Segments(), 1)
	_, err = Parse("1")
	assert.True(t, errors.Is(err, ErrEmptyNetwork))
}

func TestUnusedVersions(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	nw, err := Parse("1-2.2")
	require.NoError(t, err)
	errs := nw.CheckVersions()
	require.Len(t, errs, 1)
	assert.True(t, errors.Is(errs[0], ErrUnusedVersion))
}

func TestLoopSegment(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	nw, err := Parse("1-2-3-1")
	require.NoError(t, err)
	require.Len(t, nw.Segments(), 1)
	s := nw.Segments()[0]
	assert.True(t, s.IsLoop())
	n1, _ := nw.Node(1)
	assert.Len(t, n1.InSegments(), 1)
	assert.Len(t, n1.OutSegments(), 1)
}

func TestDefaultLayout(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	nw, err := Parse("1-2-3,2-4")
	require.NoError(t, err)
	_, err = nw.Segments()[0].PathParameters(Outer)
	assert.True(t, errors.Is(err, ErrMissingParameters))
	assert.Equal(t, 4, nw.SetDefaultParameters(0.5))
	n1, _ := nw.Node(1)
	p, ok := n1.Parameters(1, Outer)
	require.True(t, ok)
	assert.True(t, p.X.Equal(tubenet.V(0, 0, 0)), "x = %v", p.X)
	assert.True(t, p.D1.Equal(tubenet.V(1, 0, 0)), "d1 = %v", p.D1)
	assert.True(t, p.D2.Equal(tubenet.V(0, 0.5, 0)), "d2 = %v", p.D2)
	assert.True(t, p.D3.Equal(tubenet.V(0, 0, 0.5)), "d3 = %v", p.D3)
	n3, _ := nw.Node(3)
	n4, _ := nw.Node(4)
	assert.Equal(t, 2.0, n3.LayoutX()[0])
	assert.Equal(t, 2.0, n4.LayoutX()[0])
	assert.NotEqual(t, n3.LayoutX()[1], n4.LayoutX()[1])
	pp, err := nw.Segments()[1].PathParameters(Outer)
	require.NoError(t, err)
	assert.Len(t, pp, 2)
	assert.False(t, nw.Segments()[1].HasLayer(Inner))
}

func TestSetPathParametersErrors(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	nw, err := Parse("1-2")
	require.NoError(t, err)
	assert.True(t, errors.Is(nw.SetPathParameters(9, 1, Outer, PathParameters{}), ErrUnknownNode))
	assert.True(t, errors.Is(nw.SetPathParameters(1, 2, Outer, PathParameters{}), ErrUnknownVersion))
	assert.NoError(t, nw.SetPathParameters(1, 1, Inner, PathParameters{}))
}

const layoutYAML = `
structure: "1-2-3"
defaultRadius: 0.25
nodes:
  - id: 1
    versions:
      - version: 1
        x: [0, 0, 0]
        d1: [2, 0, 0]
        d2: [0, 0.5, 0]
        d3: [0, 0, 0.5]
        inner:
          x: [0, 0, 0]
          d1: [2, 0, 0]
          d2: [0, 0.4, 0]
          d3: [0, 0, 0.4]
`

func TestLoad(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	nw, err := Load(strings.NewReader(layoutYAML))
	require.NoError(t, err)
	n1, _ := nw.Node(1)
	p, ok := n1.Parameters(1, Outer)
	require.True(t, ok)
	assert.True(t, p.D1.Equal(tubenet.V(2, 0, 0)))
	q, ok := n1.Parameters(1, Inner)
	require.True(t, ok)
	assert.True(t, q.D2.Equal(tubenet.V(0, 0.4, 0)))
	n3, _ := nw.Node(3)
	p3, ok := n3.Parameters(1, Outer)
	require.True(t, ok, "default layout parameters expected")
	assert.InDelta(t, 0.25, p3.D3.Norm(), 1e-12)
}

func TestLoadInvalid(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	_, err := Load(strings.NewReader("nodes: []\n"))
	assert.Error(t, err)
	bad := "structure: \"1-2\"\nnodes:\n  - id: 1\n    versions:\n      - x: [0, 0]\n        d1: [1, 0, 0]\n        d2: [0, 1, 0]\n        d3: [0, 0, 1]\n"
	_, err = Load(strings.NewReader(bad))
	assert.Error(t, err)
}
