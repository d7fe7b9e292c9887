package emit

import (
	"errors"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/tubenet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayouts(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	assert.Equal(t, Straight, LayoutForCount(1))
	assert.Equal(t, FlipD2, LayoutForCount(2))
	assert.Equal(t, SixWay, LayoutForCount(3))
	assert.Equal(t, EightWay, LayoutForCount(4))
	assert.Len(t, SixWay.Directions(false), 6)
	assert.Len(t, EightWay.Directions(true), 10)
	assert.Equal(t, []float64{0, 0, 1}, Straight.Directions(true)[5])
	assert.Nil(t, SixWay.Limits(false))
	assert.Len(t, FlipD2.Limits(true), 3)
	assert.Equal(t, "EightWay", EightWay.String())
}

func TestRecorder(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	rec := NewRecorder()
	var handles []NodeHandle
	for id := 1; id <= 4; id++ {
		h, err := rec.CreateNode(id, NodeParameters{X: tubenet.V(float64(id), 0, 0)})
		require.NoError(t, err)
		handles = append(handles, h)
	}
	_, err := rec.CreateNode(2, NodeParameters{})
	assert.True(t, errors.Is(err, ErrDuplicateID))
	layouts := []NodeLayout{Straight, Straight, FlipD2, SixWay}
	eh, err := rec.CreateElement(1, handles, layouts)
	require.NoError(t, err)
	assert.Equal(t, 1, eh.ElementID())
	_, err = rec.CreateElement(1, handles, layouts)
	assert.True(t, errors.Is(err, ErrDuplicateID))
	_, err = rec.CreateElement(2, handles[:3], layouts[:3])
	assert.True(t, errors.Is(err, ErrNodeCount))
	foreign := &Node{ID: 3}
	_, err = rec.CreateElement(3, []NodeHandle{handles[0], handles[1], foreign, handles[3]}, layouts)
	assert.True(t, errors.Is(err, ErrUnknownHandle))
	assert.Equal(t, 4, rec.NodesCount())
	assert.Equal(t, 1, rec.ElementsCount())
	e, ok := rec.Element(1)
	require.True(t, ok)
	assert.Equal(t, []int{1, 2, 3, 4}, e.Nodes)
	assert.Equal(t, 1, rec.NodeUsage()[4])
	assert.Equal(t, 3, rec.Nodes()[2].ID)
}
