package tubemesh

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionCounts(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	for _, tc := range []struct {
		around  []int
		k       []int
		through int
	}{
		{[]int{8, 8, 8}, []int{4, 4, 4}, 0},
		{[]int{8, 6, 4}, []int{5, 1, 3}, 0},
		{[]int{12, 8, 8}, []int{6, 2, 6}, 0},
		{[]int{8, 8, 8, 8}, []int{4, 4, 4, 4}, 0},
		{[]int{12, 8, 12, 8}, []int{4, 4, 4, 4}, 2},
		{[]int{8, 4, 8, 4}, []int{2, 2, 2, 2}, 2},
	} {
		k, through, err := connectionCounts(tc.around)
		require.NoError(t, err, "around %v", tc.around)
		assert.Equal(t, tc.k, k, "around %v", tc.around)
		assert.Equal(t, tc.through, through, "around %v", tc.around)
	}
}

func TestConnectionCountsInvalid(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	for _, around := range [][]int{
		{8, 8, 5},     // odd sum
		{4, 12, 4},    // negative
		{4, 8, 4},     // tubes 2 and 0 would touch in a single point
		{8, 8, 8, 12}, // more elements on tubes 1, 3
		{10, 8, 8, 8}, // difference not a multiple of 4
		{8, 8},
		{8, 8, 8, 8, 8},
	} {
		_, _, err := connectionCounts(around)
		assert.Error(t, err, "around %v", around)
	}
}

func contributorHistogram(rt *rimTopology) map[int]int {
	h := make(map[int]int)
	for _, refs := range rt.contributors {
		h[len(refs)]++
	}
	return h
}

func TestCanonicalRim(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	for _, tc := range []struct {
		around    []int
		rimPoints int
		histogram map[int]int
	}{
		{[]int{8, 8, 8}, 11, map[int]int{2: 9, 3: 2}},
		{[]int{8, 6, 4}, 8, map[int]int{2: 6, 3: 2}},
		{[]int{8, 8, 8, 8}, 14, map[int]int{2: 12, 4: 2}},
		{[]int{12, 8, 12, 8}, 18, map[int]int{2: 14, 3: 4}},
	} {
		k, through, err := connectionCounts(tc.around)
		require.NoError(t, err)
		rt := canonicalRim(tc.around, k, through)
		assert.Len(t, rt.contributors, tc.rimPoints, "around %v", tc.around)
		assert.Equal(t, tc.histogram, contributorHistogram(rt), "around %v", tc.around)
		for pos, c := range tc.around {
			require.Len(t, rt.index[pos], c)
			for p, r := range rt.index[pos] {
				assert.Contains(t, rt.contributors[r], rimRef{pos: pos, p: p})
			}
		}
	}
}

func TestCanonicalRimTop(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	rt := canonicalRim([]int{8, 8, 8}, []int{4, 4, 4}, 0)
	// rim traversal starts at the top, shared by all tubes
	assert.Equal(t, 0, rt.index[0][0])
	assert.Equal(t, 0, rt.index[1][0])
	assert.Equal(t, 0, rt.index[2][0])
	// bottom
	assert.Equal(t, rt.index[0][4], rt.index[1][4])
	assert.Equal(t, rt.index[0][4], rt.index[2][4])
	// tube 0 goes down along tube 1 and up along tube 2
	assert.Equal(t, rt.index[0][1], rt.index[1][7])
	assert.Equal(t, rt.index[0][7], rt.index[2][1])
}

func TestCanonicalRimPanicsOnSelfMerge(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	assert.Panics(t, func() {
		canonicalRim([]int{4, 8, 4}, []int{4, 4, 0}, 0)
	})
}
