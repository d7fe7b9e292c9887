package tubemesh

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/tubenet"
)

// TestJunctionParity checks connection counts and rim topology for
// arbitrary elements around at 3-way and 4-way junctions.
func TestJunctionParity(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("3-way connections cover every ring", prop.ForAll(
		func(c0, c1, c2 int) bool {
			c := []int{c0, c1, c2}
			k, _, err := connectionCounts(c)
			if err != nil {
				for i := 0; i < 3; i++ {
					sum := c[i] + c[(i+1)%3] - c[(i+2)%3]
					if sum <= 0 || sum%2 != 0 {
						return true
					}
				}
				return false
			}
			for i := 0; i < 3; i++ {
				if k[i] < 1 || k[(i+2)%3]+k[i] != c[i] {
					return false
				}
			}
			rt := canonicalRim(c, k, 0)
			h := contributorHistogram(rt)
			return len(rt.contributors) == (c0+c1+c2)/2-1 && h[3] == 2
		},
		gen.IntRange(4, 24),
		gen.IntRange(4, 24),
		gen.IntRange(4, 24),
	))

	properties.Property("4-way connections cover every ring", prop.ForAll(
		func(c0, c1, c2, c3 int) bool {
			c := []int{c0, c1, c2, c3}
			if c1+c3 > c0+c2 {
				c = []int{c1, c2, c3, c0}
			}
			k, through, err := connectionCounts(c)
			if err != nil {
				return true
			}
			for i := 0; i < 4; i++ {
				top := 0
				if i%2 == 0 {
					top = 2 * through
				}
				if k[i] < 1 || k[(i+3)%4]+k[i]+top != c[i] {
					return false
				}
			}
			rt := canonicalRim(c, k, through)
			return len(rt.contributors) == (c0+c1+c2+c3)/2-2
		},
		gen.IntRange(4, 24),
		gen.IntRange(4, 24),
		gen.IntRange(4, 24),
		gen.IntRange(4, 24),
	))

	properties.TestingRun(t)
}

// TestBlendProperties checks that blending end to end is symmetric and
// idempotent.
func TestBlendProperties(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("blend is symmetric and idempotent", prop.ForAll(
		func(ma, mb float64) bool {
			a1, b1 := testSegment(0, 8, ma), testSegment(1, 8, mb)
			a2, b2 := testSegment(0, 8, ma), testSegment(1, 8, mb)
			if BlendSampledCoordinates(a1, Finish, b1, Start) != nil ||
				BlendSampledCoordinates(b2, Start, a2, Finish) != nil {
				return false
			}
			first := a1.rings[0][0].D2[0].Norm()
			if BlendSampledCoordinates(a1, Finish, b1, Start) != nil {
				return false
			}
			want := tubenet.HarmonicMean(ma, mb)
			for q := 0; q < 8; q++ {
				for _, s := range []*Segment{a1, b1, a2, b2} {
					if !tubenet.Is0(s.rings[0][0].D2[q].Norm() - want) {
						return false
					}
				}
			}
			return tubenet.Is0(first-want) && a2.shared[Finish].owner == a2
		},
		gen.Float64Range(0.01, 10),
		gen.Float64Range(0.01, 10),
	))

	properties.TestingRun(t)
}
