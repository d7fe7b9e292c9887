package tubenet

import (
	"math"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestNumericBasic(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	a := 0.000000008
	if !Is0(a) {
		t.Errorf("Expected a to be zero, is not")
	}
	if h := HarmonicMean(1, 3); math.Abs(h-1.5) > Epsilon {
		t.Errorf("Expected harmonic mean of 1 and 3 to be 1.5, is %g", h)
	}
	if HarmonicMean(0, 3) != 0 {
		t.Errorf("Expected harmonic mean with 0 to be 0")
	}
}

func TestVecBasic(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	p := V(3, 2, 1)
	q := V(-3, -2, -1)
	if !p.Add(q).Equal(Origin) {
		t.Errorf("Expected p + q to be origin, is %v", p.Add(q))
	}
	if c := V(1, 0, 0).Cross(V(0, 1, 0)); !c.Equal(V(0, 0, 1)) {
		t.Errorf("Expected x × y = z, is %v", c)
	}
	if n := V(3, 4, 0).Normalized(); !Is1(n.Norm()) {
		t.Errorf("Expected unit vector, has length %g", n.Norm())
	}
	if r := V(1, 1, 0).Rejection(V(1, 0, 0)); !r.Equal(V(0, 1, 0)) {
		t.Errorf("Expected rejection (0,1,0), is %v", r)
	}
	if a := AngleBetween(V(1, 0, 0), V(0, 0, 2)); math.Abs(a-math.Pi/2) > Epsilon {
		t.Errorf("Expected right angle, is %g", a)
	}
}

func TestFrame(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	f := NewFrame(V(0, 0, 2), V(1, 0, 1))
	if !f.Axis1.Equal(V(1, 0, 0)) || !f.Axis2.Equal(V(0, 1, 0)) {
		t.Fatalf("unexpected frame axes %v, %v", f.Axis1, f.Axis2)
	}
	if a := f.Angle(V(0, 1, 5)); math.Abs(a-math.Pi/2) > Epsilon {
		t.Errorf("Expected angle π/2, is %g", a)
	}
	if d := f.Dir(math.Pi); !d.Zap().Equal(V(-1, 0, 0)) {
		t.Errorf("Expected direction (-1,0,0), is %v", d)
	}
	g := NewFrame(V(1, 0, 0), V(1, 0, 0)) // reference parallel to normal
	if !Is0(g.Axis1.Dot(g.Normal)) || !Is1(g.Axis1.Norm()) {
		t.Errorf("Expected fallback axis orthogonal to normal, is %v", g.Axis1)
	}
	if x := NormalizeAngle(-math.Pi / 2); math.Abs(x-1.5*math.Pi) > Epsilon {
		t.Errorf("Expected 3π/2, is %g", x)
	}
}
