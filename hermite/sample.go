package hermite

import (
	"fmt"

	"github.com/npillmayer/tubenet"
)

// Sampling configures SampleSmooth.
//
// StartMagnitude and EndMagnitude are derivative magnitudes per output
// element at the respective end; 0 means "not set". If neither is set,
// elements are evenly spaced. If only one is set, the other is chosen so
// that the mean of both equals the even spacing.
type Sampling struct {
	Elements       int
	Start, End     *Location // optional trimmed start and end
	StartMagnitude float64
	EndMagnitude   float64
}

// Samples are points resampled from a curve.
//
// Locations and Scales are needed to interpolate additional fields of the
// source curve at the sample points (see InterpolateSamples). Scales are the
// factors dxi(source)/dxi(samples) for converting derivatives.
type Samples struct {
	X, D      []tubenet.Vec3
	Locations []Location
	Scales    []float64
}

// SampleSmooth resamples the curve (or its part between Start and End) to
// Elements elements, with element sizes changing smoothly from StartMagnitude
// to EndMagnitude. The returned derivatives are scaled to the new element
// spacing. For a loop, the last sample repeats the first one.
func (c *Curve) SampleSmooth(s Sampling) (*Samples, error) {
	n := s.Elements
	if n < 1 {
		return nil, fmt.Errorf("%w: cannot sample %d elements", ErrTooFewPoints, n)
	}
	startLength, endLength := 0.0, c.Length()
	if s.Start != nil {
		startLength = c.LengthTo(*s.Start)
	}
	if s.End != nil {
		endLength = c.LengthTo(*s.End)
	}
	length := endLength - startLength
	if length <= 0 {
		return nil, fmt.Errorf("%w: trimmed curve has length %g", ErrDegenerate, length)
	}
	magStart, magEnd := s.StartMagnitude, s.EndMagnitude
	N := float64(n)
	switch {
	case magStart > 0 && magEnd > 0:
	case magEnd > 0:
		magStart = (2.0*length - N*magEnd) / N
	case magStart > 0:
		magEnd = (2.0*length - N*magStart) / N
	default:
		magStart = length / N
		magEnd = magStart
	}
	// distance along the curve is itself a cubic Hermite function of the new xi
	x1, d1 := startLength, magStart*N
	x2, d2 := endLength, magEnd*N
	smp := &Samples{
		X:         make([]tubenet.Vec3, n+1),
		D:         make([]tubenet.Vec3, n+1),
		Locations: make([]Location, n+1),
		Scales:    make([]float64, n+1),
	}
	for i := 0; i <= n; i++ {
		xi := float64(i) / N
		dist := InterpolateScalar(x1, d1, x2, d2, xi)
		mag := InterpolateScalarDerivative(x1, d1, x2, d2, xi) / N
		loc := c.LocationAtLength(dist)
		x, d := c.Evaluate(loc)
		sf := 0.0
		if dn := d.Norm(); !tubenet.Is0(dn) {
			sf = mag / dn
		}
		smp.X[i] = x
		smp.D[i] = d.Scaled(sf)
		smp.Locations[i] = loc
		smp.Scales[i] = sf
	}
	if c.Loop && s.Start == nil && s.End == nil {
		smp.X[n], smp.D[n] = smp.X[0], smp.D[0]
	}
	tracer().Debugf("sampled %d elements over length %g", n, length)
	return smp, nil
}

// InterpolateSamples interpolates additional values v with derivatives d,
// given at the points of the source curve, at the sample locations. v and d
// index like the source curve's points; for loops the last element wraps.
func InterpolateSamples(v, d []tubenet.Vec3, smp *Samples) (vOut, dOut []tubenet.Vec3) {
	vOut = make([]tubenet.Vec3, len(smp.Locations))
	dOut = make([]tubenet.Vec3, len(smp.Locations))
	for i, loc := range smp.Locations {
		e := loc.Element
		n := (e + 1) % len(v)
		vOut[i] = Interpolate(v[e], d[e], v[n], d[n], loc.Xi)
		dOut[i] = InterpolateDerivative(v[e], d[e], v[n], d[n], loc.Xi).Scaled(smp.Scales[i])
	}
	return
}
