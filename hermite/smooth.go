package hermite

import (
	"math"

	"github.com/npillmayer/tubenet"
)

// ScalingMode selects how a derivative magnitude is derived from the arc
// lengths of the elements on either side of a point.
type ScalingMode int

const (
	// ArithmeticMean: half of the sum of adjacent arc lengths.
	ArithmeticMean ScalingMode = iota
	// HarmonicMean: arc lengths weighted by proportion from the other side.
	HarmonicMean
)

func (m ScalingMode) magnitude(a, b float64) float64 {
	if m == HarmonicMean {
		return tubenet.HarmonicMean(a, b)
	}
	return 0.5 * (a + b)
}

// LineSmoothing holds the constraints for SmoothLine.
type LineSmoothing struct {
	FixAllDirections   bool // only magnitudes are smoothed
	FixStartDerivative bool
	FixEndDerivative   bool
	FixStartDirection  bool
	FixEndDirection    bool
	Mode               ScalingMode
}

const smoothTolerance = 1e-6

// SmoothLine returns derivatives for points x which vary smoothly and are
// near arc length, starting from d. Points are treated as an open line.
func SmoothLine(x, d []tubenet.Vec3, opt LineSmoothing) []tubenet.Vec3 {
	count := len(x)
	if count < 2 || len(d) != count {
		panic("hermite.SmoothLine: too few points or mismatched derivatives")
	}
	md := append([]tubenet.Vec3(nil), d...)
	if count == 2 {
		if !(opt.FixStartDerivative || opt.FixEndDerivative || opt.FixStartDirection ||
			opt.FixEndDirection || opt.FixAllDirections) {
			delta := x[1].Sub(x[0])
			return []tubenet.Vec3{delta, delta}
		}
		if opt.FixAllDirections || (opt.FixStartDirection && opt.FixEndDirection) {
			l := FittedArcLength(x[0], d[0], x[1], d[1], true)
			return []tubenet.Vec3{d[0].WithMagnitude(l), d[1].WithMagnitude(l)}
		}
	}
	last := make([]tubenet.Vec3, count)
	arcLengths := make([]float64, count-1)
	for iter := 0; iter < maxIterations; iter++ {
		copy(last, md)
		for e := 0; e < count-1; e++ {
			arcLengths[e] = ArcLength(x[e], md[e], x[e+1], md[e+1])
		}
		if !opt.FixStartDerivative {
			if opt.FixAllDirections || opt.FixStartDirection {
				md[0] = positiveMagnitude(d[0], 2.0*arcLengths[0]-last[1].Norm())
			} else {
				md[0] = LagrangeHermiteDerivative(x[0], x[1], last[1], 0)
			}
		}
		for n := 1; n < count-1; n++ {
			if !opt.FixAllDirections {
				md[n] = meanDirection(x[n-1], x[n], x[n+1], arcLengths[n-1], arcLengths[n])
			}
			md[n] = md[n].WithMagnitude(opt.Mode.magnitude(arcLengths[n-1], arcLengths[n]))
		}
		if !opt.FixEndDerivative {
			if opt.FixAllDirections || opt.FixEndDirection {
				md[count-1] = positiveMagnitude(d[count-1], 2.0*arcLengths[count-2]-last[count-2].Norm())
			} else {
				md[count-1] = HermiteLagrangeDerivative(x[count-2], last[count-2], x[count-1], 1)
			}
		}
		if converged(md, last, arcLengths) {
			return md
		}
	}
	tracer().Debugf("smooth line: max iterations reached for %d points", count)
	return md
}

// SmoothLoop returns derivatives for points x which vary smoothly and are
// near arc length, starting from d. The first point follows the last.
func SmoothLoop(x, d []tubenet.Vec3, fixAllDirections bool, mode ScalingMode) []tubenet.Vec3 {
	count := len(x)
	if count < 2 || len(d) != count {
		panic("hermite.SmoothLoop: too few points or mismatched derivatives")
	}
	md := append([]tubenet.Vec3(nil), d...)
	last := make([]tubenet.Vec3, count)
	arcLengths := make([]float64, count)
	for iter := 0; iter < maxIterations; iter++ {
		copy(last, md)
		for e := 0; e < count; e++ {
			arcLengths[e] = ArcLength(x[e], md[e], x[(e+1)%count], md[(e+1)%count])
		}
		for n := 0; n < count; n++ {
			nm := (n + count - 1) % count
			if !fixAllDirections {
				md[n] = meanDirection(x[nm], x[n], x[(n+1)%count], arcLengths[nm], arcLengths[n])
			}
			md[n] = md[n].WithMagnitude(mode.magnitude(arcLengths[nm], arcLengths[n]))
		}
		if converged(md, last, arcLengths) {
			return md
		}
	}
	tracer().Debugf("smooth loop: max iterations reached for %d points", count)
	return md
}

// meanDirection is the mean of directions to the previous and next point,
// weighted by the fraction of arc length towards the other side.
func meanDirection(xm, x, xp tubenet.Vec3, am, ap float64) tubenet.Vec3 {
	sum := am + ap
	if tubenet.Is0(sum) {
		return xp.Sub(xm)
	}
	return x.Sub(xm).Scaled(ap/sum).AddScaled(am/sum, xp.Sub(x))
}

func positiveMagnitude(d tubenet.Vec3, mag float64) tubenet.Vec3 {
	if mag > 0 {
		return d.WithMagnitude(mag)
	}
	return tubenet.Vec3{}
}

func converged(md, last []tubenet.Vec3, arcLengths []float64) bool {
	sum := 0.0
	for _, l := range arcLengths {
		sum += l
	}
	dtol := smoothTolerance * sum / float64(len(arcLengths))
	for n := range md {
		for c := 0; c < 3; c++ {
			if math.Abs(md[n][c]-last[n][c]) > dtol {
				return false
			}
		}
	}
	return true
}
