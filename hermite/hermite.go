/*
Package hermite implements cubic Hermite curves: basis functions,
interpolation, arc lengths, resampling by arc length and smoothing of
derivatives along lines and loops.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.

All functions assume a local coordinate xi ∈ [0,1] for an element spanning
from (v1,d1) to (v2,d2). For xi outside of [0,1] the element's cubic is
extrapolated.
*/
package hermite

import (
	"errors"
	"math"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/tubenet"
)

// tracer writes to trace with key 'tubenet.hermite'
func tracer() tracing.Trace {
	return tracing.Select("tubenet.hermite")
}

var (
	// ErrTooFewPoints indicates a curve with less than the required number of points.
	ErrTooFewPoints = errors.New("curve has too few points")
	// ErrMismatchedDerivatives indicates different counts of points and derivatives.
	ErrMismatchedDerivatives = errors.New("curve has mismatched number of derivatives")
	// ErrDegenerate indicates an element with coincident points and zero derivatives.
	ErrDegenerate = errors.New("degenerate curve element")
)

const maxIterations = 100

// 4 point Gauss-Legendre quadrature on [0,1]
var gaussXi4 = [4]float64{
	0.5 - 0.5*0.8611363115940526,
	0.5 - 0.5*0.3399810435848563,
	0.5 + 0.5*0.3399810435848563,
	0.5 + 0.5*0.8611363115940526,
}
var gaussWt4 = [4]float64{
	0.5 * 0.3478548451374538,
	0.5 * 0.6521451548625461,
	0.5 * 0.6521451548625461,
	0.5 * 0.3478548451374538,
}

// number of sub-intervals for composite quadrature
const arcLengthIntervals = 2

// Basis returns the cubic Hermite basis functions f1..f4 at xi.
func Basis(xi float64) (f1, f2, f3, f4 float64) {
	xi2 := xi * xi
	xi3 := xi2 * xi
	f1 = 1.0 - 3.0*xi2 + 2.0*xi3
	f2 = xi - 2.0*xi2 + xi3
	f3 = 3.0*xi2 - 2.0*xi3
	f4 = -xi2 + xi3
	return
}

// BasisDerivatives returns the first derivatives of the basis functions at xi.
func BasisDerivatives(xi float64) (f1, f2, f3, f4 float64) {
	xi2 := xi * xi
	f1 = -6.0*xi + 6.0*xi2
	f2 = 1.0 - 4.0*xi + 3.0*xi2
	f3 = 6.0*xi - 6.0*xi2
	f4 = -2.0*xi + 3.0*xi2
	return
}

// Interpolate returns the position on the cubic Hermite element at xi.
func Interpolate(v1, d1, v2, d2 tubenet.Vec3, xi float64) tubenet.Vec3 {
	f1, f2, f3, f4 := Basis(xi)
	return combine(f1, v1, f2, d1, f3, v2, f4, d2)
}

// InterpolateDerivative returns dx/dxi on the cubic Hermite element at xi.
func InterpolateDerivative(v1, d1, v2, d2 tubenet.Vec3, xi float64) tubenet.Vec3 {
	f1, f2, f3, f4 := BasisDerivatives(xi)
	return combine(f1, v1, f2, d1, f3, v2, f4, d2)
}

// InterpolateScalar interpolates a scalar cubic Hermite function.
func InterpolateScalar(v1, d1, v2, d2, xi float64) float64 {
	f1, f2, f3, f4 := Basis(xi)
	return f1*v1 + f2*d1 + f3*v2 + f4*d2
}

// InterpolateScalarDerivative returns the derivative of a scalar cubic Hermite function.
func InterpolateScalarDerivative(v1, d1, v2, d2, xi float64) float64 {
	f1, f2, f3, f4 := BasisDerivatives(xi)
	return f1*v1 + f2*d1 + f3*v2 + f4*d2
}

func combine(f1 float64, v1 tubenet.Vec3, f2 float64, d1 tubenet.Vec3,
	f3 float64, v2 tubenet.Vec3, f4 float64, d2 tubenet.Vec3) tubenet.Vec3 {
	var r tubenet.Vec3
	for c := 0; c < 3; c++ {
		r[c] = f1*v1[c] + f2*d1[c] + f3*v2[c] + f4*d2[c]
	}
	return r
}

// LagrangeHermiteDerivative is the derivative at xi of the quadratic through
// v1 and v2 with derivative d2 at v2.
func LagrangeHermiteDerivative(v1, v2, d2 tubenet.Vec3, xi float64) tubenet.Vec3 {
	return v1.Scaled(-2.0+2.0*xi).AddScaled(2.0-2.0*xi, v2).AddScaled(-1.0+2.0*xi, d2)
}

// HermiteLagrangeDerivative is the derivative at xi of the quadratic through
// v1 and v2 with derivative d1 at v1.
func HermiteLagrangeDerivative(v1, d1, v2 tubenet.Vec3, xi float64) tubenet.Vec3 {
	return v1.Scaled(-2.0*xi).AddScaled(1.0-2.0*xi, d1).AddScaled(2.0*xi, v2)
}

// === Arc lengths ===========================================================

// arcLengthRange integrates |dx/dxi| over [a,b] by composite quadrature.
func arcLengthRange(v1, d1, v2, d2 tubenet.Vec3, a, b float64) float64 {
	length := 0.0
	h := (b - a) / arcLengthIntervals
	for k := 0; k < arcLengthIntervals; k++ {
		x0 := a + float64(k)*h
		for i := 0; i < 4; i++ {
			dm := InterpolateDerivative(v1, d1, v2, d2, x0+gaussXi4[i]*h)
			length += gaussWt4[i] * h * dm.Norm()
		}
	}
	return length
}

// ArcLength returns the (approximate) arc length of a cubic Hermite element.
func ArcLength(v1, d1, v2, d2 tubenet.Vec3) float64 {
	return arcLengthRange(v1, d1, v2, d2, 0, 1)
}

// ArcLengthToXi returns the arc length of a cubic Hermite element from 0 up to xi.
func ArcLengthToXi(v1, d1, v2, d2 tubenet.Vec3, xi float64) float64 {
	if xi <= 0 {
		return 0
	}
	return arcLengthRange(v1, d1, v2, d2, 0, xi)
}

// FittedArcLength computes the arc length between v1 and v2 with d1 and d2
// rescaled to that arc length. Iterative. If rescale is set, the start
// value is the chord length, otherwise the arc length with the given derivatives.
func FittedArcLength(v1, d1, v2, d2 tubenet.Vec3, rescale bool) float64 {
	var last float64
	if rescale {
		last = v2.Distance(v1)
	} else {
		last = ArcLength(v1, d1, v2, d2)
	}
	u1, u2 := d1.Normalized(), d2.Normalized()
	arcLength := last
	for iter := 0; iter < maxIterations; iter++ {
		arcLength = ArcLength(v1, u1.Scaled(last), v2, u2.Scaled(last))
		if iter > 9 {
			arcLength = 0.8*arcLength + 0.2*last
		}
		if math.Abs(arcLength-last) < 1e-6*arcLength {
			return arcLength
		}
		last = arcLength
	}
	tracer().Debugf("fitted arc length: max iterations reached, length = %g", arcLength)
	return arcLength
}

// DerivativeScaling computes a scale factor for d1 and d2 which makes the
// mean of their magnitudes equal to the arc length of the element.
func DerivativeScaling(v1, d1, v2, d2 tubenet.Vec3) float64 {
	origMag := 0.5 * (d1.Norm() + d2.Norm())
	if tubenet.Is0(origMag) {
		return 1.0
	}
	scaling := 1.0
	for iter := 0; iter < maxIterations; iter++ {
		mag := origMag * scaling
		arcLength := ArcLength(v1, d1.Scaled(scaling), v2, d2.Scaled(scaling))
		if math.Abs(arcLength-mag) < 1e-6*arcLength {
			return scaling
		}
		scaling *= arcLength / mag
	}
	tracer().Debugf("derivative scaling: max iterations reached, scaling = %g", scaling)
	return scaling
}

// xiAtArcLength finds xi on an element with arc length total where the arc
// length from the start equals dist. Newton steps, safeguarded by bisection.
func xiAtArcLength(v1, d1, v2, d2 tubenet.Vec3, dist, total float64) float64 {
	if dist <= 0 || total <= 0 {
		return 0
	}
	if dist >= total {
		return 1
	}
	lo, hi := 0.0, 1.0
	xi := dist / total
	for iter := 0; iter < maxIterations; iter++ {
		diff := ArcLengthToXi(v1, d1, v2, d2, xi) - dist
		if math.Abs(diff) <= 1e-10*total {
			return xi
		}
		if diff > 0 {
			hi = xi
		} else {
			lo = xi
		}
		next := 0.5 * (lo + hi)
		if speed := InterpolateDerivative(v1, d1, v2, d2, xi).Norm(); speed > 0 {
			if n := xi - diff/speed; n > lo && n < hi {
				next = n
			}
		}
		if hi-lo < 1e-14 {
			return next
		}
		xi = next
	}
	return xi
}
