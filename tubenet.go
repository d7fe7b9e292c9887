/*
Package tubenet implements meshing of tubular networks: 3D vectors and
frames shared by the sub-packages, which build structured tube meshes from
a 1D network of Hermite path segments.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package tubenet

import (
	"fmt"
	"math"

	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'tubenet'
func tracer() tracing.Trace {
	return tracing.Select("tubenet")
}

// === Numeric Data Type =====================================================

// Deg2Rad is a constant for converting from DEG to RAD or vice versa
var Deg2Rad float64 = 0.01745329251

// Epsilon : numbers below ε are considered 0
var Epsilon float64 = 0.0000001

// Is0 is a predicate: is n = 0 ?
func Is0(n float64) bool {
	return math.Abs(n) <= Epsilon
}

// Is1 is a predicate: is n = 1.0 ?
func Is1(n float64) bool {
	return math.Abs(1-n) <= Epsilon
}

// Zap makes n = 0 if n "means" to be zero
func Zap(n float64) float64 {
	if Is0(n) {
		n = 0
	}
	return n
}

// HarmonicMean returns the harmonic mean of a and b, which is 0 if either
// of them is 0.
func HarmonicMean(a, b float64) float64 {
	if Is0(a) || Is0(b) {
		return 0
	}
	return 2.0 / (1.0/a + 1.0/b)
}

// === Vector Data Type ======================================================

// Vec3 is a vector or point in 3D space.
type Vec3 [3]float64

// Origin represents the frequently used constant (0,0,0).
var Origin = V(0, 0, 0)

// V is a quick notation for contructing a vector from floats.
func V(x, y, z float64) Vec3 {
	return Vec3{x, y, z}
}

// Pretty Stringer for vectors.
func (v Vec3) String() string {
	return fmt.Sprintf("(%g,%g,%g)", v[0], v[1], v[2])
}

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v[0] + w[0], v[1] + w[1], v[2] + w[2]}
}

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) Vec3 {
	return Vec3{v[0] - w[0], v[1] - w[1], v[2] - w[2]}
}

// Neg returns -v.
func (v Vec3) Neg() Vec3 {
	return Vec3{-v[0], -v[1], -v[2]}
}

// Scaled returns a new vector scaled by factor a.
func (v Vec3) Scaled(a float64) Vec3 {
	return Vec3{v[0] * a, v[1] * a, v[2] * a}
}

// AddScaled returns v + a*w.
func (v Vec3) AddScaled(a float64, w Vec3) Vec3 {
	return Vec3{v[0] + a*w[0], v[1] + a*w[1], v[2] + a*w[2]}
}

// Dot is the scalar product of v and w.
func (v Vec3) Dot(w Vec3) float64 {
	return v[0]*w[0] + v[1]*w[1] + v[2]*w[2]
}

// Cross is the vector product v × w.
func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		v[1]*w[2] - v[2]*w[1],
		v[2]*w[0] - v[0]*w[2],
		v[0]*w[1] - v[1]*w[0],
	}
}

// Norm is the euclidean length of v.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// Distance returns |v - w|.
func (v Vec3) Distance(w Vec3) float64 {
	return v.Sub(w).Norm()
}

// IsZero is a predicate: is |v| = 0 ?
func (v Vec3) IsZero() bool {
	return Is0(v.Norm())
}

// Normalized returns v scaled to unit length. The zero vector is returned
// unchanged.
func (v Vec3) Normalized() Vec3 {
	n := v.Norm()
	if Is0(n) {
		return v
	}
	return v.Scaled(1.0 / n)
}

// WithMagnitude returns a vector in direction of v with length mag.
func (v Vec3) WithMagnitude(mag float64) Vec3 {
	n := v.Norm()
	if Is0(n) {
		return v
	}
	return v.Scaled(mag / n)
}

// Rejection returns the part of v orthogonal to unit vector u.
func (v Vec3) Rejection(u Vec3) Vec3 {
	return v.AddScaled(-v.Dot(u), u)
}

// Lerp interpolates linearly: (1-t)*v + t*w.
func (v Vec3) Lerp(w Vec3, t float64) Vec3 {
	return v.Scaled(1-t).AddScaled(t, w)
}

// Zap rounds all components to Epsilon.
func (v Vec3) Zap() Vec3 {
	return Vec3{Zap(v[0]), Zap(v[1]), Zap(v[2])}
}

// Equal compares two vectors.
func (v Vec3) Equal(w Vec3) bool {
	return Is0(v[0]-w[0]) && Is0(v[1]-w[1]) && Is0(v[2]-w[2])
}

// AngleBetween returns the angle between v and w in radians, in [0,π].
func AngleBetween(v, w Vec3) float64 {
	nv, nw := v.Norm(), w.Norm()
	if Is0(nv) || Is0(nw) {
		return 0
	}
	c := v.Dot(w) / (nv * nw)
	return math.Acos(math.Max(-1, math.Min(1, c)))
}

// Mean returns the arithmetic mean of vectors vs.
func Mean(vs ...Vec3) Vec3 {
	var m Vec3
	if len(vs) == 0 {
		return m
	}
	for _, v := range vs {
		m = m.Add(v)
	}
	return m.Scaled(1.0 / float64(len(vs)))
}

// === Frames ================================================================

// Frame is an orthonormal basis (Axis1, Axis2, Normal) used to measure and
// construct directions in the plane orthogonal to Normal.
type Frame struct {
	Axis1, Axis2, Normal Vec3
}

// NewFrame creates a frame with the given normal, with Axis1 being the part
// of ref orthogonal to normal. If ref is (nearly) parallel to normal, another
// reference direction is chosen.
func NewFrame(normal, ref Vec3) Frame {
	n := normal.Normalized()
	a1 := ref.Rejection(n)
	if a1.Norm() < 1e-6*math.Max(1, ref.Norm()) {
		alt := V(1, 0, 0)
		if math.Abs(n[0]) > 0.9 {
			alt = V(0, 1, 0)
		}
		a1 = alt.Rejection(n)
		tracer().Debugf("frame reference parallel to normal %v, using %v", n, a1)
	}
	a1 = a1.Normalized()
	return Frame{Axis1: a1, Axis2: n.Cross(a1), Normal: n}
}

// Angle returns the counter-clockwise angle of v projected into the frame's
// plane, measured from Axis1, in the range (-π,π].
func (f Frame) Angle(v Vec3) float64 {
	return math.Atan2(v.Dot(f.Axis2), v.Dot(f.Axis1))
}

// Dir returns the unit direction at angle theta in the frame's plane.
func (f Frame) Dir(theta float64) Vec3 {
	return f.Axis1.Scaled(math.Cos(theta)).AddScaled(math.Sin(theta), f.Axis2)
}

// NormalizeAngle maps theta into [0,2π).
func NormalizeAngle(theta float64) float64 {
	theta = math.Mod(theta, 2*math.Pi)
	if theta < 0 {
		theta += 2 * math.Pi
	}
	return theta
}
