// Package geom provides the 3D vector arithmetic used by the layout engine.
//
// All values are float64. Vec3 is a plain value type; every operation returns
// a new vector and never mutates its receiver.
package geom

import "math"

// Vec3 is a point or direction in 3D space.
type Vec3 struct {
	X, Y, Z float64
}

// Zero is the origin / null vector.
var Zero = Vec3{}

// One is the unit scale vector (1, 1, 1).
var One = Vec3{1, 1, 1}

// V is shorthand for constructing a Vec3.
func V(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Scale returns v multiplied by s.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Len returns the Euclidean length of v.
func (v Vec3) Len() float64 { return math.Sqrt(v.Dot(v)) }

// Normalize returns v scaled to unit length, or Zero when v has no usable
// length (zero, subnormal overflow or non-finite).
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l == 0 || math.IsInf(l, 0) || math.IsNaN(l) {
		return Zero
	}
	return v.Scale(1 / l)
}

// IsFinite reports whether all three components are finite numbers.
func (v Vec3) IsFinite() bool {
	return finite(v.X) && finite(v.Y) && finite(v.Z)
}

// Lerp linearly interpolates between a and b by t (unclamped).
func Lerp(a, b Vec3, t float64) Vec3 {
	return a.Add(b.Sub(a).Scale(t))
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Vec3) float64 { return a.Sub(b).Len() }

// Key is the exact bit-pattern identity of a vector. Two vectors have the same
// key only if every coordinate has the same IEEE-754 representation, so 0 and
// -0 differ and NaN equals itself.
type Key [3]uint64

// KeyOf returns the bit-pattern key of v.
func KeyOf(v Vec3) Key {
	return Key{math.Float64bits(v.X), math.Float64bits(v.Y), math.Float64bits(v.Z)}
}

// Vec returns the vector a key was built from.
func (k Key) Vec() Vec3 {
	return Vec3{math.Float64frombits(k[0]), math.Float64frombits(k[1]), math.Float64frombits(k[2])}
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
