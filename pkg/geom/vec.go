package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 is a point or direction in model space.
type Vec3 = r3.Vec

// Vec2 is a point in the XY plane of a flat cross-section.
type Vec2 = r2.Vec

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// NearlyEqual reports whether a and b are within tol of each other.
func NearlyEqual(a, b Vec3, tol float64) bool {
	return r3.Norm2(r3.Sub(a, b)) <= tol*tol
}

// Lerp interpolates linearly from a (t=0) to b (t=1).
func Lerp(a, b Vec3, t float64) Vec3 {
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}

// Unit returns v scaled to unit length. ok is false when v is shorter
// than 1e-12, in which case the zero vector is returned.
func Unit(v Vec3) (u Vec3, ok bool) {
	n := r3.Norm(v)
	if n < 1e-12 {
		return Vec3{}, false
	}
	return r3.Scale(1/n, v), true
}

// Centroid returns the arithmetic mean of pts.
func Centroid(pts []Vec3) Vec3 {
	if len(pts) == 0 {
		return Vec3{}
	}
	var c Vec3
	for _, p := range pts {
		c = r3.Add(c, p)
	}
	return r3.Scale(1/float64(len(pts)), c)
}

// TriangleNormal returns the unnormalised normal (b-a)×(c-a). Its length
// is twice the triangle's area.
func TriangleNormal(a, b, c Vec3) Vec3 {
	return r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
}

// Component returns the i-th coordinate of v (0=X, 1=Y, 2=Z).
func Component(v Vec3, i int) float64 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// MinVec returns the component-wise minimum.
func MinVec(a, b Vec3) Vec3 {
	return Vec3{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)}
}

// MaxVec returns the component-wise maximum.
func MaxVec(a, b Vec3) Vec3 {
	return Vec3{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)}
}
