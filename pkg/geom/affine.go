package geom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Affine is a 3D affine transform: a 3×3 linear part plus a translation,
// with an implicit bottom row of (0, 0, 0, 1).
// The zero value is the identity transform.
type Affine struct {
	// The diagonal is stored with the identity subtracted so the zero
	// value is the identity: d00 = m00-1, d11 = m11-1, d22 = m22-1.
	d00, x01, x02, x03 float64
	x10, d11, x12, x13 float64
	x20, x21, d22, x23 float64
}

// Identity returns the identity transform.
func Identity() Affine { return Affine{} }

// NewAffine builds a transform from a row-major 4×4 matrix. The bottom row
// is ignored; projective transforms are not representable.
func NewAffine(m [16]float64) Affine {
	return Affine{
		d00: m[0] - 1, x01: m[1], x02: m[2], x03: m[3],
		x10: m[4], d11: m[5] - 1, x12: m[6], x13: m[7],
		x20: m[8], x21: m[9], d22: m[10] - 1, x23: m[11],
	}
}

// Rows returns the transform as a row-major 4×4 matrix.
func (a Affine) Rows() [16]float64 {
	return [16]float64{
		a.d00 + 1, a.x01, a.x02, a.x03,
		a.x10, a.d11 + 1, a.x12, a.x13,
		a.x20, a.x21, a.d22 + 1, a.x23,
		0, 0, 0, 1,
	}
}

// Translation returns a transform that moves points by v.
func Translation(v Vec3) Affine {
	return Affine{x03: v.X, x13: v.Y, x23: v.Z}
}

// Scaling returns a transform that scales about the origin.
func Scaling(s Vec3) Affine {
	return Affine{d00: s.X - 1, d11: s.Y - 1, d22: s.Z - 1}
}

// RotationX returns a rotation of rad radians about the X axis.
func RotationX(rad float64) Affine {
	s, c := math.Sincos(rad)
	return Affine{d11: c - 1, x12: -s, x21: s, d22: c - 1}
}

// RotationY returns a rotation of rad radians about the Y axis.
func RotationY(rad float64) Affine {
	s, c := math.Sincos(rad)
	return Affine{d00: c - 1, x02: s, x20: -s, d22: c - 1}
}

// RotationZ returns a rotation of rad radians about the Z axis.
func RotationZ(rad float64) Affine {
	s, c := math.Sincos(rad)
	return Affine{d00: c - 1, x01: -s, x10: s, d11: c - 1}
}

// EulerRotation rotates by deg.X degrees about X, then deg.Y about Y,
// then deg.Z about Z.
func EulerRotation(deg Vec3) Affine {
	return RotationZ(Radians(deg.Z)).Mul(RotationY(Radians(deg.Y))).Mul(RotationX(Radians(deg.X)))
}

// Mirror returns the reflection across the plane through the origin with
// the given normal. A normal shorter than 1e-4 yields the identity.
func Mirror(normal Vec3) Affine {
	if r3.Norm(normal) < 1e-4 {
		return Affine{}
	}
	n := r3.Unit(normal)
	return Affine{
		d00: -2 * n.X * n.X, x01: -2 * n.X * n.Y, x02: -2 * n.X * n.Z,
		x10: -2 * n.Y * n.X, d11: -2 * n.Y * n.Y, x12: -2 * n.Y * n.Z,
		x20: -2 * n.Z * n.X, x21: -2 * n.Z * n.Y, d22: -2 * n.Z * n.Z,
	}
}

// IsIdentity reports whether a is exactly the identity.
func (a Affine) IsIdentity() bool { return a == Affine{} }

// Mul returns the composition a·b: the result applies b first, then a.
func (a Affine) Mul(b Affine) Affine {
	if a.IsIdentity() {
		return b
	}
	if b.IsIdentity() {
		return a
	}
	x := a.Rows()
	y := b.Rows()
	var m [16]float64
	for r := 0; r < 3; r++ {
		for c := 0; c < 4; c++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += x[r*4+k] * y[k*4+c]
			}
			m[r*4+c] = sum
		}
	}
	return NewAffine(m)
}

// Apply transforms the point p.
func (a Affine) Apply(p Vec3) Vec3 {
	return Vec3{
		X: (a.d00+1)*p.X + a.x01*p.Y + a.x02*p.Z + a.x03,
		Y: a.x10*p.X + (a.d11+1)*p.Y + a.x12*p.Z + a.x13,
		Z: a.x20*p.X + a.x21*p.Y + (a.d22+1)*p.Z + a.x23,
	}
}

// ApplyDir transforms the direction v, ignoring translation.
func (a Affine) ApplyDir(v Vec3) Vec3 {
	return Vec3{
		X: (a.d00+1)*v.X + a.x01*v.Y + a.x02*v.Z,
		Y: a.x10*v.X + (a.d11+1)*v.Y + a.x12*v.Z,
		Z: a.x20*v.X + a.x21*v.Y + (a.d22+1)*v.Z,
	}
}

// Det returns the determinant of the linear part. A negative determinant
// means the transform reverses orientation.
func (a Affine) Det() float64 {
	m00, m11, m22 := a.d00+1, a.d11+1, a.d22+1
	return m00*(m11*m22-a.x12*a.x21) -
		a.x01*(a.x10*m22-a.x12*a.x20) +
		a.x02*(a.x10*a.x21-m11*a.x20)
}

// Inv returns the inverse transform. ok is false when the linear part is
// singular.
func (a Affine) Inv() (inv Affine, ok bool) {
	if a.IsIdentity() {
		return a, true
	}
	det := a.Det()
	if math.Abs(det) < 1e-15 {
		return Affine{}, false
	}
	m00, m11, m22 := a.d00+1, a.d11+1, a.d22+1
	id := 1 / det
	i00 := (m11*m22 - a.x12*a.x21) * id
	i01 := (a.x02*a.x21 - a.x01*m22) * id
	i02 := (a.x01*a.x12 - a.x02*m11) * id
	i10 := (a.x12*a.x20 - a.x10*m22) * id
	i11 := (m00*m22 - a.x02*a.x20) * id
	i12 := (a.x02*a.x10 - m00*a.x12) * id
	i20 := (a.x10*a.x21 - m11*a.x20) * id
	i21 := (a.x01*a.x20 - m00*a.x21) * id
	i22 := (m00*m11 - a.x01*a.x10) * id
	t := Vec3{X: a.x03, Y: a.x13, Z: a.x23}
	return NewAffine([16]float64{
		i00, i01, i02, -(i00*t.X + i01*t.Y + i02*t.Z),
		i10, i11, i12, -(i10*t.X + i11*t.Y + i12*t.Z),
		i20, i21, i22, -(i20*t.X + i21*t.Y + i22*t.Z),
		0, 0, 0, 1,
	}), true
}

// ApproxEqual reports whether every element of a and b differs by at
// most tol.
func (a Affine) ApproxEqual(b Affine, tol float64) bool {
	x, y := a.Rows(), b.Rows()
	for i := range x {
		if math.Abs(x[i]-y[i]) > tol {
			return false
		}
	}
	return true
}

func (a Affine) String() string {
	m := a.Rows()
	return fmt.Sprintf("[%g %g %g %g; %g %g %g %g; %g %g %g %g]",
		m[0], m[1], m[2], m[3], m[4], m[5], m[6], m[7], m[8], m[9], m[10], m[11])
}
