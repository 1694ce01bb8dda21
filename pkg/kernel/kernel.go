// Package kernel defines the abstract geometry kernel interface.
// Implementations (native, sdfx) provide solid modeling and boolean
// operations behind this interface. The kernel abstraction allows
// swapping backends without changing the rest of the system.
package kernel

import (
	"errors"

	"github.com/holistic-stack/c4d-sub001/pkg/geom"
)

// ErrUnsupported is returned by backends for operations they cannot
// represent.
var ErrUnsupported = errors.New("kernel: operation not supported by this backend")

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// LinearExtrude carries linear_extrude arguments. Twist is in degrees
// over the full height. Scale 0 means 1. Slices 0 derives a slice count
// from the twist.
type LinearExtrude struct {
	Height float64
	Center bool
	Twist  float64
	Scale  float64
	Slices int
}

// RotateExtrude carries rotate_extrude arguments. Angle is in degrees;
// 0 means a full turn.
type RotateExtrude struct {
	Angle     float64
	Fragments int
}

// Offset carries offset arguments for flat solids. Delta grows the
// outline when positive and shrinks it when negative. MiterLimit 0 means
// the backend default. Fragments 0 derives the round-join resolution from
// |Delta|.
type Offset struct {
	Delta      float64
	Join       geom.JoinType
	MiterLimit float64
	Fragments  int
}

// Kernel is the abstract geometry kernel interface. Every operation
// returns a new Solid and leaves its inputs untouched. Flat (2D) solids
// lie in the plane z = 0 until transformed.
type Kernel interface {
	// Primitives
	Cube(size geom.Vec3, center bool) (Solid, error)
	Sphere(radius float64, fragments int) (Solid, error)
	Cylinder(height, r1, r2 float64, center bool, fragments int) (Solid, error)
	Polyhedron(points []geom.Vec3, faces [][]int) (Solid, error)
	Square(size geom.Vec2, center bool) (Solid, error)
	Circle(radius float64, fragments int) (Solid, error)
	Polygon(points []geom.Vec2, paths [][]int) (Solid, error)

	// Boolean operations
	Union(a, b Solid) (Solid, error)
	Difference(a, b Solid) (Solid, error)
	Intersection(a, b Solid) (Solid, error)

	// Convex operations
	Hull(solids ...Solid) (Solid, error)
	Minkowski(a, b Solid) (Solid, error)

	// Transforms
	Transform(s Solid, m geom.Affine) (Solid, error)
	LinearExtrude(s Solid, p LinearExtrude) (Solid, error)
	RotateExtrude(s Solid, p RotateExtrude) (Solid, error)
	Offset(s Solid, p Offset) (Solid, error)
	Color(s Solid, rgba [4]float64) (Solid, error)

	// Empty returns the solid with no geometry.
	Empty() Solid

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
