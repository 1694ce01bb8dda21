// Package native implements the kernel.Kernel interface on the half-edge
// mesh kernel: exact polygonal primitives, BSP booleans, QuickHull and
// Minkowski sums.
package native

import (
	"fmt"

	"github.com/holistic-stack/c4d-sub001/pkg/csg"
	"github.com/holistic-stack/c4d-sub001/pkg/geom"
	"github.com/holistic-stack/c4d-sub001/pkg/halfedge"
	"github.com/holistic-stack/c4d-sub001/pkg/hull"
	"github.com/holistic-stack/c4d-sub001/pkg/kernel"
	"github.com/holistic-stack/c4d-sub001/pkg/primitive"
)

// Compile-time interface check.
var _ kernel.Kernel = (*Kernel)(nil)

// solid wraps a half-edge mesh to implement kernel.Solid. The mesh is
// never modified after wrapping.
type solid struct {
	m *halfedge.Mesh
}

// BoundingBox returns the axis-aligned bounding box.
func (s *solid) BoundingBox() (min, max [3]float64) {
	if s.m.IsEmpty() {
		return min, max
	}
	bb := s.m.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// Kernel implements kernel.Kernel with half-edge meshes.
type Kernel struct {
	cfg geom.Config
}

// New returns a Kernel using cfg for every tolerance and for fragment
// counts left unspecified.
func New(cfg geom.Config) *Kernel {
	return &Kernel{cfg: cfg}
}

// Config returns the kernel's configuration.
func (k *Kernel) Config() geom.Config {
	return k.cfg
}

// MeshOf returns the half-edge mesh behind s.
func MeshOf(s kernel.Solid) (*halfedge.Mesh, error) {
	w, ok := s.(*solid)
	if !ok || w == nil {
		return nil, fmt.Errorf("native: solid of type %T does not belong to this kernel", s)
	}
	return w.m, nil
}

func wrap(m *halfedge.Mesh, err error) (kernel.Solid, error) {
	if err != nil {
		return nil, err
	}
	return &solid{m: m}, nil
}

func (k *Kernel) fragments(n int, r float64) int {
	if n > 0 {
		return n
	}
	return k.cfg.Segments.Fragments(r)
}

// Cube creates a box with one corner at the origin, or centred on it.
func (k *Kernel) Cube(size geom.Vec3, center bool) (kernel.Solid, error) {
	return wrap(primitive.Cube(size, center))
}

// Sphere creates a sphere centred on the origin. fragments <= 0 uses the
// kernel's segment parameters.
func (k *Kernel) Sphere(radius float64, fragments int) (kernel.Solid, error) {
	return wrap(primitive.Sphere(radius, k.fragments(fragments, radius)))
}

// Cylinder creates a frustum along +Z with bottom radius r1 and top
// radius r2.
func (k *Kernel) Cylinder(height, r1, r2 float64, center bool, fragments int) (kernel.Solid, error) {
	return wrap(primitive.Cylinder(height, r1, r2, center, k.fragments(fragments, max(r1, r2))))
}

// Polyhedron creates a solid from explicit faces.
func (k *Kernel) Polyhedron(points []geom.Vec3, faces [][]int) (kernel.Solid, error) {
	return wrap(primitive.Polyhedron(points, faces))
}

// Square creates a flat rectangle in the plane z = 0.
func (k *Kernel) Square(size geom.Vec2, center bool) (kernel.Solid, error) {
	return wrap(primitive.Square(size, center))
}

// Circle creates a flat regular polygon in the plane z = 0.
func (k *Kernel) Circle(radius float64, fragments int) (kernel.Solid, error) {
	return wrap(primitive.Circle(radius, k.fragments(fragments, radius)))
}

// Polygon creates a flat polygon with optional holes.
func (k *Kernel) Polygon(points []geom.Vec2, paths [][]int) (kernel.Solid, error) {
	return wrap(primitive.Polygon(points, paths))
}

func (k *Kernel) boolean(op csg.Op, a, b kernel.Solid) (kernel.Solid, error) {
	ma, err := MeshOf(a)
	if err != nil {
		return nil, err
	}
	mb, err := MeshOf(b)
	if err != nil {
		return nil, err
	}
	return wrap(csg.Apply(op, ma, mb, k.cfg))
}

// Union returns the union of two solids.
func (k *Kernel) Union(a, b kernel.Solid) (kernel.Solid, error) {
	return k.boolean(csg.OpUnion, a, b)
}

// Difference returns the difference a - b.
func (k *Kernel) Difference(a, b kernel.Solid) (kernel.Solid, error) {
	return k.boolean(csg.OpDifference, a, b)
}

// Intersection returns the intersection of two solids.
func (k *Kernel) Intersection(a, b kernel.Solid) (kernel.Solid, error) {
	return k.boolean(csg.OpIntersection, a, b)
}

// Hull returns the convex hull of all solids.
func (k *Kernel) Hull(solids ...kernel.Solid) (kernel.Solid, error) {
	meshes := make([]*halfedge.Mesh, len(solids))
	for i, s := range solids {
		m, err := MeshOf(s)
		if err != nil {
			return nil, err
		}
		meshes[i] = m
	}
	return wrap(hull.Hull(k.cfg, meshes...))
}

// Minkowski returns the Minkowski sum of a and b.
func (k *Kernel) Minkowski(a, b kernel.Solid) (kernel.Solid, error) {
	ma, err := MeshOf(a)
	if err != nil {
		return nil, err
	}
	mb, err := MeshOf(b)
	if err != nil {
		return nil, err
	}
	return wrap(hull.Minkowski(ma, mb, k.cfg))
}

// Transform applies m to a copy of s.
func (k *Kernel) Transform(s kernel.Solid, m geom.Affine) (kernel.Solid, error) {
	ms, err := MeshOf(s)
	if err != nil {
		return nil, err
	}
	if m.Det() == 0 {
		return nil, geom.Geometryf("transform is singular: %v", m)
	}
	out := ms.Clone()
	out.Transform(m)
	return &solid{m: out}, nil
}

// LinearExtrude sweeps a flat solid along +Z.
func (k *Kernel) LinearExtrude(s kernel.Solid, p kernel.LinearExtrude) (kernel.Solid, error) {
	m, err := MeshOf(s)
	if err != nil {
		return nil, err
	}
	return wrap(primitive.LinearExtrude(m, primitive.LinearParams(p)))
}

// RotateExtrude revolves a flat solid around the Z axis. Fragments <= 0
// are derived from the profile's largest radius.
func (k *Kernel) RotateExtrude(s kernel.Solid, p kernel.RotateExtrude) (kernel.Solid, error) {
	m, err := MeshOf(s)
	if err != nil {
		return nil, err
	}
	if p.Fragments <= 0 && !m.IsEmpty() {
		p.Fragments = k.cfg.Segments.Fragments(m.BoundingBox().Max.X)
	}
	return wrap(primitive.RotateExtrude(m, primitive.RotateParams(p)))
}

// Offset grows or shrinks a flat solid in its own plane.
func (k *Kernel) Offset(s kernel.Solid, p kernel.Offset) (kernel.Solid, error) {
	m, err := MeshOf(s)
	if err != nil {
		return nil, err
	}
	return wrap(csg.Offset(m, csg.OffsetParams(p), k.cfg))
}

// Color tags a copy of s with rgba.
func (k *Kernel) Color(s kernel.Solid, rgba [4]float64) (kernel.Solid, error) {
	m, err := MeshOf(s)
	if err != nil {
		return nil, err
	}
	out := m.Clone()
	out.Color = &halfedge.Color{float32(rgba[0]), float32(rgba[1]), float32(rgba[2]), float32(rgba[3])}
	return &solid{m: out}, nil
}

// Empty returns a solid with no geometry.
func (k *Kernel) Empty() kernel.Solid {
	return &solid{m: halfedge.New()}
}

// ToMesh flattens s into a render buffer.
func (k *Kernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	m, err := MeshOf(s)
	if err != nil {
		return nil, err
	}
	return m.ToBuffer(), nil
}
