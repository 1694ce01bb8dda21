// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library. Surfaces are smooth and
// meshed by marching cubes, so fragment counts are ignored. Operations
// with no signed-distance form (hull, Minkowski sums, polyhedra, flat
// shapes, offsets and extrusions) return kernel.ErrUnsupported.
package sdfx

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/holistic-stack/c4d-sub001/pkg/geom"
	"github.com/holistic-stack/c4d-sub001/pkg/kernel"
	"gonum.org/v1/gonum/mat"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// defaultMeshCells controls marching cubes tessellation resolution.
const defaultMeshCells = 200

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid. A nil SDF3 is
// the empty solid.
type sdfxSolid struct {
	s     sdf.SDF3
	color *[4]float32
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	if s.s == nil {
		return min, max
	}
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
}

// New returns a new SdfxKernel meshing at the default resolution.
func New() *SdfxKernel {
	return &SdfxKernel{cells: defaultMeshCells}
}

// NewWithCells returns a kernel whose marching cubes grid has cells
// cells along the longest bounding box axis.
func NewWithCells(cells int) *SdfxKernel {
	if cells <= 0 {
		cells = defaultMeshCells
	}
	return &SdfxKernel{cells: cells}
}

// unwrap extracts the wrapper from a kernel.Solid.
func unwrap(s kernel.Solid) (*sdfxSolid, error) {
	w, ok := s.(*sdfxSolid)
	if !ok || w == nil {
		return nil, fmt.Errorf("sdfx: solid of type %T does not belong to this kernel", s)
	}
	return w, nil
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

// Cube creates a box. sdf.Box3D centers the box at the origin, so an
// uncentered cube is shifted by half its size to put its minimum corner
// at the origin.
func (k *SdfxKernel) Cube(size geom.Vec3, center bool) (kernel.Solid, error) {
	if !(size.X > 0) || !(size.Y > 0) || !(size.Z > 0) {
		return nil, geom.Geometryf("cube size must be positive, got [%g, %g, %g]", size.X, size.Y, size.Z)
	}
	s, err := sdf.Box3D(v3.Vec{X: size.X, Y: size.Y, Z: size.Z}, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: cube: %w", err)
	}
	if !center {
		s = sdf.Transform3D(s, sdf.Translate3d(v3.Vec{X: size.X / 2, Y: size.Y / 2, Z: size.Z / 2}))
	}
	return wrap(s), nil
}

// Sphere creates a sphere centered on the origin.
func (k *SdfxKernel) Sphere(radius float64, _ int) (kernel.Solid, error) {
	if !(radius > 0) {
		return nil, geom.Geometryf("sphere radius must be positive, got %g", radius)
	}
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, fmt.Errorf("sdfx: sphere: %w", err)
	}
	return wrap(s), nil
}

// Cylinder creates a cylinder or cone along Z. sdfx centers both on the
// origin.
func (k *SdfxKernel) Cylinder(height, r1, r2 float64, center bool, _ int) (kernel.Solid, error) {
	if !(height > 0) || r1 < 0 || r2 < 0 || (r1 == 0 && r2 == 0) {
		return nil, geom.Geometryf("cylinder needs positive height and a positive radius, got h=%g r1=%g r2=%g", height, r1, r2)
	}
	var s sdf.SDF3
	var err error
	if r1 == r2 {
		s, err = sdf.Cylinder3D(height, r1, 0)
	} else {
		s, err = sdf.Cone3D(height, r1, r2, 0)
	}
	if err != nil {
		return nil, fmt.Errorf("sdfx: cylinder: %w", err)
	}
	if !center {
		s = sdf.Transform3D(s, sdf.Translate3d(v3.Vec{Z: height / 2}))
	}
	return wrap(s), nil
}

func (k *SdfxKernel) Polyhedron([]geom.Vec3, [][]int) (kernel.Solid, error) {
	return nil, fmt.Errorf("sdfx: polyhedron: %w", kernel.ErrUnsupported)
}

func (k *SdfxKernel) Square(geom.Vec2, bool) (kernel.Solid, error) {
	return nil, fmt.Errorf("sdfx: square: %w", kernel.ErrUnsupported)
}

func (k *SdfxKernel) Circle(float64, int) (kernel.Solid, error) {
	return nil, fmt.Errorf("sdfx: circle: %w", kernel.ErrUnsupported)
}

func (k *SdfxKernel) Polygon([]geom.Vec2, [][]int) (kernel.Solid, error) {
	return nil, fmt.Errorf("sdfx: polygon: %w", kernel.ErrUnsupported)
}

func operands(a, b kernel.Solid) (*sdfxSolid, *sdfxSolid, error) {
	wa, err := unwrap(a)
	if err != nil {
		return nil, nil, err
	}
	wb, err := unwrap(b)
	if err != nil {
		return nil, nil, err
	}
	return wa, wb, nil
}

// Union returns the union of two solids.
func (k *SdfxKernel) Union(a, b kernel.Solid) (kernel.Solid, error) {
	wa, wb, err := operands(a, b)
	if err != nil {
		return nil, err
	}
	switch {
	case wb.s == nil:
		return wa, nil
	case wa.s == nil:
		return wb, nil
	}
	return &sdfxSolid{s: sdf.Union3D(wa.s, wb.s), color: wa.color}, nil
}

// Difference returns the difference a - b.
func (k *SdfxKernel) Difference(a, b kernel.Solid) (kernel.Solid, error) {
	wa, wb, err := operands(a, b)
	if err != nil {
		return nil, err
	}
	if wa.s == nil || wb.s == nil {
		return wa, nil
	}
	return &sdfxSolid{s: sdf.Difference3D(wa.s, wb.s), color: wa.color}, nil
}

// Intersection returns the intersection of two solids.
func (k *SdfxKernel) Intersection(a, b kernel.Solid) (kernel.Solid, error) {
	wa, wb, err := operands(a, b)
	if err != nil {
		return nil, err
	}
	if wa.s == nil || wb.s == nil {
		return k.Empty(), nil
	}
	return &sdfxSolid{s: sdf.Intersect3D(wa.s, wb.s), color: wa.color}, nil
}

func (k *SdfxKernel) Hull(...kernel.Solid) (kernel.Solid, error) {
	return nil, fmt.Errorf("sdfx: hull: %w", kernel.ErrUnsupported)
}

func (k *SdfxKernel) Minkowski(_, _ kernel.Solid) (kernel.Solid, error) {
	return nil, fmt.Errorf("sdfx: minkowski: %w", kernel.ErrUnsupported)
}

// Transform applies an affine matrix. sdfx only builds matrices from
// translations, axis rotations and scales, so the linear part is split
// by singular value decomposition into rotation · scale · rotation.
func (k *SdfxKernel) Transform(s kernel.Solid, m geom.Affine) (kernel.Solid, error) {
	w, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	if w.s == nil || m.IsIdentity() {
		return w, nil
	}
	mm, err := toM44(m)
	if err != nil {
		return nil, err
	}
	return &sdfxSolid{s: sdf.Transform3D(w.s, mm), color: w.color}, nil
}

func toM44(m geom.Affine) (sdf.M44, error) {
	r := m.Rows()
	lin := mat.NewDense(3, 3, []float64{r[0], r[1], r[2], r[4], r[5], r[6], r[8], r[9], r[10]})
	if math.Abs(mat.Det(lin)) < 1e-12 {
		return sdf.M44{}, geom.Geometryf("transform is singular: %v", m)
	}
	var svd mat.SVD
	if !svd.Factorize(lin, mat.SVDFull) {
		return sdf.M44{}, geom.Geometryf("transform cannot be decomposed: %v", m)
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	sigma := svd.Values(nil)
	// Keep U and V proper rotations; any reflection moves into sigma.
	if mat.Det(&u) < 0 {
		negateColumn(&u, 2)
		sigma[2] = -sigma[2]
	}
	if mat.Det(&v) < 0 {
		negateColumn(&v, 2)
		sigma[2] = -sigma[2]
	}
	var vt mat.Dense
	vt.CloneFrom(v.T())

	out := sdf.Translate3d(v3.Vec{X: r[3], Y: r[7], Z: r[11]})
	out = out.Mul(rotation(&u))
	out = out.Mul(sdf.Scale3d(v3.Vec{X: sigma[0], Y: sigma[1], Z: sigma[2]}))
	out = out.Mul(rotation(&vt))
	return out, nil
}

func negateColumn(d *mat.Dense, j int) {
	for i := 0; i < 3; i++ {
		d.Set(i, j, -d.At(i, j))
	}
}

// rotation expresses a proper rotation matrix as Rz·Ry·Rx.
func rotation(r mat.Matrix) sdf.M44 {
	var x, y, z float64
	sy := -r.At(2, 0)
	y = math.Asin(math.Max(-1, math.Min(1, sy)))
	if math.Abs(math.Cos(y)) > 1e-9 {
		x = math.Atan2(r.At(2, 1), r.At(2, 2))
		z = math.Atan2(r.At(1, 0), r.At(0, 0))
	} else if sy > 0 {
		x = math.Atan2(r.At(0, 1), r.At(1, 1))
	} else {
		x = math.Atan2(-r.At(0, 1), r.At(1, 1))
	}
	return sdf.RotateZ(z).Mul(sdf.RotateY(y)).Mul(sdf.RotateX(x))
}

func (k *SdfxKernel) LinearExtrude(kernel.Solid, kernel.LinearExtrude) (kernel.Solid, error) {
	return nil, fmt.Errorf("sdfx: linear_extrude: %w", kernel.ErrUnsupported)
}

func (k *SdfxKernel) RotateExtrude(kernel.Solid, kernel.RotateExtrude) (kernel.Solid, error) {
	return nil, fmt.Errorf("sdfx: rotate_extrude: %w", kernel.ErrUnsupported)
}

func (k *SdfxKernel) Offset(kernel.Solid, kernel.Offset) (kernel.Solid, error) {
	return nil, fmt.Errorf("sdfx: offset: %w", kernel.ErrUnsupported)
}

// Color tags the solid; the tag is emitted per vertex by ToMesh.
func (k *SdfxKernel) Color(s kernel.Solid, rgba [4]float64) (kernel.Solid, error) {
	w, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	c := [4]float32{float32(rgba[0]), float32(rgba[1]), float32(rgba[2]), float32(rgba[3])}
	return &sdfxSolid{s: w.s, color: &c}, nil
}

// Empty returns the solid with no geometry.
func (k *SdfxKernel) Empty() kernel.Solid {
	return &sdfxSolid{}
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	w, err := unwrap(s)
	if err != nil {
		return nil, err
	}
	if w.s == nil {
		return &kernel.Mesh{}, nil
	}

	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(w.s, renderer)

	numTri := len(triangles)
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		// Compute face normal.
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	out := &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}
	if w.color != nil {
		out.SetColor(*w.color)
	}
	return out, nil
}
