package primitive

import (
	"math"

	"github.com/holistic-stack/c4d-sub001/pkg/geom"
	"github.com/holistic-stack/c4d-sub001/pkg/halfedge"
)

// cubeTriangles winds the 12 triangles of a box outward. Corners are
// numbered bottom ring 0-3 then top ring 4-7, each counter-clockwise from
// the origin corner.
var cubeTriangles = [12][3]uint32{
	{0, 2, 1}, {0, 3, 2}, // -Z
	{4, 5, 6}, {4, 6, 7}, // +Z
	{0, 1, 5}, {0, 5, 4}, // -Y
	{2, 3, 7}, {2, 7, 6}, // +Y
	{3, 0, 4}, {3, 4, 7}, // -X
	{1, 2, 6}, {1, 6, 5}, // +X
}

// Cube builds an axis-aligned box with one corner at the origin, or
// centred on it.
func Cube(size geom.Vec3, center bool) (*halfedge.Mesh, error) {
	if !(size.X > 0) || !(size.Y > 0) || !(size.Z > 0) {
		return nil, geom.Geometryf("cube size must be positive, got [%g, %g, %g]", size.X, size.Y, size.Z)
	}
	var o geom.Vec3
	if center {
		o = geom.Vec3{X: -size.X / 2, Y: -size.Y / 2, Z: -size.Z / 2}
	}
	x0, y0, z0 := o.X, o.Y, o.Z
	x1, y1, z1 := o.X+size.X, o.Y+size.Y, o.Z+size.Z
	pts := []geom.Vec3{
		{X: x0, Y: y0, Z: z0}, {X: x1, Y: y0, Z: z0}, {X: x1, Y: y1, Z: z0}, {X: x0, Y: y1, Z: z0},
		{X: x0, Y: y0, Z: z1}, {X: x1, Y: y0, Z: z1}, {X: x1, Y: y1, Z: z1}, {X: x0, Y: y1, Z: z1},
	}
	return halfedge.FromTriangles(pts, cubeTriangles[:])
}

// SphereRings returns the number of latitude rings used for a sphere
// with the given fragment count.
func SphereRings(fragments int) int {
	return max((fragments+1)/2, 2)
}

// Sphere builds a latitude/longitude sphere centred on the origin. Ring
// r sits at polar angle 180°·(r+0.5)/rings, so neither pole is a vertex;
// each polar cap is a fan over the outermost ring. The result has
// rings·fragments vertices and (rings-1)·fragments·2 + 2·(fragments-2)
// triangles.
func Sphere(radius float64, fragments int) (*halfedge.Mesh, error) {
	if !(radius > 0) {
		return nil, geom.Geometryf("sphere radius must be positive, got %g", radius)
	}
	frag := max(fragments, geom.MinFragments)
	rings := SphereRings(frag)

	pts := make([]geom.Vec3, 0, rings*frag)
	for r := 0; r < rings; r++ {
		phi := geom.Radians(180 * (float64(r) + 0.5) / float64(rings))
		rr, z := radius*math.Sin(phi), radius*math.Cos(phi)
		for f := 0; f < frag; f++ {
			theta := geom.Radians(360 * float64(f) / float64(frag))
			pts = append(pts, geom.Vec3{X: rr * math.Cos(theta), Y: rr * math.Sin(theta), Z: z})
		}
	}

	n := uint32(frag)
	tris := make([][3]uint32, 0, (rings-1)*frag*2+2*(frag-2))
	for i := uint32(1); i < n-1; i++ {
		tris = append(tris, [3]uint32{0, i, i + 1})
	}
	for r := uint32(0); r < uint32(rings-1); r++ {
		cur, next := r*n, (r+1)*n
		for f := uint32(0); f < n; f++ {
			g := (f + 1) % n
			tris = append(tris,
				[3]uint32{cur + g, cur + f, next + f},
				[3]uint32{cur + g, next + f, next + g},
			)
		}
	}
	base := uint32(rings-1)*n + n - 1
	for i := uint32(1); i < n-1; i++ {
		tris = append(tris, [3]uint32{base, base - i, base - i - 1})
	}
	return halfedge.FromTriangles(pts, tris)
}

// Cylinder builds a cylinder, frustum or cone along +Z. A zero radius at
// one end collapses that ring to an apex vertex.
func Cylinder(height, r1, r2 float64, center bool, fragments int) (*halfedge.Mesh, error) {
	switch {
	case !(height > 0):
		return nil, geom.Geometryf("cylinder height must be positive, got %g", height)
	case r1 < 0 || r2 < 0 || math.IsNaN(r1) || math.IsNaN(r2):
		return nil, geom.Geometryf("cylinder radii must not be negative, got %g and %g", r1, r2)
	case r1 == 0 && r2 == 0:
		return nil, geom.Geometryf("cylinder radii cannot both be zero")
	}
	n := uint32(max(fragments, geom.MinFragments))
	z0 := 0.0
	if center {
		z0 = -height / 2
	}
	z1 := z0 + height

	var pts []geom.Vec3
	ring := func(r, z float64) uint32 {
		start := uint32(len(pts))
		for i := uint32(0); i < n; i++ {
			a := 2 * math.Pi * float64(i) / float64(n)
			pts = append(pts, geom.Vec3{X: r * math.Cos(a), Y: r * math.Sin(a), Z: z})
		}
		return start
	}
	apex := func(z float64) uint32 {
		pts = append(pts, geom.Vec3{Z: z})
		return uint32(len(pts) - 1)
	}
	bottomCap := func(b uint32, tris [][3]uint32) [][3]uint32 {
		for i := uint32(1); i < n-1; i++ {
			tris = append(tris, [3]uint32{b, b + i + 1, b + i})
		}
		return tris
	}
	topCap := func(t uint32, tris [][3]uint32) [][3]uint32 {
		for i := uint32(1); i < n-1; i++ {
			tris = append(tris, [3]uint32{t, t + i, t + i + 1})
		}
		return tris
	}

	var tris [][3]uint32
	switch {
	case r1 > 0 && r2 > 0:
		b, t := ring(r1, z0), ring(r2, z1)
		for i := uint32(0); i < n; i++ {
			j := (i + 1) % n
			tris = append(tris, [3]uint32{b + i, b + j, t + i}, [3]uint32{b + j, t + j, t + i})
		}
		tris = topCap(t, bottomCap(b, tris))
	case r2 == 0:
		b := ring(r1, z0)
		a := apex(z1)
		for i := uint32(0); i < n; i++ {
			tris = append(tris, [3]uint32{b + i, b + (i+1)%n, a})
		}
		tris = bottomCap(b, tris)
	default:
		a := apex(z0)
		t := ring(r2, z1)
		for i := uint32(0); i < n; i++ {
			tris = append(tris, [3]uint32{t + (i+1)%n, t + i, a})
		}
		tris = topCap(t, tris)
	}
	return halfedge.FromTriangles(pts, tris)
}

// Polyhedron builds a mesh from points and faces. Faces with more than
// three vertices are fan-triangulated, so they should be convex. A
// closed face set wound clockwise seen from outside (the OpenSCAD
// convention) is turned inside out so the result always has positive
// volume.
func Polyhedron(points []geom.Vec3, faces [][]int) (*halfedge.Mesh, error) {
	if len(points) < 4 {
		return nil, geom.Geometryf("polyhedron needs at least 4 points, got %d", len(points))
	}
	if len(faces) < 4 {
		return nil, geom.Geometryf("polyhedron needs at least 4 faces, got %d", len(faces))
	}
	var tris [][3]uint32
	for fi, f := range faces {
		if len(f) < 3 {
			return nil, geom.Geometryf("polyhedron face %d has %d vertices, want at least 3", fi, len(f))
		}
		for _, v := range f {
			if v < 0 || v >= len(points) {
				return nil, geom.Indexf("polyhedron face %d references point %d, have %d points", fi, v, len(points))
			}
		}
		for i := 1; i < len(f)-1; i++ {
			tris = append(tris, [3]uint32{uint32(f[0]), uint32(f[i]), uint32(f[i+1])})
		}
	}
	pts, tris := halfedge.Compact(points, tris)
	m, err := halfedge.FromTriangles(pts, tris)
	if err != nil {
		return nil, err
	}
	if m.Volume() < 0 {
		m.Flip()
	}
	return m, nil
}
