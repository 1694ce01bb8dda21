package primitive

import (
	"math"

	"github.com/holistic-stack/c4d-sub001/pkg/geom"
	"github.com/holistic-stack/c4d-sub001/pkg/halfedge"
	"github.com/holistic-stack/c4d-sub001/pkg/triangulate"
)

// Flat builds a double-sided mesh at height z from a counter-clockwise
// planar triangulation. The front faces look along +Z, the back faces
// along -Z.
func Flat(pts []geom.Vec2, tris [][3]uint32, z float64) (*halfedge.Mesh, error) {
	pos := make([]geom.Vec3, len(pts))
	for i, p := range pts {
		pos[i] = geom.Vec3{X: p.X, Y: p.Y, Z: z}
	}
	pos, tris = halfedge.Compact(pos, tris)
	return halfedge.FromDoubleSided(pos, tris)
}

// Square builds a flat rectangle in the XY plane.
func Square(size geom.Vec2, center bool) (*halfedge.Mesh, error) {
	if !(size.X > 0) || !(size.Y > 0) {
		return nil, geom.Geometryf("square size must be positive, got [%g, %g]", size.X, size.Y)
	}
	var x0, y0 float64
	if center {
		x0, y0 = -size.X/2, -size.Y/2
	}
	pts := []geom.Vec2{
		{X: x0, Y: y0}, {X: x0 + size.X, Y: y0},
		{X: x0 + size.X, Y: y0 + size.Y}, {X: x0, Y: y0 + size.Y},
	}
	return Flat(pts, triangulate.Fan(4), 0)
}

// Circle builds a flat regular polygon inscribed in a circle.
func Circle(radius float64, fragments int) (*halfedge.Mesh, error) {
	if !(radius > 0) {
		return nil, geom.Geometryf("circle radius must be positive, got %g", radius)
	}
	n := max(fragments, geom.MinFragments)
	pts := make([]geom.Vec2, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = geom.Vec2{X: radius * math.Cos(a), Y: radius * math.Sin(a)}
	}
	return Flat(pts, triangulate.Fan(n), 0)
}

// Polygon builds a flat polygon. With no paths the points form a single
// outline. Otherwise the first path is the outline and later paths cut
// holes; paths with fewer than three indices are ignored. Regions are
// filled by the even-odd rule, so orientation does not matter.
func Polygon(points []geom.Vec2, paths [][]int) (*halfedge.Mesh, error) {
	if len(points) < 3 {
		return nil, geom.Geometryf("polygon needs at least 3 points, got %d", len(points))
	}
	var contours [][]geom.Vec2
	if len(paths) == 0 {
		contours = [][]geom.Vec2{points}
	}
	for pi, path := range paths {
		if len(path) < 3 {
			continue
		}
		c := make([]geom.Vec2, len(path))
		for i, idx := range path {
			if idx < 0 || idx >= len(points) {
				return nil, geom.Indexf("polygon path %d references point %d, have %d points", pi, idx, len(points))
			}
			c[i] = points[idx]
		}
		contours = append(contours, c)
	}
	if len(contours) == 0 {
		return nil, geom.Geometryf("polygon has no path with 3 or more points")
	}
	pts, tris, err := triangulate.Polygons(contours, triangulate.EvenOdd)
	if err != nil {
		return nil, err
	}
	return Flat(pts, tris, 0)
}
