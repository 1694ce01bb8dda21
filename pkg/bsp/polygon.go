// Package bsp implements the polygon and binary space partitioning layer
// of the boolean engine: planar convex polygons, splitting by a plane,
// an arena-backed BSP tree built by autopartition, and classification of
// polygons against that tree.
package bsp

import (
	"math"

	"github.com/holistic-stack/c4d-sub001/pkg/geom"
	"github.com/holistic-stack/c4d-sub001/pkg/halfedge"
	"gonum.org/v1/gonum/spatial/r3"
)

// Polygon is a planar convex polygon. Plane is the supporting plane with
// the normal given by counter-clockwise vertex order.
type Polygon struct {
	Vertices []geom.Vec3
	Plane    geom.Plane
}

// NewPolygon returns the polygon through vs. ok is false when vs spans no
// area.
func NewPolygon(vs []geom.Vec3) (p Polygon, ok bool) {
	pl, ok := geom.PlaneFromPolygon(vs)
	if !ok {
		return Polygon{}, false
	}
	return Polygon{Vertices: vs, Plane: pl}, true
}

// Flip returns the polygon with reversed winding and plane.
func (p Polygon) Flip() Polygon {
	vs := make([]geom.Vec3, len(p.Vertices))
	for i, v := range p.Vertices {
		vs[len(vs)-1-i] = v
	}
	return Polygon{Vertices: vs, Plane: p.Plane.Flip()}
}

// Centroid returns the vertex average.
func (p Polygon) Centroid() geom.Vec3 {
	return geom.Centroid(p.Vertices)
}

// Area returns the polygon's area.
func (p Polygon) Area() float64 {
	var n geom.Vec3
	for i := 1; i+1 < len(p.Vertices); i++ {
		n = r3.Add(n, geom.TriangleNormal(p.Vertices[0], p.Vertices[i], p.Vertices[i+1]))
	}
	return r3.Norm(n) / 2
}

// FromMesh converts every face of m into a triangle polygon. A face with
// no area or a non-finite vertex cannot be classified and is a boolean
// error.
func FromMesh(m *halfedge.Mesh) ([]Polygon, error) {
	polys := make([]Polygon, 0, len(m.Faces))
	for f := range m.Faces {
		pos := m.FacePositions(uint32(f))
		for _, q := range pos {
			if !finite(q) {
				return nil, geom.Booleanf("face %d has non-finite vertex %v", f, q)
			}
		}
		pl, ok := geom.PlaneFromPoints(pos[0], pos[1], pos[2])
		if !ok {
			return nil, geom.Booleanf("face %d is degenerate: vertices %v are collinear", f, pos)
		}
		polys = append(polys, Polygon{Vertices: pos[:], Plane: pl})
	}
	return polys, nil
}

func finite(v geom.Vec3) bool {
	return !math.IsNaN(v.X+v.Y+v.Z) && !math.IsInf(v.X+v.Y+v.Z, 0)
}

// SplitPolygon classifies p against plane. For geom.Spanning, front and
// back hold the two pieces, each sharing p's plane; otherwise they are
// zero Polygons. Vertices within eps of the plane count as on it.
func SplitPolygon(plane geom.Plane, p Polygon, eps float64) (side geom.Side, front, back Polygon) {
	sides := make([]geom.Side, len(p.Vertices))
	for i, v := range p.Vertices {
		sides[i] = plane.ClassifyPoint(v, eps)
		side |= sides[i]
	}
	if side != geom.Spanning {
		return side, Polygon{}, Polygon{}
	}
	n := len(p.Vertices)
	f := make([]geom.Vec3, 0, n+1)
	b := make([]geom.Vec3, 0, n+1)
	for i, vi := range p.Vertices {
		j := (i + 1) % n
		si, sj := sides[i], sides[j]
		if si != geom.Back {
			f = append(f, vi)
		}
		if si != geom.Front {
			b = append(b, vi)
		}
		if si|sj == geom.Spanning {
			vj := p.Vertices[j]
			t := -plane.Distance(vi) / r3.Dot(plane.Normal, r3.Sub(vj, vi))
			v := geom.Lerp(vi, vj, t)
			f = append(f, v)
			b = append(b, v)
		}
	}
	if len(f) >= 3 {
		front = Polygon{Vertices: f, Plane: p.Plane}
	}
	if len(b) >= 3 {
		back = Polygon{Vertices: b, Plane: p.Plane}
	}
	return side, front, back
}
