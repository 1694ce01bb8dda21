package bsp

import (
	"math"

	"github.com/holistic-stack/c4d-sub001/pkg/geom"
	"github.com/holistic-stack/c4d-sub001/pkg/halfedge"
	"gonum.org/v1/gonum/spatial/r3"
)

// rayDir has pairwise irrational component ratios so a ray from a
// lattice point is unlikely to graze an edge or vertex of typical
// axis-aligned geometry.
var rayDir, _ = geom.Unit(geom.Vec3{X: 1, Y: math.Sqrt2, Z: math.Pi})

// PointInMesh reports whether p is inside the closed mesh m by counting
// ray crossings (Möller-Trumbore intersection per face).
func PointInMesh(m *halfedge.Mesh, p geom.Vec3) bool {
	const eps = 1e-12
	hits := 0
	for f := range m.Faces {
		v := m.FacePositions(uint32(f))
		e1 := r3.Sub(v[1], v[0])
		e2 := r3.Sub(v[2], v[0])
		h := r3.Cross(rayDir, e2)
		a := r3.Dot(e1, h)
		if math.Abs(a) < eps {
			continue
		}
		inv := 1 / a
		s := r3.Sub(p, v[0])
		u := inv * r3.Dot(s, h)
		if u < 0 || u > 1 {
			continue
		}
		q := r3.Cross(s, e1)
		w := inv * r3.Dot(rayDir, q)
		if w < 0 || u+w > 1 {
			continue
		}
		if inv*r3.Dot(e2, q) > eps {
			hits++
		}
	}
	return hits%2 == 1
}
