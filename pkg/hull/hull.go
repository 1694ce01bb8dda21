package hull

import (
	"fmt"
	"math"
	"sort"

	"github.com/holistic-stack/c4d-sub001/pkg/geom"
	"github.com/holistic-stack/c4d-sub001/pkg/halfedge"
	"github.com/holistic-stack/c4d-sub001/pkg/primitive"
	"github.com/holistic-stack/c4d-sub001/pkg/triangulate"
)

// Hull returns the convex hull of the vertices of meshes. Empty meshes
// are ignored and no vertices at all yields an empty mesh. When every
// operand is flat in the same plane z = const the hull is taken in that
// plane and the result is flat. The result carries the color of the
// first non-empty operand.
func Hull(cfg geom.Config, meshes ...*halfedge.Mesh) (*halfedge.Mesh, error) {
	var pts []geom.Vec3
	var first *halfedge.Mesh
	for _, m := range meshes {
		if m.IsEmpty() {
			continue
		}
		if first == nil {
			first = m
		}
		pts = append(pts, m.Positions()...)
	}
	if first == nil {
		return halfedge.New(), nil
	}

	var out *halfedge.Mesh
	var err error
	if z, ok := commonPlane(cfg.Epsilon, meshes...); ok {
		out, err = flatHull(pts, z, cfg)
	} else {
		out, err = Points(pts, cfg)
	}
	if err != nil {
		return nil, err
	}
	if first.Color != nil {
		col := *first.Color
		out.Color = &col
	}
	return out, nil
}

// commonPlane reports whether every non-empty mesh is flat at the same z.
func commonPlane(eps float64, meshes ...*halfedge.Mesh) (z float64, ok bool) {
	seen := false
	for _, m := range meshes {
		if m.IsEmpty() {
			continue
		}
		mz, flat := m.IsFlat(eps)
		if !flat || (seen && math.Abs(mz-z) > eps) {
			return 0, false
		}
		z, seen = mz, true
	}
	return z, seen
}

// flatHull builds the 2D convex hull of pts projected to the XY plane by
// Andrew's monotone chain and returns it as a flat mesh at height z.
func flatHull(pts []geom.Vec3, z float64, cfg geom.Config) (*halfedge.Mesh, error) {
	w := halfedge.NewWelder(cfg.WeldTolerance)
	for _, p := range pts {
		w.Add(geom.Vec3{X: p.X, Y: p.Y})
	}
	uniq := w.Positions()
	if len(uniq) < 3 {
		return nil, geom.Geometryf("hull: need at least 3 distinct points in the plane, got %d", len(uniq))
	}
	flat := make([]geom.Vec2, len(uniq))
	for i, p := range uniq {
		flat[i] = geom.Vec2{X: p.X, Y: p.Y}
	}
	sort.Slice(flat, func(i, j int) bool {
		if flat[i].X != flat[j].X {
			return flat[i].X < flat[j].X
		}
		return flat[i].Y < flat[j].Y
	})

	ring := make([]geom.Vec2, 0, 2*len(flat))
	for pass := 0; pass < 2; pass++ {
		start := len(ring)
		for _, p := range flat {
			for len(ring) >= start+2 && triangulate.SignedArea(ring[len(ring)-2], ring[len(ring)-1], p) <= cfg.Epsilon {
				ring = ring[:len(ring)-1]
			}
			ring = append(ring, p)
		}
		ring = ring[:len(ring)-1]
		for i, j := 0, len(flat)-1; i < j; i, j = i+1, j-1 {
			flat[i], flat[j] = flat[j], flat[i]
		}
	}
	if len(ring) < 3 {
		return nil, geom.Geometryf("hull: points are collinear")
	}
	return primitive.Flat(ring, triangulate.Fan(len(ring)), z)
}

// Minkowski returns the convex hull of all pairwise vertex sums of a and
// b. It is exact for convex operands. An empty operand yields an empty
// mesh.
func Minkowski(a, b *halfedge.Mesh, cfg geom.Config) (*halfedge.Mesh, error) {
	if a.IsEmpty() || b.IsEmpty() {
		return halfedge.New(), nil
	}
	sums := make([]geom.Vec3, 0, len(a.Vertices)*len(b.Vertices))
	for _, va := range a.Vertices {
		for _, vb := range b.Vertices {
			p := va.Position
			q := vb.Position
			sums = append(sums, geom.Vec3{X: p.X + q.X, Y: p.Y + q.Y, Z: p.Z + q.Z})
		}
	}

	var out *halfedge.Mesh
	var err error
	za, flatA := a.IsFlat(cfg.Epsilon)
	zb, flatB := b.IsFlat(cfg.Epsilon)
	if flatA && flatB {
		out, err = flatHull(sums, za+zb, cfg)
	} else {
		out, err = Points(sums, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("minkowski: %w", err)
	}
	if a.Color != nil {
		col := *a.Color
		out.Color = &col
	}
	return out, nil
}

// MinkowskiAll folds Minkowski over meshes left to right. No meshes
// yields an empty mesh and one mesh is returned as a copy.
func MinkowskiAll(cfg geom.Config, meshes ...*halfedge.Mesh) (*halfedge.Mesh, error) {
	if len(meshes) == 0 {
		return halfedge.New(), nil
	}
	acc := meshes[0].Clone()
	for i, m := range meshes[1:] {
		next, err := Minkowski(acc, m, cfg)
		if err != nil {
			return nil, fmt.Errorf("operand %d: %w", i+1, err)
		}
		acc = next
	}
	return acc, nil
}
