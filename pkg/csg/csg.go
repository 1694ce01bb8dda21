// Package csg implements the boolean operators on closed half-edge
// meshes. Solid operands go through BSP classification; flat operands in
// a common plane go through 2D polygon clipping. Every result is closed.
package csg

import (
	"fmt"
	"math"

	"github.com/holistic-stack/c4d-sub001/pkg/bsp"
	"github.com/holistic-stack/c4d-sub001/pkg/geom"
	"github.com/holistic-stack/c4d-sub001/pkg/halfedge"
)

// Op is a boolean operator.
type Op int

const (
	OpUnion Op = iota
	OpDifference
	OpIntersection
)

func (o Op) String() string {
	switch o {
	case OpUnion:
		return "union"
	case OpDifference:
		return "difference"
	case OpIntersection:
		return "intersection"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// Union returns a ∪ b with the default configuration.
func Union(a, b *halfedge.Mesh) (*halfedge.Mesh, error) {
	return Apply(OpUnion, a, b, geom.DefaultConfig())
}

// Difference returns a − b with the default configuration.
func Difference(a, b *halfedge.Mesh) (*halfedge.Mesh, error) {
	return Apply(OpDifference, a, b, geom.DefaultConfig())
}

// Intersection returns a ∩ b with the default configuration.
func Intersection(a, b *halfedge.Mesh) (*halfedge.Mesh, error) {
	return Apply(OpIntersection, a, b, geom.DefaultConfig())
}

// Apply evaluates op on a and b. Neither operand is modified. The
// result carries a's color.
func Apply(op Op, a, b *halfedge.Mesh, cfg geom.Config) (*halfedge.Mesh, error) {
	if op < OpUnion || op > OpIntersection {
		return nil, geom.Booleanf("unknown operator %v", op)
	}
	if err := cfg.Validate(); err != nil {
		return nil, geom.Booleanf("%v: %v", op, err)
	}

	switch {
	case a.IsEmpty() && b.IsEmpty():
		return halfedge.New(), nil
	case b.IsEmpty():
		if op == OpIntersection {
			return halfedge.New(), nil
		}
		return a.Clone(), nil
	case a.IsEmpty():
		if op == OpUnion {
			return b.Clone(), nil
		}
		return halfedge.New(), nil
	}

	za, flatA := a.IsFlat(cfg.Epsilon)
	zb, flatB := b.IsFlat(cfg.Epsilon)
	switch {
	case flatA && flatB && math.Abs(za-zb) <= cfg.Epsilon:
		return FlatBoolean(op, a, b, cfg)
	case flatA && flatB:
		return disjoint(op, a, b)
	case flatA != flatB:
		return nil, geom.Booleanf("%v: cannot mix a flat and a solid operand", op)
	}

	// Touching boxes count as overlapping so that shared faces fuse.
	if !geom.BoxesOverlap(a.BoundingBox(), b.BoundingBox(), -cfg.Epsilon) {
		return disjoint(op, a, b)
	}
	return solid(op, a, b, cfg)
}

// disjoint handles operands whose interiors cannot meet.
func disjoint(op Op, a, b *halfedge.Mesh) (*halfedge.Mesh, error) {
	switch op {
	case OpUnion:
		m := a.Clone()
		m.Append(b)
		return m, nil
	case OpDifference:
		return a.Clone(), nil
	default:
		return halfedge.New(), nil
	}
}

// AppendDisjoint concatenates a and b without any classification. It
// refuses operands whose bounding boxes overlap, since the result would
// not bound a single solid.
func AppendDisjoint(a, b *halfedge.Mesh, cfg geom.Config) (*halfedge.Mesh, error) {
	if geom.BoxesOverlap(a.BoundingBox(), b.BoundingBox(), cfg.Epsilon) {
		return nil, geom.Booleanf("append: operand bounding boxes overlap")
	}
	m := a.Clone()
	m.Append(b)
	return m, nil
}

type routing struct {
	keepInside bool
	flip       bool
	route      bsp.Route
}

// rules gives, per operator, how a's polygons are classified against b's
// tree and how b's polygons are classified against a's tree. Coplanar
// faces are routed so that A op A yields A for union and intersection
// and nothing for difference.
var rules = map[Op][2]routing{
	OpUnion: {
		{route: bsp.Route{Same: geom.Front, Opposite: geom.Back}},
		{route: bsp.Route{Same: geom.Back, Opposite: geom.Back}},
	},
	OpIntersection: {
		{keepInside: true, route: bsp.Route{Same: geom.Back, Opposite: geom.Front}},
		{keepInside: true, route: bsp.Route{Same: geom.Front, Opposite: geom.Front}},
	},
	OpDifference: {
		{route: bsp.Route{Same: geom.Back, Opposite: geom.Front}},
		{keepInside: true, flip: true, route: bsp.Route{Same: geom.Front, Opposite: geom.Front}},
	},
}

func solid(op Op, a, b *halfedge.Mesh, cfg geom.Config) (*halfedge.Mesh, error) {
	pa, err := bsp.FromMesh(a)
	if err != nil {
		return nil, fmt.Errorf("%v: first operand: %w", op, err)
	}
	pb, err := bsp.FromMesh(b)
	if err != nil {
		return nil, fmt.Errorf("%v: second operand: %w", op, err)
	}
	ta, err := bsp.Build(pa, cfg)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", op, err)
	}
	tb, err := bsp.Build(pb, cfg)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", op, err)
	}

	r := rules[op]
	keep := pick(tb, pa, r[0])
	keep = append(keep, pick(ta, pb, r[1])...)

	m, err := rebuild(keep, cfg)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", op, err)
	}
	if a.Color != nil {
		col := *a.Color
		m.Color = &col
	}
	return m, nil
}

func pick(t *bsp.Tree, polys []bsp.Polygon, r routing) []bsp.Polygon {
	in, out := t.Classify(polys, r.route)
	keep := out
	if r.keepInside {
		keep = in
	}
	if r.flip {
		for i := range keep {
			keep[i] = keep[i].Flip()
		}
	}
	return keep
}

// Fold applies op left to right: ((m0 op m1) op m2) ... An empty list
// yields an empty mesh and a single mesh is returned as a copy.
func Fold(op Op, meshes []*halfedge.Mesh, cfg geom.Config) (*halfedge.Mesh, error) {
	if len(meshes) == 0 {
		return halfedge.New(), nil
	}
	acc := meshes[0].Clone()
	for i, m := range meshes[1:] {
		next, err := Apply(op, acc, m, cfg)
		if err != nil {
			return nil, fmt.Errorf("operand %d: %w", i+1, err)
		}
		acc = next
	}
	return acc, nil
}

// UnionAll folds Union over meshes.
func UnionAll(meshes ...*halfedge.Mesh) (*halfedge.Mesh, error) {
	return Fold(OpUnion, meshes, geom.DefaultConfig())
}

// DifferenceAll subtracts every later mesh from the first.
func DifferenceAll(meshes ...*halfedge.Mesh) (*halfedge.Mesh, error) {
	return Fold(OpDifference, meshes, geom.DefaultConfig())
}

// IntersectionAll folds Intersection over meshes.
func IntersectionAll(meshes ...*halfedge.Mesh) (*halfedge.Mesh, error) {
	return Fold(OpIntersection, meshes, geom.DefaultConfig())
}
