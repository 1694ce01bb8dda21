package csg

import (
	"fmt"
	"math"

	clipper "github.com/ctessum/go.clipper"
	"github.com/holistic-stack/c4d-sub001/pkg/geom"
	"github.com/holistic-stack/c4d-sub001/pkg/halfedge"
	"github.com/holistic-stack/c4d-sub001/pkg/primitive"
	"github.com/holistic-stack/c4d-sub001/pkg/triangulate"
)

var clipTypes = map[Op]clipper.ClipType{
	OpUnion:        clipper.CtUnion,
	OpDifference:   clipper.CtDifference,
	OpIntersection: clipper.CtIntersection,
}

// FlatBoolean evaluates op on two flat meshes lying in the same plane
// z = const. The operands are clipped as integer polygons scaled by
// cfg.ClipperScale and the result is triangulated back into a flat
// double-sided mesh.
func FlatBoolean(op Op, a, b *halfedge.Mesh, cfg geom.Config) (out *halfedge.Mesh, err error) {
	z, ok := a.IsFlat(cfg.Epsilon)
	if !ok {
		return nil, geom.Booleanf("%v: first operand is not flat", op)
	}
	if _, ok := b.IsFlat(cfg.Epsilon); !ok {
		return nil, geom.Booleanf("%v: second operand is not flat", op)
	}
	ct, ok := clipTypes[op]
	if !ok {
		return nil, geom.Booleanf("unknown operator %v", op)
	}

	pa, err := clipPaths(a, cfg)
	if err != nil {
		return nil, fmt.Errorf("%v: first operand: %w", op, err)
	}
	pb, err := clipPaths(b, cfg)
	if err != nil {
		return nil, fmt.Errorf("%v: second operand: %w", op, err)
	}

	// The clipper panics on coordinates outside its integer range.
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, geom.Booleanf("%v: polygon clipping failed: %v", op, r)
		}
	}()
	c := clipper.NewClipper(clipper.IoNone)
	c.AddPaths(pa, clipper.PtSubject, true)
	c.AddPaths(pb, clipper.PtClip, true)
	res, ok := c.Execute1(ct, clipper.PftNonZero, clipper.PftNonZero)
	if !ok {
		return nil, geom.Booleanf("%v: polygon clipping failed", op)
	}

	m, err := fromPaths(res, z, cfg)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", op, err)
	}
	if a.Color != nil {
		col := *a.Color
		m.Color = &col
	}
	return m, nil
}

// fromPaths triangulates clipper output back into a flat double-sided mesh
// at height z. Degenerate paths are dropped; nothing left gives the empty
// mesh.
func fromPaths(paths clipper.Paths, z float64, cfg geom.Config) (*halfedge.Mesh, error) {
	var contours [][]geom.Vec2
	for _, path := range paths {
		if len(path) < 3 || clipper.Area(path) == 0 {
			continue
		}
		loop := make([]geom.Vec2, len(path))
		for i, p := range path {
			loop[i] = geom.Vec2{X: float64(p.X) / cfg.ClipperScale, Y: float64(p.Y) / cfg.ClipperScale}
		}
		contours = append(contours, loop)
	}
	if len(contours) == 0 {
		return halfedge.New(), nil
	}
	pts, tris, err := triangulate.Polygons(contours, triangulate.EvenOdd)
	if err != nil {
		return nil, err
	}
	return primitive.Flat(pts, tris, z)
}

// clipPaths converts the upward-facing triangles of a flat mesh into
// clipper paths. Adjacent triangles are merged by the nonzero fill rule.
func clipPaths(m *halfedge.Mesh, cfg geom.Config) (clipper.Paths, error) {
	prof, err := primitive.ProfileOf(m, cfg.Epsilon)
	if err != nil {
		return nil, geom.Booleanf("%v", err)
	}
	limit := float64(math.MaxInt64) / 4
	grid := make([]*clipper.IntPoint, len(prof.Points))
	for i, p := range prof.Points {
		x, y := math.Round(p.X*cfg.ClipperScale), math.Round(p.Y*cfg.ClipperScale)
		if math.IsNaN(x) || math.IsNaN(y) || math.Abs(x) > limit || math.Abs(y) > limit {
			return nil, geom.Booleanf("point %v is out of range for clipping", p)
		}
		grid[i] = &clipper.IntPoint{X: clipper.CInt(x), Y: clipper.CInt(y)}
	}
	paths := make(clipper.Paths, 0, len(prof.Triangles))
	for _, t := range prof.Triangles {
		paths = append(paths, clipper.Path{grid[t[0]], grid[t[1]], grid[t[2]]})
	}
	return paths, nil
}
