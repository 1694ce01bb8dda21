package csg

import (
	"fmt"
	"math"

	clipper "github.com/ctessum/go.clipper"
	"github.com/holistic-stack/c4d-sub001/pkg/geom"
	"github.com/holistic-stack/c4d-sub001/pkg/halfedge"
)

// DefaultMiterLimit bounds how far a miter join may reach, as a multiple
// of the offset distance. It is also the smallest limit accepted; sharper
// corners than the limit allows are chamfered.
const DefaultMiterLimit = 2

var clipJoins = map[geom.JoinType]clipper.JoinType{
	geom.JoinRound:   clipper.JtRound,
	geom.JoinMiter:   clipper.JtMiter,
	geom.JoinChamfer: clipper.JtSquare,
}

// OffsetParams carries the arguments of a 2D offset. Delta grows the
// outline when positive and shrinks it when negative. MiterLimit 0 means
// DefaultMiterLimit. Fragments sets how many segments a full circle of
// radius |Delta| gets for round joins; 0 derives it from cfg.Segments.
type OffsetParams struct {
	Delta      float64
	Join       geom.JoinType
	MiterLimit float64
	Fragments  int
}

// Offset grows or shrinks a flat mesh by p.Delta. The outline is first
// merged into contours, offset as integer polygons scaled by
// cfg.ClipperScale, and triangulated back at the input's height. An empty
// input, or one that shrinks away entirely, gives the empty mesh.
func Offset(m *halfedge.Mesh, p OffsetParams, cfg geom.Config) (out *halfedge.Mesh, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, geom.Booleanf("offset: %v", err)
	}
	jt, ok := clipJoins[p.Join]
	if !ok {
		return nil, geom.Booleanf("offset: unknown join type %v", p.Join)
	}
	if math.IsNaN(p.Delta) || math.IsInf(p.Delta, 0) {
		return nil, geom.Booleanf("offset: delta %g is not finite", p.Delta)
	}
	limit := p.MiterLimit
	if limit == 0 {
		limit = DefaultMiterLimit
	}
	if limit < DefaultMiterLimit {
		return nil, geom.Booleanf("offset: miter limit %g is below %d", p.MiterLimit, DefaultMiterLimit)
	}
	if m.IsEmpty() {
		return halfedge.New(), nil
	}
	z, ok := m.IsFlat(cfg.Epsilon)
	if !ok {
		return nil, geom.Booleanf("offset: shape is not flat")
	}
	if p.Delta == 0 {
		return m.Clone(), nil
	}

	tris, err := clipPaths(m, cfg)
	if err != nil {
		return nil, fmt.Errorf("offset: %w", err)
	}

	// The clipper panics on coordinates outside its integer range.
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, geom.Booleanf("offset: polygon clipping failed: %v", r)
		}
	}()
	c := clipper.NewClipper(clipper.IoNone)
	c.AddPaths(tris, clipper.PtSubject, true)
	outline, ok := c.Execute1(clipper.CtUnion, clipper.PftNonZero, clipper.PftNonZero)
	if !ok {
		return nil, geom.Booleanf("offset: merging the outline failed")
	}

	delta := p.Delta * cfg.ClipperScale
	n := p.Fragments
	if n <= 0 {
		n = cfg.Segments.Fragments(math.Abs(p.Delta))
	}
	co := clipper.NewClipperOffset()
	co.MiterLimit = limit
	// A chord of a circle split into n segments sags by r(1 - cos(π/n)).
	co.ArcTolerance = math.Abs(delta) * (1 - math.Cos(math.Pi/float64(n)))
	co.AddPaths(outline, jt, clipper.EtClosedPolygon)
	res := co.Execute(delta)

	out, err = fromPaths(res, z, cfg)
	if err != nil {
		return nil, geom.Booleanf("offset: %v", err)
	}
	if m.Color != nil {
		col := *m.Color
		out.Color = &col
	}
	return out, nil
}
