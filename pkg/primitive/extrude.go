package primitive

import (
	"math"

	"github.com/holistic-stack/c4d-sub001/pkg/geom"
	"github.com/holistic-stack/c4d-sub001/pkg/halfedge"
)

// Profile is the front side of a flat mesh: a counter-clockwise
// triangulation plus its boundary edges. Each boundary edge runs with the
// filled region on its left.
type Profile struct {
	Points    []geom.Vec2
	Triangles [][3]uint32
	Boundary  [][2]uint32
}

// ProfileOf extracts the profile of a flat double-sided mesh. The Z
// coordinate is dropped.
func ProfileOf(m *halfedge.Mesh, eps float64) (Profile, error) {
	if m.IsEmpty() {
		return Profile{}, geom.Geometryf("extrude: shape is empty")
	}
	if _, ok := m.IsFlat(eps); !ok {
		return Profile{}, geom.Geometryf("extrude: shape is not flat")
	}
	var p Profile
	remap := make(map[uint32]uint32)
	index := func(v uint32) uint32 {
		if i, ok := remap[v]; ok {
			return i
		}
		i := uint32(len(p.Points))
		pos := m.Vertices[v].Position
		p.Points = append(p.Points, geom.Vec2{X: pos.X, Y: pos.Y})
		remap[v] = i
		return i
	}
	edges := make(map[[2]uint32]bool)
	for f := range m.Faces {
		if m.Faces[f].Normal.Z <= 0 {
			continue
		}
		v := m.FaceVertices(uint32(f))
		t := [3]uint32{index(v[0]), index(v[1]), index(v[2])}
		p.Triangles = append(p.Triangles, t)
		for i := 0; i < 3; i++ {
			edges[[2]uint32{t[i], t[(i+1)%3]}] = true
		}
	}
	if len(p.Triangles) == 0 {
		return Profile{}, geom.Geometryf("extrude: shape has no upward-facing area")
	}
	for _, t := range p.Triangles {
		for i := 0; i < 3; i++ {
			e := [2]uint32{t[i], t[(i+1)%3]}
			if !edges[[2]uint32{e[1], e[0]}] {
				p.Boundary = append(p.Boundary, e)
			}
		}
	}
	return p, nil
}

// LinearParams are the linear_extrude arguments. Twist is in degrees,
// counter-clockwise seen from +Z. Scale applies to the top relative to
// the bottom. Slices <= 0 picks one slice per DefaultFa degrees of twist.
type LinearParams struct {
	Height float64
	Center bool
	Twist  float64
	Scale  float64
	Slices int
}

// RotateParams are the rotate_extrude arguments. Angle is in degrees and
// defaults to a full turn when zero.
type RotateParams struct {
	Angle     float64
	Fragments int
}

// meshBuilder assigns vertex handles to (profile point, layer) pairs on
// first use, so every emitted vertex is referenced by a triangle.
type meshBuilder struct {
	pts  []geom.Vec3
	ids  map[[2]int]uint32
	tris [][3]uint32
}

func newMeshBuilder() *meshBuilder {
	return &meshBuilder{ids: make(map[[2]int]uint32)}
}

func (b *meshBuilder) vertex(v, layer int, pos func() geom.Vec3) uint32 {
	k := [2]int{v, layer}
	if id, ok := b.ids[k]; ok {
		return id
	}
	id := uint32(len(b.pts))
	b.pts = append(b.pts, pos())
	b.ids[k] = id
	return id
}

func (b *meshBuilder) tri(a, c, d uint32) {
	if a == c || c == d || d == a {
		return
	}
	b.tris = append(b.tris, [3]uint32{a, c, d})
}

// LinearExtrude sweeps a flat shape along +Z.
func LinearExtrude(m *halfedge.Mesh, p LinearParams) (*halfedge.Mesh, error) {
	if !(p.Height > 0) {
		return nil, geom.Geometryf("linear_extrude height must be positive, got %g", p.Height)
	}
	if p.Scale == 0 {
		p.Scale = 1
	}
	if !(p.Scale > 0) {
		return nil, geom.Geometryf("linear_extrude scale must be positive, got %g", p.Scale)
	}
	prof, err := ProfileOf(m, geom.DefaultWeldTolerance)
	if err != nil {
		return nil, err
	}
	slices := p.Slices
	if slices <= 0 {
		slices = max(1, int(math.Ceil(math.Abs(p.Twist)/geom.DefaultFa)))
	}
	z0 := 0.0
	if p.Center {
		z0 = -p.Height / 2
	}

	b := newMeshBuilder()
	at := func(v, layer int) uint32 {
		return b.vertex(v, layer, func() geom.Vec3 {
			t := float64(layer) / float64(slices)
			s := 1 + (p.Scale-1)*t
			sin, cos := math.Sincos(geom.Radians(p.Twist * t))
			q := prof.Points[v]
			x, y := q.X*s, q.Y*s
			return geom.Vec3{X: x*cos - y*sin, Y: x*sin + y*cos, Z: z0 + p.Height*t}
		})
	}
	for _, t := range prof.Triangles {
		a, c, d := int(t[0]), int(t[1]), int(t[2])
		b.tri(at(a, 0), at(d, 0), at(c, 0))
		b.tri(at(a, slices), at(c, slices), at(d, slices))
	}
	for _, e := range prof.Boundary {
		u, v := int(e[0]), int(e[1])
		for k := 0; k < slices; k++ {
			b.tri(at(u, k), at(v, k), at(v, k+1))
			b.tri(at(u, k), at(v, k+1), at(u, k+1))
		}
	}
	return halfedge.FromTriangles(b.pts, b.tris)
}

// RotateExtrude revolves a flat profile lying in x >= 0 around the Z
// axis, treating the profile's Y as height. An angle within 0.1° of 360
// closes the revolution; anything less adds caps at both ends. A
// negative angle sweeps clockwise seen from +Z.
func RotateExtrude(m *halfedge.Mesh, p RotateParams) (*halfedge.Mesh, error) {
	angle := p.Angle
	if angle == 0 {
		angle = 360
	}
	if !(math.Abs(angle) <= 360) {
		return nil, geom.Geometryf("rotate_extrude angle must be in [-360, 360], got %g", angle)
	}
	clockwise := angle < 0
	angle = math.Abs(angle)
	prof, err := ProfileOf(m, geom.DefaultWeldTolerance)
	if err != nil {
		return nil, err
	}
	const axisTol = 1e-9
	for i, q := range prof.Points {
		if q.X < -axisTol {
			return nil, geom.Geometryf("rotate_extrude profile point %d at x=%g crosses the Z axis", i, q.X)
		}
	}
	full := math.Abs(angle-360) <= 0.1
	if full {
		angle = 360
	}
	frag := max(p.Fragments, geom.MinFragments)
	steps := frag
	if !full {
		steps = max(1, int(math.Ceil(float64(frag)*angle/360)))
	}

	b := newMeshBuilder()
	at := func(v, step int) uint32 {
		q := prof.Points[v]
		switch {
		case q.X <= axisTol:
			step = 0
		case full:
			step %= steps
		}
		return b.vertex(v, step, func() geom.Vec3 {
			sin, cos := math.Sincos(geom.Radians(angle * float64(step) / float64(steps)))
			r := math.Max(q.X, 0)
			if r <= axisTol {
				r = 0
			}
			return geom.Vec3{X: r * cos, Y: r * sin, Z: q.Y}
		})
	}
	for _, e := range prof.Boundary {
		u, v := int(e[0]), int(e[1])
		for k := 0; k < steps; k++ {
			b.tri(at(u, k), at(v, k+1), at(v, k))
			b.tri(at(u, k), at(u, k+1), at(v, k+1))
		}
	}
	if !full {
		for _, t := range prof.Triangles {
			a, c, d := int(t[0]), int(t[1]), int(t[2])
			b.tri(at(a, 0), at(c, 0), at(d, 0))
			b.tri(at(a, steps), at(d, steps), at(c, steps))
		}
	}
	if len(b.tris) == 0 {
		return nil, geom.Geometryf("rotate_extrude profile lies on the axis")
	}
	out, err := halfedge.FromTriangles(b.pts, b.tris)
	if err != nil || !clockwise {
		return out, err
	}
	out.Transform(geom.Scaling(geom.Vec3{X: 1, Y: -1, Z: 1}))
	return out, nil
}
