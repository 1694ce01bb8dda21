package halfedge

import (
	"github.com/holistic-stack/c4d-sub001/pkg/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

// Transform applies a to every vertex in place. Orientation-reversing
// transforms (negative determinant) also reverse the winding so face
// normals keep pointing outward.
func (m *Mesh) Transform(a geom.Affine) {
	if a.IsIdentity() {
		return
	}
	for i := range m.Vertices {
		m.Vertices[i].Position = a.Apply(m.Vertices[i].Position)
	}
	if a.Det() < 0 {
		m.Flip()
		return
	}
	m.ComputeNormals()
}

// Translate moves the mesh by v.
func (m *Mesh) Translate(v geom.Vec3) {
	m.Transform(geom.Translation(v))
}

// Flip reverses the winding of every face. Pairings survive unchanged
// because both half-edges of an undirected edge are reversed together.
func (m *Mesh) Flip() {
	for f := range m.Faces {
		e0 := m.Faces[f].FirstEdge
		e1 := m.HalfEdges[e0].NextEdge
		e2 := m.HalfEdges[e1].NextEdge
		for _, e := range [3]uint32{e0, e1, e2} {
			he := &m.HalfEdges[e]
			he.StartVert, he.EndVert = he.EndVert, he.StartVert
		}
		m.HalfEdges[e0].NextEdge = e2
		m.HalfEdges[e2].NextEdge = e1
		m.HalfEdges[e1].NextEdge = e0
		m.Faces[f].Normal = r3.Scale(-1, m.Faces[f].Normal)
	}
	m.linkVertices()
}

// Append adds the arenas of o to m, offsetting every handle. The result
// is the disjoint union of both surfaces; it is only a valid solid when
// the two meshes do not intersect. m keeps its own color.
func (m *Mesh) Append(o *Mesh) {
	vo := uint32(len(m.Vertices))
	eo := uint32(len(m.HalfEdges))
	fo := uint32(len(m.Faces))
	shift := func(h, by uint32) uint32 {
		if h == NoIndex {
			return NoIndex
		}
		return h + by
	}
	for _, v := range o.Vertices {
		m.Vertices = append(m.Vertices, Vertex{Position: v.Position, FirstEdge: shift(v.FirstEdge, eo)})
	}
	for _, he := range o.HalfEdges {
		m.HalfEdges = append(m.HalfEdges, HalfEdge{
			StartVert: he.StartVert + vo,
			EndVert:   he.EndVert + vo,
			NextEdge:  he.NextEdge + eo,
			PairEdge:  shift(he.PairEdge, eo),
			Face:      he.Face + fo,
		})
	}
	for _, f := range o.Faces {
		m.Faces = append(m.Faces, Face{FirstEdge: f.FirstEdge + eo, Normal: f.Normal})
	}
	if m.Color == nil && o.Color != nil {
		col := *o.Color
		m.Color = &col
	}
}

// Resize scales the mesh about the origin so its bounding box has the
// given size. Axes with a non-positive target keep their scale unless
// auto is set for them, in which case they take the mean of the
// explicitly computed scales.
func (m *Mesh) Resize(size geom.Vec3, auto [3]bool) {
	cur := geom.BoxSize(m.BoundingBox())
	if cur.X < 1e-9 && cur.Y < 1e-9 && cur.Z < 1e-9 {
		return
	}
	scale := [3]float64{1, 1, 1}
	explicit := [3]bool{}
	var sum float64
	var n int
	for i := 0; i < 3; i++ {
		c, want := geom.Component(cur, i), geom.Component(size, i)
		if c < 1e-9 || want <= 0 {
			continue
		}
		scale[i] = want / c
		explicit[i] = true
		sum += scale[i]
		n++
	}
	if n > 0 {
		mean := sum / float64(n)
		for i := 0; i < 3; i++ {
			if auto[i] && !explicit[i] {
				scale[i] = mean
			}
		}
	}
	m.Transform(geom.Scaling(geom.Vec3{X: scale[0], Y: scale[1], Z: scale[2]}))
}
