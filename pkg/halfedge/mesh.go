// Package halfedge is the kernel's canonical mesh representation: three
// parallel arenas of vertices, half-edges and triangular faces that refer
// to each other through dense uint32 handles.
package halfedge

import (
	"math"

	"github.com/holistic-stack/c4d-sub001/pkg/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

// NoIndex is the null handle.
const NoIndex uint32 = math.MaxUint32

// Vertex is a position plus one outgoing half-edge. FirstEdge is NoIndex
// for isolated vertices.
type Vertex struct {
	Position  geom.Vec3
	FirstEdge uint32
}

// HalfEdge is one directed side of a triangle. PairEdge is the opposite
// half-edge of the neighbouring face, or NoIndex while unpaired.
type HalfEdge struct {
	StartVert uint32
	EndVert   uint32
	NextEdge  uint32
	PairEdge  uint32
	Face      uint32
}

// Face is a triangle reachable by following NextEdge three times from
// FirstEdge.
type Face struct {
	FirstEdge uint32
	Normal    geom.Vec3
}

// Color is an RGBA tag carried by a mesh.
type Color [4]float32

// Mesh owns its arenas exclusively. Operations that combine meshes return
// new values; only Transform, Flip and Append modify a mesh in place.
type Mesh struct {
	Vertices  []Vertex
	HalfEdges []HalfEdge
	Faces     []Face
	Color     *Color
}

// New returns an empty mesh.
func New() *Mesh {
	return &Mesh{}
}

// AddVertex appends an isolated vertex and returns its handle.
func (m *Mesh) AddVertex(p geom.Vec3) uint32 {
	m.Vertices = append(m.Vertices, Vertex{Position: p, FirstEdge: NoIndex})
	return uint32(len(m.Vertices) - 1)
}

// AddTriangle appends face v0,v1,v2 (counter-clockwise seen from outside)
// and returns its handle. See the package-level AddTriangle.
func (m *Mesh) AddTriangle(v0, v1, v2 uint32) uint32 {
	return AddTriangle(&m.Faces, &m.HalfEdges, v0, v1, v2)
}

// AddTriangle appends three half-edges e, e+1, e+2 for the edges v0→v1,
// v1→v2 and v2→v0, cycling through NextEdge, and one face whose FirstEdge
// is e. PairEdge is left NoIndex and the face normal zero; Stitch and
// ComputeNormals fill them in.
func AddTriangle(faces *[]Face, halfEdges *[]HalfEdge, v0, v1, v2 uint32) uint32 {
	f := uint32(len(*faces))
	e := uint32(len(*halfEdges))
	*halfEdges = append(*halfEdges,
		HalfEdge{StartVert: v0, EndVert: v1, NextEdge: e + 1, PairEdge: NoIndex, Face: f},
		HalfEdge{StartVert: v1, EndVert: v2, NextEdge: e + 2, PairEdge: NoIndex, Face: f},
		HalfEdge{StartVert: v2, EndVert: v0, NextEdge: e, PairEdge: NoIndex, Face: f},
	)
	*faces = append(*faces, Face{FirstEdge: e})
	return f
}

// IsEmpty reports whether the mesh has no faces.
func (m *Mesh) IsEmpty() bool {
	return len(m.Faces) == 0
}

// NumEdges returns the number of undirected edges of a closed mesh.
func (m *Mesh) NumEdges() int {
	return len(m.HalfEdges) / 2
}

// FaceVertices returns the three vertex handles of face f in winding
// order.
func (m *Mesh) FaceVertices(f uint32) [3]uint32 {
	e0 := m.Faces[f].FirstEdge
	e1 := m.HalfEdges[e0].NextEdge
	e2 := m.HalfEdges[e1].NextEdge
	return [3]uint32{m.HalfEdges[e0].StartVert, m.HalfEdges[e1].StartVert, m.HalfEdges[e2].StartVert}
}

// FacePositions returns the corner positions of face f in winding order.
func (m *Mesh) FacePositions(f uint32) [3]geom.Vec3 {
	v := m.FaceVertices(f)
	return [3]geom.Vec3{m.Vertices[v[0]].Position, m.Vertices[v[1]].Position, m.Vertices[v[2]].Position}
}

// Triangles returns the vertex handles of every face.
func (m *Mesh) Triangles() [][3]uint32 {
	tris := make([][3]uint32, len(m.Faces))
	for f := range m.Faces {
		tris[f] = m.FaceVertices(uint32(f))
	}
	return tris
}

// Positions returns a copy of the vertex positions.
func (m *Mesh) Positions() []geom.Vec3 {
	pts := make([]geom.Vec3, len(m.Vertices))
	for i, v := range m.Vertices {
		pts[i] = v.Position
	}
	return pts
}

// ComputeNormals sets every face normal to the unit normal of its
// triangle. Degenerate faces get a zero normal.
func (m *Mesh) ComputeNormals() {
	for f := range m.Faces {
		p := m.FacePositions(uint32(f))
		n, _ := geom.Unit(geom.TriangleNormal(p[0], p[1], p[2]))
		m.Faces[f].Normal = n
	}
}

// Clone returns a deep copy.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		Vertices:  append([]Vertex(nil), m.Vertices...),
		HalfEdges: append([]HalfEdge(nil), m.HalfEdges...),
		Faces:     append([]Face(nil), m.Faces...),
	}
	if m.Color != nil {
		col := *m.Color
		c.Color = &col
	}
	return c
}

// BoundingBox returns the box of all vertex positions; empty meshes
// return geom.EmptyBox().
func (m *Mesh) BoundingBox() geom.Box {
	b := geom.EmptyBox()
	for _, v := range m.Vertices {
		b = geom.ExtendBox(b, v.Position)
	}
	return b
}

// Volume returns the signed volume enclosed by the faces. It is positive
// for closed meshes with outward-facing normals.
func (m *Mesh) Volume() float64 {
	var vol float64
	for f := range m.Faces {
		p := m.FacePositions(uint32(f))
		vol += r3.Dot(p[0], r3.Cross(p[1], p[2]))
	}
	return vol / 6
}

// IsFlat reports whether every vertex lies within eps of a single Z, and
// returns that Z.
func (m *Mesh) IsFlat(eps float64) (z float64, ok bool) {
	if len(m.Vertices) == 0 {
		return 0, false
	}
	z = m.Vertices[0].Position.Z
	for _, v := range m.Vertices[1:] {
		if math.Abs(v.Position.Z-z) > eps {
			return 0, false
		}
	}
	return z, true
}

// linkVertices points each vertex at one outgoing half-edge.
func (m *Mesh) linkVertices() {
	for i := range m.Vertices {
		m.Vertices[i].FirstEdge = NoIndex
	}
	for e, he := range m.HalfEdges {
		if m.Vertices[he.StartVert].FirstEdge == NoIndex {
			m.Vertices[he.StartVert].FirstEdge = uint32(e)
		}
	}
}
