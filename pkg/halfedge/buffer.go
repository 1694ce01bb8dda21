package halfedge

import (
	"github.com/holistic-stack/c4d-sub001/pkg/geom"
	"github.com/holistic-stack/c4d-sub001/pkg/kernel"
)

// ToBuffer flattens the mesh into f32 vertex and u32 index arrays with
// smooth vertex normals, and per-vertex colors when the mesh is tagged.
func (m *Mesh) ToBuffer() *kernel.Mesh {
	out := &kernel.Mesh{
		Vertices: make([]float32, 0, len(m.Vertices)*3),
		Indices:  make([]uint32, 0, len(m.Faces)*3),
	}
	for _, v := range m.Vertices {
		out.Vertices = append(out.Vertices, float32(v.Position.X), float32(v.Position.Y), float32(v.Position.Z))
	}
	for f := range m.Faces {
		v := m.FaceVertices(uint32(f))
		out.Indices = append(out.Indices, v[0], v[1], v[2])
	}
	out.ComputeNormals()
	if m.Color != nil {
		out.SetColor(*m.Color)
	}
	return out
}

// FromBuffer rebuilds a closed mesh from a flat buffer.
func FromBuffer(b *kernel.Mesh) (*Mesh, error) {
	if err := b.Validate(); err != nil {
		return nil, geom.Indexf("%v", err)
	}
	pts := make([]geom.Vec3, b.VertexCount())
	for i := range pts {
		pts[i] = geom.Vec3{X: float64(b.Vertices[i*3]), Y: float64(b.Vertices[i*3+1]), Z: float64(b.Vertices[i*3+2])}
	}
	tris := make([][3]uint32, b.TriangleCount())
	for i := range tris {
		tris[i] = [3]uint32{b.Indices[i*3], b.Indices[i*3+1], b.Indices[i*3+2]}
	}
	m, err := FromTriangles(pts, tris)
	if err != nil {
		return nil, err
	}
	if len(b.Colors) >= 4 {
		m.Color = &Color{b.Colors[0], b.Colors[1], b.Colors[2], b.Colors[3]}
	}
	return m, nil
}
