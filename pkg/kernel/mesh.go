package kernel

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Mesh is a triangle mesh suitable for rendering or export.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, colors has 4 floats per vertex
// (r,g,b,a) when the solid was tagged with a color, indices has 3
// uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"`         // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`          // [nx0,ny0,nz0, ...]
	Colors   []float32 `json:"colors,omitempty"` // [r0,g0,b0,a0, ...]
	Indices  []uint32  `json:"indices"`          // [i0,i1,i2, ...] triangles
	PartName string    `json:"partName"`         // which IR root this came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Validate checks that the flat arrays agree in length and that every
// index refers to a vertex.
func (m *Mesh) Validate() error {
	if len(m.Vertices)%3 != 0 {
		return fmt.Errorf("kernel: vertex array length %d is not a multiple of 3", len(m.Vertices))
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("kernel: index array length %d is not a multiple of 3", len(m.Indices))
	}
	if len(m.Normals) != 0 && len(m.Normals) != len(m.Vertices) {
		return fmt.Errorf("kernel: normals length %d != vertices length %d", len(m.Normals), len(m.Vertices))
	}
	if len(m.Colors) != 0 && len(m.Colors) != m.VertexCount()*4 {
		return fmt.Errorf("kernel: colors length %d != 4*vertex count %d", len(m.Colors), m.VertexCount()*4)
	}
	n := uint32(m.VertexCount())
	for i, idx := range m.Indices {
		if idx >= n {
			return fmt.Errorf("kernel: index %d at position %d out of range [0, %d)", idx, i, n)
		}
	}
	return nil
}

// ComputeNormals fills Normals with area-weighted vertex normals.
// Vertices with no incident area get a zero normal.
func (m *Mesh) ComputeNormals() {
	normals := make([]float32, len(m.Vertices))
	for t := 0; t+2 < len(m.Indices); t += 3 {
		a, b, c := m.Indices[t]*3, m.Indices[t+1]*3, m.Indices[t+2]*3
		ux := m.Vertices[b] - m.Vertices[a]
		uy := m.Vertices[b+1] - m.Vertices[a+1]
		uz := m.Vertices[b+2] - m.Vertices[a+2]
		vx := m.Vertices[c] - m.Vertices[a]
		vy := m.Vertices[c+1] - m.Vertices[a+1]
		vz := m.Vertices[c+2] - m.Vertices[a+2]
		nx := uy*vz - uz*vy
		ny := uz*vx - ux*vz
		nz := ux*vy - uy*vx
		for _, v := range [3]uint32{a, b, c} {
			normals[v] += nx
			normals[v+1] += ny
			normals[v+2] += nz
		}
	}
	for i := 0; i+2 < len(normals); i += 3 {
		l := math32.Sqrt(normals[i]*normals[i] + normals[i+1]*normals[i+1] + normals[i+2]*normals[i+2])
		if l > 1e-12 {
			normals[i] /= l
			normals[i+1] /= l
			normals[i+2] /= l
		}
	}
	m.Normals = normals
}

// SetColor tags every vertex with rgba.
func (m *Mesh) SetColor(rgba [4]float32) {
	m.Colors = make([]float32, 0, m.VertexCount()*4)
	for i := 0; i < m.VertexCount(); i++ {
		m.Colors = append(m.Colors, rgba[:]...)
	}
}
