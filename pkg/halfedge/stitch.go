package halfedge

import "github.com/holistic-stack/c4d-sub001/pkg/geom"

type edgeKey struct {
	start, end uint32
}

// Stitch pairs every unpaired half-edge with the half-edge running the
// other way between the same two vertices. It fails with an
// invalid-topology error naming the first edge that has no partner, that
// duplicates another directed edge, or that starts and ends at the same
// vertex. Edges that are already paired are left alone.
func Stitch(halfEdges []HalfEdge) error {
	index := make(map[edgeKey]uint32, len(halfEdges))
	for i, he := range halfEdges {
		if he.PairEdge != NoIndex {
			continue
		}
		if he.StartVert == he.EndVert {
			return geom.Topologyf("edge %d (%d->%d) is degenerate", i, he.StartVert, he.EndVert)
		}
		k := edgeKey{he.StartVert, he.EndVert}
		if prev, dup := index[k]; dup {
			return geom.Topologyf("edge %d (%d->%d) duplicates edge %d", i, he.StartVert, he.EndVert, prev)
		}
		index[k] = uint32(i)
	}
	for i := range halfEdges {
		he := &halfEdges[i]
		if he.PairEdge != NoIndex {
			continue
		}
		j, ok := index[edgeKey{he.EndVert, he.StartVert}]
		if !ok {
			return geom.Topologyf("edge %d (%d->%d) could not be paired", i, he.StartVert, he.EndVert)
		}
		he.PairEdge = j
		halfEdges[j].PairEdge = uint32(i)
	}
	return nil
}

// Stitch pairs the mesh's half-edges, links each vertex to an outgoing
// edge and recomputes face normals.
func (m *Mesh) Stitch() error {
	if err := Stitch(m.HalfEdges); err != nil {
		return err
	}
	m.linkVertices()
	m.ComputeNormals()
	return nil
}

// FromTriangles builds a closed mesh from positions and counter-clockwise
// index triples. Indices must be in range and the triangles must form a
// closed, consistently oriented surface.
func FromTriangles(positions []geom.Vec3, tris [][3]uint32) (*Mesh, error) {
	m := &Mesh{
		Vertices:  make([]Vertex, 0, len(positions)),
		HalfEdges: make([]HalfEdge, 0, len(tris)*3),
		Faces:     make([]Face, 0, len(tris)),
	}
	for _, p := range positions {
		m.AddVertex(p)
	}
	n := uint32(len(positions))
	for i, t := range tris {
		for _, v := range t {
			if v >= n {
				return nil, geom.Indexf("triangle %d references vertex %d, mesh has %d", i, v, n)
			}
		}
		m.AddTriangle(t[0], t[1], t[2])
	}
	if err := m.Stitch(); err != nil {
		return nil, err
	}
	return m, nil
}

// Compact drops vertices no triangle references and renumbers the
// triangles to match.
func Compact(positions []geom.Vec3, tris [][3]uint32) ([]geom.Vec3, [][3]uint32) {
	remap := make([]uint32, len(positions))
	for i := range remap {
		remap[i] = NoIndex
	}
	var out []geom.Vec3
	res := make([][3]uint32, len(tris))
	for i, t := range tris {
		for j, v := range t {
			if remap[v] == NoIndex {
				remap[v] = uint32(len(out))
				out = append(out, positions[v])
			}
			res[i][j] = remap[v]
		}
	}
	return out, res
}

// StitchRange pairs the unpaired half-edges in halfEdges[lo:hi] among
// themselves wherever a reversed partner exists in the same range. Edges
// without a partner are left unpaired and no error is reported; a later
// Stitch over the whole slice decides whether the mesh closes.
func StitchRange(halfEdges []HalfEdge, lo, hi int) {
	index := make(map[edgeKey]uint32, hi-lo)
	for i := lo; i < hi; i++ {
		if he := halfEdges[i]; he.PairEdge == NoIndex {
			index[edgeKey{he.StartVert, he.EndVert}] = uint32(i)
		}
	}
	for i := lo; i < hi; i++ {
		he := &halfEdges[i]
		if he.PairEdge != NoIndex {
			continue
		}
		j, ok := index[edgeKey{he.EndVert, he.StartVert}]
		if !ok || halfEdges[j].PairEdge != NoIndex || j == uint32(i) {
			continue
		}
		he.PairEdge = j
		halfEdges[j].PairEdge = uint32(i)
	}
}

// FromDoubleSided builds a closed zero-thickness mesh from a flat
// triangulation: the triangles as given form the front side, reversed
// copies form the back side. Edges are paired within each side first and
// the remaining boundary edges across sides.
func FromDoubleSided(positions []geom.Vec3, tris [][3]uint32) (*Mesh, error) {
	m := &Mesh{
		Vertices:  make([]Vertex, 0, len(positions)),
		HalfEdges: make([]HalfEdge, 0, len(tris)*6),
		Faces:     make([]Face, 0, len(tris)*2),
	}
	for _, p := range positions {
		m.AddVertex(p)
	}
	n := uint32(len(positions))
	for i, t := range tris {
		for _, v := range t {
			if v >= n {
				return nil, geom.Indexf("triangle %d references vertex %d, mesh has %d", i, v, n)
			}
		}
		m.AddTriangle(t[0], t[1], t[2])
	}
	front := len(m.HalfEdges)
	for _, t := range tris {
		m.AddTriangle(t[0], t[2], t[1])
	}
	StitchRange(m.HalfEdges, 0, front)
	StitchRange(m.HalfEdges, front, len(m.HalfEdges))
	if err := m.Stitch(); err != nil {
		return nil, err
	}
	return m, nil
}
