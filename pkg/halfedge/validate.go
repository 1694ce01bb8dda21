package halfedge

import "github.com/holistic-stack/c4d-sub001/pkg/geom"

// Validate checks that the mesh is closed and manifold: every half-edge
// has a symmetric pair running the other way, every face cycle has
// exactly three edges, and all handles are in range.
func (m *Mesh) Validate() error {
	nv, ne, nf := uint32(len(m.Vertices)), uint32(len(m.HalfEdges)), uint32(len(m.Faces))
	if ne != 3*nf {
		return geom.Topologyf("%d half-edges for %d faces, want %d", ne, nf, 3*nf)
	}
	for i, he := range m.HalfEdges {
		e := uint32(i)
		if he.StartVert >= nv || he.EndVert >= nv {
			return geom.Indexf("edge %d (%d->%d) references a vertex outside [0, %d)", i, he.StartVert, he.EndVert, nv)
		}
		if he.Face >= nf || he.NextEdge >= ne {
			return geom.Indexf("edge %d has face %d and next %d out of range", i, he.Face, he.NextEdge)
		}
		if he.PairEdge == NoIndex {
			return geom.Topologyf("edge %d (%d->%d) is unpaired", i, he.StartVert, he.EndVert)
		}
		if he.PairEdge >= ne {
			return geom.Indexf("edge %d pair %d out of range", i, he.PairEdge)
		}
		pair := m.HalfEdges[he.PairEdge]
		if pair.PairEdge != e {
			return geom.Topologyf("edge %d pairs with %d, which pairs with %d", i, he.PairEdge, pair.PairEdge)
		}
		if pair.StartVert != he.EndVert || pair.EndVert != he.StartVert {
			return geom.Topologyf("edge %d (%d->%d) paired with edge %d (%d->%d)",
				i, he.StartVert, he.EndVert, he.PairEdge, pair.StartVert, pair.EndVert)
		}
		next := m.HalfEdges[he.NextEdge]
		if next.StartVert != he.EndVert || next.Face != he.Face {
			return geom.Topologyf("edge %d does not continue into edge %d of face %d", i, he.NextEdge, he.Face)
		}
		if m.HalfEdges[next.NextEdge].NextEdge != e {
			return geom.Topologyf("face %d of edge %d is not a triangle", he.Face, i)
		}
	}
	for f, face := range m.Faces {
		if face.FirstEdge >= ne || m.HalfEdges[face.FirstEdge].Face != uint32(f) {
			return geom.Topologyf("face %d first edge %d does not belong to it", f, face.FirstEdge)
		}
	}
	return nil
}

// EulerCharacteristic returns V - E + F with E = len(HalfEdges)/2. It is
// 2 for a closed genus-0 surface and 2 - 2g for genus g.
func (m *Mesh) EulerCharacteristic() int {
	return len(m.Vertices) - len(m.HalfEdges)/2 + len(m.Faces)
}

// Unpaired returns the number of half-edges without a partner.
func (m *Mesh) Unpaired() int {
	n := 0
	for _, he := range m.HalfEdges {
		if he.PairEdge == NoIndex {
			n++
		}
	}
	return n
}
