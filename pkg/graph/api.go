package graph

import (
	"crypto/sha256"
	"fmt"

	"github.com/holistic-stack/c4d-sub001/pkg/geom"
)

// Builder provides a fluent API for building geometry graphs. Every node
// is content-addressed: building the same sub-tree twice yields the same
// ID and a single shared node.
type Builder struct {
	g *Graph
}

// NewBuilder creates a builder over an empty graph.
func NewBuilder() *Builder {
	return &Builder{g: New()}
}

// contentID hashes a node's kind, payload and children.
func contentID(kind NodeKind, data NodeData, children []NodeID) NodeID {
	h := sha256.New()
	fmt.Fprintf(h, "%d|%#v|", kind, data)
	for _, c := range children {
		h.Write(c[:])
	}
	var id NodeID
	copy(id[:], h.Sum(nil))
	return id
}

func (b *Builder) add(kind NodeKind, data NodeData, children []NodeID) NodeID {
	id := contentID(kind, data, children)
	if _, ok := b.g.Nodes[id]; ok {
		return id
	}
	b.g.AddNode(&Node{
		ID:       id,
		Kind:     kind,
		Children: append([]NodeID(nil), children...),
		Data:     data,
	})
	return id
}

// Empty adds a node with no geometry.
func (b *Builder) Empty() NodeID {
	return b.add(NodeEmpty, nil, nil)
}

// Cube adds a box primitive.
func (b *Builder) Cube(size geom.Vec3, center bool) NodeID {
	return b.add(NodeCube, CubeData{Size: size, Center: center}, nil)
}

// Sphere adds a sphere primitive.
func (b *Builder) Sphere(radius float64, fragments int) NodeID {
	return b.add(NodeSphere, SphereData{Radius: radius, Fragments: fragments}, nil)
}

// Cylinder adds a cylinder or cone primitive.
func (b *Builder) Cylinder(height, r1, r2 float64, center bool, fragments int) NodeID {
	return b.add(NodeCylinder, CylinderData{
		Height: height, R1: r1, R2: r2, Center: center, Fragments: fragments,
	}, nil)
}

// Polyhedron adds an explicit point/face primitive.
func (b *Builder) Polyhedron(points []geom.Vec3, faces [][]int) NodeID {
	return b.add(NodePolyhedron, PolyhedronData{Points: points, Faces: faces}, nil)
}

// Square adds a 2D rectangle.
func (b *Builder) Square(size geom.Vec2, center bool) NodeID {
	return b.add(NodeSquare, SquareData{Size: size, Center: center}, nil)
}

// Circle adds a 2D circle.
func (b *Builder) Circle(radius float64, fragments int) NodeID {
	return b.add(NodeCircle, CircleData{Radius: radius, Fragments: fragments}, nil)
}

// Polygon adds a 2D outline.
func (b *Builder) Polygon(points []geom.Vec2, paths [][]int) NodeID {
	return b.add(NodePolygon, PolygonData{Points: points, Paths: paths}, nil)
}

// MultMatrix applies an arbitrary affine matrix to the children.
func (b *Builder) MultMatrix(m geom.Affine, children ...NodeID) NodeID {
	return b.add(NodeTransform, TransformData{Matrix: m}, children)
}

// Translate moves the children by v.
func (b *Builder) Translate(v geom.Vec3, children ...NodeID) NodeID {
	return b.MultMatrix(geom.Translation(v), children...)
}

// Rotate rotates the children by Euler angles in degrees, X first.
func (b *Builder) Rotate(deg geom.Vec3, children ...NodeID) NodeID {
	return b.MultMatrix(geom.EulerRotation(deg), children...)
}

// Scale scales the children about the origin.
func (b *Builder) Scale(s geom.Vec3, children ...NodeID) NodeID {
	return b.MultMatrix(geom.Scaling(s), children...)
}

// Mirror reflects the children through the plane with the given normal.
func (b *Builder) Mirror(normal geom.Vec3, children ...NodeID) NodeID {
	return b.MultMatrix(geom.Mirror(normal), children...)
}

// Color tags the children with an RGBA colour.
func (b *Builder) Color(rgba [4]float64, children ...NodeID) NodeID {
	return b.add(NodeColor, ColorData{RGBA: rgba}, children)
}

// Union adds a boolean union.
func (b *Builder) Union(children ...NodeID) NodeID {
	return b.add(NodeUnion, nil, children)
}

// Difference subtracts every later child from the first.
func (b *Builder) Difference(children ...NodeID) NodeID {
	return b.add(NodeDifference, nil, children)
}

// Intersection adds a boolean intersection.
func (b *Builder) Intersection(children ...NodeID) NodeID {
	return b.add(NodeIntersection, nil, children)
}

// Hull adds the convex hull of all children.
func (b *Builder) Hull(children ...NodeID) NodeID {
	return b.add(NodeHull, nil, children)
}

// Minkowski adds the Minkowski sum of the children.
func (b *Builder) Minkowski(children ...NodeID) NodeID {
	return b.add(NodeMinkowski, nil, children)
}

// Group adds an implicit union.
func (b *Builder) Group(children ...NodeID) NodeID {
	return b.add(NodeGroup, nil, children)
}

// LinearExtrude sweeps 2D children along +Z.
func (b *Builder) LinearExtrude(p LinearExtrudeData, children ...NodeID) NodeID {
	return b.add(NodeLinearExtrude, p, children)
}

// RotateExtrude sweeps 2D children around Z.
func (b *Builder) RotateExtrude(p RotateExtrudeData, children ...NodeID) NodeID {
	return b.add(NodeRotateExtrude, p, children)
}

// Offset grows or shrinks 2D children in their plane.
func (b *Builder) Offset(p OffsetData, children ...NodeID) NodeID {
	return b.add(NodeOffset, p, children)
}

// Resize scales the children to the given bounding box size.
func (b *Builder) Resize(size geom.Vec3, auto [3]bool, children ...NodeID) NodeID {
	return b.add(NodeResize, ResizeData{Size: size, Auto: auto}, children)
}

// Name assigns a user-visible name to an existing node and returns its ID.
// Naming does not change the node's ID.
func (b *Builder) Name(id NodeID, name string) NodeID {
	n, ok := b.g.Nodes[id]
	if !ok {
		return id
	}
	if n.Name != "" && b.g.NameIndex[n.Name] == id {
		delete(b.g.NameIndex, n.Name)
	}
	named := *n
	named.Name = name
	b.g.AddNode(&named)
	return id
}

// Root registers ids as roots of the graph.
func (b *Builder) Root(ids ...NodeID) {
	for _, id := range ids {
		b.g.AddRoot(id)
	}
}

// Build returns the completed graph. The builder must not be used
// afterwards.
func (b *Builder) Build() *Graph {
	return b.g
}
