package graph

// NodeKind enumerates the types of nodes in the geometry graph.
type NodeKind int

const (
	NodeEmpty         NodeKind = iota // no geometry
	NodeCube                          // rectangular box
	NodeSphere                        // UV sphere
	NodeCylinder                      // cylinder or cone
	NodePolyhedron                    // explicit points and faces
	NodeSquare                        // 2D rectangle
	NodeCircle                        // 2D regular polygon
	NodePolygon                       // 2D outline with optional holes
	NodeTransform                     // affine matrix applied to children
	NodeColor                         // RGBA tag applied to children
	NodeUnion                         // boolean union
	NodeDifference                    // first child minus the rest
	NodeIntersection                  // boolean intersection
	NodeHull                          // convex hull of all children
	NodeMinkowski                     // Minkowski sum, folded left to right
	NodeLinearExtrude                 // 2D children swept along +Z
	NodeRotateExtrude                 // 2D children swept around Z
	NodeResize                        // scale children to a target size
	NodeGroup                         // implicit union
	NodeOffset                        // 2D children grown or shrunk in their plane
)

func (k NodeKind) String() string {
	switch k {
	case NodeEmpty:
		return "empty"
	case NodeCube:
		return "cube"
	case NodeSphere:
		return "sphere"
	case NodeCylinder:
		return "cylinder"
	case NodePolyhedron:
		return "polyhedron"
	case NodeSquare:
		return "square"
	case NodeCircle:
		return "circle"
	case NodePolygon:
		return "polygon"
	case NodeTransform:
		return "transform"
	case NodeColor:
		return "color"
	case NodeUnion:
		return "union"
	case NodeDifference:
		return "difference"
	case NodeIntersection:
		return "intersection"
	case NodeHull:
		return "hull"
	case NodeMinkowski:
		return "minkowski"
	case NodeLinearExtrude:
		return "linear_extrude"
	case NodeRotateExtrude:
		return "rotate_extrude"
	case NodeResize:
		return "resize"
	case NodeGroup:
		return "group"
	case NodeOffset:
		return "offset"
	default:
		return "unknown"
	}
}

// IsPrimitive reports whether nodes of this kind are leaves that build
// geometry from their parameters.
func (k NodeKind) IsPrimitive() bool {
	return k >= NodeCube && k <= NodePolygon
}

// IsFlat reports whether the kind is a 2D primitive.
func (k NodeKind) IsFlat() bool {
	return k >= NodeSquare && k <= NodePolygon
}

// IsWrapper reports whether the kind modifies the implicit union of its
// children and therefore needs at least one child.
func (k NodeKind) IsWrapper() bool {
	switch k {
	case NodeTransform, NodeColor, NodeLinearExtrude, NodeRotateExtrude, NodeResize, NodeOffset:
		return true
	}
	return false
}

// IsOperator reports whether the kind combines any number of children.
func (k NodeKind) IsOperator() bool {
	switch k {
	case NodeUnion, NodeDifference, NodeIntersection, NodeHull, NodeMinkowski, NodeGroup:
		return true
	}
	return false
}

// Node is the fundamental element of the geometry graph.
type Node struct {
	ID       NodeID   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Name     string   `json:"name,omitempty"`
	Children []NodeID `json:"children,omitempty"`
	Data     NodeData `json:"data,omitempty"`
}

// NodeData is the interface for kind-specific node payloads.
// Operator and empty nodes carry no payload.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}
