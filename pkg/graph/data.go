package graph

import "github.com/holistic-stack/c4d-sub001/pkg/geom"

// ---------------------------------------------------------------------------
// 3D primitives
// ---------------------------------------------------------------------------

// CubeData is an axis-aligned box with one corner at the origin, or
// centred on it.
type CubeData struct {
	Size   geom.Vec3 `json:"size"`
	Center bool      `json:"center,omitempty"`
}

func (CubeData) nodeData() {}

// SphereData is a UV sphere. Fragments 0 resolves from the segment
// settings at tessellation time.
type SphereData struct {
	Radius    float64 `json:"radius"`
	Fragments int     `json:"fragments,omitempty"`
}

func (SphereData) nodeData() {}

// CylinderData is a cylinder or cone along +Z. R1 is the bottom radius.
type CylinderData struct {
	Height    float64 `json:"height"`
	R1        float64 `json:"r1"`
	R2        float64 `json:"r2"`
	Center    bool    `json:"center,omitempty"`
	Fragments int     `json:"fragments,omitempty"`
}

func (CylinderData) nodeData() {}

// PolyhedronData lists points and the faces that index into them.
type PolyhedronData struct {
	Points []geom.Vec3 `json:"points"`
	Faces  [][]int     `json:"faces"`
}

func (PolyhedronData) nodeData() {}

// ---------------------------------------------------------------------------
// 2D primitives
// ---------------------------------------------------------------------------

// SquareData is a rectangle in the XY plane.
type SquareData struct {
	Size   geom.Vec2 `json:"size"`
	Center bool      `json:"center,omitempty"`
}

func (SquareData) nodeData() {}

// CircleData is a regular polygon approximating a circle.
type CircleData struct {
	Radius    float64 `json:"radius"`
	Fragments int     `json:"fragments,omitempty"`
}

func (CircleData) nodeData() {}

// PolygonData is a 2D outline. Paths index into Points; with no paths the
// points form a single outline in order.
type PolygonData struct {
	Points []geom.Vec2 `json:"points"`
	Paths  [][]int     `json:"paths,omitempty"`
}

func (PolygonData) nodeData() {}

// ---------------------------------------------------------------------------
// Modifiers
// ---------------------------------------------------------------------------

// TransformData carries a resolved affine matrix. Translations,
// rotations, scales and mirrors all reduce to this form.
type TransformData struct {
	Matrix geom.Affine `json:"matrix"`
}

func (TransformData) nodeData() {}

// ColorData tags the children with an RGBA colour, components in [0, 1].
type ColorData struct {
	RGBA [4]float64 `json:"rgba"`
}

func (ColorData) nodeData() {}

// LinearExtrudeData sweeps 2D children along +Z. Twist is in degrees;
// Scale 0 means 1; Slices 0 derives a count from the twist.
type LinearExtrudeData struct {
	Height float64 `json:"height"`
	Center bool    `json:"center,omitempty"`
	Twist  float64 `json:"twist,omitempty"`
	Scale  float64 `json:"scale,omitempty"`
	Slices int     `json:"slices,omitempty"`
}

func (LinearExtrudeData) nodeData() {}

// RotateExtrudeData sweeps 2D children around the Z axis. Angle 0 means a
// full turn.
type RotateExtrudeData struct {
	Angle     float64 `json:"angle,omitempty"`
	Fragments int     `json:"fragments,omitempty"`
}

func (RotateExtrudeData) nodeData() {}

// OffsetData grows 2D children by Delta, or shrinks them when Delta is
// negative. MiterLimit 0 means the kernel default; Fragments 0 derives
// the round-join resolution from |Delta|.
type OffsetData struct {
	Delta      float64       `json:"delta"`
	Join       geom.JoinType `json:"join,omitempty"`
	MiterLimit float64       `json:"miter_limit,omitempty"`
	Fragments  int           `json:"fragments,omitempty"`
}

func (OffsetData) nodeData() {}

// ResizeData scales the children so their bounding box matches Size.
// A zero component keeps that axis unless Auto is set for it, in which
// case the axis takes the mean of the explicit scale factors.
type ResizeData struct {
	Size geom.Vec3 `json:"size"`
	Auto [3]bool   `json:"auto,omitempty"`
}

func (ResizeData) nodeData() {}
