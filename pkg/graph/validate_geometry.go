package graph

import (
	"fmt"
	"math"
)

// ---------------------------------------------------------------------------
// Parameter validation (errors only)
// ---------------------------------------------------------------------------

// payloadKind maps each payload type to the only kind that may carry it.
func payloadKind(d NodeData) (NodeKind, bool) {
	switch d.(type) {
	case CubeData:
		return NodeCube, true
	case SphereData:
		return NodeSphere, true
	case CylinderData:
		return NodeCylinder, true
	case PolyhedronData:
		return NodePolyhedron, true
	case SquareData:
		return NodeSquare, true
	case CircleData:
		return NodeCircle, true
	case PolygonData:
		return NodePolygon, true
	case TransformData:
		return NodeTransform, true
	case ColorData:
		return NodeColor, true
	case LinearExtrudeData:
		return NodeLinearExtrude, true
	case RotateExtrudeData:
		return NodeRotateExtrude, true
	case ResizeData:
		return NodeResize, true
	case OffsetData:
		return NodeOffset, true
	}
	return 0, false
}

// needsPayload reports whether nodes of kind k must carry data.
func needsPayload(k NodeKind) bool {
	return k.IsPrimitive() || k.IsWrapper()
}

// validateParameters checks that each node's payload matches its kind and
// that the numeric parameters describe buildable geometry.
func validateParameters(g *Graph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Nodes {
		report := func(format string, args ...any) {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf(format, args...),
				Severity: SeverityError,
			})
		}

		if node.Data == nil {
			if needsPayload(node.Kind) {
				report("%s node has no parameters", node.Kind)
			}
			continue
		}
		if k, ok := payloadKind(node.Data); !ok || k != node.Kind {
			report("%s node carries %T parameters", node.Kind, node.Data)
			continue
		}

		for _, msg := range checkPayload(node.Data) {
			report("%s", msg)
		}
	}

	return errs
}

// checkPayload returns one message per invalid parameter.
func checkPayload(d NodeData) []string {
	var msgs []string
	bad := func(format string, args ...any) {
		msgs = append(msgs, fmt.Sprintf(format, args...))
	}
	fragments := func(n int) {
		if n != 0 && n < 3 {
			bad("fragments is %d, must be 0 or at least 3", n)
		}
	}

	switch d := d.(type) {
	case CubeData:
		if d.Size.X <= 0 || d.Size.Y <= 0 || d.Size.Z <= 0 {
			bad("cube size [%g, %g, %g] must be positive on every axis", d.Size.X, d.Size.Y, d.Size.Z)
		}
	case SphereData:
		if d.Radius <= 0 {
			bad("sphere radius is %g, must be positive", d.Radius)
		}
		fragments(d.Fragments)
	case CylinderData:
		if d.Height <= 0 {
			bad("cylinder height is %g, must be positive", d.Height)
		}
		if d.R1 < 0 || d.R2 < 0 || (d.R1 == 0 && d.R2 == 0) {
			bad("cylinder radii %g and %g must be non-negative and not both zero", d.R1, d.R2)
		}
		fragments(d.Fragments)
	case PolyhedronData:
		if len(d.Points) < 4 {
			bad("polyhedron has %d points, needs at least 4", len(d.Points))
		}
		if len(d.Faces) < 4 {
			bad("polyhedron has %d faces, needs at least 4", len(d.Faces))
		}
		msgs = append(msgs, checkIndexLists("face", d.Faces, len(d.Points))...)
	case SquareData:
		if d.Size.X <= 0 || d.Size.Y <= 0 {
			bad("square size [%g, %g] must be positive on both axes", d.Size.X, d.Size.Y)
		}
	case CircleData:
		if d.Radius <= 0 {
			bad("circle radius is %g, must be positive", d.Radius)
		}
		fragments(d.Fragments)
	case PolygonData:
		if len(d.Points) < 3 {
			bad("polygon has %d points, needs at least 3", len(d.Points))
		}
		msgs = append(msgs, checkIndexLists("path", d.Paths, len(d.Points))...)
	case TransformData:
		if math.Abs(d.Matrix.Det()) < 1e-12 {
			bad("transform matrix is singular")
		}
	case ColorData:
		for i, c := range d.RGBA {
			if c < 0 || c > 1 || math.IsNaN(c) {
				bad("color component %d is %g, must be in [0, 1]", i, c)
			}
		}
	case LinearExtrudeData:
		if d.Height <= 0 {
			bad("extrusion height is %g, must be positive", d.Height)
		}
		if d.Scale < 0 {
			bad("extrusion scale is %g, must not be negative", d.Scale)
		}
		if d.Slices < 0 {
			bad("extrusion slices is %d, must not be negative", d.Slices)
		}
	case RotateExtrudeData:
		if d.Angle < -360 || d.Angle > 360 {
			bad("extrusion angle is %g, must be within [-360, 360]", d.Angle)
		}
		fragments(d.Fragments)
	case OffsetData:
		if math.IsNaN(d.Delta) || math.IsInf(d.Delta, 0) {
			bad("offset delta is %g, must be finite", d.Delta)
		}
		if !d.Join.Valid() {
			bad("offset join type %d is unknown", int(d.Join))
		}
		if d.MiterLimit != 0 && !(d.MiterLimit >= 2) {
			bad("offset miter limit is %g, must be 0 or at least 2", d.MiterLimit)
		}
		fragments(d.Fragments)
	case ResizeData:
		if d.Size.X < 0 || d.Size.Y < 0 || d.Size.Z < 0 {
			bad("resize size [%g, %g, %g] must not be negative", d.Size.X, d.Size.Y, d.Size.Z)
		}
	}
	return msgs
}

// checkIndexLists validates faces or paths: each needs 3 indices, all
// within [0, n).
func checkIndexLists(what string, lists [][]int, n int) []string {
	var msgs []string
	for i, l := range lists {
		if len(l) < 3 {
			msgs = append(msgs, fmt.Sprintf("%s %d has %d indices, needs at least 3", what, i, len(l)))
		}
		for _, idx := range l {
			if idx < 0 || idx >= n {
				msgs = append(msgs, fmt.Sprintf("%s %d index %d out of range [0, %d)", what, i, idx, n))
			}
		}
	}
	return msgs
}
