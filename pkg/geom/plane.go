package geom

import "gonum.org/v1/gonum/spatial/r3"

// Plane is the set of points p with Normal·p == W. Normal is unit length.
type Plane struct {
	Normal Vec3
	W      float64
}

// PlaneFromPoints returns the plane through a, b, c with the normal given
// by counter-clockwise winding. ok is false for collinear points.
func PlaneFromPoints(a, b, c Vec3) (p Plane, ok bool) {
	n, ok := Unit(TriangleNormal(a, b, c))
	if !ok {
		return Plane{}, false
	}
	return Plane{Normal: n, W: r3.Dot(n, a)}, true
}

// PlaneFromPolygon derives a plane from a vertex loop using Newell's
// method, which tolerates collinear leading vertices.
func PlaneFromPolygon(pts []Vec3) (p Plane, ok bool) {
	if len(pts) < 3 {
		return Plane{}, false
	}
	var n Vec3
	for i, cur := range pts {
		next := pts[(i+1)%len(pts)]
		n.X += (cur.Y - next.Y) * (cur.Z + next.Z)
		n.Y += (cur.Z - next.Z) * (cur.X + next.X)
		n.Z += (cur.X - next.X) * (cur.Y + next.Y)
	}
	n, ok = Unit(n)
	if !ok {
		return Plane{}, false
	}
	return Plane{Normal: n, W: r3.Dot(n, Centroid(pts))}, true
}

// Distance returns the signed distance from the plane to q; positive on
// the side the normal points to.
func (p Plane) Distance(q Vec3) float64 {
	return r3.Dot(p.Normal, q) - p.W
}

// Flip returns the plane with the opposite orientation.
func (p Plane) Flip() Plane {
	return Plane{Normal: r3.Scale(-1, p.Normal), W: -p.W}
}

// Side is the result of classifying a point or polygon against a plane.
type Side int

const (
	Coplanar Side = 0
	Front    Side = 1
	Back     Side = 2
	Spanning Side = Front | Back
)

func (s Side) String() string {
	switch s {
	case Coplanar:
		return "coplanar"
	case Front:
		return "front"
	case Back:
		return "back"
	case Spanning:
		return "spanning"
	default:
		return "unknown"
	}
}

// ClassifyPoint places q in front of, behind, or on the plane using a
// symmetric band of width eps.
func (p Plane) ClassifyPoint(q Vec3, eps float64) Side {
	d := p.Distance(q)
	switch {
	case d < -eps:
		return Back
	case d > eps:
		return Front
	default:
		return Coplanar
	}
}

// ClassifyPoints combines the classification of every point: Coplanar if
// all lie on the plane, Front or Back if none are on the other side,
// Spanning otherwise.
func (p Plane) ClassifyPoints(pts []Vec3, eps float64) Side {
	var s Side
	for _, q := range pts {
		s |= p.ClassifyPoint(q, eps)
	}
	return s
}
