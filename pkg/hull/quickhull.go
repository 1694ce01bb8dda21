// Package hull computes convex hulls by QuickHull and Minkowski sums of
// meshes as the hull of pairwise vertex sums.
package hull

import (
	"math"

	"github.com/holistic-stack/c4d-sub001/pkg/geom"
	"github.com/holistic-stack/c4d-sub001/pkg/halfedge"
	"gonum.org/v1/gonum/spatial/r3"
)

var tieBreak = r3.Unit(r3.Vec{X: 1, Y: math.Sqrt2, Z: math.Pi})

type face struct {
	v       [3]int
	normal  geom.Vec3
	w       float64
	outside []int
	dead    bool
}

func (f *face) distance(p geom.Vec3) float64 {
	return r3.Dot(f.normal, p) - f.w
}

type quickHull struct {
	pts   []geom.Vec3
	eps   float64
	faces []face
	edges map[[2]int]int
}

// Points returns the convex hull of pts as a closed mesh. Points closer
// than cfg.WeldTolerance are merged first. Fewer than four distinct
// points, or points that are all collinear or coplanar, are an
// invalid-geometry error. Points within cfg.Epsilon of a face plane count
// as inside.
func Points(pts []geom.Vec3, cfg geom.Config) (*halfedge.Mesh, error) {
	if err := cfg.Validate(); err != nil {
		return nil, geom.Geometryf("hull: %v", err)
	}
	w := halfedge.NewWelder(cfg.WeldTolerance)
	for _, p := range pts {
		if math.IsNaN(p.X+p.Y+p.Z) || math.IsInf(p.X+p.Y+p.Z, 0) {
			return nil, geom.Geometryf("hull: point %v is not finite", p)
		}
		w.Add(p)
	}
	if w.Len() < 4 {
		return nil, geom.Geometryf("hull: need at least 4 distinct points, got %d", w.Len())
	}

	q := &quickHull{pts: w.Positions(), eps: cfg.Epsilon, edges: make(map[[2]int]int)}
	if err := q.simplex(); err != nil {
		return nil, err
	}
	for i := 0; i < len(q.faces); i++ {
		if q.faces[i].dead || len(q.faces[i].outside) == 0 {
			continue
		}
		q.expand(i)
	}

	var tris [][3]uint32
	for _, f := range q.faces {
		if f.dead {
			continue
		}
		tris = append(tris, [3]uint32{uint32(f.v[0]), uint32(f.v[1]), uint32(f.v[2])})
	}
	pos, tris := halfedge.Compact(q.pts, tris)
	m, err := halfedge.FromTriangles(pos, tris)
	if err != nil {
		return nil, geom.Geometryf("hull: %v", err)
	}
	return m, nil
}

// simplex builds the initial tetrahedron from extreme points and assigns
// every other point to the outside set of a face it lies in front of.
func (q *quickHull) simplex() error {
	var ext [6]int
	for i, p := range q.pts {
		for axis := 0; axis < 3; axis++ {
			c := geom.Component(p, axis)
			if c < geom.Component(q.pts[ext[2*axis]], axis) {
				ext[2*axis] = i
			}
			if c > geom.Component(q.pts[ext[2*axis+1]], axis) {
				ext[2*axis+1] = i
			}
		}
	}
	a, b, best := 0, 0, -1.0
	for i := 0; i < 6; i++ {
		for j := i + 1; j < 6; j++ {
			if d := r3.Norm2(r3.Sub(q.pts[ext[i]], q.pts[ext[j]])); d > best {
				a, b, best = ext[i], ext[j], d
			}
		}
	}
	if math.Sqrt(best) <= q.eps {
		return geom.Geometryf("hull: points are coincident")
	}

	dir := r3.Unit(r3.Sub(q.pts[b], q.pts[a]))
	c, best := -1, q.eps
	for i, p := range q.pts {
		v := r3.Sub(p, q.pts[a])
		if d := r3.Norm(r3.Sub(v, r3.Scale(r3.Dot(v, dir), dir))); d > best {
			c, best = i, d
		}
	}
	if c < 0 {
		return geom.Geometryf("hull: points are collinear")
	}

	n := r3.Unit(geom.TriangleNormal(q.pts[a], q.pts[b], q.pts[c]))
	d, best := -1, q.eps
	for i, p := range q.pts {
		if dist := math.Abs(r3.Dot(n, r3.Sub(p, q.pts[a]))); dist > best {
			d, best = i, dist
		}
	}
	if d < 0 {
		return geom.Geometryf("hull: points are coplanar")
	}

	tet := [4]int{a, b, c, d}
	for k := 0; k < 4; k++ {
		i, j, l, opp := tet[k], tet[(k+1)%4], tet[(k+2)%4], tet[(k+3)%4]
		n := geom.TriangleNormal(q.pts[i], q.pts[j], q.pts[l])
		if r3.Dot(n, r3.Sub(q.pts[opp], q.pts[i])) > 0 {
			j, l = l, j
		}
		q.newFace(i, j, l)
	}

	var rest []int
	for i := range q.pts {
		if i != a && i != b && i != c && i != d {
			rest = append(rest, i)
		}
	}
	q.assign(rest, []int{0, 1, 2, 3})
	return nil
}

func (q *quickHull) newFace(a, b, c int) int {
	f := face{v: [3]int{a, b, c}}
	if n, ok := geom.Unit(geom.TriangleNormal(q.pts[a], q.pts[b], q.pts[c])); ok {
		f.normal = n
		f.w = r3.Dot(n, q.pts[a])
	}
	q.faces = append(q.faces, f)
	i := len(q.faces) - 1
	q.link(i, f.v)
	return i
}

func (q *quickHull) link(i int, v [3]int) {
	for k := 0; k < 3; k++ {
		q.edges[[2]int{v[k], v[(k+1)%3]}] = i
	}
}

func (q *quickHull) removeFace(i int) {
	f := &q.faces[i]
	f.dead = true
	for k := 0; k < 3; k++ {
		e := [2]int{f.v[k], f.v[(k+1)%3]}
		if q.edges[e] == i {
			delete(q.edges, e)
		}
	}
}

// assign moves each point to the outside set of the candidate face it is
// farthest in front of. Points in front of none are interior and dropped.
func (q *quickHull) assign(points, candidates []int) {
	for _, p := range points {
		best, bestDist := -1, q.eps
		for _, f := range candidates {
			if d := q.faces[f].distance(q.pts[p]); d > bestDist {
				best, bestDist = f, d
			}
		}
		if best >= 0 {
			q.faces[best].outside = append(q.faces[best].outside, p)
		}
	}
}

// expand adds the farthest outside point of face seed to the hull.
func (q *quickHull) expand(seed int) {
	sf := &q.faces[seed]
	apex, far := -1, 0.0
	for _, p := range sf.outside {
		d := sf.distance(q.pts[p])
		switch {
		case apex < 0 || d > far+q.eps:
			apex, far = p, d
		case d >= far-q.eps && r3.Dot(q.pts[p], tieBreak) > r3.Dot(q.pts[apex], tieBreak):
			// Among equally distant points take the one that is extreme
			// in a fixed generic direction, which is a corner of the tied
			// set rather than a point inside one of its faces.
			apex, far = p, d
		}
	}
	eye := q.pts[apex]

	// Visible faces are found by walking face adjacency from the seed.
	visible := map[int]bool{seed: true}
	stack := []int{seed}
	var horizon [][2]int
	var order []int
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		order = append(order, f)
		v := q.faces[f].v
		for k := 0; k < 3; k++ {
			e := [2]int{v[k], v[(k+1)%3]}
			nb, ok := q.edges[[2]int{e[1], e[0]}]
			if !ok || visible[nb] {
				continue
			}
			if q.faces[nb].distance(eye) > q.eps {
				visible[nb] = true
				stack = append(stack, nb)
				continue
			}
			horizon = append(horizon, e)
		}
	}

	var orphans []int
	for _, f := range order {
		for _, p := range q.faces[f].outside {
			if p != apex {
				orphans = append(orphans, p)
			}
		}
		q.faces[f].outside = nil
		q.removeFace(f)
	}

	created := make([]int, 0, len(horizon))
	for _, e := range horizon {
		created = append(created, q.newFace(e[0], e[1], apex))
	}
	q.assign(orphans, created)
}
