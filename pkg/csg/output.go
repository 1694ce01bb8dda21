package csg

import (
	"math"
	"sort"

	"github.com/holistic-stack/c4d-sub001/pkg/bsp"
	"github.com/holistic-stack/c4d-sub001/pkg/geom"
	"github.com/holistic-stack/c4d-sub001/pkg/halfedge"
	"github.com/holistic-stack/c4d-sub001/pkg/triangulate"
	"gonum.org/v1/gonum/spatial/r3"
)

// maxRepairPasses bounds T-junction repair.
const maxRepairPasses = 16

type loop struct {
	verts []uint32
	plane geom.Plane
}

// rebuild turns the kept polygons of a boolean into a closed mesh: it
// welds vertices, merges coplanar fragments, triangulates, repairs
// T-junctions and stitches.
func rebuild(polys []bsp.Polygon, cfg geom.Config) (*halfedge.Mesh, error) {
	tol := weldTolerance(polys, cfg)
	w := halfedge.NewWelder(tol)
	loops := make([]loop, 0, len(polys))
	for _, p := range polys {
		vs := make([]uint32, 0, len(p.Vertices))
		for _, v := range p.Vertices {
			id := w.Add(v)
			if len(vs) > 0 && vs[len(vs)-1] == id {
				continue
			}
			vs = append(vs, id)
		}
		for len(vs) > 1 && vs[0] == vs[len(vs)-1] {
			vs = vs[:len(vs)-1]
		}
		if len(vs) < 3 {
			continue
		}
		loops = append(loops, loop{verts: vs, plane: p.Plane})
	}
	pos := w.Positions()

	var tris [][3]uint32
	for _, group := range groupByPlane(loops) {
		tris = append(tris, mergeCoplanar(pos, loops, group, tol)...)
	}
	tris = repairTJunctions(pos, tris, tol)
	if len(tris) == 0 {
		return halfedge.New(), nil
	}

	pos, tris = halfedge.Compact(pos, tris)
	m, err := halfedge.FromTriangles(pos, tris)
	if err != nil {
		return nil, geom.Booleanf("result is not closed: %v", err)
	}
	return m, nil
}

// weldTolerance scales cfg.WeldTolerance with the extent of the result,
// and keeps it well above the classification band.
func weldTolerance(polys []bsp.Polygon, cfg geom.Config) float64 {
	b := geom.EmptyBox()
	for _, p := range polys {
		for _, v := range p.Vertices {
			b = geom.ExtendBox(b, v)
		}
	}
	extent := 1.0
	if !geom.BoxIsEmpty(b) {
		sz := geom.BoxSize(b)
		extent = math.Max(extent, math.Max(sz.X, math.Max(sz.Y, sz.Z)))
	}
	return math.Max(100*cfg.Epsilon, cfg.WeldTolerance*extent)
}

type planeKey [4]int64

func keyOf(p geom.Plane) planeKey {
	q := func(f float64) int64 { return int64(math.Round(f * 1e3)) }
	return planeKey{q(p.Normal.X), q(p.Normal.Y), q(p.Normal.Z), q(p.W)}
}

// groupByPlane buckets loop indices by quantised supporting plane, in
// first-seen order.
func groupByPlane(loops []loop) [][]int {
	index := make(map[planeKey]int)
	var groups [][]int
	for i, l := range loops {
		k := keyOf(l.plane)
		g, ok := index[k]
		if !ok {
			g = len(groups)
			index[k] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], i)
	}
	return groups
}

// mergeCoplanar triangulates one plane group. Loops that share an edge in
// opposite directions are joined and their outline is retriangulated;
// anything that cannot be merged cleanly is fanned as is.
func mergeCoplanar(pos []geom.Vec3, loops []loop, group []int, tol float64) [][3]uint32 {
	parent := make([]int, len(group))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}

	owner := make(map[[2]uint32]int)
	for gi, li := range group {
		vs := loops[li].verts
		for k := range vs {
			owner[[2]uint32{vs[k], vs[(k+1)%len(vs)]}] = gi
		}
	}
	for gi, li := range group {
		vs := loops[li].verts
		for k := range vs {
			if o, ok := owner[[2]uint32{vs[(k+1)%len(vs)], vs[k]}]; ok {
				if ra, rb := find(gi), find(o); ra != rb {
					parent[ra] = rb
				}
			}
		}
	}

	comps := make(map[int][]int)
	var roots []int
	for gi := range group {
		r := find(gi)
		if _, ok := comps[r]; !ok {
			roots = append(roots, r)
		}
		comps[r] = append(comps[r], group[gi])
	}

	var out [][3]uint32
	for _, r := range roots {
		members := comps[r]
		if len(members) > 1 {
			if t, ok := retriangulate(pos, loops, members, tol); ok {
				out = append(out, t...)
				continue
			}
		}
		for _, li := range members {
			out = append(out, fan(pos, loops[li].verts, tol)...)
		}
	}
	return out
}

// fan triangulates a convex loop from its first vertex. Triangles whose
// corners are collinear within tol are left out; T-junction repair splits
// the neighbouring edges at the skipped vertices.
func fan(pos []geom.Vec3, vs []uint32, tol float64) [][3]uint32 {
	var out [][3]uint32
	for _, t := range triangulate.Fan(len(vs)) {
		tri := [3]uint32{vs[t[0]], vs[t[1]], vs[t[2]]}
		if !degenerate(pos, tri, tol) {
			out = append(out, tri)
		}
	}
	return out
}

// degenerate reports whether t repeats a vertex or has a corner within
// tol of the line through the other two.
func degenerate(pos []geom.Vec3, t [3]uint32, tol float64) bool {
	if t[0] == t[1] || t[1] == t[2] || t[0] == t[2] {
		return true
	}
	a, b, c := pos[t[0]], pos[t[1]], pos[t[2]]
	cross := r3.Norm(geom.TriangleNormal(a, b, c))
	if cross < 1e-12 {
		return true
	}
	longest := math.Max(r3.Norm(r3.Sub(b, a)), math.Max(r3.Norm(r3.Sub(c, b)), r3.Norm(r3.Sub(a, c))))
	return cross/longest <= tol
}

// retriangulate traces the outline of a set of coplanar loops and
// triangulates it in the plane. ok is false when the outline is not a set
// of simple loops.
func retriangulate(pos []geom.Vec3, loops []loop, members []int, tol float64) ([][3]uint32, bool) {
	edges := make(map[[2]uint32]int)
	for _, li := range members {
		vs := loops[li].verts
		for k := range vs {
			edges[[2]uint32{vs[k], vs[(k+1)%len(vs)]}]++
		}
	}
	next := make(map[uint32]uint32)
	var starts []uint32
	for _, li := range members {
		vs := loops[li].verts
		for k := range vs {
			a, b := vs[k], vs[(k+1)%len(vs)]
			if edges[[2]uint32{a, b}] > 1 {
				return nil, false
			}
			if edges[[2]uint32{b, a}] > 0 {
				continue
			}
			if _, dup := next[a]; dup {
				return nil, false
			}
			next[a] = b
			starts = append(starts, a)
		}
	}
	if len(next) < 3 {
		return nil, false
	}

	var outline [][]uint32
	seen := make(map[uint32]bool, len(next))
	for _, s := range starts {
		if seen[s] {
			continue
		}
		var l []uint32
		for v := s; !seen[v]; {
			seen[v] = true
			l = append(l, v)
			n, ok := next[v]
			if !ok {
				return nil, false
			}
			v = n
		}
		if len(l) < 3 {
			return nil, false
		}
		outline = append(outline, l)
	}

	n := loops[members[0]].plane.Normal
	u, v := projectionAxes(n)
	var contours [][]geom.Vec2
	var order []uint32
	for _, l := range outline {
		c := make([]geom.Vec2, len(l))
		for i, id := range l {
			p := pos[id]
			c[i] = geom.Vec2{X: geom.Component(p, u), Y: geom.Component(p, v)}
			order = append(order, id)
		}
		contours = append(contours, c)
	}
	pts, tris, err := triangulate.Polygons(contours, triangulate.EvenOdd)
	if err != nil || len(pts) != len(order) {
		return nil, false
	}

	out := make([][3]uint32, 0, len(tris))
	for _, t := range tris {
		tri := [3]uint32{order[t[0]], order[t[1]], order[t[2]]}
		if degenerate(pos, tri, tol) {
			return nil, false
		}
		a, b, c := pos[tri[0]], pos[tri[1]], pos[tri[2]]
		if r3.Dot(geom.TriangleNormal(a, b, c), n) < 0 {
			tri[1], tri[2] = tri[2], tri[1]
		}
		out = append(out, tri)
	}
	if !sameRegion(pos, loops, members, next, out, n) {
		return nil, false
	}
	return out, true
}

// sameRegion reports whether tris cover exactly the region of the member
// loops: every directed edge is used once, the unpaired edges are the
// outline and the area matches.
func sameRegion(pos []geom.Vec3, loops []loop, members []int, outline map[uint32]uint32, tris [][3]uint32, n geom.Vec3) bool {
	directed := make(map[[2]uint32]bool, 3*len(tris))
	for _, t := range tris {
		for k := 0; k < 3; k++ {
			e := [2]uint32{t[k], t[(k+1)%3]}
			if directed[e] {
				return false
			}
			directed[e] = true
		}
	}
	boundary := 0
	for e := range directed {
		if directed[[2]uint32{e[1], e[0]}] {
			continue
		}
		if to, ok := outline[e[0]]; !ok || to != e[1] {
			return false
		}
		boundary++
	}
	if boundary != len(outline) {
		return false
	}

	var want, got float64
	for _, li := range members {
		vs := loops[li].verts
		for i := 1; i+1 < len(vs); i++ {
			want += r3.Dot(geom.TriangleNormal(pos[vs[0]], pos[vs[i]], pos[vs[i+1]]), n)
		}
	}
	for _, t := range tris {
		got += r3.Dot(geom.TriangleNormal(pos[t[0]], pos[t[1]], pos[t[2]]), n)
	}
	return math.Abs(got-want) <= 1e-7*math.Max(1, math.Abs(want))
}

// projectionAxes returns the two coordinate axes spanning the plane
// orthogonal to the dominant component of n, in cyclic order so that the
// projection keeps orientation when that component is positive.
func projectionAxes(n geom.Vec3) (u, v int) {
	ax, ay, az := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)
	switch {
	case az >= ax && az >= ay:
		return 0, 1
	case ax >= ay:
		return 1, 2
	default:
		return 2, 0
	}
}

// repairTJunctions splits triangle edges that have a vertex of another
// triangle lying on them, so that every edge can find its reverse.
func repairTJunctions(pos []geom.Vec3, tris [][3]uint32, tol float64) [][3]uint32 {
	for pass := 0; pass < maxRepairPasses; pass++ {
		directed := make(map[[2]uint32]bool, 3*len(tris))
		for _, t := range tris {
			for k := 0; k < 3; k++ {
				directed[[2]uint32{t[k], t[(k+1)%3]}] = true
			}
		}
		var cands []uint32
		inCands := make(map[uint32]bool)
		for _, t := range tris {
			for k := 0; k < 3; k++ {
				a, b := t[k], t[(k+1)%3]
				if directed[[2]uint32{b, a}] {
					continue
				}
				for _, x := range [2]uint32{a, b} {
					if !inCands[x] {
						inCands[x] = true
						cands = append(cands, x)
					}
				}
			}
		}
		if len(cands) == 0 {
			return tris
		}

		changed := false
		out := make([][3]uint32, 0, len(tris))
		for _, t := range tris {
			split := false
			for k := 0; k < 3 && !split; k++ {
				a, b, c := t[k], t[(k+1)%3], t[(k+2)%3]
				if directed[[2]uint32{b, a}] {
					continue
				}
				on := pointsOnSegment(pos, cands, a, b, c, tol)
				if len(on) == 0 {
					continue
				}
				chain := append(append([]uint32{a}, on...), b)
				for i := 0; i+1 < len(chain); i++ {
					out = append(out, [3]uint32{chain[i], chain[i+1], c})
				}
				split = true
			}
			if !split {
				out = append(out, t)
			}
			changed = changed || split
		}
		tris = out
		if !changed {
			return tris
		}
	}
	return tris
}

// pointsOnSegment returns the candidates other than skip lying strictly
// inside segment ab, ordered from a to b.
func pointsOnSegment(pos []geom.Vec3, cands []uint32, a, b, skip uint32, tol float64) []uint32 {
	pa, pb := pos[a], pos[b]
	d := r3.Sub(pb, pa)
	l2 := r3.Norm2(d)
	if l2 == 0 {
		return nil
	}
	type hit struct {
		id uint32
		t  float64
	}
	var hits []hit
	for _, id := range cands {
		if id == a || id == b || id == skip {
			continue
		}
		p := pos[id]
		t := r3.Dot(r3.Sub(p, pa), d) / l2
		if t <= 0 || t >= 1 {
			continue
		}
		foot := r3.Add(pa, r3.Scale(t, d))
		if r3.Norm(r3.Sub(p, foot)) > tol {
			continue
		}
		if r3.Norm(r3.Sub(p, pa)) <= tol || r3.Norm(r3.Sub(p, pb)) <= tol {
			continue
		}
		hits = append(hits, hit{id, t})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].t < hits[j].t })
	ids := make([]uint32, len(hits))
	for i, h := range hits {
		ids[i] = h.id
	}
	return ids
}
