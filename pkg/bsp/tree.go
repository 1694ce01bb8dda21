package bsp

import (
	"github.com/holistic-stack/c4d-sub001/pkg/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

const none = -1

type node struct {
	plane       geom.Plane
	polygons    []Polygon
	front, back int32
}

// Tree is a BSP tree stored as a node arena. Node 0 is the root. A
// missing front child is empty space and a missing back child is solid,
// which holds for trees built from the boundary of a closed solid.
type Tree struct {
	nodes []node
	eps   float64
}

type buildItem struct {
	idx   int32
	polys []Polygon
	depth int
}

// Build constructs a tree by autopartition: every node splits on the
// plane of the first polygon it receives. Depth counts only nodes that
// send polygons to both sides; chains of one-sided nodes, which is all a
// convex solid produces, cost nothing. Exceeding cfg.MaxDepth is a
// recursion-limit error.
func Build(polys []Polygon, cfg geom.Config) (*Tree, error) {
	t := &Tree{eps: cfg.Epsilon}
	if len(polys) == 0 {
		return t, nil
	}
	t.nodes = append(t.nodes, node{front: none, back: none})
	stack := []buildItem{{idx: 0, polys: polys}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		plane := it.polys[0].Plane
		var coplanar, front, back []Polygon
		for _, p := range it.polys {
			side, f, b := SplitPolygon(plane, p, t.eps)
			switch side {
			case geom.Coplanar:
				coplanar = append(coplanar, p)
			case geom.Front:
				front = append(front, p)
			case geom.Back:
				back = append(back, p)
			default:
				if f.Vertices != nil {
					front = append(front, f)
				}
				if b.Vertices != nil {
					back = append(back, b)
				}
			}
		}
		t.nodes[it.idx].plane = plane
		t.nodes[it.idx].polygons = coplanar

		depth := it.depth
		if len(front) > 0 && len(back) > 0 {
			depth++
			if depth > cfg.MaxDepth {
				return nil, geom.RecursionLimit("bsp build", depth)
			}
		}
		if len(front) > 0 {
			c := t.add()
			t.nodes[it.idx].front = c
			stack = append(stack, buildItem{idx: c, polys: front, depth: depth})
		}
		if len(back) > 0 {
			c := t.add()
			t.nodes[it.idx].back = c
			stack = append(stack, buildItem{idx: c, polys: back, depth: depth})
		}
	}
	return t, nil
}

func (t *Tree) add() int32 {
	t.nodes = append(t.nodes, node{front: none, back: none})
	return int32(len(t.nodes) - 1)
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Polygons returns every polygon stored in the tree.
func (t *Tree) Polygons() []Polygon {
	var out []Polygon
	for _, n := range t.nodes {
		out = append(out, n.polygons...)
	}
	return out
}

// Route says where a polygon lying in a node's plane continues: Same
// applies when its normal agrees with the plane's, Opposite when it
// points the other way. Each must be geom.Front or geom.Back.
type Route struct {
	Same, Opposite geom.Side
}

type clipItem struct {
	idx   int32
	polys []Polygon
}

// Classify pushes polys down the tree, splitting them on node planes,
// and sorts the resulting fragments into those that end in solid cells
// (inside) and those that end in empty cells (outside). An empty tree
// has no solid, so everything is outside.
func (t *Tree) Classify(polys []Polygon, r Route) (inside, outside []Polygon) {
	if len(t.nodes) == 0 {
		return nil, append([]Polygon(nil), polys...)
	}
	stack := []clipItem{{idx: 0, polys: polys}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := t.nodes[it.idx]
		var front, back []Polygon
		for _, p := range it.polys {
			side, f, b := SplitPolygon(n.plane, p, t.eps)
			switch side {
			case geom.Coplanar:
				to := r.Opposite
				if r3.Dot(p.Plane.Normal, n.plane.Normal) > 0 {
					to = r.Same
				}
				if to == geom.Front {
					front = append(front, p)
				} else {
					back = append(back, p)
				}
			case geom.Front:
				front = append(front, p)
			case geom.Back:
				back = append(back, p)
			default:
				if f.Vertices != nil {
					front = append(front, f)
				}
				if b.Vertices != nil {
					back = append(back, b)
				}
			}
		}
		switch {
		case len(front) == 0:
		case n.front == none:
			outside = append(outside, front...)
		default:
			stack = append(stack, clipItem{idx: n.front, polys: front})
		}
		switch {
		case len(back) == 0:
		case n.back == none:
			inside = append(inside, back...)
		default:
			stack = append(stack, clipItem{idx: n.back, polys: back})
		}
	}
	return inside, outside
}

// ContainsPoint reports whether p lies in a solid cell or on the
// boundary. Points on a node plane are tested on both sides.
func (t *Tree) ContainsPoint(p geom.Vec3) bool {
	if len(t.nodes) == 0 {
		return false
	}
	stack := []int32{0}
	for len(stack) > 0 {
		n := t.nodes[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]
		side := n.plane.ClassifyPoint(p, t.eps)
		if side != geom.Back {
			if n.front != none {
				stack = append(stack, n.front)
			}
		}
		if side != geom.Front {
			if n.back == none {
				return true
			}
			stack = append(stack, n.back)
		}
	}
	return false
}
