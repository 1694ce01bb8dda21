// Package triangulate turns planar outlines with holes into triangles.
// It wraps the libtess2 sweep-line tessellator and maps its float32 output
// back onto the caller's float64 points.
package triangulate

import (
	"fmt"

	"github.com/hajimehoshi/go-libtess2"
	"github.com/holistic-stack/c4d-sub001/pkg/geom"
	"gonum.org/v1/gonum/spatial/r2"
)

// Rule decides which regions of overlapping contours are filled.
type Rule int

const (
	// EvenOdd fills regions crossed an odd number of times, so nested
	// contours become holes regardless of orientation.
	EvenOdd Rule = iota
	// NonZero fills every region with a non-zero winding number.
	NonZero
)

func (r Rule) libtess() libtess2.WindingRule {
	if r == NonZero {
		return libtess2.WindingRuleNonzero
	}
	return libtess2.WindingRuleOdd
}

type key struct{ x, y float32 }

// Polygons triangulates the filled region of contours. Every returned
// triangle is counter-clockwise. Points are the input points (first
// occurrence wins for duplicates) followed by any intersection points
// the tessellator had to insert.
func Polygons(contours [][]geom.Vec2, rule Rule) ([]geom.Vec2, [][3]uint32, error) {
	var all []geom.Vec2
	for _, c := range contours {
		all = append(all, c...)
	}
	if len(all) < 3 {
		return nil, nil, geom.Geometryf("triangulate: need at least 3 points, got %d", len(all))
	}

	// Shift to the centroid so float32 keeps as many digits as possible.
	var origin r2.Vec
	for _, p := range all {
		origin = r2.Add(origin, p)
	}
	origin = r2.Scale(1/float64(len(all)), origin)

	pts := make([]geom.Vec2, 0, len(all))
	lookup := make(map[key]uint32, len(all))
	in := make([]libtess2.Contour, 0, len(contours))
	for _, c := range contours {
		if len(c) < 3 {
			continue
		}
		tc := make(libtess2.Contour, len(c))
		for i, p := range c {
			v := libtess2.Vertex{X: float32(p.X - origin.X), Y: float32(p.Y - origin.Y)}
			tc[i] = v
			k := key{v.X, v.Y}
			if _, ok := lookup[k]; !ok {
				lookup[k] = uint32(len(pts))
				pts = append(pts, p)
			}
		}
		in = append(in, tc)
	}
	if len(in) == 0 {
		return nil, nil, geom.Geometryf("triangulate: no contour has 3 or more points")
	}

	elems, verts, err := libtess2.Tesselate(in, rule.libtess())
	if err != nil {
		return nil, nil, fmt.Errorf("triangulate: %w", err)
	}

	remap := make([]uint32, len(verts))
	for i, v := range verts {
		k := key{v.X, v.Y}
		idx, ok := lookup[k]
		if !ok {
			idx = uint32(len(pts))
			lookup[k] = idx
			pts = append(pts, geom.Vec2{X: float64(v.X) + origin.X, Y: float64(v.Y) + origin.Y})
		}
		remap[i] = idx
	}

	tris := make([][3]uint32, 0, len(elems)/3)
	for i := 0; i+2 < len(elems); i += 3 {
		if elems[i] < 0 || elems[i+1] < 0 || elems[i+2] < 0 {
			continue
		}
		t := [3]uint32{remap[elems[i]], remap[elems[i+1]], remap[elems[i+2]]}
		if t[0] == t[1] || t[1] == t[2] || t[2] == t[0] {
			continue
		}
		if SignedArea(pts[t[0]], pts[t[1]], pts[t[2]]) < 0 {
			t[1], t[2] = t[2], t[1]
		}
		tris = append(tris, t)
	}
	if len(tris) == 0 {
		return nil, nil, geom.Geometryf("triangulate: outline encloses no area")
	}
	return pts, tris, nil
}

// SignedArea returns twice the signed area of triangle abc; positive for
// counter-clockwise order.
func SignedArea(a, b, c geom.Vec2) float64 {
	return r2.Cross(r2.Sub(b, a), r2.Sub(c, a))
}

// LoopArea returns the signed area of a closed loop (shoelace formula).
func LoopArea(loop []geom.Vec2) float64 {
	var s float64
	for i, p := range loop {
		q := loop[(i+1)%len(loop)]
		s += p.X*q.Y - q.X*p.Y
	}
	return s / 2
}

// Fan triangulates a convex loop around its first vertex.
func Fan(n int) [][3]uint32 {
	if n < 3 {
		return nil
	}
	tris := make([][3]uint32, 0, n-2)
	for i := 1; i < n-1; i++ {
		tris = append(tris, [3]uint32{0, uint32(i), uint32(i + 1)})
	}
	return tris
}
