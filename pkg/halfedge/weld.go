package halfedge

import (
	"github.com/holistic-stack/c4d-sub001/pkg/geom"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

var _ kdtree.Comparable = (*weldPoint)(nil)

// weldPoint is a kd-tree entry for a welded vertex.
type weldPoint struct {
	p   geom.Vec3
	idx uint32
}

func (w *weldPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(*weldPoint)
	return geom.Component(w.p, int(d)) - geom.Component(q.p, int(d))
}

func (w *weldPoint) Dims() int { return 3 }

// Distance returns the squared Euclidean distance, which is what the
// kd-tree's pruning expects.
func (w *weldPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(*weldPoint)
	return r3.Norm2(r3.Sub(w.p, q.p))
}

// weldPoints is a batch of entries that kdtree.New can partition.
type weldPoints []*weldPoint

func (p weldPoints) Index(i int) kdtree.Comparable { return p[i] }
func (p weldPoints) Len() int                       { return len(p) }
func (p weldPoints) Slice(start, end int) kdtree.Interface {
	return p[start:end]
}

// Pivot partitions the batch on dimension d.
func (p weldPoints) Pivot(d kdtree.Dim) int {
	pl := weldPlane{dim: d, points: p}
	return kdtree.Partition(pl, kdtree.MedianOfMedians(pl))
}

type weldPlane struct {
	dim    kdtree.Dim
	points weldPoints
}

func (p weldPlane) Less(i, j int) bool {
	return p.points[i].Compare(p.points[j], p.dim) < 0
}
func (p weldPlane) Swap(i, j int) { p.points[i], p.points[j] = p.points[j], p.points[i] }
func (p weldPlane) Len() int      { return len(p.points) }
func (p weldPlane) Slice(start, end int) kdtree.SortSlicer {
	p.points = p.points[start:end]
	return p
}

// weldLevel is one balanced tree of the welder. Level i is either empty
// or holds exactly 1<<i points.
type weldLevel struct {
	tree   *kdtree.Tree
	points weldPoints
}

// Welder assigns vertex handles to positions, reusing the handle of an
// earlier position closer than the tolerance. Points live in a set of
// balanced kd-trees whose sizes are distinct powers of two; inserting
// merges equal-sized trees, so ordered input such as sphere rings never
// degrades a tree into a list.
type Welder struct {
	levels    []weldLevel
	tol2      float64
	positions []geom.Vec3
}

// NewWelder returns a Welder that merges points within tol.
func NewWelder(tol float64) *Welder {
	return &Welder{tol2: tol * tol}
}

// Add returns the handle for p.
func (w *Welder) Add(p geom.Vec3) uint32 {
	q := &weldPoint{p: p}
	var best *weldPoint
	bestD := w.tol2
	for _, l := range w.levels {
		if l.tree == nil {
			continue
		}
		if c, d := l.tree.Nearest(q); c != nil && d <= bestD {
			best, bestD = c.(*weldPoint), d
		}
	}
	if best != nil {
		return best.idx
	}
	q.idx = uint32(len(w.positions))
	w.positions = append(w.positions, p)
	w.insert(q)
	return q.idx
}

func (w *Welder) insert(q *weldPoint) {
	carry := weldPoints{q}
	for i := 0; ; i++ {
		if i == len(w.levels) {
			w.levels = append(w.levels, weldLevel{})
		}
		if w.levels[i].tree == nil {
			w.levels[i] = weldLevel{tree: kdtree.New(carry, false), points: carry}
			return
		}
		carry = append(carry, w.levels[i].points...)
		w.levels[i] = weldLevel{}
	}
}

// Positions returns the distinct positions in handle order.
func (w *Welder) Positions() []geom.Vec3 {
	return w.positions
}

// Len returns the number of distinct positions.
func (w *Welder) Len() int {
	return len(w.positions)
}

// FromSoup welds the corners of a triangle soup, drops triangles that
// collapse onto fewer than three distinct vertices, and stitches the
// result.
func FromSoup(soup [][3]geom.Vec3, tol float64) (*Mesh, error) {
	w := NewWelder(tol)
	tris := make([][3]uint32, 0, len(soup))
	for _, t := range soup {
		a, b, c := w.Add(t[0]), w.Add(t[1]), w.Add(t[2])
		if a == b || b == c || c == a {
			continue
		}
		tris = append(tris, [3]uint32{a, b, c})
	}
	pts, tris := Compact(w.Positions(), tris)
	return FromTriangles(pts, tris)
}
