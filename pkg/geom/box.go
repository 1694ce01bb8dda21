package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Box is an axis-aligned bounding box.
type Box = r3.Box

// EmptyBox returns a box that contains nothing; extending it with a point
// yields the degenerate box at that point.
func EmptyBox() Box {
	inf := math.Inf(1)
	return Box{
		Min: Vec3{X: inf, Y: inf, Z: inf},
		Max: Vec3{X: -inf, Y: -inf, Z: -inf},
	}
}

// BoxIsEmpty reports whether b contains no points.
func BoxIsEmpty(b Box) bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// ExtendBox grows b to include p.
func ExtendBox(b Box, p Vec3) Box {
	return Box{Min: MinVec(b.Min, p), Max: MaxVec(b.Max, p)}
}

// BoxOf returns the bounding box of pts.
func BoxOf(pts []Vec3) Box {
	b := EmptyBox()
	for _, p := range pts {
		b = ExtendBox(b, p)
	}
	return b
}

// UnionBox returns the smallest box containing a and b.
func UnionBox(a, b Box) Box {
	switch {
	case BoxIsEmpty(a):
		return b
	case BoxIsEmpty(b):
		return a
	}
	return Box{Min: MinVec(a.Min, b.Min), Max: MaxVec(a.Max, b.Max)}
}

// BoxSize returns the extent of b along each axis.
func BoxSize(b Box) Vec3 {
	if BoxIsEmpty(b) {
		return Vec3{}
	}
	return r3.Sub(b.Max, b.Min)
}

// BoxCenter returns the midpoint of b.
func BoxCenter(b Box) Vec3 {
	return r3.Scale(0.5, r3.Add(b.Min, b.Max))
}

// BoxesOverlap reports whether a and b share any volume larger than tol.
// Boxes that merely touch do not overlap.
func BoxesOverlap(a, b Box, tol float64) bool {
	if BoxIsEmpty(a) || BoxIsEmpty(b) {
		return false
	}
	return a.Min.X < b.Max.X-tol && b.Min.X < a.Max.X-tol &&
		a.Min.Y < b.Max.Y-tol && b.Min.Y < a.Max.Y-tol &&
		a.Min.Z < b.Max.Z-tol && b.Min.Z < a.Max.Z-tol
}

// BoxContains reports whether b contains a, expanded by tol.
func BoxContains(b, a Box, tol float64) bool {
	if BoxIsEmpty(a) {
		return true
	}
	return a.Min.X >= b.Min.X-tol && a.Min.Y >= b.Min.Y-tol && a.Min.Z >= b.Min.Z-tol &&
		a.Max.X <= b.Max.X+tol && a.Max.Y <= b.Max.Y+tol && a.Max.Z <= b.Max.Z+tol
}

// BoxesEqual reports whether the corners of a and b agree within tol.
func BoxesEqual(a, b Box, tol float64) bool {
	if BoxIsEmpty(a) || BoxIsEmpty(b) {
		return BoxIsEmpty(a) == BoxIsEmpty(b)
	}
	return NearlyEqual(a.Min, b.Min, tol) && NearlyEqual(a.Max, b.Max, tol)
}

// BoxCorners returns the eight corners of b.
func BoxCorners(b Box) [8]Vec3 {
	var c [8]Vec3
	for i := range c {
		c[i] = b.Min
		if i&1 != 0 {
			c[i].X = b.Max.X
		}
		if i&2 != 0 {
			c[i].Y = b.Max.Y
		}
		if i&4 != 0 {
			c[i].Z = b.Max.Z
		}
	}
	return c
}
