package csg

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/holistic-stack/c4d-sub001/pkg/bsp"
	"github.com/holistic-stack/c4d-sub001/pkg/geom"
	"github.com/holistic-stack/c4d-sub001/pkg/halfedge"
	"github.com/holistic-stack/c4d-sub001/pkg/primitive"
	"gonum.org/v1/gonum/spatial/r3"
)

func cube(t *testing.T, size float64, at geom.Vec3) *halfedge.Mesh {
	t.Helper()
	m, err := primitive.Cube(geom.Vec3{X: size, Y: size, Z: size}, false)
	if err != nil {
		t.Fatalf("Cube: %v", err)
	}
	m.Translate(at)
	return m
}

func checkSolid(t *testing.T, m *halfedge.Mesh, wantEuler int, wantVolume float64) {
	t.Helper()
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got := m.EulerCharacteristic(); got != wantEuler {
		t.Errorf("Euler characteristic = %d, want %d", got, wantEuler)
	}
	if got := m.Volume(); math.Abs(got-wantVolume) > 1e-6 {
		t.Errorf("volume = %g, want %g", got, wantVolume)
	}
}

func checkBox(t *testing.T, m *halfedge.Mesh, min, max geom.Vec3) {
	t.Helper()
	want := geom.Box{Min: min, Max: max}
	if got := m.BoundingBox(); !geom.BoxesEqual(got, want, 1e-9) {
		t.Errorf("bounding box = %v, want %v", got, want)
	}
}

func TestOverlappingCubes(t *testing.T) {
	tests := []struct {
		op         Op
		wantVolume float64
		wantMin    geom.Vec3
		wantMax    geom.Vec3
	}{
		{OpUnion, 15, geom.Vec3{}, geom.Vec3{X: 3, Y: 3, Z: 3}},
		{OpDifference, 7, geom.Vec3{}, geom.Vec3{X: 2, Y: 2, Z: 2}},
		{OpIntersection, 1, geom.Vec3{X: 1, Y: 1, Z: 1}, geom.Vec3{X: 2, Y: 2, Z: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			a := cube(t, 2, geom.Vec3{})
			b := cube(t, 2, geom.Vec3{X: 1, Y: 1, Z: 1})
			got, err := Apply(tt.op, a, b, geom.DefaultConfig())
			if err != nil {
				t.Fatalf("%v: %v", tt.op, err)
			}
			t.Logf("%v: %d vertices, %d faces", tt.op, len(got.Vertices), len(got.Faces))
			checkSolid(t, got, 2, tt.wantVolume)
			checkBox(t, got, tt.wantMin, tt.wantMax)

			inA := bsp.PointInMesh(got, geom.Vec3{X: 0.5, Y: 0.5, Z: 0.5})
			inB := bsp.PointInMesh(got, geom.Vec3{X: 2.5, Y: 2.5, Z: 2.5})
			inBoth := bsp.PointInMesh(got, geom.Vec3{X: 1.5, Y: 1.5, Z: 1.5})
			want := map[Op][3]bool{
				OpUnion:        {true, true, true},
				OpDifference:   {true, false, false},
				OpIntersection: {false, false, true},
			}[tt.op]
			if [3]bool{inA, inB, inBoth} != want {
				t.Errorf("containment (A only, B only, both) = %v, want %v", [3]bool{inA, inB, inBoth}, want)
			}
		})
	}
}

func sphereAt(t *testing.T, r float64, n int, at geom.Vec3) *halfedge.Mesh {
	t.Helper()
	m, err := primitive.Sphere(r, n)
	if err != nil {
		t.Fatalf("Sphere: %v", err)
	}
	m.Translate(at)
	return m
}

// TestCurvedOperands runs every operator on faceted operands, where BSP
// splitting leaves many short edges and collinear fragment vertices. The
// results must be closed, and their volumes must satisfy
// |A∪B| + |A∩B| = |A| + |B| and |A−B| = |A| − |A∩B|.
func TestCurvedOperands(t *testing.T) {
	centered := func(t *testing.T) *halfedge.Mesh {
		m, err := primitive.Cube(geom.Vec3{X: 2, Y: 2, Z: 2}, true)
		if err != nil {
			t.Fatalf("Cube: %v", err)
		}
		return m
	}
	tests := []struct {
		name      string
		fragments []int
		operands  func(t *testing.T, n int) (a, b *halfedge.Mesh)
		wantEuler map[Op]int
	}{
		{
			name:      "sphere/sphere",
			fragments: []int{8, 12, 16, 24, 32},
			operands: func(t *testing.T, n int) (a, b *halfedge.Mesh) {
				return sphereAt(t, 1, n, geom.Vec3{}), sphereAt(t, 1, n, geom.Vec3{X: 0.8, Y: 0.1, Z: 0.05})
			},
			wantEuler: map[Op]int{OpUnion: 2, OpDifference: 2, OpIntersection: 2},
		},
		{
			name:      "cube/sphere",
			fragments: []int{8, 12, 16, 24, 32},
			operands: func(t *testing.T, n int) (a, b *halfedge.Mesh) {
				return centered(t), sphereAt(t, 1, n, geom.Vec3{X: 0.9, Y: 0.8, Z: 0.7})
			},
			wantEuler: map[Op]int{OpUnion: 2, OpDifference: 2, OpIntersection: 2},
		},
		{
			name:      "cube/cylinder",
			fragments: []int{3, 4, 5, 6, 12, 16},
			operands: func(t *testing.T, n int) (a, b *halfedge.Mesh) {
				rod, err := primitive.Cylinder(4, 0.5, 0.5, true, n)
				if err != nil {
					t.Fatalf("Cylinder: %v", err)
				}
				return centered(t), rod
			},
			// The rod passes through the block, so the difference is a
			// solid torus.
			wantEuler: map[Op]int{OpUnion: 2, OpDifference: 0, OpIntersection: 2},
		},
	}
	for _, tt := range tests {
		for _, n := range tt.fragments {
			t.Run(fmt.Sprintf("%s/%d", tt.name, n), func(t *testing.T) {
				a, b := tt.operands(t, n)
				va, vb := a.Volume(), b.Volume()
				vol := make(map[Op]float64)
				for _, op := range []Op{OpUnion, OpDifference, OpIntersection} {
					got, err := Apply(op, a, b, geom.DefaultConfig())
					if err != nil {
						t.Fatalf("%v: %v", op, err)
					}
					if err := got.Validate(); err != nil {
						t.Fatalf("%v: Validate: %v", op, err)
					}
					if e := got.EulerCharacteristic(); e != tt.wantEuler[op] {
						t.Errorf("%v: Euler characteristic = %d, want %d", op, e, tt.wantEuler[op])
					}
					vol[op] = got.Volume()
				}
				const tol = 1e-4
				if got, want := vol[OpUnion]+vol[OpIntersection], va+vb; math.Abs(got-want) > tol {
					t.Errorf("|A∪B| + |A∩B| = %g, want %g", got, want)
				}
				if got, want := vol[OpDifference], va-vol[OpIntersection]; math.Abs(got-want) > tol {
					t.Errorf("|A−B| = %g, want %g", got, want)
				}
				if vol[OpIntersection] <= 0 || vol[OpIntersection] > math.Min(va, vb)+tol {
					t.Errorf("|A∩B| = %g, want in (0, %g]", vol[OpIntersection], math.Min(va, vb))
				}
			})
		}
	}
}

func TestChainedBooleans(t *testing.T) {
	// Results of one boolean feed the next; collinear fragment vertices
	// from the first cut must not leave flat faces behind.
	block, err := primitive.Cube(geom.Vec3{X: 2, Y: 2, Z: 2}, true)
	if err != nil {
		t.Fatalf("Cube: %v", err)
	}
	acc := block
	for i, at := range []geom.Vec3{{X: 0.97, Y: 1.03, Z: 0.98}, {X: -1.02, Y: 0.96, Z: 1.01}, {X: 1.04, Y: -0.99, Z: -0.97}} {
		acc, err = Difference(acc, sphereAt(t, 0.6, 16, at))
		if err != nil {
			t.Fatalf("cut %d: %v", i, err)
		}
		if err := acc.Validate(); err != nil {
			t.Fatalf("cut %d: Validate: %v", i, err)
		}
	}
	if got := acc.EulerCharacteristic(); got != 2 {
		t.Errorf("Euler characteristic = %d, want 2", got)
	}
	if v := acc.Volume(); v >= 8 || v <= 7 {
		t.Errorf("volume = %g, want between 7 and 8", v)
	}
}

func TestOperandsAreNotModified(t *testing.T) {
	a := cube(t, 2, geom.Vec3{})
	b := cube(t, 2, geom.Vec3{X: 1})
	wantA, wantB := a.Clone(), b.Clone()
	if _, err := Union(a, b); err != nil {
		t.Fatalf("Union: %v", err)
	}
	if len(a.Faces) != len(wantA.Faces) || a.Vertices[7] != wantA.Vertices[7] {
		t.Error("first operand was modified")
	}
	if len(b.Faces) != len(wantB.Faces) || b.Vertices[7] != wantB.Vertices[7] {
		t.Error("second operand was modified")
	}
}

func TestSelfOperations(t *testing.T) {
	a := cube(t, 2, geom.Vec3{X: -1, Y: -1, Z: -1})

	u, err := Union(a, a)
	if err != nil {
		t.Fatalf("Union: %v", err)
	}
	checkSolid(t, u, 2, 8)
	checkBox(t, u, geom.Vec3{X: -1, Y: -1, Z: -1}, geom.Vec3{X: 1, Y: 1, Z: 1})

	i, err := Intersection(a, a)
	if err != nil {
		t.Fatalf("Intersection: %v", err)
	}
	checkSolid(t, i, 2, 8)

	d, err := Difference(a, a)
	if err != nil {
		t.Fatalf("Difference: %v", err)
	}
	if !d.IsEmpty() {
		t.Errorf("A - A has %d faces, want 0", len(d.Faces))
	}
}

func TestTouchingCubesFuse(t *testing.T) {
	a := cube(t, 1, geom.Vec3{})
	b := cube(t, 1, geom.Vec3{X: 1})

	u, err := Union(a, b)
	if err != nil {
		t.Fatalf("Union: %v", err)
	}
	checkSolid(t, u, 2, 2)
	checkBox(t, u, geom.Vec3{}, geom.Vec3{X: 2, Y: 1, Z: 1})

	d, err := Difference(a, b)
	if err != nil {
		t.Fatalf("Difference: %v", err)
	}
	checkSolid(t, d, 2, 1)
	checkBox(t, d, geom.Vec3{}, geom.Vec3{X: 1, Y: 1, Z: 1})

	i, err := Intersection(a, b)
	if err != nil {
		t.Fatalf("Intersection: %v", err)
	}
	if !i.IsEmpty() {
		t.Errorf("intersection of touching cubes has %d faces, want 0", len(i.Faces))
	}
}

func TestDisjointOperands(t *testing.T) {
	a := cube(t, 1, geom.Vec3{})
	b := cube(t, 1, geom.Vec3{X: 5})

	u, err := Union(a, b)
	if err != nil {
		t.Fatalf("Union: %v", err)
	}
	checkSolid(t, u, 4, 2)
	checkBox(t, u, geom.Vec3{}, geom.Vec3{X: 6, Y: 1, Z: 1})

	d, err := Difference(a, b)
	if err != nil {
		t.Fatalf("Difference: %v", err)
	}
	checkSolid(t, d, 2, 1)

	i, err := Intersection(a, b)
	if err != nil {
		t.Fatalf("Intersection: %v", err)
	}
	if !i.IsEmpty() {
		t.Errorf("intersection of disjoint cubes has %d faces, want 0", len(i.Faces))
	}
}

func TestEmptyOperands(t *testing.T) {
	a := cube(t, 1, geom.Vec3{})
	empty := halfedge.New()
	tests := []struct {
		name      string
		op        Op
		a, b      *halfedge.Mesh
		wantFaces int
	}{
		{"union empty right", OpUnion, a, empty, 12},
		{"union empty left", OpUnion, empty, a, 12},
		{"difference empty right", OpDifference, a, empty, 12},
		{"difference empty left", OpDifference, empty, a, 0},
		{"intersection empty right", OpIntersection, a, empty, 0},
		{"intersection empty left", OpIntersection, empty, a, 0},
		{"both empty", OpUnion, empty, empty, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(tt.op, tt.a, tt.b, geom.DefaultConfig())
			if err != nil {
				t.Fatalf("%v: %v", tt.op, err)
			}
			if len(got.Faces) != tt.wantFaces {
				t.Errorf("got %d faces, want %d", len(got.Faces), tt.wantFaces)
			}
		})
	}
}

func TestCubeWithHole(t *testing.T) {
	const n = 16
	block, err := primitive.Cube(geom.Vec3{X: 2, Y: 2, Z: 2}, true)
	if err != nil {
		t.Fatalf("Cube: %v", err)
	}
	rod, err := primitive.Cylinder(4, 0.5, 0.5, true, n)
	if err != nil {
		t.Fatalf("Cylinder: %v", err)
	}
	got, err := Difference(block, rod)
	if err != nil {
		t.Fatalf("Difference: %v", err)
	}
	hole := 0.5 * n * 0.25 * math.Sin(2*math.Pi/n) * 2
	checkSolid(t, got, 0, 8-hole)
	if bsp.PointInMesh(got, geom.Vec3{}) {
		t.Error("center of the hole is inside the result")
	}
	if !bsp.PointInMesh(got, geom.Vec3{X: 0.9, Y: 0.9}) {
		t.Error("corner of the block is outside the result")
	}
}

func TestColorFollowsFirstOperand(t *testing.T) {
	a := cube(t, 2, geom.Vec3{})
	a.Color = &halfedge.Color{1, 0, 0, 1}
	b := cube(t, 2, geom.Vec3{X: 1})
	b.Color = &halfedge.Color{0, 0, 1, 1}
	got, err := Union(a, b)
	if err != nil {
		t.Fatalf("Union: %v", err)
	}
	if got.Color == nil || *got.Color != *a.Color {
		t.Errorf("color = %v, want %v", got.Color, *a.Color)
	}
	if got.Color == a.Color {
		t.Error("result shares the operand's color pointer")
	}
}

func TestFold(t *testing.T) {
	a := cube(t, 2, geom.Vec3{})
	b := cube(t, 2, geom.Vec3{X: 1})
	c := cube(t, 2, geom.Vec3{X: 2})

	u, err := UnionAll(a, b, c)
	if err != nil {
		t.Fatalf("UnionAll: %v", err)
	}
	checkSolid(t, u, 2, 16)
	checkBox(t, u, geom.Vec3{}, geom.Vec3{X: 4, Y: 2, Z: 2})

	d, err := DifferenceAll(c, b)
	if err != nil {
		t.Fatalf("DifferenceAll: %v", err)
	}
	checkSolid(t, d, 2, 4)

	// a and c only touch, so nothing survives.
	i, err := IntersectionAll(a, b, c)
	if err != nil {
		t.Fatalf("IntersectionAll: %v", err)
	}
	if !i.IsEmpty() {
		t.Errorf("IntersectionAll has %d faces, want 0", len(i.Faces))
	}

	empty, err := UnionAll()
	if err != nil || !empty.IsEmpty() {
		t.Errorf("UnionAll() = %v, %v, want empty mesh", empty, err)
	}
	one, err := UnionAll(a)
	if err != nil {
		t.Fatalf("UnionAll(a): %v", err)
	}
	if one == a || len(one.Faces) != len(a.Faces) {
		t.Error("single operand is not returned as a copy")
	}
}

func TestAppendDisjoint(t *testing.T) {
	a := cube(t, 1, geom.Vec3{})
	far := cube(t, 1, geom.Vec3{Y: 3})
	got, err := AppendDisjoint(a, far, geom.DefaultConfig())
	if err != nil {
		t.Fatalf("AppendDisjoint: %v", err)
	}
	checkSolid(t, got, 4, 2)

	near := cube(t, 1, geom.Vec3{Y: 0.5})
	if _, err := AppendDisjoint(a, near, geom.DefaultConfig()); !errors.Is(err, geom.ErrBoolean) {
		t.Errorf("AppendDisjoint(overlapping) error = %v, want boolean error", err)
	}
}

func flatArea(m *halfedge.Mesh) float64 {
	var area float64
	for f := range m.Faces {
		if m.Faces[f].Normal.Z <= 0 {
			continue
		}
		p := m.FacePositions(uint32(f))
		area += 0.5 * r3.Norm(geom.TriangleNormal(p[0], p[1], p[2]))
	}
	return area
}

func TestFlatBoolean(t *testing.T) {
	tests := []struct {
		op       Op
		wantArea float64
	}{
		{OpUnion, 7},
		{OpDifference, 3},
		{OpIntersection, 1},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			a, err := primitive.Square(geom.Vec2{X: 2, Y: 2}, false)
			if err != nil {
				t.Fatalf("Square: %v", err)
			}
			b, err := primitive.Square(geom.Vec2{X: 2, Y: 2}, false)
			if err != nil {
				t.Fatalf("Square: %v", err)
			}
			b.Translate(geom.Vec3{X: 1, Y: 1})

			got, err := Apply(tt.op, a, b, geom.DefaultConfig())
			if err != nil {
				t.Fatalf("%v: %v", tt.op, err)
			}
			if err := got.Validate(); err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if _, ok := got.IsFlat(1e-9); !ok {
				t.Error("result is not flat")
			}
			if area := flatArea(got); math.Abs(area-tt.wantArea) > 1e-6 {
				t.Errorf("area = %g, want %g", area, tt.wantArea)
			}
		})
	}
}

func TestFlatDifferenceMakesHole(t *testing.T) {
	outer, err := primitive.Square(geom.Vec2{X: 10, Y: 10}, true)
	if err != nil {
		t.Fatalf("Square: %v", err)
	}
	inner, err := primitive.Circle(2, 32)
	if err != nil {
		t.Fatalf("Circle: %v", err)
	}
	got, err := Difference(outer, inner)
	if err != nil {
		t.Fatalf("Difference: %v", err)
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	// A double-sided annulus is a torus-like closed surface.
	if e := got.EulerCharacteristic(); e != 0 {
		t.Errorf("Euler characteristic = %d, want 0", e)
	}
	want := 100 - 0.5*32*4*math.Sin(2*math.Pi/32)
	if area := flatArea(got); math.Abs(area-want) > 1e-4 {
		t.Errorf("area = %g, want %g", area, want)
	}
}

func TestFlatAtDifferentHeights(t *testing.T) {
	a, _ := primitive.Square(geom.Vec2{X: 1, Y: 1}, false)
	b, _ := primitive.Square(geom.Vec2{X: 1, Y: 1}, false)
	b.Translate(geom.Vec3{Z: 1})

	i, err := Intersection(a, b)
	if err != nil {
		t.Fatalf("Intersection: %v", err)
	}
	if !i.IsEmpty() {
		t.Errorf("intersection has %d faces, want 0", len(i.Faces))
	}
	d, err := Difference(a, b)
	if err != nil {
		t.Fatalf("Difference: %v", err)
	}
	if len(d.Faces) != len(a.Faces) {
		t.Errorf("difference has %d faces, want %d", len(d.Faces), len(a.Faces))
	}
}

func TestMixedDimensions(t *testing.T) {
	flat, _ := primitive.Square(geom.Vec2{X: 1, Y: 1}, false)
	solid := cube(t, 1, geom.Vec3{})
	for _, op := range []Op{OpUnion, OpDifference, OpIntersection} {
		if _, err := Apply(op, solid, flat, geom.DefaultConfig()); !errors.Is(err, geom.ErrBoolean) {
			t.Errorf("%v(solid, flat) error = %v, want boolean error", op, err)
		}
	}
}

func TestInvalidConfig(t *testing.T) {
	cfg := geom.DefaultConfig()
	cfg.MaxDepth = 0
	a := cube(t, 1, geom.Vec3{})
	if _, err := Apply(OpUnion, a, a, cfg); !errors.Is(err, geom.ErrBoolean) {
		t.Errorf("error = %v, want boolean error", err)
	}
}

func TestRecursionLimit(t *testing.T) {
	// Each bottom face separates one cube from the ones stacked below it.
	stack, err := UnionAll(cube(t, 1, geom.Vec3{}), cube(t, 1, geom.Vec3{Z: -3}), cube(t, 1, geom.Vec3{Z: -6}))
	if err != nil {
		t.Fatalf("UnionAll: %v", err)
	}
	checkSolid(t, stack, 6, 3)
	ball, err := primitive.Sphere(1, 16)
	if err != nil {
		t.Fatalf("Sphere: %v", err)
	}
	cfg := geom.DefaultConfig()
	cfg.MaxDepth = 1
	_, err = Apply(OpDifference, stack, ball, cfg)
	if !errors.Is(err, geom.ErrRecursionLimit) || !errors.Is(err, geom.ErrBoolean) {
		t.Errorf("error = %v, want recursion limit", err)
	}
}

func TestOffset(t *testing.T) {
	// 100 for the square and 40 for the edge strips; the corners add a
	// polygonal circle, a full square, or a square with its tips cut off.
	chamfer := 2 - math.Sqrt2
	tests := []struct {
		name     string
		p        OffsetParams
		wantArea float64
		areaTol  float64
		wantMaxX float64
	}{
		{"round", OffsetParams{Delta: 1, Join: geom.JoinRound, Fragments: 64}, 140 + 32*math.Sin(math.Pi/32), 1e-4, 6},
		{"coarse round", OffsetParams{Delta: 1, Join: geom.JoinRound, Fragments: 8}, 140 + 4*math.Sin(math.Pi/4), 1e-4, 6},
		{"miter", OffsetParams{Delta: 1, Join: geom.JoinMiter}, 144, 1e-6, 6},
		{"chamfer", OffsetParams{Delta: 1, Join: geom.JoinChamfer}, 144 - 2*chamfer*chamfer, 1e-4, 6},
		{"inset", OffsetParams{Delta: -1, Join: geom.JoinRound}, 64, 1e-6, 4},
		{"inset miter", OffsetParams{Delta: -2, Join: geom.JoinMiter}, 36, 1e-6, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sq, err := primitive.Square(geom.Vec2{X: 10, Y: 10}, true)
			if err != nil {
				t.Fatalf("Square: %v", err)
			}
			got, err := Offset(sq, tt.p, geom.DefaultConfig())
			if err != nil {
				t.Fatalf("Offset: %v", err)
			}
			if err := got.Validate(); err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if z, ok := got.IsFlat(1e-9); !ok || z != 0 {
				t.Errorf("result flat at %g (%v), want z = 0", z, ok)
			}
			if area := flatArea(got); math.Abs(area-tt.wantArea) > tt.areaTol {
				t.Errorf("area = %g, want %g", area, tt.wantArea)
			}
			if bb := got.BoundingBox(); math.Abs(bb.Max.X-tt.wantMaxX) > 1e-6 || math.Abs(bb.Min.X+tt.wantMaxX) > 1e-6 {
				t.Errorf("x extent = [%g, %g], want ±%g", bb.Min.X, bb.Max.X, tt.wantMaxX)
			}
			if len(sq.Faces) != 4 {
				t.Errorf("input changed to %d faces", len(sq.Faces))
			}
		})
	}
}

func TestOffsetKeepsHoles(t *testing.T) {
	outer, _ := primitive.Square(geom.Vec2{X: 10, Y: 10}, true)
	inner, _ := primitive.Square(geom.Vec2{X: 4, Y: 4}, true)
	ring, err := Difference(outer, inner)
	if err != nil {
		t.Fatalf("Difference: %v", err)
	}
	// Growing the ring shrinks the hole; the hole's corners stay sharp.
	got, err := Offset(ring, OffsetParams{Delta: 0.5, Join: geom.JoinMiter}, geom.DefaultConfig())
	if err != nil {
		t.Fatalf("Offset: %v", err)
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if e := got.EulerCharacteristic(); e != 0 {
		t.Errorf("Euler characteristic = %d, want 0", e)
	}
	if area := flatArea(got); math.Abs(area-(121-9)) > 1e-6 {
		t.Errorf("area = %g, want 112", area)
	}

	// Growing past half the wall closes the hole.
	closed, err := Offset(ring, OffsetParams{Delta: 2.5, Join: geom.JoinMiter}, geom.DefaultConfig())
	if err != nil {
		t.Fatalf("Offset: %v", err)
	}
	if e := closed.EulerCharacteristic(); e != 2 {
		t.Errorf("Euler characteristic after closing = %d, want 2", e)
	}
}

func TestOffsetEdgeCases(t *testing.T) {
	sq, _ := primitive.Square(geom.Vec2{X: 10, Y: 10}, true)
	cfg := geom.DefaultConfig()

	gone, err := Offset(sq, OffsetParams{Delta: -6}, cfg)
	if err != nil {
		t.Fatalf("Offset: %v", err)
	}
	if !gone.IsEmpty() {
		t.Errorf("shrinking past the middle left %d faces", len(gone.Faces))
	}
	empty, err := Offset(halfedge.New(), OffsetParams{Delta: 1}, cfg)
	if err != nil {
		t.Fatalf("Offset(empty): %v", err)
	}
	if !empty.IsEmpty() {
		t.Errorf("Offset(empty) has %d faces, want 0", len(empty.Faces))
	}
	same, err := Offset(sq, OffsetParams{}, cfg)
	if err != nil {
		t.Fatalf("zero offset: %v", err)
	}
	if len(same.Faces) != len(sq.Faces) {
		t.Errorf("zero offset has %d faces, want %d", len(same.Faces), len(sq.Faces))
	}

	tests := []struct {
		name string
		m    *halfedge.Mesh
		p    OffsetParams
	}{
		{"solid", cube(t, 1, geom.Vec3{}), OffsetParams{Delta: 1}},
		{"unknown join", sq, OffsetParams{Delta: 1, Join: geom.JoinType(7)}},
		{"nan delta", sq, OffsetParams{Delta: math.NaN()}},
		{"low miter limit", sq, OffsetParams{Delta: 1, Join: geom.JoinMiter, MiterLimit: 1.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Offset(tt.m, tt.p, cfg); !errors.Is(err, geom.ErrBoolean) {
				t.Errorf("error = %v, want boolean error", err)
			}
		})
	}
}
