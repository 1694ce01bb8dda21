package tessellate_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/holistic-stack/c4d-sub001/pkg/geom"
	"github.com/holistic-stack/c4d-sub001/pkg/graph"
	"github.com/holistic-stack/c4d-sub001/pkg/kernel"
	"github.com/holistic-stack/c4d-sub001/pkg/kernel/native"
	"github.com/holistic-stack/c4d-sub001/pkg/kernel/sdfx"
	"github.com/holistic-stack/c4d-sub001/pkg/tessellate"
)

// newKernel returns a fresh native kernel for testing.
func newKernel() kernel.Kernel {
	return native.New(geom.DefaultConfig())
}

// countingKernel counts primitive calls and can be told to fail spheres.
type countingKernel struct {
	kernel.Kernel
	cubes      atomic.Int32
	spheres    atomic.Int32
	fragments  atomic.Int32
	failSphere error
}

func (c *countingKernel) Cube(size geom.Vec3, center bool) (kernel.Solid, error) {
	c.cubes.Add(1)
	return c.Kernel.Cube(size, center)
}

func (c *countingKernel) Sphere(radius float64, fragments int) (kernel.Solid, error) {
	c.spheres.Add(1)
	c.fragments.Store(int32(fragments))
	if c.failSphere != nil {
		return nil, c.failSphere
	}
	return c.Kernel.Sphere(radius, fragments)
}

// bounds returns the bounding box of a flat mesh buffer.
func bounds(m *kernel.Mesh) (lo, hi [3]float64) {
	for i := range 3 {
		lo[i], hi[i] = math.Inf(1), math.Inf(-1)
	}
	for v := 0; v+2 < len(m.Vertices); v += 3 {
		for i := range 3 {
			x := float64(m.Vertices[v+i])
			lo[i] = math.Min(lo[i], x)
			hi[i] = math.Max(hi[i], x)
		}
	}
	return lo, hi
}

// volume returns the signed volume enclosed by a flat mesh buffer.
func volume(m *kernel.Mesh) float64 {
	vert := func(i uint32) [3]float64 {
		return [3]float64{float64(m.Vertices[3*i]), float64(m.Vertices[3*i+1]), float64(m.Vertices[3*i+2])}
	}
	var sum float64
	for t := 0; t+2 < len(m.Indices); t += 3 {
		a, b, c := vert(m.Indices[t]), vert(m.Indices[t+1]), vert(m.Indices[t+2])
		sum += a[0]*(b[1]*c[2]-b[2]*c[1]) - a[1]*(b[0]*c[2]-b[2]*c[0]) + a[2]*(b[0]*c[1]-b[1]*c[0])
	}
	return sum / 6
}

func checkBounds(t *testing.T, m *kernel.Mesh, wantLo, wantHi [3]float64) {
	t.Helper()
	lo, hi := bounds(m)
	for i := range 3 {
		if math.Abs(lo[i]-wantLo[i]) > 1e-4 || math.Abs(hi[i]-wantHi[i]) > 1e-4 {
			t.Errorf("bounds = %v..%v, want %v..%v", lo, hi, wantLo, wantHi)
			return
		}
	}
}

// tessellateOne runs a graph with a single root and returns its mesh.
func tessellateOne(t *testing.T, g *graph.Graph, k kernel.Kernel) *kernel.Mesh {
	t.Helper()
	meshes, err := tessellate.Tessellate(context.Background(), g, k, tessellate.DefaultOptions())
	if err != nil {
		t.Fatalf("Tessellate: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("got %d meshes, want 1", len(meshes))
	}
	if err := meshes[0].Validate(); err != nil {
		t.Fatalf("mesh: %v", err)
	}
	return meshes[0]
}

func TestSingleCube(t *testing.T) {
	b := graph.NewBuilder()
	c := b.Name(b.Cube(geom.Vec3{X: 100, Y: 50, Z: 19}, false), "shelf")
	b.Root(c)

	m := tessellateOne(t, b.Build(), newKernel())
	if m.PartName != "shelf" {
		t.Errorf("part name = %q, want %q", m.PartName, "shelf")
	}
	if m.TriangleCount() != 12 {
		t.Errorf("triangles = %d, want 12", m.TriangleCount())
	}
	checkBounds(t, m, [3]float64{0, 0, 0}, [3]float64{100, 50, 19})
	t.Logf("cube: %d vertices, %d triangles", m.VertexCount(), m.TriangleCount())
}

func TestUnnamedRootUsesShortID(t *testing.T) {
	b := graph.NewBuilder()
	c := b.Cube(geom.Vec3{X: 1, Y: 1, Z: 1}, false)
	b.Root(c)

	m := tessellateOne(t, b.Build(), newKernel())
	if m.PartName != c.Short() {
		t.Errorf("part name = %q, want %q", m.PartName, c.Short())
	}
}

func TestNestedTransforms(t *testing.T) {
	b := graph.NewBuilder()
	c := b.Cube(geom.Vec3{X: 2, Y: 1, Z: 1}, false)
	b.Root(b.Translate(geom.Vec3{X: 5}, b.Rotate(geom.Vec3{Z: 90}, c)))

	m := tessellateOne(t, b.Build(), newKernel())
	checkBounds(t, m, [3]float64{4, 0, 0}, [3]float64{5, 2, 1})
}

func TestTransformWithSeveralChildren(t *testing.T) {
	b := graph.NewBuilder()
	left := b.Cube(geom.Vec3{X: 1, Y: 1, Z: 1}, false)
	right := b.Translate(geom.Vec3{X: 3}, b.Cube(geom.Vec3{X: 1, Y: 1, Z: 1}, false))
	b.Root(b.Translate(geom.Vec3{Z: 10}, left, right))

	m := tessellateOne(t, b.Build(), newKernel())
	checkBounds(t, m, [3]float64{0, 0, 10}, [3]float64{4, 1, 11})
	if v := volume(m); math.Abs(v-2) > 1e-3 {
		t.Errorf("volume = %g, want 2", v)
	}
}

func TestDifferenceFold(t *testing.T) {
	b := graph.NewBuilder()
	block := b.Cube(geom.Vec3{X: 3, Y: 3, Z: 3}, false)
	hole := b.Translate(geom.Vec3{X: 1, Y: 1, Z: -1}, b.Cube(geom.Vec3{X: 1, Y: 1, Z: 5}, false))
	slab := b.Translate(geom.Vec3{X: -1, Y: -1, Z: 2.5}, b.Cube(geom.Vec3{X: 5, Y: 5, Z: 1}, false))
	b.Root(b.Difference(block, hole, slab))

	m := tessellateOne(t, b.Build(), newKernel())
	checkBounds(t, m, [3]float64{0, 0, 0}, [3]float64{3, 3, 2.5})
	// 27 - 3 for the hole, minus the top half-unit slab of what remains.
	if v := volume(m); math.Abs(v-20) > 1e-3 {
		t.Errorf("volume = %g, want 20", v)
	}
}

func TestSharedSubgraphEvaluatedOnce(t *testing.T) {
	k := &countingKernel{Kernel: newKernel()}

	b := graph.NewBuilder()
	c := b.Cube(geom.Vec3{X: 1, Y: 1, Z: 1}, true)
	left := b.Translate(geom.Vec3{X: -2}, c)
	right := b.Translate(geom.Vec3{X: 2}, c)
	b.Root(b.Name(b.Group(left, right), "group"), b.Name(b.Union(left, right), "union"))

	meshes, err := tessellate.Tessellate(context.Background(), b.Build(), k, tessellate.DefaultOptions())
	if err != nil {
		t.Fatalf("Tessellate: %v", err)
	}
	if len(meshes) != 2 {
		t.Fatalf("got %d meshes, want 2", len(meshes))
	}
	if n := k.cubes.Load(); n != 2 {
		t.Errorf("cube calls = %d, want 2 (one per distinct transform)", n)
	}
	if meshes[0].PartName != "group" || meshes[1].PartName != "union" {
		t.Errorf("part names = %q, %q, want root order", meshes[0].PartName, meshes[1].PartName)
	}
	for _, m := range meshes {
		checkBounds(t, m, [3]float64{-2.5, -0.5, -0.5}, [3]float64{2.5, 0.5, 0.5})
	}
}

func TestFragmentsResolvedFromConfig(t *testing.T) {
	tests := []struct {
		name string
		fn   int
		frag int
		want int32
	}{
		{"node count wins", 0, 12, 12},
		{"fa and fs", 0, 0, 30}, // r=10: min(360/12, 2π·10/2)
		{"fn override", 7, 0, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := &countingKernel{Kernel: newKernel()}
			b := graph.NewBuilder()
			b.Root(b.Sphere(10, tt.frag))

			opts := tessellate.DefaultOptions()
			opts.Config.Segments.Fn = tt.fn
			if _, err := tessellate.Tessellate(context.Background(), b.Build(), k, opts); err != nil {
				t.Fatalf("Tessellate: %v", err)
			}
			if got := k.fragments.Load(); got != tt.want {
				t.Errorf("fragments = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestKernelErrorNamesNode(t *testing.T) {
	boom := geom.Geometryf("boom")
	k := &countingKernel{Kernel: newKernel(), failSphere: boom}

	b := graph.NewBuilder()
	s := b.Sphere(1, 8)
	b.Root(b.Union(b.Cube(geom.Vec3{X: 1, Y: 1, Z: 1}, false), s))

	_, err := tessellate.Tessellate(context.Background(), b.Build(), k, tessellate.DefaultOptions())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, geom.ErrInvalidGeometry) {
		t.Errorf("error %v should wrap ErrInvalidGeometry", err)
	}
	if !strings.Contains(err.Error(), s.Short()) {
		t.Errorf("error %q should name sphere node %s", err, s.Short())
	}
	if !strings.HasPrefix(err.Error(), "tessellate: ") {
		t.Errorf("error %q should carry the package prefix", err)
	}
}

func TestInvalidGraphRejected(t *testing.T) {
	k := &countingKernel{Kernel: newKernel()}

	g := graph.New()
	a := graph.NewNodeID("a")
	c := graph.NewNodeID("c")
	g.AddNode(&graph.Node{ID: a, Kind: graph.NodeUnion, Children: []graph.NodeID{c}})
	g.AddNode(&graph.Node{ID: c, Kind: graph.NodeUnion, Children: []graph.NodeID{a}})
	g.AddRoot(a)

	_, err := tessellate.Tessellate(context.Background(), g, k, tessellate.DefaultOptions())
	if err == nil || !strings.Contains(err.Error(), "cycle") {
		t.Fatalf("error = %v, want a cycle error", err)
	}
	var ve graph.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("error %v should wrap a graph.ValidationError", err)
	}
	if k.cubes.Load()+k.spheres.Load() != 0 {
		t.Error("kernel should not be called for an invalid graph")
	}
}

func TestInvalidOptions(t *testing.T) {
	b := graph.NewBuilder()
	b.Root(b.Cube(geom.Vec3{X: 1, Y: 1, Z: 1}, false))

	opts := tessellate.DefaultOptions()
	opts.Config.Epsilon = -1
	if _, err := tessellate.Tessellate(context.Background(), b.Build(), newKernel(), opts); err == nil {
		t.Error("expected error for a negative epsilon")
	}
}

func TestCancelledContext(t *testing.T) {
	b := graph.NewBuilder()
	b.Root(b.Cube(geom.Vec3{X: 1, Y: 1, Z: 1}, false))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := tessellate.Tessellate(ctx, b.Build(), newKernel(), tessellate.DefaultOptions())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestNilAndEmptyGraph(t *testing.T) {
	meshes, err := tessellate.Tessellate(context.Background(), nil, newKernel(), tessellate.DefaultOptions())
	if err != nil || meshes != nil {
		t.Errorf("nil graph: got %v, %v; want nil, nil", meshes, err)
	}
	meshes, err = tessellate.Tessellate(context.Background(), graph.New(), newKernel(), tessellate.Options{})
	if err != nil || len(meshes) != 0 {
		t.Errorf("empty graph: got %d meshes, %v; want none", len(meshes), err)
	}
}

func TestEmptyOperators(t *testing.T) {
	b := graph.NewBuilder()
	b.Root(b.Union(), b.Empty())

	meshes, err := tessellate.Tessellate(context.Background(), b.Build(), newKernel(), tessellate.DefaultOptions())
	if err != nil {
		t.Fatalf("Tessellate: %v", err)
	}
	for i, m := range meshes {
		if !m.IsEmpty() {
			t.Errorf("mesh %d has %d vertices, want none", i, m.VertexCount())
		}
	}
}

func TestColor(t *testing.T) {
	b := graph.NewBuilder()
	b.Root(b.Color([4]float64{1, 0.5, 0, 1}, b.Cube(geom.Vec3{X: 1, Y: 1, Z: 1}, false)))

	m := tessellateOne(t, b.Build(), newKernel())
	if len(m.Colors) != 4*m.VertexCount() {
		t.Fatalf("colors = %d floats, want %d", len(m.Colors), 4*m.VertexCount())
	}
	if m.Colors[0] != 1 || m.Colors[1] != 0.5 || m.Colors[2] != 0 || m.Colors[3] != 1 {
		t.Errorf("first color = %v, want [1 0.5 0 1]", m.Colors[:4])
	}
}

func TestHullOfTransformedChildren(t *testing.T) {
	b := graph.NewBuilder()
	s := b.Sphere(1, 8)
	b.Root(b.Hull(b.Translate(geom.Vec3{X: -3}, s), b.Translate(geom.Vec3{X: 3}, s)))

	m := tessellateOne(t, b.Build(), newKernel())
	lo, hi := bounds(m)
	if lo[0] > -3.5 || hi[0] < 3.5 {
		t.Errorf("hull x range = [%g, %g], want to span both spheres", lo[0], hi[0])
	}
}

func TestMinkowskiAppliesTransformOnce(t *testing.T) {
	b := graph.NewBuilder()
	c := b.Cube(geom.Vec3{X: 2, Y: 2, Z: 2}, true)
	b.Root(b.Translate(geom.Vec3{X: 10}, b.Minkowski(c, c)))

	m := tessellateOne(t, b.Build(), newKernel())
	checkBounds(t, m, [3]float64{8, -2, -2}, [3]float64{12, 2, 2})
}

func TestExtrusions(t *testing.T) {
	t.Run("linear", func(t *testing.T) {
		b := graph.NewBuilder()
		sq := b.Square(geom.Vec2{X: 2, Y: 2}, false)
		b.Root(b.Translate(geom.Vec3{Z: 5}, b.LinearExtrude(graph.LinearExtrudeData{Height: 3}, sq)))

		m := tessellateOne(t, b.Build(), newKernel())
		checkBounds(t, m, [3]float64{0, 0, 5}, [3]float64{2, 2, 8})
		if v := volume(m); math.Abs(v-12) > 1e-3 {
			t.Errorf("volume = %g, want 12", v)
		}
	})

	t.Run("rotate", func(t *testing.T) {
		b := graph.NewBuilder()
		profile := b.Translate(geom.Vec3{X: 2}, b.Square(geom.Vec2{X: 1, Y: 1}, false))
		b.Root(b.RotateExtrude(graph.RotateExtrudeData{}, profile))

		m := tessellateOne(t, b.Build(), newKernel())
		lo, hi := bounds(m)
		if math.Abs(hi[0]-3) > 1e-4 || math.Abs(lo[0]+3) > 1e-4 {
			t.Errorf("x range = [%g, %g], want [-3, 3]", lo[0], hi[0])
		}
		if math.Abs(lo[2]) > 1e-4 || math.Abs(hi[2]-1) > 1e-4 {
			t.Errorf("z range = [%g, %g], want [0, 1]", lo[2], hi[2])
		}
	})
}

func TestOffset(t *testing.T) {
	b := graph.NewBuilder()
	left := b.Square(geom.Vec2{X: 2, Y: 2}, false)
	right := b.Translate(geom.Vec3{X: 3}, b.Square(geom.Vec2{X: 2, Y: 2}, false))
	// Growing each square by 1 closes the gap between them.
	grown := b.Offset(graph.OffsetData{Delta: 1, Join: geom.JoinMiter}, left, right)
	b.Root(b.Translate(geom.Vec3{Z: 2}, b.LinearExtrude(graph.LinearExtrudeData{Height: 1}, grown)))

	m := tessellateOne(t, b.Build(), newKernel())
	checkBounds(t, m, [3]float64{-1, -1, 2}, [3]float64{6, 3, 3})
	if v := volume(m); math.Abs(v-28) > 1e-3 {
		t.Errorf("volume = %g, want 28", v)
	}
}

func TestResize(t *testing.T) {
	tests := []struct {
		name string
		size geom.Vec3
		auto [3]bool
		want [3]float64
	}{
		{"explicit axes", geom.Vec3{X: 10, Z: 3}, [3]bool{}, [3]float64{10, 4, 3}},
		{"auto axes", geom.Vec3{X: 10}, [3]bool{false, true, true}, [3]float64{10, 20, 5}},
		{"no target", geom.Vec3{}, [3]bool{true, true, true}, [3]float64{2, 4, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := graph.NewBuilder()
			c := b.Cube(geom.Vec3{X: 2, Y: 4, Z: 1}, false)
			b.Root(b.Translate(geom.Vec3{X: 1}, b.Resize(tt.size, tt.auto, c)))

			m := tessellateOne(t, b.Build(), newKernel())
			checkBounds(t, m, [3]float64{1, 0, 0}, [3]float64{1 + tt.want[0], tt.want[1], tt.want[2]})
		})
	}
}

func TestEvaluate(t *testing.T) {
	b := graph.NewBuilder()
	c := b.Cube(geom.Vec3{X: 1, Y: 2, Z: 3}, false)
	u := b.Union(c, b.Translate(geom.Vec3{X: 5}, c))
	b.Root(u)
	g := b.Build()

	s, err := tessellate.Evaluate(context.Background(), g, newKernel(), c, tessellate.DefaultOptions())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	lo, hi := s.BoundingBox()
	if lo != [3]float64{0, 0, 0} || hi != [3]float64{1, 2, 3} {
		t.Errorf("bounds = %v..%v, want [0 0 0]..[1 2 3]", lo, hi)
	}

	if _, err := tessellate.Evaluate(context.Background(), g, newKernel(), graph.NewNodeID("missing"), tessellate.DefaultOptions()); err == nil {
		t.Error("expected error for a missing node")
	}
}

func TestSingleWorker(t *testing.T) {
	b := graph.NewBuilder()
	var parts []graph.NodeID
	for i := range 4 {
		parts = append(parts, b.Translate(geom.Vec3{X: float64(3 * i)}, b.Cube(geom.Vec3{X: 1, Y: 1, Z: 1}, false)))
	}
	b.Root(b.Union(parts...))

	opts := tessellate.DefaultOptions()
	opts.Workers = 1
	meshes, err := tessellate.Tessellate(context.Background(), b.Build(), newKernel(), opts)
	if err != nil {
		t.Fatalf("Tessellate: %v", err)
	}
	checkBounds(t, meshes[0], [3]float64{0, 0, 0}, [3]float64{10, 1, 1})
	if v := volume(meshes[0]); math.Abs(v-4) > 1e-3 {
		t.Errorf("volume = %g, want 4", v)
	}
}

func TestSdfxBackend(t *testing.T) {
	b := graph.NewBuilder()
	box := b.Cube(geom.Vec3{X: 20, Y: 10, Z: 10}, false)
	b.Root(b.Name(b.Translate(geom.Vec3{X: 50}, box), "block"))

	meshes, err := tessellate.Tessellate(context.Background(), b.Build(), sdfx.New(), tessellate.DefaultOptions())
	if err != nil {
		t.Fatalf("Tessellate: %v", err)
	}
	m := meshes[0]
	if m.PartName != "block" {
		t.Errorf("part name = %q, want %q", m.PartName, "block")
	}
	if m.TriangleCount() == 0 {
		t.Fatal("sdfx mesh has no triangles")
	}
	lo, hi := bounds(m)
	if math.Abs(lo[0]-50) > 1 || math.Abs(hi[0]-70) > 1 {
		t.Errorf("x range = [%g, %g], want about [50, 70]", lo[0], hi[0])
	}
}

func TestSdfxUnsupportedNode(t *testing.T) {
	b := graph.NewBuilder()
	b.Root(b.Hull(b.Cube(geom.Vec3{X: 1, Y: 1, Z: 1}, false)))

	_, err := tessellate.Tessellate(context.Background(), b.Build(), sdfx.New(), tessellate.DefaultOptions())
	if !errors.Is(err, kernel.ErrUnsupported) {
		t.Errorf("error = %v, want kernel.ErrUnsupported", err)
	}
}
