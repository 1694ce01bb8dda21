// Package tessellate walks a geometry graph and produces triangle meshes
// using a geometry kernel. One mesh is produced per root.
package tessellate

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/holistic-stack/c4d-sub001/pkg/geom"
	"github.com/holistic-stack/c4d-sub001/pkg/graph"
	"github.com/holistic-stack/c4d-sub001/pkg/kernel"
)

// Options controls a tessellation run.
type Options struct {
	// Workers bounds the number of kernel calls in flight. 0 means one per
	// CPU.
	Workers int
	// Config supplies the segment settings for curved primitives whose
	// node leaves the fragment count at 0. The zero value means
	// geom.DefaultConfig().
	Config geom.Config
	// Logger receives progress lines when Verbose is set. nil means
	// log.Default().
	Logger  *log.Logger
	Verbose bool
}

// DefaultOptions returns options with the default config and one worker
// per CPU.
func DefaultOptions() Options {
	return Options{Config: geom.DefaultConfig()}
}

func (o Options) withDefaults() (Options, error) {
	o.Workers = geom.Workers(o.Workers)
	if o.Config == (geom.Config{}) {
		o.Config = geom.DefaultConfig()
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	if err := o.Config.Validate(); err != nil {
		return o, fmt.Errorf("tessellate: %w", err)
	}
	return o, nil
}

// Tessellate evaluates every root of g with k and returns one mesh per
// root, in root order. The tessellator is read-only and never mutates the
// graph. The first failure cancels the remaining work and is returned.
func Tessellate(ctx context.Context, g *graph.Graph, k kernel.Kernel, opts Options) ([]*kernel.Mesh, error) {
	if g == nil {
		return nil, nil
	}
	e, err := newEvaluator(g, k, opts)
	if err != nil {
		return nil, err
	}
	e.logf("tessellate: %d roots, %d nodes, %d workers", len(g.Roots), g.NodeCount(), e.opts.Workers)

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	meshes := make([]*kernel.Mesh, len(g.Roots))
	var (
		wg    sync.WaitGroup
		once  sync.Once
		first error
	)
	for i, rootID := range g.Roots {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mesh, err := e.mesh(ctx, rootID)
			if err != nil {
				once.Do(func() {
					first = fmt.Errorf("tessellate: error walking root %s: %w", rootID.Short(), err)
					cancel(first)
				})
				return
			}
			meshes[i] = mesh
		}()
	}
	wg.Wait()

	if first != nil {
		return nil, first
	}
	return meshes, nil
}

// Evaluate evaluates a single node of g and returns the kernel solid,
// without flattening it into a mesh.
func Evaluate(ctx context.Context, g *graph.Graph, k kernel.Kernel, id graph.NodeID, opts Options) (kernel.Solid, error) {
	if g == nil {
		return nil, fmt.Errorf("tessellate: nil graph")
	}
	e, err := newEvaluator(g, k, opts)
	if err != nil {
		return nil, err
	}
	s, err := e.eval(ctx, id, geom.Identity())
	if err != nil {
		return nil, fmt.Errorf("tessellate: %w", err)
	}
	return s, nil
}

// memoKey identifies one evaluation: a node under an accumulated transform.
type memoKey struct {
	id graph.NodeID
	m  geom.Affine
}

// result is a memo slot. done is closed once solid and err are set.
type result struct {
	done  chan struct{}
	solid kernel.Solid
	err   error
}

// evaluator carries the state of one run. Goroutines hold a slot of sem
// only while calling into the kernel, never while waiting on children, so
// the bounded pool cannot deadlock on a deep graph.
type evaluator struct {
	g    *graph.Graph
	k    kernel.Kernel
	opts Options
	sem  chan struct{}

	mu   sync.Mutex
	memo map[memoKey]*result
}

func newEvaluator(g *graph.Graph, k kernel.Kernel, opts Options) (*evaluator, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	vr := graph.ValidateAll(g)
	if err := vr.Err(); err != nil {
		return nil, fmt.Errorf("tessellate: invalid graph: %w", err)
	}
	e := &evaluator{
		g:    g,
		k:    k,
		opts: opts,
		sem:  make(chan struct{}, opts.Workers),
		memo: make(map[memoKey]*result),
	}
	for _, w := range vr.Warnings {
		e.logf("tessellate: warning: %s", w.Message)
	}
	return e, nil
}

func (e *evaluator) logf(format string, args ...any) {
	if e.opts.Verbose {
		e.opts.Logger.Printf(format, args...)
	}
}

// mesh evaluates a root and flattens it, naming the mesh after the node.
func (e *evaluator) mesh(ctx context.Context, rootID graph.NodeID) (*kernel.Mesh, error) {
	s, err := e.eval(ctx, rootID, geom.Identity())
	if err != nil {
		return nil, err
	}
	if err := e.acquire(ctx); err != nil {
		return nil, err
	}
	mesh, err := e.k.ToMesh(s)
	e.release()
	if err != nil {
		return nil, fmt.Errorf("ToMesh failed for node %s: %w", rootID.Short(), err)
	}

	// Set the part name: prefer the node's Name, fall back to short ID.
	if n := e.g.Get(rootID); n != nil && n.Name != "" {
		mesh.PartName = n.Name
	} else {
		mesh.PartName = rootID.Short()
	}
	e.logf("tessellate: root %s: %d vertices, %d triangles", mesh.PartName, mesh.VertexCount(), mesh.TriangleCount())
	return mesh, nil
}

func (e *evaluator) acquire(ctx context.Context) error {
	select {
	case e.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}

func (e *evaluator) release() { <-e.sem }

// run performs kernel work for node n on a pool slot and tags failures
// with the node.
func (e *evaluator) run(ctx context.Context, n *graph.Node, work func() (kernel.Solid, error)) (kernel.Solid, error) {
	if err := e.acquire(ctx); err != nil {
		return nil, err
	}
	defer e.release()
	if ctx.Err() != nil {
		return nil, context.Cause(ctx)
	}
	s, err := work()
	if err != nil {
		return nil, fmt.Errorf("%s node %s: %w", n.Kind, n.ID.Short(), err)
	}
	return s, nil
}

// eval returns the solid for id under the accumulated transform m,
// evaluating it at most once per run.
func (e *evaluator) eval(ctx context.Context, id graph.NodeID, m geom.Affine) (kernel.Solid, error) {
	key := memoKey{id: id, m: m}

	e.mu.Lock()
	if r, ok := e.memo[key]; ok {
		e.mu.Unlock()
		select {
		case <-r.done:
			return r.solid, r.err
		case <-ctx.Done():
			return nil, context.Cause(ctx)
		}
	}
	r := &result{done: make(chan struct{})}
	e.memo[key] = r
	e.mu.Unlock()

	r.solid, r.err = e.walkNode(ctx, id, m)
	close(r.done)
	return r.solid, r.err
}

// walkNode dispatches on the node kind. Transforms are pushed down to the
// leaves; operators whose result does not commute with an affine map
// (Minkowski, extrusions, resize) evaluate their children untransformed
// and apply m to their own result.
func (e *evaluator) walkNode(ctx context.Context, id graph.NodeID, m geom.Affine) (kernel.Solid, error) {
	n := e.g.Get(id)
	if n == nil {
		return nil, fmt.Errorf("node %s does not exist", id.Short())
	}

	if n.Kind.IsPrimitive() {
		return e.run(ctx, n, func() (kernel.Solid, error) {
			s, err := e.primitive(n)
			if err != nil {
				return nil, err
			}
			return e.place(s, m)
		})
	}

	switch n.Kind {
	case graph.NodeEmpty:
		return e.k.Empty(), nil

	case graph.NodeTransform:
		td, ok := n.Data.(graph.TransformData)
		if !ok {
			return nil, fmt.Errorf("transform node %s has unexpected data type %T", n.ID.Short(), n.Data)
		}
		return e.fold(ctx, n, m.Mul(td.Matrix), e.k.Union)

	case graph.NodeColor:
		cd, ok := n.Data.(graph.ColorData)
		if !ok {
			return nil, fmt.Errorf("color node %s has unexpected data type %T", n.ID.Short(), n.Data)
		}
		s, err := e.fold(ctx, n, m, e.k.Union)
		if err != nil {
			return nil, err
		}
		return e.run(ctx, n, func() (kernel.Solid, error) {
			return e.k.Color(s, cd.RGBA)
		})

	case graph.NodeUnion, graph.NodeGroup:
		return e.fold(ctx, n, m, e.k.Union)

	case graph.NodeDifference:
		return e.fold(ctx, n, m, e.k.Difference)

	case graph.NodeIntersection:
		return e.fold(ctx, n, m, e.k.Intersection)

	case graph.NodeHull:
		solids, err := e.children(ctx, n, m)
		if err != nil {
			return nil, err
		}
		return e.run(ctx, n, func() (kernel.Solid, error) {
			return e.k.Hull(solids...)
		})

	case graph.NodeMinkowski:
		return e.local(ctx, n, m, e.k.Minkowski, func(s kernel.Solid) (kernel.Solid, error) {
			return s, nil
		})

	case graph.NodeLinearExtrude:
		d, ok := n.Data.(graph.LinearExtrudeData)
		if !ok {
			return nil, fmt.Errorf("linear_extrude node %s has unexpected data type %T", n.ID.Short(), n.Data)
		}
		return e.local(ctx, n, m, e.k.Union, func(s kernel.Solid) (kernel.Solid, error) {
			return e.k.LinearExtrude(s, kernel.LinearExtrude(d))
		})

	case graph.NodeRotateExtrude:
		d, ok := n.Data.(graph.RotateExtrudeData)
		if !ok {
			return nil, fmt.Errorf("rotate_extrude node %s has unexpected data type %T", n.ID.Short(), n.Data)
		}
		return e.local(ctx, n, m, e.k.Union, func(s kernel.Solid) (kernel.Solid, error) {
			p := kernel.RotateExtrude(d)
			if p.Fragments == 0 {
				_, hi := s.BoundingBox()
				p.Fragments = e.opts.Config.Segments.Fragments(hi[0])
			}
			return e.k.RotateExtrude(s, p)
		})

	case graph.NodeOffset:
		d, ok := n.Data.(graph.OffsetData)
		if !ok {
			return nil, fmt.Errorf("offset node %s has unexpected data type %T", n.ID.Short(), n.Data)
		}
		return e.local(ctx, n, m, e.k.Union, func(s kernel.Solid) (kernel.Solid, error) {
			p := kernel.Offset(d)
			if p.Fragments == 0 {
				p.Fragments = e.opts.Config.Segments.Fragments(math.Abs(d.Delta))
			}
			return e.k.Offset(s, p)
		})

	case graph.NodeResize:
		d, ok := n.Data.(graph.ResizeData)
		if !ok {
			return nil, fmt.Errorf("resize node %s has unexpected data type %T", n.ID.Short(), n.Data)
		}
		return e.local(ctx, n, m, e.k.Union, func(s kernel.Solid) (kernel.Solid, error) {
			lo, hi := s.BoundingBox()
			scale := resizeScale(lo, hi, d)
			if scale == (geom.Vec3{X: 1, Y: 1, Z: 1}) {
				return s, nil
			}
			return e.k.Transform(s, geom.Scaling(scale))
		})

	default:
		return nil, fmt.Errorf("unknown node kind: %v", n.Kind)
	}
}

// primitive builds a leaf, resolving unset fragment counts from the
// segment settings.
func (e *evaluator) primitive(n *graph.Node) (kernel.Solid, error) {
	seg := e.opts.Config.Segments
	frags := func(f int, r float64) int {
		if f > 0 {
			return f
		}
		return seg.Fragments(r)
	}

	switch d := n.Data.(type) {
	case graph.CubeData:
		return e.k.Cube(d.Size, d.Center)
	case graph.SphereData:
		return e.k.Sphere(d.Radius, frags(d.Fragments, d.Radius))
	case graph.CylinderData:
		return e.k.Cylinder(d.Height, d.R1, d.R2, d.Center, frags(d.Fragments, max(d.R1, d.R2)))
	case graph.PolyhedronData:
		return e.k.Polyhedron(d.Points, d.Faces)
	case graph.SquareData:
		return e.k.Square(d.Size, d.Center)
	case graph.CircleData:
		return e.k.Circle(d.Radius, frags(d.Fragments, d.Radius))
	case graph.PolygonData:
		return e.k.Polygon(d.Points, d.Paths)
	default:
		return nil, fmt.Errorf("primitive node %s has unsupported data type %T", n.ID.Short(), n.Data)
	}
}

// place applies the accumulated transform, skipping the identity.
func (e *evaluator) place(s kernel.Solid, m geom.Affine) (kernel.Solid, error) {
	if m.IsIdentity() {
		return s, nil
	}
	return e.k.Transform(s, m)
}

// children evaluates the children of n concurrently under m. The first
// failure cancels the siblings.
func (e *evaluator) children(ctx context.Context, n *graph.Node, m geom.Affine) ([]kernel.Solid, error) {
	if len(n.Children) == 1 {
		s, err := e.eval(ctx, n.Children[0], m)
		if err != nil {
			return nil, err
		}
		return []kernel.Solid{s}, nil
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	solids := make([]kernel.Solid, len(n.Children))
	var (
		wg    sync.WaitGroup
		once  sync.Once
		first error
	)
	for i, childID := range n.Children {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := e.eval(ctx, childID, m)
			if err != nil {
				once.Do(func() {
					first = err
					cancel(err)
				})
				return
			}
			solids[i] = s
		}()
	}
	wg.Wait()

	if first != nil {
		return nil, first
	}
	return solids, nil
}

// fold evaluates the children under m and combines them left to right.
// No children yields the empty solid.
func (e *evaluator) fold(ctx context.Context, n *graph.Node, m geom.Affine, op func(a, b kernel.Solid) (kernel.Solid, error)) (kernel.Solid, error) {
	solids, err := e.children(ctx, n, m)
	if err != nil {
		return nil, err
	}
	switch len(solids) {
	case 0:
		return e.k.Empty(), nil
	case 1:
		return solids[0], nil
	}
	return e.run(ctx, n, func() (kernel.Solid, error) {
		acc := solids[0]
		for _, s := range solids[1:] {
			if acc, err = op(acc, s); err != nil {
				return nil, err
			}
		}
		return acc, nil
	})
}

// local folds the children in their own frame, applies finish, then
// places the result under m.
func (e *evaluator) local(ctx context.Context, n *graph.Node, m geom.Affine,
	op func(a, b kernel.Solid) (kernel.Solid, error),
	finish func(kernel.Solid) (kernel.Solid, error)) (kernel.Solid, error) {
	s, err := e.fold(ctx, n, geom.Identity(), op)
	if err != nil {
		return nil, err
	}
	return e.run(ctx, n, func() (kernel.Solid, error) {
		out, err := finish(s)
		if err != nil {
			return nil, err
		}
		return e.place(out, m)
	})
}

// resizeScale returns the per-axis factors that bring the box lo..hi to
// d.Size. Axes with a zero target keep their size, or take the mean of
// the explicit factors when marked auto. Flat axes are never scaled.
func resizeScale(lo, hi [3]float64, d graph.ResizeData) geom.Vec3 {
	target := [3]float64{d.Size.X, d.Size.Y, d.Size.Z}
	scale := [3]float64{1, 1, 1}

	var sum float64
	var explicit int
	for i := range 3 {
		extent := hi[i] - lo[i]
		if target[i] > 0 && extent > 1e-9 {
			scale[i] = target[i] / extent
			sum += scale[i]
			explicit++
		}
	}
	if explicit > 0 {
		mean := sum / float64(explicit)
		for i := range 3 {
			if d.Auto[i] && target[i] == 0 && hi[i]-lo[i] > 1e-9 {
				scale[i] = mean
			}
		}
	}
	return geom.Vec3{X: scale[0], Y: scale[1], Z: scale[2]}
}
