// Package graph defines the geometry node graph consumed by the kernel.
// The graph is an immutable DAG of primitives, transforms, and operators
// (boolean, hull, Minkowski, extrusion, offset, resize) produced by an upstream
// evaluator. Nodes are content-addressed, so identical sub-trees share
// one node and are evaluated once.
package graph
