// Package primitive builds closed half-edge meshes for the OpenSCAD
// primitives (cube, sphere, cylinder, polyhedron), the flat primitives
// (square, circle, polygon) and the two extrusions that lift flat shapes
// into solids.
//
// Every builder validates its parameters first and reports a
// geom.ErrInvalidGeometry error instead of producing a degenerate mesh.
// All results pass through halfedge stitching and are closed.
package primitive
