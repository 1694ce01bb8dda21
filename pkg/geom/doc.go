// Package geom holds the numeric building blocks shared by every part of
// the kernel: 2D/3D vectors (gonum's spatial types), affine matrices,
// planes, bounding boxes, the tolerance configuration and the kernel's
// error taxonomy.
package geom
