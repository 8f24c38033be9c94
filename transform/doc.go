// Package transform implements the screen-to-image coordinate map (§4.D):
// an affine lattice basis plus translation, a small tilt matrix, a
// radial-distortion term, and an optional deformation mesh, with fast
// forward and inverse evaluation.
package transform
