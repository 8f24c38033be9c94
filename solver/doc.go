// Package solver fits screen-to-image transform parameters to a set of
// control points via a staged Nelder-Mead downhill optimizer: freedoms
// are enabled in stages (affine -> k1 -> tilt -> mesh) so later
// non-linear freedoms refine a good linear solution (§4.F).
package solver
