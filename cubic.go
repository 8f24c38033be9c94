package colorscreen

import "math"

// CubicInterpolate evaluates the Catmull-Rom spline through four equally
// spaced samples p0..p3 (at positions -1,0,1,2) at fractional offset x in
// [0,1] from p1. This is the only 1D sampling kernel renderers use (§4.A);
// bicubic image sampling applies it along each axis in turn.
func CubicInterpolate(p0, p1, p2, p3, x float64) float64 {
	a0 := -0.5*p0 + 1.5*p1 - 1.5*p2 + 0.5*p3
	a1 := p0 - 2.5*p1 + 2*p2 - 0.5*p3
	a2 := -0.5*p0 + 0.5*p2
	a3 := p1
	return ((a0*x+a1)*x+a2)*x + a3
}

// CubicInterpolate4 is the four-lane variant of CubicInterpolate, evaluating
// the spline independently for each of four channels (e.g. the Rgb
// components plus a weight) in one pass.
func CubicInterpolate4(p0, p1, p2, p3 [4]float64, x float64) [4]float64 {
	var out [4]float64
	for i := 0; i < 4; i++ {
		out[i] = CubicInterpolate(p0[i], p1[i], p2[i], p3[i], x)
	}
	return out
}

// cubicWeight is the Catmull-Rom kernel weight at distance t, used by
// BicubicSample2D below.
func cubicWeight(t float64) float64 {
	absT := math.Abs(t)
	switch {
	case absT < 1:
		return 1.5*absT*absT*absT - 2.5*absT*absT + 1.0
	case absT < 2:
		return -0.5*absT*absT*absT + 2.5*absT*absT - 4.0*absT + 2.0
	default:
		return 0
	}
}

// BicubicSample2D interpolates a 4x4 neighborhood of samples at fractional
// offsets (tx,ty) within the center cell, using separable Catmull-Rom
// weights. vals is indexed [row][col] with row/col 0..3 corresponding to
// offsets -1..2 from the sample origin.
func BicubicSample2D(vals [4][4]float64, tx, ty float64) float64 {
	wx := [4]float64{cubicWeight(tx + 1), cubicWeight(tx), cubicWeight(tx - 1), cubicWeight(tx - 2)}
	wy := [4]float64{cubicWeight(ty + 1), cubicWeight(ty), cubicWeight(ty - 1), cubicWeight(ty - 2)}

	var result float64
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			result += vals[row][col] * wx[col] * wy[row]
		}
	}
	return result
}
