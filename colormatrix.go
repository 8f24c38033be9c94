package colorscreen

import "fmt"

// ColorMatrix is a 4x4 affine matrix acting on an Rgb triple, with the
// fourth column carrying a translation used for black-point offset (§3).
// Rows/cols 0..2 are R,G,B; row/col 3 is the homogeneous/offset term.
type ColorMatrix struct {
	m [4][4]float32
}

// IdentityColorMatrix returns the matrix that leaves colors unchanged.
func IdentityColorMatrix() ColorMatrix {
	var cm ColorMatrix
	for i := 0; i < 4; i++ {
		cm.m[i][i] = 1
	}
	return cm
}

// NewColorMatrix builds a matrix from a row-major 4x4 array.
func NewColorMatrix(rows [4][4]float32) ColorMatrix {
	return ColorMatrix{m: rows}
}

// Apply transforms an Rgb triple, implicitly extending it with a 1 in the
// fourth homogeneous slot so the fourth column acts as a black-point offset.
func (cm ColorMatrix) Apply(c Rgb) Rgb {
	m := &cm.m
	return Rgb{
		Red:   m[0][0]*c.Red + m[0][1]*c.Green + m[0][2]*c.Blue + m[0][3],
		Green: m[1][0]*c.Red + m[1][1]*c.Green + m[1][2]*c.Blue + m[1][3],
		Blue:  m[2][0]*c.Red + m[2][1]*c.Green + m[2][2]*c.Blue + m[2][3],
	}
}

// Compose returns the matrix that applies other first, then cm: cm.Compose(other).Apply(c) == cm.Apply(other.Apply(c)).
func (cm ColorMatrix) Compose(other ColorMatrix) ColorMatrix {
	var out ColorMatrix
	a, b := &cm.m, &other.m
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += a[r][k] * b[k][c]
			}
			out.m[r][c] = sum
		}
	}
	// Restore the homogeneous row so repeated composition stays affine.
	out.m[3] = [4]float32{0, 0, 0, 1}
	return out
}

// ErrSingularMatrix is returned by Invert when the matrix has no inverse.
var ErrSingularMatrix = fmt.Errorf("colorscreen: color matrix is singular")

// At returns the element at (row,col), for callers that need to
// serialize a matrix element-by-element (e.g. a CSP project writer).
func (cm ColorMatrix) At(row, col int) float32 {
	return cm.m[row][col]
}

// Invert computes the matrix inverse via Gauss-Jordan elimination with
// partial pivoting. The matrices this package constructs are well
// conditioned by construction (§4.A); ErrSingularMatrix signals a
// programmer error (e.g. a degenerate white balance of zero).
func (cm ColorMatrix) Invert() (ColorMatrix, error) {
	// Augmented matrix [cm | I], worked in float64 for numerical headroom.
	var a [4][8]float64
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			a[r][c] = float64(cm.m[r][c])
		}
		a[r][4+r] = 1
	}

	for col := 0; col < 4; col++ {
		pivot := col
		best := a[col][col]
		if best < 0 {
			best = -best
		}
		for r := col + 1; r < 4; r++ {
			v := a[r][col]
			if v < 0 {
				v = -v
			}
			if v > best {
				best = v
				pivot = r
			}
		}
		if best < 1e-12 {
			return ColorMatrix{}, ErrSingularMatrix
		}
		a[col], a[pivot] = a[pivot], a[col]

		inv := 1.0 / a[col][col]
		for c := 0; c < 8; c++ {
			a[col][c] *= inv
		}
		for r := 0; r < 4; r++ {
			if r == col {
				continue
			}
			factor := a[r][col]
			if factor == 0 {
				continue
			}
			for c := 0; c < 8; c++ {
				a[r][c] -= factor * a[col][c]
			}
		}
	}

	var out ColorMatrix
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out.m[r][c] = float32(a[r][4+c])
		}
	}
	return out, nil
}

// ScaleColorMatrix returns a diagonal matrix that multiplies R,G,B independently,
// leaving the offset column at zero. Used for white-balance and mix
// weights (§4.H).
func ScaleColorMatrix(r, g, b float32) ColorMatrix {
	var cm ColorMatrix
	cm.m[0][0] = r
	cm.m[1][1] = g
	cm.m[2][2] = b
	cm.m[3][3] = 1
	return cm
}

// TranslateColorMatrix returns a matrix that adds a fixed black-point
// offset to each channel.
func TranslateColorMatrix(r, g, b float32) ColorMatrix {
	cm := IdentityColorMatrix()
	cm.m[0][3] = r
	cm.m[1][3] = g
	cm.m[2][3] = b
	return cm
}
