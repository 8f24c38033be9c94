package solver

import "sort"

const (
	nmAlpha       = 1.0 // reflection
	nmGamma       = 2.0 // expansion
	nmRho         = 0.5 // contraction
	nmSigma       = 0.5 // shrink
	nmMaxIters    = 2000
	nmTolerance   = 1e-10
	nmInitialStep = 0.1
)

// nelderMead minimizes f starting from x0, returning the best point found
// and whether the simplex's value spread is within nmTolerance*1e6 once
// it stops (at nmTolerance or after nmMaxIters iterations) (§4.F: "an
// iterative downhill (Nelder-Mead) optimizer seeded with the current
// parameters").
func nelderMead(f func([]float64) float64, x0 []float64) ([]float64, bool) {
	n := len(x0)
	if n == 0 {
		return x0, true
	}

	simplex := make([][]float64, n+1)
	simplex[0] = append([]float64(nil), x0...)
	for i := 0; i < n; i++ {
		p := append([]float64(nil), x0...)
		step := nmInitialStep
		if p[i] != 0 {
			step = nmInitialStep * absF(p[i])
		}
		p[i] += step
		simplex[i+1] = p
	}
	values := make([]float64, n+1)
	for i, p := range simplex {
		values[i] = f(p)
	}

	for iter := 0; iter < nmMaxIters; iter++ {
		order := sortedIndices(values)
		simplex, values = reorder(simplex, values, order)

		if absF(values[n]-values[0]) < nmTolerance {
			break
		}

		centroid := make([]float64, n)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				centroid[j] += simplex[i][j]
			}
		}
		for j := range centroid {
			centroid[j] /= float64(n)
		}

		worst := simplex[n]
		reflected := combine(centroid, worst, nmAlpha)
		fReflected := f(reflected)

		switch {
		case fReflected < values[0]:
			expanded := combine(centroid, worst, nmGamma)
			fExpanded := f(expanded)
			if fExpanded < fReflected {
				simplex[n], values[n] = expanded, fExpanded
			} else {
				simplex[n], values[n] = reflected, fReflected
			}
		case fReflected < values[n-1]:
			simplex[n], values[n] = reflected, fReflected
		default:
			contracted := combine(centroid, worst, nmRho)
			fContracted := f(contracted)
			if fContracted < values[n] {
				simplex[n], values[n] = contracted, fContracted
			} else {
				for i := 1; i <= n; i++ {
					for j := range simplex[i] {
						simplex[i][j] = simplex[0][j] + nmSigma*(simplex[i][j]-simplex[0][j])
					}
					values[i] = f(simplex[i])
				}
			}
		}
	}

	order := sortedIndices(values)
	simplex, values = reorder(simplex, values, order)
	converged := absF(values[n]-values[0]) < nmTolerance*1e6 // generous final check
	return simplex[0], converged
}

// combine returns centroid + factor*(centroid - worst), the standard
// Nelder-Mead reflection/expansion/contraction step.
func combine(centroid, worst []float64, factor float64) []float64 {
	out := make([]float64, len(centroid))
	for i := range out {
		out[i] = centroid[i] + factor*(centroid[i]-worst[i])
	}
	return out
}

func sortedIndices(values []float64) []int {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })
	return idx
}

func reorder(simplex [][]float64, values []float64, order []int) ([][]float64, []float64) {
	newSimplex := make([][]float64, len(simplex))
	newValues := make([]float64, len(values))
	for i, o := range order {
		newSimplex[i] = simplex[o]
		newValues[i] = values[o]
	}
	return newSimplex, newValues
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
