package model

// bspline is a B-spline basis over uniformly spaced knots on [lo, hi],
// extended by degree knots beyond each boundary with the same spacing.
type bspline struct {
	degree int
	knots  []float64
	lo, hi float64
}

func newUniformBSpline(lo, hi float64, nKnots, degree int) bspline {
	step := (hi - lo) / float64(nKnots-1)
	knots := make([]float64, nKnots+2*degree)
	for i := range knots {
		knots[i] = lo + step*float64(i-degree)
	}
	knots[degree] = lo
	knots[degree+nKnots-1] = hi
	return bspline{degree: degree, knots: knots, lo: lo, hi: hi}
}

// size is the number of basis functions.
func (b bspline) size() int {
	return len(b.knots) - b.degree - 1
}

// eval writes every basis function at x into dst (len >= size()) using the
// Cox-de Boor recursion. x is clamped to [lo, hi].
func (b bspline) eval(x float64, dst []float64) []float64 {
	x = min(max(x, b.lo), b.hi)
	t := b.knots
	n := make([]float64, len(t)-1)
	for i := range n {
		if t[i] <= x && x < t[i+1] {
			n[i] = 1
		}
	}
	for p := 1; p <= b.degree; p++ {
		for i := 0; i < len(t)-1-p; i++ {
			left, right := 0., 0.
			if n[i] != 0 {
				left = (x - t[i]) / (t[i+p] - t[i]) * n[i]
			}
			if n[i+1] != 0 {
				right = (t[i+p+1] - x) / (t[i+p+1] - t[i+1]) * n[i+1]
			}
			n[i] = left + right
		}
	}
	return append(dst[:0], n[:b.size()]...)
}
