package l2smoothing

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// fitGap fits a polynomial of at most the given order on up to context valid
// samples either side of g and evaluates it over the gap. The order is reduced
// when there are too few samples. It returns false when no usable fit exists.
func fitGap(v []float64, g gap, order, context int) bool {
	var xs, ys []float64
	for i, found := g.start-1, 0; i >= 0 && found < context; i-- {
		if !math.IsNaN(v[i]) {
			xs = append(xs, float64(i))
			ys = append(ys, v[i])
			found++
		}
	}
	for i, found := g.end+1, 0; i < len(v) && found < context; i++ {
		if !math.IsNaN(v[i]) {
			xs = append(xs, float64(i))
			ys = append(ys, v[i])
			found++
		}
	}
	m := len(xs)
	if m < 2 {
		return false
	}
	if order > m-1 {
		order = m - 1
	}

	// Centre and scale the abscissa to keep the Vandermonde matrix well
	// conditioned.
	mid := float64(g.start+g.end) / 2
	half := 1.0
	for _, x := range xs {
		if d := math.Abs(x - mid); d > half {
			half = d
		}
	}

	a := mat.NewDense(m, order+1, nil)
	b := mat.NewVecDense(m, ys)
	for r, x := range xs {
		t := (x - mid) / half
		p := 1.0
		for k := 0; k <= order; k++ {
			a.Set(r, k, p)
			p *= t
		}
	}
	var coef mat.VecDense
	if err := coef.SolveVec(a, b); err != nil {
		return false
	}

	filled := make([]float64, g.length())
	for i := range filled {
		t := (float64(g.start+i) - mid) / half
		y := 0.0
		for k := order; k >= 0; k-- {
			y = y*t + coef.AtVec(k)
		}
		if math.IsNaN(y) || math.IsInf(y, 0) {
			return false
		}
		filled[i] = y
	}
	copy(v[g.start:g.end+1], filled)
	return true
}
