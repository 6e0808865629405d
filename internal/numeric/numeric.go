// Package numeric holds the small quadratures, series and finite
// differences the chapter checks evaluate numerically.
package numeric

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/stat"
)

// Simpson integrates f over [a, b] with composite Simpson's rule on n
// intervals (n is rounded up to even).
func Simpson(f func(float64) float64, a, b float64, n int) float64 {
	if n < 2 {
		n = 2
	}
	if n%2 == 1 {
		n++
	}
	xs := make([]float64, n+1)
	floats.Span(xs, a, b)
	ys := make([]float64, n+1)
	for i, x := range xs {
		ys[i] = f(x)
	}
	return integrate.Simpsons(xs, ys)
}

// Quad integrates f over [a, b] with n-point Gauss-Legendre quadrature.
func Quad(f func(float64) float64, a, b float64, n int) float64 {
	return quad.Fixed(f, a, b, n, nil, 0)
}

// PartialSum returns Σ_{k=from}^{to} term(k).
func PartialSum(term func(k int) float64, from, to int) float64 {
	total := 0.0
	for k := from; k <= to; k++ {
		total += term(k)
	}
	return total
}

// CentralDiff approximates f'(x) with step h.
func CentralDiff(f func(float64) float64, x, h float64) float64 {
	return (f(x+h) - f(x-h)) / (2 * h)
}

// KL returns the Kullback-Leibler divergence D(p‖q) in nats. Both inputs
// must be probability vectors of equal length.
func KL(p, q []float64) (float64, error) {
	if len(p) != len(q) {
		return 0, fmt.Errorf("kl: length mismatch %d vs %d", len(p), len(q))
	}
	for _, dist := range [][]float64{p, q} {
		if s := floats.Sum(dist); math.Abs(s-1) > 1e-9 {
			return 0, fmt.Errorf("kl: distribution sums to %g", s)
		}
	}
	return stat.KullbackLeibler(p, q), nil
}

// Normalize scales v so it sums to one.
func Normalize(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	s := floats.Sum(out)
	if s != 0 {
		floats.Scale(1/s, out)
	}
	return out
}

// WithinRel reports whether got is within rel of want, relative to want.
// Exact equality always passes, so want == 0 only accepts got == 0.
func WithinRel(got, want, rel float64) bool {
	if scalar.Same(got, want) {
		return true
	}
	return math.Abs(got-want) <= rel*math.Abs(want)
}
