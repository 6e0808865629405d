package phi

import "math"

// ZetaWeight returns the golden zeta weight φ^(−s).
func ZetaWeight(s int) float64 {
	return math.Pow(Phi, -float64(s))
}

// ZetaWeights returns φ^(−s) for s in [from, to].
func ZetaWeights(from, to int) []float64 {
	if to < from {
		return nil
	}
	w := make([]float64, 0, to-from+1)
	for s := from; s <= to; s++ {
		w = append(w, ZetaWeight(s))
	}
	return w
}

// WeightSum adds a slice of weights.
func WeightSum(w []float64) float64 {
	total := 0.0
	for _, v := range w {
		total += v
	}
	return total
}

// ZetaSumLimit is Σ_{s≥1} φ^(−s), which equals φ.
func ZetaSumLimit() float64 {
	return PhiInv / (1 - PhiInv)
}
