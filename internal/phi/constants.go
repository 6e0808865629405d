// Package phi provides the golden-ratio constants and the Fibonacci
// machinery every chapter check is built from.
package phi

import "math"

// Phi is the golden ratio (1+√5)/2.
const Phi = 1.6180339887498948

// Sqrt5 is √5, the denominator of Binet's formula.
const Sqrt5 = 2.23606797749979

// Derived powers and logarithms of Phi.
var (
	// PhiInv (φ⁻¹) equals φ−1.
	PhiInv = 1 / Phi // 0.61803...

	// PhiSquared (φ²) equals φ+1.
	PhiSquared = Phi * Phi // 2.61803...

	// PhiInvSquared (φ⁻²) is the collapse gravitational coupling.
	PhiInvSquared = 1 / (Phi * Phi) // 0.38197...

	// LogPhi is ln φ.
	LogPhi = math.Log(Phi) // 0.48121...

	// Log2Phi is log₂ φ, the information content of one golden step.
	Log2Phi = math.Log2(Phi) // 0.69424...
)

// Pow returns φⁿ for any real exponent.
func Pow(n float64) float64 {
	return math.Pow(Phi, n)
}

// Residual returns φ²−φ−1, which vanishes up to rounding.
func Residual() float64 {
	return PhiSquared - Phi - 1
}
