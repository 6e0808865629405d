// Package units defines the collapse unit system (c* = 2, ħ* = φ²/2π,
// G* = φ⁻²), the CODATA values it is compared against, and the
// transformation back to SI.
package units

import (
	"math"

	"github.com/talgya/psi-verify/internal/phi"
)

// Collapse-unit constants.
var (
	// CStar is the collapse speed of light.
	CStar = 2.0

	// HbarStar is the collapse reduced Planck constant φ²/(2π).
	HbarStar = phi.PhiSquared / (2 * math.Pi) // 0.41667...

	// GStar is the collapse gravitational constant φ⁻².
	GStar = phi.PhiInvSquared // 0.38197...
)

// AlphaInv is the experimental inverse fine-structure constant.
const AlphaInv = 137.035999084

// Alpha is the experimental fine-structure constant.
const Alpha = 1 / AlphaInv

// CODATA 2018 values in SI.
const (
	C            = 299792458.0     // m/s
	Hbar         = 1.054571817e-34 // J·s
	H            = 6.62607015e-34  // J·s
	G            = 6.67430e-11     // m³/(kg·s²)
	PlanckLength = 1.616255e-35    // m
	PlanckTime   = 5.391247e-44    // s
	PlanckMass   = 2.176434e-8     // kg
	ElectronMass = 9.1093837015e-31
	Epsilon0     = 8.8541878128e-12
	ElemCharge   = 1.602176634e-19
)

// PlanckLengthStar is √(ħ*G*/c*³), which reduces to 1/(4√π).
func PlanckLengthStar() float64 {
	return math.Sqrt(HbarStar * GStar / math.Pow(CStar, 3))
}

// PlanckTimeStar is ℓ*/c*, which reduces to 1/(8√π).
func PlanckTimeStar() float64 {
	return PlanckLengthStar() / CStar
}

// PlanckMassStar is √(ħ*c*/G*), which reduces to φ²/√π.
func PlanckMassStar() float64 {
	return math.Sqrt(HbarStar * CStar / GStar)
}

// PlanckLengthSI computes √(ħG/c³) from CODATA.
func PlanckLengthSI() float64 {
	return math.Sqrt(Hbar * G / math.Pow(C, 3))
}

// PlanckTimeSI computes ℓ_P/c from CODATA.
func PlanckTimeSI() float64 {
	return PlanckLengthSI() / C
}

// PlanckMassSI computes √(ħc/G) from CODATA.
func PlanckMassSI() float64 {
	return math.Sqrt(Hbar * C / G)
}

// ScaleExponent returns the φ-exponent n such that si = collapse·φⁿ.
func ScaleExponent(si, collapse float64) float64 {
	return math.Log(si/collapse) / phi.LogPhi
}

// Predict maps a collapse value to SI through a φ-exponent.
func Predict(collapse, n float64) float64 {
	return collapse * math.Pow(phi.Phi, n)
}

// HolographicEntropy is the Bekenstein-Hawking entropy A/(4G*ħ*) of a
// horizon of area A in collapse units.
func HolographicEntropy(area float64) float64 {
	return area / (4 * GStar * HbarStar)
}
