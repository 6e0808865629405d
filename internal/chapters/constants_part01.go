package chapters

import (
	"math"

	"github.com/talgya/psi-verify/internal/check"
	"github.com/talgya/psi-verify/internal/phi"
	"github.com/talgya/psi-verify/internal/units"
)

const partStructuralLimits = "part-01-structural-collapse-limits"

// Constants001Foundations checks the golden-ratio foundations and the
// spectral-average reconstruction of α.
func Constants001Foundations() *check.Suite {
	return &check.Suite{
		ID:      "constants-001",
		Book:    BookConstants,
		Part:    partStructuralLimits,
		Chapter: 1,
		Variant: check.VariantBase,
		Title:   "Collapse limit constants",
		Source:  "docs/psi-constants/part-01-structural-collapse-limits/verify_chapter_001.py",
		Narrative: `The axiom **ψ = ψ(ψ)** forces a positive self-similar ratio,
the golden ratio φ = (1+√5)/2. Every collapse constant is a closed form in φ and π.

The fine-structure constant is written as a spectral average over rank-6
and rank-7 paths, α = (1/2π)·(r·φ⁻⁶ + φ⁻⁷)/(r+1).`,
		Constants: []check.Constant{
			{Name: "golden ratio", Symbol: "φ", Value: phi.Phi},
			{Name: "fine-structure constant", Symbol: "α", Value: units.Alpha},
		},
		Checks: []check.Check{
			{Name: "golden ratio identities", Fn: func(c *check.C) {
				p := phi.Phi
				c.AlmostEqual(p*p-p-1, 0, 1e-15, "φ² − φ − 1")
				c.AlmostEqual(p, 1+1/p, 1e-15, "φ = 1 + 1/φ")
				c.Greater(p, 0, "positive root")
				c.Logf("φ = %.15f", p)
			}},
			{Name: "fibonacci recursion", Fn: func(c *check.C) {
				fib := phi.ZeckendorfBasis(10)
				for i := 2; i < len(fib); i++ {
					c.Equal(fib[i], fib[i-1]+fib[i-2], "F at %d", i)
				}
				ratio := float64(fib[9]) / float64(fib[8])
				c.AlmostEqual(ratio, phi.Phi, 0.01, "F(n+1)/F(n) → φ")
				c.Logf("ratio = %.3f", ratio)
			}},
			{Name: "zeta weights decrease and converge", Fn: func(c *check.C) {
				w := phi.ZetaWeights(1, 10)
				for i := 0; i+1 < len(w); i++ {
					c.Greater(w[i], w[i+1], "weight %d", i+1)
				}
				sum := phi.WeightSum(w)
				c.AlmostEqual(sum, 1.60487837125347, 1e-12)
				c.Less(sum, phi.ZetaSumLimit(), "partial sum below the limit φ")
			}},
			{Name: "information complexity bounds", Fn: func(c *check.C) {
				spinor := math.Log2(16)
				em := spinor + 1
				observer := em + 1
				c.LessOrEqual(spinor, 5)
				c.LessOrEqual(em, 6)
				c.LessOrEqual(observer, 7)
			}},
			{Name: "fine structure spectral average", Fn: func(c *check.C) {
				m6, m7 := phi.Pow(-6), phi.Pow(-7)
				target := 2 * math.Pi * units.Alpha
				r := (target - m7) / (m6 - target)
				alpha := (1 / (2 * math.Pi)) * (r*m6 + m7) / (r + 1)
				c.AlmostEqual(alpha, units.Alpha, 1e-15)
				c.AlmostEqual(r, 1.15502886, 1e-8, "mixing ratio r")
				c.Logf("α = %.15f (error %.2e)", alpha, math.Abs(alpha-units.Alpha))
			}},
		},
	}
}

// Constants002SpeedLimit checks c* = 2 and its mapping to SI.
func Constants002SpeedLimit() *check.Suite {
	return &check.Suite{
		ID:      "constants-002",
		Book:    BookConstants,
		Part:    partStructuralLimits,
		Chapter: 2,
		Variant: check.VariantBase,
		Title:   "Speed limit constant c",
		Source:  "docs/psi-constants/part-01-structural-collapse-limits/verify_chapter_002.py",
		Narrative: `The steepest slope in the φ-trace network is the Fibonacci ratio
corrected by the discretisation factor 2/φ, giving **c* = 2**. The SI value
follows from the scale ratio λ_L/λ_T = c/c*.`,
		Constants: []check.Constant{
			{Name: "collapse speed", Symbol: "c*", Value: units.CStar},
			{Name: "speed of light", Symbol: "c", Value: units.C, Note: "m/s, exact"},
		},
		Checks: []check.Check{
			{Name: "path slope boundedness", Fn: func(c *check.C) {
				slope := phi.Phi * (2 / phi.Phi)
				c.AlmostEqual(slope, units.CStar, 0.1)
				c.Logf("max slope = φ × (2/φ) = %.6f", slope)
			}},
			{Name: "information speed limit", Fn: func(c *check.C) {
				c.Equal(units.CStar, 2.0)
				c.Equal(units.CStar*units.CStar, 4.0, "c*²")
			}},
			{Name: "collapse to SI speed mapping", Fn: func(c *check.C) {
				ratio := units.C / units.CStar
				c.Greater(ratio, 0)
				c.Equal(ratio, 149896229.0)
				c.Equal(units.CStar*ratio, units.C)
				c.Logf("λ_L/λ_T = %.0f", ratio)
			}},
		},
	}
}

// Constants003PlanckConstant checks ħ* = φ²/2π.
func Constants003PlanckConstant() *check.Suite {
	return &check.Suite{
		ID:      "constants-003",
		Book:    BookConstants,
		Part:    partStructuralLimits,
		Chapter: 3,
		Variant: check.VariantBase,
		Title:   "Planck constant ħ",
		Source:  "docs/psi-constants/part-01-structural-collapse-limits/verify_chapter_003.py",
		Narrative: `The minimal closed loop on the trace lattice has period
T_min = 2π/φ². Its reciprocal action is the collapse Planck constant
**ħ* = φ²/(2π)**, combining an algebraic factor with a topological one.`,
		Constants: []check.Constant{
			{Name: "collapse Planck constant", Symbol: "ħ*", Value: units.HbarStar},
			{Name: "reduced Planck constant", Symbol: "ħ", Value: units.Hbar, Note: "J·s"},
		},
		Checks: []check.Check{
			{Name: "golden ratio properties", Fn: func(c *check.C) {
				c.Places(phi.Phi*phi.Phi, phi.Phi+1, 15)
				c.Places(phi.Phi, 1+1/phi.Phi, 15)
			}},
			{Name: "minimal loop period", Fn: func(c *check.C) {
				tmin := 2 * math.Pi / math.Pow(phi.Phi, 2)
				c.Places(tmin, 2.39996, 5)
				c.Places(tmin*units.HbarStar, 1, 12, "T_min·ħ* = 1")
			}},
			{Name: "hbar star value", Fn: func(c *check.C) {
				c.Places(units.HbarStar, math.Pow(phi.Phi, 2)/(2*math.Pi), 15)
				c.Places(units.HbarStar, 0.41667305, 8)
			}},
			{Name: "action quantization", Fn: func(c *check.C) {
				for _, n := range []float64{1, 2, 3, 5, 8, 13} {
					c.Places(n*units.HbarStar/units.HbarStar, n, 15, "n=%v", n)
				}
			}},
			{Name: "phase space area", Fn: func(c *check.C) {
				c.Greater(units.HbarStar, 0.1)
				c.Less(units.HbarStar, 1)
			}},
			{Name: "uncertainty relation", Fn: func(c *check.C) {
				bound := units.HbarStar / 2
				for _, pair := range [][2]float64{{1.0, 0.5}, {0.5, 1.0}, {0.3, 0.7}} {
					c.GreaterOrEqual(pair[0]*pair[1], bound, "Δq=%v Δp=%v", pair[0], pair[1])
				}
			}},
			{Name: "classical limit", Fn: func(c *check.C) {
				const n = 10000.0
				action := n * units.HbarStar
				c.Places(action/units.HbarStar, n, 10)
				c.Places(units.HbarStar/action, 1/n, 15)
			}},
			{Name: "dimensional consistency", Fn: func(c *check.C) {
				scale := units.Hbar / units.HbarStar
				c.Greater(scale, 0)
				c.Less(scale, 1)
			}},
			{Name: "topological invariance", Fn: func(c *check.C) {
				perturbed := math.Pow(phi.Phi+1e-10, 2) / (2 * math.Pi)
				c.NotPlaces(units.HbarStar, perturbed, 12, "ħ* tracks φ")
				c.Places(units.HbarStar*2*math.Pi/math.Pow(phi.Phi, 2), 1, 15)
			}},
		},
	}
}

// Constants004Gravitation checks G* = φ⁻² from information leakage.
func Constants004Gravitation() *check.Suite {
	return &check.Suite{
		ID:      "constants-004",
		Book:    BookConstants,
		Part:    partStructuralLimits,
		Chapter: 4,
		Variant: check.VariantBase,
		Title:   "Gravitational constant G",
		Source:  "docs/psi-constants/part-01-structural-collapse-limits/verify_chapter_004.py",
		Narrative: `The Zeckendorf configuration space at rank s has F(s+2) states,
so information grows by log₂φ per rank. Gravitation is the leakage of that
information, normalised by the maximal rank density φ², so **G* = φ⁻²**.`,
		Constants: []check.Constant{
			{Name: "collapse gravitational constant", Symbol: "G*", Value: units.GStar},
			{Name: "Newton constant", Symbol: "G", Value: units.G, Note: "m³/(kg·s²)"},
		},
		Checks: []check.Check{
			{Name: "g star value", Fn: func(c *check.C) {
				c.Places(units.GStar, math.Pow(phi.Phi, -2), 15)
				c.Places(units.GStar, 0.3819660113, 10)
			}},
			{Name: "configuration space scaling", Fn: func(c *check.C) {
				for s := 3; s < 8; s++ {
					info := math.Log2(phi.FibFloat(s + 2))
					c.AlmostEqual(info, float64(s)*phi.Log2Phi, 0.5, "rank %d", s)
				}
			}},
			{Name: "information gradient", Fn: func(c *check.C) {
				for s := 5; s < 8; s++ {
					grad := float64(s+1)*phi.Log2Phi - float64(s)*phi.Log2Phi
					c.Places(grad, phi.Log2Phi, 14, "ranks %d→%d", s, s+1)
				}
			}},
			{Name: "information density gradient", Fn: func(c *check.C) {
				for s := 3; s < 6; s++ {
					rho := math.Pow(phi.Phi, float64(3*s)) * phi.Log2Phi
					next := math.Pow(phi.Phi, float64(3*(s+1))) * phi.Log2Phi
					c.Greater(next, rho)
					c.Places(next/rho, math.Pow(phi.Phi, 3), 10, "φ³ scaling at %d", s)
				}
			}},
			{Name: "information bound", Fn: func(c *check.C) {
				c.Places(1/phi.PhiSquared, units.GStar, 15)
			}},
			{Name: "weak field limit", Fn: func(c *check.C) {
				const mass = 1.0
				for _, r := range []float64{0.5, 1, 2, 10} {
					potential := -units.GStar * mass / r
					c.Places(potential*r, -units.GStar*mass, 15, "1/r at r=%v", r)
				}
			}},
			{Name: "dimensional analysis", Fn: func(c *check.C) {
				scale := units.G / units.GStar
				c.Greater(scale, 0)
				c.Less(scale, 1)
			}},
			{Name: "thermodynamic consistency", Fn: func(c *check.C) {
				prev := 0.0
				for s := 5; s < 8; s++ {
					temp := units.HbarStar * math.Pow(phi.Phi, float64(s)) / (2 * math.Pi)
					if s > 5 {
						c.Greater(temp, prev, "temperature rises at rank %d", s)
					}
					prev = temp
				}
			}},
			{Name: "black hole threshold", Fn: func(c *check.C) {
				cube := math.Pow(units.CStar, 3)
				gamma := cube / (units.GStar * units.HbarStar)
				c.Relative(gamma, cube*phi.PhiSquared/units.HbarStar, 1e-14)
				c.Relative(gamma, 16*math.Pi, 1e-14, "Γ_max = 16π")
				c.False(math.IsInf(gamma, 0))
			}},
		},
	}
}

// Constants006PlanckUnits derives the Planck length, time and mass in
// collapse units and compares them with CODATA.
func Constants006PlanckUnits() *check.Suite {
	lP := units.PlanckLengthStar()
	tP := units.PlanckTimeStar()
	mP := units.PlanckMassStar()
	eP := mP * units.CStar * units.CStar
	sqrtPi := math.Sqrt(math.Pi)

	return &check.Suite{
		ID:      "constants-006",
		Book:    BookConstants,
		Part:    partStructuralLimits,
		Chapter: 6,
		Variant: check.VariantBase,
		Title:   "Planck units",
		Source:  "docs/psi-constants/part-01-structural-collapse-limits/verify_chapter_006.py",
		Narrative: `With c* = 2, ħ* = φ²/2π and G* = φ⁻² the φ factors cancel in the
Planck length and time:

- ℓ* = √(ħ*G*/c*³) = 1/(4√π)
- t* = ℓ*/c* = 1/(8√π)
- m* = √(ħ*c*/G*) = φ²/√π`,
		Constants: []check.Constant{
			{Name: "Planck length", Symbol: "ℓ*", Value: lP},
			{Name: "Planck time", Symbol: "t*", Value: tP},
			{Name: "Planck mass", Symbol: "m*", Value: mP},
			{Name: "Planck length (SI)", Symbol: "ℓ_P", Value: units.PlanckLength, Note: "m"},
		},
		Checks: []check.Check{
			{Name: "planck length derivation", Fn: func(c *check.C) {
				c.Places(lP, 1/(4*sqrtPi), 15)
				c.Places(lP, 0.1410473959, 10)
			}},
			{Name: "planck time derivation", Fn: func(c *check.C) {
				c.Places(tP, 1/(8*sqrtPi), 15)
				c.Places(tP, 0.0705236979, 10)
			}},
			{Name: "planck mass derivation", Fn: func(c *check.C) {
				c.Places(mP, phi.PhiSquared/sqrtPi, 14)
				c.Places(mP, 1.4770675058, 10)
			}},
			{Name: "scale invariance", Fn: func(c *check.C) {
				k := phi.PhiSquared
				l := math.Sqrt((k * units.HbarStar) * (units.GStar / k) / math.Pow(units.CStar, 3))
				c.Places(l, lP, 15, "length invariant")
				c.Places(l/units.CStar, tP, 15, "time invariant")
				m := math.Sqrt((k * units.HbarStar) * units.CStar / (units.GStar / k))
				c.Places(m/mP, k, 10, "mass scales with φ²")
			}},
			{Name: "dimensional consistency", Fn: func(c *check.C) {
				c.Places(tP*units.CStar/lP, 1, 15)
				c.Places(mP*units.GStar/(units.CStar*units.CStar*lP), 1, 10)
			}},
			{Name: "planck energy", Fn: func(c *check.C) {
				c.Places(eP, 4*phi.PhiSquared*math.Sqrt(1/math.Pi), 10)
			}},
			{Name: "information capacity", Fn: func(c *check.C) {
				c.Places(math.Log(math.Pow(phi.Phi, 4))/phi.LogPhi, 4, 14)
				c.Greater(lP*lP, 0)
			}},
			{Name: "planck relations", Fn: func(c *check.C) {
				c.Places(eP*tP/units.HbarStar, 1, 10, "E·t = ħ*")
				rs := 2 * units.GStar * mP / (units.CStar * units.CStar)
				c.Places(rs/lP, 2, 10, "Schwarzschild radius")
				compton := units.HbarStar / (mP * units.CStar)
				c.Places(compton/lP, 1, 10, "Compton wavelength")
			}},
			{Name: "fibonacci growth", Fn: func(c *check.C) {
				fib := phi.Sequence(6)
				for i := 2; i < len(fib); i++ {
					l := float64(fib[i]) * lP
					c.Places(l, float64(fib[i-1])*lP+float64(fib[i-2])*lP, 15, "n=%d", i)
				}
			}},
			{Name: "codata planck units", Fn: func(c *check.C) {
				c.Relative(units.PlanckLengthSI(), units.PlanckLength, 1e-6)
				c.Relative(units.PlanckTimeSI(), units.PlanckTime, 1e-6)
				c.Relative(units.PlanckMassSI(), units.PlanckMass, 1e-6)
				c.Logf("ℓ_P = %.8e m", units.PlanckLengthSI())
			}},
		},
	}
}
