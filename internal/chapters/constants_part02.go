package chapters

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/talgya/psi-verify/internal/check"
	"github.com/talgya/psi-verify/internal/linalg"
	"github.com/talgya/psi-verify/internal/phi"
	"github.com/talgya/psi-verify/internal/units"
)

const partSIEquivalence = "part-02-collapse-si-equivalence"

// Constants020SpeedSI re-derives the SI speed of light from c* = 2 and an
// observer scale exponent.
func Constants020SpeedSI() *check.Suite {
	const (
		rateFundamental = 1e43
		rateHuman       = 1e12
	)
	deltaN := units.ScaleExponent(units.C, units.CStar)

	return &check.Suite{
		ID:      "constants-020",
		Book:    BookConstants,
		Part:    partSIEquivalence,
		Chapter: 20,
		Variant: check.VariantBase,
		Title:   "Speed of light in SI",
		Source:  "docs/psi-constants/part-02-collapse-si-equivalence/verify_chapter_020.py",
		Narrative: `A binary channel moves one of two states per tick, so the
fundamental speed is 2. The human observer sits about 148 golden levels above
the Planck rate; the SI value 299 792 458 m/s is c* scaled by φ^Δn with
**Δn ≈ 39.12**.`,
		Constants: []check.Constant{
			{Name: "scale exponent", Symbol: "Δn_c", Value: deltaN},
			{Name: "speed of light", Symbol: "c", Value: units.C, Note: "m/s"},
		},
		Checks: []check.Check{
			{Name: "binary fundamental speed", Fn: func(c *check.C) {
				const states, tick = 2.0, 1.0
				c.Equal(states/tick, units.CStar)
			}},
			{Name: "human observer level", Fn: func(c *check.C) {
				level := math.Log(rateFundamental/rateHuman) / phi.LogPhi
				c.Between(level, 140, 160)
				c.AlmostEqual(level, 148, 5)
				c.Logf("n_human = %.2f", level)
			}},
			{Name: "scale correction factor", Fn: func(c *check.C) {
				c.Places(phi.Pow(deltaN)/(units.C/units.CStar), 1, 10)
			}},
			{Name: "si speed prediction", Fn: func(c *check.C) {
				c.AlmostEqual(deltaN, 39.12, 0.1)
				predicted := units.Predict(units.CStar, deltaN)
				c.Less(math.Abs(predicted-units.C)/units.C, 1e-10)
				c.Logf("Δn = %.8f", deltaN)
			}},
			{Name: "binary channel capacity", Fn: func(c *check.C) {
				c.Places(phi.Log2Phi, 0.694, 2)
			}},
			{Name: "information content encoding", Fn: func(c *check.C) {
				c.AlmostEqual(math.Log2(units.C), 28.2, 0.5)
			}},
			{Name: "zeckendorf structure of c", Fn: func(c *check.C) {
				want := []uint64{267914296, 24157817, 5702887, 1346269, 514229, 121393, 28657, 6765, 144, 1}
				got := phi.Zeckendorf(uint64(units.C))
				c.Equal(got, want)
				c.Equal(phi.Sum(got), uint64(units.C))
				c.True(phi.IsZeckendorf(got), "non-consecutive terms")
			}},
			{Name: "constrained capacity below unconstrained", Fn: func(c *check.C) {
				c.Less(phi.Log2Phi, 1)
			}},
		},
	}
}

// Constants022GravitationSI maps G* = φ⁻² onto the CODATA value of G.
func Constants022GravitationSI() *check.Suite {
	deltaN := units.ScaleExponent(units.G, units.GStar)

	return &check.Suite{
		ID:      "constants-022",
		Book:    BookConstants,
		Part:    partSIEquivalence,
		Chapter: 22,
		Variant: check.VariantBase,
		Title:   "Gravitational constant in SI",
		Source:  "docs/psi-constants/part-02-collapse-si-equivalence/verify_chapter_022.py",
		Narrative: `Gravitational coupling is information dilution between two
golden channels, G* = (φ⁻¹)². The CODATA value sits **Δn ≈ −46.7** golden
levels below it. Horizon entropy, wave strain and vacuum curvature all follow
from the same three collapse constants.`,
		Constants: []check.Constant{
			{Name: "scale exponent", Symbol: "Δn_G", Value: deltaN},
			{Name: "Newton constant", Symbol: "G", Value: units.G, Note: "m³/(kg·s²)"},
		},
		Checks: []check.Check{
			{Name: "gravitational constant foundation", Fn: func(c *check.C) {
				c.AlmostEqual(units.GStar, phi.PhiInv*phi.PhiInv, 1e-10)
				c.AlmostEqual(units.GStar, 0.3819660112501051, 1e-10)
			}},
			{Name: "gravitational scale factor", Fn: func(c *check.C) {
				c.AlmostEqual(deltaN, -46.7, 0.5)
				predicted := units.Predict(units.GStar, deltaN)
				c.Less(math.Abs(predicted-units.G)/units.G, 1e-10)
				c.Logf("Δn_G = %.5f", deltaN)
			}},
			{Name: "gravitational observer level", Fn: func(c *check.C) {
				level := math.Log(1e129/1e-2) / phi.LogPhi
				c.AlmostEqual(level, 627, 5)
				c.Between(level, 620, 635)
			}},
			{Name: "gravitational channel capacity", Fn: func(c *check.C) {
				c.Places(phi.Log2Phi, 0.694, 2)
				c.AlmostEqual(math.Log2(units.G*1e11), 2.74, 1)
			}},
			{Name: "zeckendorf structure of G", Fn: func(c *check.C) {
				const significand = 667430
				approx := []uint64{514229, 121393, 28657, 6765, 1597, 377, 89, 21, 5}
				c.Less(math.Abs(float64(phi.Sum(approx))-significand)/significand, 0.01)
				exact := phi.Zeckendorf(significand)
				c.Equal(exact, []uint64{514229, 121393, 28657, 2584, 377, 144, 34, 8, 3, 1})
				c.True(phi.IsZeckendorf(exact))
			}},
			{Name: "cavendish coupling", Fn: func(c *check.C) {
				const m1, m2, r = 1.0, 1.0, 1.0
				force := units.GStar * m1 * m2 / (r * r)
				c.AlmostEqual(force, phi.PhiInvSquared, 1e-10)
			}},
			{Name: "gravitational wave strain", Fn: func(c *check.C) {
				strain := 2 * units.GStar / math.Pow(units.CStar, 4)
				c.AlmostEqual(strain, phi.PhiInvSquared/8, 1e-10)
			}},
			{Name: "bekenstein hawking entropy", Fn: func(c *check.C) {
				area := 4 * math.Pi * math.Pow(0.5, 2)
				entropy := units.HolographicEntropy(area)
				c.AlmostEqual(entropy, 4.93, 0.5)
				c.Logf("S_BH = %.4f", entropy)
			}},
			{Name: "cosmological constant dilution", Fn: func(c *check.C) {
				lambda := 8 * math.Pi * units.GStar / (units.CStar * units.CStar)
				c.AlmostEqual(lambda, 2*math.Pi*phi.PhiInvSquared, 1e-10)
				c.Less(2*math.Pi*phi.PhiInvSquared*phi.Pow(-52), 1e-10)
			}},
		},
	}
}

// Constants029MasterMatrix checks the 3×3 transformation between
// collapse units and SI.
func Constants029MasterMatrix() *check.Suite {
	return &check.Suite{
		ID:      "constants-029",
		Book:    BookConstants,
		Part:    partSIEquivalence,
		Chapter: 29,
		Variant: check.VariantBase,
		Title:   "Master transformation matrix",
		Source:  "docs/psi-constants/part-02-collapse-si-equivalence/verify_chapter_029.py",
		Narrative: `The log ratios of (c, ħ, G) between any two observers are a
linear image of the log scale factors (λ_L, λ_T, λ_M):

    | 1 −1  0 |
    | 2 −1  1 |
    | 3 −2 −1 |

Its determinant is **−2**, the binary channel capacity, so the map is
invertible and every observer's units are recoverable.`,
		Constants: []check.Constant{
			{Name: "determinant", Symbol: "det M", Value: units.MasterDet},
		},
		Checks: []check.Check{
			{Name: "matrix properties", Fn: func(c *check.C) {
				m := linalg.From3(units.MasterMatrix)
				det, err := linalg.Det(m)
				c.NoError(err)
				c.AlmostEqual(det, -2, 1e-10)
				c.Equal(math.Abs(math.Round(det)), units.CStar, "|det| = c*")
				c.Equal(linalg.Rank(m, 1e-10), 3)

				vals, err := linalg.Eigenvalues(m)
				c.NoError(err)
				var reals []float64
				var complexes []complex128
				for _, v := range vals {
					if math.Abs(imag(v)) < 1e-10 {
						reals = append(reals, real(v))
					} else {
						complexes = append(complexes, v)
					}
				}
				c.Equal(len(reals), 1, "one real eigenvalue")
				c.AlmostEqual(reals[0], -0.715, 0.01)
				c.Equal(len(complexes), 2, "one conjugate pair")
				c.AlmostEqual(real(complexes[0]), real(complexes[1]), 1e-10)
				c.AlmostEqual(imag(complexes[0]), -imag(complexes[1]), 1e-10)
			}},
			{Name: "inverse matrix", Fn: func(c *check.C) {
				m := linalg.From3(units.MasterMatrix)
				inv, err := linalg.Inverse(m)
				c.NoError(err)
				c.MatrixClose(inv, linalg.From3(units.MasterInverse), 1e-10)

				var id mat.Dense
				id.Mul(m, inv)
				c.MatrixClose(&id, identity(3), 1e-10)
			}},
			{Name: "binary to human scale transformation", Fn: func(c *check.C) {
				s, err := units.SolveScales(units.C, units.Hbar, units.G)
				c.NoError(err)
				cc, hbar, g := s.Apply()
				c.AlmostEqual(cc/units.C, 1, 0.01)
				c.AlmostEqual(hbar/units.Hbar, 1, 0.01)
				c.AlmostEqual(g/units.G, 1, 0.01)
			}},
			{Name: "planck scale transformation", Fn: func(c *check.C) {
				s, err := units.SolveScales(1, 1, 1)
				c.NoError(err)
				c.Greater(s.Length, 0)
				c.Greater(s.Time, 0)
				c.Greater(s.Mass, 0)
				cc, hbar, g := s.Apply()
				c.AlmostEqual(cc, 1, 0.001)
				c.AlmostEqual(hbar, 1, 0.001)
				c.AlmostEqual(g, 1, 0.001)
			}},
			{Name: "constraint preservation", Fn: func(c *check.C) {
				for _, n := range []uint64{100, 137, 100 * 137} {
					z := phi.Zeckendorf(n)
					c.Greater(float64(len(z)), 0)
					for i := 0; i+1 < len(z); i++ {
						c.Greater(float64(z[i]), float64(z[i+1]), "descending terms of %d", n)
					}
					c.Equal(phi.Sum(z), n)
				}
			}},
			{Name: "information stability", Fn: func(c *check.C) {
				m := linalg.From3(units.MasterMatrix)
				cond, err := linalg.FrobeniusCond(m)
				c.NoError(err)
				c.Less(cond, 20)

				s, err := units.SolveScales(1e20, 1e-50, 1e-30)
				c.NoError(err)
				for _, v := range []float64{s.Length, s.Time, s.Mass} {
					c.False(math.IsNaN(v) || math.IsInf(v, 0), "finite scale factor")
				}
			}},
			{Name: "information loss bound", Fn: func(c *check.C) {
				inv := linalg.From3(units.MasterInverse)
				sigma := linalg.SpectralNorm(inv)
				c.Less(sigma, 3.5)
				c.AlmostEqual(sigma, 2*phi.Pow(0.96), 0.1)

				var amp float64
				for i := range 3 {
					row := 0.0
					for j := range 3 {
						row += inv.At(i, j) * 0.01
					}
					amp = math.Max(amp, math.Abs(row)/0.01)
				}
				c.LessOrEqual(amp, sigma+0.1)
			}},
		},
	}
}

func identity(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := range n {
		m.Set(i, i, 1)
	}
	return m
}
