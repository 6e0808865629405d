package chapters

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/talgya/psi-verify/internal/check"
	"github.com/talgya/psi-verify/internal/phi"
)

const partCosmology = "part-04-collapse-cosmology"

// Constants051DarkEnergy checks the two-level cascade Ω_Λ = ½ + 1/(2φ²).
func Constants051DarkEnergy() *check.Suite {
	const observed = 0.69
	level1 := 1 / (2 * phi.PhiSquared)
	omega := 0.5 + level1
	deltaW := phi.Pow(-4)

	return &check.Suite{
		ID:      "constants-051",
		Book:    BookConstants,
		Part:    partCosmology,
		Chapter: 51,
		Variant: check.VariantBase,
		Title:   "Dark energy fraction from the binary cascade",
		Source:  "docs/psi-constants/part-04-collapse-cosmology/verify_chapter_051.py",
		Narrative: `The electromagnetic cascade and the cosmological one share a
50% observer/observable baseline. Where α needs a golden-angle resonance and
a Fibonacci correction, the cosmic cascade needs only the 3D packing factor
(φ⁻¹)²/2, giving **Ω_Λ = ½ + 1/(2φ²) ≈ 0.691**. The equation of state picks
up δw = φ⁻⁴.`,
		Constants: []check.Constant{
			{Name: "dark energy fraction", Symbol: "Ω_Λ", Value: omega},
			{Name: "equation of state correction", Symbol: "δw", Value: deltaW},
		},
		Checks: []check.Check{
			{Name: "binary cascade structure", Fn: func(c *check.C) {
				c.Places(level1, 1/(2*phi.Phi*phi.Phi), 10)
				c.Less(math.Abs(omega-observed)/observed, 0.01)
				c.Logf("Ω_Λ = %.9f", omega)
			}},
			{Name: "binary tessellation", Fn: func(c *check.C) {
				packing := phi.PhiInv * phi.PhiInv
				c.Places(packing/2, level1, 10)
				c.Places(phi.PhiSquared-1, phi.Phi, 10)
			}},
			{Name: "cascade comparison", Fn: func(c *check.C) {
				emLevel1 := 0.25 * math.Pow(math.Cos(math.Pi/phi.Phi), 2)
				emLevel2 := 1 / (47 * phi.Pow(5))
				c.Greater(level1, emLevel1, "cosmic packing exceeds golden resonance")
				c.Greater(emLevel2, 0, "discrete exchange needs a second level")
			}},
			{Name: "packing optimization", Fn: func(c *check.C) {
				efficiency := func(r float64) float64 {
					d := math.Log(r) - math.Log(phi.Phi)
					return math.Exp(-d * d)
				}
				golden := efficiency(phi.Phi)
				for _, r := range []float64{1.0, 1.2, 1.4, 1.8, 2.0, 3.0} {
					c.GreaterOrEqual(golden, efficiency(r), "ratio %.1f", r)
				}
			}},
			{Name: "information optimization", Fn: func(c *check.C) {
				coverage := func(l float64) float64 { return l * (1 - math.Exp(-5/l)) }
				cost := func(l float64) float64 { return 1/l + 0.1*l*l }
				lengths := floats.Span(make([]float64, 200), 0.2, 1.5)
				best, bestEff := 0.0, -1.0
				for _, l := range lengths {
					if e := coverage(l) / cost(l); e > bestEff {
						best, bestEff = l, e
					}
				}
				c.Between(best, 0.3, 2.0)
			}},
			{Name: "natural transformation", Fn: func(c *check.C) {
				eta := func(x float64) float64 { return level1 * x }
				avg := func(x float64) float64 { return x * phi.PhiInvSquared }
				for _, size := range []float64{0.1, 0.5, 1, 2, 5} {
					p1, p2 := avg(eta(size)), eta(size)*phi.PhiInvSquared
					c.Less(math.Abs(p1-p2)/math.Max(math.Abs(p1), 1e-16), 1e-10)
				}
			}},
			{Name: "binary predictions", Fn: func(c *check.C) {
				c.Between(deltaW, 0, 0.2)
				c.Greater(deltaW/0.05, 0.1, "observable with current precision")
				for n := 1; n < 5; n++ {
					c.Places(phi.Pow(float64(-n))/phi.Pow(float64(-n-1)), phi.Phi, 5)
				}
				for n := 1; n <= 5; n++ {
					c.Between(180/phi.Pow(float64(n)), 0, 180, "anomaly angle %d", n)
				}
			}},
			{Name: "coincidence resolution", Fn: func(c *check.C) {
				efficiency := func(o float64) float64 {
					timing := math.Exp(-math.Pow((o-0.691)/0.2, 2))
					return math.Pow(1-o, 0.7) * math.Sqrt(timing)
				}
				omegas := []float64{0.1, 0.3, 0.5, 0.691, 0.8, 0.95}
				effs := make([]float64, len(omegas))
				for i, o := range omegas {
					effs[i] = efficiency(o)
				}
				predicted := effs[3]
				c.Greater(predicted/slices.Max(effs), 0.8)
				sorted := slices.Clone(effs)
				slices.Sort(sorted)
				slices.Reverse(sorted)
				rank := slices.Index(sorted, predicted) + 1
				c.LessOrEqual(float64(rank), float64(len(effs)/2+1))
			}},
			{Name: "scale invariance", Fn: func(c *check.C) {
				golden := map[string]float64{
					"quantum":      1 / (4 * phi.Phi),
					"atomic":       1 / (4 * phi.Phi),
					"molecular":    1 / (8 * phi.PhiSquared),
					"cosmological": 1 / (2 * phi.PhiSquared),
				}
				for scale, g := range golden {
					c.Between(g, 0, 0.5, scale)
				}
				c.Places(golden["cosmological"], level1, 10)
			}},
			{Name: "binary consistency", Fn: func(c *check.C) {
				depth := func(d float64) float64 { return phi.Pow(-2 * d) }
				c.Places(depth(2), deltaW, 10)
				unobservable := 1 - 0.5 - level1
				c.Between(unobservable, 0, 0.5)
			}},
		},
	}
}
