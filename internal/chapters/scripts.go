package chapters

import (
	"math"

	"github.com/talgya/psi-verify/internal/check"
	"github.com/talgya/psi-verify/internal/numeric"
	"github.com/talgya/psi-verify/internal/phi"
)

// ScriptsZetaEquivalence checks that summing over golden paths reproduces
// the Riemann zeta partial sums term by term.
func ScriptsZetaEquivalence() *check.Suite {
	const terms = 1000

	return &check.Suite{
		ID:      "scripts-zeta-equivalence",
		Book:    BookScripts,
		Variant: check.VariantBase,
		Title:   "Tensor zeta and Riemann zeta",
		Source:  "scripts/verify_zeta_equivalence.py",
		Narrative: `Every positive integer has exactly one Zeckendorf path, a bit
string with no adjacent ones. The tensor zeta function sums n_F[P]^(−s) over
paths, so once the map is a bijection it equals ζ(s) term by term.`,
		Checks: []check.Check{
			{Name: "zeckendorf bijection", Fn: func(c *check.C) {
				seen := make(map[string]uint64, 100)
				for n := uint64(1); n <= 100; n++ {
					path := phi.PathFromInt(n)
					c.True(phi.IsGoldenPath(path), "path %s of %d", path, n)
					c.Equal(phi.PathToInt(path), n, "round trip of %d", n)
					prev, dup := seen[path]
					c.False(dup, "path %s shared by %d and %d", path, prev, n)
					seen[path] = n
				}
			}},
			{Name: "basis sequence", Fn: func(c *check.C) {
				c.Equal(phi.ZeckendorfBasis(8), []uint64{1, 2, 3, 5, 8, 13, 21, 34})
			}},
			{Name: "numerical equivalence", Fn: func(c *check.C) {
				for _, s := range []float64{2, 3, 4, 5} {
					tensor := numeric.PartialSum(func(k int) float64 {
						return math.Pow(float64(phi.PathToInt(phi.PathFromInt(uint64(k)))), -s)
					}, 1, terms)
					riemann := numeric.PartialSum(func(k int) float64 {
						return math.Pow(float64(k), -s)
					}, 1, terms)
					c.Relative(tensor, riemann, 1e-10, "s = %.0f", s)
				}
			}},
			{Name: "closed form limits", Fn: func(c *check.C) {
				zeta := func(s float64) float64 {
					return numeric.PartialSum(func(k int) float64 { return math.Pow(float64(k), -s) }, 1, terms)
				}
				c.AlmostEqual(zeta(2), math.Pi*math.Pi/6, 2e-3)
				c.AlmostEqual(zeta(4), math.Pow(math.Pi, 4)/90, 1e-8)
			}},
		},
	}
}
