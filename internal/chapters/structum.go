package chapters

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/talgya/psi-verify/internal/check"
	"github.com/talgya/psi-verify/internal/entropy"
	"github.com/talgya/psi-verify/internal/linalg"
	"github.com/talgya/psi-verify/internal/numeric"
	"github.com/talgya/psi-verify/internal/phi"
	"github.com/talgya/psi-verify/internal/units"
)

const (
	partRecursiveCollapse = "book-1-collapse-ontology/part-01-recursive-collapse"
	partTensorAlgebra     = "book-1-collapse-ontology/part-03-tensor-algebra"
	partQuantumGravity    = "book-1-collapse-ontology/part-04-quantum-gravity"
)

func goldenIdentity(c *check.C) {
	c.Relative(phi.PhiSquared, phi.Phi+1, 1e-10, "φ² = φ + 1")
}

// Structum012Strict reviews the information-theoretic chapter after
// revision: no critical issues remain.
func Structum012Strict() *check.Suite {
	return &check.Suite{
		ID:      "structum-012-strict",
		Book:    BookStructum,
		Part:    partRecursiveCollapse,
		Chapter: 12,
		Variant: check.VariantStrict,
		Title:   "Collapse information, strict review",
		Source:  "docs/psi-structum/book-1-collapse-ontology/part-01-recursive-collapse/verify_chapter_012_strict.py",
		Narrative: `Path counts N_n = F_{n+2} and the classification limit
I_∞ = ln φ follow from the no-11 constraint. The weight law P(w) ∝ w^(−1/φ)
normalizes on [0.1, 10]. The remaining issues are presentational.`,
		Issues: []string{
			"Weight distribution exponent could use more detailed derivation",
			"Network properties specific formulas need more justification",
			"Subadditivity property of information tensor needs justification",
		},
		Checks: []check.Check{
			{Name: "golden ratio identity", Fn: goldenIdentity},
			{Name: "path count recursion", Fn: func(c *check.C) {
				for n := 2; n < 8; n++ {
					c.Equal(phi.Fib(n+2), phi.Fib(n+1)+phi.Fib(n), "N_%d", n)
					c.Equal(phi.CountNo11(n), phi.Fib(n+2), "no-11 strings of length %d", n)
				}
			}},
			{Name: "weight distribution normalization", Fn: func(c *check.C) {
				exp := -1 / phi.Phi
				c.Greater(exp, -1, "integrable exponent")
				closed := (math.Pow(10, exp+1) - math.Pow(0.1, exp+1)) / (exp + 1)
				got := numeric.Simpson(func(w float64) float64 { return math.Pow(w, exp) }, 0.1, 10, 2000)
				c.Relative(got, closed, 1e-6)
				c.Greater(1/closed, 0, "normalization constant")
			}},
			{Name: "classification limit", Fn: func(c *check.C) {
				c.Greater(phi.LogPhi, 0)
				c.Places(1/phi.Phi, phi.PhiInv, 12, "clustering")
				c.Less(-(1 + 1/phi.Phi), -1, "degree exponent")
			}},
			{Name: "length five paths", Fn: func(c *check.C) {
				c.Equal(phi.Fib(7), uint64(13))
				c.Equal(len(phi.No11Strings(5)), 13)
				info := 0.0
				for k := 1; k <= 5; k++ {
					w := phi.Pow(float64(-k))
					info += w * math.Log(w)
				}
				c.Less(info, 0, "weighted log content")
			}},
		},
	}
}

// Structum013Strict reviews the entropy chapter after revision.
func Structum013Strict() *check.Suite {
	complexities := []float64{1, 2, 3, 5, 8, 13, 21}

	return &check.Suite{
		ID:      "structum-013-strict",
		Book:    BookStructum,
		Part:    partRecursiveCollapse,
		Chapter: 13,
		Variant: check.VariantStrict,
		Title:   "Collapse entropy, strict review",
		Source:  "docs/psi-structum/book-1-collapse-ontology/part-01-recursive-collapse/verify_chapter_013_strict.py",
		Narrative: `Entropy is the log of trace complexity, grows monotonically
along Fibonacci complexity, and crosses the threshold S_c = ln F₁₀ = ln 55.
The information geometry is hyperbolic with curvature −2/φ².`,
		Issues: []string{
			"Temperature relation needs better justification",
			"Information geometry formulas need derivation",
			"Flow properties appear postulated",
		},
		Checks: []check.Check{
			{Name: "golden ratio identity", Fn: goldenIdentity},
			{Name: "entropy growth", Fn: func(c *check.C) {
				entropies := make([]float64, len(complexities))
				for i, x := range complexities {
					entropies[i] = math.Log(x)
				}
				for i := 1; i < len(entropies); i++ {
					c.Greater(entropies[i], entropies[i-1], "step %d", i)
				}
				c.Equal(entropies[0], 0.0)
			}},
			{Name: "threshold entropy", Fn: func(c *check.C) {
				sc := math.Log(float64(phi.Fib(10)))
				c.Equal(sc, math.Log(55))
				c.AlmostEqual(sc, 4.00733, 1e-5)
			}},
			{Name: "hyperbolic geometry", Fn: func(c *check.C) {
				c.Less(-2*phi.PhiInvSquared, 0)
			}},
			{Name: "flow exponent", Fn: func(c *check.C) {
				c.Between(1/phi.Phi, 0, 1)
			}},
		},
	}
}

// Structum048Corrected checks golden-structured tensor invariants with
// every physical identification removed.
func Structum048Corrected() *check.Suite {
	const n = 3

	return &check.Suite{
		ID:      "structum-048-corrected",
		Book:    BookStructum,
		Part:    partTensorAlgebra,
		Chapter: 48,
		Variant: check.VariantCorrected,
		Title:   "Tensor constants, corrected",
		Source:  "docs/psi-structum/book-1-collapse-ontology/part-03-tensor-algebra/verify_chapter_048_corrected.py",
		Narrative: `The corrected chapter keeps only algebra: invariants of the
golden Toeplitz tensor T_ij = φ^(−|i−j|), its eigenvalue hierarchy, minimal
norms, trace suppression and information capacity. φ⁻² ≈ 0.38 is a ratio of
the structure, not the fine-structure constant.`,
		Issues: []string{
			"Cannot derive actual physical constants from pure mathematics",
			"φ^(-2) differs from α by factor ~50",
		},
		Checks: []check.Check{
			{Name: "golden ratio identity", Fn: goldenIdentity},
			{Name: "tensor invariant ratio", Fn: func(c *check.C) {
				t := linalg.GoldenToeplitz(n)
				r := linalg.TraceRatio(t)
				c.AlmostEqual(r, 0.5355177902778946, 1e-12)
				c.Logf("Tr[T²]/Tr[T]² = %.6f, φ⁻² = %.6f", r, phi.PhiInvSquared)
			}},
			{Name: "eigenvalue hierarchy", Fn: func(c *check.C) {
				vals, err := linalg.SymEigenvalues(linalg.GoldenToeplitz(n))
				c.NoError(err)
				slices.Reverse(vals)
				spread := vals[0] / vals[len(vals)-1]
				c.AlmostEqual(spread, 7.038, 0.01)
				for i := 0; i+1 < len(vals); i++ {
					c.Less(vals[i+1]/vals[i], 1, "ratio %d", i)
				}
				c.Places(vals[1], phi.PhiInv, 10, "middle eigenvalue")
			}},
			{Name: "minimal tensor norm", Fn: func(c *check.C) {
				var norms []float64
				for k := 1; k <= 5; k++ {
					var tk mat.Dense
					tk.Scale(phi.Pow(float64(-k)), identity(n))
					norms = append(norms, linalg.FrobeniusNorm(&tk))
				}
				hmin := floats.Min(norms) / phi.Phi
				c.AlmostEqual(hmin, math.Sqrt(3)*phi.Pow(-6), 1e-12)
				c.Places(hmin, 0.0965238833, 10)
			}},
			{Name: "trace suppression", Fn: func(c *check.C) {
				prev := math.Inf(1)
				for N := 5; N < 10; N++ {
					ones := mat.NewDense(n, n, []float64{1, 1, 1, 1, 1, 1, 1, 1, 1})
					ones.Scale(phi.Pow(float64(-N)), ones)
					tr := linalg.Trace(ones)
					c.AlmostEqual(tr, 3*phi.Pow(float64(-N)), 1e-12)
					c.Less(tr, prev, "N = %d", N)
					prev = tr
				}
			}},
			{Name: "information capacity", Fn: func(c *check.C) {
				rank := linalg.Rank(linalg.GoldenToeplitz(n), 1e-10)
				c.Equal(rank, n)
				c.LessOrEqual(math.Log(float64(rank)), n*phi.LogPhi)
			}},
			{Name: "self consistency", Fn: func(c *check.C) {
				t := linalg.GoldenToeplitz(n)
				vals, err := linalg.Eigenvalues(t)
				c.NoError(err)
				for _, v := range vals {
					c.False(math.IsNaN(real(v)) || math.IsInf(real(v), 0), "finite eigenvalue")
				}
				c.False(math.IsInf(linalg.Trace(t), 0))
			}},
			{Name: "ratio is not alpha", Fn: func(c *check.C) {
				c.Greater(phi.PhiInvSquared/units.Alpha, 50)
			}},
		},
	}
}

// Structum048Strict is the first-pass review of the tensor constants
// chapter. Its checks document the failed identifications; the recorded
// violations fail the suite.
func Structum048Strict() *check.Suite {
	return &check.Suite{
		ID:      "structum-048-strict",
		Book:    BookStructum,
		Part:    partTensorAlgebra,
		Chapter: 48,
		Variant: check.VariantStrict,
		Title:   "Tensor constants, strict review",
		Source:  "docs/psi-structum/book-1-collapse-ontology/part-03-tensor-algebra/verify_chapter_048_strict.py",
		Narrative: `Before correction the chapter read physical constants off
tensor eigenvalues. φ⁻² is about 52 times α, and fitting m_e/m_p as a power
of φ needs a non-integer exponent. Ten critical violations stand.`,
		Violations: []string{
			"Quantum eigenvalue equation assumed",
			"Electromagnetic tensor not derived",
			"Fine structure constant formula arbitrary",
			"Planck length not derived",
			"General relativity assumed",
			"Speed of light formula arbitrary",
			"Planck constant formula arbitrary",
			"Mass hierarchy formula arbitrary",
			"Quantum field theory assumed",
			"Anthropic reasoning circular",
		},
		Issues: []string{
			"Tensor invariant definition I[T] too vague",
			"Eigenvalue = constant connection unjustified",
			"Dimensionless coupling formula not derived",
			"Mass hierarchy patterns not proven",
			"Unification scale arbitrary",
			"Cosmological constant suppression speculative",
			"Holographic bound assumes black hole physics",
			"Anthropic constraints selection biased",
		},
		Checks: []check.Check{
			{Name: "golden ratio identity", Fn: goldenIdentity},
			{Name: "fine structure claim", Fn: func(c *check.C) {
				claimed := phi.PhiInvSquared
				c.False(numeric.WithinRel(claimed, units.Alpha, 0.1), "φ⁻² within 10%% of α")
				c.AlmostEqual(claimed/units.Alpha, 52.3, 0.1)
				c.Logf("φ⁻² / α = %.2f", claimed/units.Alpha)
			}},
			{Name: "mass ratio fit", Fn: func(c *check.C) {
				const me, mp = 9.109e-31, 1.673e-27
				s := -math.Log(me/mp) / phi.LogPhi
				c.AlmostEqual(s, 15.62, 0.01)
				c.NotPlaces(s, math.Round(s), 1, "integer exponent")
			}},
		},
	}
}

// Structum056Corrected checks golden pattern correction: degradation by
// smooth noise and φ-scaled recovery thresholds.
func Structum056Corrected() *check.Suite {
	original := []float64{1.0, 0.5, 0.3}

	return &check.Suite{
		ID:      "structum-056-corrected",
		Book:    BookStructum,
		Part:    partQuantumGravity,
		Chapter: 56,
		Variant: check.VariantCorrected,
		Title:   "Pattern correction, corrected",
		Source:  "docs/psi-structum/book-1-collapse-ontology/part-04-quantum-gravity/verify_chapter_056_corrected.py",
		Narrative: `With the quantum code vocabulary removed, the chapter is a
study of configurations under degradation. A correction step of strength 0.8
shrinks any displacement to a fifth, failure probability falls as
(p/p_th)^(φ^L) with level L, and persistence thresholds are φ^(−k).`,
		Constants: []check.Constant{
			{Name: "grid threshold", Symbol: "√φ/2", Value: math.Sqrt(phi.Phi) / 2},
		},
		Checks: []check.Check{
			{Name: "golden ratio identity", Fn: goldenIdentity},
			{Name: "pattern overlap", Fn: func(c *check.C) {
				configs := []int{0, 1, 0, 1}
				weights := [][]float64{{1}, {2}, {1, 2}, {3}}
				for i := range configs {
					for j := range configs {
						if i == j {
							continue
						}
						overlap := 0.0
						if configs[i] == configs[j] {
							overlap = phi.Pow(floats.Sum(weights[j]))
						}
						if configs[i] != configs[j] {
							c.Equal(overlap, 0.0, "orthogonal %d,%d", i, j)
						} else {
							c.Greater(overlap, 1, "overlap %d,%d", i, j)
						}
					}
				}
			}},
			{Name: "invariant operations", Fn: func(c *check.C) {
				scaled := slices.Clone(original)
				floats.Scale(phi.Phi, scaled)
				c.AlmostEqual(floats.Norm(scaled, 2), phi.Phi*floats.Norm(original, 2), 1e-12)
				rotated := append([]float64{original[1], -original[0]}, original[2:]...)
				c.AlmostEqual(floats.Norm(rotated, 2), floats.Norm(original, 2), 1e-12)
			}},
			{Name: "lattice path distance", Fn: func(c *check.C) {
				for _, size := range []int{3, 4, 5, 6} {
					diag := int(float64(size) * math.Sqrt2)
					c.GreaterOrEqual(float64(diag), float64(size), "size %d", size)
					c.Less(float64(diag), float64(2*size))
				}
			}},
			{Name: "boundary reconstruction", Fn: func(c *check.C) {
				recon := func(frac float64) float64 {
					if frac <= 2.0/3 {
						return 0
					}
					return math.Min(1, frac*phi.Phi)
				}
				c.Equal(recon(0.5), 0.0)
				c.Equal(recon(0.67), 1.0)
				c.Equal(recon(0.9), 1.0)
			}},
			{Name: "threshold scaling", Fn: func(c *check.C) {
				prev := 1.0
				for level := 1; level <= 3; level++ {
					fail := math.Pow(0.01/0.1, phi.Pow(float64(level)))
					c.Less(fail, prev, "level %d", level)
					prev = fail
				}
			}},
			{Name: "approximate correction", Fn: func(c *check.C) {
				noise := entropy.NewPerturber(c.Seed(), 0.05)
				degraded := slices.Clone(original)
				floats.Add(degraded, noise.Vector(0, len(original)))
				corrected := make([]float64, len(original))
				for i := range corrected {
					corrected[i] = degraded[i] + 0.8*(original[i]-degraded[i])
				}
				before := floats.Distance(original, degraded, 2)
				after := floats.Distance(original, corrected, 2)
				c.AlmostEqual(after, 0.2*before, 1e-12)
				c.LessOrEqual(after, before)
				c.LessOrEqual(before, 0.05*math.Sqrt(3)+1e-12, "degradation bounded by amplitude")
				c.Logf("seed %d: distance %.4g → %.4g", c.Seed(), before, after)
			}},
			{Name: "partial protection", Fn: func(c *check.C) {
				full := []float64{1.0, 0.5, 0.3, 0.8, 0.2}
				var logical, aux []float64
				for i, v := range full {
					if i%2 == 0 {
						logical = append(logical, v)
					} else {
						aux = append(aux, v)
					}
				}
				c.Equal(logical, []float64{1.0, 0.3, 0.2})
				c.Equal(len(logical)+len(aux), len(full))
			}},
			{Name: "golden grid code", Fn: func(c *check.C) {
				sq := math.Sqrt(phi.Phi)
				for k := -2; k <= 2; k++ {
					even, odd := float64(2*k)*sq, float64(2*k+1)*sq
					c.AlmostEqual(odd-even, sq, 1e-12)
				}
				c.Places(sq/2, 0.6360098248, 10)
			}},
			{Name: "information bounds", Fn: func(c *check.C) {
				bound := func(k int) float64 { return float64(k) * phi.LogPhi }
				c.LessOrEqual(configEntropy([]float64{1, 0, 0}), bound(1))
				uniform := configEntropy([]float64{0.33, 0.33, 0.34})
				c.Greater(uniform, bound(2))
				c.LessOrEqual(uniform, bound(3))
			}},
			{Name: "universal operations", Fn: func(c *check.C) {
				x := []float64{1.0, 0.5}
				sum := slices.Clone(x)
				floats.Add(sum, []float64{0.2, 0.3})
				c.Equal(sum, []float64{1.2, 0.8})
				neg := slices.Clone(x)
				floats.Scale(-1, neg)
				floats.Add(neg, x)
				c.Equal(neg, []float64{0, 0})
			}},
			{Name: "pattern persistence", Fn: func(c *check.C) {
				rates := []float64{0.1, 0.3, 0.5, 0.7}
				prev := len(rates) + 1
				for k := 1; k <= 3; k++ {
					threshold := phi.Pow(float64(-k))
					persists := 0
					for _, r := range rates {
						if r < threshold {
							persists++
						}
					}
					c.LessOrEqual(float64(persists), float64(prev), "k = %d", k)
					prev = persists
				}
			}},
		},
	}
}

func configEntropy(config []float64) float64 {
	total := 0.0
	for _, x := range config {
		total += math.Abs(x)
	}
	if total == 0 {
		return 0
	}
	h := 0.0
	for _, x := range config {
		if p := math.Abs(x) / total; p > 0 {
			h -= p * math.Log(p)
		}
	}
	return h
}
