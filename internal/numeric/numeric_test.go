package numeric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/psi-verify/internal/phi"
)

func TestGoldenPowerIntegral(t *testing.T) {
	f := func(w float64) float64 { return math.Pow(w, -1/phi.Phi) }
	assert.InDelta(t, 5.222271757931245, Quad(f, 0.1, 10, 64), 1e-6)
	assert.InDelta(t, 5.222271757931245, Simpson(f, 0.1, 10, 4000), 1e-6)
}

func TestDecayIntegral(t *testing.T) {
	f := func(x float64) float64 { return math.Pow(phi.Phi, -x) }
	want := (1 - 1/phi.Phi) / phi.LogPhi
	assert.InDelta(t, want, Simpson(f, 0, 1, 101), 1e-10)
	assert.InDelta(t, 0.793758572335155, Quad(f, 0, 1, 16), 1e-12)
}

func TestFibonacciGeneratingSeries(t *testing.T) {
	got := PartialSum(func(n int) float64 {
		return phi.Binet(n) / math.Pow(2, float64(n))
	}, 1, 200)
	assert.InDelta(t, 2, got, 1e-10)
}

func TestCentralDiff(t *testing.T) {
	d := CentralDiff(func(x float64) float64 { return math.Pow(phi.Phi, x) }, 0, 1e-5)
	assert.InDelta(t, phi.LogPhi, d, 1e-8)
}

func TestKL(t *testing.T) {
	kl, err := KL([]float64{0.1, 0.3, 0.4, 0.2}, []float64{0.05, 0.25, 0.45, 0.25})
	require.NoError(t, err)
	assert.InDelta(t, 0.03227, kl, 1e-4)

	_, err = KL([]float64{1}, []float64{0.5, 0.5})
	assert.Error(t, err)
	_, err = KL([]float64{0.5, 0.6}, []float64{0.5, 0.5})
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	out := Normalize([]float64{1, 3})
	assert.Equal(t, []float64{0.25, 0.75}, out)
	assert.True(t, WithinRel(1.0001, 1, 1e-3))
	assert.False(t, WithinRel(1.1, 1, 1e-3))
}

func TestWithinRelIsRelativeToWant(t *testing.T) {
	// Tolerance scales with want, not with the larger operand.
	assert.True(t, WithinRel(0.5, 1, 0.5))
	assert.False(t, WithinRel(1, 0.5, 0.5))
	assert.True(t, WithinRel(0, 0, 1e-12))
	assert.False(t, WithinRel(1e-300, 0, 1e-3))
	assert.True(t, WithinRel(math.Inf(1), math.Inf(1), 1e-9))
}
