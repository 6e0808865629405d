package linalg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/talgya/psi-verify/internal/phi"
	"github.com/talgya/psi-verify/internal/units"
)

func TestMasterMatrix(t *testing.T) {
	m := From3(units.MasterMatrix)

	det, err := Det(m)
	require.NoError(t, err)
	assert.InDelta(t, units.MasterDet, det, 1e-12)

	inv, err := Inverse(m)
	require.NoError(t, err)
	assert.True(t, EqualApprox(inv, From3(units.MasterInverse), 1e-10))

	reals, err := RealEigenvalues(m, 1e-9)
	require.NoError(t, err)
	require.Len(t, reals, 1)
	assert.InDelta(t, -0.715, reals[0], 0.01)

	all, err := Eigenvalues(m)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	sum := complex(0, 0)
	for _, v := range all {
		sum += v
	}
	assert.InDelta(t, Trace(m), real(sum), 1e-10)

	cond, err := FrobeniusCond(m)
	require.NoError(t, err)
	assert.InDelta(t, 15.017, cond, 1e-3)
	assert.InDelta(t, 3.112035188440979, SpectralNorm(inv), 1e-9)
}

func TestGoldenToeplitz(t *testing.T) {
	g := GoldenToeplitz(3)
	assert.InDelta(t, phi.PhiInv, g.At(0, 1), 1e-15)
	assert.InDelta(t, phi.PhiInvSquared, g.At(0, 2), 1e-15)
	assert.InDelta(t, 0.5355177902778946, TraceRatio(g), 1e-12)

	vals, err := SymEigenvalues(g)
	require.NoError(t, err)
	require.Len(t, vals, 3)
	assert.InDelta(t, 0.296329, vals[0], 1e-5)
	assert.InDelta(t, phi.PhiInv, vals[1], 1e-12)
	assert.InDelta(t, 2.085638, vals[2], 1e-5)
	assert.Equal(t, 3, Rank(g, 1e-12))
}

func TestNotSquare(t *testing.T) {
	m := FromRows([][]float64{{1, 2, 3}, {4, 5, 6}})
	_, err := Det(m)
	assert.ErrorIs(t, err, ErrNotSquare)
	_, err = Inverse(m)
	assert.ErrorIs(t, err, ErrNotSquare)
	assert.Equal(t, 2, Rank(m, 1e-12))
	assert.Panics(t, func() { FromRows([][]float64{{1, 2}, {3}}) })
}

func TestSingularInverse(t *testing.T) {
	_, err := Inverse(FromRows([][]float64{{1, 2}, {2, 4}}))
	assert.Error(t, err)
}

func TestCommutators(t *testing.T) {
	sx := FromRows([][]float64{{0, 1}, {1, 0}})
	sz := FromRows([][]float64{{1, 0}, {0, -1}})

	comm := Commutator(sx, sz)
	assert.Equal(t, [][]float64{{0, -2}, {2, 0}}, Rows(comm))
	assert.InDelta(t, 0, FrobeniusNorm(Anticommutator(sx, sz)), 1e-15)
}

func TestContract(t *testing.T) {
	a := FromRows([][]float64{{1, 1}, {1, 0}})
	out, err := Contract(a, a, a, a, a)
	require.NoError(t, err)
	// Powers of the Fibonacci Q-matrix.
	assert.Equal(t, [][]float64{{8, 5}, {5, 3}}, Rows(out))

	_, err = Contract(a, mat.NewDense(3, 1, nil))
	assert.Error(t, err)
	_, err = Contract()
	assert.Error(t, err)
}
