package units

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/psi-verify/internal/phi"
)

func TestCollapseConstants(t *testing.T) {
	assert.InDelta(t, 0.41667305, HbarStar, 1e-8)
	assert.InDelta(t, 0.3819660113, GStar, 1e-10)
	assert.InDelta(t, phi.Phi*phi.Phi/(2*math.Pi), HbarStar, 1e-15)
}

func TestPlanckUnitsClosedForms(t *testing.T) {
	sqrtPi := math.Sqrt(math.Pi)
	assert.InDelta(t, 1/(4*sqrtPi), PlanckLengthStar(), 1e-15)
	assert.InDelta(t, 1/(8*sqrtPi), PlanckTimeStar(), 1e-15)
	assert.InDelta(t, phi.PhiSquared/sqrtPi, PlanckMassStar(), 1e-14)
}

func TestPlanckUnitsSI(t *testing.T) {
	assert.InEpsilon(t, PlanckLength, PlanckLengthSI(), 1e-6)
	assert.InEpsilon(t, PlanckTime, PlanckTimeSI(), 1e-6)
	assert.InEpsilon(t, PlanckMass, PlanckMassSI(), 1e-6)
}

func TestScaleExponent(t *testing.T) {
	n := ScaleExponent(C, CStar)
	assert.InDelta(t, 39.12, n, 0.1)
	assert.InEpsilon(t, C, Predict(CStar, n), 1e-12)
	assert.InDelta(t, -46.7, ScaleExponent(G, GStar), 0.5)
}

func TestMasterMatrixInverse(t *testing.T) {
	for i := range 3 {
		for j := range 3 {
			sum := 0.0
			for k := range 3 {
				sum += MasterMatrix[i][k] * MasterInverse[k][j]
			}
			want := 0.0
			if i == j {
				want = 1
			}
			assert.InDelta(t, want, sum, 1e-12, "(%d,%d)", i, j)
		}
	}
}

func TestSolveScalesRecoversSI(t *testing.T) {
	s, err := SolveScales(C, Hbar, G)
	require.NoError(t, err)

	c, hbar, g := s.Apply()
	assert.InEpsilon(t, C, c, 1e-10)
	assert.InEpsilon(t, Hbar, hbar, 1e-10)
	assert.InEpsilon(t, G, g, 1e-10)

	_, err = SolveScales(C, 0, G)
	assert.Error(t, err)
}

func TestSolveScalesAgreesWithClosedFormInverse(t *testing.T) {
	s, err := SolveScales(C, Hbar, G)
	require.NoError(t, err)

	rhs := []float64{math.Log(C / CStar), math.Log(Hbar / HbarStar), math.Log(G / GStar)}
	got := []float64{math.Log(s.Length), math.Log(s.Time), math.Log(s.Mass)}
	for i := range 3 {
		want := 0.0
		for j := range 3 {
			want += MasterInverse[i][j] * rhs[j]
		}
		assert.InDelta(t, want, got[i], 1e-9, "row %d", i)
	}
}

func TestHolographicEntropy(t *testing.T) {
	assert.InDelta(t, math.Pi/2, HolographicEntropy(1), 1e-12)
	assert.InDelta(t, 4.93, HolographicEntropy(math.Pi), 0.5)
}
