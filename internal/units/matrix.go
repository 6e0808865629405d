package units

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// MasterMatrix maps the log scale factors (ln λ_L, ln λ_T, ln λ_M) to the
// log ratios (ln c, ln ħ, ln G) between SI and collapse units:
//
//	c = L − T,  ħ = 2L − T + M,  G = 3L − 2T − M
var MasterMatrix = [3][3]float64{
	{1, -1, 0},
	{2, -1, 1},
	{3, -2, -1},
}

// MasterDet is the determinant of MasterMatrix.
const MasterDet = -2.0

// MasterInverse is the closed-form inverse of MasterMatrix.
var MasterInverse = [3][3]float64{
	{-1.5, 0.5, 0.5},
	{-2.5, 0.5, 0.5},
	{0.5, 0.5, -0.5},
}

// Scales holds the SI-per-collapse scale factors for length, time and mass.
type Scales struct {
	Length float64
	Time   float64
	Mass   float64
}

// SolveScales recovers the scale factors that carry c*, ħ*, G* onto the
// supplied SI values.
func SolveScales(c, hbar, g float64) (Scales, error) {
	for name, v := range map[string]float64{"c": c, "hbar": hbar, "G": g} {
		if v <= 0 {
			return Scales{}, fmt.Errorf("solve scales: %s must be positive, got %g", name, v)
		}
	}
	rhs := mat.NewVecDense(3, []float64{
		math.Log(c / CStar),
		math.Log(hbar / HbarStar),
		math.Log(g / GStar),
	})
	m := mat.NewDense(3, 3, nil)
	for i, row := range MasterMatrix {
		m.SetRow(i, row[:])
	}
	var logs mat.VecDense
	if err := logs.SolveVec(m, rhs); err != nil {
		return Scales{}, fmt.Errorf("solve scales: %w", err)
	}
	return Scales{
		Length: math.Exp(logs.AtVec(0)),
		Time:   math.Exp(logs.AtVec(1)),
		Mass:   math.Exp(logs.AtVec(2)),
	}, nil
}

// Apply maps the collapse constants through the scale factors.
func (s Scales) Apply() (c, hbar, g float64) {
	c = s.Length / s.Time * CStar
	hbar = s.Mass * s.Length * s.Length / s.Time * HbarStar
	g = math.Pow(s.Length, 3) / (s.Mass * s.Time * s.Time) * GStar
	return c, hbar, g
}
