package entropy

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Perturber produces smooth, seed-determined perturbations. Stochastic
// checks use it to degrade a structure before verifying that a
// correction step restores it.
type Perturber struct {
	noise       opensimplex.Noise
	Octaves     int
	Frequency   float64
	Persistence float64
	Amplitude   float64
}

// NewPerturber creates a perturber whose output lies in [−amplitude, amplitude].
func NewPerturber(seed int64, amplitude float64) *Perturber {
	return &Perturber{
		noise:       opensimplex.NewNormalized(seed),
		Octaves:     4,
		Frequency:   0.37,
		Persistence: 0.5,
		Amplitude:   amplitude,
	}
}

// At returns the perturbation at grid point (i, j).
func (p *Perturber) At(i, j int) float64 {
	// Offset off the integer lattice, where simplex noise is degenerate.
	x, y := float64(i)+0.31, float64(j)+0.17
	v := octaveNoise(p.noise, x, y, p.Octaves, p.Frequency, p.Persistence)
	return (2*v - 1) * p.Amplitude
}

// Vector returns n perturbations along row row.
func (p *Perturber) Vector(row, n int) []float64 {
	out := make([]float64, n)
	for j := range out {
		out[j] = p.At(row, j)
	}
	return out
}

// octaveNoise layers several frequencies of normalized simplex noise.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
