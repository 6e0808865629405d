// Package linalg wraps gonum for the tiny dense matrices the chapter
// checks work with (mostly 2×2 and 3×3).
package linalg

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/talgya/psi-verify/internal/phi"
)

// ErrNotSquare is returned when an operation needs a square matrix.
var ErrNotSquare = errors.New("matrix is not square")

// FromRows builds a dense matrix from row slices.
func FromRows(rows [][]float64) *mat.Dense {
	r := len(rows)
	if r == 0 {
		panic("linalg: empty matrix")
	}
	c := len(rows[0])
	data := make([]float64, 0, r*c)
	for i, row := range rows {
		if len(row) != c {
			panic(fmt.Sprintf("linalg: row %d has %d columns, want %d", i, len(row), c))
		}
		data = append(data, row...)
	}
	return mat.NewDense(r, c, data)
}

// From3 builds a dense matrix from a fixed 3×3 array.
func From3(a [3][3]float64) *mat.Dense {
	return FromRows([][]float64{a[0][:], a[1][:], a[2][:]})
}

// Rows returns the matrix as row slices.
func Rows(m mat.Matrix) [][]float64 {
	r, c := m.Dims()
	out := make([][]float64, r)
	for i := range r {
		out[i] = make([]float64, c)
		for j := range c {
			out[i][j] = m.At(i, j)
		}
	}
	return out
}

func square(m mat.Matrix) (int, error) {
	r, c := m.Dims()
	if r != c {
		return 0, fmt.Errorf("%dx%d: %w", r, c, ErrNotSquare)
	}
	return r, nil
}

// Det returns the determinant.
func Det(m mat.Matrix) (float64, error) {
	if _, err := square(m); err != nil {
		return 0, err
	}
	return mat.Det(m), nil
}

// Inverse returns the inverse, or an error for singular input.
func Inverse(m mat.Matrix) (*mat.Dense, error) {
	if _, err := square(m); err != nil {
		return nil, err
	}
	var inv mat.Dense
	if err := inv.Inverse(m); err != nil {
		return nil, fmt.Errorf("invert: %w", err)
	}
	return &inv, nil
}

// Eigenvalues returns the (possibly complex) eigenvalues of a general
// square matrix, sorted by real part then imaginary part.
func Eigenvalues(m mat.Matrix) ([]complex128, error) {
	if _, err := square(m); err != nil {
		return nil, err
	}
	var eig mat.Eigen
	if ok := eig.Factorize(m, mat.EigenNone); !ok {
		return nil, errors.New("eigen decomposition failed")
	}
	vals := eig.Values(nil)
	sort.Slice(vals, func(i, j int) bool {
		if real(vals[i]) != real(vals[j]) {
			return real(vals[i]) < real(vals[j])
		}
		return imag(vals[i]) < imag(vals[j])
	})
	return vals, nil
}

// RealEigenvalues returns the eigenvalues whose imaginary part is below tol.
func RealEigenvalues(m mat.Matrix, tol float64) ([]float64, error) {
	vals, err := Eigenvalues(m)
	if err != nil {
		return nil, err
	}
	var out []float64
	for _, v := range vals {
		if math.Abs(imag(v)) <= tol {
			out = append(out, real(v))
		}
	}
	return out, nil
}

// SymEigenvalues returns the eigenvalues of a symmetric matrix in
// ascending order.
func SymEigenvalues(m mat.Matrix) ([]float64, error) {
	n, err := square(m)
	if err != nil {
		return nil, err
	}
	sym := mat.NewSymDense(n, nil)
	for i := range n {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, m.At(i, j))
		}
	}
	var es mat.EigenSym
	if ok := es.Factorize(sym, false); !ok {
		return nil, errors.New("symmetric eigen decomposition failed")
	}
	return es.Values(nil), nil
}

// Rank counts singular values above tol.
func Rank(m mat.Matrix, tol float64) int {
	var svd mat.SVD
	if ok := svd.Factorize(m, mat.SVDNone); !ok {
		return 0
	}
	rank := 0
	for _, v := range svd.Values(nil) {
		if v > tol {
			rank++
		}
	}
	return rank
}

// Trace returns the sum of the diagonal.
func Trace(m mat.Matrix) float64 {
	return mat.Trace(m)
}

// TraceRatio returns Tr[M²]/Tr[M]², the purity-style ratio used for
// golden density matrices.
func TraceRatio(m mat.Matrix) float64 {
	var sq mat.Dense
	sq.Mul(m, m)
	tr := mat.Trace(m)
	return mat.Trace(&sq) / (tr * tr)
}

// GoldenToeplitz returns the n×n matrix T_ij = φ^(−|i−j|).
func GoldenToeplitz(n int) *mat.Dense {
	t := mat.NewDense(n, n, nil)
	for i := range n {
		for j := range n {
			d := i - j
			if d < 0 {
				d = -d
			}
			t.Set(i, j, math.Pow(phi.Phi, -float64(d)))
		}
	}
	return t
}

// FrobeniusNorm returns √Σ|m_ij|².
func FrobeniusNorm(m mat.Matrix) float64 {
	return mat.Norm(m, 2)
}

// Commutator returns AB − BA.
func Commutator(a, b mat.Matrix) *mat.Dense {
	var ab, ba, out mat.Dense
	ab.Mul(a, b)
	ba.Mul(b, a)
	out.Sub(&ab, &ba)
	return &out
}

// Anticommutator returns AB + BA.
func Anticommutator(a, b mat.Matrix) *mat.Dense {
	var ab, ba, out mat.Dense
	ab.Mul(a, b)
	ba.Mul(b, a)
	out.Add(&ab, &ba)
	return &out
}

// Contract multiplies a chain of matrices left to right, the way a
// matrix-product tensor network collapses to a single transfer matrix.
func Contract(chain ...mat.Matrix) (*mat.Dense, error) {
	if len(chain) == 0 {
		return nil, errors.New("contract: empty chain")
	}
	r, c := chain[0].Dims()
	acc := mat.NewDense(r, c, nil)
	acc.Copy(chain[0])
	for i, m := range chain[1:] {
		_, ac := acc.Dims()
		mr, _ := m.Dims()
		if ac != mr {
			return nil, fmt.Errorf("contract: link %d has dimension %d, want %d", i+1, mr, ac)
		}
		var next mat.Dense
		next.Mul(acc, m)
		acc = &next
	}
	return acc, nil
}

// EqualApprox reports element-wise agreement within tol.
func EqualApprox(a, b mat.Matrix, tol float64) bool {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ar != br || ac != bc {
		return false
	}
	return mat.EqualApprox(a, b, tol)
}

// SpectralNorm returns the largest singular value.
func SpectralNorm(m mat.Matrix) float64 {
	var svd mat.SVD
	if ok := svd.Factorize(m, mat.SVDNone); !ok {
		return math.NaN()
	}
	vals := svd.Values(nil)
	if len(vals) == 0 {
		return 0
	}
	return vals[0]
}

// FrobeniusCond returns ‖M‖_F·‖M⁻¹‖_F.
func FrobeniusCond(m mat.Matrix) (float64, error) {
	inv, err := Inverse(m)
	if err != nil {
		return 0, err
	}
	return FrobeniusNorm(m) * FrobeniusNorm(inv), nil
}
