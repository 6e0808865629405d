package phi

import (
	"fmt"
	"math"
)

// maxFib is the largest index whose Fibonacci number fits in a uint64.
const maxFib = 93

// Fib returns the n-th Fibonacci number with F(0)=0, F(1)=1.
// Negative n returns 0.
func Fib(n int) uint64 {
	if n <= 0 {
		return 0
	}
	if n > maxFib {
		panic(fmt.Sprintf("phi: F(%d) overflows uint64", n))
	}
	var a, b uint64 = 0, 1
	for i := 1; i < n; i++ {
		a, b = b, a+b
	}
	return b
}

// FibFloat returns F(n) as a float64.
func FibFloat(n int) float64 {
	return float64(Fib(n))
}

// Binet returns the closed form (φⁿ − (−φ)⁻ⁿ)/√5.
func Binet(n int) float64 {
	psi := -PhiInv
	return (math.Pow(Phi, float64(n)) - math.Pow(psi, float64(n))) / Sqrt5
}

// Lucas returns the n-th Lucas number with L(0)=2, L(1)=1.
func Lucas(n int) uint64 {
	if n <= 0 {
		return 2
	}
	var a, b uint64 = 2, 1
	for i := 1; i < n; i++ {
		a, b = b, a+b
	}
	return b
}

// Sequence returns F(1)..F(n).
func Sequence(n int) []uint64 {
	seq := make([]uint64, 0, n)
	for i := 1; i <= n; i++ {
		seq = append(seq, Fib(i))
	}
	return seq
}

// ZeckendorfBasis returns the first n distinct Fibonacci numbers used as
// the Zeckendorf basis: 1, 2, 3, 5, 8, ...
func ZeckendorfBasis(n int) []uint64 {
	basis := make([]uint64, 0, n)
	for i := 2; len(basis) < n; i++ {
		basis = append(basis, Fib(i))
	}
	return basis
}
