package phi

import "strings"

// Zeckendorf returns the greedy decomposition of n into non-consecutive
// Fibonacci numbers, largest first. Zeckendorf(0) is empty.
func Zeckendorf(n uint64) []uint64 {
	if n == 0 {
		return nil
	}
	basis := []uint64{1, 2}
	for {
		last := basis[len(basis)-1]
		next := last + basis[len(basis)-2]
		if next < last || next > n {
			break
		}
		basis = append(basis, next)
	}

	var terms []uint64
	rem := n
	for i := len(basis) - 1; i >= 0 && rem > 0; i-- {
		if basis[i] <= rem {
			terms = append(terms, basis[i])
			rem -= basis[i]
			i-- // skip the neighbour
		}
	}
	return terms
}

// IsZeckendorf reports whether terms are distinct non-consecutive
// Fibonacci numbers in descending order.
func IsZeckendorf(terms []uint64) bool {
	idx := make(map[uint64]int)
	for i := 2; i <= maxFib; i++ {
		idx[Fib(i)] = i
	}
	prev := -1
	for _, t := range terms {
		i, ok := idx[t]
		if !ok {
			return false
		}
		if prev != -1 && prev-i < 2 {
			return false
		}
		prev = i
	}
	return true
}

// Sum adds the terms of a decomposition.
func Sum(terms []uint64) uint64 {
	var total uint64
	for _, t := range terms {
		total += t
	}
	return total
}

// PathFromInt returns the Zeckendorf bit string of n over the basis
// 1, 2, 3, 5, ..., most significant bit first.
func PathFromInt(n uint64) string {
	if n == 0 {
		return "0"
	}
	terms := Zeckendorf(n)
	var basis []uint64
	for i := 2; i <= maxFib && Fib(i) <= terms[0]; i++ {
		basis = append(basis, Fib(i))
	}
	width := len(basis)
	used := make(map[uint64]bool, len(terms))
	for _, t := range terms {
		used[t] = true
	}
	var b strings.Builder
	for i := width - 1; i >= 0; i-- {
		if used[basis[i]] {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// PathToInt is the inverse of PathFromInt.
func PathToInt(path string) uint64 {
	basis := ZeckendorfBasis(len(path))
	var n uint64
	for i := range path {
		if path[len(path)-1-i] == '1' {
			n += basis[i]
		}
	}
	return n
}

// IsGoldenPath reports whether a bit string contains no two adjacent 1s.
func IsGoldenPath(path string) bool {
	return !strings.Contains(path, "11")
}

// CountNo11 returns the number of binary strings of length n without
// consecutive 1s, which is F(n+2).
func CountNo11(n int) uint64 {
	return Fib(n + 2)
}

// No11Strings enumerates the binary strings of length n without
// consecutive 1s in lexicographic order.
func No11Strings(n int) []string {
	if n < 0 {
		return nil
	}
	if n == 0 {
		return []string{""}
	}
	var out []string
	var walk func(prefix string)
	walk = func(prefix string) {
		if len(prefix) == n {
			out = append(out, prefix)
			return
		}
		walk(prefix + "0")
		if !strings.HasSuffix(prefix, "1") {
			walk(prefix + "1")
		}
	}
	walk("")
	return out
}
