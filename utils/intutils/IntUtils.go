// Package intutils provides utilities for working with ints, including
// overflow-checked products and mixed-radix index conversions
package intutils

import (
	"fmt"
	"math"
)

// Mul multiplies two non-negative ints, returning an error if the
// product overflows an int
func Mul(a, b int) (int, error) {
	if a < 0 || b < 0 {
		return 0, fmt.Errorf("mul: operands must be non-negative, got %d "+
			"and %d", a, b)
	}
	if a != 0 && b > math.MaxInt/a {
		return 0, fmt.Errorf("mul: %d * %d overflows int", a, b)
	}
	return a * b, nil
}

// Prod returns the product of a list of non-negative ints. The product
// of an empty list is 1.
func Prod(ints ...int) (int, error) {
	prod := 1
	for _, val := range ints {
		var err error
		if prod, err = Mul(prod, val); err != nil {
			return 0, fmt.Errorf("prod: %v", err)
		}
	}
	return prod, nil
}

// Pow returns base^exp for non-negative base and exp
func Pow(base, exp int) (int, error) {
	if exp < 0 {
		return 0, fmt.Errorf("pow: negative exponent %d", exp)
	}

	result := 1
	for i := 0; i < exp; i++ {
		var err error
		if result, err = Mul(result, base); err != nil {
			return 0, fmt.Errorf("pow: %d^%d: %v", base, exp, err)
		}
	}
	return result, nil
}

// FallingFactorial returns n * (n-1) * ... * (n-k+1), the number of
// ordered selections of k distinct items from n. If k > n there are no
// such selections and 0 is returned.
func FallingFactorial(n, k int) (int, error) {
	if n < 0 || k < 0 {
		return 0, fmt.Errorf("fallingFactorial: arguments must be "+
			"non-negative, got n = %d, k = %d", n, k)
	}
	if k > n {
		return 0, nil
	}

	result := 1
	for i := n - k + 1; i <= n; i++ {
		var err error
		if result, err = Mul(result, i); err != nil {
			return 0, fmt.Errorf("fallingFactorial: %d P %d: %v", n, k, err)
		}
	}
	return result, nil
}

// Select returns values[indices[0]], values[indices[1]], ...
func Select(values, indices []int) []int {
	selected := make([]int, len(indices))
	for i, index := range indices {
		selected[i] = values[index]
	}
	return selected
}

// Complement returns the sorted indices in [0, n) which are not in
// indices
func Complement(n int, indices []int) []int {
	in := make(map[int]bool, len(indices))
	for _, index := range indices {
		in[index] = true
	}

	var complement []int
	for i := 0; i < n; i++ {
		if !in[i] {
			complement = append(complement, i)
		}
	}
	return complement
}
