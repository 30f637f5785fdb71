package intutils

import "fmt"

// Ravel converts a multi-dimensional index into a single scalar index
// in [0, prod(maxes)). Dimension i of index must lie in [0, maxes[i]).
// The last dimension varies fastest, so that counting upwards in the
// scalar index counts upwards in the last dimension first.
func Ravel(index, maxes []int) (int, error) {
	if len(index) != len(maxes) {
		return 0, fmt.Errorf("ravel: index has %d dimensions but maxes "+
			"has %d", len(index), len(maxes))
	}

	scalar := 0
	for i, max := range maxes {
		if index[i] < 0 || index[i] >= max {
			return 0, fmt.Errorf("ravel: index %v out of range in "+
				"dimension %d with size %d", index, i, max)
		}
		scalar = scalar*max + index[i]
	}
	return scalar, nil
}

// Unravel is the inverse of Ravel. It converts a scalar index in
// [0, prod(maxes)) into its multi-dimensional index.
func Unravel(scalar int, maxes []int) ([]int, error) {
	size, err := Prod(maxes...)
	if err != nil {
		return nil, fmt.Errorf("unravel: %v", err)
	}
	if scalar < 0 || scalar >= size {
		return nil, fmt.Errorf("unravel: scalar %d out of range [0, %d)",
			scalar, size)
	}

	index := make([]int, len(maxes))
	for i := len(maxes) - 1; i >= 0; i-- {
		index[i] = scalar % maxes[i]
		scalar /= maxes[i]
	}
	return index, nil
}
