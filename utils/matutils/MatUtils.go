// Package matutils implements utility function for working with mat.Matrix
// structs
package matutils

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// VecInts returns the elements of a vector as ints. An error is
// returned if any element is not integral.
func VecInts(v mat.Vector) ([]int, error) {
	ints := make([]int, v.Len())
	for i := range ints {
		value := v.AtVec(i)
		if math.IsNaN(value) || value != math.Trunc(value) {
			return nil, fmt.Errorf("vecInts: element %d = %v is not an "+
				"integer", i, value)
		}
		ints[i] = int(value)
	}
	return ints, nil
}

// IntsVec returns a new vector holding ints
func IntsVec(ints ...int) *mat.VecDense {
	data := make([]float64, len(ints))
	for i, value := range ints {
		data[i] = float64(value)
	}
	return mat.NewVecDense(len(data), data)
}

// RawVec returns a copy of the elements of v
func RawVec(v mat.Vector) []float64 {
	raw := make([]float64, v.Len())
	for i := range raw {
		raw[i] = v.AtVec(i)
	}
	return raw
}

// SelectVec returns the elements of v at indices
func SelectVec(v []float64, indices []int) []float64 {
	selected := make([]float64, len(indices))
	for i, index := range indices {
		selected[i] = v[index]
	}
	return selected
}
