package space

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
)

// MultiDiscrete is the space of integer vectors x with
// 0 <= x[i] < sizes[i]
type MultiDiscrete struct {
	sizes []int
	rng   *rand.Rand
}

// NewMultiDiscrete returns a new MultiDiscrete space
func NewMultiDiscrete(sizes []int, seed uint64) *MultiDiscrete {
	for i, size := range sizes {
		if size <= 0 {
			panic(fmt.Sprintf("newMultiDiscrete: size of dimension %d must "+
				"be positive, got %d", i, size))
		}
	}

	s := make([]int, len(sizes))
	copy(s, sizes)
	return &MultiDiscrete{sizes: s, rng: newRand(seed)}
}

// Sizes returns the number of elements in each dimension
func (m *MultiDiscrete) Sizes() []int {
	sizes := make([]int, len(m.sizes))
	copy(sizes, m.sizes)
	return sizes
}

// Len returns the length of vectors in the space
func (m *MultiDiscrete) Len() int {
	return len(m.sizes)
}

// Seed reseeds the random stream of the space
func (m *MultiDiscrete) Seed(seed uint64) {
	m.rng.Seed(seed)
}

// Sample samples each dimension uniformly
func (m *MultiDiscrete) Sample() *mat.VecDense {
	sample := make([]float64, len(m.sizes))
	for i, size := range m.sizes {
		sample[i] = float64(m.rng.Intn(size))
	}
	return mat.NewVecDense(len(sample), sample)
}

// Contains returns whether x is in the space
func (m *MultiDiscrete) Contains(x mat.Vector) bool {
	if x.Len() != len(m.sizes) {
		return false
	}
	for i, size := range m.sizes {
		value := x.AtVec(i)
		if value != math.Trunc(value) || value < 0 || value >= float64(size) {
			return false
		}
	}
	return true
}
