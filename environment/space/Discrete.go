package space

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// Discrete is the space of integers (0, 1, ... n-1). As a Space, its
// vectors have a single element.
type Discrete struct {
	n   int
	rng *rand.Rand
}

// NewDiscrete returns a new Discrete space of size n
func NewDiscrete(n int, seed uint64) *Discrete {
	if n <= 0 {
		panic(fmt.Sprintf("newDiscrete: size must be positive, got %d", n))
	}
	return &Discrete{n: n, rng: newRand(seed)}
}

// N returns the number of elements in the space
func (d *Discrete) N() int {
	return d.n
}

// Len returns the length of vectors in the space
func (d *Discrete) Len() int {
	return 1
}

// Seed reseeds the random stream of the space
func (d *Discrete) Seed(seed uint64) {
	d.rng.Seed(seed)
}

// SampleIndex samples an element uniformly
func (d *Discrete) SampleIndex() int {
	return d.rng.Intn(d.n)
}

// Sample samples an element uniformly and returns it as a vector
func (d *Discrete) Sample() *mat.VecDense {
	return mat.NewVecDense(1, []float64{float64(d.SampleIndex())})
}

// SampleN samples k elements uniformly, either with or without
// replacement. Sampling more than N() elements without replacement is
// an error.
func (d *Discrete) SampleN(k int, replace bool) ([]int, error) {
	if k < 0 {
		return nil, fmt.Errorf("sampleN: cannot sample %d elements", k)
	}

	samples := make([]int, k)
	if k == 0 {
		return samples, nil
	}

	if replace {
		for i := range samples {
			samples[i] = d.SampleIndex()
		}
		return samples, nil
	}

	if k > d.n {
		return nil, fmt.Errorf("sampleN: cannot sample %d elements without "+
			"replacement from a space of size %d", k, d.n)
	}
	sampleuv.WithoutReplacement(samples, d.n, d.rng)
	return samples, nil
}

// SampleWeighted samples an element with probability proportional to
// weights
func (d *Discrete) SampleWeighted(weights []float64) (int, error) {
	if len(weights) != d.n {
		return 0, fmt.Errorf("sampleWeighted: expected %d weights, got %d",
			d.n, len(weights))
	}
	if floats.Min(weights) < 0 || floats.Sum(weights) <= 0 {
		return 0, fmt.Errorf("sampleWeighted: weights must be non-negative "+
			"with positive sum, got %v", weights)
	}

	c := distuv.NewCategorical(weights, d.rng)
	return int(c.Rand()), nil
}

// ContainsIndex returns whether i is in the space
func (d *Discrete) ContainsIndex(i int) bool {
	return i >= 0 && i < d.n
}

// Contains returns whether x is a single-element vector holding an
// element of the space
func (d *Discrete) Contains(x mat.Vector) bool {
	if x.Len() != 1 {
		return false
	}
	value := x.AtVec(0)
	if value != math.Trunc(value) {
		return false
	}
	return d.ContainsIndex(int(value))
}
