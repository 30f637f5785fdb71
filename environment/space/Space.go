// Package space implements seeded sample spaces: discrete ranges,
// multi-discrete grids, and continuous boxes. Each space owns its own
// random stream so that sampling from one space never perturbs
// another.
package space

import (
	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
)

// Space is a set of vectors which can be sampled from and tested for
// membership
type Space interface {
	Sample() *mat.VecDense
	Contains(x mat.Vector) bool

	// Len returns the length of vectors in the space
	Len() int

	// Seed reseeds the random stream of the space
	Seed(seed uint64)
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
