package space

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"
)

// Box is an axis-aligned, possibly unbounded, hyper-rectangle in R^n.
//
// Sampling is uniform along dimensions bounded on both sides. Along
// dimensions bounded on a single side, samples are the bound shifted by
// an exponential sample, and along dimensions without bounds, samples
// are standard normal.
type Box struct {
	bounds []r1.Interval
	rng    *rand.Rand

	// uniform is used if every dimension is bounded
	uniform *distmv.Uniform
}

// NewBox returns a new Box with the given bounds per dimension
func NewBox(bounds []r1.Interval, seed uint64) *Box {
	b := make([]r1.Interval, len(bounds))
	for i, bound := range bounds {
		if bound.Min > bound.Max {
			panic(fmt.Sprintf("newBox: dimension %d has min %v > max %v", i,
				bound.Min, bound.Max))
		}
		b[i] = bound
	}

	box := &Box{bounds: b, rng: newRand(seed)}
	if box.Bounded() {
		box.uniform = distmv.NewUniform(b, box.rng)
	}
	return box
}

// NewSymmetricBox returns a new Box of dimension dims with every
// dimension bounded in [-max, max]
func NewSymmetricBox(dims int, max float64, seed uint64) *Box {
	bounds := make([]r1.Interval, dims)
	for i := range bounds {
		bounds[i] = r1.Interval{Min: -max, Max: max}
	}
	return NewBox(bounds, seed)
}

// Bounds returns the bounds of each dimension
func (b *Box) Bounds() []r1.Interval {
	bounds := make([]r1.Interval, len(b.bounds))
	copy(bounds, b.bounds)
	return bounds
}

// Bounded returns whether every dimension is bounded on both sides
func (b *Box) Bounded() bool {
	for _, bound := range b.bounds {
		if math.IsInf(bound.Min, 0) || math.IsInf(bound.Max, 0) {
			return false
		}
	}
	return true
}

// Len returns the length of vectors in the space
func (b *Box) Len() int {
	return len(b.bounds)
}

// Seed reseeds the random stream of the space
func (b *Box) Seed(seed uint64) {
	b.rng.Seed(seed)
}

// Sample samples a vector from the Box
func (b *Box) Sample() *mat.VecDense {
	if b.uniform != nil {
		return mat.NewVecDense(len(b.bounds), b.uniform.Rand(nil))
	}

	sample := make([]float64, len(b.bounds))
	for i, bound := range b.bounds {
		lowInf, highInf := math.IsInf(bound.Min, 0), math.IsInf(bound.Max, 0)
		switch {
		case lowInf && highInf:
			sample[i] = distuv.Normal{Mu: 0, Sigma: 1, Src: b.rng}.Rand()

		case lowInf:
			sample[i] = bound.Max - distuv.Exponential{Rate: 1, Src: b.rng}.Rand()

		case highInf:
			sample[i] = bound.Min + distuv.Exponential{Rate: 1, Src: b.rng}.Rand()

		default:
			sample[i] = distuv.Uniform{Min: bound.Min, Max: bound.Max,
				Src: b.rng}.Rand()
		}
	}
	return mat.NewVecDense(len(sample), sample)
}

// Contains returns whether x is in the Box
func (b *Box) Contains(x mat.Vector) bool {
	if x.Len() != len(b.bounds) {
		return false
	}
	for i, bound := range b.bounds {
		value := x.AtVec(i)
		if math.IsNaN(value) || value < bound.Min || value > bound.Max {
			return false
		}
	}
	return true
}
