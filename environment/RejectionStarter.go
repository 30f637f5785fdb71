package environment

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// DefaultMaxRejections is the default number of samples a
// RejectionStarter draws before giving up
const DefaultMaxRejections int = 100_000

// Sampler samples vectors from some distribution
type Sampler interface {
	Sample() *mat.VecDense
}

// RejectionStarter samples starting states from a Sampler, redrawing
// whenever a sample is rejected. This implements a uniform distribution
// over the part of a space which is not rejected, given a uniform
// Sampler.
type RejectionStarter struct {
	sampler       Sampler
	reject        func(*mat.VecDense) bool
	maxRejections int
}

// NewRejectionStarter returns a new RejectionStarter which samples from
// s and rejects samples for which reject returns true. At most
// maxRejections consecutive samples are rejected before Start returns
// an error.
func NewRejectionStarter(s Sampler, reject func(*mat.VecDense) bool,
	maxRejections int) *RejectionStarter {
	if maxRejections <= 0 {
		maxRejections = DefaultMaxRejections
	}
	return &RejectionStarter{s, reject, maxRejections}
}

// Start returns a starting state vector
func (r *RejectionStarter) Start() (*mat.VecDense, error) {
	for i := 0; i < r.maxRejections; i++ {
		start := r.sampler.Sample()
		if !r.reject(start) {
			return start, nil
		}
	}
	return nil, fmt.Errorf("start: rejected %d consecutive samples",
		r.maxRejections)
}
