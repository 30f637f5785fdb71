package environment

import (
	"fmt"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// CategoricalStarter returns starting states as vectors sampled from
// independent categorical distributions, one per dimension. Dimension i
// takes values in (0, 1, 2, ... len(weights[i])-1).
//
// All dimensions draw from the same source in order, so reseeding the
// source reseeds the starter.
type CategoricalStarter struct {
	features int
	rand     []distuv.Categorical
}

// NewCategoricalStarter returns a new CategoricalStarter, sampling
// dimension i according to weights[i]
func NewCategoricalStarter(weights [][]float64,
	src rand.Source) (*CategoricalStarter, error) {
	rand := make([]distuv.Categorical, len(weights))
	for i := range rand {
		if len(weights[i]) == 0 {
			return nil, fmt.Errorf("newCategoricalStarter: dimension %d "+
				"has no categories", i)
		}
		if floats.Sum(weights[i]) <= 0 {
			return nil, fmt.Errorf("newCategoricalStarter: dimension %d "+
				"has no probability mass", i)
		}
		rand[i] = distuv.NewCategorical(weights[i], src)
	}

	return &CategoricalStarter{len(weights), rand}, nil
}

// Start returns a starting state vector
func (c *CategoricalStarter) Start() (*mat.VecDense, error) {
	start := make([]float64, c.features)
	for i := range start {
		start[i] = c.rand[i].Rand()
	}

	return mat.NewVecDense(c.features, start), nil
}
