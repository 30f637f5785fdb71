// Package wrappers implements environment wrappers which alter the
// observations or rewards of an embedded environment
package wrappers

import (
	"fmt"

	env "github.com/samuelfneumann/mdpplayground/environment"
	ts "github.com/samuelfneumann/mdpplayground/timestep"
	"github.com/samuelfneumann/mdpplayground/utils/matutils"
	"gonum.org/v1/gonum/mat"
)

// OneHot converts the discrete observations of an environment into
// concatenated one-hot encodings, one block per observation dimension.
// Block i has as many elements as dimension i has values.
type OneHot struct {
	env.Environment

	sizes           []int
	features        int
	currentTimeStep ts.TimeStep
}

// NewOneHot returns a new OneHot environment wrapper. The observation
// spec of e must be discrete with a lower bound of 0 in each dimension.
func NewOneHot(e env.Environment) (*OneHot, error) {
	spec := e.ObservationSpec()
	if spec.Cardinality != env.Discrete {
		return nil, fmt.Errorf("newOneHot: observations must be discrete")
	}

	sizes := make([]int, spec.Shape.Len())
	features := 0
	for i := range sizes {
		if spec.LowerBound.AtVec(i) != 0 {
			return nil, fmt.Errorf("newOneHot: dimension %d has lower bound "+
				"%v, expected 0", i, spec.LowerBound.AtVec(i))
		}
		sizes[i] = int(spec.UpperBound.AtVec(i)) + 1
		features += sizes[i]
	}

	o := &OneHot{Environment: e, sizes: sizes, features: features}
	step := e.CurrentTimeStep()
	if step.Observation != nil {
		obs, err := o.getObs(step.Observation)
		if err != nil {
			return nil, fmt.Errorf("newOneHot: %w", err)
		}
		step.Observation = obs
	}
	o.currentTimeStep = step

	return o, nil
}

// Reset resets the environment to some starting state
func (o *OneHot) Reset() (ts.TimeStep, error) {
	step, err := o.Environment.Reset()
	if err != nil {
		return ts.TimeStep{}, err
	}

	newObs, err := o.getObs(step.Observation)
	if err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: could not calculate "+
			"observation: %v", err)
	}

	step.Observation = newObs
	o.currentTimeStep = step

	return step, nil
}

// Step takes one environmental step given some action
func (o *OneHot) Step(action *mat.VecDense) (ts.TimeStep, bool, error) {
	step, _, err := o.Environment.Step(action)
	if err != nil {
		return ts.TimeStep{}, true, err
	}

	newObs, err := o.getObs(step.Observation)
	if err != nil {
		return ts.TimeStep{}, true, fmt.Errorf("step: could not calculate "+
			"observation: %v", err)
	}

	step.Observation = newObs
	o.currentTimeStep = step

	return step, step.Last(), nil
}

// CurrentTimeStep returns the current time step in the environment
func (o *OneHot) CurrentTimeStep() ts.TimeStep {
	return o.currentTimeStep
}

// getObs returns the one-hot encoding of a discrete observation
func (o *OneHot) getObs(obs *mat.VecDense) (*mat.VecDense, error) {
	values, err := matutils.VecInts(obs)
	if err != nil {
		return nil, fmt.Errorf("getObs: %w", err)
	}
	if len(values) != len(o.sizes) {
		return nil, fmt.Errorf("getObs: expected observation of length %d, "+
			"got %d", len(o.sizes), len(values))
	}

	newObs := mat.NewVecDense(o.features, nil)
	offset := 0
	for i, v := range values {
		if v < 0 || v >= o.sizes[i] {
			return nil, fmt.Errorf("getObs: dimension %d has value %d out "+
				"of range [0, %d)", i, v, o.sizes[i])
		}
		newObs.SetVec(offset+v, 1.0)
		offset += o.sizes[i]
	}

	return newObs, nil
}

// ObservationSpec returns the observation specification of the
// environment
func (o *OneHot) ObservationSpec() env.Spec {
	sizes := make([]int, o.features)
	for i := range sizes {
		sizes[i] = 2
	}
	return env.NewDiscreteSpec(env.Observation, sizes...)
}

// String returns the string representation of the environment
func (o *OneHot) String() string {
	return fmt.Sprintf("OneHot: %v", o.Environment)
}
