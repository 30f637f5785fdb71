package wrappers

import (
	"fmt"

	env "github.com/samuelfneumann/mdpplayground/environment"
	ts "github.com/samuelfneumann/mdpplayground/timestep"
	"gonum.org/v1/gonum/mat"
)

// AverageReward wraps an environment and alters rewards so that the
// differential reward is returned for each action, turning an episodic
// toy environment into a continuing task for average reward methods.
//
// The average reward is estimated as an exponential moving average of
// the rewards of the embedded environment:
//
//		avgReward <- avgReward + learningRate * (reward - avgReward)
//
// AverageReward itself implements the environment.Environment
// interface, and is therefore itself an Environment.
type AverageReward struct {
	env.Environment
	avgReward    float64
	learningRate float64

	currentTimeStep ts.TimeStep
}

// NewAverageReward creates and returns a new AverageReward Environment
// wrapper. The init parameter is the initial value for the average
// reward, usually set to 0.
func NewAverageReward(e env.Environment, init,
	learningRate float64) (*AverageReward, error) {
	if learningRate <= 0 || learningRate > 1 {
		return nil, fmt.Errorf("newAverageReward: learning rate must be in "+
			"(0, 1], got %v", learningRate)
	}

	// AverageReward does not use discounting
	step := e.CurrentTimeStep()
	step.Discount = 1.0

	return &AverageReward{
		Environment:     e,
		avgReward:       init,
		learningRate:    learningRate,
		currentTimeStep: step,
	}, nil
}

// Reset resets the environment and returns a starting state. The
// average reward estimate persists across episodes.
func (a *AverageReward) Reset() (ts.TimeStep, error) {
	step, err := a.Environment.Reset()
	if err != nil {
		return ts.TimeStep{}, err
	}
	step.Discount = 1.0

	a.currentTimeStep = step
	return step, nil
}

// Step takes one environmental step given action and returns the next
// timestep and whether or not the episode has ended
func (a *AverageReward) Step(action *mat.VecDense) (ts.TimeStep, bool,
	error) {
	step, _, err := a.Environment.Step(action)
	if err != nil {
		return ts.TimeStep{}, true, err
	}

	// Update avgReward_{t-1} -> avgReward_{t} with R_{t}, then return the
	// differential reward R_{t} - avgReward_{t}
	a.avgReward += a.learningRate * (step.Reward - a.avgReward)
	step.Reward -= a.avgReward
	step.Discount = 1.0

	a.currentTimeStep = step
	return step, step.Last(), nil
}

// AvgReward returns the current average reward estimate
func (a *AverageReward) AvgReward() float64 {
	return a.avgReward
}

// CurrentTimeStep returns the current time step in the environment
func (a *AverageReward) CurrentTimeStep() ts.TimeStep {
	return a.currentTimeStep
}

// DiscountSpec returns the discount specification for the environment.
// Average reward setting does not use discounting, so the discount
// value is always set to 1.0.
func (a *AverageReward) DiscountSpec() env.Spec {
	discountSpec := a.Environment.DiscountSpec()

	bounds := make([]float64, discountSpec.Shape.Len())
	for i := range bounds {
		bounds[i] = 1.0
	}

	vecBounds := mat.NewVecDense(len(bounds), bounds)
	discountSpec.LowerBound = vecBounds
	discountSpec.UpperBound = vecBounds

	return discountSpec
}

// String returns a string representation of the AverageReward
// environment
func (a *AverageReward) String() string {
	return fmt.Sprintf("Average Reward: %v", a.Environment)
}
