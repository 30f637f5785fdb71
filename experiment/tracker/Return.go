package tracker

import (
	"fmt"

	ts "github.com/samuelfneumann/mdpplayground/timestep"
)

// Return tracks and saves the episodic return in an experiment. When
// an environment returns a TimeStep, this Tracker will extract the
// reward and accumulate the return for each episode in the experiment.
//
// If an environment is wrapped by some environment wrapper which
// modifies rewards, then this Tracker tracks the modified rewards. Use
// Register to track the rewards of the wrapped environment instead.
//
// An episode must finish for this Tracker to save its data. If the last
// episode in an experiment does not finish, that episode's return will
// not be saved.
type Return struct {
	lastTimeStep   int
	currentReturn  float64
	episodeReturns []float64
	filename       string
}

// NewReturn creates and returns a new *Return Tracker
func NewReturn(filename string) *Return {
	return &Return{lastTimeStep: -1, filename: filename}
}

// Track tracks the rewards seen on a timestep. When a new episode
// starts, this method will automatically detect this and start
// accumulating the rewards for the new episode separately.
//
// Track panics if it is called for non-sequential timesteps
func (r *Return) Track(step ts.TimeStep) {
	if step.First() {
		r.currentReturn = 0.0
		r.lastTimeStep = step.Number
		return
	}

	if r.lastTimeStep+1 != step.Number {
		panic(fmt.Sprintf("track: last two timesteps tracked are not "+
			"sequential: timestep %v --> timestep %v were tracked",
			r.lastTimeStep, step.Number))
	}

	r.currentReturn += step.Reward
	r.lastTimeStep = step.Number

	if step.Last() {
		r.episodeReturns = append(r.episodeReturns, r.currentReturn)
		r.currentReturn = 0.0
		r.lastTimeStep = -1
	}
}

// Returns returns the returns of all finished episodes
func (r *Return) Returns() []float64 {
	returns := make([]float64, len(r.episodeReturns))
	copy(returns, r.episodeReturns)
	return returns
}

// Save saves the data tracked by the Return Tracker to disk
func (r *Return) Save() error {
	if err := save(r.filename, r.episodeReturns); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}
