package environment

import (
	ts "github.com/samuelfneumann/mdpplayground/timestep"
	"gonum.org/v1/gonum/mat"
)

// StateEnder ends an episode when the observation of a TimeStep
// satisfies a predicate, usually membership in a set of terminal
// states. A fixed reward is added to the last TimeStep.
type StateEnder struct {
	terminal func(*mat.VecDense) bool
	reward   float64
}

// NewStateEnder returns a new StateEnder which ends episodes in states
// for which terminal returns true, adding reward to the reward of the
// last TimeStep
func NewStateEnder(terminal func(*mat.VecDense) bool,
	reward float64) *StateEnder {
	return &StateEnder{terminal: terminal, reward: reward}
}

// End ends the episode with EndType TerminalStateReached if the
// observation of t is terminal
func (s *StateEnder) End(t *ts.TimeStep) bool {
	if !s.terminal(t.Observation) {
		return false
	}
	t.StepType = ts.Last
	t.SetEnd(ts.TerminalStateReached)
	t.Reward += s.reward
	return true
}

// StepLimit ends episodes with EndType Timeout once they reach a fixed
// number of steps
type StepLimit struct {
	episodeSteps int
}

// NewStepLimit creates and returns a new step limit
func NewStepLimit(episodeSteps int) StepLimit {
	return StepLimit{episodeSteps}
}

// End ends the episode if t is at or beyond the step limit
func (s StepLimit) End(t *ts.TimeStep) bool {
	if t.Number < s.episodeSteps {
		return false
	}
	t.StepType = ts.Last
	t.SetEnd(ts.Timeout)
	return true
}

// Enders checks a list of Enders in order. Only the first Ender which
// ends the episode modifies the TimeStep, so a terminal state reached
// at the step limit keeps its terminal EndType and reward.
type Enders []Ender

// NewEnders returns the Enders in e, skipping nil Enders
func NewEnders(e ...Ender) Enders {
	enders := make(Enders, 0, len(e))
	for _, ender := range e {
		if ender != nil {
			enders = append(enders, ender)
		}
	}
	return enders
}

// End ends the episode if any of the Enders does
func (e Enders) End(t *ts.TimeStep) bool {
	for _, ender := range e {
		if ender.End(t) {
			return true
		}
	}
	return false
}
