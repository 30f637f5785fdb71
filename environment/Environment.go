// Package environment outlines the interfaces and structs needed to
// implement concrete environments
package environment

import (
	ts "github.com/samuelfneumann/mdpplayground/timestep"
	"gonum.org/v1/gonum/mat"
)

// Starter implements a distribution of starting states and samples starting
// states for environments
type Starter interface {
	Start() (*mat.VecDense, error)
}

// Ender determines when an episode should end. End returns whether the
// argument TimeStep is the last in the episode, and modifies it
// accordingly if so.
type Ender interface {
	End(*ts.TimeStep) bool
}

// Environment implements a simualted environment. Environments start
// ready to use after construction.
type Environment interface {
	Reset() (ts.TimeStep, error) // Resets between episodes
	Step(action *mat.VecDense) (ts.TimeStep, bool, error)
	CurrentTimeStep() ts.TimeStep

	RewardSpec() Spec
	DiscountSpec() Spec
	ObservationSpec() Spec
	ActionSpec() Spec
}
