package toyenv

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/mdpplayground/environment/space"
	"github.com/samuelfneumann/mdpplayground/utils/floatutils"
	"gonum.org/v1/gonum/spatial/r1"
)

// TransitionTable is the deterministic transition function of a
// discrete state space: it maps each (state, action) pair to the next
// state. Terminal states transition to themselves under every action.
type TransitionTable struct {
	next [][]int
}

// newTransitionTable synthesizes a new TransitionTable over the states
// of states, drawing next states from states. If completelyConnected
// is true, the next states of each state are drawn without replacement
// so that each action leads to a different state.
func newTransitionTable(states *space.Discrete, numActions int,
	completelyConnected bool, terminal []int) (*TransitionTable, error) {
	next := make([][]int, states.N())
	for s := range next {
		row, err := states.SampleN(numActions, !completelyConnected)
		if err != nil {
			return nil, fmt.Errorf("newTransitionTable: %w", err)
		}
		next[s] = row
	}

	// Terminal states are absorbing
	for _, s := range terminal {
		for a := range next[s] {
			next[s][a] = s
		}
	}

	return &TransitionTable{next: next}, nil
}

// Next returns the next state when taking action in state
func (t *TransitionTable) Next(state, action int) int {
	return t.next[state][action]
}

// Row returns the next states of state under each action
func (t *TransitionTable) Row(state int) []int {
	row := make([]int, len(t.next[state]))
	copy(row, t.next[state])
	return row
}

// States returns the number of states in the table
func (t *TransitionTable) States() int {
	return len(t.next)
}

// Actions returns the number of actions in the table
func (t *TransitionTable) Actions() int {
	if len(t.next) == 0 {
		return 0
	}
	return len(t.next[0])
}

// noisyNext samples the next state around the deterministic next state:
// next with probability 1 - noise, and any other state of states with
// probability noise / (N - 1)
func noisyNext(next int, noise float64, states *space.Discrete) (int, error) {
	if noise == 0 || states.N() < 2 {
		return next, nil
	}

	weights := make([]float64, states.N())
	for i := range weights {
		weights[i] = noise / float64(states.N()-1)
	}
	weights[next] = 1 - noise

	sample, err := states.SampleWeighted(weights)
	if err != nil {
		return 0, fmt.Errorf("noisyNext: %w", err)
	}
	return sample, nil
}

// integrator moves continuous states by integrating a stack of state
// derivatives, the 0th of which is the state itself. Actions set the
// highest derivative, scaled by the inverse of the inertia.
type integrator struct {
	order      int
	inertia    float64
	timeUnit   float64
	factorials []float64
	bounds     []r1.Interval
}

func newIntegrator(r Resolved) integrator {
	bounds := make([]r1.Interval, r.StateSpaceDim)
	for i := range bounds {
		bounds[i] = r1.Interval{Min: -r.StateSpaceMax, Max: r.StateSpaceMax}
	}

	return integrator{
		order:      r.TransitionDynamicsOrder,
		inertia:    r.Inertia,
		timeUnit:   r.TimeUnit,
		factorials: floatutils.Factorials(r.TransitionDynamicsOrder),
		bounds:     bounds,
	}
}

// zeroDerivatives returns a derivative stack at rest in state
func (in integrator) zeroDerivatives(state []float64) [][]float64 {
	derivatives := make([][]float64, in.order+1)
	derivatives[0] = copyFloats(state)
	for i := 1; i <= in.order; i++ {
		derivatives[i] = make([]float64, len(state))
	}
	return derivatives
}

// integrate returns the derivative stack after one time unit of
// applying action. Each derivative accumulates the truncated Taylor
// expansion of the derivatives above it, as they were before the
// update. derivatives is not modified.
func (in integrator) integrate(derivatives [][]float64,
	action []float64) [][]float64 {
	before := make([][]float64, len(derivatives))
	for i := range derivatives {
		before[i] = copyFloats(derivatives[i])
	}
	for d := range action {
		before[in.order][d] = action[d] / in.inertia
	}

	after := make([][]float64, len(before))
	for i := range before {
		after[i] = copyFloats(before[i])
	}
	for i := 0; i < in.order; i++ {
		for j := 1; j <= in.order-i; j++ {
			coeff := math.Pow(in.timeUnit, float64(j)) / in.factorials[j-1]
			for d := range after[i] {
				after[i][d] += before[i+j][d] * coeff
			}
		}
	}
	return after
}

// clip clips the state of a derivative stack to the state bounds. If
// the state was clipped, all higher derivatives are zeroed and true is
// returned.
func (in integrator) clip(derivatives [][]float64) bool {
	if !floatutils.ClipSlice(derivatives[0], in.bounds) {
		return false
	}
	for i := 1; i < len(derivatives); i++ {
		for d := range derivatives[i] {
			derivatives[i][d] = 0
		}
	}
	return true
}
