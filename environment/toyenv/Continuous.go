package toyenv

import (
	"fmt"
	"log/slog"
	"math"

	"golang.org/x/exp/rand"

	env "github.com/samuelfneumann/mdpplayground/environment"
	"github.com/samuelfneumann/mdpplayground/environment/space"
	"github.com/samuelfneumann/mdpplayground/utils/floatutils"
	"github.com/samuelfneumann/mdpplayground/utils/matutils"
	"gonum.org/v1/gonum/mat"
)

// continuous implements the dynamics of continuous toy environments.
// States move by integrating a stack of derivatives whose highest
// order is set by the action.
type continuous struct {
	r      Resolved
	logger *slog.Logger
	rng    *rand.Rand

	observations, actions *space.Box
	region                *terminalRegion
	starter               *env.RejectionStarter
	integrator            integrator
	rewards               trajectoryReward
	noise                 NoiseFunc

	// Current episode
	derivatives [][]float64
	window      [][]float64
}

// newContinuous returns the dynamics of a continuous environment
func newContinuous(r Resolved, rng *rand.Rand,
	logger *slog.Logger) (*continuous, error) {
	c := &continuous{
		r:          r,
		logger:     logger,
		rng:        rng,
		integrator: newIntegrator(r),
		rewards:    newTrajectoryReward(r),
		noise:      r.TransitionNoiseFunc,
	}

	c.observations = space.NewSymmetricBox(r.StateSpaceDim, r.StateSpaceMax,
		r.Streams.StateSpace)
	c.actions = space.NewSymmetricBox(r.ActionSpaceDim, r.ActionSpaceMax,
		r.Streams.ActionSpace)

	c.region = newTerminalRegion(r.TerminalStates, r.TermStateEdge,
		r.StateSpaceRelevantIndices, r.Streams.Env)
	logger.Info("terminal states", "centres", r.TerminalStates,
		"edge", r.TermStateEdge)

	reject := func(state *mat.VecDense) bool {
		return c.region.contains(state)
	}
	c.starter = env.NewRejectionStarter(c.observations, reject,
		env.DefaultMaxRejections)

	return c, nil
}

// reset starts a new episode at rest
func (c *continuous) reset() (*mat.VecDense, error) {
	start, err := c.starter.Start()
	if err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	state := matutils.RawVec(start)
	c.derivatives = c.integrator.zeroDerivatives(state)

	c.window = make([][]float64, c.r.AugmentedStateLength)
	for i := range c.window {
		c.window[i] = floatutils.NaNs(c.r.StateSpaceDim)
	}
	c.window[len(c.window)-1] = copyFloats(state)

	return mat.NewVecDense(len(state), state), nil
}

// step takes a step in the environment. The returned reward excludes
// reward noise.
func (c *continuous) step(action *mat.VecDense,
	stats *EpisodeStats) (*mat.VecDense, float64, error) {
	a, err := c.checkAction(action)
	if err != nil {
		return nil, 0, fmt.Errorf("step: %w", err)
	}

	derivatives := c.integrator.integrate(c.derivatives, a)
	if c.noise != nil {
		for i := range derivatives[0] {
			noise := c.noise(c.rng)
			derivatives[0][i] += noise
			stats.TotalAbsTransitionNoise += math.Abs(noise)
		}
	}
	if c.integrator.clip(derivatives) {
		c.logger.Warn("next state out of bounds, clipping", "warning",
			"out_of_bounds", "next_state", derivatives[0])
	}

	c.derivatives = derivatives
	next := copyFloats(derivatives[0])
	c.window = append(c.window[1:], next)

	reward, err := c.rewards.reward(c.window)
	if err != nil {
		return nil, 0, fmt.Errorf("step: %w", err)
	}
	return mat.NewVecDense(len(next), copyFloats(next)), reward, nil
}

// checkAction returns the elements of action, or the zero action if
// action lies outside the action space
func (c *continuous) checkAction(action mat.Vector) ([]float64, error) {
	if action.Len() != c.r.ActionSpaceDim {
		return nil, fmt.Errorf("checkAction: expected action of dimension "+
			"%d, got %d", c.r.ActionSpaceDim, action.Len())
	}
	if !c.actions.Contains(action) {
		c.logger.Warn("action out of bounds, applying zero action",
			"warning", "out_of_bounds", "action", matutils.RawVec(action))
		return make([]float64, action.Len()), nil
	}
	return matutils.RawVec(action), nil
}

// terminal returns whether state lies in a terminal region
func (c *continuous) terminal(state *mat.VecDense) bool {
	return c.region.contains(state)
}

// transition returns the next state when taking action from state at
// rest, without transition noise
func (c *continuous) transition(state, action *mat.VecDense) (*mat.VecDense,
	error) {
	if state.Len() != c.r.StateSpaceDim {
		return nil, fmt.Errorf("transition: expected state of dimension %d, "+
			"got %d", c.r.StateSpaceDim, state.Len())
	}
	a, err := c.checkAction(action)
	if err != nil {
		return nil, fmt.Errorf("transition: %w", err)
	}

	at := c.integrator.zeroDerivatives(matutils.RawVec(state))
	next := c.integrator.integrate(at, a)
	c.integrator.clip(next)
	return mat.NewVecDense(len(next[0]), next[0]), nil
}

// reward returns the reward for an augmented state, without reward
// noise
func (c *continuous) reward(states []*mat.VecDense) (float64, error) {
	window := make([][]float64, len(states))
	for i, state := range states {
		if state.Len() != c.r.StateSpaceDim {
			return 0, fmt.Errorf("reward: state %d has dimension %d, "+
				"expected %d", i, state.Len(), c.r.StateSpaceDim)
		}
		window[i] = matutils.RawVec(state)
	}
	return c.rewards.reward(window)
}

// info returns the hidden state of the current episode
func (c *continuous) info() Info {
	augmented := make([]*mat.VecDense, len(c.window))
	for i, state := range c.window {
		augmented[i] = mat.NewVecDense(len(state), copyFloats(state))
	}
	derivatives := make([]*mat.VecDense, len(c.derivatives))
	for i, d := range c.derivatives {
		derivatives[i] = mat.NewVecDense(len(d), copyFloats(d))
	}

	return Info{
		CurrentState: mat.NewVecDense(len(c.derivatives[0]),
			copyFloats(c.derivatives[0])),
		AugmentedState:   augmented,
		StateDerivatives: derivatives,
	}
}

func (c *continuous) observationSpace() space.Space {
	return c.observations
}

func (c *continuous) actionSpace() space.Space {
	return c.actions
}

// observationSpec returns the observation specification of the
// environment
func (c *continuous) observationSpec() env.Spec {
	return boxSpec(env.Observation, c.observations)
}

// actionSpec returns the action specification of the environment
func (c *continuous) actionSpec() env.Spec {
	return boxSpec(env.Action, c.actions)
}

// boxSpec returns the specification of a Box
func boxSpec(t env.SpecType, b *space.Box) env.Spec {
	lower := make([]float64, b.Len())
	upper := make([]float64, b.Len())
	for i, bound := range b.Bounds() {
		lower[i], upper[i] = bound.Min, bound.Max
	}
	return env.NewBoundedSpec(t, lower, upper, env.Continuous)
}
