// Package toyenv implements toy environments: Markov decision
// processes synthesized from meta-parameters which control how hard
// they are along independent axes, such as reward delay, reward
// sparsity, the length of rewarding state sequences, transition and
// reward noise, terminal state density, and the number of irrelevant
// state dimensions.
//
// Discrete environments have randomly generated transition tables and
// are rewarded for visiting randomly selected sequences of states.
// Continuous environments move by integrating the action over a stack
// of state derivatives and are rewarded for moving along a line or
// towards a point.
package toyenv

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/google/uuid"
	"golang.org/x/exp/rand"

	env "github.com/samuelfneumann/mdpplayground/environment"
	"github.com/samuelfneumann/mdpplayground/environment/space"
	ts "github.com/samuelfneumann/mdpplayground/timestep"
	"github.com/samuelfneumann/mdpplayground/utils/matutils"
	"gonum.org/v1/gonum/mat"
)

// dynamics is implemented by the discrete and continuous halves of a
// ToyEnv
type dynamics interface {
	reset() (*mat.VecDense, error)
	step(action *mat.VecDense, stats *EpisodeStats) (*mat.VecDense, float64,
		error)
	terminal(state *mat.VecDense) bool

	// Query mode
	transition(state, action *mat.VecDense) (*mat.VecDense, error)
	reward(states []*mat.VecDense) (float64, error)

	info() Info
	observationSpace() space.Space
	actionSpace() space.Space
	observationSpec() env.Spec
	actionSpec() env.Spec
}

// ToyEnv is a toy environment. Its transition and reward functions are
// synthesized once at construction, after which the environment is
// stepped through episodes like any other environment.
//
// A ToyEnv is not safe for concurrent use.
type ToyEnv struct {
	id     uuid.UUID
	config Resolved
	logger *slog.Logger

	rng *rand.Rand

	dynamics
	ender env.Enders

	currentStep ts.TimeStep
	stats       EpisodeStats
	episodes    int
}

var _ env.Environment = &ToyEnv{}

// New returns a new ToyEnv with the given configuration, along with
// the first TimeStep of its first episode. If logger is nil, nothing is
// logged. A *ConfigError is returned if c is invalid.
func New(c Config, logger *slog.Logger) (*ToyEnv, ts.TimeStep, error) {
	r, err := c.Resolve()
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: %w", err)
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	id := uuid.New()
	logger = logger.With("component", "toyenv", "env_id", id.String())

	t := &ToyEnv{
		id:     id,
		config: r,
		logger: logger,
		rng:    rand.New(rand.NewSource(r.Streams.Env)),
	}
	logger.Info("seeds", "seeds", r.Streams)

	if r.Discrete() {
		t.dynamics, err = newDiscrete(r, t.rng, logger)
	} else {
		t.dynamics, err = newContinuous(r, t.rng, logger)
	}
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: %w", err)
	}

	var limit env.Ender
	if r.Horizon > 0 {
		limit = env.NewStepLimit(r.Horizon)
	}
	t.ender = env.NewEnders(env.NewStateEnder(t.terminal,
		r.TermStateReward), limit)

	step, err := t.Reset()
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("new: %w", err)
	}
	return t, step, nil
}

// Reset starts a new episode and returns its first TimeStep
func (t *ToyEnv) Reset() (ts.TimeStep, error) {
	if t.episodes > 0 {
		t.logger.Info("episode statistics", "stats", t.stats)
	}
	t.episodes++

	state, err := t.dynamics.reset()
	if err != nil {
		return ts.TimeStep{}, fmt.Errorf("reset: %w", err)
	}
	t.stats = EpisodeStats{Episode: t.episodes}

	t.currentStep = ts.New(ts.First, 0, t.config.Discount, state, 0)
	t.logger.Debug("reset", "state", matutils.RawVec(state))
	return t.currentStep, nil
}

// Step takes one step in the environment. It returns the next TimeStep
// and whether the episode has ended, either because a terminal state
// was reached or because the horizon was hit. Episodes do not reset
// automatically.
func (t *ToyEnv) Step(action *mat.VecDense) (ts.TimeStep, bool, error) {
	state, reward, err := t.dynamics.step(action, &t.stats)
	if err != nil {
		return ts.TimeStep{}, false, fmt.Errorf("step: %w", err)
	}
	t.stats.TotalTransitions++
	t.stats.TotalReward += reward

	if t.config.RewardNoise != nil {
		noise := t.config.RewardNoise(t.rng)
		t.stats.TotalAbsRewardNoise += math.Abs(noise)
		reward += noise
	}

	step := ts.New(ts.Mid, reward, t.config.Discount, state,
		t.currentStep.Number+1)
	t.ender.End(&step)

	if t.logger.Enabled(context.Background(), slog.LevelDebug) {
		t.logger.Debug("step", "state",
			matutils.RawVec(t.currentStep.Observation), "action",
			matutils.RawVec(action), "next_state", matutils.RawVec(state),
			"reward", step.Reward)
	}

	t.currentStep = step
	return step, step.Last(), nil
}

// P returns the next state when taking action in state, without
// transition noise and without changing the current episode. Continuous
// environments start the transition from rest.
func (t *ToyEnv) P(state, action *mat.VecDense) (*mat.VecDense, error) {
	next, err := t.dynamics.transition(state, action)
	if err != nil {
		return nil, fmt.Errorf("p: %w", err)
	}
	return next, nil
}

// R returns the reward for a transition leading to the augmented state
// states, without reward noise and without changing the current
// episode. The augmented state holds AugmentedStateLength states,
// oldest first, with NaN states for positions not yet filled. Rewards
// depend only on states, the action is ignored. The terminal state
// reward is not included.
func (t *ToyEnv) R(states []*mat.VecDense, action *mat.VecDense) (float64,
	error) {
	reward, err := t.dynamics.reward(states)
	if err != nil {
		return 0, fmt.Errorf("r: %w", err)
	}
	return reward, nil
}

// Seed reseeds the random stream of the environment, which drives the
// initial states of discrete environments and all continuous noise.
// The spaces of the environment, which draw continuous initial states
// and discrete transition noise, are not reseeded. The seed is
// returned.
func (t *ToyEnv) Seed(seed uint64) uint64 {
	t.rng.Seed(seed)
	t.logger.Info("seeded environment", "seed", seed)
	return seed
}

// Terminal returns whether state is terminal
func (t *ToyEnv) Terminal(state *mat.VecDense) bool {
	return t.dynamics.terminal(state)
}

// CurrentTimeStep returns the last TimeStep that occurred in the
// environment
func (t *ToyEnv) CurrentTimeStep() ts.TimeStep {
	return t.currentStep
}

// Info returns the hidden state of the environment
func (t *ToyEnv) Info() Info {
	return t.dynamics.info()
}

// Stats returns the statistics of the current episode
func (t *ToyEnv) Stats() EpisodeStats {
	return t.stats
}

// Config returns the resolved configuration of the environment
func (t *ToyEnv) Config() Resolved {
	return t.config.Copy()
}

// ID returns the unique ID of the environment, used to tell apart the
// logs of different environments
func (t *ToyEnv) ID() uuid.UUID {
	return t.id
}

// ObservationSpace returns the space of states
func (t *ToyEnv) ObservationSpace() space.Space {
	return t.dynamics.observationSpace()
}

// ActionSpace returns the space of actions
func (t *ToyEnv) ActionSpace() space.Space {
	return t.dynamics.actionSpace()
}

// ObservationSpec returns the observation specification of the
// environment
func (t *ToyEnv) ObservationSpec() env.Spec {
	return t.dynamics.observationSpec()
}

// ActionSpec returns the action specification of the environment
func (t *ToyEnv) ActionSpec() env.Spec {
	return t.dynamics.actionSpec()
}

// RewardSpec returns the reward specification of the environment
func (t *ToyEnv) RewardSpec() env.Spec {
	return env.NewScalarSpec(env.Reward, math.Inf(-1), math.Inf(1))
}

// DiscountSpec returns the discount specification of the environment
func (t *ToyEnv) DiscountSpec() env.Spec {
	return env.NewScalarSpec(env.Discount, t.config.Discount,
		t.config.Discount)
}

// String returns a string representation of the environment
func (t *ToyEnv) String() string {
	str := "ToyEnv %v  |  %v  |  State: %v"
	return fmt.Sprintf(str, t.id, t.config.StateSpaceType,
		mat.Formatted(t.currentStep.Observation.T()))
}
