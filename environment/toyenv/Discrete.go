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

// discrete implements the dynamics of discrete and multi-discrete
// toy environments. Internally, states and actions are the scalar
// indices of their relevant and irrelevant parts.
type discrete struct {
	r      Resolved
	logger *slog.Logger
	rng    *rand.Rand

	splitter                         *Splitter
	relevantStates, irrelevantStates *space.Discrete
	observations, actions            space.Space

	terminalStates        []int
	isTerminal            []bool
	starter               *env.CategoricalStarter
	transitions           *TransitionTable
	irrelevantTransitions *TransitionTable
	sequences             [][]int
	rewards               *sequenceReward

	// Current episode
	state, irrelevantState int
	current                *mat.VecDense
	window                 []int
	remaining              [][][]int
}

// newDiscrete synthesizes the terminal states, initial state
// distribution, transition tables, and rewardable sequences of a
// discrete environment
func newDiscrete(r Resolved, rng *rand.Rand,
	logger *slog.Logger) (*discrete, error) {
	splitter, err := NewSplitter(r)
	if err != nil {
		return nil, fmt.Errorf("newDiscrete: %w", err)
	}

	d := &discrete{
		r:               r,
		logger:          logger,
		rng:             rng,
		splitter:        splitter,
		irrelevantState: NotAState,
	}

	// Spaces
	seeds := r.Streams
	d.relevantStates = space.NewDiscrete(r.RelevantStateSpaceSize,
		seeds.RelevantStateSpace)
	relevantActions := space.NewDiscrete(r.RelevantActionSpaceSize,
		seeds.RelevantActionSpace)
	if r.IrrelevantStateSpaceSize > 0 {
		d.irrelevantStates = space.NewDiscrete(r.IrrelevantStateSpaceSize,
			seeds.IrrelevantStateSpace)
	}
	if r.MultiDiscrete {
		d.observations = space.NewMultiDiscrete(r.StateSpaceSize,
			seeds.StateSpace)
		d.actions = space.NewMultiDiscrete(r.ActionSpaceSize,
			seeds.ActionSpace)
	} else {
		d.observations = d.relevantStates
		d.actions = relevantActions
	}

	// Terminal states
	numTerminal, clamped := numTerminalStates(r.TerminalStateDensity,
		r.RelevantStateSpaceSize)
	if clamped {
		logger.Warn("terminal state density gives no terminal states, "+
			"using 1", "warning", "density", "terminal_state_density",
			r.TerminalStateDensity)
	}
	d.terminalStates = terminalStates(numTerminal, r.RelevantStateSpaceSize)
	d.isTerminal = make([]bool, r.RelevantStateSpaceSize)
	for _, s := range d.terminalStates {
		d.isTerminal[s] = true
	}
	logger.Info("terminal states", "states", d.terminalStates)

	// Initial state distribution
	weights := [][]float64{initialWeights(r.RelevantStateSpaceSize,
		numTerminal)}
	if d.irrelevantStates != nil {
		weights = append(weights, uniformWeights(r.IrrelevantStateSpaceSize))
	}
	d.starter, err = env.NewCategoricalStarter(weights, rng)
	if err != nil {
		return nil, fmt.Errorf("newDiscrete: %w", err)
	}

	// Transitions
	d.transitions, err = newTransitionTable(d.relevantStates,
		r.RelevantActionSpaceSize, r.CompletelyConnected, d.terminalStates)
	if err != nil {
		return nil, fmt.Errorf("newDiscrete: %w", err)
	}
	if d.irrelevantStates != nil && r.IrrelevantActionSpaceSize > 0 {
		d.irrelevantTransitions, err = newTransitionTable(d.irrelevantStates,
			r.IrrelevantActionSpaceSize, r.CompletelyConnected, nil)
		if err != nil {
			return nil, fmt.Errorf("newDiscrete: irrelevant: %w", err)
		}
	}

	// Rewards
	nonTerminal := r.RelevantStateSpaceSize - numTerminal
	var count int
	d.sequences, count, err = sampleSequences(nonTerminal, r.SequenceLength,
		r.RewardDensity, r.RepeatsInSequences, rng)
	if err != nil {
		return nil, fmt.Errorf("newDiscrete: %w", err)
	}
	if len(d.sequences) > manySequences {
		logger.Warn("many rewardable sequences, the environment may be "+
			"slow and use a lot of memory", "warning", "density",
			"rewardable_sequences", len(d.sequences))
	}
	logger.Info("rewardable sequences", "count", len(d.sequences),
		"possible", count)
	logger.Debug("rewardable sequences", "sequences", d.sequences)
	d.rewards = newSequenceReward(d.sequences, r)

	return d, nil
}

// reset starts a new episode
func (d *discrete) reset() (*mat.VecDense, error) {
	start, err := d.starter.Start()
	if err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	d.state = int(start.AtVec(0))
	d.irrelevantState = NotAState
	if d.irrelevantStates != nil {
		d.irrelevantState = int(start.AtVec(1))
	}

	d.window = make([]int, d.r.AugmentedStateLength)
	for i := range d.window {
		d.window[i] = NotAState
	}
	d.window[len(d.window)-1] = d.state

	if d.r.MakeDenser {
		d.remaining = d.rewards.initialRemaining()
		d.logger.Debug("possible remaining sequences",
			"remaining", d.remaining)
	}

	d.current, err = d.splitter.CombineState(d.state, d.irrelevantState)
	if err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	return d.current, nil
}

// step takes a step in the environment. The returned reward excludes
// reward noise.
func (d *discrete) step(action *mat.VecDense,
	stats *EpisodeStats) (*mat.VecDense, float64, error) {
	rel, irr, err := d.splitter.SplitAction(action)
	if err != nil {
		return nil, 0, fmt.Errorf("step: illegal action %v: %w",
			mat.Formatted(action.T()), err)
	}

	next := d.transitions.Next(d.state, rel)
	noisy, err := noisyNext(next, d.r.TransitionNoise, d.relevantStates)
	if err != nil {
		return nil, 0, fmt.Errorf("step: %w", err)
	}
	if noisy != next {
		d.logger.Debug("noisy transition", "next_state", next,
			"noisy_next_state", noisy)
		stats.TotalNoisyTransitions++
	}

	nextIrrelevant := d.irrelevantState
	if d.irrelevantTransitions != nil {
		nextIrrelevant = d.irrelevantTransitions.Next(d.irrelevantState, irr)
		nextIrrelevant, err = noisyNext(nextIrrelevant, d.r.TransitionNoise,
			d.irrelevantStates)
		if err != nil {
			return nil, 0, fmt.Errorf("step: %w", err)
		}
	}

	d.state, d.irrelevantState = noisy, nextIrrelevant
	d.window = append(d.window[1:], d.state)

	var reward float64
	reward, d.remaining = d.rewards.live(d.window, d.remaining)
	if d.r.MakeDenser {
		d.logger.Debug("possible remaining sequences",
			"remaining", d.remaining)
	}

	d.current, err = d.splitter.CombineState(d.state, d.irrelevantState)
	if err != nil {
		return nil, 0, fmt.Errorf("step: %w", err)
	}
	return d.current, reward, nil
}

// terminal returns whether the relevant part of state is terminal
func (d *discrete) terminal(state *mat.VecDense) bool {
	rel, _, err := d.splitter.SplitState(state)
	if err != nil {
		return false
	}
	return d.isTerminal[rel]
}

// transition returns the next state when taking action in state,
// without transition noise
func (d *discrete) transition(state, action *mat.VecDense) (*mat.VecDense,
	error) {
	sc, err := d.splitter.ToScalar(state, action)
	if err != nil {
		return nil, fmt.Errorf("transition: %w", err)
	}

	next := d.transitions.Next(sc.State, sc.Action)
	nextIrrelevant := sc.IrrelevantState
	if d.irrelevantTransitions != nil {
		nextIrrelevant = d.irrelevantTransitions.Next(sc.IrrelevantState,
			sc.IrrelevantAction)
	}

	nextState, err := d.splitter.CombineState(next, nextIrrelevant)
	if err != nil {
		return nil, fmt.Errorf("transition: %w", err)
	}
	return nextState, nil
}

// reward returns the reward for an augmented state, without reward
// noise. States holding any NaN are treated as not yet filled.
func (d *discrete) reward(states []*mat.VecDense) (float64, error) {
	if len(states) != d.r.AugmentedStateLength {
		return 0, fmt.Errorf("reward: expected %d states, got %d",
			d.r.AugmentedStateLength, len(states))
	}

	window := make([]int, len(states))
	for i, state := range states {
		if floatutils.AnyNaN(matutils.RawVec(state)) {
			window[i] = NotAState
			continue
		}

		rel, _, err := d.splitter.SplitState(state)
		if err != nil {
			return 0, fmt.Errorf("reward: state %d: %w", i, err)
		}
		window[i] = rel
	}
	return d.rewards.query(window), nil
}

// info returns the hidden state of the current episode
func (d *discrete) info() Info {
	augmented := make([]*mat.VecDense, len(d.window))
	for i, state := range d.window {
		value := float64(state)
		if state == NotAState {
			value = math.NaN()
		}
		augmented[i] = mat.NewVecDense(1, []float64{value})
	}

	return Info{
		CurrentState:   mat.VecDenseCopyOf(d.current),
		AugmentedState: augmented,
	}
}

func (d *discrete) observationSpace() space.Space {
	return d.observations
}

func (d *discrete) actionSpace() space.Space {
	return d.actions
}

// observationSpec returns the observation specification of the
// environment
func (d *discrete) observationSpec() env.Spec {
	return env.NewDiscreteSpec(env.Observation, d.r.StateSpaceSize...)
}

// actionSpec returns the action specification of the environment
func (d *discrete) actionSpec() env.Spec {
	return env.NewDiscreteSpec(env.Action, d.r.ActionSpaceSize...)
}
