package toyenv

import (
	"math"
	"sort"

	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/mdpplayground/utils/intutils"
	"gonum.org/v1/gonum/stat/distuv"
)

// SpaceType determines whether an environment has discrete or continuous
// states and actions
type SpaceType string

const (
	Discrete   SpaceType = "discrete"
	Continuous SpaceType = "continuous"
)

// RewardFunction names the reward of a continuous environment
type RewardFunction string

const (
	// MoveAlongALine rewards trajectories for lying on a straight line
	MoveAlongALine RewardFunction = "move_along_a_line"

	// MoveToAPoint rewards trajectories for approaching a target point
	MoveToAPoint RewardFunction = "move_to_a_point"
)

// NotAState is the scalar index used for positions of the augmented
// state which do not yet hold a state, and for absent irrelevant parts
// of states and actions
const NotAState int = -1

// NoiseFunc draws a single sample of additive noise
type NoiseFunc func(rng *rand.Rand) float64

// GaussianNoise returns a NoiseFunc drawing zero-mean Gaussian noise
// with standard deviation std
func GaussianNoise(std float64) NoiseFunc {
	return func(rng *rand.Rand) float64 {
		return distuv.Normal{Mu: 0, Sigma: std, Src: rng}.Rand()
	}
}

// Seeds holds the seeds of each random stream of an environment
type Seeds struct {
	Env                   uint64 `json:"env"`
	RelevantStateSpace    uint64 `json:"relevant_state_space"`
	RelevantActionSpace   uint64 `json:"relevant_action_space"`
	IrrelevantStateSpace  uint64 `json:"irrelevant_state_space"`
	IrrelevantActionSpace uint64 `json:"irrelevant_action_space"`
	StateSpace            uint64 `json:"state_space"`
	ActionSpace           uint64 `json:"action_space"`
}

// Config holds the meta-parameters of a toy environment. Fields left at
// their zero value are filled with defaults by Resolve where zero is
// not a meaningful setting.
type Config struct {
	StateSpaceType  SpaceType `json:"state_space_type"`
	ActionSpaceType SpaceType `json:"action_space_type"`

	// Discrete spaces. A single size gives a simple discrete space,
	// more than one size gives a multi-discrete space.
	StateSpaceSize  []int `json:"state_space_size,omitempty"`
	ActionSpaceSize []int `json:"action_space_size,omitempty"`

	// Continuous spaces
	StateSpaceDim  int     `json:"state_space_dim,omitempty"`
	ActionSpaceDim int     `json:"action_space_dim,omitempty"`
	StateSpaceMax  float64 `json:"state_space_max,omitempty"`
	ActionSpaceMax float64 `json:"action_space_max,omitempty"`

	// Indices of the dimensions which are relevant, all dimensions
	// if nil
	StateSpaceRelevantIndices  []int `json:"state_space_relevant_indices,omitempty"`
	ActionSpaceRelevantIndices []int `json:"action_space_relevant_indices,omitempty"`

	Delay int `json:"delay"`

	// SequenceLength is the length of rewardable sequences. Zero
	// selects the default of 1, negative lengths are invalid.
	SequenceLength int `json:"sequence_length"`

	RewardDensity           float64        `json:"reward_density"`
	RepeatsInSequences      bool           `json:"repeats_in_sequences"`
	MakeDenser              bool           `json:"make_denser"`
	TerminalStateDensity    float64        `json:"terminal_state_density"`
	CompletelyConnected     bool           `json:"completely_connected"`
	RewardUnit              float64        `json:"reward_unit,omitempty"`
	RewardScale             float64        `json:"reward_scale,omitempty"`
	TermStateReward         float64        `json:"term_state_reward"`
	Discount                float64        `json:"discount,omitempty"`
	Horizon                 int            `json:"horizon,omitempty"`
	TransitionNoise         float64        `json:"transition_noise,omitempty"`
	TransitionNoiseStd      float64        `json:"transition_noise_std,omitempty"`
	RewardNoiseStd          float64        `json:"reward_noise_std,omitempty"`
	TransitionDynamicsOrder int            `json:"transition_dynamics_order,omitempty"`
	Inertia                 float64        `json:"inertia,omitempty"`
	TimeUnit                float64        `json:"time_unit,omitempty"`
	TerminalStates          [][]float64    `json:"terminal_states,omitempty"`
	TermStateEdge           float64        `json:"term_state_edge,omitempty"`
	RewardFunction          RewardFunction `json:"reward_function,omitempty"`
	TargetPoint             []float64      `json:"target_point,omitempty"`
	TargetRadius            float64        `json:"target_radius,omitempty"`

	// TransitionNoiseFunc perturbs each dimension of continuous next
	// states, RewardNoise perturbs rewards. If nil, they are Gaussian
	// when the corresponding standard deviation is positive.
	TransitionNoiseFunc NoiseFunc `json:"-"`
	RewardNoise         NoiseFunc `json:"-"`

	Seed  uint64 `json:"seed"`
	Seeds *Seeds `json:"seeds,omitempty"`
}

// Resolved is a fully resolved Config: defaults are filled in, derived
// sizes are computed, and all invariants have been checked. Resolved
// values are only produced by Config.Resolve and must not be modified.
type Resolved struct {
	Config

	// Seeds of each random stream, never nil
	Streams Seeds

	// MultiDiscrete is true for discrete spaces with more than one
	// dimension
	MultiDiscrete bool

	RelevantStateSpaceSize    int
	IrrelevantStateSpaceSize  int
	RelevantActionSpaceSize   int
	IrrelevantActionSpaceSize int

	// Indices of irrelevant dimensions, complementing the relevant ones
	StateSpaceIrrelevantIndices  []int
	ActionSpaceIrrelevantIndices []int

	// Sizes of the relevant and irrelevant dimensions of multi-discrete
	// spaces. Relevant sizes follow the listed relevant indices,
	// irrelevant sizes follow ascending dimension.
	RelevantStateSpaceMaxes    []int
	IrrelevantStateSpaceMaxes  []int
	RelevantActionSpaceMaxes   []int
	IrrelevantActionSpaceMaxes []int

	// NumTerminalStates is the number of relevant terminal states of
	// a discrete environment
	NumTerminalStates int

	// AugmentedStateLength = SequenceLength + Delay + 1
	AugmentedStateLength int
}

// Discrete returns whether the resolved environment is discrete
func (r Resolved) Discrete() bool {
	return r.StateSpaceType == Discrete
}

// Copy returns a copy of r which shares no slices with r. Noise
// functions are shared.
func (r Resolved) Copy() Resolved {
	c := r
	c.StateSpaceSize = copyInts(r.StateSpaceSize)
	c.ActionSpaceSize = copyInts(r.ActionSpaceSize)
	c.StateSpaceRelevantIndices = copyInts(r.StateSpaceRelevantIndices)
	c.ActionSpaceRelevantIndices = copyInts(r.ActionSpaceRelevantIndices)
	c.StateSpaceIrrelevantIndices = copyInts(r.StateSpaceIrrelevantIndices)
	c.ActionSpaceIrrelevantIndices = copyInts(r.ActionSpaceIrrelevantIndices)
	c.RelevantStateSpaceMaxes = copyInts(r.RelevantStateSpaceMaxes)
	c.IrrelevantStateSpaceMaxes = copyInts(r.IrrelevantStateSpaceMaxes)
	c.RelevantActionSpaceMaxes = copyInts(r.RelevantActionSpaceMaxes)
	c.IrrelevantActionSpaceMaxes = copyInts(r.IrrelevantActionSpaceMaxes)
	c.TargetPoint = copyFloats(r.TargetPoint)

	if r.TerminalStates != nil {
		c.TerminalStates = make([][]float64, len(r.TerminalStates))
		for i := range r.TerminalStates {
			c.TerminalStates[i] = copyFloats(r.TerminalStates[i])
		}
	}

	seeds := r.Streams
	c.Seeds = &seeds
	return c
}

// Resolve fills defaults, derives dependent sizes, and validates c. It
// does not modify c. A *ConfigError is returned if any invariant is
// violated.
func (c Config) Resolve() (Resolved, error) {
	r := Resolved{Config: c}
	cfg := &r.Config

	if cfg.StateSpaceType != Discrete && cfg.StateSpaceType != Continuous {
		return Resolved{}, newConfigError("unknown state space type",
			"state_space_type", cfg.StateSpaceType)
	}
	if cfg.ActionSpaceType != cfg.StateSpaceType {
		return Resolved{}, newConfigError("action and state space types "+
			"must match", "state_space_type", cfg.StateSpaceType,
			"action_space_type", cfg.ActionSpaceType)
	}

	// Defaults
	if cfg.SequenceLength == 0 {
		cfg.SequenceLength = 1
	}
	if cfg.RewardUnit == 0 {
		cfg.RewardUnit = 1
	}
	if cfg.RewardScale == 0 {
		cfg.RewardScale = 1
	}
	if cfg.Discount == 0 {
		cfg.Discount = 1
	}
	if cfg.TransitionDynamicsOrder == 0 {
		cfg.TransitionDynamicsOrder = 1
	}
	if cfg.Inertia == 0 {
		cfg.Inertia = 1
	}
	if cfg.TimeUnit == 0 {
		cfg.TimeUnit = 1
	}
	if cfg.TermStateEdge == 0 {
		cfg.TermStateEdge = 1
	}
	if cfg.RewardNoise == nil && cfg.RewardNoiseStd > 0 {
		cfg.RewardNoise = GaussianNoise(cfg.RewardNoiseStd)
	}

	// Validation common to both space types
	if cfg.SequenceLength < 0 {
		return Resolved{}, newConfigError("sequence length must be "+
			"positive, or 0 for the default of 1", "sequence_length",
			cfg.SequenceLength)
	}
	if cfg.Delay < 0 {
		return Resolved{}, newConfigError("delay must be non-negative",
			"delay", cfg.Delay)
	}
	if cfg.Horizon < 0 {
		return Resolved{}, newConfigError("horizon must be non-negative",
			"horizon", cfg.Horizon)
	}
	if cfg.RewardNoiseStd < 0 {
		return Resolved{}, newConfigError("noise standard deviation must be "+
			"non-negative", "reward_noise_std", cfg.RewardNoiseStd)
	}
	if cfg.Discount < 0 || cfg.Discount > 1 {
		return Resolved{}, newConfigError("discount must be in [0, 1]",
			"discount", cfg.Discount)
	}
	r.AugmentedStateLength = cfg.SequenceLength + cfg.Delay + 1

	var err error
	if r.Discrete() {
		err = r.resolveDiscrete()
	} else {
		err = r.resolveContinuous()
	}
	if err != nil {
		return Resolved{}, err
	}

	r.Streams = deriveSeeds(cfg.Seed, cfg.Seeds)
	seeds := r.Streams
	cfg.Seeds = &seeds

	return r, nil
}

// resolveDiscrete resolves the fields of discrete environments
func (r *Resolved) resolveDiscrete() error {
	cfg := &r.Config

	if len(cfg.StateSpaceSize) == 0 {
		return newConfigError("discrete environments need a state space "+
			"size", "state_space_size", cfg.StateSpaceSize)
	}
	if len(cfg.ActionSpaceSize) == 0 {
		return newConfigError("discrete environments need an action space "+
			"size", "action_space_size", cfg.ActionSpaceSize)
	}
	for _, size := range cfg.StateSpaceSize {
		if size <= 0 {
			return newConfigError("state space sizes must be positive",
				"state_space_size", cfg.StateSpaceSize)
		}
	}
	for _, size := range cfg.ActionSpaceSize {
		if size <= 0 {
			return newConfigError("action space sizes must be positive",
				"action_space_size", cfg.ActionSpaceSize)
		}
	}
	if len(cfg.StateSpaceSize) != len(cfg.ActionSpaceSize) {
		return newConfigError("state and action spaces must both be "+
			"simple discrete or both multi-discrete", "state_space_size",
			cfg.StateSpaceSize, "action_space_size", cfg.ActionSpaceSize)
	}
	r.MultiDiscrete = len(cfg.StateSpaceSize) > 1

	var err error
	cfg.StateSpaceRelevantIndices, r.StateSpaceIrrelevantIndices, err =
		partition("state_space_relevant_indices",
			cfg.StateSpaceRelevantIndices, len(cfg.StateSpaceSize))
	if err != nil {
		return err
	}
	cfg.ActionSpaceRelevantIndices, r.ActionSpaceIrrelevantIndices, err =
		partition("action_space_relevant_indices",
			cfg.ActionSpaceRelevantIndices, len(cfg.ActionSpaceSize))
	if err != nil {
		return err
	}

	r.RelevantStateSpaceMaxes = intutils.Select(cfg.StateSpaceSize,
		cfg.StateSpaceRelevantIndices)
	r.IrrelevantStateSpaceMaxes = intutils.Select(cfg.StateSpaceSize,
		r.StateSpaceIrrelevantIndices)
	r.RelevantActionSpaceMaxes = intutils.Select(cfg.ActionSpaceSize,
		cfg.ActionSpaceRelevantIndices)
	r.IrrelevantActionSpaceMaxes = intutils.Select(cfg.ActionSpaceSize,
		r.ActionSpaceIrrelevantIndices)

	sizes := []struct {
		field string
		maxes []int
		size  *int
	}{
		{"state_space_size", r.RelevantStateSpaceMaxes,
			&r.RelevantStateSpaceSize},
		{"state_space_size", r.IrrelevantStateSpaceMaxes,
			&r.IrrelevantStateSpaceSize},
		{"action_space_size", r.RelevantActionSpaceMaxes,
			&r.RelevantActionSpaceSize},
		{"action_space_size", r.IrrelevantActionSpaceMaxes,
			&r.IrrelevantActionSpaceSize},
	}
	for _, s := range sizes {
		if len(s.maxes) == 0 {
			*s.size = 0
			continue
		}
		size, err := intutils.Prod(s.maxes...)
		if err != nil {
			return newConfigError("space size overflows int", s.field,
				s.maxes)
		}
		*s.size = size
	}

	if cfg.CompletelyConnected {
		if r.RelevantStateSpaceSize != r.RelevantActionSpaceSize {
			return newConfigError("completely connected environments need "+
				"equal relevant state and action space sizes",
				"relevant_state_space_size", r.RelevantStateSpaceSize,
				"relevant_action_space_size", r.RelevantActionSpaceSize)
		}
		if r.IrrelevantStateSpaceSize != r.IrrelevantActionSpaceSize {
			return newConfigError("completely connected environments need "+
				"equal irrelevant state and action space sizes",
				"irrelevant_state_space_size", r.IrrelevantStateSpaceSize,
				"irrelevant_action_space_size", r.IrrelevantActionSpaceSize)
		}
	}

	if err := checkUnit("reward_density", cfg.RewardDensity); err != nil {
		return err
	}
	if err := checkUnit("terminal_state_density",
		cfg.TerminalStateDensity); err != nil {
		return err
	}
	if err := checkUnit("transition_noise", cfg.TransitionNoise); err != nil {
		return err
	}
	if cfg.TransitionNoiseStd != 0 || cfg.TransitionNoiseFunc != nil {
		return newConfigError("discrete environments take a transition "+
			"noise probability, not a noise function", "transition_noise_std",
			cfg.TransitionNoiseStd)
	}

	r.NumTerminalStates, _ = numTerminalStates(cfg.TerminalStateDensity,
		r.RelevantStateSpaceSize)
	nonTerminal := r.RelevantStateSpaceSize - r.NumTerminalStates
	if nonTerminal < 1 {
		return newConfigError("terminal state density leaves no "+
			"non-terminal states", "terminal_state_density",
			cfg.TerminalStateDensity, "relevant_state_space_size",
			r.RelevantStateSpaceSize)
	}

	if !cfg.RepeatsInSequences && cfg.SequenceLength > nonTerminal &&
		cfg.RewardDensity > 0 {
		return newConfigError("sequences without repeats cannot be longer "+
			"than the number of non-terminal states", "sequence_length",
			cfg.SequenceLength, "non_terminal_states", nonTerminal)
	}
	if _, err := sequenceCount(nonTerminal, cfg.SequenceLength,
		cfg.RepeatsInSequences); err != nil {
		return newConfigError("number of possible sequences overflows int",
			"sequence_length", cfg.SequenceLength, "non_terminal_states",
			nonTerminal)
	}

	return nil
}

// resolveContinuous resolves the fields of continuous environments
func (r *Resolved) resolveContinuous() error {
	cfg := &r.Config

	if cfg.StateSpaceDim <= 0 {
		return newConfigError("state space dimension must be positive",
			"state_space_dim", cfg.StateSpaceDim)
	}
	if cfg.StateSpaceDim != cfg.ActionSpaceDim {
		return newConfigError("state and action space dimensions must match",
			"state_space_dim", cfg.StateSpaceDim, "action_space_dim",
			cfg.ActionSpaceDim)
	}
	if cfg.StateSpaceMax == 0 {
		cfg.StateSpaceMax = math.Inf(1)
	}
	if cfg.ActionSpaceMax == 0 {
		cfg.ActionSpaceMax = math.Inf(1)
	}
	if cfg.StateSpaceMax < 0 || cfg.ActionSpaceMax < 0 {
		return newConfigError("space bounds must be positive",
			"state_space_max", cfg.StateSpaceMax, "action_space_max",
			cfg.ActionSpaceMax)
	}

	var err error
	cfg.StateSpaceRelevantIndices, r.StateSpaceIrrelevantIndices, err =
		partition("state_space_relevant_indices",
			cfg.StateSpaceRelevantIndices, cfg.StateSpaceDim)
	if err != nil {
		return err
	}
	cfg.ActionSpaceRelevantIndices, r.ActionSpaceIrrelevantIndices, err =
		partition("action_space_relevant_indices",
			cfg.ActionSpaceRelevantIndices, cfg.ActionSpaceDim)
	if err != nil {
		return err
	}
	if !sameIndices(cfg.StateSpaceRelevantIndices,
		cfg.ActionSpaceRelevantIndices) {
		return newConfigError("relevant state and action indices must "+
			"match", "state_space_relevant_indices",
			cfg.StateSpaceRelevantIndices, "action_space_relevant_indices",
			cfg.ActionSpaceRelevantIndices)
	}
	relevantDims := len(cfg.StateSpaceRelevantIndices)

	if cfg.TransitionDynamicsOrder < 1 {
		return newConfigError("transition dynamics order must be positive",
			"transition_dynamics_order", cfg.TransitionDynamicsOrder)
	}
	if cfg.Inertia < 0 || cfg.TimeUnit < 0 || cfg.TermStateEdge < 0 {
		return newConfigError("inertia, time unit, and terminal state "+
			"edge must be positive", "inertia", cfg.Inertia, "time_unit",
			cfg.TimeUnit, "term_state_edge", cfg.TermStateEdge)
	}
	if cfg.TransitionNoise != 0 {
		return newConfigError("continuous environments take a transition "+
			"noise function, not a probability", "transition_noise",
			cfg.TransitionNoise)
	}
	if cfg.TransitionNoiseStd < 0 {
		return newConfigError("noise standard deviation must be "+
			"non-negative", "transition_noise_std", cfg.TransitionNoiseStd)
	}
	if cfg.TransitionNoiseFunc == nil && cfg.TransitionNoiseStd > 0 {
		cfg.TransitionNoiseFunc = GaussianNoise(cfg.TransitionNoiseStd)
	}

	for i, point := range cfg.TerminalStates {
		if len(point) != relevantDims {
			return newConfigError("terminal states must have the "+
				"dimension of the relevant state space", "terminal_states",
				i, "relevant_dims", relevantDims)
		}
	}

	switch cfg.RewardFunction {
	case MoveAlongALine:

	case MoveToAPoint:
		if len(cfg.TargetPoint) != relevantDims {
			return newConfigError("target point must have the dimension "+
				"of the relevant state space", "target_point",
				cfg.TargetPoint, "relevant_dims", relevantDims)
		}
		if cfg.SequenceLength != 1 {
			return newConfigError("move_to_a_point requires a sequence "+
				"length of 1", "reward_function", cfg.RewardFunction,
				"sequence_length", cfg.SequenceLength)
		}
		if cfg.TargetRadius < 0 {
			return newConfigError("target radius must be non-negative",
				"target_radius", cfg.TargetRadius)
		}

	default:
		return newConfigError("unknown reward function for continuous "+
			"environments", "reward_function", cfg.RewardFunction)
	}

	return nil
}

// numTerminalStates returns the number of terminal states in a discrete
// relevant state space of size n given the terminal state density. If
// the density yields no terminal states, the count is clamped to 1 and
// clamped is true.
func numTerminalStates(density float64, n int) (count int, clamped bool) {
	// Subtract a small tolerance so that densities like 0.3 with n = 10
	// are not rounded up by floating point error
	count = int(math.Ceil(density*float64(n) - 1e-9))
	if count < 1 {
		return 1, true
	}
	return count, false
}

// partition validates the relevant indices of a space with dims
// dimensions and returns them, in the order they were listed, along
// with their sorted complement. If relevant is nil, all dimensions are
// relevant.
func partition(field string, relevant []int, dims int) (rel, irrel []int,
	err error) {
	if relevant == nil {
		rel = make([]int, dims)
		for i := range rel {
			rel[i] = i
		}
		return rel, []int{}, nil
	}
	if len(relevant) == 0 {
		return nil, nil, newConfigError("at least one dimension must be "+
			"relevant", field, relevant)
	}

	sorted := copyInts(relevant)
	sort.Ints(sorted)
	for i, index := range sorted {
		if index < 0 || index >= dims {
			return nil, nil, newConfigError("relevant index out of range",
				field, relevant, "dims", dims)
		}
		if i > 0 && sorted[i-1] == index {
			return nil, nil, newConfigError("relevant indices must be "+
				"unique", field, relevant)
		}
	}
	return copyInts(relevant), intutils.Complement(dims, sorted), nil
}

// sameIndices returns whether a and b hold the same indices in any
// order
func sameIndices(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	sa, sb := copyInts(a), copyInts(b)
	sort.Ints(sa)
	sort.Ints(sb)
	return equalInts(sa, sb)
}

// deriveSeeds returns seeds if non-nil. Otherwise, the seeds of each
// space are drawn from a stream seeded with seed.
func deriveSeeds(seed uint64, seeds *Seeds) Seeds {
	if seeds != nil {
		return *seeds
	}

	rng := rand.New(rand.NewSource(seed))
	return Seeds{
		Env:                   seed,
		RelevantStateSpace:    rng.Uint64(),
		RelevantActionSpace:   rng.Uint64(),
		IrrelevantStateSpace:  rng.Uint64(),
		IrrelevantActionSpace: rng.Uint64(),
		StateSpace:            rng.Uint64(),
		ActionSpace:           rng.Uint64(),
	}
}

func checkUnit(field string, value float64) error {
	if value < 0 || value > 1 || math.IsNaN(value) {
		return newConfigError("value must be in [0, 1]", field, value)
	}
	return nil
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func copyInts(values []int) []int {
	if values == nil {
		return nil
	}
	c := make([]int, len(values))
	copy(c, values)
	return c
}

func copyFloats(values []float64) []float64 {
	if values == nil {
		return nil
	}
	c := make([]float64, len(values))
	copy(c, values)
	return c
}
