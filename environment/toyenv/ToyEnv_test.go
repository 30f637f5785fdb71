package toyenv

import (
	"math"
	"testing"

	"golang.org/x/exp/rand"

	ts "github.com/samuelfneumann/mdpplayground/timestep"
	"github.com/samuelfneumann/mdpplayground/utils/matutils"
	"gonum.org/v1/gonum/mat"
)

// actionTo returns the action leading from the current state of a
// completely connected discrete environment to next
func actionTo(t *testing.T, e *ToyEnv, next int) *mat.VecDense {
	d := e.dynamics.(*discrete)
	for a, s := range d.transitions.Row(d.state) {
		if s == next {
			return matutils.IntsVec(a)
		}
	}
	t.Fatalf("no action leads from %v to %v", d.state, next)
	return nil
}

func TestStepThroughRewardableSequence(t *testing.T) {
	for _, delay := range []int{0, 1} {
		c := discreteConfig()
		c.Delay = delay
		c.RewardUnit = 2.5
		e, _, err := New(c, nil)
		if err != nil {
			t.Fatalf("new: %v", err)
		}

		// Replace the sampled sequences so the trajectory is known
		d := e.dynamics.(*discrete)
		d.rewards = newSequenceReward([][]int{{2, 4, 1}}, e.config)

		trajectory := []int{2, 4, 1, 3}
		for i, next := range trajectory {
			step, _, err := e.Step(actionTo(t, e, next))
			if err != nil {
				t.Fatalf("step: %v", err)
			}
			if got := int(step.Observation.AtVec(0)); got != next {
				t.Fatalf("step %v: want state %v, have %v", i+1, next, got)
			}

			want := 0.0
			if i+1 == 3+delay {
				want = 2.5
			}
			if step.Reward != want {
				t.Errorf("delay %v: transition %v: want reward %v, have %v",
					delay, i+1, want, step.Reward)
			}
		}
	}
}

func TestTerminalStateEndsEpisode(t *testing.T) {
	c := discreteConfig()
	c.TermStateReward = -10
	e, _, err := New(c, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	// States 6 and 7 are terminal
	step, done, err := e.Step(actionTo(t, e, 7))
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if !done || !step.Last() {
		t.Errorf("terminal state: want done, have %v", step)
	}
	if step.EndType() != ts.TerminalStateReached {
		t.Errorf("end type: want %v, have %v", ts.TerminalStateReached,
			step.EndType())
	}
	if step.Reward != -10 {
		t.Errorf("terminal reward: want -10, have %v", step.Reward)
	}

	// Terminal states are absorbing and episodes do not reset on their own
	step, done, err = e.Step(matutils.IntsVec(3))
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if !done || int(step.Observation.AtVec(0)) != 7 {
		t.Errorf("absorbing state: want done in state 7, have %v in state %v",
			done, step.Observation.AtVec(0))
	}
}

func TestHorizon(t *testing.T) {
	c := discreteConfig()
	c.TerminalStateDensity = 0.1
	c.Horizon = 3
	e, _, err := New(c, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	// State 7 is the only terminal state, so cycle between 0 and 1
	for i := 1; i <= 3; i++ {
		step, done, err := e.Step(actionTo(t, e, i%2))
		if err != nil {
			t.Fatalf("step: %v", err)
		}
		if done != (i == 3) {
			t.Errorf("step %v: want done = %v, have %v", i, i == 3, done)
		}
		if i == 3 && step.EndType() != ts.Timeout {
			t.Errorf("end type: want %v, have %v", ts.Timeout, step.EndType())
		}
	}
}

func TestResetNotTerminal(t *testing.T) {
	discreteEnv, _, err := New(discreteConfig(), nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	c := continuousConfig()
	c.StateSpaceMax = 2
	c.TerminalStates = [][]float64{{0, 0}, {1, -1}, {-1.5, 1.5}}
	c.TermStateEdge = 1.5
	continuousEnv, _, err := New(c, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	for _, e := range []*ToyEnv{discreteEnv, continuousEnv} {
		for i := 0; i < 500; i++ {
			step, err := e.Reset()
			if err != nil {
				t.Fatalf("reset: %v", err)
			}
			if e.Terminal(step.Observation) {
				t.Fatalf("reset returned terminal state %v",
					step.Observation.RawVector().Data)
			}
			if !step.First() {
				t.Errorf("reset: want first step, have %v", step)
			}
		}
	}
}

// rollout steps through episodes with actions sampled from a fixed
// stream and returns the observations, rewards, and done flags
func rollout(t *testing.T, e *ToyEnv, steps int) ([][]float64, []float64,
	[]bool) {
	actions := e.ActionSpace()
	actions.Seed(11)

	var observations [][]float64
	var rewards []float64
	var dones []bool
	for i := 0; i < steps; i++ {
		step, done, err := e.Step(actions.Sample())
		if err != nil {
			t.Fatalf("step: %v", err)
		}
		if !e.ObservationSpec().Contains(step.Observation) {
			t.Errorf("observation %v outside the observation spec",
				matutils.RawVec(step.Observation))
		}
		observations = append(observations, matutils.RawVec(step.Observation))
		rewards = append(rewards, step.Reward)
		dones = append(dones, done)

		if done {
			if _, err := e.Reset(); err != nil {
				t.Fatalf("reset: %v", err)
			}
		}
	}
	return observations, rewards, dones
}

func TestDeterminism(t *testing.T) {
	multi := Config{
		StateSpaceType:             Discrete,
		ActionSpaceType:            Discrete,
		StateSpaceSize:             []int{8, 3},
		ActionSpaceSize:            []int{8, 3},
		StateSpaceRelevantIndices:  []int{0},
		ActionSpaceRelevantIndices: []int{0},
		SequenceLength:             2,
		Delay:                      1,
		RewardDensity:              0.3,
		MakeDenser:                 true,
		TerminalStateDensity:       0.25,
		CompletelyConnected:        true,
		TransitionNoise:            0.2,
		RewardNoiseStd:             0.5,
		Seed:                       5,
	}

	noisy := continuousConfig()
	noisy.TransitionNoiseStd = 0.1
	noisy.RewardNoiseStd = 0.1
	noisy.ActionSpaceMax = 1
	noisy.TransitionDynamicsOrder = 2
	noisy.Seed = 5

	for _, c := range []Config{discreteConfig(), multi, noisy} {
		a, _, err := New(c, nil)
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		b, _, err := New(c, nil)
		if err != nil {
			t.Fatalf("new: %v", err)
		}

		obsA, rewardsA, donesA := rollout(t, a, 200)
		obsB, rewardsB, donesB := rollout(t, b, 200)
		for i := range obsA {
			if !equalFloats(obsA[i], obsB[i]) || rewardsA[i] != rewardsB[i] ||
				donesA[i] != donesB[i] {
				t.Errorf("%v step %v: (%v, %v, %v) != (%v, %v, %v)",
					c.StateSpaceType, i, obsA[i], rewardsA[i], donesA[i],
					obsB[i], rewardsB[i], donesB[i])
				break
			}
		}
		if a.Stats() != b.Stats() {
			t.Errorf("stats: %v != %v", a.Stats(), b.Stats())
		}
	}
}

func TestSeed(t *testing.T) {
	e, _, err := New(discreteConfig(), nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	starts := func() []float64 {
		var s []float64
		for i := 0; i < 20; i++ {
			step, err := e.Reset()
			if err != nil {
				t.Fatalf("reset: %v", err)
			}
			s = append(s, step.Observation.AtVec(0))
		}
		return s
	}

	if got := e.Seed(42); got != 42 {
		t.Errorf("seed: want 42, have %v", got)
	}
	first := starts()
	e.Seed(42)
	second := starts()
	if !equalFloats(first, second) {
		t.Errorf("reseeding: starting states %v != %v", first, second)
	}
}

func TestQueryIsPure(t *testing.T) {
	c := discreteConfig()
	c.MakeDenser = true
	c.TransitionNoise = 0.3
	c.Seed = 9

	a, _, err := New(c, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	b, _, err := New(c, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	state := a.CurrentTimeStep().Observation
	action := matutils.IntsVec(3)
	infoBefore := a.Info()
	statsBefore := a.Stats()

	first, err := a.P(state, action)
	if err != nil {
		t.Fatalf("p: %v", err)
	}
	for i := 0; i < 50; i++ {
		next, err := a.P(state, action)
		if err != nil {
			t.Fatalf("p: %v", err)
		}
		if !mat.Equal(next, first) {
			t.Fatalf("p: repeated calls differ: %v and %v",
				next.RawVector().Data, first.RawVector().Data)
		}
		if _, err := a.R(infoBefore.AugmentedState, action); err != nil {
			t.Fatalf("r: %v", err)
		}
	}

	infoAfter := a.Info()
	for i := range infoBefore.AugmentedState {
		x, y := infoBefore.AugmentedState[i].AtVec(0),
			infoAfter.AugmentedState[i].AtVec(0)
		if x != y && !(math.IsNaN(x) && math.IsNaN(y)) {
			t.Errorf("p changed the augmented state: %v != %v", x, y)
		}
	}
	if a.Stats() != statsBefore {
		t.Errorf("p changed the episode statistics")
	}

	// Queries must not perturb the random streams used by Step
	obsA, rewardsA, _ := rollout(t, a, 100)
	obsB, rewardsB, _ := rollout(t, b, 100)
	for i := range obsA {
		if !equalFloats(obsA[i], obsB[i]) || rewardsA[i] != rewardsB[i] {
			t.Fatalf("step %v after queries differs: (%v, %v) != (%v, %v)",
				i, obsA[i], rewardsA[i], obsB[i], rewardsB[i])
		}
	}
}

func TestQueryMatchesStep(t *testing.T) {
	c := discreteConfig()
	c.MakeDenser = true
	c.Delay = 1
	c.RewardDensity = 0.5
	e, _, err := New(c, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 300; i++ {
		state := e.CurrentTimeStep().Observation
		action := matutils.IntsVec(rng.Intn(8))

		want, err := e.P(state, action)
		if err != nil {
			t.Fatalf("p: %v", err)
		}

		step, done, err := e.Step(action)
		if err != nil {
			t.Fatalf("step: %v", err)
		}
		if !mat.Equal(want, step.Observation) {
			t.Errorf("p predicted %v, step gave %v", want.RawVector().Data,
				step.Observation.RawVector().Data)
		}

		reward, err := e.R(e.Info().AugmentedState, action)
		if err != nil {
			t.Fatalf("r: %v", err)
		}
		if math.Abs(reward-step.Reward) > 1e-12 {
			t.Errorf("step %v: r gave %v, step gave %v", i, reward,
				step.Reward)
		}

		if done {
			if _, err := e.Reset(); err != nil {
				t.Fatalf("reset: %v", err)
			}
		}
	}
}

func TestIllegalDiscreteAction(t *testing.T) {
	e, _, err := New(discreteConfig(), nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	before := e.CurrentTimeStep()

	for _, action := range []*mat.VecDense{matutils.IntsVec(8),
		mat.NewVecDense(1, []float64{1.5})} {
		if _, _, err := e.Step(action); err == nil {
			t.Errorf("step(%v): expected error", action.RawVector().Data)
		}
	}
	if e.CurrentTimeStep().Number != before.Number {
		t.Errorf("illegal actions advanced the episode")
	}
}

func TestMultiDiscreteIrrelevantDimensions(t *testing.T) {
	c := Config{
		StateSpaceType:             Discrete,
		ActionSpaceType:            Discrete,
		StateSpaceSize:             []int{6, 4},
		ActionSpaceSize:            []int{6, 4},
		StateSpaceRelevantIndices:  []int{0},
		ActionSpaceRelevantIndices: []int{0},
		TerminalStateDensity:       0.2,
		CompletelyConnected:        true,
	}
	e, first, err := New(c, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if first.Observation.Len() != 2 {
		t.Fatalf("observation length: want 2, have %v",
			first.Observation.Len())
	}

	d := e.dynamics.(*discrete)
	for i := 0; i < 50; i++ {
		state := e.CurrentTimeStep().Observation
		action := e.ActionSpace().Sample()

		step, done, err := e.Step(action)
		if err != nil {
			t.Fatalf("step: %v", err)
		}
		if !e.ObservationSpace().Contains(step.Observation) {
			t.Errorf("observation %v outside observation space",
				step.Observation.RawVector().Data)
		}

		// The irrelevant dimension follows its own transition table
		wantIrr := d.irrelevantTransitions.Next(int(state.AtVec(1)),
			int(action.AtVec(1)))
		if got := int(step.Observation.AtVec(1)); got != wantIrr {
			t.Errorf("irrelevant state: want %v, have %v", wantIrr, got)
		}

		if done {
			if _, err := e.Reset(); err != nil {
				t.Fatalf("reset: %v", err)
			}
		}
	}
}

func TestContinuousDynamics(t *testing.T) {
	c := continuousConfig()
	c.StateSpaceMax = 5
	c.ActionSpaceMax = 1
	e, first, err := New(c, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	// P integrates from rest
	next, err := e.P(mat.NewVecDense(2, []float64{1, 2}),
		mat.NewVecDense(2, []float64{0.5, -1}))
	if err != nil {
		t.Fatalf("p: %v", err)
	}
	if !equalFloats(next.RawVector().Data, []float64{1.5, 1}) {
		t.Errorf("p: want [1.5 1], have %v", next.RawVector().Data)
	}

	// Out of bounds actions apply the zero action
	step, _, err := e.Step(mat.NewVecDense(2, []float64{2, 0}))
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if !mat.Equal(step.Observation, first.Observation) {
		t.Errorf("out of bounds action moved the state from %v to %v",
			first.Observation.RawVector().Data,
			step.Observation.RawVector().Data)
	}

	// Moving into the wall clips the state and stops it
	for i := 0; i < 12; i++ {
		step, _, err = e.Step(mat.NewVecDense(2, []float64{1, 0}))
		if err != nil {
			t.Fatalf("step: %v", err)
		}
	}
	if step.Observation.AtVec(0) != 5 {
		t.Errorf("clipping: want x = 5, have %v", step.Observation.AtVec(0))
	}
	derivatives := e.Info().StateDerivatives
	if len(derivatives) != 2 || derivatives[1].AtVec(0) != 0 {
		t.Errorf("clipping: higher derivatives not reset, have %v",
			derivatives)
	}

	if _, _, err := e.Step(mat.NewVecDense(3, nil)); err == nil {
		t.Errorf("step: expected error for action of wrong dimension")
	}
}

func TestContinuousCollinearReward(t *testing.T) {
	c := continuousConfig()
	c.Delay = 1
	e, _, err := New(c, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	action := mat.NewVecDense(2, []float64{0.3, -0.7})
	for i := 0; i < 10; i++ {
		step, _, err := e.Step(action)
		if err != nil {
			t.Fatalf("step: %v", err)
		}
		if math.Abs(step.Reward) > 1e-9 {
			t.Errorf("step %v: straight trajectory: want reward 0, have %v",
				i+1, step.Reward)
		}
	}

	info := e.Info()
	if len(info.AugmentedState) != 5 || len(info.StateDerivatives) != 2 {
		t.Errorf("info: want 5 states and 2 derivatives, have %v and %v",
			len(info.AugmentedState), len(info.StateDerivatives))
	}
}

func TestConfigIsCopied(t *testing.T) {
	e, _, err := New(discreteConfig(), nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	r := e.Config()
	r.StateSpaceSize[0] = 100
	r.StateSpaceRelevantIndices[0] = 3
	if e.Config().StateSpaceSize[0] != 8 ||
		e.Config().StateSpaceRelevantIndices[0] != 0 {
		t.Errorf("modifying the returned config modified the environment")
	}
}

func BenchmarkStepDiscrete(b *testing.B) {
	c := discreteConfig()
	c.StateSpaceSize = []int{20}
	c.ActionSpaceSize = []int{20}
	c.SequenceLength = 3
	c.RewardDensity = 0.01
	c.MakeDenser = true
	c.Horizon = 100
	e, _, err := New(c, nil)
	if err != nil {
		b.Fatalf("new: %v", err)
	}
	action := e.ActionSpace()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, done, _ := e.Step(action.Sample()); done {
			e.Reset()
		}
	}
}

func BenchmarkStepContinuous(b *testing.B) {
	c := continuousConfig()
	c.TransitionDynamicsOrder = 3
	c.Horizon = 100
	e, _, err := New(c, nil)
	if err != nil {
		b.Fatalf("new: %v", err)
	}
	action := mat.NewVecDense(2, []float64{0.1, 0.2})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, done, _ := e.Step(action); done {
			e.Reset()
		}
	}
}
