package toyenv

import (
	"math"
	"testing"
)

// newTestSequenceReward returns a sequenceReward over the given
// sequences, all of length seqLen
func newTestSequenceReward(t *testing.T, sequences [][]int, seqLen,
	delay int, denser bool) *sequenceReward {
	c := discreteConfig()
	c.SequenceLength = seqLen
	c.Delay = delay
	c.MakeDenser = denser
	r, err := c.Resolve()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	return newSequenceReward(sequences, r)
}

// push returns window with state appended and its oldest state dropped
func push(window []int, state int) []int {
	return append(append([]int{}, window[1:]...), state)
}

// resetWindow returns the augmented state at the start of an episode
func resetWindow(length, start int) []int {
	window := make([]int, length)
	for i := range window {
		window[i] = NotAState
	}
	window[length-1] = start
	return window
}

func TestSparseRewardDelay(t *testing.T) {
	sequences := [][]int{{2, 4, 1}}

	for _, delay := range []int{0, 1, 2} {
		s := newTestSequenceReward(t, sequences, 3, delay, false)
		window := resetWindow(s.augLen, 0)

		trajectory := []int{2, 4, 1, 3, 5, 0}
		for i, state := range trajectory {
			window = push(window, state)
			reward, _ := s.live(window, nil)

			// The sequence is completed on transition 3 and rewarded
			// delay transitions later
			want := 0.0
			if i+1 == 3+delay {
				want = 1
			}
			if reward != want {
				t.Errorf("delay %v: transition %v: want reward %v, have %v",
					delay, i+1, want, reward)
			}
			if query := s.query(window); query != reward {
				t.Errorf("delay %v: transition %v: query reward %v != %v",
					delay, i+1, query, reward)
			}
		}
	}
}

func TestDenserMultiplicativeCredit(t *testing.T) {
	// Two rewardable sequences share the prefix [0, 1], so matching it
	// earns credit twice
	sequences := [][]int{{0, 1, 2}, {0, 1, 3}}
	s := newTestSequenceReward(t, sequences, 3, 0, true)

	window := resetWindow(s.augLen, 5)
	remaining := s.initialRemaining()

	steps := []struct {
		state int
		want  float64
	}{
		{0, 2 * 1.0 / 3},
		{1, 2 * 2.0 / 3},
		{2, 1},
		{0, 2 * 1.0 / 3},
		{4, 0},
	}

	for i, step := range steps {
		window = push(window, step.state)

		var reward float64
		reward, remaining = s.live(window, remaining)
		if math.Abs(reward-step.want) > 1e-12 {
			t.Errorf("transition %v: want reward %v, have %v", i+1, step.want,
				reward)
		}

		if query := s.query(window); math.Abs(query-reward) > 1e-12 {
			t.Errorf("transition %v: query reward %v != live reward %v", i+1,
				query, reward)
		}
	}
}

func TestDenserQueryMatchesLive(t *testing.T) {
	sequences := [][]int{{0, 1, 2}, {1, 2, 0}, {2, 1, 0}, {1, 0, 2}}
	trajectory := []int{1, 2, 0, 1, 0, 2, 1, 1, 2, 1, 0, 0, 1, 2}

	for _, delay := range []int{0, 1, 3} {
		s := newTestSequenceReward(t, sequences, 3, delay, true)
		window := resetWindow(s.augLen, 1)
		remaining := s.initialRemaining()

		for i, state := range trajectory {
			window = push(window, state)

			var reward float64
			reward, remaining = s.live(window, remaining)
			if query := s.query(window); math.Abs(query-reward) > 1e-12 {
				t.Errorf("delay %v: transition %v: query reward %v != live "+
					"reward %v", delay, i+1, query, reward)
			}
		}
	}
}

func TestLineRewardCollinear(t *testing.T) {
	r, err := continuousConfig().Resolve()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	reward := newTrajectoryReward(r)

	window := [][]float64{{9, 9}, {0, 1}, {1, 3}, {2, 5}}
	got, err := reward.reward(window)
	if err != nil {
		t.Fatalf("reward: %v", err)
	}
	if math.Abs(got) > 1e-9 {
		t.Errorf("collinear trajectory: want reward 0, have %v", got)
	}

	window = [][]float64{{9, 9}, {0, 0}, {1, 0}, {2, 0}}
	got, err = reward.reward(window)
	if err != nil {
		t.Fatalf("reward: %v", err)
	}
	if math.Abs(got) > 1e-9 {
		t.Errorf("collinear trajectory: want reward 0, have %v", got)
	}

	window = [][]float64{{9, 9}, {0, 0}, {1, 1}, {2, 0}}
	got, err = reward.reward(window)
	if err != nil {
		t.Fatalf("reward: %v", err)
	}
	// Best line is horizontal through y = 1/3: distances 1/3, 2/3, 1/3
	if want := -(4.0 / 3) / 3; math.Abs(got-want) > 1e-9 {
		t.Errorf("bent trajectory: want reward %v, have %v", want, got)
	}

	window = [][]float64{{math.NaN(), math.NaN()}, {0, 0}, {1, 1}, {2, 0}}
	got, err = reward.reward(window)
	if err != nil {
		t.Fatalf("reward: %v", err)
	}
	if got != 0 {
		t.Errorf("partial window: want reward 0, have %v", got)
	}
}

func TestPointReward(t *testing.T) {
	c := continuousConfig()
	c.RewardFunction = MoveToAPoint
	c.SequenceLength = 1
	c.TargetPoint = []float64{1, 1}
	c.TargetRadius = 0.5
	c.RewardUnit = 3
	c.RewardScale = 2

	r, err := c.Resolve()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	sparse := newTrajectoryReward(r)

	c.MakeDenser = true
	r, err = c.Resolve()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	dense := newTrajectoryReward(r)

	tests := []struct {
		window [][]float64
		sparse float64
		dense  float64
	}{
		{[][]float64{{1, 5}, {1, 1.2}}, 3, 7.6},
		{[][]float64{{1, 1.2}, {1, 5}}, 0, -7.6},
		{[][]float64{{4, 1}, {2, 1}}, 0, 4},
	}

	for _, test := range tests {
		got, err := sparse.reward(test.window)
		if err != nil {
			t.Fatalf("reward: %v", err)
		}
		if math.Abs(got-test.sparse) > 1e-9 {
			t.Errorf("sparse %v: want %v, have %v", test.window, test.sparse,
				got)
		}

		got, err = dense.reward(test.window)
		if err != nil {
			t.Fatalf("reward: %v", err)
		}
		if math.Abs(got-test.dense) > 1e-9 {
			t.Errorf("dense %v: want %v, have %v", test.window, test.dense,
				got)
		}
	}
}
