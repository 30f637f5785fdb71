package toyenv

import (
	"fmt"

	"github.com/samuelfneumann/mdpplayground/utils/floatutils"
	"github.com/samuelfneumann/mdpplayground/utils/matutils"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// sequenceReward computes the rewards of discrete environments from
// the augmented state, a window of the last AugmentedStateLength
// relevant state indices, oldest first.
//
// A transition is rewarded if the window, ignoring its first element
// and its last delay elements, is one of the rewardable sequences. In
// denser mode, each prefix of the window ending delay elements before
// its end earns partial credit for each rewardable sequence it begins.
type sequenceReward struct {
	sequences  [][]int
	rewardable map[string]struct{}

	seqLen, delay, augLen int
	unit                  float64
	denser                bool
}

func newSequenceReward(sequences [][]int, r Resolved) *sequenceReward {
	s := &sequenceReward{
		sequences:  sequences,
		rewardable: make(map[string]struct{}, len(sequences)),
		seqLen:     r.SequenceLength,
		delay:      r.Delay,
		augLen:     r.AugmentedStateLength,
		unit:       r.RewardUnit,
		denser:     r.MakeDenser,
	}

	for _, seq := range sequences {
		s.rewardable[sequenceKey(seq)] = struct{}{}
	}
	return s
}

// initialRemaining returns the possible remaining sequences at the
// start of an episode: every length-1 prefix of every rewardable
// sequence
func (s *sequenceReward) initialRemaining() [][][]int {
	remaining := make([][][]int, s.seqLen)
	for _, seq := range s.sequences {
		remaining[0] = append(remaining[0], seq[:1])
	}
	return remaining
}

// live returns the reward for the augmented state window. In denser
// mode, remaining holds the prefixes still consistent with the
// trajectory before the latest transition, and the prefixes consistent
// with window are returned. Otherwise remaining is ignored and nil is
// returned.
func (s *sequenceReward) live(window []int,
	remaining [][][]int) (float64, [][][]int) {
	if !s.denser {
		return s.sparse(window), nil
	}

	reward := 0.0
	for j := 1; j <= s.seqLen; j++ {
		current := s.suffix(window, j)
		count := 0
		for _, prefix := range remaining[j-1] {
			if equalInts(prefix, current) {
				count++
			}
		}
		reward += float64(count) * s.credit(j)
	}

	return reward, s.remaining(window)
}

// remaining returns the possible remaining sequences given window:
// entry j holds the length j+1 prefixes of rewardable sequences whose
// first j elements match the last j states of the window, ignoring the
// last delay states
func (s *sequenceReward) remaining(window []int) [][][]int {
	remaining := make([][][]int, s.seqLen)
	for j := 0; j < s.seqLen; j++ {
		current := s.suffix(window, j)
		for _, seq := range s.sequences {
			if len(seq) > j && equalInts(seq[:j], current) {
				remaining[j] = append(remaining[j], seq[:j+1])
			}
		}
	}
	return remaining
}

// query returns the reward for the augmented state window without
// any episode bookkeeping. In denser mode, the possible remaining
// sequences before the latest transition are rebuilt from window
// shifted back by one state. The oldest state of that shifted window
// is unknown, but it is never needed to compute the remaining
// sequences.
func (s *sequenceReward) query(window []int) float64 {
	if !s.denser {
		return s.sparse(window)
	}

	var remaining [][][]int
	if s.followsReset(window) {
		remaining = s.initialRemaining()
	} else {
		previous := make([]int, s.augLen)
		previous[0] = NotAState
		copy(previous[1:], window[:s.augLen-1])
		remaining = s.remaining(previous)
	}

	reward, _ := s.live(window, remaining)
	return reward
}

// followsReset returns whether window is the augmented state after the
// first transition of an episode
func (s *sequenceReward) followsReset(window []int) bool {
	for _, state := range window[:s.augLen-2] {
		if state != NotAState {
			return false
		}
	}
	return window[s.augLen-2] != NotAState
}

// sparse returns the reward for completing a rewardable sequence
func (s *sequenceReward) sparse(window []int) float64 {
	if _, ok := s.rewardable[sequenceKey(window[1:s.augLen-s.delay])]; ok {
		return s.unit
	}
	return 0
}

// suffix returns the last n states of window before the last delay
// states
func (s *sequenceReward) suffix(window []int, n int) []int {
	return window[s.augLen-n-s.delay : s.augLen-s.delay]
}

// credit returns the partial reward for matching a prefix of length n
func (s *sequenceReward) credit(n int) float64 {
	return s.unit * float64(n) / float64(s.seqLen)
}

// trajectoryReward computes the rewards of continuous environments
// from a window of the last AugmentedStateLength states, oldest first
type trajectoryReward struct {
	function RewardFunction
	relevant []int
	seqLen   int
	delay    int
	augLen   int
	scale    float64
	unit     float64
	denser   bool
	target   []float64
	radius   float64
}

func newTrajectoryReward(r Resolved) trajectoryReward {
	return trajectoryReward{
		function: r.RewardFunction,
		relevant: copyInts(r.StateSpaceRelevantIndices),
		seqLen:   r.SequenceLength,
		delay:    r.Delay,
		augLen:   r.AugmentedStateLength,
		scale:    r.RewardScale,
		unit:     r.RewardUnit,
		denser:   r.MakeDenser,
		target:   copyFloats(r.TargetPoint),
		radius:   r.TargetRadius,
	}
}

// reward returns the reward for window. Until the window holds a full
// trajectory, the reward is 0.
func (t trajectoryReward) reward(window [][]float64) (float64, error) {
	if len(window) != t.augLen {
		return 0, fmt.Errorf("reward: expected window of length %d, got %d",
			t.augLen, len(window))
	}
	if floatutils.AnyNaN(window[0]) {
		return 0, nil
	}

	switch t.function {
	case MoveAlongALine:
		return t.line(window)

	case MoveToAPoint:
		return t.point(window), nil

	default:
		return 0, fmt.Errorf("reward: unknown reward function %v",
			t.function)
	}
}

// line returns the negative mean perpendicular distance of the
// trajectory to its best fitting line, scaled
func (t trajectoryReward) line(window [][]float64) (float64, error) {
	rows := window[1 : t.augLen-t.delay]
	cols := len(t.relevant)

	data := mat.NewDense(len(rows), cols, nil)
	for i, row := range rows {
		data.SetRow(i, matutils.SelectVec(row, t.relevant))
	}

	// Centre the data so that the line passes through its mean
	mean := make([]float64, cols)
	for j := 0; j < cols; j++ {
		mean[j] = floats.Sum(mat.Col(nil, j, data)) / float64(len(rows))
	}
	for i := range rows {
		for j := 0; j < cols; j++ {
			data.Set(i, j, data.At(i, j)-mean[j])
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(data, mat.SVDThin); !ok {
		return 0, fmt.Errorf("line: could not factorize trajectory")
	}
	var v mat.Dense
	svd.VTo(&v)
	direction := mat.Col(nil, 0, &v)

	total := 0.0
	point := make([]float64, cols)
	for i := range rows {
		mat.Row(point, i, data)
		projection := floats.Dot(point, direction)
		floats.AddScaled(point, -projection, direction)
		total += floats.Norm(point, 2)
	}

	return -total / float64(t.seqLen) * t.scale, nil
}

// point returns the reward for approaching the target point
func (t trajectoryReward) point(window [][]float64) float64 {
	current := matutils.SelectVec(window[t.augLen-1-t.delay], t.relevant)
	distance := floats.Distance(current, t.target, 2)

	if t.denser {
		previous := matutils.SelectVec(window[t.augLen-2-t.delay], t.relevant)
		if floatutils.AnyNaN(previous) {
			return 0
		}
		return (floats.Distance(previous, t.target, 2) - distance) * t.scale
	}

	if distance < t.radius {
		return t.unit
	}
	return 0
}
