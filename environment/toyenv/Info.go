package toyenv

import (
	"log/slog"

	"gonum.org/v1/gonum/mat"
)

// Info holds the hidden state of a ToyEnv, sufficient to reconstruct
// its dynamics outside the environment
type Info struct {
	// CurrentState is the current externally visible state
	CurrentState *mat.VecDense

	// AugmentedState is the window of past states used to compute
	// rewards, oldest first. Discrete environments store the relevant
	// state index of each state, with NaN for positions not yet filled.
	AugmentedState []*mat.VecDense

	// StateDerivatives is the derivative stack of continuous
	// environments, nil for discrete environments
	StateDerivatives []*mat.VecDense
}

// EpisodeStats holds diagnostic counters of a single episode
type EpisodeStats struct {
	Episode                 int
	TotalReward             float64
	TotalTransitions        int
	TotalNoisyTransitions   int
	TotalAbsRewardNoise     float64
	TotalAbsTransitionNoise float64
}

// LogValue implements slog.LogValuer
func (e EpisodeStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("episode", e.Episode),
		slog.Float64("total_reward", e.TotalReward),
		slog.Int("total_transitions", e.TotalTransitions),
		slog.Int("total_noisy_transitions", e.TotalNoisyTransitions),
		slog.Float64("total_abs_reward_noise", e.TotalAbsRewardNoise),
		slog.Float64("total_abs_transition_noise", e.TotalAbsTransitionNoise),
	)
}
