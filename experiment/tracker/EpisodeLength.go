package tracker

import (
	"fmt"

	ts "github.com/samuelfneumann/mdpplayground/timestep"
)

// EpisodeLength tracks and saves the lengths of episodes in an
// experiment. An episode must finish for this Tracker to save its
// length.
type EpisodeLength struct {
	episodeLengths []float64
	filename       string
}

// NewEpisodeLength returns a new EpisodeLength Tracker which will save
// its data at the specified location filename
func NewEpisodeLength(filename string) *EpisodeLength {
	return &EpisodeLength{filename: filename}
}

// Track caches the episode length if t is the last timestep in the
// episode
func (e *EpisodeLength) Track(t ts.TimeStep) {
	if t.Last() {
		e.episodeLengths = append(e.episodeLengths, float64(t.Number))
	}
}

// Lengths returns the lengths of all finished episodes
func (e *EpisodeLength) Lengths() []float64 {
	lengths := make([]float64, len(e.episodeLengths))
	copy(lengths, e.episodeLengths)
	return lengths
}

// Save saves the data tracked by the EpisodeLength Tracker to disk
func (e *EpisodeLength) Save() error {
	if err := save(e.filename, e.episodeLengths); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}
