// Package experiment implements functionality for running an experiment
package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samuelfneumann/mdpplayground/environment/envconfig"
	"github.com/samuelfneumann/mdpplayground/environment/space"
	"github.com/samuelfneumann/mdpplayground/experiment/tracker"
	ts "github.com/samuelfneumann/mdpplayground/timestep"
	"gonum.org/v1/gonum/mat"
)

// Experiment outlines structs that can run experiments. Experiments
// send each environment TimeStep to their Trackers, which cache the
// data they need in RAM. The Save method then saves all cached data to
// disk, usually after the experiment has been run. The Run method runs
// episodes until the maximum timestep limit is reached or the context
// is cancelled. The RunEpisode method runs a single episode.
type Experiment interface {
	Run(ctx context.Context) error

	// RunEpisode returns whether the step limit of the experiment was
	// reached
	RunEpisode(ctx context.Context) (bool, error)

	// Save all tracked data to disk
	Save() error

	// Adds a new tracker.Tracker to the (possibly already running)
	// experiment. Useful if you want to track data only after a
	// specified event.
	Register(t tracker.Tracker)
}

// Policy selects an action given the current TimeStep
type Policy func(step ts.TimeStep) *mat.VecDense

// RandomPolicy returns a Policy which samples actions uniformly from
// actions
func RandomPolicy(actions space.Space) Policy {
	return func(ts.TimeStep) *mat.VecDense {
		return actions.Sample()
	}
}

// Type names a kind of experiment
type Type string

const (
	OnlineExp Type = "OnlineExperiment"
)

// Config represents a configuration of an experiment. If PolicySeed is
// nil, the random policy samples from the action space with the seed
// the environment derived for it, which is independent of the random
// stream of the environment.
type Config struct {
	Type       Type             `json:"type"`
	MaxSteps   uint             `json:"max_steps"`
	PolicySeed *uint64          `json:"policy_seed,omitempty"`
	EnvConf    envconfig.Config `json:"env_config"`
}

// CreateExp creates the environment of the Config and returns an
// Experiment running a random policy on it
func (c Config) CreateExp(logger *slog.Logger,
	t ...tracker.Tracker) (Experiment, error) {
	e, _, err := c.EnvConf.Create(logger)
	if err != nil {
		return nil, fmt.Errorf("createExp: %w", err)
	}

	actions := e.ActionSpace()
	if c.PolicySeed != nil {
		actions.Seed(*c.PolicySeed)
	}
	policy := RandomPolicy(actions)

	switch c.Type {
	case OnlineExp:
		return NewOnline(e, policy, c.MaxSteps, logger, t...), nil
	}

	return nil, fmt.Errorf("createExp: no such experiment type %v", c.Type)
}
