package experiment

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	env "github.com/samuelfneumann/mdpplayground/environment"
	"github.com/samuelfneumann/mdpplayground/experiment/tracker"
	ts "github.com/samuelfneumann/mdpplayground/timestep"
)

// Online is an Experiment that runs a policy online only. No offline
// evaluation is performed.
type Online struct {
	env.Environment
	policy       Policy
	maxSteps     uint
	currentSteps uint
	episodes     int
	trackers     []tracker.Tracker
	logger       *slog.Logger
}

// NewOnline creates and returns a new online experiment on a given
// environment with a given policy. The steps parameter determines how
// many timesteps the experiment is run for, and the t parameter is a
// slice of tracker.Tracker which determine what data is saved. If
// logger is nil, nothing is logged.
func NewOnline(e env.Environment, p Policy, steps uint, logger *slog.Logger,
	t ...tracker.Tracker) *Online {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Online{
		Environment: e,
		policy:      p,
		maxSteps:    steps,
		trackers:    t,
		logger:      logger.With("component", "experiment"),
	}
}

// Register registers a tracker.Tracker with an Experiment so that data
// generated during the experiment can be tracked and saved
func (o *Online) Register(t tracker.Tracker) {
	o.trackers = append(o.trackers, t)
}

// RunEpisode runs a single episode of the experiment, starting from the
// current TimeStep of the environment if it begins an episode
func (o *Online) RunEpisode(ctx context.Context) (bool, error) {
	step := o.Environment.CurrentTimeStep()
	if !step.First() || step.Observation == nil {
		var err error
		step, err = o.Environment.Reset()
		if err != nil {
			return false, fmt.Errorf("runEpisode: %w", err)
		}
	}
	o.episodes++
	o.track(step)

	for !step.Last() && o.currentSteps < o.maxSteps {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		o.currentSteps++

		action := o.policy(step)
		var err error
		step, _, err = o.Environment.Step(action)
		if err != nil {
			return false, fmt.Errorf("runEpisode: %w", err)
		}

		o.track(step)
	}

	o.logger.Debug("episode finished", "episode", o.episodes,
		"steps", step.Number, "end", step.EndType())

	// Return whether or not the max timestep limit has been reached
	return o.currentSteps >= o.maxSteps, nil
}

// Run runs the entire experiment for all timesteps
func (o *Online) Run(ctx context.Context) error {
	o.logger.Info("starting experiment", "max_steps", o.maxSteps)

	for ended := false; !ended; {
		var err error
		ended, err = o.RunEpisode(ctx)
		if err != nil {
			return fmt.Errorf("run: %w", err)
		}
	}

	o.logger.Info("experiment finished", "steps", o.currentSteps,
		"episodes", o.episodes)
	return nil
}

// Steps returns the number of timesteps run so far
func (o *Online) Steps() uint {
	return o.currentSteps
}

// Save saves all the data cached by the Trackers to disk
func (o *Online) Save() error {
	for _, t := range o.trackers {
		if err := t.Save(); err != nil {
			return fmt.Errorf("save: %w", err)
		}
	}
	return nil
}

// track tracks the current timestep by caching its data in each Tracker
func (o *Online) track(t ts.TimeStep) {
	for _, tr := range o.trackers {
		tr.Track(t)
	}
}
