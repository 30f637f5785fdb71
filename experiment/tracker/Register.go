package tracker

import (
	"github.com/samuelfneumann/mdpplayground/environment"
	"github.com/samuelfneumann/mdpplayground/timestep"
)

// registeredTracker registers an Environment with some Tracker so
// that the Tracker tracks data from the registered Environment only.
// registeredTracker itself is a Tracker.
//
// The Track and Save methods of a registeredTracker call those of the
// embedded Tracker, except that Track is called with the most recent
// TimeStep of the registered Environment and its argument is ignored.
//
// This may be useful if an experiment is run using an Environment
// wrapper but the data from the wrapped Environment should be tracked.
// For example, if an experiment is run on an AverageReward Environment,
// the wrapped Environment can be registered with a Return Tracker so
// that the return is tracked instead of the differential return.
type registeredTracker struct {
	Tracker
	env environment.Environment
}

// Register registers a Tracker with an Environment, to track data from
// the registered Environment only.
//
// The underlying concrete type of the registered Tracker is lost.
func Register(t Tracker, env environment.Environment) Tracker {
	return &registeredTracker{t, env}
}

// Track calls Track on the embedded Tracker using the most recent
// TimeStep of the registered Environment
func (r *registeredTracker) Track(timestep.TimeStep) {
	r.Tracker.Track(r.env.CurrentTimeStep())
}
