package tracker

import (
	"github.com/samuelfneumann/urgym/environment"
	"github.com/samuelfneumann/urgym/timestep"
)

// registeredTracker registers an Environment with some Tracker so
// that the Tracker tracks data from the registered Environment only.
//
// registeredTracker calls the Track method of the embedded Tracker with
// the current TimeStep of the registered Environment, ignoring its own
// argument. This is useful when an experiment steps one environment
// but data should be taken from another, for example when evaluating
// alongside training.
type registeredTracker struct {
	Tracker
	env environment.Environment
}

// Register registers a Tracker with an Environment, to track data
// from the registered Environment only.
//
// Note: the underlying concrete type of the registered Tracker is
// lost when registering an Environment with a Tracker.
func Register(t Tracker, env environment.Environment) Tracker {
	return &registeredTracker{t, env}
}

// Track calls Track on the embedded Tracker using the current TimeStep
// of the registered Environment
func (r *registeredTracker) Track(timestep.TimeStep) error {
	return r.Tracker.Track(r.env.CurrentTimeStep())
}
