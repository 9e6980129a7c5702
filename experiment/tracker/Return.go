package tracker

import (
	"github.com/pkg/errors"
	ts "github.com/samuelfneumann/urgym/timestep"
)

// Return tracks and saves the episodic return in an experiment. When
// an environment returns a TimeStep, this Tracker will extract the
// reward and accumulate the return for each episode in the experiment.
//
// Note: An episode must finish for this Tracker to save its data.
// If the last episode in an experiment does not finish, that episode's
// return will not be saved.
type Return struct {
	lastTimeStep   int
	currentReturn  float64
	episodeReturns []float64
	filename       string
}

// NewReturn creates and returns a new *Return Tracker
func NewReturn(filename string) *Return {
	return &Return{lastTimeStep: -1, filename: filename}
}

// Track accumulates the reward of a timestep into the return of the
// current episode. When the timestep is the last in its episode, the
// episodic return is cached and tracking begins for the next episode.
//
// Track returns an error if it is called for non-sequential timesteps.
func (r *Return) Track(step ts.TimeStep) error {
	if r.lastTimeStep+1 != step.Number {
		return errors.Errorf("track: last two timesteps tracked are not "+
			"sequential: timestep %v --> timestep %v", r.lastTimeStep,
			step.Number)
	}

	r.currentReturn += step.Reward
	if !step.Last() {
		r.lastTimeStep = step.Number
		return nil
	}

	r.episodeReturns = append(r.episodeReturns, r.currentReturn)
	r.currentReturn = 0.0
	r.lastTimeStep = -1
	return nil
}

// Data returns the returns of all finished episodes
func (r *Return) Data() []float64 {
	return append([]float64(nil), r.episodeReturns...)
}

// Save saves the data tracked by the Return Tracker to disk
func (r *Return) Save() error {
	return r.SaveTo(r.filename)
}

// SaveTo implements the Tracker interface
func (r *Return) SaveTo(filename string) error {
	return errors.Wrap(save(filename, r.episodeReturns), "save")
}
