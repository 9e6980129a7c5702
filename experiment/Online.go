package experiment

import (
	"github.com/pkg/errors"
	"github.com/samuelfneumann/urgym/agent"
	env "github.com/samuelfneumann/urgym/environment"
	"github.com/samuelfneumann/urgym/experiment/checkpointer"
	"github.com/samuelfneumann/urgym/experiment/tracker"
	ts "github.com/samuelfneumann/urgym/timestep"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Online is an Experiment that runs an agent online only. No offline
// evaluation is performed.
type Online struct {
	env.Environment
	agent.Agent
	maxSteps      uint
	currentSteps  uint
	episodes      int
	trackers      []tracker.Tracker
	checkpointers []checkpointer.Checkpointer
	logger        *zap.SugaredLogger
}

// NewOnline creates and returns a new online experiment on a given
// environment with a given agent. The steps parameter determines how
// many timesteps the experiment is run for, and t determines what data
// is saved.
func NewOnline(e env.Environment, a agent.Agent, steps uint,
	t []tracker.Tracker, c []checkpointer.Checkpointer,
	logger *zap.SugaredLogger) *Online {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Online{
		Environment:   e,
		Agent:         a,
		maxSteps:      steps,
		trackers:      t,
		checkpointers: c,
		logger:        logger,
	}
}

// Register registers a tracker.Tracker with an Experiment so that data
// generated during the experiment can be tracked and saved
func (o *Online) Register(t tracker.Tracker) {
	o.trackers = append(o.trackers, t)
}

// Steps returns the number of environmental steps taken so far
func (o *Online) Steps() uint {
	return o.currentSteps
}

// RunEpisode runs a single episode of the experiment. It returns
// whether the step limit of the experiment has been reached.
func (o *Online) RunEpisode() (bool, error) {
	if o.currentSteps >= o.maxSteps {
		return true, nil
	}

	step, err := o.Environment.Reset()
	if err != nil {
		return false, errors.Wrap(err, "runEpisode")
	}
	if err := o.Agent.ObserveFirst(step); err != nil {
		return false, errors.Wrap(err, "runEpisode")
	}
	if err := o.track(step); err != nil {
		return false, errors.Wrap(err, "runEpisode")
	}

	var episodeReturn float64
	for !step.Last() && o.currentSteps < o.maxSteps {
		o.currentSteps++

		action := o.Agent.SelectAction(step)
		step, _, err = o.Environment.Step(action)
		if err != nil {
			return false, errors.Wrap(err, "runEpisode")
		}
		episodeReturn += step.Reward

		if err := o.track(step); err != nil {
			return false, errors.Wrap(err, "runEpisode")
		}
		if err := o.checkpoint(step); err != nil {
			return false, errors.Wrap(err, "runEpisode")
		}

		if err := o.Agent.Observe(action, step); err != nil {
			return false, errors.Wrap(err, "runEpisode")
		}
		if err := o.Agent.Step(); err != nil {
			return false, errors.Wrap(err, "runEpisode")
		}
	}
	o.Agent.EndEpisode()
	o.episodes++

	o.logger.Infow("episode finished",
		"episode", o.episodes,
		"return", episodeReturn,
		"length", step.Number,
		"success", step.Info.IsSuccess,
		"end", step.EndType(),
	)

	return o.currentSteps >= o.maxSteps, nil
}

// Run runs the entire experiment for all timesteps
func (o *Online) Run() error {
	for {
		ended, err := o.RunEpisode()
		if err != nil {
			return errors.Wrap(err, "run")
		}
		if ended {
			return nil
		}
	}
}

// Save saves the data cached by all Trackers to disk
func (o *Online) Save() error {
	var err error
	for _, t := range o.trackers {
		err = multierr.Append(err, t.Save())
	}
	return err
}

func (o *Online) track(t ts.TimeStep) error {
	for _, tr := range o.trackers {
		if err := tr.Track(t); err != nil {
			return err
		}
	}
	return nil
}

func (o *Online) checkpoint(t ts.TimeStep) error {
	for _, c := range o.checkpointers {
		if err := c.Checkpoint(t); err != nil {
			return err
		}
	}
	return nil
}
