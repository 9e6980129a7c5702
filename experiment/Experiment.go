// Package experiment implements functionality for running an experiment
package experiment

import (
	"github.com/pkg/errors"
	"github.com/samuelfneumann/urgym/agent"
	"github.com/samuelfneumann/urgym/environment"
	"github.com/samuelfneumann/urgym/environment/envconfig"
	"github.com/samuelfneumann/urgym/environment/wrappers"
	"github.com/samuelfneumann/urgym/experiment/checkpointer"
	"github.com/samuelfneumann/urgym/experiment/tracker"
	"go.uber.org/zap"
)

// Experiment outlines structs that can run experiments. Experiments
// send each environment TimeStep to their Trackers, which cache the
// data in RAM to be later saved to disk by Save. Run runs episodes
// until the step limit of the experiment is reached, while RunEpisode
// runs a single episode.
//
// New Trackers can be registered with an Experiment through the
// constructor or through an Experiment's Register method.
type Experiment interface {
	Run() error

	// RunEpisode returns whether the step limit has been reached
	RunEpisode() (bool, error)

	// Save all tracked data to disk
	Save() error

	// Adds a new tracker.Tracker to the (possibly already running)
	// experiment. Useful if you want to track data only after a
	// specified event.
	Register(t tracker.Tracker)
}

// Type is the type of an Experiment
type Type string

const (
	OnlineExp Type = "OnlineExperiment"
)

// Config represents a configuration of an experiment
type Config struct {
	Type
	MaxSteps  uint
	EnvConf   envconfig.Config
	AgentConf agent.TypedConfig

	// FlattenGoal appends the achieved and desired goals to the
	// observations seen by the agent
	FlattenGoal bool
}

// CreateExp creates the experiment described by the Config. The agent
// is seeded with the environment's seed.
func (c Config) CreateExp(logger *zap.SugaredLogger, t []tracker.Tracker,
	check []checkpointer.Checkpointer) (Experiment, error) {
	if c.AgentConf.Config == nil {
		return nil, errors.New("createExp: no agent configured")
	}

	goalEnv, _, err := c.EnvConf.Create(logger)
	if err != nil {
		return nil, errors.Wrap(err, "createExp")
	}
	var env environment.Environment = goalEnv
	if c.FlattenGoal {
		env, err = wrappers.NewFlattenGoal(goalEnv)
		if err != nil {
			return nil, errors.Wrap(err, "createExp")
		}
	}

	a, err := c.AgentConf.CreateAgent(env, c.EnvConf.Seed)
	if err != nil {
		return nil, errors.Wrap(err, "createExp: could not create agent")
	}

	switch c.Type {
	case OnlineExp:
		return NewOnline(env, a, c.MaxSteps, t, check, logger), nil
	}
	return nil, errors.Errorf("createExp: no such experiment type %v", c.Type)
}
