// Package envconfig provides a registry of named UR5e reach
// environments and configuration structs for creating them. Environment
// configurations in this package are JSON serializable.
package envconfig

import (
	"sort"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"github.com/samuelfneumann/urgym/environment/ur"
	"github.com/samuelfneumann/urgym/simulation"
	ts "github.com/samuelfneumann/urgym/timestep"
	"go.uber.org/zap"
)

// EnvName stores the name of environments that can be configured with
// this package
type EnvName string

// Environments available for configuration
const (
	Reach              EnvName = "UR5Reach-v1"
	ReachIAI           EnvName = "UR5IAIReach-v1"
	ReachRegularized   EnvName = "UR5RegReach-v1"
	ReachOrientation   EnvName = "UR5OriReach-v1"
	ReachWithObstacles EnvName = "UR5ObsReach-v1"
)

// Entry describes how a registered environment is built. Robot adjusts
// the default robot configuration for the environment's task.
type Entry struct {
	Variant func() ur.Variant
	Robot   func(ur.RobotConfig) ur.RobotConfig
}

var registry = map[EnvName]Entry{
	Reach:    {Variant: ur.Reach},
	ReachIAI: {Variant: ur.ReachIAI},
	ReachRegularized: {
		Variant: ur.ReachWithRegularization,
		Robot: func(c ur.RobotConfig) ur.RobotConfig {
			c.JointObservation = true
			return c
		},
	},
	ReachOrientation: {
		Variant: ur.ReachWithOrientation,
		Robot:   withOrientation,
	},
	ReachWithObstacles: {
		Variant: ur.ReachWithObstacles,
		Robot:   withOrientation,
	},
}

func withOrientation(c ur.RobotConfig) ur.RobotConfig {
	c.Orientation = true
	return c
}

// Register adds a new environment to the registry
func Register(name EnvName, e Entry) error {
	if _, ok := registry[name]; ok {
		return errors.Errorf("register: environment %v already registered",
			name)
	}
	if e.Variant == nil {
		return errors.Errorf("register: environment %v has no variant", name)
	}
	registry[name] = e
	return nil
}

// IDs returns the sorted names of all registered environments
func IDs() []string {
	ids := make([]string, 0, len(registry))
	for name := range registry {
		ids = append(ids, string(name))
	}
	sort.Strings(ids)
	return ids
}

// Options configures a registered environment
type Options struct {
	Render          bool   `mapstructure:"render" json:"render"`
	RewardType      string `mapstructure:"reward_type" json:"reward_type"`
	ControlType     string `mapstructure:"control_type" json:"control_type"`
	Seed            uint64 `mapstructure:"seed" json:"seed"`
	MaxEpisodeSteps int    `mapstructure:"max_episode_steps" json:"max_episode_steps"`
}

// DefaultOptions returns the options used when none are given
func DefaultOptions() Options {
	return Options{
		RewardType:      string(ur.Sparse),
		ControlType:     string(ur.EndEffector),
		MaxEpisodeSteps: ur.DefaultMaxEpisodeSteps,
	}
}

// DecodeOptions decodes an option map over the default options. Keys
// which are not options are an error.
func DecodeOptions(options map[string]interface{}) (Options, error) {
	opts := DefaultOptions()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &opts,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Options{}, errors.Wrap(err, "decodeOptions")
	}
	if err := decoder.Decode(options); err != nil {
		return Options{}, errors.Wrap(err, "decodeOptions")
	}
	return opts, nil
}

// Config implements a specific configuration of a registered
// environment
type Config struct {
	Environment EnvName
	Options
}

// NewConfig returns a new environment Config, decoding options over
// the defaults
func NewConfig(name EnvName, options map[string]interface{}) (Config,
	error) {
	if _, ok := registry[name]; !ok {
		return Config{}, errors.Errorf("newConfig: no such environment %v",
			name)
	}
	opts, err := DecodeOptions(options)
	if err != nil {
		return Config{}, errors.Wrap(err, "newConfig")
	}
	return Config{Environment: name, Options: opts}, nil
}

// EnvConfig returns the ur.EnvConfig described by the Config
func (c Config) EnvConfig() (ur.EnvConfig, error) {
	entry, ok := registry[c.Environment]
	if !ok {
		return ur.EnvConfig{}, errors.Errorf("envConfig: no such "+
			"environment %v", c.Environment)
	}

	rewardType, err := ur.ParseRewardType(c.RewardType)
	if err != nil {
		return ur.EnvConfig{}, errors.Wrap(err, "envConfig")
	}
	control, err := ur.ParseControlType(c.ControlType)
	if err != nil {
		return ur.EnvConfig{}, errors.Wrap(err, "envConfig")
	}

	robot := ur.DefaultRobotConfig()
	if entry.Robot != nil {
		robot = entry.Robot(robot)
	}
	robot.Control = control

	sim := simulation.DefaultConfig()
	sim.Render = c.Render

	return ur.EnvConfig{
		Variant:         entry.Variant().WithRewardType(rewardType),
		Robot:           robot,
		Simulation:      sim,
		MaxEpisodeSteps: c.MaxEpisodeSteps,
		Seed:            c.Seed,
	}, nil
}

// Create returns the environment described by the Config as well as
// the first timestep of the environment
func (c Config) Create(logger *zap.SugaredLogger) (*ur.RobotTaskEnv,
	ts.TimeStep, error) {
	env, err := c.make(logger)
	if err != nil {
		return nil, ts.TimeStep{}, err
	}

	step, err := env.Reset()
	if err != nil {
		return nil, ts.TimeStep{}, errors.Wrap(err, "create")
	}
	return env, step, nil
}

func (c Config) make(logger *zap.SugaredLogger) (*ur.RobotTaskEnv, error) {
	config, err := c.EnvConfig()
	if err != nil {
		return nil, errors.Wrap(err, "create")
	}
	env, err := ur.NewEnv(config, logger)
	if err != nil {
		return nil, errors.Wrap(err, "create")
	}
	return env, nil
}

// Make creates the registered environment id configured by options.
// The environment must be reset before it is stepped.
func Make(id string, options map[string]interface{},
	logger *zap.SugaredLogger) (*ur.RobotTaskEnv, error) {
	c, err := NewConfig(EnvName(id), options)
	if err != nil {
		return nil, errors.Wrap(err, "make")
	}
	return c.make(logger)
}
