package ur

import (
	"github.com/pkg/errors"
	"github.com/samuelfneumann/urgym/simulation"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// DefaultMaxEpisodeSteps is the default number of steps after which
// episodes are cut off
const DefaultMaxEpisodeSteps = 100

// EnvConfig configures a RobotTaskEnv along with its own simulation
type EnvConfig struct {
	Variant         Variant
	Robot           RobotConfig
	Simulation      simulation.Config
	MaxEpisodeSteps int
	Seed            uint64
}

// NewEnv creates a new simulation and a RobotTaskEnv acting in it
func NewEnv(config EnvConfig, logger *zap.SugaredLogger) (*RobotTaskEnv,
	error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if config.MaxEpisodeSteps == 0 {
		config.MaxEpisodeSteps = DefaultMaxEpisodeSteps
	}
	config.Robot.Seed = config.Seed

	sim := simulation.NewScene(config.Simulation, logger)

	robot, err := NewUR5(sim, config.Robot, logger)
	if err != nil {
		return nil, multierr.Append(errors.Wrap(err, "newEnv"), sim.Close())
	}

	task, err := NewTask(sim, robot, config.Variant, config.Seed, logger)
	if err != nil {
		return nil, multierr.Append(errors.Wrap(err, "newEnv"), sim.Close())
	}

	env, err := NewRobotTaskEnv(sim, robot, task, config.MaxEpisodeSteps,
		logger)
	if err != nil {
		return nil, multierr.Append(errors.Wrap(err, "newEnv"), sim.Close())
	}

	logger.Debugw("created environment", "task", config.Variant.Name,
		"control", config.Robot.Control, "reward", config.Variant.Reward.Type)
	return env, nil
}
