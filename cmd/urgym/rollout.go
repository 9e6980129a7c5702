package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/samuelfneumann/urgym/agent"
	"github.com/samuelfneumann/urgym/agent/random"
	"github.com/samuelfneumann/urgym/environment/envconfig"
	"github.com/samuelfneumann/urgym/experiment"
	"github.com/samuelfneumann/urgym/experiment/checkpointer"
	"github.com/samuelfneumann/urgym/experiment/tracker"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
)

// experimentConfig returns the experiment configured by the rollout
// flags, or by the --config file if one is given
func experimentConfig(c *cli.Context) (experiment.Config, error) {
	if path := c.Path(flagConfig); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return experiment.Config{}, errors.Wrap(err, "could not read config")
		}
		var config experiment.Config
		if err := json.Unmarshal(data, &config); err != nil {
			return experiment.Config{}, errors.Wrap(err, "could not decode config")
		}
		return config, nil
	}

	envConf, err := envconfig.NewConfig(envconfig.EnvName(c.String(flagEnv)),
		map[string]interface{}{
			"render":            c.Bool(flagRender),
			"reward_type":       c.String(flagRewardType),
			"control_type":      c.String(flagControlType),
			"seed":              c.Uint64(flagSeed),
			"max_episode_steps": c.Int(flagMaxEpisodeSteps),
		})
	if err != nil {
		return experiment.Config{}, err
	}

	return experiment.Config{
		Type:        experiment.OnlineExp,
		MaxSteps:    c.Uint(flagSteps),
		EnvConf:     envConf,
		AgentConf:   agent.NewTypedConfig(random.DefaultConfig()),
		FlattenGoal: c.Bool(flagFlatten),
	}, nil
}

func rolloutAction(c *cli.Context) (err error) {
	logger, err := newLogger(c)
	if err != nil {
		return err
	}
	defer func() {
		// Syncing stderr fails on some platforms
		_ = logger.Sync()
	}()

	config, err := experimentConfig(c)
	if err != nil {
		return errors.Wrap(err, "rollout")
	}

	out := c.Path(flagOut)
	if out != "" {
		if err := os.MkdirAll(out, 0o755); err != nil {
			return errors.Wrap(err, "rollout")
		}
	}
	returns := tracker.NewReturn(filepath.Join(out, "return.bin"))
	lengths := tracker.NewEpisodeLength(filepath.Join(out, "length.bin"))
	successes := tracker.NewSuccess(filepath.Join(out, "success.bin"))

	var check []checkpointer.Checkpointer
	if n := c.Int(flagCheckpoint); n > 0 {
		if out == "" {
			return errors.Errorf("rollout: --%v requires --%v", flagCheckpoint,
				flagOut)
		}
		nStep, err := checkpointer.NewNStep(n, returns,
			checkpointer.FilenameEnumerator(0,
				filepath.Join(out, "return-checkpoint"), ".bin"))
		if err != nil {
			return errors.Wrap(err, "rollout")
		}
		check = append(check, nStep)
	}

	exp, err := config.CreateExp(logger,
		[]tracker.Tracker{returns, lengths, successes}, check)
	if err != nil {
		return errors.Wrap(err, "rollout")
	}
	if online, ok := exp.(*experiment.Online); ok {
		defer func() {
			err = multierr.Append(err, online.Close())
		}()
	}

	logger.Infow("starting rollout", "env", config.EnvConf.Environment,
		"steps", config.MaxSteps, "seed", config.EnvConf.Seed)
	if err := exp.Run(); err != nil {
		return errors.Wrap(err, "rollout")
	}

	rate := mean(successes.Data())
	logger.Infow("rollout finished", "episodes", len(lengths.Data()),
		"mean return", mean(returns.Data()), "success rate", rate)

	if out != "" {
		if err := exp.Save(); err != nil {
			return errors.Wrap(err, "rollout")
		}
	}
	if path := c.Path(flagPlot); path != "" {
		if err := plotReturns(path, string(config.EnvConf.Environment),
			returns.Data()); err != nil {
			return errors.Wrap(err, "rollout")
		}
		logger.Infow("saved plot", "path", path)
	}
	return nil
}
