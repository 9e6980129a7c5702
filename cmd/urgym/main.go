// Package main is the urgym command, which lists the registered reach
// environments, rolls out agents in them, and demonstrates the motion
// planner.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/samuelfneumann/urgym/environment/envconfig"
	"github.com/samuelfneumann/urgym/motionplan"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// Flags.
	flagDebug           = "debug"
	flagEnv             = "env"
	flagSteps           = "steps"
	flagMaxEpisodeSteps = "max-episode-steps"
	flagRewardType      = "reward-type"
	flagControlType     = "control-type"
	flagSeed            = "seed"
	flagRender          = "render"
	flagConfig          = "config"
	flagOut             = "out"
	flagPlot            = "plot"
	flagCheckpoint      = "checkpoint"
	flagFlatten         = "flatten-goal"
	flagPlanner         = "planner"
	flagWaypoints       = "waypoints"
	flagKinematic       = "kinematic"
	flagTimeout         = "timeout"
	flagPlanIter        = "plan-iter"
	flagToGoal          = "to-goal"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "urgym",
		Usage: "goal-conditioned UR5e reach environments",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "list the registered environments",
				Action: listAction,
			},
			{
				Name:  "rollout",
				Usage: "roll out a random agent in an environment",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  flagEnv,
						Value: string(envconfig.Reach),
						Usage: "environment ID, one of " +
							strings.Join(envconfig.IDs(), ", "),
					},
					&cli.UintFlag{
						Name:  flagSteps,
						Value: 1000,
						Usage: "total number of environmental steps",
					},
					&cli.IntFlag{
						Name:  flagMaxEpisodeSteps,
						Value: envconfig.DefaultOptions().MaxEpisodeSteps,
						Usage: "steps after which episodes are truncated",
					},
					&cli.StringFlag{
						Name:  flagRewardType,
						Value: envconfig.DefaultOptions().RewardType,
						Usage: "sparse, dense, or regularized",
					},
					&cli.StringFlag{
						Name:  flagControlType,
						Value: envconfig.DefaultOptions().ControlType,
						Usage: "ee or joints",
					},
					&cli.Uint64Flag{
						Name:  flagSeed,
						Usage: "seed for goal sampling and the agent",
					},
					&cli.BoolFlag{
						Name:  flagRender,
						Usage: "render the simulation",
					},
					&cli.PathFlag{
						Name:  flagConfig,
						Usage: "JSON experiment configuration, overriding the environment flags",
					},
					&cli.PathFlag{
						Name:  flagOut,
						Usage: "directory to save tracked data in",
					},
					&cli.PathFlag{
						Name:  flagPlot,
						Usage: "PNG file to plot episodic returns to",
					},
					&cli.BoolFlag{
						Name:  flagFlatten,
						Usage: "append the achieved and desired goals to observations",
					},
					&cli.IntFlag{
						Name:  flagCheckpoint,
						Usage: "save returns every n steps, requires --" + flagOut,
					},
				},
				Action: rolloutAction,
			},
			{
				Name:  "plan",
				Usage: "plan and execute a path around a box obstacle",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  flagPlanner,
						Value: motionplan.DefaultPlanner,
						Usage: "planner, one of " +
							strings.Join(motionplan.Planners(), ", "),
					},
					&cli.Uint64Flag{
						Name:  flagSeed,
						Usage: "seed for the planner and goal sampling",
					},
					&cli.IntFlag{
						Name:  flagPlanIter,
						Value: motionplan.NewDefaultOptions().PlanIter,
						Usage: "maximum planner iterations",
					},
					&cli.IntFlag{
						Name:  flagWaypoints,
						Value: 500,
						Usage: "number of waypoints to interpolate the path to",
					},
					&cli.BoolFlag{
						Name:  flagKinematic,
						Usage: "teleport between waypoints instead of driving the joints",
					},
					&cli.DurationFlag{
						Name:  flagTimeout,
						Usage: "planning timeout, zero for none",
					},
					&cli.BoolFlag{
						Name: flagToGoal,
						Usage: "plan to an inverse kinematics solution of a " +
							"sampled " + string(envconfig.ReachOrientation) +
							" goal instead, executed kinematically",
					},
				},
				Action: planAction,
			},
		},
	}
}

// newLogger returns the logger of the command
func newLogger(c *cli.Context) (*zap.SugaredLogger, error) {
	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if c.Bool(flagDebug) {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	config.DisableStacktrace = true

	logger, err := config.Build()
	if err != nil {
		return nil, errors.Wrap(err, "could not create logger")
	}
	return logger.Sugar(), nil
}

func listAction(c *cli.Context) error {
	for _, id := range envconfig.IDs() {
		fmt.Fprintln(c.App.Writer, id)
	}
	return nil
}
