package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/samuelfneumann/urgym/environment/ur"
	"github.com/samuelfneumann/urgym/motionplan"
	"github.com/samuelfneumann/urgym/simulation"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// planStart holds the arm upright
	planStart = []float64{0, -1.57, 0, 0, 0, 0}
	planGoal  = []float64{0, 0, 0, 0, 0, 0}

	// The box hangs over the workspace between start and goal
	boxPosition    = r3.Vec{X: 1, Y: 0, Z: 0.7}
	boxHalfExtents = r3.Vec{X: 0.5, Y: 0.5, Z: 0.05}
)

func planAction(c *cli.Context) (err error) {
	logger, err := newLogger(c)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	config := motionplan.DefaultConfig()
	config.Planner = c.String(flagPlanner)
	config.Options.Seed = c.Uint64(flagSeed)
	config.Options.PlanIter = c.Int(flagPlanIter)

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout := c.Duration(flagTimeout); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if c.Bool(flagToGoal) {
		result, err := planToGoal(ctx, config, c.Uint64(flagSeed),
			c.Int(flagWaypoints), logger)
		if err != nil {
			return errors.Wrap(err, "plan")
		}
		logger.Infow("executed path", "waypoints", len(result.Path),
			"joints", result.Joints)
		return nil
	}

	sim := simulation.NewScene(simulation.DefaultConfig(), logger)
	defer func() {
		err = multierr.Append(err, sim.Close())
	}()

	robotConf := ur.DefaultRobotConfig()
	robotConf.Control = ur.Joints
	robotConf.Neutral = append([]float64(nil), planStart...)
	robot, err := ur.NewUR5(sim, robotConf, logger)
	if err != nil {
		return errors.Wrap(err, "plan")
	}
	if err := sim.CreatePlane(0); err != nil {
		return errors.Wrap(err, "plan")
	}

	iface, err := motionplan.NewInterface(sim, robot, config, logger)
	if err != nil {
		return errors.Wrap(err, "plan")
	}
	box, err := iface.AddBox(boxPosition, boxHalfExtents)
	if err != nil {
		return errors.Wrap(err, "plan")
	}
	logger.Infow("added obstacle", "name", box, "position", boxPosition,
		"half extents", boxHalfExtents)

	ok, path, err := iface.Plan(ctx, planGoal)
	if err != nil {
		return errors.Wrap(err, "plan")
	}
	if !ok {
		return errors.Errorf("plan: no path found with planner %v",
			iface.Planner())
	}
	logger.Infow("found path", "planner", iface.Planner(),
		"waypoints", len(path))

	path = iface.Interpolate(path, c.Int(flagWaypoints))
	if err := iface.Execute(path, !c.Bool(flagKinematic)); err != nil {
		return errors.Wrap(err, "plan")
	}

	joints, err := robot.JointAngles()
	if err != nil {
		return errors.Wrap(err, "plan")
	}
	logger.Infow("executed path", "waypoints", len(path), "joints", joints)
	return nil
}
