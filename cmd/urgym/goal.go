package main

import (
	"context"
	"math/rand/v2"

	"github.com/pkg/errors"
	"github.com/samuelfneumann/urgym/environment/envconfig"
	"github.com/samuelfneumann/urgym/environment/ur"
	"github.com/samuelfneumann/urgym/kinematics"
	"github.com/samuelfneumann/urgym/motionplan"
	"github.com/samuelfneumann/urgym/simulation"
	"github.com/samuelfneumann/urgym/utils/metric"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat/distmv"
)

// ikAttempts bounds the number of inverse kinematics queries made for
// a collision-free goal configuration
const ikAttempts = 10

// goalPlan is a path executed to a sampled task goal
type goalPlan struct {
	// Goal is the sampled pose goal
	Goal *mat.VecDense

	// Target is the configuration planned to
	Target []float64
	Path   [][]float64

	// Joints holds the joint angles of the robot after execution
	Joints []float64
}

// goalPose returns the flange pose of a scalar-last pose goal
func goalPose(goal mat.Vector) kinematics.Pose {
	return kinematics.Pose{
		Position: r3.Vec{X: goal.AtVec(0), Y: goal.AtVec(1),
			Z: goal.AtVec(2)},
		Orientation: metric.Orientation(goal),
	}
}

// planToGoal samples a goal of the orientation reach task, solves
// inverse kinematics for it, and plans from planStart to the solution.
// The path is interpolated to waypoints configurations and executed
// kinematically.
func planToGoal(ctx context.Context, config motionplan.Config, seed uint64,
	waypoints int, logger *zap.SugaredLogger) (result goalPlan, err error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	envConf, err := envconfig.NewConfig(envconfig.ReachOrientation,
		map[string]interface{}{"seed": seed})
	if err != nil {
		return goalPlan{}, errors.Wrap(err, "planToGoal")
	}
	conf, err := envConf.EnvConfig()
	if err != nil {
		return goalPlan{}, errors.Wrap(err, "planToGoal")
	}

	sim := simulation.NewScene(conf.Simulation, logger)
	defer func() {
		err = multierr.Append(err, sim.Close())
	}()

	robotConf := conf.Robot
	robotConf.Control = ur.Joints
	robotConf.Neutral = append([]float64(nil), planStart...)
	robotConf.Seed = seed
	robot, err := ur.NewUR5(sim, robotConf, logger)
	if err != nil {
		return goalPlan{}, errors.Wrap(err, "planToGoal")
	}

	task, err := ur.NewTask(sim, robot, conf.Variant, seed, logger)
	if err != nil {
		return goalPlan{}, errors.Wrap(err, "planToGoal")
	}
	if err := task.Reset(); err != nil {
		return goalPlan{}, errors.Wrap(err, "planToGoal")
	}
	goal, err := task.Goal()
	if err != nil {
		return goalPlan{}, errors.Wrap(err, "planToGoal")
	}

	iface, err := motionplan.NewInterface(sim, robot, config, logger)
	if err != nil {
		return goalPlan{}, errors.Wrap(err, "planToGoal")
	}
	target, err := goalJoints(iface, robot.Model(), goalPose(goal), seed)
	if err != nil {
		return goalPlan{}, errors.Wrap(err, "planToGoal")
	}
	logger.Infow("solved goal", "task", conf.Variant.Name, "goal",
		goal.RawVector().Data, "joints", target)

	if err := robot.SetJointAngles(planStart); err != nil {
		return goalPlan{}, errors.Wrap(err, "planToGoal")
	}
	ok, path, err := iface.Plan(ctx, target)
	if err != nil {
		return goalPlan{}, errors.Wrap(err, "planToGoal")
	}
	if !ok {
		return goalPlan{}, errors.Errorf("planToGoal: no path found with "+
			"planner %v", iface.Planner())
	}

	path = iface.Interpolate(path, waypoints)
	if err := iface.Execute(path, false); err != nil {
		return goalPlan{}, errors.Wrap(err, "planToGoal")
	}
	joints, err := robot.JointAngles()
	if err != nil {
		return goalPlan{}, errors.Wrap(err, "planToGoal")
	}

	return goalPlan{
		Goal:   goal,
		Target: target,
		Path:   path,
		Joints: joints,
	}, nil
}

// goalJoints returns a valid configuration placing the flange at pose.
// The first query is seeded at planStart, later ones at random
// configurations within the joint limits.
func goalJoints(iface *motionplan.Interface, model *kinematics.Model,
	pose kinematics.Pose, seed uint64) ([]float64, error) {
	ik := kinematics.NewIKSolver(model, seed)
	restarts := distmv.NewUniform(model.Limits, rand.NewPCG(seed, ^seed))

	q := append([]float64(nil), planStart...)
	for attempt := 0; attempt < ikAttempts; attempt++ {
		if attempt > 0 {
			q = restarts.Rand(nil)
		}

		solution, err := ik.Solve(q, pose, true)
		if err != nil {
			return nil, errors.Wrap(err, "goalJoints")
		}
		if !solution.Converged {
			continue
		}

		valid, err := iface.IsValid(solution.Joints)
		if err != nil {
			return nil, errors.Wrap(err, "goalJoints")
		}
		if valid {
			return solution.Joints, nil
		}
	}
	return nil, errors.Errorf("goalJoints: no valid solution after %v "+
		"attempts", ikAttempts)
}
