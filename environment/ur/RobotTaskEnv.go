package ur

import (
	"math"

	"github.com/pkg/errors"
	"github.com/samuelfneumann/urgym/environment"
	"github.com/samuelfneumann/urgym/timestep"
	"github.com/samuelfneumann/urgym/utils/matutils"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

// Stepper advances a simulation
type Stepper interface {
	Step() error
	Close() error
}

// RobotTaskEnv pairs a Robot with a GoalTask in a simulation. Episodes
// begin with Reset and end when the task is solved or after a maximum
// number of steps, after which Step fails until the next Reset.
//
// Observations hold the robot observation followed by the task
// observation. Achieved and desired goals are returned separately in
// each TimeStep.
type RobotTaskEnv struct {
	sim   Stepper
	robot Robot
	task  environment.GoalTask

	ender     environment.Ender
	stepLimit *environment.StepLimit

	running     bool
	currentStep timestep.TimeStep
	discount    float64

	obsSpec    environment.Spec
	actionSpec environment.Spec
	goalSpec   environment.Spec
	rewardSpec environment.Spec

	logger *zap.SugaredLogger
}

// NewRobotTaskEnv returns a new RobotTaskEnv. Episodes are cut off
// after maxEpisodeSteps steps.
func NewRobotTaskEnv(sim Stepper, robot Robot, task environment.GoalTask,
	maxEpisodeSteps int, logger *zap.SugaredLogger) (*RobotTaskEnv, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if maxEpisodeSteps <= 0 {
		return nil, errors.Errorf("newRobotTaskEnv: maximum episode steps "+
			"must be positive, got %v", maxEpisodeSteps)
	}

	obsLen := robot.ObservationLen() + task.Obs().Len()
	obsSpec := environment.NewBoxSpec(obsLen, environment.Observation,
		math.Inf(-1), math.Inf(1))

	rewardSpec := environment.NewBoxSpec(1, environment.Reward, math.Inf(-1), 0)
	if r, ok := task.(interface{ RewardRange() r1.Interval }); ok {
		rng := r.RewardRange()
		rewardSpec = environment.NewBoxSpec(1, environment.Reward, rng.Min,
			rng.Max)
	}

	stepLimit := environment.NewStepLimit(maxEpisodeSteps)
	return &RobotTaskEnv{
		sim:   sim,
		robot: robot,
		task:  task,

		// Reaching the goal takes precedence over the step limit
		ender:     environment.MultiEnder{environment.NewSuccessEnder(), stepLimit},
		stepLimit: stepLimit,

		discount:   1.0,
		obsSpec:    obsSpec,
		actionSpec: robot.ActionSpec(),
		goalSpec:   task.GoalSpec(),
		rewardSpec: rewardSpec,
		logger:     logger,
	}, nil
}

// Reset resets the robot and task and begins a new episode
func (r *RobotTaskEnv) Reset() (timestep.TimeStep, error) {
	if err := r.robot.Reset(); err != nil {
		return timestep.TimeStep{}, &EnvError{Op: "reset", Err: err}
	}
	if err := r.task.Reset(); err != nil {
		return timestep.TimeStep{}, &EnvError{Op: "reset", Err: err}
	}

	obs, achieved, desired, err := r.observe()
	if err != nil {
		return timestep.TimeStep{}, &EnvError{Op: "reset", Err: err}
	}

	info := timestep.Info{
		IsSuccess: r.task.IsSuccess(achieved, desired),
		Collision: r.task.Collision(),
	}
	step := timestep.NewGoal(timestep.First, 0, r.discount, obs, achieved,
		desired, info, 0)

	r.currentStep = step
	r.running = true
	r.logger.Debugw("reset", "goal", desired.RawVector().Data)
	return step, nil
}

// Step takes one environmental step given action. It returns the next
// TimeStep and whether the episode ended.
func (r *RobotTaskEnv) Step(action *mat.VecDense) (timestep.TimeStep, bool,
	error) {
	if !r.running {
		return timestep.TimeStep{}, false, &EnvError{Op: "step",
			Err: ErrNotRunning}
	}
	if err := r.actionSpec.CheckShape(action); err != nil {
		return timestep.TimeStep{}, false, &EnvError{Op: "step",
			Err: errors.Wrap(ErrActionShape, err.Error())}
	}

	if err := r.robot.SetAction(action); err != nil {
		return timestep.TimeStep{}, false, &EnvError{Op: "step", Err: err}
	}
	if err := r.sim.Step(); err != nil {
		return timestep.TimeStep{}, false, &EnvError{Op: "step", Err: err}
	}
	if r.task.CollisionAware() {
		if err := r.task.CheckCollision(); err != nil {
			return timestep.TimeStep{}, false, &EnvError{Op: "step", Err: err}
		}
	}

	obs, achieved, desired, err := r.observe()
	if err != nil {
		return timestep.TimeStep{}, false, &EnvError{Op: "step", Err: err}
	}

	info := timestep.Info{
		IsSuccess: r.task.IsSuccess(achieved, desired),
		Collision: r.task.Collision(),
	}
	reward := r.task.ComputeReward(achieved, desired, info)

	step := timestep.NewGoal(timestep.Mid, reward, r.discount, obs,
		achieved, desired, info, r.currentStep.Number+1)
	last := r.ender.End(&step)

	r.currentStep = step
	if last {
		r.running = false
		r.logger.Debugw("episode ended", "steps", step.Number,
			"end", step.EndType(), "success", info.IsSuccess)
	}
	return step, last, nil
}

func (r *RobotTaskEnv) observe() (obs, achieved, desired *mat.VecDense,
	err error) {
	robotObs, err := r.robot.Obs()
	if err != nil {
		return nil, nil, nil, err
	}
	obs = matutils.VecConcat(robotObs, r.task.Obs())

	achieved, err = r.task.AchievedGoal()
	if err != nil {
		return nil, nil, nil, err
	}
	desired, err = r.task.Goal()
	if err != nil {
		return nil, nil, nil, err
	}
	return obs, achieved, desired, nil
}

// Running returns whether an episode is in progress
func (r *RobotTaskEnv) Running() bool {
	return r.running
}

// CurrentTimeStep returns the last TimeStep returned by Reset or Step
func (r *RobotTaskEnv) CurrentTimeStep() timestep.TimeStep {
	return r.currentStep
}

// ComputeReward returns the reward for achieving goal achieved when
// desired was the goal
func (r *RobotTaskEnv) ComputeReward(achieved, desired mat.Vector,
	info timestep.Info) float64 {
	return r.task.ComputeReward(achieved, desired, info)
}

// Robot returns the environment's robot
func (r *RobotTaskEnv) Robot() Robot {
	return r.robot
}

// Task returns the environment's task
func (r *RobotTaskEnv) Task() environment.GoalTask {
	return r.task
}

// MaxEpisodeSteps returns the number of steps after which episodes are
// cut off
func (r *RobotTaskEnv) MaxEpisodeSteps() int {
	return r.stepLimit.Steps()
}

// ObservationSpec returns the observation specification
func (r *RobotTaskEnv) ObservationSpec() environment.Spec {
	return r.obsSpec
}

// GoalSpec returns the specification of achieved and desired goals
func (r *RobotTaskEnv) GoalSpec() environment.Spec {
	return r.goalSpec
}

// ActionSpec returns the action specification
func (r *RobotTaskEnv) ActionSpec() environment.Spec {
	return r.actionSpec
}

// RewardSpec returns the reward specification
func (r *RobotTaskEnv) RewardSpec() environment.Spec {
	return r.rewardSpec
}

// DiscountSpec returns the discount specification
func (r *RobotTaskEnv) DiscountSpec() environment.Spec {
	return environment.NewBoxSpec(1, environment.Discount, 0, 1)
}

// Close releases the environment's simulation
func (r *RobotTaskEnv) Close() error {
	r.running = false
	return r.sim.Close()
}
