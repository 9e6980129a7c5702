package ur

import (
	"testing"

	"github.com/samuelfneumann/urgym/kinematics"
	"github.com/samuelfneumann/urgym/simulation"
	"github.com/samuelfneumann/urgym/timestep"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

func newEnv(t *testing.T, v Variant, robot RobotConfig,
	maxSteps int) *RobotTaskEnv {
	t.Helper()

	env, err := NewEnv(EnvConfig{
		Variant:         v,
		Robot:           robot,
		Simulation:      simulation.DefaultConfig(),
		MaxEpisodeSteps: maxSteps,
		Seed:            1,
	}, nil)
	test.That(t, err, test.ShouldBeNil)
	return env
}

func TestStepBeforeReset(t *testing.T) {
	env := newEnv(t, Reach(), DefaultRobotConfig(), 0)
	test.That(t, env.MaxEpisodeSteps(), test.ShouldEqual, DefaultMaxEpisodeSteps)
	test.That(t, env.Running(), test.ShouldBeFalse)

	_, last, err := env.Step(mat.NewVecDense(3, nil))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, IsNotRunning(err), test.ShouldBeTrue)
	test.That(t, last, test.ShouldBeFalse)
}

func TestStepActionShape(t *testing.T) {
	env := newEnv(t, Reach(), DefaultRobotConfig(), 10)
	_, err := env.Reset()
	test.That(t, err, test.ShouldBeNil)

	_, _, err = env.Step(mat.NewVecDense(6, nil))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, IsActionShape(err), test.ShouldBeTrue)

	// The episode continues
	test.That(t, env.Running(), test.ShouldBeTrue)
}

func TestReset(t *testing.T) {
	env := newEnv(t, ReachIAI(), DefaultRobotConfig(), 10)

	step, err := env.Reset()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, step.First(), test.ShouldBeTrue)
	test.That(t, step.Number, test.ShouldEqual, 0)
	test.That(t, step.Observation.Len(), test.ShouldEqual, 6)
	test.That(t, step.AchievedGoal.Len(), test.ShouldEqual, 3)
	test.That(t, step.DesiredGoal.Len(), test.ShouldEqual, 3)

	goal, err := env.Task().Goal()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, step.DesiredGoal.RawVector().Data, test.ShouldResemble,
		goal.RawVector().Data)

	pose, err := env.Robot().EEPose()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, step.AchievedGoal.RawVector().Data, test.ShouldResemble,
		pose.PositionVector().RawVector().Data)

	current := env.CurrentTimeStep()
	test.That(t, current.First(), test.ShouldBeTrue)
}

func TestTruncation(t *testing.T) {
	env := newEnv(t, Reach().WithRewardType(Sparse), DefaultRobotConfig(), 3)
	_, err := env.Reset()
	test.That(t, err, test.ShouldBeNil)

	action := mat.NewVecDense(3, nil)
	for i := 1; i <= 3; i++ {
		step, last, err := env.Step(action)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, step.Number, test.ShouldEqual, i)
		test.That(t, step.Reward, test.ShouldEqual, -1.0)
		test.That(t, last, test.ShouldEqual, i == 3)
		test.That(t, step.Last(), test.ShouldEqual, i == 3)
		test.That(t, step.Terminated(), test.ShouldBeFalse)
		test.That(t, step.Truncated(), test.ShouldEqual, i == 3)
	}
	test.That(t, env.Running(), test.ShouldBeFalse)

	_, _, err = env.Step(action)
	test.That(t, IsNotRunning(err), test.ShouldBeTrue)

	// A new episode may begin
	step, err := env.Reset()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, step.Number, test.ShouldEqual, 0)
	test.That(t, env.Running(), test.ShouldBeTrue)
}

func TestSuccessTermination(t *testing.T) {
	env := newEnv(t, ReachIAI().WithRewardType(Sparse), DefaultRobotConfig(), 10)
	step, err := env.Reset()
	test.That(t, err, test.ShouldBeNil)

	// Place the end effector at the goal
	robot := env.Robot().(*UR5)
	joints, err := robot.JointAngles()
	test.That(t, err, test.ShouldBeNil)
	pose, err := robot.EEPose()
	test.That(t, err, test.ShouldBeNil)
	goal := step.DesiredGoal
	pose.Position = r3.Vec{X: goal.AtVec(0), Y: goal.AtVec(1), Z: goal.AtVec(2)}

	solution, err := kinematics.NewIKSolver(robot.Model(), 1).Solve(joints, pose, false)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, solution.Converged, test.ShouldBeTrue)
	test.That(t, robot.SetJointAngles(solution.Joints), test.ShouldBeNil)

	step, last, err := env.Step(mat.NewVecDense(3, nil))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, last, test.ShouldBeTrue)
	test.That(t, step.Info.IsSuccess, test.ShouldBeTrue)
	test.That(t, step.Reward, test.ShouldEqual, 0.0)
	test.That(t, step.Terminated(), test.ShouldBeTrue)
	test.That(t, step.Truncated(), test.ShouldBeFalse)
	test.That(t, step.EndType(), test.ShouldEqual, timestep.TerminalStateReached)
	test.That(t, env.Running(), test.ShouldBeFalse)

	reward := env.ComputeReward(step.AchievedGoal, step.DesiredGoal, step.Info)
	test.That(t, reward, test.ShouldEqual, step.Reward)
}

func TestDenseStepReward(t *testing.T) {
	env := newEnv(t, ReachWithRegularization(), DefaultRobotConfig(), 10)
	_, err := env.Reset()
	test.That(t, err, test.ShouldBeNil)

	step, _, err := env.Step(mat.NewVecDense(3, []float64{0.2, 0.2, 0}))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, step.Info.Collision, test.ShouldBeFalse)
	test.That(t, step.Reward, test.ShouldEqual,
		env.ComputeReward(step.AchievedGoal, step.DesiredGoal, step.Info))
	test.That(t, step.Reward, test.ShouldBeLessThan, -0.4)
}

func TestEnvSpecs(t *testing.T) {
	robot := DefaultRobotConfig()
	robot.Orientation = true
	env := newEnv(t, ReachWithObstacles().WithRewardType(Sparse), robot, 10)

	test.That(t, env.ObservationSpec().Len(), test.ShouldEqual, 16)
	test.That(t, env.ActionSpec().Len(), test.ShouldEqual, 6)
	test.That(t, env.GoalSpec().Len(), test.ShouldEqual, 7)
	test.That(t, env.RewardSpec().LowerBound.AtVec(0), test.ShouldEqual, -1.0)
	test.That(t, env.RewardSpec().UpperBound.AtVec(0), test.ShouldEqual, 0.0)
	test.That(t, env.DiscountSpec().UpperBound.AtVec(0), test.ShouldEqual, 1.0)

	step, err := env.Reset()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, env.ObservationSpec().CheckShape(step.Observation), test.ShouldBeNil)
	test.That(t, env.GoalSpec().Contains(step.DesiredGoal), test.ShouldBeTrue)

	// Obstacle observations follow the robot observation
	test.That(t, step.Observation.AtVec(10), test.ShouldEqual, 0.45)
}

func TestEnvClose(t *testing.T) {
	env := newEnv(t, Reach(), DefaultRobotConfig(), 10)
	_, err := env.Reset()
	test.That(t, err, test.ShouldBeNil)

	test.That(t, env.Close(), test.ShouldBeNil)
	test.That(t, env.Running(), test.ShouldBeFalse)
	test.That(t, env.Close(), test.ShouldNotBeNil)
}

func TestNewEnvError(t *testing.T) {
	robot := DefaultRobotConfig()
	robot.Control = "torque"
	_, err := NewEnv(EnvConfig{Variant: Reach(), Robot: robot}, nil)
	test.That(t, err, test.ShouldNotBeNil)

	_, err = NewRobotTaskEnv(nil, nil, nil, 0, nil)
	test.That(t, err, test.ShouldNotBeNil)
}
