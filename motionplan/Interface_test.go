package motionplan

import (
	"context"
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/samuelfneumann/urgym/kinematics"
	"github.com/samuelfneumann/urgym/simulation"
	"go.viam.com/test"
	"gonum.org/v1/gonum/spatial/r3"
)

var neutral = []float64{math.Pi, -math.Pi / 2, math.Pi / 2, -math.Pi / 2,
	-math.Pi / 2, 0}

// sceneRobot records the commands it is sent
type sceneRobot struct {
	sim   *simulation.Scene
	model *kinematics.Model

	set        [][]float64
	controlled [][]float64
}

func (s *sceneRobot) Name() string             { return "ur5e" }
func (s *sceneRobot) Model() *kinematics.Model { return s.model }

func (s *sceneRobot) JointAngles() ([]float64, error) {
	return s.sim.JointAngles(s.Name())
}

func (s *sceneRobot) SetJointAngles(joints []float64) error {
	s.set = append(s.set, append([]float64(nil), joints...))
	return s.sim.SetJointAngles(s.Name(), joints)
}

func (s *sceneRobot) ControlJoints(targets []float64) error {
	s.controlled = append(s.controlled, append([]float64(nil), targets...))
	return s.sim.ControlJoints(s.Name(), targets)
}

func newInterface(t *testing.T, start []float64) (*Interface, *sceneRobot,
	*simulation.Scene) {
	t.Helper()

	sim := simulation.NewScene(simulation.DefaultConfig(), nil)
	model := kinematics.NewUR5e()
	test.That(t, sim.LoadRobot("ur5e", model, start), test.ShouldBeNil)

	robot := &sceneRobot{sim: sim, model: model}
	config := DefaultConfig()
	config.Options.Seed = 1
	i, err := NewInterface(sim, robot, config, nil)
	test.That(t, err, test.ShouldBeNil)
	return i, robot, sim
}

func rotatedBase(theta float64) []float64 {
	q := append([]float64(nil), neutral...)
	q[0] = theta
	return q
}

// checkValidPath asserts that path joins start to goal through valid
// configurations
func checkValidPath(t *testing.T, i *Interface, path [][]float64, start,
	goal []float64) {
	t.Helper()

	test.That(t, len(path), test.ShouldBeGreaterThanOrEqualTo, 2)
	test.That(t, path[0], test.ShouldResemble, start)
	test.That(t, path[len(path)-1], test.ShouldResemble, goal)
	for n := 1; n < len(path); n++ {
		ok, err := checkPath(context.Background(), i.IsValid, path[n-1],
			path[n], i.config.Options.Resolution)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, ok, test.ShouldBeTrue)
	}
}

func TestSetPlanner(t *testing.T) {
	i, _, _ := newInterface(t, neutral)
	test.That(t, i.Planner(), test.ShouldEqual, "RRTConnect")

	test.That(t, i.SetPlanner("RRT"), test.ShouldBeNil)
	test.That(t, i.Planner(), test.ShouldEqual, "RRT")

	err := i.SetPlanner("PRM")
	test.That(t, err, test.ShouldNotBeNil)
	var unsupported *UnsupportedPlannerError
	test.That(t, errors.As(err, &unsupported), test.ShouldBeTrue)
	test.That(t, unsupported.Name, test.ShouldEqual, "PRM")
	test.That(t, i.Planner(), test.ShouldEqual, "RRT")

	config := DefaultConfig()
	config.Planner = "PRM"
	sim := simulation.NewScene(simulation.DefaultConfig(), nil)
	_, err = NewInterface(sim, &sceneRobot{sim: sim, model: kinematics.NewUR5e()},
		config, nil)
	test.That(t, errors.As(err, &unsupported), test.ShouldBeTrue)
}

func TestPlanners(t *testing.T) {
	test.That(t, Planners(), test.ShouldResemble, []string{"RRT", "RRTConnect"})
	test.That(t, RegisterPlanner("RRT", NewRRT), test.ShouldNotBeNil)
}

func TestPlanSameStartGoal(t *testing.T) {
	i, _, _ := newInterface(t, neutral)

	ok, path, err := i.Plan(context.Background(), neutral)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, path, test.ShouldResemble, [][]float64{neutral, neutral})
}

func TestPlanWrongGoal(t *testing.T) {
	i, _, _ := newInterface(t, neutral)
	_, _, err := i.Plan(context.Background(), []float64{0, 0})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestPlanInvalidGoal(t *testing.T) {
	start := rotatedBase(math.Pi / 2)
	i, _, _ := newInterface(t, start)

	// The box surrounds the end effector at the neutral configuration
	_, err := i.AddBox(r3.Vec{X: 0.49, Y: 0.13, Z: 0.45},
		r3.Vec{X: 0.05, Y: 0.05, Z: 0.05})
	test.That(t, err, test.ShouldBeNil)

	ok, err := i.IsValid(start)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ok, test.ShouldBeTrue)

	ok, path, err := i.Plan(context.Background(), neutral)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, len(path), test.ShouldEqual, 0)
}

func TestPlanOutOfLimits(t *testing.T) {
	i, _, _ := newInterface(t, neutral)

	goal := rotatedBase(3 * math.Pi)
	ok, path, err := i.Plan(context.Background(), goal)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, len(path), test.ShouldEqual, 0)
}

func TestPlanFreeSpace(t *testing.T) {
	for _, planner := range Planners() {
		start := rotatedBase(math.Pi / 2)
		i, robot, _ := newInterface(t, start)
		test.That(t, i.SetPlanner(planner), test.ShouldBeNil)

		goal := rotatedBase(math.Pi)
		goal[1] = -1.4
		ok, path, err := i.Plan(context.Background(), goal)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, ok, test.ShouldBeTrue)
		checkValidPath(t, i, path, start, goal)

		// Free space is crossed in a straight line
		test.That(t, len(path), test.ShouldEqual, 2)

		// Planning does not move the robot
		joints, err := robot.JointAngles()
		test.That(t, err, test.ShouldBeNil)
		test.That(t, joints, test.ShouldResemble, start)
	}
}

func TestPlanAroundObstacle(t *testing.T) {
	start := rotatedBase(math.Pi / 2)
	goal := rotatedBase(3 * math.Pi / 2)
	i, _, _ := newInterface(t, start)

	_, err := i.AddBox(r3.Vec{X: 0.49, Y: 0.13, Z: 0.45},
		r3.Vec{X: 0.05, Y: 0.05, Z: 0.05})
	test.That(t, err, test.ShouldBeNil)

	// Rotating the base sweeps the end effector through the box
	ok, err := checkPath(context.Background(), i.IsValid, start, goal,
		i.config.Options.Resolution)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ok, test.ShouldBeFalse)

	ok, path, err := i.Plan(context.Background(), goal)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ok, test.ShouldBeTrue)
	checkValidPath(t, i, path, start, goal)
	test.That(t, len(path), test.ShouldBeGreaterThan, 2)
}

func TestPlanCancelled(t *testing.T) {
	i, _, _ := newInterface(t, rotatedBase(math.Pi/2))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok, _, err := i.Plan(ctx, rotatedBase(math.Pi))
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, errors.Is(err, context.Canceled), test.ShouldBeTrue)
}

func TestExecuteKinematic(t *testing.T) {
	i, robot, _ := newInterface(t, neutral)

	path := [][]float64{neutral, rotatedBase(3), rotatedBase(2.5)}
	test.That(t, i.Execute(path, false), test.ShouldBeNil)
	test.That(t, robot.set, test.ShouldResemble, path)
	test.That(t, len(robot.controlled), test.ShouldEqual, 0)

	joints, err := robot.JointAngles()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, joints, test.ShouldResemble, path[2])
}

func TestExecuteDynamic(t *testing.T) {
	i, robot, _ := newInterface(t, neutral)

	path := [][]float64{neutral, rotatedBase(math.Pi + 0.1),
		rotatedBase(math.Pi + 0.5)}
	test.That(t, i.Execute(path, true), test.ShouldBeNil)
	test.That(t, robot.controlled, test.ShouldResemble, path)
	test.That(t, len(robot.set), test.ShouldEqual, 0)

	joints, err := robot.JointAngles()
	test.That(t, err, test.ShouldBeNil)
	for n := range joints {
		test.That(t, joints[n], test.ShouldAlmostEqual, path[2][n], 1e-6)
	}
}

func TestExecuteWrongWaypoint(t *testing.T) {
	i, robot, _ := newInterface(t, neutral)

	err := i.Execute([][]float64{rotatedBase(3), {0, 0, 0}}, false)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, len(robot.set), test.ShouldEqual, 0)
}

func TestObstacles(t *testing.T) {
	i, _, sim := newInterface(t, neutral)

	name, err := i.AddBox(r3.Vec{X: 1, Z: 0.7}, r3.Vec{X: 0.5, Y: 0.5, Z: 0.05})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, i.Obstacles(), test.ShouldResemble, []string{name})

	_, err = sim.Body(name)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, i.ClearObstacles(), test.ShouldBeNil)
	test.That(t, len(i.Obstacles()), test.ShouldEqual, 0)
	_, err = sim.Body(name)
	test.That(t, err, test.ShouldNotBeNil)

	test.That(t, sim.CreatePlane(0), test.ShouldBeNil)
	i.SetObstacles([]string{"plane"})
	test.That(t, i.Obstacles(), test.ShouldResemble, []string{"plane"})
}

func TestPlanAndExecuteDemo(t *testing.T) {
	start := []float64{0, -1.57, 0, 0, 0, 0}
	goal := make([]float64, 6)
	i, robot, sim := newInterface(t, start)

	test.That(t, sim.CreatePlane(0), test.ShouldBeNil)
	_, err := i.AddBox(r3.Vec{X: 1, Z: 0.7}, r3.Vec{X: 0.5, Y: 0.5, Z: 0.05})
	test.That(t, err, test.ShouldBeNil)

	ok, path, err := i.Plan(context.Background(), goal)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ok, test.ShouldBeTrue)
	checkValidPath(t, i, path, start, goal)

	path = i.Interpolate(path, 100)
	test.That(t, len(path), test.ShouldEqual, 100)
	test.That(t, i.Execute(path, true), test.ShouldBeNil)

	joints, err := robot.JointAngles()
	test.That(t, err, test.ShouldBeNil)
	for n := range joints {
		test.That(t, joints[n], test.ShouldAlmostEqual, 0.0, 1e-6)
	}
}

func TestInterpolate(t *testing.T) {
	path := [][]float64{{0, 0}, {1, 0}, {1, 3}}

	out := Interpolate(path, 10)
	test.That(t, len(out), test.ShouldEqual, 10)
	test.That(t, out[0], test.ShouldResemble, path[0])
	test.That(t, out[9], test.ShouldResemble, path[2])

	// Waypoints are kept, and points are spread by segment length
	test.That(t, out[2], test.ShouldResemble, path[1])
	for n := 1; n < len(out); n++ {
		test.That(t, inputDist(out[n-1], out[n]), test.ShouldBeLessThanOrEqualTo,
			0.5+1e-9)
	}

	test.That(t, Interpolate(path, 2), test.ShouldResemble, path)
	test.That(t, len(Interpolate(path[:1], 10)), test.ShouldEqual, 1)
}
