package motionplan

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"github.com/samuelfneumann/urgym/kinematics"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultPlanner is the planner used by a new Interface
const DefaultPlanner = "RRTConnect"

// Robot is a simulated arm whose motions are planned
type Robot interface {
	Name() string
	Model() *kinematics.Model
	JointAngles() ([]float64, error)
	SetJointAngles(joints []float64) error
	ControlJoints(targets []float64) error
}

// Simulation is the part of a simulation.Simulation used for planning
// and execution
type Simulation interface {
	CreateBox(name string, halfExtents, position r3.Vec, ghost bool,
		color [4]float64) (string, error)
	RemoveBody(name string) error
	CheckCollisionAt(robot string, joints []float64,
		against []string) (bool, error)
	Step() error
}

// Config configures an Interface
type Config struct {
	Planner string
	Options Options

	// Smooth removes unnecessary waypoints from planned paths
	Smooth bool

	// Tolerance is the largest joint error at which a waypoint counts
	// as reached during dynamic execution
	Tolerance float64

	// MaxWaypointSteps bounds the simulation steps spent driving toward
	// a single waypoint during dynamic execution
	MaxWaypointSteps int
}

// DefaultConfig returns the default Interface configuration
func DefaultConfig() Config {
	return Config{
		Planner:          DefaultPlanner,
		Options:          NewDefaultOptions(),
		Smooth:           true,
		Tolerance:        1e-6,
		MaxWaypointSteps: 50,
	}
}

// Interface plans collision-free joint-space paths for a robot and
// executes them in a simulation. A configuration is valid if it lies
// within the robot's joint limits, does not self-collide, and does not
// touch any body in the obstacle set.
type Interface struct {
	sim    Simulation
	robot  Robot
	model  *kinematics.Model
	config Config

	planner   Planner
	obstacles []string
	added     []string

	logger *zap.SugaredLogger
}

// NewInterface returns a new Interface for robot in sim with an empty
// obstacle set
func NewInterface(sim Simulation, robot Robot, config Config,
	logger *zap.SugaredLogger) (*Interface, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if config.Planner == "" {
		config.Planner = DefaultPlanner
	}
	if config.Options.PlanIter <= 0 || config.Options.StepSize <= 0 ||
		config.Options.Resolution <= 0 {
		return nil, errors.Errorf("newInterface: planner iterations, step "+
			"size, and resolution must be positive, got %+v", config.Options)
	}

	i := &Interface{
		sim:    sim,
		robot:  robot,
		model:  robot.Model(),
		config: config,
		logger: logger,
	}
	if err := i.SetPlanner(config.Planner); err != nil {
		return nil, errors.Wrap(err, "newInterface")
	}
	return i, nil
}

// SetPlanner selects the planner registered as name. Unknown names
// return an *UnsupportedPlannerError and leave the current planner in
// place.
func (i *Interface) SetPlanner(name string) error {
	space := Space{Limits: i.model.Limits, Valid: i.valid}
	planner, err := NewPlanner(name, space, i.config.Options)
	if err != nil {
		return err
	}
	i.planner = planner
	i.config.Planner = name
	i.logger.Debugw("set planner", "planner", name)
	return nil
}

// Planner returns the name of the current planner
func (i *Interface) Planner() string {
	return i.config.Planner
}

// SetObstacles replaces the obstacle set with the named bodies
func (i *Interface) SetObstacles(names []string) {
	i.obstacles = append([]string(nil), names...)
}

// Obstacles returns the names of the bodies in the obstacle set
func (i *Interface) Obstacles() []string {
	return append([]string(nil), i.obstacles...)
}

// AddBox creates a box in the simulation and adds it to the obstacle
// set
func (i *Interface) AddBox(position, halfExtents r3.Vec) (string, error) {
	name, err := i.sim.CreateBox("", halfExtents, position, false,
		[4]float64{0.5, 0.5, 0.5, 1})
	if err != nil {
		return "", errors.Wrap(err, "addBox")
	}
	i.added = append(i.added, name)
	i.obstacles = append(i.obstacles, name)
	return name, nil
}

// ClearObstacles removes all boxes created by AddBox from the
// simulation and empties the obstacle set
func (i *Interface) ClearObstacles() error {
	var err error
	for _, name := range i.added {
		err = multierr.Append(err, i.sim.RemoveBody(name))
	}
	i.added = nil
	i.obstacles = nil
	return errors.Wrap(err, "clearObstacles")
}

// IsValid returns whether joint configuration q is valid
func (i *Interface) IsValid(q []float64) (bool, error) {
	if len(q) != i.model.DoF() {
		return false, errors.Errorf("isValid: expected %v joint values, "+
			"got %v", i.model.DoF(), len(q))
	}
	return i.valid(q)
}

func (i *Interface) valid(q []float64) (bool, error) {
	if !i.model.WithinLimits(q) {
		return false, nil
	}
	if len(i.obstacles) == 0 {
		self, err := i.model.SelfCollision(q)
		return !self, err
	}

	// Includes self-collision
	collision, err := i.sim.CheckCollisionAt(i.robot.Name(), q, i.obstacles)
	return !collision, err
}

// Plan plans a path from the robot's current joint angles to goal. If
// no valid path is found, Plan returns false and an empty path. Errors
// are returned only when the simulation fails or ctx is cancelled.
// The robot is not moved.
func (i *Interface) Plan(ctx context.Context, goal []float64) (bool,
	[][]float64, error) {
	if len(goal) != i.model.DoF() {
		return false, nil, errors.Errorf("plan: expected %v joint values, "+
			"got %v", i.model.DoF(), len(goal))
	}

	if err := ctx.Err(); err != nil {
		return false, nil, errors.Wrap(err, "plan")
	}

	start, err := i.robot.JointAngles()
	if err != nil {
		return false, nil, errors.Wrap(err, "plan")
	}

	for _, q := range [][]float64{start, goal} {
		ok, err := i.valid(q)
		if err != nil {
			return false, nil, errors.Wrap(err, "plan")
		}
		if !ok {
			i.logger.Debugw("invalid start or goal", "start", start,
				"goal", goal)
			return false, [][]float64{}, nil
		}
	}

	if equal(start, goal) {
		return true, [][]float64{start, append([]float64(nil), goal...)}, nil
	}

	// Check whether direct interpolation is an option
	direct, err := checkPath(ctx, i.valid, start, goal, i.config.Options.Resolution)
	if err != nil {
		return false, nil, errors.Wrap(err, "plan")
	}
	if direct {
		return true, [][]float64{start, append([]float64(nil), goal...)}, nil
	}

	path, err := i.planner.Plan(ctx, start, goal)
	if errors.Is(err, ErrPlannerFailed) {
		i.logger.Debugw("no path found", "planner", i.config.Planner)
		return false, [][]float64{}, nil
	}
	if err != nil {
		return false, nil, errors.Wrap(err, "plan")
	}

	planned := len(path)
	if i.config.Smooth {
		path, err = smoothPath(ctx, i.valid, path, i.config.Options.Resolution)
		if err != nil {
			return false, nil, errors.Wrap(err, "plan")
		}
	}
	i.logger.Debugw("found path", "planner", i.config.Planner,
		"waypoints", planned, "smoothed", len(path))
	return true, path, nil
}

// Execute moves the robot through path in order. Kinematic execution
// places the robot at each waypoint and steps the simulation. Dynamic
// execution commands each waypoint as the actuator targets and steps
// the simulation until it is reached or a step limit is hit.
func (i *Interface) Execute(path [][]float64, dynamics bool) error {
	for _, q := range path {
		if len(q) != i.model.DoF() {
			return errors.Errorf("execute: expected %v joint values, got %v",
				i.model.DoF(), len(q))
		}
	}

	for n, q := range path {
		if !dynamics {
			if err := i.robot.SetJointAngles(q); err != nil {
				return errors.Wrapf(err, "execute waypoint %v", n)
			}
			if err := i.sim.Step(); err != nil {
				return errors.Wrapf(err, "execute waypoint %v", n)
			}
			continue
		}

		if err := i.robot.ControlJoints(q); err != nil {
			return errors.Wrapf(err, "execute waypoint %v", n)
		}
		for step := 0; step < i.config.MaxWaypointSteps; step++ {
			if err := i.sim.Step(); err != nil {
				return errors.Wrapf(err, "execute waypoint %v", n)
			}
			joints, err := i.robot.JointAngles()
			if err != nil {
				return errors.Wrapf(err, "execute waypoint %v", n)
			}
			if maxError(joints, q) <= i.config.Tolerance {
				break
			}
		}
	}
	return nil
}

// Interpolate returns path densified to at least n waypoints
func (i *Interface) Interpolate(path [][]float64, n int) [][]float64 {
	return Interpolate(path, n)
}

func equal(a, b []float64) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func maxError(a, b []float64) float64 {
	var m float64
	for i := range a {
		m = math.Max(m, math.Abs(a[i]-b[i]))
	}
	return m
}
