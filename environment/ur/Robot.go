// Package ur implements goal-conditioned reach environments for a
// simulated Universal Robots UR5e arm
package ur

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"github.com/samuelfneumann/urgym/environment"
	"github.com/samuelfneumann/urgym/kinematics"
	"github.com/samuelfneumann/urgym/simulation"
	"github.com/samuelfneumann/urgym/utils/matutils"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/spatial/r3"
)

// ControlType determines how a robot interprets actions
type ControlType string

const (
	// EndEffector actions are displacements of the end effector
	EndEffector ControlType = "ee"

	// Joints actions are displacements of the joint angles
	Joints ControlType = "joints"
)

// ParseControlType returns the ControlType named by s
func ParseControlType(s string) (ControlType, error) {
	switch ControlType(s) {
	case EndEffector, Joints:
		return ControlType(s), nil
	}
	return "", fmt.Errorf("parseControlType: unknown control type %q", s)
}

// Neutral is the joint configuration robots are reset to. The end
// effector points down above the front of the robot.
var Neutral = []float64{math.Pi, -math.Pi / 2, math.Pi / 2, -math.Pi / 2,
	-math.Pi / 2, 0}

// Robot is a simulated arm acting in a goal-conditioned task
type Robot interface {
	Name() string
	Reset() error
	SetAction(action *mat.VecDense) error

	// Action returns the last action applied
	Action() *mat.VecDense
	Obs() (*mat.VecDense, error)
	EEPose() (kinematics.Pose, error)

	JointAngles() ([]float64, error)
	SetJointAngles(joints []float64) error
	ControlJoints(targets []float64) error

	ControlType() ControlType
	ActionSpec() environment.Spec
	ObservationLen() int
}

// RobotConfig configures a UR5
type RobotConfig struct {
	Name    string
	Control ControlType

	// Orientation adds commanded orientation displacements to end
	// effector actions and the end effector orientation to observations
	Orientation bool

	// JointObservation adds joint angles to observations
	JointObservation bool

	// ActionScale scales actions in [-1, 1] to displacements in metres
	// or radians
	ActionScale float64

	// MinHeight bounds the height of end effector targets from below
	MinHeight float64

	Neutral []float64
	Seed    uint64
}

// DefaultRobotConfig returns the configuration of a UR5 controlling
// its end effector position
func DefaultRobotConfig() RobotConfig {
	return RobotConfig{
		Name:        "ur5e",
		Control:     EndEffector,
		ActionScale: 0.05,
		MinHeight:   0,
		Neutral:     append([]float64(nil), Neutral...),
	}
}

// UR5 implements a UR5e arm in a simulation. Actions are clipped to
// [-1, 1] before being applied.
type UR5 struct {
	sim    simulation.Simulation
	config RobotConfig
	model  *kinematics.Model
	ik     *kinematics.IKSolver
	action *mat.VecDense

	actionSpec environment.Spec
	obsLen     int

	logger *zap.SugaredLogger
}

// NewUR5 loads a new UR5 into a simulation at its neutral configuration
func NewUR5(sim simulation.Simulation, config RobotConfig,
	logger *zap.SugaredLogger) (*UR5, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if config.Name == "" {
		config.Name = "ur5e"
	}
	if config.ActionScale <= 0 {
		config.ActionScale = DefaultRobotConfig().ActionScale
	}
	if config.Neutral == nil {
		config.Neutral = append([]float64(nil), Neutral...)
	}
	if _, err := ParseControlType(string(config.Control)); err != nil {
		return nil, errors.Wrap(err, "newUR5")
	}

	model := kinematics.NewUR5e()
	if len(config.Neutral) != model.DoF() {
		return nil, errors.Errorf("newUR5: neutral configuration has %v "+
			"joints, expected %v", len(config.Neutral), model.DoF())
	}
	if err := sim.LoadRobot(config.Name, model, config.Neutral); err != nil {
		return nil, errors.Wrap(err, "newUR5")
	}

	var actionLen int
	switch {
	case config.Control == Joints:
		actionLen = model.DoF()
	case config.Orientation:
		actionLen = 6
	default:
		actionLen = 3
	}

	// Position and velocity of the end effector
	obsLen := 6
	if config.Orientation {
		obsLen += 4
	}
	if config.JointObservation {
		obsLen += model.DoF()
	}

	return &UR5{
		sim:        sim,
		config:     config,
		model:      model,
		ik:         kinematics.NewIKSolver(model, config.Seed),
		action:     mat.NewVecDense(actionLen, nil),
		actionSpec: environment.NewBoxSpec(actionLen, environment.Action, -1, 1),
		obsLen:     obsLen,
		logger:     logger,
	}, nil
}

// Name returns the name of the robot in the simulation
func (u *UR5) Name() string {
	return u.config.Name
}

// Model returns the kinematic model of the robot
func (u *UR5) Model() *kinematics.Model {
	return u.model
}

// DoF returns the number of joints of the robot
func (u *UR5) DoF() int {
	return u.model.DoF()
}

// Limits returns the joint limits of the robot
func (u *UR5) Limits() []r1.Interval {
	return u.model.Limits
}

// ControlType returns the control type of the robot
func (u *UR5) ControlType() ControlType {
	return u.config.Control
}

// ActionSpec returns the action specification of the robot
func (u *UR5) ActionSpec() environment.Spec {
	return u.actionSpec
}

// ObservationLen returns the length of the robot's observations
func (u *UR5) ObservationLen() int {
	return u.obsLen
}

// Reset places the robot at its neutral configuration
func (u *UR5) Reset() error {
	u.action.Zero()
	return errors.Wrap(u.sim.SetJointAngles(u.config.Name, u.config.Neutral),
		"reset")
}

// SetAction commands the robot's actuators from an action. The
// simulation must be stepped for the robot to move.
func (u *UR5) SetAction(action *mat.VecDense) error {
	if err := u.actionSpec.CheckShape(action); err != nil {
		return errors.Wrap(ErrActionShape, err.Error())
	}

	u.action.CopyVec(action)
	matutils.VecClip(u.action, -1, 1)

	joints, err := u.sim.JointAngles(u.config.Name)
	if err != nil {
		return errors.Wrap(err, "setAction")
	}

	var targets []float64
	if u.config.Control == Joints {
		targets = make([]float64, len(joints))
		for i := range joints {
			targets[i] = joints[i] + u.action.AtVec(i)*u.config.ActionScale
		}
	} else {
		targets, err = u.eeTargets(joints)
		if err != nil {
			return errors.Wrap(err, "setAction")
		}
	}

	return errors.Wrap(u.sim.ControlJoints(u.config.Name, targets),
		"setAction")
}

// eeTargets returns the joint angles which move the end effector by
// the current action
func (u *UR5) eeTargets(joints []float64) ([]float64, error) {
	current, err := u.model.Forward(joints)
	if err != nil {
		return nil, err
	}

	scale := u.config.ActionScale
	delta := r3.Vec{
		X: u.action.AtVec(0) * scale,
		Y: u.action.AtVec(1) * scale,
		Z: u.action.AtVec(2) * scale,
	}
	target := kinematics.Pose{
		Position:    r3.Add(current.Position, delta),
		Orientation: current.Orientation,
	}
	target.Position.Z = math.Max(target.Position.Z, u.config.MinHeight)

	if u.config.Orientation {
		rotation := r3.Vec{
			X: u.action.AtVec(3) * scale,
			Y: u.action.AtVec(4) * scale,
			Z: u.action.AtVec(5) * scale,
		}
		target.Orientation = kinematics.Rotate(current.Orientation, rotation)
	}

	solution, err := u.ik.Solve(joints, target, u.config.Orientation)
	if err != nil {
		return nil, err
	}
	if !solution.Converged {
		u.logger.Debugw("inverse kinematics did not converge",
			"positionError", solution.PositionError,
			"angleError", solution.AngleError)
	}
	return solution.Joints, nil
}

// Action returns a copy of the last action applied, clipped to
// [-1, 1]
func (u *UR5) Action() *mat.VecDense {
	return mat.VecDenseCopyOf(u.action)
}

// Obs returns the robot's observation: the end effector position and
// velocity, followed by its orientation and the joint angles if
// configured
func (u *UR5) Obs() (*mat.VecDense, error) {
	pose, err := u.EEPose()
	if err != nil {
		return nil, errors.Wrap(err, "obs")
	}
	vel, err := u.sim.LinkVelocity(u.config.Name)
	if err != nil {
		return nil, errors.Wrap(err, "obs")
	}

	obs := []float64{
		pose.Position.X, pose.Position.Y, pose.Position.Z,
		vel.X, vel.Y, vel.Z,
	}
	if u.config.Orientation {
		o := pose.Orientation
		obs = append(obs, o.Imag, o.Jmag, o.Kmag, o.Real)
	}
	if u.config.JointObservation {
		joints, err := u.JointAngles()
		if err != nil {
			return nil, errors.Wrap(err, "obs")
		}
		obs = append(obs, joints...)
	}
	return mat.NewVecDense(len(obs), obs), nil
}

// EEPose returns the pose of the end effector
func (u *UR5) EEPose() (kinematics.Pose, error) {
	return u.sim.LinkPose(u.config.Name)
}

// JointAngles returns the joint angles of the robot
func (u *UR5) JointAngles() ([]float64, error) {
	return u.sim.JointAngles(u.config.Name)
}

// SetJointAngles places the robot at joint angles joints
func (u *UR5) SetJointAngles(joints []float64) error {
	return u.sim.SetJointAngles(u.config.Name, joints)
}

// ControlJoints sets the targets of the robot's actuators
func (u *UR5) ControlJoints(targets []float64) error {
	return u.sim.ControlJoints(u.config.Name, targets)
}
