// Package simulation implements the scene a robot acts in: static bodies,
// robots, contact queries, and joint actuation.
package simulation

import (
	"github.com/samuelfneumann/urgym/kinematics"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// BodyKind describes the geometry of a Body
type BodyKind int

const (
	Plane BodyKind = iota
	Box
	Sphere
)

func (b BodyKind) String() string {
	switch b {
	case Plane:
		return "Plane"
	case Box:
		return "Box"
	default:
		return "Sphere"
	}
}

// Body is a static body in a scene. Planes are horizontal at height
// Position.Z. Boxes are axis-aligned with half extents HalfExtents.
// Ghost bodies are never considered for contact.
type Body struct {
	Name        string
	Kind        BodyKind
	Position    r3.Vec
	Orientation quat.Number
	HalfExtents r3.Vec
	Radius      float64
	Ghost       bool
	Color       [4]float64
}

// Camera describes the placement of the visualizer
type Camera struct {
	Target   r3.Vec
	Distance float64
	Yaw      float64
	Pitch    float64
}

// Simulation is a scene containing static bodies and robots.
//
// Bodies and robots are referred to by name. A body created with an
// empty name is given a unique one, which is returned.
type Simulation interface {
	CreatePlane(zOffset float64) error
	CreateTable(length, width, height, xOffset, zOffset float64) error
	CreateTrack(length, width, height, xOffset, zOffset float64) error
	CreateBox(name string, halfExtents, position r3.Vec, ghost bool,
		color [4]float64) (string, error)
	CreateSphere(name string, radius float64, position r3.Vec, ghost bool,
		color [4]float64) (string, error)
	RemoveBody(name string) error
	Body(name string) (Body, error)
	Bodies() []string

	SetBasePose(name string, position r3.Vec, orientation quat.Number) error
	BasePosition(name string) (r3.Vec, error)
	BaseOrientation(name string) (quat.Number, error)

	// NoRendering runs f with rendering disabled
	NoRendering(f func() error) error
	PlaceVisualizer(target r3.Vec, distance, yaw, pitch float64)

	LoadRobot(name string, model *kinematics.Model, joints []float64) error
	SetJointAngles(robot string, joints []float64) error
	JointAngles(robot string) ([]float64, error)
	JointVelocities(robot string) ([]float64, error)
	ControlJoints(robot string, targets []float64) error
	LinkPose(robot string) (kinematics.Pose, error)
	LinkVelocity(robot string) (r3.Vec, error)

	// CheckCollision returns whether the robot is in contact with any of
	// the named bodies or with itself. If against is empty, all bodies
	// which are not ghosts are considered.
	CheckCollision(robot string, against []string) (bool, error)

	// CheckCollisionAt is CheckCollision with the robot placed at joint
	// angles joints. The robot's state is left unchanged.
	CheckCollisionAt(robot string, joints []float64,
		against []string) (bool, error)

	Step() error
	Timestep() float64
	Close() error
}
