package simulation

import (
	"math"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/samuelfneumann/urgym/kinematics"
	"github.com/samuelfneumann/urgym/utils/floatutils"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrUnknownBody is returned when no body has the given name
	ErrUnknownBody = errors.New("unknown body")

	// ErrUnknownRobot is returned when no robot has the given name
	ErrUnknownRobot = errors.New("unknown robot")

	// ErrDuplicateName is returned when creating a body or robot with
	// a name that is already taken
	ErrDuplicateName = errors.New("name already in use")

	// ErrClosed is returned when using a Scene after Close
	ErrClosed = errors.New("simulation closed")
)

// Config configures a Scene
type Config struct {
	Render bool

	// Timestep is the duration of a single substep in seconds
	Timestep float64

	// Substeps is the number of substeps taken by each call to Step
	Substeps int

	// MaxJointVelocity bounds the speed of the joint actuators in
	// radians per second
	MaxJointVelocity float64
}

// DefaultConfig returns the default Scene configuration
func DefaultConfig() Config {
	return Config{
		Render:           false,
		Timestep:         1.0 / 240.0,
		Substeps:         20,
		MaxJointVelocity: math.Pi,
	}
}

type robot struct {
	model      *kinematics.Model
	joints     []float64
	velocities []float64
	targets    []float64
	linkVel    r3.Vec
}

// Scene is a kinematic Simulation. Robots are driven by position
// actuators which move each joint toward its target at no more than
// the maximum joint velocity. No dynamics are integrated.
type Scene struct {
	config    Config
	bodies    map[string]*Body
	order     []string
	robots    map[string]*robot
	rendering bool
	camera    Camera
	closed    bool
	logger    *zap.SugaredLogger
}

// NewScene returns a new, empty Scene
func NewScene(config Config, logger *zap.SugaredLogger) *Scene {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if config.Timestep <= 0 {
		config.Timestep = DefaultConfig().Timestep
	}
	if config.Substeps <= 0 {
		config.Substeps = DefaultConfig().Substeps
	}
	if config.MaxJointVelocity <= 0 {
		config.MaxJointVelocity = DefaultConfig().MaxJointVelocity
	}

	return &Scene{
		config:    config,
		bodies:    make(map[string]*Body),
		robots:    make(map[string]*robot),
		rendering: config.Render,
		logger:    logger,
	}
}

func (s *Scene) addBody(b Body) (string, error) {
	if s.closed {
		return "", ErrClosed
	}
	if b.Name == "" {
		b.Name = "body-" + uuid.NewString()
	}
	if _, ok := s.bodies[b.Name]; ok {
		return "", errors.Wrapf(ErrDuplicateName, "body %q", b.Name)
	}
	if _, ok := s.robots[b.Name]; ok {
		return "", errors.Wrapf(ErrDuplicateName, "body %q", b.Name)
	}
	if b.Orientation == (quat.Number{}) {
		b.Orientation = quat.Number{Real: 1}
	}

	s.bodies[b.Name] = &b
	s.order = append(s.order, b.Name)
	s.logger.Debugw("created body", "name", b.Name, "kind", b.Kind,
		"position", b.Position)
	return b.Name, nil
}

func (s *Scene) body(name string) (*Body, error) {
	b, ok := s.bodies[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownBody, "%q", name)
	}
	return b, nil
}

func (s *Scene) robot(name string) (*robot, error) {
	r, ok := s.robots[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownRobot, "%q", name)
	}
	return r, nil
}

// CreatePlane creates a horizontal plane named "plane" at height
// zOffset
func (s *Scene) CreatePlane(zOffset float64) error {
	_, err := s.addBody(Body{
		Name:     "plane",
		Kind:     Plane,
		Position: r3.Vec{Z: zOffset},
		Color:    [4]float64{0.9, 0.9, 0.9, 1},
	})
	return errors.Wrap(err, "create plane")
}

// CreateTable creates a box named "table" whose top face lies at height
// zOffset, centred at x = xOffset
func (s *Scene) CreateTable(length, width, height, xOffset,
	zOffset float64) error {
	_, err := s.addBody(Body{
		Name:        "table",
		Kind:        Box,
		Position:    r3.Vec{X: xOffset, Z: -height/2 + zOffset},
		HalfExtents: r3.Vec{X: length / 2, Y: width / 2, Z: height / 2},
		Color:       [4]float64{0.95, 0.95, 0.95, 1},
	})
	return errors.Wrap(err, "create table")
}

// CreateTrack creates a box named "track", placed as a table is
func (s *Scene) CreateTrack(length, width, height, xOffset,
	zOffset float64) error {
	_, err := s.addBody(Body{
		Name:        "track",
		Kind:        Box,
		Position:    r3.Vec{X: xOffset, Z: -height/2 + zOffset},
		HalfExtents: r3.Vec{X: length / 2, Y: width / 2, Z: height / 2},
		Color:       [4]float64{0.2, 0.2, 0.2, 1},
	})
	return errors.Wrap(err, "create track")
}

// CreateBox creates an axis-aligned box and returns its name
func (s *Scene) CreateBox(name string, halfExtents, position r3.Vec,
	ghost bool, color [4]float64) (string, error) {
	name, err := s.addBody(Body{
		Name:        name,
		Kind:        Box,
		Position:    position,
		HalfExtents: halfExtents,
		Ghost:       ghost,
		Color:       color,
	})
	return name, errors.Wrap(err, "create box")
}

// CreateSphere creates a sphere and returns its name
func (s *Scene) CreateSphere(name string, radius float64, position r3.Vec,
	ghost bool, color [4]float64) (string, error) {
	name, err := s.addBody(Body{
		Name:     name,
		Kind:     Sphere,
		Position: position,
		Radius:   radius,
		Ghost:    ghost,
		Color:    color,
	})
	return name, errors.Wrap(err, "create sphere")
}

// RemoveBody removes a body from the scene
func (s *Scene) RemoveBody(name string) error {
	if _, err := s.body(name); err != nil {
		return errors.Wrap(err, "remove body")
	}

	delete(s.bodies, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Body returns a copy of a body
func (s *Scene) Body(name string) (Body, error) {
	b, err := s.body(name)
	if err != nil {
		return Body{}, err
	}
	return *b, nil
}

// Bodies returns the names of all bodies in order of creation
func (s *Scene) Bodies() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// SetBasePose moves a body
func (s *Scene) SetBasePose(name string, position r3.Vec,
	orientation quat.Number) error {
	b, err := s.body(name)
	if err != nil {
		return errors.Wrap(err, "set base pose")
	}
	b.Position = position
	b.Orientation = orientation
	return nil
}

// BasePosition returns the position of a body
func (s *Scene) BasePosition(name string) (r3.Vec, error) {
	b, err := s.body(name)
	if err != nil {
		return r3.Vec{}, errors.Wrap(err, "base position")
	}
	return b.Position, nil
}

// BaseOrientation returns the orientation of a body
func (s *Scene) BaseOrientation(name string) (quat.Number, error) {
	b, err := s.body(name)
	if err != nil {
		return quat.Number{}, errors.Wrap(err, "base orientation")
	}
	return b.Orientation, nil
}

// NoRendering runs f with rendering disabled, restoring the previous
// rendering state afterwards
func (s *Scene) NoRendering(f func() error) error {
	previous := s.rendering
	s.rendering = false
	defer func() { s.rendering = previous }()
	return f()
}

// Rendering returns whether the scene is currently rendering
func (s *Scene) Rendering() bool {
	return s.rendering
}

// PlaceVisualizer places the visualizer camera
func (s *Scene) PlaceVisualizer(target r3.Vec, distance, yaw, pitch float64) {
	s.camera = Camera{target, distance, yaw, pitch}
}

// Camera returns the placement of the visualizer camera
func (s *Scene) Camera() Camera {
	return s.camera
}

// LoadRobot adds a robot to the scene at joint angles joints
func (s *Scene) LoadRobot(name string, model *kinematics.Model,
	joints []float64) error {
	if s.closed {
		return ErrClosed
	}
	if _, ok := s.robots[name]; ok {
		return errors.Wrapf(ErrDuplicateName, "robot %q", name)
	}
	if _, ok := s.bodies[name]; ok {
		return errors.Wrapf(ErrDuplicateName, "robot %q", name)
	}
	if len(joints) != model.DoF() {
		return errors.Errorf("load robot: expected %v joint values, got %v",
			model.DoF(), len(joints))
	}

	s.robots[name] = &robot{
		model:      model,
		joints:     append([]float64(nil), joints...),
		velocities: make([]float64, model.DoF()),
		targets:    append([]float64(nil), joints...),
	}
	s.logger.Debugw("loaded robot", "name", name, "model", model.Name)
	return nil
}

// SetJointAngles places a robot at joint angles joints, at rest. The
// actuators hold the new configuration.
func (s *Scene) SetJointAngles(name string, joints []float64) error {
	r, err := s.robot(name)
	if err != nil {
		return errors.Wrap(err, "set joint angles")
	}
	if len(joints) != r.model.DoF() {
		return errors.Errorf("set joint angles: expected %v joint values, "+
			"got %v", r.model.DoF(), len(joints))
	}

	copy(r.joints, joints)
	copy(r.targets, joints)
	for i := range r.velocities {
		r.velocities[i] = 0
	}
	r.linkVel = r3.Vec{}
	return nil
}

// JointAngles returns the joint angles of a robot
func (s *Scene) JointAngles(name string) ([]float64, error) {
	r, err := s.robot(name)
	if err != nil {
		return nil, errors.Wrap(err, "joint angles")
	}
	return append([]float64(nil), r.joints...), nil
}

// JointVelocities returns the joint velocities of a robot
func (s *Scene) JointVelocities(name string) ([]float64, error) {
	r, err := s.robot(name)
	if err != nil {
		return nil, errors.Wrap(err, "joint velocities")
	}
	return append([]float64(nil), r.velocities...), nil
}

// ControlJoints sets the targets of a robot's actuators. Targets are
// clamped to the joint limits.
func (s *Scene) ControlJoints(name string, targets []float64) error {
	r, err := s.robot(name)
	if err != nil {
		return errors.Wrap(err, "control joints")
	}
	if len(targets) != r.model.DoF() {
		return errors.Errorf("control joints: expected %v joint values, "+
			"got %v", r.model.DoF(), len(targets))
	}

	copy(r.targets, targets)
	r.model.Clamp(r.targets)
	return nil
}

// LinkPose returns the pose of the flange of a robot
func (s *Scene) LinkPose(name string) (kinematics.Pose, error) {
	r, err := s.robot(name)
	if err != nil {
		return kinematics.Pose{}, errors.Wrap(err, "link pose")
	}
	return r.model.Forward(r.joints)
}

// LinkVelocity returns the linear velocity of the flange of a robot
// over the last call to Step
func (s *Scene) LinkVelocity(name string) (r3.Vec, error) {
	r, err := s.robot(name)
	if err != nil {
		return r3.Vec{}, errors.Wrap(err, "link velocity")
	}
	return r.linkVel, nil
}

// CheckCollision implements the Simulation interface
func (s *Scene) CheckCollision(name string, against []string) (bool, error) {
	r, err := s.robot(name)
	if err != nil {
		return false, errors.Wrap(err, "check collision")
	}
	return s.collides(r, r.joints, against)
}

// CheckCollisionAt implements the Simulation interface
func (s *Scene) CheckCollisionAt(name string, joints []float64,
	against []string) (bool, error) {
	r, err := s.robot(name)
	if err != nil {
		return false, errors.Wrap(err, "check collision")
	}
	return s.collides(r, joints, against)
}

func (s *Scene) collides(r *robot, joints []float64,
	against []string) (bool, error) {
	candidates := make([]*Body, 0, len(s.bodies))
	if len(against) == 0 {
		for _, name := range s.order {
			if b := s.bodies[name]; !b.Ghost {
				candidates = append(candidates, b)
			}
		}
	} else {
		for _, name := range against {
			b, err := s.body(name)
			if err != nil {
				return false, errors.Wrap(err, "check collision")
			}
			if !b.Ghost {
				candidates = append(candidates, b)
			}
		}
	}

	spheres, err := r.model.Spheres(joints)
	if err != nil {
		return false, errors.Wrap(err, "check collision")
	}
	for _, sphere := range spheres {
		if r.model.Mounted(sphere.Link) {
			continue
		}
		for _, b := range candidates {
			if contact(sphere, b) {
				return true, nil
			}
		}
	}

	self, err := r.model.SelfCollision(joints)
	if err != nil {
		return false, errors.Wrap(err, "check collision")
	}
	return self, nil
}

func contact(s kinematics.Sphere, b *Body) bool {
	switch b.Kind {
	case Plane:
		return s.Center.Z-s.Radius < b.Position.Z

	case Box:
		closest := r3.Vec{
			X: floatutils.Clip(s.Center.X, b.Position.X-b.HalfExtents.X,
				b.Position.X+b.HalfExtents.X),
			Y: floatutils.Clip(s.Center.Y, b.Position.Y-b.HalfExtents.Y,
				b.Position.Y+b.HalfExtents.Y),
			Z: floatutils.Clip(s.Center.Z, b.Position.Z-b.HalfExtents.Z,
				b.Position.Z+b.HalfExtents.Z),
		}
		return r3.Norm(r3.Sub(s.Center, closest)) < s.Radius

	default:
		return r3.Norm(r3.Sub(s.Center, b.Position)) < s.Radius+b.Radius
	}
}

// Step advances the scene by Substeps substeps, moving each robot's
// joints toward their targets
func (s *Scene) Step() error {
	if s.closed {
		return ErrClosed
	}

	dt := s.config.Timestep
	maxDelta := s.config.MaxJointVelocity * dt
	duration := dt * float64(s.config.Substeps)

	for name, r := range s.robots {
		before, err := r.model.Forward(r.joints)
		if err != nil {
			return errors.Wrapf(err, "step %q", name)
		}

		for i := 0; i < s.config.Substeps; i++ {
			for j := range r.joints {
				delta := floatutils.Clip(r.targets[j]-r.joints[j], -maxDelta,
					maxDelta)
				r.joints[j] += delta
				r.velocities[j] = delta / dt
			}
		}

		after, err := r.model.Forward(r.joints)
		if err != nil {
			return errors.Wrapf(err, "step %q", name)
		}
		r.linkVel = r3.Scale(1/duration, r3.Sub(after.Position,
			before.Position))
	}
	return nil
}

// Timestep returns the simulated duration of a call to Step
func (s *Scene) Timestep() float64 {
	return s.config.Timestep * float64(s.config.Substeps)
}

// Close releases all bodies and robots
func (s *Scene) Close() error {
	if s.closed {
		return ErrClosed
	}
	s.closed = true
	s.bodies = make(map[string]*Body)
	s.order = nil
	s.robots = make(map[string]*robot)
	s.logger.Debug("closed scene")
	return nil
}
