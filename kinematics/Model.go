// Package kinematics implements serial-arm kinematic models described by
// Denavit-Hartenberg parameters, along with forward kinematics, link
// collision geometry, and inverse kinematics.
package kinematics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/samuelfneumann/urgym/utils/floatutils"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/spatial/r3"
)

// sphereSpacing is the maximum distance between consecutive collision
// spheres along a link
const sphereSpacing = 0.1

// DH holds the standard Denavit-Hartenberg parameters of a revolute
// joint and the link following it
type DH struct {
	A, D, Alpha float64
}

// Transform returns the homogeneous transform of the link at joint
// angle theta
func (d DH) Transform(theta float64) mgl64.Mat4 {
	var m mgl64.Mat4

	m.Set(0, 0, math.Cos(theta))
	m.Set(0, 1, -1*math.Sin(theta)*math.Cos(d.Alpha))
	m.Set(0, 2, math.Sin(theta)*math.Sin(d.Alpha))
	m.Set(0, 3, d.A*math.Cos(theta))

	m.Set(1, 0, math.Sin(theta))
	m.Set(1, 1, math.Cos(theta)*math.Cos(d.Alpha))
	m.Set(1, 2, -1*math.Cos(theta)*math.Sin(d.Alpha))
	m.Set(1, 3, d.A*math.Sin(theta))

	m.Set(2, 1, math.Sin(d.Alpha))
	m.Set(2, 2, math.Cos(d.Alpha))
	m.Set(2, 3, d.D)

	m.Set(3, 3, 1)

	return m
}

// Sphere is a collision sphere attached to a link of a Model
type Sphere struct {
	Center r3.Vec
	Radius float64
	Link   int
}

// Model is a serial arm of revolute joints. Link i spans the origins of
// frames i and i+1, where frame 0 is the base frame and frame DoF() is
// the flange.
type Model struct {
	Name   string
	Links  []DH
	Limits []r1.Interval

	// Radii holds the collision radius of each link
	Radii []float64

	// SelfCollisionPairs lists the pairs of links checked for
	// self-collision
	SelfCollisionPairs [][2]int

	// MountedLinks lists links which rest on the robot's mount and are
	// not checked for contact with the environment
	MountedLinks []int
}

// NewUR5e returns the kinematic model of a Universal Robots UR5e arm
func NewUR5e() *Model {
	limit := r1.Interval{Min: -2 * math.Pi, Max: 2 * math.Pi}
	elbow := r1.Interval{Min: -math.Pi, Max: math.Pi}

	return &Model{
		Name: "ur5e",
		Links: []DH{
			{0.0000, 0.1625, math.Pi / 2},
			{-0.4250, 0.0000, 0},
			{-0.3922, 0.0000, 0},
			{0.0000, 0.1333, math.Pi / 2},
			{0.0000, 0.0997, -1 * math.Pi / 2},
			{0.0000, 0.0996, 0},
		},
		Limits: []r1.Interval{limit, limit, elbow, limit, limit, limit},
		Radii:  []float64{0.075, 0.065, 0.055, 0.045, 0.045, 0.045},
		SelfCollisionPairs: [][2]int{
			{0, 3}, {0, 4}, {0, 5},
			{1, 4}, {1, 5},
			{2, 5},
		},
		MountedLinks: []int{0},
	}
}

// DoF returns the number of joints of the model
func (m *Model) DoF() int {
	return len(m.Links)
}

func (m *Model) checkJoints(q []float64) error {
	if len(q) != m.DoF() {
		return errors.Errorf("%v: expected %v joint values, got %v", m.Name,
			m.DoF(), len(q))
	}
	return nil
}

// Frames returns the transform of each frame of the model at joint
// angles q, starting with the base frame and ending with the flange
func (m *Model) Frames(q []float64) ([]mgl64.Mat4, error) {
	if err := m.checkJoints(q); err != nil {
		return nil, errors.Wrap(err, "frames")
	}

	frames := make([]mgl64.Mat4, 0, m.DoF()+1)
	current := mgl64.Ident4()
	frames = append(frames, current)
	for i, link := range m.Links {
		current = current.Mul4(link.Transform(q[i]))
		frames = append(frames, current)
	}
	return frames, nil
}

// Forward returns the pose of the flange at joint angles q
func (m *Model) Forward(q []float64) (Pose, error) {
	frames, err := m.Frames(q)
	if err != nil {
		return Pose{}, errors.Wrap(err, "forward")
	}
	return NewPose(frames[len(frames)-1]), nil
}

// Spheres returns the collision spheres of all links at joint angles q
func (m *Model) Spheres(q []float64) ([]Sphere, error) {
	frames, err := m.Frames(q)
	if err != nil {
		return nil, errors.Wrap(err, "spheres")
	}

	var spheres []Sphere
	for link := 0; link < m.DoF(); link++ {
		from := origin(frames[link])
		to := origin(frames[link+1])
		segment := r3.Sub(to, from)
		length := r3.Norm(segment)

		n := int(math.Max(1, math.Ceil(length/sphereSpacing)))
		for i := 0; i < n; i++ {
			t := (float64(i) + 0.5) / float64(n)
			spheres = append(spheres, Sphere{
				Center: r3.Add(from, r3.Scale(t, segment)),
				Radius: m.Radii[link],
				Link:   link,
			})
		}
	}
	return spheres, nil
}

// SelfCollision returns whether any of the model's self-collision
// pairs of links intersect at joint angles q
func (m *Model) SelfCollision(q []float64) (bool, error) {
	spheres, err := m.Spheres(q)
	if err != nil {
		return false, errors.Wrap(err, "self collision")
	}

	byLink := make(map[int][]Sphere, m.DoF())
	for _, s := range spheres {
		byLink[s.Link] = append(byLink[s.Link], s)
	}

	for _, pair := range m.SelfCollisionPairs {
		for _, a := range byLink[pair[0]] {
			for _, b := range byLink[pair[1]] {
				if r3.Norm(r3.Sub(a.Center, b.Center)) < a.Radius+b.Radius {
					return true, nil
				}
			}
		}
	}
	return false, nil
}

// Mounted returns whether a link rests on the robot's mount
func (m *Model) Mounted(link int) bool {
	for _, l := range m.MountedLinks {
		if l == link {
			return true
		}
	}
	return false
}

// WithinLimits returns whether joint angles q respect the model's
// joint limits
func (m *Model) WithinLimits(q []float64) bool {
	if len(q) != m.DoF() {
		return false
	}
	for i, limit := range m.Limits {
		if q[i] < limit.Min || q[i] > limit.Max {
			return false
		}
	}
	return true
}

// Clamp clamps joint angles q to the model's joint limits in place
func (m *Model) Clamp(q []float64) {
	floatutils.ClipIntervals(q, m.Limits)
}

func origin(m mgl64.Mat4) r3.Vec {
	return r3.Vec{X: m.At(0, 3), Y: m.At(1, 3), Z: m.At(2, 3)}
}
