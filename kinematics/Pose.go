package kinematics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Pose is a position and orientation in the world frame. Orientations
// are unit quaternions.
type Pose struct {
	Position    r3.Vec
	Orientation quat.Number
}

// NewPose returns the Pose described by a homogeneous transform
func NewPose(m mgl64.Mat4) Pose {
	q := mgl64.Mat4ToQuat(m).Normalize()

	// Keep the scalar part non-negative so that equal rotations have
	// equal representations
	if q.W < 0 {
		q = q.Scale(-1)
	}

	return Pose{
		Position: r3.Vec{X: m.At(0, 3), Y: m.At(1, 3), Z: m.At(2, 3)},
		Orientation: quat.Number{
			Real: q.W,
			Imag: q.V[0],
			Jmag: q.V[1],
			Kmag: q.V[2],
		},
	}
}

// PositionVector returns the position of the Pose as a 3-vector
func (p Pose) PositionVector() *mat.VecDense {
	return mat.NewVecDense(3, []float64{p.Position.X, p.Position.Y,
		p.Position.Z})
}

// Vector returns the Pose as a 7-vector (x, y, z, qx, qy, qz, qw)
func (p Pose) Vector() *mat.VecDense {
	return mat.NewVecDense(7, []float64{
		p.Position.X, p.Position.Y, p.Position.Z,
		p.Orientation.Imag, p.Orientation.Jmag, p.Orientation.Kmag,
		p.Orientation.Real,
	})
}

// RotationVector returns the axis-angle vector of the rotation taking
// orientation from to orientation to, expressed in the world frame.
// The angle is in [0, π].
func RotationVector(from, to quat.Number) r3.Vec {
	q := quat.Mul(to, quat.Conj(from))
	if q.Real < 0 {
		q = quat.Scale(-1, q)
	}

	v := r3.Vec{X: q.Imag, Y: q.Jmag, Z: q.Kmag}
	s := r3.Norm(v)
	if s < 1e-12 {
		return r3.Vec{}
	}
	angle := 2 * math.Atan2(s, q.Real)
	return r3.Scale(angle/s, v)
}

// Rotate returns q rotated by the rotation vector v, expressed in the
// world frame
func Rotate(q quat.Number, v r3.Vec) quat.Number {
	angle := r3.Norm(v)
	if angle < 1e-12 {
		return q
	}
	axis := r3.Scale(math.Sin(angle/2)/angle, v)
	delta := quat.Number{
		Real: math.Cos(angle / 2),
		Imag: axis.X,
		Jmag: axis.Y,
		Kmag: axis.Z,
	}

	out := quat.Mul(delta, q)
	return quat.Scale(1/quat.Abs(out), out)
}
