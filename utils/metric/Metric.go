// Package metric implements distance metrics between goal vectors of
// goal-conditioned tasks.
//
// Goals are either positions (x, y, z) or poses, which are positions
// followed by a unit quaternion in scalar-last order (x, y, z, w) for
// a total of 7 components. Each metric works on a single sample given
// as a mat.Vector or on a batch of samples given as a mat.Matrix, where
// each row of the matrix is a single sample.
//
// All metrics return float32 values.
//
// As with gonum's mat package, calling a metric with arguments of
// mismatched shape is a programming error and results in a panic with
// ErrShape. Inputs are never broadcast or truncated to fit.
package metric

import (
	"math"

	"github.com/pkg/errors"
	"github.com/samuelfneumann/urgym/utils/floatutils"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

const (
	// PositionLen is the number of positional components of a goal
	PositionLen int = 3

	// QuaternionLen is the number of components of an orientation
	QuaternionLen int = 4

	// PoseLen is the number of components of a position + orientation
	// goal
	PoseLen int = PositionLen + QuaternionLen
)

var (
	// ErrShape is the panic value used when two arguments to a metric
	// differ in shape
	ErrShape = errors.New("metric: dimension mismatch")

	// ErrNoOrientation is the panic value used when an angular metric
	// is computed on vectors which carry no quaternion
	ErrNoOrientation = errors.New("metric: input has no orientation " +
		"component")
)

// Distance returns the Euclidean distance between the positional
// components of a and b. If a and b are poses, only the first three
// components are compared.
func Distance(a, b mat.Vector) float32 {
	checkVecShape(a, b)
	return float32(positionDistance(a, b, 0, a.Len()))
}

// DistanceBatch returns the Euclidean distance between the positional
// components of each row of a and b.
func DistanceBatch(a, b mat.Matrix) []float32 {
	rows, cols := checkMatShape(a, b)

	dist := make([]float32, rows)
	for i := range dist {
		ra := mat.Row(nil, i, a)
		rb := mat.Row(nil, i, b)
		dist[i] = float32(positionDistance(mat.NewVecDense(cols, ra),
			mat.NewVecDense(cols, rb), 0, cols))
	}
	return dist
}

// AngleDistance returns the geodesic distance between the orientations
// of a and b normalized to [0, 1]. Both a and b must be either poses or
// quaternions. The distance is invariant to the sign of either
// quaternion, so q and -q are at distance 0.
func AngleDistance(a, b mat.Vector) float32 {
	checkVecShape(a, b)
	return float32(geodesic(Orientation(a), Orientation(b)))
}

// AngleDistanceBatch returns the normalized geodesic distance between
// the orientations of each row of a and b.
func AngleDistanceBatch(a, b mat.Matrix) []float32 {
	rows, cols := checkMatShape(a, b)

	dist := make([]float32, rows)
	for i := range dist {
		qa := Orientation(mat.NewVecDense(cols, mat.Row(nil, i, a)))
		qb := Orientation(mat.NewVecDense(cols, mat.Row(nil, i, b)))
		dist[i] = float32(geodesic(qa, qb))
	}
	return dist
}

// QuaternionToEuler returns the element-wise difference between the
// extrinsic XYZ Euler angles of the orientation of a and the
// orientation of b.
//
// Euler angle differences are not a metric on rotations and should only
// be used for inspection or auxiliary reward terms. Use AngleDistance
// for success tests.
func QuaternionToEuler(a, b mat.Vector) []float32 {
	checkVecShape(a, b)
	return eulerDiff(Orientation(a), Orientation(b))
}

// QuaternionToEulerBatch returns the Euler angle differences of
// each row of a and b.
func QuaternionToEulerBatch(a, b mat.Matrix) [][]float32 {
	rows, cols := checkMatShape(a, b)

	diffs := make([][]float32, rows)
	for i := range diffs {
		qa := Orientation(mat.NewVecDense(cols, mat.Row(nil, i, a)))
		qb := Orientation(mat.NewVecDense(cols, mat.Row(nil, i, b)))
		diffs[i] = eulerDiff(qa, qb)
	}
	return diffs
}

// Orientation extracts the quaternion of a pose or quaternion vector.
// Quaternion components are read in scalar-last order.
func Orientation(v mat.Vector) quat.Number {
	var offset int
	switch v.Len() {
	case PoseLen:
		offset = PositionLen
	case QuaternionLen:
		offset = 0
	default:
		panic(ErrNoOrientation)
	}

	return quat.Number{
		Imag: v.AtVec(offset),
		Jmag: v.AtVec(offset + 1),
		Kmag: v.AtVec(offset + 2),
		Real: v.AtVec(offset + 3),
	}
}

// Euler returns the extrinsic XYZ Euler angles (roll, pitch, yaw) of
// the unit quaternion q. In gimbal lock the yaw is set to 0.
func Euler(q quat.Number) [3]float64 {
	if n := quat.Abs(q); n != 0 {
		q = quat.Scale(1/n, q)
	}
	x, y, z, w := q.Imag, q.Jmag, q.Kmag, q.Real

	r00 := 1 - 2*(y*y+z*z)
	r10 := 2 * (x*y + z*w)
	r11 := 1 - 2*(x*x+z*z)
	r12 := 2 * (y*z - x*w)
	r20 := 2 * (x*z - y*w)
	r21 := 2 * (y*z + x*w)
	r22 := 1 - 2*(x*x+y*y)

	pitch := math.Asin(floatutils.Clip(-r20, -1, 1))
	if math.Abs(r20) > 1-1e-9 {
		return [3]float64{math.Atan2(-r12, r11), pitch, 0}
	}
	return [3]float64{math.Atan2(r21, r22), pitch, math.Atan2(r10, r00)}
}

// FromEuler returns the unit quaternion of the extrinsic XYZ Euler
// angles (roll, pitch, yaw).
func FromEuler(roll, pitch, yaw float64) quat.Number {
	cr, sr := math.Cos(roll/2), math.Sin(roll/2)
	cp, sp := math.Cos(pitch/2), math.Sin(pitch/2)
	cy, sy := math.Cos(yaw/2), math.Sin(yaw/2)

	return quat.Number{
		Real: cr*cp*cy + sr*sp*sy,
		Imag: sr*cp*cy - cr*sp*sy,
		Jmag: cr*sp*cy + sr*cp*sy,
		Kmag: cr*cp*sy - sr*sp*cy,
	}
}

// positionDistance returns the Euclidean distance between the
// positional slices of a and b
func positionDistance(a, b mat.Vector, from, to int) float64 {
	if to-from > PositionLen {
		to = from + PositionLen
	}

	var sum float64
	for i := from; i < to; i++ {
		d := a.AtVec(i) - b.AtVec(i)
		sum += d * d
	}
	return math.Sqrt(sum)
}

func geodesic(a, b quat.Number) float64 {
	dot := a.Real*b.Real + a.Imag*b.Imag + a.Jmag*b.Jmag + a.Kmag*b.Kmag
	return 2 * math.Acos(floatutils.Clip(math.Abs(dot), -1, 1)) / math.Pi
}

func eulerDiff(a, b quat.Number) []float32 {
	ea, eb := Euler(a), Euler(b)
	diff := make([]float32, len(ea))
	for i := range diff {
		diff[i] = float32(ea[i] - eb[i])
	}
	return diff
}

func checkVecShape(a, b mat.Vector) {
	if a.Len() != b.Len() {
		panic(ErrShape)
	}
}

func checkMatShape(a, b mat.Matrix) (int, int) {
	ra, ca := a.Dims()
	rb, cb := b.Dims()
	if ra != rb || ca != cb {
		panic(ErrShape)
	}
	return ra, ca
}
