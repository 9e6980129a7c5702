package kinematics

import (
	"math"
	"math/rand/v2"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat/distmv"
)

// finiteDifference is the joint perturbation used to estimate Jacobians
const finiteDifference = 1e-6

// Solution is the result of an inverse kinematics query. If the query
// did not converge, Joints holds the best configuration found.
type Solution struct {
	Joints        []float64
	PositionError float64
	AngleError    float64
	Converged     bool
}

func (s Solution) cost() float64 {
	return s.PositionError + s.AngleError
}

// IKSolver solves inverse kinematics with damped least squares on a
// numerically estimated Jacobian. The first attempt descends from the
// given seed configuration, later attempts restart from random
// configurations within the joint limits.
type IKSolver struct {
	model *Model

	// Epsilon is the tolerated position error in metres
	Epsilon float64

	// AngleEpsilon is the tolerated orientation error in radians
	AngleEpsilon float64

	Iterations int
	Restarts   int
	Damping    float64

	// MaxStep bounds the change in any joint on a single iteration
	MaxStep float64

	rand *distmv.Uniform
}

// NewIKSolver returns a new IKSolver for a model. Random restarts are
// drawn from a source seeded with seed.
func NewIKSolver(model *Model, seed uint64) *IKSolver {
	return &IKSolver{
		model:        model,
		Epsilon:      1e-3,
		AngleEpsilon: 1e-2,
		Iterations:   150,
		Restarts:     5,
		Damping:      0.05,
		MaxStep:      0.5,
		rand:         distmv.NewUniform(model.Limits, rand.NewPCG(seed, seed)),
	}
}

// Solve finds joint angles placing the flange at goal, starting the
// search at seed. If orientation is false only the goal position is
// considered.
func (ik *IKSolver) Solve(seed []float64, goal Pose,
	orientation bool) (Solution, error) {
	if err := ik.model.checkJoints(seed); err != nil {
		return Solution{}, errors.Wrap(err, "solve")
	}

	q := make([]float64, len(seed))
	copy(q, seed)
	ik.model.Clamp(q)

	var best Solution
	for attempt := 0; attempt <= ik.Restarts; attempt++ {
		if attempt > 0 {
			q = ik.rand.Rand(nil)
		}

		solution, err := ik.descend(q, goal, orientation)
		if err != nil {
			return Solution{}, errors.Wrap(err, "solve")
		}
		if attempt == 0 || solution.cost() < best.cost() {
			best = solution
		}
		if best.Converged {
			break
		}
	}
	return best, nil
}

func (ik *IKSolver) descend(q []float64, goal Pose,
	orientation bool) (Solution, error) {
	rows := 3
	if orientation {
		rows = 6
	}

	var best Solution
	for i := 0; i < ik.Iterations; i++ {
		pose, err := ik.model.Forward(q)
		if err != nil {
			return Solution{}, err
		}

		residual := ik.residual(pose, goal, orientation)
		current := Solution{
			PositionError: math.Sqrt(mat.Dot(residual.SliceVec(0, 3),
				residual.SliceVec(0, 3))),
		}
		if orientation {
			current.AngleError = math.Sqrt(mat.Dot(residual.SliceVec(3, 6),
				residual.SliceVec(3, 6)))
		}
		current.Converged = current.PositionError < ik.Epsilon &&
			current.AngleError < ik.AngleEpsilon

		if i == 0 || current.cost() < best.cost() {
			current.Joints = append([]float64(nil), q...)
			best = current
		}
		if current.Converged {
			return best, nil
		}

		jac, err := ik.jacobian(q, pose, rows)
		if err != nil {
			return Solution{}, err
		}
		dq, err := ik.dampedStep(jac, residual, rows)
		if err != nil {
			return best, nil
		}

		for j := range q {
			q[j] += dq.AtVec(j)
		}
		ik.model.Clamp(q)
	}
	return best, nil
}

// residual returns the error between a pose and the goal as a position
// error followed, if orientation is true, by a rotation vector
func (ik *IKSolver) residual(pose, goal Pose, orientation bool) *mat.VecDense {
	dp := r3.Sub(goal.Position, pose.Position)
	if !orientation {
		return mat.NewVecDense(3, []float64{dp.X, dp.Y, dp.Z})
	}

	dr := RotationVector(pose.Orientation, goal.Orientation)
	return mat.NewVecDense(6, []float64{dp.X, dp.Y, dp.Z, dr.X, dr.Y, dr.Z})
}

// jacobian estimates the Jacobian of the flange pose at q by forward
// differences
func (ik *IKSolver) jacobian(q []float64, pose Pose, rows int) (*mat.Dense,
	error) {
	dof := ik.model.DoF()
	jac := mat.NewDense(rows, dof, nil)

	perturbed := make([]float64, dof)
	for j := 0; j < dof; j++ {
		copy(perturbed, q)
		perturbed[j] += finiteDifference

		next, err := ik.model.Forward(perturbed)
		if err != nil {
			return nil, err
		}

		dp := r3.Scale(1/finiteDifference, r3.Sub(next.Position, pose.Position))
		jac.Set(0, j, dp.X)
		jac.Set(1, j, dp.Y)
		jac.Set(2, j, dp.Z)

		if rows == 6 {
			dr := r3.Scale(1/finiteDifference,
				RotationVector(pose.Orientation, next.Orientation))
			jac.Set(3, j, dr.X)
			jac.Set(4, j, dr.Y)
			jac.Set(5, j, dr.Z)
		}
	}
	return jac, nil
}

// dampedStep returns Jᵀ(JJᵀ + λ²I)⁻¹e, scaled so that no joint moves
// further than MaxStep
func (ik *IKSolver) dampedStep(jac *mat.Dense, residual *mat.VecDense,
	rows int) (*mat.VecDense, error) {
	var jjt mat.Dense
	jjt.Mul(jac, jac.T())
	for i := 0; i < rows; i++ {
		jjt.Set(i, i, jjt.At(i, i)+ik.Damping*ik.Damping)
	}

	var y mat.VecDense
	if err := y.SolveVec(&jjt, residual); err != nil {
		return nil, err
	}

	var dq mat.VecDense
	dq.MulVec(jac.T(), &y)

	largest := mat.Norm(&dq, math.Inf(1))
	if largest > ik.MaxStep {
		dq.ScaleVec(ik.MaxStep/largest, &dq)
	}
	return &dq, nil
}
