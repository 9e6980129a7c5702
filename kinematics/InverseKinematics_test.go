package kinematics

import (
	"testing"

	"go.viam.com/test"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestSolvePosition(t *testing.T) {
	model := NewUR5e()
	ik := NewIKSolver(model, 1)

	target := make([]float64, 6)
	for i, d := range []float64{0.2, -0.1, 0.15, 0.1, -0.2, 0.3} {
		target[i] = neutral[i] + d
	}
	goal, err := model.Forward(target)
	test.That(t, err, test.ShouldBeNil)

	solution, err := ik.Solve(neutral, goal, false)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, solution.Converged, test.ShouldBeTrue)

	reached, err := model.Forward(solution.Joints)
	test.That(t, err, test.ShouldBeNil)
	dist := r3.Norm(r3.Sub(reached.Position, goal.Position))
	test.That(t, dist, test.ShouldBeLessThan, ik.Epsilon)
}

func TestSolvePose(t *testing.T) {
	model := NewUR5e()
	ik := NewIKSolver(model, 1)

	target := make([]float64, 6)
	for i, d := range []float64{0.2, -0.1, 0.15, 0.1, -0.2, 0.3} {
		target[i] = neutral[i] + d
	}
	goal, err := model.Forward(target)
	test.That(t, err, test.ShouldBeNil)

	solution, err := ik.Solve(neutral, goal, true)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, solution.Converged, test.ShouldBeTrue)
	test.That(t, solution.AngleError, test.ShouldBeLessThan, ik.AngleEpsilon)

	reached, err := model.Forward(solution.Joints)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r3.Norm(RotationVector(reached.Orientation, goal.Orientation)),
		test.ShouldBeLessThan, ik.AngleEpsilon)
}

func TestSolveSmallDisplacements(t *testing.T) {
	model := NewUR5e()
	ik := NewIKSolver(model, 1)

	start, err := model.Forward(neutral)
	test.That(t, err, test.ShouldBeNil)

	for _, d := range []r3.Vec{
		{X: 0.05},
		{Y: 0.05},
		{Z: -0.05},
		{X: 0.03, Y: 0.03, Z: 0.03},
	} {
		goal := Pose{
			Position:    r3.Add(start.Position, d),
			Orientation: start.Orientation,
		}
		solution, err := ik.Solve(neutral, goal, false)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, solution.Converged, test.ShouldBeTrue)
		test.That(t, model.WithinLimits(solution.Joints), test.ShouldBeTrue)
	}
}

func TestSolveWrongSeed(t *testing.T) {
	ik := NewIKSolver(NewUR5e(), 1)
	_, err := ik.Solve([]float64{0}, Pose{}, false)
	test.That(t, err, test.ShouldNotBeNil)
}
