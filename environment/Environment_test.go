package environment

import (
	"testing"

	"github.com/samuelfneumann/urgym/timestep"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
)

func TestSpec(t *testing.T) {
	s := NewBoxSpec(3, Action, -1, 1)
	test.That(t, s.Len(), test.ShouldEqual, 3)
	test.That(t, s.Cardinality, test.ShouldEqual, Continuous)

	test.That(t, s.CheckShape(mat.NewVecDense(3, nil)), test.ShouldBeNil)
	test.That(t, s.CheckShape(mat.NewVecDense(2, nil)), test.ShouldNotBeNil)
	test.That(t, s.CheckShape(nil), test.ShouldNotBeNil)

	test.That(t, s.Contains(mat.NewVecDense(3, []float64{-1, 0, 1})),
		test.ShouldBeTrue)
	test.That(t, s.Contains(mat.NewVecDense(3, []float64{-1, 0, 1.1})),
		test.ShouldBeFalse)

	test.That(t, func() {
		NewSpec(mat.NewVecDense(2, nil), Goal, mat.NewVecDense(1, nil),
			mat.NewVecDense(2, nil), Continuous)
	}, test.ShouldPanic)
}

func TestStepLimit(t *testing.T) {
	s := NewStepLimit(3)
	test.That(t, s.Steps(), test.ShouldEqual, 3)

	step := timestep.New(timestep.Mid, -1, 1, nil, 2)
	test.That(t, s.End(&step), test.ShouldBeFalse)
	test.That(t, step.Mid(), test.ShouldBeTrue)

	step = timestep.New(timestep.Mid, -1, 1, nil, 3)
	test.That(t, s.End(&step), test.ShouldBeTrue)
	test.That(t, step.Truncated(), test.ShouldBeTrue)
	test.That(t, step.Terminated(), test.ShouldBeFalse)
}

func TestMultiEnder(t *testing.T) {
	ender := MultiEnder{NewSuccessEnder(), NewStepLimit(3)}

	// Success takes precedence over the step limit
	step := timestep.New(timestep.Mid, 0, 1, nil, 3)
	step.Info.IsSuccess = true
	test.That(t, ender.End(&step), test.ShouldBeTrue)
	test.That(t, step.EndType(), test.ShouldEqual, timestep.TerminalStateReached)

	step = timestep.New(timestep.Mid, -1, 1, nil, 1)
	test.That(t, ender.End(&step), test.ShouldBeFalse)
	test.That(t, step.EndType(), test.ShouldEqual, timestep.Unknown)
}

func TestUniformStarter(t *testing.T) {
	bounds := []r1.Interval{{Min: -1, Max: 1}, {Min: 2, Max: 2}}
	s := NewUniformStarter(bounds, 4)
	other := NewUniformStarter(bounds, 4)

	for i := 0; i < 100; i++ {
		v := s.Start()
		test.That(t, v.AtVec(0), test.ShouldBeGreaterThanOrEqualTo, -1.0)
		test.That(t, v.AtVec(0), test.ShouldBeLessThan, 1.0)
		test.That(t, v.AtVec(1), test.ShouldEqual, 2.0)
		test.That(t, other.Start().RawVector().Data, test.ShouldResemble,
			v.RawVector().Data)
	}

	// Bounds are copied
	bounds[0].Max = 10
	test.That(t, s.Bounds()[0].Max, test.ShouldEqual, 1.0)
	test.That(t, s.Seed(), test.ShouldEqual, uint64(4))

	test.That(t, func() {
		NewBoxStarter([]float64{0}, []float64{1, 2}, 0)
	}, test.ShouldPanic)
}
