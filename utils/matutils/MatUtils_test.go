package matutils

import (
	"testing"

	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"
)

func TestVecClip(t *testing.T) {
	v := mat.NewVecDense(4, []float64{-2, -0.5, 0.5, 2})
	VecClip(v, -1, 1)
	test.That(t, v.RawVector().Data, test.ShouldResemble,
		[]float64{-1, -0.5, 0.5, 1})
}

func TestVecAbsSum(t *testing.T) {
	test.That(t, VecAbsSum(mat.NewVecDense(3, []float64{-1, 2, -3})),
		test.ShouldEqual, 6.0)
}

func TestVecConcat(t *testing.T) {
	a := mat.NewVecDense(2, []float64{1, 2})
	b := mat.NewVecDense(1, []float64{3})

	out := VecConcat(a, nil, b)
	test.That(t, out.RawVector().Data, test.ShouldResemble, []float64{1, 2, 3})

	// The result does not alias its inputs
	out.SetVec(0, 10)
	test.That(t, a.AtVec(0), test.ShouldEqual, 1.0)

	test.That(t, VecConcat().Len(), test.ShouldEqual, 0)
	test.That(t, VecConcat(nil, &mat.VecDense{}).IsEmpty(), test.ShouldBeTrue)
}
