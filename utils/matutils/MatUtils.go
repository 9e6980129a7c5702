// Package matutils implements utility function for working with mat.Matrix
// structs
package matutils

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// VecClip performs an element-wise clipping of a vector's values such
// that each value is at least min and at most max
func VecClip(a *mat.VecDense, min, max float64) {
	for i := 0; i < a.Len(); i++ {
		value := a.AtVec(i)

		if value < min {
			a.SetVec(i, min)
		} else if value > max {
			a.SetVec(i, max)
		}
	}
}

// VecAbsSum returns the sum of the absolute values of a vector's
// elements
func VecAbsSum(a mat.Vector) float64 {
	return floats.Norm(VecToSlice(a), 1)
}

// VecToSlice copies a vector's elements into a new slice
func VecToSlice(a mat.Vector) []float64 {
	out := make([]float64, a.Len())
	for i := range out {
		out[i] = a.AtVec(i)
	}
	return out
}

// VecConcat concatenates vectors into a new vector. Nil or empty
// vectors are skipped.
func VecConcat(vecs ...mat.Vector) *mat.VecDense {
	var data []float64
	for _, v := range vecs {
		if v == nil {
			continue
		}
		data = append(data, VecToSlice(v)...)
	}
	if len(data) == 0 {
		return &mat.VecDense{}
	}
	return mat.NewVecDense(len(data), data)
}
