package environment

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// SpecType determines what kind of specification a Spec is. A Spec can
// specify the layout of an acion, an observation, a goal, a discount,
// or a reward
type SpecType int

const (
	Action SpecType = iota
	Observation
	Goal
	Discount
	Reward
)

func (s SpecType) String() string {
	switch s {
	case Action:
		return "Action"
	case Observation:
		return "Observation"
	case Goal:
		return "Goal"
	case Discount:
		return "Discount"
	default:
		return "Reward"
	}
}

// Cardinality determines the cardinality of a number (discrete or continuous)
type Cardinality string

const (
	Continuous Cardinality = "Continuous"
	Discrete   Cardinality = "Discrete"
)

// Spec implements an environment specification, which tells the type,
// shape, and bounds of an action, observation, goal, discount, or reward
// in an environment
type Spec struct {
	Shape      mat.Vector
	Type       SpecType
	LowerBound mat.Vector
	UpperBound mat.Vector
	Cardinality
}

// NewSpec constructs a new environment specification
// The shape argument outlines the shape of the data described by the
// specification. The argument t outlines what the specification is
// describing (e.g. actions, observations, etc.). The cardinality
// arguments describes whether the values that the spec describes are
// continuous or discrete.
func NewSpec(shape mat.Vector, t SpecType, lowerBound,
	upperBound mat.Vector, cardinality Cardinality) Spec {
	if shape.Len() != lowerBound.Len() {
		panic(fmt.Sprintf("shape length %v must match lower bounds length %v",
			shape.Len(), lowerBound.Len()))
	}
	if shape.Len() != upperBound.Len() {
		panic(fmt.Sprintf("shape length %v must match upper bounds length %v",
			shape.Len(), upperBound.Len()))
	}
	return Spec{shape, t, lowerBound, upperBound, cardinality}
}

// NewBoxSpec returns a continuous Spec of length n with the same
// bounds on each dimension
func NewBoxSpec(n int, t SpecType, low, high float64) Spec {
	lower := mat.NewVecDense(n, nil)
	upper := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		lower.SetVec(i, low)
		upper.SetVec(i, high)
	}
	return NewSpec(mat.NewVecDense(n, nil), t, lower, upper, Continuous)
}

// Len returns the number of dimensions described by the Spec
func (s Spec) Len() int {
	return s.Shape.Len()
}

// CheckShape returns an error if v does not have the shape described
// by the Spec
func (s Spec) CheckShape(v mat.Vector) error {
	if v == nil {
		return errors.Errorf("%v must not be nil", s.Type)
	}
	if v.Len() != s.Len() {
		return errors.Errorf("invalid %v dimensions \n\thave(%v) \n\twant(%v)",
			s.Type, v.Len(), s.Len())
	}
	return nil
}

// Contains returns whether v has the shape described by the Spec and
// lies within its bounds
func (s Spec) Contains(v mat.Vector) bool {
	if s.CheckShape(v) != nil {
		return false
	}
	for i := 0; i < v.Len(); i++ {
		if v.AtVec(i) < s.LowerBound.AtVec(i) ||
			v.AtVec(i) > s.UpperBound.AtVec(i) {
			return false
		}
	}
	return true
}
