package random

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/samuelfneumann/urgym/agent"
	"github.com/samuelfneumann/urgym/environment"
	"github.com/samuelfneumann/urgym/timestep"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"
)

func TestSelectAction(t *testing.T) {
	spec := environment.NewBoxSpec(6, environment.Action, -1, 1)
	r, err := New(spec, 1, 1)
	test.That(t, err, test.ShouldBeNil)

	var positive int
	for i := 0; i < 1000; i++ {
		action := r.SelectAction(timestep.TimeStep{})
		test.That(t, spec.Contains(action), test.ShouldBeTrue)
		if action.AtVec(0) > 0 {
			positive++
		}
	}
	test.That(t, positive, test.ShouldBeBetween, 400, 600)
}

func TestSelectActionSeeded(t *testing.T) {
	spec := environment.NewBoxSpec(3, environment.Action, -1, 1)
	a, err := New(spec, 1, 5)
	test.That(t, err, test.ShouldBeNil)
	b, err := New(spec, 1, 5)
	test.That(t, err, test.ShouldBeNil)

	for i := 0; i < 10; i++ {
		test.That(t, a.SelectAction(timestep.TimeStep{}).RawVector().Data,
			test.ShouldResemble, b.SelectAction(timestep.TimeStep{}).RawVector().Data)
	}
}

func TestScale(t *testing.T) {
	spec := environment.NewBoxSpec(3, environment.Action, -1, 3)

	r, err := New(spec, 0.5, 1)
	test.That(t, err, test.ShouldBeNil)
	for i := 0; i < 100; i++ {
		action := r.SelectAction(timestep.TimeStep{})
		for j := 0; j < action.Len(); j++ {
			test.That(t, action.AtVec(j), test.ShouldBeBetweenOrEqual, 0.0, 2.0)
		}
	}

	r, err = New(spec, 0, 1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r.SelectAction(timestep.TimeStep{}).RawVector().Data,
		test.ShouldResemble, []float64{1, 1, 1})
}

func TestUnbounded(t *testing.T) {
	spec := environment.NewSpec(mat.NewVecDense(1, nil), environment.Action,
		mat.NewVecDense(1, []float64{-1}), mat.NewVecDense(1, []float64{math.Inf(1)}),
		environment.Continuous)
	_, err := New(spec, 1, 1)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestMode(t *testing.T) {
	r, err := New(environment.NewBoxSpec(1, environment.Action, -1, 1), 1, 1)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, r.IsEval(), test.ShouldBeFalse)
	r.Eval()
	test.That(t, r.IsEval(), test.ShouldBeTrue)
	r.Train()
	test.That(t, r.IsEval(), test.ShouldBeFalse)
}

func TestConfig(t *testing.T) {
	test.That(t, DefaultConfig().Validate(), test.ShouldBeNil)
	test.That(t, Config{Scale: 2}.Validate(), test.ShouldNotBeNil)

	typed := agent.NewTypedConfig(Config{Scale: 0.25})
	data, err := json.Marshal(typed)
	test.That(t, err, test.ShouldBeNil)

	var decoded agent.TypedConfig
	test.That(t, json.Unmarshal(data, &decoded), test.ShouldBeNil)
	test.That(t, decoded.Type, test.ShouldEqual, Type)
	test.That(t, decoded.Config, test.ShouldResemble, Config{Scale: 0.25})

	test.That(t, json.Unmarshal([]byte(`{"Type": "DQN"}`), &decoded),
		test.ShouldNotBeNil)
}
