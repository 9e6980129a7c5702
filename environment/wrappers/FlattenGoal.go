// Package wrappers implements wrappers around environments
package wrappers

import (
	"github.com/pkg/errors"
	"github.com/samuelfneumann/urgym/environment"
	"github.com/samuelfneumann/urgym/timestep"
	"github.com/samuelfneumann/urgym/utils/matutils"
	"gonum.org/v1/gonum/mat"
)

// FlattenGoal wraps a goal-conditioned environment so that the
// observation of each TimeStep is the concatenation of the wrapped
// observation, the achieved goal, and the desired goal. Agents which
// are not goal-aware can then act in goal-conditioned environments.
//
// The achieved and desired goals remain set on returned TimeSteps.
//
// FlattenGoal itself implements the environment.Environment interface,
// and is therefore itself an Environment.
type FlattenGoal struct {
	environment.GoalEnvironment
	obsSpec environment.Spec
}

// NewFlattenGoal returns a new FlattenGoal wrapping env
func NewFlattenGoal(env environment.GoalEnvironment) (*FlattenGoal, error) {
	if env == nil {
		return nil, errors.New("newFlattenGoal: environment must not be nil")
	}
	obs, goal := env.ObservationSpec(), env.GoalSpec()

	lower := matutils.VecConcat(obs.LowerBound, goal.LowerBound,
		goal.LowerBound)
	upper := matutils.VecConcat(obs.UpperBound, goal.UpperBound,
		goal.UpperBound)
	spec := environment.NewSpec(mat.NewVecDense(lower.Len(), nil),
		environment.Observation, lower, upper, obs.Cardinality)

	return &FlattenGoal{GoalEnvironment: env, obsSpec: spec}, nil
}

// Reset resets the wrapped environment and flattens its first TimeStep
func (f *FlattenGoal) Reset() (timestep.TimeStep, error) {
	step, err := f.GoalEnvironment.Reset()
	if err != nil {
		return step, err
	}
	return flatten(step), nil
}

// Step steps the wrapped environment and flattens the next TimeStep
func (f *FlattenGoal) Step(action *mat.VecDense) (timestep.TimeStep, bool,
	error) {
	step, last, err := f.GoalEnvironment.Step(action)
	if err != nil {
		return step, last, err
	}
	return flatten(step), last, nil
}

// CurrentTimeStep returns the flattened current TimeStep of the wrapped
// environment
func (f *FlattenGoal) CurrentTimeStep() timestep.TimeStep {
	return flatten(f.GoalEnvironment.CurrentTimeStep())
}

// ObservationSpec returns the specification of flattened observations
func (f *FlattenGoal) ObservationSpec() environment.Spec {
	return f.obsSpec
}

func flatten(step timestep.TimeStep) timestep.TimeStep {
	if step.Observation == nil {
		return step
	}
	step.Observation = matutils.VecConcat(step.Observation,
		step.AchievedGoal, step.DesiredGoal)
	return step
}
