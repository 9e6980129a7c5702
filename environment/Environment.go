// Package environment outlines the interfaces and structs needed to
// implement concrete goal-conditioned environments
package environment

import (
	"github.com/samuelfneumann/urgym/timestep"
	"gonum.org/v1/gonum/mat"
)

// Starter implements a distribution of starting states and samples
// starting states, or goals, for environments
type Starter interface {
	Start() *mat.VecDense
}

// Ender determines when episodes end. If a TimeStep is the last in the
// episode, End sets its StepType to timestep.Last and its EndType
// accordingly.
type Ender interface {
	End(*timestep.TimeStep) bool
}

// GoalTask implements a goal-conditioned objective in some environment.
// A GoalTask samples goals, extracts the achieved goal from the live
// robot state, and computes success and rewards from pairs of achieved
// and desired goals.
//
// Goals are resampled only by Reset. Goal returns an error if no goal
// has been sampled yet.
type GoalTask interface {
	Reset() error
	Goal() (*mat.VecDense, error)

	// Obs returns task-specific observations, which may be empty
	Obs() *mat.VecDense
	AchievedGoal() (*mat.VecDense, error)

	IsSuccess(achieved, desired mat.Vector) bool
	IsSuccessBatch(achieved, desired mat.Matrix) []bool

	ComputeReward(achieved, desired mat.Vector, info timestep.Info) float64
	ComputeRewardBatch(achieved, desired mat.Matrix,
		info []timestep.Info) []float64

	// CollisionAware returns whether the task tracks collisions. If
	// so, CheckCollision should be called once after each action.
	CollisionAware() bool
	CheckCollision() error
	Collision() bool

	GoalSpec() Spec
}

// Environment implements a simulated environment, which includes a
// Task to complete
type Environment interface {
	Reset() (timestep.TimeStep, error)
	Step(action *mat.VecDense) (timestep.TimeStep, bool, error)
	CurrentTimeStep() timestep.TimeStep

	RewardSpec() Spec
	DiscountSpec() Spec
	ObservationSpec() Spec
	ActionSpec() Spec

	Close() error
}

// GoalEnvironment is an Environment whose TimeSteps carry achieved and
// desired goals. Rewards can be recomputed for relabelled goals with
// ComputeReward.
type GoalEnvironment interface {
	Environment
	GoalSpec() Spec
	ComputeReward(achieved, desired mat.Vector, info timestep.Info) float64
}
