// Package agent defines the contract between an agent and the
// environments it acts in
package agent

import (
	"github.com/samuelfneumann/urgym/timestep"
	"gonum.org/v1/gonum/mat"
)

// Agent acts in an environment through its Policy and learns from the
// resulting TimeSteps through its Learner
type Agent interface {
	Learner
	Policy
}

// Learner updates an agent from experience. Goal-conditioned TimeSteps
// carry their achieved and desired goals, so a Learner may relabel
// goals using the environment's ComputeReward.
type Learner interface {
	// Step performs a single update
	Step() error

	// Observe records that action led to nextStep
	Observe(action mat.Vector, nextStep timestep.TimeStep) error

	// ObserveFirst records the first TimeStep of an episode
	ObserveFirst(timestep.TimeStep) error

	// EndEpisode is called once an episode has finished
	EndEpisode()
}

// Policy selects actions given TimeSteps
type Policy interface {
	SelectAction(t timestep.TimeStep) *mat.VecDense
	Eval()        // Set policy to evaluation mode
	Train()       // Set policy to training mode
	IsEval() bool // Indicates if in evaluation mode
}
